package types

import "fmt"

// State is a flat, append-only encoding of the machine state,
// used to snapshot and restore the memory subsystem.
type State struct {
	raw          []byte
	readPosition int
}

// Stater is implemented by components that can be saved to and
// loaded from a State.
type Stater interface {
	Load(*State) // Load the state of the object
	Save(*State) // Save the state of the object
}

// NewState creates a new, empty state.
func NewState() *State {
	return &State{
		raw: make([]byte, 0, 0x4000),
	}
}

// StateFromBytes wraps raw state data for reading.
func StateFromBytes(raw []byte) *State {
	return &State{
		raw: raw,
	}
}

func (s *State) Write8(value uint8) {
	s.raw = append(s.raw, value)
}

func (s *State) Write16(value uint16) {
	s.raw = append(s.raw, byte(value), byte(value>>8))
}

func (s *State) Write32(value uint32) {
	s.raw = append(s.raw, byte(value), byte(value>>8), byte(value>>16), byte(value>>24))
}

func (s *State) WriteBool(value bool) {
	if value {
		s.raw = append(s.raw, 1)
	} else {
		s.raw = append(s.raw, 0)
	}
}

func (s *State) WriteData(data []byte) {
	s.raw = append(s.raw, data...)
}

func (s *State) Read8() uint8 {
	s.need(1)
	value := s.raw[s.readPosition]
	s.readPosition++
	return value
}

func (s *State) Read16() uint16 {
	s.need(2)
	value := uint16(s.raw[s.readPosition]) | uint16(s.raw[s.readPosition+1])<<8
	s.readPosition += 2
	return value
}

func (s *State) Read32() uint32 {
	s.need(4)
	r := s.raw[s.readPosition:]
	value := uint32(r[0]) | uint32(r[1])<<8 | uint32(r[2])<<16 | uint32(r[3])<<24
	s.readPosition += 4
	return value
}

func (s *State) ReadBool() bool {
	return s.Read8() != 0
}

func (s *State) ReadData(p []byte) {
	s.need(len(p))
	copy(p, s.raw[s.readPosition:])
	s.readPosition += len(p)
}

// Remaining returns the number of unread bytes.
func (s *State) Remaining() int {
	return len(s.raw) - s.readPosition
}

func (s *State) Bytes() []byte {
	return s.raw
}

// ErrShortState is the panic value raised when a State is read
// past its end.
type ErrShortState struct {
	Want, Have int
}

func (e ErrShortState) Error() string {
	return fmt.Sprintf("state truncated: want %d bytes, have %d", e.Want, e.Have)
}

func (s *State) need(n int) {
	if s.Remaining() < n {
		panic(ErrShortState{Want: n, Have: s.Remaining()})
	}
}
