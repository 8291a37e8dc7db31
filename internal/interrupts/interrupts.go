// Package interrupts holds the interrupt request (IF) and enable
// (IE) registers shared by the CPU and the devices on the bus.
package interrupts

import (
	"github.com/thelolagemann/gbbus/internal/types"
)

const (
	// VBlankFlag (bit 0) is requested each time the PPU enters
	// V-Blank.
	VBlankFlag = types.Bit0
	// LCDFlag (bit 1) is requested by the conditions selected in
	// the STAT register.
	LCDFlag = types.Bit1
	// TimerFlag (bit 2) is requested when TIMA overflows.
	TimerFlag = types.Bit2
	// SerialFlag (bit 3) is requested when a serial transfer
	// completes. Serial is not emulated, so nothing on the bus
	// ever raises it, but software may still write it to IF.
	SerialFlag = types.Bit3
	// JoypadFlag (bit 4) is requested when a button goes from
	// released to pressed.
	JoypadFlag = types.Bit4
)

// Service stores the pending (Flag) and enabled (Enable)
// interrupt bits. Both registers are plain byte storage; the bus
// is the only writer besides the CPU.
type Service struct {
	Flag   uint8 // IF
	Enable uint8 // IE
}

// NewService returns a new Service with no pending or enabled
// interrupts.
func NewService() *Service {
	return &Service{}
}

// Request ORs the given bits into the Flag register. A zero
// request is a no-op, so callers may pass a device's latch
// unconditionally.
func (s *Service) Request(flags uint8) {
	s.Flag |= flags
}

// HasInterrupts reports whether any interrupt is both requested
// and enabled.
func (s *Service) HasInterrupts() bool {
	return s.Enable&s.Flag != 0
}

// Vector returns the vector of the highest priority interrupt that
// is requested and enabled, clearing its bit in Flag. It returns 0
// when nothing is pending.
func (s *Service) Vector() uint16 {
	pending := s.Enable & s.Flag
	if pending == 0 {
		return 0
	}
	for i := uint8(0); i < 5; i++ {
		flag := uint8(1 << i)
		if pending&flag != 0 {
			s.Flag &^= flag
			return uint16(0x0040 + uint16(i)*8)
		}
	}

	return 0
}

var _ types.Stater = (*Service)(nil)

// Load implements the types.Stater interface.
//
// The values are loaded in the following order:
//   - Flag (uint8)
//   - Enable (uint8)
func (s *Service) Load(st *types.State) {
	s.Flag = st.Read8()
	s.Enable = st.Read8()
}

// Save implements the types.Stater interface.
func (s *Service) Save(st *types.State) {
	st.Write8(s.Flag)
	st.Write8(s.Enable)
}
