// Package joypad provides an implementation of the Game Boy
// joypad. The joypad is used to read the state of the buttons
// and the direction keys.
package joypad

import (
	"fmt"
	"strings"

	"github.com/thelolagemann/gbbus/internal/interrupts"
	"github.com/thelolagemann/gbbus/internal/types"
)

// Button represents a physical button on the Game Boy.
type Button = uint8

const (
	// ButtonA is the A button.
	ButtonA Button = iota
	// ButtonB is the B button.
	ButtonB
	// ButtonSelect is the Select button.
	ButtonSelect
	// ButtonStart is the Start button.
	ButtonStart
	// ButtonRight is the Right button.
	ButtonRight
	// ButtonLeft is the Left button.
	ButtonLeft
	// ButtonUp is the Up button.
	ButtonUp
	// ButtonDown is the Down button.
	ButtonDown
)

var buttonNames = [...]string{"a", "b", "select", "start", "right", "left", "up", "down"}

// ParseButton returns the button with the given name.
func ParseButton(name string) (Button, error) {
	for i, n := range buttonNames {
		if strings.EqualFold(n, name) {
			return Button(i), nil
		}
	}
	return 0, fmt.Errorf("unknown button %q", name)
}

// State represents the state of the joypad. Select either
// action or direction buttons by writing to the register,
// and then read out bits 0-3 to get the state of the buttons.
//
//	Bit 7 - Not used
//	Bit 6 - Not used
//	Bit 5 - P15 Select Button Keys      (0=Select)
//	Bit 4 - P14 Select Direction Keys   (0=Select)
//	Bit 3 - P13 Input Down  or Start    (0=Pressed) (Read Only)
//	Bit 2 - P12 Input Up    or Select   (0=Pressed) (Read Only)
//	Bit 1 - P11 Input Left  or Button B (0=Pressed) (Read Only)
//	Bit 0 - P10 Input Right or Button A (0=Pressed) (Read Only)
type State struct {
	// pressed holds one bit per Button, 1 meaning pressed. The
	// lower nibble holds the action buttons, the upper nibble the
	// directions.
	pressed uint8
	// selection holds bits 4 and 5 of P1
	selection uint8

	interrupt uint8
}

// New returns a new joypad state, with no buttons pressed and
// neither group selected.
func New() *State {
	return &State{
		selection: types.Bit4 | types.Bit5,
	}
}

// Read returns the value of P1.
func (s *State) Read(address uint16) uint8 {
	if address != types.P1 {
		return 0xFF
	}

	var nibble uint8
	if s.selection&types.Bit4 == 0 {
		nibble |= s.pressed >> 4 & 0xF
	}
	if s.selection&types.Bit5 == 0 {
		nibble |= s.pressed & 0xF
	}
	return 0xC0 | s.selection | ^nibble&0xF
}

// Write updates the group selection. The button bits are read only.
func (s *State) Write(address uint16, value uint8) {
	if address != types.P1 {
		return
	}
	s.selection = value & (types.Bit4 | types.Bit5)
}

// Press presses a button. Pressing a released button latches a
// joypad interrupt.
func (s *State) Press(button Button) {
	mask := uint8(types.Bit0) << (button & 7)
	if s.pressed&mask == 0 {
		s.interrupt |= interrupts.JoypadFlag
	}
	s.pressed |= mask
}

// Release releases a button.
func (s *State) Release(button Button) {
	s.pressed &^= uint8(types.Bit0) << (button & 7)
}

// Tick returns the interrupt bits latched since the last
// ClearInterrupt. Input is event driven, so the cycle count is
// unused.
func (s *State) Tick(uint16) uint8 {
	return s.interrupt
}

// ClearInterrupt resets the latched interrupt bits.
func (s *State) ClearInterrupt() {
	s.interrupt = 0
}

var _ types.Stater = (*State)(nil)

// Load implements the types.Stater interface.
func (s *State) Load(st *types.State) {
	s.pressed = st.Read8()
	s.selection = st.Read8()
}

// Save implements the types.Stater interface.
//
// The values are saved in the following order:
//   - pressed buttons (uint8)
//   - P1 selection bits (uint8)
func (s *State) Save(st *types.State) {
	st.Write8(s.pressed)
	st.Write8(s.selection)
}
