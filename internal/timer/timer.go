// Package timer provides an implementation of the Game Boy
// timer. It is used to generate interrupts at a specific
// frequency. The frequency can be configured using the
// types.TAC register.
package timer

import (
	"github.com/thelolagemann/gbbus/internal/interrupts"
	"github.com/thelolagemann/gbbus/internal/types"
)

// overflowDelay is the number of T-cycles TIMA reads 0 after
// overflowing, before it is reloaded from TMA.
const overflowDelay = 4

// bits selects the bit of the system counter whose falling edge
// increments TIMA, indexed by TAC bits 0-1.
//
//	00 = 4096 Hz   (bit 9)
//	01 = 262144 Hz (bit 3)
//	10 = 65536 Hz  (bit 5)
//	11 = 16384 Hz  (bit 7)
var bits = [4]uint16{512, 8, 32, 128}

// Controller is a timer controller. It owns the 16-bit system
// counter, of which DIV is the upper byte, and the TIMA, TMA and TAC
// registers.
type Controller struct {
	div  uint16
	tima uint8
	tma  uint8
	tac  uint8

	// T-cycles left until TIMA is reloaded after an overflow
	reloading uint8

	interrupt uint8
}

// NewController returns a new timer controller.
func NewController() *Controller {
	return &Controller{}
}

// Read returns the value of the timer register at address.
func (c *Controller) Read(address uint16) uint8 {
	switch address {
	case types.DIV:
		return uint8(c.div >> 8)
	case types.TIMA:
		return c.tima
	case types.TMA:
		return c.tma
	case types.TAC:
		return c.tac | 0b11111000
	}
	return 0xFF
}

// Write writes to the timer register at address.
func (c *Controller) Write(address uint16, value uint8) {
	switch address {
	case types.DIV:
		// resetting the counter may produce a falling edge
		old := c.signal()
		c.div = 0
		c.detectEdge(old)
	case types.TIMA:
		// a write during the reload delay cancels the reload
		c.tima = value
		c.reloading = 0
	case types.TMA:
		c.tma = value
	case types.TAC:
		old := c.signal()
		c.tac = value & 0b111
		c.detectEdge(old)
	}
}

// Tick advances the timer by the given number of T-cycles and
// returns the interrupt bits latched so far.
func (c *Controller) Tick(ticks uint16) uint8 {
	for ; ticks > 0; ticks-- {
		c.step()
	}
	return c.interrupt
}

// ClearInterrupt resets the latched interrupt bits.
func (c *Controller) ClearInterrupt() {
	c.interrupt = 0
}

func (c *Controller) step() {
	if c.reloading > 0 {
		c.reloading--
		if c.reloading == 0 {
			c.tima = c.tma
			c.interrupt |= interrupts.TimerFlag
		}
	}

	old := c.signal()
	c.div++
	c.detectEdge(old)
}

// signal is the input of the TIMA falling edge detector.
func (c *Controller) signal() bool {
	return c.tac&types.Bit2 != 0 && c.div&bits[c.tac&0b11] != 0
}

func (c *Controller) detectEdge(old bool) {
	if old && !c.signal() {
		c.tima++
		if c.tima == 0 {
			c.reloading = overflowDelay
		}
	}
}

var _ types.Stater = (*Controller)(nil)

// Load loads the state of the controller.
func (c *Controller) Load(s *types.State) {
	c.div = s.Read16()
	c.tima = s.Read8()
	c.tma = s.Read8()
	c.tac = s.Read8()
	c.reloading = s.Read8()
}

// Save saves the state of the controller.
func (c *Controller) Save(s *types.State) {
	s.Write16(c.div)
	s.Write8(c.tima)
	s.Write8(c.tma)
	s.Write8(c.tac)
	s.Write8(c.reloading)
}
