// Package gameboy wires a cartridge, the joypad and the timer onto
// the system bus and clocks them frame by frame. There is no CPU:
// the bus is advanced as if the CPU executed a fixed length
// instruction each step, which is enough to drive the PPU, timer
// and interrupt lines.
package gameboy

import (
	"context"

	"github.com/pkg/errors"
	"github.com/thelolagemann/gbbus/internal/bus"
	"github.com/thelolagemann/gbbus/internal/cartridge"
	"github.com/thelolagemann/gbbus/internal/joypad"
	"github.com/thelolagemann/gbbus/internal/ppu"
	"github.com/thelolagemann/gbbus/internal/timer"
	"github.com/thelolagemann/gbbus/pkg/log"
)

const (
	// CyclesPerFrame is the number of machine cycles per frame.
	CyclesPerFrame = 17556 // 154 lines * 114
	// CyclesPerStep is the number of machine cycles the bus is
	// advanced by per step.
	CyclesPerStep = 4
)

// GameBoy represents a Game Boy without its CPU.
type GameBoy struct {
	Bus       *bus.Bus
	Cartridge cartridge.Cartridge
	Joypad    *joypad.State
	Timer     *timer.Controller

	log.Logger

	frames      chan *ppu.Frame
	frameBuffer int
	logUnmapped bool
	skipInit    bool
}

// NewGameBoy returns a new GameBoy for the given ROM, powered on
// with the post boot register values.
func NewGameBoy(rom []byte, opts ...Opt) (*GameBoy, error) {
	cart, err := cartridge.New(rom)
	if err != nil {
		return nil, err
	}

	g := &GameBoy{
		Cartridge:   cart,
		Joypad:      joypad.New(),
		Timer:       timer.NewController(),
		Logger:      log.NewNullLogger(),
		frameBuffer: 1,
	}
	for _, opt := range opts {
		opt(g)
	}

	g.frames = make(chan *ppu.Frame, g.frameBuffer)
	busOpts := []bus.Opt{
		bus.WithLogger(g.Logger),
		bus.WithPPU(ppu.New(ppu.WithFrameSink(g.frames), ppu.WithLogger(g.Logger))),
	}
	if g.logUnmapped {
		busOpts = append(busOpts, bus.LogUnmapped())
	}
	g.Bus = bus.New(cart, g.Joypad, g.Timer, busOpts...)

	if !g.skipInit {
		if err := bus.Guard(g.Bus.Init); err != nil {
			return nil, errors.Wrap(err, "power on")
		}
	}

	h := cart.Header()
	g.Infof("loaded %s", h.String())
	return g, nil
}

// Frames returns the channel completed frames are published on.
// It is closed when Run returns.
func (g *GameBoy) Frames() <-chan *ppu.Frame {
	return g.frames
}

// Frame advances the machine by one frame's worth of cycles. It
// returns the access error that stopped emulation, if any.
func (g *GameBoy) Frame() error {
	return bus.Guard(func() {
		for c := 0; c < CyclesPerFrame; c += CyclesPerStep {
			g.Bus.Tick(CyclesPerStep)
		}
	})
}

// Run advances the machine by the given number of frames, or until
// ctx is cancelled, then closes the frame channel. Run may only be
// called once.
func (g *GameBoy) Run(ctx context.Context, frames int) error {
	defer close(g.frames)
	for i := 0; i < frames; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := g.Frame(); err != nil {
			return errors.Wrapf(err, "frame %d", i)
		}
	}
	g.Debugf("ran %d frames, %d completed by the ppu", frames, g.Bus.PPU().Frames())
	return nil
}

// Press presses the given button.
func (g *GameBoy) Press(b joypad.Button) {
	g.Joypad.Press(b)
}

// Release releases the given button.
func (g *GameBoy) Release(b joypad.Button) {
	g.Joypad.Release(b)
}
