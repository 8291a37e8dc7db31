package gameboy

import "github.com/thelolagemann/gbbus/pkg/log"

// Opt is a function that modifies a GameBoy
// instance.
type Opt func(gb *GameBoy)

func WithLogger(l log.Logger) Opt {
	return func(gb *GameBoy) {
		gb.Logger = l
	}
}

// WithFrameBuffer sets the capacity of the frame channel.
func WithFrameBuffer(n int) Opt {
	return func(gb *GameBoy) {
		if n > 0 {
			gb.frameBuffer = n
		}
	}
}

// LogUnmapped logs accesses outside of the memory map.
func LogUnmapped() Opt {
	return func(gb *GameBoy) {
		gb.logUnmapped = true
	}
}

// SkipInit leaves every register zeroed instead of applying the
// post boot values.
func SkipInit() Opt {
	return func(gb *GameBoy) {
		gb.skipInit = true
	}
}
