package lcd

import "github.com/thelolagemann/gbbus/internal/types"

// STAT interrupt source selects.
const (
	HBlankInterrupt      = types.Bit3
	VBlankInterrupt      = types.Bit4
	OAMInterrupt         = types.Bit5
	CoincidenceInterrupt = types.Bit6

	coincidence = types.Bit2
	modeMask    = 0x03
)

// ModeOf returns the mode stored in a STAT value.
func ModeOf(stat uint8) Mode {
	return stat & modeMask
}

// SetMode returns stat with its mode bits replaced.
func SetMode(stat uint8, mode Mode) uint8 {
	return stat&^modeMask | mode&modeMask
}

// Coincidence reports whether the LYC=LY flag is set.
func Coincidence(stat uint8) bool {
	return types.Test(stat, coincidence)
}

// SetCoincidence returns stat with the LYC=LY flag set or cleared.
func SetCoincidence(stat uint8, set bool) uint8 {
	if set {
		return types.Set(stat, coincidence)
	}
	return types.Reset(stat, coincidence)
}

// InterruptLine reports whether any enabled STAT condition holds.
// The LCD STAT interrupt is requested on a rising edge of this line.
func InterruptLine(stat uint8) bool {
	switch ModeOf(stat) {
	case HBlank:
		if types.Test(stat, HBlankInterrupt) {
			return true
		}
	case VBlank:
		if types.Test(stat, VBlankInterrupt) {
			return true
		}
	case OAM:
		if types.Test(stat, OAMInterrupt) {
			return true
		}
	}
	return Coincidence(stat) && types.Test(stat, CoincidenceInterrupt)
}
