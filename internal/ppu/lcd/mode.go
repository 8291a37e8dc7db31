package lcd

// Mode is the mode reported in bits 0-1 of STAT.
type Mode = uint8

const (
	// HBlank is entered once a line has been transferred. The CPU can
	// access both VRAM and OAM.
	HBlank Mode = iota
	// VBlank covers lines 144-153. The CPU can access both VRAM and OAM.
	VBlank
	// OAM is the sprite search at the start of each visible line.
	OAM
	// VRAM is the pixel transfer.
	VRAM
)
