package ppu

import "github.com/thelolagemann/gbbus/internal/types"

// Sprite is one decoded OAM entry.
type Sprite struct {
	Y      uint8 // screen Y + 16
	X      uint8 // screen X + 8
	TileID uint8

	// Bit 7 - OBJ-to-BG priority (1 = behind BG colours 1-3)
	behindBG bool
	// Bit 6 - Y flip
	flipY bool
	// Bit 5 - X flip
	flipX bool
	// Bit 4 - palette (0 = OBP0, 1 = OBP1)
	useOBP1 bool

	index int // position in OAM, breaks ties between equal X
}

// spriteAt decodes the i'th entry of the given OAM.
func spriteAt(oam *[OAMSize]uint8, i int) Sprite {
	b := oam[i*4 : i*4+4]
	return Sprite{
		Y:        b[0],
		X:        b[1],
		TileID:   b[2],
		behindBG: types.Test(b[3], types.Bit7),
		flipY:    types.Test(b[3], types.Bit6),
		flipX:    types.Test(b[3], types.Bit5),
		useOBP1:  types.Test(b[3], types.Bit4),
		index:    i,
	}
}

// drawsOver reports whether s is drawn on top of o where they overlap.
// The lower X wins, then the lower OAM index.
func (s Sprite) drawsOver(o Sprite) bool {
	if s.X != o.X {
		return s.X < o.X
	}
	return s.index < o.index
}

// onLine reports whether the sprite covers scanline ly.
func (s Sprite) onLine(ly, height uint8) bool {
	top := int(s.Y) - 16
	return int(ly) >= top && int(ly) < top+int(height)
}
