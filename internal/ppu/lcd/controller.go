package lcd

import "github.com/thelolagemann/gbbus/internal/types"

// Controller is a decoded view of the LCD control register (LCDC).
//
//	Bit 7 - LCD Enable                     (0=Off, 1=On)
//	Bit 6 - Window Tile Map Display Select (0=9800-9BFF, 1=9C00-9FFF)
//	Bit 5 - Window Display Enable          (0=Off, 1=On)
//	Bit 4 - BG & Window Tile Data Select   (0=8800-97FF, 1=8000-8FFF)
//	Bit 3 - BG Tile Map Display Select     (0=9800-9BFF, 1=9C00-9FFF)
//	Bit 2 - OBJ (Sprite) Size              (0=8x8, 1=8x16)
//	Bit 1 - OBJ (Sprite) Display Enable    (0=Off, 1=On)
//	Bit 0 - BG/Window Display              (0=Off, 1=On)
//
// Addresses are stored as offsets into VRAM (0x8000 = 0x0000), as
// that is how the renderer indexes video memory.
type Controller struct {
	Enabled           bool
	WindowTileMap     uint16
	WindowEnabled     bool
	TileData          uint16
	BackgroundTileMap uint16
	SpriteSize        uint8
	SpriteEnabled     bool
	BackgroundEnabled bool
}

// Decode returns the Controller described by the given LCDC value.
func Decode(value uint8) Controller {
	c := Controller{
		Enabled:           types.Test(value, types.Bit7),
		WindowTileMap:     0x1800,
		WindowEnabled:     types.Test(value, types.Bit5),
		TileData:          0x0800,
		BackgroundTileMap: 0x1800,
		SpriteSize:        8,
		SpriteEnabled:     types.Test(value, types.Bit1),
		BackgroundEnabled: types.Test(value, types.Bit0),
	}
	if types.Test(value, types.Bit6) {
		c.WindowTileMap = 0x1C00
	}
	if types.Test(value, types.Bit4) {
		c.TileData = 0x0000
	}
	if types.Test(value, types.Bit3) {
		c.BackgroundTileMap = 0x1C00
	}
	if types.Test(value, types.Bit2) {
		c.SpriteSize = 16
	}
	return c
}

// UsingSignedTileData returns true when tile indices are signed
// offsets from 0x9000.
func (c Controller) UsingSignedTileData() bool {
	return c.TileData == 0x0800
}

// TileAddress returns the VRAM offset of the given tile index.
func (c Controller) TileAddress(index uint8) uint16 {
	if c.UsingSignedTileData() {
		return uint16(0x1000 + int(int8(index))*16)
	}
	return uint16(index) * 16
}
