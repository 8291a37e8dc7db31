package ppu

// tilePixel returns the colour number (0-3) of pixel x (0 = leftmost)
// in the tile row stored at the given VRAM offset. A row is two bytes:
// the low bits of every pixel, then the high bits.
func tilePixel(vram *[VRAMSize]uint8, row uint16, x uint8) uint8 {
	lo := vram[row&0x1FFF]
	hi := vram[(row+1)&0x1FFF]
	bit := 7 - (x & 7)
	return (lo>>bit)&1 | ((hi>>bit)&1)<<1
}
