package ppu

import "github.com/cespare/xxhash"

// Frame is a completed picture, stored as one shade (0-3) per pixel
// in row-major order.
type Frame struct {
	Number uint64
	Pixels [ScreenWidth * ScreenHeight]uint8
}

// At returns the shade of the pixel at x, y.
func (f *Frame) At(x, y int) uint8 {
	return f.Pixels[y*ScreenWidth+x]
}

// Hash returns a digest of the frame's pixels, used by consumers to
// skip frames identical to the previous one.
func (f *Frame) Hash() uint64 {
	return xxhash.Sum64(f.Pixels[:])
}
