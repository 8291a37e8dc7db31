// Package palette maps the four DMG shades onto RGB colours.
package palette

import (
	"fmt"
	"image/color"
	"strings"
)

const (
	// Greyscale is the default greyscale palette.
	Greyscale = iota
	// Green attempts to reproduce the colours of the original
	// DMG screen.
	Green
	// Red is a red palette.
	Red
	// Yellow is a yellow palette.
	Yellow
)

// Palette is a set of 4 RGB values, indexed by shade (0 = lightest,
// 3 = darkest).
type Palette struct {
	Colors [4][3]uint8
}

// Palettes is a list of all available palettes.
var Palettes = []Palette{
	// Greyscale
	{
		Colors: [4][3]uint8{
			{0xFF, 0xFF, 0xFF},
			{0xCC, 0xCC, 0xCC},
			{0x77, 0x77, 0x77},
			{0x00, 0x00, 0x00},
		},
	},
	// Green
	{
		Colors: [4][3]uint8{
			{0x9B, 0xBC, 0x0F},
			{0x8B, 0xAC, 0x0F},
			{0x30, 0x62, 0x30},
			{0x0F, 0x38, 0x0F},
		},
	},
	// Red
	{
		Colors: [4][3]uint8{
			{0xFF, 0x00, 0x00},
			{0xCC, 0x00, 0x00},
			{0x77, 0x00, 0x00},
			{0x00, 0x00, 0x00},
		},
	},
	// Yellow
	{
		Colors: [4][3]uint8{
			{0xFF, 0xFF, 0x00},
			{0xCC, 0xCC, 0x00},
			{0x77, 0x77, 0x00},
			{0x00, 0x00, 0x00},
		},
	},
}

var names = []string{"greyscale", "green", "red", "yellow"}

// ByName returns the palette with the given name.
func ByName(name string) (Palette, error) {
	for i, n := range names {
		if strings.EqualFold(n, name) {
			return Palettes[i], nil
		}
	}
	return Palette{}, fmt.Errorf("unknown palette %q", name)
}

// RGBA returns the colour of the given shade. Only the lower two
// bits of shade are used.
func (p Palette) RGBA(shade uint8) color.RGBA {
	c := p.Colors[shade&0x03]
	return color.RGBA{R: c[0], G: c[1], B: c[2], A: 0xFF}
}

// Apply maps a colour number (0-3) through a DMG palette register
// (BGP, OBP0 or OBP1), returning the resulting shade.
func Apply(register, colour uint8) uint8 {
	return (register >> ((colour & 0x03) * 2)) & 0x03
}
