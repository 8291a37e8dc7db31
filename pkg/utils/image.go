package utils

import (
	"image"
	"image/png"
	"os"

	"github.com/pkg/errors"
	"github.com/thelolagemann/gbbus/internal/ppu"
	"github.com/thelolagemann/gbbus/internal/ppu/palette"
	"golang.org/x/image/draw"
)

// FrameImage converts a frame to an image using the given palette,
// scaled by an integer factor with nearest neighbour sampling so
// pixels stay sharp.
func FrameImage(f *ppu.Frame, p palette.Palette, scale int) *image.RGBA {
	src := image.NewRGBA(image.Rect(0, 0, ppu.ScreenWidth, ppu.ScreenHeight))
	for y := 0; y < ppu.ScreenHeight; y++ {
		for x := 0; x < ppu.ScreenWidth; x++ {
			src.SetRGBA(x, y, p.RGBA(f.At(x, y)))
		}
	}
	if scale <= 1 {
		return src
	}

	dst := image.NewRGBA(image.Rect(0, 0, ppu.ScreenWidth*scale, ppu.ScreenHeight*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// SaveImage encodes img as a PNG to filename, adding the .png
// extension if it is missing.
func SaveImage(img image.Image, filename string) error {
	if len(filename) < 4 || filename[len(filename)-4:] != ".png" {
		filename += ".png"
	}

	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "saving image")
	}
	if err := png.Encode(file, img); err != nil {
		file.Close()
		return errors.Wrapf(err, "encoding %s", filename)
	}
	return file.Close()
}
