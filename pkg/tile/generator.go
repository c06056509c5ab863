package tile

import (
	"fmt"
	"image"
	"image/color"
	"unicode/utf8"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Build renders text into a cropped, translucent tile that can be applied to
// any number of images.
func Build(text string, style Style) (*Tile, error) {
	if err := style.Validate(); err != nil {
		return nil, err
	}

	// Generous upper bound, trimmed by Crop below
	width := utf8.RuneCountInString(text) * int(style.Size)
	height := int(style.Size * style.RowHeight)
	if int64(width)*int64(height) > MaxTilePixels {
		return nil, &InvalidParameterError{
			Field:  "text",
			Reason: fmt.Sprintf("%dx%d canvas exceeds %d pixels", width, height, MaxTilePixels),
		}
	}

	face, err := newFace(style.FontPath, style.Size)
	if err != nil {
		return nil, err
	}
	defer face.Close()

	canvas := image.NewNRGBA(image.Rect(0, 0, width, height))

	d := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(style.Color),
		Face: face,
		Dot:  fixed.Point26_6{X: 0, Y: face.Metrics().Ascent},
	}
	d.DrawString(text)

	return &Tile{
		img:   scaleAlpha(Crop(canvas), style.Opacity),
		text:  text,
		style: style,
	}, nil
}

// Crop trims img to the smallest rectangle containing a pixel that differs
// from fully transparent. An image without such a pixel is returned as is.
func Crop(img *image.NRGBA) *image.NRGBA {
	bbox, ok := visibleBounds(img)
	if !ok || bbox == img.Bounds() {
		return img
	}
	return imaging.Crop(img, bbox)
}

// visibleBounds returns the bounding box of the non-zero pixels of img.
func visibleBounds(img *image.NRGBA) (image.Rectangle, bool) {
	b := img.Bounds()
	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X-1, b.Min.Y-1

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			i := img.PixOffset(x, y)
			if img.Pix[i]|img.Pix[i+1]|img.Pix[i+2]|img.Pix[i+3] == 0 {
				continue
			}
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
		}
	}

	if maxX < minX {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}

// scaleAlpha multiplies the alpha plane of img by opacity, leaving the colour
// channels alone. Values are truncated, so no pixel ever gains alpha.
func scaleAlpha(img *image.NRGBA, opacity float64) *image.NRGBA {
	if opacity == 1 || img.Bounds().Empty() {
		return img
	}
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		c.A = uint8(float64(c.A) * opacity)
		return c
	})
}
