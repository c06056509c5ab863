package tile

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// FieldSide returns the side of the square tile field for a w×h target: the
// target diagonal rounded up, so the field still covers the target after
// rotation by any angle.
func FieldSide(w, h int) int {
	return int(math.Ceil(math.Hypot(float64(w), float64(h))))
}

// FieldOffset is where the top-left corner of a side×side field lands when
// centered on a w×h target. Both coordinates are zero or negative.
func FieldOffset(w, h, side int) image.Point {
	return image.Pt((w-side)/2, (h-side)/2)
}

// fillField pastes mark across field in rows. Odd rows start half a step to
// the left so the tiles form a brick pattern instead of a grid.
func fillField(field, mark *image.NRGBA, spacing int) {
	side := field.Bounds().Dx()
	tw, th := mark.Bounds().Dx(), mark.Bounds().Dy()
	if tw == 0 || th == 0 {
		return
	}

	stepX, stepY := tw+spacing, th+spacing
	for y, row := 0, 0; y < side; y, row = y+stepY, row+1 {
		x := 0
		if row%2 == 1 {
			x = -(stepX / 2)
		}
		for ; x < side; x += stepX {
			draw.Copy(field, image.Pt(x, y), mark, mark.Bounds(), draw.Src, nil)
		}
	}
}

// rotateField turns field counter-clockwise by angle degrees about its
// center and keeps the central square of the original size.
func rotateField(field *image.NRGBA, angle float64) *image.NRGBA {
	side := field.Bounds().Dx()
	rotated := imaging.Rotate(field, angle, color.Transparent)
	if b := rotated.Bounds(); b.Dx() == side && b.Dy() == side {
		return rotated
	}
	return imaging.CropCenter(rotated, side, side)
}
