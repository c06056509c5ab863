package tile

import (
	"image"

	"golang.org/x/image/draw"
)

// Apply covers a copy of target with a rotated brick field of t and returns
// the copy. The field is centered, so its overhang is clipped evenly on all
// sides and no corner of the target is left uncovered.
func Apply(target image.Image, t *Tile, style Style) (*image.RGBA, error) {
	if t == nil {
		return nil, &InvalidParameterError{Field: "tile", Reason: "nil tile"}
	}
	if err := style.Validate(); err != nil {
		return nil, err
	}

	dst := Normalize(target)
	w, h := dst.Bounds().Dx(), dst.Bounds().Dy()
	if w == 0 || h == 0 || t.Width() == 0 || t.Height() == 0 {
		return dst, nil
	}

	side := FieldSide(w, h)
	field := getField(side)
	fillField(field, t.img, style.Spacing)
	rotated := rotateField(field, style.Angle)
	putField(field)

	off := FieldOffset(w, h, side)
	r := image.Rectangle{Min: off, Max: off.Add(image.Pt(side, side))}
	draw.Draw(dst, r, rotated, image.Point{}, draw.Over)
	return dst, nil
}

// Normalize copies img into a new RGBA raster whose bounds start at the origin.
func Normalize(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
