package tile

import (
	"bytes"
	"image"
	"io"

	"github.com/disintegration/imaging"
)

// Decode reads an image in any registered format. EXIF orientation is applied
// here, once, so later steps see the image the way it is meant to be viewed.
func Decode(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	return img, nil
}

// DecodeBytes is Decode over an in-memory buffer.
func DecodeBytes(data []byte) (image.Image, error) {
	return Decode(bytes.NewReader(data))
}

// DecodeBytesLimited is DecodeBytes that first reads only the image header and
// returns a *DimensionError when width²+height² exceeds maxFieldPixels, before
// any pixel memory is allocated. A limit of zero or less disables the check.
func DecodeBytesLimited(data []byte, maxFieldPixels int64) (image.Image, error) {
	if maxFieldPixels > 0 {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return nil, &DecodeError{Err: err}
		}
		w, h := float64(cfg.Width), float64(cfg.Height)
		if w*w+h*h > float64(maxFieldPixels) {
			return nil, &DimensionError{Width: cfg.Width, Height: cfg.Height, Limit: maxFieldPixels}
		}
	}
	return DecodeBytes(data)
}

// EncodePNG writes img as PNG
func EncodePNG(w io.Writer, img image.Image) error {
	return imaging.Encode(w, img, imaging.PNG)
}

// EncodePNGBytes returns img encoded as PNG
func EncodePNGBytes(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
