package tile

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// Default style values
const (
	DefaultSize      = 40
	DefaultRowHeight = 1.2
	DefaultColor     = "#9C9C9C"
	DefaultOpacity   = 0.20
	DefaultSpacing   = 70
	DefaultAngle     = 30
)

// Upper bounds on style inputs that size the tile canvas
const (
	MaxSize      = 1000
	MaxRowHeight = 10
	// MaxTilePixels caps the uncropped text canvas, runes*size by size*row height.
	MaxTilePixels = 1 << 24
)

var (
	// ErrInvalidParameter is matched by every InvalidParameterError.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrDecode is matched by every DecodeError.
	ErrDecode = errors.New("decode error")
	// ErrImageTooLarge is matched by every DimensionError.
	ErrImageTooLarge = errors.New("image too large")
)

// InvalidParameterError reports a malformed style input.
type InvalidParameterError struct {
	Field  string
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is lets errors.Is match ErrInvalidParameter.
func (e *InvalidParameterError) Is(target error) bool {
	return target == ErrInvalidParameter
}

// DecodeError wraps a failure to decode input bytes as an image.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode image: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match ErrDecode.
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

// DimensionError reports an image whose tile field would exceed the pixel
// limit. The field is a square over the diagonal, so its area is W²+H².
type DimensionError struct {
	Width, Height int
	Limit         int64
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("%dx%d image needs a tile field over %d pixels", e.Width, e.Height, e.Limit)
}

// Is lets errors.Is match ErrImageTooLarge.
func (e *DimensionError) Is(target error) bool {
	return target == ErrImageTooLarge
}

// Style holds the watermark rendering parameters
type Style struct {
	FontPath  string      // empty selects the embedded Go Regular face
	Size      float64     // point size
	Color     color.NRGBA // fill colour
	Opacity   float64     // 0.0 - 1.0
	Spacing   int         // pixels between tiles, both axes
	Angle     float64     // degrees, counter-clockwise
	RowHeight float64     // canvas height multiplier over Size
}

// DefaultStyle returns the style used by the bot when nothing is configured.
func DefaultStyle() Style {
	c, _ := ParseColor(DefaultColor)
	return Style{
		Size:      DefaultSize,
		Color:     c,
		Opacity:   DefaultOpacity,
		Spacing:   DefaultSpacing,
		Angle:     DefaultAngle,
		RowHeight: DefaultRowHeight,
	}
}

// Validate checks every field and returns an *InvalidParameterError for the
// first one out of range.
func (s Style) Validate() error {
	switch {
	case math.IsNaN(s.Opacity) || s.Opacity < 0 || s.Opacity > 1:
		return &InvalidParameterError{Field: "opacity", Reason: fmt.Sprintf("%v not in [0,1]", s.Opacity)}
	case math.IsNaN(s.Size) || s.Size < 1 || s.Size > MaxSize:
		return &InvalidParameterError{Field: "size", Reason: fmt.Sprintf("%v not in [1,%d]", s.Size, MaxSize)}
	case math.IsNaN(s.RowHeight) || s.RowHeight <= 0 || s.RowHeight > MaxRowHeight:
		return &InvalidParameterError{Field: "row_height", Reason: fmt.Sprintf("%v not in (0,%d]", s.RowHeight, MaxRowHeight)}
	case s.Spacing < 0:
		return &InvalidParameterError{Field: "spacing", Reason: fmt.Sprintf("%d must not be negative", s.Spacing)}
	case math.IsNaN(s.Angle) || math.IsInf(s.Angle, 0):
		return &InvalidParameterError{Field: "angle", Reason: "must be finite"}
	}
	return nil
}

// ParseColor parses #RGB, #RRGGBB and #RRGGBBAA hex colours.
func ParseColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.NRGBA{}, &InvalidParameterError{Field: "color", Reason: fmt.Sprintf("%q is not a hex colour", s)}
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, &InvalidParameterError{Field: "color", Reason: fmt.Sprintf("%q is not a hex colour", s)}
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// Tile is one cropped, opacity-adjusted rendering of the watermark text.
// It is immutable once built and safe for concurrent use.
type Tile struct {
	img   *image.NRGBA
	text  string
	style Style
}

// Image returns the tile raster. Callers must not modify it.
func (t *Tile) Image() *image.NRGBA { return t.img }

// Text returns the watermark text the tile was rendered from.
func (t *Tile) Text() string { return t.text }

// Style returns the style the tile was built with.
func (t *Tile) Style() Style { return t.style }

// Width returns the tile width in pixels
func (t *Tile) Width() int { return t.img.Bounds().Dx() }

// Height returns the tile height in pixels
func (t *Tile) Height() int { return t.img.Bounds().Dy() }

// Apply composites the tile onto target using the tile's own style.
func (t *Tile) Apply(target image.Image) (*image.RGBA, error) {
	return Apply(target, t, t.style)
}
