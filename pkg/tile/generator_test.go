package tile

import (
	"errors"
	"image"
	"image/color"
	"math"
	"strings"
	"testing"
)

// alphaCount returns the number of pixels with non-zero alpha
func alphaCount(img *image.NRGBA) int {
	n := 0
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 {
			n++
		}
	}
	return n
}

func TestBuild_CropsToVisiblePixels(t *testing.T) {
	style := DefaultStyle()
	tl, err := Build("HI", style)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if tl.Width() == 0 || tl.Height() == 0 {
		t.Fatalf("Expected a non-empty tile, got %dx%d", tl.Width(), tl.Height())
	}

	// The canvas is len(text)*size wide and size*rowHeight tall; the crop
	// must be no larger.
	if tl.Width() > 2*DefaultSize || tl.Height() > int(DefaultSize*DefaultRowHeight) {
		t.Errorf("Tile %dx%d exceeds the render canvas", tl.Width(), tl.Height())
	}

	got, ok := visibleBounds(tl.Image())
	if !ok {
		t.Fatal("Expected visible pixels in tile")
	}
	if got != tl.Image().Bounds() {
		t.Errorf("Expected tile to be tight, visible bounds %v within %v", got, tl.Image().Bounds())
	}
	if tl.Text() != "HI" {
		t.Errorf("Expected text HI, got %q", tl.Text())
	}
}

func TestBuild_OpacityScalesAlpha(t *testing.T) {
	base := DefaultStyle()
	base.Opacity = 1
	full, err := Build("WM", base)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	for _, p := range []float64{0, 0.2, 0.5, 0.99, 1} {
		style := base
		style.Opacity = p
		tl, err := Build("WM", style)
		if err != nil {
			t.Fatalf("Build(opacity=%v) failed: %v", p, err)
		}
		if tl.Image().Bounds() != full.Image().Bounds() {
			t.Fatalf("opacity=%v: bounds %v, want %v", p, tl.Image().Bounds(), full.Image().Bounds())
		}

		for i := 0; i < len(full.Image().Pix); i += 4 {
			want := full.Image().Pix[i+3]
			got := tl.Image().Pix[i+3]
			if got > want {
				t.Fatalf("opacity=%v: alpha grew from %d to %d at byte %d", p, want, got, i)
			}
			if p == 1 && got != want {
				t.Fatalf("opacity=1: alpha changed from %d to %d", want, got)
			}
			if p == 0 && got != 0 {
				t.Fatalf("opacity=0: alpha %d, want 0", got)
			}
			if exp := uint8(float64(want) * p); got != exp {
				t.Fatalf("opacity=%v: alpha %d, want %d", p, got, exp)
			}
			// colour channels are untouched
			for c := 0; c < 3; c++ {
				if tl.Image().Pix[i+c] != full.Image().Pix[i+c] {
					t.Fatalf("opacity=%v: colour channel %d changed", p, c)
				}
			}
		}
	}
}

func TestBuild_EmptyText(t *testing.T) {
	tl, err := Build("", DefaultStyle())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if n := alphaCount(tl.Image()); n != 0 {
		t.Errorf("Expected no visible pixels, got %d", n)
	}
}

func TestBuild_InvalidStyle(t *testing.T) {
	testCases := []struct {
		name  string
		mod   func(*Style)
		field string
	}{
		{"opacity above one", func(s *Style) { s.Opacity = 1.01 }, "opacity"},
		{"negative opacity", func(s *Style) { s.Opacity = -0.1 }, "opacity"},
		{"NaN opacity", func(s *Style) { s.Opacity = math.NaN() }, "opacity"},
		{"zero size", func(s *Style) { s.Size = 0 }, "size"},
		{"huge size", func(s *Style) { s.Size = 1e8 }, "size"},
		{"infinite size", func(s *Style) { s.Size = math.Inf(1) }, "size"},
		{"zero row height", func(s *Style) { s.RowHeight = 0 }, "row_height"},
		{"huge row height", func(s *Style) { s.RowHeight = 1e6 }, "row_height"},
		{"negative spacing", func(s *Style) { s.Spacing = -1 }, "spacing"},
		{"infinite angle", func(s *Style) { s.Angle = math.Inf(1) }, "angle"},
		{"missing font", func(s *Style) { s.FontPath = "/nonexistent/font.ttf" }, "font"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			style := DefaultStyle()
			tc.mod(&style)

			_, err := Build("HI", style)
			if !errors.Is(err, ErrInvalidParameter) {
				t.Fatalf("Expected ErrInvalidParameter, got %v", err)
			}
			var ipe *InvalidParameterError
			if !errors.As(err, &ipe) || ipe.Field != tc.field {
				t.Errorf("Expected field %s, got %v", tc.field, err)
			}
		})
	}
}

func TestBuild_RejectsOversizedCanvas(t *testing.T) {
	style := DefaultStyle()
	style.Size = MaxSize

	_, err := Build(strings.Repeat("W", 50), style)
	var ipe *InvalidParameterError
	if !errors.As(err, &ipe) || ipe.Field != "text" {
		t.Fatalf("Expected text InvalidParameterError, got %v", err)
	}

	// The largest size still builds for short text
	if _, err := Build("HI", style); err != nil {
		t.Errorf("Build at MaxSize failed: %v", err)
	}
}

func TestCrop_Idempotent(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 40, 30))
	img.SetNRGBA(5, 7, color.NRGBA{R: 255, A: 255})
	img.SetNRGBA(20, 12, color.NRGBA{G: 10, A: 3})

	once := Crop(img)
	if want := image.Rect(0, 0, 16, 6); once.Bounds() != want {
		t.Fatalf("Expected bounds %v, got %v", want, once.Bounds())
	}
	twice := Crop(once)
	if twice.Bounds() != once.Bounds() {
		t.Errorf("Crop not idempotent: %v then %v", once.Bounds(), twice.Bounds())
	}
}

func TestCrop_TransparentImageUnchanged(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	if got := Crop(img); got != img {
		t.Error("Expected a fully transparent image to be returned uncropped")
	}
}

func TestParseColor(t *testing.T) {
	testCases := []struct {
		in      string
		want    color.NRGBA
		wantErr bool
	}{
		{"#9C9C9C", color.NRGBA{0x9c, 0x9c, 0x9c, 0xff}, false},
		{"fff", color.NRGBA{0xff, 0xff, 0xff, 0xff}, false},
		{"#10203040", color.NRGBA{0x10, 0x20, 0x30, 0x40}, false},
		{"#12345", color.NRGBA{}, true},
		{"#zzzzzz", color.NRGBA{}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseColor(tc.in)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidParameter) {
					t.Errorf("Expected ErrInvalidParameter, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseColor failed: %v", err)
			}
			if got != tc.want {
				t.Errorf("Expected %v, got %v", tc.want, got)
			}
		})
	}
}
