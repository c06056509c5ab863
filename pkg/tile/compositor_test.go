package tile

import (
	"image"
	"image/color"
	"math"
	"testing"
)

// createTestImage returns an opaque w×h image filled with c
func createTestImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func TestFieldSide_CoversDiagonal(t *testing.T) {
	sizes := [][2]int{{1, 1}, {3, 4}, {200, 100}, {100, 200}, {1920, 1080}, {7, 4093}}
	for _, s := range sizes {
		w, h := s[0], s[1]
		c := FieldSide(w, h)
		diag := math.Sqrt(float64(w*w + h*h))
		if float64(c) < diag {
			t.Errorf("%dx%d: side %d below diagonal %.3f", w, h, c, diag)
		}
		if float64(c) >= diag+1 {
			t.Errorf("%dx%d: side %d more than one pixel over diagonal %.3f", w, h, c, diag)
		}

		// Every target corner lies within the circle inscribed in the
		// centered field, which is what any rotation keeps covered.
		off := FieldOffset(w, h, c)
		cx := float64(off.X) + float64(c)/2
		cy := float64(off.Y) + float64(c)/2
		for _, p := range [][2]int{{0, 0}, {w, 0}, {0, h}, {w, h}} {
			d := math.Hypot(float64(p[0])-cx, float64(p[1])-cy)
			if d > float64(c)/2+1 {
				t.Errorf("%dx%d: corner %v at distance %.3f outside radius %.3f", w, h, p, d, float64(c)/2)
			}
		}
		if off.X > 0 || off.Y > 0 || off.X+c < w || off.Y+c < h {
			t.Errorf("%dx%d: field at %v with side %d does not contain the target", w, h, off, c)
		}
	}
}

func TestFillField_BrickStagger(t *testing.T) {
	mark := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	for i := range mark.Pix {
		mark.Pix[i] = 0xff
	}
	field := image.NewNRGBA(image.Rect(0, 0, 20, 20))
	fillField(field, mark, 2)

	// step x = 6, step y = 4; even rows start at 0, odd rows at -3
	opaque := func(x, y int) bool { return field.NRGBAAt(x, y).A == 0xff }

	for _, x := range []int{0, 3, 6, 9, 12, 15, 18, 19} {
		if !opaque(x, 0) {
			t.Errorf("row 0: expected tile at x=%d", x)
		}
	}
	for _, x := range []int{4, 5, 10, 11, 16, 17} {
		if opaque(x, 0) {
			t.Errorf("row 0: expected gap at x=%d", x)
		}
	}
	for _, x := range []int{0, 3, 4, 6, 9, 10} {
		if !opaque(x, 4) {
			t.Errorf("row 1: expected tile at x=%d", x)
		}
	}
	for _, x := range []int{1, 2, 7, 8} {
		if opaque(x, 4) {
			t.Errorf("row 1: expected gap at x=%d", x)
		}
	}
	if opaque(0, 2) || opaque(0, 3) {
		t.Error("Expected vertical spacing between rows")
	}
	// row 2 realigns with row 0: exactly two phases
	if !opaque(0, 8) || opaque(4, 8) {
		t.Error("Expected row 2 to repeat the row 0 phase")
	}
}

func TestApply_Scenario(t *testing.T) {
	style := DefaultStyle()
	style.Size = 40
	style.Spacing = 70
	style.Angle = 30

	tl, err := Build("HI", style)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	src := color.RGBA{R: 200, G: 30, B: 30, A: 255}
	out, err := tl.Apply(createTestImage(200, 100, src))
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if out.Bounds() != image.Rect(0, 0, 200, 100) {
		t.Fatalf("Expected 200x100 result, got %v", out.Bounds())
	}

	found := false
	for y := 100 / 3; y < 2*100/3 && !found; y++ {
		for x := 200 / 3; x < 2*200/3; x++ {
			p := out.RGBAAt(x, y)
			if p.A == 255 && p != src {
				found = true
				break
			}
		}
	}
	if !found {
		t.Error("Expected a blended opaque pixel in the central third")
	}

	for i := 3; i < len(out.Pix); i += 4 {
		if out.Pix[i] != 255 {
			t.Fatalf("Expected an opaque target to stay opaque, alpha %d at byte %d", out.Pix[i], i)
		}
	}
}

func TestApply_ZeroOpacityIsIdentity(t *testing.T) {
	style := DefaultStyle()
	style.Opacity = 0
	tl, err := Build("SECRET", style)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// Gray input exercises the mode conversion as well.
	gray := image.NewGray(image.Rect(0, 0, 64, 48))
	for i := range gray.Pix {
		gray.Pix[i] = uint8(i * 7)
	}

	out, err := tl.Apply(gray)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	want := Normalize(gray)
	for i := range want.Pix {
		if out.Pix[i] != want.Pix[i] {
			t.Fatalf("Pixel byte %d differs: got %d, want %d", i, out.Pix[i], want.Pix[i])
		}
	}
}

func TestApply_EmptyTextLeavesImageUnchanged(t *testing.T) {
	tl, err := Build("", DefaultStyle())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	src := createTestImage(50, 30, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	out, err := tl.Apply(src)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	for i := range src.Pix {
		if out.Pix[i] != src.Pix[i] {
			t.Fatalf("Pixel byte %d changed", i)
		}
	}
}

func TestApply_DoesNotMutateTarget(t *testing.T) {
	tl, err := Build("X", DefaultStyle())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	src := createTestImage(80, 80, color.RGBA{A: 255})
	before := append([]uint8(nil), src.Pix...)

	out, err := tl.Apply(src)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if out == src {
		t.Fatal("Expected a new raster")
	}
	for i := range before {
		if src.Pix[i] != before[i] {
			t.Fatal("Target was modified in place")
		}
	}
}

func TestApply_ReusesTileAcrossSizes(t *testing.T) {
	tl, err := Build("REUSE", DefaultStyle())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	// Large then small then large again walks the field pool through both
	// the reuse and the reallocation paths.
	for _, s := range [][2]int{{300, 200}, {40, 40}, {320, 240}, {1, 1}} {
		out, err := tl.Apply(createTestImage(s[0], s[1], color.RGBA{A: 255}))
		if err != nil {
			t.Fatalf("Apply(%v) failed: %v", s, err)
		}
		if out.Bounds().Dx() != s[0] || out.Bounds().Dy() != s[1] {
			t.Errorf("Expected %dx%d, got %v", s[0], s[1], out.Bounds())
		}
	}
}

func TestApply_InvalidInput(t *testing.T) {
	if _, err := Apply(createTestImage(4, 4, color.RGBA{}), nil, DefaultStyle()); err == nil {
		t.Error("Expected an error for a nil tile")
	}

	tl, err := Build("HI", DefaultStyle())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	style := DefaultStyle()
	style.Opacity = 2
	if _, err := Apply(createTestImage(4, 4, color.RGBA{}), tl, style); err == nil {
		t.Error("Expected an error for an invalid style")
	}
}

func TestGetField_ClearsRecycledBuffer(t *testing.T) {
	f := getField(8)
	for i := range f.Pix {
		f.Pix[i] = 0xff
	}
	putField(f)

	g := getField(6)
	if g.Bounds() != image.Rect(0, 0, 6, 6) || g.Stride != 24 {
		t.Fatalf("Unexpected field geometry %v stride %d", g.Bounds(), g.Stride)
	}
	for i, v := range g.Pix {
		if v != 0 {
			t.Fatalf("Expected a cleared field, byte %d is %d", i, v)
		}
	}
}
