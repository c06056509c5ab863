package tile

import (
	"os"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// fontCacheSize bounds the number of parsed font files kept in memory
const fontCacheSize = 16

// fonts caches parsed fonts by path. The empty path is the embedded Go Regular.
var fonts = newFontCache()

func newFontCache() *lru.Cache[string, *opentype.Font] {
	c, err := lru.New[string, *opentype.Font](fontCacheSize)
	if err != nil {
		panic(err)
	}
	return c
}

// loadFont returns the parsed font stored at path, reading and parsing it on
// first use.
func loadFont(path string) (*opentype.Font, error) {
	if f, ok := fonts.Get(path); ok {
		return f, nil
	}

	data := goregular.TTF
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, &InvalidParameterError{Field: "font", Reason: err.Error()}
		}
		data = b
	}

	f, err := opentype.Parse(data)
	if err != nil {
		return nil, &InvalidParameterError{Field: "font", Reason: err.Error()}
	}
	fonts.Add(path, f)
	return f, nil
}

// newFace opens a face of the given point size. Faces are not safe for
// concurrent use, so every Build gets its own.
func newFace(path string, size float64) (font.Face, error) {
	f, err := loadFont(path)
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, &InvalidParameterError{Field: "font", Reason: err.Error()}
	}
	return face, nil
}
