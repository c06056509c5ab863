package batch

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"

	"github.com/kiesman99/tilemark/pkg/tile"
)

// Options controls where results go and how many files are marked at once
type Options struct {
	Output  string // file, directory, or empty for stdout
	Workers int
	Logger  logrus.FieldLogger
	Stdout  io.Writer // defaults to os.Stdout
}

// Marker watermarks local files with a single pre-rendered tile
type Marker struct {
	tile    *tile.Tile
	options *Options
}

// NewMarker renders the tile once for every file that follows
func NewMarker(text string, style tile.Style, opts *Options) (*Marker, error) {
	t, err := tile.Build(text, style)
	if err != nil {
		return nil, err
	}
	if opts == nil {
		opts = &Options{}
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return &Marker{tile: t, options: opts}, nil
}

// Tile returns the tile shared by every file
func (m *Marker) Tile() *tile.Tile {
	return m.tile
}

// MarkFiles watermarks every path and writes the PNG results
func (m *Marker) MarkFiles(paths []string) error {
	if len(paths) == 0 {
		return fmt.Errorf("no input files provided")
	}

	if len(paths) == 1 {
		return m.markOne(paths[0], m.options.Output)
	}

	dir := m.options.Output
	if dir == "" {
		return fmt.Errorf("%d input files need an output directory", len(paths))
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return fmt.Errorf("output %q is not a directory", dir)
	}

	outputs := make(map[string]string, len(paths))
	for _, path := range paths {
		out := OutputPath(dir, path)
		if prev, ok := outputs[out]; ok {
			return fmt.Errorf("%s and %s both write %s", prev, path, out)
		}
		outputs[out] = path
	}

	p := pool.New().WithErrors().WithMaxGoroutines(m.options.Workers)
	for out, path := range outputs {
		out, path := out, path
		p.Go(func() error {
			return m.markOne(path, out)
		})
	}
	return p.Wait()
}

// OutputPath returns <dir>/<base name of input>.png
func OutputPath(dir, input string) string {
	base := filepath.Base(input)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, base+".png")
}

func (m *Marker) markOne(input, output string) error {
	log := m.options.Logger.WithField("file", input)

	// Check if output is to terminal
	if output == "" && m.options.Stdout == nil {
		if stat, _ := os.Stdout.Stat(); stat != nil && (stat.Mode()&os.ModeCharDevice) != 0 {
			return fmt.Errorf("didn't specify output file and standard output is a terminal")
		}
	}

	f, err := os.Open(input)
	if err != nil {
		return err
	}
	img, err := tile.Decode(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}

	out, err := m.tile.Apply(img)
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}

	if output == "" {
		w := m.options.Stdout
		if w == nil {
			w = os.Stdout
		}
		if err := tile.EncodePNG(w, out); err != nil {
			return fmt.Errorf("failed to write PNG: %w", err)
		}
		log.Debug("wrote watermarked image to stdout")
		return nil
	}

	if err := writeFile(output, out); err != nil {
		return fmt.Errorf("failed to write PNG: %w", err)
	}
	log.WithField("output", output).Info("watermarked")
	return nil
}

func writeFile(path string, img image.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	return tile.EncodePNG(f, img)
}
