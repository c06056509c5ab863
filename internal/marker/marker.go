package marker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kiesman99/tilemark/pkg/tile"
)

// Defaults used when Config leaves a field zero
const (
	DefaultTimeout        = 30 * time.Second
	DefaultUserAgent      = "tilemark/1.0.0"
	DefaultMaxSourceBytes = 20 << 20
	// DefaultMaxFieldPixels bounds width²+height² of a source image. A 24
	// megapixel 6000x4000 photo needs 52 million.
	DefaultMaxFieldPixels = 100_000_000
)

// ErrSourceTooLarge is returned when a source image exceeds the byte limit
var ErrSourceTooLarge = errors.New("source image too large")

// Config configures a Marker
type Config struct {
	Timeout        time.Duration
	UserAgent      string
	MaxSourceBytes int64
	MaxFieldPixels int64
	Client         *http.Client // optional, overrides Timeout
}

// Options describes one watermark job. Exactly one of Data and SourceURL
// should be set; Data wins when both are.
type Options struct {
	Data      []byte
	SourceURL string
	Headers   map[string]string

	Text  string
	Style tile.Style
	// Tile skips rendering when the caller already holds one for Text and Style
	Tile *tile.Tile
}

// Result contains the watermarking result
type Result struct {
	ImageData  []byte // PNG
	Width      int
	Height     int
	TileWidth  int
	TileHeight int
	FieldSide  int
}

// FetchError represents a failure to download the source image
type FetchError struct {
	Message    string
	URL        string
	StatusCode *int
	Err        error
}

func (e *FetchError) Error() string {
	return e.Message
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Marker downloads, watermarks and encodes images
type Marker struct {
	client         *http.Client
	userAgent      string
	maxSourceBytes int64
	maxFieldPixels int64
}

// New creates a new marker instance
func New(cfg Config) *Marker {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.MaxSourceBytes <= 0 {
		cfg.MaxSourceBytes = DefaultMaxSourceBytes
	}
	if cfg.MaxFieldPixels <= 0 {
		cfg.MaxFieldPixels = DefaultMaxFieldPixels
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Marker{
		client:         client,
		userAgent:      cfg.UserAgent,
		maxSourceBytes: cfg.MaxSourceBytes,
		maxFieldPixels: cfg.MaxFieldPixels,
	}
}

// Mark performs the watermarking operation
func (m *Marker) Mark(ctx context.Context, opts *Options) (*Result, error) {
	data := opts.Data
	if data == nil {
		if opts.SourceURL == "" {
			return nil, fmt.Errorf("no source image given")
		}
		var err error
		data, err = m.Fetch(ctx, opts.SourceURL, opts.Headers)
		if err != nil {
			return nil, err
		}
	}
	if int64(len(data)) > m.maxSourceBytes {
		return nil, ErrSourceTooLarge
	}

	img, err := tile.DecodeBytesLimited(data, m.maxFieldPixels)
	if err != nil {
		return nil, err
	}

	t := opts.Tile
	if t == nil {
		t, err = tile.Build(opts.Text, opts.Style)
		if err != nil {
			return nil, err
		}
	}

	// Rendering is not interruptible; give up before starting if the caller
	// already has.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out, err := tile.Apply(img, t, opts.Style)
	if err != nil {
		return nil, err
	}

	imageData, err := tile.EncodePNGBytes(out)
	if err != nil {
		return nil, fmt.Errorf("failed to encode output image: %w", err)
	}

	b := out.Bounds()
	return &Result{
		ImageData:  imageData,
		Width:      b.Dx(),
		Height:     b.Dy(),
		TileWidth:  t.Width(),
		TileHeight: t.Height(),
		FieldSide:  tile.FieldSide(b.Dx(), b.Dy()),
	}, nil
}

// Fetch downloads the source image at url
func (m *Marker) Fetch(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{Message: fmt.Sprintf("invalid source URL: %v", err), URL: url, Err: err}
	}

	req.Header.Set("User-Agent", m.userAgent)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &FetchError{Message: fmt.Sprintf("source request failed: %v", err), URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		code := resp.StatusCode
		return nil, &FetchError{
			Message:    fmt.Sprintf("source returned HTTP %d", code),
			URL:        url,
			StatusCode: &code,
		}
	}

	// One byte over the limit is enough to tell it was exceeded.
	data, err := io.ReadAll(io.LimitReader(resp.Body, m.maxSourceBytes+1))
	if err != nil {
		return nil, &FetchError{Message: fmt.Sprintf("reading source body: %v", err), URL: url, Err: err}
	}
	if int64(len(data)) > m.maxSourceBytes {
		return nil, ErrSourceTooLarge
	}
	return data, nil
}
