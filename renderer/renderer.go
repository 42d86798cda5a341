package renderer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ByLCY/cardstudio/layout"
)

// ErrEmptyComposition is returned when there is nothing to draw.
var ErrEmptyComposition = errors.New("composition is empty")

// Renderer rasterizes a composition and encodes it into an image file.
type Renderer interface {
	Render(ctx context.Context, comp *layout.Composition, opts Options) ([]byte, error)
}

// Encoding is the output image format.
type Encoding string

const (
	PNG  Encoding = "png"
	JPEG Encoding = "jpeg"
)

// ParseEncoding accepts png, jpeg and jpg.
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "png":
		return PNG, nil
	case "jpeg", "jpg":
		return JPEG, nil
	}
	return "", fmt.Errorf("unsupported image encoding %q", s)
}

// Ext returns the file extension without the dot.
func (e Encoding) Ext() string {
	if e == JPEG {
		return "jpg"
	}
	return "png"
}

// MIME returns the content type of the encoding.
func (e Encoding) MIME() string {
	if e == JPEG {
		return "image/jpeg"
	}
	return "image/png"
}

// Defaults applied by Options.Normalize.
const (
	DefaultQuality    = 0.9
	MinQuality        = 0.5
	MaxQuality        = 1.0
	DefaultPixelRatio = 2.0
)

// Options controls rasterization and encoding.
type Options struct {
	Encoding Encoding
	// Quality is the JPEG quality in [0.5, 1]; ignored for PNG.
	Quality float64
	// PixelRatio multiplies the canonical resolution.
	PixelRatio float64
}

// Normalize fills defaults and clamps quality.
func (o Options) Normalize() Options {
	if o.Encoding != JPEG {
		o.Encoding = PNG
	}
	switch {
	case o.Quality == 0:
		o.Quality = DefaultQuality
	case o.Quality < MinQuality:
		o.Quality = MinQuality
	case o.Quality > MaxQuality:
		o.Quality = MaxQuality
	}
	if o.PixelRatio <= 0 {
		o.PixelRatio = DefaultPixelRatio
	}
	return o
}
