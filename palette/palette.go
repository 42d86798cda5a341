// Package palette extracts a dominant colour from a background image so the
// studio can derive an accent that matches the photo.
package palette

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io"

	"github.com/EdlinOrg/prominentcolor"
	"github.com/sirupsen/logrus"

	"github.com/ByLCY/cardstudio/layout"
	canvasrenderer "github.com/ByLCY/cardstudio/renderer/canvas"
)

// ErrNoColor is returned when clustering produced no usable colour.
var ErrNoColor = errors.New("no colors extracted from image")

// DefaultColor is returned by Accent when extraction fails.
var DefaultColor = layout.RGB(128, 128, 128)

// Extractor computes prominent colours for image references.
type Extractor struct {
	fetcher canvasrenderer.Fetcher
	log     logrus.FieldLogger
}

// New returns an extractor that loads images through fetcher.
func New(fetcher canvasrenderer.Fetcher, log logrus.FieldLogger) *Extractor {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Extractor{fetcher: fetcher, log: log}
}

// Prominent returns the most prominent colour of the image at src.
func (e *Extractor) Prominent(ctx context.Context, src string) (layout.Color, error) {
	if e.fetcher == nil {
		return layout.Color{}, fmt.Errorf("palette: no fetcher")
	}
	data, _, err := e.fetcher.Fetch(ctx, src)
	if err != nil {
		return layout.Color{}, err
	}
	img, err := canvasrenderer.DecodeImage(data)
	if err != nil {
		return layout.Color{}, err
	}
	return FromImage(img, e.log)
}

// Accent returns an accent colour for src, falling back to DefaultColor.
func (e *Extractor) Accent(ctx context.Context, src string) layout.Color {
	c, err := e.Prominent(ctx, src)
	if err != nil {
		e.log.WithFields(logrus.Fields{"src": src, "error": err}).Debug("accent extraction failed")
		return DefaultColor
	}
	return Lift(c)
}

// FromImage clusters img and returns its most prominent colour. Background
// masks are tried first, then the whole image.
func FromImage(img image.Image, log logrus.FieldLogger) (c layout.Color, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("palette: panic recovered: %v", rec)
		}
	}()
	bounds := img.Bounds()
	if bounds.Empty() {
		return layout.Color{}, fmt.Errorf("image has empty bounds")
	}
	nrgba := image.NewNRGBA(bounds)
	draw.Draw(nrgba, bounds, img, bounds.Min, draw.Src)

	colors, err := prominentcolor.KmeansWithAll(prominentcolor.DefaultK, nrgba, prominentcolor.ArgumentDefault, prominentcolor.DefaultSize, prominentcolor.GetDefaultMasks())
	if err != nil || len(colors) == 0 {
		if log != nil {
			log.WithFields(logrus.Fields{"error": err}).Debug("retrying color extraction without masks")
		}
		colors, err = prominentcolor.KmeansWithAll(prominentcolor.DefaultK, nrgba, prominentcolor.ArgumentDefault, prominentcolor.DefaultSize, nil)
		if err != nil || len(colors) == 0 {
			return layout.Color{}, ErrNoColor
		}
	}
	top := colors[0].Color
	return layout.RGB(int(top.R), int(top.G), int(top.B)), nil
}

// Lift brightens dark colours so the accent stays readable on darkened
// backgrounds. Colours with luminance above the threshold are unchanged.
func Lift(c layout.Color) layout.Color {
	const threshold = 140.0
	l := Luminance(c)
	if l >= threshold {
		return c
	}
	k := (threshold - l) / (255 - l + 1)
	lift := func(v int) int {
		return min(255, v+int(float64(255-v)*k+0.5))
	}
	return layout.Color{R: lift(c.R), G: lift(c.G), B: lift(c.B), A: c.A}
}

// Luminance returns the Rec. 601 luma of c in [0,255].
func Luminance(c layout.Color) float64 {
	return 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
}
