package canvasrenderer

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"golang.org/x/image/draw"

	"github.com/ByLCY/cardstudio/layout"
	"github.com/ByLCY/cardstudio/renderer"
)

// Fetcher returns the bytes and content type behind an image reference.
type Fetcher interface {
	Fetch(ctx context.Context, src string) ([]byte, string, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, src string) ([]byte, string, error)

func (f FetcherFunc) Fetch(ctx context.Context, src string) ([]byte, string, error) {
	return f(ctx, src)
}

// Renderer draws compositions via github.com/tdewolff/canvas.
// Vector elements go through the canvas rasterizer; gradients and bitmaps are
// composited in pixel space so that cover/contain fitting stays exact.
type Renderer struct {
	fetcher   Fetcher
	fontBlobs map[string][]byte // by font name
	log       logrus.FieldLogger

	fontMu         sync.Mutex
	fontFamilies   map[string]*fontFamilyEntry
	fallbackFamily *canvas.FontFamily
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ layout.Typesetter = (*Renderer)(nil)
)

// Options configures the canvas renderer.
type Options struct {
	// Fetcher loads images referenced by the composition. Nil disables images;
	// every image box then falls back to its fill color.
	Fetcher Fetcher
	// Fonts override embedded font files by FontResource name.
	Fonts  map[string][]byte
	Logger logrus.FieldLogger
}

// NewRenderer creates a renderer with the given options.
func NewRenderer(opts Options) *Renderer {
	log := opts.Logger
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	r := &Renderer{
		fetcher:      opts.Fetcher,
		fontBlobs:    map[string][]byte{},
		log:          log,
		fontFamilies: map[string]*fontFamilyEntry{},
	}
	for name, data := range opts.Fonts {
		if name != "" && len(data) > 0 {
			r.fontBlobs[name] = data
		}
	}
	return r
}

// Render rasterizes the composition and encodes it as PNG or JPEG.
func (r *Renderer) Render(ctx context.Context, comp *layout.Composition, opts renderer.Options) ([]byte, error) {
	opts = opts.Normalize()
	img, err := r.Rasterize(ctx, comp, opts.PixelRatio)
	if err != nil {
		return nil, err
	}
	return Encode(img, opts)
}

// Encode writes img in the requested encoding.
func Encode(img image.Image, opts renderer.Options) ([]byte, error) {
	opts = opts.Normalize()
	var buf bytes.Buffer
	switch opts.Encoding {
	case renderer.JPEG:
		q := int(math.Round(opts.Quality * 100))
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: q}); err != nil {
			return nil, fmt.Errorf("编码 JPEG 失败: %w", err)
		}
	default:
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("编码 PNG 失败: %w", err)
		}
	}
	return buf.Bytes(), nil
}

// Rasterize draws the composition at pixelRatio times its canonical size.
func (r *Renderer) Rasterize(ctx context.Context, comp *layout.Composition, pixelRatio float64) (*image.RGBA, error) {
	if comp == nil || comp.Width <= 0 || comp.Height <= 0 {
		return nil, renderer.ErrEmptyComposition
	}
	if pixelRatio <= 0 {
		pixelRatio = renderer.DefaultPixelRatio
	}
	w := int(math.Ceil(comp.Width * pixelRatio))
	h := int(math.Ceil(comp.Height * pixelRatio))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(rgbaFromLayout(comp.Background)), image.Point{}, draw.Src)

	p := &pass{
		r:      r,
		dst:    dst,
		ratio:  pixelRatio,
		w:      comp.Width,
		h:      comp.Height,
		images: map[string]image.Image{},
		failed: map[string]error{},
	}
	for _, layer := range comp.Layers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := p.drawLayer(ctx, layer); err != nil {
			return nil, err
		}
	}
	p.flush()
	return dst, nil
}

// pass accumulates vector drawing and flushes it into dst before any
// pixel-space compositing so that paint order is preserved.
type pass struct {
	r     *Renderer
	dst   *image.RGBA
	ratio float64
	w, h  float64

	c   *canvas.Canvas
	ctx *canvas.Context

	images map[string]image.Image
	failed map[string]error
}

func (p *pass) vector() *canvas.Context {
	if p.ctx == nil {
		p.c = canvas.New(p.w, p.h)
		p.ctx = canvas.NewContext(p.c)
		p.ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点
	}
	return p.ctx
}

func (p *pass) flush() {
	if p.c == nil {
		return
	}
	img := rasterizer.Draw(p.c, canvas.DPMM(p.ratio), canvas.DefaultColorSpace)
	draw.Draw(p.dst, p.dst.Bounds(), img, image.Point{}, draw.Over)
	p.c, p.ctx = nil, nil
}

func (p *pass) drawLayer(ctx context.Context, l layout.Layer) error {
	if len(l.Gradients) > 0 {
		p.flush()
		for _, g := range l.Gradients {
			p.gradient(g)
		}
	}
	for _, rc := range l.Rects {
		p.rect(rc)
	}
	for _, c := range l.Circles {
		p.circle(c)
	}
	for _, ln := range l.Lines {
		p.line(ln)
	}
	if len(l.Images) > 0 {
		p.flush()
		for _, img := range l.Images {
			if err := ctx.Err(); err != nil {
				return err
			}
			p.image(ctx, img)
		}
	}
	for _, g := range l.Glyphs {
		drawGlyph(p.vector(), g)
	}
	for _, tb := range l.Texts {
		if err := p.text(tb); err != nil {
			return err
		}
	}
	return nil
}

func (p *pass) setStroke(ctx *canvas.Context, col layout.Color, width float64) {
	if width <= 0 || col.A <= 0 {
		ctx.SetStrokeColor(color.RGBA{})
		return
	}
	ctx.SetStrokeColor(colorFromLayout(col))
	ctx.SetStrokeWidth(width)
}

func setFill(ctx *canvas.Context, col *layout.Color) {
	if col == nil {
		ctx.SetFillColor(color.RGBA{})
		return
	}
	ctx.SetFillColor(colorFromLayout(*col))
}

func (p *pass) rect(rc layout.Rect) {
	if rc.Width <= 0 || rc.Height <= 0 {
		return
	}
	ctx := p.vector()
	setFill(ctx, rc.FillColor)
	p.setStroke(ctx, rc.StrokeColor, rc.StrokeWidth)
	radius := math.Min(rc.Radius, math.Min(rc.Width, rc.Height)/2)
	if radius > 0 {
		ctx.DrawPath(rc.X, rc.Y, canvas.RoundedRectangle(rc.Width, rc.Height, radius))
		return
	}
	ctx.DrawPath(rc.X, rc.Y, canvas.Rectangle(rc.Width, rc.Height))
}

func (p *pass) circle(c layout.Circle) {
	if c.R <= 0 {
		return
	}
	ctx := p.vector()
	setFill(ctx, c.FillColor)
	p.setStroke(ctx, c.StrokeColor, c.StrokeWidth)
	ctx.DrawPath(c.CX, c.CY, canvas.Circle(c.R))
}

func (p *pass) line(ln layout.Line) {
	ctx := p.vector()
	ctx.SetFillColor(color.RGBA{})
	w := ln.Width
	if w <= 0 {
		w = 1
	}
	p.setStroke(ctx, ln.Color, w)
	path := &canvas.Path{}
	path.MoveTo(0, 0)
	path.LineTo(ln.X2-ln.X1, ln.Y2-ln.Y1)
	ctx.DrawPath(ln.X1, ln.Y1, path)
}

func (p *pass) text(tb layout.TextBox) error {
	fontRes := layout.ResolveFont(tb.Font)
	face, err := p.r.fontFace(fontRes, layout.ToPt(tb.FontSize), tb.Color)
	if err != nil {
		return err
	}
	ctx := p.vector()

	lines := tb.Lines
	if len(lines) == 0 {
		lines = []layout.TextLine{{Content: tb.Content, Width: tb.Width, Height: tb.LineHeight}}
	}

	// 处理水平对齐：left（默认）/center/right。
	var textAlign canvas.TextAlign
	var anchorX float64
	switch strings.ToLower(tb.Align) {
	case "center":
		textAlign = canvas.Center
		anchorX = tb.X + tb.Width/2
	case "right", "end":
		textAlign = canvas.Right
		anchorX = tb.X + tb.Width
	default:
		textAlign = canvas.Left
		anchorX = tb.X
	}

	ascent := face.Metrics().Ascent
	cursorY := tb.Y
	for _, line := range lines {
		cursorY += line.GapBefore
		lineHeight := line.Height
		if lineHeight <= 0 {
			lineHeight = tb.FontSize
		}
		if line.Content != "" {
			ctx.DrawText(anchorX, cursorY+ascent, canvas.NewTextLine(face, line.Content, textAlign))
		}
		cursorY += lineHeight
	}
	return nil
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, clamp01(c.A))
}

func rgbaFromLayout(c layout.Color) color.RGBA {
	a := clamp01(c.A)
	return color.RGBA{
		R: uint8(math.Round(float64(c.R) * a)),
		G: uint8(math.Round(float64(c.G) * a)),
		B: uint8(math.Round(float64(c.B) * a)),
		A: uint8(math.Round(255 * a)),
	}
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
