package canvasrenderer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/ByLCY/cardstudio/layout"
)

var errNoFetcher = errors.New("no image fetcher configured")

// DecodeImage decodes PNG, JPEG, GIF or WebP bytes.
func DecodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("解码图片失败: %w", err)
	}
	return img, nil
}

func (p *pass) load(ctx context.Context, src string) (image.Image, error) {
	if img, ok := p.images[src]; ok {
		return img, nil
	}
	if err, ok := p.failed[src]; ok {
		return nil, err
	}
	img, err := p.fetch(ctx, src)
	if err != nil {
		p.failed[src] = err
		return nil, err
	}
	p.images[src] = img
	return img, nil
}

func (p *pass) fetch(ctx context.Context, src string) (image.Image, error) {
	if p.r.fetcher == nil {
		return nil, errNoFetcher
	}
	data, _, err := p.r.fetcher.Fetch(ctx, src)
	if err != nil {
		return nil, err
	}
	return DecodeImage(data)
}

// pixelRect converts canvas units to a pixel rectangle on dst.
func (p *pass) pixelRect(x, y, w, h float64) image.Rectangle {
	return image.Rect(
		int(math.Round(x*p.ratio)),
		int(math.Round(y*p.ratio)),
		int(math.Round((x+w)*p.ratio)),
		int(math.Round((y+h)*p.ratio)),
	)
}

func (p *pass) image(ctx context.Context, box layout.ImageBox) {
	opacity := clamp01(box.Opacity)
	if opacity == 0 || box.Width <= 0 || box.Height <= 0 {
		return
	}
	rect := p.pixelRect(box.X, box.Y, box.Width, box.Height)
	if rect.Empty() {
		return
	}
	mask := &shapeMask{rect: rect, round: box.Round, alpha: opacity}

	img, err := p.load(ctx, box.Src)
	if err != nil {
		p.r.log.WithError(err).WithField("src", box.Src).Warn("image unavailable, drawing fallback")
		if box.Fallback != nil {
			fill := image.NewUniform(rgbaFromLayout(*box.Fallback))
			draw.DrawMask(p.dst, rect, fill, image.Point{}, mask, rect.Min, draw.Over)
		}
		return
	}

	scaled, target := fitImage(img, rect, box.Fit)
	draw.DrawMask(p.dst, target, scaled, image.Point{}, mask, target.Min, draw.Over)
}

// fitImage scales img into rect. Cover crops the source to the target aspect;
// contain letterboxes and returns the centered sub-rectangle it occupies.
func fitImage(img image.Image, rect image.Rectangle, fit string) (*image.RGBA, image.Rectangle) {
	sb := img.Bounds()
	sw, sh := float64(sb.Dx()), float64(sb.Dy())
	tw, th := float64(rect.Dx()), float64(rect.Dy())
	if sw <= 0 || sh <= 0 {
		return image.NewRGBA(image.Rectangle{}), image.Rectangle{}
	}

	if fit == layout.FitContain {
		scale := math.Min(tw/sw, th/sh)
		dw := max(1, int(math.Round(sw*scale)))
		dh := max(1, int(math.Round(sh*scale)))
		out := image.NewRGBA(image.Rect(0, 0, dw, dh))
		draw.CatmullRom.Scale(out, out.Bounds(), img, sb, draw.Src, nil)
		origin := image.Pt(rect.Min.X+(rect.Dx()-dw)/2, rect.Min.Y+(rect.Dy()-dh)/2)
		return out, image.Rectangle{Min: origin, Max: origin.Add(image.Pt(dw, dh))}
	}

	crop := sb
	if sw/sh > tw/th {
		cw := int(math.Round(sh * tw / th))
		off := (sb.Dx() - cw) / 2
		crop = image.Rect(sb.Min.X+off, sb.Min.Y, sb.Min.X+off+cw, sb.Max.Y)
	} else {
		ch := int(math.Round(sw * th / tw))
		off := (sb.Dy() - ch) / 2
		crop = image.Rect(sb.Min.X, sb.Min.Y+off, sb.Max.X, sb.Min.Y+off+ch)
	}
	out := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.CatmullRom.Scale(out, out.Bounds(), img, crop, draw.Src, nil)
	return out, rect
}

// shapeMask is a uniform alpha mask, optionally clipped to the ellipse
// inscribed in rect with a one-pixel antialiased edge.
type shapeMask struct {
	rect  image.Rectangle
	round bool
	alpha float64
}

func (m *shapeMask) ColorModel() color.Model { return color.AlphaModel }

func (m *shapeMask) Bounds() image.Rectangle { return m.rect }

func (m *shapeMask) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}).In(m.rect) {
		return color.Alpha{}
	}
	cov := 1.0
	if m.round {
		rx := float64(m.rect.Dx()) / 2
		ry := float64(m.rect.Dy()) / 2
		dx := (float64(x) + 0.5 - float64(m.rect.Min.X) - rx) / rx
		dy := (float64(y) + 0.5 - float64(m.rect.Min.Y) - ry) / ry
		d := math.Sqrt(dx*dx+dy*dy) * math.Min(rx, ry)
		cov = clamp01(math.Min(rx, ry) - d + 0.5)
	}
	return color.Alpha{A: uint8(math.Round(255 * cov * m.alpha))}
}

// gradient paints a linear gradient directly into dst.
func (p *pass) gradient(g layout.Gradient) {
	if len(g.Stops) == 0 {
		return
	}
	opacity := clamp01(g.Opacity)
	if opacity == 0 {
		return
	}
	full := p.pixelRect(g.X, g.Y, g.Width, g.Height)
	rect := full.Intersect(p.dst.Bounds())
	if rect.Empty() {
		return
	}
	fw, fh := float64(full.Dx()), float64(full.Dy())
	radius := g.Radius * p.ratio
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		fy := (float64(y-full.Min.Y) + 0.5) / fh
		for x := rect.Min.X; x < rect.Max.X; x++ {
			fx := (float64(x-full.Min.X) + 0.5) / fw
			if radius > 0 && !insideRounded(float64(x-full.Min.X)+0.5, float64(y-full.Min.Y)+0.5, fw, fh, radius) {
				continue
			}
			c := sampleStops(g.Stops, gradientT(g.Direction, fx, fy))
			blendOver(p.dst, x, y, c, c.A*opacity)
		}
	}
}

func gradientT(dir layout.GradientDirection, fx, fy float64) float64 {
	switch dir {
	case layout.ToTop:
		return 1 - fy
	case layout.ToRight:
		return fx
	case layout.ToBottomRight:
		return (fx + fy) / 2
	default:
		return fy
	}
}

// sampleStops interpolates straight (non-premultiplied) colors between stops.
func sampleStops(stops []layout.GradientStop, t float64) layout.Color {
	if t <= stops[0].Offset {
		return stops[0].Color
	}
	for i := 1; i < len(stops); i++ {
		a, b := stops[i-1], stops[i]
		if t > b.Offset {
			continue
		}
		span := b.Offset - a.Offset
		k := 0.0
		if span > 0 {
			k = (t - a.Offset) / span
		}
		return lerpColor(a.Color, b.Color, k)
	}
	return stops[len(stops)-1].Color
}

func lerpColor(a, b layout.Color, k float64) layout.Color {
	mix := func(x, y int) int { return int(math.Round(float64(x) + (float64(y)-float64(x))*k)) }
	return layout.Color{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: a.A + (b.A-a.A)*k}
}

func insideRounded(x, y, w, h, r float64) bool {
	r = math.Min(r, math.Min(w, h)/2)
	cx := math.Min(math.Max(x, r), w-r)
	cy := math.Min(math.Max(y, r), h-r)
	dx, dy := x-cx, y-cy
	return dx*dx+dy*dy <= r*r
}

func blendOver(dst *image.RGBA, x, y int, c layout.Color, alpha float64) {
	alpha = clamp01(alpha)
	if alpha == 0 {
		return
	}
	i := dst.PixOffset(x, y)
	px := dst.Pix[i : i+4 : i+4]
	inv := 1 - alpha
	px[0] = uint8(math.Round(float64(c.R)*alpha + float64(px[0])*inv))
	px[1] = uint8(math.Round(float64(c.G)*alpha + float64(px[1])*inv))
	px[2] = uint8(math.Round(float64(c.B)*alpha + float64(px[2])*inv))
	px[3] = uint8(math.Round(255*alpha + float64(px[3])*inv))
}
