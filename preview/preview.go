package preview

import (
	"errors"
	"sync"

	"github.com/ByLCY/cardstudio/layout"
)

// 预览只对规范分辨率的合成结果施加统一缩放，从不重新排版。

// ErrNoComposition is returned when a viewport has nothing to show.
var ErrNoComposition = errors.New("viewport has no composition")

// ComputeScale 返回容器宽度相对规范宽度（1080）的缩放系数。
func ComputeScale(containerWidth float64) float64 {
	if containerWidth <= 0 {
		return 0
	}
	return containerWidth / layout.CanonicalWidth
}

// Transform 是统一缩放变换。
type Transform struct {
	Scale float64 `json:"scale"`
}

// ForWidth 返回适配给定容器宽度的变换。
func ForWidth(containerWidth float64) Transform {
	return Transform{Scale: ComputeScale(containerWidth)}
}

// Point 缩放一个点。
func (t Transform) Point(x, y float64) (float64, float64) { return x * t.Scale, y * t.Scale }

// InvertPoint 把视图坐标映射回规范坐标。
func (t Transform) InvertPoint(x, y float64) (float64, float64) {
	if t.Scale == 0 {
		return 0, 0
	}
	return x / t.Scale, y / t.Scale
}

// Size 返回缩放后的画布尺寸。
func (t Transform) Size(c *layout.Composition) (w, h float64) {
	return c.Width * t.Scale, c.Height * t.Scale
}

// Inverse 返回逆变换。
func (t Transform) Inverse() Transform {
	if t.Scale == 0 {
		return Transform{}
	}
	return Transform{Scale: 1 / t.Scale}
}

// Apply 返回 c 的缩放副本；c 本身保持不变。
func (t Transform) Apply(c *layout.Composition) *layout.Composition {
	if c == nil {
		return nil
	}
	return scaleComposition(c, t.Scale)
}

// Invert 对缩放副本施加逆变换，得到规范坐标下的副本。
func (t Transform) Invert(c *layout.Composition) *layout.Composition {
	return t.Inverse().Apply(c)
}

func scaleComposition(c *layout.Composition, s float64) *layout.Composition {
	out := *c
	out.Width *= s
	out.Height *= s
	out.Layers = make([]layout.Layer, len(c.Layers))
	for i, l := range c.Layers {
		out.Layers[i] = scaleLayer(l, s)
	}
	return &out
}

func scaleLayer(l layout.Layer, s float64) layout.Layer {
	out := layout.Layer{
		Name:      l.Name,
		Gradients: l.Gradients[:0:0],
		Rects:     l.Rects[:0:0],
		Circles:   l.Circles[:0:0],
		Lines:     l.Lines[:0:0],
		Images:    l.Images[:0:0],
		Glyphs:    l.Glyphs[:0:0],
		Texts:     l.Texts[:0:0],
	}
	for _, g := range l.Gradients {
		g.X, g.Y, g.Width, g.Height, g.Radius = g.X*s, g.Y*s, g.Width*s, g.Height*s, g.Radius*s
		g.Stops = append(g.Stops[:0:0], g.Stops...)
		out.Gradients = append(out.Gradients, g)
	}
	for _, r := range l.Rects {
		r.X, r.Y, r.Width, r.Height, r.Radius, r.StrokeWidth = r.X*s, r.Y*s, r.Width*s, r.Height*s, r.Radius*s, r.StrokeWidth*s
		if r.FillColor != nil {
			r.FillColor = r.FillColor.Ptr()
		}
		out.Rects = append(out.Rects, r)
	}
	for _, c := range l.Circles {
		c.CX, c.CY, c.R, c.StrokeWidth = c.CX*s, c.CY*s, c.R*s, c.StrokeWidth*s
		if c.FillColor != nil {
			c.FillColor = c.FillColor.Ptr()
		}
		out.Circles = append(out.Circles, c)
	}
	for _, ln := range l.Lines {
		ln.X1, ln.Y1, ln.X2, ln.Y2, ln.Width = ln.X1*s, ln.Y1*s, ln.X2*s, ln.Y2*s, ln.Width*s
		out.Lines = append(out.Lines, ln)
	}
	for _, img := range l.Images {
		img.X, img.Y, img.Width, img.Height = img.X*s, img.Y*s, img.Width*s, img.Height*s
		if img.Fallback != nil {
			img.Fallback = img.Fallback.Ptr()
		}
		out.Images = append(out.Images, img)
	}
	for _, g := range l.Glyphs {
		g.X, g.Y, g.Size = g.X*s, g.Y*s, g.Size*s
		out.Glyphs = append(out.Glyphs, g)
	}
	for _, tb := range l.Texts {
		tb.X, tb.Y, tb.Width, tb.Height = tb.X*s, tb.Y*s, tb.Width*s, tb.Height*s
		tb.FontSize, tb.LineHeight = tb.FontSize*s, tb.LineHeight*s
		lines := tb.Lines[:0:0]
		for _, ln := range tb.Lines {
			// 行内容保持不变：缩放不会引起重新换行。
			ln.Width, ln.Height, ln.GapBefore = ln.Width*s, ln.Height*s, ln.GapBefore*s
			lines = append(lines, ln)
		}
		tb.Lines = lines
		out.Texts = append(out.Texts, tb)
	}
	return out
}

// Viewport 持有一份合成结果，并在容器尺寸变化时只重新计算缩放。
type Viewport struct {
	mu    sync.RWMutex
	comp  *layout.Composition
	width float64
	scale float64
}

// NewViewport 创建视口。
func NewViewport(comp *layout.Composition, containerWidth float64) *Viewport {
	v := &Viewport{comp: comp}
	v.Resize(containerWidth)
	return v
}

// Resize 更新容器宽度并返回新的缩放系数。合成结果不会被重新计算。
func (v *Viewport) Resize(containerWidth float64) float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.width = containerWidth
	v.scale = ComputeScale(containerWidth)
	return v.scale
}

// SetComposition 替换视口显示的合成结果（内容或布局变化时）。
func (v *Viewport) SetComposition(comp *layout.Composition) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.comp = comp
}

// Scale 返回当前缩放系数。
func (v *Viewport) Scale() float64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.scale
}

// Composition 返回规范坐标下的合成结果。
func (v *Viewport) Composition() *layout.Composition {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.comp
}

// View 返回当前尺寸下的缩放副本。
func (v *Viewport) View() (*layout.Composition, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.comp == nil {
		return nil, ErrNoComposition
	}
	return Transform{Scale: v.scale}.Apply(v.comp), nil
}

// Height 返回当前宽度下保持比例的容器高度。
func (v *Viewport) Height() float64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.comp == nil {
		return 0
	}
	return v.comp.Height * v.scale
}
