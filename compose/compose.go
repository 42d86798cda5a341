package compose

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ByLCY/cardstudio/content"
	"github.com/ByLCY/cardstudio/layout"
)

// 合成器把布局函数的内容图层与共享的背景、可读性渐变、分类徽章和水印叠加为完整画面。

// Resolver 把图片引用转换为可访问地址（通常经由同源图片中继）。
type Resolver interface {
	Resolve(ref string) string
}

// ResolverFunc 将函数适配为 Resolver。
type ResolverFunc func(ref string) string

func (f ResolverFunc) Resolve(ref string) string { return f(ref) }

// 水印相对画布边缘的偏移与最大尺寸。
const (
	WatermarkOffsetY = 64.0
	WatermarkOffsetX = 48.0
	WatermarkMaxW    = 280.0
	WatermarkMaxH    = 160.0
	BadgeX           = 48.0
	BadgeY           = 64.0
)

// PlaceholderLabel 是没有背景图时显示的文字。
const PlaceholderLabel = "Görsel Seçilmedi"

// Options 配置合成器。
type Options struct {
	Resolver Resolver
	// DefaultWatermark 在内容未指定水印图片时使用；为空则退回文字水印。
	DefaultWatermark string
	// Brand 是文字水印内容。
	Brand      string
	Theme      *layout.Theme
	Typesetter layout.Typesetter
	Logger     logrus.FieldLogger
}

// Renderer 生成规范分辨率的合成结果。它只读取内容，不做任何修改。
type Renderer struct {
	resolver         Resolver
	defaultWatermark string
	brand            string
	theme            layout.Theme
	ts               layout.Typesetter
	log              logrus.FieldLogger
}

// New 创建合成器。
func New(opts Options) *Renderer {
	r := &Renderer{
		resolver:         opts.Resolver,
		defaultWatermark: strings.TrimSpace(opts.DefaultWatermark),
		brand:            strings.TrimSpace(opts.Brand),
		theme:            layout.DefaultTheme(),
		ts:               opts.Typesetter,
		log:              opts.Logger,
	}
	if opts.Theme != nil {
		r.theme = *opts.Theme
	}
	if r.brand == "" {
		r.brand = content.DefaultBrand
	}
	if r.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		r.log = l
	}
	return r
}

// WithTheme 返回使用指定配色的副本。
func (r *Renderer) WithTheme(t layout.Theme) *Renderer {
	cp := *r
	cp.theme = t
	return &cp
}

// WithDefaultWatermark 返回使用指定默认水印的副本。
func (r *Renderer) WithDefaultWatermark(ref string) *Renderer {
	cp := *r
	cp.defaultWatermark = strings.TrimSpace(ref)
	return &cp
}

// Theme 返回当前配色。
func (r *Renderer) Theme() layout.Theme { return r.theme }

// RenderByName 按名称选择布局，未知名称回退到默认布局并记录调试日志。
func (r *Renderer) RenderByName(c content.Renderable, format layout.Format, name string) (*layout.Composition, error) {
	id, _, ok := layout.Lookup(name)
	if !ok {
		r.log.WithFields(logrus.Fields{"layout": name, "fallback": id}).Debug("unknown layout, using default")
	}
	return r.Render(c, format, id)
}

// Render 在规范分辨率下实例化布局。画幅未知或水印锚点非法时返回错误。
func (r *Renderer) Render(c content.Renderable, format layout.Format, id layout.ID) (*layout.Composition, error) {
	if _, err := layout.ParseFormat(string(format)); err != nil {
		return nil, err
	}
	if _, ok := layout.ParseID(string(id)); !ok {
		r.log.WithFields(logrus.Fields{"layout": id, "fallback": layout.Default}).Debug("unknown layout, using default")
		id = layout.Default
	}
	if err := c.Watermark.Validate(); err != nil {
		return nil, err
	}
	c.Watermark = c.Watermark.Clamped()

	w, h := format.Size()
	in := layout.Input{
		Content:    c,
		Format:     format,
		Theme:      r.theme,
		Typesetter: r.ts,
		Resolve:    r.resolve,
	}

	contentLayer := layout.Get(id)(in)
	contentLayer.Name = layout.LayerContent

	comp := &layout.Composition{
		Width:      w,
		Height:     h,
		Format:     format,
		Layout:     id,
		Background: layout.MustColor(content.ColorBackground, layout.RGB(10, 10, 10)),
		Layers: []layout.Layer{
			r.background(c, w, h, in),
			r.overlay(id, w, h),
			contentLayer,
		},
	}
	if id.ShowsCategoryBadge() {
		comp.Layers = append(comp.Layers, layout.CategoryBadge(in, BadgeX, BadgeY))
	} else {
		comp.Layers = append(comp.Layers, layout.Layer{Name: layout.LayerBadge})
	}
	comp.Layers = append(comp.Layers, r.watermark(c.Watermark, w, h, in))
	return comp, nil
}

func (r *Renderer) resolve(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || r.resolver == nil {
		return ref
	}
	return r.resolver.Resolve(ref)
}

var (
	gray600 = layout.RGB(75, 85, 99)
	gray700 = layout.RGB(55, 65, 81)
	gray800 = layout.RGB(31, 41, 55)
	gray950 = layout.RGB(3, 7, 18)
)

// background 返回背景图层：有图时铺满裁切，无图时绘制确定性的占位面板。
func (r *Renderer) background(c content.Renderable, w, h float64, in layout.Input) layout.Layer {
	l := layout.Layer{Name: layout.LayerBackground}
	if src := r.resolve(c.BackgroundRef); src != "" {
		l.Images = append(l.Images, layout.ImageBox{
			Role: layout.RoleBackground, Src: src, Width: w, Height: h,
			Fit: layout.FitCover, Opacity: 1, Fallback: gray800.Ptr(),
		})
		return l
	}

	l.Gradients = append(l.Gradients, layout.Gradient{
		Role: layout.RolePlaceholder, Width: w, Height: h, Direction: layout.ToBottomRight, Opacity: 1,
		Stops: []layout.GradientStop{{Offset: 0, Color: gray800}, {Offset: 1, Color: gray950}},
	})
	const icon, gap, size = 120.0, 32.0, 48.0
	label := layout.Wordmark(in, layout.Upper(PlaceholderLabel), size, gray600.WithAlpha(0.5))
	label.Role = layout.RolePlaceholder
	blockH := icon + gap + label.Height
	top := (h - blockH) / 2
	l.Glyphs = append(l.Glyphs, layout.Glyph{
		Role: layout.RolePlaceholder, Name: layout.GlyphChef,
		X: (w - icon) / 2, Y: top, Size: icon, Color: gray700.WithAlpha(0.5),
	})
	label.X = (w - label.Width) / 2
	label.Y = top + icon + gap
	l.Texts = append(l.Texts, label)
	return l
}

// overlay 返回可读性渐变；自带实色面板的布局不需要。
func (r *Renderer) overlay(id layout.ID, w, h float64) layout.Layer {
	l := layout.Layer{Name: layout.LayerOverlay}
	if id.DrawsOwnPanel() {
		return l
	}
	l.Gradients = append(l.Gradients,
		layout.Gradient{
			Role: layout.RoleReadability, Width: w, Height: h, Direction: layout.ToTop, Opacity: 0.9,
			Stops: []layout.GradientStop{
				{Offset: 0, Color: layout.Black(0.95)},
				{Offset: 0.5, Color: layout.Black(0.4)},
				{Offset: 1, Color: layout.Black(0)},
			},
		},
		layout.Gradient{
			Role: layout.RoleReadability, Width: w, Height: h, Direction: layout.ToBottom, Opacity: 0.6,
			Stops: []layout.GradientStop{
				{Offset: 0, Color: layout.Black(0.6)},
				{Offset: 0.5, Color: layout.Black(0)},
				{Offset: 1, Color: layout.Black(0)},
			},
		},
	)
	return l
}

// watermark 返回水印图层。图片来源依次为：内容指定、默认水印、文字水印。
// 透明度作用于整个水印，缩放以水印框中心为基准。
func (r *Renderer) watermark(wm content.Watermark, w, h float64, in layout.Input) layout.Layer {
	l := layout.Layer{Name: layout.LayerWatermark}
	if !wm.Visible {
		return l
	}
	ref := strings.TrimSpace(wm.ImageRef)
	if ref == "" {
		ref = r.defaultWatermark
	}
	if ref != "" {
		x, y, bw, bh := scaleAbout(anchorBox(wm.Position, WatermarkMaxW, WatermarkMaxH, w, h), wm.Scale)
		l.Images = append(l.Images, layout.ImageBox{
			Role: layout.RoleWatermark, Src: r.resolve(ref),
			X: x, Y: y, Width: bw, Height: bh,
			Fit: layout.FitContain, Opacity: wm.Opacity,
		})
		return l
	}

	size := in.Format.Typography().Logo
	mark := layout.Wordmark(in, r.brand, size, layout.White(wm.Opacity))
	x, y, _, _ := scaleAbout(anchorBox(wm.Position, mark.Width, mark.Height, w, h), wm.Scale)
	scaled := layout.Wordmark(in, r.brand, size*wm.Scale, layout.White(wm.Opacity))
	scaled.X, scaled.Y = x, y
	l.Texts = append(l.Texts, scaled)
	return l
}

// box 是锚定前后的水印框。
type box struct{ X, Y, W, H float64 }

// anchorBox 按锚点放置 bw×bh 的框。
func anchorBox(a content.Anchor, bw, bh, w, h float64) box {
	switch a {
	case content.AnchorTopLeft:
		return box{WatermarkOffsetX, WatermarkOffsetY, bw, bh}
	case content.AnchorBottomLeft:
		return box{WatermarkOffsetX, h - WatermarkOffsetY - bh, bw, bh}
	case content.AnchorBottomRight:
		return box{w - WatermarkOffsetX - bw, h - WatermarkOffsetY - bh, bw, bh}
	case content.AnchorCenter:
		return box{(w - bw) / 2, (h - bh) / 2, bw, bh}
	default:
		return box{w - WatermarkOffsetX - bw, WatermarkOffsetY, bw, bh}
	}
}

// scaleAbout 以框中心为基准缩放。
func scaleAbout(b box, s float64) (x, y, w, h float64) {
	cx, cy := b.X+b.W/2, b.Y+b.H/2
	w, h = b.W*s, b.H*s
	return cx - w/2, cy - h/2, w, h
}

// Describe 返回合成结果的简短描述，用于日志。
func Describe(c *layout.Composition) string {
	if c == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s/%s %gx%g", c.Layout, c.Format, c.Width, c.Height)
}
