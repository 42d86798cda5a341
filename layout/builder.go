package layout

import (
	"math"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ByLCY/cardstudio/content"
)

// 该文件提供布局函数共用的构建器：文本排版、徽章、头像与面板。

var upperCaser = cases.Upper(language.Turkish)

// Upper 按土耳其语规则转为大写（i → İ）。
func Upper(s string) string { return upperCaser.String(s) }

// builder 在一个图层上累积元素。
type builder struct {
	in    Input
	layer Layer
	typo  Typography
	w, h  float64
}

func newBuilder(in Input) *builder {
	w, h := in.Format.Size()
	return &builder{
		in:    in,
		layer: Layer{Name: LayerContent},
		typo:  in.Format.Typography(),
		w:     w,
		h:     h,
	}
}

// group 返回共享输入的空白子构建器，先在原点排版再整体平移合并。
func (b *builder) group() *builder {
	g := *b
	g.layer = Layer{Name: b.layer.Name}
	return &g
}

func (b *builder) merge(g *builder, dx, dy float64) {
	g.layer.Translate(dx, dy)
	b.layer.Append(g.layer)
}

// frame 返回内容区域：安全区与 pad 逐边取较大值。
func (b *builder) frame(pad Insets) Box {
	return Box{W: b.w, H: b.h}.Inset(b.in.Format.SafeArea().AtLeast(pad))
}

func (b *builder) shown(f content.Field) bool {
	return b.in.Content.Visibility.Shown(f)
}

func (b *builder) resolve(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || b.in.Resolve == nil {
		return ref
	}
	return b.in.Resolve(ref)
}

// textStyle 描述文本样式，LineHeight 为行高倍数。
type textStyle struct {
	Font       string
	Size       float64
	LineHeight float64
	Color      Color
	Align      string
	MaxLines   int
	Upper      bool
}

// text 排版并追加文本块，返回的 TextBox.Height 为总高度。
func (b *builder) text(role, s string, x, y, width float64, st textStyle) TextBox {
	tb := b.composeText(role, s, x, y, width, st)
	b.layer.Texts = append(b.layer.Texts, tb)
	return tb
}

func (b *builder) composeText(role, s string, x, y, width float64, st textStyle) TextBox {
	if st.Upper {
		s = Upper(s)
	}
	fontName := st.Font
	if fontName == "" {
		fontName = FontBody
	}
	fontSize := st.Size
	if fontSize <= 0 {
		fontSize = 24
	}
	factor := st.LineHeight
	if factor <= 0 {
		factor = 1.4
	}
	lineHeight := fontSize * factor

	lines := layoutLines(s, width, ResolveFont(fontName), fontSize, lineHeight, b.in.Typesetter, "")
	if st.MaxLines > 0 && len(lines) > st.MaxLines {
		lines = lines[:st.MaxLines]
		last := &lines[len(lines)-1]
		last.Content = strings.TrimRight(last.Content, " ") + "…"
	}

	totalHeight := 0.0
	defaultLeading := math.Max(lineHeight-fontSize, 0)
	for i := range lines {
		if lines[i].Height <= 0 {
			lines[i].Height = fontSize
		}
		if i == 0 {
			lines[i].GapBefore = 0
		} else if lines[i].GapBefore <= 0 {
			lines[i].GapBefore = defaultLeading
		}
		totalHeight += lines[i].GapBefore + lines[i].Height
	}

	tb := TextBox{
		Role:       role,
		Content:    s,
		X:          x,
		Y:          y,
		Width:      width,
		LineHeight: lineHeight,
		Font:       fontName,
		FontSize:   fontSize,
		Color:      st.Color,
		Lines:      lines,
		Height:     totalHeight,
	}
	switch strings.ToLower(st.Align) {
	case "center":
		tb.Align = "center"
	case "right", "end":
		tb.Align = "right"
	}
	return tb
}

// measure 返回单行文本宽度。
func (b *builder) measure(s, font string, size float64) float64 {
	lines := layoutLines(s, 0, ResolveFont(font), size, size*1.2, b.in.Typesetter, "nowrap")
	w := 0.0
	for _, l := range lines {
		w = math.Max(w, l.Width)
	}
	return w
}

// layoutLines 调用排版后端；后端缺失或失败时按字符数估算。
func layoutLines(s string, width float64, font FontResource, fontSize, lineHeight float64, ts Typesetter, wrap string) []TextLine {
	if ts != nil {
		lines, err := ts.LayoutLines(s, width, font, fontSize, lineHeight, wrap)
		if err == nil {
			if len(lines) == 0 {
				lines = []TextLine{{Content: "", Width: 0, Height: fontSize}}
			}
			lines[0].GapBefore = 0
			return lines
		}
	}
	parts := strings.Split(s, "\n")
	out := make([]TextLine, 0, len(parts))
	leading := math.Max(lineHeight-fontSize, 0)
	for _, l := range parts {
		w := estimateTextWidth(l, fontSize)
		if width > 0 && w > width {
			w = width
		}
		out = append(out, TextLine{Content: l, Width: w, Height: fontSize, GapBefore: leading})
	}
	out[0].GapBefore = 0
	return out
}

func estimateTextWidth(s string, fontSize float64) float64 {
	if fontSize <= 0 {
		fontSize = 12
	}
	return fontSize * 0.55 * float64(utf8.RuneCountInString(s))
}

// chipStyle 描述圆角标签。Radius < 0 表示胶囊形。
type chipStyle struct {
	Text        textStyle
	PadX, PadY  float64
	Fill        Color
	Stroke      Color
	StrokeWidth float64
	Radius      float64
	Glyph       GlyphName
	GlyphColor  Color
}

type chipItem struct {
	Role  string
	Label string
	Style chipStyle
}

const glyphGap = 8.0

func (b *builder) chipSize(label string, st chipStyle) (w, h float64) {
	tw := b.measure(label, st.Text.Font, st.Text.Size)
	w = tw + 2*st.PadX
	if st.Glyph != "" {
		w += st.Text.Size + glyphGap
	}
	h = st.Text.Size*1.2 + 2*st.PadY
	return w, h
}

// chip 在 (x, y) 处追加标签，返回其尺寸。
func (b *builder) chip(role, label string, x, y float64, st chipStyle) (w, h float64) {
	w, h = b.chipSize(label, st)
	radius := st.Radius
	if radius < 0 {
		radius = h / 2
	}
	b.layer.Rects = append(b.layer.Rects, Rect{
		Role:        role,
		X:           x,
		Y:           y,
		Width:       w,
		Height:      h,
		Radius:      radius,
		FillColor:   st.Fill.Ptr(),
		StrokeColor: st.Stroke,
		StrokeWidth: st.StrokeWidth,
	})
	tx := x + st.PadX
	if st.Glyph != "" {
		b.glyph(role, st.Glyph, tx, y+(h-st.Text.Size)/2, st.Text.Size, st.GlyphColor)
		tx += st.Text.Size + glyphGap
	}
	ts := st.Text
	ts.LineHeight = 1.2
	b.text(role, label, tx, y+st.PadY, w-(tx-x)-st.PadX+1, ts)
	return w, h
}

// chipRow 以流式换行排列标签，返回占用高度。
func (b *builder) chipRow(items []chipItem, x, y, maxWidth, gap float64) float64 {
	if len(items) == 0 {
		return 0
	}
	cx, cy, rowH := x, y, 0.0
	for _, it := range items {
		w, h := b.chipSize(it.Label, it.Style)
		if cx > x && cx+w > x+maxWidth {
			cx = x
			cy += rowH + gap
			rowH = 0
		}
		b.chip(it.Role, it.Label, cx, cy, it.Style)
		cx += w + gap
		rowH = math.Max(rowH, h)
	}
	return cy + rowH - y
}

func (b *builder) glyph(role string, name GlyphName, x, y, size float64, c Color) {
	b.layer.Glyphs = append(b.layer.Glyphs, Glyph{Role: role, Name: name, X: x, Y: y, Size: size, Color: c})
}

func (b *builder) rect(role string, x, y, w, h, radius float64, fill Color) {
	b.layer.Rects = append(b.layer.Rects, Rect{Role: role, X: x, Y: y, Width: w, Height: h, Radius: radius, FillColor: fill.Ptr()})
}

// panel 追加带描边的面板。
func (b *builder) panel(role string, x, y, w, h, radius float64, fill, stroke Color, strokeWidth float64) {
	b.layer.Rects = append(b.layer.Rects, Rect{
		Role: role, X: x, Y: y, Width: w, Height: h, Radius: radius,
		FillColor: fill.Ptr(), StrokeColor: stroke, StrokeWidth: strokeWidth,
	})
}

func (b *builder) hline(x, y, w float64, c Color, width float64) {
	b.layer.Lines = append(b.layer.Lines, Line{X1: x, Y1: y, X2: x + w, Y2: y, Color: c, Width: width})
}

// avatar 追加圆形头像；没有图片时绘制占位圆与人像图标。
func (b *builder) avatar(role, ref string, x, y, size float64, ring, placeholder, icon Color) {
	r := size / 2
	if src := b.resolve(ref); src != "" {
		b.layer.Images = append(b.layer.Images, ImageBox{
			Role: role, Src: src, X: x, Y: y, Width: size, Height: size,
			Fit: FitCover, Opacity: 1, Round: true, Fallback: placeholder.Ptr(),
		})
		if ring.A > 0 {
			b.layer.Circles = append(b.layer.Circles, Circle{Role: role + ".ring", CX: x + r, CY: y + r, R: r, StrokeColor: ring, StrokeWidth: 2})
		}
		return
	}
	circle := Circle{Role: role, CX: x + r, CY: y + r, R: r, FillColor: placeholder.Ptr()}
	if ring.A > 0 {
		circle.StrokeColor, circle.StrokeWidth = ring, 2
	}
	b.layer.Circles = append(b.layer.Circles, circle)
	g := size * 0.45
	b.glyph(role, GlyphUser, x+(size-g)/2, y+(size-g)/2, g, icon)
}

// listChips 截断列表并生成条目与“+N”标签。
func (b *builder) listChips(items []string, limit int, st, more chipStyle) []chipItem {
	shown, rest := TruncateList(items, limit)
	out := make([]chipItem, 0, len(shown)+1)
	for _, it := range shown {
		out = append(out, chipItem{Role: RoleIngredient, Label: it, Style: st})
	}
	if rest > 0 {
		out = append(out, chipItem{Role: RoleMore, Label: MoreLabel(rest), Style: more})
	}
	return out
}
