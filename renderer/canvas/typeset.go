package canvasrenderer

import (
	"fmt"
	"math"
	"strings"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/cardstudio/fonts"
	"github.com/ByLCY/cardstudio/layout"
)

type fontFamilyEntry struct {
	family *canvas.FontFamily
	style  canvas.FontStyle
}

// measureColor 只用于测量，不参与绘制。
var measureColor = layout.Color{R: 30, G: 30, B: 30, A: 1}

// LayoutLines 实现 layout.Typesetter。宽度与字号均为画布像素，
// 字体度量按 pt 计算，换算在 fontFace 处完成。
// wrap 为 "nowrap" 或 width <= 0 时只按显式换行拆分；否则按词换行，
// 单词本身超宽时按字符切分。
func (r *Renderer) LayoutLines(content string, width float64, font layout.FontResource, fontSize, lineHeight float64, wrap string) ([]layout.TextLine, error) {
	face, err := r.fontFace(font, layout.ToPt(fontSize), measureColor)
	if err != nil {
		return nil, err
	}

	content = strings.ReplaceAll(content, "\r", "")
	var lines []layout.TextLine
	if wrap == "nowrap" || width <= 0 {
		for _, para := range strings.Split(content, "\n") {
			lines = append(lines, layout.TextLine{Content: para, Width: face.TextWidth(para)})
		}
	} else {
		b := lineBreaker{face: face, limit: width}
		for _, para := range strings.Split(content, "\n") {
			b.paragraph(para)
		}
		lines = b.out
	}

	height := face.Metrics().LineHeight
	if height <= 0 {
		height = lineHeight
	}
	leading := math.Max(lineHeight-height, 0)
	if len(lines) == 0 {
		lines = []layout.TextLine{{}}
	}
	for i := range lines {
		lines[i].Height = height
		if i > 0 {
			lines[i].GapBefore = leading
		}
	}
	return lines, nil
}

// lineBreaker 贪心地把单词放入当前行，放不下时换行。
type lineBreaker struct {
	face  *canvas.FontFace
	limit float64
	cur   string
	out   []layout.TextLine
}

func (b *lineBreaker) paragraph(text string) {
	start := len(b.out)
	for _, word := range strings.Fields(text) {
		b.add(word)
	}
	// 空段落保留为空行。
	if b.cur != "" || len(b.out) == start {
		b.flush()
	}
}

func (b *lineBreaker) add(word string) {
	if b.cur == "" {
		b.place(word)
		return
	}
	if candidate := b.cur + " " + word; b.face.TextWidth(candidate) <= b.limit {
		b.cur = candidate
		return
	}
	b.flush()
	b.place(word)
}

// place 把单词放到空行上，超宽部分切到后续行。
func (b *lineBreaker) place(word string) {
	for word != "" && b.face.TextWidth(word) > b.limit {
		head, tail := b.split(word)
		b.cur = head
		b.flush()
		word = tail
	}
	b.cur = word
}

// split 返回不超过行宽的最长前缀，前缀至少包含一个字符。
func (b *lineBreaker) split(word string) (string, string) {
	runes := []rune(word)
	n := 1
	for n < len(runes) && b.face.TextWidth(string(runes[:n+1])) <= b.limit {
		n++
	}
	return string(runes[:n]), string(runes[n:])
}

func (b *lineBreaker) flush() {
	b.out = append(b.out, layout.TextLine{Content: b.cur, Width: b.face.TextWidth(b.cur)})
	b.cur = ""
}

func (r *Renderer) fontFace(font layout.FontResource, sizePt float64, col layout.Color) (*canvas.FontFace, error) {
	entry, err := r.family(font)
	if err != nil {
		return nil, err
	}
	return entry.family.Face(sizePt, colorFromLayout(col), entry.style, canvas.FontNormal), nil
}

// family 返回字体对应的字族，加载失败时记录日志并退回内置正文字体。
func (r *Renderer) family(font layout.FontResource) (*fontFamilyEntry, error) {
	key := font.Name + "|" + font.Src + "|" + font.Style
	r.fontMu.Lock()
	defer r.fontMu.Unlock()
	if entry, ok := r.fontFamilies[key]; ok {
		return entry, nil
	}

	style := fontStyle(font.Style)
	// 每个字重单独建族，同一族多次 LoadFont 会互相覆盖。
	family := canvas.NewFontFamily(key)
	err := r.loadFont(family, font, style)
	if err != nil {
		r.log.WithError(err).WithField("font", font.Src).Warn("font load failed, using fallback")
		fallback, fbErr := r.fallback()
		if fbErr != nil {
			return nil, err
		}
		entry := &fontFamilyEntry{family: fallback, style: canvas.FontRegular}
		r.fontFamilies[key] = entry
		return entry, nil
	}
	entry := &fontFamilyEntry{family: family, style: style}
	r.fontFamilies[key] = entry
	return entry, nil
}

func (r *Renderer) loadFont(family *canvas.FontFamily, font layout.FontResource, style canvas.FontStyle) error {
	if blob, ok := r.fontBlobs[font.Name]; ok {
		return family.LoadFont(blob, 0, style)
	}
	src := strings.TrimSpace(font.Src)
	if src == "" {
		return fmt.Errorf("font %s has no source", font.Name)
	}
	data, err := fonts.Load(src)
	if err != nil {
		return err
	}
	return family.LoadFont(data, 0, style)
}

func (r *Renderer) fallback() (*canvas.FontFamily, error) {
	if r.fallbackFamily != nil {
		return r.fallbackFamily, nil
	}
	data, err := fonts.Load(fonts.Regular)
	if err != nil {
		return nil, err
	}
	family := canvas.NewFontFamily("cardstudio-fallback")
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, err
	}
	r.fallbackFamily = family
	return family, nil
}

// fontStyle 解析 FontResource.Style，例如 "bold italic"。
func fontStyle(style string) canvas.FontStyle {
	s := strings.ToLower(style)
	st := canvas.FontRegular
	switch {
	case strings.Contains(s, "bold"):
		st = canvas.FontBold
	case strings.Contains(s, "medium"):
		st = canvas.FontMedium
	}
	if strings.Contains(s, "italic") {
		st |= canvas.FontItalic
	}
	return st
}
