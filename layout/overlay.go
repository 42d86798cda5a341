package layout

import "github.com/ByLCY/cardstudio/content"

// 分类徽章与文字水印由合成器叠加，这里仅提供与布局一致的排版原语。

// KindGlyph 返回内容类型对应的图标。
func KindGlyph(k content.Kind) GlyphName {
	switch k {
	case content.KindRecipe:
		return GlyphChef
	case content.KindIngredientGuide:
		return GlyphBook
	}
	return GlyphArticle
}

// CategoryBadge 在 (x, y) 处生成分类徽章图层；分类为空或被隐藏时返回空图层。
func CategoryBadge(in Input, x, y float64) Layer {
	b := newBuilder(in)
	b.layer.Name = LayerBadge
	c := in.Content
	if c.Category == "" || !b.shown(content.FieldCategory) {
		return b.layer
	}
	b.chip(RoleCategory, Upper(c.Category), x, y, chipStyle{
		Text:        textStyle{Font: FontBold, Size: 20, Color: white},
		PadX:        24,
		PadY:        12,
		Fill:        White(0.1),
		Stroke:      White(0.2),
		StrokeWidth: 1,
		Radius:      -1,
		Glyph:       KindGlyph(c.Kind),
		GlyphColor:  in.Theme.Accent,
	})
	return b.layer
}

// Wordmark 返回位于原点、单行排版的品牌文字，Width 为实际文字宽度。
func Wordmark(in Input, text string, size float64, col Color) TextBox {
	b := newBuilder(in)
	w := b.measure(text, FontBold, size)
	return b.composeText(RoleWordmark, text, 0, 0, w+1, textStyle{Font: FontBold, Size: size, LineHeight: 1.2, Color: col, MaxLines: 1})
}

// Measure 返回单行文本宽度。
func Measure(ts Typesetter, text, font string, size float64) float64 {
	b := &builder{in: Input{Typesetter: ts}}
	return b.measure(text, font, size)
}
