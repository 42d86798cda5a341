package layout

import (
	"github.com/ByLCY/cardstudio/content"
)

// 布局使用的固定色值（Tailwind 调色板）。
var (
	white    = RGB(255, 255, 255)
	gray100  = RGB(243, 244, 246)
	gray200  = RGB(229, 231, 235)
	gray300  = RGB(209, 213, 219)
	gray400  = RGB(156, 163, 175)
	gray700  = RGB(55, 65, 81)
	green400 = RGB(74, 222, 128)
	green500 = RGB(34, 197, 94)
	orange   = RGB(249, 115, 22)
	red500   = RGB(239, 68, 68)
	red200   = RGB(254, 202, 202)
	red300   = RGB(252, 165, 165)
	blue500  = RGB(59, 130, 246)
	blue200  = RGB(191, 219, 254)
)

func solidBadge(fill Color, glyph GlyphName, size float64) chipStyle {
	return chipStyle{
		Text:       textStyle{Font: FontBold, Size: size, Color: white},
		PadX:       20,
		PadY:       10,
		Fill:       fill,
		Radius:     -1,
		Glyph:      glyph,
		GlyphColor: white,
	}
}

func glassBadge(glyph GlyphName, size float64) chipStyle {
	st := solidBadge(White(0.2), glyph, size)
	st.Stroke, st.StrokeWidth = White(0.3), 1
	return st
}

func (b *builder) ageColor() Color {
	return MustColor(b.in.Content.AgeGroupColor, MustColor(content.DefaultAgeGroupColor, b.in.Theme.Primary))
}

// recipeBadges 返回年龄段、餐类与准备时间徽章，遵循字段可见性。
func (b *builder) recipeBadges(withGlyphs bool, meal chipStyle) []chipItem {
	c := b.in.Content
	var items []chipItem
	glyph := func(g GlyphName) GlyphName {
		if withGlyphs {
			return g
		}
		return ""
	}
	if b.shown(content.FieldAgeGroup) && c.AgeGroup != "" {
		items = append(items, chipItem{RoleAgeGroup, c.AgeGroup, solidBadge(b.ageColor(), glyph(GlyphBaby), 22)})
	}
	if b.shown(content.FieldMealType) && c.MealType != "" {
		st := meal
		st.Glyph = glyph(GlyphChef)
		items = append(items, chipItem{RoleMealType, c.MealType, st})
	}
	if b.shown(content.FieldPrepTime) && c.PrepTime != "" {
		items = append(items, chipItem{RolePrepTime, c.PrepTime, glassBadge(glyph(GlyphClock), 22)})
	}
	return items
}

// guideBadges 返回季节与起始月龄徽章。
func (b *builder) guideBadges(size float64) []chipItem {
	c := b.in.Content
	var items []chipItem
	if b.shown(content.FieldSeason) && c.Season != "" {
		items = append(items, chipItem{RoleSeason, c.Season, solidBadge(green500, GlyphLeaf, size)})
	}
	if c.StartAge != "" {
		items = append(items, chipItem{RoleStartAge, c.StartAge, glassBadge(GlyphBaby, size)})
	}
	return items
}

// kindBadges 按内容类型选择徽章组。
func (b *builder) kindBadges() []chipItem {
	switch b.in.Content.Kind {
	case content.KindRecipe:
		return b.recipeBadges(true, glassBadge("", 22))
	case content.KindIngredientGuide:
		return b.guideBadges(22)
	}
	return nil
}

func (b *builder) summary() string {
	if !b.shown(content.FieldSummary) {
		return ""
	}
	return b.in.Content.Summary
}

func (b *builder) listItems() []string {
	if !b.shown(content.FieldIngredients) {
		return nil
	}
	return b.in.Content.ListItems
}

// expertCard 绘制专家卡片，返回高度。
func (b *builder) expertCard(x, y, w float64, avatarSize, nameSize, titleSize float64, fill Color, radius float64, placeholder, icon Color) float64 {
	e := b.in.Content.Expert
	g := b.group()
	pad := 16.0
	if fill.A == 0 {
		pad = 0
	}
	g.avatar(RoleExpert, e.AvatarRef, pad, pad, avatarSize, b.in.Theme.Accent, placeholder, icon)
	tx := pad + avatarSize + 12
	tw := w - tx - pad - nameSize - glyphGap
	name := g.text(RoleExpertName, e.Name, tx, pad, tw, textStyle{Font: FontBold, Size: nameSize, LineHeight: 1.3, Color: white, MaxLines: 1})
	if e.Verified && len(name.Lines) > 0 {
		g.glyph(RoleExpert, GlyphCheck, tx+name.Lines[0].Width+glyphGap, pad+(name.Height-nameSize)/2, nameSize*0.9, green400)
	}
	title := g.text(RoleExpertTitle, e.Title, tx, pad+name.Height+4, tw, textStyle{Size: titleSize, LineHeight: 1.3, Color: gray300, MaxLines: 1})
	h := max(avatarSize, name.Height+4+title.Height) + 2*pad
	if fill.A > 0 {
		b.panel(RoleExpert, x, y, w, h, radius, fill, White(0.1), 1)
	}
	b.merge(g, x, y)
	return h
}

// modernLayout：全屏背景，内容贴底；按内容类型展示徽章、配料与专家卡片。
func modernLayout(in Input) Layer {
	b := newBuilder(in)
	c := in.Content
	f := b.frame(Insets{})
	g := b.group()
	y := 0.0

	switch c.Kind {
	case content.KindRecipe:
		if badges := g.recipeBadges(true, glassBadge("", 22)); len(badges) > 0 {
			y += g.chipRow(badges, 0, y, f.W, 12) + 24
		}
		g.rect(RoleAccent, 0, y, 96, 6, 3, in.Theme.Accent)
		y += 6 + 24
		t := g.text(RoleTitle, c.Title, 0, y, f.W, textStyle{Font: FontBold, Size: b.typo.Title, LineHeight: 1.1, Color: white, MaxLines: 4})
		y += t.Height
		if items := g.listItems(); len(items) > 0 {
			chip := chipStyle{
				Text: textStyle{Font: FontMedium, Size: 20, Color: white},
				PadX: 16, PadY: 8, Fill: White(0.1), Stroke: White(0.2), StrokeWidth: 1, Radius: 12,
			}
			more := chip
			more.Text.Font, more.Fill, more.StrokeWidth = FontBold, in.Theme.Accent, 0
			y += 24
			y += g.chipRow(g.listChips(items, ListCap(Modern, in.Format), chip, more), 0, y, f.W, 12)
		}
		if c.Expert.Visible {
			y += 24 + 16
			y += g.expertCard(0, y, f.W, 56, 22, 16, Black(0.4), 16, White(0.2), white)
		}
		b.merge(g, f.X, f.Bottom()-y)

	case content.KindArticle:
		if b.shown(content.FieldCategory) && c.Category != "" {
			g.layer.Circles = append(g.layer.Circles, Circle{
				Role: RoleKindIcon, CX: f.W / 2, CY: 48, R: 48,
				FillColor: White(0.2).Ptr(), StrokeColor: White(0.3), StrokeWidth: 2,
			})
			g.glyph(RoleKindIcon, GlyphArticle, f.W/2-24, 24, 48, white)
			y += 96 + 48
		}
		tw := f.W * 0.9
		t := g.text(RoleTitle, c.Title, (f.W-tw)/2, y, tw, textStyle{Font: FontBold, Size: b.typo.Title, LineHeight: 1.1, Color: white, Align: "center", MaxLines: 5})
		y += t.Height + 32
		g.rect(RoleAccent, (f.W-128)/2, y, 128, 4, 2, White(0.5))
		y += 4
		if s := g.summary(); s != "" {
			y += 32
			st := g.text(RoleSummary, s, (f.W-tw)/2, y, tw, textStyle{Font: FontMedium, Size: b.typo.Subtitle, LineHeight: 1.6, Color: gray100, Align: "center", MaxLines: 5})
			y += st.Height
		}
		b.merge(g, f.X, f.Bottom()-40-y)

	default:
		const pad, bar = 40.0, 12.0
		inner := g.group()
		iw := f.W - 2*pad - 24
		iy := 0.0
		if badges := inner.guideBadges(24); len(badges) > 0 {
			iy += inner.chipRow(badges[:1], 0, iy, iw, 16) + 24
		}
		t := inner.text(RoleTitle, c.Title, 0, iy, iw, textStyle{Font: FontBold, Size: b.typo.Title, LineHeight: 1.2, Color: white, MaxLines: 4})
		iy += t.Height
		if s := inner.summary(); s != "" {
			iy += 24
			st := inner.text(RoleSummary, s, 0, iy, iw, textStyle{Size: b.typo.Subtitle, LineHeight: 1.6, Color: gray100, MaxLines: 6})
			iy += st.Height
		}
		h := iy + 2*pad
		g.panel(RolePanel, 0, 0, f.W, h, 40, White(0.1), White(0.2), 1)
		g.rect(RoleAccent, 0, 0, bar, h, 6, in.Theme.Accent)
		g.merge(inner, pad+24, pad)
		b.merge(g, f.X, f.Bottom()-32-h)
	}
	return b.layer
}

// classicLayout：顶部渐变标题栏，中部列表，底部专家栏。
func classicLayout(in Input) Layer {
	b := newBuilder(in)
	c := in.Content
	f := b.frame(Uniform(40))

	// 标题栏
	head := b.group()
	hy := 0.0
	t := head.text(RoleTitle, c.Title, 0, hy, f.W, textStyle{Font: FontBold, Size: 56, LineHeight: 1.25, Color: white, MaxLines: 3})
	hy += t.Height
	if b.shown(content.FieldCategory) && c.Category != "" {
		ct := head.text(RoleCategory, c.Category, 0, hy+8, f.W, textStyle{Size: 28, LineHeight: 1.3, Color: White(0.9), MaxLines: 1})
		hy += 8 + ct.Height
	}
	bandH := f.Y + hy + 40
	b.layer.Gradients = append(b.layer.Gradients, Gradient{
		Role: RolePanel, Width: b.w, Height: bandH, Direction: ToRight, Opacity: 1,
		Stops: []GradientStop{{Offset: 0, Color: orange}, {Offset: 1, Color: red500}},
	})
	b.merge(head, f.X, f.Y)

	// 专家栏
	bottom := f.Bottom()
	if c.Expert.Visible {
		const pad, size = 32.0, 64.0
		footTop := bottom - size - 2*pad
		b.rect(RolePanel, 0, footTop, b.w, b.h-footTop, 0, Black(0.6))
		b.hline(0, footTop, b.w, White(0.1), 1)
		b.expertCard(f.X, footTop+pad, f.W, size, 28, 18, Color{}, 0, white, in.Theme.Accent)
		bottom = footTop
	}

	// 中部内容贴近专家栏上方
	mid := b.group()
	my := 0.0
	mw := f.W - 48
	switch {
	case c.Kind == content.KindRecipe && len(b.listItems()) > 0:
		chip := chipStyle{
			Text: textStyle{Font: FontMedium, Size: 24, Color: white},
			PadX: 24, PadY: 12, Fill: White(0.2), Stroke: White(0.3), StrokeWidth: 1, Radius: 16,
		}
		more := chip
		more.Text.Font, more.Fill, more.StrokeWidth = FontBold, in.Theme.Accent, 0
		my += mid.chipRow(mid.listChips(b.listItems(), ListCap(Classic, in.Format), chip, more), 0, 0, mw, 16)
	case b.summary() != "":
		if badges := mid.kindBadges(); len(badges) > 0 {
			my += mid.chipRow(badges, 0, 0, mw, 12) + 24
		}
		st := mid.text(RoleSummary, b.summary(), 0, my, mw, textStyle{Size: b.typo.Subtitle, LineHeight: 1.5, Color: white, MaxLines: 4})
		my += st.Height
	}
	if my > 0 {
		b.merge(mid, f.X+24, bottom-48-my)
	}
	return b.layer
}

// minimalLayout：居中的分类与标题，置于半透明面板上。
func minimalLayout(in Input) Layer {
	b := newBuilder(in)
	c := in.Content
	f := b.frame(Uniform(64))
	const pad = 64.0
	bw := f.W * 0.9
	iw := bw - 2*pad
	g := b.group()
	y := 0.0
	if b.shown(content.FieldCategory) && c.Category != "" {
		ct := g.text(RoleCategory, c.Category, 0, y, iw, textStyle{Size: 28, LineHeight: 1.3, Color: White(0.8), Align: "center", Upper: true, MaxLines: 1})
		y += ct.Height + 16
	}
	t := g.text(RoleTitle, c.Title, 0, y, iw, textStyle{Font: FontBold, Size: b.typo.Title, LineHeight: 1.15, Color: white, Align: "center", MaxLines: 5})
	y += t.Height
	h := y + 2*pad
	px := f.X + (f.W-bw)/2
	py := f.Y + (f.H-h)/2
	b.rect(RolePanel, px, py, bw, h, 32, Black(0.5))
	b.merge(g, px+pad, py+pad)
	return b.layer
}

// detailedLayout：上半部分徽章，下半部分实色面板展示标题、配料与专家。
func detailedLayout(in Input) Layer {
	b := newBuilder(in)
	c := in.Content
	top := b.frame(Uniform(32))

	var badges []chipItem
	for _, it := range b.recipeBadges(false, solidBadge(green500, "", 22)) {
		if it.Role == RolePrepTime {
			continue
		}
		it.Style.PadY = 8
		badges = append(badges, it)
	}
	if c.Kind == content.KindIngredientGuide {
		badges = append(badges, b.guideBadges(22)...)
	}
	b.chipRow(badges, top.X, top.Y, top.W, 12)

	half := b.h / 2
	b.layer.Gradients = append(b.layer.Gradients, Gradient{
		Role: RolePanel, Y: half, Width: b.w, Height: b.h - half, Direction: ToBottom, Opacity: 1,
		Stops: []GradientStop{{Offset: 0, Color: Black(0.8)}, {Offset: 1, Color: Black(1)}},
	})
	f := b.frame(Uniform(48))
	x, y, w := f.X, half+48, f.W

	t := b.text(RoleTitle, c.Title, x, y, w, textStyle{Font: FontBold, Size: 52, LineHeight: 1.25, Color: white, MaxLines: 3})
	y += t.Height + 24

	if items := b.listItems(); c.Kind == content.KindRecipe && len(items) > 0 {
		lbl := b.text(RoleSectionLabel, "Malzemeler", x, y, w, textStyle{Font: FontBold, Size: 20, LineHeight: 1.3, Color: gray400, Upper: true})
		y += lbl.Height + 12
		shown, more := TruncateList(items, ListCap(Detailed, in.Format))
		colW := (w - 16) / 2
		rowH := 22*1.4 + 8
		for i, it := range shown {
			cx := x + float64(i%2)*(colW+16)
			cy := y + float64(i/2)*rowH
			b.text(RoleIngredient, "• "+it, cx, cy, colW, textStyle{Size: 22, LineHeight: 1.4, Color: gray200, MaxLines: 1})
		}
		y += float64((len(shown)+1)/2) * rowH
		if more > 0 {
			mt := b.text(RoleMore, MoreLabel(more), x, y, w, textStyle{Font: FontBold, Size: 22, LineHeight: 1.4, Color: in.Theme.Accent})
			y += mt.Height
		}
	} else if s := b.summary(); s != "" {
		b.text(RoleSummary, s, x, y, w, textStyle{Size: b.typo.Subtitle, LineHeight: 1.5, Color: gray200, MaxLines: 5})
	}

	if c.Expert.Visible {
		const size = 56.0
		ey := f.Bottom() - size
		b.hline(x, ey-24, w, White(0.2), 1)
		b.expertCard(x, ey, w, size, 24, 16, Color{}, 0, gray700, gray400)
	}
	return b.layer
}

// featuredLayout：居中玻璃面板，突出标题、摘要与专家寄语。
func featuredLayout(in Input) Layer {
	b := newBuilder(in)
	c := in.Content
	f := b.frame(Uniform(64))
	const pad = 48.0
	pw := f.W * 0.9
	iw := pw - 2*pad
	g := b.group()
	y := 0.0
	t := g.text(RoleTitle, c.Title, 0, y, iw, textStyle{Font: FontBold, Size: b.typo.Title, LineHeight: 1.1, Color: white, Align: "center", MaxLines: 5})
	y += t.Height
	if s := b.summary(); s != "" {
		sw := iw * 0.85
		st := g.text(RoleSummary, s, (iw-sw)/2, y+32, sw, textStyle{Size: b.typo.Subtitle, LineHeight: 1.6, Color: gray100, Align: "center", MaxLines: 6})
		y += 32 + st.Height
	}
	if c.Expert.Visible && c.Expert.Note != "" {
		y += 32
		g.hline(0, y, iw, White(0.2), 1)
		y += 32
		nt := g.text(RoleExpertNote, `"`+c.Expert.Note+`"`, 0, y, iw, textStyle{Font: FontItalic, Size: 24, LineHeight: 1.5, Color: gray200, Align: "center", MaxLines: 4})
		y += nt.Height + 16
		nm := g.text(RoleExpertName, "— "+c.Expert.Name, 0, y, iw, textStyle{Font: FontBold, Size: 20, LineHeight: 1.3, Color: in.Theme.Accent, Align: "center", MaxLines: 1})
		y += nm.Height
	}
	h := y + 2*pad
	px := f.X + (f.W-pw)/2
	py := f.Y + (f.H-h)/2
	b.panel(RolePanel, px, py, pw, h, 40, Black(0.4), White(0.2), 1)
	b.merge(g, px+pad, py+pad)
	return b.layer
}

// cardLayout 是 info 与 warning 共用的贴底信息卡：彩色左边框、图标标题与分节内容。
func cardLayout(in Input, tint Color, icon GlyphName, body func(g *builder, w float64) float64) Layer {
	b := newBuilder(in)
	c := in.Content
	f := b.frame(Insets{Top: 64, Right: 64, Bottom: 96, Left: 64})
	const pad, bar, iconSize = 40.0, 8.0, 64.0
	iw := f.W - 2*pad - bar
	g := b.group()

	g.layer.Circles = append(g.layer.Circles, Circle{Role: RoleKindIcon, CX: iconSize / 2, CY: iconSize / 2, R: iconSize / 2, FillColor: tint.Ptr()})
	g.glyph(RoleKindIcon, icon, iconSize/4, iconSize/4, iconSize/2, white)
	tx := iconSize + 16
	t := g.text(RoleTitle, c.Title, tx, 0, iw-tx, textStyle{Font: FontBold, Size: 52, LineHeight: 1.2, Color: white, MaxLines: 3})
	if t.Height < iconSize {
		g.layer.Texts[len(g.layer.Texts)-1].Y = (iconSize - t.Height) / 2
	}
	y := max(iconSize, t.Height) + 24
	y += body(g, iw)

	h := y + 2*pad - 24
	b.panel(RolePanel, f.X, f.Bottom()-h, f.W, h, 16, tint.WithAlpha(0.2), Color{}, 0)
	b.rect(RoleAccent, f.X, f.Bottom()-h, bar, h, 4, tint)
	b.merge(g, f.X+bar+pad, f.Bottom()-h+pad)
	return b.layer
}

// infoLayout：蓝色信息卡，适合食材指南的季节、摘要与益处。
func infoLayout(in Input) Layer {
	c := in.Content
	return cardLayout(in, blue500, GlyphBook, func(g *builder, w float64) float64 {
		y := 0.0
		if badges := g.kindBadges(); len(badges) > 0 {
			y += g.chipRow(badges, 0, y, w, 12) + 24
		}
		if s := g.summary(); s != "" {
			st := g.text(RoleSummary, s, 0, y, w, textStyle{Size: 26, LineHeight: 1.6, Color: gray100, MaxLines: 6})
			y += st.Height + 24
		}
		if c.Benefits != "" {
			g.hline(0, y, w, White(0.2), 1)
			y += 24
			lbl := g.text(RoleSectionLabel, "Faydaları", 0, y, w, textStyle{Font: FontBold, Size: 22, LineHeight: 1.3, Color: blue200, Upper: true})
			y += lbl.Height + 8
			bt := g.text(RoleBenefits, c.Benefits, 0, y, w, textStyle{Size: 24, LineHeight: 1.5, Color: gray200, MaxLines: 4})
			y += bt.Height + 24
		}
		return y
	})
}

// warningLayout：红色警示卡，展示过敏原与风险等级。
func warningLayout(in Input) Layer {
	c := in.Content
	return cardLayout(in, red500, GlyphAlert, func(g *builder, w float64) float64 {
		y := 0.0
		if g.shown(content.FieldAllergens) && len(c.Allergens) > 0 {
			lbl := g.text(RoleSectionLabel, "Alerjenler", 0, y, w, textStyle{Font: FontBold, Size: 22, LineHeight: 1.3, Color: red200, Upper: true})
			y += lbl.Height + 12
			st := solidBadge(red500, "", 22)
			st.PadY = 8
			items := make([]chipItem, 0, len(c.Allergens))
			for _, a := range c.Allergens {
				items = append(items, chipItem{RoleAllergen, a, st})
			}
			y += g.chipRow(items, 0, y, w, 12) + 24
		}
		if c.AllergyRisk != content.RiskUnknown {
			g.hline(0, y, w, White(0.2), 1)
			y += 24
			label := "Risk Seviyesi:"
			lt := g.text(RoleRisk, label, 0, y, w, textStyle{Font: FontBold, Size: 24, LineHeight: 1.4, Color: red300, MaxLines: 1})
			lw := g.measure(label, FontBold, 24) + 12
			dot := MustColor(content.RiskColors[c.AllergyRisk], red500)
			g.layer.Circles = append(g.layer.Circles, Circle{Role: RoleRisk, CX: lw + 8, CY: y + lt.Height/2, R: 8, FillColor: dot.Ptr()})
			g.text(RoleRisk, c.AllergyRisk.Label(), lw+24, y, w-lw-24, textStyle{Size: 24, LineHeight: 1.4, Color: gray200, MaxLines: 1})
			y += lt.Height + 24
		}
		if y == 0 {
			if s := g.summary(); s != "" {
				st := g.text(RoleSummary, s, 0, y, w, textStyle{Size: 26, LineHeight: 1.6, Color: gray100, MaxLines: 5})
				y += st.Height + 24
			}
		}
		return y
	})
}

// quoteLayout：居中的引号、标题与摘要，底部署名作者。
func quoteLayout(in Input) Layer {
	b := newBuilder(in)
	c := in.Content
	f := b.frame(Uniform(64))
	w := f.W * 0.85
	g := b.group()
	y := 0.0
	q := g.text(RoleQuoteMark, "“", 0, y, w, textStyle{Font: FontBold, Size: 120, LineHeight: 1, Color: in.Theme.Accent, Align: "center"})
	y += q.Height + 32
	t := g.text(RoleTitle, c.Title, 0, y, w, textStyle{Font: FontBold, Size: b.typo.Title, LineHeight: 1.2, Color: white, Align: "center", MaxLines: 5})
	y += t.Height
	if s := b.summary(); s != "" {
		st := g.text(RoleSummary, s, 0, y+32, w, textStyle{Font: FontItalic, Size: b.typo.Subtitle, LineHeight: 1.6, Color: gray100, Align: "center", MaxLines: 5})
		y += 32 + st.Height
	}
	if c.Author.Visible {
		y += 48
		const size = 48.0
		name := "— " + c.Author.Name
		nw := min(g.measure(name, FontBold, 24), w-size-16)
		rx := (w - (size + 16 + nw)) / 2
		g.avatar(RoleAuthor, c.Author.AvatarRef, rx, y, size, Color{}, White(0.2), white)
		g.text(RoleAuthorName, name, rx+size+16, y+(size-24*1.3)/2, nw+1, textStyle{Font: FontBold, Size: 24, LineHeight: 1.3, Color: white, MaxLines: 1})
		y += size
	}
	b.merge(g, f.X+(f.W-w)/2, f.Y+(f.H-y)/2)
	return b.layer
}

// simpleLayout：贴底的标题与摘要。
func simpleLayout(in Input) Layer {
	b := newBuilder(in)
	c := in.Content
	f := b.frame(Insets{Top: 64, Right: 64, Bottom: 96, Left: 64})
	g := b.group()
	t := g.text(RoleTitle, c.Title, 0, 0, f.W, textStyle{Font: FontBold, Size: b.typo.Title, LineHeight: 1.1, Color: white, MaxLines: 4})
	y := t.Height
	if s := b.summary(); s != "" {
		st := g.text(RoleSummary, s, 0, y+24, f.W*0.9, textStyle{Size: 28, LineHeight: 1.6, Color: gray100, MaxLines: 5})
		y += 24 + st.Height
	}
	b.merge(g, f.X, f.Bottom()-y)
	return b.layer
}
