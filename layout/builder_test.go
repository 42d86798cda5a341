package layout

import (
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/ByLCY/cardstudio/content"
)

// stubTypesetter 是一个最小实现，仅用于测试，避免引入 renderer 造成循环依赖。
// 按字符数估算宽度并贪心换行。
type stubTypesetter struct{}

func (s *stubTypesetter) LayoutLines(text string, width float64, font FontResource, fontSize float64, lineHeight float64, wrap string) ([]TextLine, error) {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []TextLine{{Content: "", Width: 0, Height: fontSize}}, nil
	}
	measure := func(s string) float64 { return fontSize * 0.55 * float64(utf8.RuneCountInString(s)) }
	if width <= 0 || wrap == "nowrap" {
		joined := strings.Join(words, " ")
		return []TextLine{{Content: joined, Width: measure(joined), Height: fontSize}}, nil
	}
	var lines []TextLine
	cur := ""
	for _, w := range words {
		next := w
		if cur != "" {
			next = cur + " " + w
		}
		if cur != "" && measure(next) > width {
			lines = append(lines, TextLine{Content: cur, Width: measure(cur), Height: fontSize})
			cur = w
			continue
		}
		cur = next
	}
	lines = append(lines, TextLine{Content: cur, Width: math.Min(measure(cur), width), Height: fontSize})
	// 不设置 GapBefore（保持 0），由 composeText 根据默认 leading 回填。
	return lines, nil
}

func recipeFixture(items int) content.Renderable {
	c := content.Default()
	c.ID = "42"
	c.Title = "Fırında Sebzeli Köfte"
	c.AgeGroup = "8-12 Ay"
	c.AgeGroupColor = "#4FC3F7"
	c.MealType = "Öğle"
	c.PrepTime = "20 dk"
	c.ListItems = nil
	for i := 0; i < items; i++ {
		c.ListItems = append(c.ListItems, "Malzeme "+string(rune('A'+i)))
	}
	return c
}

func guideFixture() content.Renderable {
	c := content.Default()
	c.Kind = content.KindIngredientGuide
	c.Title = "Brokoli"
	c.Category = "Beslenme Rehberi"
	c.Season = "Kış"
	c.StartAge = "6 ay"
	c.Allergens = []string{"Süt", "Yumurta"}
	c.AllergyRisk = content.RiskMedium
	c.Benefits = "C vitamini ve lif açısından zengindir."
	c.ListItems = nil
	return c
}

func articleFixture() content.Renderable {
	c := content.Default()
	c.Kind = content.KindArticle
	c.Title = "Bebeklerde Ek Gıdaya Geçiş"
	c.Category = "Blog"
	c.Summary = "İlk kaşık deneyimi için sakin bir ortam ve sabır gerekir."
	c.ListItems = nil
	c.Expert.Note = "Her bebek kendi hızında ilerler."
	return c
}

func buildLayer(t *testing.T, id ID, f Format, c content.Renderable) Layer {
	t.Helper()
	return Get(id)(Input{Content: c, Format: f, Theme: DefaultTheme(), Typesetter: &stubTypesetter{}})
}

func textsByRole(l Layer, role string) []TextBox {
	var out []TextBox
	for _, tb := range l.Texts {
		if tb.Role == role {
			out = append(out, tb)
		}
	}
	return out
}

// TestTextBoxTotalHeightInvariant 断言：TextBox.Height == Σ(line.Height + line.GapBefore)。
func TestTextBoxTotalHeightInvariant(t *testing.T) {
	l := buildLayer(t, Modern, FormatStory, recipeFixture(3))
	if len(l.Texts) == 0 {
		t.Fatalf("无文本输出")
	}
	for _, tb := range l.Texts {
		sum := 0.0
		for i, ln := range tb.Lines {
			if i == 0 && ln.GapBefore != 0 {
				t.Fatalf("首行 GapBefore 应为 0，实际 %g (role=%s)", ln.GapBefore, tb.Role)
			}
			sum += ln.Height + ln.GapBefore
		}
		if math.Abs(sum-tb.Height) > 1e-6 {
			t.Fatalf("TextBox 高度不一致: role=%s height=%g sum=%g", tb.Role, tb.Height, sum)
		}
	}
}

func TestEveryLayoutHandlesEveryKind(t *testing.T) {
	fixtures := map[content.Kind]content.Renderable{
		content.KindRecipe:          recipeFixture(7),
		content.KindArticle:         articleFixture(),
		content.KindIngredientGuide: guideFixture(),
	}
	for _, id := range IDs {
		for _, f := range Formats {
			for kind, c := range fixtures {
				l := buildLayer(t, id, f, c)
				if l.Name != LayerContent {
					t.Fatalf("%s/%s/%s: 图层名称 %q", id, f, kind, l.Name)
				}
				titles := textsByRole(l, RoleTitle)
				if len(titles) != 1 {
					t.Fatalf("%s/%s/%s: 期望 1 个标题，实际 %d", id, f, kind, len(titles))
				}
				_, h := f.Size()
				for _, tb := range l.Texts {
					if tb.Y < 0 || tb.Y+tb.Height > h+1e-6 {
						t.Fatalf("%s/%s/%s: 文本 %s 超出画布: y=%g height=%g", id, f, kind, tb.Role, tb.Y, tb.Height)
					}
				}
			}
		}
	}
}

func TestModernRecipeTruncatesIngredients(t *testing.T) {
	cases := []struct {
		format Format
		shown  int
		more   string
	}{
		{FormatStory, 5, "+2"},
		{FormatPost, 4, "+3"},
	}
	for _, tc := range cases {
		l := buildLayer(t, Modern, tc.format, recipeFixture(7))
		if got := len(textsByRole(l, RoleIngredient)); got != tc.shown {
			t.Fatalf("%s: 期望 %d 个配料标签，实际 %d", tc.format, tc.shown, got)
		}
		more := textsByRole(l, RoleMore)
		if len(more) != 1 || more[0].Content != tc.more {
			t.Fatalf("%s: 期望截断标签 %q，实际 %+v", tc.format, tc.more, more)
		}
	}
}

func TestNoMoreLabelWhenListFits(t *testing.T) {
	l := buildLayer(t, Modern, FormatStory, recipeFixture(3))
	if got := len(textsByRole(l, RoleIngredient)); got != 3 {
		t.Fatalf("期望 3 个配料标签，实际 %d", got)
	}
	if more := textsByRole(l, RoleMore); len(more) != 0 {
		t.Fatalf("列表未截断时不应出现 +N 标签: %+v", more)
	}
}

func TestDetailedIngredientGrid(t *testing.T) {
	l := buildLayer(t, Detailed, FormatStory, recipeFixture(7))
	items := textsByRole(l, RoleIngredient)
	if len(items) != 6 {
		t.Fatalf("期望 6 个配料，实际 %d", len(items))
	}
	if !strings.HasPrefix(items[0].Content, "• ") {
		t.Fatalf("配料应带项目符号: %q", items[0].Content)
	}
	if items[0].Y != items[1].Y || items[0].X == items[1].X {
		t.Fatalf("配料应按两列排列: %+v %+v", items[0], items[1])
	}
	if more := textsByRole(l, RoleMore); len(more) != 1 || more[0].Content != "+1" {
		t.Fatalf("期望 +1，实际 %+v", more)
	}
	if lbl := textsByRole(l, RoleSectionLabel); len(lbl) != 1 || lbl[0].Content != "MALZEMELER" {
		t.Fatalf("分节标题错误: %+v", lbl)
	}
}

func TestTruncateListInvariant(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e", "f", "g"}
	for limit := -1; limit <= 9; limit++ {
		shown, more := TruncateList(items, limit)
		if len(shown)+more != len(items) {
			t.Fatalf("limit=%d: %d+%d != %d", limit, len(shown), more, len(items))
		}
		if more < 0 {
			t.Fatalf("limit=%d: more=%d", limit, more)
		}
	}
	shown, _ := TruncateList(items, 3)
	shown = append(shown, "x")
	if items[3] != "d" {
		t.Fatalf("截断结果不应与原切片共享底层数组")
	}
}

func TestListCapPostNotLargerThanStory(t *testing.T) {
	for _, id := range IDs {
		if ListCap(id, FormatPost) > ListCap(id, FormatStory) {
			t.Fatalf("%s: post 上限大于 story", id)
		}
	}
	if ListCap(Classic, FormatStory) != 4 || ListCap(Classic, FormatPost) != 3 {
		t.Fatalf("classic 上限应为 4/3")
	}
}

func TestAgeGroupVisibility(t *testing.T) {
	c := recipeFixture(2)
	if got := len(textsByRole(buildLayer(t, Modern, FormatStory, c), RoleAgeGroup)); got != 1 {
		t.Fatalf("期望显示年龄段，实际 %d", got)
	}
	c.Visibility = content.Visibility{content.FieldAgeGroup: false}
	l := buildLayer(t, Modern, FormatStory, c)
	if got := len(textsByRole(l, RoleAgeGroup)); got != 0 {
		t.Fatalf("隐藏后不应显示年龄段，实际 %d", got)
	}
	if got := len(textsByRole(l, RoleMealType)); got != 1 {
		t.Fatalf("其他字段不受影响，实际 %d", got)
	}
}

func TestAgeGroupChipUsesRecordColor(t *testing.T) {
	l := buildLayer(t, Modern, FormatStory, recipeFixture(0))
	for _, r := range l.Rects {
		if r.Role == RoleAgeGroup {
			if r.FillColor == nil || r.FillColor.Hex() != "#4fc3f7" {
				t.Fatalf("年龄段颜色错误: %+v", r.FillColor)
			}
			return
		}
	}
	t.Fatalf("未找到年龄段标签")
}

func TestMinimalCategoryVisibility(t *testing.T) {
	c := articleFixture()
	cat := textsByRole(buildLayer(t, Minimal, FormatPost, c), RoleCategory)
	if len(cat) != 1 || cat[0].Content != "BLOG" {
		t.Fatalf("分类应大写显示: %+v", cat)
	}
	c.Visibility = content.Visibility{content.FieldCategory: false}
	if got := textsByRole(buildLayer(t, Minimal, FormatPost, c), RoleCategory); len(got) != 0 {
		t.Fatalf("隐藏后不应显示分类")
	}
}

func TestExpertHiddenWhenNotVisible(t *testing.T) {
	c := recipeFixture(2)
	if got := textsByRole(buildLayer(t, Modern, FormatStory, c), RoleExpertName); len(got) != 1 {
		t.Fatalf("期望显示专家卡片")
	}
	c.Expert.Visible = false
	if got := textsByRole(buildLayer(t, Modern, FormatStory, c), RoleExpertName); len(got) != 0 {
		t.Fatalf("专家不可见时不应绘制卡片")
	}
}

func TestFeaturedShowsExpertNote(t *testing.T) {
	l := buildLayer(t, Featured, FormatStory, articleFixture())
	note := textsByRole(l, RoleExpertNote)
	if len(note) != 1 || !strings.Contains(note[0].Content, "kendi hızında") {
		t.Fatalf("寄语缺失: %+v", note)
	}
	name := textsByRole(l, RoleExpertName)
	if len(name) != 1 || !strings.HasPrefix(name[0].Content, "— ") {
		t.Fatalf("署名缺失: %+v", name)
	}
}

func TestWarningShowsAllergensAndRisk(t *testing.T) {
	l := buildLayer(t, Warning, FormatStory, guideFixture())
	if got := len(textsByRole(l, RoleAllergen)); got != 2 {
		t.Fatalf("期望 2 个过敏原标签，实际 %d", got)
	}
	risk := textsByRole(l, RoleRisk)
	if len(risk) != 2 || risk[1].Content != "Orta" {
		t.Fatalf("风险等级错误: %+v", risk)
	}
	c := guideFixture()
	c.Visibility = content.Visibility{content.FieldAllergens: false}
	if got := len(textsByRole(buildLayer(t, Warning, FormatStory, c), RoleAllergen)); got != 0 {
		t.Fatalf("隐藏后不应显示过敏原")
	}
}

func TestInfoShowsBenefits(t *testing.T) {
	l := buildLayer(t, Info, FormatPost, guideFixture())
	if got := textsByRole(l, RoleBenefits); len(got) != 1 {
		t.Fatalf("益处缺失")
	}
	if lbl := textsByRole(l, RoleSectionLabel); len(lbl) != 1 || lbl[0].Content != "FAYDALARI" {
		t.Fatalf("分节标题错误: %+v", lbl)
	}
	if got := textsByRole(l, RoleSeason); len(got) != 1 {
		t.Fatalf("季节标签缺失")
	}
}

func TestQuoteAuthorLine(t *testing.T) {
	c := articleFixture()
	l := buildLayer(t, Quote, FormatPost, c)
	if got := textsByRole(l, RoleAuthorName); len(got) != 1 || got[0].Content != "— KidsGourmet" {
		t.Fatalf("作者署名错误: %+v", got)
	}
	c.Author.Visible = false
	if got := textsByRole(buildLayer(t, Quote, FormatPost, c), RoleAuthorName); len(got) != 0 {
		t.Fatalf("作者不可见时不应署名")
	}
}

func TestSummaryVisibility(t *testing.T) {
	c := articleFixture()
	if got := textsByRole(buildLayer(t, Simple, FormatStory, c), RoleSummary); len(got) != 1 {
		t.Fatalf("期望显示摘要")
	}
	c.Visibility = content.Visibility{content.FieldSummary: false}
	if got := textsByRole(buildLayer(t, Simple, FormatStory, c), RoleSummary); len(got) != 0 {
		t.Fatalf("隐藏后不应显示摘要")
	}
}

func TestMaxLinesAddsEllipsis(t *testing.T) {
	b := newBuilder(Input{Format: FormatPost, Typesetter: &stubTypesetter{}})
	long := strings.Repeat("kelime ", 60)
	tb := b.text(RoleSummary, long, 0, 0, 200, textStyle{Size: 20, MaxLines: 2})
	if len(tb.Lines) != 2 {
		t.Fatalf("期望 2 行，实际 %d", len(tb.Lines))
	}
	if !strings.HasSuffix(tb.Lines[1].Content, "…") {
		t.Fatalf("末行应以省略号结尾: %q", tb.Lines[1].Content)
	}
}

func TestLayoutLinesFallsBackWithoutTypesetter(t *testing.T) {
	lines := layoutLines("ab\ncd", 0, ResolveFont(FontBody), 10, 14, nil, "")
	if len(lines) != 2 {
		t.Fatalf("期望按换行拆分为 2 行，实际 %d", len(lines))
	}
	if lines[0].GapBefore != 0 || lines[1].GapBefore != 4 {
		t.Fatalf("行距错误: %+v", lines)
	}
	if w := estimateTextWidth("abcd", 10); math.Abs(w-22) > 1e-9 {
		t.Fatalf("估算宽度错误: %g", w)
	}
}

func TestUpperUsesTurkishCasing(t *testing.T) {
	if got := Upper("içerik"); got != "İÇERİK" {
		t.Fatalf("土耳其语大写错误: %q", got)
	}
}

func TestLookupUnknownFallsBack(t *testing.T) {
	id, fn, ok := Lookup("vaporwave")
	if ok || id != Default || fn == nil {
		t.Fatalf("未知布局应回退到默认: id=%s ok=%v", id, ok)
	}
	id, _, ok = Lookup(" Classic ")
	if !ok || id != Classic {
		t.Fatalf("应识别 classic: id=%s ok=%v", id, ok)
	}
	if !Detailed.DrawsOwnPanel() || Modern.DrawsOwnPanel() {
		t.Fatalf("DrawsOwnPanel 结果错误")
	}
}
