// Package content 定义卡片渲染所用的规范内容模型及其局部编辑规则。
package content

import "strings"

// Field 是可单独隐藏的展示字段。
type Field string

const (
	FieldAgeGroup    Field = "ageGroup"
	FieldMealType    Field = "mealType"
	FieldPrepTime    Field = "prepTime"
	FieldIngredients Field = "ingredients"
	FieldSeason      Field = "season"
	FieldAllergens   Field = "allergens"
	FieldCategory    Field = "category"
	FieldSummary     Field = "excerpt"
)

// Fields 列出全部可切换字段。
var Fields = []Field{
	FieldAgeGroup, FieldMealType, FieldPrepTime, FieldIngredients,
	FieldSeason, FieldAllergens, FieldCategory, FieldSummary,
}

// ParseField 解析字段名，兼容 summary/excerpt 两种写法。
func ParseField(s string) (Field, bool) {
	name := strings.TrimSpace(s)
	if strings.EqualFold(name, "summary") {
		return FieldSummary, true
	}
	for _, f := range Fields {
		if strings.EqualFold(string(f), name) {
			return f, true
		}
	}
	return "", false
}

// Visibility 记录字段显示开关；未记录的字段视为可见。
// 它与字段是否有值无关。
type Visibility map[Field]bool

// Shown 返回字段是否可见。
func (v Visibility) Shown(f Field) bool {
	if v == nil {
		return true
	}
	shown, ok := v[f]
	return !ok || shown
}

func (v Visibility) clone() Visibility {
	out := make(Visibility, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Author 是作者署名。
type Author struct {
	Name      string `json:"name"`
	AvatarRef string `json:"avatarRef"`
	Visible   bool   `json:"visible"`
}

// Expert 是审核专家署名。
type Expert struct {
	Name      string `json:"name"`
	Title     string `json:"title"`
	AvatarRef string `json:"avatarRef"`
	Note      string `json:"note"`
	Visible   bool   `json:"visible"`
	Verified  bool   `json:"verified"`
}

// Renderable 是规范化后的内容记录，布局与导出只读取它。
type Renderable struct {
	ID            string   `json:"id"`
	Kind          Kind     `json:"contentKind"`
	Title         string   `json:"title"`
	Summary       string   `json:"summary"`
	BackgroundRef string   `json:"backgroundImageRef"`
	Category      string   `json:"category"`
	ListItems     []string `json:"listItems"`

	AgeGroup      string   `json:"ageGroup,omitempty"`
	AgeGroupColor string   `json:"ageGroupColor,omitempty"`
	MealType      string   `json:"mealType,omitempty"`
	PrepTime      string   `json:"prepTime,omitempty"`
	Difficulty    string   `json:"difficulty,omitempty"`
	Season        string   `json:"season,omitempty"`
	Allergens     []string `json:"allergens,omitempty"`
	AllergyRisk   Risk     `json:"allergyRiskLevel,omitempty"`
	StartAge      string   `json:"startAge,omitempty"`
	Benefits      string   `json:"benefitsText,omitempty"`

	Author     Author     `json:"attributionAuthor"`
	Expert     Expert     `json:"attributionExpert"`
	Watermark  Watermark  `json:"watermark"`
	Visibility Visibility `json:"fieldVisibility"`
}

// 默认值。
const (
	DefaultBrand         = "KidsGourmet"
	DefaultAgeGroupColor = "#FF8A65"
	DefaultExpertTitle   = "Beslenme Uzmanı"
	SummaryLimit         = 200
)

// Default 返回启动时使用的占位记录。
func Default() Renderable {
	return Renderable{
		ID:        "init",
		Kind:      KindRecipe,
		Title:     "İçerik Başlığı",
		Summary:   "İçerik özeti buraya gelecek.",
		Category:  "Kategori",
		ListItems: []string{"Malzeme 1", "Malzeme 2"},
		Author:    Author{Name: DefaultBrand, Visible: true},
		Expert: Expert{
			Name:     "Dyt. Uzman Adı",
			Title:    DefaultExpertTitle,
			Visible:  true,
			Verified: true,
		},
		Watermark:  DefaultWatermark(),
		Visibility: Visibility{},
	}
}

// Clone 返回深拷贝，切片与可见性表不与原值共享。
func (c Renderable) Clone() Renderable {
	out := c
	out.ListItems = append([]string(nil), c.ListItems...)
	out.Allergens = append([]string(nil), c.Allergens...)
	out.Visibility = c.Visibility.clone()
	return out
}

// ReplaceContent 载入新记录：除水印外全部替换，水印作为用户偏好保留。
func (c Renderable) ReplaceContent(next Renderable) Renderable {
	out := next.Clone()
	out.Watermark = c.Watermark
	return out
}

// PersonPatch 是署名对象的局部更新。
type PersonPatch struct {
	Name      *string `json:"name,omitempty"`
	Title     *string `json:"title,omitempty"`
	AvatarRef *string `json:"avatarRef,omitempty"`
	Note      *string `json:"note,omitempty"`
	Visible   *bool   `json:"visible,omitempty"`
	Verified  *bool   `json:"verified,omitempty"`
}

// Patch 是一次用户编辑。嵌套对象按字段合并，不会被整体替换。
// Kind 不可编辑。
type Patch struct {
	Title         *string         `json:"title,omitempty"`
	Summary       *string         `json:"summary,omitempty"`
	BackgroundRef *string         `json:"backgroundImageRef,omitempty"`
	Category      *string         `json:"category,omitempty"`
	ListItems     []string        `json:"listItems,omitempty"`
	AgeGroup      *string         `json:"ageGroup,omitempty"`
	AgeGroupColor *string         `json:"ageGroupColor,omitempty"`
	MealType      *string         `json:"mealType,omitempty"`
	PrepTime      *string         `json:"prepTime,omitempty"`
	Difficulty    *string         `json:"difficulty,omitempty"`
	Season        *string         `json:"season,omitempty"`
	Allergens     []string        `json:"allergens,omitempty"`
	AllergyRisk   *Risk           `json:"allergyRiskLevel,omitempty"`
	StartAge      *string         `json:"startAge,omitempty"`
	Benefits      *string         `json:"benefitsText,omitempty"`
	Author        *PersonPatch    `json:"attributionAuthor,omitempty"`
	Expert        *PersonPatch    `json:"attributionExpert,omitempty"`
	Watermark     *WatermarkPatch `json:"watermark,omitempty"`
	Visibility    map[Field]bool  `json:"fieldVisibility,omitempty"`
}

// Apply 将补丁合并到 c 的副本上。仅当水印位置非法时返回错误。
func (p Patch) Apply(c Renderable) (Renderable, error) {
	out := c.Clone()
	setString(&out.Title, p.Title)
	setString(&out.Summary, p.Summary)
	setString(&out.BackgroundRef, p.BackgroundRef)
	setString(&out.Category, p.Category)
	setString(&out.AgeGroup, p.AgeGroup)
	setString(&out.AgeGroupColor, p.AgeGroupColor)
	setString(&out.MealType, p.MealType)
	setString(&out.PrepTime, p.PrepTime)
	setString(&out.Difficulty, p.Difficulty)
	setString(&out.Season, p.Season)
	setString(&out.StartAge, p.StartAge)
	setString(&out.Benefits, p.Benefits)
	if p.ListItems != nil {
		out.ListItems = append([]string(nil), p.ListItems...)
	}
	if p.Allergens != nil {
		out.Allergens = append([]string(nil), p.Allergens...)
	}
	if p.AllergyRisk != nil {
		out.AllergyRisk = *p.AllergyRisk
	}
	if p.Author != nil {
		setString(&out.Author.Name, p.Author.Name)
		setString(&out.Author.AvatarRef, p.Author.AvatarRef)
		if p.Author.Visible != nil {
			out.Author.Visible = *p.Author.Visible
		}
	}
	if p.Expert != nil {
		setString(&out.Expert.Name, p.Expert.Name)
		setString(&out.Expert.Title, p.Expert.Title)
		setString(&out.Expert.AvatarRef, p.Expert.AvatarRef)
		setString(&out.Expert.Note, p.Expert.Note)
		if p.Expert.Visible != nil {
			out.Expert.Visible = *p.Expert.Visible
		}
		if p.Expert.Verified != nil {
			out.Expert.Verified = *p.Expert.Verified
		}
	}
	if p.Watermark != nil {
		wm, err := p.Watermark.Apply(out.Watermark)
		if err != nil {
			return c, err
		}
		out.Watermark = wm
	}
	for f, shown := range p.Visibility {
		out.Visibility[f] = shown
	}
	return out, nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
