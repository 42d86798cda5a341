package content

import "strings"

// Kind 表示内容类型，为封闭枚举，只在规范化时确定一次。
type Kind string

const (
	KindRecipe          Kind = "recipe"
	KindArticle         Kind = "article"
	KindIngredientGuide Kind = "ingredientGuide"
)

// Kinds 按固定顺序列出全部内容类型。
var Kinds = []Kind{KindRecipe, KindArticle, KindIngredientGuide}

// Valid 判断 k 是否属于三种内容类型之一。
func (k Kind) Valid() bool {
	switch k {
	case KindRecipe, KindArticle, KindIngredientGuide:
		return true
	}
	return false
}

// Slug 返回用于文件名的短名称。
func (k Kind) Slug() string {
	switch k {
	case KindRecipe:
		return "recipe"
	case KindIngredientGuide:
		return "guide"
	default:
		return "article"
	}
}

// ResolveKind 将后端的类型标签映射为内容类型，忽略大小写并兼容单复数。
// 第二个返回值为 false 表示标签无法识别，已降级为 article。
func ResolveKind(tag string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "recipe", "recipes":
		return KindRecipe, true
	case "ingredient", "ingredients", "ingredientguide", "guide", "guides":
		return KindIngredientGuide, true
	case "article", "articles", "post", "posts", "blog", "blogs":
		return KindArticle, true
	}
	return KindArticle, false
}

// Risk 是过敏风险的序数等级。
type Risk int

const (
	RiskUnknown Risk = iota
	RiskLow
	RiskMedium
	RiskHigh
)

// ParseRisk 识别土耳其语与英语的风险标签。
func ParseRisk(label string) Risk {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "düşük", "dusuk", "low":
		return RiskLow
	case "orta", "medium":
		return RiskMedium
	case "yüksek", "yuksek", "high":
		return RiskHigh
	}
	return RiskUnknown
}

// Label 返回风险等级的展示文本。
func (r Risk) Label() string {
	switch r {
	case RiskLow:
		return "Düşük"
	case RiskMedium:
		return "Orta"
	case RiskHigh:
		return "Yüksek"
	}
	return ""
}
