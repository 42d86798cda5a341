package layout

import "strconv"

// 元素角色，用于调试输出与测试定位。
const (
	RoleTitle        = "title"
	RoleSummary      = "summary"
	RoleCategory     = "category"
	RoleAgeGroup     = "chip.ageGroup"
	RoleMealType     = "chip.mealType"
	RolePrepTime     = "chip.prepTime"
	RoleSeason       = "chip.season"
	RoleStartAge     = "chip.startAge"
	RoleAllergen     = "chip.allergen"
	RoleIngredient   = "chip.ingredient"
	RoleMore         = "chip.more"
	RoleRisk         = "risk"
	RoleBenefits     = "benefits"
	RoleSectionLabel = "section"
	RoleExpert       = "expert"
	RoleExpertName   = "expert.name"
	RoleExpertTitle  = "expert.title"
	RoleExpertNote   = "expert.note"
	RoleAuthor       = "author"
	RoleAuthorName   = "author.name"
	RoleAccent       = "accent"
	RolePanel        = "panel"
	RoleQuoteMark    = "quote.mark"
	RoleKindIcon     = "kind.icon"
	RoleBackground   = "background"
	RolePlaceholder  = "placeholder"
	RoleReadability  = "readability"
	RoleWatermark    = "watermark"
	RoleWordmark     = "wordmark"
)

// MoreLabel 返回截断指示文本，例如 "+2"。
func MoreLabel(n int) string { return "+" + strconv.Itoa(n) }
