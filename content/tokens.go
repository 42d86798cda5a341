package content

import "strings"

// 品牌设计色板。
const (
	ColorBackground = "#0a0a0a"
	ColorAccent     = "#FF7F3F"
	ColorPrimary    = "#FF8A65"
)

// AgeGroupColors 是年龄段的默认配色。
var AgeGroupColors = map[string]string{
	"6-9 Ay":  "#FF8A65",
	"9-12 Ay": "#AED581",
	"12+ Ay":  "#81D4FA",
	"1-2 Yaş": "#FFF176",
	"2+ Yaş":  "#B39DDB",
}

// RiskColors 是过敏风险等级的配色。
var RiskColors = map[Risk]string{
	RiskLow:    "#4CAF50",
	RiskMedium: "#FFC107",
	RiskHigh:   "#F44336",
}

// SeasonColors 是季节标签的配色。
var SeasonColors = map[string]string{
	"İlkbahar": "#E91E63",
	"Yaz":      "#FF9800",
	"Sonbahar": "#795548",
	"Kış":      "#2196F3",
	"Tüm Yıl":  "#4CAF50",
}

// AgeGroupColor 查找年龄段配色，未登记时返回品牌主色。
func AgeGroupColor(name string) string {
	if c, ok := lookupFold(AgeGroupColors, name); ok {
		return c
	}
	return DefaultAgeGroupColor
}

// SeasonColor 查找季节配色，未登记时返回空串。
func SeasonColor(name string) string {
	c, _ := lookupFold(SeasonColors, name)
	return c
}

func lookupFold(m map[string]string, key string) (string, bool) {
	key = strings.TrimSpace(key)
	if c, ok := m[key]; ok {
		return c, true
	}
	for k, c := range m {
		if strings.EqualFold(k, key) {
			return c, true
		}
	}
	return "", false
}
