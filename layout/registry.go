package layout

import "strings"

// ID 是布局标识，为封闭枚举。
type ID string

const (
	Modern   ID = "modern"
	Classic  ID = "classic"
	Minimal  ID = "minimal"
	Detailed ID = "detailed"
	Featured ID = "featured"
	Info     ID = "info"
	Warning  ID = "warning"
	Quote    ID = "quote"
	Simple   ID = "simple"
)

// Default 是未知标识回退使用的布局。
const Default = Modern

// IDs 列出全部布局。
var IDs = []ID{Modern, Classic, Minimal, Detailed, Featured, Info, Warning, Quote, Simple}

// Func 根据输入生成内容图层。布局函数是纯函数，且能处理任意内容类型。
type Func func(in Input) Layer

// ParseID 解析布局名称，忽略大小写。
func ParseID(s string) (ID, bool) {
	id := ID(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range IDs {
		if id == known {
			return id, true
		}
	}
	return "", false
}

// Get 返回布局函数；未知标识返回默认布局。
func Get(id ID) Func {
	switch id {
	case Modern:
		return modernLayout
	case Classic:
		return classicLayout
	case Minimal:
		return minimalLayout
	case Detailed:
		return detailedLayout
	case Featured:
		return featuredLayout
	case Info:
		return infoLayout
	case Warning:
		return warningLayout
	case Quote:
		return quoteLayout
	case Simple:
		return simpleLayout
	}
	return modernLayout
}

// Lookup 按名称解析布局，ok 为 false 表示已回退到默认布局。
func Lookup(name string) (id ID, fn Func, ok bool) {
	id, ok = ParseID(name)
	if !ok {
		id = Default
	}
	return id, Get(id), ok
}

// Title 返回布局的展示名称。
func (id ID) Title() string {
	switch id {
	case Modern:
		return "Modern"
	case Classic:
		return "Klasik"
	case Minimal:
		return "Minimal"
	case Detailed:
		return "Detaylı"
	case Featured:
		return "Öne Çıkan"
	case Info:
		return "Bilgi Kartı"
	case Warning:
		return "Uyarı"
	case Quote:
		return "Alıntı"
	case Simple:
		return "Sade"
	}
	return string(id)
}

// DrawsOwnPanel 表示布局自带实色面板，不需要可读性渐变。
func (id ID) DrawsOwnPanel() bool {
	return id == Detailed || id == Minimal
}

// ShowsCategoryBadge 表示由合成器叠加分类徽章，仅默认布局如此。
func (id ID) ShowsCategoryBadge() bool {
	return id == Default
}

// ListCap 返回列表在该布局与画幅下最多展示的条目数，post 少于 story。
func ListCap(id ID, f Format) int {
	story := f == FormatStory
	switch id {
	case Modern:
		return pick(story, 5, 4)
	case Detailed:
		return pick(story, 6, 4)
	default:
		return pick(story, 4, 3)
	}
}

func pick(cond bool, a, b int) int {
	if cond {
		return a
	}
	return b
}

// TruncateList 截取前 limit 项，more 为剩余数量。
// 两者由同一切片长度计算，len(shown)+more 恒等于 len(items)。
func TruncateList(items []string, limit int) (shown []string, more int) {
	if limit < 0 {
		limit = 0
	}
	n := min(len(items), limit)
	shown = items[:n:n]
	return shown, len(items) - n
}
