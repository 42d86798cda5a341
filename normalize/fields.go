package normalize

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// term 是 _embedded["wp:term"] 中的一项分类词。
type term struct {
	Taxonomy string
	Name     string
	Meta     map[string]any
}

// 各分类法在不同后端版本中出现过的名称。
var (
	ageGroupTaxonomies = []string{"age-group", "age_group", "yas-grubu", "ageGroup", "yas_grubu"}
	mealTypeTaxonomies = []string{"meal-type", "meal_type", "ogun-tipi", "mealType", "ogun_tipi"}
	categoryTaxonomies = []string{"category", "kategori", "categories"}
	seasonTaxonomies   = []string{"season", "mevsim"}
)

// collectTerms 把嵌套的分类词数组展平。
func collectTerms(v any) []term {
	var out []term
	var walk func(any)
	walk = func(node any) {
		switch n := node.(type) {
		case []any:
			for _, item := range n {
				walk(item)
			}
		case map[string]any:
			t := term{
				Taxonomy: stringOf(n["taxonomy"]),
				Name:     plainText(stringOf(n["name"])),
			}
			if meta, ok := n["meta"].(map[string]any); ok {
				t.Meta = meta
			}
			if t.Taxonomy != "" && t.Name != "" {
				out = append(out, t)
			}
		}
	}
	walk(v)
	return out
}

// findTerm 按名称变体查找分类词，大小写以及 - 与 _ 的差异均被忽略。
func findTerm(terms []term, names []string) (term, bool) {
	for _, t := range terms {
		key := taxonomyKey(t.Taxonomy)
		for _, name := range names {
			if key == taxonomyKey(name) {
				return t, true
			}
		}
	}
	return term{}, false
}

func taxonomyKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", "", "_", "", " ", "").Replace(s)
}

// termColor 读取分类词 meta 中的颜色字段。
func termColor(t term) string {
	for _, key := range []string{"color_code", "colorCode", "color"} {
		if c := strings.TrimSpace(stringOf(t.Meta[key])); c != "" {
			return c
		}
	}
	return ""
}

// avatarKeys 是头像 URL 的探测顺序。
var avatarKeys = []string{"96", "48", "24"}

// pickAvatar 依次尝试已知尺寸，最后按键名排序取第一个非空值。
func pickAvatar(v any) string {
	switch urls := v.(type) {
	case string:
		return strings.TrimSpace(urls)
	case map[string]any:
		for _, k := range avatarKeys {
			if s := strings.TrimSpace(stringOf(urls[k])); s != "" {
				return s
			}
		}
		keys := make([]string, 0, len(urls))
		for k := range urls {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if s := strings.TrimSpace(stringOf(urls[k])); s != "" {
				return s
			}
		}
	}
	return ""
}

// ingredientShape 是一种历史配料字段格式的识别与提取函数。
// ok 为 false 表示数据不是这种格式。
type ingredientShape struct {
	name    string
	extract func(raw any) (items []string, ok bool)
}

// ingredientShapes 按顺序尝试，第一个成功的格式生效。
var ingredientShapes = []ingredientShape{
	{name: "lines", extract: ingredientsFromLines},
	{name: "strings", extract: ingredientsFromStrings},
	{name: "objects", extract: ingredientsFromObjects},
}

// ingredientNameKeys 是结构化配料对象中名称字段的候选键。
var ingredientNameKeys = []string{"ingredient_name", "malzeme", "name", "title"}

func ingredientsFromLines(raw any) ([]string, bool) {
	s, ok := raw.(string)
	if !ok {
		return nil, false
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.NewReplacer("<br />", "\n", "<br/>", "\n", "<br>", "\n").Replace(s)
	var items []string
	for _, line := range strings.Split(s, "\n") {
		if item := plainText(line); item != "" {
			items = append(items, item)
		}
	}
	return items, true
}

func ingredientsFromStrings(raw any) ([]string, bool) {
	switch list := raw.(type) {
	case []string:
		return compactStrings(list), true
	case []any:
		items := make([]string, 0, len(list))
		for _, v := range list {
			s, ok := v.(string)
			if !ok {
				return nil, false
			}
			items = append(items, s)
		}
		return compactStrings(items), true
	}
	return nil, false
}

func ingredientsFromObjects(raw any) ([]string, bool) {
	list, ok := raw.([]any)
	if !ok {
		return nil, false
	}
	var items []string
	matched := false
	for _, v := range list {
		switch item := v.(type) {
		case string:
			if s := plainText(item); s != "" {
				items = append(items, s)
			}
		case map[string]any:
			matched = true
			for _, key := range ingredientNameKeys {
				if s := plainText(stringOf(item[key])); s != "" {
					items = append(items, s)
					break
				}
			}
		}
	}
	return items, matched
}

// parseIngredients 返回配料列表与命中的格式名；无匹配时返回空列表与空名称。
func parseIngredients(raw any) ([]string, string) {
	if raw == nil {
		return []string{}, ""
	}
	for _, shape := range ingredientShapes {
		if items, ok := shape.extract(raw); ok {
			if items == nil {
				items = []string{}
			}
			return items, shape.name
		}
	}
	return []string{}, ""
}

// parseList 接受字符串数组或逗号分隔字符串。
func parseList(raw any) []string {
	switch v := raw.(type) {
	case string:
		return compactStrings(strings.Split(v, ","))
	case []string:
		return compactStrings(v)
	case []any:
		items := make([]string, 0, len(v))
		for _, item := range v {
			switch x := item.(type) {
			case string:
				items = append(items, x)
			case map[string]any:
				items = append(items, firstString(x, "name", "label", "value"))
			}
		}
		return compactStrings(items)
	}
	return nil
}

func compactStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = plainText(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// stringOf 宽松地把标量转换为字符串。
func stringOf(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		if x {
			return "true"
		}
		return ""
	case map[string]any:
		// WordPress 的 {rendered: "..."} 包装
		return stringOf(x["rendered"])
	}
	return ""
}

func boolOf(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		x = strings.TrimSpace(x)
		b, err := strconv.ParseBool(x)
		return (err == nil && b) || strings.EqualFold(x, "yes")
	case json.Number:
		return x.String() != "0"
	case float64:
		return x != 0
	case int:
		return x != 0
	}
	return false
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := strings.TrimSpace(stringOf(m[k])); s != "" {
			return s
		}
	}
	return ""
}

func mapOf(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

// firstMap 取数组中的第一个对象，v 本身是对象时直接返回。
func firstMap(v any) map[string]any {
	switch x := v.(type) {
	case map[string]any:
		return x
	case []any:
		for _, item := range x {
			if m, ok := item.(map[string]any); ok {
				return m
			}
		}
	}
	return nil
}
