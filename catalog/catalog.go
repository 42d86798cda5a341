// Package catalog 提供内置的卡片模板与主题预设。
// 模板把内容类型、画幅与布局绑定为一个可选项；主题预设提供布局使用的配色。
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/ByLCY/cardstudio/content"
	"github.com/ByLCY/cardstudio/layout"
)

//go:embed catalog.yaml
var builtin []byte

// ErrUnknownTemplate 表示模板标识不存在。
var ErrUnknownTemplate = errors.New("unknown template")

// 模板类型标签。
const (
	TypeRecipe = "recipe"
	TypeBlog   = "blog"
	TypeGuide  = "guide"
)

// Template 是一个命名的卡片模板。
type Template struct {
	ID          string        `yaml:"id" json:"id"`
	Name        string        `yaml:"name" json:"name"`
	Description string        `yaml:"description" json:"description"`
	Type        string        `yaml:"type" json:"templateType"`
	Format      layout.Format `yaml:"format" json:"format"`
	Layout      layout.ID     `yaml:"layout" json:"layout"`
	Features    []string      `yaml:"features" json:"features"`
	Tags        []string      `yaml:"tags" json:"tags"`
}

// Kind 返回模板适用的内容类型。
func (t Template) Kind() content.Kind {
	switch t.Type {
	case TypeRecipe:
		return content.KindRecipe
	case TypeGuide:
		return content.KindIngredientGuide
	default:
		return content.KindArticle
	}
}

// HasFeature 判断模板是否声明了某个展示特性。
func (t Template) HasFeature(name string) bool {
	for _, f := range t.Features {
		if strings.EqualFold(f, name) {
			return true
		}
	}
	return false
}

// Colors 是主题预设的配色。
type Colors struct {
	Primary    string `yaml:"primary" json:"primary"`
	Secondary  string `yaml:"secondary" json:"secondary"`
	Accent     string `yaml:"accent" json:"accent"`
	Background string `yaml:"background" json:"background"`
	Text       string `yaml:"text" json:"text"`
}

// ThemePreset 是命名的配色方案。
type ThemePreset struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Colors      Colors `yaml:"colors" json:"colors"`
}

// Theme 转换为布局配色，无法解析的颜色回退到默认主题。
func (p ThemePreset) Theme() layout.Theme {
	def := layout.DefaultTheme()
	return layout.Theme{
		Name:      p.ID,
		Accent:    layout.MustColor(p.Colors.Accent, def.Accent),
		Primary:   layout.MustColor(p.Colors.Primary, def.Primary),
		Secondary: layout.MustColor(p.Colors.Secondary, def.Secondary),
	}
}

// Catalog 保存全部模板与主题预设，加载后只读。
type Catalog struct {
	Templates []Template    `yaml:"templates"`
	Themes    []ThemePreset `yaml:"themes"`
}

var defaultCatalog = sync.OnceValue(func() *Catalog {
	c, err := Load(bytes.NewReader(builtin))
	if err != nil {
		panic(fmt.Sprintf("内置模板目录无效: %v", err))
	}
	return c
})

// Default 返回内置目录。
func Default() *Catalog { return defaultCatalog() }

// Load 解析 YAML 目录并校验画幅、布局与标识唯一性。
func Load(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var c Catalog
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("解析模板目录失败: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	seen := map[string]bool{}
	for i, t := range c.Templates {
		if t.ID == "" {
			return fmt.Errorf("第 %d 个模板缺少 id", i+1)
		}
		if seen[t.ID] {
			return fmt.Errorf("模板 %s 重复", t.ID)
		}
		seen[t.ID] = true
		if _, err := layout.ParseFormat(string(t.Format)); err != nil {
			return fmt.Errorf("模板 %s: %w", t.ID, err)
		}
		if _, ok := layout.ParseID(string(t.Layout)); !ok {
			return fmt.Errorf("模板 %s: 未知布局 %q", t.ID, t.Layout)
		}
		switch t.Type {
		case TypeRecipe, TypeBlog, TypeGuide:
		default:
			return fmt.Errorf("模板 %s: 未知类型 %q", t.ID, t.Type)
		}
	}
	themes := map[string]bool{}
	for _, p := range c.Themes {
		if p.ID == "" || themes[p.ID] {
			return fmt.Errorf("主题 %q 缺少 id 或重复", p.ID)
		}
		themes[p.ID] = true
	}
	return nil
}

// Template 按标识查找模板。
func (c *Catalog) Template(id string) (Template, error) {
	id = strings.TrimSpace(id)
	for _, t := range c.Templates {
		if t.ID == id {
			return t, nil
		}
	}
	return Template{}, fmt.Errorf("%w: %q", ErrUnknownTemplate, id)
}

// ForKind 返回适用于内容类型的模板，保持目录顺序。
func (c *Catalog) ForKind(k content.Kind) []Template {
	var out []Template
	for _, t := range c.Templates {
		if t.Kind() == k {
			out = append(out, t)
		}
	}
	return out
}

// Filter 按类型与画幅筛选；空值表示不限。
func (c *Catalog) Filter(k content.Kind, f layout.Format) []Template {
	var out []Template
	for _, t := range c.Templates {
		if k != "" && t.Kind() != k {
			continue
		}
		if f != "" && t.Format != f {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Counts 返回各类型的模板数量。
func (c *Catalog) Counts() map[string]int {
	out := map[string]int{}
	for _, t := range c.Templates {
		out[t.Type]++
	}
	return out
}

// Theme 按标识查找主题预设，忽略大小写。
func (c *Catalog) Theme(id string) (ThemePreset, bool) {
	for _, p := range c.Themes {
		if strings.EqualFold(p.ID, strings.TrimSpace(id)) {
			return p, true
		}
	}
	return ThemePreset{}, false
}
