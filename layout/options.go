package layout

import "github.com/ByLCY/cardstudio/content"

// Typesetter 负责根据字体与宽度约束将文本拆成可绘制的行。
// width <= 0 表示不限宽度，此时每行的 Width 即文本实际宽度。
type Typesetter interface {
	LayoutLines(content string, width float64, font FontResource, fontSize float64, lineHeight float64, wrap string) ([]TextLine, error)
}

// 字体名称。
const (
	FontBody       = "Body"
	FontMedium     = "Medium"
	FontBold       = "Bold"
	FontItalic     = "Italic"
	FontBoldItalic = "BoldItalic"
)

// Fonts 是合成中引用的字体资源，均来自内置字体。
var Fonts = map[string]FontResource{
	FontBody:       {Name: FontBody, Src: "embed:Go-Regular.ttf", Style: "regular", Family: "Go"},
	FontMedium:     {Name: FontMedium, Src: "embed:Go-Medium.ttf", Style: "medium", Family: "Go Medium"},
	FontBold:       {Name: FontBold, Src: "embed:Go-Bold.ttf", Style: "bold", Family: "Go"},
	FontItalic:     {Name: FontItalic, Src: "embed:Go-Italic.ttf", Style: "italic", Family: "Go"},
	FontBoldItalic: {Name: FontBoldItalic, Src: "embed:Go-Bold-Italic.ttf", Style: "bold italic", Family: "Go"},
}

// ResolveFont 按名称查找字体，未知名称回退到正文字体。
func ResolveFont(name string) FontResource {
	if f, ok := Fonts[name]; ok {
		return f
	}
	return Fonts[FontBody]
}

// Theme 是布局使用的强调色组合。
type Theme struct {
	Name      string `json:"name"`
	Accent    Color  `json:"accent"`
	Primary   Color  `json:"primary"`
	Secondary Color  `json:"secondary"`
}

// DefaultTheme 返回品牌默认配色。
func DefaultTheme() Theme {
	return Theme{
		Name:      "kidsgourmet",
		Accent:    MustColor(content.ColorAccent, RGB(255, 127, 63)),
		Primary:   MustColor(content.ColorPrimary, RGB(255, 138, 101)),
		Secondary: RGB(174, 213, 129),
	}
}

// Input 是布局函数的全部输入。
type Input struct {
	Content    content.Renderable
	Format     Format
	Theme      Theme
	Typesetter Typesetter
	// Resolve 把头像等图片引用转换为可访问地址；为空时原样使用。
	Resolve func(ref string) string
}
