package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// 合成坐标以像素为单位；渲染器把 1 像素映射为画布的 1 个长度单位（canvas 以 mm 计），
// 字号在与字体系统交互时换算为 pt。

// Conversion constants between pt and canvas units.
const (
	PtToPx = 0.352777
	PxToPt = 1.0 / PtToPx
)

// ToPt 将像素字号转换为 pt。
func ToPt(px float64) float64 { return px * PxToPt }

// ToPx 将 pt 转换为像素。
func ToPx(pt float64) float64 { return pt * PtToPx }

// RGB 返回不透明颜色。
func RGB(r, g, b int) Color { return Color{R: r, G: g, B: b, A: 1} }

// White 返回指定不透明度的白色。
func White(alpha float64) Color { return Color{R: 255, G: 255, B: 255, A: alpha} }

// Black 返回指定不透明度的黑色。
func Black(alpha float64) Color { return Color{A: alpha} }

// WithAlpha 返回替换不透明度后的颜色。
func (c Color) WithAlpha(alpha float64) Color {
	c.A = alpha
	return c
}

// Fade 将不透明度乘以 f。
func (c Color) Fade(f float64) Color {
	c.A *= f
	return c
}

// Ptr 返回颜色副本的指针，便于填充可选字段。
func (c Color) Ptr() *Color { return &c }

// Hex 返回 #rrggbb 形式，忽略透明度。
func (c Color) Hex() string { return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B) }

// ParseColor 解析 #rgb、#rrggbb 与 #rrggbbaa。
func ParseColor(value string) (Color, error) {
	v := strings.TrimPrefix(strings.TrimSpace(value), "#")
	switch len(v) {
	case 3:
		r, g, b := strings.Repeat(v[0:1], 2), strings.Repeat(v[1:2], 2), strings.Repeat(v[2:3], 2)
		return hexColor(r, g, b, "ff", value)
	case 6:
		return hexColor(v[0:2], v[2:4], v[4:6], "ff", value)
	case 8:
		return hexColor(v[0:2], v[2:4], v[4:6], v[6:8], value)
	default:
		return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
}

// MustColor 解析颜色，失败时返回 fallback。
func MustColor(value string, fallback Color) Color {
	c, err := ParseColor(value)
	if err != nil {
		return fallback
	}
	return c
}

func hexColor(r, g, b, a, raw string) (Color, error) {
	var parts [4]int64
	for i, s := range []string{r, g, b, a} {
		n, err := strconv.ParseUint(s, 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("颜色值 %s 无法解析", raw)
		}
		parts[i] = int64(n)
	}
	return Color{R: int(parts[0]), G: int(parts[1]), B: int(parts[2]), A: float64(parts[3]) / 255}, nil
}

// Insets 是四边的内边距。
type Insets struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Uniform 返回四边相等的内边距。
func Uniform(v float64) Insets { return Insets{Top: v, Right: v, Bottom: v, Left: v} }

// AtLeast 返回逐边取较大值的结果。
func (i Insets) AtLeast(o Insets) Insets {
	return Insets{
		Top:    max(i.Top, o.Top),
		Right:  max(i.Right, o.Right),
		Bottom: max(i.Bottom, o.Bottom),
		Left:   max(i.Left, o.Left),
	}
}

// Box 是矩形区域。
type Box struct {
	X, Y, W, H float64
}

// Inset 返回收缩后的区域。
func (b Box) Inset(i Insets) Box {
	return Box{X: b.X + i.Left, Y: b.Y + i.Top, W: b.W - i.Left - i.Right, H: b.H - i.Top - i.Bottom}
}

// Bottom 返回下边缘坐标。
func (b Box) Bottom() float64 { return b.Y + b.H }

// CenterX 返回水平中心。
func (b Box) CenterX() float64 { return b.X + b.W/2 }
