package layout

// 该文件定义合成结果的几何结构，供布局计算、渲染、预览缩放与调试 JSON 共用。
// 所有坐标均为画布像素（规范分辨率），缩放只在外部变换中进行。

// Composition 是某个 (内容, 格式, 布局) 组合的定位元素树。
type Composition struct {
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Format     Format  `json:"format"`
	Layout     ID      `json:"layout"`
	Background Color   `json:"background"`
	Layers     []Layer `json:"layers"`
}

// 图层名称，按绘制顺序排列。
const (
	LayerBackground = "background"
	LayerOverlay    = "overlay"
	LayerContent    = "content"
	LayerBadge      = "badge"
	LayerWatermark  = "watermark"
)

// Layer 是一组同层元素。同一图层内先绘制形状，再绘制图片、图标与文本。
type Layer struct {
	Name      string     `json:"name"`
	Gradients []Gradient `json:"gradients,omitempty"`
	Rects     []Rect     `json:"rects,omitempty"`
	Circles   []Circle   `json:"circles,omitempty"`
	Lines     []Line     `json:"lines,omitempty"`
	Images    []ImageBox `json:"images,omitempty"`
	Glyphs    []Glyph    `json:"glyphs,omitempty"`
	Texts     []TextBox  `json:"texts,omitempty"`
}

// Color 采用 0-255 的 RGB 数值与 0-1 的不透明度。
type Color struct {
	R int     `json:"r"`
	G int     `json:"g"`
	B int     `json:"b"`
	A float64 `json:"a"`
}

// Rect 表示一个矩形，Radius 为圆角半径。
type Rect struct {
	Role        string  `json:"role,omitempty"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Radius      float64 `json:"radius,omitempty"`
	FillColor   *Color  `json:"fillColor,omitempty"` // 为空表示不填充
	StrokeColor Color   `json:"strokeColor"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"` // <=0 表示无描边
}

// Circle 表示一个圆。
type Circle struct {
	Role        string  `json:"role,omitempty"`
	CX          float64 `json:"cx"`
	CY          float64 `json:"cy"`
	R           float64 `json:"r"`
	FillColor   *Color  `json:"fillColor,omitempty"`
	StrokeColor Color   `json:"strokeColor"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`
}

// Line 表示一条线段。
type Line struct {
	X1    float64 `json:"x1"`
	Y1    float64 `json:"y1"`
	X2    float64 `json:"x2"`
	Y2    float64 `json:"y2"`
	Color Color   `json:"color"`
	Width float64 `json:"width"`
}

// GradientDirection 是线性渐变的方向。
type GradientDirection string

const (
	ToTop         GradientDirection = "to-top"
	ToBottom      GradientDirection = "to-bottom"
	ToRight       GradientDirection = "to-right"
	ToBottomRight GradientDirection = "to-bottom-right"
)

// GradientStop 是渐变色标，Offset ∈ [0,1]。
type GradientStop struct {
	Offset float64 `json:"offset"`
	Color  Color   `json:"color"`
}

// Gradient 是矩形区域内的线性渐变。
type Gradient struct {
	Role      string            `json:"role,omitempty"`
	X         float64           `json:"x"`
	Y         float64           `json:"y"`
	Width     float64           `json:"width"`
	Height    float64           `json:"height"`
	Radius    float64           `json:"radius,omitempty"`
	Direction GradientDirection `json:"direction"`
	Stops     []GradientStop    `json:"stops"`
	Opacity   float64           `json:"opacity"`
}

// 图片适配方式。
const (
	FitCover   = "cover"
	FitContain = "contain"
)

// ImageBox 描述图片位置与尺寸。Src 为已解析的可访问地址。
type ImageBox struct {
	Role     string  `json:"role,omitempty"`
	Src      string  `json:"src"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Fit      string  `json:"fit"`
	Opacity  float64 `json:"opacity"`
	Round    bool    `json:"round,omitempty"`    // 裁剪为圆形
	Fallback *Color  `json:"fallback,omitempty"` // 加载失败时的填充色
}

// GlyphName 是内置矢量图标名称。
type GlyphName string

const (
	GlyphChef    GlyphName = "chef"
	GlyphArticle GlyphName = "article"
	GlyphBook    GlyphName = "book"
	GlyphBaby    GlyphName = "baby"
	GlyphClock   GlyphName = "clock"
	GlyphLeaf    GlyphName = "leaf"
	GlyphAlert   GlyphName = "alert"
	GlyphUser    GlyphName = "user"
	GlyphCheck   GlyphName = "check"
)

// Glyph 是一个正方形区域内的图标。
type Glyph struct {
	Role  string    `json:"role,omitempty"`
	Name  GlyphName `json:"name"`
	X     float64   `json:"x"`
	Y     float64   `json:"y"`
	Size  float64   `json:"size"`
	Color Color     `json:"color"`
}

// TextBox 表示一个已经排好坐标的文本块。
type TextBox struct {
	Role       string     `json:"role,omitempty"`
	Content    string     `json:"content"`
	X          float64    `json:"x"`
	Y          float64    `json:"y"`
	Width      float64    `json:"width"`
	LineHeight float64    `json:"lineHeight"`
	Font       string     `json:"font"`
	FontSize   float64    `json:"fontSize"`
	Color      Color      `json:"color"`
	Lines      []TextLine `json:"lines"`
	Height     float64    `json:"height"`
	Align      string     `json:"align,omitempty"` // left/center/right（默认 left）
	Wrap       string     `json:"wrap,omitempty"`  // anywhere(默认)/break-word/nowrap
}

// TextLine 表示排版后的一行文本内容及其宽高。
type TextLine struct {
	Content   string  `json:"content"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	GapBefore float64 `json:"gapBefore,omitempty"`
}

// FontResource 描述字体资源，src 可以是 embed:* 或文件路径。
type FontResource struct {
	Name   string `json:"name"`
	Src    string `json:"src"`
	Style  string `json:"style"`
	Family string `json:"family"`
}

// Bounds 返回合成的外框，始终等于规范尺寸。
func (c *Composition) Bounds() (x, y, w, h float64) {
	return 0, 0, c.Width, c.Height
}

// Layer 按名称查找图层，不存在时返回 nil。
func (c *Composition) Layer(name string) *Layer {
	for i := range c.Layers {
		if c.Layers[i].Name == name {
			return &c.Layers[i]
		}
	}
	return nil
}

// TextsByRole 返回所有图层中指定角色的文本块。
func (c *Composition) TextsByRole(role string) []TextBox {
	var out []TextBox
	for _, l := range c.Layers {
		for _, t := range l.Texts {
			if t.Role == role {
				out = append(out, t)
			}
		}
	}
	return out
}

// ImagesByRole 返回所有图层中指定角色的图片。
func (c *Composition) ImagesByRole(role string) []ImageBox {
	var out []ImageBox
	for _, l := range c.Layers {
		for _, img := range l.Images {
			if img.Role == role {
				out = append(out, img)
			}
		}
	}
	return out
}

// Empty 判断图层是否没有任何元素。
func (l *Layer) Empty() bool {
	return len(l.Gradients) == 0 && len(l.Rects) == 0 && len(l.Circles) == 0 &&
		len(l.Lines) == 0 && len(l.Images) == 0 && len(l.Glyphs) == 0 && len(l.Texts) == 0
}

// Translate 平移图层内全部元素。
func (l *Layer) Translate(dx, dy float64) {
	for i := range l.Gradients {
		l.Gradients[i].X += dx
		l.Gradients[i].Y += dy
	}
	for i := range l.Rects {
		l.Rects[i].X += dx
		l.Rects[i].Y += dy
	}
	for i := range l.Circles {
		l.Circles[i].CX += dx
		l.Circles[i].CY += dy
	}
	for i := range l.Lines {
		l.Lines[i].X1 += dx
		l.Lines[i].X2 += dx
		l.Lines[i].Y1 += dy
		l.Lines[i].Y2 += dy
	}
	for i := range l.Images {
		l.Images[i].X += dx
		l.Images[i].Y += dy
	}
	for i := range l.Glyphs {
		l.Glyphs[i].X += dx
		l.Glyphs[i].Y += dy
	}
	for i := range l.Texts {
		l.Texts[i].X += dx
		l.Texts[i].Y += dy
	}
}

// Append 将 other 的元素追加到 l。
func (l *Layer) Append(other Layer) {
	l.Gradients = append(l.Gradients, other.Gradients...)
	l.Rects = append(l.Rects, other.Rects...)
	l.Circles = append(l.Circles, other.Circles...)
	l.Lines = append(l.Lines, other.Lines...)
	l.Images = append(l.Images, other.Images...)
	l.Glyphs = append(l.Glyphs, other.Glyphs...)
	l.Texts = append(l.Texts, other.Texts...)
}
