package content

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidAnchor 表示水印位置不在五个固定锚点之内。
var ErrInvalidAnchor = errors.New("invalid watermark anchor")

// Anchor 是水印的固定放置锚点。
type Anchor string

const (
	AnchorTopLeft     Anchor = "top-left"
	AnchorTopRight    Anchor = "top-right"
	AnchorBottomLeft  Anchor = "bottom-left"
	AnchorBottomRight Anchor = "bottom-right"
	AnchorCenter      Anchor = "center"
)

// Anchors 列出全部合法锚点。
var Anchors = []Anchor{AnchorTopLeft, AnchorTopRight, AnchorBottomLeft, AnchorBottomRight, AnchorCenter}

// ParseAnchor 解析锚点名称，未知值返回 ErrInvalidAnchor。
func ParseAnchor(s string) (Anchor, error) {
	a := Anchor(strings.ToLower(strings.TrimSpace(s)))
	if a.Valid() {
		return a, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidAnchor, s)
}

// Valid 判断锚点是否合法。
func (a Anchor) Valid() bool {
	switch a {
	case AnchorTopLeft, AnchorTopRight, AnchorBottomLeft, AnchorBottomRight, AnchorCenter:
		return true
	}
	return false
}

// MinWatermarkScale 是缩放比例的下限，非正数或 NaN 会被提升到该值。
const MinWatermarkScale = 0.1

// Watermark 描述品牌水印叠加层。
type Watermark struct {
	Visible  bool    `json:"visible" yaml:"visible"`
	ImageRef string  `json:"imageRef" yaml:"imageRef"`
	Position Anchor  `json:"position" yaml:"position"`
	Opacity  float64 `json:"opacity" yaml:"opacity"`
	Scale    float64 `json:"scale" yaml:"scale"`
}

// DefaultWatermark 返回默认水印：可见、右上角、不透明、原始大小。
func DefaultWatermark() Watermark {
	return Watermark{Visible: true, Position: AnchorTopRight, Opacity: 1, Scale: 1}
}

// Clamped 返回范围修正后的副本：opacity ∈ [0,1]，scale > 0。
// 锚点不做修正，由 Validate 检查。
func (w Watermark) Clamped() Watermark {
	w.Opacity = ClampOpacity(w.Opacity)
	w.Scale = ClampScale(w.Scale)
	return w
}

// Validate 检查锚点，非法时返回 ErrInvalidAnchor。
func (w Watermark) Validate() error {
	if !w.Position.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidAnchor, string(w.Position))
	}
	return nil
}

// ClampOpacity 将不透明度限制在 [0,1]。
func ClampOpacity(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ClampScale 保证缩放比例为有限正数。
func ClampScale(v float64) float64 {
	if math.IsNaN(v) || v <= 0 {
		return MinWatermarkScale
	}
	if math.IsInf(v, 1) {
		return math.MaxFloat32
	}
	return v
}

// WatermarkPatch 是水印的局部更新，nil 字段保持原值。
type WatermarkPatch struct {
	Visible  *bool    `json:"visible,omitempty"`
	ImageRef *string  `json:"imageRef,omitempty"`
	Position *string  `json:"position,omitempty"`
	Opacity  *float64 `json:"opacity,omitempty"`
	Scale    *float64 `json:"scale,omitempty"`
}

// Apply 将补丁合并到 w 上，结果已做范围修正。
// 位置非法时返回 ErrInvalidAnchor，w 保持不变。
func (p WatermarkPatch) Apply(w Watermark) (Watermark, error) {
	out := w
	if p.Position != nil {
		a, err := ParseAnchor(*p.Position)
		if err != nil {
			return w, err
		}
		out.Position = a
	}
	if p.Visible != nil {
		out.Visible = *p.Visible
	}
	if p.ImageRef != nil {
		out.ImageRef = strings.TrimSpace(*p.ImageRef)
	}
	if p.Opacity != nil {
		out.Opacity = *p.Opacity
	}
	if p.Scale != nil {
		out.Scale = *p.Scale
	}
	return out.Clamped(), nil
}

// Empty 判断补丁是否没有任何字段。
func (p WatermarkPatch) Empty() bool {
	return p.Visible == nil && p.ImageRef == nil && p.Position == nil && p.Opacity == nil && p.Scale == nil
}
