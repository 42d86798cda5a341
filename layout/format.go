package layout

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownFormat 表示输出格式不是 story 或 post。
var ErrUnknownFormat = errors.New("unknown output format")

// Format 是输出画幅，仅支持 story 与 post 两种。
type Format string

const (
	FormatStory Format = "story"
	FormatPost  Format = "post"
)

// Formats 是批量导出时的固定顺序。
var Formats = []Format{FormatStory, FormatPost}

// CanonicalWidth 是两种画幅共同的基准宽度。
const CanonicalWidth = 1080.0

// ParseFormat 解析画幅名称。
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatStory:
		return FormatStory, nil
	case FormatPost:
		return FormatPost, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Size 返回规范分辨率：story 1080×1920，post 1080×1080。
func (f Format) Size() (w, h float64) {
	if f == FormatStory {
		return CanonicalWidth, 1920
	}
	return CanonicalWidth, 1080
}

// SafeArea 返回内容可用区域的内边距。
// story 顶部预留状态栏与账号头部，底部预留回复栏；post 四边统一留白。
func (f Format) SafeArea() Insets {
	if f == FormatStory {
		return Insets{Top: 280, Right: 48, Bottom: 300, Left: 48}
	}
	return Uniform(48)
}

// Typography 是按画幅区分的字号档位（像素）。
type Typography struct {
	Title    float64
	Subtitle float64
	Logo     float64
}

// Typography 返回画幅对应的字号：story 更大，post 略小。
func (f Format) Typography() Typography {
	if f == FormatStory {
		return Typography{Title: 76, Subtitle: 32, Logo: 42}
	}
	return Typography{Title: 68, Subtitle: 28, Logo: 38}
}
