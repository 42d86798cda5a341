package fonts

import (
	"fmt"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/goregular"
)

// 内置字体表，键为 "embed:" 之后的文件名。
var builtin = map[string][]byte{
	"Go-Regular.ttf":     goregular.TTF,
	"Go-Medium.ttf":      gomedium.TTF,
	"Go-Bold.ttf":        gobold.TTF,
	"Go-Italic.ttf":      goitalic.TTF,
	"Go-Bold-Italic.ttf": gobolditalic.TTF,
}

// Regular 是渲染器的回退字体。
const Regular = "Go-Regular.ttf"

// Load 返回内置字体的字节数据，path 可写为 "embed:Go-Bold.ttf" 或直接 "Go-Bold.ttf"。
func Load(path string) ([]byte, error) {
	name := strings.TrimPrefix(strings.TrimSpace(path), "embed:")
	data, ok := builtin[name]
	if !ok {
		return nil, fmt.Errorf("读取内置字体 %s 失败: 不存在", name)
	}
	return data, nil
}

// Names 返回全部内置字体文件名。
func Names() []string {
	out := make([]string, 0, len(builtin))
	for name := range builtin {
		out = append(out, name)
	}
	return out
}
