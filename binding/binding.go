// Package binding 提供 ${path} 占位符插值，用于导出文件名与说明文字模板。
package binding

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// ErrUnbound 表示模板引用了数据中不存在的路径。
var ErrUnbound = errors.New("unbound placeholder")

// Vars 是插值数据，值可以是嵌套的 Vars、map[string]any 或 []any。
type Vars map[string]any

// Interpolate 将文本中的 ${path.to.value} 替换为 data 中的值。
// 若 data 为空或路径不存在，则保留原占位符。
func Interpolate(text string, data any) string {
	out, _ := interpolate(text, data, nil)
	return out
}

// Strict 与 Interpolate 相同，但遇到无法解析的路径时返回 ErrUnbound。
func Strict(text string, data any) (string, error) {
	var missing []string
	out, _ := interpolate(text, data, &missing)
	if len(missing) > 0 {
		return out, fmt.Errorf("%w: %s", ErrUnbound, strings.Join(missing, ", "))
	}
	return out, nil
}

// Placeholders 返回模板中出现的全部路径，按出现顺序且不去重。
func Placeholders(text string) []string {
	var out []string
	for _, m := range exprPattern.FindAllStringSubmatch(text, -1) {
		out = append(out, strings.TrimSpace(m[1]))
	}
	return out
}

func interpolate(text string, data any, missing *[]string) (string, bool) {
	ok := true
	out := exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		path := strings.TrimSpace(match[2 : len(match)-1])
		if val, found := lookup(data, path); found {
			return fmt.Sprint(val)
		}
		ok = false
		if missing != nil {
			*missing = append(*missing, path)
		}
		return match
	})
	return out, ok
}

// step 是路径中的一级：键名或数组下标。
type step struct {
	key   string
	index int
	isIdx bool
}

// parsePath 把 "a.b[0][1]" 拆成 a、b、0、1 四级。
func parsePath(path string) ([]step, bool) {
	if path == "" {
		return nil, false
	}
	var steps []step
	for _, segment := range strings.Split(path, ".") {
		name, rest, _ := strings.Cut(segment, "[")
		if name != "" {
			steps = append(steps, step{key: name})
		}
		for rest != "" {
			idx, tail, found := strings.Cut(rest, "]")
			if !found {
				return nil, false
			}
			n, err := strconv.Atoi(idx)
			if err != nil {
				return nil, false
			}
			steps = append(steps, step{index: n, isIdx: true})
			rest = strings.TrimPrefix(tail, "[")
		}
	}
	return steps, len(steps) > 0
}

func lookup(data any, path string) (any, bool) {
	if data == nil {
		return nil, false
	}
	steps, ok := parsePath(path)
	if !ok {
		return nil, false
	}
	current := data
	for _, st := range steps {
		if current, ok = st.descend(current); !ok {
			return nil, false
		}
	}
	return current, true
}

func (st step) descend(v any) (any, bool) {
	if st.isIdx {
		switch c := v.(type) {
		case []any:
			return at(c, st.index)
		case []string:
			return at(c, st.index)
		}
		return nil, false
	}
	switch c := v.(type) {
	case Vars:
		val, ok := c[st.key]
		return val, ok
	case map[string]any:
		val, ok := c[st.key]
		return val, ok
	case map[string]string:
		val, ok := c[st.key]
		return val, ok
	}
	return nil, false
}

func at[T any](items []T, i int) (any, bool) {
	if i < 0 || i >= len(items) {
		return nil, false
	}
	return items[i], true
}
