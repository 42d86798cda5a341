package binding

import "strings"

var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizeFileName 替换文件系统不允许的字符，并去掉首尾空白。
func SanitizeFileName(name string) string {
	return strings.TrimSpace(fileNameReplacer.Replace(strings.TrimSpace(name)))
}

// FileName 用 vars 插值 pattern；每个值先做文件名清理，避免值中的斜杠生成子目录。
func FileName(pattern string, vars Vars) (string, error) {
	clean := make(Vars, len(vars))
	for k, v := range vars {
		if s, ok := v.(string); ok {
			clean[k] = SanitizeFileName(s)
			continue
		}
		clean[k] = v
	}
	name, err := Strict(pattern, clean)
	if err != nil {
		return "", err
	}
	return SanitizeFileName(strings.ReplaceAll(name, " ", "-")), nil
}
