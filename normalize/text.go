package normalize

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

var (
	tagPattern = regexp.MustCompile(`<[^>]+>`)

	// WordPress 常见的排版实体，统一替换为普通字符。
	entityReplacer = strings.NewReplacer(
		"&#8217;", "'",
		"&#8216;", "'",
		"&#8220;", `"`,
		"&#8221;", `"`,
		"&#8211;", "–",
		"&#8212;", "—",
		"&#038;", "&",
		"&nbsp;", " ",
	)

	// html 解析后残留的排版引号。
	quoteReplacer = strings.NewReplacer(
		"‘", "'",
		"’", "'",
		"“", `"`,
		"”", `"`,
	)
)

// plainText 解码实体、去除标签并折叠空白。
func plainText(s string) string {
	s = entityReplacer.Replace(s)
	if strings.ContainsAny(s, "<&") {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
		if err == nil {
			s = doc.Text()
		} else {
			s = tagPattern.ReplaceAllString(s, "")
		}
	}
	s = quoteReplacer.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// truncate 按字符数截断，超长时以省略号结尾，结果不超过 limit 个字符。
func truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	cut := strings.TrimRight(string(runes[:limit-1]), " ,.;:")
	return cut + "…"
}
