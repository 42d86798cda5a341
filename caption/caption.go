// Package caption 为卡片生成社交媒体配文：按内容类型随机挑选模板并附加话题标签。
package caption

import (
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/ByLCY/cardstudio/content"
)

// 话题标签数量的范围与默认值。
const (
	MinHashtags     = 5
	MaxHashtags     = 20
	DefaultHashtags = 10
)

// 占位符缺省时使用的文本。
const (
	DefaultTitle   = "Tarifimiz"
	DefaultExcerpt = "Detaylar için takipte kalın!"
	Fallback       = "Varsayılan caption metni buraya gelecek."
)

// Templates 按内容类型列出配文模板，{title} 与 {excerpt} 为占位符。
var Templates = map[content.Kind][]string{
	content.KindRecipe: {
		"🍽️ {title} tarifimizi denemeye hazır mısınız?\n\n{excerpt}\n\n",
		"👶 Bebeğiniz için özel {title} tarifi!\n\n{excerpt}\n\n",
		"💚 Sağlıklı ve lezzetli: {title}\n\n{excerpt}\n\n",
	},
	content.KindArticle: {
		"📝 {title}\n\n{excerpt}\n\n",
		"💡 İpucu: {title}\n\n{excerpt}\n\n",
		"🌟 {title} hakkında bilmeniz gerekenler!\n\n{excerpt}\n\n",
	},
	content.KindIngredientGuide: {
		"📖 Rehber: {title}\n\n{excerpt}\n\n",
		"🎯 {title} - Detaylı rehber\n\n{excerpt}\n\n",
		"✨ {title} için kapsamlı kılavuz\n\n{excerpt}\n\n",
	},
}

// HashtagPool 是候选话题标签。
var HashtagPool = []string{
	"#bebekyemekleri", "#cocukyemekleri", "#sagliklibeslenme", "#cocuktarifleri",
	"#bebekyemegi", "#annecocuk", "#bebektarifleri", "#6ay", "#9ay", "#1yas", "#2yas",
	"#cocuk", "#organik", "#evyapimi", "#saglikli", "#dogal", "#katkisiz", "#tatli",
	"#kahvalti", "#ogle", "#aksam", "#atistirma", "#kidsgourmet", "#kidsgourmetstudio",
	"#turkiyedebebekler", "#anneblogger", "#mamablogu",
}

// Request 是一次配文生成请求。
type Request struct {
	Kind     content.Kind
	Title    string
	Excerpt  string
	Hashtags int
}

// Caption 是生成结果。
type Caption struct {
	Text     string   `json:"text"`
	Template int      `json:"template"`
	Hashtags []string `json:"hashtags"`
}

// Generator 生成配文。相同种子产生相同序列，可并发使用。
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New 返回以 seed 初始化的生成器。
func New(seed uint64) *Generator {
	return &Generator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// ClampHashtags 把数量限制在 [MinHashtags, MaxHashtags]，0 表示默认值。
func ClampHashtags(n int) int {
	switch {
	case n == 0:
		return DefaultHashtags
	case n < MinHashtags:
		return MinHashtags
	case n > MaxHashtags:
		return MaxHashtags
	}
	return n
}

// Generate 生成一条配文。没有模板的类型返回 Fallback。
func (g *Generator) Generate(req Request) Caption {
	templates := Templates[req.Kind]
	if len(templates) == 0 {
		return Caption{Text: Fallback, Template: -1}
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = DefaultTitle
	}
	excerpt := strings.TrimSpace(req.Excerpt)
	if excerpt == "" {
		excerpt = DefaultExcerpt
	}
	count := ClampHashtags(req.Hashtags)

	g.mu.Lock()
	idx := g.rng.IntN(len(templates))
	pool := append([]string(nil), HashtagPool...)
	g.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	g.mu.Unlock()

	tags := pool[:min(count, len(pool))]
	text := strings.Replace(templates[idx], "{title}", title, 1)
	text = strings.Replace(text, "{excerpt}", excerpt, 1)
	return Caption{Text: text + strings.Join(tags, " "), Template: idx, Hashtags: tags}
}
