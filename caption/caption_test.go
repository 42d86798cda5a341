package caption

import (
	"strings"
	"testing"

	"github.com/ByLCY/cardstudio/content"
)

func TestGenerateIsDeterministicForSeed(t *testing.T) {
	req := Request{Kind: content.KindRecipe, Title: "Havuçlu Püre", Excerpt: "6 ay sonrası"}
	a := New(42).Generate(req)
	b := New(42).Generate(req)
	if a.Text != b.Text {
		t.Fatalf("same seed should give same caption:\n%s\n---\n%s", a.Text, b.Text)
	}
}

func TestGenerateFillsPlaceholders(t *testing.T) {
	c := New(1).Generate(Request{Kind: content.KindIngredientGuide, Title: " Brokoli ", Hashtags: 7})
	if !strings.Contains(c.Text, "Brokoli") || !strings.Contains(c.Text, DefaultExcerpt) {
		t.Fatalf("placeholders not filled: %q", c.Text)
	}
	if strings.Contains(c.Text, "{title}") || strings.Contains(c.Text, "{excerpt}") {
		t.Fatalf("placeholder left in caption: %q", c.Text)
	}
	if len(c.Hashtags) != 7 {
		t.Fatalf("expected 7 hashtags, got %d", len(c.Hashtags))
	}
	if !strings.HasSuffix(c.Text, strings.Join(c.Hashtags, " ")) {
		t.Fatalf("hashtags should end the caption: %q", c.Text)
	}
	prefix := Templates[content.KindIngredientGuide][c.Template]
	if !strings.HasPrefix(c.Text, strings.SplitN(prefix, "{title}", 2)[0]) {
		t.Fatalf("caption should start with template %d: %q", c.Template, c.Text)
	}
}

func TestHashtagsAreUniqueAndFromPool(t *testing.T) {
	pool := map[string]bool{}
	for _, h := range HashtagPool {
		pool[h] = true
	}
	c := New(7).Generate(Request{Kind: content.KindArticle, Hashtags: MaxHashtags})
	seen := map[string]bool{}
	for _, h := range c.Hashtags {
		if !pool[h] || seen[h] {
			t.Fatalf("unexpected or repeated hashtag %s in %v", h, c.Hashtags)
		}
		seen[h] = true
	}
	if !strings.Contains(c.Text, DefaultTitle) {
		t.Fatalf("empty title should use default: %q", c.Text)
	}
}

func TestClampHashtags(t *testing.T) {
	cases := map[int]int{0: 10, 1: 5, 5: 5, 12: 12, 20: 20, 99: 20, -3: 5}
	for in, want := range cases {
		if got := ClampHashtags(in); got != want {
			t.Fatalf("ClampHashtags(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestUnknownKindFallsBack(t *testing.T) {
	c := New(3).Generate(Request{Kind: "video"})
	if c.Text != Fallback || len(c.Hashtags) != 0 {
		t.Fatalf("unexpected fallback caption %+v", c)
	}
}
