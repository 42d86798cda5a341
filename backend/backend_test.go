package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/ByLCY/cardstudio/normalize"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newServer(t *testing.T, h http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Options{BaseURL: srv.URL + "/wp-json/", HTTPClient: srv.Client()}), srv
}

func recordTitle(r normalize.Record) string {
	m, _ := r["title"].(map[string]any)
	s, _ := m["rendered"].(string)
	return s
}

func TestSearchAllConcatenatesInOrder(t *testing.T) {
	c, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("search") != "elma" {
			t.Errorf("search param = %q", r.URL.Query().Get("search"))
		}
		if r.URL.Query().Get("per_page") != "10" {
			t.Errorf("per_page = %q", r.URL.Query().Get("per_page"))
		}
		coll := strings.TrimPrefix(r.URL.Path, "/wp-json/wp/v2/")
		writeJSON(w, []map[string]any{{
			"id":    1,
			"title": map[string]any{"rendered": coll},
			"_embedded": map[string]any{
				"wp:featuredmedia": []any{map[string]any{"source_url": "https://cdn/x.jpg"}},
			},
		}})
	})
	recs, err := c.Search(context.Background(), "elma", All)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	var got []string
	for _, r := range recs {
		got = append(got, recordTitle(r))
	}
	if strings.Join(got, ",") != "recipes,posts,ingredients" {
		t.Fatalf("order = %v", got)
	}
}

func TestSearchAllToleratesPartialFailure(t *testing.T) {
	c, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/posts") {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		writeJSON(w, []map[string]any{{"id": 1, "title": map[string]any{"rendered": "ok"}}})
	})
	recs, err := c.Search(context.Background(), "x", All)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
}

func TestSearchSingleCollectionError(t *testing.T) {
	c, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})
	_, err := c.Search(context.Background(), "x", Recipes)
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusBadGateway {
		t.Fatalf("expected StatusError 502, got %v", err)
	}
}

func TestHydrationFetchesMissingMedia(t *testing.T) {
	var mediaCalls int32
	c, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/media/55"):
			atomic.AddInt32(&mediaCalls, 1)
			writeJSON(w, map[string]any{"id": 55, "source_url": "https://cdn/hydrated.jpg"})
		case strings.HasSuffix(r.URL.Path, "/media/66"):
			http.NotFound(w, r)
		default:
			writeJSON(w, []map[string]any{
				{"id": 1, "featured_media": 55, "_embedded": map[string]any{"author": []any{}}},
				{"id": 2, "featured_media": 66, "_embedded": map[string]any{
					"wp:featuredmedia": []any{map[string]any{"code": "rest_forbidden"}},
				}},
				{"id": 3, "_embedded": map[string]any{
					"wp:featuredmedia": []any{map[string]any{"source_url": "https://cdn/ok.jpg"}},
				}},
			})
		}
	})
	recs, err := c.Search(context.Background(), "x", Recipes)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if atomic.LoadInt32(&mediaCalls) != 1 {
		t.Fatalf("media calls = %d", mediaCalls)
	}
	m, ok := embeddedMedia(recs[0])
	if !ok || m["source_url"] != "https://cdn/hydrated.jpg" {
		t.Fatalf("record 1 not hydrated: %v", recs[0]["_embedded"])
	}
	if _, ok := recs[0]["_embedded"].(map[string]any)["author"]; !ok {
		t.Fatalf("hydration must keep other embedded keys")
	}
	emb := recs[1]["_embedded"].(map[string]any)
	if list := emb["wp:featuredmedia"].([]any); len(list) != 0 {
		t.Fatalf("corrupted media must be cleared, got %v", list)
	}
	if m, _ := embeddedMedia(recs[2]); m["source_url"] != "https://cdn/ok.jpg" {
		t.Fatalf("valid media must be untouched")
	}
}

func TestMediaRetriesAnonymouslyOnForbidden(t *testing.T) {
	var authed, anon int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/media/") {
			if r.Header.Get("Authorization") != "" {
				atomic.AddInt32(&authed, 1)
				w.WriteHeader(http.StatusForbidden)
				return
			}
			atomic.AddInt32(&anon, 1)
			writeJSON(w, map[string]any{"source_url": "https://cdn/anon.jpg"})
			return
		}
		writeJSON(w, map[string]any{"id": 9, "featured_media": 7})
	}))
	defer srv.Close()
	c := New(Options{BaseURL: srv.URL, HTTPClient: srv.Client(), Token: "tok"})
	rec, err := c.GetByID(context.Background(), 9, Posts)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if authed != 1 || anon != 1 {
		t.Fatalf("authed=%d anon=%d", authed, anon)
	}
	if m, _ := embeddedMedia(rec); m["source_url"] != "https://cdn/anon.jpg" {
		t.Fatalf("media = %v", rec["_embedded"])
	}
}

func TestParsePermalink(t *testing.T) {
	cases := []struct {
		in   string
		coll Collection
		slug string
	}{
		{"https://kidsgourmet.com.tr/tarifler/avokadolu-pure", Recipes, "avokadolu-pure"},
		{"https://kidsgourmet.com.tr/recipes/x/", Recipes, "x"},
		{"https://kidsgourmet.com.tr/malzemeler/elma", Ingredients, "elma"},
		{"https://kidsgourmet.com.tr/ingredients/armut?ref=1", Ingredients, "armut"},
		{"https://kidsgourmet.com.tr/blog/ek-gidaya-gecis", Posts, "ek-gidaya-gecis"},
	}
	for _, tc := range cases {
		coll, slug, err := ParsePermalink(tc.in)
		if err != nil {
			t.Fatalf("ParsePermalink(%q): %v", tc.in, err)
		}
		if coll != tc.coll || slug != tc.slug {
			t.Fatalf("ParsePermalink(%q) = %s %s", tc.in, coll, slug)
		}
	}
	if _, _, err := ParsePermalink("https://kidsgourmet.com.tr/"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetByURLUsesSlugEndpoint(t *testing.T) {
	c, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/wp-json/wp/v2/recipes" || r.URL.Query().Get("slug") != "avokadolu-pure" {
			t.Errorf("unexpected request %s", r.URL)
		}
		writeJSON(w, []map[string]any{{"id": 42}})
	})
	rec, err := c.GetByURL(context.Background(), "https://kidsgourmet.com.tr/tarifler/avokadolu-pure")
	if err != nil {
		t.Fatalf("GetByURL: %v", err)
	}
	if rec["id"].(json.Number).String() != "42" {
		t.Fatalf("id = %v", rec["id"])
	}
}

func TestGetByURLNotFound(t *testing.T) {
	c, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []any{})
	})
	if _, err := c.GetByURL(context.Background(), "https://x/malzemeler/yok"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDefaultWatermark(t *testing.T) {
	c, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"kg_email_logo": "https://cdn/logo.png"})
	})
	if got := c.DefaultWatermark(context.Background()); got != "https://cdn/logo.png" {
		t.Fatalf("DefaultWatermark = %q", got)
	}
	failing, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	})
	if got := failing.DefaultWatermark(context.Background()); got != FallbackWatermark {
		t.Fatalf("fallback = %q", got)
	}
}

func TestLoginAndAuthorize(t *testing.T) {
	c, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/wp-json/kg/v1/auth/login":
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["password"] != "secret" {
				w.WriteHeader(http.StatusForbidden)
				writeJSON(w, map[string]string{"message": "Hatalı şifre"})
				return
			}
			writeJSON(w, map[string]any{"data": map[string]any{"token": "tok"}, "user_nicename": "editor1"})
		case "/wp-json/kg/v1/auth/me":
			switch r.Header.Get("Authorization") {
			case "Bearer tok":
				writeJSON(w, map[string]any{"id": 3, "roles": []string{"subscriber", "Editor"}})
			case "Bearer reader":
				writeJSON(w, map[string]any{"id": 4, "roles": []string{"subscriber"}})
			default:
				w.WriteHeader(http.StatusUnauthorized)
			}
		}
	})
	sess, err := c.Login(context.Background(), "ed@example.com", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if sess.Token != "tok" || sess.DisplayName != "editor1" {
		t.Fatalf("session = %+v", sess)
	}
	if _, err := c.Login(context.Background(), "ed@example.com", "nope"); !errors.Is(err, ErrUnauthorized) || !strings.Contains(err.Error(), "Hatalı şifre") {
		t.Fatalf("expected ErrUnauthorized with message, got %v", err)
	}
	ok, err := c.WithToken(sess.Token).Authorize(context.Background())
	if err != nil || !ok {
		t.Fatalf("Authorize editor = %v, %v", ok, err)
	}
	ok, err = c.WithToken("reader").Authorize(context.Background())
	if err != nil || ok {
		t.Fatalf("Authorize subscriber = %v, %v", ok, err)
	}
	ok, err = c.WithToken("bad").Authorize(context.Background())
	if err != nil || ok {
		t.Fatalf("Authorize bad token = %v, %v", ok, err)
	}
}

func TestParseCollection(t *testing.T) {
	for in, want := range map[string]Collection{"": Recipes, "Recipe": Recipes, "blog": Posts, "guide": Ingredients, "ALL": All} {
		got, err := ParseCollection(in)
		if err != nil || got != want {
			t.Fatalf("ParseCollection(%q) = %s, %v", in, got, err)
		}
	}
	if _, err := ParseCollection("videos"); err == nil {
		t.Fatalf("expected error")
	}
}
