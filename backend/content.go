package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ByLCY/cardstudio/normalize"
)

// hydrateLimit bounds concurrent media lookups per response.
const hydrateLimit = 4

// Search returns records matching query. All searches every collection in
// parallel and concatenates recipes, posts and ingredients in that order; a
// failing collection contributes nothing unless every collection failed.
func (c *Client) Search(ctx context.Context, query string, coll Collection) ([]normalize.Record, error) {
	if coll != All {
		return c.searchOne(ctx, query, coll)
	}
	results := make([][]normalize.Record, len(Collections))
	errs := make([]error, len(Collections))
	g, gctx := errgroup.WithContext(ctx)
	for i, one := range Collections {
		g.Go(func() error {
			recs, err := c.searchOne(gctx, query, one)
			if err != nil {
				c.log.WithFields(logrus.Fields{"collection": one, "error": err}).Warn("search failed")
				errs[i] = err
				return nil
			}
			results[i] = recs
			return nil
		})
	}
	_ = g.Wait()
	var out []normalize.Record
	failed := 0
	for i := range Collections {
		if errs[i] != nil {
			failed++
			continue
		}
		out = append(out, results[i]...)
	}
	if failed == len(Collections) {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

func (c *Client) searchOne(ctx context.Context, query string, coll Collection) ([]normalize.Record, error) {
	q := url.Values{}
	q.Set("search", query)
	q.Set("_embed", "")
	q.Set("per_page", strconv.Itoa(c.perPage))
	var recs []normalize.Record
	if err := c.get(ctx, c.endpoint(WPNamespace+"/"+string(coll), q), &recs, false); err != nil {
		return nil, err
	}
	return c.hydrate(ctx, recs)
}

// GetByID fetches one record of the given collection.
func (c *Client) GetByID(ctx context.Context, id int, coll Collection) (normalize.Record, error) {
	if coll == All || coll == "" {
		return nil, fmt.Errorf("GetByID needs a concrete collection, got %q", coll)
	}
	q := url.Values{}
	q.Set("_embed", "")
	var rec normalize.Record
	if err := c.get(ctx, c.endpoint(fmt.Sprintf("%s/%s/%d", WPNamespace, coll, id), q), &rec, false); err != nil {
		return nil, err
	}
	recs, err := c.hydrate(ctx, []normalize.Record{rec})
	if err != nil {
		return nil, err
	}
	return recs[0], nil
}

// GetByURL resolves a public permalink to its record by slug.
func (c *Client) GetByURL(ctx context.Context, link string) (normalize.Record, error) {
	coll, slug, err := ParsePermalink(link)
	if err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("slug", slug)
	q.Set("_embed", "")
	var recs []normalize.Record
	if err := c.get(ctx, c.endpoint(WPNamespace+"/"+string(coll), q), &recs, false); err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("%w: slug %q", ErrNotFound, slug)
	}
	hydrated, err := c.hydrate(ctx, recs[:1])
	if err != nil {
		return nil, err
	}
	return hydrated[0], nil
}

// ParsePermalink extracts the collection and slug from a permalink such as
// https://kidsgourmet.com.tr/tarifler/avokadolu-pure.
func ParsePermalink(link string) (Collection, string, error) {
	link = strings.TrimSpace(link)
	path := link
	if u, err := url.Parse(link); err == nil && u.Path != "" {
		path = u.Path
	}
	var parts []string
	for _, p := range strings.Split(path, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "", "", fmt.Errorf("%w: no slug in %q", ErrNotFound, link)
	}
	slug := parts[len(parts)-1]
	switch {
	case strings.Contains(path, "/tarifler/") || strings.Contains(path, "/recipes/"):
		return Recipes, slug, nil
	case strings.Contains(path, "/malzemeler/") || strings.Contains(path, "/ingredients/"):
		return Ingredients, slug, nil
	}
	return Posts, slug, nil
}

// hydrate fills in missing featured media. Records whose embedded media is
// corrupted and cannot be fetched get an empty media list.
func (c *Client) hydrate(ctx context.Context, recs []normalize.Record) ([]normalize.Record, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(hydrateLimit)
	for i := range recs {
		if hasValidMedia(recs[i]) {
			continue
		}
		g.Go(func() error {
			recs[i] = c.hydrateOne(gctx, recs[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return recs, ctx.Err()
}

func (c *Client) hydrateOne(ctx context.Context, rec normalize.Record) normalize.Record {
	corrupted := mediaCorrupted(rec)
	if id := intOf(rec["featured_media"]); id > 0 {
		var media map[string]any
		err := c.get(ctx, c.endpoint(fmt.Sprintf("%s/%d", pathMedia, id), nil), &media, true)
		if err == nil && stringOf(media["source_url"]) != "" {
			return withMedia(rec, []any{media})
		}
		if err != nil {
			c.log.WithFields(logrus.Fields{"media": id, "error": err}).Debug("media fetch failed")
		}
	}
	if corrupted {
		return withMedia(rec, []any{})
	}
	return rec
}

func embeddedMedia(rec normalize.Record) (map[string]any, bool) {
	emb, _ := rec["_embedded"].(map[string]any)
	list, _ := emb["wp:featuredmedia"].([]any)
	if len(list) == 0 {
		return nil, false
	}
	m, ok := list[0].(map[string]any)
	return m, ok
}

func hasValidMedia(rec normalize.Record) bool {
	m, ok := embeddedMedia(rec)
	return ok && stringOf(m["source_url"]) != ""
}

func mediaCorrupted(rec normalize.Record) bool {
	m, ok := embeddedMedia(rec)
	if !ok {
		return false
	}
	return m["code"] != nil || stringOf(m["source_url"]) == ""
}

// withMedia returns a shallow copy of rec with wp:featuredmedia replaced.
func withMedia(rec normalize.Record, media []any) normalize.Record {
	out := make(normalize.Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	emb := map[string]any{}
	if old, ok := rec["_embedded"].(map[string]any); ok {
		for k, v := range old {
			emb[k] = v
		}
	}
	emb["wp:featuredmedia"] = media
	out["_embedded"] = emb
	return out
}

func stringOf(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func intOf(v any) int {
	switch n := v.(type) {
	case json.Number:
		i, err := strconv.Atoi(string(n))
		if err != nil {
			return 0
		}
		return i
	case float64:
		return int(n)
	case int:
		return n
	case string:
		i, _ := strconv.Atoi(strings.TrimSpace(n))
		return i
	}
	return 0
}
