package prefs

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/ByLCY/cardstudio/content"
	"github.com/ByLCY/cardstudio/layout"
)

func newSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "prefs", "studio.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newRedis(t *testing.T) *RedisStore {
	t.Helper()
	s := miniredis.RunT(t)
	store, err := NewRedisStore("redis://" + s.Addr())
	if err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStoresRoundTrip(t *testing.T) {
	stores := map[string]Store{
		"sqlite": newSQLite(t),
		"redis":  newRedis(t),
	}
	ctx := context.Background()
	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			if _, err := store.Load(ctx, EditorNamespace); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
			if err := store.Save(ctx, EditorNamespace, []byte(`{"format":"post"}`)); err != nil {
				t.Fatalf("save: %v", err)
			}
			if err := store.Save(ctx, EditorNamespace, []byte(`{"format":"story"}`)); err != nil {
				t.Fatalf("overwrite: %v", err)
			}
			got, err := store.Load(ctx, EditorNamespace)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if string(got) != `{"format":"story"}` {
				t.Fatalf("unexpected value %s", got)
			}
		})
	}
}

func TestRedisKeysArePrefixed(t *testing.T) {
	s := miniredis.RunT(t)
	store, err := NewRedisStore("redis://" + s.Addr())
	if err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	defer store.Close()
	if err := store.Save(context.Background(), SettingsNamespace, []byte(`{}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !s.Exists(DefaultRedisPrefix + SettingsNamespace) {
		t.Fatalf("expected prefixed key, have %v", s.Keys())
	}
}

func TestEditorPersistsFormatAndWatermarkOnly(t *testing.T) {
	ctx := context.Background()
	m := NewManager(newSQLite(t))

	if _, ok, err := m.LoadEditor(ctx); err != nil || ok {
		t.Fatalf("expected empty editor state, ok=%v err=%v", ok, err)
	}
	wm := content.DefaultWatermark()
	wm.Position = content.AnchorBottomLeft
	wm.Opacity = 3
	if err := m.SaveEditor(ctx, layout.FormatPost, wm); err != nil {
		t.Fatalf("save editor: %v", err)
	}
	e, ok, err := m.LoadEditor(ctx)
	if err != nil || !ok {
		t.Fatalf("load editor: ok=%v err=%v", ok, err)
	}
	format, merged, err := e.Merge(layout.FormatStory, content.DefaultWatermark())
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if format != layout.FormatPost {
		t.Fatalf("persisted format should win, got %s", format)
	}
	if merged.Position != content.AnchorBottomLeft || merged.Opacity != 1 {
		t.Fatalf("unexpected merged watermark %+v", merged)
	}
}

func TestEditorMergeKeepsCurrentWhenUnset(t *testing.T) {
	current := content.DefaultWatermark()
	current.Scale = 2
	format, wm, err := Editor{Format: "banner"}.Merge(layout.FormatPost, current)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if format != layout.FormatPost {
		t.Fatalf("invalid persisted format should be ignored, got %s", format)
	}
	if wm != current {
		t.Fatalf("missing watermark should keep current, got %+v", wm)
	}
}

func TestEditorInvalidAnchorIsReported(t *testing.T) {
	ctx := context.Background()
	m := NewManager(newRedis(t))
	bad := content.DefaultWatermark()
	bad.Position = "middle"
	if err := m.SaveEditor(ctx, layout.FormatPost, bad); !errors.Is(err, content.ErrInvalidAnchor) {
		t.Fatalf("save should reject invalid anchor, got %v", err)
	}
	if _, ok, _ := m.LoadEditor(ctx); ok {
		t.Fatalf("rejected editor state must not be stored")
	}

	current := content.DefaultWatermark()
	current.Position = content.AnchorCenter
	format, wm, err := Editor{Format: layout.FormatStory, Watermark: &bad}.Merge(layout.FormatPost, current)
	if !errors.Is(err, content.ErrInvalidAnchor) {
		t.Fatalf("merge should report invalid anchor, got %v", err)
	}
	if format != layout.FormatStory || wm != current {
		t.Fatalf("merge = %s %+v, want story with current watermark", format, wm)
	}
}

func TestSettingsUpdate(t *testing.T) {
	ctx := context.Background()
	m := NewManager(newRedis(t))

	s, err := m.LoadSettings(ctx)
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	if s.Theme != "dark" || len(s.FavoriteTemplates) != 0 {
		t.Fatalf("unexpected defaults %+v", s)
	}

	_, err = m.UpdateSettings(ctx, func(s *Settings) {
		s.ToggleTheme()
		s.ToggleFavorite("recipe-modern-story")
		s.ToggleFavorite("blog-quote-story")
		s.ToggleFavorite("recipe-modern-story")
		s.AddPreset(WatermarkPreset{ID: "kg", Name: "KG", URL: "/assets/kg-logo.png"})
		s.AddPreset(WatermarkPreset{ID: "kg", Name: "KG v2", URL: "/assets/kg-logo-2.png"})
		s.DefaultWatermarkURL = "  /assets/kg-logo.png "
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	s, err = m.LoadSettings(ctx)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if s.Theme != "light" {
		t.Fatalf("theme should toggle to light, got %s", s.Theme)
	}
	if !s.IsFavorite("blog-quote-story") || s.IsFavorite("recipe-modern-story") {
		t.Fatalf("unexpected favorites %v", s.FavoriteTemplates)
	}
	if len(s.WatermarkPresets) != 1 || s.WatermarkPresets[0].Name != "KG v2" {
		t.Fatalf("presets should be replaced by id, got %+v", s.WatermarkPresets)
	}
	if s.DefaultWatermarkURL != "/assets/kg-logo.png" {
		t.Fatalf("watermark url should be trimmed, got %q", s.DefaultWatermarkURL)
	}
}

func TestOpenRejectsUnknownBackend(t *testing.T) {
	if _, err := Open("postgres", "x"); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}
