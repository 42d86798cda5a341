// Package prefs persists the editor's user preferences (output format and
// watermark) and the studio settings. Content records are never persisted.
package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/ByLCY/cardstudio/content"
	"github.com/ByLCY/cardstudio/layout"
)

// Namespaces under which preferences are stored.
const (
	EditorNamespace   = "kg-studio-editor"
	SettingsNamespace = "kg-studio-settings"
)

// ErrNotFound is returned by stores when a namespace has never been saved.
var ErrNotFound = errors.New("preferences not found")

// Store persists one JSON document per namespace.
type Store interface {
	Load(ctx context.Context, namespace string) ([]byte, error)
	Save(ctx context.Context, namespace string, data []byte) error
	Close() error
}

// Editor is the persisted slice of editor state. Only the format and the
// watermark survive a restart.
type Editor struct {
	Format    layout.Format      `json:"format,omitempty"`
	Watermark *content.Watermark `json:"watermark,omitempty"`
}

// Merge overlays the persisted editor state on the in-memory defaults. Empty
// or invalid persisted fields keep the current value. A persisted watermark
// with an invalid anchor is dropped and reported as ErrInvalidAnchor.
func (e Editor) Merge(format layout.Format, wm content.Watermark) (layout.Format, content.Watermark, error) {
	if f, err := layout.ParseFormat(string(e.Format)); err == nil && e.Format != "" {
		format = f
	}
	if e.Watermark == nil {
		return format, wm, nil
	}
	if err := e.Watermark.Validate(); err != nil {
		return format, wm, fmt.Errorf("persisted watermark: %w", err)
	}
	return format, e.Watermark.Clamped(), nil
}

// WatermarkPreset is a named watermark image.
type WatermarkPreset struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Settings are studio-wide preferences.
type Settings struct {
	DefaultWatermarkURL string            `json:"defaultWatermarkUrl"`
	WatermarkPresets    []WatermarkPreset `json:"watermarkPresets"`
	Theme               string            `json:"theme"`
	FavoriteTemplates   []string          `json:"favoriteTemplates"`
}

// DefaultSettings returns the settings used before anything was saved.
func DefaultSettings() Settings {
	return Settings{Theme: "dark", WatermarkPresets: []WatermarkPreset{}, FavoriteTemplates: []string{}}
}

// ToggleFavorite adds or removes a template id.
func (s *Settings) ToggleFavorite(id string) {
	if i := slices.Index(s.FavoriteTemplates, id); i >= 0 {
		s.FavoriteTemplates = slices.Delete(s.FavoriteTemplates, i, i+1)
		return
	}
	s.FavoriteTemplates = append(s.FavoriteTemplates, id)
}

// IsFavorite reports whether id is a favourite template.
func (s Settings) IsFavorite(id string) bool {
	return slices.Contains(s.FavoriteTemplates, id)
}

// AddPreset appends a watermark preset, replacing one with the same id.
func (s *Settings) AddPreset(p WatermarkPreset) {
	s.RemovePreset(p.ID)
	s.WatermarkPresets = append(s.WatermarkPresets, p)
}

// RemovePreset deletes the preset with id.
func (s *Settings) RemovePreset(id string) {
	s.WatermarkPresets = slices.DeleteFunc(s.WatermarkPresets, func(p WatermarkPreset) bool { return p.ID == id })
}

// ToggleTheme switches between dark and light.
func (s *Settings) ToggleTheme() {
	if s.Theme == "light" {
		s.Theme = "dark"
		return
	}
	s.Theme = "light"
}

// Manager reads and writes typed preferences through a Store.
type Manager struct {
	store Store
}

// NewManager wraps store.
func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// Close closes the underlying store.
func (m *Manager) Close() error { return m.store.Close() }

// LoadEditor returns the persisted editor state; ok is false when nothing
// has been saved yet.
func (m *Manager) LoadEditor(ctx context.Context) (e Editor, ok bool, err error) {
	ok, err = m.load(ctx, EditorNamespace, &e)
	return e, ok, err
}

// SaveEditor persists the format and watermark only. Watermarks with an
// invalid anchor are rejected.
func (m *Manager) SaveEditor(ctx context.Context, format layout.Format, wm content.Watermark) error {
	if err := wm.Validate(); err != nil {
		return err
	}
	wm = wm.Clamped()
	return m.save(ctx, EditorNamespace, Editor{Format: format, Watermark: &wm})
}

// LoadSettings returns the saved settings or DefaultSettings.
func (m *Manager) LoadSettings(ctx context.Context) (Settings, error) {
	s := DefaultSettings()
	if _, err := m.load(ctx, SettingsNamespace, &s); err != nil {
		return DefaultSettings(), err
	}
	return s, nil
}

// SaveSettings persists s.
func (m *Manager) SaveSettings(ctx context.Context, s Settings) error {
	return m.save(ctx, SettingsNamespace, s)
}

// UpdateSettings loads, mutates and saves the settings.
func (m *Manager) UpdateSettings(ctx context.Context, fn func(*Settings)) (Settings, error) {
	s, err := m.LoadSettings(ctx)
	if err != nil {
		return s, err
	}
	fn(&s)
	s.DefaultWatermarkURL = strings.TrimSpace(s.DefaultWatermarkURL)
	return s, m.SaveSettings(ctx, s)
}

// Raw returns the stored JSON document of a namespace.
func (m *Manager) Raw(ctx context.Context, namespace string) ([]byte, error) {
	return m.store.Load(ctx, namespace)
}

func (m *Manager) load(ctx context.Context, namespace string, out any) (bool, error) {
	data, err := m.store.Load(ctx, namespace)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("decode %s: %w", namespace, err)
	}
	return true, nil
}

func (m *Manager) save(ctx context.Context, namespace string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", namespace, err)
	}
	return m.store.Save(ctx, namespace, data)
}
