package studio

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ByLCY/cardstudio/compose"
	"github.com/ByLCY/cardstudio/content"
	"github.com/ByLCY/cardstudio/dsl"
	"github.com/ByLCY/cardstudio/export"
	"github.com/ByLCY/cardstudio/layout"
	"github.com/ByLCY/cardstudio/normalize"
	"github.com/ByLCY/cardstudio/palette"
	"github.com/ByLCY/cardstudio/prefs"
	"github.com/ByLCY/cardstudio/renderer"
	canvasrenderer "github.com/ByLCY/cardstudio/renderer/canvas"
)

type stubRenderer struct {
	mu     sync.Mutex
	failOn layout.Format
}

func (s *stubRenderer) Render(ctx context.Context, comp *layout.Composition, opts renderer.Options) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if comp.Format == s.failOn {
		return nil, errors.New("rasterizer crashed")
	}
	return []byte(string(comp.Format) + "-" + string(comp.Layout)), nil
}

func fixedNow() time.Time { return time.UnixMilli(1700000000123) }

func newManager(t *testing.T) *prefs.Manager {
	t.Helper()
	store, err := prefs.OpenSQLite(filepath.Join(t.TempDir(), "prefs.db"))
	if err != nil {
		t.Fatalf("open prefs: %v", err)
	}
	m := prefs.NewManager(store)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func newSession(t *testing.T, opts Options) *Session {
	t.Helper()
	if opts.Composer == nil {
		opts.Composer = compose.New(compose.Options{})
	}
	if opts.Export.Renderer == nil {
		opts.Export.Renderer = &stubRenderer{}
	}
	opts.Export.Now = fixedNow
	opts.Export.Packer = export.ZipPacker{Modified: fixedNow()}
	return New(opts)
}

func TestGateBlocksComposition(t *testing.T) {
	s := newSession(t, Options{Gate: GateFunc(func(ctx context.Context) (bool, error) { return false, nil })})
	if err := s.Open(context.Background()); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := s.Compose(); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("compose should be refused, got %v", err)
	}
	if _, err := s.Export(context.Background(), export.Options{}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("export should be refused, got %v", err)
	}
}

func TestExportComposerHonorsGate(t *testing.T) {
	s := newSession(t, Options{Gate: GateFunc(func(ctx context.Context) (bool, error) { return false, nil })})
	_ = s.Open(context.Background())
	if _, err := (gatedComposer{s}).Render(content.Default(), layout.FormatPost, layout.Modern); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("engine composer should be refused, got %v", err)
	}
	composer := reflect.TypeOf((*export.Composer)(nil)).Elem()
	if reflect.TypeOf(s).Implements(composer) {
		t.Fatalf("*Session must not expose an ungated composer")
	}

	open := newSession(t, Options{})
	if err := open.Open(context.Background()); err != nil {
		t.Fatalf("open: %v", err)
	}
	comp, err := (gatedComposer{open}).Render(content.Default(), layout.FormatPost, layout.Modern)
	if err != nil || comp.Format != layout.FormatPost {
		t.Fatalf("authorized render = %v, %v", comp, err)
	}
}

func TestGateErrorIsReturned(t *testing.T) {
	s := newSession(t, Options{Gate: GateFunc(func(ctx context.Context) (bool, error) { return false, errors.New("offline") })})
	err := s.Open(context.Background())
	if err == nil || errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if s.Authorized() {
		t.Fatalf("session must not be authorized before a successful check")
	}
}

func TestPreferencesSurviveRestart(t *testing.T) {
	ctx := context.Background()
	m := newManager(t)

	first := newSession(t, Options{Prefs: m})
	if err := first.Open(ctx); err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := first.SetFormat(ctx, layout.FormatPost); err != nil {
		t.Fatalf("set format: %v", err)
	}
	pos := "bottom-left"
	if err := first.SetWatermark(ctx, content.WatermarkPatch{Position: &pos}); err != nil {
		t.Fatalf("set watermark: %v", err)
	}
	title := "Kalıcı olmamalı"
	if err := first.SetData(ctx, content.Patch{Title: &title}); err != nil {
		t.Fatalf("set data: %v", err)
	}

	second := newSession(t, Options{Prefs: m})
	if err := second.Open(ctx); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	st := second.Snapshot()
	if st.Format != layout.FormatPost || st.Content.Watermark.Position != content.AnchorBottomLeft {
		t.Fatalf("format and watermark should be restored, got %s %+v", st.Format, st.Content.Watermark)
	}
	if st.Content.Title != content.Default().Title {
		t.Fatalf("content must not be persisted, got %q", st.Content.Title)
	}
}

func TestInvalidPersistedAnchorIsLogged(t *testing.T) {
	ctx := context.Background()
	store, err := prefs.OpenSQLite(filepath.Join(t.TempDir(), "prefs.db"))
	if err != nil {
		t.Fatalf("open prefs: %v", err)
	}
	m := prefs.NewManager(store)
	t.Cleanup(func() { _ = m.Close() })
	doc := `{"format":"post","watermark":{"visible":true,"position":"middle","opacity":1,"scale":1}}`
	if err := store.Save(ctx, prefs.EditorNamespace, []byte(doc)); err != nil {
		t.Fatalf("seed editor: %v", err)
	}

	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	s := newSession(t, Options{Prefs: m, Logger: log})
	if err := s.Open(ctx); err != nil {
		t.Fatalf("open: %v", err)
	}
	st := s.Snapshot()
	if st.Format != layout.FormatPost {
		t.Fatalf("valid persisted format should still apply, got %s", st.Format)
	}
	if st.Content.Watermark != content.DefaultWatermark() {
		t.Fatalf("invalid persisted watermark should be ignored, got %+v", st.Content.Watermark)
	}
	if !strings.Contains(buf.String(), "ignoring persisted watermark") {
		t.Fatalf("expected warning, got %q", buf.String())
	}
}

func TestSettingsDefaultWatermarkIsUsed(t *testing.T) {
	ctx := context.Background()
	m := newManager(t)
	if _, err := m.UpdateSettings(ctx, func(s *prefs.Settings) { s.DefaultWatermarkURL = "/assets/custom-logo.png" }); err != nil {
		t.Fatalf("update settings: %v", err)
	}
	s := newSession(t, Options{Prefs: m})
	if err := s.Open(ctx); err != nil {
		t.Fatalf("open: %v", err)
	}
	comp, err := s.Compose()
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	imgs := comp.ImagesByRole(layout.RoleWatermark)
	if len(imgs) != 1 || imgs[0].Src != "/assets/custom-logo.png" {
		t.Fatalf("expected settings watermark, got %+v", imgs)
	}
}

func TestLoadKeepsWatermark(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, Options{})
	op := 0.4
	if err := s.SetWatermark(ctx, content.WatermarkPatch{Opacity: &op}); err != nil {
		t.Fatalf("set watermark: %v", err)
	}
	raw, err := normalize.DecodeRecord([]byte(`{"id":7,"title":"Brokoli","type":"ingredient"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	rec, err := s.Load(raw)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	st := s.Snapshot()
	if st.Content.Title != "Brokoli" || st.Content.ID != rec.ID {
		t.Fatalf("content not replaced: %+v", st.Content)
	}
	if st.Content.Watermark.Opacity != 0.4 {
		t.Fatalf("watermark should survive a load, got %+v", st.Content.Watermark)
	}

	s.Reset(ctx)
	if got := s.Snapshot().Content; got.Title != content.Default().Title || got.Watermark != content.DefaultWatermark() {
		t.Fatalf("reset should restore defaults, got %+v", got)
	}
}

func TestApplyTemplateAndLayoutFallback(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, Options{})
	tpl, err := s.ApplyTemplate(ctx, "ingredient-allergy-post")
	if err != nil {
		t.Fatalf("apply template: %v", err)
	}
	st := s.Snapshot()
	if st.Format != layout.FormatPost || st.Layout != layout.Warning || st.Template != tpl.ID {
		t.Fatalf("template not applied: %+v", st)
	}
	if id, ok := s.SetLayout("does-not-exist"); ok || id != layout.Default {
		t.Fatalf("unknown layout should fall back to default, got %s %v", id, ok)
	}
	if s.Snapshot().Template != "" {
		t.Fatalf("choosing a layout should clear the template")
	}
	if _, err := s.ApplyTemplate(ctx, "missing"); err == nil {
		t.Fatalf("expected unknown template error")
	}
}

func TestApplyEdits(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, Options{})
	edits, err := dsl.CompileString(`theme = winter; title = "Kış Çorbası"; layout = quote; format = post; watermark.visible = false`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if err := s.Apply(ctx, edits); err != nil {
		t.Fatalf("apply: %v", err)
	}
	st := s.Snapshot()
	if st.Theme.Name != "winter" || st.Theme.Accent != layout.RGB(0x64, 0xB5, 0xF6) {
		t.Fatalf("theme preset not applied: %+v", st.Theme)
	}
	if st.Content.Title != "Kış Çorbası" || st.Content.Watermark.Visible {
		t.Fatalf("patch not applied: %+v", st.Content)
	}
	if st.Layout != layout.Quote || st.Format != layout.FormatPost {
		t.Fatalf("editor settings not applied: %+v", st)
	}
	if err := s.Apply(ctx, &dsl.Edits{Theme: strPtr("neon")}); !errors.Is(err, ErrUnknownTheme) {
		t.Fatalf("expected ErrUnknownTheme, got %v", err)
	}
}

func strPtr(s string) *string { return &s }

func TestAutoAccent(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 60, 60))
	for y := 0; y < 60; y++ {
		for x := 0; x < 60; x++ {
			c := color.RGBA{R: 250, G: 200, B: 40, A: 255}
			if x >= 51 {
				c = color.RGBA{R: 60, G: 60, B: 200, A: 255}
			}
			j := uint8((x*7 + y*3) % 9)
			c.R, c.G, c.B = c.R-j, c.G-j, c.B+j
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	fetcher := canvasrenderer.FetcherFunc(func(ctx context.Context, src string) ([]byte, string, error) {
		return buf.Bytes(), "image/png", nil
	})
	s := newSession(t, Options{Palette: palette.New(fetcher, nil)})

	if _, err := s.AutoAccent(context.Background()); !errors.Is(err, ErrNoBackground) {
		t.Fatalf("expected ErrNoBackground, got %v", err)
	}
	bg := "https://cdn.example.com/bg.jpg"
	if err := s.SetData(context.Background(), content.Patch{BackgroundRef: &bg}); err != nil {
		t.Fatalf("set data: %v", err)
	}
	got, err := s.AutoAccent(context.Background())
	if err != nil {
		t.Fatalf("auto accent: %v", err)
	}
	if got.R < 200 || got.G < 140 {
		t.Fatalf("unexpected accent %+v", got)
	}
	if s.Snapshot().Theme.Accent != got {
		t.Fatalf("accent should be applied to the theme")
	}
}

func TestBatchExportUsesSessionState(t *testing.T) {
	ctx := context.Background()
	var states []export.State
	var mu sync.Mutex
	s := newSession(t, Options{OnExport: func(st export.Status) {
		mu.Lock()
		states = append(states, st.State)
		mu.Unlock()
	}})
	s.SetLayout("minimal")
	archive, err := s.Batch(ctx, export.Options{Encoding: renderer.PNG}, false)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if archive.Name != "KG-recipe-batch.zip" || len(archive.Entries) != 2 {
		t.Fatalf("unexpected archive %+v", archive)
	}
	if st := s.ExportStatus(); st.State != export.StateIdle || st.Archive != nil || st.Progress != 0 {
		t.Fatalf("handed-off batch should leave the job idle, got %+v", st)
	}
	mu.Lock()
	defer mu.Unlock()
	n := len(states)
	if n < 3 || states[0] != export.StateExporting || states[n-2] != export.StateDone || states[n-1] != export.StateIdle {
		t.Fatalf("unexpected transitions %v", states)
	}
}

func TestBatchFailureReturnsToIdle(t *testing.T) {
	s := newSession(t, Options{Export: export.EngineOptions{Renderer: &stubRenderer{failOn: layout.FormatPost}}})
	_, err := s.Batch(context.Background(), export.Options{}, false)
	if !errors.Is(err, export.ErrExportFailed) {
		t.Fatalf("expected ErrExportFailed, got %v", err)
	}
	if st := s.ExportStatus(); st.State != export.StateIdle || st.Archive != nil {
		t.Fatalf("failed batch should leave the job idle, got %+v", st)
	}
}

func TestSingleExportName(t *testing.T) {
	s := newSession(t, Options{})
	if err := s.SetFormat(context.Background(), layout.FormatPost); err != nil {
		t.Fatalf("set format: %v", err)
	}
	res, err := s.Export(context.Background(), export.Options{Encoding: renderer.PNG})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if res.Filename != "KG-recipe-post-1700000000123.png" || string(res.Data) != "post-modern" {
		t.Fatalf("unexpected result %s %q", res.Filename, res.Data)
	}
}
