// Package studio 持有编辑会话：当前内容、画幅、布局与配色，
// 以及把它们交给合成与导出的入口。内容与偏好是两个独立切片，
// 只有画幅与水印会被持久化。
package studio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ByLCY/cardstudio/catalog"
	"github.com/ByLCY/cardstudio/compose"
	"github.com/ByLCY/cardstudio/content"
	"github.com/ByLCY/cardstudio/dsl"
	"github.com/ByLCY/cardstudio/export"
	"github.com/ByLCY/cardstudio/layout"
	"github.com/ByLCY/cardstudio/normalize"
	"github.com/ByLCY/cardstudio/palette"
	"github.com/ByLCY/cardstudio/prefs"
)

var (
	// ErrUnauthorized 表示授权检查未通过，会话拒绝合成与导出。
	ErrUnauthorized = errors.New("studio: not authorized")
	// ErrNoBackground 表示当前内容没有背景图，无法提取强调色。
	ErrNoBackground = errors.New("studio: no background image")
	// ErrUnknownTheme 表示主题预设不存在。
	ErrUnknownTheme = errors.New("studio: unknown theme preset")
)

// Gate 是上游授权检查；*backend.Client 满足该接口。
type Gate interface {
	Authorize(ctx context.Context) (bool, error)
}

// GateFunc 将函数适配为 Gate。
type GateFunc func(ctx context.Context) (bool, error)

func (f GateFunc) Authorize(ctx context.Context) (bool, error) { return f(ctx) }

// Options 配置会话。Composer 必填，其余协作者可为空。
type Options struct {
	Composer   *compose.Renderer
	Catalog    *catalog.Catalog
	Prefs      *prefs.Manager
	Palette    *palette.Extractor
	Normalizer *normalize.Normalizer
	Gate       Gate
	// Export 配置导出引擎；其中的 Composer 由会话自身替换。
	Export export.EngineOptions
	// OnExport 接收导出任务的状态变化。
	OnExport func(export.Status)
	Logger   logrus.FieldLogger
}

// State 是会话的只读快照。
type State struct {
	Content  content.Renderable
	Format   layout.Format
	Layout   layout.ID
	Template string
	Theme    layout.Theme
}

// Session 是单用户编辑会话，可并发读取；写操作串行化。
type Session struct {
	mu         sync.RWMutex
	content    content.Renderable
	format     layout.Format
	layoutID   layout.ID
	template   string
	composer   *compose.Renderer
	authorized bool

	catalog *catalog.Catalog
	prefs   *prefs.Manager
	palette *palette.Extractor
	norm    *normalize.Normalizer
	gate    Gate
	engine  *export.Engine
	job     *export.Job
	log     logrus.FieldLogger
}

// New 创建会话，内容为默认占位记录，画幅为 story，布局为默认布局。
// 没有配置 Gate 时会话视为已授权。
func New(opts Options) *Session {
	s := &Session{
		content:    content.Default(),
		format:     layout.FormatStory,
		layoutID:   layout.Default,
		composer:   opts.Composer,
		authorized: opts.Gate == nil,
		catalog:    opts.Catalog,
		prefs:      opts.Prefs,
		palette:    opts.Palette,
		norm:       opts.Normalizer,
		gate:       opts.Gate,
		log:        opts.Logger,
	}
	if s.composer == nil {
		s.composer = compose.New(compose.Options{Logger: opts.Logger})
	}
	if s.catalog == nil {
		s.catalog = catalog.Default()
	}
	if s.norm == nil {
		s.norm = normalize.New(opts.Logger)
	}
	if s.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		s.log = l
	}
	engineOpts := opts.Export
	engineOpts.Composer = gatedComposer{s}
	if engineOpts.Logger == nil {
		engineOpts.Logger = s.log
	}
	s.engine = export.NewEngine(engineOpts)
	s.job = export.NewJob(opts.OnExport)
	return s
}

// Open 执行授权检查并合并持久化偏好。
func (s *Session) Open(ctx context.Context) error {
	if s.gate != nil {
		ok, err := s.gate.Authorize(ctx)
		if err != nil {
			return fmt.Errorf("authorize: %w", err)
		}
		if !ok {
			s.mu.Lock()
			s.authorized = false
			s.mu.Unlock()
			return ErrUnauthorized
		}
	}
	s.mu.Lock()
	s.authorized = true
	s.mu.Unlock()

	if s.prefs == nil {
		return nil
	}
	editor, found, err := s.prefs.LoadEditor(ctx)
	if err != nil {
		return fmt.Errorf("load editor preferences: %w", err)
	}
	settings, err := s.prefs.LoadSettings(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if found {
		var mergeErr error
		s.format, s.content.Watermark, mergeErr = editor.Merge(s.format, s.content.Watermark)
		if mergeErr != nil {
			s.log.WithError(mergeErr).Warn("ignoring persisted watermark")
		}
	}
	if settings.DefaultWatermarkURL != "" {
		s.composer = s.composer.WithDefaultWatermark(settings.DefaultWatermarkURL)
	}
	s.log.WithFields(logrus.Fields{"format": s.format, "restored": found}).Debug("session opened")
	return nil
}

// Authorized 返回最近一次授权检查的结果。
func (s *Session) Authorized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authorized
}

// Snapshot 返回当前状态的深拷贝。
func (s *Session) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{
		Content:  s.content.Clone(),
		Format:   s.format,
		Layout:   s.layoutID,
		Template: s.template,
		Theme:    s.composer.Theme(),
	}
}

// SetData 合并一次内容编辑。补丁中含水印时同步持久化偏好。
func (s *Session) SetData(ctx context.Context, p content.Patch) error {
	s.mu.Lock()
	next, err := p.Apply(s.content)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.content = next
	s.mu.Unlock()
	if p.Watermark != nil {
		s.persist(ctx)
	}
	return nil
}

// SetWatermark 合并水印设置并持久化。
func (s *Session) SetWatermark(ctx context.Context, p content.WatermarkPatch) error {
	return s.SetData(ctx, content.Patch{Watermark: &p})
}

// SetFormat 切换画幅并持久化。
func (s *Session) SetFormat(ctx context.Context, f layout.Format) error {
	f, err := layout.ParseFormat(string(f))
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.format = f
	s.mu.Unlock()
	s.persist(ctx)
	return nil
}

// SetLayout 按名称选择布局；未知名称回退到默认布局，ok 为 false。
func (s *Session) SetLayout(name string) (layout.ID, bool) {
	id, _, ok := layout.Lookup(name)
	if !ok {
		s.log.WithFields(logrus.Fields{"layout": name, "fallback": id}).Debug("unknown layout, using default")
	}
	s.mu.Lock()
	s.layoutID = id
	s.template = ""
	s.mu.Unlock()
	return id, ok
}

// SetTheme 应用主题预设。
func (s *Session) SetTheme(name string) error {
	preset, ok := s.catalog.Theme(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTheme, name)
	}
	s.mu.Lock()
	s.composer = s.composer.WithTheme(preset.Theme())
	s.mu.Unlock()
	return nil
}

// SetAccent 只替换当前配色的强调色。
func (s *Session) SetAccent(c layout.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.composer.Theme()
	t.Accent = c
	s.composer = s.composer.WithTheme(t)
}

// AutoAccent 从背景图提取主色作为强调色。
func (s *Session) AutoAccent(ctx context.Context) (layout.Color, error) {
	if s.palette == nil {
		return layout.Color{}, fmt.Errorf("auto accent: %w", palette.ErrNoColor)
	}
	s.mu.RLock()
	ref := strings.TrimSpace(s.content.BackgroundRef)
	s.mu.RUnlock()
	if ref == "" {
		return layout.Color{}, ErrNoBackground
	}
	c := s.palette.Accent(ctx, ref)
	s.SetAccent(c)
	return c, nil
}

// ApplyTemplate 应用目录中的模板：设置画幅与布局并持久化画幅。
func (s *Session) ApplyTemplate(ctx context.Context, id string) (catalog.Template, error) {
	tpl, err := s.catalog.Template(id)
	if err != nil {
		return catalog.Template{}, err
	}
	s.mu.Lock()
	s.format, s.layoutID, s.template = tpl.Format, tpl.Layout, tpl.ID
	kind := s.content.Kind
	s.mu.Unlock()
	if tpl.Kind() != kind {
		s.log.WithFields(logrus.Fields{"template": tpl.ID, "kind": kind}).Debug("template kind differs from content kind")
	}
	s.persist(ctx)
	return tpl, nil
}

// Apply 执行编辑脚本编译出的修改。
func (s *Session) Apply(ctx context.Context, e *dsl.Edits) error {
	if e == nil {
		return nil
	}
	if e.Theme != nil {
		if err := s.SetTheme(*e.Theme); err != nil {
			return err
		}
	}
	if e.Accent != nil {
		s.SetAccent(*e.Accent)
	}
	if e.Layout != nil {
		s.SetLayout(string(*e.Layout))
	}
	if e.Format != nil {
		if err := s.SetFormat(ctx, *e.Format); err != nil {
			return err
		}
	}
	return s.SetData(ctx, e.Patch)
}

// Load 规范化后端记录并载入，水印设置保留。
func (s *Session) Load(raw normalize.Record) (content.Renderable, error) {
	rec, err := s.norm.Normalize(raw)
	if err != nil {
		return content.Renderable{}, err
	}
	s.LoadContent(rec)
	return rec, nil
}

// LoadContent 载入已规范化的记录，水印设置保留。
func (s *Session) LoadContent(rec content.Renderable) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.content = s.content.ReplaceContent(rec)
}

// Reset 恢复默认占位记录（包括水印）并持久化。
func (s *Session) Reset(ctx context.Context) {
	s.mu.Lock()
	s.content = content.Default()
	s.mu.Unlock()
	s.persist(ctx)
}

// Compose 以当前画幅合成。
func (s *Session) Compose() (*layout.Composition, error) {
	s.mu.RLock()
	f := s.format
	s.mu.RUnlock()
	return s.ComposeFormat(f)
}

// ComposeFormat 以指定画幅合成当前内容。
func (s *Session) ComposeFormat(f layout.Format) (*layout.Composition, error) {
	s.mu.RLock()
	if !s.authorized {
		s.mu.RUnlock()
		return nil, ErrUnauthorized
	}
	c, id, r := s.content.Clone(), s.layoutID, s.composer
	s.mu.RUnlock()
	return r.Render(c, f, id)
}

// gatedComposer 供导出引擎使用：沿用会话当前的配色与默认水印，并同样经过授权检查。
type gatedComposer struct{ s *Session }

func (g gatedComposer) Render(c content.Renderable, f layout.Format, id layout.ID) (*layout.Composition, error) {
	g.s.mu.RLock()
	ok, r := g.s.authorized, g.s.composer
	g.s.mu.RUnlock()
	if !ok {
		return nil, ErrUnauthorized
	}
	return r.Render(c, f, id)
}

// Export 导出当前画幅的单张图片。
func (s *Session) Export(ctx context.Context, opts export.Options) (*export.Result, error) {
	st, err := s.exportState()
	if err != nil {
		return nil, err
	}
	return s.engine.Single(ctx, st.Content, st.Format, st.Layout, opts)
}

// Batch 依次导出全部画幅并打包。归档交给调用方后任务回到空闲状态；失败同样回到空闲，错误原样返回。
func (s *Session) Batch(ctx context.Context, opts export.Options, upload bool) (*export.Archive, error) {
	st, err := s.exportState()
	if err != nil {
		return nil, err
	}
	archive, err := s.job.Run(ctx, func(ctx context.Context, progress func(float64)) (*export.Archive, error) {
		a, err := s.engine.ExportBatch(ctx, st.Content, st.Layout, opts, progress)
		if err != nil {
			return nil, err
		}
		if upload {
			if err := s.engine.Upload(ctx, a); err != nil {
				return nil, err
			}
		}
		return a, nil
	})
	if errors.Is(err, export.ErrCanceled) || errors.Is(err, export.ErrBusy) {
		return nil, err
	}
	_ = s.job.Reset()
	return archive, err
}

// CancelExport 取消进行中的批量导出。
func (s *Session) CancelExport() { s.job.Cancel() }

// ExportStatus 返回批量导出任务的状态。
func (s *Session) ExportStatus() export.Status { return s.job.Status() }

func (s *Session) exportState() (State, error) {
	if !s.Authorized() {
		return State{}, ErrUnauthorized
	}
	return s.Snapshot(), nil
}

// persist 写入画幅与水印偏好；失败只记录日志。
func (s *Session) persist(ctx context.Context) {
	if s.prefs == nil {
		return
	}
	s.mu.RLock()
	f, wm := s.format, s.content.Watermark
	s.mu.RUnlock()
	if err := s.prefs.SaveEditor(ctx, f, wm); err != nil {
		s.log.WithFields(logrus.Fields{"error": err}).Warn("failed to persist editor preferences")
	}
}
