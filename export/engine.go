package export

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ByLCY/cardstudio/binding"
	"github.com/ByLCY/cardstudio/content"
	"github.com/ByLCY/cardstudio/layout"
	"github.com/ByLCY/cardstudio/renderer"
	"github.com/ByLCY/cardstudio/storage"
)

// Composer builds canonical compositions; *compose.Renderer satisfies it.
type Composer interface {
	Render(c content.Renderable, f layout.Format, id layout.ID) (*layout.Composition, error)
}

// Uploader stores finished archives; *storage.Store satisfies it.
type Uploader interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (storage.Ref, error)
}

// EngineOptions configures an Engine.
type EngineOptions struct {
	Renderer renderer.Renderer
	Composer Composer
	Packer   Packer
	Uploader Uploader
	// FilePrefix is the brand token in file names; empty means "KG".
	FilePrefix string
	Now        func() time.Time
	Logger     logrus.FieldLogger
}

// Engine turns compositions into files.
type Engine struct {
	renderer renderer.Renderer
	composer Composer
	packer   Packer
	uploader Uploader
	prefix   string
	now      func() time.Time
	log      logrus.FieldLogger
}

// NewEngine creates an export engine. A nil Packer uses ZipPacker.
func NewEngine(opts EngineOptions) *Engine {
	e := &Engine{
		renderer: opts.Renderer,
		composer: opts.Composer,
		packer:   opts.Packer,
		uploader: opts.Uploader,
		prefix:   strings.TrimSpace(opts.FilePrefix),
		now:      opts.Now,
		log:      opts.Logger,
	}
	if e.packer == nil {
		e.packer = ZipPacker{}
	}
	if e.prefix == "" {
		e.prefix = DefaultFilePrefix
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		e.log = l
	}
	return e
}

// ExportOne rasterizes comp at canonical resolution times the pixel ratio.
func (e *Engine) ExportOne(ctx context.Context, comp *layout.Composition, opts Options) ([]byte, error) {
	if e.renderer == nil {
		return nil, fmt.Errorf("%w: no renderer configured", ErrExportFailed)
	}
	data, err := e.renderer.Render(ctx, comp, opts.renderOptions())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	return data, nil
}

// Single composes and exports one format, named with a timestamp.
func (e *Engine) Single(ctx context.Context, c content.Renderable, f layout.Format, id layout.ID, opts Options) (*Result, error) {
	comp, err := e.compose(c, f, id)
	if err != nil {
		return nil, err
	}
	data, err := e.ExportOne(ctx, comp, opts)
	if err != nil {
		return nil, err
	}
	ro := opts.renderOptions()
	name, err := e.fileName(SinglePattern, c.Kind, f, ro.Encoding)
	if err != nil {
		return nil, err
	}
	e.log.WithFields(logrus.Fields{"file": name, "bytes": len(data)}).Info("exported")
	return &Result{Data: data, Filename: name, MimeType: ro.Encoding.MIME()}, nil
}

// ExportBatch exports every format, story then post, one at a time, and packs
// the artifacts into one archive. progress receives the completed fraction
// after each artifact. Any failure aborts the batch and no archive is returned.
func (e *Engine) ExportBatch(ctx context.Context, c content.Renderable, id layout.ID, opts Options, progress func(float64)) (*Archive, error) {
	ro := opts.renderOptions()
	entries := make([]Entry, 0, len(layout.Formats))
	for i, f := range layout.Formats {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrExportFailed, err)
		}
		comp, err := e.compose(c, f, id)
		if err != nil {
			return nil, err
		}
		data, err := e.ExportOne(ctx, comp, opts)
		if err != nil {
			return nil, err
		}
		name, err := e.fileName(EntryPattern, c.Kind, f, ro.Encoding)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Name: name, Data: data})
		if progress != nil {
			progress(float64(i+1) / float64(len(layout.Formats)))
		}
	}
	packed, err := e.packer.Pack(ctx, entries)
	if err != nil {
		return nil, fmt.Errorf("%w: pack: %w", ErrExportFailed, err)
	}
	name, err := e.fileName(ArchivePattern, c.Kind, "", ro.Encoding)
	if err != nil {
		return nil, err
	}
	archive := &Archive{Name: name, Data: packed}
	for _, en := range entries {
		archive.Entries = append(archive.Entries, en.Name)
	}
	e.log.WithFields(logrus.Fields{"archive": name, "entries": len(entries), "bytes": len(packed)}).Info("batch exported")
	return archive, nil
}

// Upload stores the archive in object storage and records its location.
func (e *Engine) Upload(ctx context.Context, a *Archive) error {
	if e.uploader == nil {
		return fmt.Errorf("%w: %w", ErrExportFailed, storage.ErrNotConfigured)
	}
	ref, err := e.uploader.Put(ctx, a.Name, a.Data, ArchiveMIME)
	if err != nil {
		return fmt.Errorf("%w: upload: %w", ErrExportFailed, err)
	}
	a.Location = ref.String()
	return nil
}

func (e *Engine) compose(c content.Renderable, f layout.Format, id layout.ID) (*layout.Composition, error) {
	if e.composer == nil {
		return nil, fmt.Errorf("%w: no composer configured", ErrExportFailed)
	}
	comp, err := e.composer.Render(c, f, id)
	if err != nil {
		return nil, fmt.Errorf("%w: compose %s: %w", ErrExportFailed, f, err)
	}
	return comp, nil
}

func (e *Engine) fileName(pattern string, kind content.Kind, f layout.Format, enc renderer.Encoding) (string, error) {
	name, err := binding.FileName(pattern, binding.Vars{
		"brand":     e.prefix,
		"kind":      kind.Slug(),
		"format":    string(f),
		"ext":       enc.Ext(),
		"timestamp": strconv.FormatInt(e.now().UnixMilli(), 10),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	return name, nil
}
