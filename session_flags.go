package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ByLCY/cardstudio/backend"
	"github.com/ByLCY/cardstudio/dsl"
	"github.com/ByLCY/cardstudio/export"
	"github.com/ByLCY/cardstudio/layout"
	"github.com/ByLCY/cardstudio/normalize"
	"github.com/ByLCY/cardstudio/renderer"
	"github.com/ByLCY/cardstudio/studio"
)

// contentFlags select the record to load and the edits applied on top of it.
type contentFlags struct {
	input      string
	id         int
	link       string
	collection string
	template   string
	layout     string
	format     string
	theme      string
	script     []string
	scriptFile string
	autoAccent bool
}

func (f *contentFlags) bind(cmd *cobra.Command, withFormat bool) {
	flags := cmd.Flags()
	flags.StringVarP(&f.input, "in", "i", "", "JSON record file to load")
	flags.IntVar(&f.id, "id", 0, "Load a record from the backend by id")
	flags.StringVar(&f.link, "url", "", "Load a record from the backend by permalink")
	flags.StringVar(&f.collection, "collection", "recipes", "Backend collection for --id (recipes, posts, ingredients)")
	flags.StringVarP(&f.template, "template", "t", "", "Apply a catalog template")
	flags.StringVarP(&f.layout, "layout", "l", "", "Layout id")
	if withFormat {
		flags.StringVarP(&f.format, "format", "f", "", "Card format (story or post)")
	}
	flags.StringVar(&f.theme, "theme", "", "Theme preset id")
	flags.StringArrayVarP(&f.script, "set", "s", nil, "Edit script, e.g. 'title = \"Elmalı Kek\"' (repeatable)")
	flags.StringVar(&f.scriptFile, "script", "", "Edit script file")
	flags.BoolVar(&f.autoAccent, "auto-accent", false, "Derive the accent color from the background image")
}

// apply loads the selected record and applies the edits in a fixed order:
// record, template, theme, layout, format, scripts, auto accent.
func (f *contentFlags) apply(ctx context.Context, s *studio.Session, svc *services, out io.Writer) error {
	raw, err := f.record(ctx, svc)
	if err != nil {
		return err
	}
	if raw != nil {
		rec, err := s.Load(raw)
		if err != nil {
			return fmt.Errorf("load record: %w", err)
		}
		svc.log.WithFields(logrus.Fields{"id": rec.ID, "kind": rec.Kind}).Debug("record loaded")
	}
	if name := strings.TrimSpace(f.template); name != "" {
		if _, err := s.ApplyTemplate(ctx, name); err != nil {
			return err
		}
	}
	if name := strings.TrimSpace(f.theme); name != "" {
		if err := s.SetTheme(name); err != nil {
			return err
		}
	}
	if name := strings.TrimSpace(f.layout); name != "" {
		if id, ok := s.SetLayout(name); !ok {
			fmt.Fprintf(out, "Unknown layout %q, using %s\n", name, id)
		}
	}
	if name := strings.TrimSpace(f.format); name != "" {
		format, err := layout.ParseFormat(name)
		if err != nil {
			return err
		}
		if err := s.SetFormat(ctx, format); err != nil {
			return err
		}
	}
	if err := f.applyScripts(ctx, s); err != nil {
		return err
	}
	if f.autoAccent {
		c, err := s.AutoAccent(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Accent color %s\n", c.Hex())
	}
	return nil
}

func (f *contentFlags) record(ctx context.Context, svc *services) (normalize.Record, error) {
	switch {
	case f.input != "":
		data, err := os.ReadFile(f.input)
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		return normalize.DecodeRecord(data)
	case f.id > 0:
		coll, err := backend.ParseCollection(f.collection)
		if err != nil {
			return nil, err
		}
		return svc.backend.GetByID(ctx, f.id, coll)
	case strings.TrimSpace(f.link) != "":
		return svc.backend.GetByURL(ctx, f.link)
	}
	return nil, nil
}

func (f *contentFlags) applyScripts(ctx context.Context, s *studio.Session) error {
	if f.scriptFile != "" {
		file, err := os.Open(f.scriptFile)
		if err != nil {
			return fmt.Errorf("open script: %w", err)
		}
		edits, err := dsl.CompileReader(file)
		file.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", f.scriptFile, err)
		}
		if err := s.Apply(ctx, edits); err != nil {
			return err
		}
	}
	for _, src := range f.script {
		edits, err := dsl.CompileString(src)
		if err != nil {
			return err
		}
		if err := s.Apply(ctx, edits); err != nil {
			return err
		}
	}
	return nil
}

// outputFlags control encoding and where files are written.
type outputFlags struct {
	outDir     string
	encoding   string
	quality    float64
	pixelRatio float64
}

func (o *outputFlags) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&o.outDir, "out", "o", "", "Output directory (defaults to export.output_dir)")
	flags.StringVar(&o.encoding, "encoding", "", "Image encoding: png or jpeg")
	flags.Float64Var(&o.quality, "quality", 0, "JPEG quality in [0.5, 1]")
	flags.Float64Var(&o.pixelRatio, "pixel-ratio", 0, "Resolution multiplier")
}

func (o *outputFlags) resolve(svc *services) (string, export.Options, error) {
	cfg := svc.cfg
	enc := firstNonEmpty(o.encoding, cfg.Export.Encoding)
	encoding, err := renderer.ParseEncoding(enc)
	if err != nil {
		return "", export.Options{}, err
	}
	opts := export.Options{
		Encoding:   encoding,
		Quality:    firstPositive(o.quality, cfg.Export.Quality),
		PixelRatio: firstPositive(o.pixelRatio, cfg.Export.PixelRatio),
	}
	dir := firstNonEmpty(o.outDir, cfg.Export.OutputDir, ".")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", export.Options{}, fmt.Errorf("create output directory %q: %w", dir, err)
	}
	return dir, opts, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func firstPositive(values ...float64) float64 {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
