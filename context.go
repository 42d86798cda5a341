package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ByLCY/cardstudio/backend"
	"github.com/ByLCY/cardstudio/catalog"
	"github.com/ByLCY/cardstudio/compose"
	"github.com/ByLCY/cardstudio/config"
	"github.com/ByLCY/cardstudio/export"
	"github.com/ByLCY/cardstudio/imageproxy"
	"github.com/ByLCY/cardstudio/layout"
	"github.com/ByLCY/cardstudio/logging"
	"github.com/ByLCY/cardstudio/normalize"
	"github.com/ByLCY/cardstudio/palette"
	"github.com/ByLCY/cardstudio/prefs"
	canvasrenderer "github.com/ByLCY/cardstudio/renderer/canvas"
	"github.com/ByLCY/cardstudio/storage"
	"github.com/ByLCY/cardstudio/studio"
)

type commandContext struct {
	configFlag *string
	verbose    *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	logOnce   sync.Once
	logger    *logrus.Logger
	loggerErr error

	mu      sync.Mutex
	closers []io.Closer
}

func newCommandContext(configFlag *string, verbose *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		verbose:    verbose,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*logrus.Logger, error) {
	c.logOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		opts := logging.Options{
			Level:      cfg.Logging.Level,
			Format:     cfg.Logging.Format,
			File:       cfg.Logging.File,
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
		}
		if c.verbose != nil && *c.verbose {
			opts.Level = "debug"
		}
		c.logger, c.loggerErr = logging.New(opts)
	})
	return c.logger, c.loggerErr
}

// services holds the collaborators every command builds on.
type services struct {
	cfg      *config.Config
	log      *logrus.Logger
	backend  *backend.Client
	objects  *storage.Store
	resolver imageproxy.Resolver
	fetcher  *imageproxy.Fetcher
	renderer *canvasrenderer.Renderer
}

func (c *commandContext) services() (*services, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	log, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}

	svc := &services{cfg: cfg, log: log}
	svc.backend = backend.New(backend.Options{
		BaseURL: cfg.Backend.BaseURL,
		Token:   cfg.Backend.Token,
		Timeout: cfg.BackendTimeout(),
		PerPage: cfg.Backend.PerPage,
		Logger:  log.WithField("component", "backend"),
	})

	storeCfg := storage.Config{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Bucket:    cfg.Storage.Bucket,
		UseSSL:    cfg.Storage.UseSSL,
	}
	if storeCfg.Enabled() {
		svc.objects, err = storage.New(storeCfg, log.WithField("component", "storage"))
		if err != nil {
			return nil, err
		}
	}

	svc.resolver = imageproxy.NewResolver(cfg.Proxy.Relay)
	fetcherOpts := imageproxy.FetcherOptions{
		Timeout:       cfg.ProxyTimeout(),
		AssetsDir:     cfg.Proxy.AssetsDir,
		Resolver:      svc.resolver,
		CacheTTL:      cfg.CacheTTL(),
		RatePerSecond: cfg.Proxy.RatePerSecond,
		Burst:         cfg.Proxy.Burst,
		MaxBytes:      cfg.Proxy.MaxBytes,
		Logger:        log.WithField("component", "fetcher"),
	}
	if svc.objects != nil {
		fetcherOpts.Objects = svc.objects
	}
	svc.fetcher = imageproxy.NewFetcher(fetcherOpts)
	svc.renderer = canvasrenderer.NewRenderer(canvasrenderer.Options{
		Fetcher: svc.fetcher,
		Logger:  log.WithField("component", "renderer"),
	})
	return svc, nil
}

func (c *commandContext) openPrefs() (*prefs.Manager, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := prefs.Open(cfg.Prefs.Backend, cfg.PrefsTarget())
	if err != nil {
		return nil, fmt.Errorf("open preferences: %w", err)
	}
	m := prefs.NewManager(store)
	c.track(m)
	return m, nil
}

// openSession wires a studio session and restores persisted preferences.
func (c *commandContext) openSession(ctx context.Context, onExport func(export.Status)) (*studio.Session, *services, error) {
	svc, err := c.services()
	if err != nil {
		return nil, nil, err
	}
	cfg := svc.cfg
	manager, err := c.openPrefs()
	if err != nil {
		return nil, nil, err
	}

	cat := catalog.Default()
	var theme *layout.Theme
	if preset, ok := cat.Theme(cfg.Brand.Theme); ok {
		t := preset.Theme()
		theme = &t
	}

	var gate studio.Gate
	watermark := cfg.Brand.WatermarkURL
	if cfg.Backend.RequireAuth {
		gate = svc.backend
		if watermark == "" {
			watermark = svc.backend.DefaultWatermark(ctx)
		}
	}

	composer := compose.New(compose.Options{
		Resolver:         svc.resolver,
		DefaultWatermark: watermark,
		Brand:            cfg.Brand.Name,
		Theme:            theme,
		Typesetter:       svc.renderer,
		Logger:           svc.log.WithField("component", "compose"),
	})

	engine := export.EngineOptions{
		Renderer:   svc.renderer,
		FilePrefix: cfg.Brand.FilePrefix,
		Logger:     svc.log.WithField("component", "export"),
	}
	if svc.objects != nil {
		engine.Uploader = svc.objects
	}

	session := studio.New(studio.Options{
		Composer:   composer,
		Catalog:    cat,
		Prefs:      manager,
		Palette:    palette.New(svc.fetcher, svc.log.WithField("component", "palette")),
		Normalizer: normalize.New(svc.log.WithField("component", "normalize")),
		Gate:       gate,
		Export:     engine,
		OnExport:   onExport,
		Logger:     svc.log.WithField("component", "studio"),
	})
	if err := session.Open(ctx); err != nil {
		if errors.Is(err, studio.ErrUnauthorized) {
			return nil, nil, fmt.Errorf("%w: log in with an editor or administrator account", err)
		}
		return nil, nil, err
	}
	return session, svc, nil
}

func (c *commandContext) track(closer io.Closer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closers = append(c.closers, closer)
}

func (c *commandContext) close() error {
	c.mu.Lock()
	closers := c.closers
	c.closers = nil
	c.mu.Unlock()
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
