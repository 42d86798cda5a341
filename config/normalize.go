package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeBrand()
	c.normalizeBackend()
	if err := c.normalizeProxy(); err != nil {
		return err
	}
	c.normalizeStorage()
	if err := c.normalizePrefs(); err != nil {
		return err
	}
	if err := c.normalizeExport(); err != nil {
		return err
	}
	if err := c.normalizeLogging(); err != nil {
		return err
	}
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultBind
	}
	return nil
}

func (c *Config) normalizeBrand() {
	c.Brand.Name = strings.TrimSpace(c.Brand.Name)
	if c.Brand.Name == "" {
		c.Brand.Name = defaultBrandName
	}
	c.Brand.FilePrefix = strings.TrimSpace(c.Brand.FilePrefix)
	if c.Brand.FilePrefix == "" {
		c.Brand.FilePrefix = defaultFilePrefix
	}
	c.Brand.Theme = strings.ToLower(strings.TrimSpace(c.Brand.Theme))
	if c.Brand.Theme == "" {
		c.Brand.Theme = defaultTheme
	}
	c.Brand.WatermarkURL = strings.TrimSpace(c.Brand.WatermarkURL)
}

func (c *Config) normalizeBackend() {
	if value, ok := os.LookupEnv("CARDSTUDIO_BACKEND_TOKEN"); ok && c.Backend.Token == "" {
		c.Backend.Token = strings.TrimSpace(value)
	}
	c.Backend.BaseURL = strings.TrimRight(strings.TrimSpace(c.Backend.BaseURL), "/")
	if c.Backend.TimeoutSeconds <= 0 {
		c.Backend.TimeoutSeconds = defaultBackendTimeout
	}
	if c.Backend.PerPage <= 0 {
		c.Backend.PerPage = defaultPerPage
	}
}

func (c *Config) normalizeProxy() error {
	c.Proxy.Relay = strings.TrimSpace(c.Proxy.Relay)
	if c.Proxy.Relay == "" {
		c.Proxy.Relay = defaultRelay
	}
	var err error
	if c.Proxy.AssetsDir, err = expandPath(strings.TrimSpace(c.Proxy.AssetsDir)); err != nil {
		return fmt.Errorf("proxy.assets_dir: %w", err)
	}
	if c.Proxy.TimeoutSeconds <= 0 {
		c.Proxy.TimeoutSeconds = defaultProxyTimeout
	}
	if c.Proxy.CacheTTLSeconds <= 0 {
		c.Proxy.CacheTTLSeconds = defaultCacheTTLSeconds
	}
	if c.Proxy.RatePerSecond <= 0 {
		c.Proxy.RatePerSecond = defaultRatePerSecond
	}
	if c.Proxy.Burst <= 0 {
		c.Proxy.Burst = defaultBurst
	}
	if c.Proxy.MaxBytes <= 0 {
		c.Proxy.MaxBytes = defaultMaxBytes
	}
	return nil
}

func (c *Config) normalizeStorage() {
	if value, ok := os.LookupEnv("CARDSTUDIO_S3_ACCESS_KEY"); ok && c.Storage.AccessKey == "" {
		c.Storage.AccessKey = strings.TrimSpace(value)
	}
	if value, ok := os.LookupEnv("CARDSTUDIO_S3_SECRET_KEY"); ok && c.Storage.SecretKey == "" {
		c.Storage.SecretKey = strings.TrimSpace(value)
	}
	c.Storage.Endpoint = strings.TrimSpace(c.Storage.Endpoint)
	c.Storage.Bucket = strings.TrimSpace(c.Storage.Bucket)
}

func (c *Config) normalizePrefs() error {
	c.Prefs.Backend = strings.ToLower(strings.TrimSpace(c.Prefs.Backend))
	if c.Prefs.Backend == "" {
		c.Prefs.Backend = defaultPrefsBackend
	}
	if value, ok := os.LookupEnv("CARDSTUDIO_REDIS_URL"); ok && c.Prefs.RedisURL == "" {
		c.Prefs.RedisURL = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Prefs.Path) == "" {
		c.Prefs.Path = defaultPrefsPath
	}
	var err error
	if c.Prefs.Path, err = expandPath(c.Prefs.Path); err != nil {
		return fmt.Errorf("prefs.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeExport() error {
	c.Export.Encoding = strings.ToLower(strings.TrimSpace(c.Export.Encoding))
	if c.Export.Encoding == "" {
		c.Export.Encoding = defaultEncoding
	}
	if c.Export.Quality <= 0 {
		c.Export.Quality = defaultQuality
	}
	if c.Export.PixelRatio <= 0 {
		c.Export.PixelRatio = defaultPixelRatio
	}
	if strings.TrimSpace(c.Export.OutputDir) == "" {
		c.Export.OutputDir = defaultOutputDir
	}
	var err error
	if c.Export.OutputDir, err = expandPath(c.Export.OutputDir); err != nil {
		return fmt.Errorf("export.output_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if strings.TrimSpace(c.Logging.File) == "" {
		c.Logging.File = ""
		return nil
	}
	var err error
	if c.Logging.File, err = expandPath(c.Logging.File); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	return nil
}
