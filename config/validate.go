package config

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/sirupsen/logrus"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateBackend(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validatePrefs(); err != nil {
		return err
	}
	if err := c.validateExport(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateBackend() error {
	if c.Backend.BaseURL == "" {
		if c.Backend.RequireAuth {
			return errors.New("backend.base_url is required when backend.require_auth is set")
		}
		return nil
	}
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("backend.base_url must be an http(s) URL, got %q", c.Backend.BaseURL)
	}
	return nil
}

func (c *Config) validateStorage() error {
	if c.Storage.Endpoint == "" {
		if c.Export.Upload {
			return errors.New("export.upload requires storage.endpoint")
		}
		return nil
	}
	if c.Storage.AccessKey == "" || c.Storage.SecretKey == "" {
		return errors.New("storage.access_key and storage.secret_key are required. Set CARDSTUDIO_S3_ACCESS_KEY / CARDSTUDIO_S3_SECRET_KEY or edit the config file")
	}
	if c.Export.Upload && c.Storage.Bucket == "" {
		return errors.New("export.upload requires storage.bucket")
	}
	return nil
}

func (c *Config) validatePrefs() error {
	switch c.Prefs.Backend {
	case "sqlite":
		return nil
	case "redis":
		if c.Prefs.RedisURL == "" {
			return errors.New("prefs.redis_url is required for the redis backend. Set CARDSTUDIO_REDIS_URL or edit the config file")
		}
		return nil
	}
	return fmt.Errorf("prefs.backend must be sqlite or redis, got %q", c.Prefs.Backend)
}

func (c *Config) validateExport() error {
	switch c.Export.Encoding {
	case "png", "jpeg", "jpg":
	default:
		return fmt.Errorf("export.encoding must be png or jpeg, got %q", c.Export.Encoding)
	}
	if c.Export.Quality > 1 {
		return errors.New("export.quality must be between 0 and 1")
	}
	if c.Export.PixelRatio > 4 {
		return errors.New("export.pixel_ratio must not exceed 4")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}
	if _, err := logrus.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	return nil
}
