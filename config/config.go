package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Brand contains the brand identity stamped on every card.
type Brand struct {
	Name         string `toml:"name"`
	FilePrefix   string `toml:"file_prefix"`
	Theme        string `toml:"theme"`
	WatermarkURL string `toml:"watermark_url"`
}

// Backend contains the content API connection.
type Backend struct {
	BaseURL        string `toml:"base_url"`
	Token          string `toml:"token"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	PerPage        int    `toml:"per_page"`
	RequireAuth    bool   `toml:"require_auth"`
}

// Proxy contains the image relay and fetcher settings.
type Proxy struct {
	Relay           string  `toml:"relay"`
	AssetsDir       string  `toml:"assets_dir"`
	TimeoutSeconds  int     `toml:"timeout_seconds"`
	CacheTTLSeconds int     `toml:"cache_ttl_seconds"`
	RatePerSecond   float64 `toml:"rate_per_second"`
	Burst           int     `toml:"burst"`
	MaxBytes        int64   `toml:"max_bytes"`
}

// Storage contains the optional S3-compatible object store.
type Storage struct {
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	Bucket    string `toml:"bucket"`
	UseSSL    bool   `toml:"use_ssl"`
}

// Prefs selects where user preferences are persisted.
type Prefs struct {
	Backend  string `toml:"backend"`
	Path     string `toml:"path"`
	RedisURL string `toml:"redis_url"`
}

// Export contains raster output defaults.
type Export struct {
	Encoding   string  `toml:"encoding"`
	Quality    float64 `toml:"quality"`
	PixelRatio float64 `toml:"pixel_ratio"`
	OutputDir  string  `toml:"output_dir"`
	Upload     bool    `toml:"upload"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format     string `toml:"format"`
	Level      string `toml:"level"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
}

// Server contains the relay HTTP server settings.
type Server struct {
	Bind string `toml:"bind"`
}

// Config encapsulates all configuration values for the studio.
//
// Configuration sections by subsystem:
//   - Brand: brand name, file prefix, theme preset and watermark
//   - Backend: content API and session token
//   - Proxy: image relay path, local assets and fetch limits
//   - Storage: S3-compatible object store for s3:// refs and archive uploads
//   - Prefs: preference store (sqlite file or redis)
//   - Export: encoding, quality and pixel ratio defaults
//   - Logging: log format and level
//   - Server: relay bind address
type Config struct {
	Brand   Brand   `toml:"brand"`
	Backend Backend `toml:"backend"`
	Proxy   Proxy   `toml:"proxy"`
	Storage Storage `toml:"storage"`
	Prefs   Prefs   `toml:"prefs"`
	Export  Export  `toml:"export"`
	Logging Logging `toml:"logging"`
	Server  Server  `toml:"server"`
}

// SampleConfig returns a commented configuration file.
func SampleConfig() string { return sampleConfig }

// CreateSample writes the sample configuration to path.
func CreateSample(path string) error {
	return os.WriteFile(path, []byte(sampleConfig), 0o644)
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. A missing file
// yields the defaults; the returned bool reports whether the file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("cardstudio.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

// BackendTimeout returns the backend request timeout.
func (c *Config) BackendTimeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}

// ProxyTimeout returns the upstream image fetch timeout.
func (c *Config) ProxyTimeout() time.Duration {
	return time.Duration(c.Proxy.TimeoutSeconds) * time.Second
}

// CacheTTL returns how long fetched images stay cached.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Proxy.CacheTTLSeconds) * time.Second
}

// PrefsTarget returns the store location for the configured prefs backend.
func (c *Config) PrefsTarget() string {
	if c.Prefs.Backend == "redis" {
		return c.Prefs.RedisURL
	}
	return c.Prefs.Path
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
