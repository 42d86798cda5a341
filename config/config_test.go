package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"github.com/ByLCY/cardstudio/config"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("CARDSTUDIO_BACKEND_TOKEN", "secret-token")

	cfg, resolved, exists, err := config.Load(filepath.Join(tempHome, "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent")
	}
	if resolved != filepath.Join(tempHome, "missing.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if cfg.Backend.Token != "secret-token" {
		t.Fatalf("expected token from env, got %q", cfg.Backend.Token)
	}
	wantPrefs := filepath.Join(tempHome, ".local", "share", "cardstudio", "prefs.db")
	if cfg.Prefs.Path != wantPrefs || cfg.PrefsTarget() != wantPrefs {
		t.Fatalf("unexpected prefs path %q", cfg.Prefs.Path)
	}
	if cfg.Brand.FilePrefix != "KG" || cfg.Export.PixelRatio != 2 || cfg.Export.Quality != 0.9 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.CacheTTL().Minutes() != 30 {
		t.Fatalf("unexpected cache ttl %v", cfg.CacheTTL())
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cardstudio.toml")
	contents := `
[brand]
theme = " Ramazan "
file_prefix = "KGS"

[backend]
base_url = "https://api.example.com/wp-json/"

[export]
encoding = "JPEG"
quality = 0.8

[logging]
format = "json"
level = "debug"
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if cfg.Brand.Theme != "ramazan" || cfg.Brand.FilePrefix != "KGS" {
		t.Fatalf("unexpected brand %+v", cfg.Brand)
	}
	if cfg.Backend.BaseURL != "https://api.example.com/wp-json" {
		t.Fatalf("trailing slash should be trimmed, got %q", cfg.Backend.BaseURL)
	}
	if cfg.Export.Encoding != "jpeg" || cfg.Export.Quality != 0.8 {
		t.Fatalf("unexpected export %+v", cfg.Export)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging %+v", cfg.Logging)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"encoding": "[export]\nencoding = \"gif\"\n",
		"prefs":    "[prefs]\nbackend = \"postgres\"\n",
		"redis":    "[prefs]\nbackend = \"redis\"\n",
		"storage":  "[storage]\nendpoint = \"s3.example.com\"\n",
		"upload":   "[export]\nupload = true\n",
		"level":    "[logging]\nlevel = \"loud\"\n",
		"backend":  "[backend]\nbase_url = \"ftp://example.com\"\n",
		"unknown":  "[brand]\ncolour = \"orange\"\n",
	}
	t.Setenv("CARDSTUDIO_REDIS_URL", "")
	os.Unsetenv("CARDSTUDIO_REDIS_URL")
	t.Setenv("CARDSTUDIO_S3_ACCESS_KEY", "")
	os.Unsetenv("CARDSTUDIO_S3_ACCESS_KEY")
	for name, contents := range cases {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
			t.Fatalf("write config: %v", err)
		}
		if _, _, _, err := config.Load(path); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestSampleConfigParses(t *testing.T) {
	var cfg config.Config
	if err := toml.Unmarshal([]byte(config.SampleConfig()), &cfg); err != nil {
		t.Fatalf("sample config does not parse: %v", err)
	}
	if cfg.Brand.Theme != "kidsgourmet" || !strings.HasPrefix(cfg.Backend.BaseURL, "https://") {
		t.Fatalf("unexpected sample values %+v", cfg)
	}
}
