package config

const (
	defaultConfigPath      = "~/.config/cardstudio/config.toml"
	defaultBrandName       = "KidsGourmet"
	defaultFilePrefix      = "KG"
	defaultTheme           = "kidsgourmet"
	defaultWatermarkURL    = "/assets/kg-logo.png"
	defaultBackendURL      = "https://api.kidsgourmet.com.tr/wp-json"
	defaultBackendTimeout  = 15
	defaultPerPage         = 10
	defaultRelay           = "/api/proxy-image"
	defaultAssetsDir       = "./public"
	defaultProxyTimeout    = 20
	defaultCacheTTLSeconds = 1800
	defaultRatePerSecond   = 5
	defaultBurst           = 10
	defaultMaxBytes        = 20 << 20
	defaultPrefsBackend    = "sqlite"
	defaultPrefsPath       = "~/.local/share/cardstudio/prefs.db"
	defaultEncoding        = "png"
	defaultQuality         = 0.9
	defaultPixelRatio      = 2
	defaultOutputDir       = "."
	defaultLogFormat       = "text"
	defaultLogLevel        = "info"
	defaultBind            = "127.0.0.1:7380"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Brand: Brand{
			Name:         defaultBrandName,
			FilePrefix:   defaultFilePrefix,
			Theme:        defaultTheme,
			WatermarkURL: defaultWatermarkURL,
		},
		Backend: Backend{
			BaseURL:        defaultBackendURL,
			TimeoutSeconds: defaultBackendTimeout,
			PerPage:        defaultPerPage,
		},
		Proxy: Proxy{
			Relay:           defaultRelay,
			AssetsDir:       defaultAssetsDir,
			TimeoutSeconds:  defaultProxyTimeout,
			CacheTTLSeconds: defaultCacheTTLSeconds,
			RatePerSecond:   defaultRatePerSecond,
			Burst:           defaultBurst,
			MaxBytes:        defaultMaxBytes,
		},
		Storage: Storage{UseSSL: true},
		Prefs: Prefs{
			Backend: defaultPrefsBackend,
			Path:    defaultPrefsPath,
		},
		Export: Export{
			Encoding:   defaultEncoding,
			Quality:    defaultQuality,
			PixelRatio: defaultPixelRatio,
			OutputDir:  defaultOutputDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Server: Server{Bind: defaultBind},
	}
}
