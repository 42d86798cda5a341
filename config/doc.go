// Package config loads, normalizes, and validates the studio's TOML
// configuration. Secrets can be supplied through CARDSTUDIO_* environment
// variables instead of the file.
package config
