package prefs

import (
	"fmt"
	"strings"
)

// Open returns the store selected by backend: "sqlite" (path is the
// database file) or "redis" (path is a redis:// URL).
func Open(backend, path string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", "sqlite":
		return OpenSQLite(path)
	case "redis":
		return NewRedisStore(path)
	}
	return nil, fmt.Errorf("unknown preferences backend %q", backend)
}
