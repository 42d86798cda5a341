// Package imageproxy rewrites remote image references to a same-origin relay
// and loads image bytes for rasterization.
package imageproxy

import (
	"net/url"
	"strings"

	"github.com/ByLCY/cardstudio/storage"
)

// DefaultRelay is the relay endpoint path.
const DefaultRelay = "/api/proxy-image"

// Resolver rewrites remote URLs to {Relay}?url=<escaped>. Embedded, local
// and object-store references pass through unchanged.
type Resolver struct {
	Relay string
}

// NewResolver returns a resolver for the given relay path.
func NewResolver(relay string) Resolver {
	relay = strings.TrimSpace(relay)
	if relay == "" {
		relay = DefaultRelay
	}
	return Resolver{Relay: relay}
}

// Resolve implements compose.Resolver.
func (r Resolver) Resolve(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || Passthrough(ref) {
		return ref
	}
	relay := r.Relay
	if relay == "" {
		relay = DefaultRelay
	}
	if strings.HasPrefix(ref, relay+"?") {
		return ref
	}
	return relay + "?url=" + url.QueryEscape(ref)
}

// Passthrough reports whether ref is already usable without the relay.
func Passthrough(ref string) bool {
	lower := strings.ToLower(ref)
	switch {
	case strings.HasPrefix(lower, "data:"),
		strings.HasPrefix(lower, "blob:"),
		storage.IsRef(lower):
		return true
	case strings.HasPrefix(ref, "/") && !strings.HasPrefix(ref, "//"):
		return true
	}
	return false
}

// Unwrap extracts the original URL from a relay reference. ok is false when
// src is not a relay reference.
func (r Resolver) Unwrap(src string) (target string, ok bool) {
	relay := r.Relay
	if relay == "" {
		relay = DefaultRelay
	}
	rest, found := strings.CutPrefix(src, relay+"?")
	if !found {
		return "", false
	}
	q, err := url.ParseQuery(rest)
	if err != nil {
		return "", false
	}
	target = q.Get("url")
	return target, target != ""
}

// RemoteURL reports whether ref is an absolute http(s) URL with a host and
// returns it with protocol-relative references upgraded to https.
func RemoteURL(ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if strings.HasPrefix(ref, "//") {
		ref = "https:" + ref
	}
	u, err := url.Parse(ref)
	if err != nil || u.Host == "" {
		return "", false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return ref, true
	}
	return "", false
}
