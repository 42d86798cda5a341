package imageproxy

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

// CacheControl is sent with every relayed image.
const CacheControl = "public, max-age=31536000, immutable"

// Source is what the relay handler needs from a Fetcher.
type Source interface {
	Fetch(ctx context.Context, src string) ([]byte, string, error)
}

// Handler serves GET {relay}?url=<remote>. The url parameter is required and
// must be an absolute http(s) URL; local, data: and s3:// references are only
// loaded in process.
type Handler struct {
	src Source
	log logrus.FieldLogger
}

// NewHandler wraps the relay in permissive CORS so browser canvases can read
// the pixels back.
func NewHandler(src Source, log logrus.FieldLogger) http.Handler {
	h := &Handler{src: src, log: log}
	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}).Handler(h)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	target := strings.TrimSpace(r.URL.Query().Get("url"))
	if target == "" {
		writeError(w, http.StatusBadRequest, "URL gerekli")
		return
	}
	target, ok := RemoteURL(target)
	if !ok {
		writeError(w, http.StatusBadRequest, "Geçersiz URL")
		return
	}
	data, contentType, err := h.src.Fetch(r.Context(), target)
	if err != nil {
		if h.log != nil {
			h.log.WithFields(logrus.Fields{"url": target, "error": err}).Error("relay fetch failed")
		}
		writeError(w, http.StatusInternalServerError, "Görsel çekilemedi")
		return
	}
	if contentType == "" {
		contentType = fallbackMIMEImage
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", CacheControl)
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodGet {
		_, _ = w.Write(data)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
