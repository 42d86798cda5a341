package imageproxy

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/ByLCY/cardstudio/storage"
)

var (
	// ErrFetch wraps every failure to obtain image bytes.
	ErrFetch = errors.New("image fetch failed")
	// ErrOutsideAssets is returned for root-relative references that escape
	// the assets directory.
	ErrOutsideAssets = errors.New("path escapes assets directory")
)

const (
	defaultMaxBytes   = 20 << 20
	defaultCacheTTL   = 30 * time.Minute
	defaultRate       = 5
	defaultBurst      = 10
	userAgent         = "cardstudio/1.0 (+image relay)"
	fallbackMIMEImage = "image/jpeg"
)

// ObjectGetter loads objects referenced as s3://bucket/key.
type ObjectGetter interface {
	Get(ctx context.Context, ref storage.Ref, maxBytes int64) ([]byte, string, error)
}

// FetcherOptions configures a Fetcher.
type FetcherOptions struct {
	Client *http.Client
	// Timeout applies to the default client; 0 means no timeout.
	Timeout time.Duration
	// AssetsDir resolves root-relative references ("/assets/logo.png").
	AssetsDir string
	Objects   ObjectGetter
	Resolver  Resolver
	CacheTTL  time.Duration
	// RatePerSecond limits outbound HTTP fetches; <= 0 uses the default.
	RatePerSecond float64
	Burst         int
	MaxBytes      int64
	Logger        logrus.FieldLogger
}

type entry struct {
	data        []byte
	contentType string
}

// Fetcher loads image bytes from http(s), data:, s3:// and local references.
// Successful loads are cached in memory.
type Fetcher struct {
	client    *http.Client
	assetsDir string
	objects   ObjectGetter
	resolver  Resolver
	cache     *cache.Cache
	limiter   *rate.Limiter
	maxBytes  int64
	log       logrus.FieldLogger
}

// NewFetcher creates a fetcher.
func NewFetcher(opts FetcherOptions) *Fetcher {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	rps := opts.RatePerSecond
	if rps <= 0 {
		rps = defaultRate
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = defaultBurst
	}
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	log := opts.Logger
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	resolver := opts.Resolver
	if resolver.Relay == "" {
		resolver = NewResolver("")
	}
	return &Fetcher{
		client:    client,
		assetsDir: opts.AssetsDir,
		objects:   opts.Objects,
		resolver:  resolver,
		cache:     cache.New(ttl, 2*ttl),
		limiter:   rate.NewLimiter(rate.Limit(rps), burst),
		maxBytes:  maxBytes,
		log:       log,
	}
}

// Fetch returns the bytes and content type of src. Relay references are
// unwrapped first so that compositions render without a running relay.
func (f *Fetcher) Fetch(ctx context.Context, src string) ([]byte, string, error) {
	src = strings.TrimSpace(src)
	if target, ok := f.resolver.Unwrap(src); ok {
		src = target
	}
	if src == "" {
		return nil, "", fmt.Errorf("%w: empty reference", ErrFetch)
	}
	if cached, ok := f.cache.Get(src); ok {
		if e, ok := cached.(entry); ok {
			return e.data, e.contentType, nil
		}
	}
	data, contentType, err := f.load(ctx, src)
	if err != nil {
		f.log.WithFields(logrus.Fields{"src": src, "error": err}).Warn("image fetch failed")
		return nil, "", fmt.Errorf("%w: %v", ErrFetch, err)
	}
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	f.cache.SetDefault(src, entry{data: data, contentType: contentType})
	return data, contentType, nil
}

func (f *Fetcher) load(ctx context.Context, src string) ([]byte, string, error) {
	lower := strings.ToLower(src)
	switch {
	case strings.HasPrefix(lower, "data:"):
		return decodeDataURL(src)
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return f.remote(ctx, src)
	case strings.HasPrefix(src, "//"):
		return f.remote(ctx, "https:"+src)
	case storage.IsRef(src):
		if f.objects == nil {
			return nil, "", storage.ErrNotConfigured
		}
		ref, err := storage.ParseRef(src)
		if err != nil {
			return nil, "", err
		}
		return f.objects.Get(ctx, ref, f.maxBytes)
	case strings.HasPrefix(lower, "blob:"):
		return nil, "", fmt.Errorf("blob reference %q is only valid inside a browser", src)
	}
	return f.local(src)
}

func (f *Fetcher) remote(ctx context.Context, src string) ([]byte, string, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read body: %w", err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, "", fmt.Errorf("image larger than %d bytes", f.maxBytes)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

func (f *Fetcher) local(src string) ([]byte, string, error) {
	path := src
	if strings.HasPrefix(src, "/") && f.assetsDir != "" {
		path = filepath.Join(f.assetsDir, filepath.FromSlash(strings.TrimPrefix(src, "/")))
		rel, err := filepath.Rel(f.assetsDir, path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return nil, "", fmt.Errorf("%w: %s", ErrOutsideAssets, src)
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	return data, "", nil
}

// decodeDataURL parses data:[<mediatype>][;base64],<data>.
func decodeDataURL(src string) ([]byte, string, error) {
	meta, payload, ok := strings.Cut(src[len("data:"):], ",")
	if !ok {
		return nil, "", fmt.Errorf("malformed data URL")
	}
	mediaType := meta
	isBase64 := false
	if before, found := strings.CutSuffix(meta, ";base64"); found {
		mediaType, isBase64 = before, true
	}
	if isBase64 {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, "", fmt.Errorf("decode data URL: %w", err)
		}
		return data, mediaType, nil
	}
	data, err := url.PathUnescape(payload)
	if err != nil {
		return nil, "", fmt.Errorf("decode data URL: %w", err)
	}
	return []byte(data), mediaType, nil
}
