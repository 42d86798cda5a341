// Package backend talks to the headless WordPress REST API that stores
// recipes, posts and ingredient guides.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// API namespaces and endpoints.
const (
	WPNamespace = "/wp/v2"
	KGNamespace = "/kg/v1"

	pathLogin   = KGNamespace + "/auth/login"
	pathMe      = KGNamespace + "/auth/me"
	pathOptions = KGNamespace + "/options"
	pathMedia   = WPNamespace + "/media"
)

// FallbackWatermark is used when the site options carry no logo.
const FallbackWatermark = "/assets/kg-logo.png"

// DefaultPerPage is the search page size.
const DefaultPerPage = 10

var (
	// ErrNotFound is returned when a lookup matched nothing.
	ErrNotFound = errors.New("content not found")
	// ErrUnauthorized is returned for rejected credentials or tokens.
	ErrUnauthorized = errors.New("backend rejected credentials")
)

// StatusError reports an unexpected HTTP status.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string { return fmt.Sprintf("API Hatası: %d (%s)", e.Code, e.URL) }

// Collection is a WordPress post type collection.
type Collection string

const (
	Recipes     Collection = "recipes"
	Posts       Collection = "posts"
	Ingredients Collection = "ingredients"
	All         Collection = "all"
)

// Collections lists the concrete collections in search order.
var Collections = []Collection{Recipes, Posts, Ingredients}

// ParseCollection accepts collection names and their singular forms.
func ParseCollection(s string) (Collection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "recipes", "recipe":
		return Recipes, nil
	case "posts", "post", "blog", "article", "articles":
		return Posts, nil
	case "ingredients", "ingredient", "guide", "guides":
		return Ingredients, nil
	case "all":
		return All, nil
	}
	return "", fmt.Errorf("unknown collection %q", s)
}

// Options configures a Client.
type Options struct {
	BaseURL string
	Token   string
	// Timeout of the default HTTP client; 0 means none.
	Timeout    time.Duration
	HTTPClient *http.Client
	PerPage    int
	Logger     logrus.FieldLogger
}

// Client is a WordPress REST client. It is safe for concurrent use.
type Client struct {
	base    string
	token   string
	http    *http.Client
	perPage int
	log     logrus.FieldLogger
}

// New creates a client.
func New(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	perPage := opts.PerPage
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	log := opts.Logger
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Client{
		base:    strings.TrimRight(opts.BaseURL, "/"),
		token:   strings.TrimSpace(opts.Token),
		http:    hc,
		perPage: perPage,
		log:     log,
	}
}

// WithToken returns a copy that authenticates with token.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = strings.TrimSpace(token)
	return &cp
}

func (c *Client) endpoint(path string, q url.Values) string {
	u := c.base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

// get issues a GET and decodes the JSON body into out. When anonymousRetry
// is set, a 401/403 with a token is retried without credentials.
func (c *Client) get(ctx context.Context, u string, out any, anonymousRetry bool) error {
	resp, err := c.do(ctx, http.MethodGet, u, nil, c.token)
	if err != nil {
		return err
	}
	if anonymousRetry && c.token != "" && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
		resp.Body.Close()
		resp, err = c.do(ctx, http.MethodGet, u, nil, "")
		if err != nil {
			return err
		}
	}
	defer resp.Body.Close()
	return decodeResponse(resp, u, out)
}

func (c *Client) do(ctx context.Context, method, u string, body any, token string) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, u, err)
	}
	return resp, nil
}

func decodeResponse(resp *http.Response, u string, out any) error {
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, u)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %w", ErrUnauthorized, &StatusError{Code: resp.StatusCode, URL: u})
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &StatusError{Code: resp.StatusCode, URL: u}
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", u, err)
	}
	return nil
}
