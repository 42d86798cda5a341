// Package storage wraps the S3-compatible object store used for image
// references (s3://bucket/key) and uploaded export archives.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"
)

// Scheme is the URL scheme of object references.
const Scheme = "s3"

var (
	// ErrInvalidRef is returned for references that are not s3://bucket/key.
	ErrInvalidRef = errors.New("invalid object reference")
	// ErrNotConfigured is returned when no object store has been configured.
	ErrNotConfigured = errors.New("object storage not configured")
)

// Ref points at a single object.
type Ref struct {
	Bucket string
	Key    string
}

// String formats the reference as s3://bucket/key.
func (r Ref) String() string { return Scheme + "://" + r.Bucket + "/" + r.Key }

// IsRef reports whether s looks like an object reference.
func IsRef(s string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(s)), Scheme+"://")
}

// ParseRef parses s3://bucket/key.
func ParseRef(s string) (Ref, error) {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return Ref{}, fmt.Errorf("%w: %v", ErrInvalidRef, err)
	}
	if !strings.EqualFold(u.Scheme, Scheme) || u.Host == "" {
		return Ref{}, fmt.Errorf("%w: %q", ErrInvalidRef, s)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return Ref{}, fmt.Errorf("%w: missing key in %q", ErrInvalidRef, s)
	}
	return Ref{Bucket: u.Host, Key: key}, nil
}

// Config holds the connection settings for the object store.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Enabled reports whether enough settings are present to connect.
func (c Config) Enabled() bool {
	return strings.TrimSpace(c.Endpoint) != ""
}

// Store reads and writes objects through minio-go.
type Store struct {
	client *minio.Client
	bucket string
	log    logrus.FieldLogger
}

// New connects to the object store described by cfg.
func New(cfg Config, log logrus.FieldLogger) (*Store, error) {
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Store{client: client, bucket: cfg.Bucket, log: log}, nil
}

// Bucket returns the default bucket for uploads.
func (s *Store) Bucket() string { return s.bucket }

// Get downloads an object and returns its bytes and content type.
func (s *Store) Get(ctx context.Context, ref Ref, maxBytes int64) ([]byte, string, error) {
	obj, err := s.client.GetObject(ctx, ref.Bucket, ref.Key, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", fmt.Errorf("get %s: %w", ref, err)
	}
	defer obj.Close()
	info, err := obj.Stat()
	if err != nil {
		return nil, "", fmt.Errorf("stat %s: %w", ref, err)
	}
	var r io.Reader = obj
	if maxBytes > 0 {
		if info.Size > maxBytes {
			return nil, "", fmt.Errorf("object %s too large: %d bytes", ref, info.Size)
		}
		r = io.LimitReader(obj, maxBytes)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", ref, err)
	}
	return data, info.ContentType, nil
}

// Put uploads data under key in the default bucket and returns its reference.
func (s *Store) Put(ctx context.Context, key string, data []byte, contentType string) (Ref, error) {
	if s.bucket == "" {
		return Ref{}, fmt.Errorf("%w: no bucket", ErrNotConfigured)
	}
	ref := Ref{Bucket: s.bucket, Key: strings.TrimPrefix(key, "/")}
	info, err := s.client.PutObject(ctx, ref.Bucket, ref.Key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return Ref{}, fmt.Errorf("put %s: %w", ref, err)
	}
	s.log.WithFields(logrus.Fields{
		"ref":  ref.String(),
		"size": info.Size,
		"etag": info.ETag,
	}).Info("object uploaded")
	return ref, nil
}
