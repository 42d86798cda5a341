package prefs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces preference keys.
const DefaultRedisPrefix = "cardstudio:prefs:"

// RedisStore keeps preferences in Redis, one key per namespace.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to redisURL and verifies the connection.
func NewRedisStore(redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return NewRedisStoreWithClient(client, ""), nil
}

// NewRedisStoreWithClient uses an existing client. An empty prefix uses
// DefaultRedisPrefix.
func NewRedisStoreWithClient(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(namespace string) string { return s.prefix + namespace }

// Load implements Store.
func (s *RedisStore) Load(ctx context.Context, namespace string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(namespace)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", namespace, err)
	}
	return data, nil
}

// Save implements Store. Preferences never expire.
func (s *RedisStore) Save(ctx context.Context, namespace string, data []byte) error {
	if err := s.client.Set(ctx, s.key(namespace), data, 0).Err(); err != nil {
		return fmt.Errorf("save %s: %w", namespace, err)
	}
	return nil
}

// Close implements Store.
func (s *RedisStore) Close() error { return s.client.Close() }
