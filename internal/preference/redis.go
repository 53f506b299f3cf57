package preference

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store using Redis string keys without expiry.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore parses the URL, connects and pings Redis.
func NewRedisStore(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, owner, key string) (string, error) {
	v, err := s.client.Get(ctx, scopedKey(owner, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get preference %s: %w", key, err)
	}
	return v, nil
}

func (s *RedisStore) Set(ctx context.Context, owner, key, value string) error {
	if err := s.client.Set(ctx, scopedKey(owner, key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set preference %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, owner, key string) error {
	if err := s.client.Del(ctx, scopedKey(owner, key)).Err(); err != nil {
		return fmt.Errorf("failed to clear preference %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
