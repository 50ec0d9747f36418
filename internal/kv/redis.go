package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Redis stores blobs as plain string values in a redis instance. Useful
// when the demo should survive restarts of the host process but a data
// directory is not wanted.
type Redis struct {
	client *redis.Client
	logger zerolog.Logger
}

// NewRedis connects to the redis instance at addr and verifies the
// connection with a ping.
func NewRedis(addr string, logger zerolog.Logger) (*Redis, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%w: redis ping %s: %v", ErrUnavailable, addr, err)
	}

	logger.Info().Str("addr", addr).Msg("connected to redis blob store")
	return &Redis{client: client, logger: logger}, nil
}

// Get returns the blob stored under key, or (nil, nil) when absent
func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	blob, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return blob, nil
}

// Put stores value under key, replacing any previous blob
func (r *Redis) Put(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes the blob under key. Deleting an absent key is a no-op.
func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying redis connection
func (r *Redis) Close() error {
	return r.client.Close()
}
