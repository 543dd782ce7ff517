package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/ricesearch/rbo/internal/pkg/errors"
	"github.com/ricesearch/rbo/internal/rbo"
)

// Redis stores results as JSON strings under a key prefix.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedis connects to the Redis server at url.
// Returns error if connection fails.
func NewRedis(url string, ttl time.Duration) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &Redis{
		client: client,
		prefix: "rbo:result:",
		ttl:    ttl,
	}, nil
}

// Get implements Cache.
func (rc *Redis) Get(ctx context.Context, key string) (rbo.Result, bool, error) {
	data, err := rc.client.Get(ctx, rc.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return rbo.Result{}, false, nil
	}
	if err != nil {
		return rbo.Result{}, false, apperrors.CacheError("reading result", err)
	}

	var r rbo.Result
	if err := json.Unmarshal(data, &r); err != nil {
		return rbo.Result{}, false, apperrors.CacheError("decoding result", err)
	}
	return r, true, nil
}

// Set implements Cache.
func (rc *Redis) Set(ctx context.Context, key string, r rbo.Result) error {
	data, err := json.Marshal(r)
	if err != nil {
		return apperrors.CacheError("encoding result", err)
	}
	if err := rc.client.Set(ctx, rc.prefix+key, data, rc.ttl).Err(); err != nil {
		return apperrors.CacheError("writing result", err)
	}
	return nil
}

// Close closes the Redis connection.
func (rc *Redis) Close() error {
	return rc.client.Close()
}
