// Package cache stores computed RBO results keyed by the compared inputs.
package cache

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/ricesearch/rbo/internal/config"
	"github.com/ricesearch/rbo/internal/pkg/hash"
	"github.com/ricesearch/rbo/internal/rbo"
)

// Cache is a result store. Implementations are safe for concurrent use.
type Cache interface {
	// Get returns the cached result for key. A miss is not an error.
	Get(ctx context.Context, key string) (rbo.Result, bool, error)

	// Set stores r under key.
	Set(ctx context.Context, key string, r rbo.Result) error

	// Close releases backend resources.
	Close() error
}

// New builds the cache selected by cfg.Type. It returns a nil Cache for "none".
func New(cfg config.CacheConfig) (Cache, error) {
	ttl := time.Duration(cfg.TTL) * time.Second
	switch cfg.Type {
	case "", "none":
		return nil, nil
	case "memory":
		return NewMemory(cfg.Size, ttl), nil
	case "redis":
		rc, err := NewRedis(cfg.RedisURL, ttl)
		if err != nil {
			return nil, err
		}
		return rc, nil
	default:
		return nil, fmt.Errorf("unknown cache type: %s", cfg.Type)
	}
}

// Key derives the cache key for comparing l1 and l2. Tie-set member order does
// not affect the key.
func Key(l1, l2 rbo.List[string], p float64, mode rbo.OverlapMode) string {
	return hash.Key(
		canonical(l1),
		canonical(l2),
		strconv.FormatFloat(p, 'g', -1, 64),
		mode.String(),
	)
}

func canonical(l rbo.List[string]) string {
	var sb strings.Builder
	for _, e := range l {
		items := e.Items()
		if e.IsTie() {
			slices.Sort(items)
			sb.WriteByte('{')
		}
		for i, v := range items {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.Quote(v))
		}
		if e.IsTie() {
			sb.WriteByte('}')
		}
		sb.WriteByte(';')
	}
	return sb.String()
}
