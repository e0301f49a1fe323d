package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const (
	cacheGenPrefix  = "cache:gen:"
	cacheDataPrefix = "cache:data:"
)

// CacheRepo stores cached list payloads under generation-scoped keys.
// Invalidate bumps a namespace generation counter instead of deleting data,
// so a fetch that resolves after its namespace was invalidated writes into a
// dead generation and can never shadow newer state. Dead generations age out
// through the entry TTL.
type CacheRepo struct {
	client *goredis.Client
}

func NewCacheRepo(client *goredis.Client) *CacheRepo {
	return &CacheRepo{client: client}
}

// Generation returns the current generation for a namespace. Namespaces
// start at generation 0; the first Invalidate moves them to 1.
func (r *CacheRepo) Generation(ctx context.Context, namespace string) (int64, error) {
	if r.client == nil {
		return 0, fmt.Errorf("redis client is nil")
	}
	gen, err := r.client.Get(ctx, cacheGenPrefix+namespace).Int64()
	if err == goredis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read cache generation: %w", err)
	}
	return gen, nil
}

func (r *CacheRepo) Invalidate(ctx context.Context, namespaces ...string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if len(namespaces) == 0 {
		return nil
	}

	pipe := r.client.TxPipeline()
	for _, namespace := range namespaces {
		pipe.Incr(ctx, cacheGenPrefix+namespace)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("bump cache generations: %w", err)
	}
	return nil
}

// Get reads a cached entry for the namespace's current generation. It
// returns the generation it observed so the caller can write a refreshed
// value back under the same generation.
func (r *CacheRepo) Get(ctx context.Context, namespace, key string, out any) (int64, bool, error) {
	gen, err := r.Generation(ctx, namespace)
	if err != nil {
		return 0, false, err
	}

	raw, err := r.client.Get(ctx, dataKey(namespace, gen, key)).Bytes()
	if err == goredis.Nil {
		return gen, false, nil
	}
	if err != nil {
		return gen, false, fmt.Errorf("read cache entry: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return gen, false, fmt.Errorf("decode cache entry: %w", err)
	}
	return gen, true, nil
}

// Set writes an entry under an explicit generation. A write against a
// superseded generation succeeds but is invisible to readers.
func (r *CacheRepo) Set(ctx context.Context, namespace string, generation int64, key string, value any, ttl time.Duration) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if ttl <= 0 {
		return fmt.Errorf("cache ttl must be positive")
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	if err := r.client.Set(ctx, dataKey(namespace, generation, key), raw, ttl).Err(); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}

func dataKey(namespace string, generation int64, key string) string {
	return cacheDataPrefix + namespace + ":v" + strconv.FormatInt(generation, 10) + ":" + key
}
