package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/lixenwraith/starfield/beatsync"
	"github.com/lixenwraith/starfield/parameter"
)

// cacheOpTimeout bounds one cache round trip so a slow redis never delays a fetch much
const cacheOpTimeout = 2 * time.Second

// Store is the byte cache behind CachedSource, Get returns nil, nil on a miss
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
}

// RedisStore is a Store on a redis server
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects lazily, call Ping to verify
func NewRedisStore(addr, password string, db int) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

// Ping checks the connection within timeout
func (r *RedisStore) Ping(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return data, err
}

func (r *RedisStore) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return r.client.Set(ctx, key, data, ttl).Err()
}

// Close releases the connection pool
func (r *RedisStore) Close() error {
	return r.client.Close()
}

// CachedSource serves analysis from a Store before asking the wrapped source
// Cache failures degrade to a direct fetch
type CachedSource struct {
	source beatsync.Source
	store  Store
	ttl    time.Duration
	log    *zap.Logger
}

// NewCachedSource wraps source, ttl <= 0 uses the default analysis TTL
func NewCachedSource(source beatsync.Source, store Store, ttl time.Duration, log *zap.Logger) *CachedSource {
	if ttl <= 0 {
		ttl = parameter.AnalysisCacheTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CachedSource{
		source: source,
		store:  store,
		ttl:    ttl,
		log:    log.Named("cache"),
	}
}

func cacheKey(trackID string) string {
	return parameter.AnalysisCacheKeySpace + trackID
}

// PollPlayback is never cached
func (c *CachedSource) PollPlayback(ctx context.Context) (*beatsync.Playback, error) {
	return c.source.PollPlayback(ctx)
}

func (c *CachedSource) FetchAnalysis(ctx context.Context, trackID string) (*beatsync.Analysis, error) {
	key := cacheKey(trackID)

	if a := c.lookup(ctx, key); a != nil {
		c.log.Debug("analysis cache hit", zap.String("track", trackID))
		return a, nil
	}

	a, err := c.source.FetchAnalysis(ctx, trackID)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(a)
	if err != nil {
		c.log.Warn("analysis encode failed", zap.String("track", trackID), zap.Error(err))
		return a, nil
	}
	setCtx, cancel := context.WithTimeout(ctx, cacheOpTimeout)
	defer cancel()
	if err := c.store.Set(setCtx, key, data, c.ttl); err != nil {
		c.log.Warn("analysis cache write failed", zap.String("key", key), zap.Error(err))
	}
	return a, nil
}

func (c *CachedSource) lookup(ctx context.Context, key string) *beatsync.Analysis {
	getCtx, cancel := context.WithTimeout(ctx, cacheOpTimeout)
	defer cancel()

	data, err := c.store.Get(getCtx, key)
	if err != nil {
		c.log.Warn("analysis cache read failed", zap.String("key", key), zap.Error(err))
		return nil
	}
	if data == nil {
		return nil
	}

	var a beatsync.Analysis
	if err := json.Unmarshal(data, &a); err != nil {
		c.log.Warn("analysis cache entry corrupt", zap.String("key", key), zap.Error(err))
		return nil
	}
	return &a
}
