package search

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/intranet-tools/hr-knowledge-base/internal/document"
	"github.com/intranet-tools/hr-knowledge-base/internal/normalizer"
	"github.com/intranet-tools/hr-knowledge-base/pkg/metrics"
)

// cachePrefix keeps cached result sets out of the posting-list keyspace,
// which owns the bare "search:" prefix.
const cachePrefix = "cache:search:"

// CacheBackend is the string-value store the query cache runs on. The Redis
// client in pkg/redis satisfies it.
type CacheBackend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
}

// CachedResolver wraps a Resolver with a TTL result cache. Concurrent
// identical queries are collapsed into one resolution via singleflight.
// Every index write must call Invalidate, otherwise cached result sets go
// stale against the posting lists.
type CachedResolver struct {
	resolver *Resolver
	backend  CacheBackend
	metrics  *metrics.Metrics
	logger   *slog.Logger
	ttl      time.Duration
	group    singleflight.Group
}

func NewCachedResolver(resolver *Resolver, backend CacheBackend, m *metrics.Metrics, ttl time.Duration) *CachedResolver {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &CachedResolver{
		resolver: resolver,
		backend:  backend,
		metrics:  m,
		logger:   slog.Default().With("component", "query-cache"),
		ttl:      ttl,
	}
}

// cachedResult is the JSON payload stored per query. The outcome travels
// with the records so cache hits keep the original resolution label.
type cachedResult struct {
	Outcome string             `json:"outcome"`
	Records []*document.Record `json:"records"`
}

// Search answers from cache when possible, otherwise resolves and caches.
// Cache failures fall through to direct resolution.
func (c *CachedResolver) Search(ctx context.Context, query string) ([]*document.Record, string, error) {
	key := cacheKey(query)
	start := time.Now()

	if raw, err := c.backend.Get(ctx, key); err == nil {
		var entry cachedResult
		if err := json.Unmarshal([]byte(raw), &entry); err == nil {
			c.metrics.CacheHitsTotal.Inc()
			c.metrics.SearchLatency.WithLabelValues("hit").Observe(time.Since(start).Seconds())
			return entry.Records, entry.Outcome, nil
		}
		c.logger.Warn("dropping unparseable cache entry", "key", key, "error", err)
	}
	c.metrics.CacheMissesTotal.Inc()

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		records, outcome, err := c.resolver.Search(ctx, query)
		if err != nil {
			return nil, err
		}
		entry := cachedResult{Outcome: outcome, Records: records}
		if raw, err := json.Marshal(entry); err == nil {
			if err := c.backend.Set(ctx, key, string(raw), c.ttl); err != nil {
				c.logger.Warn("cache write failed", "key", key, "error", err)
			}
		}
		return entry, nil
	})
	c.metrics.SearchLatency.WithLabelValues("miss").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, "", err
	}
	entry := v.(cachedResult)
	return entry.Records, entry.Outcome, nil
}

// Invalidate drops every cached result set. Called on every index write.
func (c *CachedResolver) Invalidate(ctx context.Context) {
	deleted, err := c.backend.FlushByPattern(ctx, cachePrefix+"*")
	if err != nil {
		c.logger.Warn("cache invalidation incomplete", "deleted", deleted, "error", err)
		return
	}
	if deleted > 0 {
		c.logger.Debug("query cache invalidated", "entries", deleted)
	}
}

// cacheKey hashes the normalised query so arbitrary user input never becomes
// key material directly.
func cacheKey(query string) string {
	sum := sha256.Sum256([]byte(normalizer.Normalize(query)))
	return cachePrefix + hex.EncodeToString(sum[:])
}
