package search

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/intranet-tools/hr-knowledge-base/internal/document"
	"github.com/intranet-tools/hr-knowledge-base/pkg/config"
)

// memoryBackend is a minimal CacheBackend for tests. TTLs are ignored.
type memoryBackend struct {
	mu     sync.Mutex
	values map[string]string
	misses int
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{values: make(map[string]string)}
}

func (b *memoryBackend) Get(ctx context.Context, key string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.values[key]
	if !ok {
		b.misses++
		return "", context.Canceled // any error reads as a miss
	}
	return v, nil
}

func (b *memoryBackend) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.values[key] = value.(string)
	return nil
}

func (b *memoryBackend) FlushByPattern(ctx context.Context, pattern string) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	var deleted int64
	for k := range b.values {
		if strings.HasPrefix(k, prefix) {
			delete(b.values, k)
			deleted++
		}
	}
	return deleted, nil
}

func newCachedResolver(t *testing.T) (*CachedResolver, *memoryBackend, func(rec *document.Record, terms ...string)) {
	t.Helper()
	r, s := newTestResolver(config.SearchConfig{CandidateThreshold: 1})
	backend := newMemoryBackend()
	cached := NewCachedResolver(r, backend, testMetrics, time.Minute)
	return cached, backend, func(rec *document.Record, terms ...string) {
		seed(t, s, rec, terms...)
	}
}

func TestCachedSearchServesFromCache(t *testing.T) {
	cached, backend, seedDoc := newCachedResolver(t)
	ctx := context.Background()
	seedDoc(&document.Record{ID: "doc", Title: "Documento", Keywords: "ferias"}, "ferias")

	first, firstOutcome, err := cached.Search(ctx, "ferias")
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 1 {
		t.Fatalf("first search = %v", ids(first))
	}
	if len(backend.values) != 1 {
		t.Fatalf("result set not cached: %v", backend.values)
	}

	second, secondOutcome, err := cached.Search(ctx, "ferias")
	if err != nil {
		t.Fatal(err)
	}
	if len(second) != 1 || second[0].ID != "doc" {
		t.Errorf("cached result = %v", ids(second))
	}
	if backend.misses != 1 {
		t.Errorf("backend misses = %d, want 1 (second search is a hit)", backend.misses)
	}
	if secondOutcome != firstOutcome || secondOutcome != "intersection" {
		t.Errorf("cache hit outcome = %q, want the original %q", secondOutcome, firstOutcome)
	}
}

func TestCacheKeyNormalization(t *testing.T) {
	// Lexically-equivalent queries share one cache entry.
	if cacheKey("Férias") != cacheKey("ferias") {
		t.Error("normalised queries must map to the same cache key")
	}
	if cacheKey("ferias") == cacheKey("beneficios") {
		t.Error("distinct queries must not collide")
	}
	if !strings.HasPrefix(cacheKey("ferias"), cachePrefix) {
		t.Errorf("cache key %q must live under %q", cacheKey("ferias"), cachePrefix)
	}
}

func TestInvalidateDropsEntries(t *testing.T) {
	cached, backend, seedDoc := newCachedResolver(t)
	ctx := context.Background()
	seedDoc(&document.Record{ID: "doc", Title: "Documento", Keywords: "ferias"}, "ferias")

	if _, _, err := cached.Search(ctx, "ferias"); err != nil {
		t.Fatal(err)
	}
	if len(backend.values) == 0 {
		t.Fatal("expected a cached entry")
	}
	cached.Invalidate(ctx)
	if len(backend.values) != 0 {
		t.Errorf("entries survived invalidation: %v", backend.values)
	}
}
