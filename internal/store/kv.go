// Package store persists document records, the global document set, and the
// inverted-index posting lists in a key-value store. The store is the single
// source of truth: no in-process cache is kept, every read goes to the
// backend.
package store

import "context"

// KV is the key-value surface the store needs: multi-field records by key
// and named sets with membership operations. The Redis client in pkg/redis
// satisfies it; MemoryKV provides an in-process implementation for tests.
type KV interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, keys ...string) error
	SAdd(ctx context.Context, key string, members ...string) error
	SRem(ctx context.Context, key string, members ...string) error
	SMembers(ctx context.Context, key string) ([]string, error)
	SCard(ctx context.Context, key string) (int64, error)
	ScanKeys(ctx context.Context, pattern string) ([]string, error)
}
