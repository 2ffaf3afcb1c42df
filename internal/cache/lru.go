package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type lruEntry struct {
	value   []byte
	expires time.Time
}

// LRUBackend is an in-process, size-bounded cache backend.
type LRUBackend struct {
	mu    sync.Mutex
	cache *lru.Cache[string, lruEntry]
}

// NewLRUBackend returns an LRUBackend holding at most size entries.
func NewLRUBackend(size int) (*LRUBackend, error) {
	if size <= 0 {
		size = 10_000
	}
	c, err := lru.New[string, lruEntry](size)
	if err != nil {
		return nil, err
	}
	return &LRUBackend{cache: c}, nil
}

func (b *LRUBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.cache.Get(key)
	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && time.Now().After(e.expires) {
		b.cache.Remove(key)
		return nil, false, nil
	}
	return e.value, true, nil
}

func (b *LRUBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	var expires time.Time
	if ttl > 0 {
		expires = time.Now().Add(ttl)
	}
	b.cache.Add(key, lruEntry{value: value, expires: expires})
	return nil
}

func (b *LRUBackend) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cache.Remove(key)
	return nil
}

func (b *LRUBackend) DeleteByPrefix(ctx context.Context, prefix string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, k := range b.cache.Keys() {
		if strings.HasPrefix(k, prefix) {
			b.cache.Remove(k)
		}
	}
	return nil
}
