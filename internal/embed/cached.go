package embed

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds a CachedProvider's in-memory embedding cache.
const DefaultCacheSize = 1000

// CachedProvider wraps a Provider with an LRU cache keyed by
// text+model, so repeated ingest of the same content skips a network
// round trip.
type CachedProvider struct {
	inner Provider
	cache *lru.Cache[string, []float32]
}

var _ Provider = (*CachedProvider)(nil)

// NewCachedProvider wraps inner with an LRU cache of the given size
// (DefaultCacheSize if <= 0).
func NewCachedProvider(inner Provider, size int) *CachedProvider {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, _ := lru.New[string, []float32](size)
	return &CachedProvider{inner: inner, cache: cache}
}

func (c *CachedProvider) key(text string) string {
	sum := sha256.Sum256([]byte(text + "\x00" + c.inner.ModelName()))
	return hex.EncodeToString(sum[:])
}

func (c *CachedProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	k := c.key(text)
	if vec, ok := c.cache.Get(k); ok {
		return vec, nil
	}
	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Add(k, vec)
	return vec, nil
}

func (c *CachedProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	results := make([][]float32, len(texts))
	missIdx := make([]int, 0, len(texts))
	missText := make([]string, 0, len(texts))
	for i, text := range texts {
		if vec, ok := c.cache.Get(c.key(text)); ok {
			results[i] = vec
		} else {
			missIdx = append(missIdx, i)
			missText = append(missText, text)
		}
	}
	if len(missText) == 0 {
		return results, nil
	}

	fresh, err := c.inner.EmbedBatch(ctx, missText)
	if err != nil {
		return nil, err
	}
	for j, idx := range missIdx {
		results[idx] = fresh[j]
		c.cache.Add(c.key(texts[idx]), fresh[j])
	}
	return results, nil
}

func (c *CachedProvider) Dimensions() int  { return c.inner.Dimensions() }
func (c *CachedProvider) ModelName() string { return c.inner.ModelName() }

func (c *CachedProvider) Available(ctx context.Context) bool {
	return c.inner.Available(ctx)
}
