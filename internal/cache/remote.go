package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/vectorkit/vectorkit/internal/kvclient"
)

// RemoteBackend is a KV-backed cache backend. Because most external KV
// servers don't support prefix scans, DeleteByPrefix is implemented via
// an epoch counter stored alongside the prefix: invalidation bumps the
// epoch, and every key embeds the epoch current at write time, so
// entries written before the bump become unreachable and simply expire
// off their own TTL.
type RemoteBackend struct {
	client *kvclient.Client
}

// NewRemoteBackend wraps client.
func NewRemoteBackend(client *kvclient.Client) *RemoteBackend {
	return &RemoteBackend{client: client}
}

func (b *RemoteBackend) epochKey(prefix string) string {
	return "epoch:" + prefix
}

func (b *RemoteBackend) currentEpoch(ctx context.Context, prefix string) int {
	raw, ok, err := b.client.Get(ctx, b.epochKey(prefix))
	if err != nil || !ok {
		return 0
	}
	n, err := strconv.Atoi(string(raw))
	if err != nil {
		return 0
	}
	return n
}

func (b *RemoteBackend) withEpoch(ctx context.Context, key string) string {
	// The prefix is everything up to and including the second colon
	// (namespace:datasetID:), matching the cache package's key shape.
	prefix := prefixOf(key)
	epoch := b.currentEpoch(ctx, prefix)
	return fmt.Sprintf("%s#%d", key, epoch)
}

func prefixOf(key string) string {
	count := 0
	for i, r := range key {
		if r == ':' {
			count++
			if count == 2 {
				return key[:i+1]
			}
		}
	}
	return key
}

func (b *RemoteBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return b.client.Get(ctx, b.withEpoch(ctx, key))
}

func (b *RemoteBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return b.client.Set(ctx, b.withEpoch(ctx, key), value, ttl)
}

func (b *RemoteBackend) Delete(ctx context.Context, key string) error {
	return b.client.Delete(ctx, b.withEpoch(ctx, key))
}

func (b *RemoteBackend) DeleteByPrefix(ctx context.Context, prefix string) error {
	epoch := b.currentEpoch(ctx, prefix)
	return b.client.Set(ctx, b.epochKey(prefix), []byte(strconv.Itoa(epoch+1)), 24*time.Hour)
}
