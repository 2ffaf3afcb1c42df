package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vectorkit/vectorkit/internal/kvclient"
)

func TestNamespaceTTLs(t *testing.T) {
	assert.Equal(t, time.Hour, TTL(NamespaceDataset))
	assert.Equal(t, 5*time.Minute, TTL(NamespaceSearch))
	assert.Equal(t, 30*time.Minute, TTL(NamespaceVector))
	assert.Equal(t, time.Hour, TTL(NamespaceEmbedding))
}

func TestLRUBackendGetSetDelete(t *testing.T) {
	backend, err := NewLRUBackend(10)
	require.NoError(t, err)
	c := New(backend)

	c.Set(context.Background(), NamespaceSearch, "ds1", "abc", []byte("result"))
	val, ok := c.Get(context.Background(), NamespaceSearch, "ds1", "abc")
	require.True(t, ok)
	assert.Equal(t, "result", string(val))
}

func TestInvalidateDatasetClearsAllNamespaces(t *testing.T) {
	backend, err := NewLRUBackend(100)
	require.NoError(t, err)
	c := New(backend)

	c.Set(context.Background(), NamespaceDataset, "ds1", "meta", []byte("a"))
	c.Set(context.Background(), NamespaceSearch, "ds1", "q1", []byte("b"))
	c.Set(context.Background(), NamespaceDataset, "ds2", "meta", []byte("c"))

	c.InvalidateDataset(context.Background(), "ds1")

	_, ok := c.Get(context.Background(), NamespaceDataset, "ds1", "meta")
	assert.False(t, ok)
	_, ok = c.Get(context.Background(), NamespaceSearch, "ds1", "q1")
	assert.False(t, ok)
	_, ok = c.Get(context.Background(), NamespaceDataset, "ds2", "meta")
	assert.True(t, ok)
}

func TestSearchKeyIsDeterministic(t *testing.T) {
	k1 := SearchKey([]byte("query-bytes"), []byte("opts"))
	k2 := SearchKey([]byte("query-bytes"), []byte("opts"))
	assert.Equal(t, k1, k2)

	k3 := SearchKey([]byte("other"), []byte("opts"))
	assert.NotEqual(t, k1, k3)
}

func TestRemoteBackendEpochInvalidation(t *testing.T) {
	client := kvclient.New(nil, nil)
	backend := NewRemoteBackend(client)
	c := New(backend)

	c.Set(context.Background(), NamespaceSearch, "ds1", "q1", []byte("hit"))
	val, ok := c.Get(context.Background(), NamespaceSearch, "ds1", "q1")
	require.True(t, ok)
	assert.Equal(t, "hit", string(val))

	c.InvalidateDataset(context.Background(), "ds1")
	_, ok = c.Get(context.Background(), NamespaceSearch, "ds1", "q1")
	assert.False(t, ok)
}
