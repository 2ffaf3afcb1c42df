// Package cache provides keyed memoization in front of expensive
// dataset/search/vector/embedding lookups, with pluggable backends and
// per-namespace TTLs. Cache failures never block the primary path.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Namespace scopes a cache key to one kind of cached value, each with
// its own TTL.
type Namespace string

const (
	NamespaceDataset   Namespace = "dataset"
	NamespaceSearch    Namespace = "search"
	NamespaceVector    Namespace = "vector"
	NamespaceEmbedding Namespace = "embedding"
)

// TTL returns the fixed TTL for a namespace.
func TTL(ns Namespace) time.Duration {
	switch ns {
	case NamespaceDataset:
		return time.Hour
	case NamespaceSearch:
		return 5 * time.Minute
	case NamespaceVector:
		return 30 * time.Minute
	case NamespaceEmbedding:
		return time.Hour
	default:
		return 5 * time.Minute
	}
}

// Backend is the contract shared by the in-process LRU cache and the
// KV-backed remote cache.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// Cache wraps a Backend with namespace-aware key construction and
// dataset-scoped invalidation.
type Cache struct {
	backend Backend
}

// New returns a Cache over backend.
func New(backend Backend) *Cache {
	return &Cache{backend: backend}
}

func datasetKey(ns Namespace, datasetID, suffix string) string {
	return fmt.Sprintf("%s:%s:%s", ns, datasetID, suffix)
}

// Get returns the cached value for (ns, datasetID, suffix). A get
// failure is swallowed and reported as a miss, matching the "cache
// get/set failures degrade silently" contract.
func (c *Cache) Get(ctx context.Context, ns Namespace, datasetID, suffix string) ([]byte, bool) {
	val, ok, err := c.backend.Get(ctx, datasetKey(ns, datasetID, suffix))
	if err != nil {
		return nil, false
	}
	return val, ok
}

// Set stores value under (ns, datasetID, suffix) with the namespace's
// TTL. Errors are swallowed.
func (c *Cache) Set(ctx context.Context, ns Namespace, datasetID, suffix string, value []byte) {
	_ = c.backend.Set(ctx, datasetKey(ns, datasetID, suffix), value, TTL(ns))
}

// InvalidateDataset drops every cached entry scoped to datasetID, across
// all namespaces. Called on any write: insert, update, delete, drop.
func (c *Cache) InvalidateDataset(ctx context.Context, datasetID string) {
	for _, ns := range []Namespace{NamespaceDataset, NamespaceSearch, NamespaceVector, NamespaceEmbedding} {
		_ = c.backend.DeleteByPrefix(ctx, fmt.Sprintf("%s:%s:", ns, datasetID))
	}
}

// SearchKey derives the search-result cache suffix from the raw query
// vector bytes and the serialized search options, per spec: (dataset,
// SHA-256(query), SHA-256(options)).
func SearchKey(queryBytes, optionsBytes []byte) string {
	return fmt.Sprintf("%s:%s", sha256Hex(queryBytes), sha256Hex(optionsBytes))
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
