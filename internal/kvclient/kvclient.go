// Package kvclient wraps an external keyed-value backend (the shared
// store behind rate limiting and caching) with a circuit breaker, so a
// flaky or unreachable KV server degrades to an in-process fallback
// instead of failing every request.
package kvclient

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/vectorkit/vectorkit/internal/ratelimit"
)

// Backend is the external KV server's wire contract: a flat byte-value
// store with per-key TTL.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Client wraps a Backend with a circuit breaker and an in-process
// fallback map. When the breaker trips, Client logs "degraded mode"
// once (not per request) and serves reads/writes from the fallback
// until the breaker recovers.
type Client struct {
	backend  Backend
	fallback *ratelimit.InProcessStore
	breaker  *gobreaker.CircuitBreaker[any]
	logger   *slog.Logger

	mu       sync.Mutex
	degraded bool
}

// New returns a Client wrapping backend. If backend is nil, the Client
// operates permanently in degraded (in-process-only) mode — useful for
// single-node deployments with no external KV server configured.
func New(backend Backend, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	settings := gobreaker.Settings{
		Name:        "kvclient",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
	c := &Client{
		backend:  backend,
		fallback: ratelimit.NewInProcessStore(),
		logger:   logger,
	}
	settings.OnStateChange = func(name string, from, to gobreaker.State) {
		if to == gobreaker.StateOpen {
			c.markDegraded()
		}
		if to == gobreaker.StateClosed {
			c.clearDegraded()
		}
	}
	c.breaker = gobreaker.NewCircuitBreaker[any](settings)
	if backend == nil {
		c.markDegraded()
	}
	return c
}

func (c *Client) markDegraded() {
	c.mu.Lock()
	already := c.degraded
	c.degraded = true
	c.mu.Unlock()
	if !already {
		c.logger.Warn("kvclient entering degraded mode, falling back to in-process store")
	}
}

func (c *Client) clearDegraded() {
	c.mu.Lock()
	was := c.degraded
	c.degraded = false
	c.mu.Unlock()
	if was {
		c.logger.Info("kvclient recovered, external KV backend reachable again")
	}
}

// Degraded reports whether the client is currently serving from the
// in-process fallback.
func (c *Client) Degraded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.degraded
}

func (c *Client) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if c.backend == nil {
		return c.fallback.Get(ctx, key)
	}
	type result struct {
		value []byte
		ok    bool
	}
	v, err := c.breaker.Execute(func() (any, error) {
		value, ok, err := c.backend.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		return result{value: value, ok: ok}, nil
	})
	if err != nil {
		return c.fallback.Get(ctx, key)
	}
	r := v.(result)
	return r.value, r.ok, nil
}

func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_ = c.fallback.Set(ctx, key, value, ttl)
	if c.backend == nil {
		return nil
	}
	_, err := c.breaker.Execute(func() (any, error) {
		return nil, c.backend.Set(ctx, key, value, ttl)
	})
	if err != nil {
		return nil // degrade silently; the fallback write above already succeeded
	}
	return nil
}

func (c *Client) Delete(ctx context.Context, key string) error {
	if c.backend == nil {
		return nil
	}
	_, err := c.breaker.Execute(func() (any, error) {
		return nil, c.backend.Delete(ctx, key)
	})
	return err
}
