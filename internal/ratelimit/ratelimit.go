// Package ratelimit implements per-tenant request throttling: sliding
// window, fixed window, and token/leaky bucket strategies sharing one
// keyed counter store.
package ratelimit

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/vectorkit/vectorkit/internal/apperrors"
)

// Strategy names a rate-limiting algorithm.
type Strategy string

const (
	StrategySlidingWindow Strategy = "sliding_window"
	StrategyFixedWindow   Strategy = "fixed_window"
	StrategyTokenBucket   Strategy = "token_bucket"
	StrategyLeakyBucket   Strategy = "leaky_bucket"
)

// Operation names a rate-limited action; each carries its own default
// cost and optional per-operation cap.
type Operation string

const (
	OperationSearch        Operation = "search"
	OperationHybridSearch  Operation = "hybrid_search"
	OperationBatchInsert   Operation = "batch_insert"
	OperationImport        Operation = "import"
	OperationExport        Operation = "export"
	OperationCreateDataset Operation = "create_dataset"
	OperationIndexBuild    Operation = "index_operation"
)

// DefaultCost returns an operation's request cost; operations not listed
// default to 1.
func DefaultCost(op Operation) int {
	switch op {
	case OperationBatchInsert:
		return 10
	case OperationImport:
		return 50
	case OperationExport:
		return 20
	case OperationCreateDataset:
		return 5
	case OperationIndexBuild:
		return 20
	case OperationHybridSearch:
		return 3
	default:
		return 1
	}
}

// Quota is a tenant's (or operation's) allowance: three rolling windows
// plus a burst allowance. Burst is the bucket capacity for Token/LeakyBucket
// and extra headroom over each window limit for the window strategies.
type Quota struct {
	PerMinute int
	PerHour   int
	PerDay    int
	Burst     int
}

// Store is the shared keyed counter backend. The in-process map
// implementation and the external-KV-backed one (internal/kvclient)
// both satisfy it.
type Store interface {
	// Get returns the raw bytes for key, or ok=false if absent.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Decision is the outcome of a single rate-limit check.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
	Remaining  int
	Limit      int
}

// Limiter enforces per-tenant quotas using a configurable Strategy.
type Limiter struct {
	strategy Strategy
	store    Store
	mu       sync.Mutex
}

// NewLimiter returns a Limiter using strategy, backed by store.
func NewLimiter(strategy Strategy, store Store) *Limiter {
	return &Limiter{strategy: strategy, store: store}
}

// Check evaluates whether tenant may perform op, charging cost units
// against quota. now is passed explicitly so tests are deterministic.
func (l *Limiter) Check(ctx context.Context, tenantID string, op Operation, quota Quota, cost int, now time.Time) (Decision, error) {
	if cost <= 0 {
		cost = DefaultCost(op)
	}

	var decision Decision
	var err error
	switch l.strategy {
	case StrategyFixedWindow:
		decision, err = l.checkFixedWindow(ctx, tenantID, op, quota, cost, now)
	case StrategyTokenBucket, StrategyLeakyBucket:
		decision, err = l.checkTokenBucket(ctx, tenantID, op, quota, cost, now)
	default:
		decision, err = l.checkSlidingWindow(ctx, tenantID, op, quota, cost, now)
	}
	if err != nil {
		return Decision{}, err
	}
	if !decision.Allowed {
		return decision, apperrors.RateLimitExceeded(
			fmt.Sprintf("rate limit exceeded for tenant %s operation %s", tenantID, op),
			int(math.Ceil(decision.RetryAfter.Seconds())),
		)
	}
	return decision, nil
}

func key(tenantID string, op Operation, suffix string) string {
	return fmt.Sprintf("ratelimit:%s:%s:%s", tenantID, op, suffix)
}

// CheckOperationCap enforces a hard per-minute ceiling on op, independent
// of tenantID's general strategy quota and checked before it. limit <= 0
// means the operation carries no cap and the check always passes.
func (l *Limiter) CheckOperationCap(ctx context.Context, tenantID string, op Operation, limit int, cost int, now time.Time) (Decision, error) {
	if limit <= 0 {
		return Decision{Allowed: true}, nil
	}
	if cost <= 0 {
		cost = DefaultCost(op)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	bucket := now.Unix() / 60
	k := key(tenantID, op, "opcap:minute")

	state, err := l.loadFixed(ctx, k)
	if err != nil {
		return Decision{}, err
	}
	if state.Bucket != bucket {
		state = fixedState{Bucket: bucket}
	}
	if state.Count+cost > limit {
		elapsed := now.Unix() % 60
		retryAfter := time.Minute - time.Duration(elapsed)*time.Second
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		decision := Decision{Allowed: false, RetryAfter: retryAfter, Limit: limit}
		return decision, apperrors.RateLimitExceeded(
			fmt.Sprintf("operation rate limit exceeded for tenant %s operation %s", tenantID, op),
			int(math.Ceil(retryAfter.Seconds())),
		)
	}
	state.Count += cost
	if err := l.saveFixed(ctx, k, state, time.Minute); err != nil {
		return Decision{}, err
	}
	return Decision{Allowed: true, Limit: limit, Remaining: limit - state.Count}, nil
}
