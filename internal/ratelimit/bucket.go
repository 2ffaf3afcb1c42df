package ratelimit

import (
	"context"
	"encoding/json"
	"time"
)

// bucketState is (tokens, last_refill) for a token/leaky bucket. Leaky
// bucket reuses this exact implementation: continuous drain and
// continuous refill are the same arithmetic viewed from opposite ends,
// matching the original rate limiter's leaky-bucket-delegates-to-token-
// bucket design.
type bucketState struct {
	Tokens     float64   `json:"tokens"`
	LastRefill time.Time `json:"last_refill"`
}

func (l *Limiter) checkTokenBucket(ctx context.Context, tenantID string, op Operation, quota Quota, cost int, now time.Time) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	capacity := float64(quota.Burst)
	if capacity <= 0 {
		capacity = float64(quota.PerMinute)
	}
	rate := float64(quota.PerMinute) / 60.0 // tokens per second

	k := key(tenantID, op, "bucket")
	state, err := l.loadBucket(ctx, k)
	if err != nil {
		return Decision{}, err
	}
	if state.LastRefill.IsZero() {
		state = bucketState{Tokens: capacity, LastRefill: now}
	}

	elapsed := now.Sub(state.LastRefill).Seconds()
	if elapsed > 0 {
		state.Tokens += rate * elapsed
		if state.Tokens > capacity {
			state.Tokens = capacity
		}
		state.LastRefill = now
	}

	if state.Tokens < float64(cost) {
		var retryAfter time.Duration
		if rate > 0 {
			deficit := float64(cost) - state.Tokens
			retryAfter = time.Duration(deficit/rate*float64(time.Second)) + time.Second
		} else {
			retryAfter = time.Minute
		}
		// Persist the refill progress even on denial, so the next check
		// doesn't re-compute from a stale timestamp.
		_ = l.saveBucket(ctx, k, state)
		return Decision{Allowed: false, RetryAfter: retryAfter, Limit: int(capacity)}, nil
	}

	state.Tokens -= float64(cost)
	if err := l.saveBucket(ctx, k, state); err != nil {
		return Decision{}, err
	}
	return Decision{Allowed: true, Remaining: int(state.Tokens), Limit: int(capacity)}, nil
}

func (l *Limiter) loadBucket(ctx context.Context, key string) (bucketState, error) {
	raw, ok, err := l.store.Get(ctx, key)
	if err != nil {
		return bucketState{}, err
	}
	if !ok {
		return bucketState{}, nil
	}
	var state bucketState
	if err := json.Unmarshal(raw, &state); err != nil {
		return bucketState{}, nil
	}
	return state, nil
}

func (l *Limiter) saveBucket(ctx context.Context, key string, state bucketState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return l.store.Set(ctx, key, raw, dayWindow)
}
