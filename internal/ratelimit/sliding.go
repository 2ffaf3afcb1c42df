package ratelimit

import (
	"context"
	"encoding/json"
	"time"
)

// slidingState is the per-tenant-operation sorted set of request
// timestamps (unix nanoseconds), pruned to the widest configured window
// on every check.
type slidingState struct {
	Timestamps []int64 `json:"timestamps"`
}

const dayWindow = 24 * time.Hour

func (l *Limiter) checkSlidingWindow(ctx context.Context, tenantID string, op Operation, quota Quota, cost int, now time.Time) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	k := key(tenantID, op, "sliding")
	state, err := l.loadSliding(ctx, k)
	if err != nil {
		return Decision{}, err
	}

	cutoff := now.Add(-dayWindow).UnixNano()
	pruned := state.Timestamps[:0]
	for _, ts := range state.Timestamps {
		if ts >= cutoff {
			pruned = append(pruned, ts)
		}
	}
	state.Timestamps = pruned

	windows := []struct {
		span  time.Duration
		limit int
	}{
		{time.Minute, quota.PerMinute},
		{time.Hour, quota.PerHour},
		{dayWindow, quota.PerDay},
	}

	for _, w := range windows {
		if w.limit <= 0 {
			continue
		}
		since := now.Add(-w.span).UnixNano()
		count := 0
		for _, ts := range state.Timestamps {
			if ts >= since {
				count++
			}
		}
		if count+cost > w.limit+quota.Burst {
			return Decision{Allowed: false, RetryAfter: retryAfterForWindow(state.Timestamps, since, w.span, now), Limit: w.limit}, nil
		}
	}

	for i := 0; i < cost; i++ {
		state.Timestamps = append(state.Timestamps, now.UnixNano())
	}
	if err := l.saveSliding(ctx, k, state); err != nil {
		return Decision{}, err
	}
	return Decision{Allowed: true, Limit: quota.PerMinute}, nil
}

// retryAfterForWindow estimates how long until the oldest timestamp in
// the window ages out, freeing capacity.
func retryAfterForWindow(timestamps []int64, since int64, span time.Duration, now time.Time) time.Duration {
	var oldest int64
	for _, ts := range timestamps {
		if ts >= since && (oldest == 0 || ts < oldest) {
			oldest = ts
		}
	}
	if oldest == 0 {
		return span
	}
	expiresAt := time.Unix(0, oldest).Add(span)
	remaining := expiresAt.Sub(now)
	if remaining < time.Second {
		remaining = time.Second
	}
	return remaining
}

func (l *Limiter) loadSliding(ctx context.Context, key string) (slidingState, error) {
	raw, ok, err := l.store.Get(ctx, key)
	if err != nil {
		return slidingState{}, err
	}
	if !ok {
		return slidingState{}, nil
	}
	var state slidingState
	if err := json.Unmarshal(raw, &state); err != nil {
		return slidingState{}, nil
	}
	return state, nil
}

func (l *Limiter) saveSliding(ctx context.Context, key string, state slidingState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return l.store.Set(ctx, key, raw, dayWindow)
}
