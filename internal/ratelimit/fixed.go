package ratelimit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// fixedState is one window bucket's counter.
type fixedState struct {
	Bucket int64 `json:"bucket"`
	Count  int   `json:"count"`
}

func (l *Limiter) checkFixedWindow(ctx context.Context, tenantID string, op Operation, quota Quota, cost int, now time.Time) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	windows := []struct {
		name  string
		span  time.Duration
		limit int
	}{
		{"minute", time.Minute, quota.PerMinute},
		{"hour", time.Hour, quota.PerHour},
		{"day", dayWindow, quota.PerDay},
	}

	type pending struct {
		key    string
		state  fixedState
		bucket int64
		span   time.Duration
	}
	var toCommit []pending

	for _, w := range windows {
		if w.limit <= 0 {
			continue
		}
		bucket := now.Unix() / int64(w.span.Seconds())
		k := key(tenantID, op, fmt.Sprintf("fixed:%s", w.name))

		state, err := l.loadFixed(ctx, k)
		if err != nil {
			return Decision{}, err
		}
		if state.Bucket != bucket {
			state = fixedState{Bucket: bucket}
		}
		if state.Count+cost > w.limit+quota.Burst {
			elapsed := now.Unix() % int64(w.span.Seconds())
			retryAfter := w.span - time.Duration(elapsed)*time.Second
			if retryAfter < time.Second {
				retryAfter = time.Second
			}
			return Decision{Allowed: false, RetryAfter: retryAfter, Limit: w.limit}, nil
		}
		state.Count += cost
		toCommit = append(toCommit, pending{key: k, state: state, bucket: bucket, span: w.span})
	}

	for _, p := range toCommit {
		if err := l.saveFixed(ctx, p.key, p.state, p.span); err != nil {
			return Decision{}, err
		}
	}
	return Decision{Allowed: true, Limit: quota.PerMinute}, nil
}

func (l *Limiter) loadFixed(ctx context.Context, key string) (fixedState, error) {
	raw, ok, err := l.store.Get(ctx, key)
	if err != nil {
		return fixedState{}, err
	}
	if !ok {
		return fixedState{}, nil
	}
	var state fixedState
	if err := json.Unmarshal(raw, &state); err != nil {
		return fixedState{}, nil
	}
	return state, nil
}

func (l *Limiter) saveFixed(ctx context.Context, key string, state fixedState, span time.Duration) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return l.store.Set(ctx, key, raw, span*2)
}
