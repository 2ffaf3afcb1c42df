package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlidingWindowRateLimitMatchesSpecScenario(t *testing.T) {
	l := NewLimiter(StrategySlidingWindow, NewInProcessStore())
	quota := Quota{PerMinute: 5}
	now := time.Now()

	for i := 0; i < 5; i++ {
		d, err := l.Check(context.Background(), "tenant-a", OperationSearch, quota, 1, now.Add(time.Duration(i)*100*time.Millisecond))
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	}

	_, err := l.Check(context.Background(), "tenant-a", OperationSearch, quota, 1, now.Add(2*time.Second))
	require.Error(t, err)

	appErr, ok := err.(interface{ HTTPStatus() int })
	require.True(t, ok)
	assert.Equal(t, 429, appErr.HTTPStatus())
}

func TestFixedWindowResetsOnWindowChange(t *testing.T) {
	l := NewLimiter(StrategyFixedWindow, NewInProcessStore())
	quota := Quota{PerMinute: 2}
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	d, err := l.Check(context.Background(), "t", OperationSearch, quota, 1, base)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	d, err = l.Check(context.Background(), "t", OperationSearch, quota, 1, base.Add(time.Second))
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	_, err = l.Check(context.Background(), "t", OperationSearch, quota, 1, base.Add(2*time.Second))
	assert.Error(t, err)

	d, err = l.Check(context.Background(), "t", OperationSearch, quota, 1, base.Add(61*time.Second))
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestTokenBucketRefillsOverTime(t *testing.T) {
	l := NewLimiter(StrategyTokenBucket, NewInProcessStore())
	quota := Quota{PerMinute: 60, Burst: 5}
	now := time.Now()

	for i := 0; i < 5; i++ {
		d, err := l.Check(context.Background(), "t", OperationSearch, quota, 1, now)
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	}
	_, err := l.Check(context.Background(), "t", OperationSearch, quota, 1, now)
	assert.Error(t, err)

	d, err := l.Check(context.Background(), "t", OperationSearch, quota, 1, now.Add(2*time.Second))
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestLeakyBucketSharesTokenBucketImplementation(t *testing.T) {
	l := NewLimiter(StrategyLeakyBucket, NewInProcessStore())
	quota := Quota{PerMinute: 60, Burst: 1}
	now := time.Now()

	d, err := l.Check(context.Background(), "t", OperationSearch, quota, 1, now)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	_, err = l.Check(context.Background(), "t", OperationSearch, quota, 1, now)
	assert.Error(t, err)
}

func TestDefaultCostPerOperation(t *testing.T) {
	assert.Equal(t, 1, DefaultCost(OperationSearch))
	assert.Equal(t, 10, DefaultCost(OperationBatchInsert))
	assert.Equal(t, 50, DefaultCost(OperationImport))
	assert.Equal(t, 20, DefaultCost(OperationExport))
	assert.Equal(t, 5, DefaultCost(OperationCreateDataset))
	assert.Equal(t, 20, DefaultCost(OperationIndexBuild))
	assert.Equal(t, 3, DefaultCost(OperationHybridSearch))
}
