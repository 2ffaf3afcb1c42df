package kvclient

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	fail bool
	data map[string][]byte
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{data: make(map[string][]byte)}
}

func (f *fakeBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if f.fail {
		return nil, false, errors.New("kv unreachable")
	}
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *fakeBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if f.fail {
		return errors.New("kv unreachable")
	}
	f.data[key] = value
	return nil
}

func (f *fakeBackend) Delete(ctx context.Context, key string) error {
	if f.fail {
		return errors.New("kv unreachable")
	}
	delete(f.data, key)
	return nil
}

func TestClientPassesThroughToBackend(t *testing.T) {
	backend := newFakeBackend()
	c := New(backend, nil)

	require.NoError(t, c.Set(context.Background(), "k", []byte("v"), time.Minute))
	val, ok, err := c.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", string(val))
	assert.False(t, c.Degraded())
}

func TestClientDegradesOnBackendFailure(t *testing.T) {
	backend := &fakeBackend{fail: true, data: make(map[string][]byte)}
	c := New(backend, nil)

	for i := 0; i < 5; i++ {
		_, _, _ = c.Get(context.Background(), "k")
	}

	require.NoError(t, c.Set(context.Background(), "k", []byte("fallback"), time.Minute))
	val, ok, err := c.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "fallback", string(val))
}

func TestNilBackendAlwaysDegraded(t *testing.T) {
	c := New(nil, nil)
	assert.True(t, c.Degraded())
	require.NoError(t, c.Set(context.Background(), "k", []byte("v"), time.Minute))
	val, ok, err := c.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", string(val))
}
