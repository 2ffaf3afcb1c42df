package tenant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vectorkit/vectorkit/internal/model"
)

func TestPutAndGet(t *testing.T) {
	r := NewRegistry()
	r.Put(&model.Tenant{ID: "t1", Active: true})

	got, ok := r.Get("t1")
	require.True(t, ok)
	assert.Equal(t, "t1", got.ID)
}

func TestRequireRejectsInactiveTenant(t *testing.T) {
	r := NewRegistry()
	r.Put(&model.Tenant{ID: "t1", Active: false})

	_, err := r.Require("t1")
	require.Error(t, err)
}

func TestRequireRejectsUnknownTenant(t *testing.T) {
	r := NewRegistry()
	_, err := r.Require("missing")
	require.Error(t, err)
}

func TestRateLimitOverrideFor(t *testing.T) {
	r := NewRegistry()
	r.Put(&model.Tenant{
		ID:     "t1",
		Active: true,
		RateLimits: map[string]model.RateLimitOverride{
			"search": {PerMinute: 500},
		},
	})

	override, ok := r.RateLimitOverrideFor("t1", "search")
	require.True(t, ok)
	assert.Equal(t, 500, override.PerMinute)

	_, ok = r.RateLimitOverrideFor("t1", "import")
	assert.False(t, ok)
}

func TestDeleteAndList(t *testing.T) {
	r := NewRegistry()
	r.Put(&model.Tenant{ID: "t1", Active: true})
	r.Put(&model.Tenant{ID: "t2", Active: true})

	r.Delete("t1")
	assert.Len(t, r.List(), 1)
}
