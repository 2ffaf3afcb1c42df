package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vectorkit/vectorkit/internal/model"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(t.TempDir(), 5, 10*time.Millisecond)
	require.NoError(t, err)
	return e
}

func TestCreateAndOpen(t *testing.T) {
	e := newTestEngine(t)

	ds, err := e.Create("ds1", model.DatasetSpec{
		TenantID: "tenant-a", Name: "docs", Dimensions: 3, Metric: model.MetricCosine,
	})
	require.NoError(t, err)
	assert.Equal(t, "ds1", ds.ID)

	h, err := e.Open("ds1", ReadWrite)
	require.NoError(t, err)
	defer h.Close()
	assert.Equal(t, 0, h.Len())
}

func TestCreateAlreadyExists(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Create("ds1", model.DatasetSpec{Dimensions: 3})
	require.NoError(t, err)

	_, err = e.Create("ds1", model.DatasetSpec{Dimensions: 3})
	assert.Error(t, err)
}

func TestCreateOverwrite(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Create("ds1", model.DatasetSpec{Dimensions: 3})
	require.NoError(t, err)

	_, err = e.Create("ds1", model.DatasetSpec{Dimensions: 5, Overwrite: true})
	require.NoError(t, err)

	h, err := e.Open("ds1", ReadOnly)
	require.NoError(t, err)
	assert.Equal(t, 5, h.Dataset().Dimensions)
}

func TestAppendAndCommitRoundTrip(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Create("ds1", model.DatasetSpec{Dimensions: 3, Metric: model.MetricCosine})
	require.NoError(t, err)

	h, err := e.Open("ds1", ReadWrite)
	require.NoError(t, err)

	now := time.Now().UTC()
	err = h.Append([]model.Vector{
		{ID: "v1", Values: []float32{1, 0, 0}, Metadata: map[string]any{"k": "v"}, CreatedAt: now, UpdatedAt: now},
		{ID: "v2", Values: []float32{0, 1, 0}, CreatedAt: now, UpdatedAt: now},
	})
	require.NoError(t, err)
	require.NoError(t, h.Commit())
	require.NoError(t, h.Close())

	h2, err := e.Open("ds1", ReadOnly)
	require.NoError(t, err)
	assert.Equal(t, 2, h2.Len())

	rows, err := h2.Scan(10, 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "v1", rows[0].ID)
	assert.Equal(t, "v", rows[0].Metadata["k"])
}

func TestDeleteRowRequiresCommit(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Create("ds1", model.DatasetSpec{Dimensions: 2})
	require.NoError(t, err)

	h, err := e.Open("ds1", ReadWrite)
	require.NoError(t, err)
	require.NoError(t, h.Append([]model.Vector{{ID: "a", Values: []float32{1, 1}}, {ID: "b", Values: []float32{2, 2}}}))
	require.NoError(t, h.Commit())

	idx := h.FindByID("a")
	require.Equal(t, 0, idx)
	require.NoError(t, h.DeleteRow(idx))
	require.NoError(t, h.Commit())

	assert.Equal(t, 1, h.Len())
	assert.Equal(t, -1, h.FindByID("a"))
}

func TestDeleteDatasetCascades(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Create("ds1", model.DatasetSpec{Dimensions: 2})
	require.NoError(t, err)
	require.NoError(t, e.Delete("ds1"))

	_, err = e.Open("ds1", ReadOnly)
	assert.Error(t, err)
}

func TestOpenMissingDatasetReturnsNotFound(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Open("nope", ReadOnly)
	assert.Error(t, err)
}
