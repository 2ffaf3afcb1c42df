package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vectorkit/vectorkit/internal/filter"
	"github.com/vectorkit/vectorkit/internal/index"
	"github.com/vectorkit/vectorkit/internal/model"
	"github.com/vectorkit/vectorkit/internal/storage"
)

func newTestHandle(t *testing.T) (*storage.Engine, *storage.Handle) {
	t.Helper()
	e, err := storage.NewEngine(t.TempDir(), 5, 10*time.Millisecond)
	require.NoError(t, err)
	_, err = e.Create("ds1", model.DatasetSpec{Dimensions: 3, Metric: model.MetricCosine})
	require.NoError(t, err)

	h, err := e.Open("ds1", storage.ReadWrite)
	require.NoError(t, err)

	now := time.Now().UTC()
	require.NoError(t, h.Append([]model.Vector{
		{ID: "A", DocumentID: "docA", Values: []float32{1, 0, 0}, Content: "the quick brown fox", Metadata: map[string]any{"category": "tech", "priority": int64(2)}, CreatedAt: now, UpdatedAt: now},
		{ID: "B", DocumentID: "docB", Values: []float32{0.9, 0.1, 0}, Content: "brown fox jumps", Metadata: map[string]any{"category": "art", "priority": int64(1)}, CreatedAt: now, UpdatedAt: now},
		{ID: "C", DocumentID: "docC", Values: []float32{0, 1, 0}, Content: "lazy dogs sleep", Metadata: map[string]any{"category": "tech", "priority": int64(5)}, CreatedAt: now, UpdatedAt: now},
	}))
	require.NoError(t, h.Commit())
	return e, h
}

func TestSearchCosineRankingMatchesSpecScenario(t *testing.T) {
	_, h := newTestHandle(t)
	defer h.Close()

	eng := NewEngine(index.NewRegistry())
	results, _, err := eng.Search(context.Background(), h, h.Dataset(), []float32{1, 0, 0}, Options{TopK: 3})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "A", results[0].ID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-3)
	assert.Equal(t, "C", results[2].ID)
	assert.InDelta(t, 0.0, results[2].Score, 1e-3)
}

func TestSearchDimensionMismatch(t *testing.T) {
	_, h := newTestHandle(t)
	defer h.Close()

	eng := NewEngine(index.NewRegistry())
	_, _, err := eng.Search(context.Background(), h, h.Dataset(), []float32{1, 0}, Options{TopK: 3})
	assert.Error(t, err)
}

func TestSearchFilterSemanticsMatchesSpecScenario(t *testing.T) {
	_, h := newTestHandle(t)
	defer h.Close()

	expr, err := filter.ParseSQL("category = 'tech' AND priority > 1")
	require.NoError(t, err)

	eng := NewEngine(index.NewRegistry())
	results, _, err := eng.Search(context.Background(), h, h.Dataset(), []float32{0, 1, 0}, Options{TopK: 3, Filter: expr, IncludeMetadata: true})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "C", results[0].ID)
	assert.Equal(t, "A", results[1].ID)
}

func TestSearchThresholdFiltersLowScores(t *testing.T) {
	_, h := newTestHandle(t)
	defer h.Close()

	threshold := 0.5
	eng := NewEngine(index.NewRegistry())
	results, _, err := eng.Search(context.Background(), h, h.Dataset(), []float32{1, 0, 0}, Options{TopK: 3, Threshold: &threshold})
	require.NoError(t, err)
	for _, r := range results {
		assert.GreaterOrEqual(t, float64(r.Score), threshold)
	}
}

func TestSearchGroupByDocumentKeepsBestChunk(t *testing.T) {
	_, h := newTestHandle(t)
	defer h.Close()

	eng := NewEngine(index.NewRegistry())
	results, _, err := eng.Search(context.Background(), h, h.Dataset(), []float32{1, 0, 0}, Options{TopK: 3, GroupByDocument: true})
	require.NoError(t, err)
	seen := make(map[string]bool)
	for _, r := range results {
		assert.False(t, seen[r.DocumentID])
		seen[r.DocumentID] = true
	}
}

func TestSearchContentAndMetadataOmittedUnlessRequested(t *testing.T) {
	_, h := newTestHandle(t)
	defer h.Close()

	eng := NewEngine(index.NewRegistry())
	results, _, err := eng.Search(context.Background(), h, h.Dataset(), []float32{1, 0, 0}, Options{TopK: 1})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Empty(t, results[0].Content)
	assert.Nil(t, results[0].Metadata)
}
