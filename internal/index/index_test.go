package index

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vectorkit/vectorkit/internal/model"
)

func sampleRows() []Row {
	return []Row{
		{ID: "a", RowIndex: 0, Values: []float32{1, 0, 0}},
		{ID: "b", RowIndex: 1, Values: []float32{0, 1, 0}},
		{ID: "c", RowIndex: 2, Values: []float32{0.9, 0.1, 0}},
	}
}

func TestFlatIndexBuildAndSearch(t *testing.T) {
	idx := NewFlatIndex()
	stats, err := idx.Build(context.Background(), sampleRows(), BuildConfig{Metric: model.MetricCosine})
	require.NoError(t, err)
	assert.Equal(t, 3, stats.VectorCount)
	assert.True(t, stats.Trained)

	results, err := idx.Search(context.Background(), []float32{1, 0, 0}, 2, SearchParams{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].ID)
	assert.Equal(t, "c", results[1].ID)
}

func TestHNSWIndexBuildAndSearch(t *testing.T) {
	idx := NewHNSWIndex()
	stats, err := idx.Build(context.Background(), sampleRows(), BuildConfig{Metric: model.MetricCosine})
	require.NoError(t, err)
	assert.Equal(t, model.IndexTypeHNSW, stats.Type)

	results, err := idx.Search(context.Background(), []float32{1, 0, 0}, 1, SearchParams{EfSearch: 50})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].ID)
}

func TestHNSWSearchBeforeBuildFails(t *testing.T) {
	idx := NewHNSWIndex()
	_, err := idx.Search(context.Background(), []float32{1, 0, 0}, 1, SearchParams{})
	assert.Error(t, err)
}

func TestAutoScaleHNSWParamsSmallDataset(t *testing.T) {
	m, efc := autoScaleHNSWParams(500, 0, 0)
	assert.LessOrEqual(t, m, 8)
	assert.LessOrEqual(t, efc, 100)
}

func TestAutoScaleHNSWParamsLargeDataset(t *testing.T) {
	m, efc := autoScaleHNSWParams(2_000_000, 0, 0)
	assert.GreaterOrEqual(t, m, 32)
	assert.GreaterOrEqual(t, efc, 400)
}

func TestIVFIndexBuildAndSearch(t *testing.T) {
	rows := make([]Row, 0, 200)
	for i := 0; i < 100; i++ {
		rows = append(rows, Row{ID: "near-a-" + itoa(i), RowIndex: i, Values: []float32{1 + jitter(i), 0, 0}})
	}
	for i := 0; i < 100; i++ {
		rows = append(rows, Row{ID: "near-b-" + itoa(i), RowIndex: 100 + i, Values: []float32{0, 1 + jitter(i), 0}})
	}

	idx := NewIVFIndex()
	stats, err := idx.Build(context.Background(), rows, BuildConfig{Metric: model.MetricCosine, Nlist: 2})
	require.NoError(t, err)
	assert.Equal(t, 200, stats.VectorCount)

	results, err := idx.Search(context.Background(), []float32{1, 0, 0}, 5, SearchParams{Nprobe: 1})
	require.NoError(t, err)
	require.NotEmpty(t, results)
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	digits := []byte{}
	for i > 0 {
		digits = append([]byte{byte('0' + i%10)}, digits...)
		i /= 10
	}
	return string(digits)
}

func jitter(i int) float32 {
	return float32(i%5) * 0.001
}

func TestAutoIVFParams(t *testing.T) {
	nlist, nprobe := AutoIVFParams(50000)
	assert.Equal(t, 500, nlist)
	assert.Equal(t, 50, nprobe)
}

func TestAutoIVFParamsClampsBounds(t *testing.T) {
	nlist, nprobe := AutoIVFParams(10)
	assert.Equal(t, 100, nlist)
	assert.Equal(t, 10, nprobe)
}

func TestEffectiveTypeFallsBackToFlatForSmallDatasets(t *testing.T) {
	assert.Equal(t, model.IndexTypeFlat, EffectiveType(model.IndexTypeHNSW, 10, 0))
	assert.Equal(t, model.IndexTypeHNSW, EffectiveType(model.IndexTypeHNSW, 1000, 0))
}

func TestEffectiveTypeDefaultPromotesBySize(t *testing.T) {
	assert.Equal(t, model.IndexTypeFlat, EffectiveType(model.IndexTypeDefault, 10, 0))
	assert.Equal(t, model.IndexTypeHNSW, EffectiveType(model.IndexTypeDefault, 500, 0))
	assert.Equal(t, model.IndexTypeIVF, EffectiveType(model.IndexTypeDefault, 20000, 0))
}
