package metric

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vectorkit/vectorkit/internal/model"
)

func TestCosineRanking(t *testing.T) {
	k := For(model.MetricCosine)
	q := []float32{1, 0, 0}

	sA, _ := k.Score(q, []float32{1, 0, 0})
	sB, _ := k.Score(q, []float32{0.9, 0.1, 0})
	sC, _ := k.Score(q, []float32{0, 1, 0})

	assert.InDelta(t, 1.0, sA, 1e-3)
	assert.InDelta(t, 0.9939, sB, 1e-3)
	assert.InDelta(t, 0.0, sC, 1e-3)
	assert.False(t, k.Ascending())
}

func TestCosineZeroNorm(t *testing.T) {
	k := For(model.MetricCosine)
	s, d := k.Score([]float32{0, 0}, []float32{1, 1})
	assert.Equal(t, float32(0), s)
	assert.Equal(t, float32(1), d)
}

func TestEuclideanRanking(t *testing.T) {
	k := For(model.MetricEuclidean)
	q := []float32{0, 0}

	sA, dA := k.Score(q, []float32{0, 0})
	sB, dB := k.Score(q, []float32{3, 4})

	assert.InDelta(t, 0.0, dA, 1e-9)
	assert.InDelta(t, 5.0, dB, 1e-9)
	assert.InDelta(t, 1.0, sA, 1e-3)
	assert.InDelta(t, 1.0/6.0, sB, 1e-3)
	assert.True(t, k.Ascending())
}

func TestManhattanDistance(t *testing.T) {
	k := For(model.MetricManhattan)
	_, d := k.Score([]float32{0, 0}, []float32{3, 4})
	assert.InDelta(t, 7.0, d, 1e-9)
}

func TestDotProduct(t *testing.T) {
	k := For(model.MetricDot)
	s, d := k.Score([]float32{1, 2}, []float32{3, 4})
	assert.InDelta(t, 11.0, s, 1e-9)
	assert.InDelta(t, -11.0, d, 1e-9)
}

func TestHammingDistance(t *testing.T) {
	k := For(model.MetricHamming)
	s, d := k.Score([]float32{1, 0, 1, 0}, []float32{1, 1, 0, 0})
	assert.InDelta(t, 0.5, d, 1e-9)
	assert.InDelta(t, 0.5, s, 1e-9)
}

func TestForPanicsOnUnknownMetric(t *testing.T) {
	assert.Panics(t, func() {
		For(model.Metric("nonsense"))
	})
}
