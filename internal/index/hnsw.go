package index

import (
	"context"
	"time"

	"github.com/coder/hnsw"

	"github.com/vectorkit/vectorkit/internal/apperrors"
	"github.com/vectorkit/vectorkit/internal/metric"
	"github.com/vectorkit/vectorkit/internal/model"
)

// HNSWIndex wraps coder/hnsw's layered proximity graph. The graph is built
// wholesale from the full row set on every Build; there is no per-id
// delete, so removed rows drop out only on the next rebuild.
type HNSWIndex struct {
	graph    *hnsw.Graph[string]
	rowOf    map[string]int
	kernel   metric.Kernel
	efSearch int
	stats    Stats
}

// NewHNSWIndex returns an unbuilt HNSWIndex.
func NewHNSWIndex() *HNSWIndex {
	return &HNSWIndex{rowOf: make(map[string]int)}
}

func (h *HNSWIndex) Build(ctx context.Context, rows []Row, cfg BuildConfig) (Stats, error) {
	start := time.Now()

	m, efConstruction := autoScaleHNSWParams(len(rows), cfg.M, cfg.EfConstruction)

	g := hnsw.NewGraph[string]()
	g.M = m
	g.EfSearch = 50
	g.Distance = hnswDistanceFunc(cfg.Metric)

	rowOf := make(map[string]int, len(rows))
	nodes := make([]hnsw.Node[string], 0, len(rows))
	for _, r := range rows {
		nodes = append(nodes, hnsw.MakeNode(r.ID, r.Values))
		rowOf[r.ID] = r.RowIndex
	}
	g.Add(nodes...)

	h.graph = g
	h.rowOf = rowOf
	h.kernel = metric.For(cfg.Metric)
	h.efSearch = 50

	h.stats = Stats{
		Type:         model.IndexTypeHNSW,
		VectorCount:  len(rows),
		BuildSeconds: time.Since(start).Seconds(),
		Trained:      true,
		Parameters: map[string]any{
			"m":               m,
			"ef_construction": efConstruction,
		},
	}
	return h.stats, nil
}

func (h *HNSWIndex) Search(ctx context.Context, query []float32, k int, params SearchParams) ([]Candidate, error) {
	if h.graph == nil {
		return nil, apperrors.IndexingError("hnsw index has not been built", nil)
	}

	efSearch := params.EfSearch
	if efSearch <= 0 {
		efSearch = 50
	}
	if efSearch < 1 {
		efSearch = 1
	}
	if efSearch > 200 {
		efSearch = 200
	}
	h.graph.EfSearch = efSearch

	neighbors := h.graph.Search(query, k)
	candidates := make([]Candidate, 0, len(neighbors))
	for _, n := range neighbors {
		score, distance := h.kernel.Score(query, n.Value)
		candidates = append(candidates, Candidate{
			ID:       n.Key,
			RowIndex: h.rowOf[n.Key],
			Score:    score,
			Distance: distance,
		})
	}
	return candidates, nil
}

func (h *HNSWIndex) Stats() Stats {
	return h.stats
}

// autoScaleHNSWParams clamps HNSW's M/efConstruction by dataset size per
// the registry's policy: small datasets get a cheap, low-recall graph;
// very large ones get a denser one.
func autoScaleHNSWParams(n, m, efConstruction int) (int, int) {
	if m <= 0 {
		m = 16
	}
	if efConstruction <= 0 {
		efConstruction = 200
	}
	switch {
	case n < 10000:
		if m > 8 {
			m = 8
		}
		if efConstruction > 100 {
			efConstruction = 100
		}
	case n > 1000000:
		if m < 32 {
			m = 32
		}
		if efConstruction < 400 {
			efConstruction = 400
		}
	}
	return m, efConstruction
}

// hnswDistanceFunc adapts a metric.Kernel's distance output to the
// DistanceFunc signature coder/hnsw expects (lower is closer).
func hnswDistanceFunc(m model.Metric) hnsw.DistanceFunc {
	k := metric.For(m)
	return func(a, b []float32) float32 {
		_, distance := k.Score(a, b)
		return distance
	}
}
