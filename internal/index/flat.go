package index

import (
	"context"
	"sort"
	"time"

	"github.com/vectorkit/vectorkit/internal/metric"
	"github.com/vectorkit/vectorkit/internal/model"
)

// FlatIndex is a brute-force linear scan; it is the fallback whenever a
// dataset is too small to benefit from HNSW/IVF, or when an approximate
// build has failed.
type FlatIndex struct {
	rows   []Row
	kernel metric.Kernel
	stats  Stats
}

// NewFlatIndex returns an unbuilt FlatIndex.
func NewFlatIndex() *FlatIndex {
	return &FlatIndex{}
}

func (f *FlatIndex) Build(ctx context.Context, rows []Row, cfg BuildConfig) (Stats, error) {
	start := time.Now()
	f.rows = rows
	f.kernel = metric.For(cfg.Metric)
	f.stats = Stats{
		Type:         model.IndexTypeFlat,
		VectorCount:  len(rows),
		BuildSeconds: time.Since(start).Seconds(),
		Trained:      true,
	}
	return f.stats, nil
}

func (f *FlatIndex) Search(ctx context.Context, query []float32, k int, params SearchParams) ([]Candidate, error) {
	candidates := make([]Candidate, 0, len(f.rows))
	for _, r := range f.rows {
		score, distance := f.kernel.Score(query, r.Values)
		candidates = append(candidates, Candidate{ID: r.ID, RowIndex: r.RowIndex, Score: score, Distance: distance})
	}

	ascending := f.kernel.Ascending()
	sort.SliceStable(candidates, func(i, j int) bool {
		if ascending {
			if candidates[i].Distance != candidates[j].Distance {
				return candidates[i].Distance < candidates[j].Distance
			}
		} else {
			if candidates[i].Score != candidates[j].Score {
				return candidates[i].Score > candidates[j].Score
			}
		}
		return candidates[i].RowIndex < candidates[j].RowIndex
	})

	if k > 0 && k < len(candidates) {
		candidates = candidates[:k]
	}
	return candidates, nil
}

func (f *FlatIndex) Stats() Stats {
	return f.stats
}
