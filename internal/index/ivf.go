package index

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/vectorkit/vectorkit/internal/apperrors"
	"github.com/vectorkit/vectorkit/internal/metric"
	"github.com/vectorkit/vectorkit/internal/model"
)

// IVFIndex is an inverted-file index: a k-means coarse quantizer over
// nlist centroids, each owning the rows assigned to it at build time.
// Search probes only the nprobe centroids nearest the query.
type IVFIndex struct {
	centroids [][]float32
	lists     [][]Row // lists[c] = rows assigned to centroid c
	kernel    metric.Kernel
	nprobe    int
	stats     Stats
}

// NewIVFIndex returns an unbuilt IVFIndex.
func NewIVFIndex() *IVFIndex {
	return &IVFIndex{}
}

func (iv *IVFIndex) Build(ctx context.Context, rows []Row, cfg BuildConfig) (Stats, error) {
	start := time.Now()

	nlist := cfg.Nlist
	if nlist <= 0 {
		nlist = 100
	}
	if nlist > len(rows) {
		nlist = max(1, len(rows))
	}

	kernel := metric.For(cfg.Metric)
	centroids := kmeans(rows, nlist, kernel)

	lists := make([][]Row, len(centroids))
	for _, r := range rows {
		c := nearestCentroid(r.Values, centroids, kernel)
		lists[c] = append(lists[c], r)
	}

	iv.centroids = centroids
	iv.lists = lists
	iv.kernel = kernel
	iv.nprobe = 10

	iv.stats = Stats{
		Type:         model.IndexTypeIVF,
		VectorCount:  len(rows),
		BuildSeconds: time.Since(start).Seconds(),
		Trained:      true,
		Parameters: map[string]any{
			"nlist": len(centroids),
		},
	}
	return iv.stats, nil
}

func (iv *IVFIndex) Search(ctx context.Context, query []float32, k int, params SearchParams) ([]Candidate, error) {
	if iv.centroids == nil {
		return nil, apperrors.IndexingError("ivf index has not been built", nil)
	}

	nprobe := params.Nprobe
	if nprobe <= 0 {
		nprobe = 10
	}
	if nprobe < 1 {
		nprobe = 1
	}
	if nprobe > 100 {
		nprobe = 100
	}
	if nprobe > len(iv.centroids) {
		nprobe = len(iv.centroids)
	}

	order := nearestCentroids(query, iv.centroids, iv.kernel, nprobe)

	var candidates []Candidate
	for _, c := range order {
		for _, r := range iv.lists[c] {
			score, distance := iv.kernel.Score(query, r.Values)
			candidates = append(candidates, Candidate{ID: r.ID, RowIndex: r.RowIndex, Score: score, Distance: distance})
		}
	}

	ascending := iv.kernel.Ascending()
	sort.SliceStable(candidates, func(i, j int) bool {
		if ascending {
			if candidates[i].Distance != candidates[j].Distance {
				return candidates[i].Distance < candidates[j].Distance
			}
		} else if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].RowIndex < candidates[j].RowIndex
	})

	if k > 0 && k < len(candidates) {
		candidates = candidates[:k]
	}
	return candidates, nil
}

func (iv *IVFIndex) Stats() Stats {
	return iv.stats
}

// kmeans runs a fixed number of Lloyd's-algorithm iterations to produce n
// centroids from rows. No third-party library in the retrieval pack
// implements k-means directly, so this is a from-scratch implementation.
func kmeans(rows []Row, n int, kernel metric.Kernel) [][]float32 {
	if len(rows) == 0 || n <= 0 {
		return nil
	}

	rng := rand.New(rand.NewSource(42))
	perm := rng.Perm(len(rows))[:min(n, len(rows))]
	centroids := make([][]float32, len(perm))
	for i, idx := range perm {
		centroids[i] = append([]float32(nil), rows[idx].Values...)
	}

	const iterations = 10
	dims := len(rows[0].Values)

	for iter := 0; iter < iterations; iter++ {
		sums := make([][]float64, len(centroids))
		counts := make([]int, len(centroids))
		for i := range sums {
			sums[i] = make([]float64, dims)
		}

		for _, r := range rows {
			c := nearestCentroid(r.Values, centroids, kernel)
			counts[c]++
			for d := 0; d < dims; d++ {
				sums[c][d] += float64(r.Values[d])
			}
		}

		for c := range centroids {
			if counts[c] == 0 {
				continue
			}
			updated := make([]float32, dims)
			for d := 0; d < dims; d++ {
				updated[d] = float32(sums[c][d] / float64(counts[c]))
			}
			centroids[c] = updated
		}
	}

	return centroids
}

func nearestCentroid(v []float32, centroids [][]float32, kernel metric.Kernel) int {
	best := 0
	var bestScore float32
	var bestDistance float32 = float32(math.MaxFloat32)
	ascending := kernel.Ascending()
	for i, c := range centroids {
		score, distance := kernel.Score(v, c)
		if i == 0 {
			best, bestScore, bestDistance = 0, score, distance
			continue
		}
		if (ascending && distance < bestDistance) || (!ascending && score > bestScore) {
			best, bestScore, bestDistance = i, score, distance
		}
	}
	return best
}

// nearestCentroids returns the indices of the nprobe centroids closest to
// query, in closeness order.
func nearestCentroids(query []float32, centroids [][]float32, kernel metric.Kernel, nprobe int) []int {
	type scored struct {
		idx      int
		score    float32
		distance float32
	}
	all := make([]scored, len(centroids))
	for i, c := range centroids {
		s, d := kernel.Score(query, c)
		all[i] = scored{idx: i, score: s, distance: d}
	}
	ascending := kernel.Ascending()
	sort.Slice(all, func(i, j int) bool {
		if ascending {
			return all[i].distance < all[j].distance
		}
		return all[i].score > all[j].score
	})
	if nprobe > len(all) {
		nprobe = len(all)
	}
	out := make([]int, nprobe)
	for i := 0; i < nprobe; i++ {
		out[i] = all[i].idx
	}
	return out
}
