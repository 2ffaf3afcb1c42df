// Package query implements the nearest-neighbor search pipeline: index
// selection, candidate retrieval, filtering, dedup/grouping/reranking,
// and result truncation.
package query

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/vectorkit/vectorkit/internal/apperrors"
	"github.com/vectorkit/vectorkit/internal/filter"
	"github.com/vectorkit/vectorkit/internal/index"
	"github.com/vectorkit/vectorkit/internal/metric"
	"github.com/vectorkit/vectorkit/internal/model"
	"github.com/vectorkit/vectorkit/internal/storage"
)

// overscanFactor multiplies top_k when retrieving candidates, leaving
// headroom for post-retrieval filtering.
const overscanFactor = 10

// Options carries the per-request search knobs.
type Options struct {
	TopK            int
	Threshold       *float64
	MetricOverride  *model.Metric
	IncludeContent  bool
	IncludeMetadata bool
	Filter          filter.Expr
	Deduplicate     bool
	GroupByDocument bool
	Rerank          bool
	RerankQueryText string
	EfSearch        int
	Nprobe          int
	MaxDistance     *float64
	MinScore        *float64
}

// Result is one ranked hit.
type Result struct {
	ID         string
	DocumentID string
	Score      float32
	Distance   float32
	Rank       int
	Content    string
	Metadata   map[string]any
}

// Stats reports pipeline counters for one search.
type Stats struct {
	VectorsScanned       int
	IndexHits            int
	FilteredResults      int
	DatabaseTimeMS       float64
	PostProcessingTimeMS float64
}

// Engine runs the search pipeline against a dataset's storage handle and
// its entry in the index Registry.
type Engine struct {
	registry *index.Registry
}

// NewEngine returns an Engine backed by registry.
func NewEngine(registry *index.Registry) *Engine {
	return &Engine{registry: registry}
}

// Search executes the full pipeline described in the package doc and
// returns ranked results plus pipeline stats.
func (e *Engine) Search(ctx context.Context, h *storage.Handle, ds *model.Dataset, queryVec []float32, opts Options) ([]Result, Stats, error) {
	dbStart := time.Now()

	if len(queryVec) != ds.Dimensions {
		return nil, Stats{}, apperrors.InvalidDimensions("query vector dimension does not match dataset", nil)
	}

	topK := opts.TopK
	if topK <= 0 {
		topK = 10
	}
	if topK > 1000 {
		topK = 1000
	}

	m := ds.Metric
	if opts.MetricOverride != nil {
		m = *opts.MetricOverride
	}
	kernel := metric.For(m)

	overscanK := topK * overscanFactor
	candidates, indexHits, err := e.retrieve(ctx, h, ds, queryVec, overscanK, m, opts)
	if err != nil {
		return nil, Stats{}, err
	}

	vectorsScanned := h.Len()
	dbElapsed := time.Since(dbStart)

	ppStart := time.Now()

	results := make([]Result, 0, len(candidates))
	for _, c := range candidates {
		row, rowErr := h.GetByIndex(c.RowIndex)
		if rowErr != nil {
			continue
		}
		results = append(results, Result{
			ID:         row.ID,
			DocumentID: row.DocumentID,
			Score:      c.Score,
			Distance:   c.Distance,
			Content:    row.Content,
			Metadata:   row.Metadata,
		})
	}

	results = FilterResults(results, opts, kernel)
	filteredCount := len(results)

	if opts.Deduplicate {
		results = dedupeByID(results)
	}
	if opts.GroupByDocument {
		results = groupByDocumentKeepBest(results, kernel)
	}
	if opts.Rerank && strings.TrimSpace(opts.RerankQueryText) != "" {
		results = rerankByTokenOverlap(results, opts.RerankQueryText, kernel)
	}

	if len(results) > topK {
		results = results[:topK]
	}
	for i := range results {
		results[i].Rank = i + 1
		if !opts.IncludeContent {
			results[i].Content = ""
		}
		if !opts.IncludeMetadata {
			results[i].Metadata = nil
		}
	}

	stats := Stats{
		VectorsScanned:       vectorsScanned,
		IndexHits:            indexHits,
		FilteredResults:      vectorsScanned - filteredCount,
		DatabaseTimeMS:       float64(dbElapsed.Microseconds()) / 1000.0,
		PostProcessingTimeMS: float64(time.Since(ppStart).Microseconds()) / 1000.0,
	}
	return results, stats, nil
}

// retrieve chooses between the registry's live index and a fresh Flat
// scan, per the Registry's small-dataset fallback policy.
func (e *Engine) retrieve(ctx context.Context, h *storage.Handle, ds *model.Dataset, queryVec []float32, k int, m model.Metric, opts Options) ([]index.Candidate, int, error) {
	effective := index.EffectiveType(ds.IndexType, h.Len(), 0)

	if effective != model.IndexTypeFlat && e.registry.Built(ds.ID) {
		candidates, err := e.registry.Search(ctx, ds.ID, queryVec, k, index.SearchParams{
			EfSearch: opts.EfSearch,
			Nprobe:   opts.Nprobe,
		})
		if err == nil {
			return candidates, len(candidates), nil
		}
	}

	flat := index.NewFlatIndex()
	rows := make([]index.Row, 0, h.Len())
	for i := 0; i < h.Len(); i++ {
		row, err := h.GetByIndex(i)
		if err != nil {
			continue
		}
		rows = append(rows, index.Row{ID: row.ID, RowIndex: i, Values: row.Values})
	}
	if _, err := flat.Build(ctx, rows, index.BuildConfig{Metric: m}); err != nil {
		return nil, 0, apperrors.IndexingError("flat fallback build failed", err)
	}
	candidates, err := flat.Search(ctx, queryVec, k, index.SearchParams{})
	if err != nil {
		return nil, 0, err
	}
	return candidates, len(candidates), nil
}

// FilterResults applies the threshold/max_distance/min_score checks
// followed by the metadata filter expression, in that order. Search uses
// it on raw candidates; hybrid fusion reuses it on a fused result list so
// both paths apply the same filter/threshold/limit post-processing.
func FilterResults(results []Result, opts Options, kernel metric.Kernel) []Result {
	results = applyScoreFilters(results, opts, kernel)
	return applyMetadataFilter(results, opts.Filter)
}

func applyScoreFilters(results []Result, opts Options, kernel metric.Kernel) []Result {
	out := results[:0:0]
	for _, r := range results {
		if opts.Threshold != nil && float64(r.Score) < *opts.Threshold {
			continue
		}
		if opts.MaxDistance != nil && float64(r.Distance) > *opts.MaxDistance {
			continue
		}
		if opts.MinScore != nil && float64(r.Score) < *opts.MinScore {
			continue
		}
		out = append(out, r)
	}
	return out
}

func applyMetadataFilter(results []Result, expr filter.Expr) []Result {
	if expr == nil {
		return results
	}
	out := results[:0:0]
	for _, r := range results {
		if filter.Evaluate(expr, r.Metadata) {
			out = append(out, r)
		}
	}
	return out
}

func dedupeByID(results []Result) []Result {
	seen := make(map[string]bool, len(results))
	out := results[:0:0]
	for _, r := range results {
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		out = append(out, r)
	}
	return out
}

// groupByDocumentKeepBest collapses multiple chunks of the same document
// down to the single highest-scoring chunk, preserving overall order.
func groupByDocumentKeepBest(results []Result, kernel metric.Kernel) []Result {
	best := make(map[string]Result, len(results))
	order := make([]string, 0, len(results))
	for _, r := range results {
		key := r.DocumentID
		if key == "" {
			key = r.ID
		}
		existing, ok := best[key]
		if !ok {
			best[key] = r
			order = append(order, key)
			continue
		}
		if betterThan(r, existing, kernel) {
			best[key] = r
		}
	}
	out := make([]Result, 0, len(order))
	for _, key := range order {
		out = append(out, best[key])
	}
	sortResults(out, kernel)
	return out
}

func betterThan(a, b Result, kernel metric.Kernel) bool {
	if kernel.Ascending() {
		return a.Distance < b.Distance
	}
	return a.Score > b.Score
}

func sortResults(results []Result, kernel metric.Kernel) {
	ascending := kernel.Ascending()
	sort.SliceStable(results, func(i, j int) bool {
		if ascending {
			return results[i].Distance < results[j].Distance
		}
		return results[i].Score > results[j].Score
	})
}

// rerankByTokenOverlap boosts each result's score by the fraction of
// query tokens present in its content, then re-sorts descending by the
// boosted score (higher is always better post-rerank, regardless of the
// underlying metric's natural direction).
func rerankByTokenOverlap(results []Result, queryText string, kernel metric.Kernel) []Result {
	queryTokens := tokenizeForRerank(queryText)
	if len(queryTokens) == 0 {
		return results
	}

	type boosted struct {
		result Result
		score  float64
	}
	boostedList := make([]boosted, len(results))
	for i, r := range results {
		overlap := tokenOverlapRatio(queryTokens, r.Content)
		base := float64(r.Score)
		if kernel.Ascending() {
			base = 1.0 / (1.0 + float64(r.Distance))
		}
		boostedList[i] = boosted{result: r, score: base * (1.0 + overlap)}
	}

	sort.SliceStable(boostedList, func(i, j int) bool {
		return boostedList[i].score > boostedList[j].score
	})

	out := make([]Result, len(boostedList))
	for i, b := range boostedList {
		out[i] = b.result
	}
	return out
}

func tokenizeForRerank(s string) map[string]bool {
	fields := strings.Fields(strings.ToLower(s))
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[f] = true
	}
	return set
}

func tokenOverlapRatio(queryTokens map[string]bool, content string) float64 {
	if len(queryTokens) == 0 {
		return 0
	}
	contentTokens := tokenizeForRerank(content)
	hits := 0
	for t := range queryTokens {
		if contentTokens[t] {
			hits++
		}
	}
	return float64(hits) / float64(len(queryTokens))
}
