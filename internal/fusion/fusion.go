// Package fusion combines ranked result lists (vector similarity, lexical
// relevance, or any other ranked source) into one fused ranking, for
// hybrid vector+lexical search.
package fusion

import "sort"

// Strategy names a fusion algorithm.
type Strategy string

const (
	StrategyWeighted Strategy = "weighted_sum"
	StrategyRRF      Strategy = "rrf"
	StrategyCombSUM  Strategy = "comb_sum"
	StrategyCombMNZ  Strategy = "comb_mnz"
	StrategyBorda    Strategy = "borda"
)

// DefaultRRFConstant is the standard RRF smoothing parameter, k=60,
// used by OpenSearch, Azure AI Search, and most production hybrid search.
const DefaultRRFConstant = 60

// RankedItem is one entry in a single ranked source list, already sorted
// by that source (rank 0 = best).
type RankedItem struct {
	ID    string
	Score float64
}

// Source is one ranked list plus its fusion weight.
type Source struct {
	Name   string
	Weight float64
	Items  []RankedItem
}

// FusedResult is one id's position in the fused ranking.
type FusedResult struct {
	ID         string
	FusedScore float64
	PerSource  map[string]float64 // each source's raw score, for sources in which this id appeared
	Rank       int                // 1-indexed position in the final fused list
	InAllLists bool
}

// Fuser combines multiple ranked Sources into one fused ranking.
type Fuser interface {
	Fuse(sources []Source) []FusedResult
}

// For returns the Fuser for a named strategy. Unknown strategies fall
// back to RRF, matching the Query Engine's "unknown fusion defaults to
// RRF" behavior.
func For(s Strategy) Fuser {
	switch s {
	case StrategyWeighted:
		return WeightedFuser{}
	case StrategyCombSUM:
		return CombSUMFuser{}
	case StrategyCombMNZ:
		return CombMNZFuser{}
	case StrategyBorda:
		return BordaFuser{}
	default:
		return RRFFuser{K: DefaultRRFConstant}
	}
}

// toSortedSlice converts an accumulation map into a deterministically
// sorted, ranked slice: highest FusedScore first, ties broken by id.
func toSortedSlice(scores map[string]*FusedResult) []FusedResult {
	results := make([]FusedResult, 0, len(scores))
	for _, r := range scores {
		results = append(results, *r)
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].FusedScore != results[j].FusedScore {
			return results[i].FusedScore > results[j].FusedScore
		}
		return results[i].ID < results[j].ID
	})
	for i := range results {
		results[i].Rank = i + 1
	}
	return results
}

func getOrCreate(m map[string]*FusedResult, id string, numSources int) *FusedResult {
	if r, ok := m[id]; ok {
		return r
	}
	r := &FusedResult{ID: id, PerSource: make(map[string]float64, numSources)}
	m[id] = r
	return r
}
