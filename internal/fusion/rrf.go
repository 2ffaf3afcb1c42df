package fusion

// RRFFuser implements Reciprocal Rank Fusion:
//
//	fused(id) = Σ weight_i / (K + rank_i)
//
// summed only over the sources in which id appears — a source that never
// saw an id contributes nothing (no missing-rank padding).
type RRFFuser struct {
	K int
}

func (f RRFFuser) Fuse(sources []Source) []FusedResult {
	k := f.K
	if k <= 0 {
		k = DefaultRRFConstant
	}

	scores := make(map[string]*FusedResult)
	matchCount := make(map[string]int)

	for _, src := range sources {
		for rank, item := range src.Items {
			r := getOrCreate(scores, item.ID, len(sources))
			r.PerSource[src.Name] = item.Score
			r.FusedScore += src.Weight / float64(k+rank+1)
			matchCount[item.ID]++
		}
	}

	for id, r := range scores {
		r.InAllLists = matchCount[id] == len(sources)
	}

	return toSortedSlice(scores)
}
