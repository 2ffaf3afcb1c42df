package fusion

// CombSUMFuser fuses by summing each source's weighted raw score
// directly, with no rank transform or normalization.
type CombSUMFuser struct{}

func (CombSUMFuser) Fuse(sources []Source) []FusedResult {
	scores := make(map[string]*FusedResult)
	matchCount := make(map[string]int)

	for _, src := range sources {
		for _, item := range src.Items {
			r := getOrCreate(scores, item.ID, len(sources))
			r.PerSource[src.Name] = item.Score
			r.FusedScore += src.Weight * item.Score
			matchCount[item.ID]++
		}
	}

	for id, r := range scores {
		r.InAllLists = matchCount[id] == len(sources)
	}

	return toSortedSlice(scores)
}

// CombMNZFuser is CombSUM multiplied by the number of sources the id
// appeared in, rewarding consensus across lists.
type CombMNZFuser struct{}

func (CombMNZFuser) Fuse(sources []Source) []FusedResult {
	sum := CombSUMFuser{}.Fuse(sources)
	matchCount := make(map[string]int)
	for _, src := range sources {
		for _, item := range src.Items {
			matchCount[item.ID]++
		}
	}
	for i := range sum {
		sum[i].FusedScore *= float64(matchCount[sum[i].ID])
	}

	// Re-sort: multiplying by match count can change relative order.
	scores := make(map[string]*FusedResult, len(sum))
	for i := range sum {
		r := sum[i]
		scores[r.ID] = &r
	}
	return toSortedSlice(scores)
}
