package fusion

// BordaFuser implements Borda count: in a source with n items, the item
// at rank i (0-indexed) earns n-i points; points are weighted by the
// source's weight and summed across sources.
type BordaFuser struct{}

func (BordaFuser) Fuse(sources []Source) []FusedResult {
	scores := make(map[string]*FusedResult)
	matchCount := make(map[string]int)

	for _, src := range sources {
		n := len(src.Items)
		for rank, item := range src.Items {
			r := getOrCreate(scores, item.ID, len(sources))
			r.PerSource[src.Name] = item.Score
			points := float64(n - rank)
			r.FusedScore += src.Weight * points
			matchCount[item.ID]++
		}
	}

	for id, r := range scores {
		r.InAllLists = matchCount[id] == len(sources)
	}

	return toSortedSlice(scores)
}
