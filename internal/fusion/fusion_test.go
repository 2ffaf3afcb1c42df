package fusion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRRFFuseMatchesSpecScenario(t *testing.T) {
	// Spec scenario 5: vector list ranks "fox" doc first, text list ranks
	// "dogs" doc first. With equal 0.5/0.5 weights, both ids must appear
	// and each id's score must equal the sum of w/(60+rank) over only the
	// lists it appears in.
	vector := Source{Name: "vector", Weight: 0.5, Items: []RankedItem{
		{ID: "fox-doc", Score: 0.95},
		{ID: "dogs-doc", Score: 0.1},
	}}
	text := Source{Name: "text", Weight: 0.5, Items: []RankedItem{
		{ID: "dogs-doc", Score: 3.2},
		{ID: "fox-doc", Score: 0.0},
	}}

	fused := For(StrategyRRF).Fuse([]Source{vector, text})
	require := assert.New(t)
	require.Len(fused, 2)

	byID := map[string]FusedResult{}
	for _, f := range fused {
		byID[f.ID] = f
	}

	expectedFox := 0.5/61.0 + 0.5/62.0
	expectedDogs := 0.5/62.0 + 0.5/61.0
	require.InDelta(expectedFox, byID["fox-doc"].FusedScore, 1e-9)
	require.InDelta(expectedDogs, byID["dogs-doc"].FusedScore, 1e-9)
}

func TestRRFFuseOnlySumsListsWhereIDAppears(t *testing.T) {
	a := Source{Name: "a", Weight: 1, Items: []RankedItem{{ID: "x", Score: 1}}}
	b := Source{Name: "b", Weight: 1, Items: []RankedItem{}}

	fused := For(StrategyRRF).Fuse([]Source{a, b})
	assert.Len(t, fused, 1)
	assert.InDelta(t, 1.0/61.0, fused[0].FusedScore, 1e-9)
	assert.False(t, fused[0].InAllLists)
}

func TestWeightedFuserNormalizesPerSource(t *testing.T) {
	a := Source{Name: "a", Weight: 1, Items: []RankedItem{{ID: "x", Score: 10}, {ID: "y", Score: 0}}}
	fused := For(StrategyWeighted).Fuse([]Source{a})
	byID := map[string]FusedResult{}
	for _, f := range fused {
		byID[f.ID] = f
	}
	assert.InDelta(t, 1.0, byID["x"].FusedScore, 1e-9)
	assert.InDelta(t, 0.0, byID["y"].FusedScore, 1e-9)
}

func TestCombSUMSumsRawScores(t *testing.T) {
	a := Source{Name: "a", Weight: 1, Items: []RankedItem{{ID: "x", Score: 2}}}
	b := Source{Name: "b", Weight: 1, Items: []RankedItem{{ID: "x", Score: 3}}}
	fused := For(StrategyCombSUM).Fuse([]Source{a, b})
	require := assert.New(t)
	require.Len(fused, 1)
	require.InDelta(5.0, fused[0].FusedScore, 1e-9)
}

func TestCombMNZRewardsConsensus(t *testing.T) {
	a := Source{Name: "a", Weight: 1, Items: []RankedItem{{ID: "x", Score: 2}, {ID: "y", Score: 2}}}
	b := Source{Name: "b", Weight: 1, Items: []RankedItem{{ID: "x", Score: 2}}}
	fused := For(StrategyCombMNZ).Fuse([]Source{a, b})
	byID := map[string]FusedResult{}
	for _, f := range fused {
		byID[f.ID] = f
	}
	assert.InDelta(t, 8.0, byID["x"].FusedScore, 1e-9) // (2+2) * 2 sources
	assert.InDelta(t, 2.0, byID["y"].FusedScore, 1e-9) // 2 * 1 source
}

func TestBordaFuserPointsByRank(t *testing.T) {
	a := Source{Name: "a", Weight: 1, Items: []RankedItem{{ID: "x", Score: 0}, {ID: "y", Score: 0}}}
	fused := For(StrategyBorda).Fuse([]Source{a})
	byID := map[string]FusedResult{}
	for _, f := range fused {
		byID[f.ID] = f
	}
	assert.InDelta(t, 2.0, byID["x"].FusedScore, 1e-9)
	assert.InDelta(t, 1.0, byID["y"].FusedScore, 1e-9)
}

func TestForUnknownStrategyDefaultsToRRF(t *testing.T) {
	_, ok := For(Strategy("bogus")).(RRFFuser)
	assert.True(t, ok)
}

func TestRankIsAssignedInFusedOrder(t *testing.T) {
	a := Source{Name: "a", Weight: 1, Items: []RankedItem{{ID: "x", Score: 5}, {ID: "y", Score: 1}}}
	fused := For(StrategyCombSUM).Fuse([]Source{a})
	assert.Equal(t, 1, fused[0].Rank)
	assert.Equal(t, 2, fused[1].Rank)
}
