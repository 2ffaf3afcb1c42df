package lexical

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	toks := tokenize("The Quick-Brown fox, a.")
	assert.Equal(t, []string{"the", "quick", "brown", "fox"}, toks)
}

func TestTFIDFBuildAndSearchSpecScenario(t *testing.T) {
	idx := NewTFIDFIndex()
	require.NoError(t, idx.Build(context.Background(), []Document{
		{ID: "doc-a", Content: "the quick brown fox"},
		{ID: "doc-b", Content: "lazy dogs and cats"},
	}))
	assert.Equal(t, 2, idx.DocCount())

	hits, err := idx.Search(context.Background(), "dogs cats", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "doc-b", hits[0].ID)
	assert.Greater(t, hits[0].Score, 0.0)
}

func TestTFIDFScoreFormula(t *testing.T) {
	idx := NewTFIDFIndex()
	require.NoError(t, idx.Build(context.Background(), []Document{
		{ID: "a", Content: "alpha beta"},
		{ID: "b", Content: "alpha gamma delta"},
	}))

	hits, err := idx.Search(context.Background(), "alpha", 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)

	// idf(alpha) = ln(2/2) = 0; both scores should be zero.
	for _, h := range hits {
		assert.InDelta(t, 0.0, h.Score, 1e-9)
	}

	hits, err = idx.Search(context.Background(), "beta", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	expected := (1.0 / 2.0) * math.Log(2.0/1.0)
	assert.InDelta(t, expected, hits[0].Score, 1e-9)
}

func TestTFIDFSnippetWindow(t *testing.T) {
	long := ""
	for i := 0; i < 50; i++ {
		long += "word "
	}
	long += "needle"
	for i := 0; i < 50; i++ {
		long += " more"
	}

	idx := NewTFIDFIndex()
	require.NoError(t, idx.Build(context.Background(), []Document{{ID: "doc", Content: long}}))

	hits, err := idx.Search(context.Background(), "needle", 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.LessOrEqual(t, len(hits[0].Snippet), snippetWindow)
	assert.Contains(t, hits[0].Snippet, "needle")
}

func TestTFIDFSearchUnknownTermReturnsNoHits(t *testing.T) {
	idx := NewTFIDFIndex()
	require.NoError(t, idx.Build(context.Background(), []Document{{ID: "a", Content: "hello world"}}))

	hits, err := idx.Search(context.Background(), "nonexistent", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}
