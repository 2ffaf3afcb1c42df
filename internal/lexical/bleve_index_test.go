package lexical

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBleveIndexBuildAndSearch(t *testing.T) {
	idx := NewBleveIndex()
	require.NoError(t, idx.Build(context.Background(), []Document{
		{ID: "doc-a", Content: "the quick brown fox"},
		{ID: "doc-b", Content: "lazy dogs and cats"},
	}))
	assert.Equal(t, 2, idx.DocCount())

	hits, err := idx.Search(context.Background(), "dogs cats", 10)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "doc-b", hits[0].ID)
}

func TestBleveIndexSearchBeforeBuild(t *testing.T) {
	idx := NewBleveIndex()
	hits, err := idx.Search(context.Background(), "anything", 10)
	require.NoError(t, err)
	assert.Nil(t, hits)
}

func TestBleveIndexRebuildReplacesPriorIndex(t *testing.T) {
	idx := NewBleveIndex()
	require.NoError(t, idx.Build(context.Background(), []Document{{ID: "a", Content: "first version"}}))
	require.NoError(t, idx.Build(context.Background(), []Document{{ID: "b", Content: "second version"}}))
	assert.Equal(t, 1, idx.DocCount())

	hits, err := idx.Search(context.Background(), "first", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}
