// Package lexical builds and queries a per-dataset inverted text index
// used as the text side of hybrid vector+lexical search.
package lexical

import (
	"context"
)

// Hit is one scored match from a lexical search.
type Hit struct {
	ID      string
	Score   float64
	Snippet string
}

// Document is one unit of indexable text: a stable id and its content
// field.
type Document struct {
	ID      string
	Content string
}

// Index is the contract shared by the hand-rolled TF·IDF index and the
// bleve-backed alternate implementation. A build always replaces the
// entire index; there is no incremental posting update.
type Index interface {
	Build(ctx context.Context, docs []Document) error
	Search(ctx context.Context, query string, k int) ([]Hit, error)
	DocCount() int
}
