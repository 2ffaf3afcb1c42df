package lexical

import (
	"context"

	"github.com/blevesearch/bleve/v2"

	"github.com/vectorkit/vectorkit/internal/apperrors"
)

// bleveDoc is the structure indexed in bleve: just the content field, plus
// the original id carried alongside for snippet extraction after search.
type bleveDoc struct {
	Content string `json:"content"`
}

// BleveIndex is an alternate lexical.Index implementation backed by
// bleve's full-text engine with its default index mapping. The service
// always builds TFIDFIndex and never selects BleveIndex. It is rebuilt
// wholesale on every Build, same as TFIDFIndex.
type BleveIndex struct {
	idx     bleve.Index
	content map[string]string
	count   int
}

// NewBleveIndex returns an unbuilt BleveIndex.
func NewBleveIndex() *BleveIndex {
	return &BleveIndex{}
}

func (b *BleveIndex) Build(ctx context.Context, docs []Document) error {
	mapping := bleve.NewIndexMapping()
	idx, err := bleve.NewMemOnly(mapping)
	if err != nil {
		return apperrors.IndexingError("failed to create bleve index", err)
	}

	content := make(map[string]string, len(docs))
	batch := idx.NewBatch()
	for _, d := range docs {
		content[d.ID] = d.Content
		if err := batch.Index(d.ID, bleveDoc{Content: d.Content}); err != nil {
			return apperrors.IndexingError("failed to stage bleve document", err)
		}
	}
	if err := idx.Batch(batch); err != nil {
		return apperrors.IndexingError("failed to commit bleve batch", err)
	}

	if b.idx != nil {
		_ = b.idx.Close()
	}
	b.idx = idx
	b.content = content
	b.count = len(docs)
	return nil
}

func (b *BleveIndex) Search(ctx context.Context, queryStr string, k int) ([]Hit, error) {
	if b.idx == nil {
		return nil, nil
	}
	if k <= 0 {
		k = 10
	}

	q := bleve.NewMatchQuery(queryStr)
	q.SetField("content")
	req := bleve.NewSearchRequest(q)
	req.Size = k

	result, err := b.idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, apperrors.IndexingError("bleve search failed", err)
	}

	hits := make([]Hit, 0, len(result.Hits))
	for _, h := range result.Hits {
		hits = append(hits, Hit{
			ID:      h.ID,
			Score:   h.Score,
			Snippet: extractSnippet(b.content[h.ID], firstToken(queryStr)),
		})
	}
	return hits, nil
}

func (b *BleveIndex) DocCount() int {
	return b.count
}

func firstToken(query string) string {
	toks := tokenize(query)
	if len(toks) == 0 {
		return ""
	}
	return toks[0]
}
