package service

import (
	"context"

	"github.com/vectorkit/vectorkit/internal/fusion"
	"github.com/vectorkit/vectorkit/internal/lexical"
	"github.com/vectorkit/vectorkit/internal/metric"
	"github.com/vectorkit/vectorkit/internal/query"
	"github.com/vectorkit/vectorkit/internal/storage"
)

// Search runs a nearest-neighbor vector search against datasetID.
func (s *Service) Search(ctx context.Context, datasetID string, queryVec []float32, opts query.Options) ([]query.Result, query.Stats, error) {
	h, err := s.openRead(datasetID)
	if err != nil {
		return nil, query.Stats{}, err
	}
	return s.query.Search(ctx, h, h.Dataset(), queryVec, opts)
}

// lexicalIndexFor returns datasetID's lexical index, building it from
// every live row's content on first use. Callers that have just mutated
// the dataset should have already called dropLexical.
func (s *Service) lexicalIndexFor(ctx context.Context, datasetID string) (lexical.Index, error) {
	s.mu.Lock()
	idx, ok := s.lexical[datasetID]
	s.mu.Unlock()
	if ok {
		return idx, nil
	}

	var docs []lexical.Document
	if s.lexicalStore != nil {
		if persisted, ok, err := s.lexicalStore.Load(ctx, datasetID); err == nil && ok {
			docs = persisted
		}
	}
	if docs == nil {
		h, err := s.openRead(datasetID)
		if err != nil {
			return nil, err
		}
		rows, err := h.Scan(0, 0)
		if err != nil {
			return nil, err
		}
		docs = make([]lexical.Document, len(rows))
		for i, r := range rows {
			docs[i] = lexical.Document{ID: r.ID, Content: r.Content}
		}
		if s.lexicalStore != nil {
			if err := s.lexicalStore.Replace(ctx, datasetID, docs); err != nil {
				s.logger.Warn("failed to persist lexical corpus", "dataset_id", datasetID, "error", err)
			}
		}
	}

	built := lexical.NewTFIDFIndex()
	if err := built.Build(ctx, docs); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.lexical[datasetID] = built
	s.mu.Unlock()
	return built, nil
}

// SearchText runs a keyword (TF-IDF) search over a dataset's content.
func (s *Service) SearchText(ctx context.Context, datasetID, queryText string, topK int) ([]lexical.Hit, error) {
	idx, err := s.lexicalIndexFor(ctx, datasetID)
	if err != nil {
		return nil, err
	}
	return idx.Search(ctx, queryText, topK)
}

// HybridOptions configures a hybrid vector+lexical search.
type HybridOptions struct {
	Vector       query.Options
	QueryText    string
	Strategy     fusion.Strategy
	VectorWeight float64
	TextWeight   float64
}

// HybridResult is one fused hit, carrying both the vector-search result
// (when the id also matched the vector search) and the fusion outcome.
type HybridResult struct {
	ID         string
	FusedScore float64
	Rank       int
	Vector     *query.Result
	Snippet    string
}

// hydrateRow looks up id's metadata and content directly from storage, for
// text-only hybrid hits that the lexical index doesn't carry either on.
func hydrateRow(h *storage.Handle, id string) (metadata map[string]any, content string, ok bool) {
	idx := h.FindByID(id)
	if idx < 0 {
		return nil, "", false
	}
	row, err := h.GetByIndex(idx)
	if err != nil {
		return nil, "", false
	}
	return row.Metadata, row.Content, true
}

// SearchHybrid runs vector and lexical search independently, fuses their
// rankings per opts.Strategy, then applies the same filter/threshold/limit
// post-processing query.Engine.Search applies to a single-modality search
// (spec: "after fusion, the Query Engine's filter/threshold/limit
// post-processing applies uniformly") so a metadata filter or top_k cap
// behaves the same whether a hit came from the vector index, the lexical
// index, or both.
func (s *Service) SearchHybrid(ctx context.Context, datasetID string, queryVec []float32, opts HybridOptions) ([]HybridResult, error) {
	// Metadata/content are needed to filter the fused list uniformly below,
	// regardless of what the caller ultimately wants included in the
	// response, so request them from the vector leg unconditionally.
	vectorOpts := opts.Vector
	vectorOpts.IncludeMetadata = true
	vectorOpts.IncludeContent = true

	vecResults, _, err := s.Search(ctx, datasetID, queryVec, vectorOpts)
	if err != nil {
		return nil, err
	}
	textHits, err := s.SearchText(ctx, datasetID, opts.QueryText, opts.Vector.TopK)
	if err != nil {
		return nil, err
	}

	h, err := s.openRead(datasetID)
	if err != nil {
		return nil, err
	}

	vectorItems := make([]fusion.RankedItem, len(vecResults))
	byID := make(map[string]*query.Result, len(vecResults))
	for i, r := range vecResults {
		vectorItems[i] = fusion.RankedItem{ID: r.ID, Score: float64(r.Score)}
		rr := r
		byID[r.ID] = &rr
	}
	textItems := make([]fusion.RankedItem, len(textHits))
	snippets := make(map[string]string, len(textHits))
	for i, hit := range textHits {
		textItems[i] = fusion.RankedItem{ID: hit.ID, Score: hit.Score}
		snippets[hit.ID] = hit.Snippet
	}

	vecWeight, textWeight := opts.VectorWeight, opts.TextWeight
	if vecWeight == 0 && textWeight == 0 {
		vecWeight, textWeight = 0.5, 0.5
	}

	fused := fusion.For(opts.Strategy).Fuse([]fusion.Source{
		{Name: "vector", Weight: vecWeight, Items: vectorItems},
		{Name: "text", Weight: textWeight, Items: textItems},
	})
	fusedByID := make(map[string]fusion.FusedResult, len(fused))

	kernel := metric.For(h.Dataset().Metric)
	proxies := make([]query.Result, len(fused))
	for i, f := range fused {
		fusedByID[f.ID] = f
		var metadata map[string]any
		var content string
		if v, ok := byID[f.ID]; ok {
			metadata, content = v.Metadata, v.Content
		} else if rowMetadata, rowContent, ok := hydrateRow(h, f.ID); ok {
			metadata, content = rowMetadata, rowContent
		}
		proxies[i] = query.Result{ID: f.ID, Score: float32(f.FusedScore), Content: content, Metadata: metadata}
	}
	proxies = query.FilterResults(proxies, opts.Vector, kernel)

	topK := opts.Vector.TopK
	if topK <= 0 {
		topK = 10
	}
	if len(proxies) > topK {
		proxies = proxies[:topK]
	}

	out := make([]HybridResult, len(proxies))
	for i, p := range proxies {
		f := fusedByID[p.ID]
		out[i] = HybridResult{
			ID:         p.ID,
			FusedScore: f.FusedScore,
			Rank:       i + 1,
			Vector:     byID[p.ID],
			Snippet:    snippets[p.ID],
		}
		if !opts.Vector.IncludeMetadata && out[i].Vector != nil {
			strippedVector := *out[i].Vector
			strippedVector.Metadata = nil
			out[i].Vector = &strippedVector
		}
		if !opts.Vector.IncludeContent && out[i].Vector != nil {
			strippedVector := *out[i].Vector
			strippedVector.Content = ""
			out[i].Vector = &strippedVector
		}
	}
	return out, nil
}
