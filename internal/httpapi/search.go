package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vectorkit/vectorkit/internal/filter"
	"github.com/vectorkit/vectorkit/internal/fusion"
	"github.com/vectorkit/vectorkit/internal/query"
	"github.com/vectorkit/vectorkit/internal/service"
)

type searchRequest struct {
	Values          []float32 `json:"values"`
	TopK            int       `json:"top_k"`
	Filter          string    `json:"filter,omitempty"`
	IncludeContent  bool      `json:"include_content,omitempty"`
	IncludeMetadata bool      `json:"include_metadata,omitempty"`
	Deduplicate     bool      `json:"deduplicate,omitempty"`
	GroupByDocument bool      `json:"group_by_document,omitempty"`
	MinScore        *float64  `json:"min_score,omitempty"`
}

func (req searchRequest) toOptions() (query.Options, error) {
	opts := query.Options{
		TopK:            req.TopK,
		IncludeContent:  req.IncludeContent,
		IncludeMetadata: req.IncludeMetadata,
		Deduplicate:     req.Deduplicate,
		GroupByDocument: req.GroupByDocument,
		MinScore:        req.MinScore,
	}
	if req.Filter != "" {
		expr, err := filter.ParseSQL(req.Filter)
		if err != nil {
			return query.Options{}, err
		}
		opts.Filter = expr
	}
	return opts, nil
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req searchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	opts, err := req.toOptions()
	if err != nil {
		writeError(w, r, err)
		return
	}

	results, stats, err := s.svc.Search(r.Context(), id, req.Values, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results, "stats": stats})
}

type searchTextRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

func (s *Server) handleSearchText(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req searchTextRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	hits, err := s.svc.SearchText(r.Context(), id, req.Query, req.TopK)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"hits": hits})
}

type searchHybridRequest struct {
	Values       []float32       `json:"values"`
	Query        string          `json:"query"`
	TopK         int             `json:"top_k"`
	Strategy     fusion.Strategy `json:"strategy,omitempty"`
	VectorWeight float64         `json:"vector_weight,omitempty"`
	TextWeight   float64         `json:"text_weight,omitempty"`
	Filter       string          `json:"filter,omitempty"`
}

func (s *Server) handleSearchHybrid(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req searchHybridRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	vecOpts := query.Options{TopK: req.TopK}
	if req.Filter != "" {
		expr, err := filter.ParseSQL(req.Filter)
		if err != nil {
			writeError(w, r, err)
			return
		}
		vecOpts.Filter = expr
	}

	results, err := s.svc.SearchHybrid(r.Context(), id, req.Values, service.HybridOptions{
		Vector:       vecOpts,
		QueryText:    req.Query,
		Strategy:     req.Strategy,
		VectorWeight: req.VectorWeight,
		TextWeight:   req.TextWeight,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}
