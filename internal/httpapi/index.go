package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vectorkit/vectorkit/internal/index"
	"github.com/vectorkit/vectorkit/internal/model"
)

type createIndexRequest struct {
	IndexType      model.IndexType `json:"index_type"`
	M              int             `json:"m,omitempty"`
	EfConstruction int             `json:"ef_construction,omitempty"`
	Nlist          int             `json:"nlist,omitempty"`
}

func (s *Server) handleCreateIndex(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req createIndexRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	job := s.svc.CreateIndex(r.Context(), tenantFromContext(r.Context()), id, req.IndexType, index.BuildConfig{
		M:              req.M,
		EfConstruction: req.EfConstruction,
		Nlist:          req.Nlist,
	})
	writeJSON(w, http.StatusAccepted, job)
}

func (s *Server) handleIndexStats(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	stats, ok := s.svc.IndexStats(id)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"built": false})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleDropIndex(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.svc.DropIndex(id)
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": "dropped"})
}
