package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vectorkit/vectorkit/internal/model"
)

type createDatasetRequest struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Dimensions  int               `json:"dimensions"`
	Metric      model.Metric      `json:"metric"`
	IndexType   model.IndexType   `json:"index_type,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Overwrite   bool              `json:"overwrite,omitempty"`
}

func (s *Server) handleCreateDataset(w http.ResponseWriter, r *http.Request) {
	var req createDatasetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	spec := model.DatasetSpec{
		TenantID:    tenantFromContext(r.Context()),
		Name:        req.Name,
		Description: req.Description,
		Dimensions:  req.Dimensions,
		Metric:      req.Metric,
		IndexType:   req.IndexType,
		Metadata:    req.Metadata,
		Overwrite:   req.Overwrite,
	}
	ds, err := s.svc.CreateDataset("", spec)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ds)
}

func (s *Server) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	datasets, err := s.svc.ListDatasets(tenantFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"datasets": datasets})
}

func (s *Server) handleGetDataset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ds, err := s.svc.GetDataset(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ds)
}

func (s *Server) handleDatasetStats(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	stats, err := s.svc.DatasetStats(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleDeleteDataset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.svc.DeleteDataset(id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": "deleted"})
}
