package httpapi

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vectorkit/vectorkit/internal/apperrors"
	"github.com/vectorkit/vectorkit/internal/model"
)

type importRequest struct {
	Vectors      []vectorPayload `json:"vectors"`
	SkipExisting bool            `json:"skip_existing,omitempty"`
	Overwrite    bool            `json:"overwrite,omitempty"`
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req importRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	vectors := make([]model.Vector, len(req.Vectors))
	for i, v := range req.Vectors {
		vectors[i] = v.toModel()
	}

	job := s.svc.Import(r.Context(), tenantFromContext(r.Context()), id, vectors, model.InsertOptions{
		SkipExisting: req.SkipExisting,
		Overwrite:    req.Overwrite,
	})
	writeJSON(w, http.StatusAccepted, job)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	job := s.svc.Export(r.Context(), tenantFromContext(r.Context()), id)
	writeJSON(w, http.StatusAccepted, job)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "job_id")
	job, ok := s.svc.GetJob(id)
	if !ok {
		writeError(w, r, apperrors.NotFound(apperrors.CodeJobNotFound, "job "+id+" not found", nil))
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleExportDownload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "job_id")
	rc, err := s.svc.ExportDownload(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+id+`.json"`)
	io.Copy(w, rc)
}
