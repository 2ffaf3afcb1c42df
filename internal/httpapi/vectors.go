package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vectorkit/vectorkit/internal/model"
)

type vectorPayload struct {
	ID         string         `json:"id,omitempty"`
	DocumentID string         `json:"document_id,omitempty"`
	ChunkID    string         `json:"chunk_id,omitempty"`
	ChunkIndex int            `json:"chunk_index,omitempty"`
	ChunkCount int            `json:"chunk_count,omitempty"`
	Values     []float32      `json:"values"`
	Content    string         `json:"content,omitempty"`
	Model      string         `json:"model,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

func (p vectorPayload) toModel() model.Vector {
	return model.Vector{
		ID:         p.ID,
		DocumentID: p.DocumentID,
		ChunkID:    p.ChunkID,
		ChunkIndex: p.ChunkIndex,
		ChunkCount: p.ChunkCount,
		Values:     p.Values,
		Content:    p.Content,
		Model:      p.Model,
		Metadata:   p.Metadata,
	}
}

type insertVectorsRequest struct {
	Vectors      []vectorPayload `json:"vectors"`
	SkipExisting bool            `json:"skip_existing,omitempty"`
	Overwrite    bool            `json:"overwrite,omitempty"`
}

func (s *Server) handleInsertVector(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var payload vectorPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := s.svc.InsertVectors(r.Context(), id, []model.Vector{payload.toModel()}, model.InsertOptions{})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleInsertVectorBatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req insertVectorsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	vectors := make([]model.Vector, len(req.Vectors))
	for i, v := range req.Vectors {
		vectors[i] = v.toModel()
	}

	result, err := s.svc.InsertVectors(r.Context(), id, vectors, model.InsertOptions{
		SkipExisting: req.SkipExisting,
		Overwrite:    req.Overwrite,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleGetVector(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	vid := chi.URLParam(r, "vid")
	v, err := s.svc.GetVector(id, vid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleUpdateVector(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	vid := chi.URLParam(r, "vid")

	var payload vectorPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}
	payload.ID = vid

	_, err := s.svc.InsertVectors(r.Context(), id, []model.Vector{payload.toModel()}, model.InsertOptions{Overwrite: true})
	if err != nil {
		writeError(w, r, err)
		return
	}
	v, err := s.svc.GetVector(id, vid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleDeleteVector(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	vid := chi.URLParam(r, "vid")
	if err := s.svc.DeleteVector(r.Context(), id, vid); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": vid, "status": "deleted"})
}
