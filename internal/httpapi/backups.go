package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vectorkit/vectorkit/internal/apperrors"
	"github.com/vectorkit/vectorkit/internal/model"
)

type createBackupRequest struct {
	Type       model.BackupType  `json:"type"`
	DatasetIDs []string          `json:"dataset_ids,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

func (s *Server) handleCreateBackup(w http.ResponseWriter, r *http.Request) {
	var req createBackupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Type == "" {
		req.Type = model.BackupTypeFull
	}

	job := s.svc.CreateBackup(r.Context(), req.Type, tenantFromContext(r.Context()), req.DatasetIDs, req.Metadata)
	writeJSON(w, http.StatusAccepted, job)
}

func (s *Server) handleCancelBackup(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.svc.CancelJob(id) {
		writeError(w, r, apperrors.NotFound(apperrors.CodeBackupNotFound, "backup "+id+" not found or not running", nil))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": "cancelling"})
}

func (s *Server) handleListBackups(w http.ResponseWriter, r *http.Request) {
	records := s.svc.ListBackups(tenantFromContext(r.Context()))
	writeJSON(w, http.StatusOK, map[string]any{"backups": records})
}

func (s *Server) handleGetBackup(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	record, ok := s.svc.GetBackup(id)
	if !ok {
		writeError(w, r, apperrors.NotFound(apperrors.CodeBackupNotFound, "backup "+id+" not found", nil))
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleDeleteBackup(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.svc.DeleteBackup(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": "deleted"})
}

type restoreBackupRequest struct {
	TargetTenant      string            `json:"target_tenant,omitempty"`
	DatasetMapping    map[string]string `json:"dataset_mapping,omitempty"`
	OverwriteExisting bool              `json:"overwrite_existing,omitempty"`
	VerifyIntegrity   bool              `json:"verify_integrity,omitempty"`
	RestoreIndexes    bool              `json:"restore_indexes,omitempty"`
	RestoreMetadata   bool              `json:"restore_metadata,omitempty"`
}

func (s *Server) handleRestoreBackup(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req restoreBackupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	record, err := s.svc.RestoreBackup(r.Context(), id, model.RestoreOptions{
		TargetTenant:      req.TargetTenant,
		DatasetMapping:    req.DatasetMapping,
		OverwriteExisting: req.OverwriteExisting,
		VerifyIntegrity:   req.VerifyIntegrity,
		RestoreIndexes:    req.RestoreIndexes,
		RestoreMetadata:   req.RestoreMetadata,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}
