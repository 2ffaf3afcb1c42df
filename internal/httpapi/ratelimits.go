package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vectorkit/vectorkit/internal/apperrors"
	"github.com/vectorkit/vectorkit/internal/model"
)

func (s *Server) handleGetRateLimits(w http.ResponseWriter, r *http.Request) {
	s.writeTenantRateLimits(w, r, tenantFromContext(r.Context()))
}

func (s *Server) handleGetTenantRateLimits(w http.ResponseWriter, r *http.Request) {
	s.writeTenantRateLimits(w, r, chi.URLParam(r, "tenant"))
}

func (s *Server) writeTenantRateLimits(w http.ResponseWriter, r *http.Request, tenantID string) {
	t, ok := s.svc.Tenants().Get(tenantID)
	if !ok {
		writeError(w, r, apperrors.NotFound(apperrors.CodeTenantNotFound, "tenant "+tenantID+" not found", nil))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tenant_id": t.ID, "rate_limits": t.RateLimits})
}

type setRateLimitsRequest struct {
	Overrides map[string]model.RateLimitOverride `json:"overrides"`
}

func (s *Server) handleSetRateLimits(w http.ResponseWriter, r *http.Request) {
	s.setTenantRateLimits(w, r, tenantFromContext(r.Context()))
}

func (s *Server) handleSetTenantRateLimits(w http.ResponseWriter, r *http.Request) {
	s.setTenantRateLimits(w, r, chi.URLParam(r, "tenant"))
}

func (s *Server) setTenantRateLimits(w http.ResponseWriter, r *http.Request, tenantID string) {
	var req setRateLimitsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	registry := s.svc.Tenants()
	t, ok := registry.Get(tenantID)
	if !ok {
		t = &model.Tenant{ID: tenantID, Active: true}
	}
	t.RateLimits = req.Overrides
	registry.Put(t)
	writeJSON(w, http.StatusOK, map[string]any{"tenant_id": t.ID, "rate_limits": t.RateLimits})
}
