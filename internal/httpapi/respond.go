package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/vectorkit/vectorkit/internal/apperrors"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		fmt.Printf("httpapi: failed to encode response: %v\n", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetReqID(r.Context())
	ae, ok := err.(*apperrors.Error)
	if !ok {
		ae = apperrors.Internal(err.Error(), err)
	}
	envelope := apperrors.ToEnvelope(ae, requestID)
	if ae.Code == apperrors.CodeRateLimitExceeded {
		if retryAfter, ok := ae.Details["retry_after_seconds"]; ok {
			w.Header().Set("Retry-After", retryAfter)
		}
	}
	writeJSON(w, ae.HTTPStatus(), envelope)
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return apperrors.Validation("request body is required")
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.Validation(fmt.Sprintf("invalid request body: %v", err))
	}
	return nil
}
