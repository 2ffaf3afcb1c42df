package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/vectorkit/vectorkit/internal/ratelimit"
)

// rateLimited enforces op's quota for the request's tenant, setting
// X-RateLimit-* headers on every response and Retry-After on denial.
func (s *Server) rateLimited(op ratelimit.Operation, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID := tenantFromContext(r.Context())
		decision, err := s.svc.CheckRateLimit(r.Context(), tenantID, op)

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(decision.RetryAfter).Unix(), 10))

		if err != nil {
			writeError(w, r, err)
			return
		}
		next(w, r)
	}
}
