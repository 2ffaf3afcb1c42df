package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/vectorkit/vectorkit/internal/apperrors"
)

type contextKey string

const tenantContextKey contextKey = "vectorkit.tenant_id"

// Authenticator validates an incoming request's credentials and resolves
// the calling tenant. Decoding the actual ApiKey/Bearer token is
// deployment-specific and out of scope here; callers supply whichever
// Authenticator matches their credential store.
type Authenticator interface {
	Authenticate(r *http.Request) (tenantID string, err error)
}

// StaticAuthenticator maps a fixed set of API keys to tenant ids, suitable
// for single-node deployments and tests.
type StaticAuthenticator struct {
	Keys map[string]string // api key -> tenant id
}

var _ Authenticator = StaticAuthenticator{}

func (a StaticAuthenticator) Authenticate(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", apperrors.Unauthenticated("missing Authorization header")
	}

	switch {
	case strings.HasPrefix(header, "ApiKey "):
		key := strings.TrimPrefix(header, "ApiKey ")
		if tenantID, ok := a.Keys[key]; ok {
			return tenantID, nil
		}
		return "", apperrors.Unauthenticated("unknown API key")
	case strings.HasPrefix(header, "Bearer "):
		token := strings.TrimPrefix(header, "Bearer ")
		if tenantID, ok := a.Keys[token]; ok {
			return tenantID, nil
		}
		return "", apperrors.Unauthenticated("unknown bearer token")
	default:
		return "", apperrors.Unauthenticated("unsupported Authorization scheme")
	}
}

// TrustedHeaderAuthenticator reads the tenant id directly from a header,
// for deployments where a gateway in front of vectorkit has already
// authenticated the caller and forwards the tenant identity.
type TrustedHeaderAuthenticator struct {
	Header string // defaults to X-Tenant-ID when empty
}

var _ Authenticator = TrustedHeaderAuthenticator{}

func (a TrustedHeaderAuthenticator) Authenticate(r *http.Request) (string, error) {
	header := a.Header
	if header == "" {
		header = "X-Tenant-ID"
	}
	tenantID := r.Header.Get(header)
	if tenantID == "" {
		return "", apperrors.Unauthenticated("missing " + header + " header")
	}
	return tenantID, nil
}

// authMiddleware resolves the caller's tenant via auth and stores it in
// the request context for downstream handlers.
func authMiddleware(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tenantID, err := auth.Authenticate(r)
			if err != nil {
				writeError(w, r, err)
				return
			}
			ctx := context.WithValue(r.Context(), tenantContextKey, tenantID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// tenantFromContext returns the authenticated tenant id for r's context.
func tenantFromContext(ctx context.Context) string {
	id, _ := ctx.Value(tenantContextKey).(string)
	return id
}
