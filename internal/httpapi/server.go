// Package httpapi exposes internal/service.Service over a chi-routed
// HTTP/JSON API under /api/v1.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/vectorkit/vectorkit/internal/config"
	"github.com/vectorkit/vectorkit/internal/ratelimit"
	"github.com/vectorkit/vectorkit/internal/service"
)

// Server wires HTTP handlers to a service.Service.
type Server struct {
	cfg    *config.Config
	svc    *service.Service
	router http.Handler
	logger *slog.Logger
}

// New constructs a Server. auth may be nil for deployments that terminate
// authentication upstream (e.g. a gateway); in that case every request is
// treated as belonging to the tenant named by the X-Tenant-ID header.
func New(cfg *config.Config, svc *service.Service, auth Authenticator, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if auth == nil {
		auth = TrustedHeaderAuthenticator{}
	}

	s := &Server{cfg: cfg, svc: svc, logger: logger}

	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(middleware.Logger)
	mux.Use(middleware.Recoverer)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.HTTPServer.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization", "X-Tenant-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	mux.Get("/health", s.handleHealth)
	mux.Get("/health/ready", s.handleHealthReady)
	mux.Get("/health/live", s.handleHealthLive)
	mux.Get("/metrics", s.handleMetrics)
	mux.Get("/metrics/prometheus", s.handleMetricsPrometheus)

	mux.Route("/api/v1", func(api chi.Router) {
		api.Use(authMiddleware(auth))

		api.Route("/datasets", func(r chi.Router) {
			r.Post("/", s.rateLimited(ratelimit.OperationCreateDataset, s.handleCreateDataset))
			r.Get("/", s.handleListDatasets)
			r.Get("/{id}", s.handleGetDataset)
			r.Get("/{id}/stats", s.handleDatasetStats)
			r.Delete("/{id}", s.handleDeleteDataset)

			r.Post("/{id}/vectors", s.handleInsertVector)
			r.Post("/{id}/vectors/batch", s.rateLimited(ratelimit.OperationBatchInsert, s.handleInsertVectorBatch))
			r.Get("/{id}/vectors/{vid}", s.handleGetVector)
			r.Put("/{id}/vectors/{vid}", s.handleUpdateVector)
			r.Delete("/{id}/vectors/{vid}", s.handleDeleteVector)

			r.Post("/{id}/search", s.rateLimited(ratelimit.OperationSearch, s.handleSearch))
			r.Post("/{id}/search/text", s.rateLimited(ratelimit.OperationSearch, s.handleSearchText))
			r.Post("/{id}/search/hybrid", s.rateLimited(ratelimit.OperationHybridSearch, s.handleSearchHybrid))

			r.Post("/{id}/index", s.rateLimited(ratelimit.OperationIndexBuild, s.handleCreateIndex))
			r.Get("/{id}/index", s.handleIndexStats)
			r.Delete("/{id}/index", s.handleDropIndex)

			r.Post("/{id}/import", s.rateLimited(ratelimit.OperationImport, s.handleImport))
			r.Post("/{id}/export", s.rateLimited(ratelimit.OperationExport, s.handleExport))
		})

		api.Get("/import/{job_id}", s.handleGetJob)
		api.Get("/export/{job_id}", s.handleGetJob)
		api.Get("/export/{job_id}/download", s.handleExportDownload)

		api.Route("/backups", func(r chi.Router) {
			r.Post("/", s.handleCreateBackup)
			r.Get("/", s.handleListBackups)
			r.Get("/{id}", s.handleGetBackup)
			r.Delete("/{id}", s.handleDeleteBackup)
			r.Post("/{id}/restore", s.handleRestoreBackup)
			r.Post("/{id}/cancel", s.handleCancelBackup)
		})

		api.Get("/rate-limits", s.handleGetRateLimits)
		api.Post("/rate-limits", s.handleSetRateLimits)
		api.Get("/admin/rate-limits/{tenant}", s.handleGetTenantRateLimits)
		api.Post("/admin/rate-limits/{tenant}", s.handleSetTenantRateLimits)
	})

	s.router = mux
	return s
}

// ServeHTTP satisfies http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
