package httpapi

import (
	"fmt"
	"net/http"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleHealthReady(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleHealthLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "live"})
}

// handleMetrics returns a minimal, unauthenticated JSON snapshot. Full metric
// collection (histograms, counters per operation) is out of scope; this
// surfaces only what internal/service already tracks.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	jobs := s.svc.ListJobs("")
	backups := s.svc.ListBackups("")
	writeJSON(w, http.StatusOK, map[string]any{
		"jobs_tracked":    len(jobs),
		"backups_tracked": len(backups),
	})
}

func (s *Server) handleMetricsPrometheus(w http.ResponseWriter, r *http.Request) {
	jobs := s.svc.ListJobs("")
	backups := s.svc.ListBackups("")
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	fmt.Fprintf(w, "vectorkit_jobs_tracked %d\n", len(jobs))
	fmt.Fprintf(w, "vectorkit_backups_tracked %d\n", len(backups))
}
