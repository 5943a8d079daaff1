package portal

import (
	"net/http"
	"time"

	"github.com/intranet-tools/hr-knowledge-base/internal/analytics"
	"github.com/intranet-tools/hr-knowledge-base/pkg/health"
	"github.com/intranet-tools/hr-knowledge-base/pkg/metrics"
	"github.com/intranet-tools/hr-knowledge-base/pkg/middleware"
)

// NewRouter assembles the portal's HTTP routes with the standard middleware
// chain (request id, metrics, per-request timeout).
func NewRouter(
	h *Handler,
	statsHandler *analytics.Handler,
	checker *health.Checker,
	m *metrics.Metrics,
	requestTimeout time.Duration,
) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("POST /api/v1/search", h.Search)
	mux.HandleFunc("POST /api/v1/documents", h.Ingest)
	mux.HandleFunc("GET /api/v1/documents", h.List)
	mux.HandleFunc("GET /api/v1/documents/{id}", h.Get)
	mux.HandleFunc("DELETE /api/v1/documents/{id}", h.Delete)
	mux.HandleFunc("POST /api/v1/documents/{id}/reindex", h.Reindex)
	mux.HandleFunc("GET /api/v1/stats", h.Stats)
	if statsHandler != nil {
		mux.HandleFunc("GET /api/v1/analytics", statsHandler.Stats)
	}

	mux.Handle("GET /health/live", checker.LiveHandler())
	mux.Handle("GET /health/ready", checker.ReadyHandler())

	var handler http.Handler = mux
	handler = middleware.Timeout(requestTimeout)(handler)
	handler = middleware.Metrics(m)(handler)
	handler = middleware.RequestID(handler)
	return handler
}
