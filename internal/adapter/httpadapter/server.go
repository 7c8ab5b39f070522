package httpadapter

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/notam-briefing-service/internal/pipeline"
)

// BriefingService produces briefings; *pipeline.Briefer implements it.
type BriefingService interface {
	Brief(ctx context.Context, req pipeline.BriefingRequest) (pipeline.Briefing, error)
}

// Server exposes the NOTAM API alongside health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	fetcher    pipeline.NotamFetcher
	briefer    BriefingService
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the /v1 API routes and /healthz,
// /readyz, and /metrics.
func NewServer(addr string, ready sharedobs.ReadinessChecker, fetcher pipeline.NotamFetcher, briefer BriefingService, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:        addr,
			Handler:     mux,
			ReadTimeout: 10 * time.Second,
			// Briefings wait on upstream sources and the summarizer.
			WriteTimeout: 2 * time.Minute,
			IdleTimeout:  60 * time.Second,
		},
		fetcher: fetcher,
		briefer: briefer,
		logger:  logger,
	}

	mux.HandleFunc("GET /v1/notams/{icao}", s.handleNotams)
	mux.HandleFunc("GET /v1/briefings/{icao}", s.handleBriefing)
	mux.HandleFunc("POST /v1/parse", s.handleParse)

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
