// Package http serves the dashboard views, chart images and workbook export
// over HTTP alongside the health, readiness and metrics endpoints.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/storm-dashboard/internal/dashboard"
	"github.com/couchcryptid/storm-dashboard/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DashboardService computes the per-year views.
type DashboardService interface {
	sharedobs.ReadinessChecker
	Years() []domain.YearOption
	DefaultYear() (int, bool)
	LoadedAt() time.Time
	Build(ctx context.Context, year int) (dashboard.Dashboard, error)
	Map(ctx context.Context, year int) ([]domain.StormTrack, error)
	Class(ctx context.Context, year int) ([]domain.ClassCount, error)
	Monthly(ctx context.Context, year int) ([]domain.MonthlySeries, error)
	Pressure(ctx context.Context, year int) ([]domain.PressureSeries, error)
}

// Server exposes the dashboard API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	service    DashboardService
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the /api/v1 routes and the
// /healthz, /readyz, and /metrics endpoints.
func NewServer(addr string, svc DashboardService, charts ChartRenderer, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		service: svc,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(svc))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/v1/years", s.handleYears)
	mux.HandleFunc("GET /api/v1/years/{year}", handleView(s, svc.Build))
	mux.HandleFunc("GET /api/v1/years/{year}/map", handleView(s, svc.Map))
	mux.HandleFunc("GET /api/v1/years/{year}/class", handleView(s, svc.Class))
	mux.HandleFunc("GET /api/v1/years/{year}/monthly", handleView(s, svc.Monthly))
	mux.HandleFunc("GET /api/v1/years/{year}/pressure", handleView(s, svc.Pressure))
	mux.HandleFunc("GET /api/v1/years/{year}/charts/map.png", handleChart(s, svc.Map, charts.Map))
	mux.HandleFunc("GET /api/v1/years/{year}/charts/class.png", handleChart(s, svc.Class, charts.Class))
	mux.HandleFunc("GET /api/v1/years/{year}/charts/monthly.png", handleChart(s, svc.Monthly, charts.Monthly))
	mux.HandleFunc("GET /api/v1/years/{year}/charts/pressure.png", handleChart(s, svc.Pressure, charts.Pressure))
	mux.HandleFunc("GET /api/v1/years/{year}/export.xlsx", s.handleExport)

	s.httpServer.Handler = requestLogger(logger, mux)
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
