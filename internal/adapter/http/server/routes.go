package server

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/Temutjin2k/govv-tracker/docs"
	"github.com/Temutjin2k/govv-tracker/internal/domain/types"
	"github.com/Temutjin2k/govv-tracker/pkg/logger"
	wrap "github.com/Temutjin2k/govv-tracker/pkg/logger/wrapper"
)

// setupRoutes - setups http routes
func setupRoutes(mux *http.ServeMux, routes *Handlers, mode types.ServiceMode, log logger.Logger) {
	// System Health
	mux.HandleFunc("GET /health", routes.Health.HealthCheck)
	mux.HandleFunc("GET /api/health", routes.Health.HealthCheck)

	setupMetricsRoute(mux)

	switch mode {
	case types.TrackerService:
		setupSwaggerRoutes(mux)
		setupTrackerRoutes(mux, routes)
	case types.StandingWorkerService:
		// health and metrics only
	default:
		log.Warn(wrap.WithAction(context.Background(), "setup routes"), "unknown service mode", "mode", mode)
	}
}

// setupTrackerRoutes setups routes for the tracker API
func setupTrackerRoutes(mux *http.ServeMux, routes *Handlers) {
	mux.HandleFunc("POST /api/activities", routes.Activity.Create)
	mux.HandleFunc("GET /api/activities", routes.Activity.List)
	mux.HandleFunc("GET /api/activities/{id}", routes.Activity.Get)
	mux.HandleFunc("GET /api/activities/{id}/export", routes.Activity.Export)
	mux.HandleFunc("GET /api/standing", routes.Activity.Standing)

	mux.HandleFunc("POST /api/sessions", routes.Session.Create)
	mux.HandleFunc("GET /api/sessions/{id}", routes.Session.Get)
	mux.HandleFunc("DELETE /api/sessions/{id}", routes.Session.Delete)
	mux.HandleFunc("POST /api/sessions/{id}/start", routes.Session.Start)
	mux.HandleFunc("POST /api/sessions/{id}/pause", routes.Session.Pause)
	mux.HandleFunc("POST /api/sessions/{id}/resume", routes.Session.Resume)
	mux.HandleFunc("POST /api/sessions/{id}/stop", routes.Session.Stop)
	mux.HandleFunc("POST /api/sessions/{id}/save", routes.Session.Save)
	mux.HandleFunc("POST /api/sessions/{id}/samples", routes.Session.Push)

	mux.HandleFunc("GET /ws/sessions/{id}", routes.Live.HandleWS) // live samples
}

// setupSwaggerRoutes configures the Swagger UI endpoint
func setupSwaggerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/swagger/", httpSwagger.Handler(httpSwagger.InstanceName("tracker")))
}

// setupMetricsRoute configures the Prometheus metrics endpoint
func setupMetricsRoute(mux *http.ServeMux) {
	mux.Handle("GET /metrics", promhttp.Handler())
}
