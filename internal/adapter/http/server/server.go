package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Temutjin2k/govv-tracker/config"
	"github.com/Temutjin2k/govv-tracker/internal/adapter/http/handler"
	"github.com/Temutjin2k/govv-tracker/internal/adapter/http/middleware"
	"github.com/Temutjin2k/govv-tracker/internal/domain/types"
	"github.com/Temutjin2k/govv-tracker/pkg/logger"
	wrap "github.com/Temutjin2k/govv-tracker/pkg/logger/wrapper"
)

type API struct {
	mode   types.ServiceMode
	mux    *http.ServeMux
	server *http.Server
	routes *Handlers
	m      *middleware.Middleware

	addr            string
	shutdownTimeout time.Duration
	log             logger.Logger
}

// Handlers are the route targets. Only Health is required; the tracker mode needs all of them.
type Handlers struct {
	Health   *handler.Health
	Activity *handler.Activity
	Session  *handler.Session
	Live     *handler.Live
}

func New(cfg config.Config, routes *Handlers, auth middleware.AuthService, logger logger.Logger) (*API, error) {
	if routes == nil || routes.Health == nil {
		return nil, errors.New("health handler is required")
	}
	if cfg.Mode == types.TrackerService && (routes.Activity == nil || routes.Session == nil || routes.Live == nil) {
		return nil, errors.New("tracker mode requires activity, session and live handlers")
	}

	api := &API{
		mode:            cfg.Mode,
		mux:             http.NewServeMux(),
		routes:          routes,
		m:               middleware.NewMiddleware(auth, logger),
		addr:            cfg.HTTP.Addr(),
		shutdownTimeout: cfg.HTTP.ShutdownTimeout,
		log:             logger,
	}
	if api.shutdownTimeout <= 0 {
		api.shutdownTimeout = 5 * time.Second
	}

	api.setupRoutes()

	api.server = &http.Server{
		Addr:              api.addr,
		Handler:           api.withMiddleware(),
		ReadHeaderTimeout: cfg.HTTP.ReadTimeout,
	}

	return api, nil
}

func (a *API) setupRoutes() {
	setupRoutes(a.mux, a.routes, a.mode, a.log)
}

// Handler returns the full middleware chain, mainly for tests.
func (a *API) Handler() http.Handler {
	return a.server.Handler
}

func (a *API) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, a.shutdownTimeout)
	defer cancel()
	ctx = wrap.WithAction(ctx, "http_server_stop")

	a.log.Debug(ctx, "shutting down HTTP server...", "address", a.addr)
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	a.log.Debug(ctx, "shutting down HTTP server completed")

	return nil
}

func (a *API) Run(ctx context.Context, errCh chan<- error) {
	go func() {
		ctx = wrap.WithAction(ctx, "http_server_start")
		a.log.Info(ctx, "started http server", "address", a.addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("failed to start HTTP server: %w", err)
			return
		}
	}()
}

// withMiddleware applies middlewares to the mux
func (a *API) withMiddleware() http.Handler {
	return a.m.Recover(a.m.RequestID(a.m.Metrics(string(a.mode))(a.m.Logging(a.m.Auth(a.mux)))))
}
