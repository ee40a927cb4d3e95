// Package app picks the service for the configured mode and runs it.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/Temutjin2k/govv-tracker/config"
	"github.com/Temutjin2k/govv-tracker/internal/app/microservices"
	"github.com/Temutjin2k/govv-tracker/internal/domain/types"
	"github.com/Temutjin2k/govv-tracker/pkg/logger"
	wrap "github.com/Temutjin2k/govv-tracker/pkg/logger/wrapper"
)

var (
	ErrInvalidMode           = errors.New("invalid mode")
	ErrServiceNotInitialized = errors.New("service not initialized")
)

type Service interface {
	Start(ctx context.Context) error
}

type builder func(ctx context.Context, cfg config.Config, log logger.Logger) (Service, error)

var builders = map[types.ServiceMode]builder{
	types.TrackerService: func(ctx context.Context, cfg config.Config, log logger.Logger) (Service, error) {
		return microservices.NewTracker(ctx, cfg, log)
	},
	types.StandingWorkerService: func(ctx context.Context, cfg config.Config, log logger.Logger) (Service, error) {
		return microservices.NewStandingWorker(ctx, cfg, log)
	},
}

type App struct {
	mode    types.ServiceMode
	service Service
	log     logger.Logger
}

// NewApplication builds the service for cfg.Mode. Connections to stores and brokers
// are opened here, so a misconfigured dependency fails before Run.
func NewApplication(ctx context.Context, cfg config.Config, log logger.Logger) (*App, error) {
	build, ok := builders[cfg.Mode]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, cfg.Mode)
	}

	ctx = wrap.WithAction(ctx, "app_init")
	service, err := build(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to init %s: %w", cfg.Mode, err)
	}

	return &App{mode: cfg.Mode, service: service, log: log}, nil
}

// Run blocks until the service stops on a signal or a fatal error.
func (a *App) Run(ctx context.Context) error {
	if a.service == nil {
		return ErrServiceNotInitialized
	}

	a.log.Info(wrap.WithAction(ctx, "app_run"), "starting service", "mode", a.mode)
	return a.service.Start(ctx)
}
