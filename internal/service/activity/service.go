package activity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Temutjin2k/govv-tracker/internal/domain/models"
	"github.com/Temutjin2k/govv-tracker/internal/domain/types"
	"github.com/Temutjin2k/govv-tracker/internal/service/gamification"
	"github.com/Temutjin2k/govv-tracker/pkg/logger"
	wrap "github.com/Temutjin2k/govv-tracker/pkg/logger/wrapper"
	"github.com/Temutjin2k/govv-tracker/pkg/validator"
	"github.com/google/uuid"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 200
)

type Service struct {
	store     Store
	engine    *gamification.Engine
	geocoder  Geocoder
	publisher Publisher
	cache     StandingCache
	exporter  Exporter
	now       func() time.Time
	logger    logger.Logger
}

type Option func(*Service)

func WithGeocoder(g Geocoder) Option {
	return func(s *Service) { s.geocoder = g }
}

func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithStandingCache(c StandingCache) Option {
	return func(s *Service) { s.cache = c }
}

func WithExporter(e Exporter) Option {
	return func(s *Service) { s.exporter = e }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, engine *gamification.Engine, logger logger.Logger, opts ...Option) *Service {
	s := &Service{
		store:  store,
		engine: engine,
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates a, assigns id and points, stores it and announces it.
// Storing an id that already exists returns the stored record.
func (s *Service) Create(ctx context.Context, a *models.Activity) (*models.Activity, error) {
	const op = "Service.Create"
	ctx = wrap.WithAction(ctx, types.ActionActivityCreated)

	record := a.Clone()
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	ctx = wrap.WithActivityID(ctx, record.ID)

	v := validator.New()
	ValidateActivity(v, record)
	if !v.Valid() {
		return nil, &ValidationError{Fields: v.Errors}
	}

	normalize(record)
	record.PointsEarned = s.engine.PointsForRide(record.DistanceKm)

	if record.Route == "" && s.geocoder != nil && len(record.Path) > 0 {
		first := record.Path[0]
		route, err := s.geocoder.RouteLabel(ctx, first.Lat, first.Lng)
		if err != nil {
			s.logger.Warn(wrap.WithAction(ctx, types.ActionExternalServiceFailed), "failed to label route", "error", err.Error())
		} else {
			record.Route = route
		}
	}

	if _, err := s.store.Append(ctx, record); err != nil {
		if errors.Is(err, types.ErrActivityExists) {
			existing, getErr := s.store.Get(ctx, record.ID)
			if getErr != nil {
				return nil, wrap.Error(ctx, fmt.Errorf("%s: get existing: %w", op, getErr))
			}
			return existing, nil
		}
		return nil, wrap.Error(ctx, fmt.Errorf("%s: append: %w", op, err))
	}

	s.afterCreate(ctx, record)

	s.logger.Info(ctx, "activity stored",
		"distance_km", record.DistanceKm,
		"duration_sec", record.DurationSec,
		"points_earned", record.PointsEarned,
	)

	return record.Clone(), nil
}

// afterCreate runs side effects whose failure must not fail the create.
func (s *Service) afterCreate(ctx context.Context, a *models.Activity) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.Warn(wrap.WithAction(ctx, types.ActionCacheFailed), "failed to invalidate standing cache", "error", err.Error())
		}
	}

	if s.publisher != nil {
		msg := models.ActivityCreatedMessage{
			ActivityID:    a.ID,
			RiderID:       types.RiderFromContext(ctx),
			DistanceKm:    a.DistanceKm,
			PointsEarned:  a.PointsEarned,
			StartTime:     a.StartTime,
			Timestamp:     s.now().UTC(),
			CorrelationID: wrap.RequestID(ctx),
		}
		if err := s.publisher.PublishActivityCreated(ctx, msg); err != nil {
			s.logger.Warn(wrap.WithAction(ctx, types.ActionEventPublishFailed), "failed to publish activity event", "error", err.Error())
		}
	}
}

func (s *Service) Get(ctx context.Context, id string) (*models.Activity, error) {
	const op = "Service.Get"

	a, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

// List returns most-recent-first activities. limit <= 0 means the default; it is capped at MaxListLimit.
func (s *Service) List(ctx context.Context, limit, offset int) ([]models.Activity, error) {
	const op = "Service.List"

	if limit <= 0 {
		limit = DefaultListLimit
	}
	limit = min(limit, MaxListLimit)
	offset = max(offset, 0)

	items, err := s.store.List(ctx, limit, offset)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return items, nil
}

// Standing returns the cached standing or folds the full history.
func (s *Service) Standing(ctx context.Context) (*models.Standing, error) {
	if s.cache != nil {
		st, err := s.cache.Get(ctx)
		if err != nil {
			s.logger.Warn(wrap.WithAction(ctx, types.ActionCacheFailed), "failed to read standing cache", "error", err.Error())
		} else if st != nil {
			return st, nil
		}
	}

	return s.RefreshStanding(ctx)
}

// RefreshStanding recomputes the standing from the store and caches it.
func (s *Service) RefreshStanding(ctx context.Context) (*models.Standing, error) {
	const op = "Service.RefreshStanding"

	all, err := s.all(ctx)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	st := s.engine.Standing(all, s.now())

	if s.cache != nil {
		if err := s.cache.Set(ctx, &st); err != nil {
			s.logger.Warn(wrap.WithAction(ctx, types.ActionCacheFailed), "failed to store standing cache", "error", err.Error())
		}
	}

	return &st, nil
}

// CachedStanding returns the cached standing without computing one. Nil on a miss
// or when no cache is configured.
func (s *Service) CachedStanding(ctx context.Context) *models.Standing {
	if s.cache == nil {
		return nil
	}
	st, err := s.cache.Get(ctx)
	if err != nil {
		return nil
	}
	return st
}

func (s *Service) all(ctx context.Context) ([]models.Activity, error) {
	var out []models.Activity
	for offset := 0; ; offset += MaxListLimit {
		page, err := s.store.List(ctx, MaxListLimit, offset)
		if err != nil {
			return nil, err
		}
		out = append(out, page...)
		if len(page) < MaxListLimit {
			return out, nil
		}
	}
}

// Export encodes the activity as gpx, fit or csv.
func (s *Service) Export(ctx context.Context, id string, format types.ExportFormat) (*models.ExportFile, error) {
	const op = "Service.Export"
	ctx = wrap.WithLogCtx(ctx, wrap.LogCtx{Action: types.ActionActivityExported, ActivityID: id})

	if !format.Valid() || s.exporter == nil {
		return nil, fmt.Errorf("%s: %w: %q", op, types.ErrUnsupportedFormat, format)
	}

	a, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	file, err := s.exporter.Export(a, format)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	s.logger.Debug(ctx, "activity exported", "format", format, "bytes", len(file.Data))
	return file, nil
}
