package microservices

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Temutjin2k/govv-tracker/config"
	"github.com/Temutjin2k/govv-tracker/internal/adapter/export"
	"github.com/Temutjin2k/govv-tracker/internal/adapter/http/handler"
	httpserver "github.com/Temutjin2k/govv-tracker/internal/adapter/http/server"
	"github.com/Temutjin2k/govv-tracker/internal/adapter/locationIQ"
	rabbitadapter "github.com/Temutjin2k/govv-tracker/internal/adapter/rabbit"
	redisadapter "github.com/Temutjin2k/govv-tracker/internal/adapter/redis"
	"github.com/Temutjin2k/govv-tracker/internal/domain/types"
	"github.com/Temutjin2k/govv-tracker/internal/service/activity"
	"github.com/Temutjin2k/govv-tracker/internal/service/auth"
	"github.com/Temutjin2k/govv-tracker/internal/service/gamification"
	"github.com/Temutjin2k/govv-tracker/internal/service/tracker"
	"github.com/Temutjin2k/govv-tracker/pkg/logger"
	wrap "github.com/Temutjin2k/govv-tracker/pkg/logger/wrapper"
	"github.com/Temutjin2k/govv-tracker/pkg/rabbit"
	ws "github.com/Temutjin2k/govv-tracker/pkg/wshub"
)

const trackerServiceName = "govv-tracker"

type TrackerService struct {
	store      activity.Store
	redis      *goredis.Client
	rabbit     *rabbit.RabbitMQ
	hub        *ws.ConnectionHub
	bus        *redisadapter.Bus
	sessions   *tracker.Manager
	httpServer *httpserver.API

	cfg config.Config
	log logger.Logger
}

func NewTracker(ctx context.Context, cfg config.Config, log logger.Logger) (*TrackerService, error) {
	s := &TrackerService{cfg: cfg, log: log}

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "failed to open activity store", err)
		return nil, err
	}
	s.store = store

	opts := []activity.Option{activity.WithExporter(export.New())}

	s.redis, err = redisadapter.Connect(ctx, cfg.Redis)
	if err != nil {
		log.Error(ctx, "failed to connect to redis", err)
		s.close(ctx)
		return nil, err
	}
	if s.redis != nil {
		opts = append(opts, activity.WithStandingCache(redisadapter.NewStandingCache(s.redis, cfg.Redis.StandingTTL)))
	}

	if cfg.RabbitMQ.Enabled {
		s.rabbit, err = rabbit.New(ctx, cfg.RabbitMQ.GetDSN(), log, rabbit.WithConnectionName(trackerServiceName))
		if err != nil {
			log.Error(ctx, "failed to connect to rabbitmq", err)
			s.close(ctx)
			return nil, err
		}
		producer, err := rabbitadapter.NewActivityProducer(ctx, s.rabbit, log)
		if err != nil {
			log.Error(ctx, "failed to declare activity exchange", err)
			s.close(ctx)
			return nil, err
		}
		opts = append(opts, activity.WithPublisher(producer))
	}

	if key := cfg.ExternalAPI.LocationIQapiKey; key != "" {
		opts = append(opts, activity.WithGeocoder(locationIQ.New(key, cfg.ExternalAPI.LocationIQBaseURL, cfg.ExternalAPI.LocationIQTimeout)))
	}

	engine := gamification.New(cfg.Gamification.Policy)
	activities := activity.NewService(store, engine, log, opts...)

	s.hub = ws.NewConnHub(log)
	s.bus = redisadapter.NewBus(s.redis, s.hub, log)

	s.sessions = tracker.NewManager(tracker.Config{
		Simulated: tracker.SimulatedConfig{
			Interval: cfg.Tracker.SampleInterval,
			BaseLat:  cfg.Tracker.BaseLat,
			BaseLng:  cfg.Tracker.BaseLng,
			MaxStep:  cfg.Tracker.MaxStepDeg,
		},
		LiveEnabled:    cfg.Tracker.LiveEnabled,
		LiveAttachWait: cfg.Tracker.LiveAttachWait,
		IdleTTL:        cfg.Tracker.SessionIdleTTL,
	}, activities, s.bus, nil, log)

	routes := &httpserver.Handlers{
		Health:   handler.NewHealth(trackerServiceName, string(cfg.Store.Driver), log),
		Activity: handler.NewActivity(activities, log),
		Session:  handler.NewSession(s.sessions, log),
		Live:     handler.NewLive(s.sessions, s.hub, trackerServiceName, log),
	}

	s.httpServer, err = httpserver.New(cfg, routes, auth.NewTokenService(cfg.Auth.JWTSecret), log)
	if err != nil {
		log.Error(ctx, "failed to setup http server", err)
		s.close(ctx)
		return nil, err
	}

	return s, nil
}

func (s *TrackerService) Start(ctx context.Context) error {
	errCh := make(chan error, 2)

	busCtx, stopBus := context.WithCancel(ctx)
	defer stopBus()

	go func() {
		if err := s.bus.Run(busCtx); err != nil {
			errCh <- err
		}
	}()

	go s.sessions.Run(busCtx)

	s.httpServer.Run(ctx, errCh)
	defer func() {
		stopBus()
		s.close(ctx)
		s.log.Info(ctx, "tracker service closed")
	}()

	// Waiting signal
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	s.log.Info(wrap.WithAction(ctx, "service_started"), "tracker service started",
		"addr", s.cfg.HTTP.Addr(),
		"store", s.cfg.Store.Driver,
		"redis", s.redis != nil,
		"rabbitmq", s.rabbit != nil,
	)

	select {
	case errRun := <-errCh:
		return errRun
	case sig := <-shutdownCh:
		s.log.Info(ctx, "shuting down application", "signal", sig.String())
		return nil
	}
}

func (s *TrackerService) close(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Stop(ctx); err != nil {
			s.log.Warn(ctx, "failed to gracefully close http server", "error", err.Error())
		}
	}

	// recording sessions are dropped; their rides are not persisted
	if s.sessions != nil {
		s.sessions.Close()
	}
	if s.hub != nil {
		s.hub.Close()
	}

	if s.rabbit != nil {
		if err := s.rabbit.Close(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.log.Warn(wrap.WithAction(ctx, types.ActionRabbitConnectionClosing), "failed to close rabbitmq", "error", err.Error())
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.log.Warn(ctx, "failed to close redis", "error", err.Error())
		}
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.log.Warn(ctx, "failed to close activity store", "error", err.Error())
		}
	}
}
