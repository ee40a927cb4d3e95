package microservices

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Temutjin2k/govv-tracker/config"
	"github.com/Temutjin2k/govv-tracker/internal/adapter/http/handler"
	httpserver "github.com/Temutjin2k/govv-tracker/internal/adapter/http/server"
	rabbitadapter "github.com/Temutjin2k/govv-tracker/internal/adapter/rabbit"
	redisadapter "github.com/Temutjin2k/govv-tracker/internal/adapter/redis"
	"github.com/Temutjin2k/govv-tracker/internal/domain/models"
	"github.com/Temutjin2k/govv-tracker/internal/domain/types"
	"github.com/Temutjin2k/govv-tracker/internal/service/activity"
	"github.com/Temutjin2k/govv-tracker/internal/service/gamification"
	"github.com/Temutjin2k/govv-tracker/pkg/logger"
	wrap "github.com/Temutjin2k/govv-tracker/pkg/logger/wrapper"
	"github.com/Temutjin2k/govv-tracker/pkg/rabbit"
)

const standingWorkerServiceName = "govv-standing-worker"

// StandingWorker recomputes the standing whenever an activity is announced.
type StandingWorker struct {
	store      activity.Store
	redis      *goredis.Client
	rabbit     *rabbit.RabbitMQ
	consumer   *rabbitadapter.StandingConsumer
	engine     *gamification.Engine
	activities *activity.Service
	httpServer *httpserver.API

	cfg config.Config
	log logger.Logger
}

func NewStandingWorker(ctx context.Context, cfg config.Config, log logger.Logger) (*StandingWorker, error) {
	w := &StandingWorker{cfg: cfg, log: log}

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "failed to open activity store", err)
		return nil, err
	}
	w.store = store

	var opts []activity.Option

	w.redis, err = redisadapter.Connect(ctx, cfg.Redis)
	if err != nil {
		log.Error(ctx, "failed to connect to redis", err)
		w.close(ctx)
		return nil, err
	}
	if w.redis != nil {
		opts = append(opts, activity.WithStandingCache(redisadapter.NewStandingCache(w.redis, cfg.Redis.StandingTTL)))
	} else {
		log.Warn(ctx, "redis is not configured, refreshed standings are only logged")
	}

	w.rabbit, err = rabbit.New(ctx, cfg.RabbitMQ.GetDSN(), log, rabbit.WithConnectionName(standingWorkerServiceName))
	if err != nil {
		log.Error(ctx, "failed to connect to rabbitmq", err)
		w.close(ctx)
		return nil, err
	}
	w.consumer = rabbitadapter.NewStandingConsumer(w.rabbit, cfg.RabbitMQ.Prefetch, log)

	w.engine = gamification.New(cfg.Gamification.Policy)
	w.activities = activity.NewService(store, w.engine, log, opts...)

	w.httpServer, err = httpserver.New(cfg, &httpserver.Handlers{
		Health: handler.NewHealth(standingWorkerServiceName, string(cfg.Store.Driver), log),
	}, nil, log)
	if err != nil {
		log.Error(ctx, "failed to setup http server", err)
		w.close(ctx)
		return nil, err
	}

	return w, nil
}

func (w *StandingWorker) Start(ctx context.Context) error {
	errCh := make(chan error, 2)

	consumeCtx, stopConsume := context.WithCancel(ctx)
	defer stopConsume()

	go func() {
		if err := w.consumer.Consume(consumeCtx, w.refresh); err != nil {
			errCh <- err
		}
	}()

	w.httpServer.Run(ctx, errCh)
	defer func() {
		stopConsume()
		w.close(ctx)
		w.log.Info(ctx, "standing worker closed")
	}()

	// Waiting signal
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	w.log.Info(ctx, "standing worker started", "addr", w.cfg.HTTP.Addr(), "store", w.cfg.Store.Driver)

	select {
	case errRun := <-errCh:
		return errRun
	case sig := <-shutdownCh:
		w.log.Info(ctx, "shuting down application", "signal", sig.String())
		return nil
	}
}

// refresh rebuilds the standing after msg and reports a level change.
func (w *StandingWorker) refresh(ctx context.Context, msg models.ActivityCreatedMessage) error {
	ctx = wrap.WithAction(ctx, types.ActionStandingRefreshed)

	st, err := w.activities.RefreshStanding(ctx)
	if err != nil {
		return fmt.Errorf("refresh standing: %w", err)
	}

	w.log.Info(ctx, "standing refreshed",
		"total_rides", st.TotalRides,
		"total_points", st.TotalPoints,
		"level", st.Level,
		"streak_days", st.CurrentStreakDays,
	)

	if before := w.engine.LevelForPoints(max(st.TotalPoints-msg.PointsEarned, 0)); st.Level > before {
		w.log.Info(wrap.WithAction(ctx, types.ActionLevelUp), "rider levelled up",
			"from", before, "to", st.Level, "next_level_at", st.NextLevelAt)
	}

	return nil
}

func (w *StandingWorker) close(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if w.httpServer != nil {
		if err := w.httpServer.Stop(ctx); err != nil {
			w.log.Warn(ctx, "failed to gracefully close http server", "error", err.Error())
		}
	}
	if w.rabbit != nil {
		if err := w.rabbit.Close(ctx); err != nil {
			w.log.Warn(wrap.WithAction(ctx, types.ActionRabbitConnectionClosing), "failed to close rabbitmq", "error", err.Error())
		}
	}
	if w.redis != nil {
		if err := w.redis.Close(); err != nil {
			w.log.Warn(ctx, "failed to close redis", "error", err.Error())
		}
	}
	if w.store != nil {
		if err := w.store.Close(); err != nil {
			w.log.Warn(ctx, "failed to close activity store", "error", err.Error())
		}
	}
}
