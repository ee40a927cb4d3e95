package microservices

import (
	"context"
	"fmt"

	"github.com/Temutjin2k/govv-tracker/config"
	"github.com/Temutjin2k/govv-tracker/internal/adapter/filestore"
	repo "github.com/Temutjin2k/govv-tracker/internal/adapter/postgres"
	"github.com/Temutjin2k/govv-tracker/internal/adapter/sqlite"
	"github.com/Temutjin2k/govv-tracker/internal/domain/types"
	"github.com/Temutjin2k/govv-tracker/internal/service/activity"
	"github.com/Temutjin2k/govv-tracker/pkg/logger"
	"github.com/Temutjin2k/govv-tracker/pkg/postgres"
	"github.com/Temutjin2k/govv-tracker/pkg/trm"
)

// openStore returns the activity store selected by STORE_DRIVER.
func openStore(ctx context.Context, cfg config.Config, log logger.Logger) (activity.Store, error) {
	switch cfg.Store.Driver {
	case types.StoreFile:
		s, err := filestore.Open(cfg.Store.FilePath)
		if err != nil {
			return nil, err
		}
		log.Info(ctx, "using file store", "path", cfg.Store.FilePath)
		return s, nil

	case types.StoreSQLite:
		s, err := sqlite.Open(ctx, cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.Info(ctx, "using sqlite store", "path", cfg.Store.SQLitePath)
		return s, nil

	case types.StorePostgres:
		db, err := postgres.New(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		if err := repo.Migrate(ctx, db.Pool); err != nil {
			db.Close()
			return nil, err
		}
		log.Info(ctx, "using postgres store", "host", cfg.Database.Host, "database", cfg.Database.Database)
		return repo.NewActivityRepo(db.Pool, trm.New(db.Pool), db.Close), nil
	}

	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}
