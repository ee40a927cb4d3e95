package activity

import (
	"context"

	"github.com/Temutjin2k/govv-tracker/internal/domain/models"
	"github.com/Temutjin2k/govv-tracker/internal/domain/types"
)

// Store persists activity records.
// Append fails with types.ErrActivityExists for a duplicate id; Get fails with
// types.ErrActivityNotFound; List is most-recent-first by start time.
type Store interface {
	Append(ctx context.Context, a *models.Activity) (string, error)
	Get(ctx context.Context, id string) (*models.Activity, error)
	List(ctx context.Context, limit, offset int) ([]models.Activity, error)
	Close() error
}

// Publisher announces stored activities.
type Publisher interface {
	PublishActivityCreated(ctx context.Context, msg models.ActivityCreatedMessage) error
}

// StandingCache keeps the last computed standing. Get returns (nil, nil) on a miss.
type StandingCache interface {
	Get(ctx context.Context) (*models.Standing, error)
	Set(ctx context.Context, st *models.Standing) error
	Invalidate(ctx context.Context) error
}

// Geocoder labels a ride with a human readable place name.
type Geocoder interface {
	RouteLabel(ctx context.Context, lat, lng float64) (string, error)
}

// Exporter encodes an activity into a download format.
type Exporter interface {
	Export(a *models.Activity, format types.ExportFormat) (*models.ExportFile, error)
}
