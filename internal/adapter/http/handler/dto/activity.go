package dto

import (
	"github.com/Temutjin2k/govv-tracker/internal/domain/models"
)

// CreateActivityRequest is an activity record without the server assigned fields.
// An id may be supplied to make a retried save idempotent.
type CreateActivityRequest struct {
	ID          string            `json:"id,omitempty"`
	Name        string            `json:"name"`
	Route       string            `json:"route,omitempty"`
	DistanceKm  float64           `json:"distance_km"`
	DurationSec int64             `json:"duration_sec"`
	AvgKmh      float64           `json:"avg_kmh"`
	StartTime   string            `json:"start_time"`
	Path        []models.Position `json:"path"`
	Notes       string            `json:"notes"`
	Private     bool              `json:"private"`
}

func (r *CreateActivityRequest) ToModel() *models.Activity {
	return &models.Activity{
		ID:          r.ID,
		Name:        r.Name,
		Route:       r.Route,
		DistanceKm:  r.DistanceKm,
		DurationSec: r.DurationSec,
		AvgKmh:      r.AvgKmh,
		StartTime:   r.StartTime,
		Path:        r.Path,
		Notes:       r.Notes,
		Private:     r.Private,
	}
}

type ActivityCreatedResponse struct {
	ID           string `json:"id"`
	PointsEarned int    `json:"points_earned"`
}
