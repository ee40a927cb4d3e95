package models

import (
	"time"

	"github.com/Temutjin2k/govv-tracker/internal/domain/types"
)

// SessionSnapshot is a point-in-time copy of a ride session.
type SessionSnapshot struct {
	ID              string             `json:"id"`
	RiderID         string             `json:"rider_id"`
	Source          types.SourceKind   `json:"source"`
	State           types.SessionState `json:"state"`
	Samples         int                `json:"samples"`
	DistanceKm      float64            `json:"distance_km"`
	AvgKmh          float64            `json:"avg_kmh"`
	ActiveSec       float64            `json:"active_sec"`
	StartedAt       *time.Time         `json:"started_at,omitempty"`
	LastSample      *Position          `json:"last_sample,omitempty"`
	PendingActivity string             `json:"pending_activity,omitempty"`
}

// SessionOptions are the caller supplied parts of a future activity record.
type SessionOptions struct {
	Name    string
	Notes   string
	Private bool
}
