package models

import "time"

// Activity is a completed ride. It is immutable once stored.
type Activity struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Route        string     `json:"route,omitempty"`
	DistanceKm   float64    `json:"distance_km"`
	DurationSec  int64      `json:"duration_sec"`
	AvgKmh       float64    `json:"avg_kmh"`
	StartTime    string     `json:"start_time"`
	Path         []Position `json:"path"`
	Notes        string     `json:"notes"`
	Private      bool       `json:"private"`
	PointsEarned int        `json:"points_earned"`
}

// StartedAt parses StartTime. The zero time is returned for malformed values.
func (a *Activity) StartedAt() time.Time {
	t, err := time.Parse(time.RFC3339Nano, a.StartTime)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

// Day returns the UTC calendar day of the start time (YYYY-MM-DD).
func (a *Activity) Day() string {
	if t := a.StartedAt(); !t.IsZero() {
		return t.Format(time.DateOnly)
	}
	if len(a.StartTime) >= 10 {
		return a.StartTime[:10]
	}
	return ""
}

// Clone returns a deep copy so callers can't alias the stored path.
func (a *Activity) Clone() *Activity {
	if a == nil {
		return nil
	}
	c := *a
	if a.Path != nil {
		c.Path = make([]Position, len(a.Path))
		copy(c.Path, a.Path)
	}
	return &c
}

// ExportFile is an encoded activity ready for download.
type ExportFile struct {
	Name        string
	ContentType string
	Data        []byte
}
