package models

import "time"

// ActivityCreatedMessage is published to the activity exchange after a record is stored.
type ActivityCreatedMessage struct {
	ActivityID    string    `json:"activity_id"`
	RiderID       string    `json:"rider_id"`
	DistanceKm    float64   `json:"distance_km"`
	PointsEarned  int       `json:"points_earned"`
	StartTime     string    `json:"start_time"`
	Timestamp     time.Time `json:"timestamp"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}
