package models

// Badge is an achievement earned by a rider. Badges are never revoked.
type Badge struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Standing is derived from the full activity history.
type Standing struct {
	TotalRides        int     `json:"total_rides"`
	TotalPoints       int     `json:"total_points"`
	TotalKm           float64 `json:"total_km"`
	Level             int     `json:"level"`
	NextLevelAt       int     `json:"next_level_at"`
	CurrentStreakDays int     `json:"current_streak_days"`
	Badges            []Badge `json:"badges"`
}
