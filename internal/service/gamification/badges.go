package gamification

import "github.com/Temutjin2k/govv-tracker/internal/domain/models"

// BadgeRule is a pure predicate over a standing.
type BadgeRule struct {
	ID     string
	Name   string
	Earned func(models.Standing) bool
}

func ridesAtLeast(n int) func(models.Standing) bool {
	return func(s models.Standing) bool { return s.TotalRides >= n }
}

func kmAtLeast(km float64) func(models.Standing) bool {
	return func(s models.Standing) bool { return s.TotalKm >= km }
}

// DefaultBadges is the rule set used by New.
func DefaultBadges() []BadgeRule {
	return []BadgeRule{
		{ID: "first-ride", Name: "First Ride", Earned: func(s models.Standing) bool { return s.TotalRides == 1 }},
		{ID: "rides-10", Name: "10 Rides", Earned: ridesAtLeast(10)},
		{ID: "rides-50", Name: "50 Rides", Earned: ridesAtLeast(50)},
		{ID: "km-5", Name: "5 km Rider", Earned: kmAtLeast(5)},
		{ID: "km-100", Name: "100 km Rider", Earned: kmAtLeast(100)},
		{ID: "km-500", Name: "500 km Rider", Earned: kmAtLeast(500)},
	}
}
