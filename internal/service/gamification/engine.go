// Package gamification turns ride history into points, levels, streaks and badges.
package gamification

import (
	"math"
	"slices"
	"time"

	"github.com/Temutjin2k/govv-tracker/internal/domain/models"
	"github.com/Temutjin2k/govv-tracker/internal/domain/types"
)

// Engine applies one reward policy.
type Engine struct {
	policy types.RewardPolicy
	rules  []BadgeRule
}

// New returns an engine for policy with the default badge rules.
// An unknown policy falls back to PolicyBonus.
func New(policy types.RewardPolicy) *Engine {
	if !policy.Valid() {
		policy = types.PolicyBonus
	}
	return &Engine{policy: policy, rules: DefaultBadges()}
}

func (e *Engine) Policy() types.RewardPolicy {
	return e.policy
}

// PointsForRide returns the points a ride of distanceKm earns. Negative or NaN distance earns 0.
func (e *Engine) PointsForRide(distanceKm float64) int {
	if math.IsNaN(distanceKm) || distanceKm < 0 || math.IsInf(distanceKm, 0) {
		return 0
	}

	switch e.policy {
	case types.PolicyFlat:
		return int(math.Floor(distanceKm * 5))
	default:
		bonus := 10
		if distanceKm >= 5 {
			bonus = 50
		}
		return int(math.Floor(distanceKm*10)) + bonus
	}
}

// LevelForPoints returns the level reached with points.
func (e *Engine) LevelForPoints(points int) int {
	switch e.policy {
	case types.PolicyFlat:
		return max(1, points/100+1)
	default:
		return max(1, points/1000+1)
	}
}

// NextLevelAt returns the points needed for the level after the one reached with points.
func (e *Engine) NextLevelAt(points int) int {
	step := 1000
	if e.policy == types.PolicyFlat {
		step = 100
	}
	return e.LevelForPoints(points) * step
}

// StreakDays counts consecutive UTC days ending today present in days (YYYY-MM-DD).
// Zero when today has no activity.
func StreakDays(days map[string]struct{}, today time.Time) int {
	day := today.UTC()
	streak := 0
	for {
		if _, ok := days[day.Format(time.DateOnly)]; !ok {
			return streak
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
}

// Standing folds activities in chronological order. Badges are evaluated after every
// ride and accumulated, so a badge once earned is kept.
func (e *Engine) Standing(activities []models.Activity, now time.Time) models.Standing {
	ordered := slices.Clone(activities)
	slices.SortStableFunc(ordered, func(a, b models.Activity) int {
		return a.StartedAt().Compare(b.StartedAt())
	})

	var st models.Standing
	earned := make(map[string]bool)
	days := make(map[string]struct{}, len(ordered))

	for i := range ordered {
		a := &ordered[i]
		st.TotalRides++
		st.TotalPoints += a.PointsEarned
		if a.DistanceKm > 0 && !math.IsNaN(a.DistanceKm) {
			st.TotalKm += a.DistanceKm
		}
		if d := a.Day(); d != "" {
			days[d] = struct{}{}
		}

		for _, r := range e.rules {
			if !earned[r.ID] && r.Earned(st) {
				earned[r.ID] = true
				st.Badges = append(st.Badges, models.Badge{ID: r.ID, Name: r.Name})
			}
		}
	}

	if st.Badges == nil {
		st.Badges = []models.Badge{}
	}
	st.Level = e.LevelForPoints(st.TotalPoints)
	st.NextLevelAt = e.NextLevelAt(st.TotalPoints)
	st.CurrentStreakDays = StreakDays(days, now)

	return st
}
