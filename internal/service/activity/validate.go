package activity

import (
	"fmt"
	"strings"
	"time"

	"github.com/Temutjin2k/govv-tracker/internal/domain/models"
	"github.com/Temutjin2k/govv-tracker/internal/domain/types"
	"github.com/Temutjin2k/govv-tracker/pkg/validator"
)

const (
	maxNameLen  = 200
	maxNotesLen = 4000
	maxPathLen  = 100_000
)

// ValidationError lists the offending fields.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for k, v := range e.Fields {
		parts = append(parts, k+": "+v)
	}
	return fmt.Sprintf("%s: %s", types.ErrInvalidActivity, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return types.ErrInvalidActivity
}

// ValidateActivity checks a record at the persistence boundary.
func ValidateActivity(v *validator.Validator, a *models.Activity) {
	v.Check(strings.TrimSpace(a.Name) != "", "name", "must be provided")
	v.Check(len(a.Name) <= maxNameLen, "name", fmt.Sprintf("must not be more than %d bytes long", maxNameLen))
	v.Check(len(a.Notes) <= maxNotesLen, "notes", fmt.Sprintf("must not be more than %d bytes long", maxNotesLen))

	_, err := time.Parse(time.RFC3339Nano, a.StartTime)
	v.Check(err == nil, "start_time", "must be an ISO-8601 timestamp")

	v.Check(validator.Finite(a.DistanceKm) && a.DistanceKm >= 0, "distance_km", "must be a non-negative number")
	v.Check(a.DurationSec >= 0, "duration_sec", "must not be negative")
	v.Check(validator.Finite(a.AvgKmh) && a.AvgKmh >= 0, "avg_kmh", "must be a non-negative number")

	v.Check(len(a.Path) != 1, "path", "must contain at least 2 samples when provided")
	v.Check(len(a.Path) <= maxPathLen, "path", "too many samples")
	for i, p := range a.Path {
		if !p.Valid() {
			v.AddError("path", fmt.Sprintf("sample %d has invalid coordinates", i))
			break
		}
		if i > 0 && p.T <= a.Path[i-1].T {
			v.AddError("path", fmt.Sprintf("sample %d is not after the previous sample", i))
			break
		}
	}
}

// normalize recomputes derived figures so a stored record always satisfies
// distance == path sum and avg == distance / hours.
func normalize(a *models.Activity) {
	if len(a.Path) >= 2 {
		a.DistanceKm = models.PathDistance(a.Path)
	}
	if a.DurationSec > 0 {
		a.AvgKmh = a.DistanceKm / (float64(a.DurationSec) / 3600)
	} else {
		a.AvgKmh = 0
	}
	if a.Path == nil {
		a.Path = []models.Position{}
	}
}
