package models

import (
	"math"
	"time"

	"github.com/Temutjin2k/govv-tracker/pkg/geo"
)

// Position is one timestamped sample. T is seconds since the Unix epoch.
type Position struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
	T   float64 `json:"t"`
}

// NewPosition builds a Position stamped with at.
func NewPosition(lat, lng float64, at time.Time) Position {
	return Position{Lat: lat, Lng: lng, T: UnixSeconds(at)}
}

// Time returns the sample timestamp.
func (p Position) Time() time.Time {
	sec, frac := math.Modf(p.T)
	return time.Unix(int64(sec), int64(math.Round(frac*1e9))).UTC()
}

// Valid reports whether the coordinates are finite and in range.
func (p Position) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lng, 0) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// UnixSeconds converts t to fractional seconds since the epoch.
func UnixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

// PathDistance sums the great-circle distance between consecutive samples.
func PathDistance(path []Position) float64 {
	var total float64
	for i := 1; i < len(path); i++ {
		total += geo.Distance(path[i-1].Lat, path[i-1].Lng, path[i].Lat, path[i].Lng)
	}
	return total
}
