package geo

import (
	"math"
	"testing"
)

func TestDistanceSamePoint(t *testing.T) {
	if d := Distance(12.9716, 77.5946, 12.9716, 77.5946); d != 0 {
		t.Fatalf("distance to self = %v, want 0", d)
	}
}

func TestDistanceSymmetric(t *testing.T) {
	pairs := [][4]float64{
		{12.9716, 77.5946, 12.9721, 77.5950},
		{0, 0, 0, 1},
		{-33.8688, 151.2093, 51.5074, -0.1278},
		{89.9, 10, -89.9, -170},
		{10, 20, -10, -160},
		{33.3, 44.7, -33.3, -135.3},
	}
	for _, p := range pairs {
		ab := Distance(p[0], p[1], p[2], p[3])
		ba := Distance(p[2], p[3], p[0], p[1])
		if math.Abs(ab-ba) > 1e-9 {
			t.Fatalf("asymmetric distance for %v: %v vs %v", p, ab, ba)
		}
		if math.IsNaN(ab) || ab < 0 {
			t.Fatalf("distance for %v = %v, want a finite non-negative value", p, ab)
		}
	}
}

func TestDistanceKnownValues(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want, tolerance        float64
	}{
		{"one degree of longitude at equator", 0, 0, 0, 1, 111.195, 0.01},
		{"one degree of latitude", 10, 20, 11, 20, 111.195, 0.01},
		{"sydney to london", -33.8688, 151.2093, 51.5074, -0.1278, 16994, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Fatalf("Distance = %v, want %v ± %v", got, tt.want, tt.tolerance)
			}
		})
	}
}

func TestDistanceNaN(t *testing.T) {
	if d := Distance(math.NaN(), 0, 0, 0); !math.IsNaN(d) {
		t.Fatalf("expected NaN, got %v", d)
	}
}

func TestDistanceAntipodesIsHalfCircumference(t *testing.T) {
	want := math.Pi * EarthRadiusKm
	for _, p := range [][4]float64{
		{10, 20, -10, -160},
		{0, 0, 0, 180},
		{45, 90, -45, -90},
	} {
		got := Distance(p[0], p[1], p[2], p[3])
		if math.IsNaN(got) || math.Abs(got-want) > 0.01 {
			t.Fatalf("Distance(%v) = %v, want %v", p, got, want)
		}
	}
}
