package geo

import (
	"math"
	"testing"
)

func TestHaversine(t *testing.T) {
	tests := []struct {
		name              string
		lat1, lon1        float64
		lat2, lon2        float64
		wantMeters        float64
		tolerancePercent  float64
	}{
		{
			name:     "Singapore CBD to Changi Airport",
			lat1:     1.2830, lon1: 103.8513, // Raffles Place
			lat2:     1.3644, lon2: 103.9915, // Changi Airport
			wantMeters:       18_023, // ~18 km great-circle
			tolerancePercent: 1,
		},
		{
			name:     "Same point",
			lat1:     1.3521, lon1: 103.8198,
			lat2:     1.3521, lon2: 103.8198,
			wantMeters:       0,
			tolerancePercent: 0,
		},
		{
			name:     "London to Paris",
			lat1:     51.5074, lon1: -0.1278,
			lat2:     48.8566, lon2: 2.3522,
			wantMeters:       343_500, // ~343.5 km
			tolerancePercent: 1,
		},
		{
			name:     "Short distance (~100m)",
			lat1:     1.3521, lon1: 103.8198,
			lat2:     1.3530, lon2: 103.8198,
			wantMeters:       100,
			tolerancePercent: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Haversine(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if tt.wantMeters == 0 {
				if got != 0 {
					t.Errorf("expected 0, got %f", got)
				}
				return
			}
			diff := math.Abs(got-tt.wantMeters) / tt.wantMeters * 100
			if diff > tt.tolerancePercent {
				t.Errorf("Haversine = %f m, want ~%f m (diff %.1f%%)", got, tt.wantMeters, diff)
			}
		})
	}
}

func TestRoundMeters(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"rounds down", 4.4, 4},
		{"rounds up", 4.5, 5},
		{"clamps zero to one", 0, 1},
		{"clamps sub-meter to one", 0.2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RoundMeters(tt.in); got != tt.want {
				t.Errorf("RoundMeters(%f) = %f, want %f", tt.in, got, tt.want)
			}
		})
	}
}

func BenchmarkHaversine(b *testing.B) {
	for b.Loop() {
		Haversine(1.3521, 103.8198, 1.2905, 103.8520)
	}
}
