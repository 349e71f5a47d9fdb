package geo

import (
	"math"
	"testing"
)

func TestDistanceKmBogota(t *testing.T) {
	// Two points ~0.1 degrees apart near Bogota, ~15.7 km
	d := DistanceKm(4.6, -74.1, 4.7, -74.2)
	if d < 15.5 || d > 15.9 {
		t.Fatalf("unexpected distance: %v", d)
	}
}

func TestDistanceKmSymmetry(t *testing.T) {
	pairs := [][4]float64{
		{4.6, -74.1, 4.7, -74.2},
		{-6.2, 106.816, -6.9175, 107.6191},
		{89.9, 10, -89.9, -170},
		{0, 179.9, 0, -179.9},
	}
	for _, p := range pairs {
		ab := DistanceKm(p[0], p[1], p[2], p[3])
		ba := DistanceKm(p[2], p[3], p[0], p[1])
		if ab != ba {
			t.Fatalf("distance not symmetric: %v vs %v", ab, ba)
		}
	}
}

func TestDistanceKmIdenticalPoints(t *testing.T) {
	if d := DistanceKm(4.6, -74.1, 4.6, -74.1); d != 0 {
		t.Fatalf("expected 0 for identical points, got %v", d)
	}
	if d := DistanceKm(90, 0, 90, 0); d != 0 {
		t.Fatalf("expected 0 at the pole, got %v", d)
	}
}

func TestDistanceKmAntipodal(t *testing.T) {
	// Pole to pole is half the circumference, ~20015.09 km
	d := DistanceKm(90, 0, -90, 0)
	if math.IsNaN(d) {
		t.Fatalf("antipodal distance is NaN")
	}
	if math.Abs(d-20015.09) > 0.01 {
		t.Fatalf("unexpected antipodal distance: %v", d)
	}
}

func TestDistanceKmDateLine(t *testing.T) {
	// Crossing the antimeridian should be a short hop, not a wrap-around
	d := DistanceKm(0, 179.9, 0, -179.9)
	if math.IsNaN(d) || d > 30 {
		t.Fatalf("unexpected date line distance: %v", d)
	}
}

func TestRounding(t *testing.T) {
	if Round2(15.704) != 15.7 {
		t.Fatalf("round2 failed")
	}
	if Round2(15.706) != 15.71 {
		t.Fatalf("round2 up failed")
	}
	if Round1(80.04) != 80.0 {
		t.Fatalf("round1 failed")
	}
	if Round1(80.06) != 80.1 {
		t.Fatalf("round1 up failed")
	}
}
