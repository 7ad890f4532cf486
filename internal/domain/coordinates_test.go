package domain

import (
	"math"
	"testing"
)

func TestDistanceZeroForIdenticalPoints(t *testing.T) {
	points := []Coordinates{
		{Lat: 0, Lon: 0},
		{Lat: -23.5505, Lon: -46.6333},
		{Lat: 89.9, Lon: 179.9},
	}

	for _, p := range points {
		if d := Distance(p, p); math.Abs(d) > 1e-9 {
			t.Errorf("Distance(%v, %v) = %v, want 0", p, p, d)
		}
	}
}

func TestDistanceSymmetry(t *testing.T) {
	pairs := [][2]Coordinates{
		{{Lat: -23.5505, Lon: -46.6333}, {Lat: -22.9068, Lon: -43.1729}},
		{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}},
		{{Lat: 51.5074, Lon: -0.1278}, {Lat: 40.7128, Lon: -74.0060}},
	}

	for _, pair := range pairs {
		ab := Distance(pair[0], pair[1])
		ba := Distance(pair[1], pair[0])
		if math.Abs(ab-ba) > 1e-9 {
			t.Errorf("Distance not symmetric for %v: %v vs %v", pair, ab, ba)
		}
	}
}

func TestDistanceKnownValue(t *testing.T) {
	// One degree of longitude along the equator is exactly R * pi/180.
	a := Coordinates{Lat: 0, Lon: 0}
	b := Coordinates{Lat: 0, Lon: 1}

	want := earthRadiusKm * math.Pi / 180
	got := Distance(a, b)

	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("Distance(equator 1 degree) = %v, want %v", got, want)
	}
}

func TestDistanceMonotonicWithSeparation(t *testing.T) {
	origin := Coordinates{Lat: 0, Lon: 0}

	prev := 0.0
	for deg := 1; deg <= 10; deg++ {
		d := Distance(origin, Coordinates{Lat: 0, Lon: float64(deg)})
		if d <= prev {
			t.Fatalf("distance at %d degrees (%v) not greater than at %d (%v)", deg, d, deg-1, prev)
		}
		prev = d
	}
}

func TestCoordinatesValid(t *testing.T) {
	valid := []Coordinates{
		{Lat: 0, Lon: 0},
		{Lat: -90, Lon: 180},
		{Lat: 90, Lon: -180},
	}
	for _, c := range valid {
		if !c.Valid() {
			t.Errorf("expected %v to be valid", c)
		}
	}

	invalid := []Coordinates{
		{Lat: 90.1, Lon: 0},
		{Lat: 0, Lon: -180.5},
		{Lat: -91, Lon: 200},
	}
	for _, c := range invalid {
		if c.Valid() {
			t.Errorf("expected %v to be invalid", c)
		}
	}
}
