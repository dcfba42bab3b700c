package geo

import (
	"errors"
	"math"
	"testing"
)

func TestDistanceZeroForSamePoint(t *testing.T) {
	points := []Coordinate{
		{Lat: 0, Lon: 0},
		{Lat: 40.0, Lon: -73.0},
		{Lat: -90, Lon: 180},
		{Lat: 90, Lon: -180},
	}
	for _, p := range points {
		d, err := DistanceMetres(p, p)
		if err != nil {
			t.Fatalf("distance(%v, %v): %v", p, p, err)
		}
		if d != 0 {
			t.Errorf("distance(%v, %v) = %v, want 0", p, p, d)
		}
	}
}

func TestDistanceSymmetric(t *testing.T) {
	a := Coordinate{Lat: 40.0, Lon: -73.0}
	b := Coordinate{Lat: 51.5, Lon: -0.12}

	ab, err := DistanceMetres(a, b)
	if err != nil {
		t.Fatalf("distance a->b: %v", err)
	}
	ba, err := DistanceMetres(b, a)
	if err != nil {
		t.Fatalf("distance b->a: %v", err)
	}
	if ab != ba {
		t.Errorf("distance not symmetric: %v vs %v", ab, ba)
	}
}

func TestDistanceKnownValues(t *testing.T) {
	tests := []struct {
		name string
		a, b Coordinate
		want float64 // metres
		tol  float64
	}{
		{
			// One degree of latitude is ~111.2 km at this radius.
			name: "one degree latitude",
			a:    Coordinate{Lat: 40.0, Lon: -73.0},
			b:    Coordinate{Lat: 41.0, Lon: -73.0},
			want: 111195,
			tol:  50,
		},
		{
			name: "hundredth degree latitude",
			a:    Coordinate{Lat: 40.0, Lon: -73.0},
			b:    Coordinate{Lat: 40.01, Lon: -73.0},
			want: 1112,
			tol:  5,
		},
		{
			name: "equator quarter turn",
			a:    Coordinate{Lat: 0, Lon: 0},
			b:    Coordinate{Lat: 0, Lon: 90},
			want: math.Pi / 2 * EarthRadiusMetres,
			tol:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DistanceMetres(tt.a, tt.b)
			if err != nil {
				t.Fatalf("distance: %v", err)
			}
			if math.Abs(got-tt.want) > tt.tol {
				t.Errorf("distance = %v, want %v ± %v", got, tt.want, tt.tol)
			}
		})
	}
}

func TestValidateRejectsBadCoordinates(t *testing.T) {
	bad := []Coordinate{
		{Lat: 200, Lon: 0},
		{Lat: -91, Lon: 0},
		{Lat: 0, Lon: 181},
		{Lat: 0, Lon: -180.5},
		{Lat: math.NaN(), Lon: 0},
		{Lat: 0, Lon: math.Inf(1)},
		{Lat: math.Inf(-1), Lon: math.NaN()},
	}
	for _, c := range bad {
		if err := c.Validate(); !errors.Is(err, ErrInvalidCoordinate) {
			t.Errorf("Validate(%v) = %v, want ErrInvalidCoordinate", c, err)
		}
		if _, err := DistanceMetres(c, Coordinate{}); !errors.Is(err, ErrInvalidCoordinate) {
			t.Errorf("DistanceMetres(%v, origin) err = %v, want ErrInvalidCoordinate", c, err)
		}
		if _, err := DistanceMetres(Coordinate{}, c); !errors.Is(err, ErrInvalidCoordinate) {
			t.Errorf("DistanceMetres(origin, %v) err = %v, want ErrInvalidCoordinate", c, err)
		}
	}
}

func TestValidateAcceptsBoundaryCoordinates(t *testing.T) {
	good := []Coordinate{
		{Lat: 90, Lon: 180},
		{Lat: -90, Lon: -180},
		{Lat: 0, Lon: 0},
	}
	for _, c := range good {
		if err := c.Validate(); err != nil {
			t.Errorf("Validate(%v) = %v, want nil", c, err)
		}
	}
}
