package geo

import (
	"errors"
	"math"
)

// EarthRadiusMetres is the mean Earth radius used for great-circle distances.
const EarthRadiusMetres = 6_371_000.0

// ErrInvalidCoordinate is returned for non-finite or out-of-range lat/lon.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Coordinate is a WGS84 point.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate reports whether the coordinate is finite and within
// lat [-90, 90], lon [-180, 180].
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) || math.IsNaN(c.Lon) || math.IsInf(c.Lon, 0) {
		return ErrInvalidCoordinate
	}
	if c.Lat < -90 || c.Lat > 90 || c.Lon < -180 || c.Lon > 180 {
		return ErrInvalidCoordinate
	}
	return nil
}

// DistanceMetres returns the great-circle distance between two points using
// the haversine formula on a spherical Earth. Symmetric in its arguments;
// zero iff the points are equal within floating epsilon.
func DistanceMetres(a, b Coordinate) (float64, error) {
	if err := a.Validate(); err != nil {
		return 0, err
	}
	if err := b.Validate(); err != nil {
		return 0, err
	}

	phi1 := radians(a.Lat)
	phi2 := radians(b.Lat)
	dPhi := radians(b.Lat - a.Lat)
	dLam := radians(b.Lon - a.Lon)

	sinPhi := math.Sin(dPhi / 2)
	sinLam := math.Sin(dLam / 2)
	h := sinPhi*sinPhi + math.Cos(phi1)*math.Cos(phi2)*sinLam*sinLam

	// 2*atan2 form is stable for antipodal and near-zero distances.
	angular := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusMetres * angular, nil
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
