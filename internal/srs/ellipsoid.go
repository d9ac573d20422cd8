package srs

import "math"

// Reference ellipsoid for geodetic computations.
type Ellipsoid struct {
	SemiMajorAxis float64
	SemiMinorAxis float64
}

// WGS84 reference ellipsoid.
var WGS84Ellipsoid = Ellipsoid{
	SemiMajorAxis: 6378137.0,
	SemiMinorAxis: 6356752.314245,
}

// Meters spanned by one degree of longitude at the given latitude.
func (e Ellipsoid) MetersPerDegreeAtLatitude(latDeg float64) float64 {
	return (math.Pi / 180.0) * e.SemiMajorAxis * math.Cos(latDeg*math.Pi/180.0)
}

// Meters spanned by one degree at the equator. Used to turn angular tile
// spans into linear world units for LOD range computations.
func (e Ellipsoid) MetersPerEquatorialDegree() float64 {
	return (math.Pi / 180.0) * e.SemiMajorAxis
}

// GeodeticToECEF converts geodetic lon/lat (degrees) and ellipsoid height
// (meters) into earth-centered earth-fixed cartesian coordinates.
func (e Ellipsoid) GeodeticToECEF(lonDeg, latDeg, height float64) (x, y, z float64) {
	lon := lonDeg * math.Pi / 180.0
	lat := latDeg * math.Pi / 180.0

	a := e.SemiMajorAxis
	b := e.SemiMinorAxis
	e2 := 1.0 - (b*b)/(a*a)

	sinLat := math.Sin(lat)
	cosLat := math.Cos(lat)
	n := a / math.Sqrt(1.0-e2*sinLat*sinLat)

	x = (n + height) * cosLat * math.Cos(lon)
	y = (n + height) * cosLat * math.Sin(lon)
	z = (n*(1.0-e2) + height) * sinLat
	return
}
