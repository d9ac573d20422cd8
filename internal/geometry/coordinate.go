package geometry

// Coordinate is a raw 3D coordinate in an unspecified reference system.
// The interpretation of X, Y and Z (degrees vs meters, MSL vs ellipsoid)
// is up to the holder of the value.
type Coordinate struct {
	X float64
	Y float64
	Z float64
}
