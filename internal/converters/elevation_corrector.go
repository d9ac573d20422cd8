package converters

// ElevationCorrector adjusts a raw elevation sample given its geodetic
// position. Corrections are applied while tile rasters are ingested, before
// anything downstream observes the values.
type ElevationCorrector interface {
	CorrectElevation(lon, lat, z float64) float64
}
