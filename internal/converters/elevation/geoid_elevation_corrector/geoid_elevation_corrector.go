package geoid_elevation_corrector

import (
	"github.com/alpine-maps/terrain_pager/internal/converters"
	"github.com/alpine-maps/terrain_pager/internal/srs"
)

// GeoidElevationCorrector lifts mean-sea-level elevations onto the reference
// ellipsoid using the undulation of the given vertical datum. Use this when
// the elevation source publishes MSL heights but the terrain engine works in
// ellipsoid heights.
type GeoidElevationCorrector struct {
	datum *srs.VerticalDatum
}

func NewGeoidElevationCorrector(datum *srs.VerticalDatum) converters.ElevationCorrector {
	return &GeoidElevationCorrector{
		datum: datum,
	}
}

func (c *GeoidElevationCorrector) CorrectElevation(lon, lat, z float64) float64 {
	return c.datum.MslToHae(lat, lon, z)
}
