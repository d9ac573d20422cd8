package geodata

import (
	"fmt"

	"github.com/alpine-maps/terrain_pager/internal/geometry"
	"github.com/alpine-maps/terrain_pager/internal/srs"
)

// equirectangular stand-in for the proj4 converter so tests need no cgo:
// projected coordinates are simply degrees scaled by meters per equatorial
// degree
type stubConverter struct {
	calls int
}

func (c *stubConverter) scale() float64 {
	return srs.WGS84Ellipsoid.MetersPerEquatorialDegree()
}

func (c *stubConverter) ConvertCoordinateSrid(sourceSrid int, targetSrid int, coord geometry.Coordinate) (geometry.Coordinate, error) {
	c.calls++
	if sourceSrid == targetSrid {
		return coord, nil
	}
	switch {
	case sourceSrid == 4326:
		return geometry.Coordinate{X: coord.X * c.scale(), Y: coord.Y * c.scale(), Z: coord.Z}, nil
	case targetSrid == 4326:
		return geometry.Coordinate{X: coord.X / c.scale(), Y: coord.Y / c.scale(), Z: coord.Z}, nil
	default:
		return geometry.Coordinate{}, fmt.Errorf("stub converter cannot map %d to %d", sourceSrid, targetSrid)
	}
}

func (c *stubConverter) ConvertBoundingBoxSrid(bbox *geometry.BoundingBox, sourceSrid int, targetSrid int) (*geometry.BoundingBox, error) {
	min, err := c.ConvertCoordinateSrid(sourceSrid, targetSrid, geometry.Coordinate{X: bbox.Xmin, Y: bbox.Ymin, Z: bbox.Zmin})
	if err != nil {
		return nil, err
	}
	max, err := c.ConvertCoordinateSrid(sourceSrid, targetSrid, geometry.Coordinate{X: bbox.Xmax, Y: bbox.Ymax, Z: bbox.Zmax})
	if err != nil {
		return nil, err
	}
	return geometry.NewBoundingBox(min.X, max.X, min.Y, max.Y, min.Z, max.Z), nil
}

func (c *stubConverter) ConvertToWGS84Cartesian(coord geometry.Coordinate, sourceSrid int) (geometry.Coordinate, error) {
	geo, err := c.ConvertCoordinateSrid(sourceSrid, 4326, coord)
	if err != nil {
		return geometry.Coordinate{}, err
	}
	x, y, z := srs.WGS84Ellipsoid.GeodeticToECEF(geo.X, geo.Y, geo.Z)
	return geometry.Coordinate{X: x, Y: y, Z: z}, nil
}

func (c *stubConverter) Cleanup() {}

// flat terrain at a fixed elevation
type constantTerrain struct {
	elevation float64
}

func (t constantTerrain) ResolveElevation(s *srs.SpatialReference, x, y float64) (float64, bool) {
	return t.elevation, true
}
