package converters

import (
	"github.com/alpine-maps/terrain_pager/internal/geometry"
)

// CoordinateConverter reprojects coordinates between EPSG reference systems.
// Implementations must be safe for concurrent use; the proj4 backed
// implementation serializes access internally.
type CoordinateConverter interface {
	ConvertCoordinateSrid(sourceSrid int, targetSrid int, coord geometry.Coordinate) (geometry.Coordinate, error)
	ConvertBoundingBoxSrid(bbox *geometry.BoundingBox, sourceSrid int, targetSrid int) (*geometry.BoundingBox, error)
	ConvertToWGS84Cartesian(coord geometry.Coordinate, sourceSrid int) (geometry.Coordinate, error)
	Cleanup()
}
