package proj4_coordinate_converter

import (
	"errors"
	"fmt"
	"math"
	"sync"

	proj "github.com/xeonx/proj4"

	"github.com/alpine-maps/terrain_pager/internal/converters"
	"github.com/alpine-maps/terrain_pager/internal/geometry"
	"github.com/alpine-maps/terrain_pager/internal/srs"
)

const toRadians = math.Pi / 180.0
const toDegrees = 180.0 / math.Pi

type epsgProjection struct {
	code       int
	projection *proj.Proj
}

// Proj4CoordinateConverter implements converters.CoordinateConverter on top
// of the proj4 library, with projections initialized lazily per EPSG code
// from the internal srs database.
type Proj4CoordinateConverter struct {
	mutex       sync.Mutex
	projections map[int]*epsgProjection
}

func NewProj4CoordinateConverter() converters.CoordinateConverter {
	return &Proj4CoordinateConverter{
		projections: make(map[int]*epsgProjection),
	}
}

// Converts the given coordinate from the given source Srid to the given target srid.
func (c *Proj4CoordinateConverter) ConvertCoordinateSrid(sourceSrid int, targetSrid int, coord geometry.Coordinate) (geometry.Coordinate, error) {
	if sourceSrid == targetSrid {
		return coord, nil
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	src, err := c.initProjection(sourceSrid)
	if err != nil {
		return coord, err
	}
	dst, err := c.initProjection(targetSrid)
	if err != nil {
		return coord, err
	}

	x := []float64{coord.X}
	y := []float64{coord.Y}
	z := []float64{coord.Z}

	if src.projection.IsLatLong() {
		x[0] *= toRadians
		y[0] *= toRadians
	}

	if err := proj.TransformRaw(src.projection, dst.projection, x, y, z); err != nil {
		return coord, fmt.Errorf("cannot transform %v from epsg %d to epsg %d: %w",
			coord, sourceSrid, targetSrid, err)
	}

	if dst.projection.IsLatLong() {
		x[0] *= toDegrees
		y[0] *= toDegrees
	}

	out := geometry.Coordinate{X: x[0], Y: y[0], Z: z[0]}
	if math.IsInf(out.X, 0) || math.IsInf(out.Y, 0) || math.IsNaN(out.X) || math.IsNaN(out.Y) {
		return coord, fmt.Errorf("epsg %d cannot represent coordinate %v from epsg %d",
			targetSrid, coord, sourceSrid)
	}
	return out, nil
}

// Converts the corners of the given bounding box and returns the axis aligned
// box of the reprojected corners. The vertical extent is carried through the
// transform untouched when both systems share the ellipsoidal height axis.
func (c *Proj4CoordinateConverter) ConvertBoundingBoxSrid(bbox *geometry.BoundingBox, sourceSrid int, targetSrid int) (*geometry.BoundingBox, error) {
	if bbox == nil {
		return nil, errors.New("cannot convert nil bounding box")
	}
	if sourceSrid == targetSrid {
		out := *bbox
		return &out, nil
	}

	corners := [4][2]float64{
		{bbox.Xmin, bbox.Ymin},
		{bbox.Xmax, bbox.Ymin},
		{bbox.Xmin, bbox.Ymax},
		{bbox.Xmax, bbox.Ymax},
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)

	for _, corner := range corners {
		out, err := c.ConvertCoordinateSrid(sourceSrid, targetSrid, geometry.Coordinate{X: corner[0], Y: corner[1]})
		if err != nil {
			return nil, err
		}
		minX = math.Min(minX, out.X)
		minY = math.Min(minY, out.Y)
		maxX = math.Max(maxX, out.X)
		maxY = math.Max(maxY, out.Y)
	}

	return geometry.NewBoundingBox(minX, maxX, minY, maxY, bbox.Zmin, bbox.Zmax), nil
}

// Converts the given coordinate to earth-centered earth-fixed cartesian
// coordinates on the WGS84 ellipsoid. Z is interpreted as ellipsoid height.
func (c *Proj4CoordinateConverter) ConvertToWGS84Cartesian(coord geometry.Coordinate, sourceSrid int) (geometry.Coordinate, error) {
	geodetic, err := c.ConvertCoordinateSrid(sourceSrid, 4326, coord)
	if err != nil {
		return coord, err
	}
	x, y, z := srs.WGS84Ellipsoid.GeodeticToECEF(geodetic.X, geodetic.Y, geodetic.Z)
	return geometry.Coordinate{X: x, Y: y, Z: z}, nil
}

// Releases all initialized proj4 projections.
func (c *Proj4CoordinateConverter) Cleanup() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	for _, p := range c.projections {
		if p.projection != nil {
			p.projection.Close()
		}
	}
	c.projections = make(map[int]*epsgProjection)
}

// returns the cached projection for the srid, initializing it from the srs
// database on first use. Caller must hold the mutex.
func (c *Proj4CoordinateConverter) initProjection(srid int) (*epsgProjection, error) {
	if cached, ok := c.projections[srid]; ok {
		return cached, nil
	}

	def := srs.LookupEpsg(srid)
	if def == nil {
		return nil, fmt.Errorf("epsg code %d not present in the internal database", srid)
	}

	p, err := proj.InitPlus(def.Proj4)
	if err != nil {
		return nil, fmt.Errorf("cannot initialize projection for epsg %d: %w", srid, err)
	}

	out := &epsgProjection{code: srid, projection: p}
	c.projections[srid] = out
	return out, nil
}
