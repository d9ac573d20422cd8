package geodata

import (
	"errors"
	"fmt"

	vec3d "github.com/flywave/go3d/float64/vec3"
	"github.com/golang/geo/s2"

	"github.com/alpine-maps/terrain_pager/internal/converters"
	"github.com/alpine-maps/terrain_pager/internal/geometry"
	"github.com/alpine-maps/terrain_pager/internal/srs"
)

// AltitudeMode states whether a Z coordinate is absolute with respect to the
// spatial reference's vertical datum, or relative to the terrain surface at
// that position. Relative points need a TerrainResolver to become absolute.
type AltitudeMode int

const (
	AltitudeModeAbsolute AltitudeMode = iota
	AltitudeModeRelative
)

// TerrainResolver supplies the terrain surface elevation under a point, in
// the queried spatial reference's units and vertical datum.
type TerrainResolver interface {
	ResolveElevation(s *srs.SpatialReference, x, y float64) (float64, bool)
}

// GeoPoint is a georeferenced 3D point. It is a plain value, copied freely.
type GeoPoint struct {
	srs     *srs.SpatialReference
	xyz     vec3d.T
	altMode AltitudeMode
}

func NewGeoPoint(s *srs.SpatialReference, x, y, z float64, mode AltitudeMode) GeoPoint {
	return GeoPoint{srs: s, xyz: vec3d.T{x, y, z}, altMode: mode}
}

// NewGeoPoint2D builds a point at zero meters above the terrain surface.
func NewGeoPoint2D(s *srs.SpatialReference, x, y float64) GeoPoint {
	return GeoPoint{srs: s, xyz: vec3d.T{x, y, 0}, altMode: AltitudeModeRelative}
}

// The invalid point: no spatial reference.
func InvalidGeoPoint() GeoPoint {
	return GeoPoint{}
}

func (p GeoPoint) IsValid() bool                { return p.srs != nil }
func (p GeoPoint) X() float64                   { return p.xyz[0] }
func (p GeoPoint) Y() float64                   { return p.xyz[1] }
func (p GeoPoint) Z() float64                   { return p.xyz[2] }
func (p GeoPoint) Alt() float64                 { return p.xyz[2] }
func (p GeoPoint) Vec3() vec3d.T                { return p.xyz }
func (p GeoPoint) SRS() *srs.SpatialReference   { return p.srs }
func (p GeoPoint) AltitudeMode() AltitudeMode   { return p.altMode }
func (p GeoPoint) IsRelative() bool             { return p.altMode == AltitudeModeRelative }
func (p GeoPoint) IsAbsolute() bool             { return p.altMode == AltitudeModeAbsolute }

// Transform returns a copy of this point in another spatial reference,
// reprojecting through the given converter and shifting the vertical datum
// when the two references disagree. A relative point cannot cross vertical
// datums because its Z has no datum yet.
func (p GeoPoint) Transform(conv converters.CoordinateConverter, to *srs.SpatialReference) (GeoPoint, error) {
	if !p.IsValid() {
		return InvalidGeoPoint(), errors.New("cannot transform an invalid geopoint")
	}
	if to == nil {
		return InvalidGeoPoint(), errors.New("cannot transform to a nil srs")
	}

	out := p
	if !p.srs.IsHorizontallyEquivalentTo(to) {
		if conv == nil {
			return InvalidGeoPoint(), errors.New("coordinate converter required for horizontal transform")
		}
		c, err := conv.ConvertCoordinateSrid(p.srs.Code(), to.Code(), geometry.Coordinate{X: p.X(), Y: p.Y(), Z: p.Z()})
		if err != nil {
			return InvalidGeoPoint(), err
		}
		out.xyz = vec3d.T{c.X, c.Y, c.Z}
	}
	out.srs = to

	if !p.srs.Datum().IsEquivalentTo(to.Datum()) {
		if p.IsRelative() {
			return InvalidGeoPoint(), errors.New("cannot shift vertical datum of a terrain-relative geopoint")
		}
		lat, lon, err := geodeticLatLon(conv, out.srs, out.X(), out.Y())
		if err != nil {
			return InvalidGeoPoint(), err
		}
		z, _ := srs.TransformVerticalDatum(p.srs.Datum(), to.Datum(), lat, lon, out.Z())
		out.xyz[2] = z
	}
	return out, nil
}

// TransformInPlace mutates the point instead of returning a copy.
func (p *GeoPoint) TransformInPlace(conv converters.CoordinateConverter, to *srs.SpatialReference) error {
	out, err := p.Transform(conv, to)
	if err != nil {
		return err
	}
	*p = out
	return nil
}

// TransformZ converts the point between altitude modes using the terrain
// surface under it.
func (p GeoPoint) TransformZ(mode AltitudeMode, terrain TerrainResolver) (GeoPoint, error) {
	if !p.IsValid() {
		return InvalidGeoPoint(), errors.New("cannot transform an invalid geopoint")
	}
	if p.altMode == mode {
		return p, nil
	}
	if terrain == nil {
		return InvalidGeoPoint(), errors.New("terrain resolver required to change altitude mode")
	}
	surface, ok := terrain.ResolveElevation(p.srs, p.X(), p.Y())
	if !ok {
		return InvalidGeoPoint(), fmt.Errorf("no terrain elevation available at %.6f,%.6f", p.X(), p.Y())
	}

	out := p
	out.altMode = mode
	if mode == AltitudeModeAbsolute {
		out.xyz[2] = p.Z() + surface
	} else {
		out.xyz[2] = p.Z() - surface
	}
	return out, nil
}

func (p GeoPoint) MakeAbsolute(terrain TerrainResolver) (GeoPoint, error) {
	return p.TransformZ(AltitudeModeAbsolute, terrain)
}

func (p GeoPoint) MakeRelative(terrain TerrainResolver) (GeoPoint, error) {
	return p.TransformZ(AltitudeModeRelative, terrain)
}

// MakeGeographic reprojects the point into geographic WGS 84 coordinates.
func (p GeoPoint) MakeGeographic(conv converters.CoordinateConverter) (GeoPoint, error) {
	if p.IsValid() && p.srs.IsGeographic() {
		return p, nil
	}
	return p.Transform(conv, srs.WGS84())
}

// ToWorld converts an absolute point into earth-centered cartesian
// coordinates. Relative points fail: their Z cannot be resolved here.
func (p GeoPoint) ToWorld(conv converters.CoordinateConverter) (vec3d.T, error) {
	if !p.IsValid() {
		return vec3d.T{}, errors.New("cannot convert an invalid geopoint to world coordinates")
	}
	if p.IsRelative() {
		return vec3d.T{}, errors.New("relative geopoint needs a terrain resolver before world conversion")
	}
	if conv == nil {
		return vec3d.T{}, errors.New("coordinate converter required for world conversion")
	}
	c, err := conv.ConvertToWGS84Cartesian(geometry.Coordinate{X: p.X(), Y: p.Y(), Z: p.Z()}, p.srs.Code())
	if err != nil {
		return vec3d.T{}, err
	}
	return vec3d.T{c.X, c.Y, c.Z}, nil
}

// DistanceTo returns the great-circle distance in meters between two
// geographic points, ignoring altitude. Both points must already be in a
// geographic spatial reference.
func (p GeoPoint) DistanceTo(rhs GeoPoint) (float64, error) {
	if !p.IsValid() || !rhs.IsValid() {
		return 0, errors.New("cannot measure distance with an invalid geopoint")
	}
	if !p.srs.IsGeographic() || !rhs.srs.IsGeographic() {
		return 0, errors.New("distance requires geographic coordinates, transform first")
	}
	a := s2.PointFromLatLng(s2.LatLngFromDegrees(p.Y(), p.X()))
	b := s2.PointFromLatLng(s2.LatLngFromDegrees(rhs.Y(), rhs.X()))
	return a.Distance(b).Radians() * p.srs.Ellipsoid().SemiMajorAxis, nil
}

// Interpolate returns a point a fraction t along the great circle between
// this point and rhs, with linearly blended altitude.
func (p GeoPoint) Interpolate(rhs GeoPoint, t float64) (GeoPoint, error) {
	if !p.IsValid() || !rhs.IsValid() {
		return InvalidGeoPoint(), errors.New("cannot interpolate with an invalid geopoint")
	}
	if !p.srs.IsGeographic() || !rhs.srs.IsGeographic() {
		return InvalidGeoPoint(), errors.New("interpolation requires geographic coordinates, transform first")
	}
	a := s2.PointFromLatLng(s2.LatLngFromDegrees(p.Y(), p.X()))
	b := s2.PointFromLatLng(s2.LatLngFromDegrees(rhs.Y(), rhs.X()))
	mid := s2.LatLngFromPoint(s2.Interpolate(t, a, b))

	alt := p.Z() + (rhs.Z()-p.Z())*t
	return NewGeoPoint(p.srs, mid.Lng.Degrees(), mid.Lat.Degrees(), alt, p.altMode), nil
}

func (p GeoPoint) Equal(rhs GeoPoint) bool {
	if p.srs == nil && rhs.srs == nil {
		return true
	}
	if p.srs == nil || rhs.srs == nil {
		return false
	}
	return p.srs.IsEquivalentTo(rhs.srs) && p.xyz == rhs.xyz && p.altMode == rhs.altMode
}

func (p GeoPoint) String() string {
	return fmt.Sprintf("GeoPoint(%.6f, %.6f, %.3f, %s)", p.X(), p.Y(), p.Z(), p.srs)
}

// geodeticLatLon returns the WGS84 latitude/longitude of a coordinate in the
// given reference, converting when it is not geographic.
func geodeticLatLon(conv converters.CoordinateConverter, s *srs.SpatialReference, x, y float64) (lat, lon float64, err error) {
	if s.IsGeographic() {
		return y, x, nil
	}
	if conv == nil {
		return 0, 0, errors.New("coordinate converter required to derive geodetic position")
	}
	c, err := conv.ConvertCoordinateSrid(s.Code(), 4326, geometry.Coordinate{X: x, Y: y})
	if err != nil {
		return 0, 0, err
	}
	return c.Y, c.X, nil
}

// GeoCircle is a circular bounding area: a center point plus a linear radius
// in meters for geographic centers, or in map units otherwise.
type GeoCircle struct {
	center GeoPoint
	radius float64
}

func NewGeoCircle(center GeoPoint, radius float64) GeoCircle {
	return GeoCircle{center: center, radius: radius}
}

func (c GeoCircle) Center() GeoPoint { return c.center }
func (c GeoCircle) Radius() float64  { return c.radius }

func (c GeoCircle) IsValid() bool {
	return c.center.IsValid() && c.radius > 0
}

// Intersects tests two circles in the same spatial reference.
func (c GeoCircle) Intersects(rhs GeoCircle) (bool, error) {
	if !c.IsValid() || !rhs.IsValid() {
		return false, errors.New("cannot intersect invalid geocircles")
	}
	if !c.center.SRS().IsHorizontallyEquivalentTo(rhs.center.SRS()) {
		return false, errors.New("geocircle intersection requires a common srs")
	}
	if c.center.SRS().IsGeographic() {
		d, err := c.center.DistanceTo(rhs.center)
		if err != nil {
			return false, err
		}
		return d <= c.radius+rhs.radius, nil
	}
	dx := c.center.X() - rhs.center.X()
	dy := c.center.Y() - rhs.center.Y()
	return dx*dx+dy*dy <= (c.radius+rhs.radius)*(c.radius+rhs.radius), nil
}
