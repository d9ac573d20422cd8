package geodata

import (
	"errors"
	"fmt"
	"math"

	"github.com/alpine-maps/terrain_pager/internal/converters"
	"github.com/alpine-maps/terrain_pager/internal/geometry"
	"github.com/alpine-maps/terrain_pager/internal/srs"
)

// GeoExtent is an axis aligned geospatial extent stored as origin plus span
// (west, width, south, height) rather than min/max edges. The origin+span
// form represents geographic extents that cross the antimeridian without any
// special casing: west=170 width=20 simply has an east edge normalized to
// -170.
type GeoExtent struct {
	srs    *srs.SpatialReference
	west   float64
	width  float64
	south  float64
	height float64
}

// NewGeoExtent builds an extent from its SW and NE edges. For a geographic
// reference, an east edge numerically smaller than west means the extent
// crosses the antimeridian and the width is measured going eastward through
// it.
func NewGeoExtent(s *srs.SpatialReference, west, south, east, north float64) GeoExtent {
	width := east - west
	if s != nil && s.IsGeographic() && east < west {
		width = east - west + 360.0
	}
	return GeoExtent{
		srs:    s,
		west:   west,
		width:  width,
		south:  south,
		height: north - south,
	}
}

// NewGeoExtentFromSpan builds an extent directly from origin and span.
func NewGeoExtentFromSpan(s *srs.SpatialReference, west, width, south, height float64) GeoExtent {
	return GeoExtent{srs: s, west: west, width: width, south: south, height: height}
}

func InvalidGeoExtent() GeoExtent {
	return GeoExtent{}
}

func (e GeoExtent) SRS() *srs.SpatialReference { return e.srs }

// Edges normalized into the spatial reference's longitude frame.
func (e GeoExtent) West() float64  { return e.west }
func (e GeoExtent) East() float64  { return e.normalizeX(e.west + e.width) }
func (e GeoExtent) South() float64 { return e.south }
func (e GeoExtent) North() float64 { return e.south + e.height }

// Raw, unnormalized bounds.
func (e GeoExtent) XMin() float64 { return e.west }
func (e GeoExtent) XMax() float64 { return e.west + e.width }
func (e GeoExtent) YMin() float64 { return e.south }
func (e GeoExtent) YMax() float64 { return e.south + e.height }

func (e GeoExtent) Width() float64  { return e.width }
func (e GeoExtent) Height() float64 { return e.height }

func (e GeoExtent) IsValid() bool {
	return e.srs != nil && e.width > 0 && e.height > 0
}

func (e GeoExtent) Area() float64 {
	if !e.IsValid() {
		return 0
	}
	return e.width * e.height
}

func (e GeoExtent) Centroid() (GeoPoint, bool) {
	if !e.IsValid() {
		return InvalidGeoPoint(), false
	}
	x := e.normalizeX(e.west + e.width/2)
	y := e.south + e.height/2
	return NewGeoPoint(e.srs, x, y, 0, AltitudeModeAbsolute), true
}

// CrossesAntimeridian reports whether a geographic extent spans the 180
// degree meridian.
func (e GeoExtent) CrossesAntimeridian() bool {
	return e.IsValid() && e.srs.IsGeographic() && e.west+e.width > 180.0
}

// SplitAcrossAntimeridian decomposes a crossing extent into two non-crossing
// extents whose widths sum to the original width. Returns ok=false when the
// extent does not cross.
func (e GeoExtent) SplitAcrossAntimeridian() (first, second GeoExtent, ok bool) {
	if !e.CrossesAntimeridian() {
		return InvalidGeoExtent(), InvalidGeoExtent(), false
	}
	first = NewGeoExtentFromSpan(e.srs, e.west, 180.0-e.west, e.south, e.height)
	second = NewGeoExtentFromSpan(e.srs, -180.0, e.width-first.width, e.south, e.height)
	return first, second, true
}

// Transform reprojects the extent into another spatial reference by sampling
// the boundary through the converter. Any sample the target cannot represent
// fails the whole transform; extents are never silently clamped.
func (e GeoExtent) Transform(conv converters.CoordinateConverter, to *srs.SpatialReference) (GeoExtent, error) {
	if !e.IsValid() {
		return InvalidGeoExtent(), errors.New("cannot transform an invalid extent")
	}
	if to == nil {
		return InvalidGeoExtent(), errors.New("cannot transform to a nil srs")
	}
	if e.srs.IsHorizontallyEquivalentTo(to) {
		out := e
		out.srs = to
		return out, nil
	}
	if conv == nil {
		return InvalidGeoExtent(), errors.New("coordinate converter required for extent transform")
	}

	// sample each border at fixed density so curved projections of straight
	// edges still bound the result
	const samplesPerEdge = 5
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)

	for i := 0; i <= samplesPerEdge; i++ {
		f := float64(i) / samplesPerEdge
		edgePoints := [4][2]float64{
			{e.west + e.width*f, e.south},            // south edge
			{e.west + e.width*f, e.south + e.height}, // north edge
			{e.west, e.south + e.height*f},           // west edge
			{e.west + e.width, e.south + e.height*f}, // east edge
		}
		for _, pt := range edgePoints {
			x := pt[0]
			if e.srs.IsGeographic() {
				x = e.normalizeX(x)
			}
			c, err := conv.ConvertCoordinateSrid(e.srs.Code(), to.Code(), geometry.Coordinate{X: x, Y: pt[1]})
			if err != nil {
				return InvalidGeoExtent(), fmt.Errorf("extent not representable in %s: %w", to, err)
			}
			minX = math.Min(minX, c.X)
			minY = math.Min(minY, c.Y)
			maxX = math.Max(maxX, c.X)
			maxY = math.Max(maxY, c.Y)
		}
	}

	return NewGeoExtent(to, minX, minY, maxX, maxY), nil
}

// Contains tests a coordinate given in this extent's spatial reference.
func (e GeoExtent) Contains(x, y float64) bool {
	if !e.IsValid() {
		return false
	}
	if y < e.south || y > e.south+e.height {
		return false
	}
	local := x
	if e.srs.IsGeographic() {
		for local < e.west {
			local += 360.0
		}
		for local > e.west+360.0 {
			local -= 360.0
		}
	}
	return local >= e.west && local <= e.west+e.width
}

func (e GeoExtent) ContainsPoint(p GeoPoint) bool {
	if !p.IsValid() || e.srs == nil || !e.srs.IsHorizontallyEquivalentTo(p.SRS()) {
		return false
	}
	return e.Contains(p.X(), p.Y())
}

// ContainsExtent reports whether this extent fully contains rhs. Both must
// share a spatial reference.
func (e GeoExtent) ContainsExtent(rhs GeoExtent) bool {
	if !e.IsValid() || !rhs.IsValid() || !e.srs.IsHorizontallyEquivalentTo(rhs.srs) {
		return false
	}
	return e.Contains(rhs.West(), rhs.South()) &&
		e.Contains(rhs.East(), rhs.North()) &&
		rhs.width <= e.width && rhs.height <= e.height
}

// Intersects tests overlap between two extents in the same spatial
// reference, honoring antimeridian wraparound on either side.
func (e GeoExtent) Intersects(rhs GeoExtent) bool {
	if !e.IsValid() || !rhs.IsValid() || !e.srs.IsHorizontallyEquivalentTo(rhs.srs) {
		return false
	}
	if e.south+e.height < rhs.south || rhs.south+rhs.height < e.south {
		return false
	}
	a := rhs.west
	if e.srs.IsGeographic() {
		for a+rhs.width < e.west {
			a += 360.0
		}
		for a > e.west+e.width+360.0 {
			a -= 360.0
		}
	}
	return a <= e.west+e.width && a+rhs.width >= e.west
}

// ExpandToInclude grows the extent in place to include the given coordinate.
// An invalid extent becomes a degenerate zero-span extent at the point, ready
// to grow with further calls.
func (e *GeoExtent) ExpandToInclude(x, y float64) {
	if e.width < 0 || (e.width == 0 && e.height == 0) {
		e.west, e.south = x, y
		e.width, e.height = 0, 0
	}
	if x < e.west {
		e.width += e.west - x
		e.west = x
	} else if x > e.west+e.width {
		e.width = x - e.west
	}
	if y < e.south {
		e.height += e.south - y
		e.south = y
	} else if y > e.south+e.height {
		e.height = y - e.south
	}
}

// IntersectionSameSRS returns the overlap of two extents sharing a spatial
// reference, or an invalid extent if they do not overlap.
func (e GeoExtent) IntersectionSameSRS(rhs GeoExtent) GeoExtent {
	if !e.Intersects(rhs) {
		return InvalidGeoExtent()
	}
	west := math.Max(e.west, rhs.west)
	east := math.Min(e.west+e.width, rhs.west+rhs.width)
	south := math.Max(e.south, rhs.south)
	north := math.Min(e.south+e.height, rhs.south+rhs.height)
	return NewGeoExtentFromSpan(e.srs, west, east-west, south, north-south)
}

// Scale inflates the extent in place around its centroid.
func (e *GeoExtent) Scale(xScale, yScale float64) {
	dw := e.width*xScale - e.width
	dh := e.height*yScale - e.height
	e.ExpandBy(dw, dh)
}

// ExpandBy grows the spans by x and y, keeping the centroid fixed.
func (e *GeoExtent) ExpandBy(x, y float64) {
	e.west -= x / 2
	e.width += x
	e.south -= y / 2
	e.height += y
}

// CreateScaleBias computes the mapping that takes parametric [0,1]
// coordinates over this extent into parametric coordinates over the target
// extent. Both extents must be valid and share a spatial reference.
func (e GeoExtent) CreateScaleBias(target GeoExtent) (geometry.ScaleBias, bool) {
	if !e.IsValid() || !target.IsValid() || !e.srs.IsHorizontallyEquivalentTo(target.srs) {
		return geometry.ScaleBias{}, false
	}
	return geometry.ScaleBias{
		ScaleU: e.width / target.width,
		ScaleV: e.height / target.height,
		BiasU:  (e.west - target.west) / target.width,
		BiasV:  (e.south - target.south) / target.height,
	}, true
}

// BoundingGeoCircle returns a circle centered on the extent's centroid that
// encloses the whole extent. The radius is in meters for geographic extents
// and in map units otherwise.
func (e GeoExtent) BoundingGeoCircle() GeoCircle {
	center, ok := e.Centroid()
	if !ok {
		return GeoCircle{}
	}
	if e.srs.IsGeographic() {
		corner := NewGeoPoint(e.srs, e.West(), e.South(), 0, AltitudeModeAbsolute)
		radius, err := center.DistanceTo(corner)
		if err != nil {
			return GeoCircle{}
		}
		return NewGeoCircle(center, radius)
	}
	radius := 0.5 * math.Sqrt(e.width*e.width+e.height*e.height)
	return NewGeoCircle(center, radius)
}

func (e GeoExtent) String() string {
	if !e.IsValid() {
		return "GeoExtent(invalid)"
	}
	return fmt.Sprintf("GeoExtent(w=%.6f s=%.6f e=%.6f n=%.6f)", e.West(), e.South(), e.East(), e.North())
}

// normalizeX wraps a longitude into [-180,180] for geographic references.
func (e GeoExtent) normalizeX(x float64) float64 {
	if e.srs == nil || !e.srs.IsGeographic() {
		return x
	}
	for x > 180.0 {
		x -= 360.0
	}
	for x < -180.0 {
		x += 360.0
	}
	return x
}

// DataExtent is a GeoExtent plus the LOD range over which a data source can
// actually supply tiles, used to prune tile requests.
type DataExtent struct {
	GeoExtent
	minLevel    *uint32
	maxLevel    *uint32
	description string
}

func NewDataExtent(extent GeoExtent, description string) DataExtent {
	return DataExtent{GeoExtent: extent, description: description}
}

func NewDataExtentWithLevels(extent GeoExtent, minLevel, maxLevel uint32, description string) DataExtent {
	return DataExtent{
		GeoExtent:   extent,
		minLevel:    &minLevel,
		maxLevel:    &maxLevel,
		description: description,
	}
}

func (d DataExtent) MinLevel() (uint32, bool) {
	if d.minLevel == nil {
		return 0, false
	}
	return *d.minLevel, true
}

func (d DataExtent) MaxLevel() (uint32, bool) {
	if d.maxLevel == nil {
		return 0, false
	}
	return *d.maxLevel, true
}

func (d DataExtent) Description() string { return d.description }

// AppliesToLevel reports whether the data source covers the given LOD.
// Missing bounds are open ended.
func (d DataExtent) AppliesToLevel(level uint32) bool {
	if d.minLevel != nil && level < *d.minLevel {
		return false
	}
	if d.maxLevel != nil && level > *d.maxLevel {
		return false
	}
	return true
}
