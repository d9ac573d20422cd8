package geodata

import (
	"sort"

	"github.com/flywave/go3d/vec3"

	"github.com/alpine-maps/terrain_pager/internal/converters"
	"github.com/alpine-maps/terrain_pager/internal/data"
	"github.com/alpine-maps/terrain_pager/internal/geometry"
	"github.com/alpine-maps/terrain_pager/internal/srs"
)

// GeoHeightField is a georeferenced elevation raster with an optional normal
// map. Grid dimensions and the min/max height are fixed at construction; the
// value is read-only once built and safe to share across goroutines.
type GeoHeightField struct {
	raster    *data.ElevationRaster
	normalMap *data.NormalMap
	extent    GeoExtent
	minHeight float32
	maxHeight float32
	valid     bool
}

func NewGeoHeightField(raster *data.ElevationRaster, extent GeoExtent) GeoHeightField {
	return NewGeoHeightFieldWithNormals(raster, nil, extent)
}

func NewGeoHeightFieldWithNormals(raster *data.ElevationRaster, normalMap *data.NormalMap, extent GeoExtent) GeoHeightField {
	hf := GeoHeightField{
		raster:    raster,
		normalMap: normalMap,
		extent:    extent,
	}
	hf.init()
	return hf
}

func InvalidGeoHeightField() GeoHeightField {
	return GeoHeightField{}
}

// computes the cached min/max height once; never re-derived afterwards
func (hf *GeoHeightField) init() {
	if hf.raster == nil || !hf.extent.IsValid() {
		return
	}
	min, max, ok := hf.raster.MinMax()
	if !ok {
		return
	}
	hf.minHeight = min
	hf.maxHeight = max
	hf.valid = true
}

func (hf GeoHeightField) Valid() bool                      { return hf.valid }
func (hf GeoHeightField) Extent() GeoExtent                { return hf.extent }
func (hf GeoHeightField) Raster() *data.ElevationRaster    { return hf.raster }
func (hf GeoHeightField) NormalMap() *data.NormalMap       { return hf.normalMap }
func (hf GeoHeightField) MinHeight() float32               { return hf.minHeight }
func (hf GeoHeightField) MaxHeight() float32               { return hf.maxHeight }

// XInterval is the distance between two adjacent columns in extent units.
func (hf GeoHeightField) XInterval() float64 {
	if !hf.valid || hf.raster.Width() < 2 {
		return 0
	}
	return hf.extent.Width() / float64(hf.raster.Width()-1)
}

// YInterval is the distance between two adjacent rows in extent units.
func (hf GeoHeightField) YInterval() float64 {
	if !hf.valid || hf.raster.Height() < 2 {
		return 0
	}
	return hf.extent.Height() / float64(hf.raster.Height()-1)
}

// GetElevation samples the heightfield at a coordinate expressed in the
// heightfield's own spatial reference. Returns ok=false outside the extent.
func (hf GeoHeightField) GetElevation(x, y float64, interp data.Interpolation) (float32, bool) {
	if !hf.valid || !hf.extent.Contains(x, y) {
		return 0, false
	}
	u, v := hf.unitCoords(x, y)
	return hf.raster.Sample(u, v, interp), true
}

// GetElevationAgainstDatum answers an elevation query from another spatial
// reference and converts the result into the vertical datum of outputSRS.
// A nil inputSRS means the query is already in the heightfield's reference;
// a nil outputSRS keeps the heightfield's own datum. Queries outside the
// extent, or with unrepresentable reprojection, fail with ok=false.
func (hf GeoHeightField) GetElevationAgainstDatum(
	conv converters.CoordinateConverter,
	inputSRS *srs.SpatialReference,
	x, y float64,
	interp data.Interpolation,
	outputSRS *srs.SpatialReference,
) (float32, bool) {
	if !hf.valid {
		return 0, false
	}

	local := geometry.Coordinate{X: x, Y: y}
	if inputSRS != nil && !inputSRS.IsHorizontallyEquivalentTo(hf.extent.SRS()) {
		if conv == nil {
			return 0, false
		}
		out, err := conv.ConvertCoordinateSrid(inputSRS.Code(), hf.extent.SRS().Code(), local)
		if err != nil {
			return 0, false
		}
		local = out
	}

	elev, ok := hf.GetElevation(local.X, local.Y, interp)
	if !ok {
		return 0, false
	}

	if outputSRS != nil && !hf.extent.SRS().Datum().IsEquivalentTo(outputSRS.Datum()) {
		lat, lon, err := geodeticLatLon(conv, hf.extent.SRS(), local.X, local.Y)
		if err != nil {
			return 0, false
		}
		z, _ := srs.TransformVerticalDatum(hf.extent.SRS().Datum(), outputSRS.Datum(), lat, lon, float64(elev))
		elev = float32(z)
	}
	return elev, true
}

// GetNormal samples the normal map at a coordinate in the heightfield's own
// spatial reference. Without a normal map the up vector is returned.
func (hf GeoHeightField) GetNormal(x, y float64) (vec3.T, bool) {
	if !hf.valid || !hf.extent.Contains(x, y) {
		return vec3.T{}, false
	}
	if hf.normalMap == nil {
		return vec3.T{0, 0, 1}, true
	}
	u, v := hf.unitCoords(x, y)
	return hf.normalMap.NormalByUV(u, v), true
}

// GetElevationAndNormal combines the elevation and normal queries in a
// single extent check.
func (hf GeoHeightField) GetElevationAndNormal(x, y float64, interp data.Interpolation) (float32, vec3.T, bool) {
	elev, ok := hf.GetElevation(x, y, interp)
	if !ok {
		return 0, vec3.T{}, false
	}
	normal, _ := hf.GetNormal(x, y)
	return elev, normal, true
}

// CreateSubSample resamples the heightfield into a new grid covering destEx,
// which must be an inset of the source extent in the same spatial reference.
func (hf GeoHeightField) CreateSubSample(destEx GeoExtent, width, height int, interp data.Interpolation) (GeoHeightField, bool) {
	if !hf.valid || width < 2 || height < 2 || !hf.extent.ContainsExtent(destEx) {
		return InvalidGeoHeightField(), false
	}

	sb, ok := destEx.CreateScaleBias(hf.extent)
	if !ok {
		return InvalidGeoHeightField(), false
	}

	out := data.NewElevationRaster(width, height)
	for row := 0; row < height; row++ {
		v := float64(row) / float64(height-1)
		for col := 0; col < width; col++ {
			u := float64(col) / float64(width-1)
			out.Set(col, row, hf.raster.SampleScaleBias(u, v, sb, interp))
		}
	}
	return NewGeoHeightField(out, destEx), true
}

// ResolveElevation implements TerrainResolver so a heightfield can back
// altitude-mode conversions directly.
func (hf GeoHeightField) ResolveElevation(s *srs.SpatialReference, x, y float64) (float64, bool) {
	if s != nil && !s.IsHorizontallyEquivalentTo(hf.extent.SRS()) {
		return 0, false
	}
	elev, ok := hf.GetElevation(x, y, data.InterpolationBilinear)
	if !ok {
		return 0, false
	}
	return float64(elev), true
}

// TransformDatum produces a copy of the heightfield with every sample
// shifted from one vertical datum to another. The extent must be geographic
// so each sample has a geodetic position; projected heightfields must be
// queried through GetElevationAgainstDatum instead.
func (hf GeoHeightField) TransformDatum(from, to *srs.VerticalDatum) (GeoHeightField, bool) {
	if !hf.valid || !hf.extent.SRS().IsGeographic() {
		return InvalidGeoHeightField(), false
	}
	if from.IsEquivalentTo(to) {
		return hf, true
	}

	w := hf.raster.Width()
	h := hf.raster.Height()
	out := data.NewElevationRaster(w, h)
	for row := 0; row < h; row++ {
		lat := hf.extent.South() + hf.extent.Height()*float64(row)/float64(h-1)
		for col := 0; col < w; col++ {
			lon := hf.extent.West() + hf.extent.Width()*float64(col)/float64(w-1)
			sample := hf.raster.At(col, row)
			if sample == data.NoDataValue {
				out.Set(col, row, sample)
				continue
			}
			z, _ := srs.TransformVerticalDatum(from, to, lat, lon, float64(sample))
			out.Set(col, row, float32(z))
		}
	}
	return NewGeoHeightFieldWithNormals(out, hf.normalMap, hf.extent), true
}

func (hf GeoHeightField) unitCoords(x, y float64) (u, v float64) {
	local := x
	if hf.extent.SRS().IsGeographic() {
		for local < hf.extent.West() {
			local += 360.0
		}
	}
	u = (local - hf.extent.West()) / hf.extent.Width()
	v = (y - hf.extent.South()) / hf.extent.Height()
	return
}

// SortByResolution orders heightfields from finest to coarsest sample
// spacing.
func SortByResolution(fields []GeoHeightField) {
	sort.Slice(fields, func(i, j int) bool {
		return fields[i].XInterval() < fields[j].XInterval()
	})
}
