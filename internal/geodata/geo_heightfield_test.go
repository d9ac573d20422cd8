package geodata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alpine-maps/terrain_pager/internal/data"
	"github.com/alpine-maps/terrain_pager/internal/srs"
)

// 3x3 heightfield over a 10x10 degree extent, z = col*10 + row*100
func testHeightField() GeoHeightField {
	r := data.NewElevationRaster(3, 3)
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			r.Set(col, row, float32(col*10+row*100))
		}
	}
	return NewGeoHeightField(r, NewGeoExtent(srs.WGS84(), 0, 0, 10, 10))
}

func TestGeoHeightFieldInit(t *testing.T) {
	hf := testHeightField()
	assert.True(t, hf.Valid())
	assert.Equal(t, float32(0), hf.MinHeight())
	assert.Equal(t, float32(220), hf.MaxHeight())
	assert.InDelta(t, 5.0, hf.XInterval(), 1e-9)
	assert.InDelta(t, 5.0, hf.YInterval(), 1e-9)

	assert.False(t, InvalidGeoHeightField().Valid())
	assert.False(t, NewGeoHeightField(nil, NewGeoExtent(srs.WGS84(), 0, 0, 10, 10)).Valid())
}

func TestGetElevation(t *testing.T) {
	hf := testHeightField()

	z, ok := hf.GetElevation(0, 0, data.InterpolationNearest)
	require.True(t, ok)
	assert.Equal(t, float32(0), z)

	z, ok = hf.GetElevation(5, 5, data.InterpolationBilinear)
	require.True(t, ok)
	assert.InDelta(t, 110, z, 1e-4)

	// the center of the whole field lies between min and max
	assert.GreaterOrEqual(t, z, hf.MinHeight())
	assert.LessOrEqual(t, z, hf.MaxHeight())

	// outside the extent fails instead of clamping
	_, ok = hf.GetElevation(11, 5, data.InterpolationBilinear)
	assert.False(t, ok)
	_, ok = hf.GetElevation(5, -1, data.InterpolationBilinear)
	assert.False(t, ok)
}

func TestGetElevationAgainstDatum(t *testing.T) {
	conv := &stubConverter{}
	hf := testHeightField()
	merc, err := srs.FromEpsg(3857)
	require.NoError(t, err)

	// query from projected coordinates lands on the same sample
	scale := srs.WGS84Ellipsoid.MetersPerEquatorialDegree()
	z, ok := hf.GetElevationAgainstDatum(conv, merc, 5*scale, 5*scale, data.InterpolationBilinear, nil)
	require.True(t, ok)
	assert.InDelta(t, 110, z, 1e-4)

	// output datum shift applies the undulation under the sample
	geoid, err := srs.NewGeoid("flat7", -90, -180, 180, 180, 2, 2, []float32{7, 7, 7, 7})
	require.NoError(t, err)
	msl := srs.NewVerticalDatum("flat msl", "flat7", geoid)
	z, ok = hf.GetElevationAgainstDatum(nil, nil, 5, 5, data.InterpolationBilinear, srs.WGS84().WithVerticalDatum(msl))
	require.True(t, ok)
	assert.InDelta(t, 103, z, 1e-4)
}

func TestCreateSubSample(t *testing.T) {
	hf := testHeightField()
	dest := NewGeoExtent(srs.WGS84(), 5, 5, 10, 10)

	sub, ok := hf.CreateSubSample(dest, 3, 3, data.InterpolationBilinear)
	require.True(t, ok)
	assert.True(t, sub.Valid())

	// the sub sample's corners match direct queries on the source
	z, ok := sub.GetElevation(5, 5, data.InterpolationNearest)
	require.True(t, ok)
	assert.InDelta(t, 110, z, 1e-4)

	z, ok = sub.GetElevation(10, 10, data.InterpolationNearest)
	require.True(t, ok)
	assert.InDelta(t, 220, z, 1e-4)

	// destination outside the source fails
	_, ok = hf.CreateSubSample(NewGeoExtent(srs.WGS84(), 5, 5, 15, 15), 3, 3, data.InterpolationBilinear)
	assert.False(t, ok)
}

func TestResolveElevationImplementsTerrainResolver(t *testing.T) {
	hf := testHeightField()
	var resolver TerrainResolver = hf

	z, ok := resolver.ResolveElevation(srs.WGS84(), 5, 5)
	require.True(t, ok)
	assert.InDelta(t, 110, z, 1e-4)

	merc, err := srs.FromEpsg(3857)
	require.NoError(t, err)
	_, ok = resolver.ResolveElevation(merc, 5, 5)
	assert.False(t, ok)
}

func TestTransformDatum(t *testing.T) {
	geoid, err := srs.NewGeoid("flat10", -90, -180, 180, 180, 2, 2, []float32{10, 10, 10, 10})
	require.NoError(t, err)
	msl := srs.NewVerticalDatum("flat msl", "flat10", geoid)

	hf := testHeightField()
	out, ok := hf.TransformDatum(msl, nil)
	require.True(t, ok)
	assert.Equal(t, float32(10), out.MinHeight())
	assert.Equal(t, float32(230), out.MaxHeight())

	// no-data samples survive untouched
	r := data.NewConstantElevationRaster(2, 2, 5)
	r.Set(0, 0, data.NoDataValue)
	withHole := NewGeoHeightField(r, NewGeoExtent(srs.WGS84(), 0, 0, 10, 10))
	shifted, ok := withHole.TransformDatum(msl, nil)
	require.True(t, ok)
	assert.Equal(t, float32(data.NoDataValue), shifted.Raster().At(0, 0))
	assert.Equal(t, float32(15), shifted.Raster().At(1, 1))
}

func TestSortByResolution(t *testing.T) {
	coarse := NewGeoHeightField(data.NewElevationRaster(3, 3), NewGeoExtent(srs.WGS84(), 0, 0, 30, 30))
	fine := NewGeoHeightField(data.NewElevationRaster(3, 3), NewGeoExtent(srs.WGS84(), 0, 0, 1, 1))

	fields := []GeoHeightField{coarse, fine}
	SortByResolution(fields)
	assert.InDelta(t, 0.5, fields[0].XInterval(), 1e-9)
	assert.InDelta(t, 15.0, fields[1].XInterval(), 1e-9)
}
