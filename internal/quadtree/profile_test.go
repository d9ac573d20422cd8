package quadtree

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alpine-maps/terrain_pager/internal/geodata"
	"github.com/alpine-maps/terrain_pager/internal/srs"
)

func TestGlobalGeodeticProfile(t *testing.T) {
	p := NewGlobalGeodeticProfile()
	assert.True(t, p.SRS().IsGeographic())

	wide, high := p.NumTiles(0)
	assert.Equal(t, uint32(2), wide)
	assert.Equal(t, uint32(1), high)

	wide, high = p.NumTiles(3)
	assert.Equal(t, uint32(16), wide)
	assert.Equal(t, uint32(8), high)
}

func TestProfileValidation(t *testing.T) {
	extent := geodata.NewGeoExtent(srs.WGS84(), -180, -90, 180, 90)
	_, err := NewProfile(nil, extent, 2, 1)
	assert.Error(t, err)
	_, err = NewProfile(srs.WGS84(), geodata.InvalidGeoExtent(), 2, 1)
	assert.Error(t, err)
	_, err = NewProfile(srs.WGS84(), extent, 0, 1)
	assert.Error(t, err)
}

func TestTileExtentRowZeroIsSouth(t *testing.T) {
	p := NewGlobalGeodeticProfile()

	sw := p.TileExtent(0, 0, 0)
	assert.Equal(t, -180.0, sw.West())
	assert.Equal(t, -90.0, sw.South())
	assert.Equal(t, 0.0, sw.East())
	assert.Equal(t, 90.0, sw.North())

	// at LOD 1, row 1 sits in the northern hemisphere
	ne := p.TileExtent(1, 3, 1)
	assert.Equal(t, 90.0, ne.West())
	assert.Equal(t, 0.0, ne.South())
	assert.Equal(t, 90.0, ne.North())

	assert.False(t, p.TileExtent(0, 2, 0).IsValid())
}

func TestRootTileRadius(t *testing.T) {
	p := NewGlobalGeodeticProfile()
	// 180x180 degree root tile, half diagonal in meters
	mpd := srs.WGS84Ellipsoid.MetersPerEquatorialDegree()
	expected := 0.5 * math.Sqrt(2) * 180 * mpd
	assert.InDelta(t, expected, p.RootTileRadius(), 1e-3)

	merc := NewSphericalMercatorProfile()
	const bound = 20037508.342789244
	assert.InDelta(t, 0.5*math.Sqrt(2)*2*bound, merc.RootTileRadius(), 1e-3)
}

func TestTileKeyChildrenAndParent(t *testing.T) {
	p := NewGlobalGeodeticProfile()
	key := NewTileKey(2, 1, 2, p)
	require.True(t, key.Valid())

	// bit 0 east, bit 1 north
	sw := key.Child(0)
	assert.Equal(t, NewTileKey(3, 2, 4, p), sw)
	ne := key.Child(3)
	assert.Equal(t, NewTileKey(3, 3, 5, p), ne)

	parent, ok := ne.Parent()
	require.True(t, ok)
	assert.Equal(t, key, parent)
	assert.Equal(t, uint8(3), ne.Quadrant())
	assert.Equal(t, uint8(0), sw.Quadrant())

	root := NewTileKey(0, 0, 0, p)
	_, ok = root.Parent()
	assert.False(t, ok)
}

func TestTileKeyExtentNesting(t *testing.T) {
	p := NewGlobalGeodeticProfile()
	key := NewTileKey(3, 5, 4, p)
	parent, _ := key.Parent()
	assert.True(t, parent.Extent().ContainsExtent(key.Extent()))
}

func TestScaleBiasFromAncestor(t *testing.T) {
	p := NewGlobalGeodeticProfile()
	root := NewTileKey(0, 1, 0, p)

	// two levels down through the NE corner each time
	key := root.Child(3).Child(3)
	sb, ok := key.ScaleBiasFromAncestor(root)
	require.True(t, ok)
	assert.Equal(t, 0.25, sb.ScaleU)
	assert.Equal(t, 0.75, sb.BiasU)
	assert.Equal(t, 0.75, sb.BiasV)

	// self window is the identity
	sb, ok = key.ScaleBiasFromAncestor(key)
	require.True(t, ok)
	assert.True(t, sb.IsIdentity())

	// a non-ancestor is rejected
	other := NewTileKey(0, 0, 0, p)
	_, ok = key.ScaleBiasFromAncestor(other)
	assert.False(t, ok)
}

func TestScaleBiasWindowMatchesExtents(t *testing.T) {
	p := NewGlobalGeodeticProfile()
	root := NewTileKey(0, 0, 0, p)
	key := root.Child(1).Child(2)

	sb, ok := key.ScaleBiasFromAncestor(root)
	require.True(t, ok)

	want, ok := key.Extent().CreateScaleBias(root.Extent())
	require.True(t, ok)
	assert.InDelta(t, want.ScaleU, sb.ScaleU, 1e-12)
	assert.InDelta(t, want.ScaleV, sb.ScaleV, 1e-12)
	assert.InDelta(t, want.BiasU, sb.BiasU, 1e-12)
	assert.InDelta(t, want.BiasV, sb.BiasV, 1e-12)
}
