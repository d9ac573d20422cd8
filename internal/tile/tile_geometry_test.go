package tile

import (
	"math"
	"testing"

	"github.com/flywave/go3d/vec3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alpine-maps/terrain_pager/internal/data"
	"github.com/alpine-maps/terrain_pager/internal/geometry"
	"github.com/alpine-maps/terrain_pager/internal/quadtree"
)

func testKey() quadtree.TileKey {
	return quadtree.NewTileKey(0, 0, 0, quadtree.NewGlobalGeodeticProfile())
}

func TestGeometryPoolSharesBuffers(t *testing.T) {
	pool := NewGeometryPool()

	a := pool.Take(17)
	b := pool.Take(17)
	assert.Same(t, a, b)
	assert.Equal(t, 2, pool.Uses(17))
	assert.Equal(t, 17*17, a.VertexCount())
	assert.Equal(t, 16*16*6, len(a.Indices()))

	other := pool.Take(33)
	assert.NotSame(t, a, other)

	pool.Release(17)
	assert.Equal(t, 1, pool.Uses(17))
	pool.Release(17)
	assert.Equal(t, 0, pool.Uses(17))

	// next take rebuilds after eviction
	c := pool.Take(17)
	assert.NotSame(t, a, c)

	assert.Nil(t, pool.Take(1))
}

func TestSharedGeometryGridSpansUnitSquare(t *testing.T) {
	g := newSharedGeometry(3)
	verts := g.Vertices()
	require.Len(t, verts, 9)
	assert.Equal(t, float32(0), verts[0][0])
	assert.Equal(t, float32(0), verts[0][1])
	assert.Equal(t, float32(1), verts[8][0])
	assert.Equal(t, float32(1), verts[8][1])
	// grid vertices carry no elevation
	for _, v := range verts {
		assert.Equal(t, float32(0), v[2])
	}
}

func TestFlatTileBound(t *testing.T) {
	pool := NewGeometryPool()
	tg := NewTileGeometryFront(testKey(), pool, 5, 100, 80)

	box := tg.ComputeBoundingBox()
	assert.Equal(t, 0.0, box.Zmin)
	assert.Equal(t, 0.0, box.Zmax)

	// a flat tile's radius is half the footprint diagonal
	bound := tg.ComputeBound()
	assert.InDelta(t, 0.5*math.Sqrt(100*100+80*80), bound.Radius, 1e-9)
}

func TestElevatedMeshAndBounds(t *testing.T) {
	pool := NewGeometryPool()
	tg := NewTileGeometryFront(testKey(), pool, 3, 10, 10)

	raster := data.NewConstantElevationRaster(3, 3, 50)
	raster.Set(1, 1, 200)
	tg.SetElevationRaster(raster, geometry.IdentityScaleBias())

	box := tg.ComputeBoundingBox()
	assert.Equal(t, 50.0, box.Zmin)
	assert.Equal(t, 200.0, box.Zmax)

	mesh := tg.Mesh()
	require.Len(t, mesh, 9)
	// corner picks up the corner sample, center the peak
	assert.Equal(t, float32(50), mesh[0][2])
	assert.Equal(t, float32(200), mesh[4][2])
	assert.Equal(t, float32(10), mesh[8][0])
	assert.Equal(t, float32(10), mesh[8][1])
}

func TestSetElevationRasterInvalidatesBound(t *testing.T) {
	pool := NewGeometryPool()
	tg := NewTileGeometryFront(testKey(), pool, 3, 10, 10)

	first := tg.ComputeBound()
	tg.SetElevationRaster(data.NewConstantElevationRaster(3, 3, 1000), geometry.IdentityScaleBias())
	second := tg.ComputeBound()
	assert.Greater(t, second.Radius, first.Radius)
	assert.Equal(t, 1000.0, tg.ComputeBoundingBox().Zmid)
}

func TestScaleBiasWindowedElevation(t *testing.T) {
	pool := NewGeometryPool()
	tg := NewTileGeometryFront(testKey(), pool, 3, 10, 10)

	// parent raster rising to the north, tile samples the northern half
	raster := data.NewElevationRaster(3, 3)
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			raster.Set(col, row, float32(row)*100)
		}
	}
	tg.SetElevationRaster(raster, geometry.QuadrantScaleBias(2))

	assert.InDelta(t, 100, tg.ElevationAt(0.5, 0), 1e-4)
	assert.InDelta(t, 200, tg.ElevationAt(0.5, 1), 1e-4)

	box := tg.ComputeBoundingBox()
	assert.InDelta(t, 100, box.Zmin, 1e-4)
	assert.InDelta(t, 200, box.Zmax, 1e-4)
}

func TestNoDataDoesNotCollapseBounds(t *testing.T) {
	pool := NewGeometryPool()
	tg := NewTileGeometryFront(testKey(), pool, 3, 10, 10)
	tg.SetElevationRaster(data.NewConstantElevationRaster(3, 3, data.NoDataValue), geometry.IdentityScaleBias())

	box := tg.ComputeBoundingBox()
	assert.Equal(t, 0.0, box.Zmin)
	assert.Equal(t, 0.0, box.Zmax)
	assert.True(t, tg.ComputeBound().Valid())
}

func TestModifyBoundingBoxCallback(t *testing.T) {
	pool := NewGeometryPool()
	key := testKey()
	tg := NewTileGeometryFront(key, pool, 3, 10, 10)

	var seen quadtree.TileKey
	tg.SetModifyBoundingBoxCallback(func(k quadtree.TileKey, box *geometry.BoundingBox) {
		seen = k
		box.ExpandToInclude(box.Xmid, box.Ymid, 500)
	})

	box := tg.ComputeBoundingBox()
	assert.Equal(t, key, seen)
	assert.Equal(t, 500.0, box.Zmax)

	// the cached radius reflects the modified box
	bound := tg.ComputeBound()
	assert.Greater(t, bound.Radius, 500.0/2)
}

func TestVisitTriangles(t *testing.T) {
	pool := NewGeometryPool()
	tg := NewTileGeometryFront(testKey(), pool, 3, 10, 10)

	count := 0
	area := 0.0
	tg.VisitTriangles(func(a, b, c vec3.T) {
		count++
		area += 0.5 * math.Abs(float64((b[0]-a[0])*(c[1]-a[1])-(c[0]-a[0])*(b[1]-a[1])))
	})
	assert.Equal(t, 8, count)
	assert.InDelta(t, 100, area, 1e-3)
}

func TestReleaseReturnsGeometry(t *testing.T) {
	pool := NewGeometryPool()
	tg := NewTileGeometryFront(testKey(), pool, 9, 10, 10)
	assert.Equal(t, 1, pool.Uses(9))
	tg.Release()
	assert.Equal(t, 0, pool.Uses(9))
}
