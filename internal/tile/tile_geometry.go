package tile

import (
	"sync"

	"github.com/flywave/go3d/vec3"

	"github.com/alpine-maps/terrain_pager/internal/data"
	"github.com/alpine-maps/terrain_pager/internal/geometry"
	"github.com/alpine-maps/terrain_pager/internal/quadtree"
)

// grid resolution used when scanning the elevation raster for bounds
const boundsSampleSize = 17

// ModifyBoundingBoxCallback lets an embedder grow a tile's computed bounding
// box before it is published, typically to account for geometry it attaches
// to the tile (buildings, markers) that the elevation raster knows nothing
// about.
type ModifyBoundingBoxCallback func(key quadtree.TileKey, box *geometry.BoundingBox)

// TileGeometryFront is the drawable front of one terrain tile. The grid mesh
// itself is shared through the GeometryPool; what is tile-specific is the
// world footprint, the elevation raster plus the scale/bias window with which
// this tile samples it, and the derived bounds. The elevated mesh and the
// bounding volume are derived lazily behind dirty flags, so replacing the
// elevation raster is cheap and the expensive work happens at most once per
// revision.
type TileGeometryFront struct {
	key    quadtree.TileKey
	pool   *GeometryPool
	shared *SharedGeometry

	width  float64
	height float64

	mutex      sync.Mutex
	raster     *data.ElevationRaster
	scaleBias  geometry.ScaleBias
	mesh       []vec3.T
	meshDirty  bool
	bbox       *geometry.BoundingBox
	bboxRadius float64
	boundDirty bool
	modifyBBox ModifyBoundingBoxCallback
}

// NewTileGeometryFront takes a shared grid from the pool and binds it to the
// tile's world footprint. width and height are the footprint spans in world
// units; the tile starts flat until an elevation raster arrives.
func NewTileGeometryFront(key quadtree.TileKey, pool *GeometryPool, tileSize int, width, height float64) *TileGeometryFront {
	return &TileGeometryFront{
		key:        key,
		pool:       pool,
		shared:     pool.Take(tileSize),
		width:      width,
		height:     height,
		scaleBias:  geometry.IdentityScaleBias(),
		meshDirty:  true,
		boundDirty: true,
	}
}

func (t *TileGeometryFront) Key() quadtree.TileKey     { return t.key }
func (t *TileGeometryFront) Shared() *SharedGeometry   { return t.shared }
func (t *TileGeometryFront) Width() float64            { return t.width }
func (t *TileGeometryFront) Height() float64           { return t.height }

// SetModifyBoundingBoxCallback installs the hook applied after every bounds
// computation. Passing nil removes it. The next bounds query recomputes.
func (t *TileGeometryFront) SetModifyBoundingBoxCallback(cb ModifyBoundingBoxCallback) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.modifyBBox = cb
	t.boundDirty = true
}

// SetElevationRaster swaps in new elevation data together with the scale/bias
// window addressing it. An identity window means the raster covers exactly
// this tile; a child tile inheriting a coarser ancestor raster passes the
// composed quadrant window instead. Marks mesh and bounds dirty.
func (t *TileGeometryFront) SetElevationRaster(raster *data.ElevationRaster, sb geometry.ScaleBias) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.raster = raster
	t.scaleBias = sb
	t.meshDirty = true
	t.boundDirty = true
}

// ElevationRaster returns the current raster and its sampling window.
func (t *TileGeometryFront) ElevationRaster() (*data.ElevationRaster, geometry.ScaleBias) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.raster, t.scaleBias
}

// ElevationAt samples the tile's elevation at tile-relative unit coordinates.
// Zero without a raster, matching the flat mesh.
func (t *TileGeometryFront) ElevationAt(u, v float64) float32 {
	t.mutex.Lock()
	raster := t.raster
	sb := t.scaleBias
	t.mutex.Unlock()

	if raster == nil {
		return 0
	}
	z := raster.SampleScaleBias(u, v, sb, data.InterpolationBilinear)
	if z == data.NoDataValue {
		return 0
	}
	return z
}

// Mesh returns the elevated vertex array in tile-local world units, deriving
// it from the shared grid and the current raster when dirty. The returned
// slice is owned by the tile and valid until the next raster swap.
func (t *TileGeometryFront) Mesh() []vec3.T {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.deriveMeshLocked()
	return t.mesh
}

func (t *TileGeometryFront) deriveMeshLocked() {
	if !t.meshDirty || t.shared == nil {
		return
	}

	grid := t.shared.Vertices()
	if cap(t.mesh) < len(grid) {
		t.mesh = make([]vec3.T, len(grid))
	}
	t.mesh = t.mesh[:len(grid)]

	for i, p := range grid {
		var z float32
		if t.raster != nil {
			z = t.raster.SampleScaleBias(float64(p[0]), float64(p[1]), t.scaleBias, data.InterpolationBilinear)
			if z == data.NoDataValue {
				z = 0
			}
		}
		t.mesh[i] = vec3.T{
			p[0] * float32(t.width),
			p[1] * float32(t.height),
			z,
		}
	}
	t.meshDirty = false
}

// ComputeBoundingBox derives the tile's axis aligned box from the footprint
// and a fixed-resolution scan of the elevation raster, then applies the
// modify callback. The footprint always contributes even where the raster
// has holes, so a tile never collapses to zero volume.
func (t *TileGeometryFront) ComputeBoundingBox() *geometry.BoundingBox {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.computeBoundLocked()
	return t.bbox
}

// ComputeBound returns the tile's bounding sphere. The underlying box and
// its radius are cached and only recomputed after the raster or the callback
// changed.
func (t *TileGeometryFront) ComputeBound() geometry.BoundingSphere {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.computeBoundLocked()
	return geometry.BoundingSphere{
		Center: t.bbox.Center(),
		Radius: t.bboxRadius,
	}
}

func (t *TileGeometryFront) computeBoundLocked() {
	if !t.boundDirty && t.bbox != nil {
		return
	}

	zmin, zmax := 0.0, 0.0
	if t.raster != nil {
		first := true
		for row := 0; row < boundsSampleSize; row++ {
			v := float64(row) / float64(boundsSampleSize-1)
			for col := 0; col < boundsSampleSize; col++ {
				u := float64(col) / float64(boundsSampleSize-1)
				z := t.raster.SampleScaleBias(u, v, t.scaleBias, data.InterpolationBilinear)
				if z == data.NoDataValue {
					continue
				}
				if first {
					zmin, zmax = float64(z), float64(z)
					first = false
					continue
				}
				if float64(z) < zmin {
					zmin = float64(z)
				}
				if float64(z) > zmax {
					zmax = float64(z)
				}
			}
		}
	}

	t.bbox = geometry.NewBoundingBox(0, t.width, 0, t.height, zmin, zmax)
	if t.modifyBBox != nil {
		t.modifyBBox(t.key, t.bbox)
	}
	t.bboxRadius = t.bbox.DiagonalLength() / 2
	t.boundDirty = false
}

// VisitVertices calls fn for every elevated vertex in grid order.
func (t *TileGeometryFront) VisitVertices(fn func(v vec3.T)) {
	for _, v := range t.Mesh() {
		fn(v)
	}
}

// VisitTriangles calls fn for every triangle of the tile with the corner
// positions already resolved. The shared index buffer stays internal; the
// tile hands out expanded triangles only, since the indices belong to the
// pooled grid and not to this tile.
func (t *TileGeometryFront) VisitTriangles(fn func(a, b, c vec3.T)) {
	mesh := t.Mesh()
	if t.shared == nil {
		return
	}
	idx := t.shared.Indices()
	for i := 0; i+2 < len(idx); i += 3 {
		fn(mesh[idx[i]], mesh[idx[i+1]], mesh[idx[i+2]])
	}
}

// Release returns the shared geometry to the pool. The tile must not be used
// afterwards.
func (t *TileGeometryFront) Release() {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if t.shared != nil {
		t.pool.Release(t.shared.TileSize())
		t.shared = nil
	}
	t.mesh = nil
}
