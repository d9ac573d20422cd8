package pkg

import (
	"fmt"
	"math"
	"sync"
	"testing"

	vec3d "github.com/flywave/go3d/float64/vec3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alpine-maps/terrain_pager/internal/converters"
	"github.com/alpine-maps/terrain_pager/internal/converters/elevation/offset_elevation_corrector"
	"github.com/alpine-maps/terrain_pager/internal/data"
	"github.com/alpine-maps/terrain_pager/internal/geometry"
	"github.com/alpine-maps/terrain_pager/internal/io"
	"github.com/alpine-maps/terrain_pager/internal/pager"
	"github.com/alpine-maps/terrain_pager/internal/quadtree"
	"github.com/alpine-maps/terrain_pager/internal/srs"
)

// equirectangular stand-in for the proj4 converter so tests need no cgo
type stubConverter struct{}

func (c *stubConverter) scale() float64 {
	return srs.WGS84Ellipsoid.MetersPerEquatorialDegree()
}

func (c *stubConverter) ConvertCoordinateSrid(sourceSrid int, targetSrid int, coord geometry.Coordinate) (geometry.Coordinate, error) {
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
	return coord, nil
}

func (c *stubConverter) Cleanup() {}

type stubStrategyManager struct {
	conv converters.CoordinateConverter
	corr converters.ElevationCorrector
}

func (m *stubStrategyManager) GetCoordinateConverterStrategy() converters.CoordinateConverter {
	return m.conv
}

func (m *stubStrategyManager) GetElevationCorrectionStrategy() converters.ElevationCorrector {
	return m.corr
}

func testOptions(maxLod uint32) *pager.PagerOptions {
	opts := pager.DefaultPagerOptions()
	opts.MaxLOD = maxLod
	opts.TileSize = 5
	// the stub converter only maps to and from geographic coordinates
	opts.Srid = 3857
	return opts
}

func newTestPager(t *testing.T, maxLod uint32) *Pager {
	t.Helper()
	p, err := NewPager(testOptions(maxLod), &stubStrategyManager{conv: &stubConverter{}})
	require.NoError(t, err)
	return p
}

func TestNewPagerBuildsRoots(t *testing.T) {
	p := newTestPager(t, 4)
	defer p.Shutdown()

	roots := p.GetRootNodes()
	require.Len(t, roots, 2)
	assert.Equal(t, quadtree.NewTileKey(0, 0, 0, p.GetProfile()), roots[0].GetKey())
	assert.Equal(t, quadtree.NewTileKey(0, 1, 0, p.GetProfile()), roots[1].GetKey())
	assert.Equal(t, 5, p.GetSelectionInfo().GetNumLODs())

	// both roots share one grid buffer
	assert.Equal(t, 2, p.GetGeometryPool().Uses(5))
}

func TestNewPagerRejectsInvalidOptions(t *testing.T) {
	opts := testOptions(4)
	opts.TileSize = 1
	_, err := NewPager(opts, &stubStrategyManager{conv: &stubConverter{}})
	assert.Error(t, err)
}

func TestRootTileBoundMatchesWorldUnits(t *testing.T) {
	p := newTestPager(t, 4)
	defer p.Shutdown()

	// a flat geodetic root tile's bounding radius is half its footprint
	// diagonal in meters, the same quantity the LOD range table is built on
	bound := p.GetRootNodes()[0].GetGeometry().ComputeBound()
	assert.InDelta(t, p.GetProfile().RootTileRadius(), bound.Radius, 1)

	scale := srs.WGS84Ellipsoid.MetersPerEquatorialDegree()
	assert.InDelta(t, 0.5*math.Sqrt2*180*scale, bound.Radius, 1)
}

func TestEvaluateFarEyeSelectsRoots(t *testing.T) {
	p := newTestPager(t, 6)
	defer p.Shutdown()

	visible := p.Evaluate(vec3d.T{0, 0, 1e12})
	require.Len(t, visible, 2)
	for _, v := range visible {
		assert.Equal(t, uint32(0), v.Key.LOD())
		assert.Equal(t, 1.0, v.MorphFactor)
	}

	// nothing was refined
	assert.False(t, p.GetRootNodes()[0].IsChildrenInitialized())
}

func TestEvaluateNearEyeRefines(t *testing.T) {
	p := newTestPager(t, 3)
	defer p.Shutdown()

	// eye on the surface at lon -90, lat 0, inside the western root
	scale := srs.WGS84Ellipsoid.MetersPerEquatorialDegree()
	eye := vec3d.T{-90 * scale, 0, 0}

	visible := p.Evaluate(eye)
	require.NotEmpty(t, visible)

	maxLod := uint32(0)
	seen := make(map[string]bool)
	for _, v := range visible {
		assert.False(t, seen[v.Key.String()], "tile emitted twice: %s", v.Key)
		seen[v.Key.String()] = true
		if v.Key.LOD() > maxLod {
			maxLod = v.Key.LOD()
		}
	}
	assert.Equal(t, uint32(3), maxLod)

	// the finest tiles cover the eye position
	found := false
	for _, v := range visible {
		if v.Key.LOD() == 3 && v.Key.Extent().Contains(-90, 0) {
			found = true
		}
	}
	assert.True(t, found)

	// replace mode never emits an ancestor of an emitted tile
	for _, v := range visible {
		cur := v.Key
		for {
			parent, ok := cur.Parent()
			if !ok {
				break
			}
			assert.False(t, seen[parent.String()], "ancestor %s of %s emitted in replace mode", parent, v.Key)
			cur = parent
		}
	}
}

func TestEvaluateReplaceModeLeavesNoHoles(t *testing.T) {
	p := newTestPager(t, 3)
	defer p.Shutdown()

	// eye positions include one just inside a root's refinement threshold,
	// where the far children of that root fall past their own range
	scale := srs.WGS84Ellipsoid.MetersPerEquatorialDegree()
	eyes := []vec3d.T{
		{4.5e7, 0, 0},
		{-90 * scale, 0, 0},
		{0, 3e7, 0},
		{0, 0, 6e7},
	}

	profile := p.GetProfile()
	wide, high := profile.NumTiles(3)
	for _, eye := range eyes {
		visible := p.Evaluate(eye)
		require.NotEmpty(t, visible)

		// every finest-level tile center is covered by exactly one visible
		// tile, so the selection partitions the whole footprint
		for y := uint32(0); y < high; y++ {
			for x := uint32(0); x < wide; x++ {
				center, ok := profile.TileExtent(3, x, y).Centroid()
				require.True(t, ok)
				covering := 0
				for _, v := range visible {
					if v.Key.Extent().Contains(center.X(), center.Y()) {
						covering++
					}
				}
				assert.Equal(t, 1, covering, "eye %v leaves tile %d/%d covered %d times", eye, x, y, covering)
			}
		}
	}
}

func TestEvaluateAddModeEmitsAncestors(t *testing.T) {
	opts := testOptions(2)
	opts.RefineMode = pager.RefineModeAdd
	p, err := NewPager(opts, &stubStrategyManager{conv: &stubConverter{}})
	require.NoError(t, err)
	defer p.Shutdown()

	scale := srs.WGS84Ellipsoid.MetersPerEquatorialDegree()
	visible := p.Evaluate(vec3d.T{-90 * scale, 0, 0})

	seen := make(map[string]bool)
	lods := make(map[uint32]bool)
	for _, v := range visible {
		seen[v.Key.String()] = true
		lods[v.Key.LOD()] = true
	}
	assert.True(t, lods[0])
	assert.True(t, lods[2])
	assert.True(t, seen[quadtree.NewTileKey(0, 0, 0, p.GetProfile()).String()])
}

func TestApplyUpdates(t *testing.T) {
	p := newTestPager(t, 3)
	defer p.Shutdown()

	rootKey := p.GetRootNodes()[0].GetKey()
	ok := p.Submit(&io.ElevationUpdate{
		Key:       rootKey,
		Raster:    data.NewConstantElevationRaster(5, 5, 1234),
		ScaleBias: geometry.IdentityScaleBias(),
	})
	require.True(t, ok)

	assert.Equal(t, 1, p.ApplyUpdates())

	node := p.GetRootNodes()[0]
	assert.InDelta(t, 1234, node.GetGeometry().ElevationAt(0.5, 0.5), 1e-3)
	assert.Equal(t, 1234.0, node.GetGeometry().ComputeBoundingBox().Zmid)

	// an update for a tile that selection never created is dropped
	deep := quadtree.NewTileKey(3, 0, 0, p.GetProfile())
	require.True(t, p.Submit(&io.ElevationUpdate{Key: deep, Raster: data.NewConstantElevationRaster(5, 5, 1)}))
	assert.Equal(t, 0, p.ApplyUpdates())
}

func TestElevationInheritance(t *testing.T) {
	p := newTestPager(t, 2)
	defer p.Shutdown()

	root := p.GetRootNodes()[0]
	root.SetElevation(data.NewConstantElevationRaster(5, 5, 800), geometry.IdentityScaleBias(), true)

	// refining after the update hands the raster down through quadrant windows
	scale := srs.WGS84Ellipsoid.MetersPerEquatorialDegree()
	p.Evaluate(vec3d.T{-90 * scale, 0, 0})

	require.True(t, root.IsChildrenInitialized())
	for _, child := range root.GetChildren() {
		if child == nil {
			continue
		}
		assert.InDelta(t, 800, child.GetGeometry().ElevationAt(0.5, 0.5), 1e-3)
	}

	// a child with its own data stops inheriting
	child := root.GetChildren()[0]
	child.SetElevation(data.NewConstantElevationRaster(5, 5, 50), geometry.IdentityScaleBias(), true)
	root.SetElevation(data.NewConstantElevationRaster(5, 5, 900), geometry.IdentityScaleBias(), true)
	assert.InDelta(t, 50, child.GetGeometry().ElevationAt(0.5, 0.5), 1e-3)
}

type singleUpdateSource struct {
	update *io.ElevationUpdate
}

func (s *singleUpdateSource) Produce(work chan *io.ElevationUpdate, wg *sync.WaitGroup) {
	work <- s.update
	close(work)
	wg.Done()
}

func TestLoadElevationsPipeline(t *testing.T) {
	p, err := NewPager(testOptions(3), &stubStrategyManager{
		conv: &stubConverter{},
		corr: offset_elevation_corrector.NewOffsetElevationCorrector(25),
	})
	require.NoError(t, err)
	defer p.Shutdown()

	rootKey := p.GetRootNodes()[0].GetKey()
	source := &singleUpdateSource{update: &io.ElevationUpdate{
		Key:       rootKey,
		Raster:    data.NewConstantElevationRaster(5, 5, 100),
		ScaleBias: geometry.IdentityScaleBias(),
	}}

	require.NoError(t, p.LoadElevations(source))
	assert.Equal(t, 1, p.ApplyUpdates())
	assert.InDelta(t, 125, p.GetRootNodes()[0].GetGeometry().ElevationAt(0.5, 0.5), 1e-3)
}

func TestShutdownReleasesGeometry(t *testing.T) {
	p := newTestPager(t, 3)
	scale := srs.WGS84Ellipsoid.MetersPerEquatorialDegree()
	p.Evaluate(vec3d.T{-90 * scale, 0, 0})
	assert.Greater(t, p.GetGeometryPool().Uses(5), 2)

	pool := p.GetGeometryPool()
	p.Shutdown()
	assert.Equal(t, 0, pool.Uses(5))
}
