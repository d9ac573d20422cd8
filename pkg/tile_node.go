package pkg

import (
	"sync"
	"sync/atomic"

	vec3d "github.com/flywave/go3d/float64/vec3"

	"github.com/alpine-maps/terrain_pager/internal/converters"
	"github.com/alpine-maps/terrain_pager/internal/data"
	"github.com/alpine-maps/terrain_pager/internal/geometry"
	"github.com/alpine-maps/terrain_pager/internal/quadtree"
	"github.com/alpine-maps/terrain_pager/internal/tile"
)

// Models a node of the terrain quadtree. Each node owns the drawable
// geometry of one tile and up to four children, one per quadrant. Children
// are created lazily the first time selection needs to refine past the node
// and are kept once created; selection decides per frame which generation is
// rendered, creation is not the same as visibility.
type TileNode struct {
	key                   quadtree.TileKey
	parent                *TileNode
	children              [4]*TileNode
	geometry              *tile.TileGeometryFront
	worldCenter           vec3d.T
	worldCenterValid      bool
	hasOwnElevation       bool
	isChildrenInitialized bool
	revision              int64

	sync.RWMutex
}

// Instantiates a new TileNode with its drawable bound to the tile footprint.
// Footprint spans are handed to the drawable in meters, so tile bounds live
// in the same unit system as elevation samples and camera distances.
func NewTileNode(key quadtree.TileKey, parent *TileNode, pool *tile.GeometryPool, tileSize int) *TileNode {
	extent := key.Extent()
	w := extent.Width()
	h := extent.Height()
	if extent.SRS() != nil && extent.SRS().IsGeographic() {
		mpd := extent.SRS().Ellipsoid().MetersPerEquatorialDegree()
		w *= mpd
		h *= mpd
	}
	node := TileNode{
		key:      key,
		parent:   parent,
		geometry: tile.NewTileGeometryFront(key, pool, tileSize, w, h),
	}
	return &node
}

func (n *TileNode) GetKey() quadtree.TileKey            { return n.key }
func (n *TileNode) GetParent() *TileNode                { return n.parent }
func (n *TileNode) GetGeometry() *tile.TileGeometryFront { return n.geometry }

func (n *TileNode) IsChildrenInitialized() bool {
	n.RLock()
	defer n.RUnlock()
	return n.isChildrenInitialized
}

func (n *TileNode) GetChildren() [4]*TileNode {
	n.RLock()
	defer n.RUnlock()
	return n.children
}

// GetRevision returns the node's elevation revision, bumped on every raster
// swap.
func (n *TileNode) GetRevision() int64 {
	return atomic.LoadInt64(&n.revision)
}

// InitializeChildren creates the four child nodes if not yet present. New
// children start out sampling this node's raster through their quadrant
// window, so they never render flat while their own data loads.
func (n *TileNode) InitializeChildren(pool *tile.GeometryPool, tileSize int) {
	n.Lock()
	if n.isChildrenInitialized {
		n.Unlock()
		return
	}
	var created []*TileNode
	for q := uint8(0); q < 4; q++ {
		child := n.key.Child(q)
		if child.Valid() {
			n.children[q] = NewTileNode(child, n, pool, tileSize)
			created = append(created, n.children[q])
		}
	}
	n.isChildrenInitialized = true
	n.Unlock()

	raster, sb := n.geometry.ElevationRaster()
	if raster == nil {
		return
	}
	for _, child := range created {
		child.SetElevation(raster, sb.Compose(geometry.QuadrantScaleBias(child.GetKey().Quadrant())), false)
	}
}

// SetElevation swaps the node's elevation raster and pushes it down to
// already created children that carry no data of their own, composed through
// the quadrant windows, so finer tiles follow the best available ancestor
// raster until their own arrives.
func (n *TileNode) SetElevation(raster *data.ElevationRaster, sb geometry.ScaleBias, ownData bool) {
	n.geometry.SetElevationRaster(raster, sb)
	n.Lock()
	n.hasOwnElevation = ownData
	children := n.children
	n.Unlock()
	n.InvalidateWorldCenter()

	for q, child := range children {
		if child == nil {
			continue
		}
		child.RLock()
		inherits := !child.hasOwnElevation
		child.RUnlock()
		if inherits {
			child.SetElevation(raster, sb.Compose(geometry.QuadrantScaleBias(uint8(q))), false)
		}
	}
}

// FindDescendant walks down the quadrants towards the given key. Returns nil
// when the key is not under this node or the path has not been created yet.
func (n *TileNode) FindDescendant(key quadtree.TileKey) *TileNode {
	if key.LOD() < n.key.LOD() {
		return nil
	}
	if key.LOD() == n.key.LOD() {
		if key.X() == n.key.X() && key.Y() == n.key.Y() {
			return n
		}
		return nil
	}

	// quadrant of the ancestor of key at lod+1 relative to this node
	shift := key.LOD() - n.key.LOD() - 1
	qx := (key.X() >> shift) & 1
	qy := (key.Y() >> shift) & 1
	if key.X()>>(shift+1) != n.key.X() || key.Y()>>(shift+1) != n.key.Y() {
		return nil
	}

	n.RLock()
	child := n.children[uint8(qx)|uint8(qy)<<1]
	n.RUnlock()
	if child == nil {
		return nil
	}
	return child.FindDescendant(key)
}

// WorldCenter returns the node's center in the pager's world reference,
// converting and caching it on first use. The Z is the midpoint of the
// tile's elevation bounds.
func (n *TileNode) WorldCenter(conv converters.CoordinateConverter, worldSrid int) (vec3d.T, bool) {
	n.RLock()
	if n.worldCenterValid {
		center := n.worldCenter
		n.RUnlock()
		return center, true
	}
	n.RUnlock()

	extent := n.key.Extent()
	if !extent.IsValid() || conv == nil {
		return vec3d.T{}, false
	}

	centroid, ok := extent.Centroid()
	if !ok {
		return vec3d.T{}, false
	}
	out, err := conv.ConvertCoordinateSrid(extent.SRS().Code(), worldSrid, geometry.Coordinate{X: centroid.X(), Y: centroid.Y()})
	if err != nil {
		return vec3d.T{}, false
	}

	box := n.geometry.ComputeBoundingBox()
	center := vec3d.T{out.X, out.Y, box.Zmid}

	n.Lock()
	n.worldCenter = center
	n.worldCenterValid = true
	n.Unlock()
	return center, true
}

// InvalidateWorldCenter drops the cached center, forcing recomputation after
// the elevation bounds changed.
func (n *TileNode) InvalidateWorldCenter() {
	n.Lock()
	n.worldCenterValid = false
	n.Unlock()
	atomic.AddInt64(&n.revision, 1)
}

// Release returns the node's geometry and that of all created children to
// the pool.
func (n *TileNode) Release() {
	n.Lock()
	children := n.children
	n.children = [4]*TileNode{}
	n.isChildrenInitialized = false
	n.Unlock()

	for _, child := range children {
		if child != nil {
			child.Release()
		}
	}
	n.geometry.Release()
}
