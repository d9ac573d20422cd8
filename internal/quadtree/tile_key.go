package quadtree

import (
	"fmt"

	"github.com/alpine-maps/terrain_pager/internal/geodata"
	"github.com/alpine-maps/terrain_pager/internal/geometry"
)

// TileKey addresses one tile of a profile's quadtree: LOD plus grid
// position. Row 0 is the southern row, column 0 the western column.
type TileKey struct {
	lod     uint32
	x       uint32
	y       uint32
	profile *Profile
}

func NewTileKey(lod, x, y uint32, profile *Profile) TileKey {
	return TileKey{lod: lod, x: x, y: y, profile: profile}
}

func (k TileKey) LOD() uint32       { return k.lod }
func (k TileKey) X() uint32         { return k.x }
func (k TileKey) Y() uint32         { return k.y }
func (k TileKey) Profile() *Profile { return k.profile }

func (k TileKey) Valid() bool {
	if k.profile == nil {
		return false
	}
	wide, high := k.profile.NumTiles(k.lod)
	return k.x < wide && k.y < high
}

func (k TileKey) Extent() geodata.GeoExtent {
	if k.profile == nil {
		return geodata.InvalidGeoExtent()
	}
	return k.profile.TileExtent(k.lod, k.x, k.y)
}

// Child returns the key of one of the four children. Quadrant bit 0 selects
// the eastern column, bit 1 the northern row.
func (k TileKey) Child(quadrant uint8) TileKey {
	return TileKey{
		lod:     k.lod + 1,
		x:       k.x*2 + uint32(quadrant&1),
		y:       k.y*2 + uint32(quadrant>>1&1),
		profile: k.profile,
	}
}

func (k TileKey) Parent() (TileKey, bool) {
	if k.lod == 0 {
		return TileKey{}, false
	}
	return TileKey{lod: k.lod - 1, x: k.x / 2, y: k.y / 2, profile: k.profile}, true
}

// Quadrant returns which child of its parent this key is.
func (k TileKey) Quadrant() uint8 {
	return uint8(k.x&1) | uint8(k.y&1)<<1
}

// ScaleBiasFromAncestor computes the scale/bias window with which this tile
// samples a raster that covers the given ancestor key. ok is false when
// ancestor is not actually on this key's path to the root.
func (k TileKey) ScaleBiasFromAncestor(ancestor TileKey) (geometry.ScaleBias, bool) {
	if ancestor.lod > k.lod || ancestor.profile != k.profile {
		return geometry.ScaleBias{}, false
	}

	sb := geometry.IdentityScaleBias()
	cur := k
	steps := k.lod - ancestor.lod
	for i := uint32(0); i < steps; i++ {
		sb = geometry.QuadrantScaleBias(cur.Quadrant()).Compose(sb)
		parent, ok := cur.Parent()
		if !ok {
			return geometry.ScaleBias{}, false
		}
		cur = parent
	}
	if cur.x != ancestor.x || cur.y != ancestor.y {
		return geometry.ScaleBias{}, false
	}
	return sb, true
}

func (k TileKey) String() string {
	return fmt.Sprintf("%d/%d/%d", k.lod, k.x, k.y)
}
