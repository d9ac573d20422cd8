package quadtree

import (
	"errors"
	"math"

	"github.com/alpine-maps/terrain_pager/internal/geodata"
	"github.com/alpine-maps/terrain_pager/internal/srs"
)

// Profile describes the tiling scheme of a terrain: the full extent, its
// spatial reference and how many tiles subdivide the extent at LOD zero.
// A profile is immutable and shared by every tile key of the terrain.
type Profile struct {
	srs                   *srs.SpatialReference
	extent                geodata.GeoExtent
	numTilesWideAtLodZero uint32
	numTilesHighAtLodZero uint32
}

func NewProfile(s *srs.SpatialReference, extent geodata.GeoExtent, tilesWide, tilesHigh uint32) (*Profile, error) {
	if s == nil {
		return nil, errors.New("profile requires a spatial reference")
	}
	if !extent.IsValid() {
		return nil, errors.New("profile requires a valid extent")
	}
	if tilesWide == 0 || tilesHigh == 0 {
		return nil, errors.New("profile requires at least one root tile per axis")
	}
	return &Profile{
		srs:                   s,
		extent:                extent,
		numTilesWideAtLodZero: tilesWide,
		numTilesHighAtLodZero: tilesHigh,
	}, nil
}

// NewGlobalGeodeticProfile is the whole-earth WGS 84 profile with the usual
// 2x1 root tile arrangement.
func NewGlobalGeodeticProfile() *Profile {
	s := srs.WGS84()
	p, err := NewProfile(s, geodata.NewGeoExtent(s, -180, -90, 180, 90), 2, 1)
	if err != nil {
		panic(err)
	}
	return p
}

// NewSphericalMercatorProfile is the square EPSG:3857 profile with a single
// root tile.
func NewSphericalMercatorProfile() *Profile {
	const bound = 20037508.342789244
	s := srs.SphericalMercator()
	p, err := NewProfile(s, geodata.NewGeoExtent(s, -bound, -bound, bound, bound), 1, 1)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Profile) SRS() *srs.SpatialReference { return p.srs }
func (p *Profile) Extent() geodata.GeoExtent  { return p.extent }

// NumTiles returns the tile grid dimensions at the given LOD.
func (p *Profile) NumTiles(lod uint32) (wide, high uint32) {
	return p.numTilesWideAtLodZero << lod, p.numTilesHighAtLodZero << lod
}

// TileExtent returns the geographic footprint of a tile addressed by LOD and
// grid position. Row 0 is the southern row.
func (p *Profile) TileExtent(lod, x, y uint32) geodata.GeoExtent {
	wide, high := p.NumTiles(lod)
	if x >= wide || y >= high {
		return geodata.InvalidGeoExtent()
	}
	tileW := p.extent.Width() / float64(wide)
	tileH := p.extent.Height() / float64(high)
	return geodata.NewGeoExtentFromSpan(
		p.srs,
		p.extent.West()+tileW*float64(x),
		tileW,
		p.extent.South()+tileH*float64(y),
		tileH,
	)
}

// RootTileRadius is the bounding radius of a single LOD 0 tile in world
// units (meters), aspect corrected: half the diagonal of the root tile
// footprint. This is the base quantity the LOD range table is derived from.
func (p *Profile) RootTileRadius() float64 {
	w := p.extent.Width() / float64(p.numTilesWideAtLodZero)
	h := p.extent.Height() / float64(p.numTilesHighAtLodZero)
	if p.srs.IsGeographic() {
		mpd := p.srs.Ellipsoid().MetersPerEquatorialDegree()
		w *= mpd
		h *= mpd
	}
	return 0.5 * math.Sqrt(w*w+h*h)
}
