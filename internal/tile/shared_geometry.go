package tile

import (
	"sync"

	"github.com/flywave/go3d/vec3"
)

// SharedGeometry is the unit-tile grid mesh every terrain tile of a given
// size renders from. Vertices live in tile-parametric space ([0,1] in x and
// y, z zero); elevation is applied per tile at traversal time, never baked
// in here. A SharedGeometry is read-only once handed out, which is what
// makes it safe to reference from many tiles at once.
type SharedGeometry struct {
	tileSize int
	vertices []vec3.T
	indices  []uint32
}

// builds the regular grid for tileSize vertices per edge
func newSharedGeometry(tileSize int) *SharedGeometry {
	g := &SharedGeometry{
		tileSize: tileSize,
		vertices: make([]vec3.T, 0, tileSize*tileSize),
		indices:  make([]uint32, 0, (tileSize-1)*(tileSize-1)*6),
	}

	for row := 0; row < tileSize; row++ {
		v := float32(row) / float32(tileSize-1)
		for col := 0; col < tileSize; col++ {
			u := float32(col) / float32(tileSize-1)
			g.vertices = append(g.vertices, vec3.T{u, v, 0})
		}
	}

	for row := 0; row < tileSize-1; row++ {
		for col := 0; col < tileSize-1; col++ {
			sw := uint32(row*tileSize + col)
			se := sw + 1
			nw := sw + uint32(tileSize)
			ne := nw + 1
			g.indices = append(g.indices, sw, se, ne, sw, ne, nw)
		}
	}
	return g
}

func (g *SharedGeometry) TileSize() int      { return g.tileSize }
func (g *SharedGeometry) VertexCount() int   { return len(g.vertices) }
func (g *SharedGeometry) Vertices() []vec3.T { return g.vertices }
func (g *SharedGeometry) Indices() []uint32  { return g.indices }

type pooledGeometry struct {
	geometry *SharedGeometry
	uses     int
}

// GeometryPool hands out shared geometry instances keyed by tile size, so
// all tiles of one size reference a single vertex/index buffer. Entries are
// use counted and dropped when the last tile releases them; the pool is the
// only writer, taken buffers are immutable.
type GeometryPool struct {
	mutex sync.Mutex
	pool  map[int]*pooledGeometry
}

func NewGeometryPool() *GeometryPool {
	return &GeometryPool{
		pool: make(map[int]*pooledGeometry),
	}
}

// Take returns the shared geometry for the tile size, building it on first
// use, and records one more holder.
func (p *GeometryPool) Take(tileSize int) *SharedGeometry {
	if tileSize < 2 {
		return nil
	}

	p.mutex.Lock()
	defer p.mutex.Unlock()

	entry, ok := p.pool[tileSize]
	if !ok {
		entry = &pooledGeometry{geometry: newSharedGeometry(tileSize)}
		p.pool[tileSize] = entry
	}
	entry.uses++
	return entry.geometry
}

// Release records that one holder is gone, evicting the buffer when nobody
// references it anymore.
func (p *GeometryPool) Release(tileSize int) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	entry, ok := p.pool[tileSize]
	if !ok {
		return
	}
	entry.uses--
	if entry.uses <= 0 {
		delete(p.pool, tileSize)
	}
}

// Uses reports the current holder count for a tile size.
func (p *GeometryPool) Uses(tileSize int) int {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if entry, ok := p.pool[tileSize]; ok {
		return entry.uses
	}
	return 0
}
