package geometry

import (
	"math"

	vec3d "github.com/flywave/go3d/float64/vec3"
)

// Axis aligned bounding box with precomputed midpoints.
type BoundingBox struct {
	Xmin float64
	Xmax float64
	Ymin float64
	Ymax float64
	Zmin float64
	Zmax float64
	Xmid float64
	Ymid float64
	Zmid float64
}

// Instantiates a new BoundingBox from the given extremes
func NewBoundingBox(minX, maxX, minY, maxY, minZ, maxZ float64) *BoundingBox {
	return &BoundingBox{
		Xmin: minX,
		Xmax: maxX,
		Ymin: minY,
		Ymax: maxY,
		Zmin: minZ,
		Zmax: maxZ,
		Xmid: (minX + maxX) / 2,
		Ymid: (minY + maxY) / 2,
		Zmid: (minZ + maxZ) / 2,
	}
}

// Returns the bounding box of one of the four XY quadrants of the parent box.
// The quadrant index is bit 0 for east and bit 1 for north. The vertical
// extent is carried over unchanged since a terrain quadtree only subdivides
// horizontally.
func NewBoundingBoxFromParent(parent *BoundingBox, quadrant uint8) *BoundingBox {
	minX, maxX := parent.Xmin, parent.Xmid
	if quadrant&1 == 1 {
		minX, maxX = parent.Xmid, parent.Xmax
	}
	minY, maxY := parent.Ymin, parent.Ymid
	if quadrant&2 == 2 {
		minY, maxY = parent.Ymid, parent.Ymax
	}
	return NewBoundingBox(minX, maxX, minY, maxY, parent.Zmin, parent.Zmax)
}

func (b *BoundingBox) Center() vec3d.T {
	return vec3d.T{b.Xmid, b.Ymid, b.Zmid}
}

// Length of the full diagonal of the box
func (b *BoundingBox) DiagonalLength() float64 {
	w := b.Xmax - b.Xmin
	l := b.Ymax - b.Ymin
	h := b.Zmax - b.Zmin
	return math.Sqrt(w*w + l*l + h*h)
}

func (b *BoundingBox) Contains(x, y, z float64) bool {
	return x >= b.Xmin && x <= b.Xmax &&
		y >= b.Ymin && y <= b.Ymax &&
		z >= b.Zmin && z <= b.Zmax
}

// Grows the box in place so that it includes the other box
func (b *BoundingBox) Merge(other *BoundingBox) {
	b.Xmin = math.Min(b.Xmin, other.Xmin)
	b.Ymin = math.Min(b.Ymin, other.Ymin)
	b.Zmin = math.Min(b.Zmin, other.Zmin)
	b.Xmax = math.Max(b.Xmax, other.Xmax)
	b.Ymax = math.Max(b.Ymax, other.Ymax)
	b.Zmax = math.Max(b.Zmax, other.Zmax)
	b.Xmid = (b.Xmin + b.Xmax) / 2
	b.Ymid = (b.Ymin + b.Ymax) / 2
	b.Zmid = (b.Zmin + b.Zmax) / 2
}

// Grows the box in place so that it includes the given point
func (b *BoundingBox) ExpandToInclude(x, y, z float64) {
	b.Xmin = math.Min(b.Xmin, x)
	b.Ymin = math.Min(b.Ymin, y)
	b.Zmin = math.Min(b.Zmin, z)
	b.Xmax = math.Max(b.Xmax, x)
	b.Ymax = math.Max(b.Ymax, y)
	b.Zmax = math.Max(b.Zmax, z)
	b.Xmid = (b.Xmin + b.Xmax) / 2
	b.Ymid = (b.Ymin + b.Ymax) / 2
	b.Zmid = (b.Zmin + b.Zmax) / 2
}
