package geometry

import (
	vec3d "github.com/flywave/go3d/float64/vec3"
)

// Bounding sphere enclosing a BoundingBox. The radius is half the box
// diagonal so the sphere passes through the box corners.
type BoundingSphere struct {
	Center vec3d.T
	Radius float64
}

func NewBoundingSphereFromBox(box *BoundingBox) BoundingSphere {
	return BoundingSphere{
		Center: box.Center(),
		Radius: box.DiagonalLength() / 2,
	}
}

func (s BoundingSphere) Valid() bool {
	return s.Radius > 0
}

// Distance from the given point to the sphere surface. Negative when the
// point lies inside the sphere.
func (s BoundingSphere) DistanceTo(p vec3d.T) float64 {
	d := vec3d.Sub(&p, &s.Center)
	return d.Length() - s.Radius
}

func (s BoundingSphere) Intersects(other BoundingSphere) bool {
	d := vec3d.Sub(&other.Center, &s.Center)
	return d.Length() <= s.Radius+other.Radius
}
