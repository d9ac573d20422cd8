package data

import (
	"github.com/chewxy/math32"
	"github.com/flywave/go3d/vec3"
)

// NormalMap stores a per-texel surface normal and curvature value for a
// terrain tile. Normals are unit vectors in tile-local space (x east, y
// north, z up).
type NormalMap struct {
	width      int
	height     int
	normals    []vec3.T
	curvatures []float32
}

func NewNormalMap(width, height int) *NormalMap {
	return &NormalMap{
		width:      width,
		height:     height,
		normals:    make([]vec3.T, width*height),
		curvatures: make([]float32, width*height),
	}
}

func (m *NormalMap) Width() int  { return m.width }
func (m *NormalMap) Height() int { return m.height }

func (m *NormalMap) Set(s, t int, normal vec3.T, curvature float32) {
	i := t*m.width + s
	m.normals[i] = normal
	m.curvatures[i] = curvature
}

func (m *NormalMap) Normal(s, t int) vec3.T {
	return m.normals[t*m.width+s]
}

func (m *NormalMap) Curvature(s, t int) float32 {
	return m.curvatures[t*m.width+s]
}

// NormalByUV returns the bilinearly blended, renormalized normal at unit
// coordinates u,v.
func (m *NormalMap) NormalByUV(u, v float64) vec3.T {
	fx := u * float64(m.width-1)
	fy := v * float64(m.height-1)

	col := clampIndex(int(fx), m.width-2)
	row := clampIndex(int(fy), m.height-2)

	dx := float32(fx - float64(col))
	dy := float32(fy - float64(row))
	dx = math32.Min(math32.Max(dx, 0), 1)
	dy = math32.Min(math32.Max(dy, 0), 1)

	sw := m.Normal(col, row)
	se := m.Normal(col+1, row)
	nw := m.Normal(col, row+1)
	ne := m.Normal(col+1, row+1)

	south := lerp3(sw, se, dx)
	north := lerp3(nw, ne, dx)
	out := lerp3(south, north, dy)
	if out.Length() == 0 {
		return vec3.T{0, 0, 1}
	}
	out.Normalize()
	return out
}

// NewNormalMapFromRaster derives a normal/curvature map from an elevation
// raster by central differences. xSpacing and ySpacing are the world-space
// distances between adjacent samples; curvature is the Laplacian of the
// height surface scaled into the sample spacing.
func NewNormalMapFromRaster(raster *ElevationRaster, xSpacing, ySpacing float64) *NormalMap {
	w := raster.Width()
	h := raster.Height()
	out := NewNormalMap(w, h)

	dx := float32(xSpacing)
	dy := float32(ySpacing)

	for t := 0; t < h; t++ {
		for s := 0; s < w; s++ {
			zc := raster.At(s, t)
			zw := raster.At(clampIndex(s-1, w-1), t)
			ze := raster.At(clampIndex(s+1, w-1), t)
			zs := raster.At(s, clampIndex(t-1, h-1))
			zn := raster.At(s, clampIndex(t+1, h-1))

			west := vec3.T{-dx, 0, zw - zc}
			east := vec3.T{dx, 0, ze - zc}
			south := vec3.T{0, -dy, zs - zc}
			north := vec3.T{0, dy, zn - zc}

			n1 := vec3.Cross(&east, &north)
			n2 := vec3.Cross(&north, &west)
			n3 := vec3.Cross(&west, &south)
			n4 := vec3.Cross(&south, &east)

			normal := vec3.Add(&n1, &n2)
			normal = vec3.Add(&normal, &n3)
			normal = vec3.Add(&normal, &n4)
			if normal.Length() == 0 {
				normal = vec3.T{0, 0, 1}
			} else {
				normal.Normalize()
			}

			curvature := (zw + ze + zs + zn - 4*zc) / (dx + dy)
			out.Set(s, t, normal, curvature)
		}
	}
	return out
}

func lerp3(a, b vec3.T, t float32) vec3.T {
	return vec3.T{
		a[0] + (b[0]-a[0])*t,
		a[1] + (b[1]-a[1])*t,
		a[2] + (b[2]-a[2])*t,
	}
}
