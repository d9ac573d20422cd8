package geometry

// ScaleBias maps unit tile space [0,1]x[0,1] into a sub-window of another
// unit square. It is the 2D restriction of the scale/bias matrix a terrain
// engine uses to sample a parent tile's elevation texture from a child tile.
type ScaleBias struct {
	ScaleU float64
	ScaleV float64
	BiasU  float64
	BiasV  float64
}

// The identity mapping: the tile samples its own raster one to one.
func IdentityScaleBias() ScaleBias {
	return ScaleBias{ScaleU: 1, ScaleV: 1}
}

// ScaleBias of one XY quadrant of a unit square. Bit 0 selects east,
// bit 1 selects north.
func QuadrantScaleBias(quadrant uint8) ScaleBias {
	sb := ScaleBias{ScaleU: 0.5, ScaleV: 0.5}
	if quadrant&1 == 1 {
		sb.BiasU = 0.5
	}
	if quadrant&2 == 2 {
		sb.BiasV = 0.5
	}
	return sb
}

// Apply transforms unit coordinates into the window described by the mapping.
func (sb ScaleBias) Apply(u, v float64) (float64, float64) {
	return u*sb.ScaleU + sb.BiasU, v*sb.ScaleV + sb.BiasV
}

// Compose returns the mapping obtained by applying child first and then sb.
// Descending one quadtree level composes the child quadrant window onto the
// accumulated window.
func (sb ScaleBias) Compose(child ScaleBias) ScaleBias {
	return ScaleBias{
		ScaleU: sb.ScaleU * child.ScaleU,
		ScaleV: sb.ScaleV * child.ScaleV,
		BiasU:  sb.BiasU + sb.ScaleU*child.BiasU,
		BiasV:  sb.BiasV + sb.ScaleV*child.BiasV,
	}
}

// IsIdentity reports whether the mapping leaves coordinates unchanged.
func (sb ScaleBias) IsIdentity() bool {
	return sb.ScaleU == 1 && sb.ScaleV == 1 && sb.BiasU == 0 && sb.BiasV == 0
}
