package data

import (
	"github.com/chewxy/math32"

	"github.com/alpine-maps/terrain_pager/internal/geometry"
)

// NoDataValue marks a missing elevation sample.
const NoDataValue = -math32.MaxFloat32

// Interpolation mode for elevation queries.
type Interpolation int

const (
	InterpolationNearest Interpolation = iota
	InterpolationBilinear
)

// ElevationRaster is a fixed-size grid of float32 height samples in row-major
// order, row 0 being the southern edge. Dimensions never change after
// construction; tiles replace the whole raster when finer data arrives.
// A published raster is read-only: writers build a new raster and swap it in
// at a sync point.
type ElevationRaster struct {
	width   int
	height  int
	samples []float32
}

// Instantiates a new zeroed ElevationRaster
func NewElevationRaster(width, height int) *ElevationRaster {
	return &ElevationRaster{
		width:   width,
		height:  height,
		samples: make([]float32, width*height),
	}
}

// Instantiates an ElevationRaster where every sample has the given value
func NewConstantElevationRaster(width, height int, value float32) *ElevationRaster {
	r := NewElevationRaster(width, height)
	for i := range r.samples {
		r.samples[i] = value
	}
	return r
}

func (r *ElevationRaster) Width() int  { return r.width }
func (r *ElevationRaster) Height() int { return r.height }

func (r *ElevationRaster) At(col, row int) float32 {
	return r.samples[row*r.width+col]
}

func (r *ElevationRaster) Set(col, row int, value float32) {
	r.samples[row*r.width+col] = value
}

// MinMax scans the raster once for its extreme values, skipping no-data
// samples. ok is false when the raster holds no valid sample at all.
func (r *ElevationRaster) MinMax() (min, max float32, ok bool) {
	min = math32.MaxFloat32
	max = -math32.MaxFloat32
	for _, s := range r.samples {
		if s == NoDataValue {
			continue
		}
		min = math32.Min(min, s)
		max = math32.Max(max, s)
		ok = true
	}
	if !ok {
		return 0, 0, false
	}
	return min, max, true
}

// Sample reads the raster at unit coordinates u,v in [0,1] with the given
// interpolation mode. Coordinates outside the unit square are clamped; the
// raster has no idea of its geospatial extent, bounds policy belongs to the
// georeferenced wrapper.
func (r *ElevationRaster) Sample(u, v float64, interp Interpolation) float32 {
	if interp == InterpolationNearest {
		return r.sampleNearest(u, v)
	}
	return r.sampleBilinear(u, v)
}

// SampleScaleBias reads the raster at tile-relative unit coordinates mapped
// through the scale/bias window. This is how a child tile samples the
// sub-window of a coarser parent raster.
func (r *ElevationRaster) SampleScaleBias(u, v float64, sb geometry.ScaleBias, interp Interpolation) float32 {
	su, sv := sb.Apply(u, v)
	return r.Sample(su, sv, interp)
}

func (r *ElevationRaster) sampleNearest(u, v float64) float32 {
	col := clampIndex(int(u*float64(r.width-1)+0.5), r.width-1)
	row := clampIndex(int(v*float64(r.height-1)+0.5), r.height-1)
	return r.At(col, row)
}

func (r *ElevationRaster) sampleBilinear(u, v float64) float32 {
	fx := u * float64(r.width-1)
	fy := v * float64(r.height-1)

	col := clampIndex(int(fx), r.width-2)
	row := clampIndex(int(fy), r.height-2)

	dx := float32(fx - float64(col))
	dy := float32(fy - float64(row))
	dx = math32.Min(math32.Max(dx, 0), 1)
	dy = math32.Min(math32.Max(dy, 0), 1)

	sw := r.At(col, row)
	se := r.At(col+1, row)
	nw := r.At(col, row+1)
	ne := r.At(col+1, row+1)

	// no-data poisons interpolation, fall back to the nearest valid corner
	if sw == NoDataValue || se == NoDataValue || nw == NoDataValue || ne == NoDataValue {
		return r.sampleNearest(u, v)
	}

	south := sw*(1-dx) + se*dx
	north := nw*(1-dx) + ne*dx
	return south*(1-dy) + north*dy
}

func clampIndex(i, max int) int {
	if i < 0 {
		return 0
	}
	if i > max {
		return max
	}
	return i
}
