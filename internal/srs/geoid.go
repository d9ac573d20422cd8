package srs

import (
	"errors"

	"github.com/chewxy/math32"
)

// Geoid is a regular lat/lon grid of undulation values: the offset, in
// meters, of the mean sea level surface above the reference ellipsoid at each
// grid node. Lookups outside the grid clamp to the border row/column, which
// matches how coarse global geoid grids are normally published.
type Geoid struct {
	name    string
	minLat  float64
	minLon  float64
	dLat    float64
	dLon    float64
	rows    int
	cols    int
	offsets []float32
}

// NewGeoid builds a geoid from a row-major offset grid. The first sample is
// the (minLat, minLon) corner and rows advance northward.
func NewGeoid(name string, minLat, minLon, dLat, dLon float64, rows, cols int, offsets []float32) (*Geoid, error) {
	if rows < 2 || cols < 2 {
		return nil, errors.New("geoid grid needs at least 2x2 samples")
	}
	if len(offsets) != rows*cols {
		return nil, errors.New("geoid grid size does not match rows*cols")
	}
	if dLat <= 0 || dLon <= 0 {
		return nil, errors.New("geoid grid spacing must be positive")
	}
	return &Geoid{
		name:    name,
		minLat:  minLat,
		minLon:  minLon,
		dLat:    dLat,
		dLon:    dLon,
		rows:    rows,
		cols:    cols,
		offsets: offsets,
	}, nil
}

func (g *Geoid) Name() string {
	return g.name
}

// Offset returns the bilinearly interpolated undulation at the given
// geodetic position. Longitude is normalized into the grid's frame so that
// global grids wrap correctly across the antimeridian.
func (g *Geoid) Offset(latDeg, lonDeg float64) float32 {
	for lonDeg < g.minLon {
		lonDeg += 360.0
	}
	for lonDeg >= g.minLon+360.0 {
		lonDeg -= 360.0
	}

	fy := (latDeg - g.minLat) / g.dLat
	fx := (lonDeg - g.minLon) / g.dLon

	row := int(fy)
	col := int(fx)
	if row < 0 {
		row, fy = 0, 0
	}
	if col < 0 {
		col, fx = 0, 0
	}
	if row > g.rows-2 {
		row = g.rows - 2
		fy = float64(g.rows - 1)
	}
	if col > g.cols-2 {
		col = g.cols - 2
		fx = float64(g.cols - 1)
	}

	u := float32(fx - float64(col))
	v := float32(fy - float64(row))
	u = math32.Min(math32.Max(u, 0), 1)
	v = math32.Min(math32.Max(v, 0), 1)

	sw := g.at(row, col)
	se := g.at(row, col+1)
	nw := g.at(row+1, col)
	ne := g.at(row+1, col+1)

	south := sw*(1-u) + se*u
	north := nw*(1-u) + ne*u
	return south*(1-v) + north*v
}

func (g *Geoid) at(row, col int) float32 {
	return g.offsets[row*g.cols+col]
}
