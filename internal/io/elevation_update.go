package io

import (
	"github.com/alpine-maps/terrain_pager/internal/data"
	"github.com/alpine-maps/terrain_pager/internal/geometry"
	"github.com/alpine-maps/terrain_pager/internal/quadtree"
)

// Contains the minimal data needed to update a single tile's elevation, i.e.
// the raster and the scale/bias window with which the target tile samples it.
type ElevationUpdate struct {
	Key       quadtree.TileKey
	Raster    *data.ElevationRaster
	ScaleBias geometry.ScaleBias
}
