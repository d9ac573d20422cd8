package strategy_manager

import (
	"github.com/alpine-maps/terrain_pager/internal/converters"
	"github.com/alpine-maps/terrain_pager/internal/converters/elevation/geoid_elevation_corrector"
	"github.com/alpine-maps/terrain_pager/internal/converters/elevation/offset_elevation_corrector"
	"github.com/alpine-maps/terrain_pager/internal/converters/elevation/pipeline_elevation_corrector"
	"github.com/alpine-maps/terrain_pager/internal/converters/proj4_coordinate_converter"
	"github.com/alpine-maps/terrain_pager/internal/pager"
	"github.com/alpine-maps/terrain_pager/internal/srs"
)

// StandardStrategyManager wires the default strategies from the pager
// options: a proj4 backed coordinate converter and an elevation correction
// pipeline built from the z offset and the optional geoid correction.
type StandardStrategyManager struct {
	coordinateConverter converters.CoordinateConverter
	elevationCorrector  converters.ElevationCorrector
}

func NewStandardStrategyManager(opts *pager.PagerOptions, datum *srs.VerticalDatum) *StandardStrategyManager {
	return &StandardStrategyManager{
		coordinateConverter: proj4_coordinate_converter.NewProj4CoordinateConverter(),
		elevationCorrector:  elevationCorrectionStrategy(opts, datum),
	}
}

func (m *StandardStrategyManager) GetCoordinateConverterStrategy() converters.CoordinateConverter {
	return m.coordinateConverter
}

func (m *StandardStrategyManager) GetElevationCorrectionStrategy() converters.ElevationCorrector {
	return m.elevationCorrector
}

func elevationCorrectionStrategy(opts *pager.PagerOptions, datum *srs.VerticalDatum) converters.ElevationCorrector {
	var correctors []converters.ElevationCorrector
	if opts.ZOffset != 0 {
		correctors = append(correctors, offset_elevation_corrector.NewOffsetElevationCorrector(opts.ZOffset))
	}
	if opts.EnableGeoidZCorrection && datum != nil {
		correctors = append(correctors, geoid_elevation_corrector.NewGeoidElevationCorrector(datum))
	}
	if len(correctors) == 0 {
		return nil
	}
	if len(correctors) == 1 {
		return correctors[0]
	}
	return pipeline_elevation_corrector.NewPipelineElevationCorrector(correctors)
}
