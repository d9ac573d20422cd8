package strategy_manager

import (
	"github.com/alpine-maps/terrain_pager/internal/converters"
)

type StrategyManager interface {
	GetElevationCorrectionStrategy() converters.ElevationCorrector
	GetCoordinateConverterStrategy() converters.CoordinateConverter
}
