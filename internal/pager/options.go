package pager

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/alpine-maps/terrain_pager/internal/quadtree"
)

type RefineMode string

const (
	// Children render on top of their parent tile.
	RefineModeAdd RefineMode = "ADD"

	// Children replace their parent tile entirely.
	RefineModeReplace RefineMode = "REPLACE"
)

func (e RefineMode) String() string {
	if e == RefineModeAdd {
		return "ADD"
	} else if e == RefineModeReplace {
		return "REPLACE"
	}
	return ""
}

func ParseRefineMode(value string) RefineMode {
	normalizedValue := strings.Trim(strings.ToUpper(value), " ")
	if normalizedValue == "ADD" {
		return RefineModeAdd
	} else if normalizedValue == "REPLACE" {
		return RefineModeReplace
	}
	return ""
}

const (
	ProfileGlobalGeodetic    = "global-geodetic"
	ProfileSphericalMercator = "spherical-mercator"
)

// Contains the options driving tile selection and paging
type PagerOptions struct {
	ProfileName            string     `yaml:"profile"`                   // Tiling profile: global-geodetic or spherical-mercator
	FirstLOD               uint32     `yaml:"first_lod"`                 // Coarsest LOD the pager will create tiles for
	MaxLOD                 uint32     `yaml:"max_lod"`                   // Finest LOD the pager will refine to
	MinTileRangeFactor     float64    `yaml:"min_tile_range_factor"`     // How many tile radii away a tile stays selected
	MorphStartRatio        float64    `yaml:"morph_start_ratio"`         // Fraction of the visibility range where geomorphing begins
	TileSize               int        `yaml:"tile_size"`                 // Vertices per tile edge
	RefineMode             RefineMode `yaml:"refine_mode"`               // Refine mode to use when subdividing tiles
	Srid                   int        `yaml:"srid"`                      // EPSG code of the world space camera distances are measured in
	ZOffset                float64    `yaml:"z_offset"`                  // Z offset in meters applied to incoming elevation samples
	EnableGeoidZCorrection bool       `yaml:"enable_geoid_z_correction"` // Enables the conversion from geoid to ellipsoid height
}

// DefaultPagerOptions returns the whole-earth geodetic setup most terrains
// start from.
func DefaultPagerOptions() *PagerOptions {
	return &PagerOptions{
		ProfileName:        ProfileGlobalGeodetic,
		FirstLOD:           0,
		MaxLOD:             19,
		MinTileRangeFactor: 7.0,
		MorphStartRatio:    quadtree.DefaultMorphStartRatio,
		TileSize:           17,
		RefineMode:         RefineModeReplace,
		Srid:               3395,
	}
}

// LoadPagerOptions reads options from a YAML file, starting from the defaults
// so a partial file only overrides what it names.
func LoadPagerOptions(path string) (*PagerOptions, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read options file %s: %w", path, err)
	}

	opt := DefaultPagerOptions()
	if err := yaml.Unmarshal(raw, opt); err != nil {
		return nil, fmt.Errorf("unable to parse options file %s: %w", path, err)
	}
	if err := opt.Validate(); err != nil {
		return nil, err
	}
	return opt, nil
}

func (opt *PagerOptions) Validate() error {
	if opt.ProfileName != ProfileGlobalGeodetic && opt.ProfileName != ProfileSphericalMercator {
		return fmt.Errorf("unknown tiling profile %q", opt.ProfileName)
	}
	if opt.MaxLOD < opt.FirstLOD {
		return fmt.Errorf("max_lod %d is below first_lod %d", opt.MaxLOD, opt.FirstLOD)
	}
	if opt.MinTileRangeFactor <= 0 {
		return fmt.Errorf("min_tile_range_factor must be positive, got %g", opt.MinTileRangeFactor)
	}
	if opt.MorphStartRatio <= 0 || opt.MorphStartRatio >= 1 {
		return fmt.Errorf("morph_start_ratio must be in (0,1), got %g", opt.MorphStartRatio)
	}
	if opt.TileSize < 2 {
		return fmt.Errorf("tile_size must be at least 2, got %d", opt.TileSize)
	}
	if opt.RefineMode == "" {
		return fmt.Errorf("refine_mode must be ADD or REPLACE")
	}
	return nil
}

// Profile builds the quadtree profile the options select.
func (opt *PagerOptions) Profile() *quadtree.Profile {
	if opt.ProfileName == ProfileSphericalMercator {
		return quadtree.NewSphericalMercatorProfile()
	}
	return quadtree.NewGlobalGeodeticProfile()
}

func (opt *PagerOptions) Copy() *PagerOptions {
	newOpt := &PagerOptions{
		ProfileName:            opt.ProfileName,
		FirstLOD:               opt.FirstLOD,
		MaxLOD:                 opt.MaxLOD,
		MinTileRangeFactor:     opt.MinTileRangeFactor,
		MorphStartRatio:        opt.MorphStartRatio,
		TileSize:               opt.TileSize,
		RefineMode:             opt.RefineMode,
		Srid:                   opt.Srid,
		ZOffset:                opt.ZOffset,
		EnableGeoidZCorrection: opt.EnableGeoidZCorrection,
	}
	return newOpt
}
