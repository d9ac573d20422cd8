package tools

import (
	"flag"
	"log"
)

const (
	CommandReport = "report"
	CommandProbe  = "probe"
)

type FlagsGlobal struct {
	Help    *bool `json:"help"`
	Version *bool `json:"version"`
}

type PagerFlags struct {
	Config             *string `json:"config"`
	Profile            *string `json:"profile"`
	Srid               *int    `json:"srid"`
	FirstLod           *int
	MaxLod             *int
	MinTileRangeFactor *float64
	MorphStartRatio    *float64
	TileSize           *int
	ZOffset            *float64
	ZGeoidCorrection   *bool
	RefineMode         *string `json:"refine_mode"`
}

type FlagsForCommandReport struct {
	PagerFlags
	Silent       *bool
	LogTimestamp *bool
	Help         *bool
	Version      *bool
}

type FlagsForCommandProbe struct {
	PagerFlags
	EyeX *float64
	EyeY *float64
	EyeZ *float64
	Help *bool
}

func ParseFlagsGlobal() FlagsGlobal {
	help := defineBoolFlag("help", "h", false, "Displays this help.")
	version := defineBoolFlag("version", "v", false, "Displays the version of terrain_pager.")

	flag.Parse()

	return FlagsGlobal{
		Help:    help,
		Version: version,
	}
}

func ParseFlagsForCommandReport(args []string) FlagsForCommandReport {
	log.Println(FmtJSONString(args))

	flagCommand := flag.NewFlagSet("command-report", flag.ExitOnError)

	pagerFlags := definePagerFlags(flagCommand)
	silent := defineBoolFlagCommand(flagCommand, "silent", "s", false, "Use to suppress all the non-error messages.")
	logTimestamp := defineBoolFlagCommand(flagCommand, "timestamp", "t", false, "Adds timestamp to log messages.")
	help := defineBoolFlagCommand(flagCommand, "help", "h", false, "Displays this help.")
	version := defineBoolFlagCommand(flagCommand, "version", "v", false, "Displays the version of terrain_pager.")

	flagCommand.Parse(args)

	return FlagsForCommandReport{
		PagerFlags:   pagerFlags,
		Silent:       silent,
		LogTimestamp: logTimestamp,
		Help:         help,
		Version:      version,
	}
}

func ParseFlagsForCommandProbe(args []string) FlagsForCommandProbe {
	log.Println(FmtJSONString(args))

	flagCommand := flag.NewFlagSet("command-probe", flag.ExitOnError)

	pagerFlags := definePagerFlags(flagCommand)
	eyeX := defineFloat64FlagCommand(flagCommand, "eye-x", "x", 0, "Eye X position in the world reference named by srid.")
	eyeY := defineFloat64FlagCommand(flagCommand, "eye-y", "y", 0, "Eye Y position in the world reference named by srid.")
	eyeZ := defineFloat64FlagCommand(flagCommand, "eye-z", "z", 10000, "Eye height in meters in the world reference named by srid.")
	help := defineBoolFlagCommand(flagCommand, "help", "h", false, "Displays this help.")

	flagCommand.Parse(args)

	return FlagsForCommandProbe{
		PagerFlags: pagerFlags,
		EyeX:       eyeX,
		EyeY:       eyeY,
		EyeZ:       eyeZ,
		Help:       help,
	}
}

func definePagerFlags(flagCommand *flag.FlagSet) PagerFlags {
	config := defineStringFlagCommand(flagCommand, "config", "c", "", "Specifies a YAML options file. Flags override its values.")
	profile := defineStringFlagCommand(flagCommand, "profile", "p", "global-geodetic", "Tiling profile, either 'global-geodetic' or 'spherical-mercator'.")
	srid := defineIntFlagCommand(flagCommand, "srid", "e", 3395, "EPSG srid code of the world reference camera distances are measured in.")
	firstLod := defineIntFlagCommand(flagCommand, "first-lod", "f", 0, "Coarsest level of detail the pager creates tiles for.")
	maxLod := defineIntFlagCommand(flagCommand, "max-lod", "l", 19, "Finest level of detail the pager refines to.")
	minTileRangeFactor := defineFloat64FlagCommand(flagCommand, "range-factor", "r", 7.0, "How many tile radii away a tile stays selected. Higher values page in detail earlier.")
	morphStartRatio := defineFloat64FlagCommand(flagCommand, "morph-ratio", "m", 0.66, "Fraction of the visibility range at which geomorphing towards the parent begins.")
	tileSize := defineIntFlagCommand(flagCommand, "tile-size", "n", 17, "Vertices per tile edge.")
	zOffset := defineFloat64FlagCommand(flagCommand, "zoffset", "", 0, "Vertical offset to apply to elevation samples, in meters.")
	zGeoidCorrection := defineBoolFlagCommand(flagCommand, "geoid", "g", false, "Enables Geoid to Ellipsoid elevation correction. Use this flag if your elevation sources publish Z values relative to the Earth geoid rather than to the standard ellipsoid.")
	refineMode := defineStringFlagCommand(flagCommand, "refine-mode", "", "REPLACE", "Type of refine mode, can be 'ADD' or 'REPLACE'. 'ADD' means that child tiles render on top of their parent, 'REPLACE' means that they replace it entirely.")

	return PagerFlags{
		Config:             config,
		Profile:            profile,
		Srid:               srid,
		FirstLod:           firstLod,
		MaxLod:             maxLod,
		MinTileRangeFactor: minTileRangeFactor,
		MorphStartRatio:    morphStartRatio,
		TileSize:           tileSize,
		ZOffset:            zOffset,
		ZGeoidCorrection:   zGeoidCorrection,
		RefineMode:         refineMode,
	}
}

func defineBoolFlag(name string, shortHand string, defaultValue bool, usage string) *bool {
	var output bool
	flag.BoolVar(&output, name, defaultValue, usage)
	if shortHand != name {
		flag.BoolVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}
	return &output
}

func defineStringFlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue string, usage string) *string {
	var output string
	flagCommand.StringVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.StringVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}

	return &output
}

func defineIntFlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue int, usage string) *int {
	var output int
	flagCommand.IntVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.IntVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}

	return &output
}

func defineFloat64FlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue float64, usage string) *float64 {
	var output float64
	flagCommand.Float64Var(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.Float64Var(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}
	return &output
}

func defineBoolFlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue bool, usage string) *bool {
	var output bool
	flagCommand.BoolVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.BoolVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}
	return &output
}
