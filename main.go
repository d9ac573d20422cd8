package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	vec3d "github.com/flywave/go3d/float64/vec3"

	"github.com/alpine-maps/terrain_pager/internal/pager"
	"github.com/alpine-maps/terrain_pager/pkg"
	"github.com/alpine-maps/terrain_pager/pkg/strategy_manager"
	"github.com/alpine-maps/terrain_pager/tools"
)

const VERSION = "0.3.1"

const logo = `
 _                      _                                        
| |_ ___ _ __ _ __ __ _(_)_ __    _ __   __ _  __ _  ___ _ __    
| __/ _ \ '__| '__/ _  | | '_ \  | '_ \ / _  |/ _  |/ _ \ '__|   
| ||  __/ |  | | | (_| | | | | | | |_) | (_| | (_| |  __/ |      
 \__\___|_|  |_|  \__,_|_|_| |_| | .__/ \__,_|\__, |\___|_|      
                                 |_|          |___/              
        A terrain tile selection toolkit written in golang
        Copyright YYYY - alpine-maps
`

func main() {
	log.SetPrefix("[terrain_pager] ")
	log.SetFlags(log.LUTC | log.Ldate | log.Lmicroseconds | log.Lshortfile)

	flagsGlobal := tools.ParseFlagsGlobal()
	log.Println(tools.FmtJSONString(flagsGlobal))

	args := flag.Args()
	if len(args) == 0 {
		log.Fatal("Please specify a subcommand [report|probe].")
	}
	cmd, args := args[0], args[1:]

	switch cmd {
	case tools.CommandReport:
		mainCommandReport(args)
	case tools.CommandProbe:
		mainCommandProbe(args)
	default:
		log.Fatalf("Unrecognized command [%q]. Command must be one of [report|probe]", cmd)
	}
}

func mainCommandReport(args []string) {
	flags := tools.ParseFlagsForCommandReport(args)

	if *flags.Help {
		showHelp()
		return
	}

	if *flags.Version {
		printVersion()
		return
	}

	if *flags.Silent {
		tools.DisableLogger()
	} else {
		printLogo()
	}
	if !*flags.LogTimestamp {
		tools.DisableLoggerTimestamp()
	}

	opts, err := optionsFromFlags(flags.PagerFlags)
	if err != nil {
		log.Fatal("Error parsing input parameters: ", err)
	}

	terrainPager, err := pkg.NewPager(opts, strategy_manager.NewStandardStrategyManager(opts, nil))
	if err != nil {
		log.Fatal("Error creating pager: ", err)
	}
	defer terrainPager.Shutdown()

	fmt.Print(tools.FormatSelectionReport(terrainPager.GetSelectionInfo()))
	tools.LogOutput("Report completed")
}

func mainCommandProbe(args []string) {
	flags := tools.ParseFlagsForCommandProbe(args)

	if *flags.Help {
		showHelp()
		return
	}

	opts, err := optionsFromFlags(flags.PagerFlags)
	if err != nil {
		log.Fatal("Error parsing input parameters: ", err)
	}

	terrainPager, err := pkg.NewPager(opts, strategy_manager.NewStandardStrategyManager(opts, nil))
	if err != nil {
		log.Fatal("Error creating pager: ", err)
	}
	defer terrainPager.Shutdown()

	defer timeTrack(time.Now(), "probe")

	eye := vec3d.T{*flags.EyeX, *flags.EyeY, *flags.EyeZ}
	visible := terrainPager.Evaluate(eye)

	tools.LogOutput(fmt.Sprintf("%d tiles selected for eye %v", len(visible), eye))
	for _, tile := range visible {
		fmt.Printf("%-16s range=%.1f visibility=%.1f morph=%.3f\n",
			tile.Key.String(), tile.Range, tile.VisibilityRange, tile.MorphFactor)
	}
}

// Puts command line args inside a PagerOptions struct. A config file, if
// given, wins over the individual flags.
func optionsFromFlags(flags tools.PagerFlags) (*pager.PagerOptions, error) {
	if *flags.Config != "" {
		return pager.LoadPagerOptions(*flags.Config)
	}

	opts := pager.DefaultPagerOptions()
	opts.ProfileName = *flags.Profile
	opts.Srid = *flags.Srid
	opts.FirstLOD = uint32(*flags.FirstLod)
	opts.MaxLOD = uint32(*flags.MaxLod)
	opts.MinTileRangeFactor = *flags.MinTileRangeFactor
	opts.MorphStartRatio = *flags.MorphStartRatio
	opts.TileSize = *flags.TileSize
	opts.ZOffset = *flags.ZOffset
	opts.EnableGeoidZCorrection = *flags.ZGeoidCorrection
	opts.RefineMode = pager.ParseRefineMode(*flags.RefineMode)

	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

func timeTrack(start time.Time, name string) {
	elapsed := time.Since(start)
	tools.LogOutput(fmt.Sprintf("%s took %s", name, elapsed))
}

func printLogo() {
	fmt.Println(strings.ReplaceAll(logo, "YYYY", strconv.Itoa(time.Now().Year())))
}

func showHelp() {
	printLogo()
	fmt.Println("***")
	fmt.Println("terrain_pager computes level of detail switching distances for quadtree terrains and previews which tiles a camera would page in")
	printVersion()
	fmt.Println("***")
	fmt.Println("")
	fmt.Println("Command line flags: ")
	flag.CommandLine.SetOutput(os.Stdout)
	flag.PrintDefaults()
}

func printVersion() {
	fmt.Println("v." + VERSION)
}
