// Command terrain samples a surface, computes slope, aspect and hillshade
// grids and writes images, an HTML page and a JSON report.
//
// Usage:
//
//	terrain [-config run.hcl] [-surface peaks] [-altitude 45] [-azimuth 315] [-out plots]
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/banshee-data/terrain.report/internal/config"
	"github.com/banshee-data/terrain.report/internal/fsutil"
	"github.com/banshee-data/terrain.report/internal/monitoring"
	"github.com/banshee-data/terrain.report/internal/timeutil"
	"github.com/banshee-data/terrain.report/internal/version"
)

var (
	configPath  = flag.String("config", "", "Run config file (.json or .hcl); built-in defaults when empty")
	surfaceName = flag.String("surface", "", "Surface to sample: peaks, ramp or cone")
	altitude    = flag.Float64("altitude", 45, "Sun altitude in degrees above the horizon [0,90]")
	azimuth     = flag.Float64("azimuth", 315, "Sun azimuth in degrees clockwise from north [0,360)")
	workers     = flag.Int("workers", 0, "Worker goroutines (0 = GOMAXPROCS)")
	outputDir   = flag.String("out", "", "Output directory")
	formats     = flag.String("formats", "", "Comma-separated outputs: png,html,json")
	dbPath      = flag.String("db", "", "SQLite run history database (empty disables)")
	history     = flag.Int("history", 0, "List the N most recent stored runs from -db and exit")
	progress    = flag.Bool("progress", false, "Show a progress bar while computing")
	verbose     = flag.Bool("verbose", false, "Enable debug logging")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println("terrain", version.String())
		return
	}
	monitoring.SetVerbose(*verbose)

	if *history > 0 {
		if err := printHistory(context.Background(), os.Stdout, *dbPath, *history); err != nil {
			log.Fatalf("Failed to list runs: %v", err)
		}
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	applyOverrides(cfg, set)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := runEnv{FS: fsutil.OSFileSystem{}, Clock: timeutil.RealClock{}, Progress: *progress}
	rep, err := run(ctx, cfg, env)
	if err != nil {
		log.Fatalf("Run failed: %v", err)
	}
	monitoring.Logf("run %s: %dx%d grid in %v, %d outputs", rep.RunID, rep.Rows, rep.Cols, rep.Duration, len(rep.Outputs))
	for _, p := range rep.Outputs {
		fmt.Println(p)
	}
}

func loadConfig(path string) (*config.RunConfig, error) {
	if path == "" {
		return config.DefaultRunConfig(), nil
	}
	return config.LoadRunConfig(path)
}

// applyOverrides copies explicitly set flags over the loaded config.
func applyOverrides(cfg *config.RunConfig, set map[string]bool) {
	if set["surface"] {
		cfg.Surface = surfaceName
	}
	if set["altitude"] {
		cfg.AltitudeDeg = altitude
	}
	if set["azimuth"] {
		cfg.AzimuthDeg = azimuth
	}
	if set["workers"] {
		cfg.Workers = workers
	}
	if set["out"] {
		cfg.OutputDir = outputDir
	}
	if set["formats"] {
		cfg.Formats = splitFormats(*formats)
	}
	if set["db"] {
		cfg.Database = dbPath
	}
}

func splitFormats(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}
