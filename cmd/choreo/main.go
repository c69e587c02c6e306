// choreo converts an image or GeoJSON drawing into flight waypoints: a
// light painting path for one vehicle, a static formation for many, or
// both.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"choreo-planner/internal/config"
	"choreo-planner/internal/export"
	"choreo-planner/internal/formation"
	"choreo-planner/internal/log"
	"choreo-planner/internal/pipeline"
)

type options struct {
	input      string
	configPath string
	outDir     string
	mode       string
	vehicles   int
	detail     float64
	signal     bool
	reorder    bool
	savePlan   bool
	logLevel   string
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "JSON or YAML configuration file")
	flag.StringVar(&opts.outDir, "out", ".", "output directory")
	flag.StringVar(&opts.mode, "mode", "lp", "run to perform: lp (light painting), mdf (formation) or both")
	flag.IntVar(&opts.vehicles, "vehicles", 0, "number of vehicles for the formation (overrides config)")
	flag.Float64Var(&opts.detail, "detail", 0, "minimum waypoint spacing (overrides config)")
	flag.BoolVar(&opts.signal, "signal", false, "emit a LED signal column in the light painting path")
	flag.BoolVar(&opts.reorder, "reorder", false, "reorder contours to shorten transit")
	flag.BoolVar(&opts.savePlan, "save-plan", false, "also write the formation plan as JSON")
	flag.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error (overrides config)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <image|geojson>\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	opts.input = flag.Arg(0)

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "choreo: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(opts options) (*config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			return nil, err
		}
	}
	if opts.vehicles > 0 {
		cfg.Vehicles = opts.vehicles
	}
	if opts.detail > 0 {
		cfg.Detail = opts.detail
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	cfg.Signal = cfg.Signal || opts.signal
	cfg.ReorderContours = cfg.ReorderContours || opts.reorder
	return cfg, cfg.Validate()
}

func run(opts options) error {
	var lp, mdf bool
	switch opts.mode {
	case "lp":
		lp = true
	case "mdf":
		mdf = true
	case "both":
		lp, mdf = true, true
	default:
		return fmt.Errorf("unknown mode %q", opts.mode)
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	logger := log.New(cfg.Log.Level, cfg.Log.Dir)

	if err := os.MkdirAll(opts.outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	p := pipeline.New(cfg, logger)
	set, err := p.LoadContours(opts.input)
	if err != nil {
		return err
	}

	w := export.Writer{Dir: opts.outDir, Name: export.Name(opts.input), Logger: logger}

	var g errgroup.Group
	if lp {
		g.Go(func() error {
			res, err := p.LightPainting(set)
			if err != nil {
				return fmt.Errorf("light painting: %w", err)
			}
			file, err := w.LightPainting(res.Path)
			if err != nil {
				return err
			}
			fmt.Printf("light painting: %s\n  %s\n", file, res.Metrics)
			return nil
		})
	}
	if mdf {
		g.Go(func() error {
			plan, err := p.Formation(set)
			var infeasible *formation.InfeasibleError
			if errors.As(err, &infeasible) {
				return infeasible
			}
			if err != nil {
				return fmt.Errorf("formation: %w", err)
			}
			gridFile, goalFile, err := w.Formation(plan)
			if err != nil {
				return err
			}
			fmt.Printf("formation: %s, %s (%d vehicles, %d iterations)\n", gridFile, goalFile, len(plan.Assigned), plan.Iterations)
			if opts.savePlan {
				return export.SavePlan(plan, filepath.Join(opts.outDir, w.Name+"_mdf_plan.json"), logger)
			}
			return nil
		})
	}

	err = g.Wait()
	logger.Infof("finished in %s", logger.Elapsed())
	return err
}
