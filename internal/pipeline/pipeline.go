// Package pipeline wires contour sources, the geometry and waypoint stages
// and the formation planner into the two runs the tools offer: a light
// painting path for one vehicle and a static formation for many.
package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"

	"choreo-planner/internal/config"
	"choreo-planner/internal/formation"
	"choreo-planner/internal/geometry"
	"choreo-planner/internal/log"
	"choreo-planner/internal/ordering"
	"choreo-planner/internal/vision"
	"choreo-planner/internal/waypoint"
)

// ImageSource extracts contours from a raster image file.
type ImageSource interface {
	ExtractFile(path string) (geometry.ContourSet, error)
}

// Pipeline holds the configuration and the pluggable stages of a run.
type Pipeline struct {
	Config    *config.Config
	Images    ImageSource
	Solver    ordering.Solver
	Clusterer formation.Clusterer
	Assigner  formation.Assigner
	Logger    *log.Logger
}

// New returns a pipeline with the OpenCV extractor and clusterer, the
// nearest-neighbour contour order and the Hungarian assigner.
func New(cfg *config.Config, logger *log.Logger) *Pipeline {
	return &Pipeline{
		Config:    cfg,
		Images:    vision.Extractor{OutermostOnly: cfg.OutermostOnly, Logger: logger},
		Solver:    ordering.NearestNeighbor{Improve: true},
		Clusterer: vision.KMeans{Seed: cfg.Seed},
		Assigner:  formation.Hungarian{},
		Logger:    logger,
	}
}

// LoadContours reads GeoJSON files (.geojson, .json) directly and hands
// everything else to the image source.
func (p *Pipeline) LoadContours(path string) (geometry.ContourSet, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".geojson", ".json":
		set, err := geometry.LoadGeoJSON(path, p.Logger)
		if err != nil {
			return set, err
		}
		if p.Config.OutermostOnly {
			set.Contours = geometry.Outermost(set.Contours)
		}
		return set, nil
	default:
		return p.Images.ExtractFile(path)
	}
}

// LightPainting is the result of a single-vehicle run.
type LightPainting struct {
	Path    waypoint.Path    `json:"path"`
	Metrics waypoint.Metrics `json:"metrics"`
	// Raw is the waypoint count before simplification.
	Raw    int     `json:"raw"`
	Factor float64 `json:"factor"`
}

// LightPainting scales the contours into the flight volume, optionally
// reorders them, builds and simplifies the path and computes its metrics.
func (p *Pipeline) LightPainting(set geometry.ContourSet) (*LightPainting, error) {
	cfg := p.Config
	contours, factor, err := p.flightContours(set)
	if err != nil {
		return nil, err
	}

	var order []int
	if cfg.ReorderContours {
		order, err = ordering.Order(contours, p.Solver, p.Logger)
		if err != nil {
			return nil, err
		}
	}

	path, err := waypoint.Build(contours, order, cfg.Signal)
	if err != nil {
		return nil, err
	}
	raw := path.Len()
	if raw == 0 {
		p.Logger.Warn("no contour points to fly, returning an empty path")
		return &LightPainting{Path: path, Factor: factor}, nil
	}

	path, err = waypoint.Simplify(path, cfg.Detail)
	if err != nil {
		return nil, err
	}
	p.Logger.Infof("simplified path from %d to %d waypoints", raw, path.Len())

	m, err := waypoint.ComputeMetrics(path, cfg.Speed, cfg.DwellTime, cfg.GetTimeModel())
	if err != nil {
		return nil, err
	}
	p.Logger.Info("light painting path ready", "metrics", m.String())

	return &LightPainting{Path: path, Metrics: m, Raw: raw, Factor: factor}, nil
}

// Formation plans a static formation over the unsimplified path of the
// contours. An infeasible formation returns the partial plan together
// with the *formation.InfeasibleError.
func (p *Pipeline) Formation(set geometry.ContourSet) (*formation.Plan, error) {
	cfg := p.Config
	contours, _, err := p.flightContours(set)
	if err != nil {
		return nil, err
	}

	path, err := waypoint.Build(contours, nil, false)
	if err != nil {
		return nil, err
	}

	planner := &formation.Planner{
		Volume:        cfg.Volume,
		Box:           cfg.SafetyBox,
		Vehicles:      cfg.Vehicles,
		MaxIterations: cfg.MaxIterations,
		Workers:       cfg.Workers,
		Clusterer:     p.Clusterer,
		Assigner:      p.Assigner,
		Logger:        p.Logger,
	}
	return planner.Plan(path)
}

func (p *Pipeline) flightContours(set geometry.ContourSet) ([]geometry.Contour, float64, error) {
	scaled, err := geometry.Scale(set, p.Config.Volume, p.Logger)
	if err != nil {
		return nil, 0, fmt.Errorf("scaling contours: %w", err)
	}
	contours := scaled.Contours
	if eps := p.Config.ContourEpsilon; eps > 0 {
		contours = geometry.SimplifyContours(contours, eps)
	}
	return contours, scaled.Factor, nil
}
