// Package formation computes a static multi-vehicle formation: target
// positions derived from a waypoint cloud, pushed apart until the vehicles'
// safety volumes no longer overlap, and an optimal assignment of ground
// grid slots to those targets.
package formation

import (
	"fmt"
	"time"

	"github.com/paulmach/orb"

	"choreo-planner/internal/geometry"
	"choreo-planner/internal/log"
	"choreo-planner/internal/waypoint"
)

// Clusterer partitions planar points into k clusters and returns their
// centroids. Centroid order carries no meaning.
type Clusterer interface {
	Cluster(points []orb.Point, k int) ([]orb.Point, error)
}

// Plan is the result of one planning run.
type Plan struct {
	InitialGrid []geometry.Position `json:"initialGrid"`
	Ideal       []geometry.Position `json:"ideal"`
	Adjusted    []geometry.Position `json:"adjusted"`
	// Assignment maps grid index to index into Adjusted.
	Assignment []int `json:"assignment"`
	// Assigned holds the goal of every grid slot, in grid order.
	Assigned   []geometry.Position `json:"assigned"`
	Iterations int                 `json:"iterations"`
	// Complete is false when overlaps could not be resolved; such a plan
	// has no assignment and must not be exported.
	Complete bool `json:"complete"`
}

// Planner turns a waypoint cloud into a formation for Vehicles vehicles.
type Planner struct {
	Volume        geometry.FlightVolume
	Box           geometry.SafetyBox
	Vehicles      int
	MaxIterations int
	Workers       int
	Clusterer     Clusterer
	Assigner      Assigner
	Logger        *log.Logger
}

// Plan runs clustering, collision resolution, centering, grid estimation
// and assignment. When the formation is infeasible the returned plan is
// incomplete and the error is an *InfeasibleError.
func (p *Planner) Plan(path waypoint.Path) (*Plan, error) {
	if p.Vehicles <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrNoVehicles, p.Vehicles)
	}
	if err := p.Volume.Validate(); err != nil {
		return nil, err
	}
	if err := p.Box.Validate(); err != nil {
		return nil, err
	}
	if path.Len() < p.Vehicles {
		return nil, fmt.Errorf("%w: %d waypoints for %d vehicles", ErrTooFewPoints, path.Len(), p.Vehicles)
	}

	start := time.Now()
	p.Logger.Infof("planning formation for %d vehicles from %d waypoints", p.Vehicles, path.Len())

	centroids, err := p.Clusterer.Cluster(path.Planar(), p.Vehicles)
	if err != nil {
		return nil, fmt.Errorf("clustering waypoints: %w", err)
	}
	if len(centroids) != p.Vehicles {
		return nil, fmt.Errorf("clusterer returned %d centroids for %d vehicles", len(centroids), p.Vehicles)
	}

	plan := &Plan{
		InitialGrid: InitialGrid(p.Vehicles, p.Volume, p.Box),
		Ideal:       IdealPositions(centroids, p.Volume.MinZ),
	}

	resolver := Resolver{
		Box:           p.Box,
		MaxDepth:      p.Volume.MaxZ,
		MaxIterations: p.MaxIterations,
		Workers:       p.Workers,
		Logger:        p.Logger,
	}
	res, err := resolver.Resolve(plan.Ideal)
	plan.Adjusted = res.Positions
	plan.Iterations = res.Iterations
	if err != nil {
		p.Logger.Warn("formation infeasible", "error", err)
		return plan, err
	}

	plan.Adjusted = Center(plan.Adjusted, p.Volume)

	plan.Assignment, err = AssignGoals(plan.InitialGrid, plan.Adjusted, p.Assigner)
	if err != nil {
		return plan, fmt.Errorf("assigning goals: %w", err)
	}
	plan.Assigned = make([]geometry.Position, len(plan.Assignment))
	for i, j := range plan.Assignment {
		plan.Assigned[i] = plan.Adjusted[j]
		p.Logger.Debugf("vehicle %d is assigned to position %d", i, j)
	}
	plan.Complete = true

	p.Logger.Infof("formation planned in %s (%d iterations)", time.Since(start).Round(time.Millisecond), plan.Iterations)
	return plan, nil
}
