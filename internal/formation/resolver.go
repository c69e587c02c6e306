package formation

import (
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"

	"choreo-planner/internal/geometry"
	"choreo-planner/internal/log"
)

// DefaultMaxIterations bounds the displacement loop of a Resolver.
const DefaultMaxIterations = 10000

// parallelThreshold is the vehicle count from which the per-vehicle
// overlap totals are computed concurrently.
const parallelThreshold = 64

// Resolver pushes vehicles back along the depth axis until no two safety
// volumes overlap.
type Resolver struct {
	Box geometry.SafetyBox
	// MaxDepth is the depth bound; a vehicle is only pushed while the
	// deepest vehicle is still within it.
	MaxDepth float64
	// MaxIterations caps the loop; 0 means DefaultMaxIterations.
	MaxIterations int
	// Workers limits the goroutines used for large formations; 0 means
	// GOMAXPROCS.
	Workers int
	Logger  *log.Logger
}

// Resolution is the outcome of a successful Resolve.
type Resolution struct {
	Positions  []geometry.Position
	Iterations int
}

// Resolve returns collision-free positions derived from ideal, which is not
// modified. Each iteration sums, per vehicle, the IoU with every other
// vehicle; the first vehicle with the largest total is pushed one box depth
// further. On failure the error is an *InfeasibleError and the returned
// Resolution holds the positions reached so far.
func (r Resolver) Resolve(ideal []geometry.Position) (Resolution, error) {
	if err := r.Box.Validate(); err != nil {
		return Resolution{}, err
	}

	maxIter := r.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}

	work := make([]geometry.Position, len(ideal))
	copy(work, ideal)

	for iter := 0; ; iter++ {
		totals, err := r.overlapTotals(work)
		if err != nil {
			return Resolution{Positions: work, Iterations: iter}, err
		}

		maxIoU, maxVehicle := 0.0, -1
		if len(totals) > 0 {
			maxVehicle = floats.MaxIdx(totals)
			maxIoU = totals[maxVehicle]
		}
		r.Logger.Debugf("iteration %d: max IoU %.4f at vehicle %d", iter, maxIoU, maxVehicle)

		if maxIoU == 0 {
			r.Logger.Infof("overlap-free formation for %d vehicles after %d iterations", len(work), iter)
			return Resolution{Positions: work, Iterations: iter}, nil
		}

		if iter >= maxIter {
			return Resolution{Positions: work, Iterations: iter}, &InfeasibleError{
				Vehicle:    maxVehicle,
				Vehicles:   len(work),
				Reason:     ReasonIterationCap,
				Iterations: iter,
			}
		}

		if deepest(work) > r.MaxDepth {
			return Resolution{Positions: work, Iterations: iter}, &InfeasibleError{
				Vehicle:    maxVehicle,
				Vehicles:   len(work),
				Reason:     ReasonDepthExceeded,
				Iterations: iter,
			}
		}

		work[maxVehicle].Depth += r.Box.DZ
	}
}

// overlapTotals returns, for each vehicle, the sum of its IoU with every
// other vehicle.
func (r Resolver) overlapTotals(positions []geometry.Position) ([]float64, error) {
	n := len(positions)
	totals := make([]float64, n)
	if n < 2 {
		return totals, nil
	}

	boxes := make([]r3.Box, n)
	for i, p := range positions {
		boxes[i] = safetyBounds(p, r.Box)
	}
	index, err := newSpatialIndex(boxes)
	if err != nil {
		return nil, fmt.Errorf("building spatial index: %w", err)
	}

	// Each total is summed over ascending partner indices with the pair
	// arguments in a fixed order, so the result does not depend on how
	// the work is split.
	total := func(i int) float64 {
		sum := 0.0
		for _, j := range index.candidates(i) {
			a, b := i, j
			if a > b {
				a, b = b, a
			}
			sum += boxIoU(boxes[a], boxes[b])
		}
		return sum
	}

	if n < parallelThreshold {
		for i := range totals {
			totals[i] = total(i)
		}
		return totals, nil
	}

	workers := r.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	chunk := (n + workers - 1) / workers

	var g errgroup.Group
	g.SetLimit(workers)
	for start := 0; start < n; start += chunk {
		start, end := start, min(start+chunk, n)
		g.Go(func() error {
			for i := start; i < end; i++ {
				totals[i] = total(i)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return totals, nil
}

func deepest(positions []geometry.Position) float64 {
	d := math.Inf(-1)
	for _, p := range positions {
		d = math.Max(d, p.Depth)
	}
	return d
}

// Overlaps reports every pair of positions whose safety volumes overlap.
func Overlaps(positions []geometry.Position, box geometry.SafetyBox) [][2]int {
	var pairs [][2]int
	for i := 0; i < len(positions); i++ {
		for j := i + 1; j < len(positions); j++ {
			if PairIoU(positions[i], positions[j], box) > 0 {
				pairs = append(pairs, [2]int{i, j})
			}
		}
	}
	return pairs
}
