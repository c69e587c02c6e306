package formation

import (
	"errors"
	"fmt"
)

var (
	// ErrAssignmentSize means the grid and goal position counts differ,
	// which the planner never produces on its own.
	ErrAssignmentSize = errors.New("grid and goal position counts differ")
	ErrTooFewPoints   = errors.New("fewer waypoints than vehicles")
	ErrNoVehicles     = errors.New("vehicle count must be positive")
)

// InfeasibleReason says why the collision loop gave up.
type InfeasibleReason int

const (
	ReasonDepthExceeded InfeasibleReason = iota
	ReasonIterationCap
)

func (r InfeasibleReason) String() string {
	switch r {
	case ReasonDepthExceeded:
		return "depth limit exceeded"
	case ReasonIterationCap:
		return "iteration limit reached"
	default:
		return fmt.Sprintf("InfeasibleReason(%d)", int(r))
	}
}

// InfeasibleError reports a formation whose overlaps could not be resolved
// inside the flight volume.
type InfeasibleError struct {
	// Vehicle is the vehicle with the largest remaining overlap.
	Vehicle    int
	Vehicles   int
	Reason     InfeasibleReason
	Iterations int
}

func (e *InfeasibleError) Error() string {
	return fmt.Sprintf("formation for %d vehicles failed at vehicle %d: %s after %d iterations, lower the number of vehicles",
		e.Vehicles, e.Vehicle, e.Reason, e.Iterations)
}
