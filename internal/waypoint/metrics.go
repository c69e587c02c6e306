package waypoint

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
)

var ErrInvalidSpeed = errors.New("speed must be positive")

// TimeModel selects how the flight duration is estimated from the path
// length.
type TimeModel int

const (
	// TimeScaled estimates distance/speed*dwell, where dwell is a
	// dimensionless slowdown factor for stopping at waypoints.
	TimeScaled TimeModel = iota
	// TimePerPoint estimates distance/speed + points*dwell, where dwell is
	// the time in seconds spent at each waypoint.
	TimePerPoint
)

func (m TimeModel) String() string {
	switch m {
	case TimeScaled:
		return "scaled"
	case TimePerPoint:
		return "per-point"
	default:
		return fmt.Sprintf("TimeModel(%d)", int(m))
	}
}

// ParseTimeModel accepts the names returned by TimeModel.String.
func ParseTimeModel(s string) (TimeModel, error) {
	switch s {
	case "", "scaled":
		return TimeScaled, nil
	case "per-point":
		return TimePerPoint, nil
	default:
		return 0, fmt.Errorf("unknown time model %q", s)
	}
}

// Seconds returns the estimated flight time in seconds.
func (m TimeModel) Seconds(distance, speed, dwell float64, points int) float64 {
	switch m {
	case TimePerPoint:
		return distance/speed + float64(points)*dwell
	default:
		return distance / speed * dwell
	}
}

// Metrics summarises a flight path.
type Metrics struct {
	// Takeoff is the ground point directly below the first waypoint.
	Takeoff       Waypoint `json:"takeoff"`
	TakeoffHeight float64  `json:"takeoffHeight"`
	Min           Waypoint `json:"min"`
	Max           Waypoint `json:"max"`
	Points        int      `json:"points"`
	Distance      float64  `json:"distance"`
	Seconds       float64  `json:"seconds"`
}

// Duration returns Seconds as a time.Duration.
func (m Metrics) Duration() time.Duration {
	return time.Duration(m.Seconds * float64(time.Second))
}

func (m Metrics) String() string {
	return fmt.Sprintf("initial position (%.3f, %.3f, %.3f), takeoff height %.3f, "+
		"min (%.3f, %.3f, %.3f), max (%.3f, %.3f, %.3f), %d waypoints, %.3f m, %s",
		m.Takeoff.Altitude, m.Takeoff.X, m.Takeoff.Y, m.TakeoffHeight,
		m.Min.Altitude, m.Min.X, m.Min.Y, m.Max.Altitude, m.Max.X, m.Max.Y,
		m.Points, m.Distance, m.Duration().Round(time.Millisecond))
}

// ComputeMetrics returns the total path length, starting from the takeoff
// point below the first waypoint, and the time estimate under model.
func ComputeMetrics(path Path, speed, dwell float64, model TimeModel) (Metrics, error) {
	if len(path.Points) == 0 {
		return Metrics{}, ErrEmptyPath
	}
	if !(speed > 0) {
		return Metrics{}, fmt.Errorf("%w: %g", ErrInvalidSpeed, speed)
	}

	first := path.Points[0]
	m := Metrics{
		Takeoff:       Waypoint{Altitude: first.Altitude, X: first.X},
		TakeoffHeight: first.Y,
		Min:           Waypoint{Altitude: math.Inf(1), X: math.Inf(1), Y: math.Inf(1)},
		Max:           Waypoint{Altitude: math.Inf(-1), X: math.Inf(-1), Y: math.Inf(-1)},
		Points:        len(path.Points),
	}

	prev := vec(m.Takeoff)
	for _, w := range path.Points {
		cur := vec(w)
		m.Distance += r3.Norm(r3.Sub(cur, prev))
		prev = cur

		m.Min.Altitude = math.Min(m.Min.Altitude, w.Altitude)
		m.Min.X = math.Min(m.Min.X, w.X)
		m.Min.Y = math.Min(m.Min.Y, w.Y)
		m.Max.Altitude = math.Max(m.Max.Altitude, w.Altitude)
		m.Max.X = math.Max(m.Max.X, w.X)
		m.Max.Y = math.Max(m.Max.Y, w.Y)
	}

	m.Seconds = model.Seconds(m.Distance, speed, dwell, m.Points)
	return m, nil
}

func vec(w Waypoint) r3.Vec {
	return r3.Vec{X: w.Altitude, Y: w.X, Z: w.Y}
}
