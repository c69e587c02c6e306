// Package waypoint turns scaled contours into an ordered flight path and
// provides the simplification and flight metrics over that path.
package waypoint

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"gonum.org/v1/gonum/spatial/r3"

	"choreo-planner/internal/geometry"
)

// DefaultAltitude is the hover/cruise altitude assigned to every waypoint.
const DefaultAltitude = 1.5

// Signal values. SignalTransit marks the first point of a contour, where
// the vehicle arrives from the previous contour.
const (
	SignalTransit uint8 = 0
	SignalPath    uint8 = 1
)

var (
	ErrEmptyPath          = errors.New("empty waypoint path")
	ErrInvalidPermutation = errors.New("invalid contour permutation")
)

// Waypoint is a single flight target.
type Waypoint struct {
	Altitude float64 `json:"altitude"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	// Signal is only meaningful when the owning path has SignalMode set.
	Signal uint8 `json:"signal,omitempty"`
}

// Distance is the Euclidean distance over the position components.
func (w Waypoint) Distance(other Waypoint) float64 {
	return r3.Norm(r3.Sub(vec(w), vec(other)))
}

// Path is an ordered list of waypoints; index order is flight order.
type Path struct {
	Points     []Waypoint `json:"points"`
	SignalMode bool       `json:"signalMode"`
}

func (p Path) Len() int { return len(p.Points) }

// Clone returns a deep copy of the path.
func (p Path) Clone() Path {
	out := Path{SignalMode: p.SignalMode, Points: make([]Waypoint, len(p.Points))}
	copy(out.Points, p.Points)
	return out
}

// Planar returns the (x, y) coordinates of every waypoint.
func (p Path) Planar() []orb.Point {
	pts := make([]orb.Point, len(p.Points))
	for i, w := range p.Points {
		pts[i] = orb.Point{w.X, w.Y}
	}
	return pts
}

// Rows returns the path as (altitude, x, y[, signal]) rows.
func (p Path) Rows() [][]float64 {
	rows := make([][]float64, len(p.Points))
	for i, w := range p.Points {
		if p.SignalMode {
			rows[i] = []float64{w.Altitude, w.X, w.Y, float64(w.Signal)}
		} else {
			rows[i] = []float64{w.Altitude, w.X, w.Y}
		}
	}
	return rows
}

// Build flattens contours into a path at DefaultAltitude. When order is
// non-nil the contours are visited in that order, otherwise in slice order.
// With signalMode set the first point of every contour gets SignalTransit
// and the others SignalPath.
func Build(contours []geometry.Contour, order []int, signalMode bool) (Path, error) {
	if order == nil {
		order = make([]int, len(contours))
		for i := range order {
			order[i] = i
		}
	} else if err := checkPermutation(order, len(contours)); err != nil {
		return Path{}, err
	}

	n := 0
	for _, c := range contours {
		n += len(c)
	}

	path := Path{SignalMode: signalMode, Points: make([]Waypoint, 0, n)}
	for _, idx := range order {
		for j, pt := range contours[idx] {
			w := Waypoint{Altitude: DefaultAltitude, X: pt.X(), Y: pt.Y()}
			if signalMode {
				w.Signal = SignalPath
				if j == 0 {
					w.Signal = SignalTransit
				}
			}
			path.Points = append(path.Points, w)
		}
	}

	return path, nil
}

func checkPermutation(order []int, n int) error {
	if len(order) != n {
		return fmt.Errorf("%w: %d entries for %d contours", ErrInvalidPermutation, len(order), n)
	}
	seen := make([]bool, n)
	for _, idx := range order {
		if idx < 0 || idx >= n || seen[idx] {
			return fmt.Errorf("%w: bad or repeated index %d", ErrInvalidPermutation, idx)
		}
		seen[idx] = true
	}
	return nil
}
