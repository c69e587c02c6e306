// Package geometry holds the shared data model of the planner and the
// transformation of pixel-space contours into flight space.
package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

var (
	// ErrDegenerateVolume is returned for a flight volume with zero or
	// negative span on an axis.
	ErrDegenerateVolume = errors.New("degenerate flight volume")
	ErrInvalidSafetyBox = errors.New("invalid safety box")
)

// Contour is an ordered polyline, in pixel coordinates when it comes from a
// contour source and in flight units once scaled.
type Contour = orb.LineString

// ContourSet is the output of a contour source: the polylines and the pixel
// dimensions of the canvas they were traced on.
type ContourSet struct {
	Contours []Contour `json:"contours"`
	Width    int       `json:"width"`
	Height   int       `json:"height"`
}

// NumPoints returns the total number of points over all contours.
func (s ContourSet) NumPoints() int {
	n := 0
	for _, c := range s.Contours {
		n += len(c)
	}
	return n
}

// FlightVolume is the axis-aligned box all generated geometry must lie in.
// X is the width, Y the height and Z the depth.
type FlightVolume struct {
	MinX float64 `json:"minX" yaml:"minX"`
	MinY float64 `json:"minY" yaml:"minY"`
	MinZ float64 `json:"minZ" yaml:"minZ"`
	MaxX float64 `json:"maxX" yaml:"maxX"`
	MaxY float64 `json:"maxY" yaml:"maxY"`
	MaxZ float64 `json:"maxZ" yaml:"maxZ"`
}

func (v FlightVolume) Width() float64  { return v.MaxX - v.MinX }
func (v FlightVolume) Height() float64 { return v.MaxY - v.MinY }
func (v FlightVolume) Depth() float64  { return v.MaxZ - v.MinZ }

// Center returns the horizontal (X) and vertical (Y) centre of the volume.
func (v FlightVolume) Center() (x, y float64) {
	return (v.MinX + v.MaxX) / 2, (v.MinY + v.MaxY) / 2
}

// Validate checks min < max on every axis.
func (v FlightVolume) Validate() error {
	spans := []struct {
		axis     string
		min, max float64
	}{
		{"x", v.MinX, v.MaxX},
		{"y", v.MinY, v.MaxY},
		{"z", v.MinZ, v.MaxZ},
	}
	for _, s := range spans {
		if math.IsNaN(s.min) || math.IsNaN(s.max) || !(s.min < s.max) {
			return fmt.Errorf("%w: %s axis [%g, %g]", ErrDegenerateVolume, s.axis, s.min, s.max)
		}
	}
	return nil
}

// SafetyBox is the separation volume around one vehicle: DX along x, DY
// along the vertical y axis and DZ along the depth axis.
type SafetyBox struct {
	DX float64 `json:"dx" yaml:"dx"`
	DY float64 `json:"dy" yaml:"dy"`
	DZ float64 `json:"dz" yaml:"dz"`
}

func (b SafetyBox) Validate() error {
	if !(b.DX > 0 && b.DY > 0 && b.DZ > 0) {
		return fmt.Errorf("%w: (%g, %g, %g)", ErrInvalidSafetyBox, b.DX, b.DY, b.DZ)
	}
	return nil
}

// Position is a vehicle position as (depth, x, y).
type Position struct {
	Depth float64 `json:"depth"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// Distance is the Euclidean distance between two positions.
func (p Position) Distance(other Position) float64 {
	dd := p.Depth - other.Depth
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dd*dd + dx*dx + dy*dy)
}

// Row returns the position as a (depth, x, y) row.
func (p Position) Row() []float64 {
	return []float64{p.Depth, p.X, p.Y}
}
