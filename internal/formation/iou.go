package formation

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"choreo-planner/internal/geometry"
)

// downwashScale is applied to the vertical coordinate of a vehicle before
// its safety box is placed, modelling the rotor downwash below it.
const downwashScale = 0.5

// safetyBounds returns the axis-aligned safety volume of a vehicle at p.
// Axes are ordered (depth, x, y) and match geometry.Position.
func safetyBounds(p geometry.Position, box geometry.SafetyBox) r3.Box {
	c := r3.Vec{X: p.Depth, Y: p.X, Z: p.Y * downwashScale}
	half := r3.Vec{X: box.DZ / 2, Y: box.DX / 2, Z: box.DY / 2}
	return r3.Box{Min: r3.Sub(c, half), Max: r3.Add(c, half)}
}

// boxIoU is the intersection over union of two axis-aligned boxes.
func boxIoU(a, b r3.Box) float64 {
	ix := overlap(a.Min.X, a.Max.X, b.Min.X, b.Max.X)
	iy := overlap(a.Min.Y, a.Max.Y, b.Min.Y, b.Max.Y)
	iz := overlap(a.Min.Z, a.Max.Z, b.Min.Z, b.Max.Z)
	inter := ix * iy * iz
	if inter == 0 {
		return 0
	}
	union := volume(a) + volume(b) - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

func overlap(amin, amax, bmin, bmax float64) float64 {
	return math.Max(0, math.Min(amax, bmax)-math.Max(amin, bmin))
}

func volume(b r3.Box) float64 {
	return (b.Max.X - b.Min.X) * (b.Max.Y - b.Min.Y) * (b.Max.Z - b.Min.Z)
}

// PairIoU is the 3D IoU of the safety volumes of two vehicles.
func PairIoU(a, b geometry.Position, box geometry.SafetyBox) float64 {
	return boxIoU(safetyBounds(a, box), safetyBounds(b, box))
}
