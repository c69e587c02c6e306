package formation

import (
	"math"

	"github.com/paulmach/orb"

	"choreo-planner/internal/geometry"
)

// InitialGrid places n starting positions row-major on a square grid of
// side ceil(sqrt(n)), centred on the volume's X/Y centre at zero depth and
// spaced by the safety box footprint.
func InitialGrid(n int, vol geometry.FlightVolume, box geometry.SafetyBox) []geometry.Position {
	if n <= 0 {
		return nil
	}

	cx, cy := vol.Center()
	side := int(math.Ceil(math.Sqrt(float64(n))))
	x0 := cx - (float64(side)/2-0.5)*box.DX
	y0 := cy - (float64(side)/2-0.5)*box.DY

	grid := make([]geometry.Position, n)
	for i := range grid {
		row, col := i/side, i%side
		grid[i] = geometry.Position{
			Depth: 0,
			X:     x0 + float64(col)*box.DX,
			Y:     y0 + float64(row)*box.DY,
		}
	}
	return grid
}

// IdealPositions places one position per centroid at the given depth.
func IdealPositions(centroids []orb.Point, depth float64) []geometry.Position {
	out := make([]geometry.Position, len(centroids))
	for i, c := range centroids {
		out[i] = geometry.Position{Depth: depth, X: c.X(), Y: c.Y()}
	}
	return out
}

// Center shifts positions along the depth axis so that the midpoint of
// their depth span equals the volume's horizontal centre. The input is not
// modified.
func Center(positions []geometry.Position, vol geometry.FlightVolume) []geometry.Position {
	out := make([]geometry.Position, len(positions))
	copy(out, positions)
	if len(out) == 0 {
		return out
	}

	minD, maxD := math.Inf(1), math.Inf(-1)
	for _, p := range out {
		minD = math.Min(minD, p.Depth)
		maxD = math.Max(maxD, p.Depth)
	}
	cx, _ := vol.Center()
	shift := cx - (minD + (maxD-minD)/2)
	for i := range out {
		out[i].Depth += shift
	}
	return out
}
