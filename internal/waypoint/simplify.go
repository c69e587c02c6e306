package waypoint

import (
	"errors"
	"fmt"
)

// SimplifyPasses is the number of scans Simplify makes over the path.
const SimplifyPasses = 10

var ErrInvalidDetail = errors.New("detail must be positive")

// Simplify removes waypoints closer than detail to their predecessor.
//
// Each pass scans consecutive pairs once and deletes the later point of a
// pair that is too close. Deleting shifts the remaining points down, so the
// point following a deletion is compared with the successor of the kept
// one on the next pass rather than immediately; repeated passes pick up
// those pairs. The last point is never a candidate, and in signal mode only
// SignalPath points are deleted, so the endpoints and every contour start
// survive. The result is not a minimal point set.
func Simplify(path Path, detail float64) (Path, error) {
	if !(detail > 0) {
		return Path{}, fmt.Errorf("%w: %g", ErrInvalidDetail, detail)
	}

	out := path.Clone()
	pts := out.Points
	initial := len(pts)

	for pass := 0; pass < SimplifyPasses; pass++ {
		for i := 1; i < initial; i++ {
			if i+1 >= len(pts) {
				break
			}
			if pts[i-1].Distance(pts[i]) >= detail {
				continue
			}
			if out.SignalMode && pts[i].Signal != SignalPath {
				continue
			}
			pts = append(pts[:i], pts[i+1:]...)
		}
	}

	out.Points = pts
	return out, nil
}
