package geometry

import (
	"slices"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// containers lists, for every contour, the indices of the other contours
// that fully enclose it.
func containers(contours []Contour) [][]int {
	bounds := make([]orb.Bound, len(contours))
	for i, c := range contours {
		bounds[i] = c.Bound()
	}

	out := make([][]int, len(contours))
	for i, inner := range contours {
		if len(inner) == 0 {
			continue
		}
		for j, outer := range contours {
			if i == j || len(outer) < 3 {
				continue
			}
			if !bounds[j].Contains(bounds[i].Min) || !bounds[j].Contains(bounds[i].Max) {
				continue
			}
			if encloses(outer, inner) {
				out[i] = append(out[i], j)
			}
		}
	}
	return out
}

// encloses reports whether every vertex of inner lies in the ring of outer.
func encloses(outer, inner Contour) bool {
	r := ring(outer)
	for _, p := range inner {
		if !planar.RingContains(r, p) {
			return false
		}
	}
	return true
}

// Outermost keeps the top level of the containment hierarchy. Of two
// contours enclosing each other (identical outlines) the first is kept.
func Outermost(contours []Contour) []Contour {
	if len(contours) <= 1 {
		return contours
	}

	within := containers(contours)
	result := make([]Contour, 0, len(contours))
	for i, c := range contours {
		if isTopLevel(i, within) {
			result = append(result, c)
		}
	}
	return result
}

func isTopLevel(i int, within [][]int) bool {
	for _, j := range within[i] {
		if j < i || !slices.Contains(within[j], i) {
			return false
		}
	}
	return true
}

// Depths returns the nesting depth of each contour: 0 for top-level
// contours, 1 for contours directly inside one of them, and so on.
func Depths(contours []Contour) []int {
	depths := make([]int, len(contours))
	for i, js := range containers(contours) {
		depths[i] = len(js)
	}
	return depths
}
