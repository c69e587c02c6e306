package geometry

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"
)

// SimplifyContour reduces contour complexity using Douglas-Peucker.
// Closed contours stay closed; a contour that would collapse below three
// distinct points is returned unchanged.
func SimplifyContour(c Contour, epsilon float64) Contour {
	if epsilon <= 0 || len(c) <= 3 {
		return c
	}

	dp := simplify.DouglasPeucker(epsilon)

	if IsClosed(c) {
		s, ok := dp.Simplify(orb.Ring(c.Clone())).(orb.Ring)
		// A ring needs at least 3 distinct points plus the closing one.
		if !ok || len(s) < 4 {
			return c
		}
		return Contour(s)
	}

	s, ok := dp.Simplify(c.Clone()).(orb.LineString)
	if !ok || len(s) < 2 {
		return c
	}
	return s
}

// SimplifyContours simplifies every contour
func SimplifyContours(contours []Contour, epsilon float64) []Contour {
	if epsilon <= 0 {
		return contours
	}
	simplified := make([]Contour, len(contours))
	for i, c := range contours {
		simplified[i] = SimplifyContour(c, epsilon)
	}
	return simplified
}
