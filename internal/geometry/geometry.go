package geometry

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Distance calculates Euclidean distance between two planar points
func Distance(p, other orb.Point) float64 {
	return planar.Distance(p, other)
}

// IsClosed reports whether the contour ends where it starts
func IsClosed(c Contour) bool {
	if len(c) < 2 {
		return false
	}
	const closeThreshold = 1e-9
	first, last := c[0], c[len(c)-1]
	return math.Abs(first.X()-last.X()) < closeThreshold && math.Abs(first.Y()-last.Y()) < closeThreshold
}

// IsPointInContour reports whether point lies inside or on the ring
// formed by c. Open contours are closed implicitly.
func IsPointInContour(point orb.Point, c Contour) bool {
	if len(c) < 3 {
		return false
	}
	return planar.RingContains(ring(c), point)
}

func ring(c Contour) orb.Ring {
	if IsClosed(c) {
		return orb.Ring(c)
	}
	r := make(orb.Ring, len(c), len(c)+1)
	copy(r, c)
	return append(r, c[0])
}

// Bounds returns the bounding box of all points in the contours. The
// second result is false when there are no points.
func Bounds(contours []Contour) (orb.Bound, bool) {
	var b orb.Bound
	found := false
	for _, c := range contours {
		if len(c) == 0 {
			continue
		}
		if !found {
			b = c.Bound()
			found = true
			continue
		}
		b = b.Union(c.Bound())
	}
	return b, found
}

// translate returns a copy of c shifted by (dx, dy)
func translate(c Contour, dx, dy float64) Contour {
	out := make(Contour, len(c))
	for i, p := range c {
		out[i] = orb.Point{p.X() + dx, p.Y() + dy}
	}
	return out
}

// scale returns a copy of c with every coordinate multiplied by f
func scale(c Contour, f float64) Contour {
	out := make(Contour, len(c))
	for i, p := range c {
		out[i] = orb.Point{p.X() * f, p.Y() * f}
	}
	return out
}
