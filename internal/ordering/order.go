// Package ordering chooses the order in which contours are flown so that
// the transit between the end of one contour and the start of the next is
// short.
package ordering

import (
	"errors"
	"fmt"

	"choreo-planner/internal/geometry"
	"choreo-planner/internal/log"
)

var ErrBadOrder = errors.New("solver returned an invalid order")

// Solver returns a visiting order over the rows of a square distance
// matrix.
type Solver interface {
	Order(dist [][]float64) ([]int, error)
}

// DistanceTable builds the transit cost between every pair of contours:
// the distance from the end of one to the start of the other, averaged
// over both directions so the table is symmetric. For closed contours the
// two directions are equal.
func DistanceTable(contours []geometry.Contour) [][]float64 {
	n := len(contours)
	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := (transit(contours[i], contours[j]) + transit(contours[j], contours[i])) / 2
			dist[i][j] = d
			dist[j][i] = d
		}
	}
	return dist
}

// transit is the distance from the last point of a to the first of b
func transit(a, b geometry.Contour) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	return geometry.Distance(a[len(a)-1], b[0])
}

// Order returns the permutation of contour indices chosen by solver.
func Order(contours []geometry.Contour, solver Solver, logger *log.Logger) ([]int, error) {
	if len(contours) <= 1 {
		order := make([]int, len(contours))
		return order, nil
	}

	dist := DistanceTable(contours)
	order, err := solver.Order(dist)
	if err != nil {
		return nil, fmt.Errorf("ordering %d contours: %w", len(contours), err)
	}
	if err := validate(order, len(contours)); err != nil {
		return nil, err
	}

	logger.Debugf("contour order: transit %.3f -> %.3f",
		TourLength(dist, identity(len(contours))), TourLength(dist, order))
	return order, nil
}

// TourLength is the total transit cost of visiting rows in order.
func TourLength(dist [][]float64, order []int) float64 {
	total := 0.0
	for i := 1; i < len(order); i++ {
		total += dist[order[i-1]][order[i]]
	}
	return total
}

func identity(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}

func validate(order []int, n int) error {
	if len(order) != n {
		return fmt.Errorf("%w: %d entries for %d contours", ErrBadOrder, len(order), n)
	}
	seen := make([]bool, n)
	for _, idx := range order {
		if idx < 0 || idx >= n || seen[idx] {
			return fmt.Errorf("%w: index %d", ErrBadOrder, idx)
		}
		seen[idx] = true
	}
	return nil
}
