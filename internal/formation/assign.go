package formation

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"choreo-planner/internal/geometry"
)

// Assigner solves the square assignment problem for a cost matrix,
// returning assignment[row] = column.
type Assigner interface {
	Assign(cost mat.Matrix) ([]int, error)
}

// Hungarian implements the Kuhn-Munkres algorithm with row and column
// potentials (Jonker-Volgenant variant) in O(n³).
type Hungarian struct{}

func (Hungarian) Assign(cost mat.Matrix) ([]int, error) {
	n, m := cost.Dims()
	if n != m {
		return nil, fmt.Errorf("%w: %dx%d cost matrix", ErrAssignmentSize, n, m)
	}
	if n == 0 {
		return []int{}, nil
	}

	// Uses 1-indexed arrays internally for cleaner index arithmetic.
	const inf = math.MaxFloat64 / 2

	u := make([]float64, n+1) // Row potentials
	v := make([]float64, n+1) // Column potentials
	p := make([]int, n+1)     // p[j] = row assigned to column j
	way := make([]int, n+1)   // way[j] = previous column in augmenting path
	minv := make([]float64, n+1)
	used := make([]bool, n+1)

	for i := 1; i <= n; i++ {
		p[0] = i
		j0 := 0 // Virtual column

		for j := 1; j <= n; j++ {
			minv[j] = inf
			used[j] = false
		}

		for {
			used[j0] = true
			i0 := p[j0]
			delta := inf
			j1 := -1

			for j := 1; j <= n; j++ {
				if used[j] {
					continue
				}
				cur := cost.At(i0-1, j-1) - u[i0] - v[j]
				if cur < minv[j] {
					minv[j] = cur
					way[j] = j0
				}
				if minv[j] < delta {
					delta = minv[j]
					j1 = j
				}
			}

			if j1 < 0 {
				return nil, fmt.Errorf("no augmenting path for row %d", i-1)
			}

			for j := 0; j <= n; j++ {
				if used[j] {
					u[p[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}

			j0 = j1
			if p[j0] == 0 {
				break
			}
		}

		// Augment along the path.
		for j0 != 0 {
			p[j0] = p[way[j0]]
			j0 = way[j0]
		}
	}

	assignment := make([]int, n)
	for j := 1; j <= n; j++ {
		assignment[p[j]-1] = j - 1
	}
	return assignment, nil
}

// CostMatrix returns the pairwise Euclidean distances between grid
// positions (rows) and goal positions (columns).
func CostMatrix(grid, goals []geometry.Position) *mat.Dense {
	if len(grid) == 0 || len(goals) == 0 {
		return &mat.Dense{}
	}
	cost := mat.NewDense(len(grid), len(goals), nil)
	for i, g := range grid {
		for j, goal := range goals {
			cost.Set(i, j, g.Distance(goal))
		}
	}
	return cost
}

// AssignGoals matches every grid slot to exactly one goal position,
// minimising the total travelled distance. The result maps grid index to
// goal index.
func AssignGoals(grid, goals []geometry.Position, assigner Assigner) ([]int, error) {
	if len(grid) != len(goals) {
		return nil, fmt.Errorf("%w: %d grid positions, %d goals", ErrAssignmentSize, len(grid), len(goals))
	}
	if len(grid) == 0 {
		return []int{}, nil
	}

	assignment, err := assigner.Assign(CostMatrix(grid, goals))
	if err != nil {
		return nil, err
	}

	if len(assignment) != len(grid) {
		return nil, fmt.Errorf("%w: assigner returned %d entries for %d positions", ErrAssignmentSize, len(assignment), len(grid))
	}
	used := make([]bool, len(goals))
	for i, j := range assignment {
		if j < 0 || j >= len(goals) || used[j] {
			return nil, fmt.Errorf("assignment is not a bijection: grid %d -> goal %d", i, j)
		}
		used[j] = true
	}
	return assignment, nil
}

// TotalCost sums the cost of an assignment.
func TotalCost(cost mat.Matrix, assignment []int) float64 {
	total := 0.0
	for i, j := range assignment {
		total += cost.At(i, j)
	}
	return total
}
