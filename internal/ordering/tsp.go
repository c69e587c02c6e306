package ordering

import "fmt"

// NearestNeighbor builds an open tour greedily starting at row 0. With
// Improve set, the tour is refined by 2-opt segment reversals that keep the
// first stop fixed. The distance matrix must be symmetric.
type NearestNeighbor struct {
	Improve bool
	// MaxRounds bounds the 2-opt refinement; 0 means 100 rounds.
	MaxRounds int
}

func (s NearestNeighbor) Order(dist [][]float64) ([]int, error) {
	n := len(dist)
	for i, row := range dist {
		if len(row) != n {
			return nil, fmt.Errorf("distance matrix row %d has %d entries, want %d", i, len(row), n)
		}
	}
	if n == 0 {
		return []int{}, nil
	}

	visited := make([]bool, n)
	tour := make([]int, 0, n)
	cur := 0
	visited[cur] = true
	tour = append(tour, cur)

	for len(tour) < n {
		next := -1
		for j := 0; j < n; j++ {
			if visited[j] {
				continue
			}
			if next == -1 || dist[cur][j] < dist[cur][next] {
				next = j
			}
		}
		visited[next] = true
		tour = append(tour, next)
		cur = next
	}

	if s.Improve {
		s.twoOpt(dist, tour)
	}
	return tour, nil
}

// twoOpt reverses tour[i..j] whenever that shortens the open path
func (s NearestNeighbor) twoOpt(dist [][]float64, tour []int) {
	rounds := s.MaxRounds
	if rounds <= 0 {
		rounds = 100
	}
	const eps = 1e-12
	n := len(tour)

	for round := 0; round < rounds; round++ {
		improved := false
		for i := 1; i < n-1; i++ {
			for j := i + 1; j < n; j++ {
				a, b := tour[i-1], tour[i]
				c := tour[j]
				before := dist[a][b]
				after := dist[a][c]
				if j+1 < n {
					d := tour[j+1]
					before += dist[c][d]
					after += dist[b][d]
				}
				if after < before-eps {
					for l, r := i, j; l < r; l, r = l+1, r-1 {
						tour[l], tour[r] = tour[r], tour[l]
					}
					improved = true
				}
			}
		}
		if !improved {
			return
		}
	}
}
