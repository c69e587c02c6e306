package formation

import (
	"errors"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"choreo-planner/internal/geometry"
	"choreo-planner/internal/waypoint"
)

// fixedClusterer returns the same centroids regardless of input.
type fixedClusterer struct {
	centroids []orb.Point
	err       error
}

func (f fixedClusterer) Cluster(_ []orb.Point, _ int) ([]orb.Point, error) {
	return f.centroids, f.err
}

func squarePath() waypoint.Path {
	var pts []waypoint.Waypoint
	for i := 0; i < 3; i++ {
		for _, c := range [][2]float64{{4, 4}, {6, 4}, {6, 6}, {4, 6}, {4, 4}} {
			pts = append(pts, waypoint.Waypoint{Altitude: waypoint.DefaultAltitude, X: c[0], Y: c[1]})
		}
	}
	return waypoint.Path{Points: pts}
}

func newPlanner(vehicles int, c Clusterer) *Planner {
	return &Planner{
		Volume:    unitVolume,
		Box:       geometry.SafetyBox{DX: 2, DY: 2, DZ: 2},
		Vehicles:  vehicles,
		Clusterer: c,
		Assigner:  Hungarian{},
	}
}

func TestPlan_StackedCentroids(t *testing.T) {
	same := []orb.Point{{5, 5}, {5, 5}, {5, 5}}
	plan, err := newPlanner(3, fixedClusterer{centroids: same}).Plan(squarePath())
	require.NoError(t, err)

	assert.True(t, plan.Complete)
	assert.Equal(t, 3, plan.Iterations)
	require.Len(t, plan.Adjusted, 3)
	assert.Equal(t, []float64{7, 5, 3}, []float64{plan.Adjusted[0].Depth, plan.Adjusted[1].Depth, plan.Adjusted[2].Depth})
	assert.Empty(t, Overlaps(plan.Adjusted, geometry.SafetyBox{DX: 2, DY: 2, DZ: 2}))

	for _, p := range plan.Ideal {
		assert.Equal(t, 0.0, p.Depth)
	}

	require.Len(t, plan.Assigned, 3)
	seen := map[int]bool{}
	for i, j := range plan.Assignment {
		seen[j] = true
		assert.Equal(t, plan.Adjusted[j], plan.Assigned[i])
	}
	assert.Len(t, seen, 3)
}

func TestPlan_Infeasible(t *testing.T) {
	p := newPlanner(3, fixedClusterer{centroids: []orb.Point{{5, 5}, {5, 5}, {5, 5}}})
	p.Volume.MaxZ = 1

	plan, err := p.Plan(squarePath())
	require.Error(t, err)

	var infeasible *InfeasibleError
	require.True(t, errors.As(err, &infeasible))
	assert.Equal(t, ReasonDepthExceeded, infeasible.Reason)
	assert.Equal(t, 3, infeasible.Vehicles)

	require.NotNil(t, plan)
	assert.False(t, plan.Complete)
	assert.Nil(t, plan.Assignment)
	assert.Len(t, plan.Adjusted, 3)
}

func TestPlan_InvalidInput(t *testing.T) {
	ok := fixedClusterer{centroids: []orb.Point{{5, 5}, {6, 6}}}

	_, err := newPlanner(0, ok).Plan(squarePath())
	assert.ErrorIs(t, err, ErrNoVehicles)

	_, err = newPlanner(2, ok).Plan(waypoint.Path{Points: make([]waypoint.Waypoint, 1)})
	assert.ErrorIs(t, err, ErrTooFewPoints)

	p := newPlanner(2, ok)
	p.Box.DZ = 0
	_, err = p.Plan(squarePath())
	assert.ErrorIs(t, err, geometry.ErrInvalidSafetyBox)

	p = newPlanner(2, ok)
	p.Volume.MaxX = p.Volume.MinX
	_, err = p.Plan(squarePath())
	assert.ErrorIs(t, err, geometry.ErrDegenerateVolume)
}

func TestPlan_ClustererFailures(t *testing.T) {
	boom := errors.New("boom")
	_, err := newPlanner(2, fixedClusterer{err: boom}).Plan(squarePath())
	assert.ErrorIs(t, err, boom)

	_, err = newPlanner(2, fixedClusterer{centroids: []orb.Point{{1, 1}}}).Plan(squarePath())
	assert.Error(t, err)
}
