package export

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"choreo-planner/internal/formation"
	"choreo-planner/internal/geometry"
	"choreo-planner/internal/waypoint"
)

func samplePlan() *formation.Plan {
	adjusted := []geometry.Position{{Depth: 7, X: 5, Y: 5}, {Depth: 3, X: 5, Y: 5}}
	return &formation.Plan{
		InitialGrid: []geometry.Position{{X: 4.5, Y: 5}, {X: 5.5, Y: 5}},
		Ideal:       []geometry.Position{{X: 5, Y: 5}, {X: 5, Y: 5}},
		Adjusted:    adjusted,
		Assignment:  []int{1, 0},
		Assigned:    []geometry.Position{adjusted[1], adjusted[0]},
		Iterations:  1,
		Complete:    true,
	}
}

func TestName(t *testing.T) {
	assert.Equal(t, "star", Name("/tmp/images/star.png"))
	assert.Equal(t, "logo.v2", Name("logo.v2.geojson"))
}

func TestWritePathCSV(t *testing.T) {
	var buf bytes.Buffer
	path := waypoint.Path{Points: []waypoint.Waypoint{
		{Altitude: 1.5, X: 0.25, Y: 2},
		{Altitude: 1.5, X: 1, Y: 3},
	}}
	require.NoError(t, WritePathCSV(&buf, path))
	assert.Equal(t, "1.5,0.25,2\n1.5,1,3\n", buf.String())

	buf.Reset()
	path.SignalMode = true
	path.Points[1].Signal = waypoint.SignalPath
	require.NoError(t, WritePathCSV(&buf, path))
	assert.Equal(t, "1.5,0.25,2,0\n1.5,1,3,1\n", buf.String())
}

func TestWritePlanCSV(t *testing.T) {
	var grid, goals bytes.Buffer
	require.NoError(t, WritePlanCSV(&grid, &goals, samplePlan()))

	assert.Equal(t, "0,4.5,5\n0,5.5,5\n", grid.String())
	assert.Equal(t, "3,5,5\n7,5,5\n", goals.String())
}

func TestWritePlanCSV_Incomplete(t *testing.T) {
	plan := samplePlan()
	plan.Complete = false

	var grid, goals bytes.Buffer
	assert.ErrorIs(t, WritePlanCSV(&grid, &goals, plan), ErrIncompletePlan)
	assert.ErrorIs(t, WritePlanCSV(&grid, &goals, nil), ErrIncompletePlan)
	assert.Zero(t, grid.Len())
}

func TestWriter(t *testing.T) {
	dir := t.TempDir()
	w := Writer{Dir: dir, Name: "star"}

	file, err := w.LightPainting(waypoint.Path{Points: []waypoint.Waypoint{{Altitude: 1.5}}})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "star_lp_wpts.csv"), file)

	gridFile, goalFile, err := w.Formation(samplePlan())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "star_mdf_initial_grid.csv"), gridFile)

	data, err := os.ReadFile(goalFile)
	require.NoError(t, err)
	assert.Equal(t, "3,5,5\n7,5,5\n", string(data))

	_, _, err = w.Formation(&formation.Plan{})
	assert.ErrorIs(t, err, ErrIncompletePlan)
}

func TestSaveLoadPlan(t *testing.T) {
	file := filepath.Join(t.TempDir(), "plan.json")
	want := samplePlan()

	require.NoError(t, SavePlan(want, file, nil))
	got, err := LoadPlan(file, nil)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadPlan_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadPlan(filepath.Join(dir, "missing.json"), nil)
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"assignment":[0],"assigned":[]}`), 0644))
	_, err = LoadPlan(bad, nil)
	assert.Error(t, err)
}
