package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"choreo-planner/internal/config"
	"choreo-planner/internal/formation"
	"choreo-planner/internal/geometry"
	"choreo-planner/internal/ordering"
	"choreo-planner/internal/waypoint"
)

type fakeImages struct {
	set   geometry.ContourSet
	paths []string
}

func (f *fakeImages) ExtractFile(path string) (geometry.ContourSet, error) {
	f.paths = append(f.paths, path)
	return f.set, nil
}

type fixedClusterer []orb.Point

func (f fixedClusterer) Cluster([]orb.Point, int) ([]orb.Point, error) { return f, nil }

// pixelSquare traces the border of [x0, x1] x [y0, y1] one pixel at a time.
func pixelSquare(x0, y0, x1, y1 int) geometry.Contour {
	var c geometry.Contour
	for x := x0; x < x1; x++ {
		c = append(c, orb.Point{float64(x), float64(y0)})
	}
	for y := y0; y < y1; y++ {
		c = append(c, orb.Point{float64(x1), float64(y)})
	}
	for x := x1; x > x0; x-- {
		c = append(c, orb.Point{float64(x), float64(y1)})
	}
	for y := y1; y >= y0; y-- {
		c = append(c, orb.Point{float64(x0), float64(y)})
	}
	return c
}

func testPipeline(cfg *config.Config) *Pipeline {
	return &Pipeline{
		Config:    cfg,
		Images:    &fakeImages{},
		Solver:    ordering.NearestNeighbor{Improve: true},
		Clusterer: fixedClusterer{{0.5, 0.5}, {2.5, 2.5}},
		Assigner:  formation.Hungarian{},
	}
}

func squares() geometry.ContourSet {
	return geometry.ContourSet{
		Width:  300,
		Height: 300,
		Contours: []geometry.Contour{
			pixelSquare(20, 20, 120, 120),
			pixelSquare(180, 180, 280, 280),
		},
	}
}

func TestLightPainting(t *testing.T) {
	cfg := config.Default()
	cfg.Signal = true
	cfg.ReorderContours = true

	res, err := testPipeline(cfg).LightPainting(squares())
	require.NoError(t, err)

	assert.InDelta(t, 0.01, res.Factor, 1e-12)
	assert.Equal(t, 802, res.Raw)
	assert.Less(t, res.Path.Len(), res.Raw)
	assert.Equal(t, res.Path.Len(), res.Metrics.Points)
	assert.True(t, res.Path.SignalMode)
	assert.Equal(t, waypoint.SignalTransit, res.Path.Points[0].Signal)

	for _, w := range res.Path.Points {
		assert.Equal(t, waypoint.DefaultAltitude, w.Altitude)
		assert.GreaterOrEqual(t, w.X, cfg.Volume.MinX)
		assert.LessOrEqual(t, w.X, cfg.Volume.MaxX)
		assert.GreaterOrEqual(t, w.Y, cfg.Volume.MinY)
		assert.LessOrEqual(t, w.Y, cfg.Volume.MaxY)
	}
	assert.Greater(t, res.Metrics.Seconds, 0.0)
}

func TestLightPainting_ContourEpsilon(t *testing.T) {
	cfg := config.Default()
	cfg.ContourEpsilon = 0.01

	res, err := testPipeline(cfg).LightPainting(squares())
	require.NoError(t, err)
	// each square collapses to its five corners
	assert.Equal(t, 10, res.Raw)
}

func TestLightPainting_EmptyInput(t *testing.T) {
	cfg := config.Default()
	cfg.ReorderContours = true

	for name, set := range map[string]geometry.ContourSet{
		"no contours":   {Width: 100, Height: 100},
		"empty contour": {Width: 100, Height: 100, Contours: []geometry.Contour{{}}},
	} {
		t.Run(name, func(t *testing.T) {
			res, err := testPipeline(cfg).LightPainting(set)
			require.NoError(t, err)
			assert.Zero(t, res.Path.Len())
			assert.Zero(t, res.Raw)
			assert.Equal(t, waypoint.Metrics{}, res.Metrics)
		})
	}
}

func TestLightPainting_DegenerateVolume(t *testing.T) {
	cfg := config.Default()
	cfg.Volume.MaxY = cfg.Volume.MinY

	_, err := testPipeline(cfg).LightPainting(squares())
	assert.ErrorIs(t, err, geometry.ErrDegenerateVolume)
}

func TestFormation(t *testing.T) {
	cfg := config.Default()
	cfg.Vehicles = 2

	plan, err := testPipeline(cfg).Formation(squares())
	require.NoError(t, err)

	assert.True(t, plan.Complete)
	assert.Len(t, plan.InitialGrid, 2)
	assert.Len(t, plan.Assigned, 2)
	assert.Equal(t, 0, plan.Iterations)
	assert.Empty(t, formation.Overlaps(plan.Adjusted, cfg.SafetyBox))
}

func TestFormation_Infeasible(t *testing.T) {
	cfg := config.Default()
	cfg.Vehicles = 3
	cfg.Volume.MaxZ = 0.1

	p := testPipeline(cfg)
	p.Clusterer = fixedClusterer{{1, 1}, {1, 1}, {1, 1}}

	plan, err := p.Formation(squares())
	var infeasible *formation.InfeasibleError
	require.True(t, errors.As(err, &infeasible))
	require.NotNil(t, plan)
	assert.False(t, plan.Complete)
}

func TestLoadContours(t *testing.T) {
	dir := t.TempDir()
	geo := filepath.Join(dir, "shape.geojson")
	require.NoError(t, os.WriteFile(geo, []byte(`{
		"type": "FeatureCollection",
		"features": [
			{"type": "Feature", "properties": {}, "geometry": {"type": "Polygon", "coordinates": [[[0,0],[10,0],[10,10],[0,10],[0,0]]]}},
			{"type": "Feature", "properties": {}, "geometry": {"type": "LineString", "coordinates": [[2,2],[4,4]]}}
		]
	}`), 0644))

	cfg := config.Default()
	p := testPipeline(cfg)

	set, err := p.LoadContours(geo)
	require.NoError(t, err)
	assert.Len(t, set.Contours, 2)
	assert.Equal(t, 10, set.Width)

	cfg.OutermostOnly = true
	set, err = p.LoadContours(geo)
	require.NoError(t, err)
	assert.Len(t, set.Contours, 1)

	images := p.Images.(*fakeImages)
	_, err = p.LoadContours("star.png")
	require.NoError(t, err)
	assert.Equal(t, []string{"star.png"}, images.paths)
}
