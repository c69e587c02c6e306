package geometry

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func volume(w, h, d float64) FlightVolume {
	return FlightVolume{MaxX: w, MaxY: h, MaxZ: d}
}

func TestScale_Empty(t *testing.T) {
	got, err := Scale(ContourSet{Width: 100, Height: 100}, volume(10, 10, 10), nil)
	require.NoError(t, err)
	assert.Empty(t, got.Contours)
}

func TestScale_DegenerateVolume(t *testing.T) {
	set := ContourSet{Contours: []Contour{{{0, 0}, {1, 1}}}, Width: 10, Height: 10}

	for name, vol := range map[string]FlightVolume{
		"zero width":  {MaxX: 0, MaxY: 10, MaxZ: 10},
		"zero height": {MaxX: 10, MinY: 5, MaxY: 5, MaxZ: 10},
		"inverted z":  {MaxX: 10, MaxY: 10, MinZ: 3, MaxZ: 1},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Scale(set, vol, nil)
			assert.ErrorIs(t, err, ErrDegenerateVolume)
		})
	}
}

func TestScale_NoOpBounds(t *testing.T) {
	// Image proportions match the volume exactly, so the contours are only
	// centred and translated into the volume.
	vol := FlightVolume{MinX: 2, MaxX: 12, MinY: 3, MaxY: 13, MaxZ: 5}
	set := ContourSet{
		Contours: []Contour{{{0, 0}, {10, 10}, {5, 5}}},
		Width:    10,
		Height:   10,
	}

	got, err := Scale(set, vol, nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got.Factor)

	want := []Contour{{{2, 3}, {12, 13}, {7, 8}}}
	if diff := cmp.Diff(want, got.Contours, approx); diff != "" {
		t.Errorf("scaled contours mismatch (-want +got):\n%s", diff)
	}
}

func TestScale_LargeImage(t *testing.T) {
	set := ContourSet{
		Contours: []Contour{{{0, 0}, {200, 100}}},
		Width:    200,
		Height:   100,
	}

	got, err := Scale(set, volume(10, 10, 10), nil)
	require.NoError(t, err)

	assert.InDelta(t, 0.05, got.Factor, 1e-12)
	assert.InDelta(t, 10.0, got.Width, 1e-9)
	assert.InDelta(t, 5.0, got.Height, 1e-9)

	want := []Contour{{{0, 0}, {10, 5}}}
	if diff := cmp.Diff(want, got.Contours, approx); diff != "" {
		t.Errorf("scaled contours mismatch (-want +got):\n%s", diff)
	}
}

func TestScale_TallImageUsesYFactor(t *testing.T) {
	set := ContourSet{
		Contours: []Contour{{{0, 0}, {50, 400}}},
		Width:    50,
		Height:   400,
	}

	got, err := Scale(set, volume(10, 20, 10), nil)
	require.NoError(t, err)
	assert.InDelta(t, 1.0/20, got.Factor, 1e-12)
}

func TestScale_SmallImageCopiedThrough(t *testing.T) {
	set := ContourSet{
		Contours: []Contour{{{1, 1}, {3, 1}, {3, 3}, {1, 1}}, {}},
		Width:    4,
		Height:   4,
	}

	got, err := Scale(set, volume(10, 10, 10), nil)
	require.NoError(t, err)
	require.Len(t, got.Contours, 1, "empty contour must be dropped, the rest kept")
	assert.Equal(t, 1.0, got.Factor)

	want := []Contour{{{0, 0}, {2, 0}, {2, 2}, {0, 0}}}
	if diff := cmp.Diff(want, got.Contours, approx); diff != "" {
		t.Errorf("contours mismatch (-want +got):\n%s", diff)
	}
}

func TestScale_LowerBoundRespected(t *testing.T) {
	vol := FlightVolume{MinX: -4, MaxX: 4, MinY: 0.5, MaxY: 3, MinZ: 0, MaxZ: 2}
	set := ContourSet{
		Contours: []Contour{
			{{10, 10}, {600, 20}, {300, 400}},
			{{0, 479}, {639, 0}},
		},
		Width:  640,
		Height: 480,
	}

	got, err := Scale(set, vol, nil)
	require.NoError(t, err)

	for _, c := range got.Contours {
		for _, p := range c {
			assert.GreaterOrEqual(t, p.X(), vol.MinX-1e-9)
			assert.GreaterOrEqual(t, p.Y(), vol.MinY-1e-9)
		}
	}
}

func TestScale_DoesNotMutateInput(t *testing.T) {
	in := Contour{{0, 0}, {20, 20}}
	set := ContourSet{Contours: []Contour{in}, Width: 20, Height: 20}

	_, err := Scale(set, volume(10, 10, 10), nil)
	require.NoError(t, err)
	assert.Equal(t, orb.Point{20, 20}, in[1])
}
