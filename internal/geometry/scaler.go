package geometry

import (
	"math"

	"choreo-planner/internal/log"
)

// Scaled is the result of fitting a contour set into a flight volume.
type Scaled struct {
	Contours []Contour
	// Factor is the uniform scale applied to the centred contours (1 when
	// the image already fits).
	Factor float64
	// Width and Height are the canvas dimensions after scaling.
	Width  float64
	Height float64
}

// Scale maps pixel-space contours into flight space:
//
//  1. every contour is translated so the image centre is the origin;
//  2. when the image is larger than the volume on either axis, all
//     contours are scaled by 1/max(W/width, H/height);
//  3. everything is shifted by the absolute minimum X/Y of the scaled
//     points plus the volume's lower X/Y bound.
//
// Images that already fit are copied through unscaled. Contours without
// points are dropped and an empty input gives an empty result.
func Scale(set ContourSet, vol FlightVolume, logger *log.Logger) (Scaled, error) {
	if err := vol.Validate(); err != nil {
		return Scaled{}, err
	}

	w, h := float64(set.Width), float64(set.Height)
	scaleX := w / vol.Width()
	scaleY := h / vol.Height()

	factor := 1.0
	if scaleX > 1.0 || scaleY > 1.0 {
		if scaleX >= scaleY {
			factor = 1.0 / scaleX
		} else {
			factor = 1.0 / scaleY
		}
	}

	result := Scaled{
		Contours: make([]Contour, 0, len(set.Contours)),
		Factor:   factor,
		Width:    w * factor,
		Height:   h * factor,
	}

	dropped := 0
	for _, c := range set.Contours {
		if len(c) == 0 {
			dropped++
			continue
		}
		centred := translate(c, -w/2, -h/2)
		if factor != 1.0 {
			centred = scale(centred, factor)
		}
		result.Contours = append(result.Contours, centred)
	}
	if dropped > 0 {
		logger.Debugf("dropped %d empty contours", dropped)
	}

	bound, ok := Bounds(result.Contours)
	if !ok {
		return result, nil
	}

	dx := math.Abs(bound.Min.X()) + vol.MinX
	dy := math.Abs(bound.Min.Y()) + vol.MinY
	for i, c := range result.Contours {
		result.Contours[i] = translate(c, dx, dy)
	}

	logger.Debugf("scaled %d contours: scale x %.4f, scale y %.4f, factor %.4f",
		len(result.Contours), scaleX, scaleY, factor)

	return result, nil
}
