package geometry

import (
	"fmt"
	"math"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"choreo-planner/internal/log"
)

// LoadGeoJSON reads a FeatureCollection and returns its line and polygon
// geometries as contours. The canvas size is the ceiling of the largest X
// and Y coordinate, so features are expected in a pixel-like frame with
// the origin at the lower left.
func LoadGeoJSON(path string, logger *log.Logger) (ContourSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ContourSet{}, fmt.Errorf("failed to read file: %w", err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return ContourSet{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	var set ContourSet
	for i, f := range fc.Features {
		contours := geometryContours(f.Geometry)
		if len(contours) == 0 {
			logger.Warnf("feature %d in %s: unsupported geometry %T, skipping", i, path, f.Geometry)
			continue
		}
		set.Contours = append(set.Contours, contours...)
	}

	if b, ok := Bounds(set.Contours); ok {
		set.Width = int(math.Ceil(b.Max.X()))
		set.Height = int(math.Ceil(b.Max.Y()))
	}

	logger.Infof("loaded %d contours (%d points) from %s", len(set.Contours), set.NumPoints(), path)
	return set, nil
}

// geometryContours converts a GeoJSON geometry to contours
func geometryContours(g orb.Geometry) []Contour {
	var contours []Contour

	switch g := g.(type) {
	case orb.LineString:
		contours = append(contours, g.Clone())
	case orb.Ring:
		contours = append(contours, Contour(g.Clone()))
	case orb.Polygon:
		for _, ring := range g {
			contours = append(contours, Contour(ring.Clone()))
		}
	case orb.MultiLineString:
		for _, ls := range g {
			contours = append(contours, ls.Clone())
		}
	case orb.MultiPolygon:
		for _, poly := range g {
			for _, ring := range poly {
				contours = append(contours, Contour(ring.Clone()))
			}
		}
	}

	return contours
}
