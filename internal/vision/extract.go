// Package vision extracts contours from raster images and clusters planar
// points, both on top of OpenCV.
package vision

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"

	"github.com/paulmach/orb"
	"gocv.io/x/gocv"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"choreo-planner/internal/geometry"
	"choreo-planner/internal/log"
)

// DefaultFrameTolerance is the relative area difference below which a
// contour's bounding box is taken to be the image frame.
const DefaultFrameTolerance = 0.01

var ErrEmptyImage = errors.New("empty image")

// Extractor turns an image into the contours of its dark shapes.
type Extractor struct {
	// FrameTolerance is relative to the image area; 0 means
	// DefaultFrameTolerance.
	FrameTolerance float64
	// OutermostOnly drops contours nested inside other contours.
	OutermostOnly bool
	Logger        *log.Logger
}

// ExtractFile decodes an image file and extracts its contours.
func (e Extractor) ExtractFile(path string) (geometry.ContourSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return geometry.ContourSet{}, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return geometry.ContourSet{}, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	e.Logger.Debugf("decoded %s image %s (%dx%d)", format, path, img.Bounds().Dx(), img.Bounds().Dy())

	return e.Extract(img)
}

// Extract composites img on white, flips it so y grows upwards, binarises
// it with Otsu's method and traces every contour of the result. Contours
// whose bounding box covers the whole image are discarded.
func (e Extractor) Extract(img image.Image) (geometry.ContourSet, error) {
	b := img.Bounds()
	if b.Empty() {
		return geometry.ContourSet{}, ErrEmptyImage
	}

	bgr, err := gocv.ImageToMatRGB(onWhite(img))
	if err != nil {
		return geometry.ContourSet{}, fmt.Errorf("failed to convert image: %w", err)
	}
	defer bgr.Close()

	flipped := gocv.NewMat()
	defer flipped.Close()
	gocv.Flip(bgr, &flipped, 0)

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(flipped, &gray, gocv.ColorBGRToGray)

	bw := gocv.NewMat()
	defer bw.Close()
	th := gocv.Threshold(gray, &bw, 128, 192, gocv.ThresholdOtsu)
	e.Logger.Debugf("otsu threshold %.1f", th)

	found := gocv.FindContours(bw, gocv.RetrievalTree, gocv.ChainApproxNone)
	defer found.Close()

	w, h := b.Dx(), b.Dy()
	tol := e.FrameTolerance
	if tol <= 0 {
		tol = DefaultFrameTolerance
	}

	set := geometry.ContourSet{Width: w, Height: h}
	for i := 0; i < found.Size(); i++ {
		pv := found.At(i)
		if isFrame(gocv.BoundingRect(pv), w, h, tol) {
			e.Logger.Debugf("dropping frame contour %d", i)
			continue
		}
		c := make(geometry.Contour, pv.Size())
		for j := range c {
			pt := pv.At(j)
			c[j] = orb.Point{float64(pt.X), float64(pt.Y)}
		}
		set.Contours = append(set.Contours, c)
	}

	if e.OutermostOnly {
		set.Contours = geometry.Outermost(set.Contours)
	} else if len(set.Contours) > 1 && e.Logger.DebugEnabled() {
		e.Logger.Debug("contour nesting", "depths", geometry.Depths(set.Contours))
	}

	e.Logger.Infof("extracted %d contours (%d points) from %dx%d image", len(set.Contours), set.NumPoints(), w, h)
	return set, nil
}

// onWhite flattens img onto an opaque white canvas.
func onWhite(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Over)
	return dst
}

func isFrame(r image.Rectangle, w, h int, tol float64) bool {
	imgArea := float64(w * h)
	area := float64(r.Dx() * r.Dy())
	return math.Abs(area-imgArea) <= tol*imgArea
}
