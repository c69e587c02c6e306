package vision

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"gocv.io/x/gocv"
)

// DefaultAttempts is the number of k-means restarts; the best compactness
// wins.
const DefaultAttempts = 10

var ErrInvalidClusterCount = errors.New("invalid cluster count")

// KMeans clusters points with OpenCV's k-means using k-means++ seeding.
// The RNG is reseeded on every call so results are reproducible.
type KMeans struct {
	Attempts int
	Seed     int
}

func (k KMeans) Cluster(points []orb.Point, n int) ([]orb.Point, error) {
	if n <= 0 || n > len(points) {
		return nil, fmt.Errorf("%w: %d clusters for %d points", ErrInvalidClusterCount, n, len(points))
	}

	attempts := k.Attempts
	if attempts <= 0 {
		attempts = DefaultAttempts
	}

	data := gocv.NewMatWithSize(len(points), 2, gocv.MatTypeCV32F)
	defer data.Close()
	for i, p := range points {
		data.SetFloatAt(i, 0, float32(p.X()))
		data.SetFloatAt(i, 1, float32(p.Y()))
	}

	labels := gocv.NewMat()
	defer labels.Close()
	centers := gocv.NewMat()
	defer centers.Close()

	gocv.SetRNGSeed(k.Seed)
	criteria := gocv.NewTermCriteria(gocv.EPS+gocv.MaxIter, 300, 1e-4)
	gocv.KMeans(data, n, &labels, criteria, attempts, gocv.KMeansPPCenters, &centers)

	if centers.Rows() != n {
		return nil, fmt.Errorf("k-means returned %d centers for %d clusters", centers.Rows(), n)
	}
	out := make([]orb.Point, n)
	for i := range out {
		out[i] = orb.Point{float64(centers.GetFloatAt(i, 0)), float64(centers.GetFloatAt(i, 1))}
	}
	return out, nil
}
