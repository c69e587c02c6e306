package formation

import (
	"sort"

	"github.com/dhconnelly/rtreego"
	"gonum.org/v1/gonum/spatial/r3"
)

// vehicleEntry wraps a vehicle's safety volume for R-tree storage
type vehicleEntry struct {
	Index int
	Box   r3.Box
	BBox  rtreego.Rect
}

// Bounds implements rtreego.Spatial interface
func (v *vehicleEntry) Bounds() rtreego.Rect {
	return v.BBox
}

// spatialIndex answers which vehicles' safety volumes may overlap
type spatialIndex struct {
	tree    *rtreego.Rtree
	entries []*vehicleEntry
}

// newSpatialIndex creates a 3D index over the given safety volumes
func newSpatialIndex(boxes []r3.Box) (*spatialIndex, error) {
	tree := rtreego.NewTree(3, 25, 50) // 3D, min 25, max 50 entries per node
	entries := make([]*vehicleEntry, len(boxes))

	for i, b := range boxes {
		rect, err := toRect(b)
		if err != nil {
			return nil, err
		}
		entries[i] = &vehicleEntry{Index: i, Box: b, BBox: rect}
		tree.Insert(entries[i])
	}

	return &spatialIndex{tree: tree, entries: entries}, nil
}

// candidates returns, in ascending order, the indices of the other
// vehicles whose volumes intersect the volume of vehicle i
func (si *spatialIndex) candidates(i int) []int {
	results := si.tree.SearchIntersect(si.entries[i].BBox)
	idx := make([]int, 0, len(results))
	for _, item := range results {
		entry := item.(*vehicleEntry)
		if entry.Index != i {
			idx = append(idx, entry.Index)
		}
	}
	sort.Ints(idx)
	return idx
}

func toRect(b r3.Box) (rtreego.Rect, error) {
	return rtreego.NewRect(
		rtreego.Point{b.Min.X, b.Min.Y, b.Min.Z},
		[]float64{b.Max.X - b.Min.X, b.Max.Y - b.Min.Y, b.Max.Z - b.Min.Z},
	)
}
