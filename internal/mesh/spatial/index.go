// Package spatial provides the static nearest-neighbour index built once per
// mesh and queried repeatedly by the wire classifier.
package spatial

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/kdtree"

	"github.com/banshee-data/meshpivot/internal/mesh/geom"
)

// Neighbor is one query hit: the vertex index and its squared distance to
// the query point.
type Neighbor struct {
	ID    int
	Dist2 float64
}

// Index is an immutable k-d tree over a vertex set. Queries never mutate it,
// so concurrent readers are safe once Build has returned.
type Index struct {
	tree *kdtree.Tree
	n    int
}

// Build indexes points. An empty input yields an index that answers every
// query with no results.
func Build(points []geom.Point3) *Index {
	if len(points) == 0 {
		return &Index{}
	}
	nodes := make(vertices, len(points))
	for i, p := range points {
		nodes[i] = vertex{id: i, p: [3]float64{p.X, p.Y, p.Z}}
	}
	return &Index{
		tree: kdtree.New(nodes, false),
		n:    len(points),
	}
}

// Len returns the number of indexed points.
func (ix *Index) Len() int {
	return ix.n
}

// KNearest returns the min(k, Len) points closest to q, nearest first.
// Equal distances are ordered by ascending ID so results are reproducible.
func (ix *Index) KNearest(q geom.Point3, k int) []Neighbor {
	if ix.n == 0 || k <= 0 {
		return nil
	}
	if k > ix.n {
		k = ix.n
	}
	keep := kdtree.NewNKeeper(k)
	ix.tree.NearestSet(keep, vertex{id: -1, p: [3]float64{q.X, q.Y, q.Z}})
	return collect(keep.Heap)
}

// Radius returns every point within r of q, nearest first.
func (ix *Index) Radius(q geom.Point3, r float64) []Neighbor {
	if ix.n == 0 || r < 0 || math.IsNaN(r) {
		return nil
	}
	keep := kdtree.NewDistKeeper(r * r)
	ix.tree.NearestSet(keep, vertex{id: -1, p: [3]float64{q.X, q.Y, q.Z}})
	return collect(keep.Heap)
}

// collect drains a keeper heap, skipping the sentinel entry the keepers seed
// their heaps with, and sorts by (distance, id).
func collect(h kdtree.Heap) []Neighbor {
	out := make([]Neighbor, 0, len(h))
	for _, c := range h {
		v, ok := c.Comparable.(vertex)
		if !ok {
			continue
		}
		out = append(out, Neighbor{ID: v.id, Dist2: c.Dist})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Dist2 != out[j].Dist2 {
			return out[i].Dist2 < out[j].Dist2
		}
		return out[i].ID < out[j].ID
	})
	return out
}
