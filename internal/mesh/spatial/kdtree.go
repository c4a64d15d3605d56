package spatial

import (
	"gonum.org/v1/gonum/spatial/kdtree"
)

// vertex is a kdtree.Comparable that remembers which mesh vertex it came from.
type vertex struct {
	id int
	p  [3]float64
}

// Compare returns the signed distance of v from the plane through c along d.
func (v vertex) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	return v.p[d] - c.(vertex).p[d]
}

// Dims returns the number of dimensions.
func (v vertex) Dims() int { return 3 }

// Distance returns the squared Euclidean distance between v and c.
func (v vertex) Distance(c kdtree.Comparable) float64 {
	q := c.(vertex)
	dx := v.p[0] - q.p[0]
	dy := v.p[1] - q.p[1]
	dz := v.p[2] - q.p[2]
	return dx*dx + dy*dy + dz*dz
}

// vertices is the kdtree.Interface collection backing an Index.
type vertices []vertex

func (vs vertices) Index(i int) kdtree.Comparable { return vs[i] }
func (vs vertices) Len() int                      { return len(vs) }
func (vs vertices) Slice(start, end int) kdtree.Interface {
	return vs[start:end]
}
func (vs vertices) Pivot(d kdtree.Dim) int {
	return plane{vertices: vs, dim: d}.Pivot()
}

// plane sorts a vertices slice along one dimension for median selection.
type plane struct {
	vertices
	dim kdtree.Dim
}

func (p plane) Less(i, j int) bool {
	return p.vertices[i].p[p.dim] < p.vertices[j].p[p.dim]
}
func (p plane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }
func (p plane) Slice(start, end int) kdtree.SortSlicer {
	p.vertices = p.vertices[start:end]
	return p
}
func (p plane) Swap(i, j int) {
	p.vertices[i], p.vertices[j] = p.vertices[j], p.vertices[i]
}
