package wire

import (
	"github.com/banshee-data/meshpivot/internal/mesh"
)

// Mask flags wire vertices. Index i corresponds to vertex i of the view.
type Mask []bool

// Count returns the number of wire vertices.
func (m Mask) Count() int {
	return mesh.Count(m)
}

// Classify scores the view and refines the strict candidates into a wire
// mask.
func Classify(v mesh.View, adj mesh.Adjacency, comps mesh.Components, p Params) Mask {
	return Refine(Linearity(v, adj, p), adj, comps, p)
}

// Refine turns linearity scores into a wire mask. Vertices above the strict
// threshold are grouped over adj; a group survives when it has at least
// MinGroup members or is the whole of its connected component. Surviving
// groups then grow through neighbours scoring above the loose threshold.
func Refine(scores []float64, adj mesh.Adjacency, comps mesh.Components, p Params) Mask {
	candidate := make([]bool, len(scores))
	for i, s := range scores {
		candidate[i] = s > p.Strict
	}
	mask, boundary := mesh.FilterGroups(candidate, adj, comps, p.MinGroup)
	kept := mesh.Count(mask)
	grown := mesh.Grow(mask, boundary, adj, func(i uint32) bool {
		return scores[i] > p.Loose
	})

	mesh.Stage("wire").Diagf("%d candidates, %d kept, %d grown, %d boundary seeds",
		mesh.Count(candidate), kept, grown, len(boundary))
	return Mask(mask)
}
