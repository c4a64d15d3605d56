package mesh

import (
	"slices"
)

// Adjacency maps a vertex index to its sorted, deduplicated neighbours.
// It is symmetric: b ∈ adj[a] ⇔ a ∈ adj[b]. Self-loops are dropped.
type Adjacency [][]uint32

// BuildAdjacency derives vertex adjacency from edges. The view must have
// been validated.
func BuildAdjacency(v View) Adjacency {
	n := len(v.Vertices)
	adj := make(Adjacency, n)
	if len(v.Edges) == 0 {
		return adj
	}

	degrees := make([]int, n)
	for _, e := range v.Edges {
		degrees[e[0]]++
		degrees[e[1]]++
	}
	for i := range adj {
		adj[i] = make([]uint32, 0, degrees[i])
	}

	for _, e := range v.Edges {
		adj.link(e[0], e[1])
	}
	adj.compact()
	return adj
}

// BuildAdjacencyFromFaces derives vertex adjacency from triangle faces.
func BuildAdjacencyFromFaces(v View) Adjacency {
	n := len(v.Vertices)
	adj := make(Adjacency, n)
	for _, f := range v.Faces {
		adj.link(f[0], f[1])
		adj.link(f[1], f[2])
		adj.link(f[2], f[0])
	}
	adj.compact()
	return adj
}

// BuildTopology picks the richest topology the caller provided: edges when
// present, otherwise faces.
func BuildTopology(v View) Adjacency {
	if len(v.Edges) == 0 && len(v.Faces) > 0 {
		return BuildAdjacencyFromFaces(v)
	}
	return BuildAdjacency(v)
}

func (adj Adjacency) link(a, b uint32) {
	if a == b {
		return
	}
	adj[a] = append(adj[a], b)
	adj[b] = append(adj[b], a)
}

func (adj Adjacency) compact() {
	for i, nb := range adj {
		slices.Sort(nb)
		adj[i] = slices.Compact(nb)
	}
}

// Degree returns the number of distinct neighbours of vertex i.
func (adj Adjacency) Degree(i int) int {
	return len(adj[i])
}
