package mesh

// UnionFind is a disjoint-set forest over vertex indices with union by rank
// and path compression. It is sized once and never shared across meshes.
type UnionFind struct {
	parent []uint32
	rank   []uint8
}

// NewUnionFind returns a forest of n singleton sets.
func NewUnionFind(n int) *UnionFind {
	uf := &UnionFind{
		parent: make([]uint32, n),
		rank:   make([]uint8, n),
	}
	for i := range uf.parent {
		uf.parent[i] = uint32(i)
	}
	return uf
}

// Len returns the number of elements.
func (uf *UnionFind) Len() int {
	return len(uf.parent)
}

// Find returns the representative of x's set, compressing the path walked.
func (uf *UnionFind) Find(x uint32) uint32 {
	root := x
	for uf.parent[root] != root {
		root = uf.parent[root]
	}
	for uf.parent[x] != root {
		next := uf.parent[x]
		uf.parent[x] = root
		x = next
	}
	return root
}

// Union merges the sets holding a and b. It reports whether a merge happened.
func (uf *UnionFind) Union(a, b uint32) bool {
	a, b = uf.Find(a), uf.Find(b)
	if a == b {
		return false
	}
	if uf.rank[a] < uf.rank[b] {
		a, b = b, a
	}
	uf.parent[b] = a
	if uf.rank[a] == uf.rank[b] && uf.rank[a] < 255 {
		uf.rank[a]++
	}
	return true
}

// Components is a resolved connectivity labelling: one root per vertex and
// the size of the component each root represents.
type Components struct {
	Root []uint32
	Size map[uint32]int
}

// ConnectedComponents unions the endpoints of every edge and every face
// side, then resolves the labelling.
func ConnectedComponents(v View) Components {
	uf := NewUnionFind(len(v.Vertices))
	for _, e := range v.Edges {
		uf.Union(e[0], e[1])
	}
	for _, f := range v.Faces {
		uf.Union(f[0], f[1])
		uf.Union(f[1], f[2])
	}
	return uf.Resolve()
}

// Resolve flattens the forest into a Components labelling.
func (uf *UnionFind) Resolve() Components {
	c := Components{
		Root: make([]uint32, len(uf.parent)),
		Size: make(map[uint32]int),
	}
	for i := range uf.parent {
		r := uf.Find(uint32(i))
		c.Root[i] = r
		c.Size[r]++
	}
	return c
}

// Count returns the number of distinct components.
func (c Components) Count() int {
	return len(c.Size)
}

// SizeOf returns the size of the component containing vertex i.
func (c Components) SizeOf(i int) int {
	return c.Size[c.Root[i]]
}
