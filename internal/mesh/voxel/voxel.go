// Package voxel buckets mesh vertices into a uniform grid and flags cells
// whose occupancy or surface orientation looks like thin or noisy geometry.
//
// The map is built once per mesh and is read-only afterwards.
package voxel

import (
	"cmp"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/meshpivot/internal/mesh"
	"github.com/banshee-data/meshpivot/internal/mesh/geom"
	"github.com/banshee-data/meshpivot/internal/mesh/wire"
)

const logVoxel = mesh.Stage("voxel")

// DefaultCellSize is the edge length of a voxel in object units.
const DefaultCellSize = 0.03

// Key addresses one cell: floor(p / cellSize) per axis.
type Key [3]int64

// Cell accumulates the vertices that fall inside one voxel.
type Cell struct {
	Count      int
	MeanPos    geom.Point3
	NormalSum  geom.Point3 // sum of unit vertex normals
	MeanNormal geom.Point3 // NormalSum / Count, zero when no normals
	HasNormals bool
	Vertices   []uint32
}

// Map is a sparse voxel grid.
type Map struct {
	cellSize float64
	cells    map[Key]*Cell
}

// Params controls which cells are reported by Guesses.
type Params struct {
	// DensityRatio flags a cell whose count is below this fraction of the
	// mean count of its occupied neighbours.
	DensityRatio float64
	// NormalVariance flags a cell whose normals disagree by more than this
	// (1 − |Σn| / count).
	NormalVariance float64
}

// DefaultParams returns the stock guess thresholds.
func DefaultParams() Params {
	return Params{DensityRatio: 0.5, NormalVariance: 0.6}
}

// Build buckets every finite vertex of v. Normals come from the view when
// present, otherwise from its faces; without either the normal statistics
// stay empty. A non-positive cell size yields an empty map.
func Build(v mesh.View, cellSize float64) *Map {
	m := &Map{cellSize: cellSize, cells: make(map[Key]*Cell)}
	if !(cellSize > 0) || math.IsInf(cellSize, 1) {
		return m
	}
	normals := mesh.VertexNormals(v)

	for i, p := range v.Vertices {
		if !geom.Finite3(p) {
			continue
		}
		k := m.KeyOf(p)
		c, ok := m.cells[k]
		if !ok {
			c = &Cell{}
			m.cells[k] = c
		}
		c.Count++
		c.MeanPos = c.MeanPos.Add(p.Sub(c.MeanPos).Mul(1 / float64(c.Count)))
		c.Vertices = append(c.Vertices, uint32(i))
		if normals != nil {
			if n := normals[i]; n.Norm2() > 0 && geom.Finite3(n) {
				c.NormalSum = c.NormalSum.Add(n.Normalize())
				c.HasNormals = true
			}
		}
	}
	for _, c := range m.cells {
		if c.HasNormals {
			c.MeanNormal = c.NormalSum.Mul(1 / float64(c.Count))
		}
	}
	logVoxel.Diagf("%d vertices in %d cells of size %g", v.Len(), len(m.cells), cellSize)
	return m
}

// CellSize returns the voxel edge length.
func (m *Map) CellSize() float64 {
	return m.cellSize
}

// Len returns the number of occupied cells.
func (m *Map) Len() int {
	return len(m.cells)
}

// KeyOf returns the cell containing p.
func (m *Map) KeyOf(p geom.Point3) Key {
	return Key{
		int64(math.Floor(p.X / m.cellSize)),
		int64(math.Floor(p.Y / m.cellSize)),
		int64(math.Floor(p.Z / m.cellSize)),
	}
}

// Cell returns the cell at k. The returned cell must not be modified.
func (m *Map) Cell(k Key) (*Cell, bool) {
	c, ok := m.cells[k]
	return c, ok
}

// Keys returns every occupied key in ascending order.
func (m *Map) Keys() []Key {
	keys := make([]Key, 0, len(m.cells))
	for k := range m.cells {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeys)
	return keys
}

func compareKeys(a, b Key) int {
	for i := range a {
		if c := cmp.Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return 0
}

// Guesses returns the keys of cells that look like wire or noise, sorted.
// A cell qualifies when its count is low relative to its occupied
// 26-neighbourhood, or when it carries at least two normals that disagree
// strongly. A cell with no occupied neighbour is never low-density.
func (m *Map) Guesses(p Params) []Key {
	var (
		out    []Key
		counts []float64
	)
	for _, k := range m.Keys() {
		c := m.cells[k]

		counts = counts[:0]
		for dx := int64(-1); dx <= 1; dx++ {
			for dy := int64(-1); dy <= 1; dy++ {
				for dz := int64(-1); dz <= 1; dz++ {
					if dx == 0 && dy == 0 && dz == 0 {
						continue
					}
					if nb, ok := m.cells[Key{k[0] + dx, k[1] + dy, k[2] + dz}]; ok {
						counts = append(counts, float64(nb.Count))
					}
				}
			}
		}
		sparse := len(counts) > 0 && float64(c.Count) < p.DensityRatio*stat.Mean(counts, nil)

		unstable := false
		if c.HasNormals && c.Count >= 2 {
			unstable = 1-c.NormalSum.Norm()/float64(c.Count) > p.NormalVariance
		}

		if sparse || unstable {
			out = append(out, k)
		}
	}
	logVoxel.Diagf("%d of %d cells guessed", len(out), len(m.cells))
	return out
}

// SelectWire marks the vertices of the guessed cells and keeps the connected
// groups that pass the same size rule as the linearity classifier.
func SelectWire(v mesh.View, adj mesh.Adjacency, comps mesh.Components, m *Map, guesses []Key, minGroup int) wire.Mask {
	candidate := make([]bool, v.Len())
	for _, k := range guesses {
		c, ok := m.cells[k]
		if !ok {
			continue
		}
		for _, idx := range c.Vertices {
			if int(idx) < len(candidate) {
				candidate[idx] = true
			}
		}
	}
	mask, _ := mesh.FilterGroups(candidate, adj, comps, minGroup)
	return wire.Mask(mask)
}
