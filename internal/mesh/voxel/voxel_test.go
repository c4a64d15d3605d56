package voxel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/meshpivot/internal/mesh"
	"github.com/banshee-data/meshpivot/internal/mesh/geom"
	"github.com/banshee-data/meshpivot/internal/testutil"
)

// cluster returns n points inside the unit cell at key k for cell size 1.
func cluster(k Key, n int) []geom.Point3 {
	pts := make([]geom.Point3, n)
	for i := range pts {
		f := (float64(i) + 0.5) / float64(n)
		pts[i] = geom.Point3{X: float64(k[0]) + f, Y: float64(k[1]) + 0.5, Z: float64(k[2]) + 0.5}
	}
	return pts
}

func TestBuild_Keys(t *testing.T) {
	m := Build(testutil.PointsView([]geom.Point3{
		{X: 0.01, Y: 0.01, Z: 0.01},
		{X: 0.02, Y: 0.02, Z: 0.02},
		{X: -0.01, Y: 0.05, Z: 0.07},
	}), 0.03)

	require.Equal(t, 2, m.Len())
	assert.Equal(t, []Key{{-1, 1, 2}, {0, 0, 0}}, m.Keys())

	c, ok := m.Cell(Key{0, 0, 0})
	require.True(t, ok)
	assert.Equal(t, 2, c.Count)
	assert.Equal(t, []uint32{0, 1}, c.Vertices)
	assert.InDelta(t, 0.015, c.MeanPos.X, 1e-12)
	assert.False(t, c.HasNormals)
}

func TestBuild_Degenerate(t *testing.T) {
	assert.Equal(t, 0, Build(testutil.UnitCube(), 0).Len())
	assert.Equal(t, 0, Build(testutil.UnitCube(), -1).Len())
	assert.Equal(t, 0, Build(mesh.View{}, 0.03).Len())
}

func TestBuild_NormalsFromFaces(t *testing.T) {
	m := Build(testutil.UnitCube(), 0.5)
	assert.Equal(t, 8, m.Len())
	for _, k := range m.Keys() {
		c, _ := m.Cell(k)
		assert.True(t, c.HasNormals)
		assert.InDelta(t, 1.0, c.NormalSum.Norm(), 1e-9)
	}
}

func TestGuesses_LowDensity(t *testing.T) {
	var pts []geom.Point3
	pts = append(pts, cluster(Key{0, 0, 0}, 10)...)
	pts = append(pts, cluster(Key{1, 0, 0}, 10)...)
	pts = append(pts, cluster(Key{2, 0, 0}, 1)...)
	pts = append(pts, cluster(Key{10, 10, 10}, 1)...)
	m := Build(testutil.PointsView(pts), 1)

	assert.Equal(t, []Key{{2, 0, 0}}, m.Guesses(DefaultParams()))
}

func TestGuesses_UnstableNormals(t *testing.T) {
	v := mesh.View{
		Vertices: []geom.Point3{{X: 0.1}, {X: 0.2}, {X: 5.1}, {X: 5.2}},
		Normals:  []geom.Point3{{Z: 1}, {Z: -1}, {Z: 1}, {Z: 2}},
	}
	m := Build(v, 1)

	assert.Equal(t, []Key{{0, 0, 0}}, m.Guesses(DefaultParams()))

	c, _ := m.Cell(Key{5, 0, 0})
	assert.InDelta(t, 1.0, c.MeanNormal.Z, 1e-12, "normals are unit-normalised before summing")
}

func TestSelectWire_GroupRule(t *testing.T) {
	// A 4x4 plate with a 12-vertex chain and a separate 3-vertex chain.
	g := testutil.Grid(4, 4, 1)
	v, long := testutil.Polyline(g, geom.Point3{X: 10}, geom.Point3{X: 1}, 12, 3)
	v, short := testutil.Polyline(v, geom.Point3{Y: 10}, geom.Point3{Y: 1}, 3, 12)
	adj := mesh.BuildTopology(v)
	comps := mesh.ConnectedComponents(v)

	m := Build(v, 1)
	var guesses []Key
	for i := long; i < v.Len(); i++ {
		guesses = append(guesses, m.KeyOf(v.Vertices[i]))
	}

	mask := SelectWire(v, adj, comps, m, guesses, 10)
	for i := 0; i < long; i++ {
		assert.False(t, mask[i])
	}
	for i := long; i < short; i++ {
		assert.True(t, mask[i], "long chain vertex %d", i)
	}
	for i := short; i < v.Len(); i++ {
		assert.False(t, mask[i], "short attached chain vertex %d", i)
	}
}
