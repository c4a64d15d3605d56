package testutil

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/meshpivot/internal/mesh/geom"
)

// TestAssertNoError_NilErr tests nil error path.
func TestAssertNoError_NilErr(t *testing.T) {
	fakeT := &testing.T{}
	AssertNoError(fakeT, nil)
	if fakeT.Failed() {
		t.Error("expected no failure for nil error")
	}
}

// TestAssertError_WithErr tests non-nil error path.
func TestAssertError_WithErr(t *testing.T) {
	fakeT := &testing.T{}
	AssertError(fakeT, errors.New("something wrong"))
	if fakeT.Failed() {
		t.Error("expected no failure for non-nil error")
	}
}

func TestFixtures_ValidateCleanly(t *testing.T) {
	require.NoError(t, UnitCube().Validate())
	require.NoError(t, TwoTriangles().Validate())
	require.NoError(t, Square().Validate())
	require.NoError(t, Grid(4, 3, 0.5).Validate())

	g, first := Polyline(Grid(3, 3, 1), geom.Point3{X: 3}, geom.Point3{X: 1}, 5, 8)
	require.NoError(t, g.Validate())
	assert.Equal(t, 9, first)
	assert.Len(t, g.Vertices, 14)
}

func TestGrid_Counts(t *testing.T) {
	g := Grid(4, 3, 0.5)
	assert.Len(t, g.Vertices, 12)
	// (nx-1)*ny horizontal + nx*(ny-1) vertical
	assert.Len(t, g.Edges, 3*3+4*2)
}

func TestDisk_WithinRadius(t *testing.T) {
	pts := Disk(200, 2)
	assert.InDelta(t, 200, len(pts), 20)
	for _, p := range pts {
		assert.LessOrEqual(t, math.Hypot(p.X, p.Y), 2.0)
		assert.Equal(t, 0.0, p.Z)
	}
}

func TestNoisyLine_Deterministic(t *testing.T) {
	a := NoisyLine(50, 10, 0.01, 7)
	b := NoisyLine(50, 10, 0.01, 7)
	assert.Equal(t, a, b)
	assert.InDelta(t, 10, a[49].X, 0.011)
}

func TestRotateZ_PreservesZ(t *testing.T) {
	r := RotateZ(UnitCube(), math.Pi/6)
	for i, p := range r.Vertices {
		assert.Equal(t, UnitCube().Vertices[i].Z, p.Z)
	}
}
