// Package testutil provides shared test utilities and mesh fixtures.
//
// This package centralises the synthetic meshes used across the pipeline
// tests so every stage is exercised against the same geometry.
package testutil

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/banshee-data/meshpivot/internal/mesh"
	"github.com/banshee-data/meshpivot/internal/mesh/geom"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t testing.TB, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// UnitCube returns the 8 corners of [0,1]³ with its 12 edges and 12
// triangles.
func UnitCube() mesh.View {
	v := []geom.Point3{
		{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}, {X: 0, Y: 1, Z: 0},
		{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: 0, Y: 1, Z: 1},
	}
	edges := []mesh.Edge{
		{0, 1}, {1, 2}, {2, 3}, {3, 0}, // bottom
		{4, 5}, {5, 6}, {6, 7}, {7, 4}, // top
		{0, 4}, {1, 5}, {2, 6}, {3, 7}, // verticals
	}
	faces := []mesh.Face{
		{0, 2, 1}, {0, 3, 2}, // bottom, facing -Z
		{4, 5, 6}, {4, 6, 7}, // top, facing +Z
		{0, 1, 5}, {0, 5, 4},
		{1, 2, 6}, {1, 6, 5},
		{2, 3, 7}, {2, 7, 6},
		{3, 0, 4}, {3, 4, 7},
	}
	return mesh.View{Vertices: v, Edges: edges, Faces: faces}
}

// TwoTriangles returns two disjoint triangles sharing no vertices.
func TwoTriangles() mesh.View {
	return mesh.View{
		Vertices: []geom.Point3{
			{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1},
			{X: 5, Y: 0}, {X: 6, Y: 0}, {X: 5, Y: 1},
		},
		Edges: []mesh.Edge{{0, 1}, {1, 2}, {2, 0}, {3, 4}, {4, 5}, {5, 3}},
	}
}

// Square returns the unit square (0,0),(1,0),(1,1),(0,1) at z=0 as a closed
// edge loop.
func Square() mesh.View {
	return mesh.View{
		Vertices: []geom.Point3{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}},
		Edges:    []mesh.Edge{{0, 1}, {1, 2}, {2, 3}, {3, 0}},
	}
}

// RotateZ returns a copy of v with every vertex rotated by angle radians
// about +Z.
func RotateZ(v mesh.View, angle float64) mesh.View {
	out := v
	out.Vertices = make([]geom.Point3, len(v.Vertices))
	s, c := math.Sincos(angle)
	for i, p := range v.Vertices {
		out.Vertices[i] = geom.Point3{X: p.X*c - p.Y*s, Y: p.X*s + p.Y*c, Z: p.Z}
	}
	return out
}

// Translate returns a copy of v with every vertex offset by d.
func Translate(v mesh.View, d geom.Point3) mesh.View {
	out := v
	out.Vertices = make([]geom.Point3, len(v.Vertices))
	for i, p := range v.Vertices {
		out.Vertices[i] = p.Add(d)
	}
	return out
}

// NoisyLine samples n points along the segment from (0,0,0) to (length,0,0)
// with uniform jitter of ±noise on every axis. The sequence is deterministic
// for a given seed.
func NoisyLine(n int, length, noise float64, seed uint64) []geom.Point3 {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	pts := make([]geom.Point3, n)
	for i := range pts {
		t := float64(i) / float64(max(n-1, 1))
		pts[i] = geom.Point3{
			X: t*length + (2*r.Float64()-1)*noise,
			Y: (2*r.Float64() - 1) * noise,
			Z: (2*r.Float64() - 1) * noise,
		}
	}
	return pts
}

// Disk fills a disk of the given radius in the z=0 plane with points on a
// hexagonal lattice. The spacing is chosen so that roughly n points fall
// inside the disk; the exact count depends on how the lattice meets the rim.
// Interior points have six equidistant neighbours, so any small neighbourhood
// is isotropic.
func Disk(n int, radius float64) []geom.Point3 {
	spacing := radius * math.Sqrt(2*math.Pi/(math.Sqrt(3)*float64(n)))
	rowStep := spacing * math.Sqrt(3) / 2
	m := int(radius/spacing) + 2

	var pts []geom.Point3
	for j := -2 * m; j <= 2*m; j++ {
		shift := 0.0
		if j%2 != 0 {
			shift = 0.5
		}
		for i := -2 * m; i <= 2*m; i++ {
			x := (float64(i) + shift) * spacing
			y := float64(j) * rowStep
			if x*x+y*y <= radius*radius {
				pts = append(pts, geom.Point3{X: x, Y: y})
			}
		}
	}
	return pts
}

// Grid returns an nx×ny lattice of vertices at the given spacing in the z=0
// plane, connected by its horizontal and vertical lattice edges.
func Grid(nx, ny int, spacing float64) mesh.View {
	var v mesh.View
	idx := func(i, j int) uint32 { return uint32(j*nx + i) }
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			v.Vertices = append(v.Vertices, geom.Point3{X: float64(i) * spacing, Y: float64(j) * spacing})
			if i > 0 {
				v.Edges = append(v.Edges, mesh.Edge{idx(i-1, j), idx(i, j)})
			}
			if j > 0 {
				v.Edges = append(v.Edges, mesh.Edge{idx(i, j-1), idx(i, j)})
			}
		}
	}
	return v
}

// Polyline appends a chain of n vertices from start stepping by step to v,
// connecting the first new vertex to attach (when attach >= 0). It returns
// the extended view and the index of the first appended vertex.
func Polyline(v mesh.View, start, step geom.Point3, n int, attach int) (mesh.View, int) {
	first := len(v.Vertices)
	out := v
	out.Vertices = append(append([]geom.Point3(nil), v.Vertices...), make([]geom.Point3, n)...)
	out.Edges = append([]mesh.Edge(nil), v.Edges...)
	for k := 0; k < n; k++ {
		out.Vertices[first+k] = start.Add(step.Mul(float64(k)))
		if k > 0 {
			out.Edges = append(out.Edges, mesh.Edge{uint32(first + k - 1), uint32(first + k)})
		}
	}
	if attach >= 0 && n > 0 {
		out.Edges = append(out.Edges, mesh.Edge{uint32(attach), uint32(first)})
	}
	return out, first
}

// PointsView wraps bare points in a View with no topology.
func PointsView(pts []geom.Point3) mesh.View {
	return mesh.View{Vertices: pts}
}
