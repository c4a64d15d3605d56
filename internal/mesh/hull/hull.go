// Package hull builds 2-D convex hulls of projected mesh vertices and the
// minimum-area rectangles that enclose them.
//
// Responsibilities: point selection and projection, Andrew's monotone chain,
// rotating calipers, and polygon area/centroid for slice islands.
//
// Dependency rule: hull depends only on geom. It knows nothing about mesh
// topology; callers hand it flat point sets.
package hull

import (
	"math"
	"slices"

	"github.com/banshee-data/meshpivot/internal/mesh/geom"
)

// Hull is a strictly convex polygon in counter-clockwise order. The first
// point is not repeated at the end. An empty Hull means no polygon could be
// formed.
type Hull []geom.Point2

// Selection decides whether vertex i takes part in a hull and, if so, where
// it lands in the projection plane.
type Selection func(i int, p geom.Point3) (geom.Point2, bool)

// Project keeps every vertex and drops the given axis.
func Project(axis geom.Axis) Selection {
	return func(_ int, p geom.Point3) (geom.Point2, bool) {
		return geom.Drop(p, axis), true
	}
}

// Masked keeps vertices whose mask entry is false and drops the given axis.
// Vertices beyond the end of mask are kept.
func Masked(mask []bool, axis geom.Axis) Selection {
	return func(i int, p geom.Point3) (geom.Point2, bool) {
		if i < len(mask) && mask[i] {
			return geom.Point2{}, false
		}
		return geom.Drop(p, axis), true
	}
}

// ZSlab keeps vertices with z0 <= z < z1 projected on XY.
func ZSlab(z0, z1 float64) Selection {
	return func(_ int, p geom.Point3) (geom.Point2, bool) {
		if p.Z < z0 || p.Z >= z1 {
			return geom.Point2{}, false
		}
		return geom.Point2{X: p.X, Y: p.Y}, true
	}
}

// All keeps a vertex only when every selection keeps it. The projected point
// comes from the first selection.
func All(sels ...Selection) Selection {
	return func(i int, p geom.Point3) (geom.Point2, bool) {
		var out geom.Point2
		for k, sel := range sels {
			q, ok := sel(i, p)
			if !ok {
				return geom.Point2{}, false
			}
			if k == 0 {
				out = q
			}
		}
		return out, len(sels) > 0
	}
}

// Select applies sel to every point and returns the kept projections in
// input order.
func Select(points []geom.Point3, sel Selection) []geom.Point2 {
	out := make([]geom.Point2, 0, len(points))
	for i, p := range points {
		if q, ok := sel(i, p); ok {
			out = append(out, q)
		}
	}
	return out
}

// Compute returns the convex hull of pts using Andrew's monotone chain.
// The input slice is not modified. Fewer than three distinct points, or a
// fully collinear set, yields an empty hull.
func Compute(pts []geom.Point2) Hull {
	if len(pts) < 3 {
		return nil
	}
	sorted := slices.Clone(pts)
	slices.SortFunc(sorted, func(a, b geom.Point2) int {
		switch {
		case geom.Less2(a, b):
			return -1
		case geom.Less2(b, a):
			return 1
		}
		return 0
	})
	sorted = slices.Compact(sorted)
	if len(sorted) < 3 {
		return nil
	}

	eps := epsilon(sorted)
	if eps == 0 {
		return nil
	}

	h := make([]geom.Point2, 0, 2*len(sorted))
	for _, p := range sorted {
		for len(h) >= 2 && geom.Orient2(h[len(h)-2], h[len(h)-1], p) <= eps {
			h = h[:len(h)-1]
		}
		h = append(h, p)
	}
	lower := len(h) + 1
	for i := len(sorted) - 2; i >= 0; i-- {
		p := sorted[i]
		for len(h) >= lower && geom.Orient2(h[len(h)-2], h[len(h)-1], p) <= eps {
			h = h[:len(h)-1]
		}
		h = append(h, p)
	}
	h = h[:len(h)-1]

	if len(h) < 3 {
		return nil
	}
	return Hull(h)
}

// epsilon scales the orientation tolerance to the squared extent of the
// sorted point set.
func epsilon(sorted []geom.Point2) float64 {
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, p := range sorted {
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	scale := math.Max(sorted[len(sorted)-1].X-sorted[0].X, maxY-minY)
	return 1e-8 * scale * scale
}

// Area returns the enclosed area of h.
func (h Hull) Area() float64 {
	a, _ := AreaCentroid(h)
	return a
}
