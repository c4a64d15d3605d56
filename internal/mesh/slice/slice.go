// Package slice estimates the volumetric center of gravity of a mesh by
// cutting it into horizontal slabs and weighting each slab's cross-section
// islands by area.
//
// Responsibilities: edge bucketing per slab, per-component island hulls,
// and area-weighted aggregation. Connectivity comes from one union-find over
// every mesh edge, so an island is always one connected mesh piece.
package slice

import (
	"fmt"
	"math"
	"slices"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/banshee-data/meshpivot/internal/mesh"
	"github.com/banshee-data/meshpivot/internal/mesh/geom"
	"github.com/banshee-data/meshpivot/internal/mesh/hull"
)

const (
	// MaxSlices caps the slab count so a slab index fits in one byte.
	MaxSlices = 255
	// boundaryEps widens each slab when collecting vertices that sit on a
	// boundary plane.
	boundaryEps = 1e-8
)

const logSlice = mesh.Stage("slice")

// Options tunes Analyze.
type Options struct {
	// MaxSlices caps the slab count. Zero or values above 255 use 255.
	MaxSlices int
}

// Slice is one horizontal slab and its cross-section.
type Slice struct {
	ZLower  float64
	ZUpper  float64
	Islands []hull.Hull
	Area    float64
	COG     geom.Point2
}

// Mid returns the vertical midpoint of the slab.
func (s Slice) Mid() float64 {
	return 0.5 * (s.ZLower + s.ZUpper)
}

// Result is the outcome of a volumetric analysis.
type Result struct {
	COG       geom.Point3
	Slices    []Slice
	TotalArea float64
}

// Analyze slices v along Z across box with slabs of the given thickness and
// returns the area-weighted center of gravity. Degenerate input returns a
// zero result: no vertices or edges, a non-finite vertex or box corner, or a
// non-positive thickness. A box with no height returns (0, 0, box.Min.Z).
// The only error is a contract violation in v.
func Analyze(v mesh.View, box geom.Box3, thickness float64, opts Options) (Result, error) {
	if err := v.Validate(); err != nil {
		return Result{}, fmt.Errorf("slice analysis: %w", err)
	}
	if v.Len() == 0 || len(v.Edges) == 0 || !(thickness > 0) || math.IsInf(thickness, 1) {
		return Result{}, nil
	}
	if !v.Finite() || !geom.Finite3(box.Min) || !geom.Finite3(box.Max) {
		logSlice.Opsf("non-finite coordinates in %d-vertex mesh, returning zero result", v.Len())
		return Result{}, nil
	}
	height := box.Max.Z - box.Min.Z
	if !(height > 0) || math.IsInf(height, 1) {
		return Result{COG: geom.Point3{Z: box.Min.Z}}, nil
	}

	limit := opts.MaxSlices
	if limit <= 0 || limit > MaxSlices {
		limit = MaxSlices
	}
	count := int(math.Min(math.Ceil(height/thickness), float64(limit)))

	z0 := box.Min.Z
	slabs := make([]Slice, count)
	for i := range slabs {
		slabs[i].ZLower = z0 + float64(i)*thickness
		slabs[i].ZUpper = math.Min(box.Max.Z, slabs[i].ZLower+thickness)
	}

	buckets := bucketEdges(v, z0, thickness, count)

	uf := mesh.NewUnionFind(v.Len())
	for _, e := range v.Edges {
		uf.Union(e[0], e[1])
	}

	byZ := make([]uint32, v.Len())
	for i := range byZ {
		byZ[i] = uint32(i)
	}
	slices.SortStableFunc(byZ, func(a, b uint32) int {
		za, zb := v.Vertices[a].Z, v.Vertices[b].Z
		switch {
		case za < zb:
			return -1
		case za > zb:
			return 1
		}
		return 0
	})

	for i := range slabs {
		if len(buckets[i]) == 0 {
			continue
		}
		s := &slabs[i]
		s.Islands = islands(v, uf, byZ, buckets[i], s.ZLower, s.ZUpper)

		areas := make([]float64, 0, len(s.Islands))
		xs := make([]float64, 0, len(s.Islands))
		ys := make([]float64, 0, len(s.Islands))
		for _, h := range s.Islands {
			a, c := hull.AreaCentroid(h)
			if a <= 0 {
				continue
			}
			areas = append(areas, a)
			xs = append(xs, c.X)
			ys = append(ys, c.Y)
		}
		s.Area = floats.Sum(areas)
		if s.Area > 0 {
			s.COG = geom.Point2{X: floats.Dot(areas, xs) / s.Area, Y: floats.Dot(areas, ys) / s.Area}
		}
	}

	res := Result{Slices: slabs}
	areas := make([]float64, count)
	xs := make([]float64, count)
	ys := make([]float64, count)
	zs := make([]float64, count)
	for i, s := range slabs {
		areas[i], xs[i], ys[i], zs[i] = s.Area, s.COG.X, s.COG.Y, s.Mid()
	}
	res.TotalArea = floats.Sum(areas)
	if res.TotalArea > 0 {
		res.COG = geom.Point3{
			X: floats.Dot(areas, xs) / res.TotalArea,
			Y: floats.Dot(areas, ys) / res.TotalArea,
			Z: floats.Dot(areas, zs) / res.TotalArea,
		}
	}
	logSlice.Diagf("%d slabs of %g, total area %g", count, thickness, res.TotalArea)
	return res, nil
}

// bucketEdges lists, per slab, the edges whose z-extent reaches into it. The
// slab range comes from flooring each endpoint, so an edge ending exactly on
// a boundary is also listed in the slab above; islands re-checks overlap.
// Edges entirely below the first slab or at or above the top are dropped.
func bucketEdges(v mesh.View, z0, thickness float64, count int) [][]int {
	buckets := make([][]int, count)
	top := z0 + thickness*float64(count)
	for ei, e := range v.Edges {
		za, zb := v.Vertices[e[0]].Z, v.Vertices[e[1]].Z
		zmin, zmax := math.Min(za, zb), math.Max(za, zb)
		if zmax <= z0 || zmin >= top {
			continue
		}
		first := int(math.Floor((zmin - z0) / thickness))
		last := int(math.Floor((zmax - z0) / thickness))
		if last < 0 || first >= count {
			continue
		}
		first = max(first, 0)
		last = min(last, count-1)
		for si := first; si <= last; si++ {
			buckets[si] = append(buckets[si], ei)
		}
	}
	return buckets
}

// islands gathers the in-slab vertices and boundary crossings of one slab,
// groups them by connected component and hulls each group.
func islands(v mesh.View, uf *mesh.UnionFind, byZ []uint32, edges []int, zl, zu float64) []hull.Hull {
	groups := make(map[uint32][]geom.Point2)

	lo := sort.Search(len(byZ), func(i int) bool { return v.Vertices[byZ[i]].Z >= zl-boundaryEps })
	for _, vid := range byZ[lo:] {
		p := v.Vertices[vid]
		if p.Z > zu+boundaryEps {
			break
		}
		root := uf.Find(vid)
		groups[root] = append(groups[root], geom.Point2{X: p.X, Y: p.Y})
	}

	inside := func(z float64) bool {
		return z >= zl-boundaryEps && z <= zu+boundaryEps
	}
	for _, ei := range edges {
		e := v.Edges[ei]
		a, b := v.Vertices[e[0]], v.Vertices[e[1]]
		if !(math.Max(a.Z, b.Z) > zl && math.Min(a.Z, b.Z) < zu) {
			continue
		}
		root := uf.Find(e[0])
		aIn, bIn := inside(a.Z), inside(b.Z)
		switch {
		case !aIn && !bIn:
			if p, ok := crossing(a, b, zl); ok {
				groups[root] = append(groups[root], p)
			}
			if p, ok := crossing(a, b, zu); ok {
				groups[root] = append(groups[root], p)
			}
		case aIn != bIn:
			if p, ok := crossing(a, b, zl); ok {
				groups[root] = append(groups[root], p)
			} else if p, ok := crossing(a, b, zu); ok {
				groups[root] = append(groups[root], p)
			}
		}
	}

	roots := make([]uint32, 0, len(groups))
	for r := range groups {
		roots = append(roots, r)
	}
	slices.Sort(roots)

	var out []hull.Hull
	for _, r := range roots {
		if h := hull.Compute(groups[r]); len(h) > 0 {
			out = append(out, h)
		}
	}
	return out
}

// crossing interpolates the XY point where segment ab meets the plane z,
// when a and b lie strictly on opposite sides.
func crossing(a, b geom.Point3, z float64) (geom.Point2, bool) {
	if (a.Z-z)*(b.Z-z) >= 0 {
		return geom.Point2{}, false
	}
	t := (z - a.Z) / (b.Z - a.Z)
	return geom.Point2{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}, true
}
