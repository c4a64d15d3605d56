package pivot

import (
	"context"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/num/quat"

	"github.com/banshee-data/meshpivot/internal/mesh"
	"github.com/banshee-data/meshpivot/internal/mesh/geom"
	"github.com/banshee-data/meshpivot/internal/mesh/hull"
	"github.com/banshee-data/meshpivot/internal/mesh/slice"
	"github.com/banshee-data/meshpivot/internal/mesh/voxel"
	"github.com/banshee-data/meshpivot/internal/mesh/wire"
	"github.com/banshee-data/meshpivot/internal/resultcache"
)

const logStandardize = mesh.Stage("standardize")

// Options carries per-call collaborators.
type Options struct {
	// Cache, when set, is consulted before and filled after each run.
	Cache resultcache.Cache
}

// Result is the standardized pose of one object.
type Result struct {
	// Rotation is an axis-angle vector; only Z is ever non-zero.
	Rotation    geom.Point3
	Translation geom.Point3

	// Hull is the footprint on XY after wire removal.
	Hull hull.Hull
	Rect hull.Rect
	// Mask flags wire vertices. It is nil for neutral and cached results.
	Mask      wire.Mask
	WireCount int

	// BaseRect bounds the lowest BaseSlab of the footprint.
	BaseRect        hull.Rect
	FullToBaseRatio float64

	Cached bool
}

// Angle returns the Z rotation in radians.
func (r Result) Angle() float64 {
	return r.Rotation.Z
}

// Quaternion returns the rotation as a unit quaternion.
func (r Result) Quaternion() quat.Number {
	half := 0.5 * r.Rotation.Z
	return quat.Number{Real: math.Cos(half), Kmag: math.Sin(half)}
}

func neutral() Result {
	return Result{
		Rect:     hull.Rect{Area: math.Inf(1)},
		BaseRect: hull.Rect{Area: math.Inf(1)},
	}
}

// Standardize computes the rotation about Z that aligns the object's
// footprint with its minimum-area rectangle, and a reference translation.
//
// Degenerate input never fails: an empty or non-finite mesh yields the
// identity, a single vertex yields the identity translated to that vertex.
// The only error is a contract violation in v.
func Standardize(v mesh.View, p Params, opts Options) (Result, error) {
	if err := v.Validate(); err != nil {
		return Result{}, fmt.Errorf("standardize: %w", err)
	}
	switch {
	case v.Len() == 0:
		return neutral(), nil
	case !v.Finite():
		logStandardize.Opsf("non-finite coordinates in %d-vertex mesh, returning identity", v.Len())
		return neutral(), nil
	case v.Len() == 1:
		r := neutral()
		r.Translation = v.Vertices[0]
		return r, nil
	}

	ctx := context.Background()
	var key string
	if opts.Cache != nil {
		key = cacheKey(v, p)
		e, ok, err := opts.Cache.Get(ctx, key)
		if err != nil {
			logStandardize.Opsf("cache lookup failed: %v", err)
		} else if ok {
			logStandardize.Diagf("cache hit %s", key[:12])
			return fromEntry(e), nil
		}
	}

	start := time.Now()
	r := standardize(v, p)
	logStandardize.Diagf("%d vertices, %d wire, hull %d, angle %.4f rad in %v",
		v.Len(), r.WireCount, len(r.Hull), r.Rotation.Z, time.Since(start))

	if opts.Cache != nil && r.Rect.Valid() {
		if err := opts.Cache.Put(ctx, key, toEntry(r)); err != nil {
			logStandardize.Opsf("cache store failed: %v", err)
		}
	}
	return r, nil
}

func standardize(v mesh.View, p Params) Result {
	r := neutral()

	adj := mesh.BuildTopology(v)
	comps := mesh.ConnectedComponents(v)
	r.Mask = wireMask(v, adj, comps, p)
	r.WireCount = r.Mask.Count()

	footprint := hull.Masked(r.Mask, geom.AxisZ)
	r.Hull = hull.Compute(hull.Select(v.Vertices, footprint))
	if len(r.Hull) == 0 {
		if r.WireCount > 0 {
			logStandardize.Diagf("footprint empty after removing %d wire vertices, using all", r.WireCount)
		}
		footprint = hull.Project(geom.AxisZ)
		r.Hull = hull.Compute(hull.Select(v.Vertices, footprint))
	}

	r.Rect = hull.MinAreaRect(r.Hull)
	if r.Rect.Valid() {
		r.Rotation = geom.Point3{Z: r.Rect.Angle}
	}

	zmin := math.Inf(1)
	for i, pt := range v.Vertices {
		if _, ok := footprint(i, pt); ok && pt.Z < zmin {
			zmin = pt.Z
		}
	}

	base := hull.Compute(hull.Select(v.Vertices, hull.All(footprint, hull.ZSlab(zmin, zmin+p.BaseSlab))))
	r.BaseRect = hull.MinAreaRect(base)
	if r.Rect.Valid() && r.BaseRect.Valid() && r.BaseRect.Area > 0 {
		r.FullToBaseRatio = r.Rect.Area / r.BaseRect.Area
	}

	if p.Translation == TranslationCenter {
		c := footprintCenter(v, footprint, r.Rect)
		r.Translation = geom.Point3{X: c.X, Y: c.Y, Z: zmin}
	}
	return r
}

func wireMask(v mesh.View, adj mesh.Adjacency, comps mesh.Components, p Params) wire.Mask {
	switch p.Strategy {
	case StrategyPCA:
		return wire.Classify(v, adj, comps, p.Wire)
	case StrategyVoxel:
		m := voxel.Build(v, p.CellSize)
		return voxel.SelectWire(v, adj, comps, m, m.Guesses(p.Voxel), p.Wire.MinGroup)
	}
	return make(wire.Mask, v.Len())
}

// footprintCenter is the rectangle centre, or the XY box centre of the
// footprint vertices when no rectangle could be fitted.
func footprintCenter(v mesh.View, footprint hull.Selection, rect hull.Rect) geom.Point2 {
	if rect.Valid() {
		return rect.Center
	}
	box := geom.Bounds2(hull.Select(v.Vertices, footprint), 0)
	if !box.Valid() {
		return geom.Point2{}
	}
	return box.Center()
}

// Volume runs the slice analyzer across the bounds of v using the slice
// settings in p.
func Volume(v mesh.View, p Params) (slice.Result, error) {
	return slice.Analyze(v, v.Bounds(), p.SliceThickness, slice.Options{MaxSlices: p.MaxSlices})
}
