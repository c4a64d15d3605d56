package pivot

import (
	"math"

	"github.com/banshee-data/meshpivot/internal/mesh"
	"github.com/banshee-data/meshpivot/internal/mesh/geom"
	"github.com/banshee-data/meshpivot/internal/mesh/hull"
	"github.com/banshee-data/meshpivot/internal/resultcache"
)

// cacheKey digests the geometry, topology and every result-affecting knob.
func cacheKey(v mesh.View, p Params) string {
	b := resultcache.NewKeyBuilder()

	coords := make([]float64, 0, 3*len(v.Vertices))
	for _, pt := range v.Vertices {
		coords = append(coords, pt.X, pt.Y, pt.Z)
	}
	b.Float64s(coords...)

	idx := make([]uint32, 0, 2*len(v.Edges))
	for _, e := range v.Edges {
		idx = append(idx, e[0], e[1])
	}
	b.Uint32s(idx...)

	idx = idx[:0]
	for _, f := range v.Faces {
		idx = append(idx, f[0], f[1], f[2])
	}
	b.Uint32s(idx...)

	coords = coords[:0]
	for _, n := range v.Normals {
		coords = append(coords, n.X, n.Y, n.Z)
	}
	b.Float64s(coords...)

	return b.String(p.Fingerprint()).Sum()
}

func rectEntry(r hull.Rect) resultcache.RectEntry {
	return resultcache.RectEntry{
		Angle:       r.Angle,
		Center:      [2]float64{r.Center.X, r.Center.Y},
		HalfExtents: [2]float64{r.HalfExtents.X, r.HalfExtents.Y},
		Area:        r.Area,
	}
}

func rectFromEntry(e resultcache.RectEntry) hull.Rect {
	return hull.Rect{
		Angle:       e.Angle,
		Center:      geom.Point2{X: e.Center[0], Y: e.Center[1]},
		HalfExtents: geom.Point2{X: e.HalfExtents[0], Y: e.HalfExtents[1]},
		Area:        e.Area,
	}
}

// toEntry requires a valid Rect; an invalid base rect is stored as absent.
func toEntry(r Result) resultcache.Entry {
	e := resultcache.Entry{
		Angle:           r.Rotation.Z,
		Translation:     [3]float64{r.Translation.X, r.Translation.Y, r.Translation.Z},
		Rect:            rectEntry(r.Rect),
		WireCount:       r.WireCount,
		FullToBaseRatio: r.FullToBaseRatio,
	}
	if len(r.Hull) > 0 {
		e.Hull = make([][2]float64, len(r.Hull))
		for i, pt := range r.Hull {
			e.Hull[i] = [2]float64{pt.X, pt.Y}
		}
	}
	if r.BaseRect.Valid() {
		base := rectEntry(r.BaseRect)
		e.Base = &base
	}
	return e
}

func fromEntry(e resultcache.Entry) Result {
	r := Result{
		Rotation:        geom.Point3{Z: e.Angle},
		Translation:     geom.Point3{X: e.Translation[0], Y: e.Translation[1], Z: e.Translation[2]},
		Rect:            rectFromEntry(e.Rect),
		BaseRect:        hull.Rect{Area: math.Inf(1)},
		WireCount:       e.WireCount,
		FullToBaseRatio: e.FullToBaseRatio,
		Cached:          true,
	}
	if len(e.Hull) > 0 {
		r.Hull = make(hull.Hull, len(e.Hull))
		for i, pt := range e.Hull {
			r.Hull[i] = geom.Point2{X: pt[0], Y: pt[1]}
		}
	}
	if e.Base != nil {
		r.BaseRect = rectFromEntry(*e.Base)
	}
	return r
}
