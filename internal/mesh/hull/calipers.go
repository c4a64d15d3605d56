package hull

import (
	"math"

	"github.com/banshee-data/meshpivot/internal/mesh/geom"
)

// angleTol is the spacing below which two edge directions count as the same
// candidate.
const angleTol = 1e-6

// tieTol is the relative area difference under which a later candidate does
// not replace an earlier one.
const tieTol = 1e-12

// Rect is an oriented rectangle around a hull.
//
// Angle is the rotation about +Z (radians, in (-π, π]) that makes the
// rectangle axis-aligned when applied to the source points. Center is given
// in the original, unrotated frame.
type Rect struct {
	Angle       float64
	Center      geom.Point2
	HalfExtents geom.Point2
	Area        float64
}

// Valid reports whether r holds a measured rectangle.
func (r Rect) Valid() bool {
	return !math.IsInf(r.Area, 1) && !math.IsNaN(r.Area)
}

// Box returns r as an axis-aligned box in the rotated frame.
func (r Rect) Box() geom.Box2 {
	if !r.Valid() {
		return geom.NoBox2()
	}
	c := geom.Rotate2(r.Center, r.Angle)
	return geom.Box2{
		Min:   c.Sub(r.HalfExtents),
		Max:   c.Add(r.HalfExtents),
		Area:  r.Area,
		Angle: r.Angle,
	}
}

// Corners returns the four rectangle corners in the original frame, counter
// clockwise.
func (r Rect) Corners() [4]geom.Point2 {
	b := r.Box()
	local := [4]geom.Point2{
		b.Min,
		{X: b.Max.X, Y: b.Min.Y},
		b.Max,
		{X: b.Min.X, Y: b.Max.Y},
	}
	var out [4]geom.Point2
	for i, p := range local {
		out[i] = geom.Rotate2(p, -r.Angle)
	}
	return out
}

// MinAreaRect finds the smallest-area rectangle enclosing h by rotating
// calipers. Each hull edge direction is tried in edge order; the first
// minimum wins ties. A hull with fewer than three points yields a Rect with
// Area = +Inf.
func MinAreaRect(h Hull) Rect {
	best := Rect{Area: math.Inf(1)}
	if len(h) < 3 {
		return best
	}

	rotated := make([]geom.Point2, len(h))
	tried := make([]float64, 0, len(h))
	for i := range h {
		d := h[(i+1)%len(h)].Sub(h[i])
		if d.X == 0 && d.Y == 0 {
			continue
		}
		edge := math.Atan2(d.Y, d.X)
		if seenAngle(tried, edge) {
			continue
		}
		tried = append(tried, edge)

		rot := geom.NormalizeAngle(-edge)
		for k, p := range h {
			rotated[k] = geom.Rotate2(p, rot)
		}
		box := geom.Bounds2(rotated, rot)
		if !best.Valid() || box.Area < best.Area*(1-tieTol) {
			best = Rect{
				Angle:       rot,
				Center:      geom.Rotate2(box.Center(), -rot),
				HalfExtents: box.Size().Mul(0.5),
				Area:        box.Area,
			}
		}
	}
	return best
}

func seenAngle(tried []float64, a float64) bool {
	for _, t := range tried {
		if math.Abs(geom.NormalizeAngle(a-t)) < angleTol {
			return true
		}
	}
	return false
}
