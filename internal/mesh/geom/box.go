package geom

import (
	"math"

	"github.com/golang/geo/r2"
)

// Box2 is an axis-aligned rectangle in some rotated 2-D frame.
// Angle records the rotation (radians) that was applied to the source points
// before the extent was measured. The zero-result state has Area = +Inf.
type Box2 struct {
	Min   Point2
	Max   Point2
	Area  float64
	Angle float64
}

// NoBox2 returns the "no result" rectangle.
func NoBox2() Box2 {
	return Box2{Area: math.Inf(1)}
}

// Valid reports whether b holds a measured extent.
func (b Box2) Valid() bool {
	return !math.IsInf(b.Area, 1) && !math.IsNaN(b.Area)
}

// Center returns the midpoint of b in its own (rotated) frame.
func (b Box2) Center() Point2 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the width and height of b.
func (b Box2) Size() Point2 {
	return b.Max.Sub(b.Min)
}

// Bounds2 measures the axis-aligned extent of pts and tags it with angle.
// An empty input yields NoBox2.
func Bounds2(pts []Point2, angle float64) Box2 {
	if len(pts) == 0 {
		return NoBox2()
	}
	r := r2.RectFromPoints(pts...)
	size := r.Size()
	return Box2{
		Min:   r.Lo(),
		Max:   r.Hi(),
		Area:  size.X * size.Y,
		Angle: angle,
	}
}

// Box3 is an axis-aligned box in object space. The zero-result state has
// Volume = +Inf.
type Box3 struct {
	Min    Point3
	Max    Point3
	Volume float64
	Angle  float64
}

// NoBox3 returns the "no result" box.
func NoBox3() Box3 {
	return Box3{Volume: math.Inf(1)}
}

// Valid reports whether b holds a measured extent.
func (b Box3) Valid() bool {
	return !math.IsInf(b.Volume, 1) && !math.IsNaN(b.Volume)
}

// Height returns the Z extent of b.
func (b Box3) Height() float64 {
	return b.Max.Z - b.Min.Z
}

// Center returns the midpoint of b.
func (b Box3) Center() Point3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Bounds3 measures the axis-aligned extent of pts. An empty input yields
// NoBox3.
func Bounds3(pts []Point3) Box3 {
	if len(pts) == 0 {
		return NoBox3()
	}
	lo, hi := pts[0], pts[0]
	for _, p := range pts[1:] {
		lo.X = math.Min(lo.X, p.X)
		lo.Y = math.Min(lo.Y, p.Y)
		lo.Z = math.Min(lo.Z, p.Z)
		hi.X = math.Max(hi.X, p.X)
		hi.Y = math.Max(hi.Y, p.Y)
		hi.Z = math.Max(hi.Z, p.Z)
	}
	d := hi.Sub(lo)
	return Box3{Min: lo, Max: hi, Volume: d.X * d.Y * d.Z}
}
