package geom

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
)

// Point2 is a 2-D point in a projection plane.
type Point2 = r2.Point

// Point3 is a 3-D point in object space.
type Point3 = r3.Vector

// Axis selects one of the three object-space axes.
type Axis uint8

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// String returns the lower-case axis name.
func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	}
	return "unknown"
}

// Coord returns the coordinate of p along axis a.
func Coord(p Point3, a Axis) float64 {
	switch a {
	case AxisX:
		return p.X
	case AxisY:
		return p.Y
	default:
		return p.Z
	}
}

// Drop projects p onto the plane orthogonal to axis by discarding that
// coordinate. The remaining coordinates keep their cyclic order, so dropping
// Z yields (x, y), dropping X yields (y, z) and dropping Y yields (z, x).
// Keeping cyclic order preserves handedness: a CCW polygon seen from +axis
// stays CCW after projection.
func Drop(p Point3, axis Axis) Point2 {
	switch axis {
	case AxisX:
		return Point2{X: p.Y, Y: p.Z}
	case AxisY:
		return Point2{X: p.Z, Y: p.X}
	default:
		return Point2{X: p.X, Y: p.Y}
	}
}

// Rotate2 rotates p by angle radians counter-clockwise about the origin.
func Rotate2(p Point2, angle float64) Point2 {
	s, c := math.Sincos(angle)
	return Point2{
		X: p.X*c - p.Y*s,
		Y: p.X*s + p.Y*c,
	}
}

// Orient2 returns twice the signed area of triangle (a, b, c).
// Positive means c lies to the left of a→b (counter-clockwise turn).
func Orient2(a, b, c Point2) float64 {
	return b.Sub(a).Cross(c.Sub(a))
}

// Finite3 reports whether every coordinate of p is a finite number.
func Finite3(p Point3) bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0) &&
		!math.IsNaN(p.Z) && !math.IsInf(p.Z, 0)
}

// Less2 orders points lexicographically by X, then Y.
func Less2(a, b Point2) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	return a.Y < b.Y
}

// NormalizeAngle maps a to the half-open interval (-π, π].
func NormalizeAngle(a float64) float64 {
	if math.IsNaN(a) || math.IsInf(a, 0) {
		return 0
	}
	a = math.Mod(a, 2*math.Pi)
	if a <= -math.Pi {
		a += 2 * math.Pi
	} else if a > math.Pi {
		a -= 2 * math.Pi
	}
	if a == 0 {
		// Collapse -0 so callers comparing against zero see a plain zero.
		return 0
	}
	return a
}
