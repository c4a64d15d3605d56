package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDrop_PreservesCyclicOrder(t *testing.T) {
	p := Point3{X: 1, Y: 2, Z: 3}

	assert.Equal(t, Point2{X: 1, Y: 2}, Drop(p, AxisZ))
	assert.Equal(t, Point2{X: 2, Y: 3}, Drop(p, AxisX))
	assert.Equal(t, Point2{X: 3, Y: 1}, Drop(p, AxisY))
}

func TestRotate2_QuarterTurn(t *testing.T) {
	got := Rotate2(Point2{X: 1, Y: 0}, math.Pi/2)
	assert.InDelta(t, 0, got.X, 1e-12)
	assert.InDelta(t, 1, got.Y, 1e-12)
}

func TestOrient2(t *testing.T) {
	a, b := Point2{X: 0, Y: 0}, Point2{X: 1, Y: 0}

	assert.Greater(t, Orient2(a, b, Point2{X: 0, Y: 1}), 0.0, "left turn is positive")
	assert.Less(t, Orient2(a, b, Point2{X: 0, Y: -1}), 0.0, "right turn is negative")
	assert.Equal(t, 0.0, Orient2(a, b, Point2{X: 2, Y: 0}), "collinear is zero")
}

func TestFinite3(t *testing.T) {
	assert.True(t, Finite3(Point3{X: 1, Y: 2, Z: 3}))
	assert.False(t, Finite3(Point3{X: math.NaN()}))
	assert.False(t, Finite3(Point3{Z: math.Inf(-1)}))
}

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{math.Pi, math.Pi},
		{-math.Pi, math.Pi},
		{3 * math.Pi / 2, -math.Pi / 2},
		{-3 * math.Pi / 2, math.Pi / 2},
		{5 * math.Pi, math.Pi},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, NormalizeAngle(tt.in), 1e-12, "NormalizeAngle(%v)", tt.in)
	}
	assert.False(t, math.Signbit(NormalizeAngle(math.Copysign(0, -1))), "negative zero collapses")
}

func TestBounds2(t *testing.T) {
	b := Bounds2([]Point2{{X: 1, Y: 1}, {X: 3, Y: 2}, {X: 2, Y: 5}}, 0.25)

	assert.True(t, b.Valid())
	assert.Equal(t, Point2{X: 1, Y: 1}, b.Min)
	assert.Equal(t, Point2{X: 3, Y: 5}, b.Max)
	assert.InDelta(t, 8.0, b.Area, 1e-12)
	assert.Equal(t, 0.25, b.Angle)
	assert.Equal(t, Point2{X: 2, Y: 3}, b.Center())
}

func TestBounds2_EmptyIsNoResult(t *testing.T) {
	b := Bounds2(nil, 0)
	assert.False(t, b.Valid())
	assert.True(t, math.IsInf(b.Area, 1))
}

func TestBounds3(t *testing.T) {
	b := Bounds3([]Point3{{X: -1, Y: 0, Z: 2}, {X: 1, Y: 3, Z: 4}})

	assert.True(t, b.Valid())
	assert.InDelta(t, 2*3*2, b.Volume, 1e-12)
	assert.InDelta(t, 2, b.Height(), 1e-12)
	assert.Equal(t, Point3{X: 0, Y: 1.5, Z: 3}, b.Center())

	assert.False(t, Bounds3(nil).Valid())
}
