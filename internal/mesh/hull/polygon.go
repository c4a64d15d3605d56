package hull

import (
	"math"

	"github.com/banshee-data/meshpivot/internal/mesh/geom"
)

// degenerateArea is the absolute area under which a polygon is treated as a
// point set.
const degenerateArea = 1e-9

// AreaCentroid returns the unsigned area and centroid of a simple polygon
// (shoelace formula). Fewer than three points, or an area below 1e-9,
// returns area 0 and the average of the vertices.
func AreaCentroid(poly []geom.Point2) (float64, geom.Point2) {
	if len(poly) < 3 {
		return 0, average(poly)
	}

	var a, cx, cy float64
	for i, p := range poly {
		q := poly[(i+1)%len(poly)]
		cross := p.Cross(q)
		a += cross
		cx += (p.X + q.X) * cross
		cy += (p.Y + q.Y) * cross
	}
	a *= 0.5
	if math.Abs(a) < degenerateArea {
		return 0, average(poly)
	}
	return math.Abs(a), geom.Point2{X: cx / (6 * a), Y: cy / (6 * a)}
}

func average(pts []geom.Point2) geom.Point2 {
	if len(pts) == 0 {
		return geom.Point2{}
	}
	var sum geom.Point2
	for _, p := range pts {
		sum = sum.Add(p)
	}
	return sum.Mul(1 / float64(len(pts)))
}
