package wire

import (
	"container/heap"
	"fmt"
	"math"
	"strings"

	"github.com/banshee-data/meshpivot/internal/mesh"
	"github.com/banshee-data/meshpivot/internal/mesh/geom"
	"github.com/banshee-data/meshpivot/internal/mesh/spatial"
)

const logLinearity = mesh.Stage("linearity")

// Mode selects how a vertex neighbourhood is gathered.
type Mode uint8

const (
	// Euclidean takes the k nearest vertices in space.
	Euclidean Mode = iota
	// Geodesic takes the k nearest vertices along mesh edges.
	Geodesic
)

func (m Mode) String() string {
	switch m {
	case Euclidean:
		return "euclidean"
	case Geodesic:
		return "geodesic"
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

// ParseMode accepts "euclidean" or "geodesic" (case-insensitive). An empty
// string selects Euclidean.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "euclidean":
		return Euclidean, nil
	case "geodesic":
		return Geodesic, nil
	}
	return Euclidean, fmt.Errorf("unknown neighborhood mode %q", s)
}

// Params controls linearity scoring and wire refinement.
type Params struct {
	K        int     // neighbourhood size, counting the query vertex
	Mode     Mode    // neighbourhood gathering
	Strict   float64 // linearity above which a vertex is a wire candidate
	Loose    float64 // linearity above which growth may absorb a vertex
	MinGroup int     // smallest candidate group kept when attached to other geometry
}

// DefaultParams returns the stock classifier settings.
func DefaultParams() Params {
	return Params{
		K:        100,
		Mode:     Euclidean,
		Strict:   0.9,
		Loose:    0.5,
		MinGroup: 10,
	}
}

// neighborhood gathers up to k-1 vertices around src, excluding src itself.
type neighborhood interface {
	collect(dst []uint32, src, k int) []uint32
}

// Linearity scores every vertex by how line-like its neighbourhood is:
// (λ1 − λ2) / λ1 of the neighbourhood covariance, clamped to [0, 1].
// A vertex whose neighbourhood is empty is scored against itself alone and
// gets 0.
func Linearity(v mesh.View, adj mesh.Adjacency, p Params) []float64 {
	n := v.Len()
	if n == 0 {
		return nil
	}
	k := min(p.K, n)
	if k < 1 {
		k = 1
	}

	var hood neighborhood
	switch p.Mode {
	case Geodesic:
		hood = newGeodesic(v.Vertices, adj)
	default:
		hood = euclidean{pts: v.Vertices, index: spatial.Build(v.Vertices)}
	}

	solver := newEigenSolver()
	scores := make([]float64, n)
	ids := make([]uint32, 0, k)
	for i := 0; i < n; i++ {
		ids = hood.collect(ids[:0], i, k)
		if len(ids) == 0 {
			ids = append(ids, uint32(i))
		}
		c := covariance(v.Vertices, ids)
		l1, l2 := solver.top2(&c)
		scores[i] = linearity(l1, l2)
	}
	if solver.fallbacks > 0 {
		logLinearity.Diagf("%d of %d eigen solves used the dense fallback", solver.fallbacks, n)
	}
	return scores
}

func linearity(l1, l2 float64) float64 {
	if !(l1 > 0) {
		return 0
	}
	s := (l1 - l2) / l1
	switch {
	case math.IsNaN(s):
		return 0
	case s < 0:
		return 0
	case s > 1:
		return 1
	}
	return s
}

// covariance returns the population covariance of the selected points.
func covariance(pts []geom.Point3, ids []uint32) cov3 {
	var mean geom.Point3
	for _, id := range ids {
		mean = mean.Add(pts[id])
	}
	mean = mean.Mul(1 / float64(len(ids)))

	var c cov3
	for _, id := range ids {
		d := pts[id].Sub(mean)
		e := [3]float64{d.X, d.Y, d.Z}
		for r := 0; r < 3; r++ {
			for col := r; col < 3; col++ {
				c[r][col] += e[r] * e[col]
			}
		}
	}
	inv := 1 / float64(len(ids))
	for r := 0; r < 3; r++ {
		for col := r; col < 3; col++ {
			c[r][col] *= inv
			c[col][r] = c[r][col]
		}
	}
	return c
}

type euclidean struct {
	pts   []geom.Point3
	index *spatial.Index
}

func (e euclidean) collect(dst []uint32, src, k int) []uint32 {
	for _, nb := range e.index.KNearest(e.pts[src], k) {
		if nb.ID != src {
			dst = append(dst, uint32(nb.ID))
		}
	}
	return dst
}

// geodesic runs a Dijkstra search over mesh edges that stops once enough
// vertices are settled. Scratch state is reused across queries.
type geodesic struct {
	pts     []geom.Point3
	adj     mesh.Adjacency
	dist    []float64
	settled []bool
	touched []uint32
	queue   frontier
}

func newGeodesic(pts []geom.Point3, adj mesh.Adjacency) *geodesic {
	g := &geodesic{
		pts:     pts,
		adj:     adj,
		dist:    make([]float64, len(pts)),
		settled: make([]bool, len(pts)),
	}
	for i := range g.dist {
		g.dist[i] = math.Inf(1)
	}
	return g
}

func (g *geodesic) collect(dst []uint32, src, k int) []uint32 {
	for _, id := range g.touched {
		g.dist[id] = math.Inf(1)
		g.settled[id] = false
	}
	g.touched = g.touched[:0]
	g.queue = g.queue[:0]

	g.relax(uint32(src), 0)
	for g.queue.Len() > 0 && len(dst) < k-1 {
		cur := heap.Pop(&g.queue).(step)
		if g.settled[cur.id] {
			continue
		}
		g.settled[cur.id] = true
		if int(cur.id) != src {
			dst = append(dst, cur.id)
		}
		if int(cur.id) >= len(g.adj) {
			continue
		}
		for _, nb := range g.adj[cur.id] {
			if !g.settled[nb] {
				g.relax(nb, cur.dist+g.pts[cur.id].Sub(g.pts[nb]).Norm())
			}
		}
	}
	return dst
}

func (g *geodesic) relax(id uint32, d float64) {
	if d >= g.dist[id] {
		return
	}
	if math.IsInf(g.dist[id], 1) {
		g.touched = append(g.touched, id)
	}
	g.dist[id] = d
	heap.Push(&g.queue, step{id: id, dist: d})
}

type step struct {
	id   uint32
	dist float64
}

// frontier is a min-heap of tentative distances, ties broken by vertex id.
type frontier []step

func (f frontier) Len() int { return len(f) }
func (f frontier) Less(i, j int) bool {
	if f[i].dist != f[j].dist {
		return f[i].dist < f[j].dist
	}
	return f[i].id < f[j].id
}
func (f frontier) Swap(i, j int) { f[i], f[j] = f[j], f[i] }
func (f *frontier) Push(x any)   { *f = append(*f, x.(step)) }
func (f *frontier) Pop() any {
	old := *f
	n := len(old)
	it := old[n-1]
	*f = old[:n-1]
	return it
}
