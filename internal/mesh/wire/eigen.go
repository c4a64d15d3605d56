package wire

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

const (
	powerMaxIter = 40
	powerTol     = 1e-10
	// orderSlack is how far λ2 may exceed λ1 before the pair is rejected.
	orderSlack = 1e-12
)

// cov3 is a symmetric 3×3 matrix stored densely.
type cov3 [3][3]float64

func (c *cov3) mulVec(v [3]float64) [3]float64 {
	var out [3]float64
	for r := 0; r < 3; r++ {
		out[r] = c[r][0]*v[0] + c[r][1]*v[1] + c[r][2]*v[2]
	}
	return out
}

func dot3(a, b [3]float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func unit3(v [3]float64) ([3]float64, bool) {
	n := math.Sqrt(dot3(v, v))
	if n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return v, false
	}
	return [3]float64{v[0] / n, v[1] / n, v[2] / n}, true
}

// eigenSolver returns the two largest eigenvalues of covariance matrices.
// It tries power iteration with deflation first and falls back to a dense
// symmetric eigendecomposition when that does not converge cleanly.
// A solver is not safe for concurrent use.
type eigenSolver struct {
	sym       *mat.SymDense
	es        mat.EigenSym
	vals      []float64
	fallbacks int
}

func newEigenSolver() *eigenSolver {
	return &eigenSolver{
		sym:  mat.NewSymDense(3, nil),
		vals: make([]float64, 3),
	}
}

// top2 returns λ1 >= λ2, the two largest eigenvalues of c.
func (s *eigenSolver) top2(c *cov3) (l1, l2 float64) {
	l1, l2, ok := powerTop2(c)
	if ok && !math.IsNaN(l1) && !math.IsInf(l1, 0) &&
		!math.IsNaN(l2) && !math.IsInf(l2, 0) && l2 <= l1+orderSlack {
		return l1, l2
	}
	s.fallbacks++
	logLinearity.Tracef("eigen fallback: power=(%g, %g) ok=%v cov=%v", l1, l2, ok, *c)
	return s.dense(c)
}

// dense solves c exactly. A failed factorisation yields (0, 0).
func (s *eigenSolver) dense(c *cov3) (float64, float64) {
	for i := 0; i < 3; i++ {
		for j := i; j < 3; j++ {
			s.sym.SetSym(i, j, c[i][j])
		}
	}
	if !s.es.Factorize(s.sym, false) {
		return 0, 0
	}
	// Values are ascending.
	s.vals = s.es.Values(s.vals)
	return s.vals[2], s.vals[1]
}

// powerTop2 estimates the two largest eigenvalues by power iteration. The
// second is the dominant eigenvalue of the matrix deflated by the first pair,
// so a rank-one matrix yields λ2 ≈ 0. ok is false when either iteration
// stalls on a zero vector or runs out of iterations.
func powerTop2(c *cov3) (l1, l2 float64, ok bool) {
	v, _ := unit3([3]float64{1, 1, 1})
	l1, v, ok = powerIterate(c, v)
	if !ok {
		return l1, 0, false
	}

	var deflated cov3
	for r := 0; r < 3; r++ {
		for col := 0; col < 3; col++ {
			deflated[r][col] = c[r][col] - l1*v[r]*v[col]
		}
	}
	u, good := unit3([3]float64{v[1] - v[2] + 0.1, v[2] - v[0] + 0.1, v[0] - v[1] + 0.1})
	if !good {
		u = [3]float64{1, 0, 0}
	}
	l2, _, ok = powerIterate(&deflated, u)
	return l1, l2, ok
}

// powerIterate runs power iteration on m and returns the Rayleigh quotient
// of the converged vector.
func powerIterate(m *cov3, v [3]float64) (float64, [3]float64, bool) {
	prev := 0.0
	for it := 0; it < powerMaxIter; it++ {
		next, good := unit3(m.mulVec(v))
		if !good {
			return prev, v, false
		}
		v = next
		lambda := dot3(v, m.mulVec(v))
		if math.Abs(lambda-prev) < powerTol*math.Max(1, math.Abs(lambda)) {
			return lambda, v, true
		}
		prev = lambda
	}
	return prev, v, false
}
