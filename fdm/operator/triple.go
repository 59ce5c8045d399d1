// Package operator assembles the finite-difference spatial operators: first
// and second derivatives along one axis, mixed derivatives across two, and
// the composite Heston and Heston/Hull-White generators built from them.
package operator

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/meenmo/hhwlib/fdm/layout"
	"github.com/meenmo/hhwlib/fdm/mesher"
)

// TripleBand is a tridiagonal operator acting along a single direction.
// Row i couples node i with its lower (i0) and upper (i2) neighbours.
type TripleBand struct {
	dir    int
	layout *layout.Layout
	i0, i2 []int
	lower  []float64
	diag   []float64
	upper  []float64
}

func newTripleBand(dir int, m *mesher.Composite) *TripleBand {
	l := m.Layout()
	n := l.Size()
	op := &TripleBand{
		dir:    dir,
		layout: l,
		i0:     make([]int, n),
		i2:     make([]int, n),
		lower:  make([]float64, n),
		diag:   make([]float64, n),
		upper:  make([]float64, n),
	}
	coords := make([]int, len(l.Dim()))
	for i := 0; i < n; i++ {
		l.Coordinates(i, coords)
		op.i0[i] = l.Neighbourhood(i, coords, dir, -1)
		op.i2[i] = l.Neighbourhood(i, coords, dir, 1)
	}
	return op
}

func (op *TripleBand) clone() *TripleBand {
	return &TripleBand{
		dir:    op.dir,
		layout: op.layout,
		i0:     op.i0,
		i2:     op.i2,
		lower:  append([]float64(nil), op.lower...),
		diag:   append([]float64(nil), op.diag...),
		upper:  append([]float64(nil), op.upper...),
	}
}

// Direction is the axis the operator differentiates along.
func (op *TripleBand) Direction() int { return op.dir }

// Apply returns op * r.
func (op *TripleBand) Apply(r []float64) []float64 {
	out := make([]float64, len(r))
	for i := range out {
		out[i] = op.lower[i]*r[op.i0[i]] + op.diag[i]*r[i] + op.upper[i]*r[op.i2[i]]
	}
	return out
}

// Mult scales row i by u[i].
func (op *TripleBand) Mult(u []float64) *TripleBand {
	out := op.clone()
	floats.Mul(out.lower, u)
	floats.Mul(out.diag, u)
	floats.Mul(out.upper, u)
	return out
}

// Add returns op + m; both must act along the same direction.
func (op *TripleBand) Add(m *TripleBand) *TripleBand {
	if m.dir != op.dir {
		panic(fmt.Sprintf("operator: adding direction %d to %d", m.dir, op.dir))
	}
	out := op.clone()
	floats.Add(out.lower, m.lower)
	floats.Add(out.diag, m.diag)
	floats.Add(out.upper, m.upper)
	return out
}

// AddDiag returns op + diag(u).
func (op *TripleBand) AddDiag(u []float64) *TripleBand {
	out := op.clone()
	floats.Add(out.diag, u)
	return out
}

// Axpyb overwrites op with diag(a) x + y + diag(b). a and b may be nil,
// a single scalar, or one value per node.
func (op *TripleBand) Axpyb(a []float64, x, y *TripleBand, b []float64) {
	at := func(v []float64, i int) float64 {
		switch len(v) {
		case 0:
			return 0
		case 1:
			return v[0]
		default:
			return v[i]
		}
	}
	for i := range op.diag {
		s := at(a, i)
		op.lower[i] = y.lower[i]
		op.diag[i] = y.diag[i] + at(b, i)
		op.upper[i] = y.upper[i]
		if len(a) > 0 {
			op.lower[i] += s * x.lower[i]
			op.diag[i] += s * x.diag[i]
			op.upper[i] += s * x.upper[i]
		}
	}
}

// SolveSplitting solves (I + s*op) x = r line by line with the Thomas
// algorithm.
func (op *TripleBand) SolveSplitting(r []float64, s float64) []float64 {
	x := make([]float64, len(r))
	n := op.layout.Dim()[op.dir]
	stride := op.layout.Spacing()[op.dir]
	cp := make([]float64, n)
	dp := make([]float64, n)

	op.layout.Lines(op.dir, func(start int) {
		i := start
		b := 1 + s*op.diag[i]
		cp[0] = s * op.upper[i] / b
		dp[0] = r[i] / b
		for k := 1; k < n; k++ {
			i = start + k*stride
			a := s * op.lower[i]
			b = 1 + s*op.diag[i] - a*cp[k-1]
			cp[k] = s * op.upper[i] / b
			dp[k] = (r[i] - a*dp[k-1]) / b
		}
		x[i] = dp[n-1]
		for k := n - 2; k >= 0; k-- {
			j := start + k*stride
			x[j] = dp[k] - cp[k]*x[j+stride]
		}
	})
	return x
}
