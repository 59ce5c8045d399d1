package operator

import (
	"github.com/meenmo/hhwlib/fdm/layout"
	"github.com/meenmo/hhwlib/fdm/mesher"
)

// NinePoint couples each node with its 3x3 neighbourhood in two directions.
type NinePoint struct {
	d0, d1 int
	layout *layout.Layout
	// idx[k] and w[k] hold neighbour (o0, o1) with k = 3*(o0+1) + (o1+1).
	idx [9][]int
	w   [9][]float64
}

// MixedDerivative is d^2/(dx_d0 dx_d1), the tensor product of the two
// first-derivative stencils.
func MixedDerivative(d0, d1 int, m *mesher.Composite) *NinePoint {
	l := m.Layout()
	n := l.Size()
	op := &NinePoint{d0: d0, d1: d1, layout: l}
	for k := range op.idx {
		op.idx[k] = make([]int, n)
		op.w[k] = make([]float64, n)
	}
	n0, n1 := l.Dim()[d0], l.Dim()[d1]
	coords := make([]int, len(l.Dim()))
	for i := 0; i < n; i++ {
		l.Coordinates(i, coords)
		a0, b0, c0 := firstWeights(coords[d0], n0, m.Dminus(coords, d0), m.Dplus(coords, d0))
		a1, b1, c1 := firstWeights(coords[d1], n1, m.Dminus(coords, d1), m.Dplus(coords, d1))
		w0 := [3]float64{a0, b0, c0}
		w1 := [3]float64{a1, b1, c1}
		for o0 := -1; o0 <= 1; o0++ {
			for o1 := -1; o1 <= 1; o1++ {
				k := 3*(o0+1) + (o1 + 1)
				op.idx[k][i] = l.Neighbourhood2(i, coords, d0, o0, d1, o1)
				op.w[k][i] = w0[o0+1] * w1[o1+1]
			}
		}
	}
	return op
}

// Apply returns op * r.
func (op *NinePoint) Apply(r []float64) []float64 {
	out := make([]float64, len(r))
	for k := range op.w {
		w, idx := op.w[k], op.idx[k]
		for i := range out {
			out[i] += w[i] * r[idx[i]]
		}
	}
	return out
}

// Mult scales row i by u[i].
func (op *NinePoint) Mult(u []float64) *NinePoint {
	out := &NinePoint{d0: op.d0, d1: op.d1, layout: op.layout, idx: op.idx}
	for k := range op.w {
		out.w[k] = make([]float64, len(op.w[k]))
		for i, s := range u {
			out.w[k][i] = op.w[k][i] * s
		}
	}
	return out
}
