package operator

import "github.com/meenmo/hhwlib/fdm/mesher"

// firstWeights are the three-point first-derivative weights at a node with
// spacings hm (below) and hp (above). Boundary nodes use one-sided
// differences.
func firstWeights(c, n int, hm, hp float64) (lo, di, up float64) {
	switch {
	case c == 0:
		return 0, -1 / hp, 1 / hp
	case c == n-1:
		return -1 / hm, 1 / hm, 0
	default:
		return -hp / (hm * (hm + hp)), (hp - hm) / (hm * hp), hm / (hp * (hm + hp))
	}
}

// FirstDerivative is the central first derivative along dir on a
// non-uniform grid.
func FirstDerivative(dir int, m *mesher.Composite) *TripleBand {
	op := newTripleBand(dir, m)
	l := m.Layout()
	n := l.Dim()[dir]
	coords := make([]int, len(l.Dim()))
	for i := range op.diag {
		l.Coordinates(i, coords)
		op.lower[i], op.diag[i], op.upper[i] = firstWeights(coords[dir], n, m.Dminus(coords, dir), m.Dplus(coords, dir))
	}
	return op
}

// SecondDerivative is the second derivative along dir; it vanishes on the
// boundary nodes.
func SecondDerivative(dir int, m *mesher.Composite) *TripleBand {
	op := newTripleBand(dir, m)
	l := m.Layout()
	n := l.Dim()[dir]
	coords := make([]int, len(l.Dim()))
	for i := range op.diag {
		l.Coordinates(i, coords)
		c := coords[dir]
		if c == 0 || c == n-1 {
			continue
		}
		hm, hp := m.Dminus(coords, dir), m.Dplus(coords, dir)
		op.lower[i] = 2 / (hm * (hm + hp))
		op.diag[i] = -2 / (hm * hp)
		op.upper[i] = 2 / (hp * (hm + hp))
	}
	return op
}
