package operator

// Composite is a time-dependent operator split into one tridiagonal part
// per direction plus the cross terms, as required by ADI schemes.
type Composite interface {
	// Size is the number of splitting directions.
	Size() int
	// SetTime freezes the time-dependent coefficients on [t1, t2].
	SetTime(t1, t2 float64)
	// Apply applies the full operator.
	Apply(r []float64) []float64
	// ApplyMixed applies only the cross-derivative terms.
	ApplyMixed(r []float64) []float64
	// ApplyDirection applies the part acting along dir.
	ApplyDirection(dir int, r []float64) []float64
	// SolveSplitting solves (I + s*A_dir) x = r.
	SolveSplitting(dir int, r []float64, s float64) []float64
}

func addTo(dst []float64, vs ...[]float64) []float64 {
	for _, v := range vs {
		for i := range dst {
			dst[i] += v[i]
		}
	}
	return dst
}

func fill(n int, f func(i int) float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = f(i)
	}
	return out
}
