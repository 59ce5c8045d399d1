package operator_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meenmo/hhwlib/fdm/mesher"
	"github.com/meenmo/hhwlib/fdm/operator"
	"github.com/meenmo/hhwlib/model"
	"github.com/meenmo/hhwlib/termstructure"
)

func mesh2D(t *testing.T) *mesher.Composite {
	t.Helper()
	x, err := mesher.Concentrating(-1, 2, 17, 0.3, 0.2)
	require.NoError(t, err)
	y, err := mesher.NewGrid([]float64{0, 0.05, 0.12, 0.2, 0.4, 0.7, 1})
	require.NoError(t, err)
	return mesher.NewComposite(x, y)
}

func values(m *mesher.Composite, f func(x, y float64) float64) []float64 {
	xs, ys := m.Locations(0), m.Locations(1)
	out := make([]float64, len(xs))
	for i := range out {
		out[i] = f(xs[i], ys[i])
	}
	return out
}

func interior(m *mesher.Composite, i, dir int) bool {
	c := m.Layout().Coordinates(i, nil)[dir]
	return c > 0 && c < m.Layout().Dim()[dir]-1
}

func TestFirstDerivativeExactness(t *testing.T) {
	t.Parallel()
	m := mesh2D(t)
	xs := m.Locations(0)

	lin := operator.FirstDerivative(0, m).Apply(values(m, func(x, y float64) float64 { return 3*x + y }))
	for i := range lin {
		require.InDelta(t, 3, lin[i], 1e-10)
	}

	quad := operator.FirstDerivative(0, m).Apply(values(m, func(x, _ float64) float64 { return x * x }))
	for i := range quad {
		if interior(m, i, 0) {
			require.InDelta(t, 2*xs[i], quad[i], 1e-10)
		}
	}
}

func TestSecondDerivativeExactness(t *testing.T) {
	t.Parallel()
	m := mesh2D(t)
	d2 := operator.SecondDerivative(1, m).Apply(values(m, func(x, y float64) float64 { return x + 5*y*y }))
	for i := range d2 {
		if interior(m, i, 1) {
			require.InDelta(t, 10, d2[i], 1e-9)
		} else {
			require.Equal(t, 0.0, d2[i])
		}
	}
}

func TestMixedDerivativeOnBilinear(t *testing.T) {
	t.Parallel()
	m := mesh2D(t)
	d := operator.MixedDerivative(0, 1, m).Apply(values(m, func(x, y float64) float64 { return 2*x*y + x - y }))
	for i := range d {
		require.InDelta(t, 2, d[i], 1e-9)
	}
}

func TestSolveSplittingInvertsOperator(t *testing.T) {
	t.Parallel()
	m := mesh2D(t)
	for dir := 0; dir < 2; dir++ {
		op := operator.SecondDerivative(dir, m).Add(operator.FirstDerivative(dir, m))
		r := values(m, func(x, y float64) float64 { return math.Sin(3*x) + math.Cos(2*y) })
		const s = -0.01
		x := op.SolveSplitting(r, s)
		back := op.Apply(x)
		for i := range r {
			require.InDeltaf(t, r[i], x[i]+s*back[i], 1e-10, "dir %d node %d", dir, i)
		}
	}
}

func TestAxpyb(t *testing.T) {
	t.Parallel()
	m := mesh2D(t)
	dx := operator.FirstDerivative(0, m)
	dxx := operator.SecondDerivative(0, m)
	target := operator.FirstDerivative(0, m)
	target.Axpyb([]float64{2}, dx, dxx, []float64{-1})

	u := values(m, func(x, _ float64) float64 { return x * x })
	got := target.Apply(u)
	a, b := dx.Apply(u), dxx.Apply(u)
	for i := range got {
		require.InDelta(t, 2*a[i]+b[i]-u[i], got[i], 1e-10)
	}
}

func hestonProcess() *model.HestonProcess {
	return &model.HestonProcess{
		S0: 100, V0: 0.1, Kappa: 2, Theta: 0.1, Sigma: 0.3, Rho: -0.5,
		RiskFree: termstructure.NewFlatForward(0.04),
		Dividend: termstructure.NewFlatForward(0.03),
	}
}

func TestHestonOpOnLinearFunctions(t *testing.T) {
	t.Parallel()
	m := mesh2D(t)
	op := operator.NewHestonOp(m, hestonProcess())
	op.SetTime(0.1, 0.2)

	one := op.Apply(values(m, func(float64, float64) float64 { return 1 }))
	for i := range one {
		require.InDelta(t, -0.04, one[i], 1e-12)
	}

	xs, vs := m.Locations(0), m.Locations(1)
	lx := op.Apply(append([]float64(nil), xs...))
	for i := range lx {
		require.InDelta(t, 0.04-0.03-0.5*vs[i]-0.04*xs[i], lx[i], 1e-10)
	}

	dirs := op.ApplyDirection(0, xs)
	mixed := op.ApplyMixed(xs)
	dv := op.ApplyDirection(1, xs)
	for i := range lx {
		require.InDelta(t, lx[i], dirs[i]+dv[i]+mixed[i], 1e-12)
	}
}

func TestHestonHullWhiteOpDiscountsAtShortRate(t *testing.T) {
	t.Parallel()
	x, _ := mesher.Uniform(3, 6, 9)
	v, _ := mesher.Uniform(0, 0.5, 6)
	y, _ := mesher.Uniform(-0.3, 0.3, 7)
	m := mesher.NewComposite(x, v, y)
	hw := &model.HullWhite{A: 1, Sigma: 0.2, Curve: termstructure.NewFlatForward(0.04)}
	op := operator.NewHestonHullWhiteOp(m, hestonProcess(), hw, 0.5)
	require.Equal(t, 3, op.Size())
	op.SetTime(0.5, 0.6)
	phi := 0.5 * (hw.Phi(0.5) + hw.Phi(0.6))

	ys := m.Locations(2)
	one := op.Apply(values3(m, func(float64, float64, float64) float64 { return 1 }))
	for i := range one {
		require.InDelta(t, -(ys[i] + phi), one[i], 1e-12)
	}

	ly := op.Apply(append([]float64(nil), ys...))
	for i := range ly {
		require.InDelta(t, -hw.A*ys[i]-(ys[i]+phi)*ys[i], ly[i], 1e-10)
	}
}

func values3(m *mesher.Composite, f func(x, v, y float64) float64) []float64 {
	xs, vs, ys := m.Locations(0), m.Locations(1), m.Locations(2)
	out := make([]float64, len(xs))
	for i := range out {
		out[i] = f(xs[i], vs[i], ys[i])
	}
	return out
}

func TestBandArithmetic(t *testing.T) {
	t.Parallel()
	m := mesh2D(t)
	n := m.Layout().Size()
	twos, ones := make([]float64, n), make([]float64, n)
	for i := range twos {
		twos[i], ones[i] = 2, 1
	}
	xs := m.Locations(0)
	op := operator.FirstDerivative(0, m).Mult(twos).Add(operator.SecondDerivative(0, m)).AddDiag(ones)
	got := op.Apply(values(m, func(x, _ float64) float64 { return x * x }))
	for i := range got {
		if interior(m, i, 0) {
			require.InDelta(t, 4*xs[i]+2+xs[i]*xs[i], got[i], 1e-9)
		}
	}
	require.Panics(t, func() { operator.FirstDerivative(0, m).Add(operator.FirstDerivative(1, m)) })
}
