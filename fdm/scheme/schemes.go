package scheme

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/meenmo/hhwlib/fdm/operator"
)

type base struct {
	op        operator.Composite
	bc        BoundaryConditionSet
	theta, mu float64
	dt        float64
}

func (b *base) SetStep(dt float64) { b.dt = dt }

// begin freezes the operator on [t-dt, t] and returns a + dt*A(a).
func (b *base) begin(a []float64, t float64) []float64 {
	t0 := math.Max(0, t-b.dt)
	b.op.SetTime(t0, t)
	b.bc.SetTime(t0)
	b.bc.ApplyBeforeApplying(b.op)
	y := make([]float64, len(a))
	floats.AddScaledTo(y, a, b.dt, b.op.Apply(a))
	b.bc.ApplyAfterApplying(y)
	return y
}

// correct runs the implicit directional sweeps on y, subtracting theta*dt*A_i(base).
func (b *base) correct(y, from []float64) []float64 {
	for i := 0; i < b.op.Size(); i++ {
		rhs := make([]float64, len(y))
		floats.AddScaledTo(rhs, y, -b.theta*b.dt, b.op.ApplyDirection(i, from))
		y = b.op.SolveSplitting(i, rhs, -b.theta*b.dt)
	}
	return y
}

type douglas struct{ base }

func (s *douglas) Step(a []float64, t float64) {
	y := s.begin(a, t)
	y = s.correct(y, a)
	s.bc.ApplyAfterSolving(y)
	copy(a, y)
}

type explicitEuler struct{ base }

func (s *explicitEuler) Step(a []float64, t float64) {
	y := s.begin(a, t)
	s.bc.ApplyAfterSolving(y)
	copy(a, y)
}

type craigSneyd struct{ base }

func (s *craigSneyd) Step(a []float64, t float64) {
	y0 := s.begin(a, t)
	y := s.correct(append([]float64(nil), y0...), a)

	diff := make([]float64, len(a))
	floats.SubTo(diff, y, a)
	yt := make([]float64, len(a))
	floats.AddScaledTo(yt, y0, s.mu*s.dt, s.op.ApplyMixed(diff))
	s.bc.ApplyAfterApplying(yt)

	yt = s.correct(yt, a)
	s.bc.ApplyAfterSolving(yt)
	copy(a, yt)
}

type modifiedCraigSneyd struct{ base }

func (s *modifiedCraigSneyd) Step(a []float64, t float64) {
	y0 := s.begin(a, t)
	y := s.correct(append([]float64(nil), y0...), a)

	diff := make([]float64, len(a))
	floats.SubTo(diff, y, a)
	yt := make([]float64, len(a))
	floats.AddScaledTo(yt, y0, s.mu*s.dt, s.op.ApplyMixed(diff))
	floats.AddScaled(yt, (0.5-s.mu)*s.dt, s.op.Apply(diff))
	s.bc.ApplyAfterApplying(yt)

	yt = s.correct(yt, a)
	s.bc.ApplyAfterSolving(yt)
	copy(a, yt)
}

type hundsdorfer struct{ base }

func (s *hundsdorfer) Step(a []float64, t float64) {
	y0 := s.begin(a, t)
	y := s.correct(append([]float64(nil), y0...), a)
	s.bc.ApplyAfterSolving(y)

	diff := make([]float64, len(a))
	floats.SubTo(diff, y, a)
	yt := make([]float64, len(a))
	floats.AddScaledTo(yt, y0, s.mu*s.dt, s.op.Apply(diff))
	s.bc.ApplyAfterApplying(yt)

	yt = s.correct(yt, y)
	s.bc.ApplyAfterSolving(yt)
	copy(a, yt)
}
