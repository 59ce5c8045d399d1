package operator

import (
	"math"

	"github.com/meenmo/hhwlib/fdm/mesher"
	"github.com/meenmo/hhwlib/model"
	"github.com/meenmo/hhwlib/termstructure"
)

// HestonOp is the Heston generator in (x = ln S, v) with the discount term
// split evenly between the two directions.
type HestonOp struct {
	rTS, qTS termstructure.YieldCurve

	halfV []float64
	dx    *TripleBand
	dxx   *TripleBand
	dv    *TripleBand
	corr  *NinePoint

	mapX, mapV *TripleBand
}

// NewHestonOp assembles the operator on a two-dimensional mesh.
func NewHestonOp(m *mesher.Composite, p *model.HestonProcess) *HestonOp {
	v := m.Locations(1)
	op := &HestonOp{
		rTS:   p.RiskFree,
		qTS:   p.Dividend,
		halfV: fill(len(v), func(i int) float64 { return -0.5 * v[i] }),
		dx:    FirstDerivative(0, m),
	}
	op.dxx = SecondDerivative(0, m).Mult(fill(len(v), func(i int) float64 { return 0.5 * v[i] }))
	op.dv = SecondDerivative(1, m).
		Mult(fill(len(v), func(i int) float64 { return 0.5 * p.Sigma * p.Sigma * v[i] })).
		Add(FirstDerivative(1, m).Mult(fill(len(v), func(i int) float64 { return p.Kappa * (p.Theta - v[i]) })))
	op.corr = MixedDerivative(0, 1, m).Mult(fill(len(v), func(i int) float64 { return p.Rho * p.Sigma * v[i] }))
	op.mapX = op.dx.clone()
	op.mapV = op.dv.clone()
	return op
}

func (op *HestonOp) Size() int { return 2 }

func (op *HestonOp) SetTime(t1, t2 float64) {
	r := op.rTS.ForwardRate(t1, t2)
	q := op.qTS.ForwardRate(t1, t2)
	drift := fill(len(op.halfV), func(i int) float64 { return r - q + op.halfV[i] })
	op.mapX.Axpyb(drift, op.dx, op.dxx, []float64{-0.5 * r})
	op.mapV.Axpyb(nil, op.dv, op.dv, []float64{-0.5 * r})
}

func (op *HestonOp) Apply(r []float64) []float64 {
	return addTo(op.mapX.Apply(r), op.mapV.Apply(r), op.corr.Apply(r))
}

func (op *HestonOp) ApplyMixed(r []float64) []float64 { return op.corr.Apply(r) }

func (op *HestonOp) ApplyDirection(dir int, r []float64) []float64 {
	switch dir {
	case 0:
		return op.mapX.Apply(r)
	case 1:
		return op.mapV.Apply(r)
	}
	return make([]float64, len(r))
}

func (op *HestonOp) SolveSplitting(dir int, r []float64, s float64) []float64 {
	switch dir {
	case 0:
		return op.mapX.SolveSplitting(r, s)
	case 1:
		return op.mapV.SolveSplitting(r, s)
	}
	return append([]float64(nil), r...)
}

// HestonHullWhiteOp is the generator in (x = ln S, v, y) with r = y + Phi(t).
// The whole discount term -r sits in the rate direction.
type HestonHullWhiteOp struct {
	hw  *model.HullWhite
	qTS termstructure.YieldCurve

	v, y       []float64
	dx, dxx    *TripleBand
	dv, dy     *TripleBand
	hestonCorr *NinePoint
	rateCorr   *NinePoint

	mapX, mapY *TripleBand
}

// NewHestonHullWhiteOp assembles the three-dimensional operator; rho is
// the equity/short-rate correlation.
func NewHestonHullWhiteOp(m *mesher.Composite, p *model.HestonProcess, hw *model.HullWhite, rho float64) *HestonHullWhiteOp {
	v, y := m.Locations(1), m.Locations(2)
	n := len(v)
	op := &HestonHullWhiteOp{hw: hw, qTS: p.Dividend, v: v, y: y, dx: FirstDerivative(0, m)}
	op.dxx = SecondDerivative(0, m).Mult(fill(n, func(i int) float64 { return 0.5 * v[i] }))
	op.dv = SecondDerivative(1, m).
		Mult(fill(n, func(i int) float64 { return 0.5 * p.Sigma * p.Sigma * v[i] })).
		Add(FirstDerivative(1, m).Mult(fill(n, func(i int) float64 { return p.Kappa * (p.Theta - v[i]) })))
	op.dy = FirstDerivative(2, m).
		Mult(fill(n, func(i int) float64 { return -hw.A * y[i] })).
		Add(SecondDerivative(2, m).Mult(fill(n, func(int) float64 { return 0.5 * hw.Sigma * hw.Sigma })))
	op.hestonCorr = MixedDerivative(0, 1, m).Mult(fill(n, func(i int) float64 { return p.Rho * p.Sigma * v[i] }))
	op.rateCorr = MixedDerivative(0, 2, m).Mult(fill(n, func(i int) float64 { return rho * hw.Sigma * math.Sqrt(v[i]) }))
	op.mapX = op.dx.clone()
	op.mapY = op.dy.clone()
	return op
}

func (op *HestonHullWhiteOp) Size() int { return 3 }

func (op *HestonHullWhiteOp) SetTime(t1, t2 float64) {
	phi := 0.5 * (op.hw.Phi(t1) + op.hw.Phi(t2))
	q := op.qTS.ForwardRate(t1, t2)
	n := len(op.v)
	drift := fill(n, func(i int) float64 { return op.y[i] + phi - q - 0.5*op.v[i] })
	op.mapX.Axpyb(drift, op.dx, op.dxx, nil)
	op.mapY.Axpyb(nil, op.dy, op.dy, fill(n, func(i int) float64 { return -(op.y[i] + phi) }))
}

func (op *HestonHullWhiteOp) Apply(r []float64) []float64 {
	return addTo(op.mapX.Apply(r), op.dv.Apply(r), op.mapY.Apply(r), op.hestonCorr.Apply(r), op.rateCorr.Apply(r))
}

func (op *HestonHullWhiteOp) ApplyMixed(r []float64) []float64 {
	return addTo(op.hestonCorr.Apply(r), op.rateCorr.Apply(r))
}

func (op *HestonHullWhiteOp) ApplyDirection(dir int, r []float64) []float64 {
	switch dir {
	case 0:
		return op.mapX.Apply(r)
	case 1:
		return op.dv.Apply(r)
	case 2:
		return op.mapY.Apply(r)
	}
	return make([]float64, len(r))
}

func (op *HestonHullWhiteOp) SolveSplitting(dir int, r []float64, s float64) []float64 {
	switch dir {
	case 0:
		return op.mapX.SolveSplitting(r, s)
	case 1:
		return op.dv.SolveSplitting(r, s)
	case 2:
		return op.mapY.SolveSplitting(r, s)
	}
	return append([]float64(nil), r...)
}
