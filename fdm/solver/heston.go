package solver

import (
	"context"
	"math"

	"github.com/meenmo/hhwlib/fdm/operator"
	"github.com/meenmo/hhwlib/fdm/scheme"
	"github.com/meenmo/hhwlib/model"
)

// HestonSolver prices on an (ln S, v) mesh.
type HestonSolver struct {
	s *Solver2D
}

// NewHestonSolver builds the Heston operator on desc.Mesher.
func NewHestonSolver(p *model.HestonProcess, desc Desc, sd scheme.Desc) (*HestonSolver, error) {
	s, err := NewSolver2D(desc, sd, operator.NewHestonOp(desc.Mesher, p))
	if err != nil {
		return nil, err
	}
	return &HestonSolver{s: s}, nil
}

// ValueAt is the price at spot s and variance v.
func (h *HestonSolver) ValueAt(ctx context.Context, s, v float64) (float64, error) {
	return h.s.InterpolateAt(ctx, math.Log(s), v)
}

// DeltaAt is the central difference in spot with bump eps.
func (h *HestonSolver) DeltaAt(ctx context.Context, s, v, eps float64) (float64, error) {
	up, err := h.ValueAt(ctx, s+eps, v)
	if err != nil {
		return 0, err
	}
	down, err := h.ValueAt(ctx, s-eps, v)
	if err != nil {
		return 0, err
	}
	return (up - down) / (2 * eps), nil
}

// GammaAt is the second central difference in spot with bump eps.
func (h *HestonSolver) GammaAt(ctx context.Context, s, v, eps float64) (float64, error) {
	return gamma(func(s float64) (float64, error) { return h.ValueAt(ctx, s, v) }, s, eps)
}

// ThetaAt is the time derivative at (s, v).
func (h *HestonSolver) ThetaAt(ctx context.Context, s, v float64) (float64, error) {
	return h.s.ThetaAt(ctx, math.Log(s), v)
}

// HestonHullWhiteSolver prices on an (ln S, v, y) mesh; r is the
// Hull-White state y, not the short rate itself.
type HestonHullWhiteSolver struct {
	s *Solver3D
}

// NewHestonHullWhiteSolver builds the three-factor operator on desc.Mesher.
func NewHestonHullWhiteSolver(p *model.HestonProcess, hw *model.HullWhite, corrEquityShortRate float64, desc Desc, sd scheme.Desc) (*HestonHullWhiteSolver, error) {
	s, err := NewSolver3D(desc, sd, operator.NewHestonHullWhiteOp(desc.Mesher, p, hw, corrEquityShortRate))
	if err != nil {
		return nil, err
	}
	return &HestonHullWhiteSolver{s: s}, nil
}

// ValueAt is the price at spot s, variance v and rate state r.
func (h *HestonHullWhiteSolver) ValueAt(ctx context.Context, s, v, r float64) (float64, error) {
	return h.s.InterpolateAt(ctx, math.Log(s), v, r)
}

// DeltaAt is the central difference in spot with bump eps.
func (h *HestonHullWhiteSolver) DeltaAt(ctx context.Context, s, v, r, eps float64) (float64, error) {
	up, err := h.ValueAt(ctx, s+eps, v, r)
	if err != nil {
		return 0, err
	}
	down, err := h.ValueAt(ctx, s-eps, v, r)
	if err != nil {
		return 0, err
	}
	return (up - down) / (2 * eps), nil
}

// GammaAt is the second central difference in spot with bump eps.
func (h *HestonHullWhiteSolver) GammaAt(ctx context.Context, s, v, r, eps float64) (float64, error) {
	return gamma(func(s float64) (float64, error) { return h.ValueAt(ctx, s, v, r) }, s, eps)
}

// ThetaAt is the time derivative at (s, v, r).
func (h *HestonHullWhiteSolver) ThetaAt(ctx context.Context, s, v, r float64) (float64, error) {
	return h.s.ThetaAt(ctx, math.Log(s), v, r)
}

func gamma(f func(float64) (float64, error), s, eps float64) (float64, error) {
	up, err := f(s + eps)
	if err != nil {
		return 0, err
	}
	mid, err := f(s)
	if err != nil {
		return 0, err
	}
	down, err := f(s - eps)
	if err != nil {
		return 0, err
	}
	return (up - 2*mid + down) / (eps * eps), nil
}
