// Package model holds the stochastic processes priced by the engines: the
// Heston equity/variance process and the Hull-White short rate.
package model

import (
	"math"

	"github.com/pkg/errors"

	"github.com/meenmo/hhwlib/termstructure"
)

var (
	ErrNilCurve       = errors.New("missing yield curve")
	ErrBadCorrelation = errors.New("correlation outside [-1, 1]")
	ErrBadParameter   = errors.New("invalid model parameter")
)

// HestonProcess is dS/S = (r-q)dt + sqrt(v)dW1, dv = kappa(theta-v)dt + sigma sqrt(v)dW2,
// with d<W1,W2> = rho dt.
type HestonProcess struct {
	S0    float64
	V0    float64
	Kappa float64
	Theta float64
	Sigma float64
	Rho   float64

	RiskFree termstructure.YieldCurve
	Dividend termstructure.YieldCurve
}

// Validate checks parameter ranges.
func (p *HestonProcess) Validate() error {
	if p == nil {
		return errors.Wrap(ErrBadParameter, "nil heston process")
	}
	if p.RiskFree == nil || p.Dividend == nil {
		return errors.Wrap(ErrNilCurve, "heston process")
	}
	switch {
	case !(p.S0 > 0):
		return errors.Wrapf(ErrBadParameter, "spot %v", p.S0)
	case p.V0 < 0:
		return errors.Wrapf(ErrBadParameter, "v0 %v", p.V0)
	case !(p.Kappa > 0):
		return errors.Wrapf(ErrBadParameter, "kappa %v", p.Kappa)
	case p.Theta < 0:
		return errors.Wrapf(ErrBadParameter, "theta %v", p.Theta)
	case p.Sigma < 0:
		return errors.Wrapf(ErrBadParameter, "sigma %v", p.Sigma)
	case math.Abs(p.Rho) > 1:
		return errors.Wrapf(ErrBadCorrelation, "rho %v", p.Rho)
	}
	return nil
}

// IntegratedVariance is E[int_0^T v_s ds].
func (p *HestonProcess) IntegratedVariance(T float64) float64 {
	return p.Theta*T + (p.V0-p.Theta)*(1-math.Exp(-p.Kappa*T))/p.Kappa
}
