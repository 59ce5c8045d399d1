package model

import (
	"math"

	"github.com/pkg/errors"

	"github.com/meenmo/hhwlib/termstructure"
)

// HullWhite is the one-factor model r(t) = y(t) + Phi(t) with
// dy = -a y dt + sigma dW and y(0) = 0, fitted to Curve.
type HullWhite struct {
	A     float64
	Sigma float64
	Curve termstructure.YieldCurve
}

// Validate checks the mean reversion, the volatility and the curve.
func (m *HullWhite) Validate() error {
	if m == nil {
		return errors.Wrap(ErrBadParameter, "nil hull-white model")
	}
	if m.Curve == nil {
		return errors.Wrap(ErrNilCurve, "hull-white model")
	}
	if m.A < 0 {
		return errors.Wrapf(ErrBadParameter, "mean reversion %v", m.A)
	}
	if m.Sigma < 0 {
		return errors.Wrapf(ErrBadParameter, "short-rate volatility %v", m.Sigma)
	}
	return nil
}

// Phi is the deterministic shift fitting the initial curve.
func (m *HullWhite) Phi(t float64) float64 {
	f := m.Curve.InstantaneousForward(t)
	if m.A < math.Sqrt(epsilon) {
		return f + 0.5*m.Sigma*m.Sigma*t*t
	}
	e := 1 - math.Exp(-m.A*t)
	return f + 0.5*m.Sigma*m.Sigma/(m.A*m.A)*e*e
}

// B is the bond-price loading (1 - e^{-a(T-t)})/a.
func (m *HullWhite) B(t, T float64) float64 {
	if m.A < math.Sqrt(epsilon) {
		return T - t
	}
	return (1 - math.Exp(-m.A*(T-t))) / m.A
}

// ForwardVariance is Var[int_0^T y_s ds], the variance the stochastic rate
// adds to ln S_T under the T-forward measure when the equity and rate
// drivers are uncorrelated.
func (m *HullWhite) ForwardVariance(T float64) float64 {
	a, s2 := m.A, m.Sigma*m.Sigma
	if a < math.Sqrt(epsilon) {
		return s2 * T * T * T / 3
	}
	return s2 / (a * a) * (T - 2*(1-math.Exp(-a*T))/a + (1-math.Exp(-2*a*T))/(2*a))
}

// StateProcess returns the Ornstein-Uhlenbeck process driving y.
func (m *HullWhite) StateProcess() *OrnsteinUhlenbeck {
	return &OrnsteinUhlenbeck{Speed: m.A, Volatility: m.Sigma}
}
