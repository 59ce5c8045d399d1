package model_test

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/hhwlib/model"
	"github.com/meenmo/hhwlib/termstructure"
)

func zanetteHeston() *model.HestonProcess {
	return &model.HestonProcess{
		S0: 100, V0: 0.1, Kappa: 2, Theta: 0.1, Sigma: 0.3, Rho: -0.5,
		RiskFree: termstructure.NewFlatForward(0.04),
		Dividend: termstructure.NewFlatForward(0.03),
	}
}

func TestHestonValidate(t *testing.T) {
	t.Parallel()
	require.NoError(t, zanetteHeston().Validate())

	cases := map[string]func(p *model.HestonProcess){
		"spot":  func(p *model.HestonProcess) { p.S0 = 0 },
		"kappa": func(p *model.HestonProcess) { p.Kappa = -1 },
		"rho":   func(p *model.HestonProcess) { p.Rho = 1.5 },
		"curve": func(p *model.HestonProcess) { p.Dividend = nil },
		"sigma": func(p *model.HestonProcess) { p.Sigma = -0.1 },
		"v0":    func(p *model.HestonProcess) { p.V0 = -0.1 },
		"theta": func(p *model.HestonProcess) { p.Theta = -0.1 },
	}
	for name, mutate := range cases {
		mutate := mutate
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			p := zanetteHeston()
			mutate(p)
			require.Error(t, p.Validate())
		})
	}
	p := zanetteHeston()
	p.Rho = -2
	require.True(t, errors.Is(p.Validate(), model.ErrBadCorrelation))
}

func TestIntegratedVarianceAtLongRunLevel(t *testing.T) {
	t.Parallel()
	p := zanetteHeston()
	require.InDelta(t, 0.1, p.IntegratedVariance(1), 1e-15)
}

func TestHullWhitePhiOnFlatCurve(t *testing.T) {
	t.Parallel()
	hw := &model.HullWhite{A: 1, Sigma: 0.2, Curve: termstructure.NewFlatForward(0.04)}
	require.NoError(t, hw.Validate())
	require.InDelta(t, 0.04, hw.Phi(0), 1e-15)
	e := 1 - math.Exp(-1.0)
	require.InDelta(t, 0.04+0.02*e*e, hw.Phi(1), 1e-14)
	require.InDelta(t, 1-math.Exp(-1.0), hw.B(0, 1), 1e-15)
}

func TestHullWhiteForwardVariance(t *testing.T) {
	t.Parallel()
	hw := &model.HullWhite{A: 1, Sigma: 0.2, Curve: termstructure.NewFlatForward(0.04)}
	// 0.04 * (1 - 2(1-e^-1) + (1-e^-2)/2)
	want := 0.04 * (1 - 2*(1-math.Exp(-1)) + (1-math.Exp(-2))/2)
	require.InDelta(t, want, hw.ForwardVariance(1), 1e-15)
	require.InDelta(t, 0.00672, hw.ForwardVariance(1), 1e-4)

	// a -> 0 limit
	small := &model.HullWhite{A: 0, Sigma: 0.2, Curve: hw.Curve}
	require.InDelta(t, 0.04/3, small.ForwardVariance(1), 1e-15)
}

func TestOrnsteinUhlenbeckMoments(t *testing.T) {
	t.Parallel()
	ou := &model.OrnsteinUhlenbeck{Speed: 1, Volatility: 0.2}
	require.InDelta(t, 0.5*math.Exp(-0.5), ou.Expectation(0, 0.5, 0.5), 1e-15)
	require.InDelta(t, 0.02*(1-math.Exp(-1)), ou.Variance(0, 0, 0.5), 1e-15)
	x := ou.Evolve(0, 0, 1, 2)
	require.InDelta(t, 2*math.Sqrt(0.02*(1-math.Exp(-2))), x, 1e-15)
}
