package analytic_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meenmo/hhwlib/instrument"
	"github.com/meenmo/hhwlib/model"
	"github.com/meenmo/hhwlib/pricing/analytic"
	"github.com/meenmo/hhwlib/termstructure"
)

func zanetteHeston() *model.HestonProcess {
	return &model.HestonProcess{
		S0: 100, V0: 0.1, Kappa: 2, Theta: 0.1, Sigma: 0.3, Rho: -0.5,
		RiskFree: termstructure.NewFlatForward(0.04),
		Dividend: termstructure.NewFlatForward(0.03),
	}
}

func TestBlackScholes(t *testing.T) {
	t.Parallel()
	call, err := analytic.BlackScholes(instrument.Call, 100, 100, 1, 0.04, 0.03, 0.2)
	require.NoError(t, err)
	require.InDelta(t, 8.184076, call, 1e-5)

	put, err := analytic.BlackScholes(instrument.Put, 100, 100, 1, 0.04, 0.03, 0.2)
	require.NoError(t, err)
	require.InDelta(t, 100*math.Exp(-0.03)-100*math.Exp(-0.04), call-put, 1e-12)

	expired, err := analytic.BlackScholes(instrument.Call, 110, 100, 0, 0.04, 0.03, 0.2)
	require.NoError(t, err)
	require.InDelta(t, 10, expired, 1e-12)

	_, err = analytic.BlackScholes(instrument.Call, -1, 100, 1, 0.04, 0.03, 0.2)
	require.ErrorIs(t, err, analytic.ErrInvalidInput)
}

func TestHestonApproachesBlackScholes(t *testing.T) {
	t.Parallel()
	p := zanetteHeston()
	p.V0, p.Theta, p.Sigma, p.Rho = 0.04, 0.04, 0.01, 0
	for _, k := range []float64{80, 100, 120} {
		for _, typ := range []instrument.OptionType{instrument.Call, instrument.Put} {
			got, err := analytic.Heston(p, instrument.Payoff{Type: typ, Strike: k}, 1)
			require.NoError(t, err)
			want, err := analytic.BlackScholes(typ, 100, k, 1, 0.04, 0.03, 0.2)
			require.NoError(t, err)
			require.InDeltaf(t, want, got, 2e-3, "%s K=%v", typ, k)
		}
	}
}

func TestHestonZanette(t *testing.T) {
	t.Parallel()
	got, err := analytic.Heston(zanetteHeston(), instrument.Payoff{Type: instrument.Call, Strike: 100}, 1)
	require.NoError(t, err)
	require.InDelta(t, 12.383, got, 5e-3)
}

func TestHestonSkewFollowsCorrelation(t *testing.T) {
	t.Parallel()
	p := zanetteHeston()
	otm := instrument.Payoff{Type: instrument.Call, Strike: 120}
	p.Rho = -0.9
	neg, err := analytic.Heston(p, otm, 1)
	require.NoError(t, err)
	p.Rho = 0.9
	pos, err := analytic.Heston(p, otm, 1)
	require.NoError(t, err)
	require.InDelta(t, 5.004, neg, 5e-3)
	require.InDelta(t, 6.927, pos, 5e-3)
}

func TestHestonHullWhiteUncorrelated(t *testing.T) {
	t.Parallel()
	p := zanetteHeston()
	hw := &model.HullWhite{A: 1, Sigma: 0.2, Curve: p.RiskFree}
	call, err := analytic.HestonHullWhite(p, hw, instrument.Payoff{Type: instrument.Call, Strike: 100}, 1)
	require.NoError(t, err)
	require.InDelta(t, 12.81, call, 0.025)

	put, err := analytic.HestonHullWhite(p, hw, instrument.Payoff{Type: instrument.Put, Strike: 100}, 1)
	require.NoError(t, err)
	require.InDelta(t, 100*math.Exp(-0.03)-100*math.Exp(-0.04), call-put, 1e-9)

	// without rate volatility the price collapses to Heston
	hw.Sigma = 0
	flat, err := analytic.HestonHullWhite(p, hw, instrument.Payoff{Type: instrument.Call, Strike: 100}, 1)
	require.NoError(t, err)
	heston, err := analytic.Heston(p, instrument.Payoff{Type: instrument.Call, Strike: 100}, 1)
	require.NoError(t, err)
	require.InDelta(t, heston, flat, 1e-12)
}
