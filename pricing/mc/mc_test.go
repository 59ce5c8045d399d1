package mc_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meenmo/hhwlib/instrument"
	"github.com/meenmo/hhwlib/model"
	"github.com/meenmo/hhwlib/pricing/analytic"
	"github.com/meenmo/hhwlib/pricing/mc"
	"github.com/meenmo/hhwlib/termstructure"
)

func zanette() (*model.HestonProcess, *model.HullWhite) {
	p := &model.HestonProcess{
		S0: 100, V0: 0.1, Kappa: 2, Theta: 0.1, Sigma: 0.3, Rho: -0.5,
		RiskFree: termstructure.NewFlatForward(0.04),
		Dividend: termstructure.NewFlatForward(0.03),
	}
	return p, &model.HullWhite{A: 1, Sigma: 0.2, Curve: p.RiskFree}
}

var call = instrument.Payoff{Type: instrument.Call, Strike: 100}

func TestMonteCarloMatchesAnalyticWithoutRateCorrelation(t *testing.T) {
	t.Parallel()
	p, hw := zanette()
	cfg := mc.Config{Paths: 20000, Steps: 50, Workers: 4, Seed: 7}
	res, err := mc.HestonHullWhite(context.Background(), p, hw, 0, call, 1, cfg)
	require.NoError(t, err)
	want, err := analytic.HestonHullWhite(p, hw, call, 1)
	require.NoError(t, err)
	require.InDelta(t, want, res.Price, 4*res.StdErr+0.05)
	require.Equal(t, 20000, res.Paths)
}

func TestMonteCarloIsDeterministicAndOrdered(t *testing.T) {
	t.Parallel()
	p, hw := zanette()
	cfg := mc.Config{Paths: 5000, Steps: 25, Workers: 3, Seed: 11}
	ctx := context.Background()
	neg, err := mc.HestonHullWhite(ctx, p, hw, -0.5, call, 1, cfg)
	require.NoError(t, err)
	again, err := mc.HestonHullWhite(ctx, p, hw, -0.5, call, 1, cfg)
	require.NoError(t, err)
	require.Equal(t, neg.Price, again.Price)

	pos, err := mc.HestonHullWhite(ctx, p, hw, 0.5, call, 1, cfg)
	require.NoError(t, err)
	require.Greater(t, pos.Price, neg.Price+1)
}

func TestMonteCarloRejectsInconsistentCorrelations(t *testing.T) {
	t.Parallel()
	p, hw := zanette()
	p.Rho = -0.9
	_, err := mc.HestonHullWhite(context.Background(), p, hw, 0.9, call, 1, mc.DefaultConfig)
	require.ErrorIs(t, err, mc.ErrNotPositiveDefinite)
}

func TestMonteCarloHonoursCancellation(t *testing.T) {
	t.Parallel()
	p, hw := zanette()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := mc.HestonHullWhite(ctx, p, hw, 0, call, 1, mc.Config{Paths: 100, Steps: 10, Workers: 2})
	require.ErrorIs(t, err, context.Canceled)
}
