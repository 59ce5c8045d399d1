package fd_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/hhwlib/fdm/scheme"
	"github.com/meenmo/hhwlib/instrument"
	"github.com/meenmo/hhwlib/model"
	"github.com/meenmo/hhwlib/pricing/analytic"
	"github.com/meenmo/hhwlib/pricing/fd"
	"github.com/meenmo/hhwlib/termstructure"
	"github.com/meenmo/hhwlib/utils"
)

var evaluation = time.Date(2014, 6, 2, 0, 0, 0, 0, time.UTC)

func dates() instrument.Dates {
	return instrument.Dates{Evaluation: evaluation, DayCount: utils.Act365F}
}

func zanette() (*model.HestonProcess, *model.HullWhite, instrument.VanillaOption) {
	p := &model.HestonProcess{
		S0: 100, V0: 0.1, Kappa: 2, Theta: 0.1, Sigma: 0.3, Rho: -0.5,
		RiskFree: termstructure.NewFlatForward(0.04),
		Dividend: termstructure.NewFlatForward(0.03),
	}
	hw := &model.HullWhite{A: 1, Sigma: 0.2}
	opt := instrument.VanillaOption{
		Payoff:   instrument.Payoff{Type: instrument.Call, Strike: 100},
		Exercise: instrument.NewEuropeanExercise(evaluation.AddDate(1, 0, 0)),
	}
	return p, hw, opt
}

// Published finite-difference prices for the equity/short-rate correlation
// test case of Zanette et al. (Applied Mathematics and Computation).
func TestHestonHullWhiteMatchesPublishedPrices(t *testing.T) {
	t.Parallel()
	published := map[float64]float64{-0.5: 11.38, 0: 12.81, 0.5: 14.08}
	cache, err := fd.NewMeshCache(fd.DefaultCacheSize)
	require.NoError(t, err)

	for rho, want := range published {
		for _, tGrid := range []int{50, 100, 150, 200} {
			rho, want, tGrid := rho, want, tGrid
			t.Run(fmt.Sprintf("rho=%v/tGrid=%d", rho, tGrid), func(t *testing.T) {
				t.Parallel()
				p, hw, opt := zanette()
				e := fd.NewHestonHullWhiteEngine(p, hw, rho, dates(),
					fd.WithGrid(tGrid, 100, 40, 20), fd.WithMeshCache(cache))
				res, err := e.Calculate(context.Background(), opt)
				require.NoError(t, err)
				require.InDelta(t, want, res.Value, 0.05)
				require.Greater(t, res.Delta, 0.3)
				require.Less(t, res.Delta, 0.9)
				require.Greater(t, res.Gamma, 0.0)
				require.Less(t, res.Theta, 0.0)
			})
		}
	}
}

func TestHestonHullWhiteUncorrelatedMatchesAnalytic(t *testing.T) {
	t.Parallel()
	p, hw, opt := zanette()
	e := fd.NewHestonHullWhiteEngine(p, hw, 0, dates(), fd.WithGrid(50, 60, 25, 12), fd.WithScheme(scheme.Douglas()))
	res, err := e.Calculate(context.Background(), opt)
	require.NoError(t, err)

	fitted := &model.HullWhite{A: hw.A, Sigma: hw.Sigma, Curve: p.RiskFree}
	want, err := analytic.HestonHullWhite(p, fitted, opt.Payoff, 1)
	require.NoError(t, err)
	require.InDelta(t, want, res.Value, 0.06)
}

func TestHestonEngineMatchesAnalytic(t *testing.T) {
	t.Parallel()
	p, _, opt := zanette()
	for _, typ := range []instrument.OptionType{instrument.Call, instrument.Put} {
		opt.Payoff.Type = typ
		res, err := fd.NewHestonEngine(p, dates(), fd.WithGrid(100, 100, 50, 0), fd.WithDampingSteps(2)).
			Calculate(context.Background(), opt)
		require.NoError(t, err)
		want, err := analytic.Heston(p, opt.Payoff, 1)
		require.NoError(t, err)
		require.InDeltaf(t, want, res.Value, 0.03, "%s", typ)
	}
}

func TestAmericanPutIsWorthAtLeastEuropean(t *testing.T) {
	t.Parallel()
	p, _, opt := zanette()
	opt.Payoff.Type = instrument.Put
	european, err := fd.NewHestonEngine(p, dates(), fd.WithGrid(50, 60, 25, 0)).Calculate(context.Background(), opt)
	require.NoError(t, err)

	opt.Exercise = instrument.NewAmericanExercise(opt.Exercise.LastDate())
	american, err := fd.NewHestonEngine(p, dates(), fd.WithGrid(50, 60, 25, 0)).Calculate(context.Background(), opt)
	require.NoError(t, err)
	require.GreaterOrEqual(t, american.Value, european.Value)
}

func TestEngineValidation(t *testing.T) {
	t.Parallel()
	p, hw, opt := zanette()
	ctx := context.Background()

	_, err := fd.NewHestonHullWhiteEngine(p, hw, 0, dates(), fd.WithGrid(50, 3, 40, 20)).Calculate(ctx, opt)
	require.True(t, errors.Is(err, fd.ErrGrid))

	_, err = fd.NewHestonHullWhiteEngine(p, hw, 1.5, dates()).Calculate(ctx, opt)
	require.True(t, errors.Is(err, fd.ErrCorrelation))

	expired := opt
	expired.Exercise = instrument.NewEuropeanExercise(evaluation)
	_, err = fd.NewHestonHullWhiteEngine(p, hw, 0, dates()).Calculate(ctx, expired)
	require.True(t, errors.Is(err, fd.ErrMaturity))

	_, err = fd.NewHestonHullWhiteEngine(p, nil, 0, dates()).Calculate(ctx, opt)
	require.True(t, errors.Is(err, model.ErrNilCurve))
}

func TestMeshCacheSharesMeshes(t *testing.T) {
	t.Parallel()
	p, hw, opt := zanette()
	cache, err := fd.NewMeshCache(8)
	require.NoError(t, err)
	ctx := context.Background()
	for _, rho := range []float64{-0.5, 0.5} {
		_, err := fd.NewHestonHullWhiteEngine(p, hw, rho, dates(),
			fd.WithGrid(10, 20, 8, 6), fd.WithMeshCache(cache)).Calculate(ctx, opt)
		require.NoError(t, err)
	}
	// variance, log-spot and rate meshes; the control variate reuses the first two
	require.Equal(t, 3, cache.Len())
}
