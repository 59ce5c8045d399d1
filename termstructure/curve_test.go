package termstructure_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/meenmo/hhwlib/termstructure"
	"github.com/meenmo/hhwlib/utils"
)

func TestFlatForward(t *testing.T) {
	t.Parallel()
	c := termstructure.NewFlatForward(0.04)
	require.InDelta(t, math.Exp(-0.04*2), c.Discount(2), 1e-15)
	require.Equal(t, 0.04, c.ForwardRate(0.3, 0.7))
	require.Equal(t, 0.04, c.InstantaneousForward(5))
}

func TestZeroCurveInterpolation(t *testing.T) {
	t.Parallel()
	ref := time.Date(2014, 6, 2, 0, 0, 0, 0, time.UTC)
	dates := []time.Time{
		ref.AddDate(2, 0, 0),
		ref,
		ref.AddDate(1, 0, 0),
	}
	rates := []float64{0.05, 0.03, 0.04}
	c, err := termstructure.NewZeroCurve(ref, dates, rates, utils.Act365F)
	require.NoError(t, err)

	require.InDelta(t, 0.03, c.ZeroRate(0), 1e-12)
	require.InDelta(t, 0.035, c.ZeroRate(0.5), 1e-12)
	// flat beyond the last pillar
	require.InDelta(t, 0.05, c.ZeroRate(10), 1e-12)

	t1, t2 := 0.5, 0.9
	want := math.Log(c.Discount(t1)/c.Discount(t2)) / (t2 - t1)
	require.InDelta(t, want, c.ForwardRate(t1, t2), 1e-12)
	require.InDelta(t, c.ForwardRate(0.5, 0.5+1e-3), c.InstantaneousForward(0.5), 1e-3)
}

func TestZeroCurveSinglePillarIsFlat(t *testing.T) {
	t.Parallel()
	ref := time.Date(2014, 6, 2, 0, 0, 0, 0, time.UTC)
	c, err := termstructure.NewZeroCurve(ref, []time.Time{ref}, []float64{0.04}, utils.Act365F)
	require.NoError(t, err)
	require.InDelta(t, 0.04, c.ZeroRate(3), 1e-15)
	require.InDelta(t, 0.04, c.InstantaneousForward(1), 1e-12)
}

func TestZeroCurveRejectsBadInput(t *testing.T) {
	t.Parallel()
	ref := time.Date(2014, 6, 2, 0, 0, 0, 0, time.UTC)
	_, err := termstructure.NewZeroCurve(ref, []time.Time{ref}, nil, utils.Act365F)
	require.Error(t, err)
	_, err = termstructure.NewZeroCurve(ref, []time.Time{ref.AddDate(0, 0, -1)}, []float64{0.01}, utils.Act365F)
	require.Error(t, err)
	_, err = termstructure.NewZeroCurve(ref, []time.Time{ref, ref}, []float64{0.01, 0.02}, utils.Act365F)
	require.Error(t, err)
}
