// Package termstructure provides the yield curves used to discount and drift
// the pricing models. Times are year fractions from the evaluation date.
package termstructure

import (
	"math"
	"sort"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/interp"

	"github.com/meenmo/hhwlib/utils"
)

// forwardDt is the bump used for instantaneous forwards.
const forwardDt = 1e-4

// YieldCurve is a continuously-compounded discount curve.
type YieldCurve interface {
	Discount(t float64) float64
	ZeroRate(t float64) float64
	// ForwardRate is the continuously-compounded forward over [t1, t2].
	ForwardRate(t1, t2 float64) float64
	InstantaneousForward(t float64) float64
}

// FlatForward is a curve with a single continuously-compounded rate.
type FlatForward struct {
	Rate float64
}

// NewFlatForward returns a flat curve at rate.
func NewFlatForward(rate float64) *FlatForward {
	return &FlatForward{Rate: rate}
}

func (c *FlatForward) Discount(t float64) float64           { return math.Exp(-c.Rate * t) }
func (c *FlatForward) ZeroRate(float64) float64             { return c.Rate }
func (c *FlatForward) ForwardRate(float64, float64) float64 { return c.Rate }
func (c *FlatForward) InstantaneousForward(float64) float64 { return c.Rate }

// ZeroCurve interpolates zero rates linearly in time with flat extrapolation.
type ZeroCurve struct {
	times []float64
	rates []float64
	lin   interp.PiecewiseLinear
}

// NewZeroCurve builds a curve from pillar dates and zero rates. A single
// pillar yields a flat curve.
func NewZeroCurve(ref time.Time, dates []time.Time, rates []float64, dc utils.DayCount) (*ZeroCurve, error) {
	if len(dates) == 0 || len(dates) != len(rates) {
		return nil, errors.Errorf("zero curve: %d dates for %d rates", len(dates), len(rates))
	}
	type pillar struct {
		d time.Time
		r float64
	}
	ps := make([]pillar, len(dates))
	for i := range dates {
		ps[i] = pillar{dates[i], rates[i]}
	}
	sort.Slice(ps, func(i, j int) bool { return ps[i].d.Before(ps[j].d) })

	c := &ZeroCurve{}
	for _, p := range ps {
		t := utils.YearFraction(ref, p.d, dc)
		if t < 0 {
			return nil, errors.Errorf("zero curve: pillar %s before reference date", p.d.Format(utils.DateLayout))
		}
		if n := len(c.times); n > 0 && t <= c.times[n-1] {
			return nil, errors.Errorf("zero curve: duplicate pillar %s", p.d.Format(utils.DateLayout))
		}
		c.times = append(c.times, t)
		c.rates = append(c.rates, p.r)
	}
	if len(c.times) > 1 {
		if err := c.lin.Fit(c.times, c.rates); err != nil {
			return nil, errors.Wrap(err, "zero curve")
		}
	}
	return c, nil
}

func (c *ZeroCurve) ZeroRate(t float64) float64 {
	if len(c.times) == 1 {
		return c.rates[0]
	}
	return c.lin.Predict(t)
}

func (c *ZeroCurve) Discount(t float64) float64 {
	return math.Exp(-c.ZeroRate(t) * t)
}

func (c *ZeroCurve) ForwardRate(t1, t2 float64) float64 {
	if t2-t1 < forwardDt {
		return c.InstantaneousForward(0.5 * (t1 + t2))
	}
	return (c.ZeroRate(t2)*t2 - c.ZeroRate(t1)*t1) / (t2 - t1)
}

func (c *ZeroCurve) InstantaneousForward(t float64) float64 {
	lo := math.Max(0, t-forwardDt)
	hi := lo + 2*forwardDt
	return (c.ZeroRate(hi)*hi - c.ZeroRate(lo)*lo) / (hi - lo)
}
