package mesher

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/meenmo/hhwlib/termstructure"
)

// BlackScholesParams configures the log-spot grid. Zero values of Eps and
// ScaleFactor take the defaults 1e-4 and 1.5. CPoint <= 0 disables the
// concentration around the strike.
type BlackScholesParams struct {
	Size       int
	Spot       float64
	RiskFree   termstructure.YieldCurve
	Dividend   termstructure.YieldCurve
	Volatility float64
	Maturity   float64

	Eps         float64
	ScaleFactor float64
	CPoint      float64
	CDensity    float64
}

// BlackScholes builds a grid in x = ln S spanning the forward range over
// the option's life widened by scaleFactor standard deviations at the 1-eps
// quantile.
func BlackScholes(p BlackScholesParams) (*Grid, error) {
	if !(p.Spot > 0) || !(p.Maturity > 0) {
		return nil, errors.Errorf("black-scholes grid: spot %v maturity %v", p.Spot, p.Maturity)
	}
	if p.RiskFree == nil || p.Dividend == nil {
		return nil, errors.New("black-scholes grid: missing curve")
	}
	eps, scale := p.Eps, p.ScaleFactor
	if eps == 0 {
		eps = 1e-4
	}
	if scale == 0 {
		scale = 1.5
	}

	steps := int(24 * p.Maturity)
	if steps < 2 {
		steps = 2
	}
	mi, ma := p.Spot, p.Spot
	for i := 1; i <= steps; i++ {
		t := float64(i) * p.Maturity / float64(steps)
		r := p.RiskFree.ForwardRate(0, t)
		q := p.Dividend.ForwardRate(0, t)
		fwd := p.Spot * math.Exp((r-q)*t)
		mi = math.Min(mi, fwd)
		ma = math.Max(ma, fwd)
	}

	width := p.Volatility * math.Sqrt(p.Maturity) * distuv.UnitNormal.Quantile(1-eps) * scale
	xMin := math.Log(mi) - width
	xMax := math.Log(ma) + width

	if p.CPoint > 0 {
		if c := math.Log(p.CPoint); c > xMin && c < xMax {
			return Concentrating(xMin, xMax, p.Size, c, p.CDensity)
		}
	}
	return Uniform(xMin, xMax, p.Size)
}
