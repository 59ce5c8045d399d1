package mesher

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/integrate/quad"

	"github.com/meenmo/hhwlib/model"
)

// VarianceGrid is the variance axis of the Heston mesh together with an
// estimate of the average volatility over the option's life.
type VarianceGrid struct {
	*Grid
	volaEstimate float64
}

// VolaEstimate is roughly E[sqrt(v)] scaled up for strongly skewed
// variance laws. It sizes the log-spot grid.
func (g *VarianceGrid) VolaEstimate() float64 { return g.volaEstimate }

type quantilePoint struct {
	v, p float64
}

// HestonVariance places the variance nodes at averaged quantiles of the
// transition law of v over tAvgSteps horizons up to maturity, and snaps
// the node closest to v0 onto v0.
func HestonVariance(size int, p *model.HestonProcess, maturity float64, tAvgSteps int, eps float64) (*VarianceGrid, error) {
	if size < 2 {
		return nil, ErrGridSize
	}
	if tAvgSteps < 1 {
		tAvgSteps = 1
	}
	vGrid, pGrid, err := varianceQuantiles(size, p, maturity, tAvgSteps, eps)
	if err != nil {
		log.Debugw("variance quantile grid failed, using default", "err", err)
		vGrid, pGrid = defaultVarianceGrid(size, p)
	}

	skewHint := 1.0
	if p.Kappa != 0 {
		skewHint = math.Max(1, p.Sigma/p.Kappa)
	}
	sort.Float64s(pGrid)
	vola := integrateSqrtLinear(pGrid, vGrid) * math.Pow(skewHint, 1.5)

	for i := 1; i < len(vGrid); i++ {
		if vGrid[i-1] <= p.V0 && vGrid[i] >= p.V0 {
			if math.Abs(vGrid[i-1]-p.V0) < math.Abs(vGrid[i]-p.V0) {
				vGrid[i-1] = p.V0
			} else {
				vGrid[i] = p.V0
			}
		}
	}
	g, err := NewGrid(vGrid)
	if err != nil {
		return nil, err
	}
	return &VarianceGrid{Grid: g, volaEstimate: vola}, nil
}

func varianceQuantiles(size int, p *model.HestonProcess, maturity float64, tAvgSteps int, eps float64) (vGrid, pGrid []float64, err error) {
	s2 := p.Sigma * p.Sigma
	df := 4 * p.Theta * p.Kappa / s2

	pts := make([]quantilePoint, 0, size*tAvgSteps)
	for l := 1; l <= tAvgSteps; l++ {
		t := maturity * float64(l) / float64(tAvgSteps)
		e := math.Exp(-p.Kappa * t)
		ncp := 4 * p.Kappa * e / (s2 * (1 - e)) * p.V0
		k := s2 * (1 - e) / (4 * p.Kappa)

		dist, err := newNonCentralChiSquare(df, ncp)
		if err != nil {
			return nil, nil, err
		}
		q, err := dist.Quantile(1 - eps)
		if err != nil {
			return nil, nil, err
		}
		qMax := math.Max(p.V0, k*q)
		minVStep := qMax / float64(50*size)

		prob, vTmp := 0.0, 0.0
		pts = append(pts, quantilePoint{0, eps})
		for i := 1; i < size; i++ {
			prob += (1 - eps - prob) / float64(size-i)
			q, err := dist.Quantile(prob)
			if err != nil {
				return nil, nil, err
			}
			vx := math.Max(vTmp+minVStep, k*q)
			prob = dist.CDF(vx / k)
			vTmp = vx
			pts = append(pts, quantilePoint{vx, prob})
		}
	}
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].v != pts[j].v {
			return pts[i].v < pts[j].v
		}
		return pts[i].p < pts[j].p
	})

	vGrid = make([]float64, size)
	pGrid = make([]float64, size)
	for i := 0; i < size; i++ {
		for j := 0; j < tAvgSteps; j++ {
			pt := pts[i*tAvgSteps+j]
			vGrid[i] += pt.v
			pGrid[i] += pt.p
		}
		vGrid[i] /= float64(tAvgSteps)
		pGrid[i] /= float64(tAvgSteps)
	}
	for i := 1; i < size; i++ {
		if !(vGrid[i] > vGrid[i-1]) {
			return nil, nil, ErrGridSize
		}
	}
	return vGrid, pGrid, nil
}

// defaultVarianceGrid spans four stationary standard deviations around
// v0 and theta.
func defaultVarianceGrid(size int, p *model.HestonProcess) (vGrid, pGrid []float64) {
	vol := p.Sigma * math.Sqrt(p.Theta/(2*p.Kappa))
	upper := math.Max(p.V0+4*vol, p.Theta+4*vol)
	lower := math.Max(0, math.Min(p.V0-4*vol, p.Theta-4*vol))
	if !(upper > lower) {
		upper = lower + math.Max(4*p.Theta, 1e-2)
	}
	vGrid = make([]float64, size)
	pGrid = make([]float64, size)
	for i := range vGrid {
		u := float64(i) / float64(size-1)
		pGrid[i] = u
		vGrid[i] = lower + u*(upper-lower)
	}
	return vGrid, pGrid
}

// integrateSqrtLinear integrates sqrt of the piecewise-linear map p -> v.
func integrateSqrtLinear(ps, vs []float64) float64 {
	total := 0.0
	for i := 0; i+1 < len(ps); i++ {
		p0, p1 := ps[i], ps[i+1]
		if !(p1 > p0) {
			continue
		}
		v0, v1 := vs[i], vs[i+1]
		f := func(p float64) float64 {
			return math.Sqrt(math.Max(0, v0+(v1-v0)*(p-p0)/(p1-p0)))
		}
		total += quad.Fixed(f, p0, p1, 8, nil, 0)
	}
	return total
}
