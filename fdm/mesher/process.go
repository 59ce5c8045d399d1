package mesher

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat/distuv"
)

// Evolver is a one-dimensional diffusion with Gaussian increments.
type Evolver interface {
	Evolve(t0, x0, dt, dw float64) float64
}

// SimpleProcess averages the eps..1-eps quantile locations of the process
// started at x0 over tAvgSteps horizons up to maturity. A finite
// mandatoryPoint is always kept inside the range.
func SimpleProcess(size int, process Evolver, x0, maturity float64, tAvgSteps int, eps, mandatoryPoint float64) (*Grid, error) {
	if size < 2 {
		return nil, ErrGridSize
	}
	if !(maturity > 0) || tAvgSteps < 1 {
		return nil, errors.Errorf("process grid: maturity %v steps %d", maturity, tAvgSteps)
	}
	mp := x0
	if !math.IsNaN(mandatoryPoint) {
		mp = mandatoryPoint
	}
	n := distuv.UnitNormal
	locs := make([]float64, size)
	dp := (1 - 2*eps) / float64(size-1)
	for l := 1; l <= tAvgSteps; l++ {
		t := maturity * float64(l) / float64(tAvgSteps)
		qMin := math.Min(math.Min(mp, x0), process.Evolve(0, x0, t, n.Quantile(eps)))
		qMax := math.Max(math.Max(mp, x0), process.Evolve(0, x0, t, n.Quantile(1-eps)))

		locs[0] += qMin
		p := eps
		for i := 1; i < size-1; i++ {
			p += dp
			locs[i] += process.Evolve(0, x0, t, n.Quantile(p))
		}
		locs[size-1] += qMax
	}
	for i := range locs {
		locs[i] /= float64(tAvgSteps)
	}
	return NewGrid(locs)
}
