// Package analytic holds closed-form and semi-analytic vanilla prices used
// as benchmarks and control variates for the numerical engines.
package analytic

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/meenmo/hhwlib/instrument"
)

var (
	ErrInvalidInput = errors.New("invalid pricing input")
)

// BlackScholes prices a European option with continuous rates r and q.
func BlackScholes(typ instrument.OptionType, s, k, t, r, q, vol float64) (float64, error) {
	if !(s > 0) || !(k > 0) || t < 0 || vol < 0 {
		return 0, errors.Wrapf(ErrInvalidInput, "s=%v k=%v t=%v vol=%v", s, k, t, vol)
	}
	w := float64(typ)
	fwd := s * math.Exp((r-q)*t)
	df := math.Exp(-r * t)
	sd := vol * math.Sqrt(t)
	if sd < 1e-14 {
		return df * math.Max(w*(fwd-k), 0), nil
	}
	return df * black(w, fwd, k, sd), nil
}

// black is the undiscounted Black formula for total standard deviation sd.
func black(w, fwd, k, sd float64) float64 {
	d1 := (math.Log(fwd/k) + 0.5*sd*sd) / sd
	d2 := d1 - sd
	n := distuv.UnitNormal
	return w * (fwd*n.CDF(w*d1) - k*n.CDF(w*d2))
}
