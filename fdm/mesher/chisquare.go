package mesher

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat/distuv"
)

// nonCentralChiSquare is the Poisson mixture of central chi-square laws.
type nonCentralChiSquare struct {
	df, ncp float64
	weights []float64
	chis    []distuv.ChiSquared
}

func newNonCentralChiSquare(df, ncp float64) (*nonCentralChiSquare, error) {
	if !(df > 0) || ncp < 0 || math.IsInf(df, 0) || math.IsNaN(ncp) || math.IsInf(ncp, 0) {
		return nil, errors.Errorf("non-central chi-square: df %v ncp %v", df, ncp)
	}
	d := &nonCentralChiSquare{df: df, ncp: ncp}
	lambda := 0.5 * ncp
	if lambda < 1e-12 {
		d.weights = []float64{1}
		d.chis = []distuv.ChiSquared{{K: df}}
		return d, nil
	}
	pois := distuv.Poisson{Lambda: lambda}
	spread := 12*math.Sqrt(lambda) + 20
	lo := int(math.Max(0, math.Floor(lambda-spread)))
	hi := int(math.Ceil(lambda + spread))
	for j := lo; j <= hi; j++ {
		w := pois.Prob(float64(j))
		if w < 1e-18 {
			continue
		}
		d.weights = append(d.weights, w)
		d.chis = append(d.chis, distuv.ChiSquared{K: df + 2*float64(j)})
	}
	return d, nil
}

func (d *nonCentralChiSquare) CDF(x float64) float64 {
	if x <= 0 {
		return 0
	}
	s := 0.0
	for i, w := range d.weights {
		s += w * d.chis[i].CDF(x)
	}
	return math.Min(s, 1)
}

// Quantile inverts CDF by bisection to an absolute accuracy of 1e-10 in x.
func (d *nonCentralChiSquare) Quantile(p float64) (float64, error) {
	if !(p > 0 && p < 1) {
		return 0, errors.Errorf("non-central chi-square quantile: p = %v", p)
	}
	mean := d.df + d.ncp
	sd := math.Sqrt(2 * (d.df + 2*d.ncp))
	lo, hi := 0.0, mean+10*sd
	for i := 0; d.CDF(hi) < p; i++ {
		if i > 100 {
			return 0, errors.Errorf("non-central chi-square quantile: no bracket for p = %v", p)
		}
		lo, hi = hi, 2*hi
	}
	for i := 0; i < 200 && hi-lo > 1e-10; i++ {
		mid := 0.5 * (lo + hi)
		if d.CDF(mid) < p {
			lo = mid
		} else {
			hi = mid
		}
	}
	return 0.5 * (lo + hi), nil
}
