package analytic

import (
	"math"
	"math/cmplx"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/integrate/quad"

	"github.com/meenmo/hhwlib/instrument"
	"github.com/meenmo/hhwlib/model"
)

const (
	upperLimit = 200.0
	panels     = 100
	panelOrder = 16
)

// hestonCF is E[exp(iu ln(S_T/F_T))] in the "little trap" form.
func hestonCF(p *model.HestonProcess, t float64, u complex128) complex128 {
	kappa := complex(p.Kappa, 0)
	sigma := complex(p.Sigma, 0)
	s2 := sigma * sigma
	xi := kappa - sigma*complex(p.Rho, 0)*1i*u
	d := cmplx.Sqrt(xi*xi + s2*(u*u+1i*u))
	g := (xi - d) / (xi + d)
	e := cmplx.Exp(-d * complex(t, 0))

	c := kappa * complex(p.Theta, 0) / s2 * ((xi-d)*complex(t, 0) - 2*cmplx.Log((1-g*e)/(1-g)))
	dd := (xi - d) / s2 * (1 - e) / (1 - g*e)
	return cmplx.Exp(c + dd*complex(p.V0, 0))
}

// lewis prices a call from the characteristic function of ln(S_T/F) using
// C = D (F - sqrt(FK)/pi int_0^inf Re[e^{iuk} cf(u - i/2)] / (u^2 + 1/4) du)
// with k = ln(F/K).
func lewis(cf func(u complex128) complex128, df, fwd, strike float64) float64 {
	k := math.Log(fwd / strike)
	f := func(u float64) float64 {
		z := cmplx.Exp(complex(0, u*k)) * cf(complex(u, -0.5))
		return real(z) / (u*u + 0.25)
	}
	h := upperLimit / panels
	integral := 0.0
	for i := 0; i < panels; i++ {
		integral += quad.Fixed(f, float64(i)*h, float64(i+1)*h, panelOrder, nil, 0)
	}
	return df * (fwd - math.Sqrt(fwd*strike)/math.Pi*integral)
}

func fromCall(typ instrument.OptionType, call, df, fwd, strike float64) float64 {
	if typ == instrument.Put {
		return call - df*(fwd-strike)
	}
	return call
}

// Heston prices a European option under the Heston model.
func Heston(p *model.HestonProcess, payoff instrument.Payoff, t float64) (float64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	if !(t > 0) || !(payoff.Strike > 0) {
		return 0, errors.Wrapf(ErrInvalidInput, "maturity %v strike %v", t, payoff.Strike)
	}
	df := p.RiskFree.Discount(t)
	fwd := p.S0 * p.Dividend.Discount(t) / df
	if p.Sigma < 1e-8 {
		vol := math.Sqrt(p.IntegratedVariance(t) / t)
		return df * black(float64(payoff.Type), fwd, payoff.Strike, vol*math.Sqrt(t)), nil
	}
	cf := func(u complex128) complex128 { return hestonCF(p, t, u) }
	call := lewis(cf, df, fwd, payoff.Strike)
	return fromCall(payoff.Type, call, df, fwd, payoff.Strike), nil
}

// HestonHullWhite prices a European option when the equity and the short
// rate are uncorrelated. Under the T-forward measure ln(S_T/F) is the
// Heston log-return plus an independent Gaussian with variance
// hw.ForwardVariance(T).
func HestonHullWhite(p *model.HestonProcess, hw *model.HullWhite, payoff instrument.Payoff, t float64) (float64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	if err := hw.Validate(); err != nil {
		return 0, err
	}
	if !(t > 0) || !(payoff.Strike > 0) {
		return 0, errors.Wrapf(ErrInvalidInput, "maturity %v strike %v", t, payoff.Strike)
	}
	df := hw.Curve.Discount(t)
	fwd := p.S0 * p.Dividend.Discount(t) / df
	sr := hw.ForwardVariance(t)
	if p.Sigma < 1e-8 {
		sd := math.Sqrt(p.IntegratedVariance(t) + sr)
		return df * black(float64(payoff.Type), fwd, payoff.Strike, sd), nil
	}
	cf := func(u complex128) complex128 {
		return hestonCF(p, t, u) * cmplx.Exp(-0.5*complex(sr, 0)*(u*u+1i*u))
	}
	call := lewis(cf, df, fwd, payoff.Strike)
	return fromCall(payoff.Type, call, df, fwd, payoff.Strike), nil
}
