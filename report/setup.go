// Package report prices a scenario's case table and renders the comparison
// against published reference prices.
package report

import (
	"time"

	"github.com/pkg/errors"

	"github.com/meenmo/hhwlib/calendar"
	"github.com/meenmo/hhwlib/config"
	"github.com/meenmo/hhwlib/fdm/scheme"
	"github.com/meenmo/hhwlib/instrument"
	"github.com/meenmo/hhwlib/model"
	"github.com/meenmo/hhwlib/termstructure"
	"github.com/meenmo/hhwlib/utils"
)

// Setup is a scenario resolved into pricing objects.
type Setup struct {
	Heston    *model.HestonProcess
	HullWhite *model.HullWhite
	Option    instrument.VanillaOption
	Dates     instrument.Dates
	Scheme    scheme.Desc
	Maturity  float64
}

// Prepare validates s and resolves its dates, curves, models and option.
func Prepare(s *config.Scenario) (*Setup, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	eval, err := utils.ParseDate(s.EvaluationDate)
	if err != nil {
		return nil, err
	}
	dc, err := utils.ParseDayCount(s.DayCount)
	if err != nil {
		return nil, err
	}
	cal, err := calendar.Parse(s.Calendar)
	if err != nil {
		return nil, err
	}
	conv, err := calendar.ParseConvention(s.Convention)
	if err != nil {
		return nil, err
	}
	typ, err := instrument.ParseOptionType(s.Option.Type)
	if err != nil {
		return nil, err
	}
	exType, err := instrument.ParseExerciseType(s.Option.Exercise)
	if err != nil {
		return nil, err
	}
	sd, err := scheme.Parse(s.Grid.Scheme)
	if err != nil {
		return nil, err
	}
	expiry, err := instrument.ExpiryAfter(eval, s.Option.Tenor, cal, conv)
	if err != nil {
		return nil, err
	}

	var ex instrument.Exercise
	switch exType {
	case instrument.American:
		ex = instrument.NewAmericanExercise(expiry)
	case instrument.Bermudan:
		if len(s.Option.ExerciseTenors) == 0 {
			return nil, errors.New("bermudan exercise without exercise tenors")
		}
		dates := []time.Time{expiry}
		for _, tenor := range s.Option.ExerciseTenors {
			d, err := instrument.ExpiryAfter(eval, tenor, cal, conv)
			if err != nil {
				return nil, err
			}
			if !d.Before(expiry) {
				return nil, errors.Errorf("exercise tenor %s not before expiry", tenor)
			}
			dates = append(dates, d)
		}
		ex = instrument.NewBermudanExercise(dates)
	default:
		ex = instrument.NewEuropeanExercise(expiry)
	}

	rTS, err := riskFreeCurve(s, eval, dc)
	if err != nil {
		return nil, err
	}
	qTS := termstructure.NewFlatForward(s.Market.DividendYield)
	h := s.Heston
	setup := &Setup{
		Heston: &model.HestonProcess{
			S0: s.Market.Spot, V0: h.V0, Kappa: h.Kappa, Theta: h.Theta, Sigma: h.Sigma, Rho: h.Rho,
			RiskFree: rTS, Dividend: qTS,
		},
		HullWhite: &model.HullWhite{A: s.HullWhite.A, Sigma: s.HullWhite.Sigma, Curve: rTS},
		Option: instrument.VanillaOption{
			Payoff:   instrument.Payoff{Type: typ, Strike: s.Option.Strike},
			Exercise: ex,
		},
		Dates:  instrument.Dates{Evaluation: eval, DayCount: dc},
		Scheme: sd,
	}
	if err := setup.Heston.Validate(); err != nil {
		return nil, err
	}
	if err := setup.HullWhite.Validate(); err != nil {
		return nil, err
	}
	if err := setup.Option.Validate(); err != nil {
		return nil, err
	}
	setup.Maturity = setup.Dates.Maturity(setup.Option)
	return setup, nil
}

func riskFreeCurve(s *config.Scenario, eval time.Time, dc utils.DayCount) (termstructure.YieldCurve, error) {
	m := s.Market
	if len(m.ZeroTenors) == 0 {
		return termstructure.NewFlatForward(m.RiskFreeRate), nil
	}
	dates := make([]time.Time, len(m.ZeroTenors))
	for i, tenor := range m.ZeroTenors {
		d, err := utils.AddTenor(eval, tenor)
		if err != nil {
			return nil, errors.Wrap(err, "zero curve")
		}
		dates[i] = d
	}
	return termstructure.NewZeroCurve(eval, dates, m.ZeroRates, dc)
}
