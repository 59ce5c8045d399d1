// Package config loads the pricing scenario: market data, model parameters,
// grid settings and the regression cases to run.
package config

// Scenario is the top-level TOML document.
type Scenario struct {
	Name           string
	EvaluationDate string
	DayCount       string
	Calendar       string
	// Convention adjusts the expiry; Unadjusted keeps evaluation + tenor.
	Convention string

	Market    Market
	Heston    Heston
	HullWhite HullWhite
	Option    Option
	Grid      Grid
	Cases     Cases
	Report    Report
}

// Market holds continuously-compounded rates. When ZeroTenors is set the
// risk-free curve interpolates ZeroRates at those tenors instead of using
// the flat RiskFreeRate.
type Market struct {
	Spot          float64
	RiskFreeRate  float64
	DividendYield float64
	ZeroTenors    []string
	ZeroRates     []float64
}

// Heston holds the variance process parameters.
type Heston struct {
	V0    float64
	Kappa float64
	Theta float64
	Sigma float64
	Rho   float64
}

// HullWhite holds the short-rate mean reversion and volatility.
type HullWhite struct {
	A     float64
	Sigma float64
}

// Option describes the priced vanilla option.
type Option struct {
	Type     string
	Strike   float64
	Tenor    string
	Exercise string
	// ExerciseTenors are the Bermudan dates before expiry.
	ExerciseTenors []string
}

// Grid is shared by every case; the time grid comes from Cases.
type Grid struct {
	XGrid          int
	VGrid          int
	RGrid          int
	DampingSteps   int
	Scheme         string
	ControlVariate bool
}

// Cases is the (correlation x time grid) table. Published[i] is the
// reference price for Correlations[i].
type Cases struct {
	Correlations []float64
	TimeGrids    []int
	Published    []float64
	// Tolerance is the absolute difference flagged in the report.
	Tolerance float64
}

// Report controls concurrency, caching and persistence of a run.
type Report struct {
	Parallel  int
	CacheSize int
	// DSN enables Postgres persistence when non-empty.
	DSN string
}

// Default is the equity/short-rate correlation study of Zanette et al.,
// Applied Mathematics and Computation.
func Default() *Scenario {
	return &Scenario{
		Name:           "zanette-amc",
		EvaluationDate: "2014-06-02",
		DayCount:       "ACT/365F",
		Calendar:       "NULL",
		Convention:     "Unadjusted",
		Market: Market{
			Spot:          100,
			RiskFreeRate:  0.04,
			DividendYield: 0.03,
		},
		Heston: Heston{
			V0:    0.1,
			Kappa: 2,
			Theta: 0.1,
			Sigma: 0.3,
			Rho:   -0.5,
		},
		HullWhite: HullWhite{
			A:     1,
			Sigma: 0.2,
		},
		Option: Option{
			Type:     "Call",
			Strike:   100,
			Tenor:    "1Y",
			Exercise: "European",
		},
		Grid: Grid{
			XGrid:          100,
			VGrid:          40,
			RGrid:          20,
			DampingSteps:   0,
			Scheme:         "Hundsdorfer",
			ControlVariate: true,
		},
		Cases: Cases{
			Correlations: []float64{-0.5, 0, 0.5},
			TimeGrids:    []int{50, 100, 150, 200},
			Published:    []float64{11.38, 12.81, 14.08},
			Tolerance:    0.05,
		},
		Report: Report{
			Parallel:  4,
			CacheSize: 256,
		},
	}
}
