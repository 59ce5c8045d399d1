// Package fd prices vanilla options under the Heston and Heston/Hull-White
// models with ADI finite differences.
package fd

import (
	"context"
	"math"
	"time"

	logging "github.com/ipfs/go-log/v2"
	"github.com/pkg/errors"

	"github.com/meenmo/hhwlib/fdm/mesher"
	"github.com/meenmo/hhwlib/fdm/scheme"
	"github.com/meenmo/hhwlib/fdm/solver"
	"github.com/meenmo/hhwlib/fdm/step"
	"github.com/meenmo/hhwlib/instrument"
	"github.com/meenmo/hhwlib/model"
	"github.com/meenmo/hhwlib/pricing/analytic"
)

var log = logging.Logger("fd")

var (
	ErrGrid        = errors.New("grid too small")
	ErrCorrelation = errors.New("correlation outside [-1, 1]")
	ErrMaturity    = errors.New("non-positive maturity")
)

// minGrid is the smallest grid size accepted in any direction.
const minGrid = 4

// Results are the engine outputs at the spot, initial variance and y = 0.
type Results struct {
	Value float64
	Delta float64
	Gamma float64
	Theta float64
}

type settings struct {
	tGrid, xGrid, vGrid, rGrid int
	dampingSteps               int
	controlVariate             bool
	scheme                     scheme.Desc
	cache                      *MeshCache
}

// Option customises an engine.
type Option func(*settings)

// WithGrid sets the time, log-spot, variance and rate grid sizes. The rate
// size is ignored by the Heston engine.
func WithGrid(tGrid, xGrid, vGrid, rGrid int) Option {
	return func(s *settings) {
		s.tGrid, s.xGrid, s.vGrid, s.rGrid = tGrid, xGrid, vGrid, rGrid
	}
}

// WithTimeSteps overrides only the time grid.
func WithTimeSteps(tGrid int) Option {
	return func(s *settings) { s.tGrid = tGrid }
}

// WithDampingSteps sets the implicit Euler steps run before the scheme.
func WithDampingSteps(n int) Option {
	return func(s *settings) { s.dampingSteps = n }
}

// WithScheme selects the ADI scheme.
func WithScheme(d scheme.Desc) Option {
	return func(s *settings) { s.scheme = d }
}

// WithControlVariate toggles the Heston control variate of the
// Heston/Hull-White engine.
func WithControlVariate(on bool) Option {
	return func(s *settings) { s.controlVariate = on }
}

// WithMeshCache shares 1-D meshes between engines.
func WithMeshCache(c *MeshCache) Option {
	return func(s *settings) { s.cache = c }
}

func (s settings) validate(dims int) error {
	sizes := []int{s.tGrid, s.xGrid, s.vGrid, s.rGrid}[:dims+1]
	for _, n := range sizes {
		if n < minGrid {
			return errors.Wrapf(ErrGrid, "t=%d x=%d v=%d r=%d", s.tGrid, s.xGrid, s.vGrid, s.rGrid)
		}
	}
	if s.dampingSteps < 0 {
		return errors.Errorf("negative damping steps %d", s.dampingSteps)
	}
	return nil
}

func tAvgSteps(tGrid int) int {
	if n := tGrid / 50; n > 5 {
		return n
	}
	return 5
}

// stepConditions maps the exercise onto early-exercise conditions.
func stepConditions(opt instrument.VanillaOption, dates instrument.Dates, calc step.InnerValueCalculator, nodes int) *step.Composite {
	switch opt.Exercise.Type {
	case instrument.American:
		return step.Join(step.NewAmerican(calc, nodes))
	case instrument.Bermudan:
		return step.Join(step.NewBermudan(dates.ExerciseTimes(opt), calc, nodes))
	default:
		return step.Join()
	}
}

func maturity(opt instrument.VanillaOption, dates instrument.Dates) (float64, error) {
	if err := opt.Validate(); err != nil {
		return 0, err
	}
	t := dates.Maturity(opt)
	if !(t > 0) {
		return 0, errors.Wrapf(ErrMaturity, "expiry %s", opt.Exercise.LastDate().Format("2006-01-02"))
	}
	return t, nil
}

// HestonHullWhiteEngine prices under Heston equity dynamics with a
// Hull-White short rate correlated with the equity.
type HestonHullWhiteEngine struct {
	heston *model.HestonProcess
	hw     model.HullWhite
	corr   float64
	dates  instrument.Dates
	s      settings
}

// NewHestonHullWhiteEngine defaults to tGrid=50, xGrid=100, vGrid=40,
// rGrid=20, no damping, the Hundsdorfer scheme and the control variate. A
// Hull-White model without a curve is fitted to the Heston risk-free curve.
func NewHestonHullWhiteEngine(p *model.HestonProcess, hw *model.HullWhite, corr float64, dates instrument.Dates, opts ...Option) *HestonHullWhiteEngine {
	s := settings{tGrid: 50, xGrid: 100, vGrid: 40, rGrid: 20, controlVariate: true, scheme: scheme.Hundsdorfer()}
	for _, o := range opts {
		o(&s)
	}
	e := &HestonHullWhiteEngine{heston: p, corr: corr, dates: dates, s: s}
	if hw != nil {
		e.hw = *hw
		if e.hw.Curve == nil && p != nil {
			e.hw.Curve = p.RiskFree
		}
	}
	return e
}

func (e *HestonHullWhiteEngine) validate() error {
	if err := e.heston.Validate(); err != nil {
		return err
	}
	if err := e.hw.Validate(); err != nil {
		return err
	}
	if math.Abs(e.corr) > 1 || math.IsNaN(e.corr) {
		return errors.Wrapf(ErrCorrelation, "equity/short-rate %v", e.corr)
	}
	return e.s.validate(3)
}

// Calculate prices opt.
func (e *HestonHullWhiteEngine) Calculate(ctx context.Context, opt instrument.VanillaOption) (Results, error) {
	start := time.Now()
	if err := e.validate(); err != nil {
		return Results{}, err
	}
	T, err := maturity(opt, e.dates)
	if err != nil {
		return Results{}, err
	}
	p := e.heston

	vMesh, err := e.s.cache.Variance(e.s.vGrid, p, T, tAvgSteps(e.s.tGrid))
	if err != nil {
		return Results{}, errors.Wrap(err, "variance mesh")
	}
	xMesh, err := e.s.cache.Equity(e.s.xGrid, p, vMesh.VolaEstimate(), T, opt.Payoff.Strike)
	if err != nil {
		return Results{}, errors.Wrap(err, "equity mesh")
	}
	rMesh, err := e.s.cache.Rate(e.s.rGrid, &e.hw, T)
	if err != nil {
		return Results{}, errors.Wrap(err, "rate mesh")
	}
	m := mesher.NewComposite(xMesh, vMesh, rMesh)
	calc := step.NewLogInnerValue(opt.Payoff, m, 0)

	s, err := solver.NewHestonHullWhiteSolver(p, &e.hw, e.corr, solver.Desc{
		Mesher:       m,
		Condition:    stepConditions(opt, e.dates, calc, m.Layout().Size()),
		Calculator:   calc,
		Maturity:     T,
		TimeSteps:    e.s.tGrid,
		DampingSteps: e.s.dampingSteps,
	}, e.s.scheme)
	if err != nil {
		return Results{}, err
	}

	var res Results
	eps := 0.01 * p.S0
	if res.Value, err = s.ValueAt(ctx, p.S0, p.V0, 0); err != nil {
		return Results{}, err
	}
	if res.Delta, err = s.DeltaAt(ctx, p.S0, p.V0, 0, eps); err != nil {
		return Results{}, err
	}
	if res.Gamma, err = s.GammaAt(ctx, p.S0, p.V0, 0, eps); err != nil {
		return Results{}, err
	}
	if res.Theta, err = s.ThetaAt(ctx, p.S0, p.V0, 0); err != nil {
		return Results{}, err
	}

	if e.s.controlVariate {
		if opt.Exercise.Type != instrument.European {
			log.Warnw("control variate needs a European exercise, skipping", "exercise", opt.Exercise.Type)
		} else {
			adj, err := e.controlVariate(ctx, opt, T)
			if err != nil {
				return Results{}, errors.Wrap(err, "control variate")
			}
			res.Value += adj
		}
	}
	log.Debugw("priced",
		"corr", e.corr, "tGrid", e.s.tGrid, "scheme", e.s.scheme, "value", res.Value,
		"elapsed", time.Since(start))
	return res, nil
}

// controlVariate is analytic Heston minus finite-difference Heston on the
// same x and v grids; it removes most of the discretisation error that
// the two problems share.
func (e *HestonHullWhiteEngine) controlVariate(ctx context.Context, opt instrument.VanillaOption, T float64) (float64, error) {
	exact, err := analytic.Heston(e.heston, opt.Payoff, T)
	if err != nil {
		return 0, err
	}
	h := NewHestonEngine(e.heston, e.dates,
		WithGrid(e.s.tGrid, e.s.xGrid, e.s.vGrid, 0),
		WithDampingSteps(e.s.dampingSteps),
		WithScheme(e.s.scheme),
		WithMeshCache(e.s.cache))
	approx, err := h.Calculate(ctx, opt)
	if err != nil {
		return 0, err
	}
	return exact - approx.Value, nil
}

// HestonEngine prices under the Heston model with deterministic rates.
type HestonEngine struct {
	heston *model.HestonProcess
	dates  instrument.Dates
	s      settings
}

// NewHestonEngine defaults to tGrid=100, xGrid=100, vGrid=50 and the
// Hundsdorfer scheme.
func NewHestonEngine(p *model.HestonProcess, dates instrument.Dates, opts ...Option) *HestonEngine {
	s := settings{tGrid: 100, xGrid: 100, vGrid: 50, scheme: scheme.Hundsdorfer()}
	for _, o := range opts {
		o(&s)
	}
	return &HestonEngine{heston: p, dates: dates, s: s}
}

// Calculate prices opt.
func (e *HestonEngine) Calculate(ctx context.Context, opt instrument.VanillaOption) (Results, error) {
	if err := e.heston.Validate(); err != nil {
		return Results{}, err
	}
	if err := e.s.validate(2); err != nil {
		return Results{}, err
	}
	T, err := maturity(opt, e.dates)
	if err != nil {
		return Results{}, err
	}
	p := e.heston

	vMesh, err := e.s.cache.Variance(e.s.vGrid, p, T, tAvgSteps(e.s.tGrid))
	if err != nil {
		return Results{}, errors.Wrap(err, "variance mesh")
	}
	xMesh, err := e.s.cache.Equity(e.s.xGrid, p, vMesh.VolaEstimate(), T, opt.Payoff.Strike)
	if err != nil {
		return Results{}, errors.Wrap(err, "equity mesh")
	}
	m := mesher.NewComposite(xMesh, vMesh)
	calc := step.NewLogInnerValue(opt.Payoff, m, 0)

	s, err := solver.NewHestonSolver(p, solver.Desc{
		Mesher:       m,
		Condition:    stepConditions(opt, e.dates, calc, m.Layout().Size()),
		Calculator:   calc,
		Maturity:     T,
		TimeSteps:    e.s.tGrid,
		DampingSteps: e.s.dampingSteps,
	}, e.s.scheme)
	if err != nil {
		return Results{}, err
	}

	var res Results
	eps := 0.01 * p.S0
	if res.Value, err = s.ValueAt(ctx, p.S0, p.V0); err != nil {
		return Results{}, err
	}
	if res.Delta, err = s.DeltaAt(ctx, p.S0, p.V0, eps); err != nil {
		return Results{}, err
	}
	if res.Gamma, err = s.GammaAt(ctx, p.S0, p.V0, eps); err != nil {
		return Results{}, err
	}
	if res.Theta, err = s.ThetaAt(ctx, p.S0, p.V0); err != nil {
		return Results{}, err
	}
	return res, nil
}
