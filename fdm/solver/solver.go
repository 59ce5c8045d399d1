package solver

import (
	"context"
	"math"
	"sync"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/interp"

	"github.com/meenmo/hhwlib/fdm/mesher"
	"github.com/meenmo/hhwlib/fdm/operator"
	"github.com/meenmo/hhwlib/fdm/scheme"
	"github.com/meenmo/hhwlib/fdm/step"
)

// ErrOutOfGrid is returned when interpolating outside the mesh.
var ErrOutOfGrid = errors.New("point outside the grid")

// Desc describes one backward PDE solve.
type Desc struct {
	Mesher     *mesher.Composite
	Boundaries scheme.BoundaryConditionSet
	// Condition is optional; nil means plain European rollback.
	Condition    step.Condition
	Calculator   step.InnerValueCalculator
	Maturity     float64
	TimeSteps    int
	DampingSteps int
}

func (d Desc) validate(dims int) error {
	switch {
	case d.Mesher == nil:
		return errors.New("solver: missing mesher")
	case len(d.Mesher.Layout().Dim()) != dims:
		return errors.Errorf("solver: %d-dimensional mesher for a %d-dimensional solver", len(d.Mesher.Layout().Dim()), dims)
	case d.Calculator == nil:
		return errors.New("solver: missing inner value calculator")
	case !(d.Maturity > 0):
		return errors.Errorf("solver: maturity %v", d.Maturity)
	case d.TimeSteps < 1 || d.DampingSteps < 0:
		return errors.Errorf("solver: %d time steps, %d damping steps", d.TimeSteps, d.DampingSteps)
	}
	return nil
}

// grid solves the PDE once and interpolates the result on 2-D slices
// stacked along an optional third axis.
type grid struct {
	desc     Desc
	scheme   scheme.Desc
	op       operator.Composite
	snapshot *step.Snapshot
	cond     *step.Composite

	xs, ys, zs []float64

	mu     sync.Mutex
	done   bool
	err    error
	values []float64
}

func newGrid(desc Desc, sd scheme.Desc, op operator.Composite, dims int) (*grid, error) {
	if err := desc.validate(dims); err != nil {
		return nil, err
	}
	cond := step.Join(desc.Condition)
	first := desc.Maturity
	if st := cond.StoppingTimes(); len(st) > 0 {
		first = st[0]
	}
	snap := step.NewSnapshot(0.99 * math.Min(1.0/365, first))
	g := &grid{
		desc:     desc,
		scheme:   sd,
		op:       op,
		snapshot: snap,
		cond:     step.Join(snap, cond),
		xs:       desc.Mesher.Mesher(0).Locations(),
		ys:       desc.Mesher.Mesher(1).Locations(),
		zs:       []float64{0},
	}
	if dims == 3 {
		g.zs = desc.Mesher.Mesher(2).Locations()
	}
	return g, nil
}

// calculate runs the rollback on first use and keeps the result. A rollback
// stopped by ctx is not kept, so a later call with a live context retries.
func (g *grid) calculate(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.done {
		return g.err
	}
	n := g.desc.Mesher.Layout().Size()
	rhs := make([]float64, n)
	for i := range rhs {
		rhs[i] = g.desc.Calculator.AvgInnerValue(i, g.desc.Maturity)
	}
	bs := NewBackwardSolver(g.op, g.desc.Boundaries, g.cond, g.scheme)
	err := bs.Rollback(ctx, rhs, g.desc.Maturity, 0, g.desc.TimeSteps, g.desc.DampingSteps)
	if err != nil && ctx.Err() != nil {
		return err
	}
	g.done, g.err = true, err
	if err == nil {
		g.values = rhs
	}
	return err
}

func (g *grid) interpolate(values []float64, x, y, z float64) (float64, error) {
	if outside(g.xs, x) || outside(g.ys, y) || (len(g.zs) > 1 && outside(g.zs, z)) {
		return 0, errors.Wrapf(ErrOutOfGrid, "(%v, %v, %v)", x, y, z)
	}
	nx, ny := len(g.xs), len(g.ys)
	slices := make([]float64, len(g.zs))
	col := make([]float64, ny)
	for k := range g.zs {
		slice := values[k*nx*ny : (k+1)*nx*ny]
		for j := 0; j < ny; j++ {
			var row interp.NaturalCubic
			if err := row.Fit(g.xs, slice[j*nx:(j+1)*nx]); err != nil {
				return 0, errors.Wrap(err, "x spline")
			}
			col[j] = row.Predict(x)
		}
		var c interp.NaturalCubic
		if err := c.Fit(g.ys, col); err != nil {
			return 0, errors.Wrap(err, "y spline")
		}
		slices[k] = c.Predict(y)
	}
	if len(g.zs) == 1 {
		return slices[0], nil
	}
	var zs interp.FritschButland
	if err := zs.Fit(g.zs, slices); err != nil {
		return 0, errors.Wrap(err, "z spline")
	}
	return zs.Predict(z), nil
}

func outside(xs []float64, x float64) bool {
	return x < xs[0] || x > xs[len(xs)-1]
}

func (g *grid) valueAt(ctx context.Context, x, y, z float64) (float64, error) {
	if err := g.calculate(ctx); err != nil {
		return 0, err
	}
	return g.interpolate(g.values, x, y, z)
}

func (g *grid) thetaAt(ctx context.Context, x, y, z float64) (float64, error) {
	u, err := g.valueAt(ctx, x, y, z)
	if err != nil {
		return 0, err
	}
	snap := g.snapshot.Values()
	if snap == nil {
		return 0, errors.New("theta snapshot was not taken")
	}
	ut, err := g.interpolate(snap, x, y, z)
	if err != nil {
		return 0, err
	}
	return (ut - u) / g.snapshot.Time(), nil
}

// Solver2D solves on an (x, y) mesh.
type Solver2D struct{ g *grid }

// NewSolver2D validates desc and defers the rollback to the first query.
func NewSolver2D(desc Desc, sd scheme.Desc, op operator.Composite) (*Solver2D, error) {
	g, err := newGrid(desc, sd, op, 2)
	if err != nil {
		return nil, err
	}
	return &Solver2D{g: g}, nil
}

// Calculate performs the rollback; later calls return the first completed
// result.
func (s *Solver2D) Calculate(ctx context.Context) error { return s.g.calculate(ctx) }

// InterpolateAt evaluates the bicubic spline of the solution at t = 0.
func (s *Solver2D) InterpolateAt(ctx context.Context, x, y float64) (float64, error) {
	return s.g.valueAt(ctx, x, y, 0)
}

// ThetaAt is the forward difference in time against the snapshot.
func (s *Solver2D) ThetaAt(ctx context.Context, x, y float64) (float64, error) {
	return s.g.thetaAt(ctx, x, y, 0)
}

// Solver3D solves on an (x, y, z) mesh.
type Solver3D struct{ g *grid }

// NewSolver3D validates desc and defers the rollback to the first query.
func NewSolver3D(desc Desc, sd scheme.Desc, op operator.Composite) (*Solver3D, error) {
	g, err := newGrid(desc, sd, op, 3)
	if err != nil {
		return nil, err
	}
	return &Solver3D{g: g}, nil
}

// Calculate performs the rollback; later calls return the first completed
// result.
func (s *Solver3D) Calculate(ctx context.Context) error { return s.g.calculate(ctx) }

// InterpolateAt uses a bicubic spline per z slice and a monotone cubic
// across z.
func (s *Solver3D) InterpolateAt(ctx context.Context, x, y, z float64) (float64, error) {
	return s.g.valueAt(ctx, x, y, z)
}

// ThetaAt is the forward difference in time against the snapshot.
func (s *Solver3D) ThetaAt(ctx context.Context, x, y, z float64) (float64, error) {
	return s.g.thetaAt(ctx, x, y, z)
}
