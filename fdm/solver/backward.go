// Package solver rolls the pricing PDE back from maturity and interpolates
// the resulting value surface.
package solver

import (
	"context"
	"math"

	logging "github.com/ipfs/go-log/v2"
	"github.com/pkg/errors"

	"github.com/meenmo/hhwlib/fdm/operator"
	"github.com/meenmo/hhwlib/fdm/scheme"
	"github.com/meenmo/hhwlib/fdm/step"
)

var log = logging.Logger("solver")

// rollbackTol snaps the final step onto the target time.
var rollbackTol = math.Sqrt(2.220446049250313e-16)

// BackwardSolver drives a scheme through time, honouring the stopping
// times of its condition.
type BackwardSolver struct {
	op        operator.Composite
	bc        scheme.BoundaryConditionSet
	condition *step.Composite
	desc      scheme.Desc
}

// NewBackwardSolver rolls back with op under the scheme described by desc.
func NewBackwardSolver(op operator.Composite, bc scheme.BoundaryConditionSet, condition *step.Composite, desc scheme.Desc) *BackwardSolver {
	if condition == nil {
		condition = step.Join()
	}
	return &BackwardSolver{op: op, bc: bc, condition: condition, desc: desc}
}

// Rollback evolves a from time `from` back to `to`. The first dampingSteps
// use implicit Euler to damp the payoff discontinuity.
func (s *BackwardSolver) Rollback(ctx context.Context, a []float64, from, to float64, steps, dampingSteps int) error {
	if steps < 1 {
		return errors.Errorf("rollback needs at least one step, got %d", steps)
	}
	all := steps + dampingSteps
	dampingTo := from - (from-to)*float64(dampingSteps)/float64(all)

	if dampingSteps > 0 && s.desc != scheme.ImplicitEuler() {
		damping := scheme.New(scheme.ImplicitEuler(), s.op, s.bc)
		if err := s.rollback(ctx, "damping", damping, a, from, dampingTo, dampingSteps); err != nil {
			return err
		}
	} else {
		dampingTo = from
		steps = all
	}
	return s.rollback(ctx, s.desc.String(), scheme.New(s.desc, s.op, s.bc), a, dampingTo, to, steps)
}

func (s *BackwardSolver) rollback(ctx context.Context, name string, ev scheme.Scheme, a []float64, from, to float64, steps int) error {
	dt := (from - to) / float64(steps)
	stops := s.condition.StoppingTimes()
	ev.SetStep(dt)

	if n := len(stops); n > 0 && math.Abs(stops[n-1]-from) < rollbackTol {
		s.condition.ApplyTo(a, from)
	}
	t := from
	for i := 0; i < steps; i, t = i+1, t-dt {
		if err := ctx.Err(); err != nil {
			return errors.Wrapf(err, "rollback interrupted at t=%.6f", t)
		}
		now, next := t, t-dt
		if math.Abs(to-next) < rollbackTol {
			next = to
		}
		hit := false
		for j := len(stops) - 1; j >= 0; j-- {
			if next <= stops[j] && stops[j] < now {
				hit = true
				ev.SetStep(now - stops[j])
				ev.Step(a, now)
				s.condition.ApplyTo(a, stops[j])
				now = stops[j]
			}
		}
		if hit {
			if now > next {
				ev.SetStep(now - next)
				ev.Step(a, now)
				s.condition.ApplyTo(a, next)
			}
			ev.SetStep(dt)
		} else {
			ev.Step(a, now)
			s.condition.ApplyTo(a, next)
		}
	}
	log.Debugw("rollback done", "scheme", name, "from", from, "to", to, "steps", steps)
	return nil
}
