// Package scheme implements the ADI time-stepping schemes used to roll the
// pricing PDE back from maturity.
package scheme

import (
	"math"
	"strings"

	"github.com/pkg/errors"

	"github.com/meenmo/hhwlib/fdm/operator"
)

// Type enumerates the available schemes.
type Type int

const (
	HundsdorferType Type = iota
	DouglasType
	CraigSneydType
	ModifiedCraigSneydType
	ExplicitEulerType
)

func (t Type) String() string {
	switch t {
	case DouglasType:
		return "Douglas"
	case CraigSneydType:
		return "CraigSneyd"
	case ModifiedCraigSneydType:
		return "ModifiedCraigSneyd"
	case ExplicitEulerType:
		return "ExplicitEuler"
	default:
		return "Hundsdorfer"
	}
}

// Desc selects a scheme and its weights.
type Desc struct {
	Type  Type
	Theta float64
	Mu    float64
}

// Scheme presets with their usual theta and mu.
func Douglas() Desc    { return Desc{Type: DouglasType, Theta: 0.5} }
func CraigSneyd() Desc { return Desc{Type: CraigSneydType, Theta: 0.5, Mu: 0.5} }
func ModifiedCraigSneyd() Desc {
	return Desc{Type: ModifiedCraigSneydType, Theta: 1.0 / 3, Mu: 1.0 / 3}
}
func Hundsdorfer() Desc   { return Desc{Type: HundsdorferType, Theta: 0.5 + math.Sqrt(3)/6, Mu: 0.5} }
func ExplicitEuler() Desc { return Desc{Type: ExplicitEulerType} }

// ImplicitEuler is Douglas with theta = 1, used for damping steps.
func ImplicitEuler() Desc { return Desc{Type: DouglasType, Theta: 1} }

// String is the scheme name.
func (d Desc) String() string { return d.Type.String() }

// Parse maps a scheme name to its default Desc.
func Parse(name string) (Desc, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "hundsdorfer":
		return Hundsdorfer(), nil
	case "douglas":
		return Douglas(), nil
	case "craigsneyd", "cs":
		return CraigSneyd(), nil
	case "modifiedcraigsneyd", "mcs":
		return ModifiedCraigSneyd(), nil
	case "expliciteuler", "explicit":
		return ExplicitEuler(), nil
	case "impliciteuler", "implicit":
		return ImplicitEuler(), nil
	}
	return Desc{}, errors.Errorf("unknown scheme %q", name)
}

// Scheme advances a solution vector by one (backward) time step.
type Scheme interface {
	SetStep(dt float64)
	// Step moves a from time t to t-dt in place.
	Step(a []float64, t float64)
}

// New builds the scheme described by d over op.
func New(d Desc, op operator.Composite, bc BoundaryConditionSet) Scheme {
	base := base{op: op, bc: bc, theta: d.Theta, mu: d.Mu}
	switch d.Type {
	case DouglasType:
		return &douglas{base}
	case CraigSneydType:
		return &craigSneyd{base}
	case ModifiedCraigSneydType:
		return &modifiedCraigSneyd{base}
	case ExplicitEulerType:
		return &explicitEuler{base}
	default:
		return &hundsdorfer{base}
	}
}
