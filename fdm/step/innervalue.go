package step

import (
	"math"

	"gonum.org/v1/gonum/integrate/quad"

	"github.com/meenmo/hhwlib/fdm/mesher"
	"github.com/meenmo/hhwlib/instrument"
)

// quadPoints is the Gauss-Legendre order used for cell averages.
const quadPoints = 16

// InnerValueCalculator evaluates the exercise value at a mesh node.
type InnerValueCalculator interface {
	InnerValue(index int, t float64) float64
	// AvgInnerValue is the payoff averaged over the node's cell; it smooths
	// the kink at the strike in the terminal condition.
	AvgInnerValue(index int, t float64) float64
}

// LogInnerValue prices a vanilla payoff on a mesh whose dir axis is ln S.
type LogInnerValue struct {
	payoff instrument.Payoff
	mesh   *mesher.Composite
	dir    int
	avg    []float64
}

// NewLogInnerValue evaluates payoff on the exponential of the dir locations.
func NewLogInnerValue(payoff instrument.Payoff, mesh *mesher.Composite, dir int) *LogInnerValue {
	return &LogInnerValue{payoff: payoff, mesh: mesh, dir: dir}
}

// InnerValue is the payoff at the node.
func (c *LogInnerValue) InnerValue(index int, _ float64) float64 {
	return c.payoff.Value(math.Exp(c.mesh.Locations(c.dir)[index]))
}

// AvgInnerValue is the payoff averaged over the node's cell.
func (c *LogInnerValue) AvgInnerValue(index int, _ float64) float64 {
	if c.avg == nil {
		c.avg = c.cellAverages()
	}
	coords := c.mesh.Layout().Coordinates(index, nil)
	return c.avg[coords[c.dir]]
}

func (c *LogInnerValue) cellAverages() []float64 {
	m := c.mesh.Mesher(c.dir)
	locs := m.Locations()
	n := len(locs)
	out := make([]float64, n)
	f := func(x float64) float64 { return c.payoff.Value(math.Exp(x)) }
	k := math.Log(c.payoff.Strike)
	for i, x := range locs {
		a, b := x, x
		if i > 0 {
			a = x - 0.5*m.Dminus(i)
		}
		if i < n-1 {
			b = x + 0.5*m.Dplus(i)
		}
		if !(b > a) {
			out[i] = f(x)
			continue
		}
		var sum float64
		if k > a && k < b {
			sum = quad.Fixed(f, a, k, quadPoints, nil, 0) + quad.Fixed(f, k, b, quadPoints, nil, 0)
		} else {
			sum = quad.Fixed(f, a, b, quadPoints, nil, 0)
		}
		out[i] = sum / (b - a)
	}
	return out
}
