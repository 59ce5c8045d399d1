package scheme

import (
	"github.com/meenmo/hhwlib/fdm/layout"
	"github.com/meenmo/hhwlib/fdm/operator"
)

// BoundaryCondition hooks into each scheme stage.
type BoundaryCondition interface {
	SetTime(t float64)
	ApplyBeforeApplying(op operator.Composite)
	ApplyAfterApplying(a []float64)
	ApplyAfterSolving(a []float64)
}

// BoundaryConditionSet applies its members in order.
type BoundaryConditionSet []BoundaryCondition

func (s BoundaryConditionSet) SetTime(t float64) {
	for _, bc := range s {
		bc.SetTime(t)
	}
}

func (s BoundaryConditionSet) ApplyBeforeApplying(op operator.Composite) {
	for _, bc := range s {
		bc.ApplyBeforeApplying(op)
	}
}

func (s BoundaryConditionSet) ApplyAfterApplying(a []float64) {
	for _, bc := range s {
		bc.ApplyAfterApplying(a)
	}
}

func (s BoundaryConditionSet) ApplyAfterSolving(a []float64) {
	for _, bc := range s {
		bc.ApplyAfterSolving(a)
	}
}

// Side selects the lower or upper face of a direction.
type Side int

const (
	Lower Side = iota
	Upper
)

// Dirichlet pins the solution on one face of the grid. Value receives the
// time and the node's coordinate along dir.
type Dirichlet struct {
	indices   []int
	locations []float64
	value     func(t, x float64) float64
	t         float64
}

// NewDirichlet selects the nodes on side of dir. locations holds the dir
// coordinate of every node.
func NewDirichlet(l *layout.Layout, locations []float64, dir int, side Side, value func(t, x float64) float64) *Dirichlet {
	target := 0
	if side == Upper {
		target = l.Dim()[dir] - 1
	}
	d := &Dirichlet{value: value}
	coords := make([]int, len(l.Dim()))
	for i := 0; i < l.Size(); i++ {
		l.Coordinates(i, coords)
		if coords[dir] == target {
			d.indices = append(d.indices, i)
			d.locations = append(d.locations, locations[i])
		}
	}
	return d
}

// Indices returns the pinned nodes.
func (d *Dirichlet) Indices() []int { return d.indices }

func (d *Dirichlet) SetTime(t float64)                      { d.t = t }
func (d *Dirichlet) ApplyBeforeApplying(operator.Composite) {}
func (d *Dirichlet) ApplyAfterApplying(a []float64)         { d.pin(a) }
func (d *Dirichlet) ApplyAfterSolving(a []float64)          { d.pin(a) }

func (d *Dirichlet) pin(a []float64) {
	for k, i := range d.indices {
		a[i] = d.value(d.t, d.locations[k])
	}
}
