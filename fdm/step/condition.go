// Package step holds the step conditions applied between time steps:
// early exercise and solution snapshots.
package step

import (
	"math"
	"reflect"
	"sort"
)

// stopTol is the tolerance for matching a rollback time to a stopping time.
const stopTol = 1e-10

// Condition modifies the solution after the scheme reaches time t.
type Condition interface {
	ApplyTo(a []float64, t float64)
}

// StoppingTimer is implemented by conditions that must be hit exactly.
type StoppingTimer interface {
	StoppingTimes() []float64
}

// Composite applies conditions in order and merges their stopping times.
type Composite struct {
	conditions    []Condition
	stoppingTimes []float64
}

// Join combines conditions; nil entries, including typed nil pointers, are
// skipped.
func Join(conds ...Condition) *Composite {
	c := &Composite{}
	for _, cond := range conds {
		if isNil(cond) {
			continue
		}
		c.conditions = append(c.conditions, cond)
		if st, ok := cond.(StoppingTimer); ok {
			c.stoppingTimes = append(c.stoppingTimes, st.StoppingTimes()...)
		}
	}
	sort.Float64s(c.stoppingTimes)
	uniq := c.stoppingTimes[:0]
	for _, t := range c.stoppingTimes {
		if n := len(uniq); n == 0 || t-uniq[n-1] > stopTol {
			uniq = append(uniq, t)
		}
	}
	c.stoppingTimes = uniq
	return c
}

func isNil(c Condition) bool {
	if c == nil {
		return true
	}
	v := reflect.ValueOf(c)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// StoppingTimes are the sorted, de-duplicated times the rollback must hit.
func (c *Composite) StoppingTimes() []float64 {
	if c == nil {
		return nil
	}
	return c.stoppingTimes
}

// ApplyTo applies every joined condition in order.
func (c *Composite) ApplyTo(a []float64, t float64) {
	if c == nil {
		return
	}
	for _, cond := range c.conditions {
		cond.ApplyTo(a, t)
	}
}

// Len is the number of joined conditions.
func (c *Composite) Len() int {
	if c == nil {
		return 0
	}
	return len(c.conditions)
}

// American floors the solution at the exercise value at every step.
type American struct {
	calc  InnerValueCalculator
	nodes int
}

// NewAmerican floors the solution at the inner value on every step.
func NewAmerican(calc InnerValueCalculator, nodes int) *American {
	return &American{calc: calc, nodes: nodes}
}

// ApplyTo floors a at the inner value.
func (c *American) ApplyTo(a []float64, t float64) {
	for i := 0; i < c.nodes; i++ {
		a[i] = math.Max(a[i], c.calc.InnerValue(i, t))
	}
}

// Bermudan floors the solution at the exercise value on exercise times only.
type Bermudan struct {
	times []float64
	calc  InnerValueCalculator
	nodes int
}

// NewBermudan floors the solution at the given exercise times.
func NewBermudan(times []float64, calc InnerValueCalculator, nodes int) *Bermudan {
	ts := append([]float64(nil), times...)
	sort.Float64s(ts)
	return &Bermudan{times: ts, calc: calc, nodes: nodes}
}

// StoppingTimes are the exercise times.
func (c *Bermudan) StoppingTimes() []float64 { return c.times }

// ApplyTo floors a when t is an exercise time.
func (c *Bermudan) ApplyTo(a []float64, t float64) {
	i := sort.SearchFloat64s(c.times, t-stopTol)
	if i == len(c.times) || math.Abs(c.times[i]-t) > stopTol {
		return
	}
	for j := 0; j < c.nodes; j++ {
		a[j] = math.Max(a[j], c.calc.InnerValue(j, t))
	}
}

// Snapshot records the solution when the rollback reaches Time.
type Snapshot struct {
	t      float64
	values []float64
}

// NewSnapshot records the solution when the rollback reaches t.
func NewSnapshot(t float64) *Snapshot { return &Snapshot{t: t} }

func (s *Snapshot) Time() float64            { return s.t }
func (s *Snapshot) StoppingTimes() []float64 { return []float64{s.t} }

// Values is nil until the rollback passed Time.
func (s *Snapshot) Values() []float64 { return s.values }

func (s *Snapshot) ApplyTo(a []float64, t float64) {
	if math.Abs(t-s.t) <= stopTol {
		s.values = append(s.values[:0], a...)
	}
}
