// Package mesher builds the one-dimensional grids of the finite-difference
// solvers and combines them into a multi-dimensional mesh.
package mesher

import (
	"math"

	"github.com/pkg/errors"
)

// ErrGridSize is returned for grids with fewer than two points.
var ErrGridSize = errors.New("grid needs at least two points")

// Mesher1D is a sorted set of grid locations along one axis.
type Mesher1D interface {
	Size() int
	Locations() []float64
	// Dplus is locations[i+1]-locations[i], NaN on the last node.
	Dplus(i int) float64
	// Dminus is locations[i]-locations[i-1], NaN on the first node.
	Dminus(i int) float64
}

// Grid is an immutable Mesher1D backed by explicit locations.
type Grid struct {
	locations []float64
	dplus     []float64
	dminus    []float64
}

func newGrid(locations []float64) *Grid {
	n := len(locations)
	g := &Grid{
		locations: locations,
		dplus:     make([]float64, n),
		dminus:    make([]float64, n),
	}
	for i := 0; i < n-1; i++ {
		g.dplus[i] = locations[i+1] - locations[i]
		g.dminus[i+1] = g.dplus[i]
	}
	g.dplus[n-1] = math.NaN()
	g.dminus[0] = math.NaN()
	return g
}

// NewGrid validates strictly increasing locations.
func NewGrid(locations []float64) (*Grid, error) {
	if len(locations) < 2 {
		return nil, ErrGridSize
	}
	for i := 1; i < len(locations); i++ {
		if !(locations[i] > locations[i-1]) {
			return nil, errors.Errorf("grid locations not increasing at %d: %v <= %v", i, locations[i], locations[i-1])
		}
	}
	return newGrid(append([]float64(nil), locations...)), nil
}

func (g *Grid) Size() int            { return len(g.locations) }
func (g *Grid) Locations() []float64 { return g.locations }
func (g *Grid) Dplus(i int) float64  { return g.dplus[i] }
func (g *Grid) Dminus(i int) float64 { return g.dminus[i] }
func (g *Grid) Lower() float64       { return g.locations[0] }
func (g *Grid) Upper() float64       { return g.locations[len(g.locations)-1] }

// Uniform spaces size points evenly over [start, end].
func Uniform(start, end float64, size int) (*Grid, error) {
	if size < 2 {
		return nil, ErrGridSize
	}
	if !(end > start) {
		return nil, errors.Errorf("uniform grid: end %v <= start %v", end, start)
	}
	locs := make([]float64, size)
	dx := (end - start) / float64(size-1)
	for i := range locs {
		locs[i] = start + float64(i)*dx
	}
	locs[size-1] = end
	return newGrid(locs), nil
}

// Concentrating clusters points around cPoint with a sinh stretch; smaller
// density means tighter clustering. A NaN cPoint gives a uniform grid.
func Concentrating(start, end float64, size int, cPoint, density float64) (*Grid, error) {
	if math.IsNaN(cPoint) {
		return Uniform(start, end, size)
	}
	if size < 2 {
		return nil, ErrGridSize
	}
	if !(end > start) {
		return nil, errors.Errorf("concentrating grid: end %v <= start %v", end, start)
	}
	if !(density > 0) {
		return nil, errors.Errorf("concentrating grid: density %v must be positive", density)
	}
	d := density * (end - start)
	c1 := math.Asinh((start - cPoint) / d)
	c2 := math.Asinh((end - cPoint) / d)

	locs := make([]float64, size)
	locs[0] = start
	for i := 1; i < size-1; i++ {
		u := float64(i) / float64(size-1)
		locs[i] = cPoint + d*math.Sinh(c1*(1-u)+c2*u)
	}
	locs[size-1] = end
	return newGrid(locs), nil
}
