package mesher

import "github.com/meenmo/hhwlib/fdm/layout"

// Composite is the tensor product of one-dimensional meshers.
type Composite struct {
	layout    *layout.Layout
	meshers   []Mesher1D
	locations [][]float64
}

// NewComposite combines meshers; the first one varies fastest.
func NewComposite(meshers ...Mesher1D) *Composite {
	dims := make([]int, len(meshers))
	for i, m := range meshers {
		dims[i] = m.Size()
	}
	c := &Composite{layout: layout.New(dims...), meshers: meshers}

	c.locations = make([][]float64, len(meshers))
	coords := make([]int, len(meshers))
	for d, m := range meshers {
		locs := m.Locations()
		c.locations[d] = make([]float64, c.layout.Size())
		for i := range c.locations[d] {
			c.layout.Coordinates(i, coords)
			c.locations[d][i] = locs[coords[d]]
		}
	}
	return c
}

// Layout is the index layout of the product grid.
func (c *Composite) Layout() *layout.Layout { return c.layout }

// Mesher is the 1-D mesher along dir.
func (c *Composite) Mesher(dir int) Mesher1D { return c.meshers[dir] }

// Location is the coordinate along dir of the node at coords.
func (c *Composite) Location(coords []int, dir int) float64 {
	return c.meshers[dir].Locations()[coords[dir]]
}

func (c *Composite) Dplus(coords []int, dir int) float64 {
	return c.meshers[dir].Dplus(coords[dir])
}

func (c *Composite) Dminus(coords []int, dir int) float64 {
	return c.meshers[dir].Dminus(coords[dir])
}

// Locations returns the dir coordinate of every node, in layout order.
func (c *Composite) Locations(dir int) []float64 {
	return c.locations[dir]
}
