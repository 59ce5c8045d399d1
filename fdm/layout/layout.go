// Package layout maps multi-dimensional grid coordinates onto the flat
// solution vector. Dimension 0 varies fastest.
package layout

import "fmt"

// Layout is an immutable row-major index map.
type Layout struct {
	dim     []int
	spacing []int
	size    int
}

// New builds a layout for the given dimension sizes.
func New(dim ...int) *Layout {
	l := &Layout{dim: append([]int(nil), dim...), spacing: make([]int, len(dim)), size: 1}
	for i, d := range dim {
		if d < 1 {
			panic(fmt.Sprintf("layout: dimension %d has size %d", i, d))
		}
		l.spacing[i] = l.size
		l.size *= d
	}
	return l
}

// Size is the total number of nodes.
func (l *Layout) Size() int { return l.size }

// Dim returns the size of each dimension. Callers must not modify it.
func (l *Layout) Dim() []int { return l.dim }

// Spacing returns the index stride of each dimension.
func (l *Layout) Spacing() []int { return l.spacing }

// Index converts coordinates into a flat index.
func (l *Layout) Index(coords []int) int {
	idx := 0
	for i, c := range coords {
		idx += c * l.spacing[i]
	}
	return idx
}

// Coordinates fills coords (allocating when nil) for a flat index.
func (l *Layout) Coordinates(index int, coords []int) []int {
	if coords == nil {
		coords = make([]int, len(l.dim))
	}
	for i := len(l.dim) - 1; i >= 0; i-- {
		coords[i] = index / l.spacing[i]
		index -= coords[i] * l.spacing[i]
	}
	return coords
}

// Neighbourhood returns the index offset by `offset` along dir. Coordinates
// falling off the grid are reflected back inside.
func (l *Layout) Neighbourhood(index int, coords []int, dir, offset int) int {
	c := coords[dir] + offset
	if c < 0 {
		c = -c
	} else if n := l.dim[dir]; c >= n {
		c = 2*(n-1) - c
	}
	return index + (c-coords[dir])*l.spacing[dir]
}

// Neighbourhood2 offsets along two directions at once.
func (l *Layout) Neighbourhood2(index int, coords []int, d0, o0, d1, o1 int) int {
	i := l.Neighbourhood(index, coords, d0, o0)
	c := coords[d0]
	coords[d0] = reflect(c+o0, l.dim[d0])
	j := l.Neighbourhood(i, coords, d1, o1)
	coords[d0] = c
	return j
}

func reflect(c, n int) int {
	if c < 0 {
		return -c
	}
	if c >= n {
		return 2*(n-1) - c
	}
	return c
}

// Lines calls fn once per grid line along dir with the index of the line's
// first node. Consecutive nodes on the line are Spacing()[dir] apart.
func (l *Layout) Lines(dir int, fn func(start int)) {
	stride := l.spacing[dir]
	block := stride * l.dim[dir]
	for outer := 0; outer < l.size; outer += block {
		for inner := 0; inner < stride; inner++ {
			fn(outer + inner)
		}
	}
}
