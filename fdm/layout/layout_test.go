package layout_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meenmo/hhwlib/fdm/layout"
)

func TestIndexRoundTrip(t *testing.T) {
	t.Parallel()
	l := layout.New(4, 3, 5)
	require.Equal(t, 60, l.Size())
	require.Equal(t, []int{1, 4, 12}, l.Spacing())

	coords := make([]int, 3)
	for i := 0; i < l.Size(); i++ {
		l.Coordinates(i, coords)
		require.Equal(t, i, l.Index(coords))
	}
}

func TestNeighbourhoodReflects(t *testing.T) {
	t.Parallel()
	l := layout.New(4, 3)
	coords := []int{0, 1}
	idx := l.Index(coords)
	require.Equal(t, l.Index([]int{1, 1}), l.Neighbourhood(idx, coords, 0, -1))
	require.Equal(t, l.Index([]int{1, 1}), l.Neighbourhood(idx, coords, 0, 1))

	coords = []int{3, 2}
	idx = l.Index(coords)
	require.Equal(t, l.Index([]int{3, 1}), l.Neighbourhood(idx, coords, 1, 1))
	require.Equal(t, l.Index([]int{2, 1}), l.Neighbourhood2(idx, coords, 0, 1, 1, -1))
	require.Equal(t, []int{3, 2}, coords)
}

func TestLinesVisitEveryNodeOnce(t *testing.T) {
	t.Parallel()
	l := layout.New(3, 4, 2)
	for dir := 0; dir < 3; dir++ {
		seen := make([]int, l.Size())
		n := l.Dim()[dir]
		stride := l.Spacing()[dir]
		l.Lines(dir, func(start int) {
			for k := 0; k < n; k++ {
				seen[start+k*stride]++
			}
		})
		for i, c := range seen {
			require.Equalf(t, 1, c, "dir %d node %d", dir, i)
		}
	}
}
