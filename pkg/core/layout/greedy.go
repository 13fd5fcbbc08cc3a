package layout

import (
	"sort"

	"github.com/matzehuels/keyforge/pkg/core/transition"
)

// Placer produces a complete grid for a transition matrix.
type Placer interface {
	Place(m *transition.Matrix) Grid
}

// GreedyPlacer puts the most active characters nearest the centre of the
// grid. It fills the cols×cols block in a spiral that starts next to the
// centre and turns whenever the slot on its left is still free, then fills
// the leftover rows below the block.
type GreedyPlacer struct{}

// Place implements [Placer].
func (GreedyPlacer) Place(m *transition.Matrix) Grid {
	n := m.Size()
	rows, cols := Shape(n)
	g := NewGrid(rows, cols)
	if cols == 0 {
		return g
	}

	order := byActivity(m, false)
	next := spiral(g, order)

	// Rows below the square block: the first right-to-left, the second
	// left-to-right. Slots past the last character stay Empty.
	if rows > cols {
		for j := cols - 1; j >= 0 && next < n; j-- {
			g.Set(cols, j, order[next])
			next++
		}
	}
	if rows == cols+2 {
		for j := 0; j < cols && next < n; j++ {
			g.Set(cols+1, j, order[next])
			next++
		}
	}
	return g
}

// spiral fills the top cols×cols block of g from order and returns how
// many characters it placed.
func spiral(g Grid, order []int) int {
	c := g.Cols
	if c == 1 {
		g.Set(0, 0, order[0])
		return 1
	}

	var i, j, dirx, diry int
	if c%2 == 0 {
		i, j, dirx = c/2-1, c/2, -1
	} else {
		i = (c+1)/2 - 1
		j, dirx = i, 1
	}

	free := func(i, j int) bool {
		return i >= 0 && i < c && j >= 0 && j < c && g.At(i, j) == Empty
	}

	next := 0
	for {
		if next > 0 {
			switch {
			case dirx == 1 && free(i-1, j):
				dirx, diry = 0, -1
			case dirx == -1 && free(i+1, j):
				dirx, diry = 0, 1
			case diry == 1 && free(i, j+1):
				dirx, diry = 1, 0
			case diry == -1 && free(i, j-1):
				dirx, diry = -1, 0
			}
		}
		g.Set(i, j, order[next])
		next++
		if i == c-1 && j == c-1 {
			return next
		}
		i += diry
		j += dirx
	}
}

// byActivity returns character indices sorted by row sum. Ties keep index
// order in both directions.
func byActivity(m *transition.Matrix, ascending bool) []int {
	n := m.Size()
	activity := make([]int, n)
	order := make([]int, n)
	for i := range order {
		order[i] = i
		activity[i] = m.Activity(i)
	}
	sort.SliceStable(order, func(a, b int) bool {
		if ascending {
			return activity[order[a]] < activity[order[b]]
		}
		return activity[order[a]] > activity[order[b]]
	})
	return order
}
