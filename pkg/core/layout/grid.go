package layout

import (
	"errors"
	"fmt"
	"math"
)

// Empty marks a slot without a character.
const Empty = -1

// ErrInvalidGrid is returned by [Grid.Validate] and [FromRows].
var ErrInvalidGrid = errors.New("layout: invalid grid")

// Grid is a rows×cols arrangement of character indices, stored row-major.
type Grid struct {
	Rows  int   `json:"rows"`
	Cols  int   `json:"cols"`
	Slots []int `json:"slots"`
}

// Shape returns the grid dimensions used for n characters:
// cols = floor(sqrt(n)), rows = ceil(n/cols).
func Shape(n int) (rows, cols int) {
	if n <= 0 {
		return 0, 0
	}
	cols = int(math.Sqrt(float64(n)))
	for (cols+1)*(cols+1) <= n {
		cols++
	}
	for cols*cols > n {
		cols--
	}
	rows = (n + cols - 1) / cols
	return rows, cols
}

// NewGrid returns a rows×cols grid with every slot Empty.
func NewGrid(rows, cols int) Grid {
	g := Grid{Rows: rows, Cols: cols, Slots: make([]int, rows*cols)}
	for i := range g.Slots {
		g.Slots[i] = Empty
	}
	return g
}

// FromRows builds a grid from a rectangular slice of rows.
func FromRows(rows [][]int) (Grid, error) {
	if len(rows) == 0 {
		return Grid{}, nil
	}
	cols := len(rows[0])
	g := Grid{Rows: len(rows), Cols: cols, Slots: make([]int, 0, len(rows)*cols)}
	for i, row := range rows {
		if len(row) != cols {
			return Grid{}, fmt.Errorf("%w: row %d has %d slots, want %d", ErrInvalidGrid, i, len(row), cols)
		}
		g.Slots = append(g.Slots, row...)
	}
	return g, nil
}

// At returns the character index at (i, j).
func (g Grid) At(i, j int) int { return g.Slots[i*g.Cols+j] }

// Set stores a character index at (i, j).
func (g Grid) Set(i, j, c int) { g.Slots[i*g.Cols+j] = c }

// Position returns the row and column of character c.
func (g Grid) Position(c int) (i, j int, ok bool) {
	for s, v := range g.Slots {
		if v == c {
			return s / g.Cols, s % g.Cols, true
		}
	}
	return 0, 0, false
}

// Clone returns a deep copy.
func (g Grid) Clone() Grid {
	return Grid{Rows: g.Rows, Cols: g.Cols, Slots: append([]int(nil), g.Slots...)}
}

// Placed returns the number of non-empty slots.
func (g Grid) Placed() int {
	n := 0
	for _, v := range g.Slots {
		if v != Empty {
			n++
		}
	}
	return n
}

// ToRows returns the grid as a slice of rows.
func (g Grid) ToRows() [][]int {
	rows := make([][]int, g.Rows)
	for i := range rows {
		rows[i] = append([]int(nil), g.Slots[i*g.Cols:(i+1)*g.Cols]...)
	}
	return rows
}

// Swap exchanges the contents of two slots.
func (g Grid) Swap(i1, j1, i2, j2 int) {
	a, b := i1*g.Cols+j1, i2*g.Cols+j2
	g.Slots[a], g.Slots[b] = g.Slots[b], g.Slots[a]
}

// InBounds reports whether (i, j) is a slot of the grid.
func (g Grid) InBounds(i, j int) bool {
	return i >= 0 && i < g.Rows && j >= 0 && j < g.Cols
}

// Validate checks that the grid holds every index in [0, n) exactly once
// and nothing else.
func (g Grid) Validate(n int) error {
	if len(g.Slots) != g.Rows*g.Cols {
		return fmt.Errorf("%w: %d slots for %dx%d", ErrInvalidGrid, len(g.Slots), g.Rows, g.Cols)
	}
	seen := make([]bool, n)
	placed := 0
	for s, v := range g.Slots {
		switch {
		case v == Empty:
			continue
		case v < 0 || v >= n:
			return fmt.Errorf("%w: slot %d holds %d, want [0,%d)", ErrInvalidGrid, s, v, n)
		case seen[v]:
			return fmt.Errorf("%w: character %d placed twice", ErrInvalidGrid, v)
		}
		seen[v] = true
		placed++
	}
	if placed != n {
		return fmt.Errorf("%w: %d of %d characters placed", ErrInvalidGrid, placed, n)
	}
	return nil
}

// Distance returns the travel distance between keys (i, j) and (i2, j2).
func Distance(i, j, i2, j2 int) float64 {
	di, dj := i-i2, j-j2
	if di < 0 {
		di = -di
	}
	if dj < 0 {
		dj = -dj
	}
	return math.Sqrt(math.Pow(2, float64(di)) + math.Pow(2, float64(dj)))
}

// distances caches Distance for every pair of slots of a rows×cols grid.
type distances struct {
	size int
	d    []float64
}

func newDistances(rows, cols int) *distances {
	size := rows * cols
	t := &distances{size: size, d: make([]float64, size*size)}
	for p := 0; p < size; p++ {
		for q := 0; q < size; q++ {
			t.d[p*size+q] = Distance(p/cols, p%cols, q/cols, q%cols)
		}
	}
	return t
}

func (t *distances) at(p, q int) float64 { return t.d[p*t.size+q] }
