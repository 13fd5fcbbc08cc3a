package layout

import (
	"math"

	"github.com/matzehuels/keyforge/pkg/core/transition"
)

// DefaultNodeLimit returns the node budget for n characters:
// 1e6 / 2^(n/10 - 2) with integer n/10. Small alphabets get 4e6 nodes,
// n in [20, 30) gets 1e6, and every further ten characters halve it.
func DefaultNodeLimit(n int) int {
	return int(1e6 / math.Pow(2, float64(n/10-2)))
}

// Candidate is a complete layout and its absolute cost ([TotalCost]).
type Candidate struct {
	Grid Grid
	Cost float64
}

// Seed scores a grid as a solver incumbent: the matrix's total off-diagonal
// count times the grid's average cost.
func Seed(m *transition.Matrix, g Grid) Candidate {
	return Candidate{Grid: g.Clone(), Cost: float64(m.Total()) * Evaluate(g, m)}
}

// SolverOptions configures a [Solver].
type SolverOptions struct {
	// NodeLimit caps the number of search nodes. Zero or negative means
	// DefaultNodeLimit(n).
	NodeLimit int

	// Progress, if set, is called every time the incumbent improves.
	Progress func(nodes, pruned int, best float64)
}

// Stats describes a finished search.
type Stats struct {
	Nodes        int  `json:"nodes"`
	Pruned       int  `json:"pruned"`
	Improvements int  `json:"improvements"`
	Limit        int  `json:"limit"`
	Exhausted    bool `json:"exhausted"` // stopped by the node budget
}

// Solver refines an incumbent layout with depth-first branch-and-bound.
//
// Characters are placed into slots 0, 1, 2, ... in row-major order, trying
// the least active characters first. A partial layout is expanded only when
// its lower bound is below the incumbent's cost.
type Solver struct {
	Options SolverOptions
}

// Solve returns the best layout found, which is the incumbent itself when
// nothing cheaper turns up within the budget.
func (s Solver) Solve(m *transition.Matrix, incumbent Candidate) Candidate {
	best, _ := s.SolveStats(m, incumbent)
	return best
}

// SolveStats is like Solve and also reports search statistics.
func (s Solver) SolveStats(m *transition.Matrix, incumbent Candidate) (Candidate, Stats) {
	n := m.Size()
	limit := s.Options.NodeLimit
	if limit <= 0 {
		limit = DefaultNodeLimit(n)
	}
	if n == 0 {
		return incumbent, Stats{Limit: limit}
	}

	e := newEngine(m, limit, incumbent, s.Options.Progress)
	slots := make([]int, e.rows*e.cols)
	for i := range slots {
		slots[i] = Empty
	}
	e.search(slots, 0)

	return e.best, Stats{
		Nodes:        e.nodes,
		Pruned:       e.pruned,
		Improvements: e.improvements,
		Limit:        limit,
		Exhausted:    e.nodes >= limit,
	}
}

// engine holds the state of one Solve call.
type engine struct {
	m          *transition.Matrix
	n          int
	rows, cols int
	dist       *distances
	order      []int  // branching order: ascending activity
	avail      []bool // by character index
	limit      int
	progress   func(nodes, pruned int, best float64)

	nodes        int
	pruned       int
	improvements int
	best         Candidate

	// scratch for the lower bound
	unplaced []int
	tin      []float64
	dsorted  [][]float64
}

func newEngine(m *transition.Matrix, limit int, incumbent Candidate, progress func(int, int, float64)) *engine {
	n := m.Size()
	rows, cols := Shape(n)
	e := &engine{
		m:        m,
		n:        n,
		rows:     rows,
		cols:     cols,
		dist:     newDistances(rows, cols),
		order:    byActivity(m, true),
		avail:    make([]bool, n),
		limit:    limit,
		progress: progress,
		nodes:    1,
		best:     incumbent,
		unplaced: make([]int, 0, n),
		tin:      make([]float64, 0, n),
		dsorted:  make([][]float64, n),
	}
	for i := range e.avail {
		e.avail[i] = true
	}
	for i := range e.dsorted {
		e.dsorted[i] = make([]float64, 0, n)
	}
	return e
}

// search fills slot d. slots is owned by this call.
func (e *engine) search(slots []int, d int) {
	if e.nodes >= e.limit {
		return
	}

	if d == e.n-1 {
		for _, c := range e.order {
			if e.avail[c] {
				slots[d] = c
				break
			}
		}
		cost, _ := accumulate(slots, e.n, e.m, e.dist)
		if cost < e.best.Cost {
			e.record(slots, cost)
		}
		return
	}

	for _, c := range e.order {
		if !e.avail[c] {
			continue
		}
		slots[d] = c
		e.avail[c] = false
		if e.bound(slots, d) < e.best.Cost {
			child := append([]int(nil), slots...)
			e.nodes++
			e.search(child, d+1)
		} else {
			e.pruned++
		}
		e.avail[c] = true
	}
	slots[d] = Empty
}

func (e *engine) record(slots []int, cost float64) {
	e.best = Candidate{
		Grid: Grid{Rows: e.rows, Cols: e.cols, Slots: append([]int(nil), slots...)},
		Cost: cost,
	}
	e.improvements++
	if e.progress != nil {
		e.progress(e.nodes, e.pruned, cost)
	}
}
