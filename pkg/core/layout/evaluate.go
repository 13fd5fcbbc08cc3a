package layout

import "github.com/matzehuels/keyforge/pkg/core/transition"

// Evaluate returns the average key distance per digraph: the sum of
// Distance(p, q) * T[char(q)][char(p)] over every ordered pair of distinct
// non-empty slots, divided by the sum of those counts. It returns 0 when no
// digraph is counted.
//
// Every non-empty slot must hold an index below m.Size().
func Evaluate(g Grid, m *transition.Matrix) float64 {
	sum, transits := accumulate(g.Slots, len(g.Slots), m, newDistances(g.Rows, g.Cols))
	if transits == 0 {
		return 0
	}
	return sum / float64(transits)
}

// TotalCost returns the undivided sum behind [Evaluate].
func TotalCost(g Grid, m *transition.Matrix) float64 {
	sum, _ := accumulate(g.Slots, len(g.Slots), m, newDistances(g.Rows, g.Cols))
	return sum
}

// accumulate walks the slots [0, limit) row-major. The solver calls it with
// a prefix of a partially filled grid, so its partial sums match the full
// evaluation term for term.
func accumulate(slots []int, limit int, m *transition.Matrix, dist *distances) (sum float64, transits int) {
	for p := 0; p < limit; p++ {
		a := slots[p]
		if a == Empty {
			continue
		}
		for q := 0; q < limit; q++ {
			b := slots[q]
			if b == Empty || p == q {
				continue
			}
			t := m.At(b, a)
			sum += dist.at(p, q) * float64(t)
			transits += t
		}
	}
	return sum, transits
}
