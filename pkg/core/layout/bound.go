package layout

import (
	"math"
	"sort"
)

// bound returns a lower bound on the cost of any completion of the partial
// layout whose slots [0, d] are filled. The character at slot d must already
// be marked unavailable.
//
// The bound is the exact cost among placed characters plus, for each
// unplaced character, the cheapest free slot it could take. A slot's price
// combines its exact interaction with the placed characters and the best
// case for interactions among the unplaced ones: the character's incoming
// counts sorted ascending paired with the slot's distances sorted
// descending.
func (e *engine) bound(slots []int, d int) float64 {
	placed, _ := accumulate(slots, d+1, e.m, e.dist)
	if d == e.n-1 {
		return placed
	}
	return placed + e.completionBound(slots, d)
}

func (e *engine) completionBound(slots []int, d int) float64 {
	unplaced := e.unplaced[:0]
	for _, c := range e.order {
		if e.avail[c] {
			unplaced = append(unplaced, c)
		}
	}
	e.unplaced = unplaced
	r := len(unplaced)
	first := d + 1 // free slots are [first, first+r)

	for l := 0; l < r; l++ {
		row := e.dsorted[l][:0]
		for o := 0; o < r; o++ {
			if o != l {
				row = append(row, e.dist.at(first+l, first+o))
			}
		}
		sort.Sort(sort.Reverse(sort.Float64Slice(row)))
		e.dsorted[l] = row
	}

	total := 0.0
	for k, ck := range unplaced {
		tin := e.tin[:0]
		for j, cj := range unplaced {
			if j != k {
				tin = append(tin, float64(e.m.At(cj, ck)))
			}
		}
		sort.Float64s(tin)
		e.tin = tin

		cheapest := math.Inf(1)
		for l := 0; l < r; l++ {
			price := 0.0
			for p := 0; p <= d; p++ {
				cp := slots[p]
				price += e.dist.at(p, first+l) * float64(e.m.At(ck, cp)+e.m.At(cp, ck))
			}
			for x, t := range tin {
				price += t * e.dsorted[l][x]
			}
			if price < cheapest {
				cheapest = price
			}
		}
		total += cheapest
	}
	return total
}
