// Package layout assigns the characters of a transition matrix to the keys
// of a keyboard grid so that frequent digraphs end up close together.
//
// # The Assignment Problem
//
// Every character gets exactly one key. The cost of a layout is the average
// distance travelled per digraph, weighted by how often each digraph occurs
// (see [Evaluate]). Minimizing it is an instance of the Quadratic Assignment
// Problem, which is NP-hard, so the package pairs a fast heuristic with a
// budgeted exact search:
//
//   - [GreedyPlacer]: most active characters first, spiralling outward from
//     the centre of the grid
//   - [Solver]: depth-first branch-and-bound seeded with the greedy layout,
//     pruned with a Gilmore–Lawler style lower bound
//
// # Grid Shape
//
// For n characters the grid has floor(sqrt(n)) columns and ceil(n/cols)
// rows (see [Shape]). Slots are filled row-major by the solver; slots past
// the n-th stay [Empty].
//
// # Distance
//
// Key distance is sqrt(2^|Δrow| + 2^|Δcol|). Two keys on the same row one
// column apart are sqrt(3) apart; the same key is never compared with itself.
//
// # Search Budget
//
// The solver counts explored nodes and stops once [DefaultNodeLimit] (or
// [SolverOptions.NodeLimit]) is reached, returning the best layout found so
// far. The search is single-threaded and deterministic: the same matrix and
// budget always produce the same grid.
//
// # Usage
//
//	sel := layout.Selector{}
//	res, err := sel.Compute(m, layout.BranchAndBound)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Grid.ToRows(), res.Cost)
//
// For progress reporting:
//
//	sel := layout.Selector{Solver: layout.SolverOptions{
//	    NodeLimit: 200_000,
//	    Progress: func(nodes, pruned int, best float64) {
//	        fmt.Printf("nodes=%d pruned=%d best=%.2f\n", nodes, pruned, best)
//	    },
//	}}
package layout
