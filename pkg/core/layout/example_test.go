package layout_test

import (
	"fmt"

	"github.com/matzehuels/keyforge/pkg/core/layout"
	"github.com/matzehuels/keyforge/pkg/core/transition"
)

func ExampleGreedyPlacer() {
	m, _ := transition.New(nil, [][]int{
		{0, 1},
		{1, 0},
	})
	g := layout.GreedyPlacer{}.Place(m)
	fmt.Println(g.ToRows())
	fmt.Printf("%.4f\n", layout.Evaluate(g, m))
	// Output:
	// [[0] [1]]
	// 1.7321
}

func ExampleSelector_Compute() {
	alpha, _ := transition.NewAlphabet("demo", "abcd")
	m, _ := transition.FromText(alpha, "abab\ncdcd\nad")

	res, err := layout.Selector{}.Compute(m, layout.BranchAndBound)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(res.Strategy, res.Grid.Rows, res.Grid.Cols)
	fmt.Println(res.Cost <= res.GreedyCost)
	// Output:
	// branch-and-bound 2 2
	// true
}

func ExampleParseStrategy() {
	for _, name := range []string{"greedy", "qap", "annealing"} {
		s, err := layout.ParseStrategy(name)
		fmt.Println(s, err)
	}
	// Output:
	// greedy <nil>
	// branch-and-bound <nil>
	// Strategy(0) layout: unknown strategy: "annealing"
}
