package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/keyforge/pkg/core/layout"
	"github.com/matzehuels/keyforge/pkg/core/transition"
	"github.com/matzehuels/keyforge/pkg/observability"
)

// =============================================================================
// Layout Generation
// =============================================================================

// ComputeLayout places the characters of m with the strategy in opts,
// without caching. It is the uncached core of [Runner.ComputeLayout].
func ComputeLayout(ctx context.Context, m *transition.Matrix, opts Options) (res layout.Result, err error) {
	if err := opts.ValidateForLayout(); err != nil {
		return layout.Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return layout.Result{}, err
	}

	strategy := opts.Strategy.String()
	size := 0
	if m != nil {
		size = m.Size()
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, strategy, size)
	start := time.Now()
	defer func() {
		hooks.OnLayoutComplete(ctx, strategy, res.Stats.Nodes, time.Since(start), err)
	}()

	sel := layout.Selector{
		Solver: layout.SolverOptions{
			NodeLimit: opts.NodeLimit,
			Progress:  opts.Progress,
		},
	}
	res, err = sel.Compute(m, opts.Strategy)
	if err != nil {
		return layout.Result{}, err
	}

	opts.Logger.Debug("placed characters",
		"strategy", strategy,
		"size", size,
		"greedy_cost", res.GreedyCost,
		"cost", res.Cost,
		"nodes", res.Stats.Nodes,
		"pruned", res.Stats.Pruned)
	return res, nil
}
