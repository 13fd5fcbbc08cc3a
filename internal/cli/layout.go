package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/keyforge/pkg/core/keyboard"
	"github.com/matzehuels/keyforge/pkg/core/layout"
	"github.com/matzehuels/keyforge/pkg/core/transition"
	pkgio "github.com/matzehuels/keyforge/pkg/io"
	"github.com/matzehuels/keyforge/pkg/pipeline"
	"github.com/matzehuels/keyforge/pkg/render"
)

// layoutCommand creates the layout command for one-shot layouts of a matrix file.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output string
		flags  layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [matrix.json]",
		Short: "Compute a layout for a matrix file",
		Long: `Compute a layout for a matrix file without touching the workspace.

The input is a matrix in the JSON format written by "matrix export". The
result is written as a keyboard JSON file (default: <input>.keyboard.json)
that "render --file" accepts. Matrices without an alphabet are labelled
with their indices.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.layoutOptions(flags)
			if err != nil {
				return err
			}
			return c.runLayout(cmd.Context(), args[0], output, flags.noCache, opts)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.keyboard.json)")
	addLayoutFlags(cmd, &flags)
	return cmd
}

// runLayout loads the matrix, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input, output string, noCache bool, opts pipeline.Options) error {
	m, err := pkgio.ImportMatrix(input)
	if err != nil {
		return fmt.Errorf("load matrix %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Computing %s layout...", opts.Strategy))
	opts.Progress = solverProgress(c.Logger, spinner)
	spinner.Start()

	res, cacheHit, err := runner.ComputeLayoutWithCacheInfo(ctx, m, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	name := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	kb, err := labelLayout(name, m.Alphabet(), res)
	if err != nil {
		return err
	}

	outputPath := output
	if outputPath == "" {
		outputPath = strings.TrimSuffix(input, filepath.Ext(input)) + ".keyboard.json"
	}
	if err := pkgio.ExportKeyboard(kb, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	fmt.Println(render.Text(kb))
	printFile(outputPath)
	printStats(m.Size(), res.Cost, res.GreedyCost, cacheHit)
	printNewline()
	printNextStep("Render", fmt.Sprintf("%s render --file %s -f svg", appName, outputPath))

	return nil
}

// labelLayout turns a layout result into a keyboard. Without an alphabet
// the keys carry the character indices.
func labelLayout(name string, alpha *transition.Alphabet, res layout.Result) (*keyboard.Keyboard, error) {
	var kb *keyboard.Keyboard
	if alpha != nil {
		labelled, err := keyboard.New(name, alpha, res.Grid)
		if err != nil {
			return nil, err
		}
		kb = labelled
	} else {
		now := time.Now().UTC()
		kb = &keyboard.Keyboard{Name: name, CreatedAt: now, UpdatedAt: now}
		for _, row := range res.Grid.ToRows() {
			keys := make([]string, len(row))
			for j, idx := range row {
				if idx != layout.Empty {
					keys[j] = strconv.Itoa(idx)
				}
			}
			kb.Keys = append(kb.Keys, keys)
		}
	}
	kb.Strategy = res.Strategy
	kb.Cost = res.Cost
	return kb, nil
}
