package cli

import (
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/keyforge/pkg/core/keyboard"
	pkgio "github.com/matzehuels/keyforge/pkg/io"
	"github.com/matzehuels/keyforge/pkg/render"
)

// keyboardCommand creates the keyboard command.
func (c *CLI) keyboardCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "keyboard",
		Aliases: []string{"kb"},
		Short:   "Generate and manage keyboards",
		Long: `Generate and manage keyboards.

A keyboard is the layout found for a matrix, with characters on the keys.
Once generated it is independent of the matrix: keys can be swapped by hand
and the result re-scored against any matrix over the same alphabet.`,
	}

	cmd.AddCommand(c.keyboardGenerateCommand())
	cmd.AddCommand(c.keyboardListCommand())
	cmd.AddCommand(c.keyboardShowCommand())
	cmd.AddCommand(c.keyboardSwapCommand())
	cmd.AddCommand(c.keyboardEvaluateCommand())
	cmd.AddCommand(c.keyboardExportCommand())
	cmd.AddCommand(c.keyboardDeleteCommand())
	cmd.AddCommand(c.keyboardBrowseCommand())

	return cmd
}

func (c *CLI) keyboardGenerateCommand() *cobra.Command {
	var (
		matrix string
		flags  layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "generate <name>",
		Short: "Lay out a matrix and store the keyboard",
		Long: `Lay out a stored matrix and store the result as a keyboard.

The greedy strategy places the most active characters in a spiral around
the centre. Branch-and-bound starts from that placement and searches for a
cheaper one until the search space is exhausted or the node limit is
reached. Layouts are cached by matrix content, so generating again for an
unchanged matrix is instant unless --refresh is given.`,
		Example: `  keyforge keyboard generate mine --matrix english
  keyforge keyboard generate quick --matrix english --strategy greedy`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts, err := c.layoutOptions(flags)
			if err != nil {
				return err
			}
			ws, err := c.openWorkspace(ctx, flags.noCache)
			if err != nil {
				return err
			}
			defer ws.Close()

			spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Computing %s layout...", opts.Strategy))
			opts.Progress = solverProgress(loggerFromContext(ctx), spinner)
			spinner.Start()

			gen, err := ws.GenerateKeyboard(ctx, args[0], matrix, opts)
			if err != nil {
				spinner.StopWithError("Layout failed")
				return err
			}
			spinner.Stop()

			res := gen.Layout
			loggerFromContext(ctx).Debug("search finished",
				"nodes", res.Stats.Nodes, "pruned", res.Stats.Pruned, "budget_hit", res.Stats.Exhausted)

			printSuccess("Generated keyboard %s", StyleValue.Render(gen.Keyboard.Name))
			fmt.Println(render.Text(gen.Keyboard))
			printStats(gen.Keyboard.Rows()*gen.Keyboard.Cols(), res.Cost, res.GreedyCost, gen.Cached)
			if res.Stats.Exhausted {
				printWarning("Node limit reached; the layout may not be optimal")
			}
			printNewline()
			printNextStep("Render", fmt.Sprintf("%s render %s -f svg", appName, gen.Keyboard.Name))
			return nil
		},
	}

	cmd.Flags().StringVarP(&matrix, "matrix", "m", "", "matrix to lay out (required)")
	_ = cmd.MarkFlagRequired("matrix")
	addLayoutFlags(cmd, &flags)
	return cmd
}

// addLayoutFlags registers the flags shared by keyboard generate and layout.
func addLayoutFlags(cmd *cobra.Command, f *layoutFlags) {
	cmd.Flags().StringVarP(&f.strategy, "strategy", "s", "", "layout strategy: branch-and-bound (default), greedy")
	cmd.Flags().IntVar(&f.nodeLimit, "node-limit", 0, "branch-and-bound node budget (0 = size-based default)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute even when a cached layout exists")
}

func (c *CLI) keyboardListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List keyboards",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.openWorkspace(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer ws.Close()

			kbs, err := ws.Keyboards(cmd.Context())
			if err != nil {
				return err
			}
			if len(kbs) == 0 {
				printInfo("No keyboards yet")
				return nil
			}
			for _, kb := range kbs {
				printKeyValue(kb.Name, fmt.Sprintf("%s · %dx%d · cost %s", kb.Alphabet, kb.Rows(), kb.Cols(), formatCost(kb.Cost)))
			}
			return nil
		},
	}
}

func (c *CLI) keyboardShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "show <name>",
		Short:             "Show a keyboard",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeKeyboards,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.openWorkspace(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer ws.Close()

			kb, err := ws.Keyboard(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printKeyboard(kb)
			return nil
		},
	}
}

func (c *CLI) keyboardSwapCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "swap <name> <row1> <col1> <row2> <col2>",
		Short: "Swap two keys",
		Long: `Swap two keys of a stored keyboard. Rows and columns count from 0.
The cost is recomputed when the keyboard's matrix still exists.`,
		Example: `  keyforge keyboard swap mine 0 0 2 3`,
		Args:    cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos := make([]int, 4)
			for i, s := range args[1:] {
				v, err := strconv.Atoi(s)
				if err != nil {
					return fmt.Errorf("position %q is not a number", s)
				}
				pos[i] = v
			}

			ws, err := c.openWorkspace(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer ws.Close()

			kb, err := ws.SwapKeys(cmd.Context(), args[0], pos[0], pos[1], pos[2], pos[3])
			if err != nil {
				return err
			}
			printSuccess("Swapped (%d,%d) and (%d,%d)", pos[0], pos[1], pos[2], pos[3])
			printKeyboard(kb)
			return nil
		},
	}
}

func (c *CLI) keyboardEvaluateCommand() *cobra.Command {
	var matrix string

	cmd := &cobra.Command{
		Use:   "evaluate <name>",
		Short: "Score a keyboard against a matrix",
		Long: `Score a keyboard against a matrix. Without --matrix the keyboard is scored
against the matrix it was generated from.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeKeyboards,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.openWorkspace(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer ws.Close()

			if matrix == "" {
				kb, err := ws.Keyboard(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				matrix = kb.Matrix
			}
			cost, err := ws.EvaluateKeyboard(cmd.Context(), args[0], matrix)
			if err != nil {
				return err
			}
			printKeyValue("Keyboard", args[0])
			printKeyValue("Matrix", matrix)
			printKeyValue("Cost", StyleNumber.Render(formatCost(cost)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&matrix, "matrix", "m", "", "matrix to score against")
	return cmd
}

func (c *CLI) keyboardExportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:               "export <name>",
		Short:             "Write a keyboard as JSON",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeKeyboards,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.openWorkspace(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer ws.Close()

			kb, err := ws.Keyboard(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := pkgio.ExportKeyboard(kb, output); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			if output != "-" {
				printSuccess("Exported keyboard %s", StyleValue.Render(kb.Name))
				printFile(output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "-", "output file")
	return cmd
}

func (c *CLI) keyboardDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "delete <name>",
		Aliases:           []string{"rm"},
		Short:             "Delete a keyboard",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeKeyboards,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.openWorkspace(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer ws.Close()

			if err := ws.DeleteKeyboard(cmd.Context(), args[0]); err != nil {
				return err
			}
			printSuccess("Deleted keyboard %s", StyleValue.Render(args[0]))
			return nil
		},
	}
}

func (c *CLI) keyboardBrowseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Pick a stored keyboard interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.openWorkspace(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer ws.Close()

			kbs, err := ws.Keyboards(cmd.Context())
			if err != nil {
				return err
			}
			if len(kbs) == 0 {
				printInfo("No keyboards yet")
				return nil
			}

			final, err := tea.NewProgram(NewKeyboardListModel(kbs), tea.WithContext(cmd.Context())).Run()
			if err != nil {
				return fmt.Errorf("browse: %w", err)
			}
			if m, ok := final.(KeyboardListModel); ok && m.Selected != nil {
				printKeyboard(m.Selected)
			}
			return nil
		},
	}
}

func printKeyboard(kb *keyboard.Keyboard) {
	printKeyValue("Name", kb.Name)
	printKeyValue("Alphabet", kb.Alphabet)
	if kb.Matrix != "" {
		printKeyValue("Matrix", kb.Matrix)
	}
	if kb.Strategy != 0 {
		printKeyValue("Strategy", kb.Strategy.String())
	}
	printKeyValue("Cost", StyleNumber.Render(formatCost(kb.Cost)))
	fmt.Println(render.Text(kb))
}
