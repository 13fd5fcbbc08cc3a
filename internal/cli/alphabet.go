package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/keyforge/pkg/core/transition"
)

// alphabetCommand creates the alphabet management command.
func (c *CLI) alphabetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "alphabet",
		Aliases: []string{"alpha"},
		Short:   "Manage character sets",
		Long: `Manage the named character sets keyboards are built from.

Characters are stored upper-cased and must be unique. An alphabet cannot be
edited or deleted while a matrix still uses it.`,
	}

	cmd.AddCommand(c.alphabetAddCommand())
	cmd.AddCommand(c.alphabetListCommand())
	cmd.AddCommand(c.alphabetShowCommand())
	cmd.AddCommand(c.alphabetEditCommand("add-chars", "Add characters to an alphabet", true))
	cmd.AddCommand(c.alphabetEditCommand("remove-chars", "Remove characters from an alphabet", false))
	cmd.AddCommand(c.alphabetDeleteCommand())

	return cmd
}

func (c *CLI) alphabetAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "add <name> <chars>",
		Short:   "Create an alphabet",
		Example: `  keyforge alphabet add latin abcdefghijklmnopqrstuvwxyz`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.openWorkspace(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer ws.Close()

			a, err := ws.CreateAlphabet(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			printSuccess("Created alphabet %s", StyleValue.Render(a.Name))
			printAlphabet(a)
			printNewline()
			printNextStep("Build a matrix", fmt.Sprintf("%s matrix text <name> --alphabet %s <corpus.txt>", appName, a.Name))
			return nil
		},
	}
}

func (c *CLI) alphabetListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List alphabets",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.openWorkspace(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer ws.Close()

			alphas, err := ws.Alphabets(cmd.Context())
			if err != nil {
				return err
			}
			if len(alphas) == 0 {
				printInfo("No alphabets yet")
				return nil
			}
			for _, a := range alphas {
				printKeyValue(a.Name, a.String())
			}
			return nil
		},
	}
}

func (c *CLI) alphabetShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show an alphabet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.openWorkspace(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer ws.Close()

			a, err := ws.Alphabet(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printKeyValue("Name", a.Name)
			printAlphabet(a)
			return nil
		},
	}
}

func (c *CLI) alphabetEditCommand(use, short string, add bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <name> <chars>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.openWorkspace(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer ws.Close()

			edit := ws.RemoveChars
			if add {
				edit = ws.AddChars
			}
			a, err := edit(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			printSuccess("Updated alphabet %s", StyleValue.Render(a.Name))
			printAlphabet(a)
			return nil
		},
	}
}

func (c *CLI) alphabetDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <name>",
		Aliases: []string{"rm"},
		Short:   "Delete an alphabet",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.openWorkspace(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer ws.Close()

			if err := ws.DeleteAlphabet(cmd.Context(), args[0]); err != nil {
				return err
			}
			printSuccess("Deleted alphabet %s", StyleValue.Render(args[0]))
			return nil
		},
	}
}

func printAlphabet(a *transition.Alphabet) {
	printKeyValue("Characters", a.String())
	printKeyValue("Size", StyleNumber.Render(strconv.Itoa(a.Size())))
}
