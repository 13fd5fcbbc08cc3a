package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/keyforge/pkg/core/transition"
	pkgio "github.com/matzehuels/keyforge/pkg/io"
	"github.com/matzehuels/keyforge/pkg/pipeline"
	"github.com/matzehuels/keyforge/pkg/workspace"
)

// defaultTopDigraphs is how many digraphs "matrix show" lists.
const defaultTopDigraphs = 10

// matrixCommand creates the transition matrix command.
func (c *CLI) matrixCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "matrix",
		Short: "Build and manage transition matrices",
		Long: `Build and manage transition matrices.

A transition matrix counts how often each character of an alphabet is
followed by each other one. Matrices are built from plain text, from a
word-frequency list ("word count" per line) or imported from JSON. Use "-"
as the file name to read standard input.`,
	}

	cmd.AddCommand(c.matrixSourceCommand("text", "Build a matrix from a text corpus", sourceText))
	cmd.AddCommand(c.matrixSourceCommand("words", "Build a matrix from a word-frequency list", sourceWords))
	cmd.AddCommand(c.matrixSourceCommand("import", "Import a matrix from JSON", sourceJSON))
	cmd.AddCommand(c.matrixExportCommand())
	cmd.AddCommand(c.matrixListCommand())
	cmd.AddCommand(c.matrixShowCommand())
	cmd.AddCommand(c.matrixDeleteCommand())

	return cmd
}

// sourceReader turns an input stream into a pipeline source.
type sourceReader func(r io.Reader) (pipeline.Source, error)

func sourceText(r io.Reader) (pipeline.Source, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return pipeline.Source{}, err
	}
	return pipeline.Source{Text: string(data)}, nil
}

func sourceWords(r io.Reader) (pipeline.Source, error) {
	words, err := transition.ParseWordFrequencies(r)
	if err != nil {
		return pipeline.Source{}, err
	}
	return pipeline.Source{Words: words}, nil
}

func sourceJSON(r io.Reader) (pipeline.Source, error) {
	m, err := pkgio.ReadMatrix(r)
	if err != nil {
		return pipeline.Source{}, err
	}
	return pipeline.Source{Rows: m.Rows()}, nil
}

// openInput opens path for reading, or stdin for "-".
func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

func (c *CLI) matrixSourceCommand(use, short string, read sourceReader) *cobra.Command {
	var alphabet string

	cmd := &cobra.Command{
		Use:   use + " <name> <file>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			name, path := args[0], args[1]

			f, err := openInput(path)
			if err != nil {
				return fmt.Errorf("open %s: %w", path, err)
			}
			src, err := read(f)
			f.Close()
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}

			ws, err := c.openWorkspace(ctx, true)
			if err != nil {
				return err
			}
			defer ws.Close()

			prog := newProgress(loggerFromContext(ctx))
			rec, err := ws.CreateMatrix(ctx, name, alphabet, src)
			if err != nil {
				return err
			}
			prog.done("Built matrix", "name", name, "source", rec.Source)

			printSuccess("Created matrix %s", StyleValue.Render(rec.Name))
			printMatrix(rec, 0)
			printNewline()
			printNextStep("Generate a keyboard", fmt.Sprintf("%s keyboard generate <name> --matrix %s", appName, rec.Name))
			return nil
		},
	}

	cmd.Flags().StringVarP(&alphabet, "alphabet", "a", "", "alphabet the matrix is built over (required)")
	_ = cmd.MarkFlagRequired("alphabet")
	return cmd
}

func (c *CLI) matrixExportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <name>",
		Short: "Write a matrix as JSON",
		Long: `Write a stored matrix as JSON, in the format read by "matrix import" and
"layout".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.openWorkspace(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer ws.Close()

			rec, err := ws.Matrix(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := pkgio.ExportMatrix(rec.Matrix, output); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			if output != "-" {
				printSuccess("Exported matrix %s", StyleValue.Render(rec.Name))
				printFile(output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "-", "output file")
	return cmd
}

func (c *CLI) matrixListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List matrices",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.openWorkspace(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer ws.Close()

			recs, err := ws.Matrices(cmd.Context())
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				printInfo("No matrices yet")
				return nil
			}
			for _, rec := range recs {
				printKeyValue(rec.Name, fmt.Sprintf("%s · %d chars · %d digraphs · %s",
					rec.Alphabet, rec.Matrix.Size(), rec.Matrix.Total(), rec.Source))
			}
			return nil
		},
	}
}

func (c *CLI) matrixShowCommand() *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Show a matrix and its most frequent digraphs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.openWorkspace(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer ws.Close()

			rec, err := ws.Matrix(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printKeyValue("Name", rec.Name)
			printMatrix(rec, top)
			return nil
		},
	}

	cmd.Flags().IntVarP(&top, "top", "n", defaultTopDigraphs, "number of digraphs to list")
	return cmd
}

func (c *CLI) matrixDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <name>",
		Aliases: []string{"rm"},
		Short:   "Delete a matrix",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.openWorkspace(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer ws.Close()

			if err := ws.DeleteMatrix(cmd.Context(), args[0]); err != nil {
				return err
			}
			printSuccess("Deleted matrix %s", StyleValue.Render(args[0]))
			return nil
		},
	}
}

func printMatrix(rec *workspace.MatrixRecord, top int) {
	m := rec.Matrix
	printKeyValue("Alphabet", rec.Alphabet)
	printKeyValue("Source", rec.Source)
	printKeyValue("Size", StyleNumber.Render(strconv.Itoa(m.Size())))
	printKeyValue("Digraphs", StyleNumber.Render(strconv.Itoa(m.Total())))
	if top <= 0 {
		return
	}
	alpha := m.Alphabet()
	for _, d := range m.Top(top) {
		printDetail("%s%s  %d", digraphLabel(alpha, d.From), digraphLabel(alpha, d.To), d.Count)
	}
}

func digraphLabel(alpha *transition.Alphabet, i int) string {
	if alpha == nil || i >= alpha.Size() {
		return fmt.Sprintf("[%d]", i)
	}
	return string(alpha.Chars[i])
}
