package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/keyforge/pkg/core/transition"
	pkgio "github.com/matzehuels/keyforge/pkg/io"
	"github.com/matzehuels/keyforge/pkg/pipeline"
	"github.com/matzehuels/keyforge/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output     string  // output file (single format) or base path (multiple)
	formats    string  // comma-separated output formats
	file       string  // keyboard JSON file instead of a stored keyboard
	matrixFile string  // matrix JSON file for edges when rendering a file
	topEdges   int     // strongest digraphs drawn as arrows
	scale      float64 // PNG scale factor
	noCache    bool
}

// renderCommand creates the render command for drawing keyboards.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [keyboard]",
		Short: "Render a keyboard as text, JSON, DOT, SVG, PNG or PDF",
		Long: `Render a keyboard.

Text output is a table of the keys. Graph formats (dot, svg, png, pdf) pin
every key to its position and draw the strongest digraphs of the keyboard's
matrix as arrows. PNG and PDF need rsvg-convert on the PATH.

Render a stored keyboard by name, or a keyboard JSON file (as written by
"layout") with --file.`,
		Example: `  keyforge render mine
  keyforge render mine -f svg,png -o mine
  keyforge render --file english.keyboard.json --matrix-file english.json -f svg`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (len(args) == 1) == (opts.file != "") {
				return fmt.Errorf("give either a keyboard name or --file")
			}
			formats := parseFormats(opts.formats)
			if err := pipeline.ValidateFormats(formats); err != nil {
				return err
			}
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return c.runRender(cmd.Context(), name, formats, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): text (default), json, dot, svg, png, pdf (comma-separated)")
	cmd.Flags().StringVar(&opts.file, "file", "", "render a keyboard JSON file instead of a stored keyboard")
	cmd.Flags().StringVar(&opts.matrixFile, "matrix-file", "", "matrix JSON file supplying digraph edges (with --file)")
	cmd.Flags().IntVar(&opts.topEdges, "edges", render.DefaultTopEdges, "number of digraph arrows to draw (negative for none)")
	cmd.Flags().Float64Var(&opts.scale, "scale", render.DefaultScale, "PNG scale factor")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, name string, formats []string, opts *renderOpts) error {
	popts := pipeline.Options{
		Formats:  formats,
		TopEdges: opts.topEdges,
		Scale:    opts.scale,
		Logger:   c.Logger,
	}

	var (
		artifacts map[string][]byte
		err       error
	)
	prog := newProgress(loggerFromContext(ctx))
	if opts.file != "" {
		artifacts, err = c.renderFile(ctx, opts, popts)
		name = strings.TrimSuffix(filepath.Base(opts.file), filepath.Ext(opts.file))
		name = strings.TrimSuffix(name, ".keyboard")
	} else {
		artifacts, err = c.renderStored(ctx, name, opts.noCache, popts)
	}
	if err != nil {
		return err
	}
	prog.done("Rendered keyboard", "name", name, "formats", strings.Join(formats, ","))

	// A lone text rendering without -o goes to the terminal.
	if len(formats) == 1 && formats[0] == render.FormatText && opts.output == "" {
		fmt.Print(string(artifacts[render.FormatText]))
		return nil
	}

	base := opts.output
	if base == "" {
		base = name
	}
	var paths []string
	for _, f := range formats {
		path := base
		if len(formats) > 1 || opts.output == "" {
			path = strings.TrimSuffix(base, "."+f) + "." + extension(f)
		}
		if err := os.WriteFile(path, artifacts[f], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}

	printSuccess("Rendered %s", StyleValue.Render(name))
	for _, p := range paths {
		printFile(p)
	}
	return nil
}

func (c *CLI) renderStored(ctx context.Context, name string, noCache bool, opts pipeline.Options) (map[string][]byte, error) {
	ws, err := c.openWorkspace(ctx, noCache)
	if err != nil {
		return nil, err
	}
	defer ws.Close()
	return ws.RenderKeyboard(ctx, name, opts)
}

func (c *CLI) renderFile(ctx context.Context, opts *renderOpts, popts pipeline.Options) (map[string][]byte, error) {
	kb, err := pkgio.ImportKeyboard(opts.file)
	if err != nil {
		return nil, fmt.Errorf("load keyboard %s: %w", opts.file, err)
	}
	var m *transition.Matrix
	if opts.matrixFile != "" {
		if m, err = pkgio.ImportMatrix(opts.matrixFile); err != nil {
			return nil, fmt.Errorf("load matrix %s: %w", opts.matrixFile, err)
		}
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return nil, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	return runner.Render(ctx, kb, m, popts)
}

// extension maps a format to its file extension.
func extension(format string) string {
	if format == render.FormatText {
		return "txt"
	}
	return format
}
