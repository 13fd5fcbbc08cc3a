// Package render turns keyboards into human- and machine-readable outputs.
//
// # Formats
//
//   - text: a bordered key grid for terminals, drawn with lipgloss
//   - json: the stored keyboard document
//   - dot: Graphviz source with keys pinned to their grid positions and the
//     strongest digraphs drawn as weighted arrows
//   - svg: the dot source laid out in-process with go-graphviz
//   - png, pdf: the svg converted with rsvg-convert
//
// Use [Render] to dispatch on a format name, or call the per-format
// functions directly:
//
//	dot := render.DOT(kb, m, render.Options{TopEdges: 8})
//	svg, err := render.SVG(ctx, dot)
//	pdf, err := render.ToPDF(ctx, svg)
//
// The matrix passed to [DOT] only contributes edges; a nil matrix, or one
// without an alphabet, yields the bare key grid.
//
// # Dependencies
//
// SVG rendering uses [github.com/goccy/go-graphviz] and needs no system
// Graphviz install. PNG and PDF conversion requires librsvg (rsvg-convert).
package render
