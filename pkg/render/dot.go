package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/keyforge/pkg/core/keyboard"
	"github.com/matzehuels/keyforge/pkg/core/transition"
)

// keySpacing is the distance between key centres in inches.
const keySpacing = 1.0

// DOT converts kb to Graphviz source for the neato engine. Keys are pinned
// to their grid positions; the strongest digraphs of m between placed keys
// become arrows whose width scales with the count.
func DOT(kb *keyboard.Keyboard, m *transition.Matrix, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph keyboard {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, width=0.8, height=0.8, fixedsize=true];\n")
	buf.WriteString("  edge [color=\"#2a9d8f\", arrowsize=0.6];\n")
	buf.WriteString("\n")

	pos := make(map[string]string)
	for i, row := range kb.Keys {
		for j, key := range row {
			id := fmt.Sprintf("k%d_%d", i, j)
			at := fmt.Sprintf("%.2f,%.2f!", float64(j)*keySpacing, float64(-i)*keySpacing)
			if key == "" {
				fmt.Fprintf(&buf, "  %s [label=\"\", pos=%q, style=\"rounded,dashed\", color=lightgrey];\n", id, at)
				continue
			}
			fmt.Fprintf(&buf, "  %s [label=%q, pos=%q];\n", id, key, at)
			pos[key] = id
		}
	}

	edges := digraphEdges(m, opts.topEdges())
	if len(edges) > 0 {
		buf.WriteString("\n")
		maxCount := edges[0].Count
		for _, e := range edges {
			from, okFrom := pos[e.from]
			to, okTo := pos[e.to]
			if !okFrom || !okTo {
				continue
			}
			width := 1 + 4*float64(e.Count)/float64(maxCount)
			fmt.Fprintf(&buf, "  %s -> %s [penwidth=%.2f, tooltip=\"%s%s: %d\"];\n", from, to, width, e.from, e.to, e.Count)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

type labelledDigraph struct {
	from, to string
	transition.Digraph
}

func digraphEdges(m *transition.Matrix, k int) []labelledDigraph {
	if m == nil || m.Alphabet() == nil || k == 0 {
		return nil
	}
	chars := m.Alphabet().Chars
	top := m.Top(k)
	out := make([]labelledDigraph, len(top))
	for i, d := range top {
		out[i] = labelledDigraph{from: string(chars[d.From]), to: string(chars[d.To]), Digraph: d}
	}
	return out
}

// SVG lays out DOT source with neato and renders it to SVG.
func SVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-sized root element with one
// that scales to its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
