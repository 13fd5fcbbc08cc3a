package render

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/matzehuels/keyforge/pkg/core/keyboard"
	"github.com/matzehuels/keyforge/pkg/core/transition"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
)

// Formats lists every supported format.
var Formats = []string{FormatText, FormatJSON, FormatDOT, FormatSVG, FormatPNG, FormatPDF}

const (
	// DefaultTopEdges is the number of digraphs drawn when Options.TopEdges is zero.
	DefaultTopEdges = 12

	// DefaultScale is the PNG scale factor when Options.Scale is zero.
	DefaultScale = 2.0
)

// ErrUnsupportedFormat is returned for unknown format names.
var ErrUnsupportedFormat = errors.New("render: unsupported format")

// Options configures rendering.
type Options struct {
	// TopEdges is the number of strongest digraphs drawn in dot, svg, png
	// and pdf output. Zero means DefaultTopEdges; negative draws none.
	TopEdges int

	// Scale is the PNG resolution factor.
	Scale float64
}

func (o Options) topEdges() int {
	if o.TopEdges == 0 {
		return DefaultTopEdges
	}
	if o.TopEdges < 0 {
		return 0
	}
	return o.TopEdges
}

// PNGScale returns Scale, or DefaultScale when it is unset.
func (o Options) PNGScale() float64 {
	if o.Scale <= 0 {
		return DefaultScale
	}
	return o.Scale
}

// ValidateFormat checks that a format is supported.
func ValidateFormat(format string) error {
	for _, f := range Formats {
		if f == format {
			return nil
		}
	}
	return fmt.Errorf("%w: %q (must be one of: %s)", ErrUnsupportedFormat, format, strings.Join(Formats, ", "))
}

// Render produces kb in the given format. m supplies digraph edges for the
// graphical formats and may be nil.
func Render(ctx context.Context, kb *keyboard.Keyboard, m *transition.Matrix, format string, opts Options) ([]byte, error) {
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}

	switch format {
	case FormatText:
		return []byte(Text(kb) + "\n"), nil
	case FormatJSON:
		return json.MarshalIndent(kb, "", "  ")
	case FormatDOT:
		return []byte(DOT(kb, m, opts)), nil
	}

	svg, err := SVG(ctx, DOT(kb, m, opts))
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatPNG:
		return ToPNG(ctx, svg, opts.PNGScale())
	case FormatPDF:
		return ToPDF(ctx, svg)
	default:
		return svg, nil
	}
}
