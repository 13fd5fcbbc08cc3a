package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/matzehuels/keyforge/pkg/core/transition"
	"github.com/matzehuels/keyforge/pkg/observability"
)

// Source names the input a matrix is built from. Exactly one field must be set.
type Source struct {
	Text  string                     `json:"text,omitempty"`
	Words []transition.WordFrequency `json:"words,omitempty"`
	Rows  [][]int                    `json:"rows,omitempty"`
}

// Kind returns "text", "words" or "rows", or "" when no field is set.
func (s Source) Kind() string {
	switch {
	case s.Text != "":
		return "text"
	case len(s.Words) > 0:
		return "words"
	case len(s.Rows) > 0:
		return "rows"
	default:
		return ""
	}
}

func (s Source) count() int {
	n := 0
	if s.Text != "" {
		n++
	}
	if len(s.Words) > 0 {
		n++
	}
	if len(s.Rows) > 0 {
		n++
	}
	return n
}

// ErrAmbiguousSource is returned when a Source sets more than one input.
var ErrAmbiguousSource = errors.New("exactly one of text, words or rows is required")

// Ingest builds a transition matrix over alpha from src.
func Ingest(ctx context.Context, alpha *transition.Alphabet, src Source) (m *transition.Matrix, err error) {
	if src.count() != 1 {
		if src.count() == 0 {
			return nil, transition.ErrEmptyInput
		}
		return nil, ErrAmbiguousSource
	}

	kind := src.Kind()
	hooks := observability.Pipeline()
	hooks.OnIngestStart(ctx, kind)
	start := time.Now()
	defer func() {
		size := 0
		if m != nil {
			size = m.Size()
		}
		hooks.OnIngestComplete(ctx, kind, size, time.Since(start), err)
	}()

	switch kind {
	case "text":
		return transition.FromText(alpha, src.Text)
	case "words":
		return transition.FromWordFrequencies(alpha, src.Words)
	default:
		return transition.New(alpha, src.Rows)
	}
}
