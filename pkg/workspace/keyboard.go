package workspace

import (
	"context"
	"time"

	"github.com/matzehuels/keyforge/pkg/core/keyboard"
	"github.com/matzehuels/keyforge/pkg/core/transition"
	kerrors "github.com/matzehuels/keyforge/pkg/errors"
	"github.com/matzehuels/keyforge/pkg/pipeline"
	"github.com/matzehuels/keyforge/pkg/store"
)

const labelKeyboard = "keyboard"

// GenerateKeyboard lays out a stored matrix and stores the keyboard as name.
// The workspace lock is not held during the search; the name is checked
// again before the keyboard is written.
func (w *Workspace) GenerateKeyboard(ctx context.Context, name, matrix string, opts pipeline.Options) (*Generated, error) {
	rec, err := w.prepareKeyboard(ctx, name, matrix)
	if err != nil {
		return nil, err
	}

	res, hit, err := w.runner.ComputeLayoutWithCacheInfo(ctx, rec.Matrix, opts)
	if err != nil {
		return nil, classify(err, "generate keyboard %q", name)
	}
	kb, err := keyboard.New(name, rec.Matrix.Alphabet(), res.Grid)
	if err != nil {
		return nil, classify(err, "generate keyboard %q", name)
	}
	kb.Matrix = matrix
	kb.Strategy = res.Strategy
	kb.Cost = res.Cost

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.create(ctx, store.KindKeyboard, labelKeyboard, name); err != nil {
		return nil, err
	}
	if err := w.put(ctx, store.KindKeyboard, labelKeyboard, name, kb); err != nil {
		return nil, err
	}
	w.logger.Debug("generated keyboard", "name", name, "matrix", matrix, "strategy", res.Strategy, "cost", res.Cost, "cached", hit)
	return &Generated{Keyboard: kb, Layout: res, Cached: hit}, nil
}

func (w *Workspace) prepareKeyboard(ctx context.Context, name, matrix string) (*MatrixRecord, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.create(ctx, store.KindKeyboard, labelKeyboard, name); err != nil {
		return nil, err
	}
	return w.Matrix(ctx, matrix)
}

// Keyboard returns a stored keyboard.
func (w *Workspace) Keyboard(ctx context.Context, name string) (*keyboard.Keyboard, error) {
	var kb keyboard.Keyboard
	if err := w.get(ctx, store.KindKeyboard, labelKeyboard, name, &kb); err != nil {
		return nil, err
	}
	return &kb, nil
}

// Keyboards returns every stored keyboard, sorted by name.
func (w *Workspace) Keyboards(ctx context.Context) ([]*keyboard.Keyboard, error) {
	names, err := w.names(ctx, store.KindKeyboard)
	if err != nil {
		return nil, err
	}
	out := make([]*keyboard.Keyboard, 0, len(names))
	for _, name := range names {
		kb, err := w.Keyboard(ctx, name)
		if err != nil {
			return nil, err
		}
		out = append(out, kb)
	}
	return out, nil
}

// SwapKeys exchanges two keys of a stored keyboard. If the matrix the
// keyboard was generated from still exists, the stored cost is updated.
func (w *Workspace) SwapKeys(ctx context.Context, name string, i1, j1, i2, j2 int) (*keyboard.Keyboard, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	kb, err := w.Keyboard(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := kb.Swap(i1, j1, i2, j2); err != nil {
		return nil, classify(err, "swap keys of %q", name)
	}
	if kb.Matrix != "" {
		rec, err := w.Matrix(ctx, kb.Matrix)
		switch {
		case err == nil:
			cost, err := kb.Evaluate(rec.Matrix)
			if err != nil {
				return nil, classify(err, "score %q against %q", name, kb.Matrix)
			}
			kb.Cost = cost
		case !kerrors.Is(err, kerrors.ErrCodeNotFound):
			return nil, err
		}
	}
	if err := w.put(ctx, store.KindKeyboard, labelKeyboard, name, kb); err != nil {
		return nil, err
	}
	return kb, nil
}

// EvaluateKeyboard scores a stored keyboard against a stored matrix. The
// matrix must be over the same characters as the keyboard.
func (w *Workspace) EvaluateKeyboard(ctx context.Context, name, matrix string) (float64, error) {
	kb, err := w.Keyboard(ctx, name)
	if err != nil {
		return 0, err
	}
	rec, err := w.Matrix(ctx, matrix)
	if err != nil {
		return 0, err
	}
	cost, err := kb.Evaluate(rec.Matrix)
	if err != nil {
		return 0, classify(err, "evaluate %q against %q", name, matrix)
	}
	return cost, nil
}

// RenderKeyboard renders a stored keyboard. Digraph edges come from the
// keyboard's matrix when it still exists.
func (w *Workspace) RenderKeyboard(ctx context.Context, name string, opts pipeline.Options) (map[string][]byte, error) {
	kb, err := w.Keyboard(ctx, name)
	if err != nil {
		return nil, err
	}
	var m *transition.Matrix
	if kb.Matrix != "" {
		rec, err := w.Matrix(ctx, kb.Matrix)
		switch {
		case err == nil:
			m = rec.Matrix
		case !kerrors.Is(err, kerrors.ErrCodeNotFound):
			return nil, err
		}
	}

	start := time.Now()
	artifacts, err := w.runner.Render(ctx, kb, m, opts)
	if err != nil {
		return nil, classify(err, "render keyboard %q", name)
	}
	w.logger.Debug("rendered keyboard", "name", name, "formats", opts.Formats, "duration", time.Since(start))
	return artifacts, nil
}

// DeleteKeyboard removes a keyboard.
func (w *Workspace) DeleteKeyboard(ctx context.Context, name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.remove(ctx, store.KindKeyboard, labelKeyboard, name)
}
