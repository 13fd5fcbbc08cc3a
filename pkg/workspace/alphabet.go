package workspace

import (
	"context"

	"github.com/matzehuels/keyforge/pkg/core/transition"
	kerrors "github.com/matzehuels/keyforge/pkg/errors"
	"github.com/matzehuels/keyforge/pkg/store"
)

const labelAlphabet = "alphabet"

// CreateAlphabet stores a new alphabet of the characters in chars.
func (w *Workspace) CreateAlphabet(ctx context.Context, name, chars string) (*transition.Alphabet, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.create(ctx, store.KindAlphabet, labelAlphabet, name); err != nil {
		return nil, err
	}
	alpha, err := transition.NewAlphabet(name, chars)
	if err != nil {
		return nil, classify(err, "alphabet %q", name)
	}
	if err := w.put(ctx, store.KindAlphabet, labelAlphabet, name, alpha); err != nil {
		return nil, err
	}
	w.logger.Debug("created alphabet", "name", name, "size", alpha.Size())
	return alpha, nil
}

// Alphabet returns a stored alphabet.
func (w *Workspace) Alphabet(ctx context.Context, name string) (*transition.Alphabet, error) {
	var alpha transition.Alphabet
	if err := w.get(ctx, store.KindAlphabet, labelAlphabet, name, &alpha); err != nil {
		return nil, err
	}
	return &alpha, nil
}

// Alphabets returns every stored alphabet, sorted by name.
func (w *Workspace) Alphabets(ctx context.Context) ([]*transition.Alphabet, error) {
	names, err := w.names(ctx, store.KindAlphabet)
	if err != nil {
		return nil, err
	}
	out := make([]*transition.Alphabet, 0, len(names))
	for _, name := range names {
		alpha, err := w.Alphabet(ctx, name)
		if err != nil {
			return nil, err
		}
		out = append(out, alpha)
	}
	return out, nil
}

// AddChars appends the characters of chars to an unused alphabet.
func (w *Workspace) AddChars(ctx context.Context, name, chars string) (*transition.Alphabet, error) {
	return w.editAlphabet(ctx, name, chars, (*transition.Alphabet).AddChar)
}

// RemoveChars deletes the characters of chars from an unused alphabet.
func (w *Workspace) RemoveChars(ctx context.Context, name, chars string) (*transition.Alphabet, error) {
	return w.editAlphabet(ctx, name, chars, (*transition.Alphabet).RemoveChar)
}

func (w *Workspace) editAlphabet(ctx context.Context, name, chars string, edit func(*transition.Alphabet, rune) error) (*transition.Alphabet, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if chars == "" {
		return nil, kerrors.New(kerrors.ErrCodeInvalidInput, "no characters given")
	}
	alpha, err := w.Alphabet(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := w.checkAlphabetUnused(ctx, name); err != nil {
		return nil, err
	}
	for _, r := range chars {
		if err := edit(alpha, r); err != nil {
			return nil, classify(err, "alphabet %q", name)
		}
	}
	if err := w.put(ctx, store.KindAlphabet, labelAlphabet, name, alpha); err != nil {
		return nil, err
	}
	return alpha, nil
}

// DeleteAlphabet removes an alphabet that no matrix uses.
func (w *Workspace) DeleteAlphabet(ctx context.Context, name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.Alphabet(ctx, name); err != nil {
		return err
	}
	if err := w.checkAlphabetUnused(ctx, name); err != nil {
		return err
	}
	return w.remove(ctx, store.KindAlphabet, labelAlphabet, name)
}

func (w *Workspace) checkAlphabetUnused(ctx context.Context, name string) error {
	matrices, err := w.Matrices(ctx)
	if err != nil {
		return err
	}
	for _, m := range matrices {
		if m.Alphabet == name {
			return kerrors.New(kerrors.ErrCodeInUse, "alphabet %q is used by matrix %q", name, m.Name)
		}
	}
	return nil
}
