package workspace

import (
	"context"
	"time"

	kerrors "github.com/matzehuels/keyforge/pkg/errors"
	"github.com/matzehuels/keyforge/pkg/pipeline"
	"github.com/matzehuels/keyforge/pkg/store"
)

const labelMatrix = "matrix"

// CreateMatrix counts the digraphs of src over a stored alphabet and
// stores the result as name.
func (w *Workspace) CreateMatrix(ctx context.Context, name, alphabet string, src pipeline.Source) (*MatrixRecord, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.create(ctx, store.KindMatrix, labelMatrix, name); err != nil {
		return nil, err
	}
	alpha, err := w.Alphabet(ctx, alphabet)
	if err != nil {
		return nil, err
	}

	m, err := pipeline.Ingest(ctx, alpha, src)
	if err != nil {
		return nil, classify(err, "matrix %q", name)
	}
	rec := &MatrixRecord{
		Name:      name,
		Alphabet:  alphabet,
		Source:    src.Kind(),
		Matrix:    m,
		CreatedAt: time.Now().UTC(),
	}
	if err := w.put(ctx, store.KindMatrix, labelMatrix, name, rec); err != nil {
		return nil, err
	}
	w.logger.Debug("created matrix", "name", name, "alphabet", alphabet, "source", rec.Source, "total", m.Total())
	return rec, nil
}

// Matrix returns a stored matrix.
func (w *Workspace) Matrix(ctx context.Context, name string) (*MatrixRecord, error) {
	var rec MatrixRecord
	if err := w.get(ctx, store.KindMatrix, labelMatrix, name, &rec); err != nil {
		return nil, err
	}
	if rec.Matrix == nil {
		return nil, kerrors.New(kerrors.ErrCodeInternal, "matrix %q has no counts", name)
	}
	return &rec, nil
}

// Matrices returns every stored matrix, sorted by name.
func (w *Workspace) Matrices(ctx context.Context) ([]*MatrixRecord, error) {
	names, err := w.names(ctx, store.KindMatrix)
	if err != nil {
		return nil, err
	}
	out := make([]*MatrixRecord, 0, len(names))
	for _, name := range names {
		rec, err := w.Matrix(ctx, name)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// DeleteMatrix removes a matrix. Keyboards generated from it are kept.
func (w *Workspace) DeleteMatrix(ctx context.Context, name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.remove(ctx, store.KindMatrix, labelMatrix, name)
}
