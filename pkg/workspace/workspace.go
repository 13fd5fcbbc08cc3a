// Package workspace manages the stored alphabets, transition matrices and
// keyboards a user works with, and enforces the rules that tie them together.
//
// A [Workspace] sits between the outer surfaces (CLI, HTTP API) and the
// store. Every error it returns is a structured error from pkg/errors, so
// callers can switch on the code (NOT_FOUND, ALREADY_EXISTS, IN_USE, ...)
// without knowing which core package produced it.
//
// Rules:
//   - Names are unique per kind; creating over an existing name fails.
//   - An alphabet cannot be deleted or edited while a matrix uses it.
//   - Keyboards carry their own characters, so deleting the matrix or
//     alphabet a keyboard came from leaves the keyboard intact.
package workspace

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/keyforge/pkg/core/keyboard"
	"github.com/matzehuels/keyforge/pkg/core/layout"
	"github.com/matzehuels/keyforge/pkg/core/transition"
	kerrors "github.com/matzehuels/keyforge/pkg/errors"
	"github.com/matzehuels/keyforge/pkg/pipeline"
	"github.com/matzehuels/keyforge/pkg/render"
	"github.com/matzehuels/keyforge/pkg/store"
)

// MatrixRecord is a stored transition matrix.
type MatrixRecord struct {
	Name      string             `json:"name"`
	Alphabet  string             `json:"alphabet"`
	Source    string             `json:"source"` // text, words or rows
	Matrix    *transition.Matrix `json:"matrix"`
	CreatedAt time.Time          `json:"created_at"`
}

// Generated is the outcome of [Workspace.GenerateKeyboard].
type Generated struct {
	Keyboard *keyboard.Keyboard
	Layout   layout.Result
	Cached   bool
}

// Workspace is safe for concurrent use. Mutations are serialized so that
// existence and usage checks hold until the write completes.
type Workspace struct {
	mu     sync.Mutex
	store  store.Store
	runner *pipeline.Runner
	logger *log.Logger
}

// New returns a workspace over s. A nil runner gets an uncached one.
func New(s store.Store, runner *pipeline.Runner, logger *log.Logger) *Workspace {
	if logger == nil {
		logger = log.Default()
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	return &Workspace{store: s, runner: runner, logger: logger}
}

// Close releases the store and the runner's cache.
func (w *Workspace) Close() error {
	return errors.Join(w.store.Close(), w.runner.Close())
}

// exists reports whether kind/name is stored.
func (w *Workspace) exists(ctx context.Context, kind store.Kind, name string) (bool, error) {
	var raw map[string]any
	err := w.store.Get(ctx, kind, name, &raw)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, kerrors.Wrap(kerrors.ErrCodeInternal, err, "read %s %q", kind, name)
	}
	return true, nil
}

// create validates name and fails if it is already taken.
func (w *Workspace) create(ctx context.Context, kind store.Kind, label, name string) error {
	if err := kerrors.ValidateName(label, name); err != nil {
		return err
	}
	ok, err := w.exists(ctx, kind, name)
	if err != nil {
		return err
	}
	if ok {
		return kerrors.New(kerrors.ErrCodeAlreadyExists, "%s %q already exists", label, name)
	}
	return nil
}

func (w *Workspace) get(ctx context.Context, kind store.Kind, label, name string, v any) error {
	if err := kerrors.ValidateName(label, name); err != nil {
		return err
	}
	err := w.store.Get(ctx, kind, name, v)
	if errors.Is(err, store.ErrNotFound) {
		return kerrors.Wrap(kerrors.ErrCodeNotFound, err, "%s %q not found", label, name)
	}
	if err != nil {
		return kerrors.Wrap(kerrors.ErrCodeInternal, err, "read %s %q", label, name)
	}
	return nil
}

func (w *Workspace) put(ctx context.Context, kind store.Kind, label, name string, v any) error {
	if err := w.store.Put(ctx, kind, name, v); err != nil {
		return kerrors.Wrap(kerrors.ErrCodeInternal, err, "write %s %q", label, name)
	}
	return nil
}

func (w *Workspace) remove(ctx context.Context, kind store.Kind, label, name string) error {
	if err := kerrors.ValidateName(label, name); err != nil {
		return err
	}
	err := w.store.Delete(ctx, kind, name)
	if errors.Is(err, store.ErrNotFound) {
		return kerrors.Wrap(kerrors.ErrCodeNotFound, err, "%s %q not found", label, name)
	}
	if err != nil {
		return kerrors.Wrap(kerrors.ErrCodeInternal, err, "delete %s %q", label, name)
	}
	w.logger.Debug("deleted", "kind", label, "name", name)
	return nil
}

func (w *Workspace) names(ctx context.Context, kind store.Kind) ([]string, error) {
	names, err := w.store.List(ctx, kind)
	if err != nil {
		return nil, kerrors.Wrap(kerrors.ErrCodeInternal, err, "list %s", kind)
	}
	return names, nil
}

// classify maps a core error to a structured one. Errors that already
// carry a code pass through unchanged.
func classify(err error, format string, args ...any) error {
	if err == nil || kerrors.GetCode(err) != "" {
		return err
	}
	code := kerrors.ErrCodeInternal
	switch {
	case errors.Is(err, transition.ErrEmptyAlphabet),
		errors.Is(err, transition.ErrDuplicateChar),
		errors.Is(err, transition.ErrInvalidChar):
		code = kerrors.ErrCodeInvalidAlphabet
	case errors.Is(err, transition.ErrNotSquare),
		errors.Is(err, transition.ErrDimensionMismatch),
		errors.Is(err, transition.ErrNegativeCount),
		errors.Is(err, layout.ErrNilMatrix),
		errors.Is(err, layout.ErrInvalidGrid):
		code = kerrors.ErrCodeInvalidMatrix
	case errors.Is(err, transition.ErrNotInAlphabet),
		errors.Is(err, transition.ErrEmptyInput),
		errors.Is(err, pipeline.ErrAmbiguousSource),
		errors.Is(err, keyboard.ErrAlphabetMismatch),
		errors.Is(err, keyboard.ErrNoAlphabet):
		code = kerrors.ErrCodeInvalidInput
	case errors.Is(err, layout.ErrUnknownStrategy):
		code = kerrors.ErrCodeInvalidStrategy
	case errors.Is(err, render.ErrUnsupportedFormat):
		code = kerrors.ErrCodeInvalidFormat
	case errors.Is(err, keyboard.ErrOutOfRange):
		code = kerrors.ErrCodeInvalidPosition
	case errors.Is(err, context.DeadlineExceeded):
		code = kerrors.ErrCodeTimeout
	}
	return kerrors.Wrap(code, err, format, args...)
}
