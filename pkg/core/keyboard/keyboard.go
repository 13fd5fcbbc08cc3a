// Package keyboard defines a named, stored keyboard: a layout grid with the
// characters filled in.
//
// A [Keyboard] is built from a [layout.Grid] and the [transition.Alphabet]
// its indices refer to. Once built it no longer depends on index order, so
// it can be edited by hand ([Keyboard.Swap]) and re-scored against any
// matrix over the same characters ([Keyboard.Evaluate]).
package keyboard

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/keyforge/pkg/core/layout"
	"github.com/matzehuels/keyforge/pkg/core/transition"
)

var (
	// ErrOutOfRange is returned for key positions outside the keyboard.
	ErrOutOfRange = errors.New("keyboard: position out of range")

	// ErrAlphabetMismatch is returned when keys and alphabet disagree.
	ErrAlphabetMismatch = errors.New("keyboard: keys do not match alphabet")

	// ErrNoAlphabet is returned when evaluating against an unlabelled matrix.
	ErrNoAlphabet = errors.New("keyboard: matrix has no alphabet")
)

// Keyboard is a generated (and possibly hand-edited) layout.
type Keyboard struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Alphabet  string          `json:"alphabet"`
	Matrix    string          `json:"matrix,omitempty"`
	Strategy  layout.Strategy `json:"strategy,omitempty"`
	Keys      [][]string      `json:"keys"` // "" marks an empty key
	Cost      float64         `json:"cost"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// New labels g with the characters of alpha.
func New(name string, alpha *transition.Alphabet, g layout.Grid) (*Keyboard, error) {
	if err := g.Validate(alpha.Size()); err != nil {
		return nil, err
	}
	keys := make([][]string, g.Rows)
	for i := range keys {
		keys[i] = make([]string, g.Cols)
		for j := range keys[i] {
			if c := g.At(i, j); c != layout.Empty {
				keys[i][j] = string(alpha.Chars[c])
			}
		}
	}
	now := time.Now().UTC()
	return &Keyboard{
		ID:        uuid.New(),
		Name:      name,
		Alphabet:  alpha.Name,
		Keys:      keys,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Rows returns the number of key rows.
func (k *Keyboard) Rows() int { return len(k.Keys) }

// Cols returns the number of keys per row.
func (k *Keyboard) Cols() int {
	if len(k.Keys) == 0 {
		return 0
	}
	return len(k.Keys[0])
}

// Key returns the character at (i, j), or "" for an empty key.
func (k *Keyboard) Key(i, j int) (string, error) {
	if !k.inBounds(i, j) {
		return "", fmt.Errorf("%w: (%d,%d) on %dx%d", ErrOutOfRange, i, j, k.Rows(), k.Cols())
	}
	return k.Keys[i][j], nil
}

// Swap exchanges two keys.
func (k *Keyboard) Swap(i1, j1, i2, j2 int) error {
	for _, p := range [][2]int{{i1, j1}, {i2, j2}} {
		if !k.inBounds(p[0], p[1]) {
			return fmt.Errorf("%w: (%d,%d) on %dx%d", ErrOutOfRange, p[0], p[1], k.Rows(), k.Cols())
		}
	}
	k.Keys[i1][j1], k.Keys[i2][j2] = k.Keys[i2][j2], k.Keys[i1][j1]
	k.UpdatedAt = time.Now().UTC()
	return nil
}

// Grid maps the keys back to indices of alpha.
func (k *Keyboard) Grid(alpha *transition.Alphabet) (layout.Grid, error) {
	g := layout.NewGrid(k.Rows(), k.Cols())
	for i, row := range k.Keys {
		if len(row) != k.Cols() {
			return layout.Grid{}, fmt.Errorf("%w: row %d has %d keys", ErrAlphabetMismatch, i, len(row))
		}
		for j, key := range row {
			if key == "" {
				continue
			}
			r := []rune(key)
			idx := -1
			if len(r) == 1 {
				idx = alpha.Index(r[0])
			}
			if idx < 0 {
				return layout.Grid{}, fmt.Errorf("%w: %q not in %q", ErrAlphabetMismatch, key, alpha.Name)
			}
			g.Set(i, j, idx)
		}
	}
	if err := g.Validate(alpha.Size()); err != nil {
		return layout.Grid{}, fmt.Errorf("%w: %v", ErrAlphabetMismatch, err)
	}
	return g, nil
}

// Evaluate scores the keyboard against m with [layout.Evaluate]. The
// matrix must carry the alphabet the keys were drawn from.
func (k *Keyboard) Evaluate(m *transition.Matrix) (float64, error) {
	alpha := m.Alphabet()
	if alpha == nil {
		return 0, ErrNoAlphabet
	}
	g, err := k.Grid(alpha)
	if err != nil {
		return 0, err
	}
	return layout.Evaluate(g, m), nil
}

func (k *Keyboard) inBounds(i, j int) bool {
	return i >= 0 && i < k.Rows() && j >= 0 && j < len(k.Keys[i])
}
