// Package store persists alphabets, transition matrices and keyboards.
//
// Entities are addressed by [Kind] and name and stored as JSON, so every
// backend holds the same bytes the HTTP API serves:
//
//   - [FileStore]: one file per entity under a base directory (CLI default)
//   - [MongoStore]: one MongoDB collection shared by all kinds
//
// Names must already be validated (see errors.ValidateName); the store does
// not re-check them.
package store

import (
	"context"
	"errors"
)

// Kind is a category of stored entity.
type Kind string

// Entity kinds.
const (
	KindAlphabet Kind = "alphabets"
	KindMatrix   Kind = "matrices"
	KindKeyboard Kind = "keyboards"
)

// Kinds lists every entity kind.
func Kinds() []Kind { return []Kind{KindAlphabet, KindMatrix, KindKeyboard} }

// ErrNotFound is returned when an entity does not exist.
var ErrNotFound = errors.New("not found")

// Store is a key-value store for JSON-encodable entities.
type Store interface {
	// Put creates or replaces an entity.
	Put(ctx context.Context, kind Kind, name string, v any) error

	// Get decodes an entity into v, or returns ErrNotFound.
	Get(ctx context.Context, kind Kind, name string, v any) error

	// List returns the names of all entities of a kind, sorted.
	List(ctx context.Context, kind Kind) ([]string, error)

	// Delete removes an entity, or returns ErrNotFound.
	Delete(ctx context.Context, kind Kind, name string) error

	// Close releases backend resources.
	Close() error
}
