// Package transition holds the character sets and digraph frequency matrices
// that drive keyboard layout optimization.
//
// # Overview
//
// A [Matrix] records how often one character is immediately followed by
// another: At(a, b) is the number of times character a precedes character b.
// Row and column indices correspond 1:1 with the characters of an [Alphabet],
// in alphabet order. Matrices are immutable once built; every constructor
// validates the shape before returning.
//
// # Building Matrices
//
// Matrices come from three places:
//
//   - [New]: raw counts, e.g. decoded from JSON or an HTTP request
//   - [FromText]: consecutive character pairs of a sample text
//   - [FromWordFrequencies]: digraphs of each word, weighted by frequency
//
// Text input is case-insensitive. A newline separates two runs of text, so
// the characters on either side of it never form a digraph.
//
// # Errors
//
// Shape problems are reported with sentinel errors ([ErrNotSquare],
// [ErrDimensionMismatch], [ErrNegativeCount]) that callers match with
// errors.Is. Alphabet and ingestion failures use [ErrEmptyAlphabet],
// [ErrDuplicateChar], [ErrNotInAlphabet] and [ErrEmptyInput].
package transition
