package transition

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNotSquare is returned when a matrix row length differs from the row count.
	ErrNotSquare = errors.New("transition: matrix is not square")

	// ErrDimensionMismatch is returned when the matrix size differs from the alphabet size.
	ErrDimensionMismatch = errors.New("transition: matrix size does not match alphabet")

	// ErrNegativeCount is returned for negative transition counts.
	ErrNegativeCount = errors.New("transition: negative count")

	// ErrEmptyInput is returned when text or word lists contain nothing to count.
	ErrEmptyInput = errors.New("transition: empty input")
)

// Matrix is an immutable n×n table of digraph counts.
type Matrix struct {
	alpha  *Alphabet
	n      int
	counts []int // row-major
}

// New validates rows and builds a matrix. alpha may be nil when the matrix
// is used without character labels; otherwise its size must equal the
// number of rows. The input slices are copied.
func New(alpha *Alphabet, rows [][]int) (*Matrix, error) {
	n := len(rows)
	if alpha != nil && alpha.Size() != n {
		return nil, fmt.Errorf("%w: %d rows, %d characters", ErrDimensionMismatch, n, alpha.Size())
	}
	m := &Matrix{alpha: alpha, n: n, counts: make([]int, n*n)}
	for i, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrNotSquare, i, len(row), n)
		}
		for j, c := range row {
			if c < 0 {
				return nil, fmt.Errorf("%w: [%d][%d] = %d", ErrNegativeCount, i, j, c)
			}
			m.counts[i*n+j] = c
		}
	}
	return m, nil
}

// Size returns n.
func (m *Matrix) Size() int { return m.n }

// At returns the number of times character a is followed by character b.
func (m *Matrix) At(a, b int) int { return m.counts[a*m.n+b] }

// Activity returns the row sum for character a: how often it is followed by anything.
func (m *Matrix) Activity(a int) int {
	sum := 0
	for _, c := range m.counts[a*m.n : (a+1)*m.n] {
		sum += c
	}
	return sum
}

// Total returns the sum of all off-diagonal counts.
func (m *Matrix) Total() int {
	total := 0
	for i := 0; i < m.n; i++ {
		for j := 0; j < m.n; j++ {
			if i != j {
				total += m.counts[i*m.n+j]
			}
		}
	}
	return total
}

// Rows returns a copy of the counts as a slice of rows.
func (m *Matrix) Rows() [][]int {
	rows := make([][]int, m.n)
	for i := range rows {
		rows[i] = append([]int(nil), m.counts[i*m.n:(i+1)*m.n]...)
	}
	return rows
}

// Alphabet returns the character labels, or nil.
func (m *Matrix) Alphabet() *Alphabet { return m.alpha }

// Top returns up to k off-diagonal digraphs with the highest counts,
// ordered by count descending then by index.
func (m *Matrix) Top(k int) []Digraph {
	var all []Digraph
	for i := 0; i < m.n; i++ {
		for j := 0; j < m.n; j++ {
			if c := m.counts[i*m.n+j]; i != j && c > 0 {
				all = append(all, Digraph{From: i, To: j, Count: c})
			}
		}
	}
	sortDigraphs(all)
	if k >= 0 && len(all) > k {
		all = all[:k]
	}
	return all
}

// Digraph is one cell of a matrix.
type Digraph struct {
	From  int `json:"from"`
	To    int `json:"to"`
	Count int `json:"count"`
}

type matrixJSON struct {
	Alphabet *Alphabet `json:"alphabet,omitempty"`
	Counts   [][]int   `json:"counts"`
}

// MarshalJSON encodes the matrix with its alphabet.
func (m *Matrix) MarshalJSON() ([]byte, error) {
	return json.Marshal(matrixJSON{Alphabet: m.alpha, Counts: m.Rows()})
}

// UnmarshalJSON decodes and validates a matrix.
func (m *Matrix) UnmarshalJSON(data []byte) error {
	var raw matrixJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := New(raw.Alphabet, raw.Counts)
	if err != nil {
		return err
	}
	*m = *parsed
	return nil
}
