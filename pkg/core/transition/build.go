package transition

import (
	"fmt"
	"sort"
)

// WordFrequency is one entry of a word frequency list.
type WordFrequency struct {
	Word      string `json:"word"`
	Frequency int    `json:"frequency"`
}

// FromText counts every pair of consecutive characters in text. Pairs that
// touch a line break are not counted.
func FromText(alpha *Alphabet, text string) (*Matrix, error) {
	if alpha == nil {
		return nil, ErrEmptyAlphabet
	}
	if text == "" {
		return nil, ErrEmptyInput
	}
	if err := checkChars(alpha, text); err != nil {
		return nil, err
	}
	counts := newCounts(alpha.Size())
	countDigraphs(alpha, counts, text, 1)
	return New(alpha, counts)
}

// FromWordFrequencies counts the digraphs inside each word, weighted by the
// word's frequency.
func FromWordFrequencies(alpha *Alphabet, words []WordFrequency) (*Matrix, error) {
	if alpha == nil {
		return nil, ErrEmptyAlphabet
	}
	if len(words) == 0 {
		return nil, ErrEmptyInput
	}
	for _, w := range words {
		if w.Frequency < 0 {
			return nil, fmt.Errorf("%w: frequency of %q is %d", ErrNegativeCount, w.Word, w.Frequency)
		}
		if err := checkChars(alpha, w.Word); err != nil {
			return nil, err
		}
	}
	counts := newCounts(alpha.Size())
	for _, w := range words {
		countDigraphs(alpha, counts, w.Word, w.Frequency)
	}
	return New(alpha, counts)
}

func checkChars(alpha *Alphabet, s string) error {
	for _, r := range s {
		if isBreak(r) {
			continue
		}
		if alpha.Index(r) < 0 {
			return fmt.Errorf("%w: %q", ErrNotInAlphabet, r)
		}
	}
	return nil
}

func newCounts(n int) [][]int {
	counts := make([][]int, n)
	for i := range counts {
		counts[i] = make([]int, n)
	}
	return counts
}

func countDigraphs(alpha *Alphabet, counts [][]int, s string, weight int) {
	prev := -1
	for _, r := range s {
		if isBreak(r) {
			prev = -1
			continue
		}
		cur := alpha.Index(r)
		if prev >= 0 {
			counts[prev][cur] += weight
		}
		prev = cur
	}
}

func sortDigraphs(ds []Digraph) {
	sort.SliceStable(ds, func(i, j int) bool {
		if ds[i].Count != ds[j].Count {
			return ds[i].Count > ds[j].Count
		}
		if ds[i].From != ds[j].From {
			return ds[i].From < ds[j].From
		}
		return ds[i].To < ds[j].To
	})
}
