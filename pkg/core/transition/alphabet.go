package transition

import (
	"encoding/json"
	"errors"
	"fmt"
	"unicode"
)

var (
	// ErrEmptyAlphabet is returned when an alphabet has no characters.
	ErrEmptyAlphabet = errors.New("transition: alphabet is empty")

	// ErrDuplicateChar is returned when a character appears twice in an alphabet.
	ErrDuplicateChar = errors.New("transition: duplicate character")

	// ErrInvalidChar is returned for characters that cannot be keys (line breaks).
	ErrInvalidChar = errors.New("transition: invalid character")

	// ErrNotInAlphabet is returned when input uses a character outside the alphabet.
	ErrNotInAlphabet = errors.New("transition: character not in alphabet")
)

// Alphabet is an ordered set of upper-cased characters. The position of a
// character in Chars is its index in every matrix and grid built from the
// alphabet.
type Alphabet struct {
	Name  string
	Chars []rune

	index map[rune]int
}

// NewAlphabet builds an alphabet from the characters of chars, upper-cased,
// in order of appearance.
func NewAlphabet(name, chars string) (*Alphabet, error) {
	a := &Alphabet{Name: name}
	for _, r := range chars {
		if err := a.AddChar(r); err != nil {
			return nil, err
		}
	}
	if len(a.Chars) == 0 {
		return nil, ErrEmptyAlphabet
	}
	return a, nil
}

// Size returns the number of characters.
func (a *Alphabet) Size() int { return len(a.Chars) }

// Index returns the position of r (case-insensitive), or -1.
func (a *Alphabet) Index(r rune) int {
	a.ensureIndex()
	if i, ok := a.index[unicode.ToUpper(r)]; ok {
		return i
	}
	return -1
}

// Contains reports whether every character of s belongs to the alphabet.
// Line breaks are always accepted since they only separate runs of text.
func (a *Alphabet) Contains(s string) bool {
	for _, r := range s {
		if isBreak(r) {
			continue
		}
		if a.Index(r) < 0 {
			return false
		}
	}
	return true
}

// AddChar appends r to the alphabet.
func (a *Alphabet) AddChar(r rune) error {
	if isBreak(r) {
		return fmt.Errorf("%w: %q", ErrInvalidChar, r)
	}
	r = unicode.ToUpper(r)
	if a.Index(r) >= 0 {
		return fmt.Errorf("%w: %q", ErrDuplicateChar, r)
	}
	a.index[r] = len(a.Chars)
	a.Chars = append(a.Chars, r)
	return nil
}

// RemoveChar deletes r from the alphabet. The indices of the characters
// after it shift down by one, so matrices built from the old alphabet no
// longer line up with it.
func (a *Alphabet) RemoveChar(r rune) error {
	i := a.Index(r)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrNotInAlphabet, r)
	}
	if len(a.Chars) == 1 {
		return ErrEmptyAlphabet
	}
	a.Chars = append(a.Chars[:i:i], a.Chars[i+1:]...)
	a.index = nil
	return nil
}

// String returns the characters as a single string.
func (a *Alphabet) String() string { return string(a.Chars) }

// Equal reports whether both alphabets hold the same characters in the same order.
func (a *Alphabet) Equal(b *Alphabet) bool {
	if a == nil || b == nil {
		return a == b
	}
	return string(a.Chars) == string(b.Chars)
}

func (a *Alphabet) ensureIndex() {
	if a.index != nil {
		return
	}
	a.index = make(map[rune]int, len(a.Chars))
	for i, r := range a.Chars {
		a.index[r] = i
	}
}

type alphabetJSON struct {
	Name  string `json:"name"`
	Chars string `json:"chars"`
}

// MarshalJSON encodes the alphabet as {"name": ..., "chars": "ABC"}.
func (a *Alphabet) MarshalJSON() ([]byte, error) {
	return json.Marshal(alphabetJSON{Name: a.Name, Chars: string(a.Chars)})
}

// UnmarshalJSON decodes and validates an alphabet.
func (a *Alphabet) UnmarshalJSON(data []byte) error {
	var raw alphabetJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := NewAlphabet(raw.Name, raw.Chars)
	if err != nil {
		return err
	}
	*a = *parsed
	return nil
}

func isBreak(r rune) bool {
	return r == '\n' || r == '\r'
}
