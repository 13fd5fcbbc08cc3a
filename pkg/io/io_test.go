package io

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/keyforge/pkg/core/keyboard"
	"github.com/matzehuels/keyforge/pkg/core/layout"
	"github.com/matzehuels/keyforge/pkg/core/transition"
)

func TestReadMatrix(t *testing.T) {
	input := `{"alphabet": {"name": "abc", "chars": "abc"}, "counts": [[0,3,1],[2,0,0],[1,4,0]]}`
	m, err := ReadMatrix(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadMatrix() error = %v", err)
	}
	if m.Size() != 3 {
		t.Errorf("Size() = %d, want 3", m.Size())
	}
	if got := m.At(2, 1); got != 4 {
		t.Errorf("At(2,1) = %d, want 4", got)
	}
	if m.Alphabet() == nil || m.Alphabet().String() != "ABC" {
		t.Errorf("Alphabet() = %v, want ABC", m.Alphabet())
	}
}

func TestReadMatrixErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"not square", `{"counts": [[0,1],[1]]}`, transition.ErrNotSquare},
		{"negative", `{"counts": [[0,-1],[1,0]]}`, transition.ErrNegativeCount},
		{"alphabet size", `{"alphabet": {"name": "a", "chars": "abc"}, "counts": [[0,1],[1,0]]}`, transition.ErrDimensionMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadMatrix(strings.NewReader(tt.input))
			if !errors.Is(err, tt.want) {
				t.Errorf("ReadMatrix() error = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := ReadMatrix(strings.NewReader("{")); err == nil {
		t.Error("ReadMatrix() should fail on malformed JSON")
	}
}

func TestMatrixRoundTrip(t *testing.T) {
	alpha, _ := transition.NewAlphabet("demo", "xyz")
	m, err := transition.FromText(alpha, "xyzzyx")
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "m.json")
	if err := ExportMatrix(m, path); err != nil {
		t.Fatalf("ExportMatrix() error = %v", err)
	}
	back, err := ImportMatrix(path)
	if err != nil {
		t.Fatalf("ImportMatrix() error = %v", err)
	}
	for a := 0; a < 3; a++ {
		for b := 0; b < 3; b++ {
			if back.At(a, b) != m.At(a, b) {
				t.Errorf("At(%d,%d) = %d, want %d", a, b, back.At(a, b), m.At(a, b))
			}
		}
	}
}

func TestKeyboardRoundTrip(t *testing.T) {
	alpha, _ := transition.NewAlphabet("demo", "abc")
	m, _ := transition.FromText(alpha, "abcabc")
	kb, err := keyboard.New("mine", alpha, layout.GreedyPlacer{}.Place(m))
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := WriteKeyboard(kb, &buf); err != nil {
		t.Fatalf("WriteKeyboard() error = %v", err)
	}
	back, err := ReadKeyboard(&buf)
	if err != nil {
		t.Fatalf("ReadKeyboard() error = %v", err)
	}
	if back.Name != "mine" || back.ID != kb.ID {
		t.Errorf("ReadKeyboard() = %+v, want name and ID preserved", back)
	}
	if _, err := back.Grid(alpha); err != nil {
		t.Errorf("Grid() error = %v", err)
	}
}

func TestReadKeyboardRequiresKeys(t *testing.T) {
	if _, err := ReadKeyboard(strings.NewReader(`{"name": "x"}`)); err == nil {
		t.Error("ReadKeyboard() should reject a keyboard without keys")
	}
}

func TestImportMissingFile(t *testing.T) {
	if _, err := ImportMatrix(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("ImportMatrix() should fail for a missing file")
	}
}
