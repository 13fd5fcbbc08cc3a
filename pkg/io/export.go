package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/keyforge/pkg/core/keyboard"
	"github.com/matzehuels/keyforge/pkg/core/transition"
)

// WriteMatrix encodes m as indented JSON and writes it to w.
// The output can be re-imported with [ReadMatrix].
func WriteMatrix(m *transition.Matrix, w io.Writer) error {
	return writeJSON(m, w)
}

// ExportMatrix writes m to a JSON file at path.
func ExportMatrix(m *transition.Matrix, path string) error {
	return export(path, func(w io.Writer) error { return WriteMatrix(m, w) })
}

// WriteKeyboard encodes kb as indented JSON and writes it to w.
func WriteKeyboard(kb *keyboard.Keyboard, w io.Writer) error {
	return writeJSON(kb, w)
}

// ExportKeyboard writes kb to a JSON file at path.
func ExportKeyboard(kb *keyboard.Keyboard, path string) error {
	return export(path, func(w io.Writer) error { return WriteKeyboard(kb, w) })
}

func writeJSON(v any, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func export(path string, write func(io.Writer) error) error {
	if path == "-" {
		return write(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
