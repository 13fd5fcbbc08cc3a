package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/keyforge/pkg/core/keyboard"
	"github.com/matzehuels/keyforge/pkg/core/transition"
)

// ReadMatrix decodes a JSON transition matrix from r.
//
// ReadMatrix returns an error if the JSON is malformed, the counts are not
// square, any count is negative, or the alphabet size disagrees with the
// matrix dimension. Use errors.Is with the transition sentinels to tell
// these apart. ReadMatrix does not close r.
func ReadMatrix(r io.Reader) (*transition.Matrix, error) {
	var m transition.Matrix
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode matrix: %w", err)
	}
	return &m, nil
}

// ImportMatrix reads a JSON matrix file at path.
func ImportMatrix(path string) (*transition.Matrix, error) {
	f, closeFn, err := open(path)
	if err != nil {
		return nil, err
	}
	defer closeFn()
	return ReadMatrix(f)
}

// ReadKeyboard decodes a JSON keyboard from r.
func ReadKeyboard(r io.Reader) (*keyboard.Keyboard, error) {
	var kb keyboard.Keyboard
	if err := json.NewDecoder(r).Decode(&kb); err != nil {
		return nil, fmt.Errorf("decode keyboard: %w", err)
	}
	if len(kb.Keys) == 0 {
		return nil, fmt.Errorf("decode keyboard: no keys")
	}
	return &kb, nil
}

// ImportKeyboard reads a JSON keyboard file at path.
func ImportKeyboard(path string) (*keyboard.Keyboard, error) {
	f, closeFn, err := open(path)
	if err != nil {
		return nil, err
	}
	defer closeFn()
	return ReadKeyboard(f)
}

func open(path string) (io.Reader, func(), error) {
	if path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, func() { f.Close() }, nil
}
