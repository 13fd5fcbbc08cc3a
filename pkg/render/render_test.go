package render

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/matzehuels/keyforge/pkg/core/keyboard"
	"github.com/matzehuels/keyforge/pkg/core/layout"
	"github.com/matzehuels/keyforge/pkg/core/transition"
)

func fixture(t *testing.T) (*keyboard.Keyboard, *transition.Matrix) {
	t.Helper()
	alpha, err := transition.NewAlphabet("abcde", "abcde")
	if err != nil {
		t.Fatal(err)
	}
	m, err := transition.FromText(alpha, "abababacde")
	if err != nil {
		t.Fatal(err)
	}
	kb, err := keyboard.New("demo", alpha, layout.GreedyPlacer{}.Place(m))
	if err != nil {
		t.Fatal(err)
	}
	return kb, m
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"text", false},
		{"json", false},
		{"dot", false},
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"SVG", true}, // case-sensitive
		{"tower", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("ValidateFormat(%q) error should wrap ErrUnsupportedFormat", tt.format)
		}
	}
}

func TestText(t *testing.T) {
	kb, _ := fixture(t)
	out := Text(kb)
	for _, key := range []string{"A", "B", "C"} {
		if !strings.Contains(out, key) {
			t.Errorf("Text() missing key %s:\n%s", key, out)
		}
	}
	if lines := strings.Count(out, "\n") + 1; lines < 2*kb.Rows()+1 {
		t.Errorf("Text() has %d lines, want at least %d", lines, 2*kb.Rows()+1)
	}
}

func TestDOT(t *testing.T) {
	kb, m := fixture(t)
	dot := DOT(kb, m, Options{})

	checks := []string{
		"digraph keyboard",
		"layout=neato",
		`label="A"`,
		`label="B"`,
		`pos="0.00,0.00!"`,
		"penwidth=5.00", // strongest digraph
	}
	for _, want := range checks {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT() missing %q:\n%s", want, dot)
		}
	}
	if !strings.Contains(dot, "dashed") {
		t.Error("DOT() should draw the empty key dashed")
	}
}

func TestDOTEdgeLimit(t *testing.T) {
	kb, m := fixture(t)

	if got := strings.Count(DOT(kb, m, Options{TopEdges: 1}), "->"); got != 1 {
		t.Errorf("TopEdges=1 drew %d edges, want 1", got)
	}
	if got := strings.Count(DOT(kb, m, Options{TopEdges: -1}), "->"); got != 0 {
		t.Errorf("TopEdges=-1 drew %d edges, want 0", got)
	}
	if got := strings.Count(DOT(kb, nil, Options{}), "->"); got != 0 {
		t.Errorf("nil matrix drew %d edges, want 0", got)
	}
}

func TestRender(t *testing.T) {
	kb, m := fixture(t)
	ctx := context.Background()

	data, err := Render(ctx, kb, m, FormatJSON, Options{})
	if err != nil {
		t.Fatalf("Render(json) error = %v", err)
	}
	var back keyboard.Keyboard
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Render(json) produced invalid JSON: %v", err)
	}
	if back.Name != "demo" {
		t.Errorf("Render(json) name = %q, want demo", back.Name)
	}

	data, err = Render(ctx, kb, m, FormatText, Options{})
	if err != nil || !strings.HasSuffix(string(data), "\n") {
		t.Errorf("Render(text) = %q, %v", data, err)
	}

	if _, err := Render(ctx, kb, m, "gif", Options{}); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Render(gif) error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestSVG(t *testing.T) {
	kb, m := fixture(t)
	svg, err := SVG(context.Background(), DOT(kb, m, Options{}))
	if err != nil {
		t.Fatalf("SVG() error = %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("SVG() output is not an SVG document")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 100.00 50.00" width="100" height="50"`) {
		t.Errorf("normalizeViewBox() = %s", out)
	}

	plain := []byte(`<svg><g/></svg>`)
	if got := normalizeViewBox(plain); string(got) != string(plain) {
		t.Errorf("normalizeViewBox() changed an SVG without viewBox: %s", got)
	}
}
