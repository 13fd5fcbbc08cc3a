package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	pkgio "github.com/matzehuels/keyforge/pkg/io"
)

const corpus = "note\ntone\ninto\nonto\neat\ntea\nate\nanoint\n"

// run executes one keyforge invocation with a fresh CLI, as main does.
func run(t *testing.T, args ...string) error {
	t.Helper()
	c := New(&bytes.Buffer{}, LogInfo)
	defer c.Close()
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	return root.ExecuteContext(context.Background())
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(os.Stderr, LogInfo).RootCommand()

	want := []string{"alphabet", "matrix", "keyboard", "layout", "render", "cache", "serve", "completion"}
	have := map[string]*cobra.Command{}
	for _, cmd := range root.Commands() {
		have[cmd.Name()] = cmd
	}
	for _, name := range want {
		if have[name] == nil {
			t.Errorf("missing subcommand %q", name)
		}
	}
	for _, flag := range []string{"config", "verbose", "log-file"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("missing persistent flag --%s", flag)
		}
	}
}

func TestWorkspaceFlow(t *testing.T) {
	root := isolate(t)
	text := filepath.Join(root, "corpus.txt")
	if err := os.WriteFile(text, []byte(corpus), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(root, "mine.json")

	steps := [][]string{
		{"alphabet", "add", "vowels", "etaoin"},
		{"matrix", "text", "sample", text, "--alphabet", "vowels"},
		{"keyboard", "generate", "mine", "--matrix", "sample", "--strategy", "greedy"},
		{"keyboard", "swap", "mine", "0", "0", "0", "1"},
		{"keyboard", "evaluate", "mine"},
		{"keyboard", "export", "mine", "-o", out},
	}
	for _, args := range steps {
		if err := run(t, args...); err != nil {
			t.Fatalf("keyforge %s: %v", strings.Join(args, " "), err)
		}
	}

	kb, err := pkgio.ImportKeyboard(out)
	if err != nil {
		t.Fatalf("ImportKeyboard() error: %v", err)
	}
	if kb.Name != "mine" || kb.Rows() != 3 {
		t.Errorf("exported keyboard = %s with %d rows, want mine with 3", kb.Name, kb.Rows())
	}

	// The alphabet is referenced by a matrix and may not change.
	if err := run(t, "alphabet", "add-chars", "vowels", "s"); err == nil {
		t.Error("editing an alphabet in use should fail")
	}
	if err := run(t, "keyboard", "generate", "mine", "--matrix", "sample"); err == nil {
		t.Error("generating over an existing keyboard should fail")
	}
	if err := run(t, "keyboard", "generate", "other", "--matrix", "sample", "--strategy", "annealing"); err == nil {
		t.Error("unknown strategy should fail")
	}
}

func TestLayoutCommand(t *testing.T) {
	root := isolate(t)
	input := filepath.Join(root, "m.json")
	if err := os.WriteFile(input, []byte(`{"counts":[[0,4,1],[2,0,0],[1,3,0]]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := run(t, "layout", input, "--no-cache"); err != nil {
		t.Fatalf("layout: %v", err)
	}
	kb, err := pkgio.ImportKeyboard(filepath.Join(root, "m.keyboard.json"))
	if err != nil {
		t.Fatalf("ImportKeyboard() error: %v", err)
	}
	keys := map[string]bool{}
	for _, row := range kb.Keys {
		for _, k := range row {
			if k != "" {
				keys[k] = true
			}
		}
	}
	for _, k := range []string{"0", "1", "2"} {
		if !keys[k] {
			t.Errorf("key %q missing from %v", k, kb.Keys)
		}
	}
}

func TestConfigFileIsLoaded(t *testing.T) {
	root := isolate(t)
	path := filepath.Join(root, "bad.toml")
	if err := os.WriteFile(path, []byte("[layout]\nstrategy = \"annealing\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := run(t, "--config", path, "alphabet", "list"); err == nil {
		t.Error("an invalid config file should abort the command")
	}
}
