package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/keyforge/pkg/cache"
	"github.com/matzehuels/keyforge/pkg/core/layout"
	kerrors "github.com/matzehuels/keyforge/pkg/errors"
	"github.com/matzehuels/keyforge/pkg/store"
)

func isolate(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(root, "cache"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(root, "data"))
	return root
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingDefaultFile(t *testing.T) {
	root := isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Strategy() != layout.BranchAndBound {
		t.Errorf("Strategy() = %v, want branch-and-bound", cfg.Strategy())
	}
	if cfg.Store.Driver != StoreFile || cfg.Cache.Driver != CacheFile {
		t.Errorf("drivers = %q/%q, want file/file", cfg.Store.Driver, cfg.Cache.Driver)
	}
	if want := filepath.Join(root, "data", AppName); cfg.Store.Dir != want {
		t.Errorf("Store.Dir = %q, want %q", cfg.Store.Dir, want)
	}
	if want := filepath.Join(root, "cache", AppName); cfg.Cache.Dir != want {
		t.Errorf("Cache.Dir = %q, want %q", cfg.Cache.Dir, want)
	}
	if cfg.Cache.TTL.Duration != cache.DefaultLayoutTTL {
		t.Errorf("Cache.TTL = %v, want %v", cfg.Cache.TTL, cache.DefaultLayoutTTL)
	}
	if cfg.Server.Addr != DefaultAddr {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, DefaultAddr)
	}
	if cfg.Server.MaxNodeLimit != DefaultMaxNodeLimit {
		t.Errorf("Server.MaxNodeLimit = %d, want %d", cfg.Server.MaxNodeLimit, DefaultMaxNodeLimit)
	}
	if cfg.LogLevel() != log.InfoLevel {
		t.Errorf("LogLevel() = %v, want info", cfg.LogLevel())
	}
	if cfg.LogWriter() != nil {
		t.Error("LogWriter() should be nil without a log file")
	}
}

func TestLoadExplicitMissingFile(t *testing.T) {
	isolate(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !kerrors.Is(err, kerrors.ErrCodeInvalidConfig) {
		t.Fatalf("Load() error = %v, want INVALID_CONFIG", err)
	}
}

func TestLoadFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
[layout]
strategy = "greedy"
node_limit = 5000

[store]
driver = "mongodb"
uri = "mongodb://localhost:27017"

[cache]
driver = "memory"
ttl = "90m"

[server]
addr = "127.0.0.1:9000"
max_node_limit = 250000

[log]
level = "debug"
file = "/tmp/keyforge.log"
max_backups = 7
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Strategy() != layout.Greedy || cfg.Layout.NodeLimit != 5000 {
		t.Errorf("layout = %+v", cfg.Layout)
	}
	if cfg.Store.Driver != StoreMongo || cfg.Store.Database != DefaultDatabase || cfg.Store.Dir != "" {
		t.Errorf("store = %+v", cfg.Store)
	}
	if cfg.Cache.Driver != CacheMemory || cfg.Cache.TTL.Duration != 90*time.Minute || cfg.Cache.Dir != "" {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" || cfg.Server.MaxNodeLimit != 250000 {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.LogLevel() != log.DebugLevel {
		t.Errorf("LogLevel() = %v, want debug", cfg.LogLevel())
	}
	if cfg.Log.MaxSizeMB != DefaultMaxSizeMB || cfg.Log.MaxBackups != 7 {
		t.Errorf("log = %+v", cfg.Log)
	}

	w := cfg.LogWriter()
	if w == nil {
		t.Fatal("LogWriter() = nil, want rotating writer")
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
}

func TestLoadRejects(t *testing.T) {
	isolate(t)
	tests := []struct {
		name string
		body string
	}{
		{"syntax", "[layout\nstrategy ="},
		{"strategy", "[layout]\nstrategy = \"annealing\""},
		{"node limit", "[layout]\nnode_limit = -1"},
		{"store driver", "[store]\ndriver = \"sqlite\""},
		{"mongo without uri", "[store]\ndriver = \"mongodb\""},
		{"cache driver", "[cache]\ndriver = \"memcached\""},
		{"redis without addr", "[cache]\ndriver = \"redis\""},
		{"ttl", "[cache]\nttl = \"soon\""},
		{"max node limit", "[server]\nmax_node_limit = -10"},
		{"log level", "[log]\nlevel = \"loud\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if !kerrors.Is(err, kerrors.ErrCodeInvalidConfig) {
				t.Errorf("Load() error = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestOpenStoreAndCache(t *testing.T) {
	isolate(t)
	cfg, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	s, err := cfg.OpenStore(ctx)
	if err != nil {
		t.Fatalf("OpenStore() error: %v", err)
	}
	defer s.Close()
	if _, ok := s.(*store.FileStore); !ok {
		t.Errorf("OpenStore() = %T, want *store.FileStore", s)
	}

	tests := []struct {
		driver string
		want   string
	}{
		{CacheFile, "*cache.FileCache"},
		{CacheMemory, "*cache.MemoryCache"},
		{CacheNone, "*cache.NullCache"},
	}
	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			cfg.Cache.Driver = tt.driver
			c, err := cfg.OpenCache(ctx)
			if err != nil {
				t.Fatalf("OpenCache() error: %v", err)
			}
			defer c.Close()
			if got := typeName(c); got != tt.want {
				t.Errorf("OpenCache() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestKeyer(t *testing.T) {
	cfg := &Config{}
	if cfg.Keyer() != nil {
		t.Error("Keyer() without scope should be nil")
	}
	cfg.Cache.Scope = "staging"
	opts := cache.LayoutKeyOpts{Strategy: "greedy"}
	got := cfg.Keyer().LayoutKey("h", opts)
	if want := "staging:" + cache.NewDefaultKeyer().LayoutKey("h", opts); got != want {
		t.Errorf("LayoutKey() = %q, want %q", got, want)
	}
}

func typeName(c cache.Cache) string {
	switch c.(type) {
	case *cache.FileCache:
		return "*cache.FileCache"
	case *cache.MemoryCache:
		return "*cache.MemoryCache"
	case *cache.NullCache:
		return "*cache.NullCache"
	default:
		return "unknown"
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	tests := map[string]string{
		"~":            home,
		"~/x/y":        filepath.Join(home, "x", "y"),
		"/abs/path":    "/abs/path",
		"relative/dir": "relative/dir",
		"~user/dir":    "~user/dir",
	}
	for in, want := range tests {
		if got := expandHome(in); got != want {
			t.Errorf("expandHome(%q) = %q, want %q", in, got, want)
		}
	}
}
