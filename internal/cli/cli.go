// Package cli implements the keyforge command-line interface.
package cli

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/keyforge/pkg/cache"
	"github.com/matzehuels/keyforge/pkg/config"
	"github.com/matzehuels/keyforge/pkg/core/layout"
	"github.com/matzehuels/keyforge/pkg/pipeline"
	"github.com/matzehuels/keyforge/pkg/render"
	"github.com/matzehuels/keyforge/pkg/workspace"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	logFile    string
	verbose    bool

	cfg     *config.Config
	logSink io.Closer
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// Close flushes and closes the log file, if one is open.
func (c *CLI) Close() error {
	if c.logSink == nil {
		return nil
	}
	err := c.logSink.Close()
	c.logSink = nil
	return err
}

// config returns the loaded configuration, or defaults when the root
// command's pre-run has not loaded one (tests, direct calls).
func (c *CLI) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Default()
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

// =============================================================================
// Runner & Workspace Factories
// =============================================================================

// newRunner creates a pipeline runner over the configured cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	cc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cc, cfg.Keyer(), c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	cc, err := cfg.OpenCache(ctx)
	if err != nil {
		c.Logger.Warn("cache unavailable, continuing without", "driver", cfg.Cache.Driver, "err", err)
		return cache.NewNullCache(), nil
	}
	return cc, nil
}

// openWorkspace opens the configured store with a cached runner on top.
func (c *CLI) openWorkspace(ctx context.Context, noCache bool) (*workspace.Workspace, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	s, err := cfg.OpenStore(ctx)
	if err != nil {
		return nil, err
	}
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		s.Close()
		return nil, err
	}
	return workspace.New(s, runner, c.Logger), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// layoutFlags holds the flags shared by commands that compute layouts.
type layoutFlags struct {
	strategy  string
	nodeLimit int
	noCache   bool
	refresh   bool
}

// options turns the flags into pipeline options, falling back to the
// config file for anything not given on the command line.
func (c *CLI) layoutOptions(f layoutFlags) (pipeline.Options, error) {
	cfg, err := c.config()
	if err != nil {
		return pipeline.Options{}, err
	}
	opts := pipeline.Options{
		Strategy:  cfg.Strategy(),
		NodeLimit: cfg.Layout.NodeLimit,
		Refresh:   f.refresh,
		Logger:    c.Logger,
	}
	if f.strategy != "" {
		s, err := layout.ParseStrategy(f.strategy)
		if err != nil {
			return pipeline.Options{}, err
		}
		opts.Strategy = s
	}
	if f.nodeLimit != 0 {
		opts.NodeLimit = f.nodeLimit
	}
	return opts, opts.ValidateForLayout()
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{render.FormatText}
	}
	var formats []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			formats = append(formats, f)
		}
	}
	return formats
}
