package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/keyforge/pkg/buildinfo"
	"github.com/matzehuels/keyforge/pkg/config"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// Before any subcommand runs, the root loads the config file (--config, or
// the XDG default), sets the log level (--verbose wins over [log] level) and,
// when --log-file or [log] file is set, tees log output into a rotating file.
// The logger is attached to the command context and reachable through
// loggerFromContext.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Keyforge designs keyboard layouts from typing statistics",
		Long: `Keyforge builds character transition matrices from text or word-frequency
lists and searches for the keyboard layout that minimizes finger travel
between frequent digraphs.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.setup(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.Close()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/keyforge/config.toml)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.logFile, "log-file", "", "also write logs to this file (rotated)")

	// Register all subcommands
	root.AddCommand(c.alphabetCommand())
	root.AddCommand(c.matrixCommand())
	root.AddCommand(c.keyboardCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads the configuration and rebuilds the logger from it.
func (c *CLI) setup() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.logFile != "" {
		cfg.Log.File = c.logFile
	}
	c.cfg = cfg

	level := cfg.LogLevel()
	if c.verbose {
		level = LogDebug
	}

	var w io.Writer = os.Stderr
	if sink := cfg.LogWriter(); sink != nil {
		c.logSink = sink
		w = io.MultiWriter(os.Stderr, sink)
	}
	c.Logger = newLogger(w, level)
	return nil
}
