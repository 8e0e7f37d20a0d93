// Package cli implements the guppy command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/guppy-rs/guppy/internal/config"
	"github.com/guppy-rs/guppy/pkg/buildinfo"
	"github.com/guppy-rs/guppy/pkg/graph"
	"github.com/guppy-rs/guppy/pkg/metadata"
	"github.com/guppy-rs/guppy/pkg/platform"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "guppy"

	// stdinPath selects standard input in place of a metadata file.
	stdinPath = "-"
)

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
	Config config.Config

	// In and Out replace stdin and stdout; tests set them.
	In  io.Reader
	Out io.Writer

	configPath string
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
		In:     os.Stdin,
		Out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Guppy builds and queries Cargo package graphs",
		Long: `Guppy reads the output of "cargo metadata --format-version 1" and builds a
package graph annotated with dependency kinds, platform conditions and features.

Every command takes the metadata file as its first argument; "-" reads stdin:

  cargo metadata --format-version 1 | guppy check -`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.loadConfig,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/guppy/config.toml)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	// Register all subcommands
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.membersCommand())
	root.AddCommand(c.topoCommand())
	root.AddCommand(c.depsCommand())
	root.AddCommand(c.dotCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file and applies its log level. Flags set on
// the command line take precedence over the file.
func (c *CLI) loadConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg

	if c.verbose || (cfg.Verbose && !cmd.Flags().Changed("verbose")) {
		c.SetLogLevel(LogDebug)
	}
	return nil
}

// =============================================================================
// Graph Loading
// =============================================================================

// loadGraph reads cargo metadata from path, or stdin for "-", and builds its
// package graph.
func (c *CLI) loadGraph(ctx context.Context, path string) (*graph.PackageGraph, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prog := newProgress(c.Logger)
	var (
		m   *metadata.Metadata
		err error
	)
	if path == stdinPath {
		m, err = metadata.Read(c.In)
	} else {
		m, err = metadata.Load(path)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", displayPath(path), err)
	}

	g, err := graph.Build(m, graph.WithLogger(c.Logger))
	if err != nil {
		return nil, err
	}
	prog.done(fmt.Sprintf("Built graph of %d packages and %d links", g.Len(), g.LinkCount()))
	return g, nil
}

// platformFor resolves the --platform flag, falling back to the config file.
// It returns nil if neither is set.
func (c *CLI) platformFor(flag string) (*platform.Platform, error) {
	triple := flag
	if triple == "" {
		triple = c.Config.Platform
	}
	if triple == "" {
		return nil, nil
	}
	return platform.New(triple)
}

func displayPath(path string) string {
	if path == stdinPath {
		return "stdin"
	}
	return path
}
