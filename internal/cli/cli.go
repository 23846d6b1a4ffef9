// Package cli implements the kitchendesigner command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/kitchendesigner/pkg/buildinfo"
	"github.com/matzehuels/kitchendesigner/pkg/cache"
	"github.com/matzehuels/kitchendesigner/pkg/config"
	"github.com/matzehuels/kitchendesigner/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for display.
	appName = "kitchendesigner"
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

	// ConfigPath is the settings file. Empty means the XDG default, which
	// may be missing.
	ConfigPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Kitchendesigner lays out kitchen fixtures with a MILP solver",
		Long:         `Kitchendesigner reads a kitchen description, compiles it into a mixed-integer linear program, solves it with an external engine and writes the resulting layout and drawings.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.ConfigPath, "config", "c", "", "settings file (default $XDG_CONFIG_HOME/kitchendesigner/config.toml)")

	root.AddCommand(c.solveCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.modelCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.enginesCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Settings & Runner Factory
// =============================================================================

// loadConfig reads the settings file. An explicit --config must exist.
func (c *CLI) loadConfig() (config.Config, error) {
	if c.ConfigPath != "" {
		return config.Load(c.ConfigPath, true)
	}
	path, err := config.DefaultPath()
	if err != nil {
		return config.Default(), nil
	}
	cfg, err := config.Load(path, false)
	if err != nil {
		return config.Config{}, err
	}
	c.Logger.Debug("settings", "path", path)
	return cfg, nil
}

// newRunner creates a pipeline runner for CLI use, with the cache backend
// from the settings.
func (c *CLI) newRunner(ctx context.Context, cfg config.Config, noCache bool) (*pipeline.Runner, error) {
	store, err := newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), buildinfo.Version)
	runner := pipeline.NewRunner(store, keyer, c.Logger)
	runner.TTL = cfg.Cache.TTL
	return runner, nil
}

func newCache(ctx context.Context, cfg config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	opts, err := cfg.CacheOptions()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	store, err := cache.Open(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("open %s cache: %w", opts.Backend, err)
	}
	return store, nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// baseOptions seeds pipeline options from the settings. Flags override
// these afterwards.
func baseOptions(cfg config.Config) pipeline.Options {
	w := cfg.Objective
	return pipeline.Options{
		Engine:    cfg.Solver.Engine,
		TimeLimit: cfg.Solver.Timeout,
		Families:  append([]string(nil), cfg.Solver.Families...),
		Weights:   &w,
		KeepFiles: cfg.Solver.KeepFiles,
	}
}

// parseList parses a comma-separated flag value into a slice, dropping
// empty entries.
func parseList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
