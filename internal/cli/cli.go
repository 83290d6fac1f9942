// Package cli implements the glycoworks command-line interface.
//
// This package provides commands for parsing IUPAC-condensed glycan
// sequences, quantifying motifs, running differential abundance analysis,
// drawing SNFG diagrams, querying external chemistry databases, and
// serving the HTTP API. The CLI is built using cobra and supports verbose
// logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - parse: Validate sequences and print structure summaries
//   - motifs: Count library motifs across glycans
//   - diff: Differential abundance between two sample groups
//   - draw: Render SNFG diagrams (SVG, PNG, DOT, JSON)
//   - chem: Look up compounds in PubChem and GlyTouCan
//   - embed, predict: Model inference over glycan structures
//   - datasets: Manage named glycan collections
//   - cache: Manage the local result cache
//   - serve: Run the HTTP API
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Glycocalex/glycowork-ab/pkg/buildinfo"
	"github.com/Glycocalex/glycowork-ab/pkg/cache"
	"github.com/Glycocalex/glycowork-ab/pkg/config"
	"github.com/Glycocalex/glycowork-ab/pkg/pipeline"
	"github.com/Glycocalex/glycowork-ab/pkg/store"
)

// appName is the application name used for directories and display.
const appName = "glycoworks"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *config.Config

	configPath string
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          appName,
		Short:        "Glycoworks analyzes glycan structures",
		Long:         `Glycoworks is a CLI tool for glycan analysis: parsing IUPAC-condensed sequences, motif quantification, differential abundance statistics, and SNFG diagram rendering.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				c.SetLogLevel(log.DebugLevel)
			}
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.Config = cfg
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ~/.config/glycoworks/config.toml)")

	root.AddCommand(c.parseCommand())
	root.AddCommand(c.motifsCommand())
	root.AddCommand(c.diffCommand())
	root.AddCommand(c.drawCommand())
	root.AddCommand(c.chemCommand())
	root.AddCommand(c.embedCommand())
	root.AddCommand(c.predictCommand())
	root.AddCommand(c.datasetsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	backend, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	runner := pipeline.NewRunner(backend, nil, c.Logger)
	runner.TTL = c.Config.Cache.TTL.Duration
	return runner, nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.Config.Cache.Backend {
	case "null":
		return cache.NewNullCache(), nil
	case "redis":
		return cache.NewRedisCache(ctx, c.Config.Cache.RedisAddr, "", c.Config.Cache.RedisDB)
	default:
		dir := c.Config.Cache.Dir
		if dir == "" {
			var err error
			dir, err = cacheDir()
			if err != nil {
				return cache.NewNullCache(), nil
			}
		}
		return cache.NewFileCache(dir)
	}
}

// newStore creates the dataset store selected by the configuration.
func (c *CLI) newStore(ctx context.Context) (store.Store, error) {
	if c.Config.Store.Backend == "mongo" {
		return store.NewMongoStore(ctx, c.Config.Store.MongoURI, c.Config.Store.MongoDatabase)
	}
	return store.NewFileStore(c.Config.Store.Dir)
}

// cacheDir returns the cache directory using XDG standard (~/.cache/glycoworks/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}

// readGlycans resolves the glycan list for a command: positional sequences
// win, then --dataset, then a file of one sequence per line via --input.
func (c *CLI) readGlycans(ctx context.Context, args []string, dataset, input string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	if dataset != "" {
		st, err := c.newStore(ctx)
		if err != nil {
			return nil, err
		}
		defer st.Close(ctx)
		d, err := store.Resolve(ctx, st, dataset)
		if err != nil {
			return nil, err
		}
		return d.Glycans, nil
	}
	if input != "" {
		data, err := os.ReadFile(input)
		if err != nil {
			return nil, err
		}
		var seqs []string
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if line != "" && !strings.HasPrefix(line, "#") {
				seqs = append(seqs, line)
			}
		}
		return seqs, nil
	}
	return nil, fmt.Errorf("no glycans given: pass sequences, --dataset, or --input")
}
