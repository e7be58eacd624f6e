// Package cli implements the conceptmap command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/conceptmap/pkg/buildinfo"
	"github.com/matzehuels/conceptmap/pkg/cache"
	"github.com/matzehuels/conceptmap/pkg/concept"
	"github.com/matzehuels/conceptmap/pkg/config"
	apperr "github.com/matzehuels/conceptmap/pkg/errors"
	"github.com/matzehuels/conceptmap/pkg/generate"
	"github.com/matzehuels/conceptmap/pkg/pipeline"
	"github.com/matzehuels/conceptmap/pkg/render"
	"github.com/matzehuels/conceptmap/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "conceptmap"

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

	// Config is loaded before any command runs; until then it holds the
	// built-in defaults.
	Config config.Config

	configPath string
	logFormat  string
	noCache    bool
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
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
		Short: "conceptmap lays out concept maps in levels",
		Long: `conceptmap turns concept graphs (concepts plus labeled relations) into
leveled layouts: a root at the top, its neighbors below, and so on down to a
fixed number of levels. Layouts can be rendered to SVG or Graphviz, inspected,
browsed in the terminal, stored, and served over HTTP.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			if err := c.setLogFormat(c.logFormat); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	flags.StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/conceptmap/config.toml)")
	flags.BoolVar(&c.noCache, "no-cache", false, "disable caching")
	flags.StringVar(&c.logFormat, "log-format", logFormatText, "log format: text, json or logfmt")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.mapsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads .env and the config file into c.Config.
func (c *CLI) loadConfig() error {
	if err := config.LoadEnv(); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	c.Logger.Debug("config loaded",
		"cache", cfg.Cache.Backend,
		"store", cfg.Store.Backend,
		"depth", cfg.Layout.DefaultDepth)
	return nil
}

// =============================================================================
// Factories
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	ch, err := c.newCache(ctx)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(ch, c.newKeyer(), c.Logger), nil
}

// newKeyer namespaces keys for the shared Redis backend.
func (c *CLI) newKeyer() cache.Keyer {
	if c.Config.Cache.Backend != config.CacheRedis {
		return cache.NewDefaultKeyer()
	}
	return cache.WithPrefix(nil, c.Config.Cache.KeyPrefix)
}

// newCache opens the configured cache backend. A file cache whose
// directory cannot be determined degrades to no caching.
func (c *CLI) newCache(ctx context.Context) (cache.Cache, error) {
	if c.noCache {
		return cache.NewNullCache(), nil
	}

	var ch cache.Cache
	switch c.Config.Cache.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, c.Config.Cache.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("connect redis cache: %w", err)
		}
		ch = rc
	default:
		dir := c.Config.Cache.Dir
		if dir == "" {
			d, err := cacheDir()
			if err != nil {
				c.Logger.Warn("no cache directory, caching disabled", "err", err)
				return cache.NewNullCache(), nil
			}
			dir = d
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, fmt.Errorf("open cache %s: %w", dir, err)
		}
		ch = fc
	}
	return cache.WithMaxTTL(ch, c.Config.Cache.TTL.Duration), nil
}

// newStore opens the configured map store.
func (c *CLI) newStore(ctx context.Context) (store.Store, error) {
	if c.Config.Store.Backend == config.StoreMongo {
		st, err := store.NewMongoStore(ctx, c.Config.Store.MongoURI, c.Config.Store.Database)
		if err != nil {
			return nil, fmt.Errorf("connect mongo store: %w", err)
		}
		return st, nil
	}

	dir := c.Config.Store.Dir
	if dir == "" {
		d, err := dataDir()
		if err != nil {
			return nil, fmt.Errorf("get data dir: %w", err)
		}
		dir = filepath.Join(d, "maps")
	}
	return store.NewFileStore(dir)
}

// newGenerator builds an OpenAI-backed generator sharing ch. Without an API
// key it returns an UNSUPPORTED error.
func (c *CLI) newGenerator(ch cache.Cache) (*generate.Generator, error) {
	gc := c.Config.Generate
	if gc.APIKey == "" {
		return nil, apperr.New(apperr.ErrCodeUnsupported, "generation needs an API key (set OPENAI_API_KEY)")
	}

	opts := []generate.OpenAIOption{generate.WithModel(gc.Model)}
	if gc.BaseURL != "" {
		opts = append(opts, generate.WithBaseURL(gc.BaseURL))
	}
	if gc.Timeout.Duration > 0 {
		opts = append(opts, generate.WithHTTPClient(&http.Client{Timeout: gc.Timeout.Duration}))
	}
	completer, err := generate.NewOpenAICompleter(gc.APIKey, opts...)
	if err != nil {
		return nil, err
	}
	return generate.NewGenerator(completer, ch, c.newKeyer(), c.Logger), nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/conceptmap/).
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

// dataDir returns the data directory using XDG standard (~/.local/share/conceptmap/).
func dataDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// applyDefaults fills depth and label length from the config when neither
// the flags nor the document set them.
func (c *CLI) applyDefaults(doc concept.Document, opts *pipeline.Options) {
	if opts.MaxLevels == 0 && doc.Depth == 0 {
		opts.MaxLevels = c.Config.Layout.DefaultDepth
	}
	if opts.LabelWords == 0 {
		opts.LabelWords = c.Config.Layout.LabelWords
	}
	opts.Logger = c.Logger
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{render.FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
