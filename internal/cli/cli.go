package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/plantuml/internal/config"
	"github.com/matzehuels/plantuml/pkg/buildinfo"
	"github.com/matzehuels/plantuml/pkg/cache"
	"github.com/matzehuels/plantuml/pkg/client"
	"github.com/matzehuels/plantuml/pkg/errors"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "plantuml"

	// redisPrefix namespaces image entries in a shared Redis instance.
	redisPrefix = "plantuml:"
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

	configPath string // --config flag
	loadedPath string // file the settings were read from, if any
	cfg        *config.Config
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
		Use:   appName,
		Short: "Render PlantUML diagrams through a PlantUML server",
		Long: `plantuml turns PlantUML source files into images by sending them to a
PlantUML server. Diagram text is compressed and encoded into the request
URL; server error pages are saved next to the input for inspection.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/plantuml/config.toml)")

	// Register all subcommands
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.urlCommand())
	root.AddCommand(c.encodeCommand())
	root.AddCommand(c.decodeCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file and environment once per invocation.
func (c *CLI) loadConfig() error {
	path := c.configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			c.Logger.Debug("no config directory", "error", err)
		}
		path = p
	} else if _, err := os.Stat(path); err != nil {
		return errors.Wrap(errors.ErrCodeConfiguration, err, "config file %s", path)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.loadedPath = path
	if c.Logger.GetLevel() <= log.DebugLevel {
		registerLogHooks(c.Logger)
	}
	c.Logger.Debug("loaded config", "path", path, "server", cfg.Server)
	return nil
}

// settings returns the loaded settings, falling back to defaults when the root
// pre-run hook did not execute (as in some tests).
func (c *CLI) settings() *config.Config {
	if c.cfg == nil {
		c.cfg = config.Default()
	}
	return c.cfg
}

// =============================================================================
// Client Factory
// =============================================================================

// clientFlags are the connection flags shared by generate and serve.
type clientFlags struct {
	server  string
	timeout time.Duration
	retries int
	noCache bool
}

func (f *clientFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.server, "server", "s", "", "PlantUML image endpoint (overrides config)")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "per-request timeout (overrides config)")
	cmd.Flags().IntVar(&f.retries, "retries", -1, "extra attempts on connection errors and 5xx (overrides config)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the image cache")
}

// apply layers the flags over cfg and validates the result.
func (f *clientFlags) apply(cfg *config.Config) error {
	if f.server != "" {
		cfg.Server = f.server
	}
	if f.timeout > 0 {
		cfg.Timeout = config.Duration(f.timeout)
	}
	if f.retries >= 0 {
		cfg.Retries = f.retries
	}
	if f.noCache {
		cfg.Cache.Enabled = false
	}
	return cfg.Validate()
}

// newClient builds a client with the configured cache. The caller closes the
// returned cache.
func (c *CLI) newClient(ctx context.Context, cfg *config.Config) (*client.Client, cache.Cache, error) {
	store, err := newCache(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	cl, err := client.New(ctx, cfg.ClientConfig(),
		client.WithCache(store, time.Duration(cfg.Cache.TTL)),
		client.WithLogger(c.Logger),
	)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	c.Logger.Debug("client ready", "client", cl.String())
	return cl, store, nil
}

// newCache picks Redis when a URL is configured, otherwise the file cache.
func newCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	if !cfg.Cache.Enabled {
		return cache.NewNullCache(), nil
	}
	if cfg.Cache.RedisURL != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.Cache.RedisURL, redisPrefix)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeConfiguration, err, "connect to redis cache")
		}
		return rc, nil
	}
	dir, err := cacheDir(cfg)
	if err != nil {
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return fc, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, or the XDG default
// (~/.cache/plantuml/).
func cacheDir(cfg *config.Config) (string, error) {
	if cfg != nil && cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
