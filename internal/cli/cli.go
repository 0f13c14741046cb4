package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/genomechart/pkg/buildinfo"
	"github.com/matzehuels/genomechart/pkg/cache"
	"github.com/matzehuels/genomechart/pkg/composer"
	"github.com/matzehuels/genomechart/pkg/config"
	gcio "github.com/matzehuels/genomechart/pkg/io"
	"github.com/matzehuels/genomechart/pkg/measurement/memory"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "genomechart"

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
		Short:        "genomechart composes genomic data files into epiviz chart pages",
		Long:         `genomechart loads BED, bedGraph, table and gene files for one genomic region and composes them into an HTML page of epiviz chart components, written to disk or served over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.plotCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.chartsCommand())
	root.AddCommand(c.cacheCommand())

	return root
}

// =============================================================================
// Composition
// =============================================================================

// session is a composer with the cache it writes to.
type session struct {
	composer *composer.Composer
	cache    cache.Cache
}

func (s *session) Close() error { return s.cache.Close() }

// compose loads every chart of cfg into a new composer.
func compose(ctx context.Context, cfg *config.Config, noCache bool) (*session, error) {
	logger := loggerFromContext(ctx)

	ch := openCache(ctx, cfg.Cache, noCache)
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), buildinfo.CacheScope())

	c, err := composer.New(cfg.Window, memory.New(),
		composer.WithLogger(logger),
		composer.WithCache(ch, keyer),
		composer.WithCacheTTL(cfg.Cache.TTL.Duration),
	)
	if err != nil {
		ch.Close()
		return nil, err
	}
	s := &session{composer: c, cache: ch}

	for _, chart := range cfg.Charts {
		prog := newProgress(logger)
		path := chart.Path(cfg.Dir)
		data, err := gcio.ImportFile(path, chart.Format)
		if err != nil {
			s.Close()
			return nil, err
		}
		result, err := c.Plot(ctx, data, composer.PlotOptions{
			Name:       chart.Name,
			OriginName: chart.File,
			ChartType:  chart.Type,
			Settings:   chart.Settings,
			Colors:     chart.Colors,
			Params:     chart.Params(),
			RowFilter:  chart.Filter,
		})
		if err != nil {
			s.Close()
			return nil, err
		}
		prog.done("plotted chart", "name", chart.Name, "tag", result.TagName, "rows", result.Payload.RowCount)
	}
	return s, nil
}

// openCache opens the configured cache. Failures fall back to no caching.
func openCache(ctx context.Context, cfg config.Cache, noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	logger := loggerFromContext(ctx)

	dir, err := cacheDir()
	if err != nil && cfg.Backend == cache.BackendFile && cfg.Dir == "" {
		logger.Warn("no cache directory, caching disabled", "err", err)
		return cache.NewNullCache()
	}
	ch, err := cache.Open(ctx, cfg.Options(dir))
	if err != nil {
		logger.Warn("cache unavailable, caching disabled", "backend", cfg.Backend, "err", err)
		return cache.NewNullCache()
	}
	logger.Debug("opened cache", "backend", cfg.Backend)
	return ch
}

func htmlOptions(cfg *config.Config) gcio.HTMLOptions {
	return gcio.HTMLOptions{Title: cfg.Title, Scripts: cfg.Scripts, Imports: cfg.Imports}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/genomechart/).
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
