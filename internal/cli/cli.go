package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/layershare/pkg/buildinfo"
	"github.com/matzehuels/layershare/pkg/cache"
	"github.com/matzehuels/layershare/pkg/config"
	"github.com/matzehuels/layershare/pkg/history"
	"github.com/matzehuels/layershare/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "layershare"

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

	configPath string
}

// New creates a new CLI instance with a default logger and the built-in
// configuration. The configuration file is read before each command runs.
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
		Short: "Layershare shows which image layers a set of tags share",
		Long: `Layershare reads the build history of several tags of a container image,
merges the histories into a tree of shared layers and reports how much of
the total size every branch accounts for.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/layershare/config.toml)")

	root.AddCommand(c.compareCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	c.Logger.Debug("loaded config", "provider", cfg.Provider, "formats", cfg.Formats)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a provider of the given kind and a pipeline runner using
// it. The returned provider must be closed by the caller.
func (c *CLI) newRunner(kind, platform string, noCache bool) (*pipeline.Runner, history.Provider, error) {
	p, err := history.New(kind, history.Options{
		Platform:  platform,
		UserAgent: buildinfo.UserAgent(),
	})
	if err != nil {
		return nil, nil, err
	}
	cc, err := newCache(noCache)
	if err != nil {
		_ = history.Close(p)
		return nil, nil, err
	}
	r := pipeline.NewRunner(p, cc, nil, c.Logger)
	r.TTL = c.Config.CacheTTL
	r.Platform = platform
	return r, p, nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/layershare/).
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

// basePath derives the extension-less output path. An explicit output keeps
// its directory and drops a known format extension; otherwise the name is
// derived from the repository (or archive file) inside dir.
func basePath(output, dir, repository string) string {
	if output != "" {
		ext := filepath.Ext(output)
		if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
			return strings.TrimSuffix(output, ext)
		}
		return output
	}
	name := filepath.Base(repository)
	for _, ext := range []string{".tar.gz", ".tgz", ".tar"} {
		name = strings.TrimSuffix(name, ext)
	}
	if name == "" || name == "." || name == "/" {
		name = appName
	}
	return filepath.Join(dir, name)
}

// writeArtifacts writes each artifact to base.<format> in format order and
// returns the written paths.
func writeArtifacts(base string, formats []string, artifacts map[string][]byte) ([]string, error) {
	if dir := filepath.Dir(base); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}
	var paths []string
	for _, format := range formats {
		data, ok := artifacts[format]
		if !ok {
			continue
		}
		path := base + "." + format
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// cachedProvider returns the runner's provider behind the runner's cache, or
// the bare provider when noCache is set.
func cachedProvider(r *pipeline.Runner, noCache bool) history.Provider {
	if noCache {
		return r.Provider
	}
	return history.NewCachedProvider(r.Provider, r.Cache, history.CacheOptions{
		Keyer:    r.Keyer,
		TTL:      r.TTL,
		Platform: r.Platform,
	})
}
