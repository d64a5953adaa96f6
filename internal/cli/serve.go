package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/layershare/internal/server"
	"github.com/matzehuels/layershare/pkg/buildinfo"
	"github.com/matzehuels/layershare/pkg/cache"
	"github.com/matzehuels/layershare/pkg/history"
	"github.com/matzehuels/layershare/pkg/pipeline"
)

type serveOpts struct {
	addr      string
	redisAddr string
	provider  string
	platform  string
}

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve forests and diagrams over HTTP",
		Long: `Serve runs the HTTP API:

  GET /healthz
  GET /v1/forest?repository=R&version=V&version=W
  GET /v1/diagram.{svg|png|dot}?repository=R&version=V&version=W

Histories are cached in memory, or in Redis with --redis.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				opts.addr = c.Config.ServerAddr
			}
			if !cmd.Flags().Changed("redis") {
				opts.redisAddr = c.Config.RedisAddr
			}
			if !cmd.Flags().Changed("provider") {
				opts.provider = c.Config.Provider
			}
			if !cmd.Flags().Changed("platform") {
				opts.platform = c.Config.Platform
			}
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default :8080)")
	cmd.Flags().StringVar(&opts.redisAddr, "redis", "", "Redis address for the shared history cache")
	cmd.Flags().StringVar(&opts.provider, "provider", "", "history source: daemon (default), registry, archive")
	cmd.Flags().StringVar(&opts.platform, "platform", "", "platform of multi-arch images (e.g. linux/arm64)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	p, err := history.New(opts.provider, history.Options{
		Platform:  opts.platform,
		UserAgent: buildinfo.UserAgent(),
	})
	if err != nil {
		return err
	}
	defer history.Close(p)

	cc, err := newServerCache(ctx, opts.redisAddr)
	if err != nil {
		return err
	}
	defer cc.Close()
	var keyer cache.Keyer
	if opts.redisAddr != "" {
		keyer = cache.NewScopedKeyer(nil, appName+":")
		c.Logger.Info("using redis cache", "addr", opts.redisAddr)
	}

	runner := pipeline.NewRunner(p, cc, keyer, c.Logger)
	runner.TTL = c.Config.CacheTTL
	runner.Platform = opts.platform

	c.Logger.Info("serving histories", "provider", p.Name(), "version", buildinfo.Version)
	return server.New(opts.addr, runner, c.Logger).Start(ctx)
}

func newServerCache(ctx context.Context, redisAddr string) (cache.Cache, error) {
	if redisAddr != "" {
		return cache.NewRedisCache(ctx, cache.RedisConfig{Addr: redisAddr})
	}
	return cache.NewMemoryCache(cache.DefaultMemoryEntries)
}
