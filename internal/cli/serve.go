package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/scenelayout/pkg/cache"
	"github.com/matzehuels/scenelayout/pkg/observability"
	"github.com/matzehuels/scenelayout/pkg/pipeline"
	"github.com/matzehuels/scenelayout/pkg/server"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr     string
	redisURL string
	prefix   string
	noCache  bool
}

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{addr: server.DefaultAddr}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the layout HTTP API",
		Long: `Run the layout HTTP API.

Routes:
  GET  /healthz          liveness and build info
  GET  /v1/strategies    available placement strategies
  POST /v1/align         scene document in, layout out
  POST /v1/collisions    placed objects in, collision records out

Layouts are cached in the local cache directory, or in Redis when --redis
or ` + envRedis + ` is set so several instances can share results.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.redisURL == "" {
				opts.redisURL = os.Getenv(envRedis)
			}
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVar(&opts.redisURL, "redis", "", "Redis URL for a shared cache (redis://host:port/db)")
	cmd.Flags().StringVar(&opts.prefix, "cache-prefix", "", "namespace for cache keys in a shared Redis")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

// runServe wires the cache, runner and hooks and blocks until ctx is done.
func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	store, err := newSharedCache(ctx, opts.redisURL, opts.noCache)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}

	var keyer cache.Keyer
	if opts.prefix != "" {
		keyer = cache.NewScopedKeyer(cache.NewDefaultKeyer(), opts.prefix)
	}
	logger := loggerFromContext(ctx)
	runner := pipeline.NewRunner(store, keyer, logger)
	defer runner.Close()

	hooks := observability.NewLogHooks(logger)
	observability.SetLayoutHooks(hooks)
	observability.SetCacheHooks(hooks)
	observability.SetHTTPHooks(hooks)
	defer observability.Reset()

	backend := "file"
	switch {
	case opts.noCache:
		backend = "none"
	case opts.redisURL != "":
		backend = "redis"
	}
	printInfo("Listening on %s", opts.addr)
	printDetail("cache: %s", backend)

	return server.New(runner, logger).ListenAndServe(ctx, opts.addr)
}
