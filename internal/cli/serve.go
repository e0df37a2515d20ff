package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/cache"
	"github.com/matzehuels/kintree/pkg/pipeline"
	"github.com/matzehuels/kintree/pkg/session"
)

const (
	defaultAddr            = "localhost:8080"
	sessionCleanupInterval = 10 * time.Minute
	shutdownTimeout        = 5 * time.Second
)

// serveCommand creates the HTTP shell command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
		redis   cache.RedisConfig
		src     sourceFlags
		flags   optionFlags
	)

	cmd := &cobra.Command{
		Use:   "serve [family.json]",
		Short: "Serve a family tree over HTTP",
		Long: `Serve a family tree over HTTP.

Every viewer gets its own view state, identified by the X-Kintree-Session
header (or the kintree_session cookie). Endpoints:

  GET  /api/layout          current layout (JSON)
  GET  /api/layout.svg      current layout as SVG
  POST /api/toggle/{id}     expand or collapse a node
  POST /api/focus/{id}      open the path to a person and focus it
  POST /api/expand-all      expand everything
  POST /api/collapse-all    collapse everything below the roots
  POST /api/reset           reset pan, zoom and focus
  GET  /api/people/{id}     details of one person
  GET  /api/search?q=       people whose name contains q
  GET  /api/diagnostics     data problems found while loading

Layouts are cached in Redis when --redis-addr is set, so several server
processes can share them.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeFamilyFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts, err := flags.resolve(c.Logger)
			if err != nil {
				return err
			}
			doc, name, err := src.load(ctx, inputArg(args))
			if err != nil {
				return err
			}

			runner, err := c.newServeRunner(ctx, noCache, redis)
			if err != nil {
				return err
			}
			defer runner.Close()

			// Load once up front so broken data fails before listening.
			probe, err := pipeline.Load(ctx, doc, opts)
			if err != nil {
				return err
			}
			printDiagnostics(probe.Diagnostics(), maxPrintedDiagnostics)

			srv := newServer(doc, opts, runner, session.NewMemoryStore(), c.Logger)
			printSuccess("Serving %s (%d people)", name, probe.Index().Len())
			printKeyValue("Address", StyleLink.Render("http://"+addr+"/api/layout"))
			return srv.listen(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&redis.Addr, "redis-addr", "", "cache layouts in Redis at this address")
	cmd.Flags().StringVar(&redis.Password, "redis-password", "", "Redis password")
	cmd.Flags().IntVar(&redis.DB, "redis-db", 0, "Redis database number")
	src.register(cmd)
	flags.register(cmd)

	return cmd
}

// newServeRunner uses Redis when configured and the file cache otherwise.
func (c *CLI) newServeRunner(ctx context.Context, noCache bool, redis cache.RedisConfig) (*pipeline.Runner, error) {
	if noCache || redis.Addr == "" {
		return c.newRunner(noCache)
	}
	rc, err := cache.NewRedisCache(ctx, redis)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	c.Logger.Info("caching layouts in redis", "addr", redis.Addr, "db", redis.DB)
	return pipeline.NewRunner(rc, cache.NewScopedKeyer(nil, appName+":"), c.Logger), nil
}

// listen serves until ctx is cancelled, then shuts down gracefully.
func (s *server) listen(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.cleanupLoop(ctx, sessionCleanupInterval)

	errc := make(chan error, 1)
	go func() { errc <- httpServer.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}
