package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stickerwall/internal/server"
	"github.com/matzehuels/stickerwall/pkg/cache"
	"github.com/matzehuels/stickerwall/pkg/history"
	"github.com/matzehuels/stickerwall/pkg/pipeline"
)

const (
	shutdownTimeout = 10 * time.Second
	redisKeyPrefix  = appName + ":"
)

// serveFlags holds the serve command's backing-service options.
type serveFlags struct {
	addr      string
	redisAddr string
	redisPass string
	mongoURI  string
	mongoDB   string
	noCache   bool
}

// serveCommand creates the serve command, which exposes one worker session
// over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		flags optionFlags
		sf    serveFlags
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve wallpapers over HTTP",
		Long: `Load the stickers once and serve wallpapers over HTTP.

Endpoints:
  GET  /healthz   readiness and image count
  POST /generate  JSON options in, image out (?format=dataurl for JSON)
  GET  /history   recent generations

Option flags set the defaults that request bodies override. With --redis
the asset and artifact cache is shared through Redis; with --mongo the
generation history is persisted to MongoDB.`,
		Example: `  stickerwall serve --assets ~/stickers
  stickerwall serve -c profile.toml --redis localhost:6379 --mongo mongodb://localhost:27017`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Lookup("addr").Changed {
				if port := os.Getenv("PORT"); port != "" {
					sf.addr = ":" + port
				}
			}
			return c.runServe(cmd.Context(), opts, sf)
		},
	}

	flags.bindAll(cmd)
	fl := cmd.Flags()
	fl.StringVar(&sf.addr, "addr", ":8080", "listen address (default port from $PORT)")
	fl.StringVar(&sf.redisAddr, "redis", "", "Redis address for the shared cache")
	fl.StringVar(&sf.redisPass, "redis-password", "", "Redis password")
	fl.StringVar(&sf.mongoURI, "mongo", "", "MongoDB URI for generation history")
	fl.StringVar(&sf.mongoDB, "mongo-db", history.DefaultDatabase, "MongoDB database")
	fl.BoolVar(&sf.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts pipeline.Options, sf serveFlags) error {
	logger := loggerFromContext(ctx)

	runner, err := c.newServeRunner(ctx, sf)
	if err != nil {
		return err
	}
	defer runner.Close()

	opts.Logger = logger
	session, err := runner.Open(ctx, opts)
	if err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	defer session.Close()

	srv := &http.Server{
		Addr: sf.addr,
		Handler: server.New(session,
			server.WithHistory(runner.History),
			server.WithDefaults(opts),
			server.WithLogger(logger),
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	printSuccess("Listening on %s", sf.addr)
	printNextStep("Try", fmt.Sprintf("curl -X POST -o wall.png http://localhost%s/generate", sf.addr))

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(sctx)
}

// newServeRunner builds a runner over Redis and MongoDB when configured,
// falling back to the local cache and in-memory history.
func (c *CLI) newServeRunner(ctx context.Context, sf serveFlags) (*pipeline.Runner, error) {
	var (
		store cache.Cache
		keyer cache.Keyer
		err   error
	)
	switch {
	case sf.redisAddr != "" && !sf.noCache:
		store, err = cache.NewRedisCache(ctx, cache.RedisConfig{Addr: sf.redisAddr, Password: sf.redisPass})
		keyer = cache.NewScopedKeyer(nil, redisKeyPrefix)
	default:
		store, err = newCache(sf.noCache)
	}
	if err != nil {
		return nil, fmt.Errorf("initialize cache: %w", err)
	}
	runner := pipeline.NewRunner(store, keyer, c.Logger)

	if sf.mongoURI != "" {
		h, err := history.NewMongoStore(ctx, history.MongoConfig{URI: sf.mongoURI, Database: sf.mongoDB})
		if err != nil {
			runner.Close()
			return nil, fmt.Errorf("initialize history: %w", err)
		}
		runner.History = h
	}
	return runner, nil
}
