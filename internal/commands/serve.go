package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"assetmix/internal/assetapi"
	"assetmix/internal/chart"
	"assetmix/internal/config"
	apphttp "assetmix/internal/http"
	"assetmix/internal/log"
	"assetmix/internal/middleware/ratelimit"
	"assetmix/internal/session"
	"assetmix/internal/view"
)

const shutdownTimeout = 30 * time.Second

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web server",
	Long: `Start the assetmix web server.

Each browser gets its own session with its own page state and charts.
Sessions idle longer than SESSION_TTL are closed.

Examples:
  assetmix serve                     # listen on $PORT (default 8081)
  assetmix serve --port 9000         # listen on a custom port
  assetmix serve --env-file prod.env # read settings from a file`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "listen port (overrides PORT)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, logger, err := setup(ctx, func(c *config.Config) {
		if servePort != "" {
			c.Port = servePort
		}
	})
	if err != nil {
		return err
	}
	appLogger := logger.WithComponent(log.ComponentApp)

	client, err := assetapi.New(cfg.AssetAPIURL, cfg.AssetAPITimeout, assetapi.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("asset api client: %w", err)
	}

	store := session.NewStore(session.Config{
		TTL:             cfg.SessionTTL,
		MaxSessions:     cfg.SessionMax,
		CleanupInterval: cfg.SessionCleanupInterval,
	}, func(id string) *view.Controller {
		renderer := chart.NewSVGRenderer(cfg.ChartWidth, cfg.ChartHeight, logger)
		return view.NewController(client, renderer, view.NewBindings(cfg.CurrencyUnit), view.Options{
			Logger: logger.With(log.FieldSessionID, id),
		})
	}, logger)

	rl := ratelimit.DefaultConfig()
	rl.RequestsPerMinute = cfg.RateLimitPerMinute

	srv := apphttp.NewServer(apphttp.Options{
		Addr:      ":" + cfg.Port,
		Sessions:  store,
		Pinger:    client,
		RateLimit: rl,
		Logger:    logger,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		appLogger.Info("Starting assetmix server",
			log.FieldOperation, log.OpStartup,
			"port", cfg.Port,
			log.FieldUpstream, client.BaseURL())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error { return store.Run(gctx) })
	g.Go(func() error { return srv.RateLimiter().Run(gctx) })
	g.Go(func() error {
		<-gctx.Done()
		appLogger.Info("Shutting down", log.FieldOperation, log.OpShutdown)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		store.Close()
		if err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		appLogger.Error("Server stopped with error", log.FieldError, err.Error())
		return err
	}
	appLogger.Info("Server stopped gracefully")
	return nil
}
