package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rongwang/tripdate-server/internal/api"
	"github.com/rongwang/tripdate-server/internal/config"
	"github.com/rongwang/tripdate-server/internal/repository"
	"github.com/rongwang/tripdate-server/internal/service"
	"github.com/rongwang/tripdate-server/internal/utils"
	"github.com/spf13/cobra"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Port int
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the trip API server.

The database schema is created on startup. When RATE_LIMIT_ENABLED is set
and Redis answers, requests under /api are rate limited per client.

Example:
  tripdate serve
  tripdate serve --port 9090 --env-file ./local.env`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Port, "port", "p", 0, "listen port (overrides SERVER_PORT)")

	return cmd
}

func runServer(opts *ServeOptions) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	if opts.Port != 0 {
		cfg.Server.Port = opts.Port
	}
	if cfg.Server.GinMode != "" {
		gin.SetMode(cfg.Server.GinMode)
	}

	logger := utils.NewLogger()

	db, err := config.SetupDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}
	defer db.Close()

	repo := repository.NewSQLRepository(db)
	svc := service.NewDefaultService(repo, logger)
	handler := api.NewHandler(svc, logger, cfg.Server.PublicBaseURL)

	var middleware []gin.HandlerFunc
	if cfg.RateLimit.Enabled {
		rdb := config.NewRedisClient(cfg.Redis)
		if rdb == nil {
			logger.Warn("redis at %s unreachable, rate limiting disabled", cfg.Redis.Addr)
		} else {
			defer rdb.Close()
			middleware = append(middleware, api.RateLimitMiddleware(cfg.RateLimit, rdb, logger))
		}
	}

	router := gin.New()
	router.Use(api.AccessLogger(gin.DefaultWriter), gin.Recovery())
	handler.SetupRoutes(router, middleware...)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server on %s (%s)", srv.Addr, cfg.Database.Driver)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
