package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/pecal-inc/pecal/internal/infrastructure/migration"
	"github.com/pecal-inc/pecal/internal/interfaces/cli/bootstrap"
	httpRouter "github.com/pecal-inc/pecal/internal/interfaces/http"
	"github.com/pecal-inc/pecal/internal/shared/goroutine"
)

const shutdownTimeout = 30 * time.Second

var (
	env                string
	autoMigrate        bool
	skipMigrationCheck bool
	withScheduler      bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP server",
		Long:  `Start the Pecal billing HTTP server with specified configuration.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "Automatically run database migrations on startup (not recommended for production)")
	cmd.Flags().BoolVar(&skipMigrationCheck, "skip-migration-check", false, "Skip migration status check on startup")
	cmd.Flags().BoolVar(&withScheduler, "with-scheduler", true, "Run the recurring charge scheduler in this process")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	rt, err := bootstrap.Init(bootstrap.ResolveEnv(env))
	if err != nil {
		return err
	}
	defer rt.Close()

	cfg := rt.Config
	log := rt.Log

	log.Infow("starting server",
		"environment", rt.Env,
		"auto_migrate", autoMigrate,
		"with_scheduler", withScheduler,
	)

	gin.SetMode(cfg.Server.Mode)
	gin.DefaultWriter = io.Discard

	ctx := context.Background()

	if err := handleMigrations(ctx, rt); err != nil {
		return fmt.Errorf("migration handling failed: %w", err)
	}

	redisClient, err := httpRouter.NewRedisClient(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	container, err := httpRouter.NewContainer(rt.DB, redisClient, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to wire application: %w", err)
	}
	container.SetupRoutes()
	defer container.Shutdown()

	if withScheduler {
		if err := container.StartScheduler(); err != nil {
			return err
		}
	}

	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      container.GetEngine(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	goroutine.SafeGo(log, "http-server", func() {
		log.Infow("server starting",
			"address", cfg.Server.GetAddr(),
			"mode", cfg.Server.Mode)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("failed to start server: %w", err)
	case <-quit:
	}

	log.Infow("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
		return err
	}

	log.Infow("server exited gracefully")
	return nil
}

func handleMigrations(ctx context.Context, rt *bootstrap.Runtime) error {
	if skipMigrationCheck {
		rt.Log.Infow("skipping migration check")
		return nil
	}

	strategy := migration.NewGooseStrategy(rt.Log)

	if autoMigrate {
		if rt.Config.Server.Mode == gin.ReleaseMode {
			rt.Log.Warnw("auto-migration is enabled in release mode")
		}
		return strategy.Migrate(ctx, rt.DB)
	}

	version, err := strategy.GetVersion(ctx, rt.DB)
	if err != nil {
		rt.Log.Warnw("failed to check migration status", "error", err)
		return nil
	}
	rt.Log.Infow("current migration version", "version", version)
	return nil
}
