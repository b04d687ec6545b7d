// Package worker runs the recurring charge scheduler without the HTTP API.
package worker

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pecal-inc/pecal/internal/interfaces/cli/bootstrap"
	httpRouter "github.com/pecal-inc/pecal/internal/interfaces/http"
)

var env string

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run the recurring charge scheduler",
		Long:  `Run the billing scheduler that charges due subscriptions at the configured interval.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	rt, err := bootstrap.Init(bootstrap.ResolveEnv(env))
	if err != nil {
		return err
	}
	defer rt.Close()

	log := rt.Log.Named("worker")
	log.Infow("starting billing worker", "environment", rt.Env)

	redisClient, err := httpRouter.NewRedisClient(context.Background(), rt.Config, log)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	container, err := httpRouter.NewContainer(rt.DB, redisClient, rt.Config, rt.Log)
	if err != nil {
		return fmt.Errorf("failed to wire application: %w", err)
	}
	defer container.Shutdown()

	if err := container.StartScheduler(); err != nil {
		return err
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Infow("received shutdown signal, stopping worker", "signal", sig.String())
	return nil
}
