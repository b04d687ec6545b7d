// Package billing holds operator commands for the recurring charge run.
package billing

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pecal-inc/pecal/internal/interfaces/cli/bootstrap"
	httpRouter "github.com/pecal-inc/pecal/internal/interfaces/http"
)

var env string

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "billing",
		Short: "Recurring billing tools",
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")

	cmd.AddCommand(newChargeDueCommand())

	return cmd
}

func newChargeDueCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "charge-due",
		Short: "Charge every subscription that is due, once",
		Long:  `Run one recurring charge pass. The run is skipped when another run holds the charge lock.`,
		RunE:  runChargeDue,
	}
}

func runChargeDue(cmd *cobra.Command, args []string) error {
	rt, err := bootstrap.Init(bootstrap.ResolveEnv(env))
	if err != nil {
		return err
	}
	defer rt.Close()

	redisClient, err := httpRouter.NewRedisClient(cmd.Context(), rt.Config, rt.Log)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	container, err := httpRouter.NewContainer(rt.DB, redisClient, rt.Config, rt.Log)
	if err != nil {
		return fmt.Errorf("failed to wire application: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), rt.Config.Billing.RunTimeout())
	defer cancel()

	processed, err := container.ChargeJob().Execute(ctx)
	if err != nil {
		return fmt.Errorf("recurring charge run failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "processed %d due subscriptions\n", processed)
	return nil
}
