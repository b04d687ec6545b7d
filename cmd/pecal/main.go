package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pecal-inc/pecal/internal/interfaces/cli/billing"
	"github.com/pecal-inc/pecal/internal/interfaces/cli/migrate"
	"github.com/pecal-inc/pecal/internal/interfaces/cli/plans"
	"github.com/pecal-inc/pecal/internal/interfaces/cli/server"
	"github.com/pecal-inc/pecal/internal/interfaces/cli/worker"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "pecal",
		Short:        "Pecal - recurring billing service",
		Long:         `Pecal runs the subscription billing API, the recurring charge scheduler and the operator tools around them.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		worker.NewCommand(),
		migrate.NewCommand(),
		billing.NewCommand(),
		plans.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
