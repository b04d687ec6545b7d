// Package plans holds operator commands for the plan catalogue.
package plans

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pecal-inc/pecal/internal/application/plan/usecases"
	"github.com/pecal-inc/pecal/internal/infrastructure/repository"
	"github.com/pecal-inc/pecal/internal/infrastructure/seed"
	"github.com/pecal-inc/pecal/internal/interfaces/cli/bootstrap"
)

var (
	env      string
	filePath string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plans",
		Short: "Plan catalogue tools",
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")

	cmd.AddCommand(newSeedCommand())

	return cmd
}

func newSeedCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create or update plans from a YAML file",
		Long:  `Upsert the plans listed in a YAML file by name. Plans missing from the file are left untouched.`,
		RunE:  runSeed,
	}

	cmd.Flags().StringVarP(&filePath, "file", "f", "./configs/plans.yaml", "Path to the plans file")

	return cmd
}

func runSeed(cmd *cobra.Command, args []string) error {
	plans, err := seed.LoadPlansFile(filePath)
	if err != nil {
		return err
	}

	rt, err := bootstrap.Init(bootstrap.ResolveEnv(env))
	if err != nil {
		return err
	}
	defer rt.Close()

	uc := usecases.NewSeedPlansUseCase(repository.NewPlanRepository(rt.DB), rt.Log.Named("plan"))
	result, err := uc.Execute(cmd.Context(), plans)
	if err != nil {
		return fmt.Errorf("failed to seed plans: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "plans seeded: %d created, %d updated\n", result.Created, result.Updated)
	return nil
}
