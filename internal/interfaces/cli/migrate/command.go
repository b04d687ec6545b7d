package migrate

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pecal-inc/pecal/internal/infrastructure/migration"
	"github.com/pecal-inc/pecal/internal/interfaces/cli/bootstrap"
)

const defaultScriptsDir = "./internal/infrastructure/migration/scripts"

var (
	env        string
	name       string
	scriptsDir string
	steps      int
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
		Long:  `Manage database migrations including running migrations, checking status, and creating new migration files.`,
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")

	cmd.AddCommand(
		newUpCommand(),
		newDownCommand(),
		newStatusCommand(),
		newVersionCommand(),
		newCreateCommand(),
	)

	return cmd
}

func newUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Run all pending migrations",
		Long:  `Apply all pending database migrations to bring the database schema up to date.`,
		RunE:  runUp,
	}
}

func newDownCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Rollback migrations",
		Long:  `Rollback a specified number of database migrations.`,
		RunE:  runDown,
	}

	cmd.Flags().IntVarP(&steps, "steps", "n", 1, "Number of migrations to rollback")

	return cmd
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		Long:  `Display the state of every migration script against the database.`,
		RunE:  runStatus,
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		RunE:  runVersion,
	}
}

func newCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new migration",
		Long:  `Create a new SQL migration file with the specified name.`,
		RunE:  runCreate,
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Name of the migration (required)")
	cmd.Flags().StringVar(&scriptsDir, "dir", defaultScriptsDir, "Directory holding the migration scripts")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func runUp(cmd *cobra.Command, args []string) error {
	rt, err := bootstrap.Init(bootstrap.ResolveEnv(env))
	if err != nil {
		return err
	}
	defer rt.Close()

	rt.Log.Infow("running up migrations", "environment", rt.Env)

	strategy := migration.NewGooseStrategy(rt.Log)
	if err := strategy.Migrate(cmd.Context(), rt.DB); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	rt.Log.Infow("migrations completed successfully")
	return nil
}

func runDown(cmd *cobra.Command, args []string) error {
	if steps < 1 {
		return fmt.Errorf("steps must be at least 1")
	}

	rt, err := bootstrap.Init(bootstrap.ResolveEnv(env))
	if err != nil {
		return err
	}
	defer rt.Close()

	rt.Log.Infow("running down migrations", "environment", rt.Env, "steps", steps)

	strategy := migration.NewGooseStrategy(rt.Log)
	if err := strategy.MigrateDown(cmd.Context(), rt.DB, steps); err != nil {
		return fmt.Errorf("down migration failed: %w", err)
	}

	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	rt, err := bootstrap.Init(bootstrap.ResolveEnv(env))
	if err != nil {
		return err
	}
	defer rt.Close()

	strategy := migration.NewGooseStrategy(rt.Log)
	if err := strategy.Status(cmd.Context(), rt.DB); err != nil {
		return fmt.Errorf("failed to get detailed status: %w", err)
	}
	return nil
}

func runVersion(cmd *cobra.Command, args []string) error {
	rt, err := bootstrap.Init(bootstrap.ResolveEnv(env))
	if err != nil {
		return err
	}
	defer rt.Close()

	version, err := currentVersion(cmd.Context(), migration.NewGooseStrategy(rt.Log), rt)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nMigration Status:\n")
	fmt.Fprintf(cmd.OutOrStdout(), "  Environment:     %s\n", rt.Env)
	fmt.Fprintf(cmd.OutOrStdout(), "  Current Version: %d\n", version)
	return nil
}

func currentVersion(ctx context.Context, strategy *migration.GooseStrategy, rt *bootstrap.Runtime) (int64, error) {
	version, err := strategy.GetVersion(ctx, rt.DB)
	if err != nil {
		return 0, fmt.Errorf("failed to get migration version: %w", err)
	}
	return version, nil
}

func runCreate(cmd *cobra.Command, args []string) error {
	if err := migration.Create(scriptsDir, name); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Migration '%s' created in %s\n", name, scriptsDir)
	return nil
}
