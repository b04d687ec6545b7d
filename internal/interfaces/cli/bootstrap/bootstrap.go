// Package bootstrap prepares the process-wide state every command needs:
// configuration, logging, the business timezone and the database pool.
package bootstrap

import (
	"fmt"
	"os"

	"gorm.io/gorm"

	"github.com/pecal-inc/pecal/internal/infrastructure/config"
	"github.com/pecal-inc/pecal/internal/infrastructure/database"
	"github.com/pecal-inc/pecal/internal/shared/biztime"
	"github.com/pecal-inc/pecal/internal/shared/logger"
)

// Runtime is the initialized state shared by a command run.
type Runtime struct {
	Env    string
	Config *config.Config
	DB     *gorm.DB
	Log    logger.Interface
}

// ResolveEnv lets the ENV variable override the --env flag.
func ResolveEnv(flagValue string) string {
	if envVar := os.Getenv("ENV"); envVar != "" {
		return envVar
	}
	return flagValue
}

// Init loads the configuration for env and opens the database.
func Init(env string) (*Runtime, error) {
	mode := MapEnvToGinMode(env)

	cfg, err := config.Load(mode)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger, cfg.Server.Mode); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger()

	if err := biztime.Init(cfg.Server.Timezone); err != nil {
		return nil, fmt.Errorf("failed to initialize business timezone: %w", err)
	}

	db, err := database.Open(&cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return &Runtime{
		Env:    env,
		Config: cfg,
		DB:     db,
		Log:    log,
	}, nil
}

// Close releases the database pool.
func (r *Runtime) Close() {
	if err := database.Close(r.DB); err != nil {
		r.Log.Errorw("failed to close database", "error", err)
	}
}

// MapEnvToGinMode converts a deployment environment name to a gin mode.
func MapEnvToGinMode(environment string) string {
	switch environment {
	case "production", "prod", "release":
		return "release"
	case "test", "testing":
		return "test"
	default:
		return "debug"
	}
}
