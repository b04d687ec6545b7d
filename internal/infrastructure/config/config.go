package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	sharedConfig "github.com/pecal-inc/pecal/internal/shared/config"
)

type Config struct {
	Server   sharedConfig.ServerConfig   `mapstructure:"server"`
	Database sharedConfig.DatabaseConfig `mapstructure:"database"`
	Logger   sharedConfig.LoggerConfig   `mapstructure:"logger"`
	Auth     sharedConfig.AuthConfig     `mapstructure:"auth"`
	Email    sharedConfig.EmailConfig    `mapstructure:"email"`
	Redis    sharedConfig.RedisConfig    `mapstructure:"redis"`
	NicePay  sharedConfig.NicePayConfig  `mapstructure:"nicepay"`
	Billing  sharedConfig.BillingConfig  `mapstructure:"billing"`
	Metrics  sharedConfig.MetricsConfig  `mapstructure:"metrics"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load loads configuration from file and environment variables
func Load(env string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../configs")
	v.AddConfigPath("../../configs")

	v.SetEnvPrefix("PECAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return finish(v, env)
}

// LoadFromViper builds a Config from an already populated viper instance.
// Defaults are applied for keys the instance does not set.
func LoadFromViper(v *viper.Viper, env string) (*Config, error) {
	setDefaults(v)
	return finish(v, env)
}

func finish(v *viper.Viper, env string) (*Config, error) {
	// Allow env parameter to override server mode if provided
	if env != "" && env != "default" {
		v.Set("server.mode", env)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	validate := validator.New()
	validate.RegisterStructValidation(validateBilling, sharedConfig.BillingConfig{})
	if err := validate.Struct(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	appConfigMu.Lock()
	appConfig = &config
	appConfigMu.Unlock()

	return &config, nil
}

// validateBilling keeps the run lock alive for as long as a run may take.
func validateBilling(sl validator.StructLevel) {
	billing := sl.Current().Interface().(sharedConfig.BillingConfig)
	if billing.LockTTL > 0 && billing.RunTimeout() >= billing.LockTTL {
		sl.ReportError(billing.LockTTL, "LockTTL", "lock_ttl", "gtchargetimeout", billing.RunTimeout().String())
	}
}

// Get returns the loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.timezone", "Asia/Seoul")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.username", "root")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.database", "pecal_dev")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", 60)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output_path", "stdout")

	// Auth defaults
	v.SetDefault("auth.jwt.secret", "change-me-in-production")
	v.SetDefault("auth.jwt.access_exp_minutes", 60)

	// Email defaults
	v.SetDefault("email.smtp_host", "localhost")
	v.SetDefault("email.smtp_port", 1025)
	v.SetDefault("email.smtp_user", "")
	v.SetDefault("email.smtp_password", "")
	v.SetDefault("email.from_address", "noreply@pecal.local")
	v.SetDefault("email.from_name", "Pecal")

	// Redis defaults
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// NicePay defaults (credentials must be configured)
	v.SetDefault("nicepay.base_url", "https://webapi.nicepay.co.kr")
	v.SetDefault("nicepay.timeout", "30s")

	// Billing defaults
	v.SetDefault("billing.charge_interval", "1h")
	v.SetDefault("billing.charge_timeout", "30m")
	v.SetDefault("billing.lock_ttl", "35m")
	v.SetDefault("billing.max_retry_count", 0)
	v.SetDefault("billing.goods_name_prefix", "Pecal")
	v.SetDefault("billing.alert_cooldown", "30m")
	v.SetDefault("billing.free_plan.max_members", 3)
	v.SetDefault("billing.free_plan.max_storage_mb", 1000)
	v.SetDefault("billing.register_rate_limit.per_minute", 5)
	v.SetDefault("billing.register_rate_limit.per_hour", 20)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}
