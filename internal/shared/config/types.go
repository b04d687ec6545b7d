package config

import (
	"fmt"
	"time"
)

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port" validate:"min=1,max=65535"`
	Mode           string   `mapstructure:"mode" validate:"oneof=debug release test"`
	Timezone       string   `mapstructure:"timezone"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host" validate:"required"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database" validate:"required"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type JWTConfig struct {
	Secret           string `mapstructure:"secret" validate:"required"`
	AccessExpMinutes int    `mapstructure:"access_exp_minutes"`
}

type AuthConfig struct {
	JWT JWTConfig `mapstructure:"jwt"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type EmailConfig struct {
	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port"`
	SMTPUser     string `mapstructure:"smtp_user"`
	SMTPPassword string `mapstructure:"smtp_password"`
	FromAddress  string `mapstructure:"from_address" validate:"omitempty,email"`
	FromName     string `mapstructure:"from_name"`
}

// NicePayConfig holds merchant credentials for the NicePay Web API.
type NicePayConfig struct {
	MID         string        `mapstructure:"mid" validate:"required"`
	MerchantKey string        `mapstructure:"merchant_key" validate:"required,min=16"`
	BaseURL     string        `mapstructure:"base_url" validate:"required,url"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type FreePlanConfig struct {
	MaxMembers   int `mapstructure:"max_members"`
	MaxStorageMB int `mapstructure:"max_storage_mb"`
}

// RateLimitConfig caps attempts per member. Zero disables a window.
type RateLimitConfig struct {
	PerMinute int `mapstructure:"per_minute" validate:"min=0"`
	PerHour   int `mapstructure:"per_hour" validate:"min=0"`
}

type BillingConfig struct {
	ChargeInterval    time.Duration   `mapstructure:"charge_interval" validate:"gt=0"`
	ChargeTimeout     time.Duration   `mapstructure:"charge_timeout" validate:"min=0"`
	LockTTL           time.Duration   `mapstructure:"lock_ttl" validate:"gt=0"`
	MaxRetryCount     int             `mapstructure:"max_retry_count" validate:"min=0"`
	GoodsNamePrefix   string          `mapstructure:"goods_name_prefix"`
	AlertEmail        string          `mapstructure:"alert_email" validate:"omitempty,email"`
	AlertCooldown     time.Duration   `mapstructure:"alert_cooldown"`
	FreePlan          FreePlanConfig  `mapstructure:"free_plan"`
	RegisterRateLimit RateLimitConfig `mapstructure:"register_rate_limit"`
}

// RunTimeout bounds one recurring charge run. Zero ChargeTimeout falls back
// to the interval.
func (b BillingConfig) RunTimeout() time.Duration {
	if b.ChargeTimeout > 0 {
		return b.ChargeTimeout
	}
	return b.ChargeInterval
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}
