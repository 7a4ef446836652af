package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	API        APIConfig        `yaml:"api"`
	Auth       AuthConfig       `yaml:"auth"`
	Booking    BookingConfig    `yaml:"booking"`
	Fees       FeeConfig        `yaml:"fees"`
	Gateway    GatewayConfig    `yaml:"gateway"`
	Notify     NotifyConfig     `yaml:"notify"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	Exports    ExportConfig     `yaml:"exports"`
	Backup     BackupConfig     `yaml:"backup"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type APIConfig struct {
	Port      int             `yaml:"port"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type AuthConfig struct {
	JWTSecret     string `yaml:"jwt_secret"`
	CookieName    string `yaml:"cookie_name"`
	TokenTTLHours int    `yaml:"token_ttl_hours"`
	CookieSecure  bool   `yaml:"cookie_secure"`
}

type BookingConfig struct {
	MaxBookingDays   int `yaml:"max_booking_days"`
	MinAdvanceHours  int `yaml:"min_advance_hours"`
	NoShowGraceHours int `yaml:"no_show_grace_hours"`
}

// FeeConfig consolidates the fee policy constants into one table.
type FeeConfig struct {
	TaxRatePercent          int64 `yaml:"tax_rate_percent"`
	CancellationFeePercent  int64 `yaml:"cancellation_fee_percent"`
	CancellationWindowHours int   `yaml:"cancellation_window_hours"`
	LateSurchargePercent    int64 `yaml:"late_surcharge_percent"`
}

type GatewayConfig struct {
	BaseURL        string `yaml:"base_url"`
	SecretKey      string `yaml:"secret_key"`
	CallbackURL    string `yaml:"callback_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type NotifyConfig struct {
	TelegramToken  string `yaml:"telegram_token"`
	TelegramChatID int64  `yaml:"telegram_chat_id"`
	CompanyName    string `yaml:"company_name"`
	CompanyEmail   string `yaml:"company_email"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Schedule      string `yaml:"schedule"`
	StoragePath   string `yaml:"storage_path"`
	RetentionDays int    `yaml:"retention_days"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional; environment may already be populated.
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Expand ${VAR} references in the YAML before parsing.
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}
	if c.Auth.JWTSecret == "" || c.Auth.JWTSecret == "CHANGE_ME" {
		return errors.New("auth jwt secret is required")
	}
	if c.Fees.TaxRatePercent < 0 || c.Fees.TaxRatePercent > 100 {
		return fmt.Errorf("invalid tax rate percent: %d", c.Fees.TaxRatePercent)
	}
	if c.Fees.CancellationFeePercent < 0 || c.Fees.CancellationFeePercent > 100 {
		return fmt.Errorf("invalid cancellation fee percent: %d", c.Fees.CancellationFeePercent)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.API.Port == 0 {
		c.API.Port = 8080
	}
	if c.API.RateLimit.RPS == 0 {
		c.API.RateLimit.RPS = 20
	}
	if c.API.RateLimit.Burst == 0 {
		c.API.RateLimit.Burst = 5
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}

	if c.Auth.CookieName == "" {
		c.Auth.CookieName = "yos_session"
	}
	if c.Auth.TokenTTLHours == 0 {
		c.Auth.TokenTTLHours = 24
	}

	if c.Booking.MaxBookingDays == 0 {
		c.Booking.MaxBookingDays = 90
	}
	if c.Booking.NoShowGraceHours == 0 {
		c.Booking.NoShowGraceHours = 24
	}

	// Fee policy defaults mirror the long-standing business rules.
	if c.Fees.TaxRatePercent == 0 {
		c.Fees.TaxRatePercent = 10
	}
	if c.Fees.CancellationFeePercent == 0 {
		c.Fees.CancellationFeePercent = 20
	}
	if c.Fees.CancellationWindowHours == 0 {
		c.Fees.CancellationWindowHours = 48
	}
	if c.Fees.LateSurchargePercent == 0 {
		c.Fees.LateSurchargePercent = 50
	}

	if c.Gateway.BaseURL == "" {
		c.Gateway.BaseURL = "https://api.paystack.co"
	}
	if c.Gateway.TimeoutSeconds == 0 {
		c.Gateway.TimeoutSeconds = 15
	}

	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}

	if c.Backup.Enabled {
		if c.Backup.StoragePath == "" {
			c.Backup.StoragePath = "backups"
		}
		if c.Backup.RetentionDays == 0 {
			c.Backup.RetentionDays = 14
		}
	}
}
