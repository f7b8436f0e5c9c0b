package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the service
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Tracker  TrackerConfig
	Alerts   AlertConfig
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	AppDB PostgresConfig `mapstructure:"postgres_app"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig maps static API tokens to roles. Device tokens authenticate
// helmet firmware pushing telemetry; admin tokens unlock control and
// registry-management endpoints.
type AuthConfig struct {
	DeviceTokens []string `mapstructure:"device_tokens"`
	AdminTokens  []string `mapstructure:"admin_tokens"`
}

// TrackerConfig drives the background session lifecycle tracker.
type TrackerConfig struct {
	DeviceIDs        []string      `mapstructure:"device_ids"`
	PollInterval     time.Duration `mapstructure:"poll_interval"`
	OfflineThreshold time.Duration `mapstructure:"offline_threshold"`
}

// AlertConfig carries the safety thresholds evaluated on every sample.
type AlertConfig struct {
	TempThreshold       float64       `mapstructure:"temp_threshold"`
	PitchThreshold      float64       `mapstructure:"pitch_threshold"`
	GyroYThreshold      float64       `mapstructure:"gyro_y_threshold"`
	InactivityThreshold time.Duration `mapstructure:"inactivity_threshold"`
}

// Load initializes configuration from environment variables and config file
func Load() (*Config, error) {
	viper.SetEnvPrefix("HELMHUB")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))
	viper.AutomaticEnv()

	// Set defaults
	setDefaults()

	// Load config file if exists
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "15s")
	viper.SetDefault("server.shutdown_timeout", "30s")
	viper.SetDefault("server.allowed_origins", []string{"*"})

	// Database defaults
	viper.SetDefault("database.postgres_app.sslmode", "disable")

	// Redis defaults
	viper.SetDefault("redis.db", 0)

	// Tracker defaults
	viper.SetDefault("tracker.device_ids", []string{"helmet_01"})
	viper.SetDefault("tracker.poll_interval", "30s")
	viper.SetDefault("tracker.offline_threshold", "60s")

	// Alert defaults
	viper.SetDefault("alerts.temp_threshold", 38.5)
	viper.SetDefault("alerts.pitch_threshold", -20.0)
	viper.SetDefault("alerts.gyro_y_threshold", -120.0)
	viper.SetDefault("alerts.inactivity_threshold", "10m")
}

func validateConfig(config *Config) error {
	// For now, just check required fields are not empty
	if config.Database.AppDB.Host == "" {
		return fmt.Errorf("postgres app host is required")
	}
	if config.Redis.Host == "" {
		return fmt.Errorf("redis host is required")
	}
	if len(config.Tracker.DeviceIDs) == 0 {
		return fmt.Errorf("at least one tracked device id is required")
	}
	if config.Tracker.PollInterval <= 0 {
		return fmt.Errorf("tracker poll interval must be positive")
	}
	return nil
}
