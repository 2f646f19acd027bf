package config

import (
	"os"
	"strconv"
	"time"

	"creditwatch/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Monitor  MonitorConfig
	Alerting AlertingConfig
	Data     DataConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL string
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port string
}

// MonitorConfig holds drift-monitor and retraining-scheduler settings
type MonitorConfig struct {
	DriftCheckSchedule   string        // cron spec for the drift loop
	RetrainCheckSchedule string        // cron spec for the retraining loop
	RetryInterval        time.Duration // backoff after a failed tick
	DriftThreshold       float64       // p-value threshold for the comparator
	CurrentWindow        time.Duration // how far back the current batch reaches
	ReferenceWindow      time.Duration // how far back the reference batch reaches
}

// AlertingConfig holds alert delivery settings
type AlertingConfig struct {
	WebhookURL string
}

// DataConfig holds file-based data source settings
type DataConfig struct {
	ReferenceFile string // optional .xlsx/.csv pinning the reference batch
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Monitor: MonitorConfig{
			DriftCheckSchedule:   getEnvOrDefault("DRIFT_CHECK_SCHEDULE", "@hourly"),
			RetrainCheckSchedule: getEnvOrDefault("RETRAIN_CHECK_SCHEDULE", "@hourly"),
			RetryInterval:        getEnvDurationOrDefault("MONITOR_RETRY_INTERVAL", time.Minute),
			DriftThreshold:       getEnvFloatOrDefault("DRIFT_THRESHOLD", 0.05),
			CurrentWindow:        getEnvDurationOrDefault("CURRENT_WINDOW", 24*time.Hour),
			ReferenceWindow:      getEnvDurationOrDefault("REFERENCE_WINDOW", 30*24*time.Hour),
		},
		Alerting: AlertingConfig{
			WebhookURL: os.Getenv("ALERT_WEBHOOK_URL"),
		},
		Data: DataConfig{
			ReferenceFile: os.Getenv("REFERENCE_DATA_FILE"),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if config.Database.URL == "" {
		return errors.ConfigInvalid("DATABASE_URL is required")
	}
	if config.Monitor.DriftThreshold <= 0 || config.Monitor.DriftThreshold >= 1 {
		return errors.ConfigInvalid("DRIFT_THRESHOLD must be in (0,1)")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
