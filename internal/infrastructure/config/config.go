package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"fasterdata-tuning/internal/domain/constants"
	"fasterdata-tuning/internal/domain/errors"
	"fasterdata-tuning/pkg/utils"

	"github.com/sirupsen/logrus"
)

// Config is a struct that holds application configuration
type Config struct {
	Tuning TuningConfig
	Paths  PathConfig
	Output OutputConfig
}

// TuningConfig is a struct that holds how external tools are invoked
type TuningConfig struct {
	CommandTimeout time.Duration
	ConfirmRetries int
	ConfirmDelay   time.Duration
}

// PathConfig is a struct that holds file locations
type PathConfig struct {
	SysctlConf      string
	BackupDirectory string
	OSRelease       string
}

// OutputConfig is a struct that holds logging and metrics output settings
type OutputConfig struct {
	LogLevel    string
	MetricsFile string
}

// ConfirmRetryConfig returns the retry policy used to re-read a value after it is set
func (c *Config) ConfirmRetryConfig() utils.RetryConfig {
	cfg := utils.DefaultRetryConfig
	cfg.MaxAttempts = c.Tuning.ConfirmRetries
	cfg.InitialDelay = c.Tuning.ConfirmDelay
	return cfg
}

// ConfigLoader is an interface for loading configuration
type ConfigLoader interface {
	Load() (*Config, error)
}

// EnvironmentConfigLoader is an implementation that loads configuration from environment variables
type EnvironmentConfigLoader struct{}

// NewEnvironmentConfigLoader creates a new EnvironmentConfigLoader
func NewEnvironmentConfigLoader() ConfigLoader {
	return &EnvironmentConfigLoader{}
}

// Load loads configuration from environment variables
func (l *EnvironmentConfigLoader) Load() (*Config, error) {
	config := &Config{
		Tuning: TuningConfig{
			CommandTimeout: getEnvDurationOrDefault("COMMAND_TIMEOUT", constants.DefaultCommandTimeout*time.Second),
			ConfirmRetries: getEnvIntOrDefault("CONFIRM_RETRIES", constants.DefaultConfirmTries),
			ConfirmDelay:   getEnvDurationOrDefault("CONFIRM_DELAY", constants.DefaultConfirmDelay),
		},
		Paths: PathConfig{
			SysctlConf:      getEnvOrDefault("SYSCTL_CONF_PATH", constants.SysctlConfFile),
			BackupDirectory: getEnvOrDefault("BACKUP_DIR", constants.DefaultBackupDir),
			OSRelease:       getEnvOrDefault("OS_RELEASE_PATH", constants.OSReleaseFile),
		},
		Output: OutputConfig{
			LogLevel:    getEnvOrDefault("LOG_LEVEL", constants.DefaultLogLevel),
			MetricsFile: getEnvOrDefault("METRICS_FILE", ""),
		},
	}

	// Validate configuration
	if err := Validate(config); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration. It is also called after CLI flags are applied.
func Validate(config *Config) error {
	// Validate tuning configuration
	if config.Tuning.CommandTimeout <= 0 {
		return errors.NewValidationError("invalid command timeout", nil)
	}
	if config.Tuning.ConfirmRetries < 1 {
		return errors.NewValidationError("confirm retries must be at least 1", nil)
	}
	if config.Tuning.ConfirmDelay < 0 {
		return errors.NewValidationError("invalid confirm delay", nil)
	}

	// Validate paths
	if config.Paths.SysctlConf == "" || !filepath.IsAbs(config.Paths.SysctlConf) {
		return errors.NewValidationError("sysctl config path must be absolute", nil)
	}
	if config.Paths.BackupDirectory == "" {
		return errors.NewValidationError("backup directory not configured", nil)
	}
	if config.Paths.OSRelease == "" {
		return errors.NewValidationError("os-release path not configured", nil)
	}

	// Validate output configuration
	if _, err := logrus.ParseLevel(config.Output.LogLevel); err != nil {
		return errors.NewValidationError("invalid log level", err)
	}

	return nil
}

// Environment variable helper functions

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
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
