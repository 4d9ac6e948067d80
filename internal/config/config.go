package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the application-level configuration: everything about how the
// tool runs, as opposed to what the preset says about the data.
type Config struct {
	Preset  string        `mapstructure:"preset"`
	Workers int           `mapstructure:"workers"`
	Salt    string        `mapstructure:"salt"`
	Logging LoggingConfig `mapstructure:"logging"`
	Report  ReportConfig  `mapstructure:"report"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ReportConfig controls the JSON run report.
type ReportConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// GetDefaults returns the default configuration.
func GetDefaults() *Config {
	return &Config{
		Preset:  "safe-harbor",
		Workers: 4,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Report: ReportConfig{
			Enabled: true,
			Path:    "deident-report.json",
		},
	}
}

// Load reads configuration from a YAML file and DEIDENT_* environment
// variables. A missing config file is not an error; defaults apply.
func Load(configPath string) (*Config, error) {
	config := GetDefaults()

	viper.SetConfigName("deidentifier")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.deidentifier/")

	viper.SetEnvPrefix("DEIDENT")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if configPath != "" {
		viper.SetConfigFile(configPath)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if config.Workers < 1 || config.Workers > 64 {
		return fmt.Errorf("invalid workers: %d (must be 1-64)", config.Workers)
	}

	switch config.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", config.Logging.Level)
	}

	switch config.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format: %s (must be json or console)", config.Logging.Format)
	}

	return nil
}
