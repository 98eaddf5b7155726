// Package config loads the ISL toolchain configuration using Viper.
// Precedence (lowest to highest): defaults < user config < project
// config < environment variables.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/intentlang/isl/errors"
)

// Config holds toolchain-wide settings
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Verify   VerifyConfig   `mapstructure:"verify"`
	Watch    WatchConfig    `mapstructure:"watch"`
}

// DatabaseConfig configures trace and evidence persistence
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// VerifyConfig configures the verification engine
type VerifyConfig struct {
	Workers int  `mapstructure:"workers"`
	JSON    bool `mapstructure:"json"`
}

// WatchConfig configures continuous re-verification
type WatchConfig struct {
	DebounceMs     int     `mapstructure:"debounce_ms"`
	RatePerSecond  float64 `mapstructure:"rate_per_second"`
	MaxConcurrency int     `mapstructure:"max_concurrency"`
}

var globalConfig *Config
var viperInstance *viper.Viper

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", "isl.db")

	v.SetDefault("verify.workers", 4)
	v.SetDefault("verify.json", false)

	v.SetDefault("watch.debounce_ms", 300)
	v.SetDefault("watch.rate_per_second", 2.0) // at most 2 re-verifications per second
	v.SetDefault("watch.max_concurrency", 1)
}

// Load reads the ISL configuration, caching the result
func Load() (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	v := initViper()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	globalConfig = &config
	return globalConfig, nil
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", configPath)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal config from %s", configPath)
	}
	return &config, nil
}

// Reset clears the cached configuration (useful for testing)
func Reset() {
	globalConfig = nil
	viperInstance = nil
}

func initViper() *viper.Viper {
	if viperInstance != nil {
		return viperInstance
	}

	v := viper.New()

	v.SetEnvPrefix("ISL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.BindEnv("database.path", "ISL_DATABASE_PATH")

	SetDefaults(v)
	mergeConfigFiles(v)

	viperInstance = v
	return v
}

// findProjectConfig walks up the directory tree looking for isl.toml
func findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		path := filepath.Join(dir, "isl.toml")
		if _, err := os.Stat(path); err == nil {
			return path
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// mergeConfigFiles merges config files in precedence order: user < project
func mergeConfigFiles(v *viper.Viper) {
	homeDir, _ := os.UserHomeDir()

	configPaths := []string{
		filepath.Join(homeDir, ".isl", "isl.toml"),
	}
	if projectConfig := findProjectConfig(); projectConfig != "" {
		configPaths = append(configPaths, projectConfig)
	}

	for _, configPath := range configPaths {
		if _, err := os.Stat(configPath); err != nil {
			continue
		}
		tempViper := viper.New()
		tempViper.SetConfigFile(configPath)
		tempViper.SetConfigType("toml")
		if err := tempViper.ReadInConfig(); err == nil {
			for key, value := range tempViper.AllSettings() {
				v.Set(key, value)
			}
		}
	}
}

// GetDatabasePath returns the configured database path
func GetDatabasePath() (string, error) {
	if dbPath := os.Getenv("ISL_DATABASE_PATH"); dbPath != "" {
		return dbPath, nil
	}
	config, err := Load()
	if err != nil {
		return "", err
	}
	if config.Database.Path == "" {
		return "isl.db", nil
	}
	return config.Database.Path, nil
}
