package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Assignment AssignmentConfig `mapstructure:"assignment"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

// JWTConfig defines JWT specific configuration. The engine only verifies
// bearer tokens issued elsewhere; it never issues them.
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

// AssignmentConfig holds program assignment policy.
type AssignmentConfig struct {
	// MaxPastStartDays is how many days in the past an enrollment start
	// date may lie before assignment is rejected.
	MaxPastStartDays int `mapstructure:"max_past_start_days"`
	// DefaultTimezone is snapshotted onto new enrollments.
	DefaultTimezone string `mapstructure:"default_timezone"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// --- Environment Variable Handling ---
	viper.AutomaticEnv()
	// Use replacer for nested keys e.g., server.address -> SERVER_ADDRESS
	viper.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	// --- Set default values ---
	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("database.uri", "mongodb://localhost:27017")
	viper.SetDefault("database.name", "peakform")
	viper.SetDefault("assignment.max_past_start_days", 7)
	viper.SetDefault("assignment.default_timezone", "UTC")

	// --- Read Config File ---
	err = viper.ReadInConfig()
	// If the config file is absent we rely on defaults and env vars.
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		err = nil
	} else if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
