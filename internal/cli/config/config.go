package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config represents the docket configuration
type Config struct {
	MongoDB  MongoConfig `mapstructure:"mongodb"`
	Mappings []string    `mapstructure:"mappings"`
	Indexes  IndexConfig `mapstructure:"indexes"`
}

// MongoConfig represents connection configuration
type MongoConfig struct {
	URI           string `mapstructure:"uri"`
	Database      string `mapstructure:"database"`
	AdminDatabase string `mapstructure:"admin_database"`
}

// IndexConfig represents index creation configuration
type IndexConfig struct {
	// TimeoutMS bounds each index build in milliseconds. Zero leaves the
	// server default in place.
	TimeoutMS int64 `mapstructure:"timeout_ms"`
}

// Load loads the configuration from docket.yml or docket.yaml
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("mongodb.uri", "mongodb://localhost:27017")
	v.SetDefault("mongodb.admin_database", "admin")
	v.SetDefault("mappings", []string{"mappings.yml"})
	v.SetDefault("indexes.timeout_ms", 0)

	// Set config name and paths
	v.SetConfigName("docket")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Enable environment variable support
	v.AutomaticEnv()

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// URI returns the connection string from the environment or the config file
func (c *Config) URI() string {
	// First check environment variable
	if uri := os.Getenv("MONGODB_URI"); uri != "" {
		return uri
	}

	return c.MongoDB.URI
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if len(cfg.Mappings) == 0 {
		return fmt.Errorf("at least one mapping file must be configured")
	}
	if cfg.Indexes.TimeoutMS < 0 {
		return fmt.Errorf("indexes.timeout_ms must not be negative, got: %d", cfg.Indexes.TimeoutMS)
	}
	return nil
}
