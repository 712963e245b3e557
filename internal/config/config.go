package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Crawler configuration
	Crawler CrawlerConfig `mapstructure:"crawler"`

	// Database configuration
	Database DatabaseConfig `mapstructure:"database"`

	// Logging configuration
	Logging LoggingConfig `mapstructure:"logging"`
}

// CrawlerConfig holds crawler-specific configuration
type CrawlerConfig struct {
	BatchSize      int           `mapstructure:"batch_size"`
	MaxFailures    int           `mapstructure:"max_failures"`
	Workers        int           `mapstructure:"workers"`
	Retries        int           `mapstructure:"retries"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MinBatchDelay  time.Duration `mapstructure:"min_batch_delay"`
	MaxBatchDelay  time.Duration `mapstructure:"max_batch_delay"`
	RequestsPerSec int           `mapstructure:"requests_per_second"`
}

// DatabaseConfig holds PostgreSQL connection configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
}

// Load loads configuration from file and environment. The returned
// value is threaded explicitly into constructors; there is no
// package-level cached config.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.newsharvest")
	}

	setDefaults(v)
	bindEnvVars(v)

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		// Config file not found is not an error, we'll use defaults and env
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Crawler defaults
	v.SetDefault("crawler.batch_size", 20)
	v.SetDefault("crawler.max_failures", 100)
	v.SetDefault("crawler.workers", 5)
	v.SetDefault("crawler.retries", 2)
	v.SetDefault("crawler.timeout", "20s")
	v.SetDefault("crawler.min_batch_delay", "2s")
	v.SetDefault("crawler.max_batch_delay", "4s")
	v.SetDefault("crawler.requests_per_second", 10)

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "newsharvest")
	v.SetDefault("database.dbname", "newsharvest")
	v.SetDefault("database.sslmode", "disable")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// bindEnvVars binds environment variables
func bindEnvVars(v *viper.Viper) {
	v.SetEnvPrefix("NEWSHARVEST")
	v.AutomaticEnv()

	// Bind specific env vars
	v.BindEnv("database.host", "NEWSHARVEST_DB_HOST")
	v.BindEnv("database.port", "NEWSHARVEST_DB_PORT")
	v.BindEnv("database.user", "NEWSHARVEST_DB_USER")
	v.BindEnv("database.password", "NEWSHARVEST_DB_PASSWORD")
	v.BindEnv("database.dbname", "NEWSHARVEST_DB_NAME")
	v.BindEnv("database.sslmode", "NEWSHARVEST_DB_SSLMODE")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Crawler.BatchSize <= 0 {
		return fmt.Errorf("crawler.batch_size must be positive")
	}
	if c.Crawler.MaxFailures <= 0 {
		return fmt.Errorf("crawler.max_failures must be positive")
	}
	if c.Crawler.Workers <= 0 {
		return fmt.Errorf("crawler.workers must be positive")
	}
	if c.Crawler.Retries < 0 {
		return fmt.Errorf("crawler.retries must not be negative")
	}
	if c.Crawler.MinBatchDelay > c.Crawler.MaxBatchDelay {
		return fmt.Errorf("crawler.min_batch_delay must not exceed crawler.max_batch_delay")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("database.dbname is required")
	}
	return nil
}
