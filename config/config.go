package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	DatabaseDriver  string        `toml:"database_driver"`
	DatabaseURL     string        `toml:"database_url"`
	ServerPort      string        `toml:"server_port"`
	LogLevel        string        `toml:"log_level"`
	LogFormat       string        `toml:"log_format"`
	LogSQL          bool          `toml:"log_sql"`
	SeedOnStart     bool          `toml:"seed_on_start"`
	PageLimit       int           `toml:"page_limit"`
	ReportLimit     int           `toml:"report_limit"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
}

func Default() *Config {
	return &Config{
		DatabaseDriver:  DriverSQLite,
		DatabaseURL:     "plant_time_tracker.db",
		ServerPort:      "8080",
		LogLevel:        "info",
		LogFormat:       "text",
		PageLimit:       100,
		ReportLimit:     50,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Load builds the configuration from defaults, the optional TOML file named by
// CONFIG_FILE, a .env file in the working directory and the process environment,
// later sources overriding earlier ones.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg.DatabaseDriver = getEnv("DB_DRIVER", cfg.DatabaseDriver)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.ServerPort = getEnv("SERVER_PORT", cfg.ServerPort)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)
	cfg.LogSQL = getEnvAsBool("DB_LOG_SQL", cfg.LogSQL)
	cfg.SeedOnStart = getEnvAsBool("SEED_ON_START", cfg.SeedOnStart)
	cfg.PageLimit = getEnvAsInt("PAGE_LIMIT", cfg.PageLimit)
	cfg.ReportLimit = getEnvAsInt("REPORT_LIMIT", cfg.ReportLimit)
	cfg.ShutdownTimeout = getEnvAsDuration("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported database driver %q", c.DatabaseDriver)
	}
	if c.DatabaseURL == "" {
		return errors.New("database url is empty")
	}
	if c.PageLimit <= 0 || c.ReportLimit <= 0 {
		return errors.New("page and report limits must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if val, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return val
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if val, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return val
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		if i, err := strconv.Atoi(val); err == nil {
			return time.Duration(i) * time.Second
		}
	}
	return defaultValue
}
