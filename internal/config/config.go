// Package config loads runtime configuration for the streamstats command.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	// PathEnvVar overrides the config file location.
	PathEnvVar = "CONFIG_PATH"
	// DefaultPath is read when present and PathEnvVar is unset.
	DefaultPath = "streamstats.yaml"
)

// Config holds runtime configuration for the streamstats command.
type Config struct {
	Log   LogConfig   `koanf:"log"`
	DB    DBConfig    `koanf:"db"`
	Redis RedisConfig `koanf:"redis"`
}

// LogConfig selects log verbosity and encoding.
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn warning error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

// DBConfig points at the Postgres event store. Empty disables account jobs.
type DBConfig struct {
	URL string `koanf:"url"`
}

// RedisConfig describes the job queue. Empty URL disables consumer mode.
type RedisConfig struct {
	URL     string `koanf:"url"`
	Queue   string `koanf:"queue" validate:"required_with=URL"`
	Results string `koanf:"results" validate:"required_with=URL"`
}

// envNames maps environment variables to config paths.
var envNames = map[string]string{
	"LOG_LEVEL":     "log.level",
	"LOG_FORMAT":    "log.format",
	"DB_URL":        "db.url",
	"REDIS_URL":     "redis.url",
	"REDIS_QUEUE":   "redis.queue",
	"REDIS_RESULTS": "redis.results",
}

func defaultConfig() *Config {
	return &Config{
		Log:   LogConfig{Level: "info", Format: "json"},
		Redis: RedisConfig{Queue: "streamstats:jobs", Results: "streamstats:results"},
	}
}

// Load builds a Config from defaults, an optional YAML file and environment
// variables, in increasing priority. A .env file in the working directory is
// applied to the environment first without overriding existing variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	path, err := configPath()
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// configPath returns the file named by PathEnvVar, which must exist, or
// DefaultPath when present, or "".
func configPath() (string, error) {
	if path := os.Getenv(PathEnvVar); path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("config file: %w", err)
		}
		return path, nil
	}
	if _, err := os.Stat(DefaultPath); err == nil {
		return DefaultPath, nil
	}
	return "", nil
}

// envTransformFunc maps a known, non-empty variable to its config path.
func envTransformFunc(key, value string) (string, interface{}) {
	if value == "" {
		return "", nil
	}
	return envNames[strings.ToUpper(key)], value
}
