// Package config loads run configuration from environment variables,
// following inspector/info's plain-struct-plus-constructor pattern, with
// an optional file override layered on top.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config holds every externally tunable setting. No flags are
// load-bearing; $CONFIG_FILE, when set, is read after the env defaults
// and overrides any field it names.
type Config struct {
	AppPort        string `yaml:"app_port" toml:"app_port"`
	LogLevel       string `yaml:"log_level" toml:"log_level"`
	DaprHost       string `yaml:"dapr_host" toml:"dapr_host"`
	SchemaPath     string `yaml:"schema_path" toml:"schema_path"`
	StorageBaseURL string `yaml:"storage_base_url" toml:"storage_base_url"`
}

// DefaultConfig returns the baseline configuration before env or file
// overrides are applied.
func DefaultConfig() *Config {
	return &Config{
		AppPort:        "8080",
		LogLevel:       "info",
		DaprHost:       "localhost:3500",
		SchemaPath:     "schema/v1/cpg.export.schema.json",
		StorageBaseURL: "",
	}
}

// Load builds a Config from $APP_PORT, $LOG_LEVEL, $DAPR_HOST,
// $SCHEMA_PATH, $STORAGE_BASE_URL, then applies $CONFIG_FILE (a YAML or
// TOML document, chosen by its extension) on top when set.
func Load() (*Config, error) {
	cfg := DefaultConfig()
	overrideFromEnv("APP_PORT", &cfg.AppPort)
	overrideFromEnv("LOG_LEVEL", &cfg.LogLevel)
	overrideFromEnv("DAPR_HOST", &cfg.DaprHost)
	overrideFromEnv("SCHEMA_PATH", &cfg.SchemaPath)
	overrideFromEnv("STORAGE_BASE_URL", &cfg.StorageBaseURL)

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, fmt.Errorf("apply config file %s: %w", path, err)
		}
	}
	return cfg, nil
}

func overrideFromEnv(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch {
	case strings.HasSuffix(path, ".toml"):
		return toml.Unmarshal(data, cfg)
	default:
		return yaml.Unmarshal(data, cfg)
	}
}
