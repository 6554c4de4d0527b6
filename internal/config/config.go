// Package config loads dashboard settings from defaults, an optional YAML
// file and DASHBOARD_* environment variables, in that order of precedence.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"engagement-dashboard/internal/validation"
)

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "DASHBOARD_CONFIG"

// EnvPrefix marks environment variables read as configuration.
const EnvPrefix = "DASHBOARD_"

// DefaultConfigPaths are searched when no explicit path is given.
var DefaultConfigPaths = []string{"dashboard.yaml", "dashboard.yml"}

// Config holds all configuration parameters for the application
type Config struct {
	Dataset DatasetConfig `koanf:"dataset"`
	Server  ServerConfig  `koanf:"server"`
	Log     LogConfig     `koanf:"log"`
	Export  ExportConfig  `koanf:"export"`
}

// DatasetConfig controls how the source table is loaded.
type DatasetConfig struct {
	Source              string   `koanf:"source" validate:"required"`
	SyntheticStartDate  string   `koanf:"synthetic_start_date" validate:"omitempty,datetime=2006-01-02"`
	NormalizeCategories bool     `koanf:"normalize_categories"`
	DateLayouts         []string `koanf:"date_layouts" validate:"min=1"`
}

type ServerConfig struct {
	Host         string        `koanf:"host"`
	Port         int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

type ExportConfig struct {
	Dir        string `koanf:"dir" validate:"required"`
	Format     string `koanf:"format" validate:"oneof=csv json sqlite"`
	SQLitePath string `koanf:"sqlite_path"`
}

// Addr joins host and port for net/http.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SyntheticStart parses the synthetic start date; ok is false when unset.
func (d DatasetConfig) SyntheticStart() (time.Time, bool) {
	if d.SyntheticStartDate == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", d.SyntheticStartDate)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func defaultConfig() *Config {
	return &Config{
		Dataset: DatasetConfig{
			Source: "cleaning dataset final.csv",
			DateLayouts: []string{
				"2006-01-02",
				"2006-01-02 15:04:05",
				time.RFC3339,
				"01/02/2006",
				"02-01-2006",
				"2006/01/02",
			},
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Export: ExportConfig{
			Dir:        "outputs",
			Format:     "json",
			SQLitePath: "dashboard.db",
		},
	}
}

// Load builds the configuration. An explicit path must exist; otherwise
// DASHBOARD_CONFIG and then DefaultConfigPaths are tried.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	configPath, err := resolveConfigPath(path)
	if err != nil {
		return nil, err
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// DASHBOARD_SERVER_PORT -> server.port, DASHBOARD_DATASET_SYNTHETIC_START_DATE -> dataset.synthetic_start_date
	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// comma separated env values arrive as strings
	if raw, ok := k.Get("dataset.date_layouts").(string); ok {
		if err := k.Set("dataset.date_layouts", splitList(raw)); err != nil {
			return nil, fmt.Errorf("failed to set date layouts: %w", err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := validation.ValidateStruct(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func resolveConfigPath(path string) (string, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("config file %s: %w", path, err)
		}
		return path, nil
	}
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", nil
}

var sections = []string{"dataset", "server", "log", "export"}

// envTransformFunc maps DASHBOARD_<SECTION>_<KEY> to <section>.<key>.
// Variables outside the known sections, including DASHBOARD_CONFIG, are
// dropped by returning an empty key.
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	for _, s := range sections {
		if strings.HasPrefix(key, s+"_") {
			return s + "." + strings.TrimPrefix(key, s+"_")
		}
	}
	return ""
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
