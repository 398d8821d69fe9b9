// Package config loads and validates application configuration from an
// optional YAML file and environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/pkordes/festsched/internal/ordering"
)

// DefaultPath is read when CONFIG_PATH is not set and the file exists.
const DefaultPath = "./festsched.yaml"

// Config holds all configuration values for the CLI.
// Priority: ENV > YAML > defaults (via env-default tags).
type Config struct {
	// DatabaseURL is the Postgres connection string. Required by every
	// command that touches the cache.
	DatabaseURL string `yaml:"database_url" env:"DATABASE_URL"`

	// LogLevel controls the minimum log level: debug, info, warn, error.
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`

	Airtable AirtableConfig `yaml:"airtable"`
	Titles   TitlesConfig   `yaml:"titles"`

	// OutputDir is where exported documents are written.
	OutputDir string `yaml:"output_dir" env:"OUTPUT_DIR" env-default:"."`

	// Ordering selects lexical or chronological date/time ordering.
	Ordering string `yaml:"ordering" env:"ORDERING" env-default:"lexical"`
}

// AirtableConfig holds the source API settings.
type AirtableConfig struct {
	APIKey          string        `yaml:"api_key"          env:"AIRTABLE_API_KEY"`
	BaseID          string        `yaml:"base_id"          env:"AIRTABLE_BASE_ID"`
	BaseURL         string        `yaml:"base_url"         env:"AIRTABLE_BASE_URL"          env-default:"https://api.airtable.com/v0"`
	ActivitiesTable string        `yaml:"activities_table" env:"AIRTABLE_ACTIVITIES_TABLE"  env-default:"Activities"`
	ServicesTable   string        `yaml:"services_table"   env:"AIRTABLE_SERVICES_TABLE"    env-default:"Services"`
	TeamTable       string        `yaml:"team_table"       env:"AIRTABLE_TEAM_TABLE"        env-default:"Team Members"`
	Timeout         time.Duration `yaml:"timeout"          env:"AIRTABLE_TIMEOUT"           env-default:"30s"`
}

// TitlesConfig holds the default document titles. Stored settings and
// base-name derived titles take precedence.
type TitlesConfig struct {
	Schedule string `yaml:"schedule" env:"PDF_TITLE"         env-default:"SCHEDULE"`
	Services string `yaml:"services" env:"SERVICE_PDF_TITLE" env-default:"SERVICE LIST"`
	Team     string `yaml:"team"     env:"TEAM_PDF_TITLE"    env-default:"DEVOTEE WISE SERVICES"`
}

// Load reads the YAML file named by CONFIG_PATH (or DefaultPath when it
// exists), overlays environment variables, and validates the result.
func Load() (Config, error) {
	var cfg Config

	path := os.Getenv("CONFIG_PATH")
	explicitPath := path != ""
	if !explicitPath {
		path = DefaultPath
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicitPath {
		return Config{}, fmt.Errorf("config: file %s: %w", path, err)
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: validate: %w", err)
	}
	return cfg, nil
}

// Validate rejects values that would fail later in a less obvious place.
func (c Config) Validate() error {
	var errs []string
	if _, err := ordering.Parse(c.Ordering); err != nil {
		errs = append(errs, err.Error())
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		errs = append(errs, fmt.Sprintf("invalid log level %q", c.LogLevel))
	}
	if c.Airtable.Timeout < 0 {
		errs = append(errs, "airtable timeout must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// RequireDatabase returns an error naming DATABASE_URL when it is not set.
func (c Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("required environment variables not set: DATABASE_URL")
	}
	return nil
}

// RequireAirtable returns an error listing any Airtable variables that are not set.
func (c Config) RequireAirtable() error {
	var missing []string
	if c.Airtable.APIKey == "" {
		missing = append(missing, "AIRTABLE_API_KEY")
	}
	if c.Airtable.BaseID == "" {
		missing = append(missing, "AIRTABLE_BASE_ID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}
	return nil
}

// SlogLevel is LogLevel as a slog.Level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// OrderingMode is Ordering parsed. Validate has already rejected bad values.
func (c Config) OrderingMode() ordering.Mode {
	m, _ := ordering.Parse(c.Ordering)
	return m
}
