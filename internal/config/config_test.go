package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pkordes/festsched/internal/config"
	"github.com/pkordes/festsched/internal/ordering"
)

// clearEnv blanks every variable Load reads so the host environment cannot
// leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CONFIG_PATH", "DATABASE_URL", "LOG_LEVEL", "OUTPUT_DIR", "ORDERING",
		"AIRTABLE_API_KEY", "AIRTABLE_BASE_ID", "AIRTABLE_BASE_URL", "AIRTABLE_TIMEOUT",
		"AIRTABLE_ACTIVITIES_TABLE", "AIRTABLE_SERVICES_TABLE", "AIRTABLE_TEAM_TABLE",
		"PDF_TITLE", "SERVICE_PDF_TITLE", "TEAM_PDF_TITLE",
	} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

// TestLoad_defaults verifies that optional values fall back to their defaults.
func TestLoad_defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load()

	require.NoError(t, err)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, ".", cfg.OutputDir)
	require.Equal(t, ordering.Lexical, cfg.OrderingMode())
	require.Equal(t, "https://api.airtable.com/v0", cfg.Airtable.BaseURL)
	require.Equal(t, "Team Members", cfg.Airtable.TeamTable)
	require.Equal(t, 30*time.Second, cfg.Airtable.Timeout)
	require.Equal(t, "SCHEDULE", cfg.Titles.Schedule)
	require.Equal(t, "SERVICE LIST", cfg.Titles.Services)
	require.Equal(t, "DEVOTEE WISE SERVICES", cfg.Titles.Team)
}

// TestLoad_overrides verifies that values can be overridden via env vars.
func TestLoad_overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://user:pass@db:5432/festsched")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("ORDERING", "chronological")
	t.Setenv("AIRTABLE_TIMEOUT", "5s")
	t.Setenv("PDF_TITLE", "MY SCHEDULE")

	cfg, err := config.Load()

	require.NoError(t, err)
	require.Equal(t, "postgres://user:pass@db:5432/festsched", cfg.DatabaseURL)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, ordering.Chronological, cfg.OrderingMode())
	require.Equal(t, 5*time.Second, cfg.Airtable.Timeout)
	require.Equal(t, "MY SCHEDULE", cfg.Titles.Schedule)
}

func TestLoad_yamlFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "festsched.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database_url: postgres://localhost/fest
airtable:
  base_id: app123
  services_table: Sevas
titles:
  team: VOLUNTEERS
`), 0o600))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("AIRTABLE_BASE_ID", "appFromEnv")

	cfg, err := config.Load()

	require.NoError(t, err)
	require.Equal(t, "postgres://localhost/fest", cfg.DatabaseURL)
	require.Equal(t, "appFromEnv", cfg.Airtable.BaseID, "env wins over file")
	require.Equal(t, "Sevas", cfg.Airtable.ServicesTable)
	require.Equal(t, "VOLUNTEERS", cfg.Titles.Team)
	require.Equal(t, "SCHEDULE", cfg.Titles.Schedule)
}

func TestLoad_missingExplicitFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := config.Load()

	require.ErrorContains(t, err, "nope.yaml")
}

func TestLoad_invalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("ORDERING", "alphabetical")
	t.Setenv("LOG_LEVEL", "loud")

	_, err := config.Load()

	require.ErrorContains(t, err, "alphabetical")
	require.ErrorContains(t, err, "loud")
}

// TestRequire verifies that missing variables are reported by name.
func TestRequire(t *testing.T) {
	var cfg config.Config

	require.ErrorContains(t, cfg.RequireDatabase(), "DATABASE_URL")
	err := cfg.RequireAirtable()
	require.ErrorContains(t, err, "AIRTABLE_API_KEY")
	require.ErrorContains(t, err, "AIRTABLE_BASE_ID")

	cfg.DatabaseURL = "postgres://x"
	cfg.Airtable.APIKey, cfg.Airtable.BaseID = "key", "app"
	require.NoError(t, cfg.RequireDatabase())
	require.NoError(t, cfg.RequireAirtable())
}
