package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/pkordes/festsched/internal/domain"
	"github.com/pkordes/festsched/internal/repo"
	"github.com/pkordes/festsched/internal/textfmt"
)

// ---- helpers ---------------------------------------------------------------

// clearEnv blanks every variable config.Load reads so the host environment
// cannot leak into a test.
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

func run(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = Execute(context.Background(), append(args, "--no-color"), &out, &errOut)
	return code, out.String(), errOut.String()
}

func writePNG(t *testing.T, dir, name string) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func defaultFlags() reportFlags {
	return reportFlags{timing: "print", include: []string{"schedule", "services", "team"}}
}

// ---- report flags ----------------------------------------------------------

func TestReportFlags_request(t *testing.T) {
	f := defaultFlags()
	f.timing = "screen"
	f.status = "Unassigned"
	f.search = "asha"

	req, err := f.request("team")

	require.NoError(t, err)
	assert.Equal(t, domain.ModeTeam, req.Mode)
	assert.Equal(t, textfmt.Screen, req.Timing)
	assert.Equal(t, domain.StatusUnassigned, req.Filter.Status)
	assert.Equal(t, "asha", req.Filter.Search)
	assert.Equal(t, domain.ReportSections{}, req.Sections, "sections only apply to full reports")
}

func TestReportFlags_request_full(t *testing.T) {
	dir := t.TempDir()
	f := defaultFlags()
	f.include = []string{"schedule", "team"}
	f.attach = []string{writePNG(t, dir, "seating plan.png")}

	req, err := f.request("full")

	require.NoError(t, err)
	assert.Equal(t, domain.ReportSections{IncludeSchedule: true, IncludeTeam: true}, req.Sections)
	require.Len(t, req.Attachments, 1)
	assert.Equal(t, "seating plan.png", req.Attachments[0].Name)
	assert.True(t, strings.HasPrefix(req.Attachments[0].Data, "data:image/png;base64,"))
}

func TestReportFlags_request_invalid(t *testing.T) {
	dir := t.TempDir()
	notImage := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(notImage, []byte("bring garlands"), 0o644))

	tests := []struct {
		name string
		mode string
		edit func(*reportFlags)
	}{
		{"unknown mode", "poster", func(*reportFlags) {}},
		{"unknown timing", "schedule", func(f *reportFlags) { f.timing = "verbose" }},
		{"unknown status", "team", func(f *reportFlags) { f.status = "busy" }},
		{"unknown section", "full", func(f *reportFlags) { f.include = []string{"schedule", "parking"} }},
		{"attach outside full", "schedule", func(f *reportFlags) { f.attach = []string{writePNG(t, dir, "a.png")} }},
		{"attach non-image", "full", func(f *reportFlags) { f.attach = []string{notImage} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := defaultFlags()
			tt.edit(&f)
			_, err := f.request(tt.mode)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestReportFlags_request_missingAttachment(t *testing.T) {
	f := defaultFlags()
	f.attach = []string{filepath.Join(t.TempDir(), "gone.png")}

	_, err := f.request("full")

	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseSections_none(t *testing.T) {
	s, err := parseSections([]string{"none"})

	require.NoError(t, err)
	assert.False(t, s.Any())
}

// ---- output ----------------------------------------------------------------

func TestHumanBytes(t *testing.T) {
	assert.Equal(t, "512 B", humanBytes(512))
	assert.Equal(t, "1.5 KB", humanBytes(1536))
	assert.Equal(t, "2.0 MB", humanBytes(2<<20))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ज्योतिष...", truncate("ज्योतिषशास्त्र", 10))
}

func TestPrintSettings(t *testing.T) {
	settings := []repo.Setting{
		{Key: "base_name", Value: "Janmashtami"},
		{Key: "title.schedule", Value: "JANMASHTAMI - SCHEDULE"},
	}

	t.Run("table", func(t *testing.T) {
		var out bytes.Buffer
		a := &app{out: &out, noColor: true}
		require.NoError(t, a.printSettings(outputTable, settings))
		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		require.Len(t, lines, 3)
		assert.True(t, strings.HasPrefix(lines[0], "KEY"))
		assert.Contains(t, lines[2], "JANMASHTAMI - SCHEDULE")
	})

	t.Run("yaml", func(t *testing.T) {
		var out bytes.Buffer
		a := &app{out: &out, noColor: true}
		require.NoError(t, a.printSettings(outputYAML, settings))
		var got map[string]string
		require.NoError(t, yaml.Unmarshal(out.Bytes(), &got))
		assert.Equal(t, "Janmashtami", got["base_name"])
	})
}

func TestPrintHistory_json(t *testing.T) {
	var out bytes.Buffer
	a := &app{out: &out, noColor: true}
	id := uuid.New()
	recs := []domain.ExportRecord{{
		ID: id, Mode: domain.ModeTeam, Title: "ROSTER", Filename: "ROSTER.pdf",
		Format: "pdf", ByteSize: 2048, CreatedAt: time.Now(),
	}}

	require.NoError(t, a.printHistory(outputJSON, recs, 7, domain.PaginationParams{Page: 2, Limit: 1}))

	var got historyPage
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, int64(7), got.Total)
	assert.Equal(t, 2, got.Page)
	require.Len(t, got.Exports, 1)
	assert.Equal(t, id.String(), got.Exports[0].ID)
	assert.Equal(t, int64(2048), got.Exports[0].Bytes)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitValidation, exitCode(fmt.Errorf("x: %w", domain.ErrValidation)))
	assert.Equal(t, exitNotFound, exitCode(fmt.Errorf("x: %w", domain.ErrNotFound)))
	assert.Equal(t, exitInsufficient, exitCode(fmt.Errorf("a: %w", fmt.Errorf("b: %w", domain.ErrInsufficientData))))
	assert.Equal(t, exitError, exitCode(errors.New("boom")))
}

func TestReportError_hint(t *testing.T) {
	var buf bytes.Buffer

	reportError(&buf, fmt.Errorf("compose: %w", domain.ErrInsufficientData))

	assert.Contains(t, buf.String(), "error:")
	assert.Contains(t, buf.String(), "festsched sync")
}

// ---- command tree ----------------------------------------------------------

func TestExecute_help(t *testing.T) {
	code, out, _ := run(t, "--help")

	assert.Equal(t, 0, code)
	for _, name := range []string{"sync", "import", "show", "export", "types", "history", "settings", "header-image", "migrate"} {
		assert.Contains(t, out, name)
	}
}

func TestExecute_requiresDatabase(t *testing.T) {
	clearEnv(t)

	code, _, errOut := run(t, "settings", "list")

	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "DATABASE_URL")
}

func TestExecute_syncRequiresAirtable(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost:1/none")

	code, _, errOut := run(t, "sync")

	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "AIRTABLE_API_KEY")
	assert.Contains(t, errOut, "AIRTABLE_BASE_ID")
}

func TestExecute_validatesBeforeConnecting(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"show mode", []string{"show", "poster"}, `mode "poster"`},
		{"export status", []string{"export", "team", "--status", "busy"}, `status "busy"`},
		{"migrate action", []string{"migrate", "sideways"}, `migrate action "sideways"`},
		{"history output", []string{"history", "-o", "csv"}, `output "csv"`},
		{"import table", []string{"import", "stalls", "-"}, `table "stalls"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, errOut := run(t, tt.args...)
			assert.Equal(t, exitValidation, code)
			assert.Contains(t, errOut, tt.want)
			assert.NotContains(t, errOut, "DATABASE_URL")
		})
	}
}

func TestExecute_badConfigFile(t *testing.T) {
	clearEnv(t)

	code, _, errOut := run(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "settings", "list")

	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "missing.yaml")
}

func TestExecute_logLevelOverride(t *testing.T) {
	clearEnv(t)

	code, _, errOut := run(t, "--log-level", "loud", "settings", "list")

	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, `invalid log level "loud"`)
}
