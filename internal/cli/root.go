// Package cli wires configuration, storage, and services into the festsched
// command tree. No business logic belongs here.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/pkordes/festsched/internal/airtable"
	"github.com/pkordes/festsched/internal/config"
	"github.com/pkordes/festsched/internal/document"
	"github.com/pkordes/festsched/internal/domain"
	"github.com/pkordes/festsched/internal/repo"
	"github.com/pkordes/festsched/internal/service"
)

var _ service.Fetcher = (*airtable.Client)(nil)

// app carries state shared by every subcommand. It is populated by the root
// command's PersistentPreRunE.
type app struct {
	out    io.Writer
	errOut io.Writer

	configPath string
	logLevel   string
	noColor    bool

	cfg    config.Config
	logger *slog.Logger
}

// NewRootCmd builds the festsched command tree writing to out and errOut.
func NewRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "festsched",
		Short: "Festival schedule, service list, and team roster documents",
		Long: `festsched syncs a festival's activities, services, and team members from
Airtable into a local Postgres cache, then composes schedule, service list,
team roster, and full reports as PDF, XLSX, JSON, or terminal output.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default $CONFIG_PATH or "+config.DefaultPath+")")
	pf.StringVar(&a.logLevel, "log-level", "", "override LOG_LEVEL: debug, info, warn, error")
	pf.BoolVar(&a.noColor, "no-color", false, "disable coloured output")

	root.AddCommand(
		newSyncCmd(a),
		newImportCmd(a),
		newShowCmd(a),
		newExportCmd(a),
		newTypesCmd(a),
		newHistoryCmd(a),
		newSettingsCmd(a),
		newHeaderImageCmd(a),
		newMigrateCmd(a),
	)
	return root
}

// Execute runs the command tree with ctx and reports errors on errOut.
func Execute(ctx context.Context, args []string, out, errOut io.Writer) int {
	root := NewRootCmd(out, errOut)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		reportError(errOut, err)
		return exitCode(err)
	}
	return 0
}

// setup loads config and builds the logger.
func (a *app) setup() error {
	if a.configPath != "" {
		if err := os.Setenv("CONFIG_PATH", a.configPath); err != nil {
			return fmt.Errorf("set CONFIG_PATH: %w", err)
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("config: validate: %w", err)
		}
	}
	a.cfg = cfg

	// JSON logs go to stderr so stdout stays clean for documents and tables.
	a.logger = slog.New(slog.NewJSONHandler(a.errOut, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(a.logger)
	return nil
}

// connect opens and pings the Postgres pool. The caller closes it.
func (a *app) connect(ctx context.Context) (*pgxpool.Pool, error) {
	if err := a.cfg.RequireDatabase(); err != nil {
		return nil, err
	}
	// New() does not open connections immediately; the ping does.
	pool, err := pgxpool.New(ctx, a.cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("create database pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	a.logger.DebugContext(ctx, "database connection established")
	return pool, nil
}

// services bundles the services built over one pool.
type services struct {
	settings *service.SettingsService
	reports  *service.ReportService
	sync     *service.SyncService
}

func (a *app) defaultTitles() document.Config {
	return document.Config{
		PDFTitle:        a.cfg.Titles.Schedule,
		ServicePDFTitle: a.cfg.Titles.Services,
		TeamPDFTitle:    a.cfg.Titles.Team,
	}
}

func (a *app) sourceTables() service.SourceTables {
	return service.SourceTables{
		domain.TableActivities: a.cfg.Airtable.ActivitiesTable,
		domain.TableServices:   a.cfg.Airtable.ServicesTable,
		domain.TableTeam:       a.cfg.Airtable.TeamTable,
	}
}

// withServices connects, builds the services, runs fn, and closes the pool.
func (a *app) withServices(ctx context.Context, fn func(*services) error) error {
	pool, err := a.connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	records := repo.NewRecordRepo(pool)
	settings := service.NewSettingsService(repo.NewSettingsRepo(pool), a.defaultTitles())
	fetcher := airtable.NewClient(
		a.cfg.Airtable.BaseURL,
		a.cfg.Airtable.BaseID,
		a.cfg.Airtable.APIKey,
		a.cfg.Airtable.Timeout,
		a.logger,
	)

	return fn(&services{
		settings: settings,
		reports:  service.NewReportService(records, repo.NewExportRepo(pool), settings, a.cfg.OrderingMode(), a.logger),
		sync:     service.NewSyncService(fetcher, records, settings, a.sourceTables(), a.logger),
	})
}
