package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/pkordes/festsched/internal/domain"
	"github.com/pkordes/festsched/migrations"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate [up|down|reset|status]",
		Short: "Apply or inspect the cache schema",
		Long: `Runs the embedded schema migrations against DATABASE_URL.

  up      apply all pending migrations (default)
  down    roll back the most recent migration
  reset   roll back every migration
  status  list migrations and whether they are applied`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"up", "down", "reset", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			action := "up"
			if len(args) == 1 {
				action = args[0]
			}
			switch action {
			case "up", "down", "reset", "status":
			default:
				return fmt.Errorf("migrate action %q (want up, down, reset or status): %w", action, domain.ErrValidation)
			}

			ctx := cmd.Context()
			pool, err := a.connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			// goose needs database/sql; wrap the pool rather than open a second one.
			db := stdlib.OpenDBFromPool(pool)
			defer db.Close()

			provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS,
				goose.WithVerbose(true),
				goose.WithSlog(a.logger),
			)
			if err != nil {
				return fmt.Errorf("create goose provider: %w", err)
			}

			switch action {
			case "up":
				results, err := provider.Up(ctx)
				if err != nil {
					return fmt.Errorf("migrate up: %w", err)
				}
				a.printMigrations(results)
			case "down":
				result, err := provider.Down(ctx)
				if err != nil {
					return fmt.Errorf("migrate down: %w", err)
				}
				a.printMigrations([]*goose.MigrationResult{result})
			case "reset":
				results, err := provider.DownTo(ctx, 0)
				if err != nil {
					return fmt.Errorf("migrate reset: %w", err)
				}
				a.printMigrations(results)
			case "status":
				statuses, err := provider.Status(ctx)
				if err != nil {
					return fmt.Errorf("migrate status: %w", err)
				}
				return a.printMigrationStatus(statuses)
			}
			return nil
		},
	}
}

func (a *app) printMigrations(results []*goose.MigrationResult) {
	if len(results) == 0 {
		fmt.Fprintln(a.out, a.paint(color.Faint).Sprint("no migrations to run"))
		return
	}
	for _, r := range results {
		a.success("%s %s (%s)", r.Direction, r.Source.Path, r.Duration.Round(time.Microsecond))
	}
}

func (a *app) printMigrationStatus(statuses []*goose.MigrationStatus) error {
	rows := make([][]string, len(statuses))
	for i, s := range statuses {
		applied := "-"
		if s.State == goose.StateApplied {
			applied = s.AppliedAt.Local().Format("2006-01-02 15:04")
		}
		rows[i] = []string{strconv.FormatInt(s.Source.Version, 10), string(s.State), applied, s.Source.Path}
	}
	return table(a.out, []string{"version", "state", "applied", "file"}, rows)
}
