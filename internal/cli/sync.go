package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pkordes/festsched/internal/domain"
	"github.com/pkordes/festsched/internal/service"
)

func newSyncCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Refresh the local cache from Airtable",
		Long: `Fetches every configured table in parallel and replaces the cached copy.
If any fetch fails nothing is written. Document titles are re-derived from
the Airtable base name when it can be read.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.cfg.RequireAirtable(); err != nil {
				return err
			}
			return a.withServices(cmd.Context(), func(s *services) error {
				res, err := s.sync.Sync(cmd.Context())
				if err != nil {
					return err
				}
				a.printSync(res)
				return nil
			})
		},
	}
}

func (a *app) printSync(res service.SyncResult) {
	key := a.paint(color.FgCyan)
	for _, table := range domain.Tables {
		n, ok := res.Counts[table]
		if !ok {
			fmt.Fprintf(a.out, "%-12s %s\n", key.Sprint(table), a.paint(color.Faint).Sprint("skipped"))
			continue
		}
		fmt.Fprintf(a.out, "%-12s %d records\n", key.Sprint(table), n)
	}
	if res.BaseName != "" {
		fmt.Fprintf(a.out, "%-12s %s\n", key.Sprint("base"), res.BaseName)
	}
	a.success("synced at %s", res.SyncedAt.Format("2006-01-02 15:04:05"))
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import TABLE FILE",
		Short: "Load a JSON records export into one cached table",
		Long: `Replaces the cached copy of TABLE (activities, services or team) with the
records in FILE. FILE holds either a list response ({"records": [...]}) or a
bare array of records. Use "-" to read standard input.`,
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{string(domain.TableActivities), string(domain.TableServices), string(domain.TableTeam)},
		RunE: func(cmd *cobra.Command, args []string) error {
			table := domain.Table(args[0])
			if !table.Valid() {
				return fmt.Errorf("table %q (want activities, services or team): %w", args[0], domain.ErrValidation)
			}

			var r io.Reader = cmd.InOrStdin()
			if args[1] != "-" {
				f, err := os.Open(args[1])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}

			return a.withServices(cmd.Context(), func(s *services) error {
				n, err := s.sync.Import(cmd.Context(), table, r)
				if err != nil {
					return err
				}
				a.success("imported %d %s records", n, table)
				return nil
			})
		},
	}
}
