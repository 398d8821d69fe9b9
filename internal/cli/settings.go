package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pkordes/festsched/internal/repo"
	"github.com/pkordes/festsched/internal/service"
)

func newSettingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show and change stored document titles",
	}

	var output string
	list := &cobra.Command{
		Use:   "list",
		Short: "List stored settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}
			return a.withServices(cmd.Context(), func(s *services) error {
				settings, err := s.settings.List(cmd.Context())
				if err != nil {
					return err
				}
				return a.printSettings(output, settings)
			})
		},
	}
	list.Flags().StringVarP(&output, "output", "o", outputTable, "output format: table, yaml or json")

	get := &cobra.Command{
		Use:       "get KEY",
		Short:     "Print one setting",
		Args:      cobra.ExactArgs(1),
		ValidArgs: service.Keys,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withServices(cmd.Context(), func(s *services) error {
				v, err := s.settings.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(a.out, v)
				return nil
			})
		},
	}

	set := &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Store a document title",
		Long: `Stores one of title.schedule, title.services or title.team. The next sync
overwrites titles when the Airtable base name can be read.`,
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{service.KeyScheduleTitle, service.KeyServicesTitle, service.KeyTeamTitle},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withServices(cmd.Context(), func(s *services) error {
				if err := s.settings.Set(cmd.Context(), args[0], args[1]); err != nil {
					return err
				}
				a.success("%s updated", args[0])
				return nil
			})
		},
	}

	cmd.AddCommand(list, get, set)
	return cmd
}

func (a *app) printSettings(output string, settings []repo.Setting) error {
	if output != outputTable {
		m := make(map[string]string, len(settings))
		for _, s := range settings {
			m[s.Key] = s.Value
		}
		return encode(a.out, output, m)
	}
	rows := make([][]string, len(settings))
	for i, s := range settings {
		rows[i] = []string{s.Key, truncate(s.Value, 60)}
	}
	return table(a.out, []string{"key", "value"}, rows)
}

func newHeaderImageCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "header-image",
		Short: "Manage the image printed above schedules and full reports",
	}

	set := &cobra.Command{
		Use:   "set FILE",
		Short: "Cache a PNG, JPEG or GIF as the header image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			return a.withServices(cmd.Context(), func(s *services) error {
				if err := s.settings.SetHeaderImage(cmd.Context(), raw); err != nil {
					return err
				}
				a.success("header image set from %s", args[0])
				return nil
			})
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove the cached header image",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withServices(cmd.Context(), func(s *services) error {
				if err := s.settings.ClearHeaderImage(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(a.out, a.paint(color.Faint).Sprint("header image cleared"))
				return nil
			})
		},
	}

	cmd.AddCommand(set, clearCmd)
	return cmd
}
