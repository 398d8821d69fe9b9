package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/pkordes/festsched/internal/domain"
)

// Output formats for list commands.
const (
	outputTable = "table"
	outputYAML  = "yaml"
	outputJSON  = "json"
)

// paint returns a colour honouring --no-color. color.New already disables
// itself when stdout is not a terminal.
func (a *app) paint(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if a.noColor {
		c.DisableColor()
	}
	return c
}

// success prints a green confirmation line.
func (a *app) success(format string, args ...any) {
	fmt.Fprintln(a.out, a.paint(color.FgGreen).Sprintf(format, args...))
}

func checkOutput(format string) error {
	switch format {
	case outputTable, outputYAML, outputJSON:
		return nil
	}
	return fmt.Errorf("output %q (want table, yaml or json): %w", format, domain.ErrValidation)
}

// encode writes v as YAML or JSON.
func encode(w io.Writer, format string, v any) error {
	switch format {
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	return checkOutput(format)
}

// table writes tab-aligned rows under an upper-case header. Cells are never
// coloured since escape codes would skew the alignment.
func table(w io.Writer, header []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.ToUpper(strings.Join(header, "\t")))
	for _, r := range rows {
		fmt.Fprintln(tw, strings.Join(r, "\t"))
	}
	return tw.Flush()
}

// truncate shortens s to n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n || n < 4 {
		return s
	}
	return string(r[:n-3]) + "..."
}
