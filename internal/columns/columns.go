// Package columns decides which optional table columns a group of records
// needs and how wide each visible column is.
package columns

import (
	"strconv"

	"github.com/pkordes/festsched/internal/domain"
)

// Column keys.
const (
	Activity    = "activity"
	Location    = "location"
	Timings     = "timings"
	Service     = "service"
	Coordinator = "coordinator"
	Team        = "team"
	Standby     = "standby"
	ServiceRole = "service_role"
	DateTime    = "date_time"
)

// Spec describes one candidate column.
type Spec struct {
	Key     string
	Header  string
	Weight  float64
	Primary bool
	// Present reports whether a record has a value for this column. Unused
	// for primary columns.
	Present func(domain.Fields) bool
}

// Column is a visible column with its share of the table width.
type Column struct {
	Key     string
	Header  string
	Weight  float64
	Percent float64
}

// Width renders Percent the way document tables expect it, e.g. "40%".
func (c Column) Width() string {
	return strconv.FormatFloat(c.Percent, 'f', -1, 64) + "%"
}

// Layout is the ordered set of visible columns.
type Layout struct {
	Columns []Column
}

// Has reports whether the column with the given key is visible.
func (l Layout) Has(key string) bool {
	for _, c := range l.Columns {
		if c.Key == key {
			return true
		}
	}
	return false
}

// Widths returns the column widths in order.
func (l Layout) Widths() []string {
	out := make([]string, len(l.Columns))
	for i, c := range l.Columns {
		out[i] = c.Width()
	}
	return out
}

// Sniff keeps primary columns and any optional column for which at least one
// record has a value, then renormalizes the weights of the visible columns to
// percentages summing to 100.
func Sniff(records []domain.Record, specs []Spec) Layout {
	visible := make([]Spec, 0, len(specs))
	for _, s := range specs {
		if s.Primary || anyPresent(records, s.Present) {
			visible = append(visible, s)
		}
	}
	return fixed(visible)
}

// Fixed builds a layout from specs without checking records.
func Fixed(specs []Spec) Layout {
	return fixed(specs)
}

func fixed(specs []Spec) Layout {
	total := 0.0
	for _, s := range specs {
		total += s.Weight
	}
	cols := make([]Column, 0, len(specs))
	for _, s := range specs {
		pct := 0.0
		if total > 0 {
			pct = s.Weight * 100 / total
		}
		cols = append(cols, Column{Key: s.Key, Header: s.Header, Weight: s.Weight, Percent: pct})
	}
	return Layout{Columns: cols}
}

func anyPresent(records []domain.Record, present func(domain.Fields) bool) bool {
	if present == nil {
		return false
	}
	for _, r := range records {
		if present(r.Fields) {
			return true
		}
	}
	return false
}

// ScheduleSpecs are the activity table columns: activity 4, location 3,
// timings 3.
var ScheduleSpecs = []Spec{
	{Key: Activity, Header: "Activity", Weight: 4, Primary: true},
	{Key: Location, Header: "Location", Weight: 3, Present: func(f domain.Fields) bool { return f.Location != "" }},
	{Key: Timings, Header: "Timings", Weight: 3, Present: func(f domain.Fields) bool { return f.Timings != "" }},
}

// ServiceSpecs are the service table columns: service 3, coordinator 2,
// team 3, standby 2.
var ServiceSpecs = []Spec{
	{Key: Service, Header: "Service", Weight: 3, Primary: true},
	{Key: Coordinator, Header: "Coordinator", Weight: 2, Present: func(f domain.Fields) bool { return len(f.Coordinator) > 0 }},
	{Key: Team, Header: "Team", Weight: 3, Present: func(f domain.Fields) bool { return len(f.TeamMembers) > 0 }},
	{Key: Standby, Header: "Standby", Weight: 2, Present: func(f domain.Fields) bool { return len(f.Standby) > 0 }},
}

// TeamSpecs are the per-member duty table columns, always 40/35/25.
var TeamSpecs = []Spec{
	{Key: ServiceRole, Header: "SERVICE & ROLE", Weight: 40, Primary: true},
	{Key: Team, Header: "TEAM", Weight: 35, Primary: true},
	{Key: DateTime, Header: "DATE & TIME", Weight: 25, Primary: true},
}
