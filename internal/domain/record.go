// Package domain contains the core data types for FestSched.
// This package has zero external dependencies and is imported by every other
// internal package (normalize, grouping, team, document, repo, service).
package domain

// Fallback labels used wherever a field is absent.
const (
	UnspecifiedDate = "Unspecified Date"
	GeneralCategory = "General"
	UnknownName     = "Unknown"
	DefaultType     = "FTM"
	NoNames         = "-"
)

// Table names the three record sets the application works with.
type Table string

const (
	TableActivities Table = "activities"
	TableServices   Table = "services"
	TableTeam       Table = "team"
)

// Tables lists every known table in load order.
var Tables = []Table{TableActivities, TableServices, TableTeam}

// Valid reports whether t is one of the known tables.
func (t Table) Valid() bool {
	switch t {
	case TableActivities, TableServices, TableTeam:
		return true
	}
	return false
}

// Record is one row from a source table in canonical shape.
// ID is stable per source row and unique within one record set.
type Record struct {
	ID          string `json:"id"`
	CreatedTime string `json:"createdTime,omitempty"`
	Fields      Fields `json:"fields"`
}

// Fields holds every canonical field used across the three tables.
// All fields are optional: strings are empty when absent, relation slices are
// empty (never nil once a record has passed through the normalizer).
// JSON names match the source table column names.
type Fields struct {
	// Schedule fields
	Date     string `json:"Date,omitempty"`
	Category string `json:"Category,omitempty"`
	Activity string `json:"Activity,omitempty"`
	Location string `json:"Location,omitempty"`
	Timings  string `json:"Timings,omitempty"`
	From     string `json:"From,omitempty"`
	To       string `json:"To,omitempty"`

	// Service fields
	Service     string   `json:"Service,omitempty"`
	StartTime   string   `json:"Start Time,omitempty"`
	Coordinator []string `json:"Coordinator"`
	TeamMembers []string `json:"Team Members"`
	Standby     []string `json:"Standby"`

	// Team member fields. Coordinator and Standby are shared with the service
	// table; on a team record they hold service IDs.
	Name       string   `json:"Name,omitempty"`
	Type       string   `json:"Type,omitempty"`
	TeamMember []string `json:"Team Member"`
	Department []string `json:"Department"`

	Serial *float64 `json:"Serial,omitempty"`
	Select bool     `json:"Select,omitempty"`
}

// GroupedData buckets records by date, then by category.
// The maps are unordered; use the grouping package to obtain key order.
type GroupedData map[string]map[string][]Record

// ReportSections selects which sections a full report contains.
type ReportSections struct {
	IncludeSchedule bool
	IncludeServices bool
	IncludeTeam     bool
}

// AllSections is the default selection for a full report.
var AllSections = ReportSections{IncludeSchedule: true, IncludeServices: true, IncludeTeam: true}

// Any reports whether at least one section is selected.
func (s ReportSections) Any() bool {
	return s.IncludeSchedule || s.IncludeServices || s.IncludeTeam
}

// Attachment is an image appended to the end of a full report.
// Data is an opaque base64 payload, optionally in data-URL form.
type Attachment struct {
	Name string
	Data string
}
