package domain

// TeamMember is derived from a team-table record.
// The three ID slices reference service record IDs.
type TeamMember struct {
	ID                    string
	Name                  string
	Type                  string
	CoordinatorServiceIDs []string
	TeamMemberServiceIDs  []string
	StandbyServiceIDs     []string
}

// NameMapping resolves team member IDs to display names.
type NameMapping map[string]string

// Role is the capacity in which a member serves on a duty.
type Role string

const (
	RoleCoordinator Role = "Coordinator"
	RoleTeamMember  Role = "Team Member"
	RoleStandby     Role = "Standby"
)

// CrossRef lists the other people on the same duty, e.g. {"COORD", "Asha, Ravi"}.
type CrossRef struct {
	Label string
	Names string
}

// DutyRow is one resolved (member, service, role) assignment.
type DutyRow struct {
	ServiceRecordID string
	Date            string // raw Date field, empty when absent
	DateLabel       string // display form of Date
	Role            Role
	ServiceName     string
	Timing          string
	SortKey         string
	Highlighted     bool
	CrossRefs       []CrossRef
}

// AssignmentStatus filters team members by whether they have live duties.
type AssignmentStatus string

const (
	StatusAll        AssignmentStatus = "all"
	StatusAssigned   AssignmentStatus = "assigned"
	StatusUnassigned AssignmentStatus = "unassigned"
)

// Valid reports whether s is a known status.
func (s AssignmentStatus) Valid() bool {
	switch s {
	case StatusAll, StatusAssigned, StatusUnassigned:
		return true
	}
	return false
}
