package team

import (
	"log/slog"
	"sort"

	"github.com/pkordes/festsched/internal/domain"
	"github.com/pkordes/festsched/internal/ordering"
	"github.com/pkordes/festsched/internal/textfmt"
)

const (
	noDateSortKey = "9999-99-99"
	noTimeSortKey = "00:00"
	noDateLabel   = "Unspecified"
)

// Cross reference labels.
const (
	LabelCoordinator = "COORD"
	LabelTeam        = "TEAM"
	LabelStandby     = "STANDBY"
)

// RosterOptions controls how a member's duty rows are rendered and ordered.
type RosterOptions struct {
	Names    domain.NameMapping
	Style    textfmt.Style
	Ordering ordering.Mode
	// Logger receives a debug line per dangling service reference. Optional.
	Logger *slog.Logger
}

// BuildRoster resolves a member's coordinator, team member and standby
// references into duty rows sorted by date then time. References to services
// that do not exist are skipped.
func BuildRoster(member domain.TeamMember, servicesByID map[string]domain.Record, opts RosterOptions) []domain.DutyRow {
	rows := make([]domain.DutyRow, 0, len(member.CoordinatorServiceIDs)+len(member.TeamMemberServiceIDs)+len(member.StandbyServiceIDs))

	add := func(ids []string, role domain.Role) {
		for _, id := range ids {
			svc, ok := servicesByID[id]
			if !ok {
				if opts.Logger != nil {
					opts.Logger.Debug("skipping dangling service reference",
						"member_id", member.ID, "service_id", id, "role", string(role))
				}
				continue
			}
			rows = append(rows, dutyRow(svc, role, opts))
		}
	}
	add(member.CoordinatorServiceIDs, domain.RoleCoordinator)
	add(member.TeamMemberServiceIDs, domain.RoleTeamMember)
	add(member.StandbyServiceIDs, domain.RoleStandby)

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := servicesByID[rows[i].ServiceRecordID].Fields, servicesByID[rows[j].ServiceRecordID].Fields
		dateA, clockA := sortParts(a)
		dateB, clockB := sortParts(b)
		return opts.Ordering.CompareKeys(dateA, clockA, dateB, clockB) < 0
	})
	return rows
}

// SortKey is "<date>T<time>", using From, Start Time or Timings for the time.
func SortKey(f domain.Fields) string {
	date, clock := sortParts(f)
	return date + "T" + clock
}

func sortParts(f domain.Fields) (date, clock string) {
	date = f.Date
	if date == "" {
		date = noDateSortKey
	}
	clock = firstNonEmpty(f.From, f.StartTime, f.Timings)
	if clock == "" {
		clock = noTimeSortKey
	}
	return date, clock
}

// CrossRefs lists the other people on a duty as seen from the given role.
func CrossRefs(svc domain.Fields, role domain.Role, names domain.NameMapping) []domain.CrossRef {
	coord := domain.CrossRef{Label: LabelCoordinator, Names: ResolveNames(svc.Coordinator, names)}
	team := domain.CrossRef{Label: LabelTeam, Names: ResolveNames(svc.TeamMembers, names)}

	switch role {
	case domain.RoleTeamMember:
		return []domain.CrossRef{coord}
	case domain.RoleCoordinator:
		refs := []domain.CrossRef{team}
		if len(svc.Standby) > 0 {
			refs = append(refs, domain.CrossRef{Label: LabelStandby, Names: ResolveNames(svc.Standby, names)})
		}
		return refs
	default:
		return []domain.CrossRef{coord, team}
	}
}

func dutyRow(svc domain.Record, role domain.Role, opts RosterOptions) domain.DutyRow {
	f := svc.Fields

	date := f.Date
	if date == "" {
		date = noDateLabel
	}
	name := f.Service
	if name == "" {
		name = unknownService(opts.Style)
	}

	return domain.DutyRow{
		ServiceRecordID: svc.ID,
		Date:            f.Date,
		DateLabel:       textfmt.OrdinalDate(date, opts.Style),
		Role:            role,
		ServiceName:     name,
		Timing:          textfmt.Timing(f.Timings, opts.Style),
		SortKey:         SortKey(f),
		Highlighted:     f.Select,
		CrossRefs:       CrossRefs(f, role, opts.Names),
	}
}

func unknownService(style textfmt.Style) string {
	if style == textfmt.Screen {
		return "Unknown Service"
	}
	return domain.NoNames
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
