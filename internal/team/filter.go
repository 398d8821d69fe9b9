package team

import (
	"sort"
	"strings"

	"github.com/pkordes/festsched/internal/domain"
)

// AllTypes is the type filter value that matches every member.
const AllTypes = "All"

// Filter narrows a member list. The zero value matches everyone.
type Filter struct {
	Search string
	Type   string
	Status domain.AssignmentStatus
}

// Apply returns the matching members sorted by name, ignoring case. The
// input is not modified.
func (f Filter) Apply(members []domain.TeamMember, servicesByID map[string]domain.Record) []domain.TeamMember {
	search := strings.ToLower(f.Search)
	out := make([]domain.TeamMember, 0, len(members))
	for _, m := range members {
		if search != "" && !strings.Contains(strings.ToLower(m.Name), search) {
			continue
		}
		if f.Type != "" && f.Type != AllTypes && m.Type != f.Type {
			continue
		}
		switch f.Status {
		case domain.StatusAssigned:
			if !HasAssignment(m, servicesByID) {
				continue
			}
		case domain.StatusUnassigned:
			if HasAssignment(m, servicesByID) {
				continue
			}
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool { return lessName(out[i].Name, out[j].Name) })
	return out
}

// lessName orders names case-insensitively, falling back to byte order.
func lessName(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return a < b
}

// HasAssignment reports whether any of the member's references points at an
// existing service. A member whose references all dangle is unassigned.
func HasAssignment(m domain.TeamMember, servicesByID map[string]domain.Record) bool {
	for _, ids := range [][]string{m.CoordinatorServiceIDs, m.TeamMemberServiceIDs, m.StandbyServiceIDs} {
		for _, id := range ids {
			if _, ok := servicesByID[id]; ok {
				return true
			}
		}
	}
	return false
}
