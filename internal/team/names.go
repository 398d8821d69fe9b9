package team

import (
	"strings"

	"github.com/pkordes/festsched/internal/domain"
)

// BuildNameMapping maps member IDs to display names. If an ID repeats, the
// last member wins.
func BuildNameMapping(members []domain.TeamMember) domain.NameMapping {
	m := make(domain.NameMapping, len(members))
	for _, member := range members {
		m[member.ID] = member.Name
	}
	return m
}

// ResolveNames renders a list of member IDs as "Asha, Ravi". Unmapped IDs are
// shown raw and an empty list renders as "-".
func ResolveNames(ids []string, mapping domain.NameMapping) string {
	if len(ids) == 0 {
		return domain.NoNames
	}
	names := make([]string, len(ids))
	for i, id := range ids {
		if name, ok := mapping[id]; ok && name != "" {
			names[i] = name
			continue
		}
		names[i] = id
	}
	return strings.Join(names, ", ")
}
