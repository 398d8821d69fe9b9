// Package team derives team members, name mappings, duty rosters and member
// filters from the team and service record sets.
package team

import (
	"sort"

	"github.com/pkordes/festsched/internal/domain"
)

// BuildMembers converts team-table records into members. Missing names become
// "Unknown" and missing types "FTM". Relation slices are copied so callers may
// not alias the input records.
func BuildMembers(records []domain.Record) []domain.TeamMember {
	out := make([]domain.TeamMember, 0, len(records))
	for _, r := range records {
		name := r.Fields.Name
		if name == "" {
			name = domain.UnknownName
		}
		typ := r.Fields.Type
		if typ == "" {
			typ = domain.DefaultType
		}
		out = append(out, domain.TeamMember{
			ID:                    r.ID,
			Name:                  name,
			Type:                  typ,
			CoordinatorServiceIDs: clone(r.Fields.Coordinator),
			TeamMemberServiceIDs:  clone(r.Fields.TeamMember),
			StandbyServiceIDs:     clone(r.Fields.Standby),
		})
	}
	return out
}

// ServicesByID indexes service records by ID. Later duplicates win.
func ServicesByID(records []domain.Record) map[string]domain.Record {
	m := make(map[string]domain.Record, len(records))
	for _, r := range records {
		m[r.ID] = r
	}
	return m
}

// UniqueTypes returns "All" followed by the sorted, distinct member types.
func UniqueTypes(members []domain.TeamMember) []string {
	seen := make(map[string]struct{})
	types := make([]string, 0)
	for _, m := range members {
		if m.Type == "" {
			continue
		}
		if _, ok := seen[m.Type]; ok {
			continue
		}
		seen[m.Type] = struct{}{}
		types = append(types, m.Type)
	}
	sort.Strings(types)
	return append([]string{AllTypes}, types...)
}

func clone(ids []string) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}
