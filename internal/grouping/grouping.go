// Package grouping buckets records by date and category and defines the
// display order of dates, categories and records within a category.
package grouping

import (
	"sort"

	"github.com/pkordes/festsched/internal/domain"
	"github.com/pkordes/festsched/internal/ordering"
	"github.com/pkordes/festsched/internal/textfmt"
)

// Group buckets records by Date then Category, using "Unspecified Date" and
// "General" for missing values. Records within a category keep their input
// order except that they are stable-sorted by From.
func Group(records []domain.Record, mode ordering.Mode) domain.GroupedData {
	g := make(domain.GroupedData)
	for _, r := range records {
		date := DateKey(r)
		cat := CategoryKey(r)
		byCat, ok := g[date]
		if !ok {
			byCat = make(map[string][]domain.Record)
			g[date] = byCat
		}
		byCat[cat] = append(byCat[cat], r)
	}
	for _, byCat := range g {
		for _, recs := range byCat {
			sort.SliceStable(recs, func(i, j int) bool {
				return mode.CompareTimes(recs[i].Fields.From, recs[j].Fields.From) < 0
			})
		}
	}
	return g
}

// DateKey is the date bucket a record belongs to.
func DateKey(r domain.Record) string {
	if r.Fields.Date == "" {
		return domain.UnspecifiedDate
	}
	return r.Fields.Date
}

// CategoryKey is the category bucket a record belongs to.
func CategoryKey(r domain.Record) string {
	if r.Fields.Category == "" {
		return domain.GeneralCategory
	}
	return r.Fields.Category
}

// ScheduleDates returns the date keys in ascending order.
func ScheduleDates(g domain.GroupedData, mode ordering.Mode) []string {
	dates := keys(g)
	sort.SliceStable(dates, func(i, j int) bool {
		return mode.CompareDates(dates[i], dates[j]) < 0
	})
	return dates
}

// ServiceDates returns the date keys in ascending order with
// "Unspecified Date" first.
func ServiceDates(g domain.GroupedData, mode ordering.Mode) []string {
	dates := keys(g)
	sort.SliceStable(dates, func(i, j int) bool {
		a, b := dates[i], dates[j]
		if a == domain.UnspecifiedDate || b == domain.UnspecifiedDate {
			return a == domain.UnspecifiedDate && b != domain.UnspecifiedDate
		}
		return mode.CompareDates(a, b) < 0
	})
	return dates
}

// Categories returns category keys ordered by their leading serial number
// (999 when absent), then by name.
func Categories(byCategory map[string][]domain.Record) []string {
	cats := make([]string, 0, len(byCategory))
	for c := range byCategory {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool {
		si, sj := textfmt.CategorySerial(cats[i]), textfmt.CategorySerial(cats[j])
		if si != sj {
			return si < sj
		}
		return cats[i] < cats[j]
	})
	return cats
}

// Count returns the number of records held in g.
func Count(g domain.GroupedData) int {
	n := 0
	for _, byCat := range g {
		for _, recs := range byCat {
			n += len(recs)
		}
	}
	return n
}

func keys(g domain.GroupedData) []string {
	out := make([]string, 0, len(g))
	for k := range g {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
