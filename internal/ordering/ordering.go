// Package ordering compares the date and time strings used as sort keys.
//
// Source tables store dates and times as free text. The default Lexical mode
// compares them as plain strings, which is only correct when the values are
// zero-padded and uniformly formatted (e.g. "2025-01-02", "08:00").
// Chronological mode ranks values in three groups: empty, parsed, then
// unparsed. Parsed values compare as instants and unparsed values as strings,
// which keeps the order total when the two kinds are mixed.
package ordering

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Mode selects how date and time strings are compared.
type Mode string

const (
	Lexical       Mode = "lexical"
	Chronological Mode = "chronological"
)

// Parse validates a mode name. The empty string selects Lexical.
func Parse(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", Lexical:
		return Lexical, nil
	case Chronological:
		return Chronological, nil
	}
	return "", fmt.Errorf("unknown ordering mode %q (want %q or %q)", s, Lexical, Chronological)
}

// CompareTimes orders two time-of-day strings. Empty sorts first in both modes.
func (m Mode) CompareTimes(a, b string) int {
	if m == Chronological {
		ta, okA := ParseClock(a)
		tb, okB := ParseClock(b)
		if okA && okB {
			return compareInts(ta, tb)
		}
		if c := compareInts(rank(a, okA), rank(b, okB)); c != 0 {
			return c
		}
	}
	return strings.Compare(a, b)
}

// CompareDates orders two date strings.
func (m Mode) CompareDates(a, b string) int {
	if m == Chronological {
		da, okA := ParseDate(a)
		db, okB := ParseDate(b)
		if okA && okB {
			return da.Compare(db)
		}
		if c := compareInts(rank(a, okA), rank(b, okB)); c != 0 {
			return c
		}
	}
	return strings.Compare(a, b)
}

// CompareKeys orders roster entries by date, then time of day. Lexical mode
// compares the joined "<date>T<time>" key.
func (m Mode) CompareKeys(dateA, timeA, dateB, timeB string) int {
	if m != Chronological {
		return strings.Compare(dateA+"T"+timeA, dateB+"T"+timeB)
	}
	if c := m.CompareDates(dateA, dateB); c != 0 {
		return c
	}
	return m.CompareTimes(timeA, timeB)
}

// rank groups a value for chronological comparison.
func rank(s string, parsed bool) int {
	switch {
	case s == "":
		return 0
	case parsed:
		return 1
	}
	return 2
}

var ordinalSuffix = regexp.MustCompile(`(?i)(\d+)(st|nd|rd|th)\b`)

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006-1-2",
	"01/02/2006",
	"1/2/2006",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"2 January 2006",
	"2 Jan 2006",
	"Monday, January 2, 2006",
	"Monday, 2 January 2006",
	"Mon, 2 Jan 2006",
	time.RFC3339,
}

// ParseDate parses the date formats seen in source tables, ignoring ordinal
// suffixes ("1st", "22nd"). The second result is false when nothing matched.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(ordinalSuffix.ReplaceAllString(s, "$1"))
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

var clockLayouts = []string{
	"15:04",
	"15:04:05",
	"3:04 PM",
	"3:04PM",
	"3 PM",
	"3PM",
	"15.04",
}

// ParseClock parses a time of day and returns minutes since midnight. Range
// strings ("9:00 AM - 11:00 AM", "09:00 to 10:00") use their start time.
func ParseClock(s string) (int, bool) {
	s = strings.TrimSpace(s)
	for _, sep := range []string{" - ", "-", " to ", " TO "} {
		if start, _, found := strings.Cut(s, sep); found {
			s = strings.TrimSpace(start)
			break
		}
	}
	if s == "" {
		return 0, false
	}
	s = strings.ToUpper(s)
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Hour()*60 + t.Minute(), true
		}
	}
	return 0, false
}

func compareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
