// Package textfmt formats timings, dates, and category names for display.
package textfmt

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkordes/festsched/internal/ordering"
)

// Style selects between the on-screen and printed renditions of a value.
type Style int

const (
	// Screen is compact: "9:00 AM - 11:00 AM", "Mon, 1st Jan".
	Screen Style = iota
	// Print is verbose: "9:00 AM to 11:00 AM", "Monday, 1st January 2025".
	Print
)

// ParseStyle maps a flag value to a Style.
func ParseStyle(s string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "screen":
		return Screen, nil
	case "print", "":
		return Print, nil
	}
	return Print, fmt.Errorf("unknown timing style %q (want screen or print)", s)
}

func (s Style) String() string {
	if s == Screen {
		return "screen"
	}
	return "print"
}

var (
	meridiem    = regexp.MustCompile(`(?i)(\d\s*)([ap])\.?m\b\.?`)
	colonSpace  = regexp.MustCompile(`\s*:\s*`)
	dashSep     = regexp.MustCompile(`\s*[-–]\s*`)
	wordSep     = regexp.MustCompile(`(?i)\s+to\s+`)
	serialMatch = regexp.MustCompile(`^\d+`)
	serialStrip = regexp.MustCompile(`^\d+[.\s]*`)
)

// Timing normalizes a free-text time range. AM/PM markers are uppercased,
// spaces around ':' are removed, and range separators become " - " (Screen)
// or " to " (Print).
func Timing(raw string, style Style) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	s = meridiem.ReplaceAllStringFunc(s, func(m string) string {
		sub := meridiem.FindStringSubmatch(m)
		return sub[1] + strings.ToUpper(sub[2]) + "M"
	})
	s = colonSpace.ReplaceAllString(s, ":")
	sep := " to "
	if style == Screen {
		sep = " - "
	}
	s = dashSep.ReplaceAllString(s, sep)
	s = wordSep.ReplaceAllString(s, sep)
	return strings.TrimSpace(s)
}

// OrdinalSuffix returns "st", "nd", "rd" or "th" for a day of month.
func OrdinalSuffix(day int) string {
	if day%100 >= 11 && day%100 <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	}
	return "th"
}

// OrdinalDate renders a date as "Monday, 1st January 2025" (Print) or
// "Mon, 1st Jan" (Screen). Input that does not parse is returned unchanged.
func OrdinalDate(raw string, style Style) string {
	t, ok := ordering.ParseDate(raw)
	if !ok {
		return raw
	}
	day := strconv.Itoa(t.Day()) + OrdinalSuffix(t.Day())
	if style == Screen {
		return fmt.Sprintf("%s, %s %s", t.Weekday().String()[:3], day, t.Month().String()[:3])
	}
	return fmt.Sprintf("%s, %s %s %d", t.Weekday(), day, t.Month(), t.Year())
}

// CategoryLabel strips a leading serial ("01. Pooja" -> "Pooja").
func CategoryLabel(name string) string {
	return strings.TrimSpace(serialStrip.ReplaceAllString(name, ""))
}

// CategorySerial returns the leading integer of a category name, or 999.
func CategorySerial(name string) int {
	m := serialMatch.FindString(name)
	if m == "" {
		return 999
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 999
	}
	return n
}

// GeneratedOn formats the date printed in document footers.
func GeneratedOn(t time.Time) string {
	return t.Format("2 Jan 2006")
}

// StripExtension drops the final ".ext" from a file name.
func StripExtension(name string) string {
	i := strings.LastIndex(name, ".")
	if i <= 0 {
		return name
	}
	return name[:i]
}
