package ordering_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/festsched/internal/ordering"
)

func TestParse(t *testing.T) {
	m, err := ordering.Parse("")
	require.NoError(t, err)
	assert.Equal(t, ordering.Lexical, m)

	m, err = ordering.Parse(" Chronological ")
	require.NoError(t, err)
	assert.Equal(t, ordering.Chronological, m)

	_, err = ordering.Parse("random")
	require.Error(t, err)
	assert.ErrorContains(t, err, "random")
}

func TestLexical_comparesStrings(t *testing.T) {
	m := ordering.Lexical

	// Non-padded times sort as strings in lexical mode.
	assert.Equal(t, 1, m.CompareTimes("9:00", "10:00"))
	assert.Equal(t, -1, m.CompareTimes("", "06:00"))
	assert.Equal(t, 1, m.CompareDates("Jan 3", "Feb 1"))
}

func TestChronological_parsesWhenPossible(t *testing.T) {
	m := ordering.Chronological

	assert.Equal(t, -1, m.CompareTimes("9:00", "10:00"))
	assert.Equal(t, -1, m.CompareTimes("9:00 AM", "1:00 PM"))
	assert.Equal(t, 0, m.CompareTimes("13:00", "1:00 PM"))
	assert.Equal(t, -1, m.CompareDates("Jan 3, 2025", "Feb 1, 2025"))
	assert.Equal(t, -1, m.CompareDates("1st March 2025", "2025-03-02"))
}

func TestChronological_fallsBackToLexical(t *testing.T) {
	m := ordering.Chronological

	assert.Equal(t, -1, m.CompareTimes("", "06:00"))
	assert.Equal(t, 1, m.CompareTimes("morning", "evening"))
	assert.Equal(t, 1, m.CompareDates("Unspecified Date", "2025-01-01"))
}

func TestChronological_groupsUnparsedAfterParsed(t *testing.T) {
	m := ordering.Chronological
	dates := []string{"Feb x", "2025-01-10", "Jan 5, 2025", "", "Aardvark"}

	sort.SliceStable(dates, func(i, j int) bool { return m.CompareDates(dates[i], dates[j]) < 0 })

	assert.Equal(t, []string{"", "Jan 5, 2025", "2025-01-10", "Aardvark", "Feb x"}, dates)

	// Transitivity across the parsed/unparsed boundary.
	assert.Equal(t, -1, m.CompareDates("Jan 5, 2025", "2025-01-10"))
	assert.Equal(t, -1, m.CompareDates("2025-01-10", "Feb x"))
	assert.Equal(t, -1, m.CompareDates("Jan 5, 2025", "Feb x"))
	assert.Equal(t, -1, m.CompareTimes("10:00", "after lunch"))
}

func TestCompareKeys(t *testing.T) {
	assert.Equal(t, -1, ordering.Lexical.CompareKeys("2025-01-01", "08:00", "2025-01-01", "09:00"))
	assert.Equal(t, -1, ordering.Lexical.CompareKeys("2025-01-02", "00:00", "9999-99-99", "00:00"))

	assert.Equal(t, 1, ordering.Lexical.CompareKeys("2025-01-01", "9:00", "2025-01-01", "10:00"))
	assert.Equal(t, -1, ordering.Chronological.CompareKeys("2025-01-01", "9:00", "2025-01-01", "10:00"))
}

func TestCompareKeys_weekdayLedDates(t *testing.T) {
	m := ordering.Chronological

	assert.Equal(t, -1, m.CompareKeys("Monday, 6 January 2025", "09:00", "Tuesday, 7 January 2025", "09:00"))
	assert.Equal(t, 1, m.CompareKeys("Thursday, 9 January 2025", "09:00", "Monday, 6 January 2025", "09:00"))
	assert.Equal(t, -1, m.CompareKeys("Tue, 7 Jan 2025", "9:00", "Tue, 7 Jan 2025", "10:00"))
	assert.Equal(t, -1, m.CompareKeys("Tuesday, 7 January 2025", "09:00", "9999-99-99", "00:00"))
}

func TestParseClock_rangeUsesStart(t *testing.T) {
	got, ok := ordering.ParseClock("9:30 AM - 11:00 AM")
	require.True(t, ok)
	assert.Equal(t, 9*60+30, got)

	got, ok = ordering.ParseClock("18:00 to 19:00")
	require.True(t, ok)
	assert.Equal(t, 18*60, got)

	_, ok = ordering.ParseClock("after lunch")
	assert.False(t, ok)
}

func TestParseDate_ordinalSuffixes(t *testing.T) {
	d, ok := ordering.ParseDate("22nd February 2025")
	require.True(t, ok)
	assert.Equal(t, 22, d.Day())

	_, ok = ordering.ParseDate("sometime")
	assert.False(t, ok)
}
