package dates

import (
	"testing"
	"time"

	"zetacore/app/models"
	"zetacore/app/service/slots"

	"github.com/stretchr/testify/require"
)

// 2025-07-09 was a Wednesday.
var testNow = time.Date(2025, 7, 9, 10, 0, 0, 0, time.UTC)

func TestParseFutureWeekdayAlwaysNextOccurrence(t *testing.T) {
	resolved, ok := ParseFuture("Friday", time.UTC, testNow)
	require.True(t, ok)
	require.Equal(t, "2025-07-11", resolved.Format(ISODate))

	// Saying the current weekday's name means next week, never today.
	resolved, ok = ParseFuture("Wednesday", time.UTC, testNow)
	require.True(t, ok)
	require.Equal(t, "2025-07-16", resolved.Format(ISODate))

	resolved, ok = ParseFuture("monday", time.UTC, testNow)
	require.True(t, ok)
	require.Equal(t, "2025-07-14", resolved.Format(ISODate))
	require.Equal(t, 0, resolved.Hour())
}

func TestParseFutureRelativeExpressions(t *testing.T) {
	resolved, ok := ParseFuture("tomorrow", time.UTC, testNow)
	require.True(t, ok)
	require.Equal(t, "2025-07-10", resolved.Format(ISODate))

	resolved, ok = ParseFuture("today", time.UTC, testNow)
	require.True(t, ok)
	require.Equal(t, "2025-07-09", resolved.Format(ISODate))
}

func TestParseFutureAbsoluteDates(t *testing.T) {
	resolved, ok := ParseFuture("2025-07-12", time.UTC, testNow)
	require.True(t, ok)
	require.Equal(t, "2025-07-12", resolved.Format(ISODate))

	// A past date is returned as parsed, not bumped forward.
	resolved, ok = ParseFuture("2024-01-01", time.UTC, testNow)
	require.True(t, ok)
	require.Equal(t, "2024-01-01", resolved.Format(ISODate))
}

func TestParseFutureUnresolvable(t *testing.T) {
	_, ok := ParseFuture("two days after the recital", time.UTC, testNow)
	require.False(t, ok)

	_, ok = ParseFuture("", time.UTC, testNow)
	require.False(t, ok)
}

func TestOffsetDays(t *testing.T) {
	require.Equal(t, 3, OffsetDays("+3 days"))
	require.Equal(t, 2, OffsetDays("two days after"))
	require.Equal(t, 1, OffsetDays("a day after"))
	require.Equal(t, 2, OffsetDays("a day or two after"))
	require.Equal(t, 1, OffsetDays("the day after"))
}

func TestResolveAnchor(t *testing.T) {
	events := []models.CalendarEvent{
		{Title: "Standup", Date: "2025-07-09"},
		{Title: "Piano Recital", Date: "2025-07-10"},
		{Title: "Piano Recital Rehearsal", Date: "2025-07-20"},
	}

	resolved, ok := ResolveAnchor(slots.RelativeReference{
		EventTitle: "piano recital",
		Offset:     "two days after",
	}, events, time.UTC)
	require.True(t, ok)
	require.Equal(t, "2025-07-12", resolved.Format(ISODate))
}

func TestResolveAnchorNoMatch(t *testing.T) {
	events := []models.CalendarEvent{
		{Title: "Standup", Date: "2025-07-09"},
	}

	_, ok := ResolveAnchor(slots.RelativeReference{
		EventTitle: "piano recital",
		Offset:     "two days after",
	}, events, time.UTC)
	require.False(t, ok)

	_, ok = ResolveAnchor(slots.RelativeReference{Offset: "two days after"}, events, time.UTC)
	require.False(t, ok)
}

func TestResolvePrefersDirectDate(t *testing.T) {
	events := []models.CalendarEvent{
		{Title: "Team Offsite", Date: "2025-08-01"},
	}

	schema := slots.Schema{
		Date: "2025-07-12",
		RelativeReference: &slots.RelativeReference{
			EventTitle: "team offsite",
			Offset:     "two days after",
		},
	}

	resolved, ok := Resolve(schema, events, time.UTC, testNow)
	require.True(t, ok)
	require.Equal(t, "2025-07-12", resolved.Format(ISODate))
}

func TestResolveFallsBackToAnchor(t *testing.T) {
	events := []models.CalendarEvent{
		{Title: "Team Offsite", Date: "2025-08-01"},
	}

	schema := slots.Schema{
		RelativeReference: &slots.RelativeReference{
			EventTitle: "team offsite",
			Offset:     "two days after",
		},
	}

	resolved, ok := Resolve(schema, events, time.UTC, testNow)
	require.True(t, ok)
	require.Equal(t, "2025-08-03", resolved.Format(ISODate))
}

func TestResolveNothingToResolve(t *testing.T) {
	_, ok := Resolve(slots.Schema{}, nil, time.UTC, testNow)
	require.False(t, ok)
}

func TestNormalizeDate(t *testing.T) {
	schema := slots.Schema{Date: "Friday"}
	NormalizeDate(&schema, time.UTC, testNow)
	require.Equal(t, "2025-07-11", schema.Date)

	// Already normalized dates are stable across turns.
	NormalizeDate(&schema, time.UTC, testNow)
	require.Equal(t, "2025-07-11", schema.Date)

	// Unresolvable expressions stay verbatim.
	schema = slots.Schema{Date: "sometime nice"}
	NormalizeDate(&schema, time.UTC, testNow)
	require.Equal(t, "sometime nice", schema.Date)
}

func TestCombineDateTime(t *testing.T) {
	day := time.Date(2025, 7, 12, 0, 0, 0, 0, time.UTC)

	require.Equal(t, 18, CombineDateTime(day, "6pm").Hour())
	require.Equal(t, 18, CombineDateTime(day, "6 p.m.").Hour())
	require.Equal(t, 6, CombineDateTime(day, "6am").Hour())
	require.Equal(t, 0, CombineDateTime(day, "12am").Hour())

	combined := CombineDateTime(day, "18:30")
	require.Equal(t, 18, combined.Hour())
	require.Equal(t, 30, combined.Minute())

	// Ranges collapse to their start.
	require.Equal(t, 17, CombineDateTime(day, "5 p.m. to 6 p.m.").Hour())

	// Named times come straight from the extractor's time rules.
	require.Equal(t, 12, CombineDateTime(day, "noon").Hour())
	require.Equal(t, 12, CombineDateTime(day, "Noon").Hour())
	require.Equal(t, 0, CombineDateTime(day, "midnight").Hour())

	// Garbage leaves midnight.
	require.Equal(t, 0, CombineDateTime(day, "whenever").Hour())
}

func TestParseDuration(t *testing.T) {
	require.Equal(t, 45*time.Minute, ParseDuration("45 minutes"))
	require.Equal(t, 45*time.Minute, ParseDuration("45 mins"))
	require.Equal(t, 2*time.Hour, ParseDuration("2 hours"))
	require.Equal(t, 30*time.Minute, ParseDuration(""))
	require.Equal(t, 30*time.Minute, ParseDuration("a while"))
}
