package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	rangeSplit  = regexp.MustCompile(`\s+to\s+|\s*-\s*`)
	clockExpr   = regexp.MustCompile(`(?i)(\d{1,2})(?::(\d{2}))?\s*(a\.?m\.?|p\.?m\.?)?`)
	durationMin = regexp.MustCompile(`(?i)(\d+)\s*(?:minutes?|mins?|min)`)
	durationHr  = regexp.MustCompile(`(?i)(\d+)\s*(?:hours?|hrs?|hr)`)
)

const defaultDuration = 30 * time.Minute

// CombineDateTime places a clock expression like "6pm", "6:30 p.m." or
// "18:00" onto the given calendar date. The named times "noon" and
// "midnight" map to 12:00 and 00:00. Time ranges ("5 p.m. to 6 p.m.")
// collapse to their first time. Unparseable expressions leave the date at
// midnight.
func CombineDateTime(date time.Time, timeExpr string) time.Time {
	timeExpr = strings.TrimSpace(timeExpr)
	if parts := rangeSplit.Split(timeExpr, 2); len(parts) > 1 {
		timeExpr = strings.TrimSpace(parts[0])
	}

	switch strings.ToLower(timeExpr) {
	case "noon":
		return time.Date(date.Year(), date.Month(), date.Day(), 12, 0, 0, 0, date.Location())
	case "midnight":
		return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	}

	m := clockExpr.FindStringSubmatch(timeExpr)
	if m == nil {
		return date
	}

	hour, _ := strconv.Atoi(m[1])
	minute := 0
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}

	meridiem := strings.ToLower(strings.ReplaceAll(m[3], ".", ""))
	if meridiem == "pm" && hour < 12 {
		hour += 12
	}
	if meridiem == "am" && hour == 12 {
		hour = 0
	}

	if hour > 23 || minute > 59 {
		return date
	}

	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, date.Location())
}

// ParseDuration turns duration text like "45 minutes" or "1 hour" into a
// concrete duration, defaulting to 30 minutes when nothing parses.
func ParseDuration(text string) time.Duration {
	if m := durationMin.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		return time.Duration(n) * time.Minute
	}
	if m := durationHr.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		return time.Duration(n) * time.Hour
	}
	return defaultDuration
}
