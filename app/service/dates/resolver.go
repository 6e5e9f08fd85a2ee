package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"zetacore/app/models"
	"zetacore/app/service/slots"

	"github.com/elliotchance/pie/v2"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

const ISODate = "2006-01-02"

var parser = func() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}()

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

var absoluteLayouts = []string{
	ISODate,
	"2006/01/02",
	"01/02/2006",
	"January 2, 2006",
	"January 2 2006",
	"January 2",
	"2 January",
	"Jan 2, 2006",
	"Jan 2",
}

// ParseFuture parses a date expression with future-biased semantics. A bare
// weekday name always resolves to the NEXT occurrence of that weekday, at
// midnight: saying "Wednesday" on a Wednesday means next week, never today.
// Any other expression is returned exactly as parsed, past dates included.
func ParseFuture(expr string, loc *time.Location, now time.Time) (time.Time, bool) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return time.Time{}, false
	}

	if wd, ok := weekdays[strings.ToLower(expr)]; ok {
		daysAhead := (int(wd) - int(now.Weekday()) + 7) % 7
		if daysAhead == 0 {
			daysAhead = 7
		}
		next := now.AddDate(0, 0, daysAhead)
		return time.Date(next.Year(), next.Month(), next.Day(), 0, 0, 0, 0, loc), true
	}

	if res, err := parser.Parse(expr, now.In(loc)); err == nil && res != nil {
		return res.Time, true
	}

	for _, layout := range absoluteLayouts {
		parsed, err := time.ParseInLocation(layout, expr, loc)
		if err != nil {
			continue
		}
		if parsed.Year() == 0 {
			parsed = parsed.AddDate(now.Year(), 0, 0)
		}
		return parsed, true
	}

	return time.Time{}, false
}

var firstInt = regexp.MustCompile(`(\d+)`)

// OffsetDays extracts a day count from offset text like "two days after" or
// "+3 days". Without a digit, "two" means 2 and anything else means 1.
func OffsetDays(offset string) int {
	if m := firstInt.FindString(offset); m != "" {
		if n, err := strconv.Atoi(m); err == nil {
			return n
		}
	}
	if strings.Contains(strings.ToLower(offset), "two") {
		return 2
	}
	return 1
}

// ResolveAnchor resolves a relative reference by locating the first calendar
// event whose title contains the reference title, then adding the offset's
// day count. First match in list order wins; there is no ranking.
func ResolveAnchor(ref slots.RelativeReference, events []models.CalendarEvent, loc *time.Location) (time.Time, bool) {
	if ref.EventTitle == "" {
		return time.Time{}, false
	}

	needle := strings.ToLower(ref.EventTitle)
	idx := pie.FindFirstUsing(events, func(ev models.CalendarEvent) bool {
		return strings.Contains(strings.ToLower(ev.Title), needle)
	})
	if idx < 0 {
		return time.Time{}, false
	}

	anchor, err := time.ParseInLocation(ISODate, events[idx].Date, loc)
	if err != nil {
		return time.Time{}, false
	}

	return anchor.AddDate(0, 0, OffsetDays(ref.Offset)), true
}

// Resolve turns the schema's date information into a concrete date: a direct
// date expression first, an anchored reference second, nothing otherwise.
func Resolve(schema slots.Schema, events []models.CalendarEvent, loc *time.Location, now time.Time) (time.Time, bool) {
	if schema.Date != "" {
		if resolved, ok := ParseFuture(schema.Date, loc, now); ok {
			return resolved, true
		}
	}

	if schema.RelativeReference != nil {
		return ResolveAnchor(*schema.RelativeReference, events, loc)
	}

	return time.Time{}, false
}

// NormalizeDate rewrites the schema's date expression to its ISO calendar
// date once it resolves, so later turns merge against a stable value.
// Unresolvable expressions are left as-is and the turn degrades to
// clarification downstream.
func NormalizeDate(schema *slots.Schema, loc *time.Location, now time.Time) {
	if schema.Date == "" {
		return
	}
	if resolved, ok := ParseFuture(schema.Date, loc, now); ok {
		schema.Date = resolved.Format(ISODate)
	}
}
