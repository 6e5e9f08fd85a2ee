package extract

import "regexp"

// The extractor is a cascade of named rules per slot, tried in a fixed
// priority order; the first rule that produces a value wins for its slot and
// the rest are skipped. Rules for different slots are independent.

var durationExpr = regexp.MustCompile(`(?i)\b(\d+)\s*(minutes?|mins?|min|hours?|hrs?|hr)\b`)

var quotedTitle = regexp.MustCompile(`'([^']+)'|"([^"]+)"`)

type titleRule struct {
	name string
	re   *regexp.Regexp
}

var titleRules = []titleRule{
	{"activity-keyword", regexp.MustCompile(`(?i)(\w+\s+(?:class|classes|lesson|lessons|meeting|session|appointment|conference|call))`)},
	{"keyword-activity", regexp.MustCompile(`(?i)\b((?:class|lesson|meeting|session|appointment|conference|call)\s+(?:with|about|on)\s+\w+(?:\s+\w+)?)`)},
	{"activity-for-minutes", regexp.MustCompile(`(?i)(\w+(?:\s+\w+)?)\s+for\s+\d+\s*(?:min|mins|minutes)\b`)},
	{"named-activity-keyword", regexp.MustCompile(`(?i)((?:piano|yoga|guitar|swimming|martial arts|art|dance|singing|coding|math|science|language|spanish|french|english|mandarin)\s+(?:class|classes|lesson|lessons|session|sessions|meeting|appointment))`)},
	{"schedule-a-x", regexp.MustCompile(`(?i)schedule\s+(?:a|an)\s+(\w+(?:\s+\w+)?)`)},
	{"bare-activity", regexp.MustCompile(`(?i)\b(piano|yoga|guitar|swimming|gym|tennis|basketball)\b`)},
}

// Last-resort title rule: the noun phrase immediately preceding a duration
// expression ("yoga class 45 minutes"). Verb-led captures like "make it"
// are rejected through the stoplist below.
var titleBeforeDuration = regexp.MustCompile(`(?i)(\w+(?:\s+\w+)?)\s+(?:for\s+)?\d+\s*(?:min|mins|minutes|hours?|hrs?|hr)\b`)

var titleStopwords = map[string]bool{
	"make": true, "it": true, "set": true, "do": true, "be": true,
	"change": true, "about": true, "around": true, "for": true,
	"schedule": true, "book": true, "the": true, "a": true, "an": true,
	"that": true, "this": true, "to": true, "is": true, "last": true,
	"lasts": true, "takes": true, "only": true, "just": true,
}

type dateRule struct {
	name string
	re   *regexp.Regexp
}

// Stand-in for a date named-entity tagger: a fixed vocabulary of date-like
// expressions. Captured text is kept verbatim, resolution happens later.
var dateRules = []dateRule{
	{"iso", regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)},
	{"slash", regexp.MustCompile(`\b(\d{1,2}/\d{1,2}/\d{4})\b`)},
	{"relative-day", regexp.MustCompile(`(?i)\b(day after tomorrow|tomorrow|today|tonight)\b`)},
	{"next-period", regexp.MustCompile(`(?i)\b(next\s+(?:monday|tuesday|wednesday|thursday|friday|saturday|sunday|week|month))\b`)},
	{"weekday", regexp.MustCompile(`(?i)\b(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)},
	{"month-day", regexp.MustCompile(`(?i)\b((?:january|february|march|april|may|june|july|august|september|october|november|december)\s+\d{1,2}(?:,?\s+\d{4})?)\b`)},
	{"day-month", regexp.MustCompile(`(?i)\b(\d{1,2}\s+(?:january|february|march|april|may|june|july|august|september|october|november|december)(?:,?\s+\d{4})?)\b`)},
}

var timeRules = []dateRule{
	{"clock-meridiem", regexp.MustCompile(`(?i)\b(\d{1,2}(?::\d{2})?\s*(?:a\.?m\.?|p\.?m\.?))`)},
	{"clock-24h", regexp.MustCompile(`\b(\d{1,2}:\d{2})\b`)},
	{"named-time", regexp.MustCompile(`(?i)\b(noon|midnight)\b`)},
}

var offsetExpr = regexp.MustCompile(`(?i)(a day or two after|a day after|two days after|next day|the day after|\+\d+ days?)`)

// Anchor phrase following an offset expression: "two days after the team
// offsite" names the event the offset hangs off. Stand-in for an event
// named-entity tagger.
var anchorAfterOffset = regexp.MustCompile(`(?i)(?:a day or two after|a day after|two days after|the day after)\s+(?:the\s+|my\s+|our\s+)?([\w ]+?)(?:[.?!,]|$)`)

// Date vocabulary can follow an offset phrase without naming an event: "the
// day after tomorrow" is a date, not an anchor reference.
var dateVocabulary = regexp.MustCompile(`(?i)^(tomorrow|today|tonight|monday|tuesday|wednesday|thursday|friday|saturday|sunday|next\s+\w+)$`)

// Word boundaries matter here: "ok" must not fire inside "book".
var confirmationExpr = regexp.MustCompile(`(?i)\b(yes|confirm|schedule it|book it|that works|sounds good|go ahead|please do|sure|ok|okay|that's right|correct|exactly)\b`)

var scheduleWords = []string{
	"schedule", "find a time", "book", "set up", "arrange", "fix", "move",
	"reschedule", "change", "shift", "update", "postpone",
}

var availabilityWords = []string{"free", "busy", "available", "availability"}
