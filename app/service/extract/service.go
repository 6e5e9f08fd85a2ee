package extract

import (
	"strings"

	"zetacore/app/models"
	"zetacore/app/service/slots"

	"github.com/elliotchance/pie/v2"
	"github.com/samber/do"
)

// Service turns a raw utterance into a candidate slot set using the rule
// cascade in rules.go. It is a pure function of its inputs; the calendar
// events are accepted for interface parity with richer extractors that use
// them for context.
type Service struct{}

func New(_ *do.Injector) (*Service, error) {
	return &Service{}, nil
}

func (s *Service) Extract(utterance string, events []models.CalendarEvent) slots.SlotSet {
	return Extract(utterance, events)
}

func Extract(utterance string, _ []models.CalendarEvent) slots.SlotSet {
	var out slots.SlotSet

	lower := strings.ToLower(utterance)

	durationLoc := durationExpr.FindStringIndex(utterance)
	if durationLoc != nil {
		out.Duration = utterance[durationLoc[0]:durationLoc[1]]
	}

	out.EventTitle = extractTitle(utterance, durationLoc != nil)
	out.Date = firstRuleMatch(dateRules, utterance)
	out.Time = extractTime(utterance, durationLoc)

	if m := offsetExpr.FindString(utterance); m != "" {
		out.Offset = m
	}

	// The anchor of an offset expression names an event even when no title
	// rule fired ("two days after the team offsite").
	if out.Offset != "" && out.EventTitle == "" {
		if m := anchorAfterOffset.FindStringSubmatch(utterance); m != nil {
			if candidate := strings.TrimSpace(m[1]); !dateVocabulary.MatchString(candidate) {
				out.EventTitle = candidate
			}
		}
	}

	confirmed := confirmationExpr.MatchString(utterance)
	out.UserConfirmation = &confirmed

	out.Intent = classifyIntent(lower, out)

	if out.EventTitle != "" && out.Offset != "" {
		out.RelativeReference = &slots.RelativeReference{
			EventTitle: out.EventTitle,
			Offset:     out.Offset,
		}
	}

	return out
}

func extractTitle(utterance string, hasDuration bool) string {
	if m := quotedTitle.FindStringSubmatch(utterance); m != nil {
		if m[1] != "" {
			return m[1]
		}
		return m[2]
	}

	for _, rule := range titleRules {
		if m := rule.re.FindStringSubmatch(utterance); m != nil {
			return m[1]
		}
	}

	if hasDuration {
		if m := titleBeforeDuration.FindStringSubmatch(utterance); m != nil {
			if candidate := trimStopwords(m[1]); candidate != "" {
				return candidate
			}
		}
	}

	return ""
}

// trimStopwords drops leading and trailing filler words from a candidate
// title phrase, rejecting phrases that are nothing but filler.
func trimStopwords(phrase string) string {
	words := strings.Fields(phrase)
	for len(words) > 0 && titleStopwords[strings.ToLower(words[0])] {
		words = words[1:]
	}
	for len(words) > 0 && titleStopwords[strings.ToLower(words[len(words)-1])] {
		words = words[:len(words)-1]
	}
	return strings.Join(words, " ")
}

func firstRuleMatch(rules []dateRule, utterance string) string {
	for _, rule := range rules {
		if m := rule.re.FindStringSubmatch(utterance); m != nil {
			return m[1]
		}
	}
	return ""
}

// extractTime finds a time-like expression that is not part of the duration
// expression already claimed.
func extractTime(utterance string, durationLoc []int) string {
	for _, rule := range timeRules {
		for _, loc := range rule.re.FindAllStringSubmatchIndex(utterance, -1) {
			if durationLoc != nil && loc[0] >= durationLoc[0] && loc[1] <= durationLoc[1] {
				continue
			}
			return utterance[loc[2]:loc[3]]
		}
	}
	return ""
}

func classifyIntent(lower string, out slots.SlotSet) slots.Intent {
	// A specific activity with a duration is an unambiguous scheduling
	// signal, verb or no verb.
	if out.EventTitle != "" && out.Duration != "" {
		return slots.IntentSchedule
	}

	containsAny := func(words []string) bool {
		return pie.Any(words, func(w string) bool {
			return strings.Contains(lower, w)
		})
	}

	switch {
	case containsAny(scheduleWords):
		return slots.IntentSchedule
	case containsAny(availabilityWords):
		return slots.IntentCheckAvailability
	case (out.Date != "" || out.Time != "") && (out.Duration != "" || out.EventTitle != ""):
		return slots.IntentSchedule
	default:
		return slots.IntentUnknown
	}
}
