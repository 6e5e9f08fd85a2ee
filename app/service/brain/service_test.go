package brain

import (
	"testing"

	"zetacore/app/service/slots"

	"github.com/stretchr/testify/require"
)

func TestParseResponsePlainJSON(t *testing.T) {
	parsed, ok := parseResponse(`{"interpreted_intent":"schedule a piano class","extracted_duration":"45 minutes","user_confirmation":true}`)
	require.True(t, ok)
	require.Equal(t, "schedule a piano class", parsed.InterpretedIntent)
	require.Equal(t, "45 minutes", parsed.ExtractedDuration)
	require.True(t, parsed.UserConfirmation)
}

func TestParseResponseFencedJSON(t *testing.T) {
	parsed, ok := parseResponse("```json\n{\"interpreted_intent\":\"check availability\"}\n```")
	require.True(t, ok)
	require.Equal(t, "check availability", parsed.InterpretedIntent)
}

func TestParseResponseGarbage(t *testing.T) {
	_, ok := parseResponse("I think the user wants to schedule something.")
	require.False(t, ok)

	_, ok = parseResponse("")
	require.False(t, ok)
}

func TestToAnnotationsTimeConstraintPromotion(t *testing.T) {
	ann := toAnnotations(response{ExtractedTimeConstraint: "after 3 PM"}, slots.Schema{})
	require.Equal(t, "after 3 PM", ann.TimeConstraint)
	require.Equal(t, "3 PM", ann.Slots.Time)

	ann = toAnnotations(response{ExtractedTimeConstraint: "at 6:30 PM"}, slots.Schema{})
	require.Empty(t, ann.TimeConstraint)
	require.Equal(t, "6:30 PM", ann.Slots.Time)

	// "before" pins nothing usable, it stays a constraint only.
	ann = toAnnotations(response{ExtractedTimeConstraint: "before 5 PM"}, slots.Schema{})
	require.Equal(t, "before 5 PM", ann.TimeConstraint)
	require.Empty(t, ann.Slots.Time)
}

func TestToAnnotationsDurationCarryForward(t *testing.T) {
	ann := toAnnotations(response{}, slots.Schema{Duration: "45 minutes"})
	require.Equal(t, "45 minutes", ann.Slots.Duration)

	ann = toAnnotations(response{ExtractedDuration: "1 hour"}, slots.Schema{Duration: "45 minutes"})
	require.Equal(t, "1 hour", ann.Slots.Duration)
}

func TestToAnnotationsCommentary(t *testing.T) {
	ann := toAnnotations(response{
		InterpretedIntent:   "schedule a piano class",
		ClarificationNeeded: []string{"time"},
		SuggestedQuestions:  []string{"What time works for you?"},
		AllDetailsAvailable: false,
	}, slots.Schema{})

	require.Equal(t, "schedule a piano class", ann.Commentary.Interpretation)
	require.Equal(t, []string{"time"}, ann.Commentary.Clarifications)
	require.Len(t, ann.Commentary.SuggestedQuestions, 1)
	require.False(t, ann.AllDetailsAvailable)
}
