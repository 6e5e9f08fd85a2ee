package extract

import (
	"testing"

	"zetacore/app/service/slots"

	"github.com/stretchr/testify/require"
)

func TestExtractFullRequest(t *testing.T) {
	out := Extract("Schedule a piano class 45 minutes long for tomorrow at 6pm", nil)

	require.Equal(t, slots.IntentSchedule, out.Intent)
	require.Equal(t, "piano class", out.EventTitle)
	require.Equal(t, "45 minutes", out.Duration)
	require.Equal(t, "tomorrow", out.Date)
	require.Equal(t, "6pm", out.Time)
	require.NotNil(t, out.UserConfirmation)
	require.False(t, *out.UserConfirmation)
}

func TestExtractQuotedTitleWinsOverRules(t *testing.T) {
	out := Extract(`Schedule "Quarterly Review" meeting tomorrow`, nil)
	require.Equal(t, "Quarterly Review", out.EventTitle)

	out = Extract("Set up a 'sync with legal' on Friday", nil)
	require.Equal(t, "sync with legal", out.EventTitle)
}

func TestExtractTimeSkipsDurationDigits(t *testing.T) {
	out := Extract("yoga class for 45 minutes at 7:30", nil)

	require.Equal(t, "45 minutes", out.Duration)
	require.Equal(t, "7:30", out.Time)

	out = Extract("Book the studio tomorrow at noon", nil)
	require.Equal(t, "noon", out.Time)
	require.Equal(t, "tomorrow", out.Date)
}

func TestExtractDateRulePriority(t *testing.T) {
	// "day after tomorrow" must not be shadowed by plain "tomorrow".
	out := Extract("Book something the day after tomorrow", nil)
	require.Equal(t, "day after tomorrow", out.Date)

	// "next friday" must not collapse to the bare weekday.
	out = Extract("Am I free next friday?", nil)
	require.Equal(t, "next friday", out.Date)

	out = Extract("Am I free on friday?", nil)
	require.Equal(t, "friday", out.Date)
}

func TestExtractOffsetAndAnchor(t *testing.T) {
	out := Extract("Am I free two days after the team offsite?", nil)

	require.Equal(t, slots.IntentCheckAvailability, out.Intent)
	require.Equal(t, "two days after", out.Offset)
	require.Equal(t, "team offsite", out.EventTitle)
	require.NotNil(t, out.RelativeReference)
	require.Equal(t, "team offsite", out.RelativeReference.EventTitle)
	require.Equal(t, "two days after", out.RelativeReference.Offset)
}

func TestExtractDayAfterTomorrowIsNotAnAnchor(t *testing.T) {
	out := Extract("Am I free the day after tomorrow?", nil)

	// "the day after" matches the offset vocabulary, but the word that
	// follows is a date, not an event name.
	require.Equal(t, "day after tomorrow", out.Date)
	require.Empty(t, out.EventTitle)
	require.Nil(t, out.RelativeReference)
}

func TestExtractConfirmationVocabulary(t *testing.T) {
	for _, utterance := range []string{
		"Yes, that works",
		"sounds good, go ahead",
		"ok",
		"Sure, book it",
	} {
		out := Extract(utterance, nil)
		require.NotNil(t, out.UserConfirmation, utterance)
		require.True(t, *out.UserConfirmation, utterance)
	}

	// "ok" inside another word is not a confirmation.
	out := Extract("Can you book a meeting tomorrow?", nil)
	require.False(t, *out.UserConfirmation)
}

func TestExtractIntentClassification(t *testing.T) {
	out := Extract("When am I available on Friday?", nil)
	require.Equal(t, slots.IntentCheckAvailability, out.Intent)

	out = Extract("Please reschedule my dentist appointment", nil)
	require.Equal(t, slots.IntentSchedule, out.Intent)

	out = Extract("hello there", nil)
	require.Equal(t, slots.IntentUnknown, out.Intent)

	// Activity plus duration outweighs an availability word in the same
	// sentence.
	out = Extract("I'm free tomorrow, put a yoga class for 45 minutes", nil)
	require.Equal(t, slots.IntentSchedule, out.Intent)
}

func TestExtractSilentSlotsStayEmpty(t *testing.T) {
	out := Extract("make it 45 minutes", nil)

	require.Equal(t, "45 minutes", out.Duration)
	require.Empty(t, out.EventTitle)
	require.Empty(t, out.Date)
	require.Empty(t, out.Time)
	require.Nil(t, out.RelativeReference)
}
