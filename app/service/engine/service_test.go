package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"zetacore/app/config"
	"zetacore/app/models"
	"zetacore/app/service/extract"
	"zetacore/app/service/session"
	"zetacore/app/service/slots"

	"github.com/stretchr/testify/require"
)

// 2025-07-09 was a Wednesday.
var testNow = time.Date(2025, 7, 9, 10, 0, 0, 0, time.UTC)

type ruleExtractor struct{}

func (ruleExtractor) Extract(utterance string, events []models.CalendarEvent) slots.SlotSet {
	return extract.Extract(utterance, events)
}

type fakeInterpreter struct {
	ann slots.Annotations
	err error
}

func (f *fakeInterpreter) Interpret(context.Context, string, slots.Schema) (slots.Annotations, error) {
	if f.err != nil {
		return slots.Annotations{}, f.err
	}
	return f.ann, nil
}

type fakeCalendar struct {
	events      []models.CalendarEvent
	eventsErr   error
	scheduleErr error

	scheduled []slots.Schema
}

func (f *fakeCalendar) Events(context.Context, time.Time, time.Time) ([]models.CalendarEvent, error) {
	if f.eventsErr != nil {
		return nil, f.eventsErr
	}
	return f.events, nil
}

func (f *fakeCalendar) Schedule(_ context.Context, schema slots.Schema) (*models.CalendarEvent, error) {
	if f.scheduleErr != nil {
		return nil, f.scheduleErr
	}
	f.scheduled = append(f.scheduled, schema)
	return &models.CalendarEvent{
		Title:     schema.EventTitle,
		Date:      schema.Date,
		StartTime: "18:00",
		EndTime:   "18:45",
	}, nil
}

type fakeReplier struct {
	err      error
	contexts []models.ReplyContext
}

func (f *fakeReplier) Reply(_ context.Context, _ string, rctx models.ReplyContext) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.contexts = append(f.contexts, rctx)
	return "reply", nil
}

type fixture struct {
	service     *Service
	store       *session.Store
	interpreter *fakeInterpreter
	calendar    *fakeCalendar
	replier     *fakeReplier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store, err := session.New(nil)
	require.NoError(t, err)

	f := &fixture{
		store:       store,
		interpreter: &fakeInterpreter{},
		calendar:    &fakeCalendar{},
		replier:     &fakeReplier{},
	}

	f.service = &Service{
		cfg:         &config.Config{Timezone: "UTC"},
		store:       store,
		extractor:   ruleExtractor{},
		interpreter: f.interpreter,
		calendar:    f.calendar,
		replier:     f.replier,
		loc:         time.UTC,
		now:         func() time.Time { return testNow },
	}

	return f
}

func TestHandleTurnMintsSessionID(t *testing.T) {
	f := newFixture(t)

	result, err := f.service.HandleTurn(context.Background(), "", "hello there")
	require.NoError(t, err)
	require.NotEmpty(t, result.SessionID)
	require.False(t, result.UsedExistingSession)
	require.Equal(t, ActionClarify, result.Action)
}

func TestHandleTurnScheduleFlow(t *testing.T) {
	f := newFixture(t)

	result, err := f.service.HandleTurn(context.Background(), "s1",
		"Schedule a yoga class for 45 minutes tomorrow at 6pm")
	require.NoError(t, err)

	// All slots are filled but nothing is confirmed yet, so the day's
	// availability comes back instead of a booking.
	require.Equal(t, ActionShowAvailability, result.Action)
	require.Equal(t, "2025-07-10", result.ResolvedDate)
	require.Equal(t, slots.IntentSchedule, result.Schema.Intent)
	require.Equal(t, "yoga class", result.Schema.EventTitle)
	require.Equal(t, "45 minutes", result.Schema.Duration)
	require.Equal(t, "2025-07-10", result.Schema.Date)
	require.Equal(t, "6pm", result.Schema.Time)
	require.False(t, result.Schema.UserConfirmation)
	require.Empty(t, f.calendar.scheduled)

	result, err = f.service.HandleTurn(context.Background(), "s1", "yes")
	require.NoError(t, err)

	require.True(t, result.UsedExistingSession)
	require.Equal(t, ActionSchedule, result.Action)
	require.NotNil(t, result.Event)
	require.Equal(t, "yoga class", result.Event.Title)
	require.Len(t, f.calendar.scheduled, 1)
	require.Equal(t, "2025-07-10", f.calendar.scheduled[0].Date)

	// A booked session is gone; the id starts fresh.
	require.Equal(t, slots.Schema{}, f.store.Get("s1"))
}

func TestHandleTurnGradualSlotFilling(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.HandleTurn(context.Background(), "s1",
		"Schedule a piano class for tomorrow at 6pm")
	require.NoError(t, err)

	result, err := f.service.HandleTurn(context.Background(), "s1", "make it 45 minutes")
	require.NoError(t, err)

	require.Equal(t, "piano class", result.Schema.EventTitle)
	require.Equal(t, "45 minutes", result.Schema.Duration)
	require.Equal(t, "2025-07-10", result.Schema.Date)
	require.Equal(t, "6pm", result.Schema.Time)
}

func TestHandleTurnAnchoredAvailability(t *testing.T) {
	f := newFixture(t)
	f.calendar.events = []models.CalendarEvent{
		{Title: "Team Offsite", Date: "2025-08-01", StartTime: "09:00", EndTime: "17:00"},
	}

	result, err := f.service.HandleTurn(context.Background(), "s1",
		"Am I free two days after the team offsite?")
	require.NoError(t, err)

	require.Equal(t, ActionShowAvailability, result.Action)
	require.Equal(t, "2025-08-03", result.ResolvedDate)
	require.NotNil(t, result.Availability)
	require.Equal(t, "UTC", result.Availability.Timezone)
	require.Len(t, f.replier.contexts, 1)
	require.NotNil(t, f.replier.contexts[0].Availability)
}

func TestHandleTurnConfirmationGatesScheduling(t *testing.T) {
	f := newFixture(t)

	for i := 0; i < 3; i++ {
		result, err := f.service.HandleTurn(context.Background(), "s1",
			"Schedule a piano class 45 minutes long for tomorrow at 6pm")
		require.NoError(t, err)
		require.NotEqual(t, ActionSchedule, result.Action)
	}

	require.Empty(t, f.calendar.scheduled)
}

func TestHandleTurnInterpreterFailureDegrades(t *testing.T) {
	f := newFixture(t)
	f.interpreter.err = errors.New("model offline")

	result, err := f.service.HandleTurn(context.Background(), "s1",
		"Schedule a piano class 45 minutes long for tomorrow at 6pm")
	require.NoError(t, err)

	require.Equal(t, ActionShowAvailability, result.Action)
	require.Equal(t, "piano class", result.Schema.EventTitle)
	// Default commentary fills the side channel on interpreter failure.
	require.NotEmpty(t, result.Schema.Brain.Interpretation)
}

func TestHandleTurnAnnotationsFillGaps(t *testing.T) {
	f := newFixture(t)
	f.interpreter.ann = slots.Annotations{
		Slots:          slots.SlotSet{Duration: "1 hour"},
		TimeConstraint: "after 3 PM",
	}

	result, err := f.service.HandleTurn(context.Background(), "s1",
		"Find a time with the tutor tomorrow")
	require.NoError(t, err)

	require.Equal(t, "1 hour", result.Schema.Duration)
	require.Equal(t, "after 3 PM", result.Schema.TimeConstraint)
}

func TestHandleTurnScheduleFailureSurfaces(t *testing.T) {
	f := newFixture(t)
	f.calendar.scheduleErr = errors.New("calendar down")

	_, err := f.service.HandleTurn(context.Background(), "s1",
		"Yes, schedule a piano class 45 minutes long for tomorrow at 6pm")
	require.Error(t, err)

	action, ok := IsCollaboratorUnavailable(err)
	require.True(t, ok)
	require.Equal(t, ActionSchedule, action)

	// The schema survives so the user can retry the booking.
	require.Equal(t, "piano class", f.store.Get("s1").EventTitle)
}

func TestHandleTurnReplyFailureAfterBookingDegrades(t *testing.T) {
	f := newFixture(t)
	f.replier.err = errors.New("model offline")

	result, err := f.service.HandleTurn(context.Background(), "s1",
		"Yes, schedule a piano class 45 minutes long for tomorrow at 6pm")
	require.NoError(t, err)

	require.Equal(t, ActionSchedule, result.Action)
	require.Contains(t, result.Response, "piano class")
	require.Equal(t, slots.Schema{}, f.store.Get("s1"))
}

func TestHandleTurnClarifyReplyFailureSurfaces(t *testing.T) {
	f := newFixture(t)
	f.replier.err = errors.New("model offline")

	_, err := f.service.HandleTurn(context.Background(), "s1", "hello there")
	require.Error(t, err)

	action, ok := IsCollaboratorUnavailable(err)
	require.True(t, ok)
	require.Equal(t, ActionClarify, action)
}

func TestHandleTurnContextFetchFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	f.calendar.eventsErr = errors.New("calendar down")

	result, err := f.service.HandleTurn(context.Background(), "s1", "hello there")
	require.NoError(t, err)
	require.Equal(t, ActionClarify, result.Action)
}

func TestSessionIDs(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.HandleTurn(context.Background(), "s1", "hello there")
	require.NoError(t, err)
	_, err = f.service.HandleTurn(context.Background(), "s2", "hello there")
	require.NoError(t, err)

	require.ElementsMatch(t, []string{"s1", "s2"}, f.service.SessionIDs())
}
