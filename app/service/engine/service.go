package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"zetacore/app/config"
	"zetacore/app/models"
	"zetacore/app/service/dates"
	"zetacore/app/service/session"
	"zetacore/app/service/slots"

	"github.com/samber/do"
	"golang.org/x/sync/errgroup"
)

// contextWindowDays is how far ahead calendar events are fetched each turn
// for anchor lookups.
const contextWindowDays = 30

// Service resolves one conversation turn into one of three actions:
// schedule an event, show availability, or ask for clarification. All
// parsing and merging is deterministic; only the collaborator calls touch
// the network.
type Service struct {
	cfg         *config.Config
	store       *session.Store
	extractor   Extractor
	interpreter Interpreter
	calendar    Calendar
	replier     Replier

	loc *time.Location
	now func() time.Time
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return &Service{
		cfg:         cfg,
		store:       do.MustInvoke[*session.Store](di),
		extractor:   do.MustInvoke[Extractor](di),
		interpreter: do.MustInvoke[Interpreter](di),
		calendar:    do.MustInvoke[Calendar](di),
		replier:     do.MustInvoke[Replier](di),
		loc:         cfg.Location(),
		now:         time.Now,
	}, nil
}

// HandleTurn processes one utterance against one session. The session lock
// is held for the whole read-modify-write cycle, so concurrent turns for
// the same session serialize instead of losing updates.
func (s *Service) HandleTurn(ctx context.Context, sessionID, utterance string) (*TurnResult, error) {
	providedID := sessionID != ""
	if !providedID {
		sessionID = session.NewID()
	}

	sess, existed := s.store.Acquire(sessionID)
	defer sess.Release()

	now := s.now().In(s.loc)

	events, err := s.calendar.Events(ctx, now, now.AddDate(0, 0, contextWindowDays))
	if err != nil {
		// Context fetch is best effort; anchors just won't resolve.
		slog.Warn("Failed to fetch calendar context", "error", err)
		events = nil
	}

	prior := sess.Schema()

	merged := s.interpretAndMerge(ctx, utterance, prior, events, now)

	result := &TurnResult{
		SessionID:           sessionID,
		UsedExistingSession: providedID && existed,
		Schema:              merged,
	}

	if merged.ReadyToSchedule() {
		return s.schedule(ctx, sess, utterance, merged, result)
	}

	if resolved, ok := dates.Resolve(merged, events, s.loc, now); ok {
		return s.showAvailability(ctx, sess, utterance, merged, resolved, result)
	}

	return s.clarify(ctx, sess, utterance, merged, result)
}

// interpretAndMerge runs heuristic extraction and LLM interpretation in
// parallel, then folds both into the session schema. Interpretation
// failures degrade to the default annotation set and never fail the turn.
func (s *Service) interpretAndMerge(ctx context.Context, utterance string, prior slots.Schema, events []models.CalendarEvent, now time.Time) slots.Schema {
	var extracted slots.SlotSet
	ann := slots.DefaultAnnotations()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		extracted = s.extractor.Extract(utterance, events)
		return nil
	})
	g.Go(func() error {
		a, err := s.interpreter.Interpret(gctx, utterance, prior)
		if err != nil {
			slog.Warn("Intent interpretation failed, using defaults", "error", err)
			return nil
		}
		ann = a
		return nil
	})
	_ = g.Wait()

	merged := slots.Merge(prior, extracted, ann)
	dates.NormalizeDate(&merged, s.loc, now)

	return merged
}

func (s *Service) schedule(ctx context.Context, sess *session.Session, utterance string, merged slots.Schema, result *TurnResult) (*TurnResult, error) {
	if merged.EventTitle == "" {
		merged.EventTitle = "Meeting"
	}

	event, err := s.calendar.Schedule(ctx, merged)
	if err != nil {
		sess.Put(merged)
		return nil, collaboratorUnavailable(ActionSchedule, err)
	}

	// A successful booking ends the conversation.
	sess.Evict()

	result.Action = ActionSchedule
	result.Schema = merged
	result.Event = event
	result.Response = s.confirmationReply(ctx, utterance, merged, event)

	slog.Info("Scheduled meeting",
		"session", sess.ID(),
		"title", event.Title,
		"date", event.Date,
		"telegram", true)

	return result, nil
}

// confirmationReply asks the reply generator for a nice confirmation; the
// booking already happened, so a reply failure degrades to a terse built-in
// message rather than an error the user would read as "not booked".
func (s *Service) confirmationReply(ctx context.Context, utterance string, merged slots.Schema, event *models.CalendarEvent) string {
	response, err := s.replier.Reply(ctx, utterance, models.ReplyContext{
		Timezone:     s.cfg.Timezone,
		Schema:       merged,
		Confirmation: event,
	})
	if err != nil {
		slog.Error("Reply generation failed after booking", "error", err)
		return fmt.Sprintf("I've scheduled %s on %s from %s to %s.",
			event.Title, event.Date, event.StartTime, event.EndTime)
	}

	return response
}

func (s *Service) showAvailability(ctx context.Context, sess *session.Session, utterance string, merged slots.Schema, resolved time.Time, result *TurnResult) (*TurnResult, error) {
	sess.Put(merged)

	day := time.Date(resolved.Year(), resolved.Month(), resolved.Day(), 0, 0, 0, 0, s.loc)
	dayEvents, err := s.calendar.Events(ctx, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, collaboratorUnavailable(ActionShowAvailability, err)
	}

	availability := &models.Availability{
		Timezone: s.cfg.Timezone,
		Events:   dayEvents,
	}

	result.Action = ActionShowAvailability
	result.ResolvedDate = resolved.Format(dates.ISODate)
	result.Availability = availability

	response, err := s.replier.Reply(ctx, utterance, models.ReplyContext{
		Timezone:     s.cfg.Timezone,
		Schema:       merged,
		Availability: availability,
	})
	if err != nil {
		return nil, collaboratorUnavailable(ActionShowAvailability, err)
	}
	result.Response = response

	return result, nil
}

func (s *Service) clarify(ctx context.Context, sess *session.Session, utterance string, merged slots.Schema, result *TurnResult) (*TurnResult, error) {
	sess.Put(merged)

	result.Action = ActionClarify

	// A clarify turn's entire output is the generated reply; with no
	// fallback text to send, a reply failure surfaces like any other
	// collaborator outage.
	response, err := s.replier.Reply(ctx, utterance, models.ReplyContext{
		Timezone: s.cfg.Timezone,
		Schema:   merged,
	})
	if err != nil {
		return nil, collaboratorUnavailable(ActionClarify, err)
	}
	result.Response = response

	return result, nil
}

// SessionIDs lists the sessions currently accumulating state.
func (s *Service) SessionIDs() []string {
	return s.store.ListIDs()
}
