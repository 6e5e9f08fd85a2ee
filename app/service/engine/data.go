package engine

import (
	"context"
	"time"

	"zetacore/app/models"
	"zetacore/app/service/slots"
)

type Action string

const (
	ActionSchedule         Action = "schedule_meeting"
	ActionShowAvailability Action = "show_availability"
	ActionClarify          Action = "clarify_or_continue"
)

// TurnResult is everything one turn produced: the chosen action, the
// accumulated schema, and the data the action's handler attached.
type TurnResult struct {
	SessionID           string                `json:"session_id"`
	UsedExistingSession bool                  `json:"used_existing_session"`
	Action              Action                `json:"action"`
	Schema              slots.Schema          `json:"schema"`
	ResolvedDate        string                `json:"resolved_date,omitempty"`
	Availability        *models.Availability  `json:"availability,omitempty"`
	Event               *models.CalendarEvent `json:"event,omitempty"`
	Response            string                `json:"response"`
}

// The engine talks to its collaborators through capability interfaces so
// tests can substitute deterministic implementations.

type Extractor interface {
	Extract(utterance string, events []models.CalendarEvent) slots.SlotSet
}

type Interpreter interface {
	Interpret(ctx context.Context, utterance string, schema slots.Schema) (slots.Annotations, error)
}

type Calendar interface {
	Events(ctx context.Context, from, to time.Time) ([]models.CalendarEvent, error)
	Schedule(ctx context.Context, schema slots.Schema) (*models.CalendarEvent, error)
}

type Replier interface {
	Reply(ctx context.Context, utterance string, rctx models.ReplyContext) (string, error)
}
