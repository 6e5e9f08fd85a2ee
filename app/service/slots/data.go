package slots

type Intent string

const (
	IntentSchedule          Intent = "schedule_meeting"
	IntentCheckAvailability Intent = "check_availability"
	IntentUnknown           Intent = "unknown"
)

// PlaceholderTitle is the generic title some interpreters emit when the user
// has not named the event yet. It is treated as "no title" during merging.
const PlaceholderTitle = "to meet"

// RelativeReference anchors a date expression to a known calendar event,
// e.g. "two days after the piano recital".
type RelativeReference struct {
	EventTitle string `json:"event_title,omitempty"`
	Offset     string `json:"offset,omitempty"`
}

// SlotSet is the extraction result for a single utterance. Empty strings and
// nil pointers mean "nothing extracted"; they never erase session memory.
type SlotSet struct {
	Intent            Intent             `json:"intent,omitempty"`
	Date              string             `json:"date,omitempty"`
	Time              string             `json:"time,omitempty"`
	Duration          string             `json:"duration,omitempty"`
	EventTitle        string             `json:"event_title,omitempty"`
	Offset            string             `json:"offset,omitempty"`
	RelativeReference *RelativeReference `json:"relative_reference,omitempty"`
	UserConfirmation  *bool              `json:"user_confirmation,omitempty"`
}

// Schema is the accumulated slot state for one session.
type Schema struct {
	Intent            Intent             `json:"intent,omitempty"`
	Date              string             `json:"date,omitempty"`
	Time              string             `json:"time,omitempty"`
	Duration          string             `json:"duration,omitempty"`
	EventTitle        string             `json:"event_title,omitempty"`
	Offset            string             `json:"offset,omitempty"`
	TimeConstraint    string             `json:"time_constraint,omitempty"`
	RelativeReference *RelativeReference `json:"relative_reference,omitempty"`
	UserConfirmation  bool               `json:"user_confirmation,omitempty"`

	// Optional event details. The heuristic extractor never fills these;
	// they arrive from richer callers (the MCP tools) and ride along to
	// the calendar insert.
	Location    string   `json:"location,omitempty"`
	Description string   `json:"description,omitempty"`
	Attendees   []string `json:"attendees,omitempty"`

	// Brain is the interpretation side channel. It informs reply generation
	// only and never gates scheduling decisions.
	Brain BrainAnnotations `json:"brain,omitempty"`
}

// BrainAnnotations is the non-authoritative commentary from the intent
// interpretation collaborator, kept apart from the scheduling slots.
type BrainAnnotations struct {
	Interpretation     string   `json:"brain_interpretation,omitempty"`
	Clarifications     []string `json:"brain_clarifications_needed,omitempty"`
	SuggestedQuestions []string `json:"brain_suggested_questions,omitempty"`
}

// Annotations is the full output of the intent interpretation collaborator:
// slot candidates that may fill gaps the extractor left, plus the commentary
// side channel.
type Annotations struct {
	Slots               SlotSet
	TimeConstraint      string
	AllDetailsAvailable bool
	Commentary          BrainAnnotations
}

func (a Annotations) isZero() bool {
	return a.Commentary.Interpretation == "" &&
		len(a.Commentary.Clarifications) == 0 &&
		len(a.Commentary.SuggestedQuestions) == 0
}

// DefaultAnnotations is substituted whenever the interpretation collaborator
// fails or returns a non-conforming structure, so a turn never dies on it.
func DefaultAnnotations() Annotations {
	return Annotations{
		Commentary: BrainAnnotations{
			Interpretation: "schedule a meeting",
			Clarifications: []string{"date", "time", "duration", "title"},
			SuggestedQuestions: []string{
				"When would you like to schedule this meeting?",
				"What is the meeting about?",
			},
		},
	}
}

// ReadyToSchedule reports whether every slot the scheduler needs is present,
// confirmation included.
func (s Schema) ReadyToSchedule() bool {
	return s.Intent == IntentSchedule &&
		s.Date != "" &&
		s.Time != "" &&
		(s.Duration != "" || s.EventTitle != "") &&
		s.UserConfirmation
}

// SufficientDetail reports whether the slots alone imply scheduling intent:
// a concrete date and time plus either a duration or a named event.
func (s Schema) SufficientDetail() bool {
	return s.Date != "" && s.Time != "" && (s.Duration != "" || s.EventTitle != "")
}
