package models

import "zetacore/app/service/slots"

// ReplyContext carries the structured state the reply generator turns into
// user-facing text.
type ReplyContext struct {
	Timezone     string
	Schema       slots.Schema
	Availability *Availability
	// Confirmation is the freshly created event when a booking just
	// happened this turn.
	Confirmation *CalendarEvent
}
