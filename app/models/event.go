package models

// CalendarEvent is the read-side calendar model. Dates are ISO calendar dates
// (2006-01-02) and times are clock times (15:04) in the user's timezone.
type CalendarEvent struct {
	Title     string `json:"title"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Location  string `json:"location"`
}

// Availability is the day view returned for show_availability actions.
type Availability struct {
	Timezone string          `json:"timezone"`
	Events   []CalendarEvent `json:"events"`
}
