package brain

// response is the JSON structure the interpretation model is asked to emit.
// Anything non-conforming is replaced by the default annotation set.
type response struct {
	InterpretedIntent       string   `json:"interpreted_intent"`
	ExtractedDate           string   `json:"extracted_date"`
	ExtractedTimeConstraint string   `json:"extracted_time_constraint"`
	ExtractedDuration       string   `json:"extracted_duration"`
	ExtractedTitle          string   `json:"extracted_title"`
	UserConfirmation        bool     `json:"user_confirmation"`
	ClarificationNeeded     []string `json:"clarification_needed"`
	SuggestedQuestions      []string `json:"suggested_questions"`
	AllDetailsAvailable     bool     `json:"all_details_available"`
}
