package reply

import (
	"context"
	"fmt"
	"strings"
	"time"

	"zetacore/app/config"
	"zetacore/app/models"
	"zetacore/app/service/slots"

	_ "embed"

	"github.com/samber/do"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

//go:embed reply_prompt_template.txt
var promptTemplate string

const maxReplyDuration = 30 * time.Second

// Service is the reply generation collaborator: it renders the merged
// session state into natural-language text. The engine treats it as a black
// box and returns its output verbatim.
type Service struct {
	cfg *config.Config
	llm llms.Model
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	llm, err := openai.New(
		openai.WithToken(cfg.OpenAI.Reply.Token),
		openai.WithBaseURL(cfg.OpenAI.Reply.BaseURL),
		openai.WithModel(cfg.OpenAI.Reply.Model),
		openai.WithCallback(logCallbackHandler{}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create reply llm: %w", err)
	}

	return &Service{
		cfg: cfg,
		llm: llm,
	}, nil
}

func (s *Service) Reply(ctx context.Context, utterance string, rctx models.ReplyContext) (string, error) {
	templateValues := map[string]any{
		"context":               formatContext(rctx),
		"events_summary":        formatEvents(rctx.Availability),
		"brain_guidance":        formatGuidance(rctx),
		"confirmation_guidance": formatConfirmationNudge(rctx.Schema),
		"query":                 utterance,
	}

	prompt := promptTemplate
	for key, value := range templateValues {
		prompt = strings.ReplaceAll(prompt, "{"+key+"}", fmt.Sprint(value))
	}

	ctx, cancel := context.WithTimeout(ctx, maxReplyDuration)
	defer cancel()

	result, err := llms.GenerateFromSinglePrompt(ctx, s.llm, prompt,
		llms.WithMaxTokens(1024),
		llms.WithTemperature(1),
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate reply: %w", err)
	}

	return strings.TrimSpace(result), nil
}

func formatContext(rctx models.ReplyContext) string {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("User's timezone: %s.\n", rctx.Timezone))

	schema := rctx.Schema
	var fields []string
	add := func(name, value string) {
		if value != "" {
			fields = append(fields, name+": "+value)
		}
	}
	add("Date", schema.Date)
	add("Time", schema.Time)
	add("Duration", schema.Duration)
	add("Event", schema.EventTitle)
	if len(fields) > 0 {
		builder.WriteString("Current meeting details:\n- " + strings.Join(fields, "\n- ") + "\n")
	}

	var extras []string
	addExtra := func(name, value string) {
		if value != "" {
			extras = append(extras, name+": "+value)
		}
	}
	addExtra("intent", string(schema.Intent))
	addExtra("time_constraint", schema.TimeConstraint)
	if schema.UserConfirmation {
		extras = append(extras, "user_confirmation: true")
	}
	if len(extras) > 0 {
		builder.WriteString("Additional details: " + strings.Join(extras, ", ") + "\n")
	}

	if ev := rctx.Confirmation; ev != nil {
		builder.WriteString(fmt.Sprintf(
			"\nMEETING SCHEDULED SUCCESSFULLY: %s on %s from %s to %s at %s.\n",
			ev.Title, ev.Date, ev.StartTime, ev.EndTime, orNA(ev.Location)))
	}

	return builder.String()
}

func formatEvents(availability *models.Availability) string {
	if availability == nil {
		return ""
	}
	if len(availability.Events) == 0 {
		return "You have no events scheduled for this day.\n"
	}

	var builder strings.Builder
	builder.WriteString("Your calendar for this day: ")
	for _, ev := range availability.Events {
		builder.WriteString(fmt.Sprintf("\n- %s from %s to %s", ev.Title, ev.StartTime, ev.EndTime))
	}
	builder.WriteString("\n")

	return builder.String()
}

func formatGuidance(rctx models.ReplyContext) string {
	brain := rctx.Schema.Brain

	var builder strings.Builder
	if brain.Interpretation != "" {
		builder.WriteString("\nYour 'brain' has interpreted the user's intent as: " + brain.Interpretation)
	}
	if len(brain.Clarifications) > 0 {
		builder.WriteString("\nYou still need clarification on: " + strings.Join(brain.Clarifications, ", "))
	}
	if len(brain.SuggestedQuestions) > 0 && rctx.Confirmation == nil {
		builder.WriteString("\nConsider asking these follow-up questions: " + strings.Join(brain.SuggestedQuestions, "; "))
	}

	return builder.String()
}

// formatConfirmationNudge tells the model to stop gathering details and ask
// for a go-ahead once every scheduling slot except confirmation is filled.
func formatConfirmationNudge(schema slots.Schema) string {
	ready := schema.SufficientDetail() && !schema.UserConfirmation
	if !ready {
		return ""
	}

	title := schema.EventTitle
	if title == "" {
		title = "meeting"
	}

	example := fmt.Sprintf("Great! I have all the details I need. Should I go ahead and schedule this %s for %s at %s",
		title, schema.Date, schema.Time)
	if schema.Duration != "" {
		example += " for " + schema.Duration
	}
	example += "?"

	return "\nIMPORTANT: You have all the necessary information to schedule this meeting. " +
		"STOP asking for more details and ASK FOR CONFIRMATION instead using ALL the information available. " +
		"Example: '" + example + "'"
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
