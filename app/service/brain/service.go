package brain

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"zetacore/app/config"
	"zetacore/app/service/slots"

	_ "embed"

	"github.com/samber/do"
	"github.com/sashabaranov/go-openai"
)

//go:embed brain_prompt_template.txt
var promptTemplate string

const maxReasonDuration = 30 * time.Second

// Service is the intent interpretation collaborator: a secondary LLM pass
// over the utterance that fills slots the heuristic extractor missed and
// produces clarification commentary. Its output is advisory; a failed or
// garbled call degrades to the default annotation set, never the turn.
type Service struct {
	cfg *config.Config

	client *openai.Client
	model  string
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	clientConfig := openai.DefaultConfig(cfg.OpenAI.Brain.Token)
	clientConfig.BaseURL = cfg.OpenAI.Brain.BaseURL
	clientConfig.HTTPClient = &http.Client{
		Timeout: 30 * time.Second,
	}

	return &Service{
		cfg:    cfg,
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.OpenAI.Brain.Model,
	}, nil
}

func (s *Service) Interpret(ctx context.Context, utterance string, schema slots.Schema) (slots.Annotations, error) {
	templateValues := map[string]any{
		"context": formatContext(s.cfg.Timezone, schema),
		"query":   utterance,
	}

	prompt := promptTemplate
	for key, value := range templateValues {
		prompt = strings.ReplaceAll(prompt, "{"+key+"}", fmt.Sprint(value))
	}

	ctx, cancel := context.WithTimeout(ctx, maxReasonDuration)
	defer cancel()

	aiResponse, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			MaxCompletionTokens: 1000,
			Temperature:         1,
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
		},
	)
	if err != nil {
		return slots.Annotations{}, fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(aiResponse.Choices) == 0 {
		return slots.Annotations{}, fmt.Errorf("no chat completion found")
	}

	parsed, ok := parseResponse(aiResponse.Choices[0].Message.Content)
	if !ok {
		slog.Warn("Interpretation response was not valid JSON, using defaults")
		return slots.DefaultAnnotations(), nil
	}

	return toAnnotations(parsed, schema), nil
}

// parseResponse decodes the model output, tolerating markdown code fences.
func parseResponse(raw string) (response, bool) {
	raw = strings.Trim(raw, "`")
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "json")
	raw = strings.TrimSpace(raw)

	var parsed response
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return response{}, false
	}

	return parsed, true
}

var (
	beforeConstraint = regexp.MustCompile(`(?i)before\s+(\d+(?::\d+)?\s*[AP]M)`)
	afterConstraint  = regexp.MustCompile(`(?i)after\s+(\d+(?::\d+)?\s*[AP]M)`)
	exactConstraint  = regexp.MustCompile(`(?i)at\s+(\d+(?::\d+)?\s*[AP]M)`)
)

// toAnnotations maps the model response onto the annotation slots. Time
// constraints are promoted into the time slot when they pin a usable time
// ("after 3 PM", "at 3 PM"); "before X" stays a constraint only.
func toAnnotations(parsed response, schema slots.Schema) slots.Annotations {
	ann := slots.Annotations{
		AllDetailsAvailable: parsed.AllDetailsAvailable,
		Commentary: slots.BrainAnnotations{
			Interpretation:     parsed.InterpretedIntent,
			Clarifications:     parsed.ClarificationNeeded,
			SuggestedQuestions: parsed.SuggestedQuestions,
		},
	}

	ann.Slots.Date = parsed.ExtractedDate
	ann.Slots.Duration = parsed.ExtractedDuration
	ann.Slots.EventTitle = parsed.ExtractedTitle
	ann.Slots.UserConfirmation = &parsed.UserConfirmation

	// The model sometimes drops a duration the session already knows.
	if ann.Slots.Duration == "" && schema.Duration != "" {
		ann.Slots.Duration = schema.Duration
	}

	if c := parsed.ExtractedTimeConstraint; c != "" {
		switch {
		case beforeConstraint.MatchString(c):
			ann.TimeConstraint = "before " + beforeConstraint.FindStringSubmatch(c)[1]
		case afterConstraint.MatchString(c):
			m := afterConstraint.FindStringSubmatch(c)[1]
			ann.TimeConstraint = "after " + m
			ann.Slots.Time = m
		case exactConstraint.MatchString(c):
			ann.Slots.Time = exactConstraint.FindStringSubmatch(c)[1]
		}
	}

	return ann
}

func formatContext(timezone string, schema slots.Schema) string {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("User's timezone: %s.\n", timezone))

	details := schemaDetails(schema)
	if len(details) > 0 {
		builder.WriteString("Current meeting details: " + strings.Join(details, ", ") + "\n")
	}

	return builder.String()
}

func schemaDetails(schema slots.Schema) []string {
	var details []string

	add := func(name, value string) {
		if value != "" {
			details = append(details, name+": "+value)
		}
	}

	add("intent", string(schema.Intent))
	add("date", schema.Date)
	add("time", schema.Time)
	add("duration", schema.Duration)
	add("event_title", schema.EventTitle)
	add("time_constraint", schema.TimeConstraint)
	if schema.UserConfirmation {
		details = append(details, "user_confirmation: true")
	}

	return details
}
