package gcal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"zetacore/app/config"
	"zetacore/app/models"
	"zetacore/app/service/dates"
	"zetacore/app/service/slots"

	"github.com/samber/do"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// Client reads and writes events on the user's Google Calendar. It is the
// only component that mutates the calendar; everything upstream treats
// events as read-only context.
type Client struct {
	cfg     *config.Config
	service *calendar.Service
	loc     *time.Location
}

func NewClient(di *do.Injector) (*Client, error) {
	ctx := do.MustInvoke[context.Context](di)
	cfg := do.MustInvoke[*config.Config](di)

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.Google.ClientID,
		ClientSecret: cfg.Google.ClientSecret,
		RedirectURL:  "urn:ietf:wg:oauth:2.0:oob",
		Scopes:       []string{calendar.CalendarScope},
		Endpoint:     google.Endpoint,
	}

	token, err := tokenFromFile(cfg.Google.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("could not load calendar token: %w", err)
	}

	service, err := calendar.NewService(ctx, option.WithHTTPClient(oauthCfg.Client(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	return &Client{
		cfg:     cfg,
		service: service,
		loc:     cfg.Location(),
	}, nil
}

func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tok := &oauth2.Token{}
	if err = json.NewDecoder(f).Decode(tok); err != nil {
		return nil, err
	}

	return tok, nil
}

// SaveToken stores an OAuth token for later runs.
func SaveToken(path string, token *oauth2.Token) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create token file: %w", err)
	}
	defer f.Close()

	return json.NewEncoder(f).Encode(token)
}

// Events fetches single events in [from, to), ordered by start time, and
// converts them to the internal model in the user's timezone.
func (c *Client) Events(ctx context.Context, from, to time.Time) ([]models.CalendarEvent, error) {
	result, err := c.service.Events.List(c.cfg.Google.CalendarID).
		ShowDeleted(false).
		SingleEvents(true).
		TimeMin(from.UTC().Format(time.RFC3339)).
		TimeMax(to.UTC().Format(time.RFC3339)).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve events: %w", err)
	}

	events := make([]models.CalendarEvent, 0, len(result.Items))
	for _, item := range result.Items {
		events = append(events, c.toInternalEvent(item))
	}

	slog.Debug("Fetched calendar events", "count", len(events))

	return events, nil
}

func (c *Client) toInternalEvent(item *calendar.Event) models.CalendarEvent {
	ev := models.CalendarEvent{
		Title:    item.Summary,
		Location: item.Location,
	}
	if ev.Title == "" {
		ev.Title = "No Title"
	}

	start := eventTime(item.Start)
	end := eventTime(item.End)

	if !start.IsZero() {
		local := start.In(c.loc)
		ev.Date = local.Format(dates.ISODate)
		ev.StartTime = local.Format("15:04")
	}
	if !end.IsZero() {
		ev.EndTime = end.In(c.loc).Format("15:04")
	}

	return ev
}

func eventTime(edt *calendar.EventDateTime) time.Time {
	if edt == nil {
		return time.Time{}
	}
	if edt.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, edt.DateTime); err == nil {
			return t
		}
	}
	if edt.Date != "" {
		if t, err := time.Parse(dates.ISODate, edt.Date); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Schedule creates the event described by a completed schema. The start
// comes from the schema's date and time, the end from its duration (30
// minutes when absent).
func (c *Client) Schedule(ctx context.Context, schema slots.Schema) (*models.CalendarEvent, error) {
	now := time.Now().In(c.loc)

	start, ok := dates.ParseFuture(schema.Date, c.loc, now)
	if !ok {
		start = now
	}
	start = dates.CombineDateTime(start, schema.Time)
	end := start.Add(dates.ParseDuration(schema.Duration))

	title := schema.EventTitle
	if title == "" && schema.RelativeReference != nil {
		title = schema.RelativeReference.EventTitle
	}
	if title == "" {
		title = "Meeting"
	}

	body := &calendar.Event{
		Summary:     title,
		Location:    schema.Location,
		Description: schema.Description,
		Start: &calendar.EventDateTime{
			DateTime: start.Format(time.RFC3339),
			TimeZone: c.cfg.Timezone,
		},
		End: &calendar.EventDateTime{
			DateTime: end.Format(time.RFC3339),
			TimeZone: c.cfg.Timezone,
		},
	}

	for _, email := range schema.Attendees {
		body.Attendees = append(body.Attendees, &calendar.EventAttendee{Email: email})
	}

	created, err := c.service.Events.Insert(c.cfg.Google.CalendarID, body).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to insert event: %w", err)
	}

	slog.Info("Scheduled calendar event",
		"title", title,
		"start", start.Format(time.RFC3339),
		"telegram", true)

	ev := c.toInternalEvent(created)

	return &ev, nil
}
