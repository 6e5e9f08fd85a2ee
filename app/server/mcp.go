package server

import (
	"context"
	"fmt"
	"strings"
	"time"

	"zetacore/app/config"
	"zetacore/app/service/dates"
	"zetacore/app/service/engine"
	"zetacore/app/service/slots"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/samber/do"
	"github.com/samber/oops"
)

// MCPServer exposes the calendar over the Model Context Protocol so external
// agents can check availability and book events directly, bypassing the
// dialogue loop.
type MCPServer struct {
	cfg      *config.Config
	calendar engine.Calendar
	loc      *time.Location
}

func NewMCPServer(di *do.Injector) (*MCPServer, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return &MCPServer{
		cfg:      cfg,
		calendar: do.MustInvoke[engine.Calendar](di),
		loc:      cfg.Location(),
	}, nil
}

// Serve blocks on stdio until the client disconnects.
func (m *MCPServer) Serve() error {
	srv := server.NewMCPServer("zetacore", "1.0.0",
		server.WithToolCapabilities(false))

	srv.AddTool(mcp.NewTool("check_availability",
		mcp.WithDescription("List calendar events on a given day"),
		mcp.WithString("date",
			mcp.Required(),
			mcp.Description("Day to check, a calendar date or a natural expression like 'next friday'"),
		),
	), m.checkAvailability)

	srv.AddTool(mcp.NewTool("schedule_event",
		mcp.WithDescription("Create a calendar event"),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Event title"),
		),
		mcp.WithString("date",
			mcp.Required(),
			mcp.Description("Event date, a calendar date or a natural expression"),
		),
		mcp.WithString("time",
			mcp.Required(),
			mcp.Description("Start time, e.g. '3pm' or '15:00'"),
		),
		mcp.WithString("duration",
			mcp.Description("Event duration, e.g. '45 minutes', defaults to 30 minutes"),
		),
		mcp.WithString("location",
			mcp.Description("Event location"),
		),
		mcp.WithString("description",
			mcp.Description("Event description"),
		),
	), m.scheduleEvent)

	if err := server.ServeStdio(srv); err != nil {
		return oops.Errorf("mcp server failed: %w", err)
	}

	return nil
}

func (m *MCPServer) checkAvailability(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dateArg, err := req.RequireString("date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	day, ok := dates.ParseFuture(dateArg, m.loc, time.Now().In(m.loc))
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("could not understand date %q", dateArg)), nil
	}

	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, m.loc)
	events, err := m.calendar.Events(ctx, from, from.AddDate(0, 0, 1))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("calendar unavailable: %v", err)), nil
	}

	if len(events) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No events on %s, the whole day is free.", from.Format(dates.ISODate))), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Events on %s (%s):\n", from.Format(dates.ISODate), m.cfg.Timezone)
	for _, ev := range events {
		fmt.Fprintf(&sb, "- %s from %s to %s\n", ev.Title, ev.StartTime, ev.EndTime)
	}

	return mcp.NewToolResultText(sb.String()), nil
}

func (m *MCPServer) scheduleEvent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dateArg, err := req.RequireString("date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	timeArg, err := req.RequireString("time")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	event, err := m.calendar.Schedule(ctx, slots.Schema{
		EventTitle:  title,
		Date:        dateArg,
		Time:        timeArg,
		Duration:    req.GetString("duration", ""),
		Location:    req.GetString("location", ""),
		Description: req.GetString("description", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scheduling failed: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Scheduled %q on %s from %s to %s.",
		event.Title, event.Date, event.StartTime, event.EndTime)), nil
}
