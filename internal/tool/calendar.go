package tool

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"google.golang.org/api/calendar/v3"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04"
)

type calendarSvc interface {
	ListEvents(ctx context.Context, from, to time.Time, maxResults int64) (*calendar.Events, error)
	InsertEvent(ctx context.Context, event *calendar.Event) (*calendar.Event, error)
	PatchEvent(ctx context.Context, eventID string, event *calendar.Event) (*calendar.Event, error)
	DeleteEvent(ctx context.Context, eventID string) error
}

// EventSummary is the calendar event shape returned by the tools.
type EventSummary struct {
	ID        string   `json:"id" jsonschema:"event ID"`
	Summary   string   `json:"summary" jsonschema:"event title"`
	Start     string   `json:"start" jsonschema:"start time (RFC3339 or date for all-day events)"`
	End       string   `json:"end" jsonschema:"end time"`
	Location  string   `json:"location,omitempty" jsonschema:"event location"`
	Attendees []string `json:"attendees,omitempty" jsonschema:"attendee addresses"`
}

// ListEventsRequest selects a date window.
type ListEventsRequest struct {
	StartDate string `json:"start_date,omitempty" jsonschema:"first day as YYYY-MM-DD, empty for today"`
	Days      int    `json:"days,omitempty" jsonschema:"number of days to cover, defaults to 7"`
}

type ListEventsResponse struct {
	Events []EventSummary `json:"events" jsonschema:"events in the window, ordered by start time"`
}

// NewCalendarTools creates the calendar toolset. now is injectable for tests.
func NewCalendarTools(svc calendarSvc, now func() time.Time) *CalendarTools {
	if now == nil {
		now = time.Now
	}
	return &CalendarTools{svc: svc, now: now}
}

type CalendarTools struct {
	svc calendarSvc
	now func() time.Time
}

// ListEvents shows events in the requested window.
func (t *CalendarTools) ListEvents(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListEventsRequest,
) (*mcp.CallToolResult, ListEventsResponse, error) {
	from, to, err := t.window(input.StartDate, input.Days)
	if err != nil {
		return nil, ListEventsResponse{}, err
	}

	events, err := t.svc.ListEvents(ctx, from, to, 100)
	if err != nil {
		return nil, ListEventsResponse{}, fmt.Errorf("svc.ListEvents failed: %w", err)
	}

	summaries := make([]EventSummary, 0, len(events.Items))
	for _, ev := range events.Items {
		summaries = append(summaries, summarizeEvent(ev))
	}

	return nil, ListEventsResponse{Events: summaries}, nil
}

// CreateEventRequest describes a new event. Times use "YYYY-MM-DD HH:MM" in
// the server's local timezone.
type CreateEventRequest struct {
	Summary     string   `json:"summary" jsonschema:"event title"`
	StartTime   string   `json:"start_time" jsonschema:"start as YYYY-MM-DD HH:MM"`
	EndTime     string   `json:"end_time" jsonschema:"end as YYYY-MM-DD HH:MM"`
	Location    string   `json:"location,omitempty" jsonschema:"event location"`
	Description string   `json:"description,omitempty" jsonschema:"event description"`
	Attendees   []string `json:"attendees,omitempty" jsonschema:"attendee email addresses"`
}

type CreateEventResponse struct {
	Status string       `json:"status" jsonschema:"human-readable confirmation"`
	Event  EventSummary `json:"event" jsonschema:"the created event"`
}

// CreateEvent adds an event to the primary calendar.
func (t *CalendarTools) CreateEvent(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CreateEventRequest,
) (*mcp.CallToolResult, CreateEventResponse, error) {
	start, err := time.ParseInLocation(dateTimeLayout, input.StartTime, time.Local)
	if err != nil {
		return nil, CreateEventResponse{}, fmt.Errorf("invalid start_time %q, expected YYYY-MM-DD HH:MM: %w", input.StartTime, err)
	}
	end, err := time.ParseInLocation(dateTimeLayout, input.EndTime, time.Local)
	if err != nil {
		return nil, CreateEventResponse{}, fmt.Errorf("invalid end_time %q, expected YYYY-MM-DD HH:MM: %w", input.EndTime, err)
	}
	if !end.After(start) {
		return nil, CreateEventResponse{}, fmt.Errorf("end_time must be after start_time")
	}

	event := &calendar.Event{
		Summary:     input.Summary,
		Location:    input.Location,
		Description: input.Description,
		Start:       &calendar.EventDateTime{DateTime: start.Format(time.RFC3339)},
		End:         &calendar.EventDateTime{DateTime: end.Format(time.RFC3339)},
	}
	for _, addr := range input.Attendees {
		event.Attendees = append(event.Attendees, &calendar.EventAttendee{Email: addr})
	}

	created, err := t.svc.InsertEvent(ctx, event)
	if err != nil {
		return nil, CreateEventResponse{}, fmt.Errorf("svc.InsertEvent failed: %w", err)
	}

	return nil, CreateEventResponse{
		Status: fmt.Sprintf("Created event %q from %s to %s.", input.Summary, input.StartTime, input.EndTime),
		Event:  summarizeEvent(created),
	}, nil
}

// EditEventRequest patches an event; empty fields keep their current value.
type EditEventRequest struct {
	EventID   string `json:"event_id" jsonschema:"ID of the event to edit"`
	Summary   string `json:"summary,omitempty" jsonschema:"new title, empty to keep"`
	StartTime string `json:"start_time,omitempty" jsonschema:"new start as YYYY-MM-DD HH:MM, empty to keep"`
	EndTime   string `json:"end_time,omitempty" jsonschema:"new end as YYYY-MM-DD HH:MM, empty to keep"`
}

type EditEventResponse struct {
	Status string       `json:"status" jsonschema:"human-readable confirmation"`
	Event  EventSummary `json:"event" jsonschema:"the updated event"`
}

// EditEvent changes an event's title or reschedules it.
func (t *CalendarTools) EditEvent(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input EditEventRequest,
) (*mcp.CallToolResult, EditEventResponse, error) {
	if input.EventID == "" {
		return nil, EditEventResponse{}, fmt.Errorf("event_id is required")
	}

	patch := &calendar.Event{Summary: input.Summary}
	if input.StartTime != "" {
		start, err := time.ParseInLocation(dateTimeLayout, input.StartTime, time.Local)
		if err != nil {
			return nil, EditEventResponse{}, fmt.Errorf("invalid start_time %q: %w", input.StartTime, err)
		}
		patch.Start = &calendar.EventDateTime{DateTime: start.Format(time.RFC3339)}
	}
	if input.EndTime != "" {
		end, err := time.ParseInLocation(dateTimeLayout, input.EndTime, time.Local)
		if err != nil {
			return nil, EditEventResponse{}, fmt.Errorf("invalid end_time %q: %w", input.EndTime, err)
		}
		patch.End = &calendar.EventDateTime{DateTime: end.Format(time.RFC3339)}
	}

	updated, err := t.svc.PatchEvent(ctx, input.EventID, patch)
	if err != nil {
		return nil, EditEventResponse{}, fmt.Errorf("svc.PatchEvent failed: %w", err)
	}

	return nil, EditEventResponse{
		Status: fmt.Sprintf("Updated event %s.", input.EventID),
		Event:  summarizeEvent(updated),
	}, nil
}

// DeleteEventRequest removes an event, guarded by explicit confirmation.
type DeleteEventRequest struct {
	EventID string `json:"event_id" jsonschema:"ID of the event to delete"`
	Confirm bool   `json:"confirm" jsonschema:"must be true to actually delete"`
}

type DeleteEventResponse struct {
	Status string `json:"status" jsonschema:"human-readable confirmation"`
}

// DeleteEvent removes an event from the calendar.
func (t *CalendarTools) DeleteEvent(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DeleteEventRequest,
) (*mcp.CallToolResult, DeleteEventResponse, error) {
	if !input.Confirm {
		return nil, DeleteEventResponse{}, fmt.Errorf("deletion requires confirm=true")
	}

	if err := t.svc.DeleteEvent(ctx, input.EventID); err != nil {
		return nil, DeleteEventResponse{}, fmt.Errorf("svc.DeleteEvent failed: %w", err)
	}

	return nil, DeleteEventResponse{
		Status: fmt.Sprintf("Deleted event %s.", input.EventID),
	}, nil
}

func (t *CalendarTools) window(startDate string, days int) (time.Time, time.Time, error) {
	start := t.now()
	if startDate != "" {
		parsed, err := time.ParseInLocation(dateLayout, startDate, time.Local)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start_date %q, expected YYYY-MM-DD: %w", startDate, err)
		}
		start = parsed
	}
	if days <= 0 {
		days = 7
	}
	return start, start.AddDate(0, 0, days), nil
}

func summarizeEvent(ev *calendar.Event) EventSummary {
	summary := EventSummary{
		ID:       ev.Id,
		Summary:  ev.Summary,
		Location: ev.Location,
	}
	if ev.Start != nil {
		summary.Start = eventTime(ev.Start)
	}
	if ev.End != nil {
		summary.End = eventTime(ev.End)
	}
	for _, a := range ev.Attendees {
		summary.Attendees = append(summary.Attendees, a.Email)
	}
	return summary
}

func eventTime(edt *calendar.EventDateTime) string {
	if edt.DateTime != "" {
		return edt.DateTime
	}
	return edt.Date
}
