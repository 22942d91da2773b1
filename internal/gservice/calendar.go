package gservice

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/atlasbot/atlas-mcp/internal/auth"
)

// calendarID always addresses the user's primary calendar.
const calendarID = "primary"

func NewCalendar(cfg *oauth2.Config, tok *auth.Token) *GCalendar {
	return &GCalendar{
		cfg: cfg,
		tok: tok,
	}
}

type GCalendar struct {
	cfg *oauth2.Config
	tok *auth.Token
}

func (c *GCalendar) ListEvents(ctx context.Context, from, to time.Time, maxResults int64) (*calendar.Events, error) {
	svc, err := c.newSvc(ctx)
	if err != nil {
		return nil, fmt.Errorf("newSvc failed: %w", err)
	}

	call := svc.Events.List(calendarID).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(maxResults)

	events, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("events.List failed: %w", err)
	}

	return events, nil
}

func (c *GCalendar) InsertEvent(ctx context.Context, event *calendar.Event) (*calendar.Event, error) {
	svc, err := c.newSvc(ctx)
	if err != nil {
		return nil, fmt.Errorf("newSvc failed: %w", err)
	}

	created, err := svc.Events.Insert(calendarID, event).Do()
	if err != nil {
		return nil, fmt.Errorf("events.Insert failed: %w", err)
	}

	return created, nil
}

func (c *GCalendar) PatchEvent(ctx context.Context, eventID string, event *calendar.Event) (*calendar.Event, error) {
	svc, err := c.newSvc(ctx)
	if err != nil {
		return nil, fmt.Errorf("newSvc failed: %w", err)
	}

	updated, err := svc.Events.Patch(calendarID, eventID, event).Do()
	if err != nil {
		return nil, fmt.Errorf("events.Patch failed: %w", err)
	}

	return updated, nil
}

func (c *GCalendar) DeleteEvent(ctx context.Context, eventID string) error {
	svc, err := c.newSvc(ctx)
	if err != nil {
		return fmt.Errorf("newSvc failed: %w", err)
	}

	if err := svc.Events.Delete(calendarID, eventID).Do(); err != nil {
		return fmt.Errorf("events.Delete failed: %w", err)
	}

	return nil
}

func (c *GCalendar) newSvc(ctx context.Context) (*calendar.Service, error) {
	t, err := c.tok.OAuthToken()
	if err != nil {
		return nil, fmt.Errorf("tok.OAuthToken failed: %w", err)
	}

	clt := c.cfg.Client(ctx, t)

	svc, err := calendar.NewService(ctx, option.WithHTTPClient(clt))
	if err != nil {
		return nil, fmt.Errorf("calendar.NewService failed: %w", err)
	}

	return svc, nil
}
