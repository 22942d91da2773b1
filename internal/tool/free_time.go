package tool

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"google.golang.org/api/calendar/v3"

	"github.com/atlasbot/atlas-mcp/internal/store"
)

// FindFreeTimeRequest asks for open slots in a date range.
type FindFreeTimeRequest struct {
	StartDate string `json:"start_date,omitempty" jsonschema:"first day as YYYY-MM-DD, empty for today"`
	EndDate   string `json:"end_date,omitempty" jsonschema:"last day as YYYY-MM-DD inclusive, empty for start_date"`
	Duration  int    `json:"duration_minutes,omitempty" jsonschema:"minimum slot length in minutes, defaults to the preferred meeting duration"`
}

// FreeSlot is a single open interval inside work hours.
type FreeSlot struct {
	Start string `json:"start" jsonschema:"slot start, YYYY-MM-DD HH:MM local time"`
	End   string `json:"end" jsonschema:"slot end"`
}

type FindFreeTimeResponse struct {
	Slots []FreeSlot `json:"slots" jsonschema:"open slots ordered by start time"`
}

// NewFindFreeTime creates the find_free_time tool. It intersects the
// calendar with the user's work hours and weekday availability preferences.
func NewFindFreeTime(svc calendarSvc, prefs store.Store, now func() time.Time) *FindFreeTime {
	if now == nil {
		now = time.Now
	}
	return &FindFreeTime{svc: svc, prefs: prefs, now: now}
}

type FindFreeTime struct {
	svc   calendarSvc
	prefs store.Store
	now   func() time.Time
}

// Handle finds free slots inside work hours on available weekdays.
func (t *FindFreeTime) Handle(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FindFreeTimeRequest,
) (*mcp.CallToolResult, FindFreeTimeResponse, error) {
	firstDay, lastDay, err := t.dayRange(input.StartDate, input.EndDate)
	if err != nil {
		return nil, FindFreeTimeResponse{}, err
	}

	minDuration, err := t.minDuration(input.Duration)
	if err != nil {
		return nil, FindFreeTimeResponse{}, err
	}

	workStart, workEnd, err := t.workHours()
	if err != nil {
		return nil, FindFreeTimeResponse{}, err
	}

	available, err := t.availability()
	if err != nil {
		return nil, FindFreeTimeResponse{}, err
	}

	events, err := t.svc.ListEvents(ctx, firstDay, lastDay.AddDate(0, 0, 1), 250)
	if err != nil {
		return nil, FindFreeTimeResponse{}, fmt.Errorf("svc.ListEvents failed: %w", err)
	}

	busy := busyIntervals(events.Items)

	var slots []FreeSlot
	for day := firstDay; !day.After(lastDay); day = day.AddDate(0, 0, 1) {
		if !available[strings.ToLower(day.Weekday().String())] {
			continue
		}
		dayStart := day.Add(workStart)
		dayEnd := day.Add(workEnd)
		slots = append(slots, dayFreeSlots(dayStart, dayEnd, busy, minDuration)...)
	}

	return nil, FindFreeTimeResponse{Slots: slots}, nil
}

func (t *FindFreeTime) dayRange(startDate, endDate string) (time.Time, time.Time, error) {
	now := t.now()
	first := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	if startDate != "" {
		parsed, err := time.ParseInLocation(dateLayout, startDate, time.Local)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start_date %q, expected YYYY-MM-DD: %w", startDate, err)
		}
		first = parsed
	}
	last := first
	if endDate != "" {
		parsed, err := time.ParseInLocation(dateLayout, endDate, time.Local)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end_date %q, expected YYYY-MM-DD: %w", endDate, err)
		}
		last = parsed
	}
	if last.Before(first) {
		return time.Time{}, time.Time{}, fmt.Errorf("end_date is before start_date")
	}
	return first, last, nil
}

func (t *FindFreeTime) minDuration(requested int) (time.Duration, error) {
	if requested > 0 {
		return time.Duration(requested) * time.Minute, nil
	}
	v, ok, err := t.prefs.Get("preferred_meeting_duration_minutes")
	if err != nil {
		return 0, fmt.Errorf("prefs.Get failed: %w", err)
	}
	minutes := 30.0
	if ok {
		if f, isNum := v.(float64); isNum && f > 0 {
			minutes = f
		}
	}
	return time.Duration(minutes) * time.Minute, nil
}

// workHours returns the work day start and end as offsets from midnight.
func (t *FindFreeTime) workHours() (time.Duration, time.Duration, error) {
	start, err := t.clockPref("work_hours.start", 9*time.Hour)
	if err != nil {
		return 0, 0, err
	}
	end, err := t.clockPref("work_hours.end", 17*time.Hour)
	if err != nil {
		return 0, 0, err
	}
	if end <= start {
		return 0, 0, fmt.Errorf("work_hours end %v is not after start %v", end, start)
	}
	return start, end, nil
}

func (t *FindFreeTime) clockPref(key string, fallback time.Duration) (time.Duration, error) {
	v, ok, err := t.prefs.Get(key)
	if err != nil {
		return 0, fmt.Errorf("prefs.Get %s failed: %w", key, err)
	}
	s, isStr := v.(string)
	if !ok || !isStr {
		return fallback, nil
	}
	parsed, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("preference %s has invalid time %q: %w", key, s, err)
	}
	return time.Duration(parsed.Hour())*time.Hour + time.Duration(parsed.Minute())*time.Minute, nil
}

func (t *FindFreeTime) availability() (map[string]bool, error) {
	v, ok, err := t.prefs.Get("availability")
	if err != nil {
		return nil, fmt.Errorf("prefs.Get availability failed: %w", err)
	}
	days := map[string]bool{}
	if !ok {
		return days, nil
	}
	m, isMap := v.(map[string]any)
	if !isMap {
		return days, nil
	}
	for day, val := range m {
		if b, isBool := val.(bool); isBool {
			days[strings.ToLower(day)] = b
		}
	}
	return days, nil
}

type interval struct {
	start time.Time
	end   time.Time
}

func busyIntervals(events []*calendar.Event) []interval {
	var busy []interval
	for _, ev := range events {
		if ev.Start == nil || ev.End == nil {
			continue
		}
		iv, ok := eventInterval(ev)
		if !ok {
			continue
		}
		busy = append(busy, iv)
	}
	sort.Slice(busy, func(i, j int) bool { return busy[i].start.Before(busy[j].start) })
	return busy
}

// eventInterval resolves an event to local times. All-day events block the
// whole calendar day.
func eventInterval(ev *calendar.Event) (interval, bool) {
	if ev.Start.DateTime != "" && ev.End.DateTime != "" {
		start, err := time.Parse(time.RFC3339, ev.Start.DateTime)
		if err != nil {
			return interval{}, false
		}
		end, err := time.Parse(time.RFC3339, ev.End.DateTime)
		if err != nil {
			return interval{}, false
		}
		return interval{start: start.Local(), end: end.Local()}, true
	}
	if ev.Start.Date != "" && ev.End.Date != "" {
		start, err := time.ParseInLocation(dateLayout, ev.Start.Date, time.Local)
		if err != nil {
			return interval{}, false
		}
		end, err := time.ParseInLocation(dateLayout, ev.End.Date, time.Local)
		if err != nil {
			return interval{}, false
		}
		return interval{start: start, end: end}, true
	}
	return interval{}, false
}

func dayFreeSlots(dayStart, dayEnd time.Time, busy []interval, minDuration time.Duration) []FreeSlot {
	var slots []FreeSlot
	cursor := dayStart
	for _, iv := range busy {
		if !iv.end.After(cursor) || !iv.start.Before(dayEnd) {
			continue
		}
		if iv.start.Sub(cursor) >= minDuration {
			slots = append(slots, FreeSlot{
				Start: cursor.Format(dateTimeLayout),
				End:   minTime(iv.start, dayEnd).Format(dateTimeLayout),
			})
		}
		if iv.end.After(cursor) {
			cursor = iv.end
		}
	}
	if cursor.Before(dayEnd) && dayEnd.Sub(cursor) >= minDuration {
		slots = append(slots, FreeSlot{
			Start: cursor.Format(dateTimeLayout),
			End:   dayEnd.Format(dateTimeLayout),
		})
	}
	return slots
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
