// Package meeting extracts meeting details from email text using pattern
// matching heuristics. It detects times, locations, attendees and meeting
// vocabulary and scores the combination into a confidence value.
package meeting

import (
	"fmt"
	"regexp"
	"strings"
)

// Candidate is the structured result of scanning one email for a meeting.
// Extract never fails: a candidate with MeetingFound=false, Confidence=0 and
// a non-empty Err is returned instead of an error so callers can always
// format a response.
type Candidate struct {
	Title      string   `json:"title"`
	StartTime  string   `json:"start_time,omitempty"`
	EndTime    string   `json:"end_time,omitempty"`
	Attendees  []string `json:"attendees,omitempty"`
	Location   string   `json:"location,omitempty"`
	Confidence float64  `json:"confidence"`

	// MeetingFound is true when a time was matched, or a meeting keyword
	// and a location were both matched.
	MeetingFound bool `json:"meeting_found"`

	// TimesFound holds the raw matched time expressions. They are not
	// resolved into absolute timestamps; interpreting them is up to the
	// caller.
	TimesFound []string `json:"times_found,omitempty"`

	KeywordFound  bool   `json:"keyword_found"`
	LocationFound bool   `json:"location_found"`
	AttendeeCount int    `json:"attendee_count"`
	Err           string `json:"error,omitempty"`
}

var (
	// 2:30pm, 14:30, 9:00 a.m.
	clockPattern = regexp.MustCompile(`\d{1,2}:\d{2}\s*(?:am|pm|a\.m\.|p\.m\.)?`)
	// monday 10:00
	weekdayPattern = regexp.MustCompile(`(?:monday|tuesday|wednesday|thursday|friday|saturday|sunday)\s+\d{1,2}:\d{2}`)
	// tomorrow at 15:00, next tuesday 10:00
	relativePattern = regexp.MustCompile(`(?:tomorrow|today|next\s+\w+)\s+(?:at\s+)?\d{1,2}:\d{2}`)

	attendeePattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
)

// locationAnchors mark where a location phrase starts; the anchor occurring
// earliest in the text wins.
var locationAnchors = []string{"room", "conference", "office", "at ", "location:", "venue:"}

var meetingKeywords = []string{"meeting", "call", "sync", "standup", "review", "presentation", "conference", "webinar"}

const locationWindow = 50

// Extract scans subject and body for meeting details. fromAddr, when
// non-empty, is treated as a known participant and prepended to the attendee
// list. The result is a pure function of the three inputs.
func Extract(subject, body, fromAddr string) (c Candidate) {
	defer func() {
		if r := recover(); r != nil {
			c = Candidate{Err: fmt.Sprintf("extraction failed: %v", r)}
		}
	}()

	c = Candidate{Title: subject}
	if c.Title == "" {
		c.Title = "Meeting"
	}

	fullText := subject + "\n" + body
	folded := foldASCII(fullText)

	c.TimesFound = matchTimes(folded)
	timeFound := len(c.TimesFound) > 0

	c.Location = matchLocation(fullText, folded)
	c.LocationFound = c.Location != ""

	c.Attendees = matchAttendees(body, fromAddr)
	c.AttendeeCount = len(c.Attendees)
	attendeesFound := len(c.Attendees) > 1 || fromAddr != ""

	c.KeywordFound = containsMeetingKeyword(folded)

	c.MeetingFound = timeFound || (c.KeywordFound && c.LocationFound)
	c.Confidence = confidence(timeFound, c.KeywordFound, c.LocationFound, attendeesFound)

	return c
}

func confidence(time, keyword, location, attendees bool) float64 {
	var score float64
	if time {
		score += 0.3
	}
	if keyword {
		score += 0.3
	}
	if location {
		score += 0.2
	}
	if attendees {
		score += 0.2
	}
	if score > 0.95 {
		return 0.95
	}
	return score
}

func matchTimes(folded string) []string {
	var times []string
	for _, p := range []*regexp.Regexp{clockPattern, weekdayPattern, relativePattern} {
		times = append(times, p.FindAllString(folded, -1)...)
	}
	return times
}

// matchLocation returns up to locationWindow characters of original-cased
// text starting at the earliest anchor keyword, cut at the first line break.
// When two anchors start at the same offset the one listed first wins.
func matchLocation(original, folded string) string {
	best := -1
	for _, anchor := range locationAnchors {
		idx := strings.Index(folded, anchor)
		if idx < 0 {
			continue
		}
		if best < 0 || idx < best {
			best = idx
		}
	}
	if best < 0 {
		return ""
	}

	end := best + locationWindow
	if end > len(original) {
		end = len(original)
	}
	loc := original[best:end]
	if nl := strings.IndexAny(loc, "\r\n"); nl >= 0 {
		loc = loc[:nl]
	}
	return strings.TrimSpace(loc)
}

// matchAttendees extracts email addresses from the body, deduplicated in
// first-occurrence order, with fromAddr prepended when supplied and not
// already present.
func matchAttendees(body, fromAddr string) []string {
	found := attendeePattern.FindAllString(body, -1)

	seen := make(map[string]struct{}, len(found))
	attendees := make([]string, 0, len(found))
	for _, addr := range found {
		if _, ok := seen[addr]; ok {
			continue
		}
		seen[addr] = struct{}{}
		attendees = append(attendees, addr)
	}

	if fromAddr != "" {
		if _, ok := seen[fromAddr]; !ok {
			attendees = append([]string{fromAddr}, attendees...)
		}
	}
	return attendees
}

func containsMeetingKeyword(folded string) bool {
	for _, kw := range meetingKeywords {
		if strings.Contains(folded, kw) {
			return true
		}
	}
	return false
}

// foldASCII lowercases ASCII letters only, so byte offsets found in the
// folded text index the same characters in the original.
func foldASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
