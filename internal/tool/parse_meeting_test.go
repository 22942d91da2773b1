package tool_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/gmail/v1"

	"github.com/atlasbot/atlas-mcp/internal/tool"
)

func TestParseMeetingInline(t *testing.T) {
	deps := testDeps()
	session := newSession(t, deps)

	var resp tool.ParseMeetingResponse
	callTool(t, session, "parse_meeting_email", tool.ParseMeetingRequest{
		Subject: "Team Sync",
		Body:    "Let's have a meeting tomorrow at 3:00pm in Conference Room B.\nInvitees: alice@example.com, bob@example.com",
		From:    "carol@example.com",
	}, &resp)

	c := resp.Candidate
	assert.True(t, c.MeetingFound)
	assert.Equal(t, "Team Sync", c.Title)
	assert.Contains(t, c.Location, "Conference Room B")
	assert.Equal(t, []string{"carol@example.com", "alice@example.com", "bob@example.com"}, c.Attendees)
	assert.GreaterOrEqual(t, c.Confidence, 0.8)
}

func TestParseMeetingByMessageID(t *testing.T) {
	deps := testDeps()
	deps.Gmail = &gmailSvcMock{
		GetMessageFunc: func(_ context.Context, msgID string) (*gmail.Message, error) {
			if msgID != "invite-1" {
				return nil, fmt.Errorf("message not found: %s", msgID)
			}
			return &gmail.Message{
				Id: msgID,
				Payload: &gmail.MessagePart{
					Headers: []*gmail.MessagePartHeader{
						{Name: "From", Value: "Dana <dana@example.com>"},
						{Name: "Subject", Value: "Project review"},
					},
					MimeType: "text/plain",
					Body:     &gmail.MessagePartBody{Data: b64("Review meeting Monday 10:00 in Room 4.")},
				},
			}, nil
		},
	}
	session := newSession(t, deps)

	var resp tool.ParseMeetingResponse
	callTool(t, session, "parse_meeting_email", tool.ParseMeetingRequest{MessageID: "invite-1"}, &resp)

	c := resp.Candidate
	assert.True(t, c.MeetingFound)
	assert.Equal(t, "Project review", c.Title)
	assert.Contains(t, c.TimesFound, "monday 10:00")
	assert.Equal(t, []string{"dana@example.com"}, c.Attendees)

	errText := callToolErr(t, session, "parse_meeting_email", tool.ParseMeetingRequest{MessageID: "gone"})
	assert.Contains(t, errText, "message not found: gone")
}

func TestParseMeetingNoSignals(t *testing.T) {
	deps := testDeps()
	session := newSession(t, deps)

	var resp tool.ParseMeetingResponse
	callTool(t, session, "parse_meeting_email", tool.ParseMeetingRequest{
		Subject: "Lunch photos",
		Body:    "Here are the pictures from last week.",
	}, &resp)

	assert.False(t, resp.Candidate.MeetingFound)
	assert.Equal(t, 0.0, resp.Candidate.Confidence)
}
