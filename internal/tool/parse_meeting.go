package tool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/atlasbot/atlas-mcp/internal/meeting"
)

// ParseMeetingRequest supplies the email to analyze, either inline or by
// message ID.
type ParseMeetingRequest struct {
	MessageID string `json:"message_id,omitempty" jsonschema:"fetch this message and analyze it instead of the inline fields"`
	Subject   string `json:"subject,omitempty" jsonschema:"email subject line"`
	Body      string `json:"body,omitempty" jsonschema:"email body content"`
	From      string `json:"from,omitempty" jsonschema:"sender email address for context"`
}

// ParseMeetingResponse is the extracted meeting candidate.
type ParseMeetingResponse struct {
	Candidate meeting.Candidate `json:"candidate" jsonschema:"extracted meeting details with confidence"`
}

// NewParseMeeting creates the meeting extraction tool. svc and conv are used
// only for the message-ID path.
func NewParseMeeting(svc getMessageSvc, conv htmlConverter) *ParseMeeting {
	return &ParseMeeting{svc: svc, conv: conv}
}

type ParseMeeting struct {
	svc  getMessageSvc
	conv htmlConverter
}

// ParseMeeting extracts meeting details from an email. Extraction itself
// never fails; only fetching a referenced message can.
func (t *ParseMeeting) ParseMeeting(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ParseMeetingRequest,
) (*mcp.CallToolResult, ParseMeetingResponse, error) {
	subject, body, from := input.Subject, input.Body, input.From

	if input.MessageID != "" {
		msg, err := t.svc.GetMessage(ctx, input.MessageID)
		if err != nil {
			return nil, ParseMeetingResponse{}, fmt.Errorf("get message %s failed: %w", input.MessageID, err)
		}

		summary := extractMessageSummary(msg)
		subject = summary.Subject
		from = summary.From.Email

		if msg.Payload != nil {
			textBody, htmlBody := extractMessageBodies(msg.Payload)
			body = textBody
			if body == "" && htmlBody != "" {
				if body, err = t.conv.HTML2Text([]byte(htmlBody)); err != nil {
					return nil, ParseMeetingResponse{}, fmt.Errorf("conv.HTML2Text failed: %w", err)
				}
			}
		}
	}

	return nil, ParseMeetingResponse{
		Candidate: meeting.Extract(subject, body, from),
	}, nil
}
