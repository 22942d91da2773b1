package tool

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"google.golang.org/api/gmail/v1"

	"github.com/atlasbot/atlas-mcp/internal/store"
)

// SendEmailRequest describes a new outbound email.
type SendEmailRequest struct {
	To      string `json:"to" jsonschema:"recipient address or comma-separated list; 'myself' sends to the user_email preference"`
	Subject string `json:"subject" jsonschema:"subject line"`
	Body    string `json:"body" jsonschema:"message body"`
}

// SendEmailResponse confirms the send.
type SendEmailResponse struct {
	Status    string `json:"status" jsonschema:"human-readable confirmation"`
	To        string `json:"to" jsonschema:"resolved recipient"`
	MessageID string `json:"message_id,omitempty" jsonschema:"ID of the sent message"`
}

type sendMessageSvc interface {
	SendMessage(ctx context.Context, msg *gmail.Message) (*gmail.Message, error)
}

// NewSendEmail creates the compose tool. prefs resolves the 'myself'
// recipient and the signature.
func NewSendEmail(svc sendMessageSvc, prefs store.Store) *SendEmail {
	return &SendEmail{svc: svc, prefs: prefs}
}

type SendEmail struct {
	svc   sendMessageSvc
	prefs store.Store
}

// SendEmail sends a new message, appending the user's signature when the
// body does not already carry it.
func (t *SendEmail) SendEmail(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SendEmailRequest,
) (*mcp.CallToolResult, SendEmailResponse, error) {
	to := strings.TrimSpace(input.To)
	if strings.EqualFold(to, "myself") {
		var err error
		if to, err = t.selfAddress(); err != nil {
			return nil, SendEmailResponse{}, err
		}
	}
	if to == "" {
		return nil, SendEmailResponse{}, fmt.Errorf("recipient address is required")
	}

	body := input.Body
	if sig := t.signature(); sig != "" && !strings.Contains(body, sig) {
		body = body + "\n\n" + sig
	}

	sent, err := t.svc.SendMessage(ctx, rawMessage(to, input.Subject, body))
	if err != nil {
		return nil, SendEmailResponse{}, fmt.Errorf("svc.SendMessage failed: %w", err)
	}

	return nil, SendEmailResponse{
		Status:    fmt.Sprintf("Successfully sent email to %s with subject %q.", to, input.Subject),
		To:        to,
		MessageID: sent.Id,
	}, nil
}

func (t *SendEmail) selfAddress() (string, error) {
	v, ok, err := t.prefs.Get("user_email")
	if err != nil {
		return "", fmt.Errorf("prefs.Get failed: %w", err)
	}
	addr, _ := v.(string)
	if !ok || addr == "" {
		return "", fmt.Errorf("no email address set in preferences; use set_preference with key 'user_email' first")
	}
	return addr, nil
}

func (t *SendEmail) signature() string {
	v, _, err := t.prefs.Get("email_signature")
	if err != nil {
		return ""
	}
	sig, _ := v.(string)
	return sig
}

func rawMessage(to, subject, body string) *gmail.Message {
	var sb strings.Builder
	fmt.Fprintf(&sb, "To: %s\r\n", to)
	fmt.Fprintf(&sb, "Subject: %s\r\n", subject)
	sb.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(body)

	return &gmail.Message{
		Raw: base64.RawURLEncoding.EncodeToString([]byte(sb.String())),
	}
}
