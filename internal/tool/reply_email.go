package tool

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/atlasbot/atlas-mcp/internal/reply"
)

// ReplyEmailRequest identifies the conversation to reply to. The ID may be
// either a message ID or a thread ID; resolution tries both.
type ReplyEmailRequest struct {
	ID   string `json:"id" jsonschema:"message ID or thread ID to reply to"`
	Body string `json:"body" jsonschema:"content of the reply"`
}

// ReplyEmailResponse reports the terminal state of the reply attempt,
// including both error strings when the fallback path ran.
type ReplyEmailResponse struct {
	Status        string `json:"status" jsonschema:"terminal state: sent, sent_via_fallback, not_found or failed"`
	Message       string `json:"message" jsonschema:"human-readable outcome"`
	Recipient     string `json:"recipient,omitempty" jsonschema:"resolved recipient"`
	Subject       string `json:"subject,omitempty" jsonschema:"subject used for the reply"`
	ThreadID      string `json:"thread_id,omitempty" jsonschema:"thread the reply was attached to"`
	PrimaryError  string `json:"primary_error,omitempty" jsonschema:"error from the threaded send"`
	FallbackError string `json:"fallback_error,omitempty" jsonschema:"error from the fallback send"`
}

// NewReplyEmail creates the reply tool around a resolver.
func NewReplyEmail(svc reply.Provider) *ReplyEmail {
	return &ReplyEmail{resolver: reply.NewResolver(svc)}
}

type ReplyEmail struct {
	resolver *reply.Resolver
}

// ReplyEmail replies to a message or thread. Resolution and send failures
// are reported in the response, never as a tool error, so the caller always
// gets a descriptive result.
func (t *ReplyEmail) ReplyEmail(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ReplyEmailRequest,
) (*mcp.CallToolResult, ReplyEmailResponse, error) {
	out := t.resolver.Reply(ctx, input.ID, input.Body)

	return nil, ReplyEmailResponse{
		Status:        string(out.Status),
		Message:       out.Message(),
		Recipient:     out.Recipient,
		Subject:       out.Subject,
		ThreadID:      out.ThreadID,
		PrimaryError:  out.PrimaryErr,
		FallbackError: out.FallbackErr,
	}, nil
}
