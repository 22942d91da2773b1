// Package reply resolves an ambiguous message-or-thread identifier to an
// original message and sends a threaded reply, degrading to an unthreaded
// new message when the threaded send fails.
package reply

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"google.golang.org/api/gmail/v1"
)

// Provider is the subset of the mail service the resolver depends on.
type Provider interface {
	GetMessage(ctx context.Context, msgID string) (*gmail.Message, error)
	GetThread(ctx context.Context, threadID string) (*gmail.Thread, error)
	SendMessage(ctx context.Context, msg *gmail.Message) (*gmail.Message, error)
}

// Status is the terminal state of a reply attempt.
type Status string

const (
	StatusSent            Status = "sent"
	StatusSentViaFallback Status = "sent_via_fallback"
	StatusNotFound        Status = "not_found"
	StatusFailed          Status = "failed"
)

// Outcome reports how a reply attempt ended. Error strings are preserved
// verbatim so both failures stay diagnosable.
type Outcome struct {
	Status      Status `json:"status"`
	Identifier  string `json:"identifier"`
	Recipient   string `json:"recipient,omitempty"`
	Subject     string `json:"subject,omitempty"`
	ThreadID    string `json:"thread_id,omitempty"`
	PrimaryErr  string `json:"primary_error,omitempty"`
	FallbackErr string `json:"fallback_error,omitempty"`
}

// Message renders the outcome as user-facing text.
func (o Outcome) Message() string {
	switch o.Status {
	case StatusSent:
		return fmt.Sprintf("Successfully sent reply to %q with subject %q.", o.Recipient, o.Subject)
	case StatusSentViaFallback:
		return fmt.Sprintf("Primary reply failed but a new message was sent to %s. Error: %s", o.Recipient, o.PrimaryErr)
	case StatusNotFound:
		return fmt.Sprintf("Original message or thread %q not found or not accessible. "+
			"I can instead send a new email to the sender if you provide their address.", o.Identifier)
	default:
		return fmt.Sprintf("An error occurred while sending the reply: %s. Fallback also failed: %s", o.PrimaryErr, o.FallbackErr)
	}
}

// Resolver replies to messages or threads through a mail Provider.
type Resolver struct {
	svc Provider
}

func NewResolver(svc Provider) *Resolver {
	return &Resolver{svc: svc}
}

// target is the working state built while resolving the original message.
type target struct {
	recipient   string
	subject     string
	threadID    string
	inReplyToID string
}

// Reply resolves identifier as a message first and as a thread second, then
// sends body as a threaded reply to the original sender. A failed threaded
// send is retried once as a plain new message without thread linkage.
// Resolution and send failures are reported through the Outcome, never as an
// error.
func (r *Resolver) Reply(ctx context.Context, identifier, body string) Outcome {
	out := Outcome{Identifier: identifier}

	orig, threadID := r.resolveAsMessage(ctx, identifier)
	if orig == nil {
		orig, threadID = r.resolveAsThread(ctx, identifier)
	}
	if orig == nil {
		out.Status = StatusNotFound
		return out
	}

	tgt, ok := buildTarget(orig, threadID)
	if !ok {
		// No parseable sender means no recipient, so no send and no
		// fallback is possible.
		out.Status = StatusNotFound
		return out
	}
	out.Recipient = tgt.recipient
	out.Subject = tgt.subject
	out.ThreadID = tgt.threadID

	if _, err := r.svc.SendMessage(ctx, outgoing(tgt, body, true)); err != nil {
		out.PrimaryErr = err.Error()
		return r.fallbackSend(ctx, tgt, body, out)
	}

	out.Status = StatusSent
	return out
}

// fallbackSend issues one unthreaded new message to the already-resolved
// recipient after a failed primary send.
func (r *Resolver) fallbackSend(ctx context.Context, tgt target, body string, out Outcome) Outcome {
	if _, err := r.svc.SendMessage(ctx, outgoing(tgt, body, false)); err != nil {
		out.Status = StatusFailed
		out.FallbackErr = err.Error()
		return out
	}

	out.Status = StatusSentViaFallback
	out.ThreadID = ""
	return out
}

// resolveAsMessage treats identifier as a message id. A nil message means
// the lookup failed and resolution should continue as a thread.
func (r *Resolver) resolveAsMessage(ctx context.Context, identifier string) (*gmail.Message, string) {
	msg, err := r.svc.GetMessage(ctx, identifier)
	if err != nil || msg == nil {
		return nil, ""
	}
	return msg, msg.ThreadId
}

// resolveAsThread treats identifier as a thread id and fetches the thread's
// first message for headers.
func (r *Resolver) resolveAsThread(ctx context.Context, identifier string) (*gmail.Message, string) {
	thread, err := r.svc.GetThread(ctx, identifier)
	if err != nil || thread == nil || len(thread.Messages) == 0 {
		return nil, ""
	}

	msg, err := r.svc.GetMessage(ctx, thread.Messages[0].Id)
	if err != nil || msg == nil {
		return nil, ""
	}

	threadID := msg.ThreadId
	if threadID == "" {
		threadID = thread.Id
	}
	return msg, threadID
}

// buildTarget derives recipient, subject and threading headers from the
// original message. ok is false when no sender address can be extracted.
func buildTarget(orig *gmail.Message, threadID string) (target, bool) {
	from := headerValue(orig, "From")
	recipient := bareAddress(from)
	if recipient == "" {
		return target{}, false
	}

	return target{
		recipient:   recipient,
		subject:     replySubject(headerValue(orig, "Subject")),
		threadID:    threadID,
		inReplyToID: headerValue(orig, "Message-ID"),
	}, true
}

// replySubject prepends "Re: " unless the original subject already carries a
// reply prefix, compared case-insensitively.
func replySubject(subject string) string {
	if subject == "" {
		return "Re:"
	}
	if strings.HasPrefix(strings.ToLower(subject), "re:") {
		return subject
	}
	return "Re: " + subject
}

// outgoing builds the raw outbound message. threaded controls whether the
// thread id and In-Reply-To/References headers are attached.
func outgoing(tgt target, body string, threaded bool) *gmail.Message {
	var sb strings.Builder
	fmt.Fprintf(&sb, "To: %s\r\n", tgt.recipient)
	fmt.Fprintf(&sb, "Subject: %s\r\n", tgt.subject)
	if threaded && tgt.inReplyToID != "" {
		fmt.Fprintf(&sb, "In-Reply-To: %s\r\n", tgt.inReplyToID)
		fmt.Fprintf(&sb, "References: %s\r\n", tgt.inReplyToID)
	}
	sb.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(body)

	msg := &gmail.Message{
		Raw: base64.RawURLEncoding.EncodeToString([]byte(sb.String())),
	}
	if threaded && tgt.threadID != "" {
		msg.ThreadId = tgt.threadID
	}
	return msg
}

// headerValue returns the named header from the message payload, matching
// the name case-insensitively.
func headerValue(msg *gmail.Message, name string) string {
	if msg.Payload == nil {
		return ""
	}
	for _, h := range msg.Payload.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// bareAddress extracts the plain email address from a From header value,
// dropping any display name.
func bareAddress(from string) string {
	if idx := strings.Index(from, "<"); idx != -1 {
		if end := strings.Index(from[idx:], ">"); end != -1 {
			return strings.TrimSpace(from[idx+1 : idx+end])
		}
		return ""
	}
	return strings.TrimSpace(from)
}
