package reply_test

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/gmail/v1"

	"github.com/atlasbot/atlas-mcp/internal/reply"
)

type providerMock struct {
	GetMessageFunc  func(ctx context.Context, msgID string) (*gmail.Message, error)
	GetThreadFunc   func(ctx context.Context, threadID string) (*gmail.Thread, error)
	SendMessageFunc func(ctx context.Context, msg *gmail.Message) (*gmail.Message, error)

	sent []*gmail.Message
}

func (m *providerMock) GetMessage(ctx context.Context, msgID string) (*gmail.Message, error) {
	return m.GetMessageFunc(ctx, msgID)
}

func (m *providerMock) GetThread(ctx context.Context, threadID string) (*gmail.Thread, error) {
	return m.GetThreadFunc(ctx, threadID)
}

func (m *providerMock) SendMessage(ctx context.Context, msg *gmail.Message) (*gmail.Message, error) {
	m.sent = append(m.sent, msg)
	if m.SendMessageFunc != nil {
		return m.SendMessageFunc(ctx, msg)
	}
	return &gmail.Message{Id: "sent-001"}, nil
}

func originalMessage(id, threadID, from, subject, messageID string) *gmail.Message {
	headers := []*gmail.MessagePartHeader{
		{Name: "From", Value: from},
		{Name: "Subject", Value: subject},
	}
	if messageID != "" {
		headers = append(headers, &gmail.MessagePartHeader{Name: "Message-ID", Value: messageID})
	}
	return &gmail.Message{
		Id:       id,
		ThreadId: threadID,
		Payload:  &gmail.MessagePart{Headers: headers},
	}
}

func decodeRaw(t *testing.T, raw string) string {
	t.Helper()
	decoded, err := base64.RawURLEncoding.DecodeString(raw)
	require.NoError(t, err)
	return string(decoded)
}

func TestReplyToMessageID(t *testing.T) {
	svc := &providerMock{
		GetMessageFunc: func(_ context.Context, msgID string) (*gmail.Message, error) {
			require.Equal(t, "m-001", msgID)
			return originalMessage("m-001", "t-001", "Alice <alice@example.com>", "Budget", "<orig@mail>"), nil
		},
		GetThreadFunc: func(_ context.Context, _ string) (*gmail.Thread, error) {
			t.Fatal("thread lookup must not run when the message resolves")
			return nil, nil
		},
	}

	out := reply.NewResolver(svc).Reply(context.Background(), "m-001", "Sounds good.")

	assert.Equal(t, reply.StatusSent, out.Status)
	assert.Equal(t, "alice@example.com", out.Recipient)
	assert.Equal(t, "Re: Budget", out.Subject)
	assert.Equal(t, "t-001", out.ThreadID)
	assert.Contains(t, out.Message(), "alice@example.com")
	assert.Contains(t, out.Message(), "Re: Budget")

	require.Len(t, svc.sent, 1)
	assert.Equal(t, "t-001", svc.sent[0].ThreadId)

	raw := decodeRaw(t, svc.sent[0].Raw)
	assert.Contains(t, raw, "To: alice@example.com\r\n")
	assert.Contains(t, raw, "Subject: Re: Budget\r\n")
	assert.Contains(t, raw, "In-Reply-To: <orig@mail>\r\n")
	assert.Contains(t, raw, "References: <orig@mail>\r\n")
	assert.True(t, strings.HasSuffix(raw, "\r\n\r\nSounds good."))
}

func TestReplyFallsBackToThreadID(t *testing.T) {
	svc := &providerMock{
		GetMessageFunc: func(_ context.Context, msgID string) (*gmail.Message, error) {
			switch msgID {
			case "first-msg":
				return originalMessage("first-msg", "", "bob@example.com", "RE: Budget", ""), nil
			default:
				return nil, fmt.Errorf("message not found: %s", msgID)
			}
		},
		GetThreadFunc: func(_ context.Context, threadID string) (*gmail.Thread, error) {
			require.Equal(t, "t-002", threadID)
			return &gmail.Thread{
				Id:       "t-002",
				Messages: []*gmail.Message{{Id: "first-msg"}, {Id: "second-msg"}},
			}, nil
		},
	}

	out := reply.NewResolver(svc).Reply(context.Background(), "t-002", "ok")

	assert.Equal(t, reply.StatusSent, out.Status)
	assert.Equal(t, "bob@example.com", out.Recipient)
	assert.Equal(t, "RE: Budget", out.Subject, "existing reply prefix is kept verbatim")
	assert.Equal(t, "t-002", out.ThreadID, "thread id comes from the thread when the message carries none")

	require.Len(t, svc.sent, 1)
	assert.Equal(t, "t-002", svc.sent[0].ThreadId)

	raw := decodeRaw(t, svc.sent[0].Raw)
	assert.NotContains(t, raw, "In-Reply-To:", "missing Message-ID header is tolerated")
}

func TestReplyNotFound(t *testing.T) {
	svc := &providerMock{
		GetMessageFunc: func(_ context.Context, msgID string) (*gmail.Message, error) {
			return nil, fmt.Errorf("message not found: %s", msgID)
		},
		GetThreadFunc: func(_ context.Context, threadID string) (*gmail.Thread, error) {
			return nil, fmt.Errorf("thread not found: %s", threadID)
		},
	}

	out := reply.NewResolver(svc).Reply(context.Background(), "nope-123", "hi")

	assert.Equal(t, reply.StatusNotFound, out.Status)
	assert.Empty(t, svc.sent, "no send is attempted without a resolved recipient")
	assert.Contains(t, out.Message(), "nope-123")
	assert.Contains(t, out.Message(), "provide their address")
}

func TestReplyEmptyThreadIsNotFound(t *testing.T) {
	svc := &providerMock{
		GetMessageFunc: func(_ context.Context, msgID string) (*gmail.Message, error) {
			return nil, fmt.Errorf("message not found: %s", msgID)
		},
		GetThreadFunc: func(_ context.Context, _ string) (*gmail.Thread, error) {
			return &gmail.Thread{Id: "t-empty"}, nil
		},
	}

	out := reply.NewResolver(svc).Reply(context.Background(), "t-empty", "hi")

	assert.Equal(t, reply.StatusNotFound, out.Status)
	assert.Empty(t, svc.sent)
}

func TestReplyFallbackSend(t *testing.T) {
	sendErr := fmt.Errorf("transport exploded")
	svc := &providerMock{
		GetMessageFunc: func(_ context.Context, _ string) (*gmail.Message, error) {
			return originalMessage("m-1", "t-1", "Carol <carol@example.com>", "Budget", "<mid@mail>"), nil
		},
	}
	svc.SendMessageFunc = func(_ context.Context, msg *gmail.Message) (*gmail.Message, error) {
		if len(svc.sent) == 1 {
			return nil, sendErr
		}
		return &gmail.Message{Id: "sent-fb"}, nil
	}

	out := reply.NewResolver(svc).Reply(context.Background(), "m-1", "hi")

	assert.Equal(t, reply.StatusSentViaFallback, out.Status)
	assert.Equal(t, "transport exploded", out.PrimaryErr)
	assert.Contains(t, out.Message(), "carol@example.com")
	assert.Contains(t, out.Message(), "transport exploded")

	require.Len(t, svc.sent, 2, "exactly one fallback send attempt")
	fallback := svc.sent[1]
	assert.Empty(t, fallback.ThreadId, "fallback send carries no thread linkage")

	raw := decodeRaw(t, fallback.Raw)
	assert.Contains(t, raw, "To: carol@example.com\r\n")
	assert.Contains(t, raw, "Subject: Re: Budget\r\n")
	assert.NotContains(t, raw, "In-Reply-To:")
	assert.NotContains(t, raw, "References:")
}

func TestReplyBothSendsFail(t *testing.T) {
	svc := &providerMock{
		GetMessageFunc: func(_ context.Context, _ string) (*gmail.Message, error) {
			return originalMessage("m-1", "t-1", "dave@example.com", "", ""), nil
		},
	}
	svc.SendMessageFunc = func(_ context.Context, _ *gmail.Message) (*gmail.Message, error) {
		return nil, fmt.Errorf("send failure %d", len(svc.sent))
	}

	out := reply.NewResolver(svc).Reply(context.Background(), "m-1", "hi")

	assert.Equal(t, reply.StatusFailed, out.Status)
	assert.Equal(t, "send failure 1", out.PrimaryErr)
	assert.Equal(t, "send failure 2", out.FallbackErr)
	assert.Equal(t, "Re:", out.Subject, "empty original subject degrades to a bare prefix")
	assert.Contains(t, out.Message(), "send failure 1")
	assert.Contains(t, out.Message(), "send failure 2")
}

func TestReplyNoSenderHeader(t *testing.T) {
	svc := &providerMock{
		GetMessageFunc: func(_ context.Context, _ string) (*gmail.Message, error) {
			return &gmail.Message{Id: "m-1", ThreadId: "t-1", Payload: &gmail.MessagePart{}}, nil
		},
	}

	out := reply.NewResolver(svc).Reply(context.Background(), "m-1", "hi")

	assert.Equal(t, reply.StatusNotFound, out.Status)
	assert.Empty(t, svc.sent)
}

func TestReplySubjectDerivation(t *testing.T) {
	cases := []struct {
		original string
		expected string
	}{
		{"Budget", "Re: Budget"},
		{"RE: Budget", "RE: Budget"},
		{"re: budget", "re: budget"},
		{"Re: Re: deep", "Re: Re: deep"},
		{"", "Re:"},
	}

	for _, tc := range cases {
		t.Run(tc.original, func(t *testing.T) {
			svc := &providerMock{
				GetMessageFunc: func(_ context.Context, _ string) (*gmail.Message, error) {
					return originalMessage("m", "t", "x@y.com", tc.original, ""), nil
				},
			}
			out := reply.NewResolver(svc).Reply(context.Background(), "m", "hi")
			assert.Equal(t, tc.expected, out.Subject)
		})
	}
}
