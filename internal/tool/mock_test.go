package tool_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/gmail/v1"

	"github.com/atlasbot/atlas-mcp/internal/search"
	"github.com/atlasbot/atlas-mcp/internal/store"
	"github.com/atlasbot/atlas-mcp/internal/tool"
)

type gmailSvcMock struct {
	ListMessagesFunc       func(ctx context.Context, Q, pageToken string, maxResults int64) (*gmail.ListMessagesResponse, error)
	GetMessageMetadataFunc func(ctx context.Context, msgID string) (*gmail.Message, error)
	GetMessageFunc         func(ctx context.Context, msgID string) (*gmail.Message, error)
	GetThreadFunc          func(ctx context.Context, threadID string) (*gmail.Thread, error)
	SendMessageFunc        func(ctx context.Context, msg *gmail.Message) (*gmail.Message, error)

	sent []*gmail.Message
}

func (m *gmailSvcMock) ListMessages(ctx context.Context, Q, pageToken string, maxResults int64) (*gmail.ListMessagesResponse, error) {
	return m.ListMessagesFunc(ctx, Q, pageToken, maxResults)
}

func (m *gmailSvcMock) GetMessageMetadata(ctx context.Context, msgID string) (*gmail.Message, error) {
	return m.GetMessageMetadataFunc(ctx, msgID)
}

func (m *gmailSvcMock) GetMessage(ctx context.Context, msgID string) (*gmail.Message, error) {
	return m.GetMessageFunc(ctx, msgID)
}

func (m *gmailSvcMock) GetThread(ctx context.Context, threadID string) (*gmail.Thread, error) {
	return m.GetThreadFunc(ctx, threadID)
}

func (m *gmailSvcMock) SendMessage(ctx context.Context, msg *gmail.Message) (*gmail.Message, error) {
	m.sent = append(m.sent, msg)
	return m.SendMessageFunc(ctx, msg)
}

type calendarSvcMock struct {
	ListEventsFunc  func(ctx context.Context, from, to time.Time, maxResults int64) (*calendar.Events, error)
	InsertEventFunc func(ctx context.Context, event *calendar.Event) (*calendar.Event, error)
	PatchEventFunc  func(ctx context.Context, eventID string, event *calendar.Event) (*calendar.Event, error)
	DeleteEventFunc func(ctx context.Context, eventID string) error
}

func (m *calendarSvcMock) ListEvents(ctx context.Context, from, to time.Time, maxResults int64) (*calendar.Events, error) {
	return m.ListEventsFunc(ctx, from, to, maxResults)
}

func (m *calendarSvcMock) InsertEvent(ctx context.Context, event *calendar.Event) (*calendar.Event, error) {
	return m.InsertEventFunc(ctx, event)
}

func (m *calendarSvcMock) PatchEvent(ctx context.Context, eventID string, event *calendar.Event) (*calendar.Event, error) {
	return m.PatchEventFunc(ctx, eventID, event)
}

func (m *calendarSvcMock) DeleteEvent(ctx context.Context, eventID string) error {
	return m.DeleteEventFunc(ctx, eventID)
}

type converterMock struct {
	HTML2TextFunc func(raw []byte) (string, error)
}

func (m *converterMock) HTML2Text(raw []byte) (string, error) {
	return m.HTML2TextFunc(raw)
}

type searcherMock struct {
	SearchFunc func(ctx context.Context, query string, num int) ([]search.Result, error)
}

func (m *searcherMock) Search(ctx context.Context, query string, num int) ([]search.Result, error) {
	return m.SearchFunc(ctx, query, num)
}

func testDeps() tool.Deps {
	prefs := store.NewMemStore(store.DefaultPreferences)
	memDoc := store.NewMemStore(store.DefaultMemory)
	return tool.Deps{
		Prefs:  prefs,
		Memory: store.NewMemory(memDoc),
		Now: func() time.Time {
			return time.Date(2025, 6, 2, 8, 0, 0, 0, time.Local) // a Monday
		},
	}
}

// newSession connects an in-memory client to a server built from deps and
// returns the client session.
func newSession(t *testing.T, deps tool.Deps) *mcp.ClientSession {
	t.Helper()

	server := tool.NewServer(deps)
	client := mcp.NewClient(&mcp.Implementation{Name: "test-client"}, nil)
	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	ctx := context.Background()

	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { serverSession.Close() })

	clientSession, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { clientSession.Close() })

	return clientSession
}

// callTool invokes a tool and unmarshals its JSON result into out. It fails
// the test when the result indicates an error.
func callTool(t *testing.T, session *mcp.ClientSession, name string, args, out any) {
	t.Helper()

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	require.False(t, result.IsError, "unexpected tool error: %s", result.Content[0].(*mcp.TextContent).Text)

	require.NoError(t, json.Unmarshal(
		[]byte(result.Content[0].(*mcp.TextContent).Text),
		out,
	))
}

// callToolErr invokes a tool expecting an error result and returns the
// error text.
func callToolErr(t *testing.T, session *mcp.ClientSession, name string, args any) string {
	t.Helper()

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	require.True(t, result.IsError, "expected tool error")
	require.NotEmpty(t, result.Content)
	return result.Content[0].(*mcp.TextContent).Text
}
