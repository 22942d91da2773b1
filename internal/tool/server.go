package tool

import (
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/atlasbot/atlas-mcp/internal/reply"
	"github.com/atlasbot/atlas-mcp/internal/store"
)

type gmailSvc interface {
	searchMessagesSvc
	getMessageSvc
	sendMessageSvc
	reply.Provider
}

// Deps are the services the tools run over. Searcher may be a client with no
// credentials; web_search then reports how to configure it.
type Deps struct {
	Gmail     gmailSvc
	Calendar  calendarSvc
	Converter htmlConverter
	Prefs     store.Store
	Memory    *store.Memory
	Searcher  webSearcher
	Now       func() time.Time
}

// NewServer creates an MCP server exposing the assistant's email, calendar,
// preference, memory and search tools.
func NewServer(deps Deps) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "atlas-assistant", Version: "v1.0.0"}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_messages",
		Description: "Search Gmail messages using Gmail search syntax; defaults to meeting-related mail",
	}, NewSearchMessages(deps.Gmail).SearchMessages)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_message",
		Description: "Get the full content of one message, including body text and attachment listing",
	}, NewGetMessage(deps.Gmail, deps.Converter).GetMessage)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "parse_meeting_email",
		Description: "Extract meeting details (title, times, location, attendees) from an email with a confidence score",
	}, NewParseMeeting(deps.Gmail, deps.Converter).ParseMeeting)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "send_email",
		Description: "Send an email; 'myself' as recipient resolves to the configured user address",
	}, NewSendEmail(deps.Gmail, deps.Prefs).SendEmail)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "reply_email",
		Description: "Reply to a message or thread by ID, falling back to a fresh send when threading fails",
	}, NewReplyEmail(deps.Gmail).ReplyEmail)

	calendarTools := NewCalendarTools(deps.Calendar, deps.Now)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_events",
		Description: "List calendar events in a date window",
	}, calendarTools.ListEvents)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_event",
		Description: "Create a calendar event",
	}, calendarTools.CreateEvent)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "edit_event",
		Description: "Change a calendar event's title or times",
	}, calendarTools.EditEvent)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_event",
		Description: "Delete a calendar event; requires confirm=true",
	}, calendarTools.DeleteEvent)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_free_time",
		Description: "Find open slots inside work hours on available weekdays",
	}, NewFindFreeTime(deps.Calendar, deps.Prefs, deps.Now).Handle)

	prefTools := NewPreferenceTools(deps.Prefs)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "set_preference",
		Description: "Set a user preference; dotted keys address nested values",
	}, prefTools.SetPreference)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_preference",
		Description: "Read one user preference",
	}, prefTools.GetPreference)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_preferences",
		Description: "Show all user preferences",
	}, prefTools.ListPreferences)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "reset_preferences",
		Description: "Reset all preferences to defaults; requires confirm=true",
	}, prefTools.ResetPreferences)

	memTools := NewMemoryTools(deps.Memory)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "remember_preference",
		Description: "Store a learned preference in long-term memory",
	}, memTools.RememberPreference)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "recall_preference",
		Description: "Recall a stored preference from long-term memory",
	}, memTools.RecallPreference)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_memory",
		Description: "Search long-term memory keys and values",
	}, memTools.SearchMemory)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "store_user_fact",
		Description: "Store a fact about the user (role, team, manager)",
	}, memTools.StoreUserFact)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_important_contact",
		Description: "Mark an email address as an important contact",
	}, memTools.AddImportantContact)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_important_contacts",
		Description: "List important contacts",
	}, memTools.GetImportantContacts)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "log_conversation",
		Description: "Log a conversation summary for later recall",
	}, memTools.LogConversation)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "recall_conversation",
		Description: "Recall recent logged conversations, optionally by topic",
	}, memTools.RecallConversation)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "reset_memory",
		Description: "Erase all long-term memory; requires confirm=true",
	}, memTools.ResetMemory)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "web_search",
		Description: "Search the web via the Google Custom Search API",
	}, NewWebSearch(deps.Searcher).Handle)

	return server
}
