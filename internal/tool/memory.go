package tool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/atlasbot/atlas-mcp/internal/store"
)

// NewMemoryTools creates the long-term memory toolset.
func NewMemoryTools(mem *store.Memory) *MemoryTools {
	return &MemoryTools{mem: mem}
}

type MemoryTools struct {
	mem *store.Memory
}

// RememberPreferenceRequest stores a learned preference under a category.
type RememberPreferenceRequest struct {
	Category string `json:"category,omitempty" jsonschema:"grouping such as scheduling or email, defaults to general"`
	Key      string `json:"key" jsonschema:"preference name"`
	Value    any    `json:"value" jsonschema:"preference value"`
}

type RememberPreferenceResponse struct {
	Status string `json:"status" jsonschema:"human-readable confirmation"`
}

func (t *MemoryTools) RememberPreference(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input RememberPreferenceRequest,
) (*mcp.CallToolResult, RememberPreferenceResponse, error) {
	if input.Key == "" {
		return nil, RememberPreferenceResponse{}, fmt.Errorf("key is required")
	}
	if err := t.mem.StorePreference(input.Category, input.Key, input.Value); err != nil {
		return nil, RememberPreferenceResponse{}, fmt.Errorf("mem.StorePreference failed: %w", err)
	}
	return nil, RememberPreferenceResponse{
		Status: fmt.Sprintf("Remembered %q = %v.", input.Key, input.Value),
	}, nil
}

type RecallPreferenceRequest struct {
	Category string `json:"category,omitempty" jsonschema:"grouping, defaults to general"`
	Key      string `json:"key" jsonschema:"preference name"`
}

type RecallPreferenceResponse struct {
	Found    bool   `json:"found" jsonschema:"whether the preference exists"`
	Value    any    `json:"value,omitempty" jsonschema:"the stored value"`
	StoredAt string `json:"stored_at,omitempty" jsonschema:"when it was stored"`
}

func (t *MemoryTools) RecallPreference(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input RecallPreferenceRequest,
) (*mcp.CallToolResult, RecallPreferenceResponse, error) {
	if input.Key == "" {
		return nil, RecallPreferenceResponse{}, fmt.Errorf("key is required")
	}
	rec, found, err := t.mem.RecallPreference(input.Category, input.Key)
	if err != nil {
		return nil, RecallPreferenceResponse{}, fmt.Errorf("mem.RecallPreference failed: %w", err)
	}
	if !found {
		return nil, RecallPreferenceResponse{Found: false}, nil
	}
	return nil, RecallPreferenceResponse{Found: true, Value: rec.Value, StoredAt: rec.StoredAt}, nil
}

type SearchMemoryRequest struct {
	Query string `json:"query" jsonschema:"text matched against stored keys and values"`
}

type SearchMemoryResponse struct {
	Hits []store.SearchHit `json:"hits" jsonschema:"matching memory entries"`
}

func (t *MemoryTools) SearchMemory(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input SearchMemoryRequest,
) (*mcp.CallToolResult, SearchMemoryResponse, error) {
	if input.Query == "" {
		return nil, SearchMemoryResponse{}, fmt.Errorf("query is required")
	}
	hits, err := t.mem.Search(input.Query)
	if err != nil {
		return nil, SearchMemoryResponse{}, fmt.Errorf("mem.Search failed: %w", err)
	}
	return nil, SearchMemoryResponse{Hits: hits}, nil
}

type StoreUserFactRequest struct {
	Key   string `json:"key" jsonschema:"fact name, e.g. role or team"`
	Value any    `json:"value" jsonschema:"fact value"`
}

type StoreUserFactResponse struct {
	Status string `json:"status" jsonschema:"human-readable confirmation"`
}

func (t *MemoryTools) StoreUserFact(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input StoreUserFactRequest,
) (*mcp.CallToolResult, StoreUserFactResponse, error) {
	if input.Key == "" {
		return nil, StoreUserFactResponse{}, fmt.Errorf("key is required")
	}
	if err := t.mem.StoreFact(input.Key, input.Value); err != nil {
		return nil, StoreUserFactResponse{}, fmt.Errorf("mem.StoreFact failed: %w", err)
	}
	return nil, StoreUserFactResponse{
		Status: fmt.Sprintf("Stored fact %q.", input.Key),
	}, nil
}

type AddImportantContactRequest struct {
	Email string `json:"email" jsonschema:"contact email address"`
	Name  string `json:"name,omitempty" jsonschema:"contact display name"`
}

type AddImportantContactResponse struct {
	Status string `json:"status" jsonschema:"human-readable confirmation"`
}

func (t *MemoryTools) AddImportantContact(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input AddImportantContactRequest,
) (*mcp.CallToolResult, AddImportantContactResponse, error) {
	if input.Email == "" {
		return nil, AddImportantContactResponse{}, fmt.Errorf("email is required")
	}
	if err := t.mem.AddContact(input.Email, input.Name); err != nil {
		return nil, AddImportantContactResponse{}, fmt.Errorf("mem.AddContact failed: %w", err)
	}
	return nil, AddImportantContactResponse{
		Status: fmt.Sprintf("Added %s to important contacts.", input.Email),
	}, nil
}

type GetImportantContactsRequest struct{}

type GetImportantContactsResponse struct {
	Contacts []store.Contact `json:"contacts" jsonschema:"the important contacts"`
}

func (t *MemoryTools) GetImportantContacts(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ GetImportantContactsRequest,
) (*mcp.CallToolResult, GetImportantContactsResponse, error) {
	contacts, err := t.mem.Contacts()
	if err != nil {
		return nil, GetImportantContactsResponse{}, fmt.Errorf("mem.Contacts failed: %w", err)
	}
	return nil, GetImportantContactsResponse{Contacts: contacts}, nil
}

type LogConversationRequest struct {
	Topic   string `json:"topic,omitempty" jsonschema:"short label for the exchange"`
	Summary string `json:"summary" jsonschema:"what was discussed or decided"`
}

type LogConversationResponse struct {
	Status string `json:"status" jsonschema:"human-readable confirmation"`
}

func (t *MemoryTools) LogConversation(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input LogConversationRequest,
) (*mcp.CallToolResult, LogConversationResponse, error) {
	if input.Summary == "" {
		return nil, LogConversationResponse{}, fmt.Errorf("summary is required")
	}
	if err := t.mem.LogConversation(input.Topic, input.Summary); err != nil {
		return nil, LogConversationResponse{}, fmt.Errorf("mem.LogConversation failed: %w", err)
	}
	return nil, LogConversationResponse{Status: "Conversation logged."}, nil
}

type RecallConversationRequest struct {
	Topic string `json:"topic,omitempty" jsonschema:"only return entries with this topic"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum entries to return, defaults to 10"`
}

type RecallConversationResponse struct {
	Entries []store.ContextEntry `json:"entries" jsonschema:"logged exchanges, most recent first"`
}

func (t *MemoryTools) RecallConversation(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input RecallConversationRequest,
) (*mcp.CallToolResult, RecallConversationResponse, error) {
	entries, err := t.mem.RecallConversation(input.Topic, input.Limit)
	if err != nil {
		return nil, RecallConversationResponse{}, fmt.Errorf("mem.RecallConversation failed: %w", err)
	}
	return nil, RecallConversationResponse{Entries: entries}, nil
}

type ResetMemoryRequest struct {
	Confirm bool `json:"confirm" jsonschema:"must be true to erase all stored memory"`
}

type ResetMemoryResponse struct {
	Status string `json:"status" jsonschema:"human-readable confirmation"`
}

func (t *MemoryTools) ResetMemory(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ResetMemoryRequest,
) (*mcp.CallToolResult, ResetMemoryResponse, error) {
	if !input.Confirm {
		return nil, ResetMemoryResponse{}, fmt.Errorf("reset requires confirm=true")
	}
	if err := t.mem.Reset(); err != nil {
		return nil, ResetMemoryResponse{}, fmt.Errorf("mem.Reset failed: %w", err)
	}
	return nil, ResetMemoryResponse{Status: "Memory reset to defaults."}, nil
}
