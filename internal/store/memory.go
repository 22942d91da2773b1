package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// contextCap bounds the conversation log to the most recent entries.
const contextCap = 50

// Memory is a typed view over the memory document: preferences organized by
// category, user facts, important contacts and a capped conversation log.
type Memory struct {
	st  Store
	now func() time.Time
}

func NewMemory(st Store) *Memory {
	return &Memory{st: st, now: time.Now}
}

// Recalled is a stored preference with its storage timestamp.
type Recalled struct {
	Value    any    `json:"value"`
	StoredAt string `json:"stored_at,omitempty"`
}

// SearchHit is one match from a memory search.
type SearchHit struct {
	Category string `json:"category"`
	Key      string `json:"key"`
	Value    any    `json:"value"`
	StoredAt string `json:"stored_at,omitempty"`
}

// Contact is an important contact entry.
type Contact struct {
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	AddedAt string `json:"added_at,omitempty"`
}

// ContextEntry is one logged conversation exchange.
type ContextEntry struct {
	ID        string `json:"id"`
	Topic     string `json:"topic,omitempty"`
	Summary   string `json:"summary"`
	Timestamp string `json:"timestamp"`
}

// StorePreference stores value under category/key with a timestamp.
func (m *Memory) StorePreference(category, key string, value any) error {
	if category == "" {
		category = "general"
	}
	entry := map[string]any{
		"value":     value,
		"stored_at": m.now().Format(time.RFC3339),
		"category":  category,
	}
	if err := m.st.Set("preferences_memory."+category+"."+key, entry); err != nil {
		return fmt.Errorf("st.Set failed: %w", err)
	}
	return nil
}

// RecallPreference looks up a stored preference. found is false when the
// category or key is absent.
func (m *Memory) RecallPreference(category, key string) (Recalled, bool, error) {
	if category == "" {
		category = "general"
	}
	v, ok, err := m.st.Get("preferences_memory." + category + "." + key)
	if err != nil {
		return Recalled{}, false, fmt.Errorf("st.Get failed: %w", err)
	}
	if !ok {
		return Recalled{}, false, nil
	}

	entry, _ := v.(map[string]any)
	return Recalled{
		Value:    entry["value"],
		StoredAt: str(entry["stored_at"]),
	}, true, nil
}

// Search matches query case-insensitively against preference keys and
// values across all categories.
func (m *Memory) Search(query string) ([]SearchHit, error) {
	v, ok, err := m.st.Get("preferences_memory")
	if err != nil {
		return nil, fmt.Errorf("st.Get failed: %w", err)
	}
	categories, _ := v.(map[string]any)
	if !ok || categories == nil {
		return nil, nil
	}

	q := strings.ToLower(query)
	var hits []SearchHit
	for category, prefs := range categories {
		entries, _ := prefs.(map[string]any)
		for key, raw := range entries {
			entry, _ := raw.(map[string]any)
			value := entry["value"]
			if strings.Contains(strings.ToLower(key), q) ||
				strings.Contains(strings.ToLower(fmt.Sprint(value)), q) {
				hits = append(hits, SearchHit{
					Category: category,
					Key:      key,
					Value:    value,
					StoredAt: str(entry["stored_at"]),
				})
			}
		}
	}
	return hits, nil
}

// StoreFact remembers a fact about the user (role, team, manager).
func (m *Memory) StoreFact(key string, value any) error {
	entry := map[string]any{
		"value":     value,
		"stored_at": m.now().Format(time.RFC3339),
	}
	if err := m.st.Set("user_facts."+key, entry); err != nil {
		return fmt.Errorf("st.Set failed: %w", err)
	}
	return nil
}

// Facts returns all stored user facts keyed by name.
func (m *Memory) Facts() (map[string]Recalled, error) {
	v, _, err := m.st.Get("user_facts")
	if err != nil {
		return nil, fmt.Errorf("st.Get failed: %w", err)
	}
	raw, _ := v.(map[string]any)

	facts := make(map[string]Recalled, len(raw))
	for key, e := range raw {
		entry, _ := e.(map[string]any)
		facts[key] = Recalled{Value: entry["value"], StoredAt: str(entry["stored_at"])}
	}
	return facts, nil
}

// AddContact marks an address as an important contact. Re-adding an existing
// address updates its name.
func (m *Memory) AddContact(email, name string) error {
	contacts, err := m.Contacts()
	if err != nil {
		return err
	}

	updated := false
	for i := range contacts {
		if strings.EqualFold(contacts[i].Email, email) {
			contacts[i].Name = name
			updated = true
			break
		}
	}
	if !updated {
		contacts = append(contacts, Contact{
			Email:   email,
			Name:    name,
			AddedAt: m.now().Format(time.RFC3339),
		})
	}

	if err := m.st.Set("important_contacts", contactsDoc(contacts)); err != nil {
		return fmt.Errorf("st.Set failed: %w", err)
	}
	return nil
}

// Contacts lists the important contacts.
func (m *Memory) Contacts() ([]Contact, error) {
	v, _, err := m.st.Get("important_contacts")
	if err != nil {
		return nil, fmt.Errorf("st.Get failed: %w", err)
	}
	raw, _ := v.([]any)

	contacts := make([]Contact, 0, len(raw))
	for _, e := range raw {
		entry, _ := e.(map[string]any)
		contacts = append(contacts, Contact{
			Email:   str(entry["email"]),
			Name:    str(entry["name"]),
			AddedAt: str(entry["added_at"]),
		})
	}
	return contacts, nil
}

// LogConversation appends an exchange to the conversation log, dropping the
// oldest entries beyond the cap.
func (m *Memory) LogConversation(topic, summary string) error {
	entries, err := m.conversationLog()
	if err != nil {
		return err
	}

	entries = append(entries, ContextEntry{
		ID:        uuid.NewString(),
		Topic:     topic,
		Summary:   summary,
		Timestamp: m.now().Format(time.RFC3339),
	})
	if len(entries) > contextCap {
		entries = entries[len(entries)-contextCap:]
	}

	if err := m.st.Set("conversation_context", contextDoc(entries)); err != nil {
		return fmt.Errorf("st.Set failed: %w", err)
	}
	return nil
}

// RecallConversation returns up to limit entries, most recent first,
// optionally filtered by topic.
func (m *Memory) RecallConversation(topic string, limit int) ([]ContextEntry, error) {
	entries, err := m.conversationLog()
	if err != nil {
		return nil, err
	}

	if topic != "" {
		filtered := entries[:0]
		for _, e := range entries {
			if e.Topic == topic {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}

	if limit <= 0 {
		limit = 10
	}
	if len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}

	// Most recent first.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// Reset restores the memory document to its defaults.
func (m *Memory) Reset() error {
	if err := m.st.Reset(); err != nil {
		return fmt.Errorf("st.Reset failed: %w", err)
	}
	return nil
}

func (m *Memory) conversationLog() ([]ContextEntry, error) {
	v, _, err := m.st.Get("conversation_context")
	if err != nil {
		return nil, fmt.Errorf("st.Get failed: %w", err)
	}
	raw, _ := v.([]any)

	entries := make([]ContextEntry, 0, len(raw))
	for _, e := range raw {
		entry, _ := e.(map[string]any)
		entries = append(entries, ContextEntry{
			ID:        str(entry["id"]),
			Topic:     str(entry["topic"]),
			Summary:   str(entry["summary"]),
			Timestamp: str(entry["timestamp"]),
		})
	}
	return entries, nil
}

func contactsDoc(contacts []Contact) []any {
	doc := make([]any, 0, len(contacts))
	for _, c := range contacts {
		doc = append(doc, map[string]any{
			"email":    c.Email,
			"name":     c.Name,
			"added_at": c.AddedAt,
		})
	}
	return doc
}

func contextDoc(entries []ContextEntry) []any {
	doc := make([]any, 0, len(entries))
	for _, e := range entries {
		doc = append(doc, map[string]any{
			"id":        e.ID,
			"topic":     e.Topic,
			"summary":   e.Summary,
			"timestamp": e.Timestamp,
		})
	}
	return doc
}

func str(v any) string {
	s, _ := v.(string)
	return s
}
