package store_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlasbot/atlas-mcp/internal/store"
)

func newMemory(t *testing.T) *store.Memory {
	t.Helper()
	return store.NewMemory(store.NewMemStore(store.DefaultMemory))
}

func TestMemoryPreferenceRoundTrip(t *testing.T) {
	m := newMemory(t)

	require.NoError(t, m.StorePreference("meetings", "duration", "30m"))

	got, found, err := m.RecallPreference("meetings", "duration")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "30m", got.Value)
	assert.NotEmpty(t, got.StoredAt)

	_, found, err = m.RecallPreference("meetings", "missing")
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = m.RecallPreference("missing-category", "duration")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryDefaultCategory(t *testing.T) {
	m := newMemory(t)

	require.NoError(t, m.StorePreference("", "style", "short emails"))

	got, found, err := m.RecallPreference("general", "style")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "short emails", got.Value)
}

func TestMemorySearch(t *testing.T) {
	m := newMemory(t)
	require.NoError(t, m.StorePreference("meetings", "duration", "30 minutes"))
	require.NoError(t, m.StorePreference("email", "tone", "Formal"))

	hits, err := m.Search("formal")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "tone", hits[0].Key)
	assert.Equal(t, "email", hits[0].Category)

	hits, err = m.Search("duration")
	require.NoError(t, err)
	require.Len(t, hits, 1, "keys are searched too")

	hits, err = m.Search("nothing-matches")
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestMemoryFacts(t *testing.T) {
	m := newMemory(t)
	require.NoError(t, m.StoreFact("role", "engineer"))

	facts, err := m.Facts()
	require.NoError(t, err)
	require.Contains(t, facts, "role")
	assert.Equal(t, "engineer", facts["role"].Value)
}

func TestMemoryContacts(t *testing.T) {
	m := newMemory(t)
	require.NoError(t, m.AddContact("boss@example.com", "Boss"))
	require.NoError(t, m.AddContact("peer@example.com", ""))
	require.NoError(t, m.AddContact("BOSS@example.com", "The Boss"))

	contacts, err := m.Contacts()
	require.NoError(t, err)
	require.Len(t, contacts, 2, "re-adding updates instead of duplicating")
	assert.Equal(t, "The Boss", contacts[0].Name)
}

func TestMemoryConversationLog(t *testing.T) {
	m := newMemory(t)
	require.NoError(t, m.LogConversation("budget", "discussed Q3 numbers"))
	require.NoError(t, m.LogConversation("standup", "moved to 9:30"))
	require.NoError(t, m.LogConversation("budget", "approved headcount"))

	t.Run("most recent first", func(t *testing.T) {
		entries, err := m.RecallConversation("", 10)
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, "approved headcount", entries[0].Summary)
		assert.Equal(t, "discussed Q3 numbers", entries[2].Summary)
	})

	t.Run("topic filter", func(t *testing.T) {
		entries, err := m.RecallConversation("budget", 10)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "approved headcount", entries[0].Summary)
	})

	t.Run("limit", func(t *testing.T) {
		entries, err := m.RecallConversation("", 1)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "approved headcount", entries[0].Summary)
	})
}

func TestMemoryConversationCap(t *testing.T) {
	m := newMemory(t)
	for i := range 60 {
		require.NoError(t, m.LogConversation("", fmt.Sprintf("entry %d", i)))
	}

	entries, err := m.RecallConversation("", 100)
	require.NoError(t, err)
	require.Len(t, entries, 50)
	assert.Equal(t, "entry 59", entries[0].Summary)
	assert.Equal(t, "entry 10", entries[49].Summary, "oldest entries are dropped")
}

func TestMemoryReset(t *testing.T) {
	m := newMemory(t)
	require.NoError(t, m.StoreFact("role", "engineer"))
	require.NoError(t, m.Reset())

	facts, err := m.Facts()
	require.NoError(t, err)
	assert.Empty(t, facts)
}
