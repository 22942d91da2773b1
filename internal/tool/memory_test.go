package tool_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlasbot/atlas-mcp/internal/tool"
)

func TestMemoryTools(t *testing.T) {
	session := newSession(t, testDeps())

	t.Run("remember and recall preference", func(t *testing.T) {
		var remResp tool.RememberPreferenceResponse
		callTool(t, session, "remember_preference", tool.RememberPreferenceRequest{
			Category: "scheduling", Key: "preferred_day", Value: "tuesday",
		}, &remResp)

		var resp tool.RecallPreferenceResponse
		callTool(t, session, "recall_preference", tool.RecallPreferenceRequest{
			Category: "scheduling", Key: "preferred_day",
		}, &resp)
		assert.True(t, resp.Found)
		assert.Equal(t, "tuesday", resp.Value)
		assert.NotEmpty(t, resp.StoredAt)
	})

	t.Run("recall unknown preference", func(t *testing.T) {
		var resp tool.RecallPreferenceResponse
		callTool(t, session, "recall_preference", tool.RecallPreferenceRequest{Key: "unset"}, &resp)
		assert.False(t, resp.Found)
	})

	t.Run("search matches values", func(t *testing.T) {
		var resp tool.SearchMemoryResponse
		callTool(t, session, "search_memory", tool.SearchMemoryRequest{Query: "TUESDAY"}, &resp)
		require.Len(t, resp.Hits, 1)
		assert.Equal(t, "scheduling", resp.Hits[0].Category)
		assert.Equal(t, "preferred_day", resp.Hits[0].Key)
	})

	t.Run("contacts dedupe by address", func(t *testing.T) {
		var addResp tool.AddImportantContactResponse
		callTool(t, session, "add_important_contact", tool.AddImportantContactRequest{
			Email: "boss@example.com", Name: "Boss",
		}, &addResp)
		callTool(t, session, "add_important_contact", tool.AddImportantContactRequest{
			Email: "BOSS@example.com", Name: "The Boss",
		}, &addResp)

		var resp tool.GetImportantContactsResponse
		callTool(t, session, "get_important_contacts", tool.GetImportantContactsRequest{}, &resp)
		require.Len(t, resp.Contacts, 1)
		assert.Equal(t, "The Boss", resp.Contacts[0].Name)
	})

	t.Run("conversation log most recent first", func(t *testing.T) {
		var logResp tool.LogConversationResponse
		callTool(t, session, "log_conversation", tool.LogConversationRequest{
			Topic: "scheduling", Summary: "moved standup to 9:30",
		}, &logResp)
		callTool(t, session, "log_conversation", tool.LogConversationRequest{
			Topic: "email", Summary: "drafted reply to vendor",
		}, &logResp)

		var resp tool.RecallConversationResponse
		callTool(t, session, "recall_conversation", tool.RecallConversationRequest{}, &resp)
		require.Len(t, resp.Entries, 2)
		assert.Equal(t, "drafted reply to vendor", resp.Entries[0].Summary)

		callTool(t, session, "recall_conversation", tool.RecallConversationRequest{Topic: "scheduling"}, &resp)
		require.Len(t, resp.Entries, 1)
		assert.Equal(t, "moved standup to 9:30", resp.Entries[0].Summary)
	})

	t.Run("user facts live outside preference search", func(t *testing.T) {
		var factResp tool.StoreUserFactResponse
		callTool(t, session, "store_user_fact", tool.StoreUserFactRequest{
			Key: "role", Value: "engineering manager",
		}, &factResp)

		var searchResp tool.SearchMemoryResponse
		callTool(t, session, "search_memory", tool.SearchMemoryRequest{Query: "engineering manager"}, &searchResp)
		assert.Empty(t, searchResp.Hits)
	})

	t.Run("reset requires confirmation", func(t *testing.T) {
		errText := callToolErr(t, session, "reset_memory", tool.ResetMemoryRequest{})
		assert.Contains(t, errText, "confirm=true")

		var resetResp tool.ResetMemoryResponse
		callTool(t, session, "reset_memory", tool.ResetMemoryRequest{Confirm: true}, &resetResp)

		var resp tool.GetImportantContactsResponse
		callTool(t, session, "get_important_contacts", tool.GetImportantContactsRequest{}, &resp)
		assert.Empty(t, resp.Contacts)
	})
}
