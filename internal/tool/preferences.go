package tool

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/atlasbot/atlas-mcp/internal/store"
)

// NewPreferenceTools creates the preference toolset over the given store.
func NewPreferenceTools(prefs store.Store) *PreferenceTools {
	return &PreferenceTools{prefs: prefs}
}

type PreferenceTools struct {
	prefs store.Store
}

// SetPreferenceRequest writes one preference. Dotted keys address nested
// objects, e.g. "work_hours.start".
type SetPreferenceRequest struct {
	Key   string `json:"key" jsonschema:"preference key, dotted for nested values"`
	Value any    `json:"value" jsonschema:"new value (string, number, boolean, list or object)"`
}

type SetPreferenceResponse struct {
	Status string `json:"status" jsonschema:"human-readable confirmation"`
}

func (t *PreferenceTools) SetPreference(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input SetPreferenceRequest,
) (*mcp.CallToolResult, SetPreferenceResponse, error) {
	if input.Key == "" {
		return nil, SetPreferenceResponse{}, fmt.Errorf("key is required")
	}
	if err := t.prefs.Set(input.Key, input.Value); err != nil {
		return nil, SetPreferenceResponse{}, fmt.Errorf("prefs.Set failed: %w", err)
	}
	return nil, SetPreferenceResponse{
		Status: fmt.Sprintf("Preference %q set to %v.", input.Key, input.Value),
	}, nil
}

type GetPreferenceRequest struct {
	Key string `json:"key" jsonschema:"preference key, dotted for nested values"`
}

type GetPreferenceResponse struct {
	Key   string `json:"key" jsonschema:"the requested key"`
	Found bool   `json:"found" jsonschema:"whether the key exists"`
	Value any    `json:"value,omitempty" jsonschema:"the stored value"`
}

func (t *PreferenceTools) GetPreference(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input GetPreferenceRequest,
) (*mcp.CallToolResult, GetPreferenceResponse, error) {
	if input.Key == "" {
		return nil, GetPreferenceResponse{}, fmt.Errorf("key is required")
	}
	value, found, err := t.prefs.Get(input.Key)
	if err != nil {
		return nil, GetPreferenceResponse{}, fmt.Errorf("prefs.Get failed: %w", err)
	}
	return nil, GetPreferenceResponse{Key: input.Key, Found: found, Value: value}, nil
}

type ListPreferencesRequest struct{}

type ListPreferencesResponse struct {
	Preferences map[string]any `json:"preferences" jsonschema:"the full preferences document"`
	Rendered    string         `json:"rendered" jsonschema:"indented text rendering for display"`
}

func (t *PreferenceTools) ListPreferences(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ ListPreferencesRequest,
) (*mcp.CallToolResult, ListPreferencesResponse, error) {
	doc, err := t.prefs.List()
	if err != nil {
		return nil, ListPreferencesResponse{}, fmt.Errorf("prefs.List failed: %w", err)
	}
	var sb strings.Builder
	renderDoc(&sb, doc, 0)
	return nil, ListPreferencesResponse{Preferences: doc, Rendered: sb.String()}, nil
}

type ResetPreferencesRequest struct {
	Confirm bool `json:"confirm" jsonschema:"must be true to reset all preferences to defaults"`
}

type ResetPreferencesResponse struct {
	Status string `json:"status" jsonschema:"human-readable confirmation"`
}

func (t *PreferenceTools) ResetPreferences(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ResetPreferencesRequest,
) (*mcp.CallToolResult, ResetPreferencesResponse, error) {
	if !input.Confirm {
		return nil, ResetPreferencesResponse{}, fmt.Errorf("reset requires confirm=true")
	}
	if err := t.prefs.Reset(); err != nil {
		return nil, ResetPreferencesResponse{}, fmt.Errorf("prefs.Reset failed: %w", err)
	}
	return nil, ResetPreferencesResponse{Status: "Preferences reset to defaults."}, nil
}

// renderDoc writes a sorted, indented key/value listing.
func renderDoc(sb *strings.Builder, doc map[string]any, depth int) {
	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	indent := strings.Repeat("  ", depth)
	for _, k := range keys {
		switch v := doc[k].(type) {
		case map[string]any:
			fmt.Fprintf(sb, "%s%s:\n", indent, k)
			renderDoc(sb, v, depth+1)
		default:
			fmt.Fprintf(sb, "%s%s: %v\n", indent, k, v)
		}
	}
}
