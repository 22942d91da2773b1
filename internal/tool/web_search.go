package tool

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/atlasbot/atlas-mcp/internal/search"
)

type webSearcher interface {
	Search(ctx context.Context, query string, num int) ([]search.Result, error)
}

// WebSearchRequest queries the web via the Custom Search API.
type WebSearchRequest struct {
	Query string `json:"query" jsonschema:"search query"`
	Num   int    `json:"num,omitempty" jsonschema:"number of results, defaults to 5"`
}

type WebSearchResponse struct {
	Results  []search.Result `json:"results" jsonschema:"search hits"`
	Rendered string          `json:"rendered" jsonschema:"numbered text rendering of the hits"`
}

// NewWebSearch creates the web_search tool.
func NewWebSearch(searcher webSearcher) *WebSearch {
	return &WebSearch{searcher: searcher}
}

type WebSearch struct {
	searcher webSearcher
}

// Handle runs a web search.
func (t *WebSearch) Handle(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input WebSearchRequest,
) (*mcp.CallToolResult, WebSearchResponse, error) {
	if input.Query == "" {
		return nil, WebSearchResponse{}, fmt.Errorf("query is required")
	}

	results, err := t.searcher.Search(ctx, input.Query, input.Num)
	if err != nil {
		if errors.Is(err, search.ErrNotConfigured) {
			return nil, WebSearchResponse{}, fmt.Errorf(
				"web search is not configured: set ATLAS_SEARCH_API_KEY and ATLAS_SEARCH_ENGINE_ID")
		}
		return nil, WebSearchResponse{}, fmt.Errorf("searcher.Search failed: %w", err)
	}

	return nil, WebSearchResponse{
		Results:  results,
		Rendered: search.FormatResults(results),
	}, nil
}
