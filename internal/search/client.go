// Package search queries the Google Custom Search JSON API.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultBaseURL = "https://www.googleapis.com"

// cseMaxResults is the page-size ceiling the Custom Search API enforces.
const cseMaxResults = 5

// ErrNotConfigured indicates the API key or engine id is missing.
var ErrNotConfigured = errors.New("search API credentials are not configured")

// Result is one web search hit.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}

type cseResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"items"`
}

// Client calls the Custom Search API.
type Client struct {
	http     *resty.Client
	apiKey   string
	engineID string
}

// NewClient creates a search client. Empty credentials are allowed; Search
// then returns ErrNotConfigured.
func NewClient(apiKey, engineID string) *Client {
	c := resty.New().
		SetBaseURL(defaultBaseURL).
		SetTimeout(30 * time.Second)

	return &Client{http: c, apiKey: apiKey, engineID: engineID}
}

// SetBaseURL overrides the API endpoint, primarily for tests.
func (c *Client) SetBaseURL(base string) {
	c.http.SetBaseURL(base)
}

// Search returns up to num results for query.
func (c *Client) Search(ctx context.Context, query string, num int) ([]Result, error) {
	if c.apiKey == "" || c.engineID == "" {
		return nil, ErrNotConfigured
	}
	if num <= 0 || num > cseMaxResults {
		num = cseMaxResults
	}

	var body cseResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"key": c.apiKey,
			"cx":  c.engineID,
			"q":   query,
			"num": fmt.Sprint(num),
		}).
		SetResult(&body).
		Get("/customsearch/v1")
	if err != nil {
		return nil, fmt.Errorf("customsearch request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("customsearch returned %s: %s", resp.Status(), resp.String())
	}

	results := make([]Result, 0, len(body.Items))
	for _, item := range body.Items {
		results = append(results, Result{
			Title:   item.Title,
			URL:     item.Link,
			Snippet: item.Snippet,
		})
	}
	return results, nil
}

// FormatResults renders results as numbered text for the caller.
func FormatResults(results []Result) string {
	if len(results) == 0 {
		return "No search results found for the query."
	}

	parts := make([]string, 0, len(results))
	for i, r := range results {
		parts = append(parts, fmt.Sprintf("Result %d:\nTitle: %s\nURL: %s\nSnippet: %s", i+1, r.Title, r.URL, r.Snippet))
	}
	return "Search Results:\n" + strings.Join(parts, "\n---\n")
}
