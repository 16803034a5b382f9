// Package search wraps the external search API used to resolve candidate
// product URLs and run broader multi-result queries.
package search

import "context"

// Result is one search hit
type Result struct {
	URL        string   `json:"url"`
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	RawContent string   `json:"raw_content"`
	Images     []string `json:"images"`
}

// Response is a full search response; Images are the top-level images the
// API returns alongside the per-result ones.
type Response struct {
	Results []Result `json:"results"`
	Images  []string `json:"images"`
}

// Client is the search collaborator contract. Resolve returns the single
// best URL for a query restricted to one domain ("" when none); Search runs
// a broader multi-result query across domains.
type Client interface {
	Resolve(ctx context.Context, query, domain string) (string, error)
	Search(ctx context.Context, query string, domains []string, maxResults int) (*Response, error)
}
