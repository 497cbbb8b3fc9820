// Package firecrawl wraps the external web-search and page-scrape service.
// Both operations are best-effort from the pipeline's point of view: callers
// treat an error as zero results rather than a run failure.
package firecrawl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	searchLimit = 10
	maxAttempts = 2
	retryDelay  = 500 * time.Millisecond
)

type SearchResult struct {
	Title     string
	URL       string
	Snippet   string
	Content   string
	Thumbnail string
}

type Page struct {
	Title     string
	Content   string
	Thumbnail string
}

type Client struct {
	baseURL    string
	apiKey     string
	userAgent  string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey, userAgent string, timeout time.Duration) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type searchRequest struct {
	Query   string `json:"query"`
	Limit   int    `json:"limit"`
	Lang    string `json:"lang"`
	Country string `json:"country"`
	TBS     string `json:"tbs"`
}

type resultMetadata struct {
	Title   string `json:"title"`
	OGImage string `json:"ogImage"`
}

type searchResponse struct {
	Success bool `json:"success"`
	Data    []struct {
		Title       string         `json:"title"`
		URL         string         `json:"url"`
		Description string         `json:"description"`
		Markdown    string         `json:"markdown"`
		Content     string         `json:"content"`
		Metadata    resultMetadata `json:"metadata"`
	} `json:"data"`
}

// Search runs one web search with the given recency window ("qdr:d",
// "qdr:w", "qdr:m") and returns the ordered results.
func (c *Client) Search(ctx context.Context, query, timeRange string) ([]SearchResult, error) {
	reqBody := searchRequest{
		Query:   query,
		Limit:   searchLimit,
		Lang:    "ko",
		Country: "kr",
		TBS:     timeRange,
	}

	var resp searchResponse
	if err := c.postJSON(ctx, "/search", reqBody, &resp); err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}

	if !resp.Success {
		return nil, fmt.Errorf("search returned unsuccessful response")
	}

	results := make([]SearchResult, 0, len(resp.Data))
	for _, item := range resp.Data {
		content := item.Markdown
		if content == "" {
			content = item.Content
		}
		results = append(results, SearchResult{
			Title:     item.Title,
			URL:       item.URL,
			Snippet:   item.Description,
			Content:   content,
			Thumbnail: item.Metadata.OGImage,
		})
	}

	return results, nil
}

type scrapeRequest struct {
	URL     string   `json:"url"`
	Formats []string `json:"formats"`
}

type scrapeResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Markdown string         `json:"markdown"`
		Metadata resultMetadata `json:"metadata"`
	} `json:"data"`
}

// Scrape fetches one page as markdown plus a representative thumbnail.
func (c *Client) Scrape(ctx context.Context, url string) (Page, error) {
	reqBody := scrapeRequest{
		URL:     url,
		Formats: []string{"markdown"},
	}

	var resp scrapeResponse
	if err := c.postJSON(ctx, "/scrape", reqBody, &resp); err != nil {
		return Page{}, fmt.Errorf("scrape request failed: %w", err)
	}

	if !resp.Success {
		return Page{}, fmt.Errorf("scrape returned unsuccessful response")
	}

	return Page{
		Title:     resp.Data.Metadata.Title,
		Content:   resp.Data.Markdown,
		Thumbnail: resp.Data.Metadata.OGImage,
	}, nil
}

// postJSON sends one JSON request with a small bounded retry on transport
// errors and retryable statuses. Retries improve quality, not correctness;
// callers still degrade gracefully on a final error.
func (c *Client) postJSON(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt-1) * retryDelay):
			}
			slog.Debug("Retrying firecrawl request", "path", path, "attempt", attempt)
		}

		lastErr = c.doOnce(ctx, path, body, out)
		if lastErr == nil {
			return nil
		}
		if !retryable(lastErr) {
			return lastErr
		}
	}

	return lastErr
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.code)
}

func retryable(err error) bool {
	if se, ok := err.(*statusError); ok {
		return se.code == http.StatusTooManyRequests || se.code >= 500
	}
	// Transport-level errors are worth one more try.
	return true
}

func (c *Client) doOnce(ctx context.Context, path string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return &statusError{code: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
