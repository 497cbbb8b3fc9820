// Package llm wraps the completion endpoint used for summarization and
// category classification. Calls are one-shot with a small bounded retry;
// a failed call degrades the article's enrichment, never the run.
package llm

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
	summaryContentLimit  = 3000 // runes of article content sent for summarization
	categoryContentLimit = 500  // runes sent for classification
	maxTokens            = 1024
	maxAttempts          = 2
	retryDelay           = 500 * time.Millisecond
)

type Client struct {
	endpoint   string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewClient(endpoint, apiKey, model string, timeout time.Duration) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		model:    model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type completionResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

// Complete sends one prompt and returns the raw text response.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(completionRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages:  []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal completion request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt-1) * retryDelay):
			}
			slog.Debug("Retrying completion request", "attempt", attempt)
		}

		var text string
		text, lastErr = c.doOnce(ctx, body)
		if lastErr == nil {
			return text, nil
		}
	}

	return "", lastErr
}

func (c *Client) doOnce(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("completion error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var parsed completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode completion response: %w", err)
	}

	if len(parsed.Content) == 0 {
		return "", nil
	}

	return parsed.Content[0].Text, nil
}

// Summarize produces the citizen-facing structured summary for an article.
func (c *Client) Summarize(ctx context.Context, title, content string) (string, error) {
	return c.Complete(ctx, buildSummaryPrompt(title, content))
}

// ClassifyCategory asks the model to place the article into one of the
// given categories and returns the trimmed lowercase slug. Whether the slug
// is actually part of the category set is the caller's concern.
func (c *Client) ClassifyCategory(ctx context.Context, title, content string, categories []CategoryOption) (string, error) {
	text, err := c.Complete(ctx, buildCategoryPrompt(title, content, categories))
	if err != nil {
		return "", err
	}

	return strings.ToLower(strings.TrimSpace(text)), nil
}
