package crawl

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/the-on/collector/app/database"
)

var htmlTagRe = regexp.MustCompile(`<[^>]*>`)

// RSSStrategy fans in over every active RSS source registered to the
// region. Each feed item becomes a candidate carrying its own publish
// timestamp and the source's preconfigured category, if any. A source's
// last-crawled timestamp is updated once its feed has been read, however
// many items it yielded.
type RSSStrategy struct {
	sources    database.SourceRepository
	httpClient *http.Client
	parser     *gofeed.Parser
	userAgent  string
}

func NewRSSStrategy(sources database.SourceRepository, httpClient *http.Client, userAgent string) *RSSStrategy {
	return &RSSStrategy{
		sources:    sources,
		httpClient: httpClient,
		parser:     gofeed.NewParser(),
		userAgent:  userAgent,
	}
}

func (s *RSSStrategy) Name() string {
	return string(ActionRSS)
}

func (s *RSSStrategy) Collect(ctx context.Context, region *database.Region) ([]Candidate, error) {
	feeds, err := s.sources.ListActiveRSSSources(region.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rss sources: %w", err)
	}

	slog.Info("Collecting RSS sources", "region", region.Slug, "sources", len(feeds))

	var candidates []Candidate
	for _, source := range feeds {
		items, err := s.fetchFeed(ctx, source.FeedURL)
		if err != nil {
			// One broken feed must not stop the fan-in.
			slog.Warn("RSS fetch failed", "source", source.Name, "url", source.FeedURL, "error", err)
			continue
		}

		slog.Debug("RSS feed parsed", "source", source.Name, "items", len(items))

		for _, item := range items {
			if item.Title == "" || item.Link == "" {
				continue
			}

			candidates = append(candidates, Candidate{
				URL:         strings.TrimSpace(item.Link),
				Title:       strings.TrimSpace(item.Title),
				Snippet:     stripTags(item.Description),
				PublishedAt: item.PublishedParsed,
				SourceID:    &source.ID,
				CategoryID:  source.CategoryID,
			})
		}

		if err := s.sources.UpdateLastCrawled(source.ID, time.Now()); err != nil {
			slog.Warn("Failed to update source last crawled", "source", source.Name, "error", err)
		}
	}

	return candidates, nil
}

func (s *RSSStrategy) fetchFeed(ctx context.Context, feedURL string) ([]*gofeed.Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed body: %w", err)
	}

	feed, err := s.parser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	return feed.Items, nil
}

func stripTags(s string) string {
	return strings.TrimSpace(htmlTagRe.ReplaceAllString(s, ""))
}
