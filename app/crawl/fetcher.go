package crawl

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"

	"github.com/the-on/collector/app/firecrawl"
)

// minContentLength is the snippet length below which full page content is
// fetched. Anything longer is considered good enough, to keep external
// calls to a minimum.
const minContentLength = 100

const maxBodySize = 4 << 20

// ContentFetcher resolves full page content and a thumbnail for a candidate
// URL. The scrape service is tried first; if it yields nothing, the page is
// fetched directly and run through readability extraction. All failures
// degrade to an empty page, never an error.
type ContentFetcher struct {
	scraper    Scraper
	httpClient *http.Client
	userAgent  string
}

func NewContentFetcher(scraper Scraper, httpClient *http.Client, userAgent string) *ContentFetcher {
	return &ContentFetcher{
		scraper:    scraper,
		httpClient: httpClient,
		userAgent:  userAgent,
	}
}

// NeedsFetch reports whether the pre-supplied content is too short to use.
func NeedsFetch(content string) bool {
	return len([]rune(content)) < minContentLength
}

func (f *ContentFetcher) FetchPage(ctx context.Context, rawURL string) firecrawl.Page {
	page, err := f.scraper.Scrape(ctx, rawURL)
	if err != nil {
		slog.Warn("Scrape service failed, falling back to direct fetch", "url", rawURL, "error", err)
	}
	if page.Content != "" {
		return page
	}

	extracted := f.extractDirect(ctx, rawURL)
	if extracted.Content != "" {
		// Keep the scrape service's thumbnail if it produced one.
		if extracted.Thumbnail == "" {
			extracted.Thumbnail = page.Thumbnail
		}
		return extracted
	}

	return page
}

func (f *ContentFetcher) extractDirect(ctx context.Context, rawURL string) firecrawl.Page {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return firecrawl.Page{}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return firecrawl.Page{}
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		slog.Debug("Direct fetch failed", "url", rawURL, "error", err)
		return firecrawl.Page{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Debug("Direct fetch returned non-OK status", "url", rawURL, "status", resp.StatusCode)
		return firecrawl.Page{}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return firecrawl.Page{}
	}

	article, err := readability.FromReader(strings.NewReader(string(body)), parsed)
	if err != nil {
		slog.Debug("Readability extraction failed", "url", rawURL, "error", err)
		return firecrawl.Page{}
	}

	return firecrawl.Page{
		Title:   article.Title,
		Content: strings.TrimSpace(article.TextContent),
	}
}
