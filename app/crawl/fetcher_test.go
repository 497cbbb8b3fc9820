package crawl

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/the-on/collector/app/firecrawl"
)

type fakeScraper struct {
	page firecrawl.Page
	err  error
}

func (s *fakeScraper) Scrape(ctx context.Context, url string) (firecrawl.Page, error) {
	return s.page, s.err
}

func TestNeedsFetch_ShortContent(t *testing.T) {
	if !NeedsFetch("짧은 요약") {
		t.Error("Expected short content to need a fetch")
	}

	if !NeedsFetch("") {
		t.Error("Expected empty content to need a fetch")
	}
}

func TestNeedsFetch_LongContent(t *testing.T) {
	long := strings.Repeat("강릉 지역 소식 ", 20)

	if NeedsFetch(long) {
		t.Errorf("Expected %d-rune content not to need a fetch", len([]rune(long)))
	}
}

func TestContentFetcher_ScraperSuccess(t *testing.T) {
	scraper := &fakeScraper{
		page: firecrawl.Page{Title: "Test", Content: "Full article content", Thumbnail: "https://example.com/t.jpg"},
	}
	fetcher := NewContentFetcher(scraper, &http.Client{Timeout: time.Second}, "test-agent")

	page := fetcher.FetchPage(context.Background(), "https://example.com/article/1")

	if page.Content != "Full article content" {
		t.Errorf("Expected scraper content, got %q", page.Content)
	}
	if page.Thumbnail != "https://example.com/t.jpg" {
		t.Errorf("Expected scraper thumbnail, got %q", page.Thumbnail)
	}
}

func TestContentFetcher_FallbackToDirect(t *testing.T) {
	body := fmt.Sprintf(`<html><head><title>지역 축제 개막</title></head><body><article><h1>지역 축제 개막</h1>%s</article></body></html>`,
		strings.Repeat("<p>강릉 커피축제가 다음 달 개막한다. 올해로 열다섯 번째를 맞는 행사다.</p>", 10))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "test-agent" {
			t.Errorf("Expected custom user agent, got %q", got)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, body)
	}))
	defer server.Close()

	scraper := &fakeScraper{err: errors.New("scrape service unavailable")}
	fetcher := NewContentFetcher(scraper, server.Client(), "test-agent")

	page := fetcher.FetchPage(context.Background(), server.URL+"/article/1")

	if page.Content == "" {
		t.Fatal("Expected readability extraction to produce content")
	}
	if !strings.Contains(page.Content, "커피축제") {
		t.Errorf("Expected extracted content to contain article text, got %q", page.Content)
	}
}

func TestContentFetcher_AllFailuresYieldEmptyPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	scraper := &fakeScraper{err: errors.New("scrape service unavailable")}
	fetcher := NewContentFetcher(scraper, server.Client(), "test-agent")

	page := fetcher.FetchPage(context.Background(), server.URL+"/article/1")

	if page.Content != "" {
		t.Errorf("Expected empty page on total failure, got %q", page.Content)
	}
}

func TestContentFetcher_KeepsScraperThumbnailOnFallback(t *testing.T) {
	body := fmt.Sprintf(`<html><body><article>%s</article></body></html>`,
		strings.Repeat("<p>양양 서핑 인구가 크게 늘었다. 지역 상권도 활기를 띠고 있다.</p>", 10))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, body)
	}))
	defer server.Close()

	// Scraper returned a thumbnail but no content.
	scraper := &fakeScraper{page: firecrawl.Page{Thumbnail: "https://example.com/og.jpg"}}
	fetcher := NewContentFetcher(scraper, server.Client(), "test-agent")

	page := fetcher.FetchPage(context.Background(), server.URL+"/article/1")

	if page.Content == "" {
		t.Fatal("Expected fallback extraction to produce content")
	}
	if page.Thumbnail != "https://example.com/og.jpg" {
		t.Errorf("Expected scraper thumbnail to survive fallback, got %q", page.Thumbnail)
	}
}
