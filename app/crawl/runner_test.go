package crawl

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/the-on/collector/app/database"
	"github.com/the-on/collector/app/firecrawl"
	"github.com/the-on/collector/app/llm"
)

type fakeSearcher struct {
	results map[string][]firecrawl.SearchResult
	queries []string
	err     error
}

func (s *fakeSearcher) Search(ctx context.Context, query, timeRange string) ([]firecrawl.SearchResult, error) {
	s.queries = append(s.queries, query)
	if s.err != nil {
		return nil, s.err
	}
	if s.results == nil {
		return nil, nil
	}
	return s.results[query], nil
}

type fakeCatalog struct {
	region      *database.Region
	categories  []database.Category
	keywordSets []database.KeywordSet
	settings    []database.AutoCrawlSetting
	lastRunIDs  []string
}

func (c *fakeCatalog) GetRegion(id string) (*database.Region, error) {
	if c.region != nil && c.region.ID == id {
		return c.region, nil
	}
	return nil, nil
}

func (c *fakeCatalog) GetRegionBySlug(slug string) (*database.Region, error) {
	if c.region != nil && c.region.Slug == slug {
		return c.region, nil
	}
	return nil, nil
}

func (c *fakeCatalog) ListActiveCategories() ([]database.Category, error) {
	return c.categories, nil
}

func (c *fakeCatalog) ListActiveKeywordSets(regionID string) ([]database.KeywordSet, error) {
	return c.keywordSets, nil
}

func (c *fakeCatalog) UpsertRegion(region database.Region) (string, error)     { return region.ID, nil }
func (c *fakeCatalog) UpsertCategory(cat database.Category) (string, error)    { return cat.ID, nil }
func (c *fakeCatalog) UpsertKeywordSet(set database.KeywordSet) (string, error) { return set.ID, nil }

func (c *fakeCatalog) ListEnabledAutoCrawlSettings() ([]database.AutoCrawlSetting, error) {
	return c.settings, nil
}

func (c *fakeCatalog) UpsertAutoCrawlSetting(s database.AutoCrawlSetting) (string, error) {
	return s.ID, nil
}

func (c *fakeCatalog) UpdateAutoCrawlLastRun(id string, runAt time.Time) error {
	c.lastRunIDs = append(c.lastRunIDs, id)
	return nil
}

type fakeArticles struct {
	existing map[string]*database.PendingArticle
	inserted []database.PendingArticle
	insertErr error
}

func (a *fakeArticles) GetPendingByURL(url string) (*database.PendingArticle, error) {
	if a.existing == nil {
		return nil, nil
	}
	return a.existing[url], nil
}

func (a *fakeArticles) GetPending(id string) (*database.PendingArticle, error) { return nil, nil }

func (a *fakeArticles) InsertPending(article database.PendingArticle) (string, error) {
	if a.insertErr != nil {
		return "", a.insertErr
	}
	a.inserted = append(a.inserted, article)
	return "pending-id", nil
}

func (a *fakeArticles) ListPending(regionID, status string, limit int) ([]database.PendingArticle, error) {
	return a.inserted, nil
}

func (a *fakeArticles) UpdatePendingStatus(id, status string, reviewedAt time.Time) error {
	return nil
}

func (a *fakeArticles) Promote(pendingID string, reviewedAt time.Time) (string, error) {
	return "article-id", nil
}

type logEntry struct {
	log       database.CrawlLog
	status    string
	found     int
	processed int
	saved     int
}

type fakeCrawlLogs struct {
	entries []*logEntry
}

func (l *fakeCrawlLogs) InsertRunning(log database.CrawlLog) (string, error) {
	l.entries = append(l.entries, &logEntry{log: log, status: database.RunStatusRunning})
	return "log-id", nil
}

func (l *fakeCrawlLogs) finalize(status string, found, processed, saved int) {
	entry := l.entries[len(l.entries)-1]
	entry.status = status
	entry.found = found
	entry.processed = processed
	entry.saved = saved
}

func (l *fakeCrawlLogs) Complete(id string, found, processed, saved int) error {
	l.finalize(database.RunStatusCompleted, found, processed, saved)
	return nil
}

func (l *fakeCrawlLogs) Fail(id string, found, processed, saved int) error {
	l.finalize(database.RunStatusFailed, found, processed, saved)
	return nil
}

func (l *fakeCrawlLogs) ListRecent(limit int) ([]database.CrawlLog, error) {
	return nil, nil
}

type fakeEnricher struct {
	summary      string
	summaryErr   error
	categorySlug string
	categoryErr  error
}

func (e *fakeEnricher) Summarize(ctx context.Context, title, content string) (string, error) {
	if e.summaryErr != nil {
		return "", e.summaryErr
	}
	return e.summary, nil
}

func (e *fakeEnricher) ClassifyCategory(ctx context.Context, title, content string, categories []llm.CategoryOption) (string, error) {
	if e.categoryErr != nil {
		return "", e.categoryErr
	}
	return e.categorySlug, nil
}

func newTestRunner(searcher Searcher, catalog *fakeCatalog, articles *fakeArticles, logs *fakeCrawlLogs, enricher Enricher) *Runner {
	client := &http.Client{Timeout: time.Second}
	return NewRunner(RunnerDeps{
		Catalog:    catalog,
		Sources:    &fakeSources{},
		Articles:   articles,
		CrawlLogs:  logs,
		Searcher:   searcher,
		Fetcher:    NewContentFetcher(&fakeScraper{}, client, "test-agent"),
		Enricher:   enricher,
		HTTPClient: client,
		UserAgent:  "test-agent",
	})
}

type fakeSources struct {
	sources []database.Source
	crawled []string
}

func (s *fakeSources) ListActiveRSSSources(regionID string) ([]database.Source, error) {
	return s.sources, nil
}

func (s *fakeSources) UpdateLastCrawled(sourceID string, crawledAt time.Time) error {
	s.crawled = append(s.crawled, sourceID)
	return nil
}

func (s *fakeSources) UpsertSource(src database.Source) (string, error) { return src.ID, nil }

func testRegion() *database.Region {
	return &database.Region{ID: "region-1", Name: "강릉", Slug: "gangneung", IsActive: true}
}

func longContent() string {
	return strings.Repeat("강릉 지역 주요 소식을 전한다. ", 20)
}

func TestRunner_Run_InvalidAction(t *testing.T) {
	runner := newTestRunner(&fakeSearcher{}, &fakeCatalog{region: testRegion()}, &fakeArticles{}, &fakeCrawlLogs{}, &fakeEnricher{})

	_, err := runner.Run(context.Background(), Request{Action: "bogus", RegionID: "region-1"})

	if !errors.Is(err, ErrInvalidAction) {
		t.Errorf("Expected ErrInvalidAction, got %v", err)
	}
}

func TestRunner_Run_UnknownRegion(t *testing.T) {
	logs := &fakeCrawlLogs{}
	runner := newTestRunner(&fakeSearcher{}, &fakeCatalog{region: testRegion()}, &fakeArticles{}, logs, &fakeEnricher{})

	_, err := runner.Run(context.Background(), Request{Action: ActionSearch, RegionID: "missing"})

	if !errors.Is(err, ErrRegionNotFound) {
		t.Errorf("Expected ErrRegionNotFound, got %v", err)
	}
	if len(logs.entries) != 0 {
		t.Errorf("Expected no crawl log for request-level failure, got %d", len(logs.entries))
	}
}

func TestRunner_Run_SearchPipeline(t *testing.T) {
	searcher := &fakeSearcher{
		results: map[string][]firecrawl.SearchResult{
			"강릉 뉴스": {
				{Title: "강릉 커피축제 개막", URL: "https://news.example.com/article/1001", Snippet: "축제 소식", Content: longContent()},
				{Title: "서울 증시 마감", URL: "https://news.example.com/article/1002", Snippet: "증시", Content: longContent()},
				{Title: "강릉 채용 공고", URL: "https://www.jobkorea.co.kr/recruit/5", Snippet: "채용", Content: longContent()},
			},
		},
	}
	catalog := &fakeCatalog{
		region: testRegion(),
		categories: []database.Category{
			{ID: "cat-tour", Name: "관광", Slug: "tourism", IsActive: true},
		},
	}
	articles := &fakeArticles{}
	logs := &fakeCrawlLogs{}
	enricher := &fakeEnricher{summary: "AI 요약", categorySlug: "tourism"}

	runner := newTestRunner(searcher, catalog, articles, logs, enricher)

	result, err := runner.Run(context.Background(), Request{Action: ActionSearch, RegionID: "region-1"})
	if err != nil {
		t.Fatalf("Expected run to succeed, got %v", err)
	}

	if result.TotalFound != 3 {
		t.Errorf("Expected 3 found, got %d", result.TotalFound)
	}
	// Only the relevant, non-excluded article survives the filters.
	if result.TotalProcessed != 1 || result.TotalSaved != 1 {
		t.Errorf("Expected 1 processed and 1 saved, got %d/%d", result.TotalProcessed, result.TotalSaved)
	}

	if len(articles.inserted) != 1 {
		t.Fatalf("Expected 1 inserted article, got %d", len(articles.inserted))
	}
	saved := articles.inserted[0]
	if saved.AISummary != "AI 요약" {
		t.Errorf("Expected AI summary, got %q", saved.AISummary)
	}
	if saved.AICategoryID == nil || *saved.AICategoryID != "cat-tour" {
		t.Errorf("Expected classified category id cat-tour, got %v", saved.AICategoryID)
	}
	if saved.Status != database.StatusPending {
		t.Errorf("Expected pending status, got %q", saved.Status)
	}
	if saved.OriginalContent != nil {
		t.Error("Expected no stored content for a commercial source")
	}
}

func TestRunner_Run_FinalizesCrawlLog(t *testing.T) {
	searcher := &fakeSearcher{}
	logs := &fakeCrawlLogs{}
	runner := newTestRunner(searcher, &fakeCatalog{region: testRegion()}, &fakeArticles{}, logs, &fakeEnricher{})

	_, err := runner.Run(context.Background(), Request{Action: ActionSearch, RegionID: "region-1"})
	if err != nil {
		t.Fatalf("Expected run to succeed, got %v", err)
	}

	if len(logs.entries) != 1 {
		t.Fatalf("Expected 1 crawl log entry, got %d", len(logs.entries))
	}
	if logs.entries[0].status != database.RunStatusCompleted {
		t.Errorf("Expected completed log, got %q", logs.entries[0].status)
	}
}

func TestRunner_Run_DuplicateURLSkipped(t *testing.T) {
	url := "https://news.example.com/article/1001"
	searcher := &fakeSearcher{
		results: map[string][]firecrawl.SearchResult{
			"강릉 뉴스": {{Title: "강릉 소식", URL: url, Snippet: "요약", Content: longContent()}},
		},
	}
	articles := &fakeArticles{
		existing: map[string]*database.PendingArticle{
			url: {ID: "already-there", OriginalURL: url},
		},
	}
	runner := newTestRunner(searcher, &fakeCatalog{region: testRegion()}, articles, &fakeCrawlLogs{}, &fakeEnricher{})

	result, err := runner.Run(context.Background(), Request{Action: ActionSearch, RegionID: "region-1"})
	if err != nil {
		t.Fatalf("Expected run to succeed, got %v", err)
	}

	if result.TotalProcessed != 0 || result.TotalSaved != 0 {
		t.Errorf("Expected duplicate to be skipped, got %d/%d", result.TotalProcessed, result.TotalSaved)
	}
}

func TestRunner_Run_SummarizeFailureFallsBackToSnippet(t *testing.T) {
	searcher := &fakeSearcher{
		results: map[string][]firecrawl.SearchResult{
			"강릉 뉴스": {{Title: "강릉 소식", URL: "https://news.example.com/article/1001", Snippet: "짧은 발췌", Content: longContent()}},
		},
	}
	articles := &fakeArticles{}
	enricher := &fakeEnricher{summaryErr: errors.New("llm unavailable"), categorySlug: "tourism"}
	runner := newTestRunner(searcher, &fakeCatalog{region: testRegion()}, articles, &fakeCrawlLogs{}, enricher)

	result, err := runner.Run(context.Background(), Request{Action: ActionSearch, RegionID: "region-1"})
	if err != nil {
		t.Fatalf("Expected run to succeed despite summarize failure, got %v", err)
	}

	if result.TotalSaved != 1 {
		t.Fatalf("Expected article to be saved, got %d", result.TotalSaved)
	}
	if articles.inserted[0].AISummary != "짧은 발췌" {
		t.Errorf("Expected snippet fallback, got %q", articles.inserted[0].AISummary)
	}
}

func TestRunner_Run_PresetCategorySkipsClassification(t *testing.T) {
	catID := "cat-preset"
	searcher := &fakeSearcher{
		results: map[string][]firecrawl.SearchResult{
			"강릉 뉴스": {{Title: "강릉 소식", URL: "https://news.example.com/article/1001", Snippet: "요약", Content: longContent()}},
		},
	}
	articles := &fakeArticles{}
	// Classifier would return an unknown slug; it must not be consulted.
	enricher := &fakeEnricher{summary: "요약", categoryErr: errors.New("should not be called")}
	runner := newTestRunner(searcher, &fakeCatalog{region: testRegion()}, articles, &fakeCrawlLogs{}, enricher)

	_, err := runner.Run(context.Background(), Request{Action: ActionSearch, RegionID: "region-1", CategoryID: catID})
	if err != nil {
		t.Fatalf("Expected run to succeed, got %v", err)
	}

	if len(articles.inserted) != 1 {
		t.Fatalf("Expected 1 inserted article, got %d", len(articles.inserted))
	}
	got := articles.inserted[0].AICategoryID
	if got == nil || *got != catID {
		t.Errorf("Expected preset category %q, got %v", catID, got)
	}
}

func TestRunner_Run_PublicSourceRetainsContent(t *testing.T) {
	content := longContent()
	searcher := &fakeSearcher{
		results: map[string][]firecrawl.SearchResult{
			"강릉 뉴스": {{Title: "강릉시 보도자료", URL: "https://www.gangneung.go.kr/news/view/77", Snippet: "보도자료", Content: content}},
		},
	}
	articles := &fakeArticles{}
	runner := newTestRunner(searcher, &fakeCatalog{region: testRegion()}, articles, &fakeCrawlLogs{}, &fakeEnricher{summary: "요약"})

	_, err := runner.Run(context.Background(), Request{Action: ActionSearch, RegionID: "region-1"})
	if err != nil {
		t.Fatalf("Expected run to succeed, got %v", err)
	}

	if len(articles.inserted) != 1 {
		t.Fatalf("Expected 1 inserted article, got %d", len(articles.inserted))
	}
	stored := articles.inserted[0].OriginalContent
	if stored == nil || *stored != content {
		t.Error("Expected public source content to be retained")
	}
}

func TestRunner_Run_InsertFailureCountsProcessedNotSaved(t *testing.T) {
	searcher := &fakeSearcher{
		results: map[string][]firecrawl.SearchResult{
			"강릉 뉴스": {{Title: "강릉 소식", URL: "https://news.example.com/article/1001", Snippet: "요약", Content: longContent()}},
		},
	}
	articles := &fakeArticles{insertErr: errors.New("constraint violation")}
	runner := newTestRunner(searcher, &fakeCatalog{region: testRegion()}, articles, &fakeCrawlLogs{}, &fakeEnricher{summary: "요약"})

	result, err := runner.Run(context.Background(), Request{Action: ActionSearch, RegionID: "region-1"})
	if err != nil {
		t.Fatalf("Expected run to complete, got %v", err)
	}

	if result.TotalProcessed != 1 {
		t.Errorf("Expected 1 processed, got %d", result.TotalProcessed)
	}
	if result.TotalSaved != 0 {
		t.Errorf("Expected 0 saved, got %d", result.TotalSaved)
	}
}

func TestRunner_Run_CancelledContextStopsWithPartialCounts(t *testing.T) {
	var results []firecrawl.SearchResult
	for i := 0; i < 5; i++ {
		results = append(results, firecrawl.SearchResult{
			Title:   "강릉 소식",
			URL:     "https://news.example.com/article/100" + string(rune('0'+i)),
			Snippet: "요약",
			Content: longContent(),
		})
	}
	searcher := &fakeSearcher{results: map[string][]firecrawl.SearchResult{"강릉 뉴스": results}}
	logs := &fakeCrawlLogs{}
	runner := newTestRunner(searcher, &fakeCatalog{region: testRegion()}, &fakeArticles{}, logs, &fakeEnricher{summary: "요약"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := runner.Run(ctx, Request{Action: ActionSearch, RegionID: "region-1"})
	if err != nil {
		t.Fatalf("Expected cancelled run to complete with partial counts, got %v", err)
	}

	if result.TotalFound != 5 {
		t.Errorf("Expected 5 found, got %d", result.TotalFound)
	}
	if result.TotalProcessed != 0 {
		t.Errorf("Expected 0 processed after cancellation, got %d", result.TotalProcessed)
	}
	if logs.entries[0].status != database.RunStatusCompleted {
		t.Errorf("Expected completed log with partial counts, got %q", logs.entries[0].status)
	}
}
