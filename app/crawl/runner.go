package crawl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/the-on/collector/app/database"
	"github.com/the-on/collector/app/llm"
)

var (
	ErrRegionNotFound = errors.New("region not found")
	ErrInvalidAction  = errors.New("invalid action")
)

// RunnerDeps wires the repositories and external clients into the runner.
type RunnerDeps struct {
	Catalog    database.CatalogRepository
	Sources    database.SourceRepository
	Articles   database.ArticleRepository
	CrawlLogs  database.CrawlLogRepository
	Searcher   Searcher
	Fetcher    *ContentFetcher
	Enricher   Enricher
	HTTPClient *http.Client
	UserAgent  string
	// RunDeadline bounds one run; candidates remaining when it expires are
	// dropped and the run completes with partial counts.
	RunDeadline time.Duration
}

// Runner drives one collection run end to end: strategy fan-out, the
// per-candidate filter/dedup/fetch/enrich/persist pipeline, and the crawl
// log lifecycle.
type Runner struct {
	catalog     database.CatalogRepository
	sources     database.SourceRepository
	articles    database.ArticleRepository
	crawlLogs   database.CrawlLogRepository
	searcher    Searcher
	fetcher     *ContentFetcher
	enricher    Enricher
	httpClient  *http.Client
	userAgent   string
	runDeadline time.Duration
}

func NewRunner(deps RunnerDeps) *Runner {
	return &Runner{
		catalog:     deps.Catalog,
		sources:     deps.Sources,
		articles:    deps.Articles,
		crawlLogs:   deps.CrawlLogs,
		searcher:    deps.Searcher,
		fetcher:     deps.Fetcher,
		enricher:    deps.Enricher,
		httpClient:  deps.HTTPClient,
		userAgent:   deps.UserAgent,
		runDeadline: deps.RunDeadline,
	}
}

// Run executes one collection run. Request-level failures (unknown action,
// unknown region) return an error before any crawl log exists; once the log
// row is created, every outcome finalizes it to completed or failed.
func (r *Runner) Run(ctx context.Context, req Request) (Result, error) {
	if !ValidAction(req.Action) {
		return Result{}, fmt.Errorf("%w: %q", ErrInvalidAction, req.Action)
	}

	region, err := r.catalog.GetRegion(req.RegionID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to resolve region: %w", err)
	}
	if region == nil {
		return Result{}, fmt.Errorf("%w: %s", ErrRegionNotFound, req.RegionID)
	}

	categories, err := r.catalog.ListActiveCategories()
	if err != nil {
		return Result{}, fmt.Errorf("failed to load categories: %w", err)
	}

	slugToID := make(map[string]string, len(categories))
	options := make([]llm.CategoryOption, 0, len(categories))
	for _, c := range categories {
		slugToID[c.Slug] = c.ID
		options = append(options, llm.CategoryOption{Slug: c.Slug, Name: c.Name})
	}

	var categoryID *string
	if req.CategoryID != "" {
		categoryID = &req.CategoryID
	}

	logID, err := r.crawlLogs.InsertRunning(database.CrawlLog{
		Type:        string(req.Action),
		RegionID:    region.ID,
		CategoryID:  categoryID,
		SearchQuery: req.Query,
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to create crawl log: %w", err)
	}

	result, err := r.collect(ctx, req, region, slugToID, options)
	if err != nil {
		if failErr := r.crawlLogs.Fail(logID, result.TotalFound, result.TotalProcessed, result.TotalSaved); failErr != nil {
			slog.Error("Failed to mark crawl log failed", "log_id", logID, "error", failErr)
		}
		return Result{}, err
	}

	if err := r.crawlLogs.Complete(logID, result.TotalFound, result.TotalProcessed, result.TotalSaved); err != nil {
		slog.Error("Failed to finalize crawl log", "log_id", logID, "error", err)
	}

	slog.Info("Collection run finished",
		"action", req.Action,
		"region", region.Slug,
		"found", result.TotalFound,
		"processed", result.TotalProcessed,
		"saved", result.TotalSaved)

	return result, nil
}

func (r *Runner) collect(ctx context.Context, req Request, region *database.Region, slugToID map[string]string, options []llm.CategoryOption) (Result, error) {
	strategy := r.strategyFor(req)

	candidates, err := strategy.Collect(ctx, region)
	if err != nil {
		return Result{}, fmt.Errorf("%s strategy failed: %w", strategy.Name(), err)
	}

	result := Result{TotalFound: len(candidates)}
	deadline := time.Now().Add(r.runDeadline)

	for _, candidate := range candidates {
		if ctx.Err() != nil {
			slog.Warn("Run cancelled, stopping with partial counts", "remaining", result.TotalFound-result.TotalProcessed)
			break
		}
		if r.runDeadline > 0 && time.Now().After(deadline) {
			slog.Warn("Run budget exhausted, stopping with partial counts", "budget", r.runDeadline)
			break
		}

		processed, saved := r.processCandidate(ctx, candidate, region, slugToID, options)
		if processed {
			result.TotalProcessed++
		}
		if saved {
			result.TotalSaved++
		}
	}

	return result, nil
}

// processCandidate applies the filter chain and, for surviving candidates,
// fetch + enrichment + persistence. Every step past the filters degrades
// gracefully: an upstream failure produces a lower-quality pending article,
// not a dropped one.
func (r *Runner) processCandidate(ctx context.Context, candidate Candidate, region *database.Region, slugToID map[string]string, options []llm.CategoryOption) (processed, saved bool) {
	if candidate.URL == "" {
		return false, false
	}

	if ShouldExclude(candidate.URL) {
		slog.Debug("Excluded URL", "url", candidate.URL)
		return false, false
	}

	if !IsArticleURL(candidate.URL) {
		slog.Debug("Not an article URL", "url", candidate.URL)
		return false, false
	}

	existing, err := r.articles.GetPendingByURL(candidate.URL)
	if err != nil {
		// The unique index still guards the insert below.
		slog.Warn("Dedup lookup failed", "url", candidate.URL, "error", err)
	}
	if existing != nil {
		slog.Debug("Duplicate URL", "url", candidate.URL)
		return false, false
	}

	if !IsRelevant(candidate.Title, region.Name) {
		slog.Debug("Not relevant", "title", candidate.Title)
		return false, false
	}

	slog.Info("Processing candidate", "title", candidate.Title, "url", candidate.URL)

	content := candidate.Content
	thumbnail := candidate.Thumbnail
	if NeedsFetch(content) {
		page := r.fetcher.FetchPage(ctx, candidate.URL)
		if page.Content != "" {
			content = page.Content
		} else {
			content = candidate.Snippet
		}
		if page.Thumbnail != "" {
			thumbnail = page.Thumbnail
		}
	}

	summary, err := r.enricher.Summarize(ctx, candidate.Title, content)
	if err != nil {
		slog.Warn("Summarization failed, falling back to snippet", "title", candidate.Title, "error", err)
		summary = candidate.Snippet
	}

	categoryID := candidate.CategoryID
	if categoryID == nil {
		slug, err := r.enricher.ClassifyCategory(ctx, candidate.Title, content, options)
		if err != nil {
			slog.Warn("Category classification failed", "title", candidate.Title, "error", err)
		} else if id, ok := slugToID[slug]; ok {
			categoryID = &id
		} else if slug != "" {
			slog.Debug("Classifier returned unknown category slug", "slug", slug)
		}
	}

	// Raw content is retained only for public-sector sources.
	var storedContent *string
	if IsPublicSource(candidate.URL) && content != "" {
		storedContent = &content
	}

	_, err = r.articles.InsertPending(database.PendingArticle{
		SourceID:            candidate.SourceID,
		OriginalURL:         candidate.URL,
		OriginalTitle:       candidate.Title,
		OriginalContent:     storedContent,
		OriginalPublishedAt: candidate.PublishedAt,
		AISummary:           summary,
		AICategoryID:        categoryID,
		ThumbnailURL:        thumbnail,
		RegionID:            region.ID,
		SearchQuery:         candidate.SearchQuery,
		Status:              database.StatusPending,
	})
	if err != nil {
		slog.Error("Failed to insert pending article", "url", candidate.URL, "error", err)
		return true, false
	}

	slog.Debug("Saved pending article", "title", candidate.Title)
	return true, true
}

func (r *Runner) strategyFor(req Request) Strategy {
	switch req.Action {
	case ActionRSS:
		return NewRSSStrategy(r.sources, r.httpClient, r.userAgent)
	case ActionAuto:
		return NewAutoStrategy(r.searcher, r.catalog)
	default:
		return NewSearchStrategy(r.searcher, r.catalog, req.Query, req.CategoryID, req.TimeRange)
	}
}
