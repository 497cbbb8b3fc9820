package crawl

import (
	"context"
	"time"

	"github.com/the-on/collector/app/database"
	"github.com/the-on/collector/app/firecrawl"
	"github.com/the-on/collector/app/llm"
)

type Action string

const (
	ActionSearch Action = "search"
	ActionRSS    Action = "rss"
	ActionAuto   Action = "auto"
)

func ValidAction(a Action) bool {
	return a == ActionSearch || a == ActionRSS || a == ActionAuto
}

// Time ranges use the upstream search service's recency syntax.
const (
	TimeRangeDay   = "qdr:d"
	TimeRangeWeek  = "qdr:w"
	TimeRangeMonth = "qdr:m"
)

func ValidTimeRange(tr string) bool {
	return tr == TimeRangeDay || tr == TimeRangeWeek || tr == TimeRangeMonth
}

// Request is the inbound trigger for one collection run.
type Request struct {
	Action     Action
	RegionID   string
	CategoryID string
	Query      string
	TimeRange  string
}

// Result carries the aggregate counts returned to the trigger caller.
type Result struct {
	TotalFound     int
	TotalProcessed int
	TotalSaved     int
}

// Candidate is a discovered URL in flight through one run. It is produced
// by a collection strategy and discarded after the orchestrator pass.
type Candidate struct {
	URL         string
	Title       string
	Snippet     string
	Content     string // pre-fetched content, if the strategy supplied any
	Thumbnail   string
	PublishedAt *time.Time
	SourceID    *string
	CategoryID  *string // preset category, bypasses AI classification
	SearchQuery string
}

// Strategy produces candidates from one upstream source. Upstream failures
// are logged and degrade to fewer candidates; an error return is reserved
// for configuration-level failures that abort the run.
type Strategy interface {
	Name() string
	Collect(ctx context.Context, region *database.Region) ([]Candidate, error)
}

type Searcher interface {
	Search(ctx context.Context, query, timeRange string) ([]firecrawl.SearchResult, error)
}

type Scraper interface {
	Scrape(ctx context.Context, url string) (firecrawl.Page, error)
}

type Enricher interface {
	Summarize(ctx context.Context, title, content string) (string, error)
	ClassifyCategory(ctx context.Context, title, content string, categories []llm.CategoryOption) (string, error)
}
