package database

import (
	"time"
)

type Region struct {
	ID        string
	Name      string
	Slug      string
	IsActive  bool
	CreatedAt time.Time
}

type Category struct {
	ID        string
	Name      string
	Slug      string
	Icon      string
	SortOrder int
	IsActive  bool
	CreatedAt time.Time
}

type Source struct {
	ID            string
	RegionID      string
	Name          string
	URL           string
	FeedURL       string
	FeedType      string // rss, api, general
	CategoryID    *string
	IsActive      bool
	LastCrawledAt *time.Time
	CreatedAt     time.Time
}

// KeywordSet holds the configured search terms for one (region, category)
// pair. Keywords are ordered; autonomous collection uses the first one.
type KeywordSet struct {
	ID         string
	RegionID   string
	CategoryID string
	Keywords   []string
	IsActive   bool
	CreatedAt  time.Time
}

// PendingArticle is a staged collection result awaiting review.
// OriginalContent is nil unless the source was classified public.
type PendingArticle struct {
	ID                  string
	SourceID            *string
	OriginalURL         string
	OriginalTitle       string
	OriginalContent     *string
	OriginalPublishedAt *time.Time
	AISummary           string
	AICategoryID        *string
	ThumbnailURL        string
	RegionID            string
	SearchQuery         string
	Status              string // pending, approved, rejected
	ReviewedAt          *time.Time
	CreatedAt           time.Time
}

type Article struct {
	ID           string
	Title        string
	Summary      string
	Content      string
	SourceURL    string
	SourceName   string
	SourceType   string // crawled, original, public
	ThumbnailURL string
	CategoryID   *string
	RegionID     string
	IsActive     bool
	PublishedAt  *time.Time
	CreatedAt    time.Time
}

// CrawlLog is the audit record for one collection run.
type CrawlLog struct {
	ID             string
	Type           string // search, rss, auto
	RegionID       string
	CategoryID     *string
	SearchQuery    string
	TotalFound     int
	TotalProcessed int
	TotalSaved     int
	Status         string // running, completed, failed
	StartedAt      time.Time
	CompletedAt    *time.Time
}

type AutoCrawlSetting struct {
	ID         string
	RegionID   string
	CrawlHours []string // "HH:MM" local times
	IsEnabled  bool
	LastRunAt  *time.Time
	CreatedAt  time.Time
}

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"

	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"

	SourceTypeCrawled = "crawled"
	SourceTypePublic  = "public"

	FeedTypeRSS = "rss"
)
