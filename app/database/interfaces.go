package database

import (
	"time"
)

type CatalogRepository interface {
	GetRegion(id string) (*Region, error)
	GetRegionBySlug(slug string) (*Region, error)
	ListActiveCategories() ([]Category, error)
	ListActiveKeywordSets(regionID string) ([]KeywordSet, error)

	UpsertRegion(region Region) (string, error)
	UpsertCategory(category Category) (string, error)
	UpsertKeywordSet(set KeywordSet) (string, error)

	ListEnabledAutoCrawlSettings() ([]AutoCrawlSetting, error)
	UpsertAutoCrawlSetting(setting AutoCrawlSetting) (string, error)
	UpdateAutoCrawlLastRun(id string, runAt time.Time) error
}

type SourceRepository interface {
	ListActiveRSSSources(regionID string) ([]Source, error)
	UpdateLastCrawled(sourceID string, crawledAt time.Time) error
	UpsertSource(source Source) (string, error)
}

type ArticleRepository interface {
	GetPendingByURL(originalURL string) (*PendingArticle, error)
	GetPending(id string) (*PendingArticle, error)
	InsertPending(article PendingArticle) (string, error)
	ListPending(regionID, status string, limit int) ([]PendingArticle, error)
	UpdatePendingStatus(id, status string, reviewedAt time.Time) error

	// Promote publishes an approved pending article: inserts an article row
	// and flips the pending status in one transaction.
	Promote(pendingID string, reviewedAt time.Time) (string, error)
}

type CrawlLogRepository interface {
	InsertRunning(log CrawlLog) (string, error)
	Complete(id string, found, processed, saved int) error
	Fail(id string, found, processed, saved int) error
	ListRecent(limit int) ([]CrawlLog, error)
}
