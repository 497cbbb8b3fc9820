package api

import (
	"time"

	"github.com/the-on/collector/app/crawl"
	"github.com/the-on/collector/app/database"
)

type Handler struct {
	runner   *crawl.Runner
	catalog  database.CatalogRepository
	articles database.ArticleRepository
	logs     database.CrawlLogRepository
}

// CrawlRequest is the JSON body accepted by POST /api/crawl.
type CrawlRequest struct {
	Action     string `json:"action" binding:"required"`
	RegionID   string `json:"regionId" binding:"required"`
	CategoryID string `json:"categoryId"`
	Query      string `json:"query"`
	TimeRange  string `json:"timeRange"`
}

type CrawlResponse struct {
	Success        bool   `json:"success"`
	Action         string `json:"action"`
	RegionID       string `json:"regionId"`
	TotalFound     int    `json:"totalFound"`
	TotalProcessed int    `json:"totalProcessed"`
	TotalSaved     int    `json:"totalSaved"`
}

type pendingArticleResponse struct {
	ID           string     `json:"id"`
	OriginalURL  string     `json:"originalUrl"`
	Title        string     `json:"title"`
	Summary      string     `json:"summary"`
	CategoryID   *string    `json:"categoryId"`
	ThumbnailURL string     `json:"thumbnailUrl,omitempty"`
	RegionID     string     `json:"regionId"`
	SearchQuery  string     `json:"searchQuery,omitempty"`
	Status       string     `json:"status"`
	PublishedAt  *time.Time `json:"publishedAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

type crawlLogResponse struct {
	ID             string     `json:"id"`
	Type           string     `json:"type"`
	RegionID       string     `json:"regionId"`
	CategoryID     *string    `json:"categoryId"`
	SearchQuery    string     `json:"searchQuery,omitempty"`
	TotalFound     int        `json:"totalFound"`
	TotalProcessed int        `json:"totalProcessed"`
	TotalSaved     int        `json:"totalSaved"`
	Status         string     `json:"status"`
	StartedAt      time.Time  `json:"startedAt"`
	CompletedAt    *time.Time `json:"completedAt"`
}

func toPendingResponse(a database.PendingArticle) pendingArticleResponse {
	return pendingArticleResponse{
		ID:           a.ID,
		OriginalURL:  a.OriginalURL,
		Title:        a.OriginalTitle,
		Summary:      a.AISummary,
		CategoryID:   a.AICategoryID,
		ThumbnailURL: a.ThumbnailURL,
		RegionID:     a.RegionID,
		SearchQuery:  a.SearchQuery,
		Status:       a.Status,
		PublishedAt:  a.OriginalPublishedAt,
		CreatedAt:    a.CreatedAt,
	}
}

func toLogResponse(l database.CrawlLog) crawlLogResponse {
	return crawlLogResponse{
		ID:             l.ID,
		Type:           l.Type,
		RegionID:       l.RegionID,
		CategoryID:     l.CategoryID,
		SearchQuery:    l.SearchQuery,
		TotalFound:     l.TotalFound,
		TotalProcessed: l.TotalProcessed,
		TotalSaved:     l.TotalSaved,
		Status:         l.Status,
		StartedAt:      l.StartedAt,
		CompletedAt:    l.CompletedAt,
	}
}
