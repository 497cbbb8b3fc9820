package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/the-on/collector/app/crawl"
	"github.com/the-on/collector/app/database"
)

func NewHandler(runner *crawl.Runner, catalog database.CatalogRepository,
	articles database.ArticleRepository, logs database.CrawlLogRepository) *Handler {
	return &Handler{
		runner:   runner,
		catalog:  catalog,
		articles: articles,
		logs:     logs,
	}
}

// PostCrawl triggers a collection run synchronously and returns its counts.
func (h *Handler) PostCrawl(c *gin.Context) {
	var req CrawlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if req.TimeRange != "" && !crawl.ValidTimeRange(req.TimeRange) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid time range", "details": req.TimeRange})
		return
	}

	result, err := h.runner.Run(c.Request.Context(), crawl.Request{
		Action:     crawl.Action(req.Action),
		RegionID:   req.RegionID,
		CategoryID: req.CategoryID,
		Query:      req.Query,
		TimeRange:  req.TimeRange,
	})
	if err != nil {
		if errors.Is(err, crawl.ErrInvalidAction) || errors.Is(err, crawl.ErrRegionNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		slog.Error("Collection run failed", "action", req.Action, "region_id", req.RegionID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Collection run failed", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, CrawlResponse{
		Success:        true,
		Action:         req.Action,
		RegionID:       req.RegionID,
		TotalFound:     result.TotalFound,
		TotalProcessed: result.TotalProcessed,
		TotalSaved:     result.TotalSaved,
	})
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if categories, err := h.catalog.ListActiveCategories(); err == nil {
		health["categories"] = len(categories)
	}

	if logs, err := h.logs.ListRecent(1); err == nil && len(logs) > 0 {
		health["last_run_at"] = logs[0].StartedAt
		health["last_run_status"] = logs[0].Status
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) APIListLogs(c *gin.Context) {
	limit := parseLimit(c.Query("limit"), 50)

	logs, err := h.logs.ListRecent(limit)
	if err != nil {
		slog.Error("Database error", "operation", "list_logs", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	out := make([]crawlLogResponse, 0, len(logs))
	for _, l := range logs {
		out = append(out, toLogResponse(l))
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"logs":  out,
		"total": len(out),
	})
}

func (h *Handler) APIListPending(c *gin.Context) {
	regionID := c.Query("regionId")
	status := c.DefaultQuery("status", database.StatusPending)
	limit := parseLimit(c.Query("limit"), 100)

	articles, err := h.articles.ListPending(regionID, status, limit)
	if err != nil {
		slog.Error("Database error", "operation", "list_pending", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	out := make([]pendingArticleResponse, 0, len(articles))
	for _, a := range articles {
		out = append(out, toPendingResponse(a))
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"articles": out,
		"total":    len(out),
	})
}

// APIApprovePending publishes a reviewed pending article as a live article.
func (h *Handler) APIApprovePending(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing article id parameter"})
		return
	}

	pending, err := h.articles.GetPending(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_pending", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if pending == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Pending article not found"})
		return
	}
	if pending.Status != database.StatusPending {
		c.JSON(http.StatusConflict, gin.H{"error": "Article already reviewed", "status": pending.Status})
		return
	}

	articleID, err := h.articles.Promote(id, time.Now().UTC())
	if err != nil {
		slog.Error("Failed to promote pending article", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to publish article", "details": err.Error()})
		return
	}

	slog.Info("Pending article approved", "id", id, "article_id", articleID)

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"id":        id,
		"articleId": articleID,
		"status":    database.StatusApproved,
	})
}

func (h *Handler) APIRejectPending(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing article id parameter"})
		return
	}

	pending, err := h.articles.GetPending(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_pending", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if pending == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Pending article not found"})
		return
	}
	if pending.Status != database.StatusPending {
		c.JSON(http.StatusConflict, gin.H{"error": "Article already reviewed", "status": pending.Status})
		return
	}

	if err := h.articles.UpdatePendingStatus(id, database.StatusRejected, time.Now().UTC()); err != nil {
		slog.Error("Failed to reject pending article", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reject article", "details": err.Error()})
		return
	}

	slog.Info("Pending article rejected", "id", id)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"id":      id,
		"status":  database.StatusRejected,
	})
}

func parseLimit(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
