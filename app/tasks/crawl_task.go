package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/the-on/collector/app/crawl"
	"github.com/the-on/collector/app/database"
)

// CrawlTask executes one collection run in the background. Scheduled auto
// runs carry their auto_crawl_settings row id so last_run_at can be stamped
// after a successful run.
type CrawlTask struct {
	Task
	Request   crawl.Request
	SettingID string
	runner    *crawl.Runner
	catalog   database.CatalogRepository
}

func NewCrawlTask(request crawl.Request, settingID string, runner *crawl.Runner, catalog database.CatalogRepository) *CrawlTask {
	return &CrawlTask{
		Task:      NewTask(TaskTypeCrawl, request.RegionID),
		Request:   request,
		SettingID: settingID,
		runner:    runner,
		catalog:   catalog,
	}
}

func (t *CrawlTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	result, err := t.runner.Run(ctx, t.Request)
	if err != nil {
		return fmt.Errorf("collection run failed: %w", err)
	}

	if t.SettingID != "" {
		if err := t.catalog.UpdateAutoCrawlLastRun(t.SettingID, time.Now()); err != nil {
			slog.Warn("Failed to stamp auto crawl last run", "setting_id", t.SettingID, "error", err)
		}
	}

	slog.Info("Task completed",
		"type", "Crawl",
		"action", t.Request.Action,
		"region_id", t.Request.RegionID,
		"duration", t.GetDuration(),
		"found", result.TotalFound,
		"processed", result.TotalProcessed,
		"saved", result.TotalSaved)

	return nil
}
