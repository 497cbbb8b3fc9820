package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/the-on/collector/app/cfg"
	"github.com/the-on/collector/app/crawl"
	"github.com/the-on/collector/app/database"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

// crawlWindowTolerance is how far a configured crawl hour may be from the
// current tick and still fire. It must stay wider than the tick interval
// or windows get skipped; last_run_at guards against double firing.
const (
	crawlWindowTolerance = 15 * time.Minute
	rerunGuard           = 30 * time.Minute
	taskTimeout          = 15 * time.Minute
)

type Scheduler struct {
	catalog     database.CatalogRepository
	runner      *crawl.Runner
	interval    time.Duration
	workerCount int
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface
}

func NewScheduler(catalog database.CatalogRepository, runner *crawl.Runner) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		catalog:     catalog,
		runner:      runner,
		interval:    time.Duration(cfg.SchedulerInterval) * time.Second,
		workerCount: cfg.WorkerCount,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 100),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueDueTasks()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

// enqueueDueTasks fires an autonomous collection run for every region
// whose configured crawl hours match the current local time.
func (s *Scheduler) enqueueDueTasks() {
	settings, err := s.catalog.ListEnabledAutoCrawlSettings()
	if err != nil {
		slog.Warn("Failed to load auto crawl settings", "error", err)
		return
	}

	now := time.Now()
	for _, setting := range settings {
		if !dueNow(setting, now) {
			continue
		}

		task := NewCrawlTask(crawl.Request{
			Action:   crawl.ActionAuto,
			RegionID: setting.RegionID,
		}, setting.ID, s.runner, s.catalog)

		if err := s.EnqueueTask(task); err != nil {
			slog.Warn("Failed to enqueue CrawlTask", "region_id", setting.RegionID, "error", err)
			continue
		}

		slog.Info("Scheduled auto collection", "region_id", setting.RegionID, "time", now.Format("15:04"))
	}
}

func dueNow(setting database.AutoCrawlSetting, now time.Time) bool {
	if setting.LastRunAt != nil && now.Sub(*setting.LastRunAt) < rerunGuard {
		return false
	}

	for _, hour := range setting.CrawlHours {
		if withinWindow(hour, now) {
			return true
		}
	}

	return false
}

// withinWindow reports whether the "HH:MM" target is within the tolerance
// of the current local time.
func withinWindow(target string, now time.Time) bool {
	parts := strings.SplitN(target, ":", 2)
	if len(parts) != 2 {
		return false
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return false
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return false
	}

	targetTotal := hour*60 + minute
	currentTotal := now.Hour()*60 + now.Minute()

	diff := targetTotal - currentTotal
	if diff < 0 {
		diff = -diff
	}

	return time.Duration(diff)*time.Minute <= crawlWindowTolerance
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, taskTimeout)
	defer cancel()

	err := task.Execute(taskCtx)
	if err == nil {
		return
	}

	slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

	if !task.CanRetry() {
		slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		return
	}

	task.IncrementRetryCount()
	retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
	if retryDelay > 30*time.Second {
		retryDelay = 30 * time.Second
	}

	slog.Warn("Task retry scheduled", "type", string(task.GetType()), "region_id", task.GetRegionID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

	go func() {
		time.Sleep(retryDelay)
		select {
		case <-s.ctx.Done():
			slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
			return
		default:
			if retryErr := s.EnqueueTask(task); retryErr != nil {
				slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
			}
		}
	}()
}
