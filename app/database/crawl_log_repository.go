package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type CrawlLogRepo struct {
	db *DB
}

var _ CrawlLogRepository = (*CrawlLogRepo)(nil)

func NewCrawlLogRepository(db *DB) *CrawlLogRepo {
	return &CrawlLogRepo{db: db}
}

// InsertRunning creates the audit row for a run before any candidate is
// touched. Counts start at zero and are finalized by Complete or Fail.
func (r *CrawlLogRepo) InsertRunning(log CrawlLog) (string, error) {
	id := uuid.NewString()

	_, err := r.db.Exec(`
		INSERT INTO crawl_logs (id, type, region_id, category_id, search_query, status, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, log.Type, log.RegionID, log.CategoryID, log.SearchQuery, RunStatusRunning, time.Now().UTC())

	if err != nil {
		return "", fmt.Errorf("failed to insert crawl log: %w", err)
	}

	return id, nil
}

func (r *CrawlLogRepo) Complete(id string, found, processed, saved int) error {
	return r.finalize(id, RunStatusCompleted, found, processed, saved)
}

func (r *CrawlLogRepo) Fail(id string, found, processed, saved int) error {
	return r.finalize(id, RunStatusFailed, found, processed, saved)
}

func (r *CrawlLogRepo) finalize(id, status string, found, processed, saved int) error {
	_, err := r.db.Exec(`
		UPDATE crawl_logs
		SET total_found = ?, total_processed = ?, total_saved = ?, status = ?, completed_at = ?
		WHERE id = ?
	`, found, processed, saved, status, time.Now().UTC(), id)

	if err != nil {
		return fmt.Errorf("failed to finalize crawl log: %w", err)
	}

	return nil
}

func (r *CrawlLogRepo) ListRecent(limit int) ([]CrawlLog, error) {
	rows, err := r.db.Query(`
		SELECT id, type, region_id, category_id, COALESCE(search_query, ''),
		       total_found, total_processed, total_saved, status, started_at, completed_at
		FROM crawl_logs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list crawl logs: %w", err)
	}
	defer rows.Close()

	var logs []CrawlLog
	for rows.Next() {
		var l CrawlLog
		err := rows.Scan(
			&l.ID, &l.Type, &l.RegionID, &l.CategoryID, &l.SearchQuery,
			&l.TotalFound, &l.TotalProcessed, &l.TotalSaved, &l.Status,
			&l.StartedAt, &l.CompletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan crawl log row: %w", err)
		}
		logs = append(logs, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating crawl log rows: %w", err)
	}

	return logs, nil
}
