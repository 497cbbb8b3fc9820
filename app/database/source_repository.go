package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type SourceRepo struct {
	db *DB
}

var _ SourceRepository = (*SourceRepo)(nil)

func NewSourceRepository(db *DB) *SourceRepo {
	return &SourceRepo{db: db}
}

// ListActiveRSSSources returns the active RSS-typed sources for a region.
// Sources without a feed URL are excluded; there is nothing to fetch.
func (r *SourceRepo) ListActiveRSSSources(regionID string) ([]Source, error) {
	rows, err := r.db.Query(`
		SELECT id, region_id, name, url, COALESCE(feed_url, ''), feed_type,
		       category_id, is_active, last_crawled_at, created_at
		FROM sources
		WHERE region_id = ? AND feed_type = 'rss' AND is_active = 1 AND feed_url != ''
		ORDER BY name
	`, regionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rss sources: %w", err)
	}
	defer rows.Close()

	var sources []Source
	for rows.Next() {
		var s Source
		err := rows.Scan(
			&s.ID, &s.RegionID, &s.Name, &s.URL, &s.FeedURL, &s.FeedType,
			&s.CategoryID, &s.IsActive, &s.LastCrawledAt, &s.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan source row: %w", err)
		}
		sources = append(sources, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating source rows: %w", err)
	}

	return sources, nil
}

func (r *SourceRepo) UpdateLastCrawled(sourceID string, crawledAt time.Time) error {
	_, err := r.db.Exec(`
		UPDATE sources SET last_crawled_at = ? WHERE id = ?
	`, crawledAt.UTC(), sourceID)

	if err != nil {
		return fmt.Errorf("failed to update source last crawled: %w", err)
	}

	return nil
}

func (r *SourceRepo) UpsertSource(source Source) (string, error) {
	var existingID string
	err := r.db.QueryRow(`
		SELECT id FROM sources WHERE region_id = ? AND url = ?
	`, source.RegionID, source.URL).Scan(&existingID)
	if err != nil && err != sql.ErrNoRows {
		return "", fmt.Errorf("failed to check existing source: %w", err)
	}

	if err == nil {
		_, err = r.db.Exec(`
			UPDATE sources
			SET name = ?, feed_url = ?, feed_type = ?, category_id = ?, is_active = ?
			WHERE id = ?
		`, source.Name, source.FeedURL, source.FeedType, source.CategoryID, source.IsActive, existingID)
		if err != nil {
			return "", fmt.Errorf("failed to update source: %w", err)
		}
		return existingID, nil
	}

	id := uuid.NewString()
	_, err = r.db.Exec(`
		INSERT INTO sources (id, region_id, name, url, feed_url, feed_type, category_id, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, source.RegionID, source.Name, source.URL, source.FeedURL, source.FeedType,
		source.CategoryID, source.IsActive, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("failed to insert source: %w", err)
	}

	return id, nil
}
