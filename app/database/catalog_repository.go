package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CatalogRepo provides read access to the region/category/keyword catalog
// and the auto-crawl schedule. Catalog rows are written only during seeding.
type CatalogRepo struct {
	db *DB
}

var _ CatalogRepository = (*CatalogRepo)(nil)

func NewCatalogRepository(db *DB) *CatalogRepo {
	return &CatalogRepo{db: db}
}

func (r *CatalogRepo) GetRegion(id string) (*Region, error) {
	return r.getRegion("id = ?", id)
}

func (r *CatalogRepo) GetRegionBySlug(slug string) (*Region, error) {
	return r.getRegion("slug = ?", slug)
}

func (r *CatalogRepo) getRegion(where string, arg string) (*Region, error) {
	var region Region
	err := r.db.QueryRow(`
		SELECT id, name, slug, is_active, created_at
		FROM regions
		WHERE `+where, arg).Scan(
		&region.ID, &region.Name, &region.Slug, &region.IsActive, &region.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get region: %w", err)
	}

	return &region, nil
}

func (r *CatalogRepo) ListActiveCategories() ([]Category, error) {
	rows, err := r.db.Query(`
		SELECT id, name, slug, COALESCE(icon, ''), sort_order, is_active, created_at
		FROM categories
		WHERE is_active = 1
		ORDER BY sort_order, name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Icon, &c.SortOrder, &c.IsActive, &c.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category rows: %w", err)
	}

	return categories, nil
}

func (r *CatalogRepo) ListActiveKeywordSets(regionID string) ([]KeywordSet, error) {
	rows, err := r.db.Query(`
		SELECT id, region_id, category_id, keywords, is_active, created_at
		FROM search_keywords
		WHERE region_id = ? AND is_active = 1
		ORDER BY created_at
	`, regionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list keyword sets: %w", err)
	}
	defer rows.Close()

	var sets []KeywordSet
	for rows.Next() {
		var set KeywordSet
		var keywordsJSON string
		err := rows.Scan(&set.ID, &set.RegionID, &set.CategoryID, &keywordsJSON, &set.IsActive, &set.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan keyword set row: %w", err)
		}
		if err := json.Unmarshal([]byte(keywordsJSON), &set.Keywords); err != nil {
			return nil, fmt.Errorf("failed to decode keywords for set %s: %w", set.ID, err)
		}
		sets = append(sets, set)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating keyword set rows: %w", err)
	}

	return sets, nil
}

func (r *CatalogRepo) UpsertRegion(region Region) (string, error) {
	existing, err := r.GetRegionBySlug(region.Slug)
	if err != nil {
		return "", fmt.Errorf("failed to check existing region: %w", err)
	}

	if existing != nil {
		_, err = r.db.Exec(`
			UPDATE regions SET name = ?, is_active = ? WHERE id = ?
		`, region.Name, region.IsActive, existing.ID)
		if err != nil {
			return "", fmt.Errorf("failed to update region: %w", err)
		}
		return existing.ID, nil
	}

	id := uuid.NewString()
	_, err = r.db.Exec(`
		INSERT INTO regions (id, name, slug, is_active, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, id, region.Name, region.Slug, region.IsActive, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("failed to insert region: %w", err)
	}

	return id, nil
}

func (r *CatalogRepo) UpsertCategory(category Category) (string, error) {
	var existingID string
	err := r.db.QueryRow(`SELECT id FROM categories WHERE slug = ?`, category.Slug).Scan(&existingID)
	if err != nil && err != sql.ErrNoRows {
		return "", fmt.Errorf("failed to check existing category: %w", err)
	}

	if err == nil {
		_, err = r.db.Exec(`
			UPDATE categories SET name = ?, icon = ?, sort_order = ?, is_active = ? WHERE id = ?
		`, category.Name, category.Icon, category.SortOrder, category.IsActive, existingID)
		if err != nil {
			return "", fmt.Errorf("failed to update category: %w", err)
		}
		return existingID, nil
	}

	id := uuid.NewString()
	_, err = r.db.Exec(`
		INSERT INTO categories (id, name, slug, icon, sort_order, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, category.Name, category.Slug, category.Icon, category.SortOrder, category.IsActive, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("failed to insert category: %w", err)
	}

	return id, nil
}

func (r *CatalogRepo) UpsertKeywordSet(set KeywordSet) (string, error) {
	keywordsJSON, err := json.Marshal(set.Keywords)
	if err != nil {
		return "", fmt.Errorf("failed to encode keywords: %w", err)
	}

	var existingID string
	err = r.db.QueryRow(`
		SELECT id FROM search_keywords WHERE region_id = ? AND category_id = ?
	`, set.RegionID, set.CategoryID).Scan(&existingID)
	if err != nil && err != sql.ErrNoRows {
		return "", fmt.Errorf("failed to check existing keyword set: %w", err)
	}

	if err == nil {
		_, err = r.db.Exec(`
			UPDATE search_keywords SET keywords = ?, is_active = ? WHERE id = ?
		`, string(keywordsJSON), set.IsActive, existingID)
		if err != nil {
			return "", fmt.Errorf("failed to update keyword set: %w", err)
		}
		return existingID, nil
	}

	id := uuid.NewString()
	_, err = r.db.Exec(`
		INSERT INTO search_keywords (id, region_id, category_id, keywords, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, set.RegionID, set.CategoryID, string(keywordsJSON), set.IsActive, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("failed to insert keyword set: %w", err)
	}

	return id, nil
}

func (r *CatalogRepo) ListEnabledAutoCrawlSettings() ([]AutoCrawlSetting, error) {
	rows, err := r.db.Query(`
		SELECT id, region_id, crawl_hours, is_enabled, last_run_at, created_at
		FROM auto_crawl_settings
		WHERE is_enabled = 1
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list auto crawl settings: %w", err)
	}
	defer rows.Close()

	var settings []AutoCrawlSetting
	for rows.Next() {
		var s AutoCrawlSetting
		var hoursJSON string
		err := rows.Scan(&s.ID, &s.RegionID, &hoursJSON, &s.IsEnabled, &s.LastRunAt, &s.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan auto crawl setting row: %w", err)
		}
		if err := json.Unmarshal([]byte(hoursJSON), &s.CrawlHours); err != nil {
			return nil, fmt.Errorf("failed to decode crawl hours for setting %s: %w", s.ID, err)
		}
		settings = append(settings, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating auto crawl setting rows: %w", err)
	}

	return settings, nil
}

func (r *CatalogRepo) UpsertAutoCrawlSetting(setting AutoCrawlSetting) (string, error) {
	hoursJSON, err := json.Marshal(setting.CrawlHours)
	if err != nil {
		return "", fmt.Errorf("failed to encode crawl hours: %w", err)
	}

	var existingID string
	err = r.db.QueryRow(`
		SELECT id FROM auto_crawl_settings WHERE region_id = ?
	`, setting.RegionID).Scan(&existingID)
	if err != nil && err != sql.ErrNoRows {
		return "", fmt.Errorf("failed to check existing auto crawl setting: %w", err)
	}

	if err == nil {
		_, err = r.db.Exec(`
			UPDATE auto_crawl_settings SET crawl_hours = ?, is_enabled = ? WHERE id = ?
		`, string(hoursJSON), setting.IsEnabled, existingID)
		if err != nil {
			return "", fmt.Errorf("failed to update auto crawl setting: %w", err)
		}
		return existingID, nil
	}

	id := uuid.NewString()
	_, err = r.db.Exec(`
		INSERT INTO auto_crawl_settings (id, region_id, crawl_hours, is_enabled, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, id, setting.RegionID, string(hoursJSON), setting.IsEnabled, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("failed to insert auto crawl setting: %w", err)
	}

	return id, nil
}

func (r *CatalogRepo) UpdateAutoCrawlLastRun(id string, runAt time.Time) error {
	_, err := r.db.Exec(`
		UPDATE auto_crawl_settings SET last_run_at = ? WHERE id = ?
	`, runAt.UTC(), id)

	if err != nil {
		return fmt.Errorf("failed to update auto crawl last run: %w", err)
	}

	return nil
}
