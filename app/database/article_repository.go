package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type ArticleRepo struct {
	db *DB
}

var _ ArticleRepository = (*ArticleRepo)(nil)

func NewArticleRepository(db *DB) *ArticleRepo {
	return &ArticleRepo{db: db}
}

const pendingColumns = `
	id, source_id, original_url, original_title, original_content,
	original_published_at, COALESCE(ai_summary, ''), ai_category_id,
	COALESCE(thumbnail_url, ''), region_id, COALESCE(search_query, ''),
	status, reviewed_at, created_at`

func (r *ArticleRepo) scanPending(row interface{ Scan(...any) error }) (*PendingArticle, error) {
	var a PendingArticle
	err := row.Scan(
		&a.ID, &a.SourceID, &a.OriginalURL, &a.OriginalTitle, &a.OriginalContent,
		&a.OriginalPublishedAt, &a.AISummary, &a.AICategoryID,
		&a.ThumbnailURL, &a.RegionID, &a.SearchQuery,
		&a.Status, &a.ReviewedAt, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetPendingByURL is the dedup lookup: exact match on the original URL.
func (r *ArticleRepo) GetPendingByURL(originalURL string) (*PendingArticle, error) {
	row := r.db.QueryRow(`
		SELECT `+pendingColumns+`
		FROM pending_articles
		WHERE original_url = ?
	`, originalURL)

	article, err := r.scanPending(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending article by url: %w", err)
	}

	return article, nil
}

func (r *ArticleRepo) GetPending(id string) (*PendingArticle, error) {
	row := r.db.QueryRow(`
		SELECT `+pendingColumns+`
		FROM pending_articles
		WHERE id = ?
	`, id)

	article, err := r.scanPending(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending article: %w", err)
	}

	return article, nil
}

func (r *ArticleRepo) InsertPending(article PendingArticle) (string, error) {
	id := uuid.NewString()
	status := article.Status
	if status == "" {
		status = StatusPending
	}

	_, err := r.db.Exec(`
		INSERT INTO pending_articles (
			id, source_id, original_url, original_title, original_content,
			original_published_at, ai_summary, ai_category_id, thumbnail_url,
			region_id, search_query, status, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, article.SourceID, article.OriginalURL, article.OriginalTitle, article.OriginalContent,
		article.OriginalPublishedAt, article.AISummary, article.AICategoryID, article.ThumbnailURL,
		article.RegionID, article.SearchQuery, status, time.Now().UTC())

	if err != nil {
		return "", fmt.Errorf("failed to insert pending article: %w", err)
	}

	return id, nil
}

func (r *ArticleRepo) ListPending(regionID, status string, limit int) ([]PendingArticle, error) {
	query := `SELECT ` + pendingColumns + ` FROM pending_articles WHERE 1 = 1`
	var args []any

	if regionID != "" {
		query += ` AND region_id = ?`
		args = append(args, regionID)
	}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}

	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending articles: %w", err)
	}
	defer rows.Close()

	var articles []PendingArticle
	for rows.Next() {
		article, err := r.scanPending(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pending article row: %w", err)
		}
		articles = append(articles, *article)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pending article rows: %w", err)
	}

	return articles, nil
}

func (r *ArticleRepo) UpdatePendingStatus(id, status string, reviewedAt time.Time) error {
	result, err := r.db.Exec(`
		UPDATE pending_articles SET status = ?, reviewed_at = ? WHERE id = ?
	`, status, reviewedAt.UTC(), id)

	if err != nil {
		return fmt.Errorf("failed to update pending article status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("pending article %s not found", id)
	}

	return nil
}

func (r *ArticleRepo) Promote(pendingID string, reviewedAt time.Time) (string, error) {
	pending, err := r.GetPending(pendingID)
	if err != nil {
		return "", err
	}
	if pending == nil {
		return "", fmt.Errorf("pending article %s not found", pendingID)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sourceType := SourceTypeCrawled
	content := ""
	if pending.OriginalContent != nil && *pending.OriginalContent != "" {
		sourceType = SourceTypePublic
		content = *pending.OriginalContent
	}

	articleID := uuid.NewString()
	now := time.Now().UTC()
	_, err = tx.Exec(`
		INSERT INTO articles (
			id, title, summary, content, source_url, source_type, thumbnail_url,
			category_id, region_id, is_active, published_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
	`, articleID, pending.OriginalTitle, pending.AISummary, content, pending.OriginalURL,
		sourceType, pending.ThumbnailURL, pending.AICategoryID, pending.RegionID, now, now)
	if err != nil {
		return "", fmt.Errorf("failed to insert article: %w", err)
	}

	_, err = tx.Exec(`
		UPDATE pending_articles SET status = ?, reviewed_at = ? WHERE id = ?
	`, StatusApproved, reviewedAt.UTC(), pendingID)
	if err != nil {
		return "", fmt.Errorf("failed to update pending article status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit promotion: %w", err)
	}

	return articleID, nil
}
