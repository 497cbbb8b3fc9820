package crawl

import (
	"context"
	"log/slog"

	"github.com/the-on/collector/app/database"
)

// SearchStrategy produces candidates from one web search. The query is the
// admin-supplied one, or is built from the region's configured keywords for
// the selected category, or falls back to a generic regional news query.
type SearchStrategy struct {
	searcher   Searcher
	catalog    database.CatalogRepository
	query      string
	categoryID string
	timeRange  string
}

func NewSearchStrategy(searcher Searcher, catalog database.CatalogRepository, query, categoryID, timeRange string) *SearchStrategy {
	if !ValidTimeRange(timeRange) {
		timeRange = TimeRangeWeek
	}
	return &SearchStrategy{
		searcher:   searcher,
		catalog:    catalog,
		query:      query,
		categoryID: categoryID,
		timeRange:  timeRange,
	}
}

func (s *SearchStrategy) Name() string {
	return string(ActionSearch)
}

func (s *SearchStrategy) Collect(ctx context.Context, region *database.Region) ([]Candidate, error) {
	query, err := s.resolveQuery(region)
	if err != nil {
		return nil, err
	}

	slog.Info("Searching", "query", query, "time_range", s.timeRange)

	results, err := s.searcher.Search(ctx, query, s.timeRange)
	if err != nil {
		// Best-effort upstream: an empty search is zero candidates.
		slog.Warn("Search failed", "query", query, "error", err)
		return nil, nil
	}

	var categoryID *string
	if s.categoryID != "" {
		categoryID = &s.categoryID
	}

	candidates := make([]Candidate, 0, len(results))
	for _, result := range results {
		candidates = append(candidates, Candidate{
			URL:         result.URL,
			Title:       result.Title,
			Snippet:     result.Snippet,
			Content:     result.Content,
			Thumbnail:   result.Thumbnail,
			CategoryID:  categoryID,
			SearchQuery: query,
		})
	}

	return candidates, nil
}

func (s *SearchStrategy) resolveQuery(region *database.Region) (string, error) {
	if s.query != "" {
		return s.query, nil
	}

	if s.categoryID != "" {
		sets, err := s.catalog.ListActiveKeywordSets(region.ID)
		if err != nil {
			return "", err
		}
		for _, set := range sets {
			if set.CategoryID == s.categoryID && len(set.Keywords) > 0 {
				return region.Name + " " + set.Keywords[0], nil
			}
		}
	}

	return region.Name + " 뉴스", nil
}
