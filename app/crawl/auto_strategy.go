package crawl

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/the-on/collector/app/database"
)

// AutoStrategy drives scheduled autonomous collection: one search per
// active keyword set of the region, always over the last 24 hours. Each
// candidate carries the keyword set's category, so AI classification is
// bypassed. Only the first keyword of a set is used when building the
// query; the rest of the list is deliberately ignored to match the
// established collection behavior.
type AutoStrategy struct {
	searcher Searcher
	catalog  database.CatalogRepository
}

func NewAutoStrategy(searcher Searcher, catalog database.CatalogRepository) *AutoStrategy {
	return &AutoStrategy{
		searcher: searcher,
		catalog:  catalog,
	}
}

func (s *AutoStrategy) Name() string {
	return string(ActionAuto)
}

func (s *AutoStrategy) Collect(ctx context.Context, region *database.Region) ([]Candidate, error) {
	sets, err := s.catalog.ListActiveKeywordSets(region.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load keyword sets: %w", err)
	}

	var candidates []Candidate
	for _, set := range sets {
		if len(set.Keywords) == 0 {
			continue
		}

		query := region.Name + " " + set.Keywords[0]
		slog.Info("Auto searching", "query", query, "category_id", set.CategoryID)

		results, err := s.searcher.Search(ctx, query, TimeRangeDay)
		if err != nil {
			slog.Warn("Auto search failed", "query", query, "error", err)
			continue
		}

		categoryID := set.CategoryID
		for _, result := range results {
			candidates = append(candidates, Candidate{
				URL:         result.URL,
				Title:       result.Title,
				Snippet:     result.Snippet,
				Content:     result.Content,
				Thumbnail:   result.Thumbnail,
				CategoryID:  &categoryID,
				SearchQuery: query,
			})
		}
	}

	return candidates, nil
}
