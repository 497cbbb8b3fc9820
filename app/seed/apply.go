package seed

import (
	"fmt"
	"log/slog"

	"github.com/the-on/collector/app/database"
)

// Apply registers a loaded catalog in the database. Upserts keep the
// operation idempotent across restarts; a failing region is logged and
// skipped so one bad seed file cannot prevent startup.
func Apply(catalog *Catalog, catalogRepo database.CatalogRepository, sourceRepo database.SourceRepository) error {
	categoryIDs := make(map[string]string, len(catalog.Categories))

	for _, c := range catalog.Categories {
		id, err := catalogRepo.UpsertCategory(database.Category{
			Name:      c.Name,
			Slug:      c.Slug,
			Icon:      c.Icon,
			SortOrder: c.SortOrder,
			IsActive:  c.Active,
		})
		if err != nil {
			return fmt.Errorf("failed to register category %s: %w", c.Slug, err)
		}
		categoryIDs[c.Slug] = id
	}

	registered := 0
	for _, regionSeed := range catalog.Regions {
		if err := applyRegion(regionSeed, categoryIDs, catalogRepo, sourceRepo); err != nil {
			slog.Warn("Failed to register region seed", "region", regionSeed.Region.Slug, "error", err)
			continue
		}
		registered++
	}

	slog.Info("Catalog registered", "categories", len(catalog.Categories), "regions", registered)
	return nil
}

func applyRegion(regionSeed RegionSeed, categoryIDs map[string]string, catalogRepo database.CatalogRepository, sourceRepo database.SourceRepository) error {
	regionID, err := catalogRepo.UpsertRegion(database.Region{
		Name:     regionSeed.Region.Name,
		Slug:     regionSeed.Region.Slug,
		IsActive: regionSeed.Region.Active,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert region: %w", err)
	}

	for _, source := range regionSeed.Sources {
		feedType := source.FeedType
		if feedType == "" {
			feedType = "general"
		}

		var categoryID *string
		if source.Category != "" {
			if id, ok := categoryIDs[source.Category]; ok {
				categoryID = &id
			} else {
				slog.Warn("Source references unknown category", "source", source.Name, "category", source.Category)
			}
		}

		_, err := sourceRepo.UpsertSource(database.Source{
			RegionID:   regionID,
			Name:       source.Name,
			URL:        source.URL,
			FeedURL:    source.FeedURL,
			FeedType:   feedType,
			CategoryID: categoryID,
			IsActive:   source.Active,
		})
		if err != nil {
			return fmt.Errorf("failed to upsert source %s: %w", source.Name, err)
		}
	}

	for _, keyword := range regionSeed.Keywords {
		categoryID, ok := categoryIDs[keyword.Category]
		if !ok {
			slog.Warn("Keyword set references unknown category", "region", regionSeed.Region.Slug, "category", keyword.Category)
			continue
		}

		_, err := catalogRepo.UpsertKeywordSet(database.KeywordSet{
			RegionID:   regionID,
			CategoryID: categoryID,
			Keywords:   keyword.Terms,
			IsActive:   true,
		})
		if err != nil {
			return fmt.Errorf("failed to upsert keyword set for %s: %w", keyword.Category, err)
		}
	}

	if len(regionSeed.AutoCrawl.Hours) > 0 || regionSeed.AutoCrawl.Enabled {
		_, err := catalogRepo.UpsertAutoCrawlSetting(database.AutoCrawlSetting{
			RegionID:   regionID,
			CrawlHours: regionSeed.AutoCrawl.Hours,
			IsEnabled:  regionSeed.AutoCrawl.Enabled,
		})
		if err != nil {
			return fmt.Errorf("failed to upsert auto crawl setting: %w", err)
		}
	}

	return nil
}
