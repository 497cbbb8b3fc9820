// Package seed loads the catalog (categories, regions, sources, keyword
// sets, auto-crawl schedules) from YAML files and registers it in the
// database at startup. The catalog is read-only input to the pipeline;
// these files are its source of truth.
package seed

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// categoriesFileName holds the global category set; every other *.yml file
// in the seed directory describes one region.
const categoriesFileName = "categories.yml"

type Loader struct {
	seedDir string
}

func NewLoader(seedDir string) *Loader {
	return &Loader{seedDir: seedDir}
}

// LoadAll reads the seed directory. A missing directory yields an empty
// catalog, not an error, so the service can start against an already
// seeded database.
func (l *Loader) LoadAll() (*Catalog, error) {
	catalog := &Catalog{}

	if _, err := os.Stat(l.seedDir); os.IsNotExist(err) {
		return catalog, nil
	}

	files, err := filepath.Glob(filepath.Join(l.seedDir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to find seed files: %w", err)
	}

	yamlFiles, err := filepath.Glob(filepath.Join(l.seedDir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to find seed files: %w", err)
	}
	files = append(files, yamlFiles...)

	for _, file := range files {
		if filepath.Base(file) == categoriesFileName {
			categories, err := l.loadCategories(file)
			if err != nil {
				return nil, fmt.Errorf("error loading %s: %w", file, err)
			}
			catalog.Categories = categories
			continue
		}

		region, err := l.loadRegion(file)
		if err != nil {
			return nil, fmt.Errorf("error loading %s: %w", file, err)
		}
		if err := l.validateRegion(region); err != nil {
			return nil, fmt.Errorf("invalid seed %s: %w", file, err)
		}

		catalog.Regions = append(catalog.Regions, *region)
		slog.Debug("Loaded region seed", "file", file, "slug", region.Region.Slug)
	}

	return catalog, nil
}

func (l *Loader) loadCategories(path string) ([]CategorySeed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var parsed categoriesFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	for i, c := range parsed.Categories {
		if c.Name == "" || c.Slug == "" {
			return nil, fmt.Errorf("category %d: name and slug are required", i)
		}
	}

	return parsed.Categories, nil
}

func (l *Loader) loadRegion(path string) (*RegionSeed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var region RegionSeed
	if err := yaml.Unmarshal(data, &region); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return &region, nil
}

func (l *Loader) validateRegion(region *RegionSeed) error {
	if region.Region.Name == "" {
		return fmt.Errorf("region name is required")
	}
	if region.Region.Slug == "" {
		return fmt.Errorf("region slug is required")
	}

	for i, source := range region.Sources {
		if source.Name == "" || source.URL == "" {
			return fmt.Errorf("source %d: name and url are required", i)
		}
		switch source.FeedType {
		case "rss", "api", "general", "":
		default:
			return fmt.Errorf("source %d: unknown feed type %q", i, source.FeedType)
		}
		if source.FeedType == "rss" && source.FeedURL == "" {
			return fmt.Errorf("source %d: rss source requires feed_url", i)
		}
	}

	for i, keyword := range region.Keywords {
		if keyword.Category == "" {
			return fmt.Errorf("keyword set %d: category is required", i)
		}
		if len(keyword.Terms) == 0 {
			return fmt.Errorf("keyword set %d: at least one term is required", i)
		}
	}

	return nil
}
