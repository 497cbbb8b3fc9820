package seed

// Catalog is the aggregated content of a seed directory: the global
// category set plus one entry per region file.
type Catalog struct {
	Categories []CategorySeed
	Regions    []RegionSeed
}

type CategorySeed struct {
	Name      string `yaml:"name"`
	Slug      string `yaml:"slug"`
	Icon      string `yaml:"icon"`
	SortOrder int    `yaml:"sort_order"`
	Active    bool   `yaml:"active"`
}

// RegionSeed describes one region and everything registered under it.
type RegionSeed struct {
	Region struct {
		Name   string `yaml:"name"`
		Slug   string `yaml:"slug"`
		Active bool   `yaml:"active"`
	} `yaml:"region"`
	Sources   []SourceSeed  `yaml:"sources"`
	Keywords  []KeywordSeed `yaml:"keywords"`
	AutoCrawl struct {
		Enabled bool     `yaml:"enabled"`
		Hours   []string `yaml:"hours"`
	} `yaml:"auto_crawl"`
}

type SourceSeed struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	FeedURL  string `yaml:"feed_url"`
	FeedType string `yaml:"feed_type"`
	Category string `yaml:"category"` // category slug, optional
	Active   bool   `yaml:"active"`
}

type KeywordSeed struct {
	Category string   `yaml:"category"` // category slug
	Terms    []string `yaml:"terms"`
}

type categoriesFile struct {
	Categories []CategorySeed `yaml:"categories"`
}
