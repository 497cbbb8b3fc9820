package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Database configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./collector.db" description:"Path to the SQLite database file"`

	// Application configuration
	SeedDir           string `long:"seed-dir" env:"SEED_DIR" default:"./seed" description:"Directory containing catalog seed files (regions, categories, sources, keywords)"`
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"3" description:"Number of background workers for crawl tasks"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"300" description:"Auto-crawl scheduler tick interval in seconds"`
	APIAccessKey      string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// External services
	FirecrawlURL    string `long:"firecrawl-url" env:"FIRECRAWL_URL" default:"https://api.firecrawl.dev/v1" description:"Base URL of the search/scrape service"`
	FirecrawlAPIKey string `long:"firecrawl-api-key" env:"FIRECRAWL_API_KEY" description:"API key for the search/scrape service (required)" required:"true"`
	LLMURL          string `long:"llm-url" env:"LLM_URL" default:"https://api.anthropic.com/v1/messages" description:"Completion endpoint URL"`
	LLMAPIKey       string `long:"llm-api-key" env:"LLM_API_KEY" description:"API key for the completion endpoint (required)" required:"true"`
	LLMModel        string `long:"llm-model" env:"LLM_MODEL" default:"claude-sonnet-4-20250514" description:"Model identifier for the completion endpoint"`

	// Pipeline tuning
	RequestTimeout int `long:"request-timeout" env:"REQUEST_TIMEOUT" default:"20" description:"Timeout for a single external call in seconds"`
	RunDeadline    int `long:"run-deadline" env:"RUN_DEADLINE" default:"600" description:"Overall budget for one collection run in seconds"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"TheOn Collector/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"Asia/Seoul" description:"Timezone for timestamps and crawl windows (e.g., Asia/Seoul)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:            raw.DBPath,
		SeedDir:           raw.SeedDir,
		Port:              raw.Port,
		WorkerCount:       raw.WorkerCount,
		SchedulerInterval: raw.SchedulerInterval,
		APIAccessKey:      raw.APIAccessKey,
		FirecrawlURL:      raw.FirecrawlURL,
		FirecrawlAPIKey:   raw.FirecrawlAPIKey,
		LLMURL:            raw.LLMURL,
		LLMAPIKey:         raw.LLMAPIKey,
		LLMModel:          raw.LLMModel,
		RequestTimeout:    raw.RequestTimeout,
		RunDeadline:       raw.RunDeadline,
		UserAgent:         raw.UserAgent,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

// Set replaces the global configuration. Intended for tests.
func Set(cfg *Cfg) {
	globalCfg = cfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
