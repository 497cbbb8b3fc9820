package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/the-on/collector/app/api"
	"github.com/the-on/collector/app/cfg"
	"github.com/the-on/collector/app/crawl"
	"github.com/the-on/collector/app/database"
	"github.com/the-on/collector/app/firecrawl"
	"github.com/the-on/collector/app/llm"
	"github.com/the-on/collector/app/seed"
	"github.com/the-on/collector/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was requested
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting Collector server", "version", appCfg.Version)

	runDeadline := time.Duration(appCfg.RunDeadline) * time.Second

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "schema_version", version, "dirty", dirty)

	catalogRepo := database.NewCatalogRepository(db)
	sourceRepo := database.NewSourceRepository(db)
	articleRepo := database.NewArticleRepository(db)
	crawlLogRepo := database.NewCrawlLogRepository(db)

	slog.Info("Loading seed catalog", "dir", appCfg.SeedDir)
	catalog, err := seed.NewLoader(appCfg.SeedDir).LoadAll()
	if err != nil {
		slog.Error("Failed to load seed catalog", "error", err)
		os.Exit(1)
	}
	if err := seed.Apply(catalog, catalogRepo, sourceRepo); err != nil {
		slog.Error("Failed to apply seed catalog", "error", err)
		os.Exit(1)
	}
	slog.Info("Seed catalog applied", "regions", len(catalog.Regions), "categories", len(catalog.Categories))

	requestTimeout := time.Duration(appCfg.RequestTimeout) * time.Second
	httpClient := &http.Client{Timeout: requestTimeout}

	searchClient := firecrawl.NewClient(appCfg.FirecrawlURL, appCfg.FirecrawlAPIKey, appCfg.UserAgent, requestTimeout)
	llmClient := llm.NewClient(appCfg.LLMURL, appCfg.LLMAPIKey, appCfg.LLMModel, requestTimeout)
	fetcher := crawl.NewContentFetcher(searchClient, httpClient, appCfg.UserAgent)

	runner := crawl.NewRunner(crawl.RunnerDeps{
		Catalog:     catalogRepo,
		Sources:     sourceRepo,
		Articles:    articleRepo,
		CrawlLogs:   crawlLogRepo,
		Searcher:    searchClient,
		Fetcher:     fetcher,
		Enricher:    llmClient,
		HTTPClient:  httpClient,
		UserAgent:   appCfg.UserAgent,
		RunDeadline: runDeadline,
	})

	slog.Info("Starting background scheduler", "workers", appCfg.WorkerCount, "interval", appCfg.SchedulerInterval)
	scheduler := tasks.NewScheduler(catalogRepo, runner)
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(runner, catalogRepo, articleRepo, crawlLogRepo)
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout: 30 * time.Second,
		// Synchronous crawl runs hold the response open until the run
		// deadline, so the write timeout must outlast it.
		WriteTimeout: runDeadline + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
}
