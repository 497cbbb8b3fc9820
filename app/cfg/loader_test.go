package cfg

import (
	"testing"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}

	version := GetVersion()
	if version != "dev" && version != "unknown" {
		// Version could be set at build time
		t.Logf("Version: %s", version)
	}
}

func TestConfigFields(t *testing.T) {
	cfg := &Cfg{
		DBPath:            "./test.db",
		SeedDir:           "./seed",
		Port:              "8080",
		WorkerCount:       3,
		SchedulerInterval: 300,
		APIAccessKey:      "test-key",
		FirecrawlURL:      "https://api.firecrawl.dev/v1",
		FirecrawlAPIKey:   "fc-key",
		LLMURL:            "https://api.anthropic.com/v1/messages",
		LLMAPIKey:         "llm-key",
		LLMModel:          "test-model",
		RequestTimeout:    20,
		RunDeadline:       600,
		UserAgent:         "Test Agent",
		Timezone:          "Asia/Seoul",
		Debug:             true,
		Version:           "test-version",
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected port '8080', got '%s'", cfg.Port)
	}
	if cfg.DBPath != "./test.db" {
		t.Errorf("Expected DB path './test.db', got '%s'", cfg.DBPath)
	}
	if cfg.WorkerCount != 3 {
		t.Errorf("Expected worker count 3, got %d", cfg.WorkerCount)
	}
	if cfg.SchedulerInterval != 300 {
		t.Errorf("Expected scheduler interval 300, got %d", cfg.SchedulerInterval)
	}
	if cfg.APIAccessKey != "test-key" {
		t.Errorf("Expected API key 'test-key', got '%s'", cfg.APIAccessKey)
	}
	if cfg.FirecrawlURL != "https://api.firecrawl.dev/v1" {
		t.Errorf("Unexpected firecrawl URL: %s", cfg.FirecrawlURL)
	}
	if cfg.LLMModel != "test-model" {
		t.Errorf("Expected LLM model 'test-model', got '%s'", cfg.LLMModel)
	}
	if cfg.RequestTimeout != 20 {
		t.Errorf("Expected request timeout 20, got %d", cfg.RequestTimeout)
	}
	if !cfg.Debug {
		t.Error("Expected debug to be true")
	}
}

func TestSetAndGet(t *testing.T) {
	prev := globalCfg
	defer func() { globalCfg = prev }()

	cfg := &Cfg{Port: "9090"}
	Set(cfg)

	if Get().Port != "9090" {
		t.Errorf("Expected port '9090' from Get, got '%s'", Get().Port)
	}
}

func TestApplyTimezone(t *testing.T) {
	if err := applyTimezone("UTC"); err != nil {
		t.Errorf("Expected no error for UTC, got %v", err)
	}

	if err := applyTimezone("Not/AZone"); err == nil {
		t.Error("Expected error for invalid timezone")
	}
}
