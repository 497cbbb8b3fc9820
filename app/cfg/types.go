package cfg

type Cfg struct {
	// Database configuration
	DBPath string

	// Application configuration
	SeedDir           string
	Port              string
	WorkerCount       int
	SchedulerInterval int
	APIAccessKey      string

	// External services
	FirecrawlURL    string
	FirecrawlAPIKey string
	LLMURL          string
	LLMAPIKey       string
	LLMModel        string

	// Pipeline tuning
	RequestTimeout int // seconds, per external call
	RunDeadline    int // seconds, per collection run

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
