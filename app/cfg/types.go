package cfg

// Cfg is the process configuration, read from flags and the environment.
type Cfg struct {
	DBPath       string `long:"db-path" env:"DB_PATH" default:"./event-comb.db" description:"Path to the SQLite database file"`
	ProvidersDir string `long:"providers-dir" env:"PROVIDERS_DIR" default:"./providers" description:"Directory containing provider configuration files"`
	Keyword      string `long:"keyword" env:"KEYWORD" default:"cryptocurrency" description:"Search keyword used when a provider sets no query"`

	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl      string `long:"base-url" env:"BASE_URL" description:"Public base URL for the service (e.g., https://events.example.com)"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	WorkerCount       int `long:"worker-count" env:"WORKER_COUNT" default:"5" description:"Number of background workers for event collection"`
	SchedulerInterval int `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"30" description:"Seconds between checks for providers due a collection"`

	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Event Comb/1.0" description:"User agent sent to provider APIs"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, Europe/Stockholm)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`

	// Set from the build, not from flags.
	Version string `no-flag:"true"`
}
