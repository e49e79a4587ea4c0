package config

import "time"

// Config holds runtime settings for the Threadly CLI.
//
// Fields:
//   - APIBaseURL: root of the backend REST API, including the /api prefix.
//   - RequestTimeout: per-request deadline for one HTTP exchange.
//   - RetryAttempts: total attempt budget for retryable failures.
//   - RetryBaseDelay: linear backoff base; attempt i waits base*i.
//   - StateDBPath: SQLite file holding the persisted session.
type Config struct {
	APIBaseURL     string
	RequestTimeout time.Duration
	RetryAttempts  int
	RetryBaseDelay time.Duration
	StateDBPath    string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:3000/api"
	c.RequestTimeout = 10 * time.Second
	c.RetryAttempts = 3
	c.RetryBaseDelay = time.Second
	c.StateDBPath = "threadly.db"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
