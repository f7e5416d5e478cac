package config

import "time"

// Config holds runtime settings for the famvault CLI.
//
// Units: OnlineCheckInterval and PollInterval are time.Durations.
type Config struct {
	// RemoteBaseURL is the base URL of the archive backend.
	RemoteBaseURL string
	// DatabasePath is where the local SQLite database lives.
	DatabasePath string
	// ArchiveKey scopes every read and write to one family archive.
	ArchiveKey string
	// GatePhrase is the shared unlock phrase; empty disables the gate.
	GatePhrase string
	// OnlineCheckInterval is how often reachability is probed.
	OnlineCheckInterval time.Duration
	// PollInterval is how often live subscriptions re-fetch their path.
	PollInterval time.Duration

	// S3 settings switch media uploads from the backend's presign flow
	// to direct object storage. Active when S3Bucket is set.
	S3Bucket    string
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.RemoteBaseURL = "http://127.0.0.1:8080"
	c.DatabasePath = "famvault.db"
	c.ArchiveKey = "MURRAY_LEGACY_2026"
	c.OnlineCheckInterval = 3 * time.Second
	c.PollInterval = 5 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present). Later
// sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
