package model

import "time"

// Config holds the complete runledger configuration.
type Config struct {
	Ledger      LedgerConfig      `yaml:"ledger" json:"ledger"`
	Ingest      IngestConfig      `yaml:"ingest" json:"ingest"`
	Cache       CacheConfig       `yaml:"cache" json:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" json:"concurrency"`
	LLM         LLMConfig         `yaml:"llm" json:"llm"`
	Output      OutputConfig      `yaml:"output" json:"output"`
	Rules       RulesConfig       `yaml:"rules" json:"rules"`
}

// LedgerConfig configures access to the authoritative record store.
type LedgerConfig struct {
	BaseURL      string        `yaml:"base_url" json:"base_url"`
	BaseID       string        `yaml:"base_id" json:"base_id"`
	Token        string        `yaml:"-" json:"-"` // From RUNLEDGER_LEDGER_TOKEN, never persisted
	EntriesTable string        `yaml:"entries_table" json:"entries_table"`
	PeopleTable  string        `yaml:"people_table" json:"people_table"`
	FlagsTable   string        `yaml:"flags_table" json:"flags_table"`
	Timeout      time.Duration `yaml:"timeout" json:"timeout"`
	RPS          float64       `yaml:"rps" json:"rps"` // Record-store APIs throttle around 5 req/s
	Burst        int           `yaml:"burst" json:"burst"`
}

// IngestConfig configures catalogue ingestion.
type IngestConfig struct {
	Keyword string `yaml:"keyword" json:"keyword"` // Tracked event keyword, e.g. "gauntlet"
}

// CacheConfig configures the ledger snapshot cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" json:"enabled"`
	Dir     string        `yaml:"dir" json:"dir"`
	TTL     time.Duration `yaml:"ttl" json:"ttl"`
}

// ConcurrencyConfig bounds the extraction fan-out.
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" json:"workers"`
}

// LLMConfig configures the optional identification oracle.
type LLMConfig struct {
	Provider  string `yaml:"provider" json:"provider"` // "openai" or "" (disabled)
	Model     string `yaml:"model" json:"model"`
	APIKey    string `yaml:"-" json:"-"`
	BaseURL   string `yaml:"base_url" json:"base_url"`
	MaxTokens int    `yaml:"max_tokens" json:"max_tokens"`
	Timeout   int    `yaml:"timeout_seconds" json:"timeout_seconds"`
}

// OutputConfig controls report rendering.
type OutputConfig struct {
	Verbose bool `yaml:"verbose" json:"verbose"`
}

// RulesConfig points at an optional rule-table override file.
type RulesConfig struct {
	Path string `yaml:"path" json:"path"`
}

// DefaultConfig returns the built-in defaults. Flags, environment and the
// config file layer on top of these.
func DefaultConfig() *Config {
	return &Config{
		Ledger: LedgerConfig{
			BaseURL:      "https://api.airtable.com/v0",
			EntriesTable: "Leaderboard",
			PeopleTable:  "Competitors",
			FlagsTable:   "Asterisks",
			Timeout:      30 * time.Second,
			RPS:          4,
			Burst:        2,
		},
		Ingest: IngestConfig{
			Keyword: "gauntlet",
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     15 * time.Minute,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		LLM: LLMConfig{
			Model:     "gpt-4o-mini",
			MaxTokens: 300,
			Timeout:   30,
		},
	}
}
