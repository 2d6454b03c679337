package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// SearchMode selects which search dialog implementation is mounted.
type SearchMode string

const (
	SearchModeLexical SearchMode = "lexical"
	SearchModeVector  SearchMode = "vector"
)

// Sink routing values for SEARCH_LOG_SINK.
const (
	SinkSplit    = "split" // lexical route -> jsonl, vector and client routes -> postgres
	SinkPostgres = "postgres"
	SinkJSONL    = "jsonl"
	SinkRedis    = "redis"
)

// Config holds all application configuration.
type Config struct {
	LogLevel          string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat         string        `env:"LOG_FORMAT" envDefault:"json"`
	ServerAddr        string        `env:"SERVER_ADDR" envDefault:":8080"`
	MetricsServerAddr string        `env:"METRICS_SERVER_ADDR" envDefault:":9091"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	SearchMode SearchMode `env:"SEARCH_MODE" envDefault:"vector"`

	// Log storage. DATABASE_URL and REDIS_URL are optional; routes bound to an
	// unconfigured store report a configuration error on first use.
	DatabaseURL       string `env:"DATABASE_URL"`
	RedisURL          string `env:"REDIS_URL"`
	LogDir            string `env:"LOG_DIR" envDefault:"log"`
	SearchLogSink     string `env:"SEARCH_LOG_SINK" envDefault:"split"`
	BackgroundWorkers int    `env:"BACKGROUND_WORKERS" envDefault:"8"`

	Algolia    AlgoliaConfig
	Mixedbread MixedbreadConfig
}

// AlgoliaConfig holds the lexical search index settings.
type AlgoliaConfig struct {
	AppID  string `env:"ALGOLIA_APP_ID"`
	APIKey string `env:"ALGOLIA_API_KEY"`
	Index  string `env:"ALGOLIA_INDEX"`
}

// Configured reports whether every Algolia setting is present.
func (c AlgoliaConfig) Configured() bool {
	return c.AppID != "" && c.APIKey != "" && c.Index != ""
}

// MixedbreadConfig holds the vector store settings.
type MixedbreadConfig struct {
	APIKey        string `env:"MXBAI_API_KEY"`
	BaseURL       string `env:"MXBAI_BASE_URL" envDefault:"https://api.mixedbread.com"`
	VectorStoreID string `env:"VECTOR_STORE_ID"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Attempt to load .env file for local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks enumerated settings. Missing provider credentials are not an
// error here; they surface per request.
func (c *Config) Validate() error {
	mode, err := ParseSearchMode(string(c.SearchMode))
	if err != nil {
		return err
	}
	c.SearchMode = mode

	switch c.SearchLogSink {
	case SinkSplit, SinkPostgres, SinkJSONL, SinkRedis:
	default:
		return fmt.Errorf("invalid SEARCH_LOG_SINK %q", c.SearchLogSink)
	}
	if c.BackgroundWorkers < 1 {
		return fmt.Errorf("BACKGROUND_WORKERS must be positive, got %d", c.BackgroundWorkers)
	}
	return nil
}

// ParseSearchMode resolves a search mode name. The provider names used by the
// documentation site ("algolia", "mixedbread") are accepted as aliases.
func ParseSearchMode(s string) (SearchMode, error) {
	switch s {
	case string(SearchModeLexical), "algolia":
		return SearchModeLexical, nil
	case string(SearchModeVector), "mixedbread":
		return SearchModeVector, nil
	default:
		return "", fmt.Errorf("invalid search mode %q", s)
	}
}
