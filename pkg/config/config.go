package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/azhavoronkov/eventscope/pkg/domain"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the application configuration
type Config struct {
	API struct {
		BaseURL   string        `yaml:"base_url" json:"base_url" jsonschema:"default=http://localhost:8000,description=Events backend base URL"`
		Timeout   time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=Request timeout"`
		UserAgent string        `yaml:"user_agent" json:"user_agent" jsonschema:"default=Eventscope/1.0,description=User agent for backend requests"`
	} `yaml:"api" json:"api" jsonschema:"description=Backend API configuration"`

	Feed FeedConfig `yaml:"feed" json:"feed" jsonschema:"description=Feed presentation configuration"`

	Filters []domain.Filter `yaml:"filters" json:"filters" jsonschema:"description=Category taxonomy; compiled-in defaults when empty"`

	Storage struct {
		DSN             string `yaml:"dsn" json:"dsn" jsonschema:"default=file:eventscope.db?cache=shared&mode=rwc,description=Local storage connection string"`
		Prefix          string `yaml:"prefix" json:"prefix" jsonschema:"default=eventscope,description=Key namespace for persisted blobs"`
		MaxOpenConns    int    `yaml:"max_open_conns" json:"max_open_conns" jsonschema:"default=10,description=Maximum number of open connections"`
		MaxIdleConns    int    `yaml:"max_idle_conns" json:"max_idle_conns" jsonschema:"default=5,description=Maximum number of idle connections"`
		ConnMaxLifetime int    `yaml:"conn_max_lifetime" json:"conn_max_lifetime" jsonschema:"default=3600,description=Connection maximum lifetime in seconds"`
	} `yaml:"storage" json:"storage" jsonschema:"description=Local storage configuration"`

	Server struct {
		Listen  string        `yaml:"listen" json:"listen" jsonschema:"default=:8081,description=Preview server listen address"`
		Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=Preview server timeout"`
		BaseURL string        `yaml:"base_url" json:"base_url" jsonschema:"default=http://localhost:8081,description=Public URL the preview server is reachable at"`
	} `yaml:"server" json:"server" jsonschema:"description=Preview server configuration"`

	Ingest IngestConfig `yaml:"ingest" json:"ingest" jsonschema:"description=Backend ingestion trigger configuration"`
}

// FeedConfig holds feed presentation settings
type FeedConfig struct {
	Limit         int `yaml:"limit" json:"limit" jsonschema:"default=30,description=Events requested per fetch"`
	FallbackCount int `yaml:"fallback_count" json:"fallback_count" jsonschema:"default=12,description=Records shown when personalization narrows the feed to empty"`
	CarouselCap   int `yaml:"carousel_cap" json:"carousel_cap" jsonschema:"default=8,minimum=1,description=Maximum deduplicated carousel images"`
}

// IngestConfig holds settings for the backend ingestion trigger. By default
// only posts recognized as events are pulled, AllPosts widens the pull to
// everything the channels published.
type IngestConfig struct {
	PerChannelLimit int  `yaml:"per_channel_limit" json:"per_channel_limit" jsonschema:"default=5,minimum=1,maximum=50,description=Posts pulled per channel on ingest"`
	AllPosts        bool `yaml:"all_posts" json:"all_posts" jsonschema:"description=Pull every post instead of recognized events only"`
}

// EventOnly reports whether ingestion is restricted to recognized events
func (i IngestConfig) EventOnly() bool { return !i.AllPosts }

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()

	// validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// verify against embedded schema
	if err := VerifyAgainstEmbeddedSchema(&cfg); err != nil {
		// log warning but don't fail - schema validation is supplementary
		fmt.Printf("warning: schema validation failed: %v\n", err)
	}

	return &cfg, nil
}

// Default returns a configuration with all defaults applied, used when no
// config file is given
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

func (c *Config) setDefaults() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = "http://localhost:8000"
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = 30 * time.Second
	}
	if c.API.UserAgent == "" {
		c.API.UserAgent = "Eventscope/1.0"
	}

	if c.Feed.Limit == 0 {
		c.Feed.Limit = 30
	}
	if c.Feed.FallbackCount == 0 {
		c.Feed.FallbackCount = 12
	}
	if c.Feed.CarouselCap == 0 {
		c.Feed.CarouselCap = 8
	}

	if c.Storage.DSN == "" {
		c.Storage.DSN = "file:eventscope.db?cache=shared&mode=rwc&_txlock=immediate"
	}
	if c.Storage.Prefix == "" {
		c.Storage.Prefix = "eventscope"
	}
	if c.Storage.MaxOpenConns == 0 {
		c.Storage.MaxOpenConns = 10
	}
	if c.Storage.MaxIdleConns == 0 {
		c.Storage.MaxIdleConns = 5
	}
	if c.Storage.ConnMaxLifetime == 0 {
		c.Storage.ConnMaxLifetime = 3600
	}

	if c.Server.Listen == "" {
		c.Server.Listen = ":8081"
	}
	if c.Server.Timeout == 0 {
		c.Server.Timeout = 30 * time.Second
	}
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = "http://localhost:8081"
	}

	if c.Ingest.PerChannelLimit == 0 {
		c.Ingest.PerChannelLimit = 5
	}
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	if cfg.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if cfg.API.Timeout < time.Second {
		return fmt.Errorf("api.timeout must be at least 1 second")
	}

	if cfg.Feed.Limit < 1 {
		return fmt.Errorf("feed.limit must be at least 1")
	}
	if cfg.Feed.CarouselCap < 1 {
		return fmt.Errorf("feed.carousel_cap must be at least 1")
	}
	if cfg.Feed.FallbackCount < 1 {
		return fmt.Errorf("feed.fallback_count must be at least 1")
	}

	if cfg.Ingest.PerChannelLimit < 1 || cfg.Ingest.PerChannelLimit > 50 {
		return fmt.Errorf("ingest.per_channel_limit must be between 1 and 50")
	}

	// validate filter taxonomy when supplied
	seen := make(map[string]bool)
	for _, f := range cfg.Filters {
		if f.Key == "" {
			return fmt.Errorf("filter key is required")
		}
		if seen[f.Key] {
			return fmt.Errorf("duplicate filter key %q", f.Key)
		}
		seen[f.Key] = true
	}

	// validate server config
	if cfg.Server.Timeout < time.Second {
		return fmt.Errorf("server timeout must be at least 1 second")
	}

	return nil
}

// GetServerConfig returns preview server configuration
func (c *Config) GetServerConfig() (listen string, timeout time.Duration) {
	return c.Server.Listen, c.Server.Timeout
}

// GetFeedConfig returns feed presentation configuration
func (c *Config) GetFeedConfig() FeedConfig {
	return c.Feed
}

// GetFilters returns the category taxonomy, empty means use defaults
func (c *Config) GetFilters() []domain.Filter {
	return c.Filters
}

// GetFullConfig returns the complete configuration
func (c *Config) GetFullConfig() *Config {
	return c
}

// GetIngestConfig returns ingestion trigger configuration
func (c *Config) GetIngestConfig() IngestConfig {
	return c.Ingest
}
