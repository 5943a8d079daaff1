// Package config loads and validates application configuration from YAML files
// with environment-variable overrides. It provides typed structs for every
// subsystem (Server, Redis, Kafka, Search, Keywords, Ingest, etc.).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Search   SearchConfig   `yaml:"search"`
	Keywords KeywordsConfig `yaml:"keywords"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// RedisConfig holds Redis connection and query-cache parameters. Redis is
// both the document store and the inverted index, so there is no separate
// database configuration.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

// KafkaConfig holds Kafka broker and topic settings. An empty broker list
// disables event publishing entirely.
type KafkaConfig struct {
	Brokers       []string    `yaml:"brokers"`
	ConsumerGroup string      `yaml:"consumerGroup"`
	Topics        KafkaTopics `yaml:"topics"`
}

// KafkaTopics maps logical topic names to their Kafka topic strings.
type KafkaTopics struct {
	DocumentIngested string `yaml:"documentIngested"`
	SearchEvents     string `yaml:"searchEvents"`
}

// Enabled reports whether event publishing is configured.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// SearchConfig controls query resolution behaviour.
type SearchConfig struct {
	// CandidateThreshold is the candidate count below which the resolver
	// runs the secondary title-substring pass.
	CandidateThreshold int `yaml:"candidateThreshold"`
	// MaxResults caps the number of records returned per query. Zero means
	// unlimited.
	MaxResults int `yaml:"maxResults"`
	// ResolveConcurrency bounds parallel record lookups during a query.
	ResolveConcurrency int `yaml:"resolveConcurrency"`
}

// KeywordsConfig selects the keyword-extraction strategy.
type KeywordsConfig struct {
	// Strategy is either "full" (every distinct content word) or "top"
	// (the TopN most frequent words).
	Strategy string `yaml:"strategy"`
	TopN     int    `yaml:"topN"`
}

// IngestConfig controls source-document fetching and retry behaviour.
type IngestConfig struct {
	MaxDocumentSize int64         `yaml:"maxDocumentSize"`
	FetchTimeout    time.Duration `yaml:"fetchTimeout"`
	RetryAttempts   int           `yaml:"retryAttempts"`
	RetryDelay      time.Duration `yaml:"retryDelay"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. It returns a Config populated with sensible defaults for any
// missing values.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// defaultConfig returns a Config with production-ready defaults for local
// development.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
			PoolSize: 10,
			CacheTTL: 60 * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:       nil,
			ConsumerGroup: "hrkb-portal",
			Topics: KafkaTopics{
				DocumentIngested: "document-ingested",
				SearchEvents:     "search-events",
			},
		},
		Search: SearchConfig{
			CandidateThreshold: 5,
			MaxResults:         0,
			ResolveConcurrency: 8,
		},
		Keywords: KeywordsConfig{
			Strategy: "full",
			TopN:     20,
		},
		Ingest: IngestConfig{
			MaxDocumentSize: 10 << 20,
			FetchTimeout:    30 * time.Second,
			RetryAttempts:   3,
			RetryDelay:      100 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
		},
	}
}

// applyEnvOverrides reads HRKB_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HRKB_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("HRKB_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("HRKB_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("HRKB_REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Redis.DB = db
		}
	}
	if v := os.Getenv("HRKB_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("HRKB_SEARCH_CANDIDATE_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Search.CandidateThreshold = n
		}
	}
	if v := os.Getenv("HRKB_KEYWORDS_STRATEGY"); v != "" {
		cfg.Keywords.Strategy = v
	}
	if v := os.Getenv("HRKB_KEYWORDS_TOP_N"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Keywords.TopN = n
		}
	}
	if v := os.Getenv("HRKB_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("HRKB_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("HRKB_METRICS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Metrics.Port = port
		}
	}
}
