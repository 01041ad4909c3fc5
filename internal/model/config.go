package model

import (
	"fmt"
	"runtime"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds all runtime settings for medqa
type Config struct {
	Lexicon     LexiconConfig     `yaml:"lexicon" mapstructure:"lexicon"`
	Graph       GraphConfig       `yaml:"graph" mapstructure:"graph"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Reasoning   ReasoningConfig   `yaml:"reasoning" mapstructure:"reasoning"`
	Answer      AnswerConfig      `yaml:"answer" mapstructure:"answer"`
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
}

// LexiconConfig locates the dictionary files
type LexiconConfig struct {
	Dir          string `yaml:"dir" mapstructure:"dir" validate:"required"`
	TriggersFile string `yaml:"triggers_file,omitempty" mapstructure:"triggers_file"` // Overrides the built-in keyword triggers
}

// GraphConfig configures the Neo4j knowledge graph connection
type GraphConfig struct {
	URI               string        `yaml:"uri" mapstructure:"uri" validate:"required"`
	Username          string        `yaml:"username" mapstructure:"username"`
	Password          string        `yaml:"password,omitempty" mapstructure:"password"`
	Database          string        `yaml:"database,omitempty" mapstructure:"database"`
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gt=0"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second" validate:"gte=0"` // 0 disables throttling
	Burst             int           `yaml:"burst" mapstructure:"burst" validate:"gte=0"`
}

// CacheConfig configures graph result caching
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	Backend string        `yaml:"backend" mapstructure:"backend" validate:"oneof=memory redis disk layered"`
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl" validate:"gte=0"`
	Dir     string        `yaml:"dir" mapstructure:"dir"`
	Redis   RedisConfig   `yaml:"redis" mapstructure:"redis"`
}

// RedisConfig configures the shared cache tier
type RedisConfig struct {
	Addr     string `yaml:"addr" mapstructure:"addr"`
	Password string `yaml:"password,omitempty" mapstructure:"password"`
	DB       int    `yaml:"db" mapstructure:"db" validate:"gte=0"`
	PoolSize int    `yaml:"pool_size" mapstructure:"pool_size" validate:"gte=0"`
}

// ReasoningConfig holds the multi-hop heuristics.
// FuzzyMaxExtra and FuzzyWindow drive disease-name resolution when no exact match exists.
type ReasoningConfig struct {
	FuzzyMaxExtra  int `yaml:"fuzzy_max_extra" mapstructure:"fuzzy_max_extra" validate:"gte=0"`
	FuzzyWindow    int `yaml:"fuzzy_window" mapstructure:"fuzzy_window" validate:"gte=0"`
	CandidateLimit int `yaml:"candidate_limit" mapstructure:"candidate_limit" validate:"gte=1"`
	FanoutWidth    int `yaml:"fanout_width" mapstructure:"fanout_width" validate:"gte=1"`
	Workers        int `yaml:"workers" mapstructure:"workers" validate:"gte=1"`
}

// AnswerConfig controls answer rendering
type AnswerConfig struct {
	DisplayLimit int    `yaml:"display_limit" mapstructure:"display_limit" validate:"gte=1"`
	Seed         uint64 `yaml:"seed" mapstructure:"seed"` // 0 picks phrasing templates at random
}

// LLMConfig configures the optional completion service
type LLMConfig struct {
	Provider          string  `yaml:"provider" mapstructure:"provider" validate:"omitempty,oneof=openai deepseek anthropic ollama"`
	Model             string  `yaml:"model" mapstructure:"model"`
	APIKey            string  `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL           string  `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout           int     `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"` // seconds
	MaxTokens         int     `yaml:"max_tokens" mapstructure:"max_tokens" validate:"gte=0"`
	Temperature       float32 `yaml:"temperature" mapstructure:"temperature" validate:"gte=0,lte=2"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second" validate:"gte=0"`
	HTTPProxy         string  `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy        string  `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr         string        `yaml:"addr" mapstructure:"addr" validate:"required"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
}

// LogConfig configures structured logging
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" mapstructure:"format" validate:"oneof=json console"`
}

// ConcurrencyConfig controls batch processing
type ConcurrencyConfig struct {
	BatchWorkers int `yaml:"batch_workers" mapstructure:"batch_workers" validate:"gte=1"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Lexicon: LexiconConfig{
			Dir: "dict",
		},
		Graph: GraphConfig{
			URI:               "bolt://localhost:7687",
			Username:          "neo4j",
			Timeout:           10 * time.Second,
			RequestsPerSecond: 50,
			Burst:             20,
		},
		Cache: CacheConfig{
			Enabled: true,
			Backend: "memory",
			TTL:     10 * time.Minute,
			Dir:     ".medqa-cache",
			Redis: RedisConfig{
				Addr:     "localhost:6379",
				PoolSize: 10,
			},
		},
		Reasoning: ReasoningConfig{
			FuzzyMaxExtra:  3,
			FuzzyWindow:    2,
			CandidateLimit: 5,
			FanoutWidth:    5,
			Workers:        4,
		},
		Answer: AnswerConfig{
			DisplayLimit: 20,
		},
		LLM: LLMConfig{
			Provider:    "", // Disabled by default
			Timeout:     100,
			MaxTokens:   2000,
			Temperature: 0.7,
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 2 * time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Concurrency: ConcurrencyConfig{
			BatchWorkers: runtime.NumCPU(),
		},
	}
}

var configValidator = validator.New()

// Validate checks field constraints declared in struct tags
func (c *Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Cache.Enabled && c.Cache.Backend == "redis" && c.Cache.Redis.Addr == "" {
		return fmt.Errorf("invalid config: cache.redis.addr is required for the redis backend")
	}
	return nil
}
