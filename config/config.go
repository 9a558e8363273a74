package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the question-answering service.
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	Chunking  ChunkingConfig  `mapstructure:"chunking"`
	Retrieval RetrievalConfig `mapstructure:"retrieval"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Storage   StorageConfig   `mapstructure:"storage"`
}

// GeneralConfig contains general application settings.
type GeneralConfig struct {
	Listen   string `mapstructure:"listen"`
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

// ChunkingConfig controls how page text is split into retrieval passages.
type ChunkingConfig struct {
	Size    int `mapstructure:"size"`
	Overlap int `mapstructure:"overlap"`
}

func (c ChunkingConfig) Validate() error {
	if c.Size <= 0 {
		return fmt.Errorf("chunking.size must be > 0")
	}
	if c.Overlap < 0 || c.Overlap >= c.Size {
		return fmt.Errorf("chunking.overlap must be in [0, chunking.size)")
	}
	return nil
}

// RetrievalConfig controls similarity-search breadth.
type RetrievalConfig struct {
	TopK int `mapstructure:"top_k"`
}

func (r RetrievalConfig) Validate() error {
	if r.TopK <= 0 {
		return fmt.Errorf("retrieval.top_k must be > 0")
	}
	return nil
}

// ProvidersConfig holds per-vendor defaults. API keys configured here are
// deployment-level fallbacks; keys supplied on a request always win.
type ProvidersConfig struct {
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Voyage    VoyageConfig    `mapstructure:"voyage"`
}

// OpenAIConfig contains OpenAI completion and embedding defaults.
type OpenAIConfig struct {
	APIKey          string        `mapstructure:"api_key"`
	CompletionModel string        `mapstructure:"completion_model"`
	EmbeddingModel  string        `mapstructure:"embedding_model"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

// AnthropicConfig contains Anthropic completion defaults. Anthropic has no
// first-party embedding API, so embeddings route through Voyage.
type AnthropicConfig struct {
	APIKey          string        `mapstructure:"api_key"`
	CompletionModel string        `mapstructure:"completion_model"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

// VoyageConfig contains the auxiliary embedding vendor defaults.
type VoyageConfig struct {
	APIKey         string        `mapstructure:"api_key"`
	EmbeddingModel string        `mapstructure:"embedding_model"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// StorageConfig selects the document store backend.
type StorageConfig struct {
	Type  string      `mapstructure:"type"` // inmemory or redis
	Redis RedisConfig `mapstructure:"redis"`
}

// RedisConfig contains redis connection settings for the redis store variant.
type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

func (s StorageConfig) Validate() error {
	switch s.Type {
	case "", "inmemory":
		return nil
	case "redis":
		if strings.TrimSpace(s.Redis.Host) == "" || strings.TrimSpace(s.Redis.Port) == "" {
			return fmt.Errorf("storage.redis.host and storage.redis.port required for redis storage")
		}
		return nil
	default:
		return fmt.Errorf("unsupported storage.type: %s", s.Type)
	}
}

// LoadConfig loads config from file, falling back to defaults and
// PAPERCHAT_* environment overrides.
func LoadConfig(path string) *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("general.listen", ":8080")
	viper.SetDefault("general.log_level", "info")
	viper.SetDefault("chunking.size", 1000)
	viper.SetDefault("chunking.overlap", 100)
	viper.SetDefault("retrieval.top_k", 4)
	viper.SetDefault("providers.openai.completion_model", "gpt-4o-mini")
	viper.SetDefault("providers.openai.embedding_model", "text-embedding-3-small")
	viper.SetDefault("providers.openai.timeout", 60*time.Second)
	viper.SetDefault("providers.anthropic.completion_model", "claude-3-5-sonnet-latest")
	viper.SetDefault("providers.anthropic.timeout", 60*time.Second)
	viper.SetDefault("providers.voyage.embedding_model", "voyage-2")
	viper.SetDefault("providers.voyage.timeout", 60*time.Second)
	viper.SetDefault("storage.type", "inmemory")
	viper.SetDefault("storage.redis.ttl", 48*time.Hour)

	if path == "" {
		viper.AddConfigPath("./config")
		viper.AddConfigPath(".")
	} else {
		viper.SetConfigFile(path)
	}

	viper.SetEnvPrefix("PAPERCHAT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Missing config file is fine, defaults plus env cover everything.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			panic(fmt.Errorf("fatal error config file: %w", err))
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}

	if err := config.Chunking.Validate(); err != nil {
		panic(err)
	}
	if err := config.Retrieval.Validate(); err != nil {
		panic(err)
	}
	if err := config.Storage.Validate(); err != nil {
		panic(err)
	}
	return &config
}
