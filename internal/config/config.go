package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

type LLMConfig struct {
	Provider       string `toml:"provider"`
	Model          string `toml:"model"`
	EmbeddingModel string `toml:"embedding_model"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
}

// PipelineConfig bounds the refinement loop.
type PipelineConfig struct {
	MaxIter         int    `toml:"max_iter"`
	AcceptThreshold int    `toml:"accept_threshold"`
	DefaultCategory string `toml:"default_category"`
	MaxNewsInPrompt int    `toml:"max_news_in_prompt"`
	LimitPerSource  int    `toml:"limit_per_source"`
	DaysBack        int    `toml:"days_back"`
	Source          string `toml:"source"`
}

// Thresholds are per-dimension values in [0,1] below which a remediation
// sentence is emitted.
type Thresholds struct {
	Relevance    float64 `toml:"relevance"`
	Accuracy     float64 `toml:"accuracy"`
	Completeness float64 `toml:"completeness"`
	ContextUsage float64 `toml:"context_usage"`
	Clarity      float64 `toml:"clarity"`
}

type EvaluationConfig struct {
	Thresholds Thresholds `toml:"thresholds"`
	LLMReview  bool       `toml:"llm_review"`
}

type ProviderConfig struct {
	APIKey            string `toml:"api_key"`
	BaseURL           string `toml:"base_url"`
	MaxDaysBack       int    `toml:"max_days_back"`
	RequestsPerMinute int    `toml:"requests_per_minute"`
	TimeoutSeconds    int    `toml:"timeout_seconds"`
}

type NewsConfig struct {
	YahooFinance    ProviderConfig    `toml:"yahoo_finance"`
	NewsAPI         ProviderConfig    `toml:"news_api"`
	Finnhub         ProviderConfig    `toml:"finnhub"`
	AlphaVantage    ProviderConfig    `toml:"alpha_vantage"`
	ResolverURL     string            `toml:"resolver_url"`
	Tickers         map[string]string `toml:"tickers"`
	DisableResolver bool              `toml:"disable_resolver"`
}

type MemgraphConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

type RedisConfig struct {
	URL    string `toml:"url"`
	Prefix string `toml:"prefix"`
}

type PostgresConfig struct {
	DSN string `toml:"dsn"`
}

type BucketConfig struct {
	Bucket string `toml:"bucket"`
	Object string `toml:"object"`
}

type MemoryConfig struct {
	Backend  string         `toml:"backend"`
	Path     string         `toml:"path"`
	Memgraph MemgraphConfig `toml:"memgraph"`
	Redis    RedisConfig    `toml:"redis"`
	Postgres PostgresConfig `toml:"postgres"`
	Bucket   BucketConfig   `toml:"bucket"`
}

// Prompts holds optional templates. Empty values fall back to built-in ones.
type Prompts struct {
	Generation string `toml:"generation"`
	Review     string `toml:"review"`
	Sentiment  string `toml:"sentiment"`
}

type ConcurrencyConfig struct {
	BulkAsk int `toml:"bulk_ask"`
}

type ServerConfig struct {
	Port         string   `toml:"port"`
	AllowOrigins []string `toml:"allow_origins"`
}

type Config struct {
	LLM         LLMConfig         `toml:"llm"`
	Embedding   LLMConfig         `toml:"embedding"`
	Sentiment   LLMConfig         `toml:"sentiment"`
	Pipeline    PipelineConfig    `toml:"pipeline"`
	Evaluation  EvaluationConfig  `toml:"evaluation"`
	News        NewsConfig        `toml:"news"`
	Memory      MemoryConfig      `toml:"memory"`
	Prompts     Prompts           `toml:"prompts"`
	Concurrency ConcurrencyConfig `toml:"concurrency"`
	Server      ServerConfig      `toml:"server"`
}

var memoryBackends = map[string]bool{
	"file":     true,
	"memgraph": true,
	"redis":    true,
	"postgres": true,
	"bucket":   true,
}

// Default returns a configuration that runs against a local Ollama with the
// file memory backend.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider: "ollama",
			Model:    "gpt-oss:latest",
			BaseURL:  "http://localhost:11434",
		},
		Pipeline: PipelineConfig{
			MaxIter:         3,
			AcceptThreshold: 70,
			DefaultCategory: "corporate_business",
			LimitPerSource:  50,
			DaysBack:        30,
		},
		Evaluation: EvaluationConfig{
			Thresholds: Thresholds{
				Relevance:    0.5,
				Accuracy:     0.5,
				Completeness: 0.5,
				ContextUsage: 0.4,
				Clarity:      0.5,
			},
		},
		News: NewsConfig{
			YahooFinance: ProviderConfig{BaseURL: "https://query1.finance.yahoo.com", TimeoutSeconds: 10},
			NewsAPI:      ProviderConfig{BaseURL: "https://newsapi.org", MaxDaysBack: 30, TimeoutSeconds: 30},
			Finnhub:      ProviderConfig{MaxDaysBack: 365, RequestsPerMinute: 60, TimeoutSeconds: 30},
			AlphaVantage: ProviderConfig{BaseURL: "https://www.alphavantage.co", MaxDaysBack: 30, RequestsPerMinute: 5, TimeoutSeconds: 30},
			ResolverURL:  "https://query1.finance.yahoo.com",
			Tickers: map[string]string{
				"AAPL":     "Apple Inc.",
				"TSLA":     "Tesla Inc.",
				"GOOGL":    "Alphabet Inc.",
				"MSFT":     "Microsoft Corporation",
				"AMZN":     "Amazon.com Inc.",
				"BTC-USD":  "Bitcoin USD",
				"EURUSD=X": "Euro/US Dollar",
				"^GSPC":    "S&P 500 Index",
			},
		},
		Memory: MemoryConfig{
			Backend: "file",
			Redis:   RedisConfig{Prefix: "finsage:memory:"},
			Bucket:  BucketConfig{Object: "memory/history.json"},
		},
		Concurrency: ConcurrencyConfig{BulkAsk: 4},
		Server:      ServerConfig{Port: "8080", AllowOrigins: []string{"*"}},
	}
}

// Load overlays the TOML file at path on top of Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides file values with environment variables when they are set.
func (c *Config) ApplyEnv() {
	setString := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	setString(&c.LLM.Provider, "LLM_PROVIDER")
	setString(&c.LLM.Model, "LLM_MODEL")
	setString(&c.LLM.EmbeddingModel, "LLM_EMBEDDING_MODEL")
	setString(&c.LLM.APIKey, "LLM_API_KEY")
	setString(&c.LLM.BaseURL, "LLM_BASE_URL")

	setString(&c.Embedding.Provider, "EMBEDDING_PROVIDER")
	setString(&c.Embedding.EmbeddingModel, "EMBEDDING_MODEL")
	setString(&c.Embedding.APIKey, "EMBEDDING_API_KEY")
	setString(&c.Embedding.BaseURL, "EMBEDDING_BASE_URL")

	setString(&c.News.NewsAPI.APIKey, "NEWS_API_KEY")
	setString(&c.News.Finnhub.APIKey, "FINNHUB_API_KEY")
	setString(&c.News.AlphaVantage.APIKey, "ALPHA_VANTAGE_API_KEY")
	if v := os.Getenv("AVAILABLE_TICKERS"); v != "" {
		c.News.Tickers = ParseTickers(v)
	}

	setString(&c.Memory.Backend, "MEMORY_BACKEND")
	setString(&c.Memory.Path, "MEMORY_PATH")
	setString(&c.Memory.Memgraph.URI, "MEMGRAPH_URI")
	setString(&c.Memory.Memgraph.User, "MEMGRAPH_USER")
	setString(&c.Memory.Memgraph.Password, "MEMGRAPH_PASSWORD")
	setString(&c.Memory.Redis.URL, "REDIS_URL")
	setString(&c.Memory.Postgres.DSN, "DATABASE_URL")
	setString(&c.Memory.Bucket.Bucket, "MEMORY_BUCKET")

	setString(&c.Server.Port, "PORT")
}

// ParseTickers reads "AAPL:Apple Inc.,TSLA:Tesla Inc." into a symbol map.
// Pairs without a colon are skipped.
func ParseTickers(s string) map[string]string {
	out := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		symbol, name, ok := strings.Cut(pair, ":")
		if !ok {
			continue
		}
		symbol = strings.TrimSpace(symbol)
		if symbol == "" {
			continue
		}
		out[symbol] = strings.TrimSpace(name)
	}
	return out
}

func (c *Config) Validate() error {
	if c.Pipeline.MaxIter < 1 {
		return fmt.Errorf("pipeline.max_iter must be at least 1, got %d", c.Pipeline.MaxIter)
	}
	if c.Pipeline.AcceptThreshold < 0 || c.Pipeline.AcceptThreshold > 100 {
		return fmt.Errorf("pipeline.accept_threshold must be within [0,100], got %d", c.Pipeline.AcceptThreshold)
	}

	t := c.Evaluation.Thresholds
	for name, v := range map[string]float64{
		"relevance":     t.Relevance,
		"accuracy":      t.Accuracy,
		"completeness":  t.Completeness,
		"context_usage": t.ContextUsage,
		"clarity":       t.Clarity,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("evaluation.thresholds.%s must be within [0,1], got %v", name, v)
		}
	}

	if !memoryBackends[strings.ToLower(c.Memory.Backend)] {
		return fmt.Errorf("unsupported memory backend: %s", c.Memory.Backend)
	}
	return nil
}
