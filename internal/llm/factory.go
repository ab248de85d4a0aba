package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/agenthands/finsage/internal/config"
)

// NewClient builds the generation client for cfg and, when the provider can
// embed, the matching embedder. Claude returns a nil embedder.
func NewClient(ctx context.Context, cfg config.LLMConfig) (LLMClient, EmbedderClient, error) {
	provider := strings.ToLower(cfg.Provider)

	switch provider {
	case "openai":
		c := NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.EmbeddingModel, cfg.BaseURL)
		return c, c, nil

	case "gemini":
		c, err := NewGeminiClient(ctx, cfg.APIKey, cfg.Model, cfg.EmbeddingModel)
		if err != nil {
			return nil, nil, err
		}
		return c, c, nil

	case "claude":
		c := NewClaudeClient(cfg.APIKey, cfg.Model, cfg.BaseURL)
		return c, nil, nil

	case "ollama":
		// OpenAI-compatible endpoint; the API key is ignored by Ollama but required by the client.
		baseURL := cfg.BaseURL
		if !strings.HasSuffix(baseURL, "/v1") {
			baseURL = fmt.Sprintf("%s/v1", strings.TrimRight(baseURL, "/"))
		}
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = "ollama"
		}

		slog.Info("initializing ollama via openai-compatible api", "base_url", baseURL)
		c := NewOpenAIClient(apiKey, cfg.Model, cfg.EmbeddingModel, baseURL)
		return c, c, nil

	case "dspy-ollama":
		c, err := NewOllamaClient(cfg.Model, cfg.BaseURL)
		if err != nil {
			return nil, nil, err
		}
		return c, c, nil

	default:
		return nil, nil, fmt.Errorf("unsupported llm provider: %s", provider)
	}
}

// Services bundles the model capabilities the pipeline depends on.
type Services struct {
	Generator LLMClient
	Embedder  EmbedderClient
	Sentiment SentimentClient
	Reranker  RerankerClient
}

// NewServices wires generation, embedding, sentiment and reranking from cfg.
// The [embedding] and [sentiment] sections fall back to [llm] when their
// provider is empty.
func NewServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	generator, embedder, err := NewClient(ctx, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("initializing llm: %w", err)
	}

	if cfg.Embedding.Provider != "" {
		_, embedder, err = NewClient(ctx, cfg.Embedding)
		if err != nil {
			return nil, fmt.Errorf("initializing embedder: %w", err)
		}
	}
	if embedder == nil {
		return nil, fmt.Errorf("llm provider %q cannot embed; configure [embedding]", cfg.LLM.Provider)
	}

	sentimentLLM := generator
	if cfg.Sentiment.Provider != "" {
		sentimentLLM, _, err = NewClient(ctx, cfg.Sentiment)
		if err != nil {
			return nil, fmt.Errorf("initializing sentiment: %w", err)
		}
	}

	return &Services{
		Generator: generator,
		Embedder:  embedder,
		Sentiment: NewLLMSentiment(sentimentLLM, cfg.Prompts.Sentiment),
		Reranker:  NewSimpleLLMReranker(generator),
	}, nil
}
