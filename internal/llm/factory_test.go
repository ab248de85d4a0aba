package llm

import (
	"context"
	"testing"

	"github.com/agenthands/finsage/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_Providers(t *testing.T) {
	ctx := context.Background()

	gen, emb, err := NewClient(ctx, config.LLMConfig{Provider: "OpenAI", APIKey: "k", Model: "m"})
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, gen)
	assert.NotNil(t, emb)

	gen, emb, err = NewClient(ctx, config.LLMConfig{Provider: "claude", APIKey: "k", Model: "m"})
	require.NoError(t, err)
	assert.IsType(t, &ClaudeClient{}, gen)
	assert.Nil(t, emb)

	gen, _, err = NewClient(ctx, config.LLMConfig{Provider: "ollama", Model: "llama3", BaseURL: "http://localhost:11434"})
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, gen)

	_, _, err = NewClient(ctx, config.LLMConfig{Provider: "watson"})
	assert.Error(t, err)
}

func TestNewServices_RequiresEmbedder(t *testing.T) {
	cfg := config.Default()
	cfg.LLM = config.LLMConfig{Provider: "claude", APIKey: "k", Model: "m"}

	_, err := NewServices(context.Background(), cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "cannot embed")

	cfg.Embedding = config.LLMConfig{Provider: "openai", APIKey: "k"}
	svc, err := NewServices(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &ClaudeClient{}, svc.Generator)
	assert.IsType(t, &OpenAIClient{}, svc.Embedder)
	assert.NotNil(t, svc.Sentiment)
	assert.NotNil(t, svc.Reranker)
}
