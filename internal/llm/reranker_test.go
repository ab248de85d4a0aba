package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRank_ParsesModelOrder(t *testing.T) {
	mock := &MockLLM{Response: "2, 0, 1"}
	r := NewSimpleLLMReranker(mock)

	got, err := r.Rank(context.Background(), "apple earnings", []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 0, 1}, got)
	require.Len(t, mock.Prompts, 1)
	assert.Contains(t, mock.Prompts[0], "Query: apple earnings")
}

func TestRank_CompletesPartialAndDropsInvalid(t *testing.T) {
	mock := &MockLLM{Response: "Sure: 3, 3, 9, 1"}
	r := NewSimpleLLMReranker(mock)

	got, err := r.Rank(context.Background(), "q", []string{"a", "b", "c", "d"})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1, 0, 2}, got)
}

func TestRank_FallsBackOnError(t *testing.T) {
	r := NewSimpleLLMReranker(&MockLLM{Err: errors.New("offline")})

	got, err := r.Rank(context.Background(), "q", []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, got)
}

func TestRank_TrivialInputsSkipModel(t *testing.T) {
	mock := &MockLLM{}
	r := NewSimpleLLMReranker(mock)

	got, err := r.Rank(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = r.Rank(context.Background(), "q", []string{"only"})
	require.NoError(t, err)
	assert.Equal(t, []int{0}, got)
	assert.Empty(t, mock.Prompts)
}
