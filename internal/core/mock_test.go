package core

import (
	"context"
	"fmt"
	"sync"

	"github.com/agenthands/finsage/internal/core/evaluation"
	"github.com/agenthands/finsage/internal/core/model"
	"github.com/agenthands/finsage/internal/core/news"
)

type MockLLM struct {
	Response      string
	ResponseQueue []string
	Err           error
	Prompts       []string
}

func (m *MockLLM) Generate(ctx context.Context, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.ResponseQueue) > 0 {
		resp := m.ResponseQueue[0]
		m.ResponseQueue = m.ResponseQueue[1:]
		return resp, nil
	}
	return m.Response, nil
}

// MockScorer returns Scores in order, repeating the last one. Each result's
// feedback names the attempt it came from.
type MockScorer struct {
	Scores []int
	Err    error
	Inputs []evaluation.Input
}

func (m *MockScorer) Score(ctx context.Context, in evaluation.Input) (model.EvaluationResult, error) {
	m.Inputs = append(m.Inputs, in)
	if m.Err != nil {
		return model.EvaluationResult{}, m.Err
	}
	n := len(m.Inputs)
	score := m.Scores[len(m.Scores)-1]
	if n <= len(m.Scores) {
		score = m.Scores[n-1]
	}
	return model.EvaluationResult{
		DimensionScores: map[string]int{model.DimensionRelevance: score},
		OverallScore:    score,
		FeedbackText:    fmt.Sprintf("feedback-%d", n),
	}, nil
}

type MockFetcher struct {
	Articles []model.NewsArticle
	Calls    int
	Opts     news.FetchOptions
}

func (m *MockFetcher) Fetch(ctx context.Context, entity string, opts news.FetchOptions) []model.NewsArticle {
	m.Calls++
	m.Opts = opts
	return m.Articles
}

type MockStore struct {
	mu        sync.Mutex
	Entries   map[string][]model.MemoryEntry
	ReadErr   error
	AppendErr error
	Reads     int
	Appends   int
}

func (m *MockStore) Append(ctx context.Context, key string, entry model.MemoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Appends++
	if m.AppendErr != nil {
		return m.AppendErr
	}
	if m.Entries == nil {
		m.Entries = map[string][]model.MemoryEntry{}
	}
	m.Entries[key] = append(m.Entries[key], entry)
	return nil
}

func (m *MockStore) ReadAll(ctx context.Context, key string) ([]model.MemoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Reads++
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	return append([]model.MemoryEntry{}, m.Entries[key]...), nil
}

func (m *MockStore) Close(ctx context.Context) error {
	return nil
}

type MockSentiment struct {
	Result model.SentimentResult
	Err    error
	Texts  []string
}

func (m *MockSentiment) Label(ctx context.Context, text string) (model.SentimentResult, error) {
	m.Texts = append(m.Texts, text)
	return m.Result, m.Err
}

type MockReranker struct {
	Order []int
	Err   error
}

func (m *MockReranker) Rank(ctx context.Context, query string, docs []string) ([]int, error) {
	return m.Order, m.Err
}
