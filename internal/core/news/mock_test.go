package news

import (
	"context"
	"sync"

	"github.com/agenthands/finsage/internal/core/model"
)

type stubProvider struct {
	name     string
	articles []model.NewsArticle
	err      error
	panicMsg string

	mu       sync.Mutex
	requests []Request
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Fetch(ctx context.Context, req Request) ([]model.NewsArticle, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.articles, nil
}

type staticResolver map[string]Resolution

func (r staticResolver) Resolve(ctx context.Context, entity string) (Resolution, bool) {
	res, ok := r[entity]
	return res, ok
}

func article(title, summary string) model.NewsArticle {
	return model.NewsArticle{Title: title, Summary: summary}
}
