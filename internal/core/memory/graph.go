package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/agenthands/finsage/internal/core/model"
	"github.com/agenthands/finsage/internal/driver"
	"github.com/google/uuid"
)

// GraphStore keeps each key as a MemoryKey node with MemoryEntry children
// ordered by a per-key sequence number.
type GraphStore struct {
	Driver driver.GraphDriver
	mu     sync.Mutex
	now    func() time.Time
}

func NewGraphStore(d driver.GraphDriver) *GraphStore {
	return &GraphStore{Driver: d, now: time.Now}
}

func (s *GraphStore) Append(ctx context.Context, key string, entry model.MemoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	params := map[string]interface{}{
		"key":        key,
		"uuid":       uuid.New().String(),
		"question":   entry.Question,
		"answer":     entry.Answer,
		"created_at": s.now().UTC(),
	}
	_, err := s.Driver.ExecuteQuery(ctx, driver.AppendMemoryEntryQuery, params)
	return persistErr(OpAppend, key, err)
}

func (s *GraphStore) ReadAll(ctx context.Context, key string) ([]model.MemoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.Driver.ExecuteQuery(ctx, driver.ReadMemoryEntriesQuery, map[string]interface{}{"key": key})
	if err != nil {
		return nil, persistErr(OpRead, key, err)
	}

	entries := make([]model.MemoryEntry, 0, len(result.Records))
	for _, rec := range result.Records {
		q, _ := rec.Get("question")
		a, _ := rec.Get("answer")
		question, ok1 := q.(string)
		answer, ok2 := a.(string)
		if !ok1 || !ok2 {
			return nil, persistErr(OpRead, key, fmt.Errorf("unexpected record values %v", rec.Values))
		}
		entries = append(entries, model.MemoryEntry{Question: question, Answer: answer})
	}
	return entries, nil
}

func (s *GraphStore) Close(ctx context.Context) error {
	return s.Driver.Close(ctx)
}
