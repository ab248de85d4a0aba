package evaluation

import (
	"context"
	"errors"
	"testing"

	"github.com/agenthands/finsage/internal/config"
	"github.com/agenthands/finsage/internal/core/model"
	"github.com/agenthands/finsage/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewer_MergesParsedReview(t *testing.T) {
	mock := &MockLLM{Response: "```json\n" + `{"overall_score": 40, "critical_issues": ["Missing dates"], "strengths": ["Cites Reuters"], "actionable_feedback": "Add the quarter."}` + "\n```"}
	s := NewScorer(&MockEmbedder{}, config.Thresholds{}, nil).WithReviewer(NewReviewer(mock, "", nil))

	in := Input{
		Query:         "Apple earnings?",
		NewsSummaries: []string{"Apple beat."},
		PastEntries:   []model.MemoryEntry{{Question: "prev", Answer: "ans"}},
		Answer:        "Apple beat estimates.",
		Prompt:        "PROMPT",
		Sentiment:     model.SentimentPositive,
	}
	res, err := s.Score(context.Background(), in)
	require.NoError(t, err)

	assert.Contains(t, res.CriticalIssues, "Missing dates")
	assert.Contains(t, res.Strengths, "Cites Reuters")
	assert.Equal(t, PositiveFeedback+" Add the quarter.", res.FeedbackText)

	require.Len(t, mock.Prompts, 1)
	assert.Contains(t, mock.Prompts[0], "ORIGINAL QUERY: Apple earnings?")
	assert.Contains(t, mock.Prompts[0], "Q: prev | A: ans")
	assert.Contains(t, mock.Prompts[0], "SA LABEL: positive")
	assert.Contains(t, mock.Prompts[0], "PROMPT")
}

func TestReviewer_RawTextFallback(t *testing.T) {
	mock := &MockLLM{Response: "The answer is too vague."}
	s := NewScorer(&MockEmbedder{}, config.Thresholds{}, nil).WithReviewer(NewReviewer(mock, "", nil))

	res, err := s.Score(context.Background(), Input{Query: "q", Answer: "a"})
	require.NoError(t, err)
	assert.Equal(t, PositiveFeedback+" The answer is too vague.", res.FeedbackText)
}

func TestReviewer_GenerationFailureIsFatal(t *testing.T) {
	mock := &MockLLM{Err: errors.New("timeout")}
	s := NewScorer(&MockEmbedder{}, config.Thresholds{}, nil).WithReviewer(NewReviewer(mock, "", nil))

	_, err := s.Score(context.Background(), Input{Query: "q", Answer: "a"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, llm.ErrGeneration))
}
