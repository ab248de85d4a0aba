package evaluation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/agenthands/finsage/internal/config"
	"github.com/agenthands/finsage/internal/core/model"
	"github.com/agenthands/finsage/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultThresholds() config.Thresholds {
	return config.Default().Evaluation.Thresholds
}

func TestScore_AnswerEqualToQueryIsRelevant(t *testing.T) {
	s := NewScorer(&MockEmbedder{}, defaultThresholds(), nil)
	q := "How is Apple stock performing after earnings"

	res, err := s.Score(context.Background(), Input{Query: q, Answer: q})
	require.NoError(t, err)

	assert.GreaterOrEqual(t, res.DimensionScores[model.DimensionRelevance], 99)
}

func TestScore_DefaultsWithoutContext(t *testing.T) {
	emb := &MockEmbedder{}
	s := NewScorer(emb, defaultThresholds(), nil)

	res, err := s.Score(context.Background(), Input{Query: "q", Answer: "Apple stock rose"})
	require.NoError(t, err)

	assert.Equal(t, 50, res.DimensionScores[model.DimensionAccuracy])
	assert.Equal(t, 30, res.DimensionScores[model.DimensionContextUsage])
	assert.Equal(t, 60, res.DimensionScores[model.DimensionClarity])
	// Only answer and query are embedded; a single sentence needs no clarity batch.
	require.Len(t, emb.Calls, 1)
	assert.Len(t, emb.Calls[0], 2)
}

func TestScore_OverallIsFlooredMean(t *testing.T) {
	s := NewScorer(&MockEmbedder{Fixed: []float32{1, 0, 0}}, defaultThresholds(), nil)

	res, err := s.Score(context.Background(), Input{Query: "q", Answer: "Apple stock rose"})
	require.NoError(t, err)

	// relevance 1, accuracy 0.5, completeness (3/50+1)/2, context 0.3, clarity 0.6
	assert.Equal(t, 100, res.DimensionScores[model.DimensionRelevance])
	assert.InDelta(t, 53, res.DimensionScores[model.DimensionCompleteness], 1)
	assert.Equal(t, 58, res.OverallScore)
}

func TestScore_ScoresStayInRange(t *testing.T) {
	s := NewScorer(&MockEmbedder{}, defaultThresholds(), nil)
	inputs := []Input{
		{},
		{Query: "anything", Answer: ""},
		{Query: "Tesla deliveries", Answer: "!!! ... ???"},
		{
			Query:         "Apple outlook",
			NewsSummaries: []string{"Apple beat estimates.", "iPhone sales up."},
			PastEntries:   []model.MemoryEntry{{Question: "Apple cap?", Answer: "Large."}},
			Answer:        "Apple beat estimates. iPhone sales were up. The outlook is positive!",
		},
	}

	for _, in := range inputs {
		res, err := s.Score(context.Background(), in)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, res.OverallScore, 0)
		assert.LessOrEqual(t, res.OverallScore, 100)
		require.Len(t, res.DimensionScores, 5)
		for d, v := range res.DimensionScores {
			assert.GreaterOrEqual(t, v, 0, d)
			assert.LessOrEqual(t, v, 100, d)
		}
	}
}

func TestScore_UsesNewsAndPastEntries(t *testing.T) {
	s := NewScorer(&MockEmbedder{}, defaultThresholds(), nil)
	in := Input{
		Query:         "What happened to Apple",
		NewsSummaries: []string{"Apple reported record revenue"},
		PastEntries:   []model.MemoryEntry{{Question: "Apple revenue", Answer: "record revenue"}},
		Answer:        "Apple reported record revenue",
	}

	res, err := s.Score(context.Background(), in)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, res.DimensionScores[model.DimensionAccuracy], 99)
	assert.Greater(t, res.DimensionScores[model.DimensionContextUsage], 30)
}

func TestScore_ClarityOfRepeatedSentences(t *testing.T) {
	s := NewScorer(&MockEmbedder{}, defaultThresholds(), nil)

	res, err := s.Score(context.Background(), Input{Query: "q", Answer: "Apple rose. Apple rose!"})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, res.DimensionScores[model.DimensionClarity], 99)
}

func TestScore_EmbeddingFailureIsServiceError(t *testing.T) {
	s := NewScorer(&MockEmbedder{Err: errors.New("connection refused")}, defaultThresholds(), nil)

	_, err := s.Score(context.Background(), Input{Query: "q", Answer: "a"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, llm.ErrEmbedding))
}

func TestScore_FeedbackAllPass(t *testing.T) {
	s := NewScorer(&MockEmbedder{}, config.Thresholds{}, nil)

	res, err := s.Score(context.Background(), Input{Query: "q", Answer: "a"})
	require.NoError(t, err)

	assert.Equal(t, PositiveFeedback, res.FeedbackText)
	assert.Equal(t, []string{PositiveFeedback}, res.Strengths)
	assert.Empty(t, res.CriticalIssues)
}

func TestScore_FeedbackAllFail(t *testing.T) {
	high := config.Thresholds{Relevance: 2, Accuracy: 2, Completeness: 2, ContextUsage: 2, Clarity: 2}
	s := NewScorer(&MockEmbedder{}, high, nil)

	res, err := s.Score(context.Background(), Input{Query: "q", Answer: "a"})
	require.NoError(t, err)

	assert.Equal(t, []string{
		RelevanceFeedback, AccuracyFeedback, CompletenessFeedback, ContextUsageFeedback, ClarityFeedback,
	}, res.CriticalIssues)
	assert.Empty(t, res.Strengths)
	assert.True(t, strings.HasPrefix(res.FeedbackText, RelevanceFeedback+" "))
}

func TestClassifySentences(t *testing.T) {
	issues, strengths := classifySentences([]string{
		"This could be shorter.",
		"Good use of sources.",
		"Good, but consider citing dates.",
		"Neutral remark.",
	})
	assert.Equal(t, []string{"This could be shorter.", "Good, but consider citing dates."}, issues)
	assert.Equal(t, []string{"Good use of sources.", "Good, but consider citing dates."}, strengths)
}

func TestCompleteness(t *testing.T) {
	assert.Equal(t, 0.0, Completeness(""))
	assert.InDelta(t, (4.0/50+0.25)/2, Completeness("a A a a"), 1e-9)

	words := make([]string, 50)
	for i := range words {
		words[i] = strings.Repeat("w", i+1)
	}
	assert.InDelta(t, 1.0, Completeness(strings.Join(words, " ")), 1e-9)
}

func TestSplitSentences(t *testing.T) {
	assert.Equal(t, []string{"One", "Two", "Three"}, SplitSentences("One. Two! Three?"))
	assert.Empty(t, SplitSentences(" ... !? "))
	assert.Equal(t, []string{"No terminator"}, SplitSentences("No terminator"))
}
