// Package evaluation scores candidate answers along five embedding- and
// text-based dimensions and turns the scores into feedback for the next
// generation round.
package evaluation

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strings"

	"github.com/agenthands/finsage/internal/config"
	"github.com/agenthands/finsage/internal/core/model"
	"github.com/agenthands/finsage/internal/llm"
)

const (
	noNewsAccuracy      = 0.5
	noContextUsage      = 0.3
	singleSentenceScore = 0.6
	noPairsClarity      = 0.7
	adequateWordCount   = 50
)

var sentenceBoundary = regexp.MustCompile(`[.!?]`)

// Input is everything the scorer looks at for one candidate answer. Prompt
// and Sentiment are only shown to the optional LLM reviewer.
type Input struct {
	Query         string
	NewsSummaries []string
	PastEntries   []model.MemoryEntry
	Answer        string
	Prompt        string
	Sentiment     model.SentimentLabel
}

type Scorer struct {
	Embedder   llm.EmbedderClient
	Thresholds config.Thresholds
	Reviewer   *Reviewer
	logger     *slog.Logger
}

func NewScorer(embedder llm.EmbedderClient, thresholds config.Thresholds, logger *slog.Logger) *Scorer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scorer{
		Embedder:   embedder,
		Thresholds: thresholds,
		logger:     logger,
	}
}

// WithReviewer enables the LLM review pass.
func (s *Scorer) WithReviewer(r *Reviewer) *Scorer {
	s.Reviewer = r
	return s
}

// Score evaluates in.Answer. Only embedding (or reviewer generation) failures
// return an error; those are *llm.ServiceError values.
func (s *Scorer) Score(ctx context.Context, in Input) (model.EvaluationResult, error) {
	dims, err := s.dimensions(ctx, in)
	if err != nil {
		return model.EvaluationResult{}, err
	}

	result := model.EvaluationResult{
		DimensionScores: make(map[string]int, len(model.Dimensions)),
	}
	var sum float64
	for _, d := range model.Dimensions {
		v := clamp01(dims[d])
		sum += v
		result.DimensionScores[d] = int(v * 100)
	}
	result.OverallScore = int(math.Floor(sum / float64(len(model.Dimensions)) * 100))

	sentences := s.feedbackSentences(dims)
	result.CriticalIssues, result.Strengths = classifySentences(sentences)
	result.FeedbackText = strings.Join(sentences, " ")

	if s.Reviewer != nil {
		if err := s.Reviewer.Apply(ctx, in, &result); err != nil {
			return model.EvaluationResult{}, err
		}
	}

	s.logger.Debug("answer scored",
		"overall", result.OverallScore,
		"relevance", result.DimensionScores[model.DimensionRelevance],
		"accuracy", result.DimensionScores[model.DimensionAccuracy],
		"completeness", result.DimensionScores[model.DimensionCompleteness],
		"context_usage", result.DimensionScores[model.DimensionContextUsage],
		"clarity", result.DimensionScores[model.DimensionClarity],
	)
	return result, nil
}

// dimensions returns the raw, unclamped value of every dimension.
func (s *Scorer) dimensions(ctx context.Context, in Input) (map[string]float64, error) {
	newsText := strings.Join(in.NewsSummaries, "\n")
	contextText := buildContext(in.NewsSummaries, in.PastEntries)

	// One batch for the answer, the query and whichever context blocks exist.
	texts := []string{in.Answer, in.Query}
	newsIdx, ctxIdx := -1, -1
	if len(in.NewsSummaries) > 0 {
		newsIdx = len(texts)
		texts = append(texts, newsText)
	}
	if contextText != "" {
		ctxIdx = len(texts)
		texts = append(texts, contextText)
	}

	vecs, err := s.embedBatch(ctx, texts)
	if err != nil {
		return nil, err
	}
	answerVec := vecs[0]

	dims := map[string]float64{
		model.DimensionRelevance:    llm.CosineSimilarity(answerVec, vecs[1]),
		model.DimensionAccuracy:     noNewsAccuracy,
		model.DimensionContextUsage: noContextUsage,
		model.DimensionCompleteness: Completeness(in.Answer),
	}
	if newsIdx >= 0 {
		dims[model.DimensionAccuracy] = llm.CosineSimilarity(answerVec, vecs[newsIdx])
	}
	if ctxIdx >= 0 {
		dims[model.DimensionContextUsage] = llm.CosineSimilarity(answerVec, vecs[ctxIdx])
	}

	clarity, err := s.clarity(ctx, in.Answer)
	if err != nil {
		return nil, err
	}
	dims[model.DimensionClarity] = clarity

	return dims, nil
}

func (s *Scorer) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vecs, err := s.Embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, llm.Wrap(llm.ServiceEmbedding, err)
	}
	if len(vecs) != len(texts) {
		return nil, llm.Wrap(llm.ServiceEmbedding,
			fmt.Errorf("expected %d embeddings, got %d", len(texts), len(vecs)))
	}
	return vecs, nil
}

// clarity averages the cosine similarity of adjacent sentences.
func (s *Scorer) clarity(ctx context.Context, answer string) (float64, error) {
	sentences := SplitSentences(answer)
	if len(sentences) < 2 {
		return singleSentenceScore, nil
	}

	vecs, err := s.embedBatch(ctx, sentences)
	if err != nil {
		return 0, err
	}

	var total float64
	pairs := 0
	for i := 1; i < len(vecs); i++ {
		total += llm.CosineSimilarity(vecs[i-1], vecs[i])
		pairs++
	}
	if pairs == 0 {
		return noPairsClarity, nil
	}
	return total / float64(pairs), nil
}

// buildContext joins news summaries and "question answer" pairs.
func buildContext(news []string, past []model.MemoryEntry) string {
	parts := make([]string, 0, len(news)+len(past))
	parts = append(parts, news...)
	for _, e := range past {
		parts = append(parts, e.Question+" "+e.Answer)
	}
	return strings.Join(parts, "\n")
}

// SplitSentences splits on '.', '!' and '?' and drops empty fragments.
func SplitSentences(text string) []string {
	var out []string
	for _, part := range sentenceBoundary.Split(text, -1) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Completeness averages length adequacy and lexical diversity. Words are
// whitespace-separated and compared case-insensitively.
func Completeness(answer string) float64 {
	words := strings.Fields(answer)
	wc := len(words)

	unique := make(map[string]struct{}, wc)
	for _, w := range words {
		unique[strings.ToLower(w)] = struct{}{}
	}

	length := math.Min(1, float64(wc)/adequateWordCount)
	diversity := float64(len(unique)) / math.Max(1, float64(wc))
	return (length + diversity) / 2
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
