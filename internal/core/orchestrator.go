// Package core runs the classify, retrieve, generate and evaluate loop that
// turns a question about an entity into a scored answer.
package core

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/agenthands/finsage/internal/config"
	"github.com/agenthands/finsage/internal/core/evaluation"
	"github.com/agenthands/finsage/internal/core/memory"
	"github.com/agenthands/finsage/internal/core/model"
	"github.com/agenthands/finsage/internal/core/news"
	"github.com/agenthands/finsage/internal/core/topic"
	"github.com/agenthands/finsage/internal/llm"
	"github.com/google/uuid"
)

var ErrInvalidQuery = errors.New("query needs a question and an entity")

// NewsFetcher is the part of news.Aggregator the loop depends on.
type NewsFetcher interface {
	Fetch(ctx context.Context, entity string, opts news.FetchOptions) []model.NewsArticle
}

type Evaluator interface {
	Score(ctx context.Context, in evaluation.Input) (model.EvaluationResult, error)
}

type Options struct {
	MaxIter          int
	AcceptThreshold  int
	MaxNewsInPrompt  int
	GenerationPrompt string
	Fetch            news.FetchOptions
}

// OptionsFromConfig maps the [pipeline] and [prompts] sections.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		MaxIter:          cfg.Pipeline.MaxIter,
		AcceptThreshold:  cfg.Pipeline.AcceptThreshold,
		MaxNewsInPrompt:  cfg.Pipeline.MaxNewsInPrompt,
		GenerationPrompt: cfg.Prompts.Generation,
		Fetch: news.FetchOptions{
			Source:         cfg.Pipeline.Source,
			LimitPerSource: cfg.Pipeline.LimitPerSource,
			DaysBack:       cfg.Pipeline.DaysBack,
		},
	}
}

type Orchestrator struct {
	Classifier *topic.Classifier
	News       NewsFetcher
	Memory     memory.Store
	Generator  llm.LLMClient
	Scorer     Evaluator
	Sentiment  llm.SentimentClient
	Reranker   llm.RerankerClient
	Options    Options

	logger *slog.Logger
	newID  func() string
	now    func() time.Time
}

func NewOrchestrator(
	classifier *topic.Classifier,
	fetcher NewsFetcher,
	store memory.Store,
	generator llm.LLMClient,
	scorer Evaluator,
	opts Options,
	logger *slog.Logger,
) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MaxIter < 1 {
		opts.MaxIter = 1
	}
	if opts.GenerationPrompt == "" {
		opts.GenerationPrompt = DefaultGenerationPrompt
	}
	return &Orchestrator{
		Classifier: classifier,
		News:       fetcher,
		Memory:     store,
		Generator:  generator,
		Scorer:     scorer,
		Options:    opts,
		logger:     logger,
		newID:      func() string { return uuid.New().String() },
		now:        time.Now,
	}
}

// WithSentiment attaches the SA label step. Without it the label is neutral.
func (o *Orchestrator) WithSentiment(s llm.SentimentClient) *Orchestrator {
	o.Sentiment = s
	return o
}

// WithReranker orders news before it is cut to Options.MaxNewsInPrompt.
func (o *Orchestrator) WithReranker(r llm.RerankerClient) *Orchestrator {
	o.Reranker = r
	return o
}

// Answer runs the refinement loop for q. Generation and embedding failures
// abort the run and return a nil result. When only memory access fails, the
// result is returned together with a *memory.PersistenceError.
func (o *Orchestrator) Answer(ctx context.Context, q model.Query) (*model.PipelineResult, error) {
	q.Text = strings.TrimSpace(q.Text)
	q.Entity = strings.TrimSpace(q.Entity)
	if q.Text == "" || q.Entity == "" {
		return nil, ErrInvalidQuery
	}

	started := o.now()
	result := &model.PipelineResult{
		RunID:     o.newID(),
		Query:     q,
		StartedAt: started.UTC(),
	}
	log := o.logger.With("run_id", result.RunID, "entity", q.Entity)

	// CLASSIFY
	result.Topic = string(o.Classifier.Classify(q.Text))

	// RETRIEVE
	key := model.MemoryKey(q.Entity)
	var persistErr error

	articles := o.News.Fetch(ctx, q.Entity, o.Options.Fetch)
	summaries := o.selectNews(ctx, q.Text, model.Summaries(articles), log)

	past, err := o.Memory.ReadAll(ctx, key)
	if err != nil {
		log.Error("failed to read memory, continuing without history", "key", key, "error", err)
		persistErr = err
		past = nil
	}

	result.Sentiment = o.label(ctx, summaries, log)

	log.Info("context retrieved",
		"topic", result.Topic,
		"articles", len(articles),
		"news_in_prompt", len(summaries),
		"past_entries", len(past),
		"sentiment", result.Sentiment,
	)

	// GENERATE / EVALUATE
	feedback := ""
	bestIdx := -1
	for iteration := 1; iteration <= o.Options.MaxIter; iteration++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		prompt := renderPrompt(o.Options.GenerationPrompt, promptInput{
			Topic:     result.Topic,
			Query:     q,
			News:      summaries,
			Past:      past,
			Feedback:  feedback,
			Sentiment: result.Sentiment,
		})

		answer, err := o.Generator.Generate(ctx, prompt)
		if err != nil {
			log.Error("generation failed", "iteration", iteration, "error", err)
			return nil, llm.Wrap(llm.ServiceGeneration, err)
		}
		answer = strings.TrimSpace(answer)

		eval, err := o.Scorer.Score(ctx, evaluation.Input{
			Query:         q.Text,
			NewsSummaries: summaries,
			PastEntries:   past,
			Answer:        answer,
			Prompt:        prompt,
			Sentiment:     result.Sentiment,
		})
		if err != nil {
			log.Error("evaluation failed", "iteration", iteration, "error", err)
			var se *llm.ServiceError
			if errors.As(err, &se) {
				return nil, err
			}
			return nil, llm.Wrap(llm.ServiceEmbedding, err)
		}

		result.Attempts = append(result.Attempts, model.AttemptRecord{
			Iteration:  iteration,
			Answer:     answer,
			Prompt:     prompt,
			Evaluation: eval,
		})
		if bestIdx < 0 || eval.OverallScore > result.Attempts[bestIdx].Evaluation.OverallScore {
			bestIdx = len(result.Attempts) - 1
		}

		if eval.OverallScore >= o.Options.AcceptThreshold {
			result.Decision = model.DecisionAccepted
			log.Info("answer accepted", "iteration", iteration, "score", eval.OverallScore)
			break
		}

		log.Info("answer below threshold",
			"iteration", iteration,
			"score", eval.OverallScore,
			"threshold", o.Options.AcceptThreshold,
		)
		feedback = eval.FeedbackText
	}

	if result.Decision == "" {
		result.Decision = model.DecisionExhausted
	}
	result.Best = result.Attempts[bestIdx]

	// Terminal: exactly one append per completed run.
	entry := model.MemoryEntry{Question: q.Text, Answer: result.Best.Answer}
	if err := o.Memory.Append(ctx, key, entry); err != nil {
		log.Error("failed to persist answer", "key", key, "error", err)
		persistErr = err
	}

	result.Duration = o.now().Sub(started)
	log.Info("run finished",
		"decision", result.Decision,
		"score", result.Best.Evaluation.OverallScore,
		"iterations", len(result.Attempts),
		"duration", result.Duration,
	)

	if persistErr != nil {
		var pErr *memory.PersistenceError
		if !errors.As(persistErr, &pErr) {
			persistErr = &memory.PersistenceError{Op: memory.OpAppend, Key: key, Err: persistErr}
		}
		return result, persistErr
	}
	return result, nil
}

// selectNews keeps at most MaxNewsInPrompt summaries, reranked by relevance
// when a reranker is attached. Reranker failures keep the fetched order.
func (o *Orchestrator) selectNews(ctx context.Context, query string, summaries []string, log *slog.Logger) []string {
	limit := o.Options.MaxNewsInPrompt
	if limit <= 0 || len(summaries) <= limit {
		return summaries
	}

	if o.Reranker != nil {
		order, err := o.Reranker.Rank(ctx, query, summaries)
		if err != nil {
			log.Warn("rerank failed, keeping fetch order", "error", err)
		} else {
			ranked := make([]string, 0, len(summaries))
			for _, idx := range order {
				if idx >= 0 && idx < len(summaries) {
					ranked = append(ranked, summaries[idx])
				}
			}
			if len(ranked) >= limit {
				summaries = ranked
			}
		}
	}
	return summaries[:limit]
}

// label computes the SA label over all news. Failures degrade to neutral.
func (o *Orchestrator) label(ctx context.Context, summaries []string, log *slog.Logger) model.SentimentLabel {
	if o.Sentiment == nil || len(summaries) == 0 {
		return model.SentimentNeutral
	}

	res, err := o.Sentiment.Label(ctx, strings.Join(summaries, "\n"))
	if err != nil {
		log.Warn("sentiment failed, using neutral", "error", err)
		return model.SentimentNeutral
	}
	return model.ParseSentimentLabel(string(res.Label))
}

