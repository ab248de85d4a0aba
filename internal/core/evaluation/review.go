package evaluation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/agenthands/finsage/internal/core/common"
	"github.com/agenthands/finsage/internal/core/model"
	"github.com/agenthands/finsage/internal/llm"
)

// DefaultReviewPrompt takes, by index: query, news, past Q&A, sentiment label,
// answer, generation prompt.
const DefaultReviewPrompt = `You are an expert response evaluator. Give concrete, actionable feedback to improve this specific answer.

ORIGINAL QUERY: %[1]s

NEWS SUMMARIES:
%[2]s

PAST QUERIES & ANSWERS:
%[3]s

SA LABEL: %[4]s

SPECIALIST'S RESPONSE:
%[5]s

PROMPT USED BY SPECIALIST:
%[6]s

Judge relevance, accuracy against the news, completeness, use of context and clarity.

Respond with JSON only:
{"overall_score": 0-100, "critical_issues": ["..."], "strengths": ["..."], "actionable_feedback": "..."}`

// Reviewer asks the generation model for a structured critique that is merged
// into a scored result. It never changes the numeric scores.
type Reviewer struct {
	LLM    llm.LLMClient
	Prompt string
	logger *slog.Logger
}

func NewReviewer(client llm.LLMClient, prompt string, logger *slog.Logger) *Reviewer {
	if prompt == "" {
		prompt = DefaultReviewPrompt
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reviewer{LLM: client, Prompt: prompt, logger: logger}
}

// Apply appends the review to result. A response that does not parse is
// appended verbatim to the feedback text.
func (r *Reviewer) Apply(ctx context.Context, in Input, result *model.EvaluationResult) error {
	var past strings.Builder
	for _, e := range in.PastEntries {
		fmt.Fprintf(&past, "Q: %s | A: %s\n", e.Question, e.Answer)
	}
	prompt := fmt.Sprintf(r.Prompt,
		in.Query,
		strings.Join(in.NewsSummaries, "\n"),
		past.String(),
		in.Sentiment,
		in.Answer,
		in.Prompt,
	)

	response, err := r.LLM.Generate(ctx, prompt)
	if err != nil {
		return llm.Wrap(llm.ServiceGeneration, fmt.Errorf("review: %w", err))
	}

	review, err := common.ParseJSON[model.Review](response)
	if err != nil {
		r.logger.Warn("review response was not JSON, keeping raw text", "error", err)
		result.FeedbackText = appendText(result.FeedbackText, strings.TrimSpace(response))
		return nil
	}

	result.CriticalIssues = append(result.CriticalIssues, review.CriticalIssues...)
	result.Strengths = append(result.Strengths, review.Strengths...)
	result.FeedbackText = appendText(result.FeedbackText, strings.TrimSpace(review.ActionableFeedback))
	return nil
}

func appendText(base, extra string) string {
	if extra == "" {
		return base
	}
	if base == "" {
		return extra
	}
	return base + " " + extra
}
