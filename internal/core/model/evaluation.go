package model

// Dimension names used as keys of EvaluationResult.DimensionScores.
const (
	DimensionRelevance    = "relevance"
	DimensionAccuracy     = "accuracy"
	DimensionCompleteness = "completeness"
	DimensionContextUsage = "context_usage"
	DimensionClarity      = "clarity"
)

// Dimensions lists the scored dimensions in reporting order.
var Dimensions = []string{
	DimensionRelevance,
	DimensionAccuracy,
	DimensionCompleteness,
	DimensionContextUsage,
	DimensionClarity,
}

type EvaluationResult struct {
	DimensionScores map[string]int `json:"dimension_scores"`
	OverallScore    int            `json:"overall_score"`
	CriticalIssues  []string       `json:"critical_issues"`
	Strengths       []string       `json:"strengths"`
	FeedbackText    string         `json:"feedback_text"`
}

// Review mirrors the JSON an LLM reviewer is asked to return.
type Review struct {
	OverallScore       int      `json:"overall_score"`
	CriticalIssues     []string `json:"critical_issues"`
	Strengths          []string `json:"strengths"`
	ActionableFeedback string   `json:"actionable_feedback"`
}
