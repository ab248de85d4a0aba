package model

import "time"

type Decision string

const (
	DecisionAccepted  Decision = "accepted"
	DecisionExhausted Decision = "exhausted"
)

// AttemptRecord captures one GENERATE/EVALUATE round.
type AttemptRecord struct {
	Iteration  int              `json:"iteration"`
	Answer     string           `json:"answer"`
	Prompt     string           `json:"prompt"`
	Evaluation EvaluationResult `json:"evaluation"`
}

type PipelineResult struct {
	RunID     string          `json:"run_id"`
	Query     Query           `json:"query"`
	Topic     string          `json:"topic"`
	Sentiment SentimentLabel  `json:"sentiment"`
	Best      AttemptRecord   `json:"best"`
	Attempts  []AttemptRecord `json:"attempts"`
	Decision  Decision        `json:"decision"`
	StartedAt time.Time       `json:"started_at"`
	Duration  time.Duration   `json:"duration"`
}

// Answer is the text of the selected attempt.
func (r *PipelineResult) Answer() string {
	return r.Best.Answer
}
