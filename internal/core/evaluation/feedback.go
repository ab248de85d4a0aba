package evaluation

import (
	"strings"

	"github.com/agenthands/finsage/internal/core/model"
)

// Remediation sentences, one per dimension, and the single positive sentence
// emitted when nothing falls below its threshold.
const (
	RelevanceFeedback    = "The answer could address the original question more directly."
	AccuracyFeedback     = "Consider grounding each claim in the provided news summaries."
	CompletenessFeedback = "The answer could cover more aspects of the question with more varied detail."
	ContextUsageFeedback = "Consider making better use of the news and past answers about this entity."
	ClarityFeedback      = "Improve how consecutive sentences connect so the reasoning is easier to follow."
	PositiveFeedback     = "Good answer that meets every quality threshold."
)

var (
	issueMarkers    = []string{"could", "consider", "improve", "better"}
	strengthMarkers = []string{"good"}
)

func (s *Scorer) feedbackSentences(dims map[string]float64) []string {
	checks := []struct {
		dim       string
		threshold float64
		sentence  string
	}{
		{model.DimensionRelevance, s.Thresholds.Relevance, RelevanceFeedback},
		{model.DimensionAccuracy, s.Thresholds.Accuracy, AccuracyFeedback},
		{model.DimensionCompleteness, s.Thresholds.Completeness, CompletenessFeedback},
		{model.DimensionContextUsage, s.Thresholds.ContextUsage, ContextUsageFeedback},
		{model.DimensionClarity, s.Thresholds.Clarity, ClarityFeedback},
	}

	var sentences []string
	for _, c := range checks {
		if dims[c.dim] < c.threshold {
			sentences = append(sentences, c.sentence)
		}
	}
	if len(sentences) == 0 {
		sentences = append(sentences, PositiveFeedback)
	}
	return sentences
}

// classifySentences sorts sentences by marker substrings. A sentence holding
// both kinds of marker lands in both lists.
func classifySentences(sentences []string) (issues, strengths []string) {
	issues = []string{}
	strengths = []string{}
	for _, s := range sentences {
		lower := strings.ToLower(s)
		if containsAny(lower, issueMarkers) {
			issues = append(issues, s)
		}
		if containsAny(lower, strengthMarkers) {
			strengths = append(strengths, s)
		}
	}
	return issues, strengths
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
