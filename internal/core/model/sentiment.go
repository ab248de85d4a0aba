package model

import "strings"

type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNegative SentimentLabel = "negative"
	SentimentNeutral  SentimentLabel = "neutral"
)

// ParseSentimentLabel maps free text onto a label, defaulting to neutral.
func ParseSentimentLabel(s string) SentimentLabel {
	label := SentimentLabel(strings.ToLower(strings.TrimSpace(s)))
	switch label {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
		return label
	}
	return SentimentNeutral
}

type SentimentResult struct {
	Label        SentimentLabel             `json:"label"`
	Score        float64                    `json:"score"`
	Distribution map[SentimentLabel]float64 `json:"distribution"`
}
