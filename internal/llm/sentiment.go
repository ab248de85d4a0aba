package llm

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/agenthands/finsage/internal/core/common"
	"github.com/agenthands/finsage/internal/core/model"
)

const defaultSentimentPrompt = `Classify the overall financial sentiment of the text below as positive, negative or neutral.
Return ONLY a JSON object of the form:
{"label": "positive", "distribution": {"positive": 0.7, "neutral": 0.2, "negative": 0.1}}

Text:
%s`

var whitespace = regexp.MustCompile(`\s+`)

type sentimentResponse struct {
	Label        string             `json:"label"`
	Distribution map[string]float64 `json:"distribution"`
}

// LLMSentiment labels text by prompting a generation model for JSON.
type LLMSentiment struct {
	LLM    LLMClient
	Prompt string
}

func NewLLMSentiment(client LLMClient, prompt string) *LLMSentiment {
	if prompt == "" {
		prompt = defaultSentimentPrompt
	}
	return &LLMSentiment{LLM: client, Prompt: prompt}
}

// Label returns the sentiment of text. Output that cannot be parsed is
// reported as neutral; only a failed model call returns an error.
func (s *LLMSentiment) Label(ctx context.Context, text string) (model.SentimentResult, error) {
	text = strings.TrimSpace(whitespace.ReplaceAllString(text, " "))
	if text == "" {
		return neutralSentiment(), nil
	}

	response, err := s.LLM.Generate(ctx, fmt.Sprintf(s.Prompt, text))
	if err != nil {
		return model.SentimentResult{}, Wrap(ServiceSentiment, fmt.Errorf("failed to generate sentiment: %w", err))
	}

	parsed, err := common.ParseJSON[sentimentResponse](response)
	if err != nil {
		return neutralSentiment(), nil
	}

	dist := map[model.SentimentLabel]float64{
		model.SentimentPositive: 0,
		model.SentimentNeutral:  0,
		model.SentimentNegative: 0,
	}
	for k, v := range parsed.Distribution {
		label := model.SentimentLabel(strings.ToLower(k))
		if _, ok := dist[label]; ok {
			dist[label] = v
		}
	}

	label := model.ParseSentimentLabel(parsed.Label)
	if parsed.Label == "" {
		label = argmax(dist)
	}

	return model.SentimentResult{
		Label:        label,
		Score:        dist[label],
		Distribution: dist,
	}, nil
}

func neutralSentiment() model.SentimentResult {
	return model.SentimentResult{
		Label: model.SentimentNeutral,
		Score: 1,
		Distribution: map[model.SentimentLabel]float64{
			model.SentimentPositive: 0,
			model.SentimentNeutral:  1,
			model.SentimentNegative: 0,
		},
	}
}

func argmax(dist map[model.SentimentLabel]float64) model.SentimentLabel {
	best := model.SentimentNeutral
	for _, l := range []model.SentimentLabel{model.SentimentNegative, model.SentimentNeutral, model.SentimentPositive} {
		if dist[l] > dist[best] {
			best = l
		}
	}
	return best
}
