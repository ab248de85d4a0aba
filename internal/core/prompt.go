package core

import (
	"fmt"
	"strings"

	"github.com/agenthands/finsage/internal/core/model"
)

// DefaultGenerationPrompt takes, by index: topic, query, news, past Q&A,
// feedback, sentiment label, entity.
const DefaultGenerationPrompt = `You are a domain-specific financial assistant for %[1]s.

Query: %[2]s

News Summaries:
%[3]s

Past Queries and Answers:
%[4]s

Feedback: %[5]s
SA_label: %[6]s

Answer the query about %[7]s based on the above context.`

type promptInput struct {
	Topic     string
	Query     model.Query
	News      []string
	Past      []model.MemoryEntry
	Feedback  string
	Sentiment model.SentimentLabel
}

func renderPrompt(tpl string, in promptInput) string {
	var past strings.Builder
	for i, e := range in.Past {
		if i > 0 {
			past.WriteString("\n")
		}
		fmt.Fprintf(&past, "Q: %s\nA: %s", e.Question, e.Answer)
	}

	return fmt.Sprintf(tpl,
		in.Topic,
		in.Query.Text,
		strings.Join(in.News, "\n"),
		past.String(),
		in.Feedback,
		in.Sentiment,
		in.Query.Entity,
	)
}
