package model

import (
	"strings"
	"time"
)

// PlaceholderTitle is what providers emit when an item has no headline.
const PlaceholderTitle = "no title"

type NewsArticle struct {
	Title        string    `json:"title"`
	Publisher    string    `json:"publisher"`
	Link         string    `json:"link"`
	PublishedAt  time.Time `json:"published_at"`
	Summary      string    `json:"summary"`
	SourceID     string    `json:"source_id"`
	EntityTicker string    `json:"entity_ticker"`
	CompanyName  string    `json:"company_name,omitempty"`
}

// NormalizedTitle is the dedup identity of an article.
func (a NewsArticle) NormalizedTitle() string {
	return strings.ToLower(strings.TrimSpace(a.Title))
}

// HasValidTitle reports whether the article carries a real headline.
func (a NewsArticle) HasValidTitle() bool {
	t := a.NormalizedTitle()
	return t != "" && t != PlaceholderTitle
}

// Summaries returns one line of context per article: its summary, or its
// title when the summary is empty.
func Summaries(articles []NewsArticle) []string {
	out := make([]string, 0, len(articles))
	for _, a := range articles {
		s := strings.TrimSpace(a.Summary)
		if s == "" {
			s = strings.TrimSpace(a.Title)
		}
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// TickerNews groups the articles found for one resolved ticker.
type TickerNews struct {
	CompanyName string        `json:"company_name"`
	Articles    []NewsArticle `json:"articles"`
}

// NewsReport is the grouped result of fetching several entities at once.
type NewsReport struct {
	Source      string                `json:"source"`
	RetrievedAt time.Time             `json:"retrieved_at"`
	Data        map[string]TickerNews `json:"data"`
}
