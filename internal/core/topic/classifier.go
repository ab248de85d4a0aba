// Package topic maps free text onto a fixed set of finance topics by
// whole-word keyword counts.
package topic

import (
	"fmt"
	"regexp"
	"strings"
)

// Category is a finance topic.
type Category string

const (
	CryptoDigitalAssets Category = "crypto_digital_assets"
	CorporateBusiness   Category = "corporate_business"
	MarketsTrading      Category = "markets_trading"
)

// DefaultCategory is returned when no keyword matches.
const DefaultCategory = CorporateBusiness

type definition struct {
	category Category
	keywords []string
}

// Declaration order is the tie-break order: the most specific topic comes
// first, so a tie between a crypto term and a generic market term resolves
// to crypto_digital_assets.
var definitions = []definition{
	{CryptoDigitalAssets, []string{
		"bitcoin", "crypto", "blockchain", "token", "ethereum", "web3",
		"nft", "wallet", "coinbase", "exchange", "cryptoasset", "mining",
		"fold", "binance", "defi",
	}},
	{CorporateBusiness, []string{
		"product", "launch", "service", "deal", "partnership", "ceo", "executive",
		"earnings", "revenue", "sales", "strategy", "business", "expansion",
		"brand", "subsidiary", "factory", "plant", "supply", "production",
	}},
	{MarketsTrading, []string{
		"stock", "share", "price", "market", "index", "trading", "analyst",
		"investor", "valuation", "forecast", "target", "gain", "drop", "rise",
		"sell", "buy", "portfolio", "sector", "nasdaq", "sp500",
	}},
}

// AllCategories returns every category in declaration order.
func AllCategories() []Category {
	out := make([]Category, len(definitions))
	for i, d := range definitions {
		out[i] = d.category
	}
	return out
}

// Keywords returns a copy of the keyword set owned by c.
func Keywords(c Category) []string {
	for _, d := range definitions {
		if d.category == c {
			return append([]string(nil), d.keywords...)
		}
	}
	return nil
}

// ParseCategory accepts a category name case-insensitively.
func ParseCategory(s string) (Category, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, c := range AllCategories() {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown topic category %q", s)
}

type matcher struct {
	category Category
	patterns []*regexp.Regexp
}

// Classifier is stateless after construction and safe for concurrent use.
type Classifier struct {
	fallback Category
	matchers []matcher
}

// NewClassifier builds a classifier that returns fallback when nothing matches.
// An empty fallback selects DefaultCategory.
func NewClassifier(fallback Category) *Classifier {
	if fallback == "" {
		fallback = DefaultCategory
	}
	c := &Classifier{fallback: fallback}
	for _, d := range definitions {
		m := matcher{category: d.category}
		for _, kw := range d.keywords {
			m.patterns = append(m.patterns, regexp.MustCompile(`\b`+regexp.QuoteMeta(kw)+`\b`))
		}
		c.matchers = append(c.matchers, m)
	}
	return c
}

// Classify never fails. Ties on a positive score go to the category declared
// first.
func (c *Classifier) Classify(text string) Category {
	scores := c.Scores(text)

	best := c.fallback
	bestScore := 0
	for _, m := range c.matchers {
		if s := scores[m.category]; s > bestScore {
			best = m.category
			bestScore = s
		}
	}
	return best
}

// Scores counts, per category, how many distinct keywords occur as whole words.
func (c *Classifier) Scores(text string) map[Category]int {
	lower := strings.ToLower(text)
	scores := make(map[Category]int, len(c.matchers))
	for _, m := range c.matchers {
		n := 0
		for _, p := range m.patterns {
			if p.MatchString(lower) {
				n++
			}
		}
		scores[m.category] = n
	}
	return scores
}
