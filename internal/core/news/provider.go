package news

import (
	"context"
	"time"

	"github.com/agenthands/finsage/internal/core/model"
	"golang.org/x/time/rate"
)

// Known provider identifiers, in aggregation order.
const (
	SourceYahooFinance = "yahoo_finance"
	SourceNewsAPI      = "news_api"
	SourceFinnhub      = "finnhub"
	SourceAlphaVantage = "alpha_vantage"
)

// Request is what the aggregator asks of a single provider.
type Request struct {
	Ticker      string
	CompanyName string
	Limit       int
	DaysBack    int
	Now         time.Time
}

// Provider fetches articles for one ticker from one news source. Adapters
// enforce Limit themselves and clamp DaysBack to what their API accepts.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, req Request) ([]model.NewsArticle, error)
}

// clampDays bounds days to max when the provider has a lookback limit.
func clampDays(days, max int) int {
	if days <= 0 {
		days = max
	}
	if max > 0 && days > max {
		return max
	}
	return days
}

func truncate(articles []model.NewsArticle, limit int) []model.NewsArticle {
	if limit > 0 && len(articles) > limit {
		return articles[:limit]
	}
	return articles
}

// newLimiter returns nil when requestsPerMinute is not positive.
func newLimiter(requestsPerMinute int) *rate.Limiter {
	if requestsPerMinute <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1)
}

func waitLimiter(ctx context.Context, l *rate.Limiter) error {
	if l == nil {
		return nil
	}
	return l.Wait(ctx)
}

func timeoutOrDefault(seconds int) time.Duration {
	if seconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(seconds) * time.Second
}
