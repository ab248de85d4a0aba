package news

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/agenthands/finsage/internal/config"
	"github.com/agenthands/finsage/internal/core/model"
	"golang.org/x/time/rate"
)

type yahooNewsItem struct {
	UUID                string `json:"uuid"`
	Title               string `json:"title"`
	Publisher           string `json:"publisher"`
	Link                string `json:"link"`
	ProviderPublishTime int64  `json:"providerPublishTime"`
	Summary             string `json:"summary"`
}

// YahooFinanceProvider reads the news block of the Yahoo Finance search API.
// The API has no lookback parameter, so DaysBack is ignored.
type YahooFinanceProvider struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewYahooFinanceProvider(cfg config.ProviderConfig) *YahooFinanceProvider {
	return &YahooFinanceProvider{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeoutOrDefault(cfg.TimeoutSeconds)},
		limiter:    newLimiter(cfg.RequestsPerMinute),
	}
}

func (p *YahooFinanceProvider) Name() string {
	return SourceYahooFinance
}

func (p *YahooFinanceProvider) Fetch(ctx context.Context, req Request) ([]model.NewsArticle, error) {
	if err := waitLimiter(ctx, p.limiter); err != nil {
		return nil, err
	}

	count := req.Limit
	if count <= 0 {
		count = 10
	}
	params := url.Values{}
	params.Set("q", req.Ticker)
	params.Set("quotesCount", "0")
	params.Set("newsCount", strconv.Itoa(count))

	var raw yahooSearchResponse
	if err := getJSON(ctx, p.httpClient, p.baseURL+"/v1/finance/search?"+params.Encode(), &raw); err != nil {
		return nil, fmt.Errorf("yahoo finance fetch: %w", err)
	}

	articles := make([]model.NewsArticle, 0, len(raw.News))
	for _, item := range raw.News {
		var publishedAt time.Time
		if item.ProviderPublishTime > 0 {
			publishedAt = time.Unix(item.ProviderPublishTime, 0).UTC()
		}
		publisher := item.Publisher
		if publisher == "" {
			publisher = "Unknown"
		}

		articles = append(articles, model.NewsArticle{
			Title:        item.Title,
			Publisher:    publisher,
			Link:         item.Link,
			PublishedAt:  publishedAt,
			Summary:      item.Summary,
			SourceID:     SourceYahooFinance,
			EntityTicker: req.Ticker,
			CompanyName:  req.CompanyName,
		})
	}

	return truncate(articles, req.Limit), nil
}
