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

type AlphaVantageProvider struct {
	apiKey      string
	baseURL     string
	maxDaysBack int
	httpClient  *http.Client
	limiter     *rate.Limiter
}

func NewAlphaVantageProvider(cfg config.ProviderConfig) *AlphaVantageProvider {
	maxDays := cfg.MaxDaysBack
	if maxDays <= 0 {
		maxDays = 30
	}
	return &AlphaVantageProvider{
		apiKey:      cfg.APIKey,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		maxDaysBack: maxDays,
		httpClient:  &http.Client{Timeout: timeoutOrDefault(cfg.TimeoutSeconds)},
		limiter:     newLimiter(cfg.RequestsPerMinute),
	}
}

func (p *AlphaVantageProvider) Name() string {
	return SourceAlphaVantage
}

type avResponse struct {
	Feed        []avFeedItem `json:"feed"`
	Information string       `json:"Information"`
	Note        string       `json:"Note"`
}

type avFeedItem struct {
	Title         string `json:"title"`
	Summary       string `json:"summary"`
	URL           string `json:"url"`
	Source        string `json:"source"`
	TimePublished string `json:"time_published"`
}

func (p *AlphaVantageProvider) Fetch(ctx context.Context, req Request) ([]model.NewsArticle, error) {
	if p.apiKey == "" {
		return nil, nil
	}
	if err := waitLimiter(ctx, p.limiter); err != nil {
		return nil, err
	}

	days := clampDays(req.DaysBack, p.maxDaysBack)
	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}

	params := url.Values{}
	params.Set("function", "NEWS_SENTIMENT")
	params.Set("tickers", req.Ticker)
	params.Set("time_from", req.Now.AddDate(0, 0, -days).UTC().Format("20060102T1504"))
	params.Set("sort", "LATEST")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("apikey", p.apiKey)

	var raw avResponse
	if err := getJSON(ctx, p.httpClient, p.baseURL+"/query?"+params.Encode(), &raw); err != nil {
		return nil, fmt.Errorf("alphavantage fetch: %w", err)
	}
	// Throttling and bad-key replies arrive as 200 with a message instead of a feed.
	if raw.Feed == nil && (raw.Information != "" || raw.Note != "") {
		return nil, fmt.Errorf("alphavantage: %s%s", raw.Information, raw.Note)
	}

	articles := make([]model.NewsArticle, 0, len(raw.Feed))
	for _, item := range raw.Feed {
		publishedAt, err := time.Parse("20060102T150405", item.TimePublished)
		if err != nil {
			publishedAt = time.Time{}
		}
		articles = append(articles, model.NewsArticle{
			Title:        item.Title,
			Publisher:    item.Source,
			Link:         item.URL,
			PublishedAt:  publishedAt,
			Summary:      item.Summary,
			SourceID:     SourceAlphaVantage,
			EntityTicker: req.Ticker,
			CompanyName:  req.CompanyName,
		})
	}

	return truncate(articles, req.Limit), nil
}
