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

const newsAPIMaxPageSize = 100

// NewsAPIProvider queries newsapi.org /v2/everything. Without an API key it
// returns no articles.
type NewsAPIProvider struct {
	apiKey      string
	baseURL     string
	maxDaysBack int
	httpClient  *http.Client
	limiter     *rate.Limiter
}

func NewNewsAPIProvider(cfg config.ProviderConfig) *NewsAPIProvider {
	maxDays := cfg.MaxDaysBack
	if maxDays <= 0 {
		maxDays = 30
	}
	return &NewsAPIProvider{
		apiKey:      cfg.APIKey,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		maxDaysBack: maxDays,
		httpClient:  &http.Client{Timeout: timeoutOrDefault(cfg.TimeoutSeconds)},
		limiter:     newLimiter(cfg.RequestsPerMinute),
	}
}

func (p *NewsAPIProvider) Name() string {
	return SourceNewsAPI
}

type newsAPIResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

func (p *NewsAPIProvider) Fetch(ctx context.Context, req Request) ([]model.NewsArticle, error) {
	if p.apiKey == "" {
		return nil, nil
	}
	if err := waitLimiter(ctx, p.limiter); err != nil {
		return nil, err
	}

	days := clampDays(req.DaysBack, p.maxDaysBack)
	from := req.Now.AddDate(0, 0, -days).Format("2006-01-02")

	query := req.Ticker
	if req.CompanyName != "" {
		query = fmt.Sprintf("%s OR %s", req.Ticker, req.CompanyName)
	}

	pageSize := req.Limit
	if pageSize <= 0 || pageSize > newsAPIMaxPageSize {
		pageSize = newsAPIMaxPageSize
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("from", from)
	params.Set("sortBy", "publishedAt")
	params.Set("language", "en")
	params.Set("pageSize", strconv.Itoa(pageSize))
	params.Set("apiKey", p.apiKey)

	var raw newsAPIResponse
	if err := getJSON(ctx, p.httpClient, p.baseURL+"/v2/everything?"+params.Encode(), &raw); err != nil {
		return nil, fmt.Errorf("newsapi fetch: %w", err)
	}
	if raw.Status != "" && raw.Status != "ok" {
		return nil, fmt.Errorf("newsapi status %q: %s", raw.Status, raw.Message)
	}

	articles := make([]model.NewsArticle, 0, len(raw.Articles))
	for _, item := range raw.Articles {
		publishedAt, err := time.Parse(time.RFC3339, item.PublishedAt)
		if err != nil {
			publishedAt = time.Time{}
		}
		articles = append(articles, model.NewsArticle{
			Title:        item.Title,
			Publisher:    item.Source.Name,
			Link:         item.URL,
			PublishedAt:  publishedAt,
			Summary:      item.Description,
			SourceID:     SourceNewsAPI,
			EntityTicker: req.Ticker,
			CompanyName:  req.CompanyName,
		})
	}

	return truncate(articles, req.Limit), nil
}
