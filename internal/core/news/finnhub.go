package news

import (
	"context"
	"fmt"
	"time"

	finnhub "github.com/Finnhub-Stock-API/finnhub-go/v2"
	"github.com/agenthands/finsage/internal/config"
	"github.com/agenthands/finsage/internal/core/model"
	"golang.org/x/time/rate"
)

// FinnhubProvider uses the company-news endpoint of the Finnhub SDK.
type FinnhubProvider struct {
	client      *finnhub.DefaultApiService
	enabled     bool
	maxDaysBack int
	limiter     *rate.Limiter
}

func NewFinnhubProvider(cfg config.ProviderConfig) *FinnhubProvider {
	fcfg := finnhub.NewConfiguration()
	fcfg.AddDefaultHeader("X-Finnhub-Token", cfg.APIKey)
	if cfg.BaseURL != "" {
		fcfg.Servers = finnhub.ServerConfigurations{{URL: cfg.BaseURL}}
	}

	maxDays := cfg.MaxDaysBack
	if maxDays <= 0 {
		maxDays = 365
	}
	return &FinnhubProvider{
		client:      finnhub.NewAPIClient(fcfg).DefaultApi,
		enabled:     cfg.APIKey != "",
		maxDaysBack: maxDays,
		limiter:     newLimiter(cfg.RequestsPerMinute),
	}
}

func (p *FinnhubProvider) Name() string {
	return SourceFinnhub
}

func (p *FinnhubProvider) Fetch(ctx context.Context, req Request) ([]model.NewsArticle, error) {
	if !p.enabled {
		return nil, nil
	}
	if err := waitLimiter(ctx, p.limiter); err != nil {
		return nil, err
	}

	days := clampDays(req.DaysBack, p.maxDaysBack)
	from := req.Now.AddDate(0, 0, -days).Format("2006-01-02")
	to := req.Now.Format("2006-01-02")

	res, _, err := p.client.CompanyNews(ctx).Symbol(req.Ticker).From(from).To(to).Execute()
	if err != nil {
		return nil, fmt.Errorf("finnhub fetch: %w", err)
	}

	articles := make([]model.NewsArticle, 0, len(res))
	for _, item := range res {
		a := model.NewsArticle{
			SourceID:     SourceFinnhub,
			EntityTicker: req.Ticker,
			CompanyName:  req.CompanyName,
		}
		if item.Headline != nil {
			a.Title = *item.Headline
		}
		if item.Summary != nil {
			a.Summary = *item.Summary
		}
		if item.Url != nil {
			a.Link = *item.Url
		}
		if item.Source != nil {
			a.Publisher = *item.Source
		}
		if item.Datetime != nil {
			a.PublishedAt = time.Unix(*item.Datetime, 0).UTC()
		}
		articles = append(articles, a)
	}

	return truncate(articles, req.Limit), nil
}
