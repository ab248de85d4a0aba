// Package news gathers articles about an entity from several providers,
// merging and deduplicating them by normalized title.
package news

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/agenthands/finsage/internal/config"
	"github.com/agenthands/finsage/internal/core/model"
)

// FetchOptions narrows a fetch. An empty Source queries every provider.
type FetchOptions struct {
	Source         string
	LimitPerSource int
	DaysBack       int
}

type fetchResult struct {
	source   string
	articles []model.NewsArticle
	err      error
}

type Aggregator struct {
	providers []Provider
	resolver  TickerResolver
	logger    *slog.Logger
	now       func() time.Time
}

func NewAggregator(resolver TickerResolver, logger *slog.Logger, providers ...Provider) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		providers: providers,
		resolver:  resolver,
		logger:    logger,
		now:       time.Now,
	}
}

// NewFromConfig wires the four known providers in their fixed order.
func NewFromConfig(cfg config.NewsConfig, logger *slog.Logger) *Aggregator {
	resolver := NewResolver(cfg.Tickers, cfg.ResolverURL, !cfg.DisableResolver)
	return NewAggregator(resolver, logger,
		NewYahooFinanceProvider(cfg.YahooFinance),
		NewNewsAPIProvider(cfg.NewsAPI),
		NewFinnhubProvider(cfg.Finnhub),
		NewAlphaVantageProvider(cfg.AlphaVantage),
	)
}

// Sources lists provider identifiers in query order.
func (a *Aggregator) Sources() []string {
	names := make([]string, len(a.providers))
	for i, p := range a.providers {
		names[i] = p.Name()
	}
	return names
}

// Fetch never fails: unresolvable entities, unknown sources and provider
// errors all yield fewer (possibly zero) articles.
func (a *Aggregator) Fetch(ctx context.Context, entity string, opts FetchOptions) []model.NewsArticle {
	res, ok := a.resolver.Resolve(ctx, entity)
	if !ok {
		a.logger.Info("entity not resolved to a ticker", "entity", entity)
		return []model.NewsArticle{}
	}
	return a.fetchResolved(ctx, res, opts)
}

// FetchMany fetches several entities and groups articles by ticker, skipping
// entities that do not resolve.
func (a *Aggregator) FetchMany(ctx context.Context, entities []string, opts FetchOptions) model.NewsReport {
	source := opts.Source
	if source == "" {
		source = "combined"
	}
	report := model.NewsReport{
		Source:      source,
		RetrievedAt: a.now().UTC(),
		Data:        make(map[string]model.TickerNews),
	}

	for _, entity := range entities {
		res, ok := a.resolver.Resolve(ctx, entity)
		if !ok {
			continue
		}
		report.Data[res.Ticker] = model.TickerNews{
			CompanyName: entity,
			Articles:    a.fetchResolved(ctx, res, opts),
		}
	}
	return report
}

func (a *Aggregator) fetchResolved(ctx context.Context, res Resolution, opts FetchOptions) []model.NewsArticle {
	selected, ok := a.selectProviders(opts.Source)
	if !ok {
		a.logger.Info("unknown news source", "source", opts.Source)
		return []model.NewsArticle{}
	}

	req := Request{
		Ticker:      res.Ticker,
		CompanyName: res.CompanyName,
		Limit:       opts.LimitPerSource,
		DaysBack:    opts.DaysBack,
		Now:         a.now(),
	}

	var all []model.NewsArticle
	for _, p := range selected {
		r := a.fetchFrom(ctx, p, req)
		if r.err != nil {
			a.logger.Warn("news provider failed",
				"source", r.source,
				"ticker", res.Ticker,
				"error", r.err,
			)
			continue
		}
		all = append(all, r.articles...)
	}

	return Dedup(all)
}

func (a *Aggregator) selectProviders(source string) ([]Provider, bool) {
	if source == "" {
		return a.providers, true
	}
	for _, p := range a.providers {
		if p.Name() == source {
			return []Provider{p}, true
		}
	}
	return nil, false
}

// fetchFrom isolates one provider: errors and panics become a failed result
// rather than aborting the other providers.
func (a *Aggregator) fetchFrom(ctx context.Context, p Provider, req Request) (r fetchResult) {
	r.source = p.Name()
	defer func() {
		if rec := recover(); rec != nil {
			r.articles = nil
			r.err = fmt.Errorf("provider panicked: %v", rec)
		}
	}()

	articles, err := p.Fetch(ctx, req)
	if err != nil {
		r.err = err
		return r
	}

	articles = truncate(articles, req.Limit)
	r.articles = make([]model.NewsArticle, 0, len(articles))
	for _, art := range articles {
		if !art.HasValidTitle() {
			continue
		}
		if art.SourceID == "" {
			art.SourceID = p.Name()
		}
		if art.EntityTicker == "" {
			art.EntityTicker = req.Ticker
		}
		if art.CompanyName == "" {
			art.CompanyName = req.CompanyName
		}
		r.articles = append(r.articles, art)
	}
	return r
}

// Dedup keeps the first article for each normalized title and drops articles
// without a valid title. It is idempotent.
func Dedup(articles []model.NewsArticle) []model.NewsArticle {
	seen := make(map[string]struct{}, len(articles))
	unique := make([]model.NewsArticle, 0, len(articles))
	for _, art := range articles {
		if !art.HasValidTitle() {
			continue
		}
		key := art.NormalizedTitle()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, art)
	}
	return unique
}
