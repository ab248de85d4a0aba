package news

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/agenthands/finsage/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func appleResolver() staticResolver {
	return staticResolver{
		"Apple": {Ticker: "AAPL", CompanyName: "Apple Inc."},
		"Tesla": {Ticker: "TSLA", CompanyName: "Tesla Inc."},
	}
}

func TestAggregator_Fetch_DedupsAcrossProviders(t *testing.T) {
	yahoo := &stubProvider{name: SourceYahooFinance, articles: []model.NewsArticle{
		article("Apple Beats Estimates", "first"),
	}}
	newsapi := &stubProvider{name: SourceNewsAPI, articles: []model.NewsArticle{
		article("apple beats estimates ", "second"),
		article("Apple opens new store", "third"),
	}}

	agg := NewAggregator(appleResolver(), discard, yahoo, newsapi)
	got := agg.Fetch(context.Background(), "Apple", FetchOptions{LimitPerSource: 50, DaysBack: 30})

	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Summary)
	assert.Equal(t, SourceYahooFinance, got[0].SourceID)
	assert.Equal(t, "Apple opens new store", got[1].Title)
	assert.Equal(t, "AAPL", got[1].EntityTicker)
	assert.Equal(t, "Apple Inc.", got[1].CompanyName)
}

func TestAggregator_Fetch_UnresolvedEntity(t *testing.T) {
	p := &stubProvider{name: SourceYahooFinance, articles: []model.NewsArticle{article("x", "y")}}
	agg := NewAggregator(appleResolver(), discard, p)

	got := agg.Fetch(context.Background(), "Nonexistent Corp", FetchOptions{})

	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Empty(t, p.requests)
}

func TestAggregator_Fetch_ProviderFailuresAreIsolated(t *testing.T) {
	failing := &stubProvider{name: SourceYahooFinance, err: errors.New("boom")}
	panicking := &stubProvider{name: SourceNewsAPI, panicMsg: "nil map"}
	ok := &stubProvider{name: SourceFinnhub, articles: []model.NewsArticle{article("Tesla recalls cars", "s")}}

	agg := NewAggregator(appleResolver(), discard, failing, panicking, ok)
	got := agg.Fetch(context.Background(), "Tesla", FetchOptions{})

	require.Len(t, got, 1)
	assert.Equal(t, SourceFinnhub, got[0].SourceID)
}

func TestAggregator_Fetch_AllProvidersFail(t *testing.T) {
	agg := NewAggregator(appleResolver(), discard,
		&stubProvider{name: SourceYahooFinance, err: errors.New("a")},
		&stubProvider{name: SourceNewsAPI, err: errors.New("b")},
	)
	got := agg.Fetch(context.Background(), "Apple", FetchOptions{})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestAggregator_Fetch_DropsPlaceholderTitles(t *testing.T) {
	p := &stubProvider{name: SourceYahooFinance, articles: []model.NewsArticle{
		article("No Title", "a"),
		article("   ", "b"),
		article("Real headline", "c"),
	}}
	agg := NewAggregator(appleResolver(), discard, p)

	got := agg.Fetch(context.Background(), "Apple", FetchOptions{})
	require.Len(t, got, 1)
	assert.Equal(t, "Real headline", got[0].Title)
}

func TestAggregator_Fetch_SingleSource(t *testing.T) {
	yahoo := &stubProvider{name: SourceYahooFinance, articles: []model.NewsArticle{article("from yahoo", "")}}
	finnhub := &stubProvider{name: SourceFinnhub, articles: []model.NewsArticle{article("from finnhub", "")}}
	agg := NewAggregator(appleResolver(), discard, yahoo, finnhub)

	got := agg.Fetch(context.Background(), "Apple", FetchOptions{Source: SourceFinnhub})
	require.Len(t, got, 1)
	assert.Equal(t, "from finnhub", got[0].Title)
	assert.Empty(t, yahoo.requests)

	got = agg.Fetch(context.Background(), "Apple", FetchOptions{Source: "bloomberg"})
	assert.Empty(t, got)
}

func TestAggregator_Fetch_PassesLimitsAndTruncates(t *testing.T) {
	p := &stubProvider{name: SourceYahooFinance, articles: []model.NewsArticle{
		article("one", ""), article("two", ""), article("three", ""),
	}}
	agg := NewAggregator(appleResolver(), discard, p)
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	agg.now = func() time.Time { return fixed }

	got := agg.Fetch(context.Background(), "Apple", FetchOptions{LimitPerSource: 2, DaysBack: 7})

	assert.Len(t, got, 2)
	require.Len(t, p.requests, 1)
	assert.Equal(t, Request{Ticker: "AAPL", CompanyName: "Apple Inc.", Limit: 2, DaysBack: 7, Now: fixed}, p.requests[0])
}

func TestAggregator_FetchMany(t *testing.T) {
	p := &stubProvider{name: SourceYahooFinance, articles: []model.NewsArticle{article("headline", "")}}
	agg := NewAggregator(appleResolver(), discard, p)

	report := agg.FetchMany(context.Background(), []string{"Apple", "Nope", "Tesla"}, FetchOptions{})

	assert.Equal(t, "combined", report.Source)
	require.Len(t, report.Data, 2)
	assert.Equal(t, "Apple", report.Data["AAPL"].CompanyName)
	assert.Len(t, report.Data["TSLA"].Articles, 1)
}

func TestAggregator_Sources(t *testing.T) {
	agg := NewAggregator(appleResolver(), discard,
		&stubProvider{name: SourceYahooFinance},
		&stubProvider{name: SourceNewsAPI},
		&stubProvider{name: SourceFinnhub},
		&stubProvider{name: SourceAlphaVantage},
	)
	assert.Equal(t, []string{"yahoo_finance", "news_api", "finnhub", "alpha_vantage"}, agg.Sources())
}

func TestDedup_Idempotent(t *testing.T) {
	in := []model.NewsArticle{
		article("A", "1"), article(" a ", "2"), article("B", "3"), article("no title", "4"),
	}
	once := Dedup(in)
	twice := Dedup(once)

	assert.Len(t, once, 2)
	assert.Equal(t, once, twice)
}

func TestClampDays(t *testing.T) {
	assert.Equal(t, 30, clampDays(90, 30))
	assert.Equal(t, 7, clampDays(7, 30))
	assert.Equal(t, 30, clampDays(0, 30))
	assert.Equal(t, 400, clampDays(400, 0))
}
