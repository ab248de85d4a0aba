package news

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
	"unicode"
)

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

type Resolution struct {
	Ticker      string
	CompanyName string
}

// TickerResolver maps a company name or ticker onto a ticker symbol.
type TickerResolver interface {
	Resolve(ctx context.Context, entity string) (Resolution, bool)
}

// Resolver checks a static ticker catalog first and then, when enabled, the
// Yahoo Finance symbol search.
type Resolver struct {
	catalog    map[string]string
	symbols    []string
	baseURL    string
	remote     bool
	httpClient *http.Client
}

func NewResolver(catalog map[string]string, baseURL string, remote bool) *Resolver {
	symbols := make([]string, 0, len(catalog))
	for s := range catalog {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	return &Resolver{
		catalog:    catalog,
		symbols:    symbols,
		baseURL:    strings.TrimRight(baseURL, "/"),
		remote:     remote && baseURL != "",
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *Resolver) Resolve(ctx context.Context, entity string) (Resolution, bool) {
	entity = strings.TrimSpace(entity)
	if entity == "" {
		return Resolution{}, false
	}

	if res, ok := r.lookupCatalog(entity); ok {
		return res, true
	}
	if !r.remote {
		return Resolution{}, false
	}

	res, err := r.search(ctx, entity)
	if err != nil || res.Ticker == "" {
		return Resolution{}, false
	}
	return res, true
}

func (r *Resolver) lookupCatalog(entity string) (Resolution, bool) {
	for _, s := range r.symbols {
		if strings.EqualFold(s, entity) {
			return Resolution{Ticker: s, CompanyName: r.catalog[s]}, true
		}
	}
	lower := strings.ToLower(entity)
	for _, s := range r.symbols {
		if nameMatches(strings.ToLower(r.catalog[s]), lower) {
			return Resolution{Ticker: s, CompanyName: r.catalog[s]}, true
		}
	}
	return Resolution{}, false
}

// nameMatches reports whether name equals entity or starts with it at a word
// boundary ("apple" matches "apple inc.", not "applebee's").
func nameMatches(name, entity string) bool {
	if name == "" || !strings.HasPrefix(name, entity) {
		return false
	}
	if len(name) == len(entity) {
		return true
	}
	next := rune(name[len(entity)])
	return !unicode.IsLetter(next) && !unicode.IsDigit(next)
}

type yahooSearchResponse struct {
	Quotes []struct {
		Symbol    string `json:"symbol"`
		ShortName string `json:"shortname"`
		LongName  string `json:"longname"`
	} `json:"quotes"`
	News []yahooNewsItem `json:"news"`
}

func (r *Resolver) search(ctx context.Context, entity string) (Resolution, error) {
	params := url.Values{}
	params.Set("q", entity)
	params.Set("quotesCount", "5")
	params.Set("newsCount", "0")

	var raw yahooSearchResponse
	if err := getJSON(ctx, r.httpClient, r.baseURL+"/v1/finance/search?"+params.Encode(), &raw); err != nil {
		return Resolution{}, fmt.Errorf("ticker search: %w", err)
	}
	if len(raw.Quotes) == 0 {
		return Resolution{}, nil
	}

	q := raw.Quotes[0]
	name := q.LongName
	if name == "" {
		name = q.ShortName
	}
	if name == "" {
		name = entity
	}
	return Resolution{Ticker: q.Symbol, CompanyName: name}, nil
}

// getJSON issues a GET and decodes a 2xx JSON body into out.
func getJSON(ctx context.Context, client *http.Client, rawURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
