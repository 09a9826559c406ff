package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"quoteflow/internal/model"
)

const finnhubBaseURL = "https://finnhub.io/api/v1"

// Finnhub is a live-only stock source. Its free tier has no usable candle
// endpoint, so historical requests are rejected up front. The API keys go in
// the X-Finnhub-Token header rather than the query string.
type Finnhub struct {
	apiKey  string
	baseURL string
	http    *httpClient
}

func NewFinnhub(apiKey, baseURL string) *Finnhub {
	if baseURL == "" {
		baseURL = finnhubBaseURL
	}
	return &Finnhub{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    newHTTPClient(2, 4),
	}
}

func (f *Finnhub) Name() string { return "finnhub" }

func (f *Finnhub) ProbeSymbol() (string, model.AssetClass) {
	return "AAPL", model.AssetStocks
}

func (f *Finnhub) FetchLive(ctx context.Context, symbol string, class model.AssetClass) model.FetchOutcome {
	if class != model.AssetStocks {
		return unsupportedClass(f.Name(), class)
	}

	sym := strings.ToUpper(symbol)
	u := fmt.Sprintf("%s/quote?symbol=%s", f.baseURL, url.QueryEscape(sym))
	body, err := f.http.getJSON(ctx, u, map[string]string{"X-Finnhub-Token": f.apiKey})
	if err != nil {
		return model.Failure(f.Name(), fmt.Sprintf("finnhub quote fetch: %v", err))
	}

	var resp struct {
		Current       float64 `json:"c"`
		Change        float64 `json:"d"`
		ChangePercent float64 `json:"dp"`
		Timestamp     int64   `json:"t"`
		Error         string  `json:"error"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return model.Failure(f.Name(), fmt.Sprintf("finnhub quote parse: %v", err))
	}
	if resp.Error != "" {
		return model.Failure(f.Name(), fmt.Sprintf("finnhub error: %s", resp.Error))
	}
	// Unknown symbols come back as an all-zero quote, not an error.
	if resp.Current == 0 && resp.Timestamp == 0 {
		return model.Failure(f.Name(), fmt.Sprintf("finnhub has no data for %s", sym))
	}

	q := &model.Quote{
		Symbol:         sym,
		Last:           resp.Current,
		Change:         resp.Change,
		ChangePercent:  resp.ChangePercent,
		AsOf:           time.Unix(resp.Timestamp, 0),
		SourceProvider: f.Name(),
	}
	syntheticSpread(q)

	return model.FetchOutcome{Success: true, Quote: q, SourceProvider: f.Name()}
}

func (f *Finnhub) FetchHistorical(ctx context.Context, symbol string, class model.AssetClass, params model.HistoricalParams) model.FetchOutcome {
	return unsupportedMode(f.Name(), model.ModeHistorical)
}
