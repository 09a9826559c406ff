package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"quoteflow/internal/model"
	"quoteflow/logger"
)

const tradermadeBaseURL = "https://marketdata.tradermade.com/api/v1"

// TraderMade serves forex and commodity symbols. It is the one provider with
// two distinct historical endpoint shapes: an aggregate timeseries endpoint
// for daily-or-coarser intervals and a minute-resolution endpoint for
// intraday ones.
type TraderMade struct {
	apiKey  string
	baseURL string
	http    *httpClient
	log     *logger.Log
}

// NewTraderMade builds the adapter. The base URL is only overridden in tests.
func NewTraderMade(apiKey, baseURL string) *TraderMade {
	if baseURL == "" {
		baseURL = tradermadeBaseURL
	}
	return &TraderMade{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    newHTTPClient(2, 2),
		log:     logger.GetLogger(),
	}
}

func (t *TraderMade) Name() string { return "tradermade" }

func (t *TraderMade) ProbeSymbol() (string, model.AssetClass) {
	return "EURUSD", model.AssetForex
}

func (t *TraderMade) supports(class model.AssetClass) bool {
	return class == model.AssetForex || class == model.AssetCommodities
}

// tradermadeLiveResponse is the live endpoint envelope. Errors arrive as an
// HTTP 200 body carrying "error" and "message" instead of quotes.
type tradermadeLiveResponse struct {
	Error     json.Number `json:"error"`
	Message   string      `json:"message"`
	Timestamp int64       `json:"timestamp"`
	Quotes    []struct {
		Bid json.Number `json:"bid"`
		Ask json.Number `json:"ask"`
		Mid json.Number `json:"mid"`
	} `json:"quotes"`
}

func (t *TraderMade) FetchLive(ctx context.Context, symbol string, class model.AssetClass) model.FetchOutcome {
	if !t.supports(class) {
		return unsupportedClass(t.Name(), class)
	}

	u := fmt.Sprintf("%s/live?currency=%s&api_key=%s",
		t.baseURL, url.QueryEscape(strings.ToUpper(symbol)), url.QueryEscape(t.apiKey))
	body, err := t.http.getJSON(ctx, u, nil)
	if err != nil {
		return model.Failure(t.Name(), fmt.Sprintf("tradermade live fetch: %v", err))
	}

	var resp tradermadeLiveResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return model.Failure(t.Name(), fmt.Sprintf("tradermade live parse: %v", err))
	}
	if resp.Message != "" {
		return model.Failure(t.Name(), fmt.Sprintf("tradermade error: %s", resp.Message))
	}
	if len(resp.Quotes) == 0 {
		return model.Failure(t.Name(), fmt.Sprintf("tradermade returned no quotes for %s", symbol))
	}

	q := resp.Quotes[0]
	bid, _ := q.Bid.Float64()
	ask, _ := q.Ask.Float64()
	mid, _ := q.Mid.Float64()
	if mid == 0 {
		mid = (bid + ask) / 2
	}

	asOf := time.Now()
	if resp.Timestamp > 0 {
		asOf = time.Unix(resp.Timestamp, 0)
	}

	return model.FetchOutcome{
		Success: true,
		Quote: &model.Quote{
			Symbol:         strings.ToUpper(symbol),
			Bid:            bid,
			Ask:            ask,
			Last:           mid,
			AsOf:           asOf,
			SourceProvider: t.Name(),
		},
		SourceProvider: t.Name(),
	}
}

// tradermadeSeriesResponse covers both timeseries endpoint shapes.
type tradermadeSeriesResponse struct {
	Message string `json:"message"`
	Quotes  []struct {
		Date  string      `json:"date"`
		Open  json.Number `json:"open"`
		High  json.Number `json:"high"`
		Low   json.Number `json:"low"`
		Close json.Number `json:"close"`
	} `json:"quotes"`
}

// intervalClass classifies the requested interval. Anything that is not
// recognisably intraday degrades to daily rather than failing the request.
func intervalClass(interval string) string {
	s := strings.ToLower(strings.TrimSpace(interval))
	if strings.Contains(s, "min") || strings.Contains(s, "hour") || intradayShorthand(s) {
		return "intraday"
	}
	return "daily"
}

// intradayShorthand matches compact forms like "1m", "15m" or "4h".
func intradayShorthand(s string) bool {
	if len(s) < 2 {
		return false
	}
	unit := s[len(s)-1]
	if unit != 'm' && unit != 'h' {
		return false
	}
	for _, r := range s[:len(s)-1] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (t *TraderMade) FetchHistorical(ctx context.Context, symbol string, class model.AssetClass, params model.HistoricalParams) model.FetchOutcome {
	if !t.supports(class) {
		return unsupportedClass(t.Name(), class)
	}

	sym := strings.ToUpper(symbol)
	var u string
	switch intervalClass(params.Interval) {
	case "intraday":
		// The upstream's intraday parameter semantics are only partially
		// documented; this shape is a best-effort guess, so it warns
		// instead of failing outright.
		t.log.WithComponent("tradermade_historical").WithFields(logger.Fields{
			"symbol":   sym,
			"interval": params.Interval,
		}).Warn("intraday timeseries shape is a best-effort guess against the upstream contract")
		u = fmt.Sprintf("%s/timeseries?currency=%s&api_key=%s&start_date=%s&end_date=%s&interval=minute&period=%s&format=records",
			t.baseURL, url.QueryEscape(sym), url.QueryEscape(t.apiKey),
			params.From.UTC().Format("2006-01-02"), params.To.UTC().Format("2006-01-02"),
			url.QueryEscape(intradayPeriod(params.Interval)))
	default:
		u = fmt.Sprintf("%s/timeseries?currency=%s&api_key=%s&start_date=%s&end_date=%s&interval=daily&format=records",
			t.baseURL, url.QueryEscape(sym), url.QueryEscape(t.apiKey),
			params.From.UTC().Format("2006-01-02"), params.To.UTC().Format("2006-01-02"))
	}

	body, err := t.http.getJSON(ctx, u, nil)
	if err != nil {
		return model.Failure(t.Name(), fmt.Sprintf("tradermade timeseries fetch: %v", err))
	}

	var resp tradermadeSeriesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return model.Failure(t.Name(), fmt.Sprintf("tradermade timeseries parse: %v", err))
	}
	if resp.Message != "" {
		return model.Failure(t.Name(), fmt.Sprintf("tradermade error: %s", resp.Message))
	}

	candles := make([]model.Candle, 0, len(resp.Quotes))
	for _, q := range resp.Quotes {
		asOf, err := parseTradermadeDate(q.Date)
		if err != nil {
			t.log.WithComponent("tradermade_historical").WithError(err).WithFields(logger.Fields{
				"symbol": sym,
				"date":   q.Date,
			}).Warn("skipping bar with unparseable date")
			continue
		}
		open, _ := q.Open.Float64()
		high, _ := q.High.Float64()
		low, _ := q.Low.Float64()
		cls, _ := q.Close.Float64()
		candles = append(candles, model.Candle{AsOf: asOf, Open: open, High: high, Low: low, Close: cls})
	}
	if len(candles) == 0 {
		return model.Failure(t.Name(), fmt.Sprintf("tradermade returned no bars for %s", sym))
	}

	return model.FetchOutcome{
		Success:        true,
		Candles:        model.SortCandles(candles),
		SourceProvider: t.Name(),
	}
}

// intradayPeriod extracts the numeric minute period from interval strings
// like "5min" or "15m"; anything unparseable falls back to 1.
func intradayPeriod(interval string) string {
	digits := strings.TrimFunc(interval, func(r rune) bool { return r < '0' || r > '9' })
	if digits == "" {
		return "1"
	}
	return digits
}

func parseTradermadeDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", "2006-01-02 15:04:05", time.RFC3339} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}
