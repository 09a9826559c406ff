package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"quoteflow/internal/model"
	"quoteflow/logger"
)

const alphaVantageBaseURL = "https://www.alphavantage.co/query"

// AlphaVantage serves stocks and forex. The upstream is notorious for
// answering HTTP 200 with an error wrapped in "Error Message", "Note" or
// "Information" fields; all three are treated as provider failures.
type AlphaVantage struct {
	apiKey  string
	baseURL string
	http    *httpClient
	log     *logger.Log
}

func NewAlphaVantage(apiKey, baseURL string) *AlphaVantage {
	if baseURL == "" {
		baseURL = alphaVantageBaseURL
	}
	return &AlphaVantage{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    newHTTPClient(1, 1),
		log:     logger.GetLogger(),
	}
}

func (a *AlphaVantage) Name() string { return "alphavantage" }

func (a *AlphaVantage) ProbeSymbol() (string, model.AssetClass) {
	return "IBM", model.AssetStocks
}

func (a *AlphaVantage) supports(class model.AssetClass) bool {
	return class == model.AssetStocks || class == model.AssetForex
}

// embeddedError returns the first Alpha Vantage error-ish field in body.
func embeddedError(body []byte) string {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	for _, key := range []string{"Error Message", "Note", "Information"} {
		if raw, ok := envelope[key]; ok {
			var msg string
			if err := json.Unmarshal(raw, &msg); err == nil && msg != "" {
				return msg
			}
		}
	}
	return ""
}

func (a *AlphaVantage) FetchLive(ctx context.Context, symbol string, class model.AssetClass) model.FetchOutcome {
	switch class {
	case model.AssetStocks:
		return a.fetchGlobalQuote(ctx, symbol)
	case model.AssetForex:
		return a.fetchExchangeRate(ctx, symbol)
	default:
		return unsupportedClass(a.Name(), class)
	}
}

func (a *AlphaVantage) fetchGlobalQuote(ctx context.Context, symbol string) model.FetchOutcome {
	sym := strings.ToUpper(symbol)
	u := fmt.Sprintf("%s?function=GLOBAL_QUOTE&symbol=%s&apikey=%s",
		a.baseURL, url.QueryEscape(sym), url.QueryEscape(a.apiKey))
	body, err := a.http.getJSON(ctx, u, nil)
	if err != nil {
		return model.Failure(a.Name(), fmt.Sprintf("alphavantage quote fetch: %v", err))
	}
	if msg := embeddedError(body); msg != "" {
		return model.Failure(a.Name(), fmt.Sprintf("alphavantage error: %s", msg))
	}

	var resp struct {
		GlobalQuote map[string]string `json:"Global Quote"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return model.Failure(a.Name(), fmt.Sprintf("alphavantage quote parse: %v", err))
	}
	if len(resp.GlobalQuote) == 0 {
		return model.Failure(a.Name(), fmt.Sprintf("alphavantage returned no quote for %s", sym))
	}

	last := parseFloatField(resp.GlobalQuote, "05. price")
	if last == 0 {
		return model.Failure(a.Name(), fmt.Sprintf("alphavantage quote for %s has no price", sym))
	}

	q := &model.Quote{
		Symbol:         sym,
		Last:           last,
		Change:         parseFloatField(resp.GlobalQuote, "09. change"),
		ChangePercent:  parsePercentField(resp.GlobalQuote, "10. change percent"),
		Volume:         parseFloatField(resp.GlobalQuote, "06. volume"),
		AsOf:           time.Now(),
		SourceProvider: a.Name(),
	}
	syntheticSpread(q)

	return model.FetchOutcome{Success: true, Quote: q, SourceProvider: a.Name()}
}

func (a *AlphaVantage) fetchExchangeRate(ctx context.Context, symbol string) model.FetchOutcome {
	sym := strings.ToUpper(symbol)
	base, quote, err := splitCurrencyPair(sym)
	if err != nil {
		return model.Failure(a.Name(), fmt.Sprintf("alphavantage: %v", err))
	}

	u := fmt.Sprintf("%s?function=CURRENCY_EXCHANGE_RATE&from_currency=%s&to_currency=%s&apikey=%s",
		a.baseURL, base, quote, url.QueryEscape(a.apiKey))
	body, err := a.http.getJSON(ctx, u, nil)
	if err != nil {
		return model.Failure(a.Name(), fmt.Sprintf("alphavantage fx fetch: %v", err))
	}
	if msg := embeddedError(body); msg != "" {
		return model.Failure(a.Name(), fmt.Sprintf("alphavantage error: %s", msg))
	}

	var resp struct {
		Rate map[string]string `json:"Realtime Currency Exchange Rate"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return model.Failure(a.Name(), fmt.Sprintf("alphavantage fx parse: %v", err))
	}
	if len(resp.Rate) == 0 {
		return model.Failure(a.Name(), fmt.Sprintf("alphavantage returned no rate for %s", sym))
	}

	last := parseFloatField(resp.Rate, "5. Exchange Rate")
	if last == 0 {
		return model.Failure(a.Name(), fmt.Sprintf("alphavantage rate for %s is zero", sym))
	}

	q := &model.Quote{
		Symbol:         sym,
		Bid:            parseFloatField(resp.Rate, "8. Bid Price"),
		Ask:            parseFloatField(resp.Rate, "9. Ask Price"),
		Last:           last,
		AsOf:           time.Now(),
		SourceProvider: a.Name(),
	}
	syntheticSpread(q)

	return model.FetchOutcome{Success: true, Quote: q, SourceProvider: a.Name()}
}

func (a *AlphaVantage) FetchHistorical(ctx context.Context, symbol string, class model.AssetClass, params model.HistoricalParams) model.FetchOutcome {
	if class != model.AssetStocks {
		// The FX_DAILY surface shares the 25-requests-a-day free budget with
		// the stock series; forex history is left to higher-priority
		// providers.
		return unsupportedClass(a.Name(), class)
	}

	sym := strings.ToUpper(symbol)
	var u, seriesKey string
	if intervalClass(params.Interval) == "intraday" {
		interval := alphaVantageInterval(params.Interval)
		u = fmt.Sprintf("%s?function=TIME_SERIES_INTRADAY&symbol=%s&interval=%s&outputsize=full&apikey=%s",
			a.baseURL, url.QueryEscape(sym), interval, url.QueryEscape(a.apiKey))
		seriesKey = fmt.Sprintf("Time Series (%s)", interval)
	} else {
		u = fmt.Sprintf("%s?function=TIME_SERIES_DAILY&symbol=%s&outputsize=full&apikey=%s",
			a.baseURL, url.QueryEscape(sym), url.QueryEscape(a.apiKey))
		seriesKey = "Time Series (Daily)"
	}

	body, err := a.http.getJSON(ctx, u, nil)
	if err != nil {
		return model.Failure(a.Name(), fmt.Sprintf("alphavantage series fetch: %v", err))
	}
	if msg := embeddedError(body); msg != "" {
		return model.Failure(a.Name(), fmt.Sprintf("alphavantage error: %s", msg))
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return model.Failure(a.Name(), fmt.Sprintf("alphavantage series parse: %v", err))
	}
	raw, ok := envelope[seriesKey]
	if !ok {
		return model.Failure(a.Name(), fmt.Sprintf("alphavantage response missing %q", seriesKey))
	}

	var series map[string]map[string]string
	if err := json.Unmarshal(raw, &series); err != nil {
		return model.Failure(a.Name(), fmt.Sprintf("alphavantage series parse: %v", err))
	}

	candles := make([]model.Candle, 0, len(series))
	for date, bar := range series {
		asOf, err := parseAlphaVantageDate(date)
		if err != nil {
			a.log.WithComponent("alphavantage_historical").WithError(err).WithFields(logger.Fields{
				"symbol": sym,
				"date":   date,
			}).Warn("skipping bar with unparseable date")
			continue
		}
		if asOf.Before(params.From) || asOf.After(params.To.Add(24*time.Hour)) {
			continue
		}
		candles = append(candles, model.Candle{
			AsOf:   asOf,
			Open:   parseFloatField(bar, "1. open"),
			High:   parseFloatField(bar, "2. high"),
			Low:    parseFloatField(bar, "3. low"),
			Close:  parseFloatField(bar, "4. close"),
			Volume: parseFloatField(bar, "5. volume"),
		})
	}
	if len(candles) == 0 {
		return model.Failure(a.Name(), fmt.Sprintf("alphavantage returned no bars for %s in range", sym))
	}

	return model.FetchOutcome{
		Success:        true,
		Candles:        model.SortCandles(candles),
		SourceProvider: a.Name(),
	}
}

// alphaVantageInterval maps the engine's interval strings onto the fixed set
// the intraday endpoint accepts.
func alphaVantageInterval(interval string) string {
	switch strings.ToLower(strings.TrimSpace(interval)) {
	case "1min", "1m":
		return "1min"
	case "5min", "5m":
		return "5min"
	case "15min", "15m":
		return "15min"
	case "30min", "30m":
		return "30min"
	default:
		return "60min"
	}
}

func parseAlphaVantageDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", "2006-01-02 15:04:05"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

func parseFloatField(m map[string]string, key string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(m[key]), 64)
	if err != nil {
		return 0
	}
	return v
}

func parsePercentField(m map[string]string, key string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(m[key]), "%"), 64)
	if err != nil {
		return 0
	}
	return v
}

// splitCurrencyPair breaks "EURUSD" or "EUR/USD" into its two legs.
func splitCurrencyPair(symbol string) (base, quote string, err error) {
	s := strings.ReplaceAll(strings.ToUpper(symbol), "/", "")
	if len(s) != 6 {
		return "", "", fmt.Errorf("cannot split %q into a currency pair", symbol)
	}
	return s[:3], s[3:], nil
}
