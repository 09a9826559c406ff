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

const twelveDataBaseURL = "https://api.twelvedata.com"

// TwelveData serves stocks, forex and crypto. Its error envelope is an
// HTTP 200 body with {"status":"error","message":...}.
type TwelveData struct {
	apiKey  string
	baseURL string
	http    *httpClient
	log     *logger.Log
}

func NewTwelveData(apiKey, baseURL string) *TwelveData {
	if baseURL == "" {
		baseURL = twelveDataBaseURL
	}
	return &TwelveData{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    newHTTPClient(1, 2),
		log:     logger.GetLogger(),
	}
}

func (t *TwelveData) Name() string { return "twelvedata" }

func (t *TwelveData) ProbeSymbol() (string, model.AssetClass) {
	return "AAPL", model.AssetStocks
}

func (t *TwelveData) supports(class model.AssetClass) bool {
	switch class {
	case model.AssetStocks, model.AssetForex, model.AssetCrypto:
		return true
	}
	return false
}

// twelveDataSymbol rewrites pair symbols into the slash form the API wants.
func twelveDataSymbol(symbol string, class model.AssetClass) string {
	sym := strings.ToUpper(symbol)
	if class == model.AssetStocks || strings.Contains(sym, "/") {
		return sym
	}
	if base, quote, err := splitCurrencyPair(sym); err == nil {
		return base + "/" + quote
	}
	return sym
}

type twelveDataStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (t *TwelveData) FetchLive(ctx context.Context, symbol string, class model.AssetClass) model.FetchOutcome {
	if !t.supports(class) {
		return unsupportedClass(t.Name(), class)
	}

	sym := twelveDataSymbol(symbol, class)
	u := fmt.Sprintf("%s/quote?symbol=%s&apikey=%s",
		t.baseURL, url.QueryEscape(sym), url.QueryEscape(t.apiKey))
	body, err := t.http.getJSON(ctx, u, nil)
	if err != nil {
		return model.Failure(t.Name(), fmt.Sprintf("twelvedata quote fetch: %v", err))
	}

	var status twelveDataStatus
	if err := json.Unmarshal(body, &status); err == nil && status.Status == "error" {
		return model.Failure(t.Name(), fmt.Sprintf("twelvedata error: %s", status.Message))
	}

	var resp struct {
		Symbol        string      `json:"symbol"`
		Close         json.Number `json:"close"`
		Change        json.Number `json:"change"`
		PercentChange json.Number `json:"percent_change"`
		Volume        json.Number `json:"volume"`
		Timestamp     int64       `json:"timestamp"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return model.Failure(t.Name(), fmt.Sprintf("twelvedata quote parse: %v", err))
	}

	last, _ := resp.Close.Float64()
	if last == 0 {
		return model.Failure(t.Name(), fmt.Sprintf("twelvedata quote for %s has no price", sym))
	}
	change, _ := resp.Change.Float64()
	changePct, _ := resp.PercentChange.Float64()
	volume, _ := resp.Volume.Float64()

	asOf := time.Now()
	if resp.Timestamp > 0 {
		asOf = time.Unix(resp.Timestamp, 0)
	}

	q := &model.Quote{
		Symbol:         strings.ToUpper(symbol),
		Last:           last,
		Change:         change,
		ChangePercent:  changePct,
		Volume:         volume,
		AsOf:           asOf,
		SourceProvider: t.Name(),
	}
	syntheticSpread(q)

	return model.FetchOutcome{Success: true, Quote: q, SourceProvider: t.Name()}
}

func (t *TwelveData) FetchHistorical(ctx context.Context, symbol string, class model.AssetClass, params model.HistoricalParams) model.FetchOutcome {
	if !t.supports(class) {
		return unsupportedClass(t.Name(), class)
	}

	sym := twelveDataSymbol(symbol, class)
	u := fmt.Sprintf("%s/time_series?symbol=%s&interval=%s&start_date=%s&end_date=%s&apikey=%s",
		t.baseURL, url.QueryEscape(sym), url.QueryEscape(twelveDataInterval(params.Interval)),
		params.From.UTC().Format("2006-01-02"), params.To.UTC().Format("2006-01-02"),
		url.QueryEscape(t.apiKey))
	body, err := t.http.getJSON(ctx, u, nil)
	if err != nil {
		return model.Failure(t.Name(), fmt.Sprintf("twelvedata series fetch: %v", err))
	}

	var resp struct {
		twelveDataStatus
		Values []struct {
			Datetime string      `json:"datetime"`
			Open     json.Number `json:"open"`
			High     json.Number `json:"high"`
			Low      json.Number `json:"low"`
			Close    json.Number `json:"close"`
			Volume   json.Number `json:"volume"`
		} `json:"values"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return model.Failure(t.Name(), fmt.Sprintf("twelvedata series parse: %v", err))
	}
	if resp.Status == "error" {
		return model.Failure(t.Name(), fmt.Sprintf("twelvedata error: %s", resp.Message))
	}
	if len(resp.Values) == 0 {
		return model.Failure(t.Name(), fmt.Sprintf("twelvedata returned no bars for %s", sym))
	}

	candles := make([]model.Candle, 0, len(resp.Values))
	for _, v := range resp.Values {
		asOf, err := parseTwelveDataDate(v.Datetime)
		if err != nil {
			t.log.WithComponent("twelvedata_historical").WithError(err).WithFields(logger.Fields{
				"symbol": sym,
				"date":   v.Datetime,
			}).Warn("skipping bar with unparseable date")
			continue
		}
		open, _ := v.Open.Float64()
		high, _ := v.High.Float64()
		low, _ := v.Low.Float64()
		cls, _ := v.Close.Float64()
		volume, _ := v.Volume.Float64()
		candles = append(candles, model.Candle{AsOf: asOf, Open: open, High: high, Low: low, Close: cls, Volume: volume})
	}
	if len(candles) == 0 {
		return model.Failure(t.Name(), fmt.Sprintf("twelvedata bars for %s were all unparseable", sym))
	}

	return model.FetchOutcome{
		Success:        true,
		Candles:        model.SortCandles(candles),
		SourceProvider: t.Name(),
	}
}

// twelveDataInterval maps engine interval strings onto the API's vocabulary.
func twelveDataInterval(interval string) string {
	switch strings.ToLower(strings.TrimSpace(interval)) {
	case "1min", "1m":
		return "1min"
	case "5min", "5m":
		return "5min"
	case "15min", "15m":
		return "15min"
	case "30min", "30m":
		return "30min"
	case "1h", "60min", "1hour":
		return "1h"
	case "4h", "4hour":
		return "4h"
	case "1w", "1week", "week", "weekly":
		return "1week"
	case "1mo", "1month", "month", "monthly":
		return "1month"
	default:
		return "1day"
	}
}

func parseTwelveDataDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised datetime %q", s)
}
