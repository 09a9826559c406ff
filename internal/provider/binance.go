package provider

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	binance "github.com/adshao/go-binance/v2"

	"quoteflow/internal/model"
	"quoteflow/logger"
)

// Binance serves crypto through the official spot REST API via the
// binance-go client. No API key is needed for public market data, so this
// provider is always active.
type Binance struct {
	client *binance.Client
	log    *logger.Log
}

// NewBinance builds the adapter. A non-empty baseURL overrides the API
// endpoint, which the tests use to point the client at a fake upstream.
func NewBinance(baseURL string) *Binance {
	client := binance.NewClient("", "")
	client.HTTPClient = &http.Client{Timeout: defaultTimeout}
	if baseURL != "" {
		client.BaseURL = baseURL
	}
	return &Binance{client: client, log: logger.GetLogger()}
}

func (b *Binance) Name() string { return "binance" }

func (b *Binance) ProbeSymbol() (string, model.AssetClass) {
	return "BTCUSDT", model.AssetCrypto
}

// binanceSymbol strips the separators other providers use in pair symbols.
func binanceSymbol(symbol string) string {
	s := strings.ToUpper(symbol)
	s = strings.ReplaceAll(s, "/", "")
	s = strings.ReplaceAll(s, "-", "")
	return s
}

func (b *Binance) FetchLive(ctx context.Context, symbol string, class model.AssetClass) model.FetchOutcome {
	if class != model.AssetCrypto {
		return unsupportedClass(b.Name(), class)
	}

	sym := binanceSymbol(symbol)
	stats, err := b.client.NewListPriceChangeStatsService().Symbol(sym).Do(ctx)
	if err != nil {
		return model.Failure(b.Name(), fmt.Sprintf("binance ticker fetch: %v", err))
	}
	if len(stats) == 0 {
		return model.Failure(b.Name(), fmt.Sprintf("binance returned no ticker for %s", sym))
	}

	s := stats[0]
	last := parseBinanceFloat(s.LastPrice)
	if last == 0 {
		return model.Failure(b.Name(), fmt.Sprintf("binance ticker for %s has no price", sym))
	}

	q := &model.Quote{
		Symbol:         strings.ToUpper(symbol),
		Bid:            parseBinanceFloat(s.BidPrice),
		Ask:            parseBinanceFloat(s.AskPrice),
		Last:           last,
		Change:         parseBinanceFloat(s.PriceChange),
		ChangePercent:  parseBinanceFloat(s.PriceChangePercent),
		Volume:         parseBinanceFloat(s.Volume),
		AsOf:           time.UnixMilli(s.CloseTime),
		SourceProvider: b.Name(),
	}
	syntheticSpread(q)

	return model.FetchOutcome{Success: true, Quote: q, SourceProvider: b.Name()}
}

func (b *Binance) FetchHistorical(ctx context.Context, symbol string, class model.AssetClass, params model.HistoricalParams) model.FetchOutcome {
	if class != model.AssetCrypto {
		return unsupportedClass(b.Name(), class)
	}

	sym := binanceSymbol(symbol)
	klines, err := b.client.NewKlinesService().
		Symbol(sym).
		Interval(binanceInterval(params.Interval)).
		StartTime(params.From.UnixMilli()).
		EndTime(params.To.UnixMilli()).
		Do(ctx)
	if err != nil {
		return model.Failure(b.Name(), fmt.Sprintf("binance klines fetch: %v", err))
	}
	if len(klines) == 0 {
		return model.Failure(b.Name(), fmt.Sprintf("binance returned no klines for %s", sym))
	}

	candles := make([]model.Candle, 0, len(klines))
	for _, k := range klines {
		candles = append(candles, model.Candle{
			AsOf:   time.UnixMilli(k.OpenTime),
			Open:   parseBinanceFloat(k.Open),
			High:   parseBinanceFloat(k.High),
			Low:    parseBinanceFloat(k.Low),
			Close:  parseBinanceFloat(k.Close),
			Volume: parseBinanceFloat(k.Volume),
		})
	}

	return model.FetchOutcome{
		Success:        true,
		Candles:        model.SortCandles(candles),
		SourceProvider: b.Name(),
	}
}

// binanceInterval maps the engine's interval strings onto kline intervals.
// Unrecognised values degrade to daily.
func binanceInterval(interval string) string {
	switch strings.ToLower(strings.TrimSpace(interval)) {
	case "1min", "1m":
		return "1m"
	case "5min", "5m":
		return "5m"
	case "15min", "15m":
		return "15m"
	case "30min", "30m":
		return "30m"
	case "1h", "60min", "1hour":
		return "1h"
	case "4h", "4hour":
		return "4h"
	case "1w", "1week", "week", "weekly":
		return "1w"
	case "1mo", "1month", "month", "monthly":
		return "1M"
	default:
		return "1d"
	}
}

func parseBinanceFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
