package model

import (
	"sort"
	"time"
)

// AssetClass is the category of tradable instrument used to decide which
// providers are eligible for a request.
type AssetClass string

const (
	AssetForex       AssetClass = "forex"
	AssetStocks      AssetClass = "stocks"
	AssetCrypto      AssetClass = "crypto"
	AssetCommodities AssetClass = "commodities"
)

// ParseAssetClass maps a raw string onto a known asset class.
func ParseAssetClass(s string) (AssetClass, bool) {
	switch AssetClass(s) {
	case AssetForex, AssetStocks, AssetCrypto, AssetCommodities:
		return AssetClass(s), true
	}
	return "", false
}

// Mode selects between a point-in-time quote and a bounded historical range.
type Mode string

const (
	ModeLive       Mode = "live"
	ModeHistorical Mode = "historical"
)

// Quote is the canonical live-price record. All numeric fields are
// normalized by the adapters to the provider's native quote currency.
type Quote struct {
	Symbol         string    `json:"symbol"`
	Bid            float64   `json:"bid"`
	Ask            float64   `json:"ask"`
	Last           float64   `json:"last"`
	Change         float64   `json:"change"`
	ChangePercent  float64   `json:"change_percent"`
	Volume         float64   `json:"volume"`
	AsOf           time.Time `json:"as_of"`
	SourceProvider string    `json:"source_provider"`
}

// Candle is the canonical historical bar.
type Candle struct {
	AsOf   time.Time `json:"as_of"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// SortCandles orders candles ascending by timestamp and drops duplicate
// timestamps, keeping the first occurrence. Every adapter runs its parsed
// series through this before handing it to the engine.
func SortCandles(candles []Candle) []Candle {
	sort.SliceStable(candles, func(i, j int) bool {
		return candles[i].AsOf.Before(candles[j].AsOf)
	})
	out := candles[:0]
	var last time.Time
	for _, c := range candles {
		if !last.IsZero() && c.AsOf.Equal(last) {
			continue
		}
		out = append(out, c)
		last = c.AsOf
	}
	return out
}

// HistoricalParams describes the requested range for ModeHistorical.
type HistoricalParams struct {
	Interval string
	From     time.Time
	To       time.Time
}

// FetchOutcome is the uniform result envelope returned by every provider
// attempt and by the engine itself. Exactly one of Quote/Candles is set on
// success, depending on the mode.
type FetchOutcome struct {
	Success         bool     `json:"success"`
	Quote           *Quote   `json:"quote,omitempty"`
	Candles         []Candle `json:"candles,omitempty"`
	ErrorMessage    string   `json:"error_message,omitempty"`
	SourceProvider  string   `json:"source_provider"`
	ServedFromCache bool     `json:"served_from_cache"`
}

// Failure builds a failed outcome for the given provider and reason.
func Failure(provider, reason string) FetchOutcome {
	return FetchOutcome{Success: false, ErrorMessage: reason, SourceProvider: provider}
}

// ProviderStatus is the introspection row exposed for operational dashboards.
type ProviderStatus struct {
	Name                  string       `json:"name"`
	PriorityRank          int          `json:"priority_rank"`
	SupportedAssetClasses []AssetClass `json:"supported_asset_classes"`
	RequestsPerMinute     int          `json:"requests_per_minute"`
	Active                bool         `json:"active"`
	UsedThisWindow        int          `json:"used_this_window"`
	WindowResetAt         time.Time    `json:"window_reset_at"`
}

// ProbeResult is one row of the synthetic provider smoke test.
type ProbeResult struct {
	Provider string `json:"provider"`
	Status   string `json:"status"` // working, failed or error
	Error    string `json:"error,omitempty"`
}

const (
	ProbeWorking = "working"
	ProbeFailed  = "failed"
	ProbeError   = "error"
)
