package model

import (
	"testing"
	"time"
)

func TestParseAssetClass(t *testing.T) {
	tests := []struct {
		input string
		want  AssetClass
		ok    bool
	}{
		{"forex", AssetForex, true},
		{"stocks", AssetStocks, true},
		{"crypto", AssetCrypto, true},
		{"commodities", AssetCommodities, true},
		{"bonds", "", false},
		{"", "", false},
		{"Forex", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseAssetClass(tt.input)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseAssetClass(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}

func TestSortCandlesOrdersAscending(t *testing.T) {
	base := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	candles := []Candle{
		{AsOf: base.AddDate(0, 0, 2), Close: 3},
		{AsOf: base, Close: 1},
		{AsOf: base.AddDate(0, 0, 1), Close: 2},
	}

	sorted := SortCandles(candles)
	if len(sorted) != 3 {
		t.Fatalf("expected 3 candles, got %d", len(sorted))
	}
	for i := 1; i < len(sorted); i++ {
		if !sorted[i-1].AsOf.Before(sorted[i].AsOf) {
			t.Errorf("candle %d (%s) is not before candle %d (%s)",
				i-1, sorted[i-1].AsOf, i, sorted[i].AsOf)
		}
	}
	if sorted[0].Close != 1 || sorted[2].Close != 3 {
		t.Errorf("unexpected order: %v", sorted)
	}
}

func TestSortCandlesDropsDuplicateTimestampsKeepingFirst(t *testing.T) {
	base := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	candles := []Candle{
		{AsOf: base, Close: 1},
		{AsOf: base.AddDate(0, 0, 1), Close: 2},
		{AsOf: base, Close: 99},
	}

	sorted := SortCandles(candles)
	if len(sorted) != 2 {
		t.Fatalf("expected 2 candles after dedupe, got %d", len(sorted))
	}
	if sorted[0].Close != 1 {
		t.Errorf("dedupe kept the wrong candle: close=%v, want 1", sorted[0].Close)
	}
}

func TestFailure(t *testing.T) {
	out := Failure("tradermade", "timeout")
	if out.Success {
		t.Error("Failure outcome must not be successful")
	}
	if out.SourceProvider != "tradermade" || out.ErrorMessage != "timeout" {
		t.Errorf("unexpected outcome: %+v", out)
	}
}
