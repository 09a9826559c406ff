package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"quoteflow/internal/model"
)

func TestTraderMadeFetchLive(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/live" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("currency"); got != "EURUSD" {
			t.Errorf("currency = %q", got)
		}
		if got := r.URL.Query().Get("api_key"); got != "test-key" {
			t.Errorf("api_key = %q", got)
		}
		w.Write([]byte(`{"timestamp":1767614400,"quotes":[{"bid":1.0801,"ask":1.0803,"mid":1.0802}]}`))
	}))
	defer server.Close()

	adapter := NewTraderMade("test-key", server.URL)
	out := adapter.FetchLive(context.Background(), "eurusd", model.AssetForex)
	if !out.Success {
		t.Fatalf("FetchLive failed: %s", out.ErrorMessage)
	}
	if out.Quote.Bid != 1.0801 || out.Quote.Ask != 1.0803 || out.Quote.Last != 1.0802 {
		t.Errorf("quote = %+v", out.Quote)
	}
	if out.SourceProvider != "tradermade" {
		t.Errorf("source = %q", out.SourceProvider)
	}
}

func TestTraderMadeEmbeddedErrorIsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":403,"message":"API key invalid"}`))
	}))
	defer server.Close()

	adapter := NewTraderMade("bad-key", server.URL)
	out := adapter.FetchLive(context.Background(), "EURUSD", model.AssetForex)
	if out.Success {
		t.Fatal("HTTP 200 body with an embedded error must fail the attempt")
	}
	if out.ErrorMessage == "" {
		t.Error("failure must carry the upstream message")
	}
}

func TestTraderMadeRejectsUnsupportedClass(t *testing.T) {
	adapter := NewTraderMade("k", "http://unused.invalid")
	out := adapter.FetchLive(context.Background(), "AAPL", model.AssetStocks)
	if out.Success {
		t.Fatal("stocks are not supported by tradermade")
	}
}

func TestTraderMadeFetchHistoricalDaily(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if got := q.Get("interval"); got != "daily" {
			t.Errorf("interval = %q, want daily", got)
		}
		if q.Get("start_date") == "" || q.Get("end_date") == "" {
			t.Error("daily request must carry start_date and end_date")
		}
		w.Write([]byte(`{"quotes":[
			{"date":"2026-01-06","open":1.08,"high":1.09,"low":1.07,"close":1.085},
			{"date":"2026-01-05","open":1.07,"high":1.08,"low":1.06,"close":1.08}
		]}`))
	}))
	defer server.Close()

	adapter := NewTraderMade("k", server.URL)
	out := adapter.FetchHistorical(context.Background(), "EURUSD", model.AssetForex, model.HistoricalParams{
		Interval: "1day",
		From:     time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		To:       time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC),
	})
	if !out.Success {
		t.Fatalf("FetchHistorical failed: %s", out.ErrorMessage)
	}
	if len(out.Candles) != 2 {
		t.Fatalf("got %d candles, want 2", len(out.Candles))
	}
	if !out.Candles[0].AsOf.Before(out.Candles[1].AsOf) {
		t.Error("candles must come back ascending")
	}
}

func TestTraderMadeFetchHistoricalIntraday(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if got := q.Get("interval"); got != "minute" {
			t.Errorf("interval = %q, want minute", got)
		}
		if got := q.Get("period"); got != "15" {
			t.Errorf("period = %q, want 15", got)
		}
		w.Write([]byte(`{"quotes":[{"date":"2026-01-05 12:00:00","open":1.08,"high":1.081,"low":1.079,"close":1.0805}]}`))
	}))
	defer server.Close()

	adapter := NewTraderMade("k", server.URL)
	out := adapter.FetchHistorical(context.Background(), "EURUSD", model.AssetForex, model.HistoricalParams{
		Interval: "15min",
		From:     time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		To:       time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC),
	})
	if !out.Success {
		t.Fatalf("FetchHistorical failed: %s", out.ErrorMessage)
	}
	if len(out.Candles) != 1 {
		t.Fatalf("got %d candles, want 1", len(out.Candles))
	}
}

func TestIntervalClass(t *testing.T) {
	tests := []struct {
		interval string
		want     string
	}{
		{"1min", "intraday"},
		{"5min", "intraday"},
		{"15m", "intraday"},
		{"1h", "intraday"},
		{"4hour", "intraday"},
		{"1day", "daily"},
		{"daily", "daily"},
		{"1week", "daily"},
		{"1month", "daily"}, // trailing 'h' must not read as hours
		{"", "daily"},
		{"garbage", "daily"}, // unknown degrades to daily
	}
	for _, tt := range tests {
		if got := intervalClass(tt.interval); got != tt.want {
			t.Errorf("intervalClass(%q) = %q, want %q", tt.interval, got, tt.want)
		}
	}
}

func TestIntradayPeriod(t *testing.T) {
	tests := []struct {
		interval string
		want     string
	}{
		{"5min", "5"},
		{"15m", "15"},
		{"1h", "1"},
		{"minute", "1"},
	}
	for _, tt := range tests {
		if got := intradayPeriod(tt.interval); got != tt.want {
			t.Errorf("intradayPeriod(%q) = %q, want %q", tt.interval, got, tt.want)
		}
	}
}
