package provider

import (
	"context"
	"testing"

	"quoteflow/internal/model"
)

func TestBinanceSymbol(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"btcusdt", "BTCUSDT"},
		{"BTC/USDT", "BTCUSDT"},
		{"btc-usdt", "BTCUSDT"},
		{"ETHUSDT", "ETHUSDT"},
	}
	for _, tt := range tests {
		if got := binanceSymbol(tt.in); got != tt.want {
			t.Errorf("binanceSymbol(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBinanceInterval(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"1min", "1m"},
		{"15m", "15m"},
		{"1hour", "1h"},
		{"1day", "1d"},
		{"monthly", "1M"},
		{"unknown", "1d"},
	}
	for _, tt := range tests {
		if got := binanceInterval(tt.in); got != tt.want {
			t.Errorf("binanceInterval(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBinanceRejectsNonCrypto(t *testing.T) {
	adapter := NewBinance("http://unused.invalid")
	if out := adapter.FetchLive(context.Background(), "EURUSD", model.AssetForex); out.Success {
		t.Fatal("binance only serves crypto")
	}
	if out := adapter.FetchHistorical(context.Background(), "AAPL", model.AssetStocks, model.HistoricalParams{}); out.Success {
		t.Fatal("binance only serves crypto")
	}
}
