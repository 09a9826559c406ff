package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"quoteflow/internal/model"
)

func TestFinnhubFetchLive(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Finnhub-Token"); got != "tok" {
			t.Errorf("token header = %q", got)
		}
		if got := r.URL.Query().Get("symbol"); got != "AAPL" {
			t.Errorf("symbol = %q", got)
		}
		w.Write([]byte(`{"c":232.47,"d":-1.12,"dp":-0.4795,"t":1767614400}`))
	}))
	defer server.Close()

	adapter := NewFinnhub("tok", server.URL)
	out := adapter.FetchLive(context.Background(), "aapl", model.AssetStocks)
	if !out.Success {
		t.Fatalf("FetchLive failed: %s", out.ErrorMessage)
	}
	if out.Quote.Last != 232.47 || out.Quote.ChangePercent != -0.4795 {
		t.Errorf("quote = %+v", out.Quote)
	}
}

func TestFinnhubZeroQuoteIsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// unknown symbols come back all-zero with HTTP 200
		w.Write([]byte(`{"c":0,"d":null,"dp":null,"t":0}`))
	}))
	defer server.Close()

	adapter := NewFinnhub("tok", server.URL)
	out := adapter.FetchLive(context.Background(), "NOSUCH", model.AssetStocks)
	if out.Success {
		t.Fatal("all-zero quote must fail the attempt")
	}
}

func TestFinnhubRejectsNonStocks(t *testing.T) {
	adapter := NewFinnhub("tok", "http://unused.invalid")
	out := adapter.FetchLive(context.Background(), "EURUSD", model.AssetForex)
	if out.Success {
		t.Fatal("finnhub only serves stocks")
	}
}

func TestFinnhubHistoricalUnsupported(t *testing.T) {
	adapter := NewFinnhub("tok", "http://unused.invalid")
	out := adapter.FetchHistorical(context.Background(), "AAPL", model.AssetStocks, model.HistoricalParams{Interval: "1day"})
	if out.Success {
		t.Fatal("finnhub has no historical endpoint")
	}
}
