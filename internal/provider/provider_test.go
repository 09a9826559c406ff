package provider

import (
	"testing"

	"quoteflow/internal/model"
)

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(NewFinnhub("k", "")); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if err := r.Register(NewFinnhub("k2", "")); err == nil {
		t.Error("second Register under the same name must fail")
	}
}

func TestRegistryLookupAndNames(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(NewBinance("")); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register(NewFinnhub("k", "")); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, ok := r.Lookup("binance"); !ok {
		t.Error("Lookup(binance) missed")
	}
	if _, ok := r.Lookup("tradermade"); ok {
		t.Error("Lookup of unregistered adapter must miss")
	}

	names := r.Names()
	if len(names) != 2 || names[0] != "binance" || names[1] != "finnhub" {
		t.Errorf("Names() = %v, want registration order", names)
	}
}

func TestSyntheticSpread(t *testing.T) {
	q := &model.Quote{Last: 100}
	syntheticSpread(q)
	if q.Bid != 99.9 || q.Ask != 100.1 {
		t.Errorf("synthetic spread = %v / %v, want 99.9 / 100.1", q.Bid, q.Ask)
	}

	// a real spread is never overwritten
	q = &model.Quote{Last: 100, Bid: 99.5, Ask: 100.5}
	syntheticSpread(q)
	if q.Bid != 99.5 || q.Ask != 100.5 {
		t.Errorf("real spread was overwritten: %v / %v", q.Bid, q.Ask)
	}
}

func TestSplitCurrencyPair(t *testing.T) {
	tests := []struct {
		input       string
		base, quote string
		wantErr     bool
	}{
		{"EURUSD", "EUR", "USD", false},
		{"eur/usd", "EUR", "USD", false},
		{"GBPJPY", "GBP", "JPY", false},
		{"AAPL", "", "", true},
		{"", "", "", true},
	}
	for _, tt := range tests {
		base, quote, err := splitCurrencyPair(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("splitCurrencyPair(%q) err = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if base != tt.base || quote != tt.quote {
			t.Errorf("splitCurrencyPair(%q) = %s, %s", tt.input, base, quote)
		}
	}
}
