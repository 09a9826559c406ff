// Package provider contains one adapter per upstream market data source.
// Each adapter owns its provider's request building and its idiosyncratic
// success/error envelope, and maps responses into the canonical model types.
// Nothing outside an adapter ever sees a provider's raw payload or a raw
// error; every failure crosses the boundary as FetchOutcome{Success: false}.
package provider

import (
	"context"
	"errors"
	"fmt"

	"quoteflow/internal/model"
)

var (
	// ErrUnsupportedAssetClass is wrapped by adapters asked for an asset
	// class outside their capability set.
	ErrUnsupportedAssetClass = errors.New("unsupported asset class")
	// ErrUnsupportedMode is wrapped by live-only adapters asked for history.
	ErrUnsupportedMode = errors.New("unsupported mode")
)

// Adapter is the capability surface shared by all providers. Adapters must
// reject unsupported asset classes or modes immediately with a descriptive
// failure instead of attempting the call.
type Adapter interface {
	Name() string
	FetchLive(ctx context.Context, symbol string, class model.AssetClass) model.FetchOutcome
	FetchHistorical(ctx context.Context, symbol string, class model.AssetClass, params model.HistoricalParams) model.FetchOutcome
	// ProbeSymbol returns a representative symbol for the smoke test.
	ProbeSymbol() (string, model.AssetClass)
}

// Registry maps provider names onto adapters. Adding a provider is one
// catalog entry plus one Register call; dispatch code never changes.
type Registry struct {
	adapters map[string]Adapter
	order    []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register adds an adapter under its own name. Registering the same name
// twice is a programming error.
func (r *Registry) Register(a Adapter) error {
	name := a.Name()
	if _, dup := r.adapters[name]; dup {
		return fmt.Errorf("provider %q registered twice", name)
	}
	r.adapters[name] = a
	r.order = append(r.order, name)
	return nil
}

// Lookup returns the adapter registered under name.
func (r *Registry) Lookup(name string) (Adapter, bool) {
	a, ok := r.adapters[name]
	return a, ok
}

// Names returns the registered provider names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// unsupportedClass is the shared rejection for a capability miss.
func unsupportedClass(provider string, class model.AssetClass) model.FetchOutcome {
	return model.Failure(provider, fmt.Sprintf("%s: %v: %s", provider, ErrUnsupportedAssetClass, class))
}

// unsupportedMode is the shared rejection for live-only providers.
func unsupportedMode(provider string, mode model.Mode) model.FetchOutcome {
	return model.Failure(provider, fmt.Sprintf("%s: %v: %s", provider, ErrUnsupportedMode, mode))
}

// syntheticSpread fills bid/ask as +-0.1% around last for providers that do
// not publish a real spread.
func syntheticSpread(q *model.Quote) {
	if q.Bid == 0 && q.Ask == 0 && q.Last != 0 {
		q.Bid = q.Last * 0.999
		q.Ask = q.Last * 1.001
	}
}
