// Package engine is the failover orchestrator: it answers quote and candle
// requests by walking the provider chain in priority order behind a
// read-through cache and a per-provider rate budget.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"quoteflow/internal/budget"
	"quoteflow/internal/cache"
	"quoteflow/internal/catalog"
	"quoteflow/internal/metrics"
	"quoteflow/internal/model"
	"quoteflow/internal/provider"
	"quoteflow/logger"
)

const (
	defaultLiveTTL       = 30 * time.Second
	defaultHistoricalTTL = time.Hour

	// exhaustedMessage is the aggregate failure reported when no candidate
	// could answer.
	exhaustedMessage = "no providers available or all providers failed"
	// noProvider marks outcomes that no upstream produced.
	noProvider = "none"
)

// Engine wires the catalog, registry, budget tracker and cache together.
// All mutable state lives in the injected components; the engine itself is
// safe for concurrent use.
type Engine struct {
	catalog  *catalog.Catalog
	registry *provider.Registry
	budget   *budget.Tracker
	cache    *cache.Store
	log      *logger.Log

	liveTTL         time.Duration
	historicalTTL   time.Duration
	defaultLookback time.Duration
}

// Options tune the engine; zero values fall back to defaults.
type Options struct {
	LiveTTL             time.Duration
	HistoricalTTL       time.Duration
	DefaultLookbackDays int
}

// New builds an engine over the given components.
func New(cat *catalog.Catalog, reg *provider.Registry, tracker *budget.Tracker, store *cache.Store, opts Options) *Engine {
	e := &Engine{
		catalog:         cat,
		registry:        reg,
		budget:          tracker,
		cache:           store,
		log:             logger.GetLogger(),
		liveTTL:         opts.LiveTTL,
		historicalTTL:   opts.HistoricalTTL,
		defaultLookback: time.Duration(opts.DefaultLookbackDays) * 24 * time.Hour,
	}
	if e.liveTTL <= 0 {
		e.liveTTL = defaultLiveTTL
	}
	if e.historicalTTL <= 0 {
		e.historicalTTL = defaultHistoricalTTL
	}
	if e.defaultLookback <= 0 {
		e.defaultLookback = 30 * 24 * time.Hour
	}
	return e
}

// ResolveLiveQuote answers a point-in-time quote request.
func (e *Engine) ResolveLiveQuote(ctx context.Context, symbol string, class model.AssetClass) model.FetchOutcome {
	return e.resolve(ctx, symbol, class, model.ModeLive, nil)
}

// ResolveHistorical answers a bounded-range candle request. A zero From
// defaults to the configured lookback behind To; a zero To defaults to now.
func (e *Engine) ResolveHistorical(ctx context.Context, symbol string, class model.AssetClass, interval string, from, to time.Time) model.FetchOutcome {
	if to.IsZero() {
		to = time.Now()
	}
	if from.IsZero() {
		from = to.Add(-e.defaultLookback)
	}
	if !from.Before(to) {
		return model.Failure(noProvider, fmt.Sprintf("invalid range: from %s is not before to %s",
			from.Format("2006-01-02"), to.Format("2006-01-02")))
	}
	return e.resolve(ctx, symbol, class, model.ModeHistorical, &model.HistoricalParams{
		Interval: interval,
		From:     from,
		To:       to,
	})
}

// resolve is the sequential, short-circuiting failover chain. Candidates are
// tried strictly in priority order and never in parallel; a budget denial
// skips the provider without counting it as a failure.
func (e *Engine) resolve(ctx context.Context, symbol string, class model.AssetClass, mode model.Mode, params *model.HistoricalParams) model.FetchOutcome {
	requestID := uuid.NewString()
	log := e.log.WithComponent("engine").WithFields(logger.Fields{
		"request_id": requestID,
		"symbol":     symbol,
		"class":      string(class),
		"mode":       string(mode),
	})

	fingerprint := cache.Fingerprint(symbol, class, mode, params)
	if payload, ok := e.cache.Get(fingerprint); ok {
		metrics.ReportCacheHit(e.log, string(mode))
		log.WithFields(logger.Fields{"source": payload.Source}).Debug("served from cache")
		return model.FetchOutcome{
			Success:         true,
			Quote:           payload.Quote,
			Candles:         payload.Candles,
			SourceProvider:  payload.Source,
			ServedFromCache: true,
		}
	}
	metrics.ReportCacheMiss(e.log, string(mode))

	candidates := e.catalog.ProvidersFor(class)
	if len(candidates) == 0 {
		log.Warn("no active providers for asset class")
		metrics.ReportExhausted(e.log, string(mode))
		return model.Failure(noProvider, exhaustedMessage)
	}

	for _, candidate := range candidates {
		if !e.budget.TryConsume(candidate.Name) {
			metrics.ReportRateLimitSkip(e.log, candidate.Name)
			log.WithFields(logger.Fields{"provider": candidate.Name}).Debug("budget exhausted, skipping provider")
			continue
		}

		adapter, ok := e.registry.Lookup(candidate.Name)
		if !ok {
			// Catalog entry without an adapter is a wiring bug; treat it as
			// a provider failure and keep going.
			metrics.ReportProviderFailure(e.log, candidate.Name, string(mode), "no adapter registered")
			continue
		}

		outcome := e.attempt(ctx, adapter, symbol, class, mode, params)
		if outcome.Success {
			e.cache.Put(fingerprint, cache.Payload{
				Quote:   outcome.Quote,
				Candles: outcome.Candles,
				Source:  outcome.SourceProvider,
			}, e.ttlFor(mode))
			log.WithFields(logger.Fields{"provider": candidate.Name}).Debug("resolved")
			return outcome
		}

		metrics.ReportProviderFailure(e.log, candidate.Name, string(mode), outcome.ErrorMessage)
	}

	metrics.ReportExhausted(e.log, string(mode))
	log.Warn("all candidate providers exhausted or failed")
	return model.Failure(noProvider, exhaustedMessage)
}

// attempt invokes the adapter for the requested mode.
func (e *Engine) attempt(ctx context.Context, adapter provider.Adapter, symbol string, class model.AssetClass, mode model.Mode, params *model.HistoricalParams) model.FetchOutcome {
	if mode == model.ModeHistorical {
		return adapter.FetchHistorical(ctx, symbol, class, *params)
	}
	return adapter.FetchLive(ctx, symbol, class)
}

func (e *Engine) ttlFor(mode model.Mode) time.Duration {
	if mode == model.ModeHistorical {
		return e.historicalTTL
	}
	return e.liveTTL
}
