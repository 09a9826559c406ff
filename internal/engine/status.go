package engine

import (
	"context"

	"quoteflow/internal/model"
	"quoteflow/logger"
)

// ProviderStatus returns one introspection row per catalog entry, inactive
// providers included, with the current rate window usage attached.
func (e *Engine) ProviderStatus() []model.ProviderStatus {
	descriptors := e.catalog.All()
	out := make([]model.ProviderStatus, 0, len(descriptors))
	for _, d := range descriptors {
		used, resetAt := e.budget.Usage(d.Name)
		out = append(out, model.ProviderStatus{
			Name:                  d.Name,
			PriorityRank:          d.PriorityRank,
			SupportedAssetClasses: d.SupportedAssetClasses,
			RequestsPerMinute:     d.RequestsPerMinute,
			Active:                d.Active,
			UsedThisWindow:        used,
			WindowResetAt:         resetAt,
		})
	}
	return out
}

// TestAllProviders runs a synthetic smoke test: one representative live
// fetch per active provider, bypassing the cache but charged against each
// provider's budget like any other call.
func (e *Engine) TestAllProviders(ctx context.Context) []model.ProbeResult {
	log := e.log.WithComponent("engine")

	descriptors := e.catalog.All()
	out := make([]model.ProbeResult, 0, len(descriptors))
	for _, d := range descriptors {
		if !d.Active {
			continue
		}

		adapter, ok := e.registry.Lookup(d.Name)
		if !ok {
			out = append(out, model.ProbeResult{
				Provider: d.Name,
				Status:   model.ProbeError,
				Error:    "no adapter registered",
			})
			continue
		}

		if !e.budget.TryConsume(d.Name) {
			out = append(out, model.ProbeResult{
				Provider: d.Name,
				Status:   model.ProbeFailed,
				Error:    "rate budget exhausted",
			})
			continue
		}

		symbol, class := adapter.ProbeSymbol()
		outcome := adapter.FetchLive(ctx, symbol, class)
		if outcome.Success {
			out = append(out, model.ProbeResult{Provider: d.Name, Status: model.ProbeWorking})
			continue
		}

		log.WithFields(logger.Fields{
			"provider": d.Name,
			"reason":   outcome.ErrorMessage,
		}).Warn("provider smoke test failed")
		out = append(out, model.ProbeResult{
			Provider: d.Name,
			Status:   model.ProbeFailed,
			Error:    outcome.ErrorMessage,
		})
	}
	return out
}
