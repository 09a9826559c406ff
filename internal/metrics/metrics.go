// Package metrics funnels engine counters through the structured logger,
// which mirrors them to CloudWatch when a client is configured.
package metrics

import (
	"strings"
	"sync/atomic"

	"quoteflow/logger"
)

var (
	cacheHits      int64
	cacheMisses    int64
	rateLimitSkips int64
	failures       int64
	exhaustions    int64
)

// ReportCacheHit records a fingerprint served straight from the cache.
func ReportCacheHit(log *logger.Log, mode string) {
	atomic.AddInt64(&cacheHits, 1)
	log.LogMetric("engine", "cache_hit", int64(1), "counter", logger.Fields{"mode": mode})
}

// ReportCacheMiss records a fingerprint that had to go upstream.
func ReportCacheMiss(log *logger.Log, mode string) {
	atomic.AddInt64(&cacheMisses, 1)
	log.LogMetric("engine", "cache_miss", int64(1), "counter", logger.Fields{"mode": mode})
}

// ReportRateLimitSkip records a provider skipped because its window budget
// was exhausted. A skip is not a provider failure.
func ReportRateLimitSkip(log *logger.Log, provider string) {
	atomic.AddInt64(&rateLimitSkips, 1)
	component := strings.ToLower(provider) + "_budget"
	log.WithComponent(component).LogMetric(component, "rate_limit_skip", int64(1), "counter", logger.Fields{
		"provider": strings.ToLower(provider),
	})
}

// ReportProviderFailure records one failed provider attempt.
func ReportProviderFailure(log *logger.Log, provider, mode, reason string) {
	atomic.AddInt64(&failures, 1)
	component := strings.ToLower(provider) + "_" + strings.ToLower(mode)
	l := log.WithComponent(component)
	fields := logger.Fields{
		"provider": strings.ToLower(provider),
		"mode":     strings.ToLower(mode),
	}
	l.LogMetric(component, "provider_failure", int64(1), "counter", fields)
	l.WithFields(fields).WithFields(logger.Fields{"reason": reason}).Warn("provider attempt failed")
}

// ReportExhausted records a resolution where every candidate was exhausted
// or failed.
func ReportExhausted(log *logger.Log, mode string) {
	atomic.AddInt64(&exhaustions, 1)
	log.LogMetric("engine", "resolve_exhausted", int64(1), "counter", logger.Fields{"mode": mode})
}

// Snapshot returns the counter values; used by tests and the status report.
func Snapshot() (hits, misses, skips, failed, exhausted int64) {
	return atomic.LoadInt64(&cacheHits),
		atomic.LoadInt64(&cacheMisses),
		atomic.LoadInt64(&rateLimitSkips),
		atomic.LoadInt64(&failures),
		atomic.LoadInt64(&exhaustions)
}
