package metrics

import (
	"testing"

	"quoteflow/logger"
)

func TestCountersIncrement(t *testing.T) {
	log := logger.GetLogger()

	hits0, misses0, skips0, failed0, exhausted0 := Snapshot()

	ReportCacheHit(log, "live")
	ReportCacheMiss(log, "historical")
	ReportRateLimitSkip(log, "tradermade")
	ReportProviderFailure(log, "alphavantage", "live", "rate limited")
	ReportExhausted(log, "live")

	hits, misses, skips, failed, exhausted := Snapshot()
	if hits != hits0+1 || misses != misses0+1 || skips != skips0+1 || failed != failed0+1 || exhausted != exhausted0+1 {
		t.Errorf("counters = %d/%d/%d/%d/%d, want each one higher than %d/%d/%d/%d/%d",
			hits, misses, skips, failed, exhausted, hits0, misses0, skips0, failed0, exhausted0)
	}
}
