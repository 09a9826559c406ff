package logger

import (
	"context"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

type providerStat struct {
	warns  int64
	errors int64
}

var (
	errorsLive       int64
	errorsHistorical int64
	warnsLive        int64
	warnsHistorical  int64
	providers        sync.Map // map[string]*providerStat
)

func recordWarn(component string) {
	if strings.Contains(component, "historical") {
		atomic.AddInt64(&warnsHistorical, 1)
	} else {
		atomic.AddInt64(&warnsLive, 1)
	}
	if name, ok := providerComponent(component); ok {
		v, _ := providers.LoadOrStore(name, &providerStat{})
		atomic.AddInt64(&v.(*providerStat).warns, 1)
	}
}

func recordError(component string) {
	if strings.Contains(component, "historical") {
		atomic.AddInt64(&errorsHistorical, 1)
	} else {
		atomic.AddInt64(&errorsLive, 1)
	}
	if name, ok := providerComponent(component); ok {
		v, _ := providers.LoadOrStore(name, &providerStat{})
		atomic.AddInt64(&v.(*providerStat).errors, 1)
	}
}

// providerComponent extracts the provider name from components shaped like
// "tradermade_live" or "binance_historical".
func providerComponent(component string) (string, bool) {
	idx := strings.IndexByte(component, '_')
	if idx <= 0 {
		return "", false
	}
	return component[:idx], true
}

func startReport(ctx context.Context, log *Log, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		for {
			select {
			case <-ctx.Done():
				ticker.Stop()
				return
			case <-ticker.C:
				logReport(ctx, log)
			}
		}
	}()
}

// StartReport begins periodic logging of engine warn/error statistics.
// It exposes the internal startReport function for use by other packages.
func StartReport(ctx context.Context, log *Log, interval time.Duration) {
	startReport(ctx, log, interval)
}

func logReport(ctx context.Context, log *Log) {
	providerData := map[string]map[string]int64{}
	providers.Range(func(k, v any) bool {
		name := k.(string)
		ps := v.(*providerStat)
		providerData[name] = map[string]int64{
			"warns":  atomic.LoadInt64(&ps.warns),
			"errors": atomic.LoadInt64(&ps.errors),
		}
		return true
	})

	fields := Fields{
		"errors_live":       atomic.LoadInt64(&errorsLive),
		"errors_historical": atomic.LoadInt64(&errorsHistorical),
		"warns_live":        atomic.LoadInt64(&warnsLive),
		"warns_historical":  atomic.LoadInt64(&warnsHistorical),
		"goroutines":        runtime.NumGoroutine(),
		"providers":         providerData,
	}

	log.WithComponent("report").WithFields(fields).Info("runtime report")

	data := []cwtypes.MetricDatum{
		{MetricName: aws.String("ErrorsLive"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(atomic.LoadInt64(&errorsLive)))},
		{MetricName: aws.String("ErrorsHistorical"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(atomic.LoadInt64(&errorsHistorical)))},
		{MetricName: aws.String("WarnsLive"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(atomic.LoadInt64(&warnsLive)))},
		{MetricName: aws.String("WarnsHistorical"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(atomic.LoadInt64(&warnsHistorical)))},
	}

	for name, stats := range providerData {
		data = append(data, cwtypes.MetricDatum{
			MetricName: aws.String("ProviderErrors"),
			Unit:       cwtypes.StandardUnitCount,
			Dimensions: []cwtypes.Dimension{{Name: aws.String("Provider"), Value: aws.String(name)}},
			Value:      aws.Float64(float64(stats["errors"])),
		})
	}

	publishMetrics(ctx, data)
}
