package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"quoteflow/config"
	"quoteflow/internal/budget"
	"quoteflow/internal/cache"
	"quoteflow/internal/catalog"
	"quoteflow/internal/engine"
	"quoteflow/internal/model"
	"quoteflow/internal/provider"
	"quoteflow/logger"
)

func main() {
	log := logger.GetLogger()

	// Load environment variables from .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Error loading .env file")
	}

	configPath := flag.String("config", "config/config.yml", "Path to configuration file")
	probe := flag.Bool("probe", false, "Probe every active provider and exit")
	symbol := flag.String("symbol", "", "Resolve a single symbol and exit")
	class := flag.String("class", "forex", "Asset class of -symbol (forex, stocks, crypto, commodities)")
	historical := flag.Bool("historical", false, "Resolve -symbol as a historical range instead of a live quote")
	interval := flag.String("interval", "1day", "Candle interval for -historical")
	fromArg := flag.String("from", "", "Range start for -historical (2006-01-02)")
	toArg := flag.String("to", "", "Range end for -historical (2006-01-02)")

	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.WithError(err).Error("Failed to load configuration")
		os.Exit(1)
	}

	if err := log.Configure(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output, cfg.Logging.MaxAge); err != nil {
		log.WithError(err).Error("Failed to configure logger")
		os.Exit(1)
	}

	log.WithFields(logger.Fields{
		"service": cfg.Quoteflow.Name,
		"version": cfg.Quoteflow.Version,
	}).Info("starting quoteflow")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Metrics.CloudWatch {
		logger.InitCloudWatch(cfg.Metrics.Region, cfg.Metrics.Namespace, cfg.Metrics.DashboardName)
	}

	if strings.ToLower(cfg.Logging.Level) == "report" {
		logger.StartReport(ctx, log, 30*time.Second)
	}

	entries, disabled := cfg.CatalogEntries()
	for _, name := range disabled {
		log.WithComponent("main").WithFields(logger.Fields{"provider": name}).Warn("provider disabled, missing API key or enabled: false")
	}

	active := 0
	for _, e := range entries {
		if e.Active {
			active++
		}
	}
	env := config.AppEnvironment()
	if active == 0 && config.IsProductionLike(env) {
		log.WithFields(logger.Fields{"environment": env}).Error("no active providers configured")
		os.Exit(1)
	}

	cat, err := catalog.New(entries)
	if err != nil {
		log.WithError(err).Error("failed to build provider catalog")
		os.Exit(1)
	}

	registry := provider.NewRegistry()
	for _, p := range cfg.Providers {
		if err := registerAdapter(registry, p); err != nil {
			log.WithError(err).WithFields(logger.Fields{"provider": p.Name}).Error("failed to register provider adapter")
			os.Exit(1)
		}
	}

	tracker := budget.NewTracker(cfg.BudgetLimits())
	store := cache.NewStore()
	store.StartSweeper(ctx, cfg.Engine.CacheSweepInterval.Std())

	eng := engine.New(cat, registry, tracker, store, engine.Options{
		LiveTTL:             cfg.Engine.LiveTTL.Std(),
		HistoricalTTL:       cfg.Engine.HistoricalTTL.Std(),
		DefaultLookbackDays: cfg.Engine.DefaultLookbackDays,
	})

	for _, st := range eng.ProviderStatus() {
		log.WithComponent("main").WithFields(logger.Fields{
			"provider": st.Name,
			"rank":     st.PriorityRank,
			"active":   st.Active,
			"rpm":      st.RequestsPerMinute,
		}).Info("provider registered")
	}

	if *probe {
		runProbe(ctx, eng, log)
		return
	}

	if *symbol != "" {
		if err := runResolve(ctx, eng, log, *symbol, *class, *historical, *interval, *fromArg, *toArg); err != nil {
			log.WithError(err).Error("resolution failed")
			os.Exit(1)
		}
		return
	}

	log.Info("all components started successfully")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	log.WithFields(logger.Fields{"signal": sig.String()}).Info("shutdown signal received")

	cancel()
	log.Info("quoteflow stopped")
}

func registerAdapter(registry *provider.Registry, p config.ProviderConfig) error {
	switch p.Name {
	case "tradermade":
		return registry.Register(provider.NewTraderMade(p.APIKey(), ""))
	case "alphavantage":
		return registry.Register(provider.NewAlphaVantage(p.APIKey(), ""))
	case "twelvedata":
		return registry.Register(provider.NewTwelveData(p.APIKey(), ""))
	case "finnhub":
		return registry.Register(provider.NewFinnhub(p.APIKey(), ""))
	case "binance":
		return registry.Register(provider.NewBinance(""))
	default:
		return fmt.Errorf("unknown provider %q in configuration", p.Name)
	}
}

func runProbe(ctx context.Context, eng *engine.Engine, log *logger.Log) {
	for _, result := range eng.TestAllProviders(ctx) {
		fields := logger.Fields{
			"provider": result.Provider,
			"status":   result.Status,
		}
		if result.Error != "" {
			fields["error"] = result.Error
		}
		switch result.Status {
		case model.ProbeWorking:
			log.WithComponent("probe").WithFields(fields).Info("provider probe succeeded")
		default:
			log.WithComponent("probe").WithFields(fields).Warn("provider probe failed")
		}
	}
}

func runResolve(ctx context.Context, eng *engine.Engine, log *logger.Log, symbol, classArg string, historical bool, interval, fromArg, toArg string) error {
	class, ok := model.ParseAssetClass(classArg)
	if !ok {
		return fmt.Errorf("unknown asset class %q", classArg)
	}

	var err error
	var outcome model.FetchOutcome
	if historical {
		var from, to time.Time
		if fromArg != "" {
			if from, err = time.Parse("2006-01-02", fromArg); err != nil {
				return fmt.Errorf("invalid -from value: %w", err)
			}
		}
		if toArg != "" {
			if to, err = time.Parse("2006-01-02", toArg); err != nil {
				return fmt.Errorf("invalid -to value: %w", err)
			}
		}
		outcome = eng.ResolveHistorical(ctx, symbol, class, interval, from, to)
	} else {
		outcome = eng.ResolveLiveQuote(ctx, symbol, class)
	}

	fields := logger.Fields{
		"symbol":     symbol,
		"class":      string(class),
		"provider":   outcome.SourceProvider,
		"from_cache": outcome.ServedFromCache,
	}
	if !outcome.Success {
		log.WithComponent("main").WithFields(fields).Error(outcome.ErrorMessage)
		return fmt.Errorf("no data for %s", symbol)
	}
	if outcome.Quote != nil {
		fields["last"] = outcome.Quote.Last
		fields["bid"] = outcome.Quote.Bid
		fields["ask"] = outcome.Quote.Ask
	}
	if len(outcome.Candles) > 0 {
		fields["candles"] = len(outcome.Candles)
	}
	log.WithComponent("main").WithFields(fields).Info("resolved")
	return nil
}
