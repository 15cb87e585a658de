package main

import (
	"fmt"
	"log"
	"time"

	"TradeSentinel/internal/collector"
	"TradeSentinel/internal/config"
	"TradeSentinel/internal/engine"
	"TradeSentinel/internal/position"
	"TradeSentinel/internal/strategy"
)

// app holds the components shared by every command.
type app struct {
	cfg     *config.Config
	policy  *position.Policy
	closers []func() error
}

func loadConfig(validate bool, symbols []string) (*config.Config, error) {
	cfg, err := config.Load(config.ResolvePath(configPath))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if len(symbols) > 0 {
		cfg.Decision.Symbols = symbols
	}
	if useMock && cfg.DataSource.BaseURL == "" {
		cfg.DataSource.BaseURL = "mock"
	}
	if validate {
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("config validation: %w", err)
		}
	}
	return cfg, nil
}

func newApp(cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg}

	var repo position.Repository
	var trades position.TradeLog
	switch cfg.Position.Backend {
	case "sqlite":
		store, err := position.NewSQLiteStore(cfg.Database.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open position store: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		repo, trades = store, store
	default:
		store, err := position.NewJSONStore(cfg.Position.StateFile)
		if err != nil {
			return nil, fmt.Errorf("open position history: %w", err)
		}
		tl, err := position.NewFileTradeLog(cfg.Position.TradeLogFile)
		if err != nil {
			return nil, fmt.Errorf("open trade log: %w", err)
		}
		repo, trades = store, tl
	}
	a.policy = position.NewPolicy(cfg.Limits(), repo, trades, log.Default())
	log.Printf("[INFO] position backend: %s", cfg.Position.Backend)
	return a, nil
}

func (a *app) fetcher() collector.Fetcher {
	if useMock {
		return &collector.MockFetcher{Price: 100}
	}
	return collector.NewRESTFetcher(a.cfg.DataSource.BaseURL, a.cfg.DataSource.APIKey, a.cfg.Proxy)
}

func (a *app) engine() *engine.Engine {
	f := a.fetcher()
	log.Printf("[INFO] data source: %s", f.Name())
	col := collector.NewCollector(f, a.cfg.DataSource.LookbackDays, a.cfg.DataSource.FlowDays)
	eval := strategy.NewEvaluator(a.cfg.StrategyConfig())
	return engine.New(a.cfg.EngineConfig(), col, eval, a.policy, log.Default())
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Printf("[WARN] close: %v", err)
		}
	}
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02 15:04")
}
