package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"TradeSentinel/internal/engine"
	"TradeSentinel/internal/model"
	"TradeSentinel/internal/position"
	"TradeSentinel/internal/strategy"
)

// DefaultPath is used when neither --config nor CONFIG_PATH is given.
const DefaultPath = "configs/config.yaml"

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	DataSource struct {
		BaseURL      string `yaml:"base_url"`
		APIKey       string `yaml:"api_key"`
		LookbackDays int    `yaml:"lookback_days"`
		FlowDays     int    `yaml:"flow_days"`
	} `yaml:"data_source"`
	Signal   SignalConfig   `yaml:"signal"`
	Gate     GateConfig     `yaml:"gate"`
	Position PositionConfig `yaml:"position"`
	Decision DecisionConfig `yaml:"decision"`
	Account  struct {
		ID      string `yaml:"id"`
		Enabled bool   `yaml:"enabled"`
		Mode    string `yaml:"mode"`
	} `yaml:"account"`
	Schedule struct {
		CycleCron   string `yaml:"cycle_cron"`
		SummaryCron string `yaml:"summary_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// SignalConfig mirrors strategy.Config in YAML form.
type SignalConfig struct {
	MinVolume       float64 `yaml:"min_volume"`
	BollingerWindow int     `yaml:"bollinger_window"`
	BollingerK      float64 `yaml:"bollinger_k"`
	ConsecutiveDays int     `yaml:"consecutive_days"`
	MinTradingValue float64 `yaml:"min_trading_value"`
	BaseScore       float64 `yaml:"base_score"`
	GoldenCross     struct {
		Short int `yaml:"short"`
		Long  int `yaml:"long"`
	} `yaml:"golden_cross"`
	VolumeBreakout struct {
		Period     int     `yaml:"period"`
		Multiplier float64 `yaml:"multiplier"`
	} `yaml:"volume_breakout"`
	Divergence struct {
		Enabled     bool               `yaml:"enabled"`
		BonusScores map[string]float64 `yaml:"bonus_scores"`
	} `yaml:"divergence"`
}

// GateConfig selects the conditions required before a buy.
type GateConfig struct {
	BelowMA20              bool   `yaml:"below_ma20"`
	VolumeSufficient       bool   `yaml:"volume_sufficient"`
	AboveBollingerLower    bool   `yaml:"above_bollinger_lower"`
	TradingValueSufficient bool   `yaml:"trading_value_sufficient"`
	Investor               string `yaml:"investor"`
}

// PositionConfig holds the position rules and their storage.
type PositionConfig struct {
	MaxPurchasesPerSymbol int     `yaml:"max_purchases_per_symbol"`
	MaxQuantityPerSymbol  int     `yaml:"max_quantity_per_symbol"`
	MaxTotalHoldings      int     `yaml:"max_total_holdings"`
	MinHoldingHours       float64 `yaml:"min_holding_period_hours"`
	CooldownHours         float64 `yaml:"purchase_cooldown_hours"`
	ResetCountersOnReopen bool    `yaml:"reset_counters_on_reopen"`
	Backend               string  `yaml:"backend"`
	StateFile             string  `yaml:"state_file"`
	TradeLogFile          string  `yaml:"trade_log_file"`
}

// DecisionConfig holds the scoring thresholds and the symbol universe.
type DecisionConfig struct {
	MinBuyScore    float64  `yaml:"min_buy_score"`
	MinSellScore   float64  `yaml:"min_sell_score"`
	BudgetPerTrade float64  `yaml:"budget_per_trade"`
	StopLossPct    float64  `yaml:"stop_loss_pct"`
	TakeProfitPct  float64  `yaml:"take_profit_pct"`
	Workers        int      `yaml:"workers"`
	Symbols        []string `yaml:"symbols"`
}

// Default returns a Config with every option at its default.
func Default() *Config {
	cfg := &Config{}
	cfg.DataSource.LookbackDays = 60
	cfg.DataSource.FlowDays = 10

	sc := strategy.DefaultConfig()
	cfg.Signal.MinVolume = sc.MinVolume
	cfg.Signal.BollingerWindow = sc.BollingerWindow
	cfg.Signal.BollingerK = sc.BollingerK
	cfg.Signal.ConsecutiveDays = sc.ConsecutiveDays
	cfg.Signal.MinTradingValue = sc.MinTradingValue
	cfg.Signal.BaseScore = sc.BaseScore
	cfg.Signal.GoldenCross.Short = sc.GoldenCrossShort
	cfg.Signal.GoldenCross.Long = sc.GoldenCrossLong
	cfg.Signal.VolumeBreakout.Period = sc.BreakoutPeriod
	cfg.Signal.VolumeBreakout.Multiplier = sc.BreakoutMultiplier
	cfg.Signal.Divergence.Enabled = sc.Divergence.Enabled
	cfg.Signal.Divergence.BonusScores = map[string]float64{}
	for k, v := range sc.Divergence.BonusScores {
		cfg.Signal.Divergence.BonusScores[string(k)] = v
	}

	g := engine.DefaultGate()
	cfg.Gate = GateConfig{
		BelowMA20:              g.BelowMA20,
		VolumeSufficient:       g.VolumeSufficient,
		AboveBollingerLower:    g.AboveBollingerLower,
		TradingValueSufficient: g.TradingValueSufficient,
		Investor:               string(g.Investor),
	}

	l := position.DefaultLimits()
	cfg.Position = PositionConfig{
		MaxPurchasesPerSymbol: l.MaxPurchasesPerSymbol,
		MaxQuantityPerSymbol:  l.MaxQuantityPerSymbol,
		MaxTotalHoldings:      l.MaxTotalHoldings,
		MinHoldingHours:       l.MinHoldingPeriod.Hours(),
		CooldownHours:         l.PurchaseCooldown.Hours(),
		Backend:               "json",
		StateFile:             "data/position_history.json",
		TradeLogFile:          "data/daily_trades.json",
	}

	ec := engine.DefaultConfig()
	cfg.Decision = DecisionConfig{
		MinBuyScore:    ec.MinBuyScore,
		MinSellScore:   ec.MinSellScore,
		BudgetPerTrade: ec.BudgetPerTrade,
		StopLossPct:    ec.Sell.StopLossPct,
		TakeProfitPct:  ec.Sell.TakeProfitPct,
		Workers:        ec.Workers,
	}

	cfg.Account.ID = "paper"
	cfg.Account.Enabled = true
	cfg.Account.Mode = "paper"
	cfg.Schedule.CycleCron = "0 */30 9-15 * * 1-5"
	cfg.Schedule.SummaryCron = "0 40 15 * * 1-5"
	return cfg
}

// ResolvePath picks the config file: explicit flag, then CONFIG_PATH, then DefaultPath.
func ResolvePath(flag string) string {
	if flag != "" {
		return flag
	}
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return DefaultPath
}

// Load reads .env, then the YAML file over the defaults, then environment overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("MARKET_DATA_BASE_URL"); v != "" {
		c.DataSource.BaseURL = v
	}
	if v := os.Getenv("MARKET_DATA_API_KEY"); v != "" {
		c.DataSource.APIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("CRON_CYCLE"); v != "" {
		c.Schedule.CycleCron = v
	}
	if v := os.Getenv("SYMBOLS"); v != "" {
		c.Decision.Symbols = splitSymbols(v)
	}
}

func splitSymbols(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Validate checks that all required fields are set and every value is usable.
func (c *Config) Validate() error {
	var errs []error
	if !c.Account.Enabled {
		errs = append(errs, errors.New("account.enabled: no enabled account"))
	}
	if c.Account.Mode != "paper" {
		errs = append(errs, fmt.Errorf("account.mode %q is not supported (only paper)", c.Account.Mode))
	}
	if len(c.Decision.Symbols) == 0 {
		errs = append(errs, errors.New("decision.symbols is required"))
	}
	if c.DataSource.BaseURL == "" {
		errs = append(errs, errors.New("data_source.base_url is required"))
	}
	if c.DataSource.LookbackDays < strategy.MinBars {
		errs = append(errs, fmt.Errorf("data_source.lookback_days must be at least %d", strategy.MinBars))
	}
	if c.DataSource.FlowDays < c.Signal.ConsecutiveDays {
		errs = append(errs, errors.New("data_source.flow_days must cover signal.consecutive_days"))
	}
	if c.Signal.BollingerWindow <= 1 || c.Signal.ConsecutiveDays <= 0 {
		errs = append(errs, errors.New("signal.bollinger_window and signal.consecutive_days must be positive"))
	}
	if c.Signal.GoldenCross.Short <= 0 || c.Signal.GoldenCross.Long <= c.Signal.GoldenCross.Short {
		errs = append(errs, errors.New("signal.golden_cross: long must exceed short"))
	}
	for k := range c.Signal.Divergence.BonusScores {
		switch model.DivergenceCategory(k) {
		case model.DivergenceMild, model.DivergenceModerate, model.DivergenceStrong:
		default:
			errs = append(errs, fmt.Errorf("signal.divergence.bonus_scores: unknown category %q", k))
		}
	}
	if !engine.InvestorMode(c.Gate.Investor).Valid() {
		errs = append(errs, fmt.Errorf("gate.investor %q is not one of none, foreign_only, institution_only, both, either", c.Gate.Investor))
	}
	p := c.Position
	if p.MaxPurchasesPerSymbol <= 0 || p.MaxQuantityPerSymbol <= 0 || p.MaxTotalHoldings <= 0 {
		errs = append(errs, errors.New("position limits must be positive"))
	}
	if p.MinHoldingHours < 0 || p.CooldownHours < 0 {
		errs = append(errs, errors.New("position hours must not be negative"))
	}
	switch p.Backend {
	case "json":
		if p.StateFile == "" || p.TradeLogFile == "" {
			errs = append(errs, errors.New("position.state_file and position.trade_log_file are required for the json backend"))
		}
	case "sqlite":
		if c.Database.SQLitePath == "" {
			errs = append(errs, errors.New("database.sqlite_path is required for the sqlite backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("position.backend %q is not json or sqlite", p.Backend))
	}
	if c.Decision.BudgetPerTrade <= 0 {
		errs = append(errs, errors.New("decision.budget_per_trade must be positive"))
	}
	if c.Telegram.BotToken != "" && c.Telegram.ChatID == "" {
		errs = append(errs, errors.New("telegram.chat_id is required when bot_token is set"))
	}
	return errors.Join(errs...)
}

// StrategyConfig converts the signal section.
func (c *Config) StrategyConfig() strategy.Config {
	s := c.Signal
	bonus := make(map[model.DivergenceCategory]float64, len(s.Divergence.BonusScores))
	for k, v := range s.Divergence.BonusScores {
		bonus[model.DivergenceCategory(k)] = v
	}
	return strategy.Config{
		MinVolume:          s.MinVolume,
		BollingerWindow:    s.BollingerWindow,
		BollingerK:         s.BollingerK,
		ConsecutiveDays:    s.ConsecutiveDays,
		MinTradingValue:    s.MinTradingValue,
		BaseScore:          s.BaseScore,
		GoldenCrossShort:   s.GoldenCross.Short,
		GoldenCrossLong:    s.GoldenCross.Long,
		BreakoutPeriod:     s.VolumeBreakout.Period,
		BreakoutMultiplier: s.VolumeBreakout.Multiplier,
		Divergence: strategy.DivergenceConfig{
			Enabled:     s.Divergence.Enabled,
			BonusScores: bonus,
		},
	}
}

// Limits converts the position section.
func (c *Config) Limits() position.Limits {
	p := c.Position
	return position.Limits{
		MaxPurchasesPerSymbol: p.MaxPurchasesPerSymbol,
		MaxQuantityPerSymbol:  p.MaxQuantityPerSymbol,
		MaxTotalHoldings:      p.MaxTotalHoldings,
		MinHoldingPeriod:      hours(p.MinHoldingHours),
		PurchaseCooldown:      hours(p.CooldownHours),
		ResetCountersOnReopen: p.ResetCountersOnReopen,
	}
}

// EngineConfig converts the gate and decision sections.
func (c *Config) EngineConfig() engine.Config {
	return engine.Config{
		Gate: engine.Gate{
			BelowMA20:              c.Gate.BelowMA20,
			VolumeSufficient:       c.Gate.VolumeSufficient,
			AboveBollingerLower:    c.Gate.AboveBollingerLower,
			TradingValueSufficient: c.Gate.TradingValueSufficient,
			Investor:               engine.InvestorMode(c.Gate.Investor),
		},
		MinBuyScore:          c.Decision.MinBuyScore,
		MinSellScore:         c.Decision.MinSellScore,
		BudgetPerTrade:       c.Decision.BudgetPerTrade,
		MaxQuantityPerSymbol: c.Position.MaxQuantityPerSymbol,
		Sell: strategy.SellConfig{
			StopLossPct:   c.Decision.StopLossPct,
			TakeProfitPct: c.Decision.TakeProfitPct,
		},
		Workers: c.Decision.Workers,
	}
}

func hours(h float64) time.Duration {
	return time.Duration(h * float64(time.Hour))
}
