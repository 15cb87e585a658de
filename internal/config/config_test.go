package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"TradeSentinel/internal/engine"
	"TradeSentinel/internal/model"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaultsWhenMissing(t *testing.T) {
	t.Setenv("SYMBOLS", "")
	t.Setenv("CRON_CYCLE", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Signal.MinVolume != 1000 || cfg.Signal.ConsecutiveDays != 2 || cfg.Signal.MinTradingValue != 100_000_000 {
		t.Errorf("signal defaults = %+v", cfg.Signal)
	}
	if !cfg.Gate.BelowMA20 || cfg.Gate.TradingValueSufficient || cfg.Gate.Investor != "either" {
		t.Errorf("gate defaults = %+v", cfg.Gate)
	}
	if cfg.Position.MaxTotalHoldings != 5 || cfg.Position.CooldownHours != 24 || cfg.Position.Backend != "json" {
		t.Errorf("position defaults = %+v", cfg.Position)
	}
	if cfg.Schedule.CycleCron != "0 */30 9-15 * * 1-5" {
		t.Errorf("CycleCron = %q", cfg.Schedule.CycleCron)
	}
	if !cfg.Account.Enabled {
		t.Error("account should default to enabled")
	}
}

func TestLoadYAMLAndEnv(t *testing.T) {
	path := writeConfig(t, `
data_source:
  base_url: http://yaml.example
gate:
  below_ma20: false
  investor: both
position:
  max_total_holdings: 3
  purchase_cooldown_hours: 12.5
  reset_counters_on_reopen: true
decision:
  symbols: [AAA, BBB]
signal:
  divergence:
    bonus_scores:
      strong: 2.0
`)
	t.Setenv("MARKET_DATA_BASE_URL", "http://env.example")
	t.Setenv("SYMBOLS", " 005930, 000660 ,,")
	t.Setenv("CRON_CYCLE", "0 0 10 * * *")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataSource.BaseURL != "http://env.example" {
		t.Errorf("BaseURL = %q, env should win", cfg.DataSource.BaseURL)
	}
	if got := strings.Join(cfg.Decision.Symbols, ","); got != "005930,000660" {
		t.Errorf("Symbols = %q", got)
	}
	if cfg.Schedule.CycleCron != "0 0 10 * * *" {
		t.Errorf("CycleCron = %q", cfg.Schedule.CycleCron)
	}
	if cfg.Gate.BelowMA20 || !cfg.Gate.VolumeSufficient {
		t.Errorf("gate = %+v", cfg.Gate)
	}

	limits := cfg.Limits()
	if limits.MaxTotalHoldings != 3 || limits.PurchaseCooldown != 12*time.Hour+30*time.Minute || !limits.ResetCountersOnReopen {
		t.Errorf("limits = %+v", limits)
	}
	if limits.MinHoldingPeriod != 24*time.Hour {
		t.Errorf("MinHoldingPeriod = %v", limits.MinHoldingPeriod)
	}

	ec := cfg.EngineConfig()
	if ec.Gate.Investor != engine.InvestorBoth || ec.MaxQuantityPerSymbol != 200 {
		t.Errorf("engine config = %+v", ec)
	}
	sc := cfg.StrategyConfig()
	if sc.Divergence.BonusScores[model.DivergenceStrong] != 2.0 {
		t.Errorf("strong bonus = %v", sc.Divergence.BonusScores[model.DivergenceStrong])
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfig(t, "signal: [unterminated")
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := Default()
		c.DataSource.BaseURL = "http://x"
		c.Decision.Symbols = []string{"A"}
		return c
	}
	if err := valid().Validate(); err != nil {
		t.Fatalf("valid config: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"no account", func(c *Config) { c.Account.Enabled = false }, "no enabled account"},
		{"no symbols", func(c *Config) { c.Decision.Symbols = nil }, "decision.symbols"},
		{"bad investor", func(c *Config) { c.Gate.Investor = "sometimes" }, "gate.investor"},
		{"bad backend", func(c *Config) { c.Position.Backend = "redis" }, "position.backend"},
		{"sqlite without path", func(c *Config) { c.Position.Backend = "sqlite" }, "database.sqlite_path"},
		{"zero holdings", func(c *Config) { c.Position.MaxTotalHoldings = 0 }, "position limits"},
		{"short lookback", func(c *Config) { c.DataSource.LookbackDays = 10 }, "lookback_days"},
		{"unknown bonus", func(c *Config) { c.Signal.Divergence.BonusScores["huge"] = 9 }, "unknown category"},
		{"chat missing", func(c *Config) { c.Telegram.BotToken = "t" }, "telegram.chat_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.want)
			}
		})
	}
}

func TestResolvePath(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	if got := ResolvePath(""); got != DefaultPath {
		t.Errorf("ResolvePath(\"\") = %q", got)
	}
	t.Setenv("CONFIG_PATH", "/etc/sentinel.yaml")
	if got := ResolvePath(""); got != "/etc/sentinel.yaml" {
		t.Errorf("ResolvePath env = %q", got)
	}
	if got := ResolvePath("flag.yaml"); got != "flag.yaml" {
		t.Errorf("ResolvePath flag = %q", got)
	}
}
