package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"TradeSentinel/internal/model"
)

// SQLiteRecorder persists decision history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboards can read while cycles write.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS cycles (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			cycle_id    TEXT NOT NULL,
			timestamp   INTEGER NOT NULL,
			duration_ms INTEGER,
			symbols     INTEGER,
			intents     INTEGER,
			fills       INTEGER,
			errors      INTEGER,
			source      TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cycles_ts ON cycles(timestamp)`,

		`CREATE TABLE IF NOT EXISTS evaluations (
			id                    INTEGER PRIMARY KEY AUTOINCREMENT,
			cycle_id              TEXT NOT NULL,
			timestamp             INTEGER NOT NULL,
			symbol                TEXT NOT NULL,
			held_qty              INTEGER,
			outcome               TEXT,
			latest_close          REAL,
			ma20                  REAL,
			below_ma20            INTEGER,
			volume_sufficient     INTEGER,
			above_bollinger_lower INTEGER,
			foreign_buy_days      INTEGER,
			institution_buy_days  INTEGER,
			trading_value         REAL,
			divergence_pct        REAL,
			divergence_category   TEXT,
			composite_score       REAL,
			bonus_signals         TEXT,
			gate_passed           INTEGER,
			gate_failed           TEXT,
			sell_score            REAL,
			sell_reasons          TEXT,
			decision_allowed      INTEGER,
			decision_reason       TEXT,
			skip                  TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_evaluations_symbol ON evaluations(symbol, timestamp)`,

		`CREATE TABLE IF NOT EXISTS intents (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			cycle_id        TEXT NOT NULL,
			timestamp       INTEGER NOT NULL,
			symbol          TEXT NOT NULL,
			side            TEXT NOT NULL,
			quantity        INTEGER,
			reference_price REAL,
			score           REAL,
			tags            TEXT,
			reason          TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_intents_ts ON intents(timestamp)`,

		`CREATE TABLE IF NOT EXISTS fills (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			cycle_id  TEXT NOT NULL,
			order_id  TEXT NOT NULL,
			timestamp INTEGER NOT NULL,
			symbol    TEXT NOT NULL,
			side      TEXT NOT NULL,
			quantity  INTEGER,
			price     REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_fills_ts ON fills(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordCycle(evt *CycleEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO cycles
		(cycle_id, timestamp, duration_ms, symbols, intents, fills, errors, source)
		VALUES (?,?,?,?,?,?,?,?)`,
		evt.CycleID, evt.StartedAt.Unix(), evt.Duration.Milliseconds(),
		evt.Symbols, evt.Intents, evt.Fills, evt.Errors, evt.Source,
	)
	return err
}

func (r *SQLiteRecorder) RecordEvaluation(ev *model.Evaluation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		outcome, category, bonus    string
		closePrice, ma20, tv, score float64
		divergence                  sql.NullFloat64
		below, volume, bollinger    bool
		foreignDays, instDays       int
	)
	if sig := ev.Signal; sig != nil {
		outcome = string(sig.Outcome)
		closePrice, ma20 = sig.LatestClose, sig.MA20
		below, volume, bollinger = sig.BelowMA20, sig.VolumeSufficient, sig.AboveBollingerLower
		foreignDays, instDays = sig.Foreign.Days, sig.Institution.Days
		tv = sig.Trading.Value
		if sig.Divergence.Known {
			divergence = sql.NullFloat64{Float64: sig.Divergence.Pct, Valid: true}
		}
		category = string(sig.Divergence.Category)
		score = sig.CompositeScore
		bonus = strings.Join(sig.BonusSignals, ",")
	}

	var sellScore sql.NullFloat64
	var sellReasons string
	if ev.Sell != nil {
		sellScore = sql.NullFloat64{Float64: ev.Sell.Score, Valid: true}
		sellReasons = strings.Join(ev.Sell.Reasons, ",")
	}

	var allowed sql.NullBool
	var decisionReason string
	if ev.Decision != nil {
		allowed = sql.NullBool{Bool: ev.Decision.Allowed, Valid: true}
		decisionReason = ev.Decision.Reason
	}

	_, err := r.db.Exec(`INSERT INTO evaluations
		(cycle_id, timestamp, symbol, held_qty, outcome, latest_close, ma20,
		 below_ma20, volume_sufficient, above_bollinger_lower,
		 foreign_buy_days, institution_buy_days, trading_value,
		 divergence_pct, divergence_category, composite_score, bonus_signals,
		 gate_passed, gate_failed, sell_score, sell_reasons,
		 decision_allowed, decision_reason, skip)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		ev.CycleID, time.Now().Unix(), ev.Symbol, ev.HeldQty, outcome, closePrice, ma20,
		below, volume, bollinger,
		foreignDays, instDays, tv,
		divergence, category, score, bonus,
		ev.GatePassed, strings.Join(ev.GateFailed, ","), sellScore, sellReasons,
		allowed, decisionReason, ev.Skip,
	)
	return err
}

func (r *SQLiteRecorder) RecordIntent(in *model.OrderIntent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO intents
		(cycle_id, timestamp, symbol, side, quantity, reference_price, score, tags, reason)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		in.CycleID, in.CreatedAt.Unix(), in.Symbol, string(in.Side), in.Quantity,
		in.ReferencePrice, in.Score, strings.Join(in.Tags, ","), in.Reason,
	)
	return err
}

func (r *SQLiteRecorder) RecordFill(f *model.Fill) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO fills
		(cycle_id, order_id, timestamp, symbol, side, quantity, price)
		VALUES (?,?,?,?,?,?,?)`,
		f.Intent.CycleID, f.OrderID, f.FilledAt.Unix(), f.Intent.Symbol,
		string(f.Intent.Side), f.Quantity, f.Price,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
