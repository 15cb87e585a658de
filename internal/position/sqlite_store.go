package position

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"TradeSentinel/internal/model"
)

// SQLiteStore is a Repository and TradeLog backed by an embedded SQLite database.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Printf("[INFO] sqlite position store opened: %s", dbPath)
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS positions (
			symbol               TEXT PRIMARY KEY,
			total_quantity       INTEGER NOT NULL,
			purchase_count       INTEGER NOT NULL,
			first_purchase_time  TEXT,
			last_purchase_time   TEXT,
			position_closed_time TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS position_records (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol     TEXT NOT NULL,
			seq        INTEGER NOT NULL,
			timestamp  TEXT NOT NULL,
			quantity   INTEGER NOT NULL,
			price      REAL NOT NULL,
			strategy   TEXT,
			reason     TEXT,
			order_type TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_position_records_symbol ON position_records(symbol, seq)`,
		`CREATE TABLE IF NOT EXISTS trade_log (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			trade_date TEXT NOT NULL,
			symbol     TEXT NOT NULL,
			action     TEXT NOT NULL,
			quantity   INTEGER NOT NULL,
			price      REAL NOT NULL,
			timestamp  TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trade_log_date ON trade_log(trade_date)`,
	}
	for _, st := range stmts {
		if _, err := s.db.Exec(st); err != nil {
			return fmt.Errorf("exec %q: %w", st[:40], err)
		}
	}
	return nil
}

func (s *SQLiteStore) Load(symbol string) (model.PositionRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rec model.PositionRecord
	var first, last, closed sql.NullString
	err := s.db.QueryRow(`SELECT total_quantity, purchase_count, first_purchase_time, last_purchase_time, position_closed_time
		FROM positions WHERE symbol = ?`, symbol).
		Scan(&rec.TotalQuantity, &rec.PurchaseCount, &first, &last, &closed)
	if errors.Is(err, sql.ErrNoRows) {
		return model.PositionRecord{}, false, nil
	}
	if err != nil {
		return model.PositionRecord{}, false, fmt.Errorf("load position %s: %w", symbol, err)
	}
	if rec.FirstPurchaseTime, err = parseNullTime(first); err != nil {
		return model.PositionRecord{}, false, err
	}
	if rec.LastPurchaseTime, err = parseNullTime(last); err != nil {
		return model.PositionRecord{}, false, err
	}
	if rec.PositionClosedTime, err = parseNullTime(closed); err != nil {
		return model.PositionRecord{}, false, err
	}

	rows, err := s.db.Query(`SELECT timestamp, quantity, price, strategy, reason, order_type
		FROM position_records WHERE symbol = ? ORDER BY seq`, symbol)
	if err != nil {
		return model.PositionRecord{}, false, fmt.Errorf("load records %s: %w", symbol, err)
	}
	defer rows.Close()
	for rows.Next() {
		var r model.PurchaseRecord
		var ts string
		var strategy, reason sql.NullString
		var side string
		if err := rows.Scan(&ts, &r.Quantity, &r.Price, &strategy, &reason, &side); err != nil {
			return model.PositionRecord{}, false, fmt.Errorf("scan record %s: %w", symbol, err)
		}
		if r.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return model.PositionRecord{}, false, fmt.Errorf("parse record time %q: %w", ts, err)
		}
		r.Strategy = strategy.String
		r.Reason = reason.String
		r.OrderType = model.Side(side)
		rec.Purchases = append(rec.Purchases, r)
	}
	return rec, true, rows.Err()
}

// Save replaces the symbol's row and history inside one transaction.
func (s *SQLiteStore) Save(symbol string, rec model.PositionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO positions
		(symbol, total_quantity, purchase_count, first_purchase_time, last_purchase_time, position_closed_time)
		VALUES (?,?,?,?,?,?)
		ON CONFLICT(symbol) DO UPDATE SET
			total_quantity = excluded.total_quantity,
			purchase_count = excluded.purchase_count,
			first_purchase_time = excluded.first_purchase_time,
			last_purchase_time = excluded.last_purchase_time,
			position_closed_time = excluded.position_closed_time`,
		symbol, rec.TotalQuantity, rec.PurchaseCount,
		formatNullTime(rec.FirstPurchaseTime), formatNullTime(rec.LastPurchaseTime), formatNullTime(rec.PositionClosedTime),
	); err != nil {
		return fmt.Errorf("upsert position %s: %w", symbol, err)
	}
	if _, err := tx.Exec(`DELETE FROM position_records WHERE symbol = ?`, symbol); err != nil {
		return fmt.Errorf("clear records %s: %w", symbol, err)
	}
	for i, r := range rec.Purchases {
		if _, err := tx.Exec(`INSERT INTO position_records
			(symbol, seq, timestamp, quantity, price, strategy, reason, order_type)
			VALUES (?,?,?,?,?,?,?,?)`,
			symbol, i, r.Timestamp.Format(time.RFC3339Nano), r.Quantity, r.Price, r.Strategy, r.Reason, string(r.OrderType),
		); err != nil {
			return fmt.Errorf("insert record %s: %w", symbol, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Symbols() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.db.Query(`SELECT symbol FROM positions ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("list symbols: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var sym string
		if err := rows.Scan(&sym); err != nil {
			return nil, err
		}
		out = append(out, sym)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Append(entry model.TradeLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`INSERT INTO trade_log (trade_date, symbol, action, quantity, price, timestamp)
		VALUES (?,?,?,?,?,?)`,
		entry.Timestamp.Format(time.DateOnly), entry.Symbol, string(entry.Action),
		entry.Quantity, entry.Price, entry.Timestamp.Format(time.RFC3339Nano),
	)
	return err
}

func (s *SQLiteStore) Today(now time.Time) ([]model.TradeLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.db.Query(`SELECT symbol, action, quantity, price, timestamp
		FROM trade_log WHERE trade_date = ? ORDER BY id`, now.Format(time.DateOnly))
	if err != nil {
		return nil, fmt.Errorf("query trade log: %w", err)
	}
	defer rows.Close()
	var out []model.TradeLogEntry
	for rows.Next() {
		var e model.TradeLogEntry
		var action, ts string
		if err := rows.Scan(&e.Symbol, &action, &e.Quantity, &e.Price, &ts); err != nil {
			return nil, err
		}
		e.Action = model.Side(action)
		if e.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("parse trade time %q: %w", ts, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	log.Println("[INFO] closing sqlite position store")
	return s.db.Close()
}

func formatNullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(time.RFC3339Nano), Valid: true}
}

func parseNullTime(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, v.String)
	if err != nil {
		return nil, fmt.Errorf("parse time %q: %w", v.String, err)
	}
	return &t, nil
}
