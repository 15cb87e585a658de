package position

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"TradeSentinel/internal/model"
)

// JSONStore keeps every PositionRecord in one JSON file, rewritten on each Save.
type JSONStore struct {
	mu       sync.Mutex
	filePath string
	records  map[string]model.PositionRecord
}

// NewJSONStore loads filePath. A missing file starts empty; a malformed one is
// discarded with a warning.
func NewJSONStore(filePath string) (*JSONStore, error) {
	s := &JSONStore{filePath: filePath, records: map[string]model.PositionRecord{}}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		log.Printf("[WARN] read position history %s: %v, starting empty", filePath, err)
		return s, nil
	}
	if len(data) == 0 {
		return s, nil
	}
	var records map[string]model.PositionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		log.Printf("[WARN] malformed position history %s: %v, starting empty", filePath, err)
		return s, nil
	}
	if records != nil {
		s.records = records
	}
	log.Printf("[INFO] position history loaded: %d symbols", len(s.records))
	return s, nil
}

func (s *JSONStore) Load(symbol string) (model.PositionRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[symbol]
	if !ok {
		return model.PositionRecord{}, false, nil
	}
	return cloneRecord(rec), true, nil
}

// Save writes the whole file with rec applied and only then commits it in memory.
func (s *JSONStore) Save(symbol string, rec model.PositionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]model.PositionRecord, len(s.records)+1)
	for k, v := range s.records {
		next[k] = v
	}
	next[symbol] = cloneRecord(rec)

	if err := writeJSONFile(s.filePath, next); err != nil {
		return fmt.Errorf("save position history: %w", err)
	}
	s.records = next
	return nil
}

func (s *JSONStore) Symbols() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.records))
	for k := range s.records {
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}

// dailyTrades is the on-disk shape of FileTradeLog.
type dailyTrades struct {
	Date   string                `json:"date"`
	Trades []model.TradeLogEntry `json:"trades"`
}

// FileTradeLog stores today's executions in a JSON file. Entries from an
// earlier day are dropped on the first append of a new day.
type FileTradeLog struct {
	mu       sync.Mutex
	filePath string
	day      dailyTrades
}

// NewFileTradeLog loads filePath, resetting it with a warning when malformed.
func NewFileTradeLog(filePath string) (*FileTradeLog, error) {
	l := &FileTradeLog{filePath: filePath}
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return l, nil
		}
		log.Printf("[WARN] read trade log %s: %v, starting empty", filePath, err)
		return l, nil
	}
	if len(data) == 0 {
		return l, nil
	}
	if err := json.Unmarshal(data, &l.day); err != nil {
		log.Printf("[WARN] malformed trade log %s: %v, starting empty", filePath, err)
		l.day = dailyTrades{}
	}
	return l, nil
}

func (l *FileTradeLog) Append(entry model.TradeLogEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	date := entry.Timestamp.Format(time.DateOnly)
	next := dailyTrades{Date: date}
	if l.day.Date == date {
		next.Trades = append(next.Trades, l.day.Trades...)
	}
	next.Trades = append(next.Trades, entry)

	if err := writeJSONFile(l.filePath, next); err != nil {
		return fmt.Errorf("save trade log: %w", err)
	}
	l.day = next
	return nil
}

func (l *FileTradeLog) Today(now time.Time) ([]model.TradeLogEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]model.TradeLogEntry, 0, len(l.day.Trades))
	for _, t := range l.day.Trades {
		if sameDay(t.Timestamp, now) {
			out = append(out, t)
		}
	}
	return out, nil
}

// writeJSONFile writes v through a temp file and rename so readers never see a partial file.
func writeJSONFile(filePath string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, filePath)
}
