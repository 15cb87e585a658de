package recorder

import (
	"time"

	"TradeSentinel/internal/model"
)

// CycleEvent summarizes one evaluation cycle.
type CycleEvent struct {
	CycleID   string
	StartedAt time.Time
	Duration  time.Duration
	Symbols   int
	Intents   int
	Fills     int
	Errors    int
	Source    string // cron, command or cli
}

// Recorder persists decision history for analysis.
type Recorder interface {
	RecordCycle(evt *CycleEvent) error
	RecordEvaluation(ev *model.Evaluation) error
	RecordIntent(in *model.OrderIntent) error
	RecordFill(f *model.Fill) error
	Close() error
}
