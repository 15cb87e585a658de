package recorder

import "TradeSentinel/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordCycle(_ *CycleEvent) error            { return nil }
func (n *NoopRecorder) RecordEvaluation(_ *model.Evaluation) error { return nil }
func (n *NoopRecorder) RecordIntent(_ *model.OrderIntent) error    { return nil }
func (n *NoopRecorder) RecordFill(_ *model.Fill) error             { return nil }
func (n *NoopRecorder) Close() error                               { return nil }
