package broker

import (
	"context"

	"TradeSentinel/internal/model"
)

// Executor is the order-execution collaborator.
type Executor interface {
	// Execute places the order described by intent and reports the fill.
	Execute(ctx context.Context, intent model.OrderIntent) (model.Fill, error)
	// Holdings returns the live quantity per held symbol.
	Holdings(ctx context.Context) (map[string]int, error)
	Name() string
}
