package broker

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"TradeSentinel/internal/model"
)

// HoldingsSource reports the quantities recorded by the position policy.
type HoldingsSource interface {
	Holdings() (map[string]int, error)
}

// PaperExecutor fills every order immediately at its reference price.
type PaperExecutor struct {
	account string
	source  HoldingsSource
	now     func() time.Time
}

// NewPaperExecutor creates a paper executor for account.
func NewPaperExecutor(account string, source HoldingsSource) *PaperExecutor {
	return &PaperExecutor{account: account, source: source, now: time.Now}
}

func (p *PaperExecutor) Name() string { return "paper" }

func (p *PaperExecutor) Execute(ctx context.Context, intent model.OrderIntent) (model.Fill, error) {
	if err := ctx.Err(); err != nil {
		return model.Fill{}, err
	}
	if intent.Quantity <= 0 {
		return model.Fill{}, fmt.Errorf("%s %s: invalid quantity %d", intent.Side, intent.Symbol, intent.Quantity)
	}
	if intent.ReferencePrice <= 0 {
		return model.Fill{}, fmt.Errorf("%s %s: invalid reference price %.2f", intent.Side, intent.Symbol, intent.ReferencePrice)
	}
	fill := model.Fill{
		Intent:   intent,
		OrderID:  uuid.NewString(),
		Quantity: intent.Quantity,
		Price:    intent.ReferencePrice,
		FilledAt: p.now(),
	}
	log.Printf("[INFO] paper fill [%s] %s %s x%d @ %.2f order=%s",
		p.account, intent.Side, intent.Symbol, fill.Quantity, fill.Price, fill.OrderID)
	return fill, nil
}

func (p *PaperExecutor) Holdings(_ context.Context) (map[string]int, error) {
	h, err := p.source.Holdings()
	if err != nil {
		return nil, fmt.Errorf("paper holdings: %w", err)
	}
	return h, nil
}
