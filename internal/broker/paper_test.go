package broker

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"TradeSentinel/internal/model"
)

type staticHoldings struct {
	h   map[string]int
	err error
}

func (s staticHoldings) Holdings() (map[string]int, error) { return s.h, s.err }

func TestPaperExecute(t *testing.T) {
	ex := NewPaperExecutor("paper-1", staticHoldings{})
	intent := model.OrderIntent{Symbol: "A", Side: model.SideBuy, Quantity: 10, ReferencePrice: 99.5}

	fill, err := ex.Execute(context.Background(), intent)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if fill.Quantity != 10 || fill.Price != 99.5 || fill.Intent.Symbol != "A" {
		t.Errorf("fill = %+v", fill)
	}
	if _, err := uuid.Parse(fill.OrderID); err != nil {
		t.Errorf("OrderID %q is not a uuid: %v", fill.OrderID, err)
	}

	bad := []model.OrderIntent{
		{Symbol: "A", Side: model.SideBuy, Quantity: 0, ReferencePrice: 10},
		{Symbol: "A", Side: model.SideSell, Quantity: 1, ReferencePrice: 0},
	}
	for _, in := range bad {
		if _, err := ex.Execute(context.Background(), in); err == nil {
			t.Errorf("Execute(%+v) returned nil error", in)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ex.Execute(ctx, intent); !errors.Is(err, context.Canceled) {
		t.Errorf("Execute on cancelled ctx: %v", err)
	}
}

func TestPaperHoldings(t *testing.T) {
	ex := NewPaperExecutor("p", staticHoldings{h: map[string]int{"A": 3}})
	h, err := ex.Holdings(context.Background())
	if err != nil || h["A"] != 3 {
		t.Errorf("Holdings = %v, %v", h, err)
	}

	boom := errors.New("disk")
	ex = NewPaperExecutor("p", staticHoldings{err: boom})
	if _, err := ex.Holdings(context.Background()); !errors.Is(err, boom) {
		t.Errorf("Holdings err = %v", err)
	}
}
