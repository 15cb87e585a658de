package model

// Evaluation is the per-symbol trace of one decision cycle.
type Evaluation struct {
	CycleID    string
	Symbol     string
	HeldQty    int
	Signal     *SignalResult
	GatePassed bool
	GateFailed []string
	Sell       *SellTiming
	Decision   *EligibilityDecision
	Intent     *OrderIntent
	// Skip is set when the symbol produced no intent, with the cause.
	Skip string
}
