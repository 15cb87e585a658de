package model

import "time"

// OrderIntent is what the decision engine hands to the order-execution collaborator.
type OrderIntent struct {
	CycleID        string
	Symbol         string
	Side           Side
	Quantity       int
	ReferencePrice float64
	Score          float64
	Tags           []string
	Reason         string
	CreatedAt      time.Time
}

// Fill is the executor's report of a completed order.
type Fill struct {
	Intent   OrderIntent
	OrderID  string
	Quantity int
	Price    float64
	FilledAt time.Time
}
