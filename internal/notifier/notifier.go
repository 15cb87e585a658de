package notifier

import (
	"context"
	"log"
)

// Notifier delivers operator reports.
type Notifier interface {
	Send(text string) error
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// NoopNotifier writes reports to the log when Telegram is not configured.
type NoopNotifier struct{}

func NewNoopNotifier() *NoopNotifier { return &NoopNotifier{} }

func (n *NoopNotifier) Send(text string) error {
	log.Printf("[INFO] notification (telegram disabled):\n%s", text)
	return nil
}

func (n *NoopNotifier) SendWithRetry(_ context.Context, text string, _ int) error {
	return n.Send(text)
}
