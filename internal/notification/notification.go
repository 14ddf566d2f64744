package notification

import (
	"context"
	"log/slog"
)

const (
	// KindWithdrawalRequested asks the admin to approve a pending payout.
	KindWithdrawalRequested = "withdrawal_requested"
	// KindWithdrawalReversed informs about a rejected payout that was credited back.
	KindWithdrawalReversed = "withdrawal_reversed"
)

// Message describes a notification payload.
type Message struct {
	Kind        string
	Destination string
	Body        string
}

// Notifier delivers notifications to downstream systems. Delivery is
// fire-and-forget: the ledger never waits for an approval response.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier writes notifications to the structured logger. The actual
// admin hand-off happens through the WhatsApp link returned to the client.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("notification", "kind", message.Kind, "destination", message.Destination, "body", message.Body)
	return nil
}
