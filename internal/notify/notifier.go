// Package notify provides fire-and-forget email notifications. Sends are
// best-effort by contract: they are attempted at most once, never block the
// caller, and failures are logged and swallowed. No caller observes a result.
package notify

import (
	"fmt"

	"go.uber.org/zap"
)

// Notifier is the outbound notification port. None of the methods return an
// error; a notification failure must never fail the triggering operation.
type Notifier interface {
	SendWelcome(email, displayName string)
	SendExportConfirmation(email, propertyAddress string)
	SendPaymentSuccess(email, propertyAddress string, amountCents int64)
	SendPaymentFailure(email, propertyAddress, reason string)
	SendSubscriptionUpdate(email, status, tier string)
}

// logNotifier implements Notifier by logging only. Used when SMTP is not
// configured (local development, tests).
type logNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a Notifier that records sends in the log instead of
// delivering email.
func NewLogNotifier(logger *zap.Logger) Notifier {
	if logger == nil {
		panic("NewLogNotifier requires a non-nil zap.Logger instance")
	}
	return &logNotifier{logger: logger}
}

func (n *logNotifier) SendWelcome(email, displayName string) {
	n.logger.Info("notification (log-only): welcome", zap.String("email", email), zap.String("displayName", displayName))
}

func (n *logNotifier) SendExportConfirmation(email, propertyAddress string) {
	n.logger.Info("notification (log-only): export confirmation", zap.String("email", email), zap.String("property", propertyAddress))
}

func (n *logNotifier) SendPaymentSuccess(email, propertyAddress string, amountCents int64) {
	n.logger.Info("notification (log-only): payment success",
		zap.String("email", email), zap.String("property", propertyAddress), zap.Int64("amountCents", amountCents))
}

func (n *logNotifier) SendPaymentFailure(email, propertyAddress, reason string) {
	n.logger.Info("notification (log-only): payment failure",
		zap.String("email", email), zap.String("property", propertyAddress), zap.String("reason", reason))
}

func (n *logNotifier) SendSubscriptionUpdate(email, status, tier string) {
	n.logger.Info("notification (log-only): subscription update",
		zap.String("email", email), zap.String("status", status), zap.String("tier", tier))
}

func formatAmount(amountCents int64) string {
	return fmt.Sprintf("$%d.%02d", amountCents/100, amountCents%100)
}
