package notify

import (
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"sellerprep-backend-go/internal/config"
)

// smtpNotifier implements Notifier over plain SMTP. Each send runs in its
// own goroutine so the caller never blocks on mail delivery.
type smtpNotifier struct {
	host     string
	port     string
	username string
	password string
	from     string
	logger   *zap.Logger
}

// NewSMTPNotifier creates an SMTP-backed Notifier from the application
// configuration. SMTPHost must be set; callers should fall back to
// NewLogNotifier when it is not.
func NewSMTPNotifier(appConfig *config.Config, logger *zap.Logger) (Notifier, error) {
	if appConfig == nil || appConfig.SMTPHost == "" {
		return nil, fmt.Errorf("SMTP host is not configured")
	}
	if logger == nil {
		return nil, fmt.Errorf("NewSMTPNotifier requires a non-nil zap.Logger instance")
	}
	return &smtpNotifier{
		host:     appConfig.SMTPHost,
		port:     appConfig.SMTPPort,
		username: appConfig.SMTPUsername,
		password: appConfig.SMTPPassword,
		from:     appConfig.EmailFrom,
		logger:   logger,
	}, nil
}

func (n *smtpNotifier) SendWelcome(email, displayName string) {
	name := displayName
	if name == "" {
		name = "there"
	}
	body := fmt.Sprintf("<html><p>Hi %s,</p><p>Welcome to SellerPrep! You can now organize your property documentation and export polished PDF reports.</p></html>", name)
	n.dispatch(email, "Welcome to SellerPrep!", body)
}

func (n *smtpNotifier) SendExportConfirmation(email, propertyAddress string) {
	body := fmt.Sprintf("<html><p>Your property report for <b>%s</b> has been generated.</p></html>", propertyAddress)
	n.dispatch(email, "Your Property Export is Ready", body)
}

func (n *smtpNotifier) SendPaymentSuccess(email, propertyAddress string, amountCents int64) {
	body := fmt.Sprintf("<html><p>We received your payment of %s for <b>%s</b>. You can now export this property.</p></html>",
		formatAmount(amountCents), propertyAddress)
	n.dispatch(email, "Payment Successful - SellerPrep", body)
}

func (n *smtpNotifier) SendPaymentFailure(email, propertyAddress, reason string) {
	body := fmt.Sprintf("<html><p>Your payment for <b>%s</b> could not be completed: %s</p></html>", propertyAddress, reason)
	n.dispatch(email, "Payment Failed - SellerPrep", body)
}

func (n *smtpNotifier) SendSubscriptionUpdate(email, status, tier string) {
	tierLine := ""
	if tier != "" {
		tierLine = fmt.Sprintf(" on the %s plan", tier)
	}
	body := fmt.Sprintf("<html><p>Your subscription%s is now <b>%s</b>.</p></html>", tierLine, status)
	n.dispatch(email, "Subscription Update - SellerPrep", body)
}

// dispatch sends asynchronously. Failures are logged and dropped; the
// notification contract is at-most-once with no observable result.
func (n *smtpNotifier) dispatch(recipient, subject, body string) {
	go func() {
		if err := n.send(recipient, subject, body); err != nil {
			n.logger.Warn("notification send failed",
				zap.String("recipient", recipient),
				zap.String("subject", subject),
				zap.Error(err))
		}
	}()
}

func (n *smtpNotifier) send(recipient, subject, body string) error {
	if recipient == "" {
		return fmt.Errorf("recipient email address cannot be empty")
	}

	contentType := "text/plain; charset=UTF-8"
	if strings.Contains(strings.ToLower(body), "<html>") || strings.Contains(strings.ToLower(body), "<p>") {
		contentType = "text/html; charset=UTF-8"
	}

	message := []byte(fmt.Sprintf("To: %s\r\n"+
		"From: %s\r\n"+
		"Subject: %s\r\n"+
		"Content-Type: %s\r\n"+
		"\r\n"+
		"%s\r\n", recipient, n.from, subject, contentType, body))

	addr := n.host + ":" + n.port
	var auth smtp.Auth
	if n.username != "" {
		auth = smtp.PlainAuth("", n.username, n.password, n.host)
	}

	if err := smtp.SendMail(addr, auth, n.from, []string{recipient}, message); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
