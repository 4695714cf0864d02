package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"sellerprep-backend-go/internal/billing"
	"sellerprep-backend-go/internal/db"
	"sellerprep-backend-go/internal/models"
)

// tierRules maps price-ID keywords to subscription tiers. Order matters:
// the first matching keyword wins.
var tierRules = []struct {
	keyword string
	tier    string
}{
	{"starter", models.TierStarter},
	{"professional", models.TierProfessional},
	{"team", models.TierTeam},
}

// TierFromPriceID infers the subscription tier from a provider price ID by
// case-insensitive substring match. Returns "" when nothing matches.
func TierFromPriceID(priceID string) string {
	lower := strings.ToLower(priceID)
	for _, rule := range tierRules {
		if strings.Contains(lower, rule.keyword) {
			return rule.tier
		}
	}
	return ""
}

// Reconciler applies billing provider events to user profiles. Every handler
// computes the profile's absolute subscription state from the event payload,
// so deliveries are idempotent and tolerate reordering: replaying an event,
// or applying a stale one after a newer one, converges on the same state the
// latest event describes.
type Reconciler struct {
	provider billing.Provider
	userRepo db.UserRepository
	notifier notifierPort
	logger   *zap.Logger
}

// notifierPort is the slice of the notification interface the reconciler
// needs.
type notifierPort interface {
	SendSubscriptionUpdate(email, status, tier string)
}

// NewReconciler creates a billing event reconciler.
func NewReconciler(provider billing.Provider, userRepo db.UserRepository, notifier notifierPort, logger *zap.Logger) (*Reconciler, error) {
	if provider == nil {
		return nil, fmt.Errorf("NewReconciler requires a non-nil billing.Provider")
	}
	if userRepo == nil {
		return nil, fmt.Errorf("NewReconciler requires a non-nil UserRepository")
	}
	if notifier == nil {
		return nil, fmt.Errorf("NewReconciler requires a non-nil notifier")
	}
	if logger == nil {
		return nil, fmt.Errorf("NewReconciler requires a non-nil zap.Logger instance")
	}
	return &Reconciler{provider: provider, userRepo: userRepo, notifier: notifier, logger: logger}, nil
}

// HandleWebhook verifies and applies one raw webhook delivery. Signature and
// payload errors are returned so the HTTP boundary can reject with 400;
// handler failures after authentication are logged and swallowed so the
// provider receives an acknowledgment and does not retry forever.
func (r *Reconciler) HandleWebhook(ctx context.Context, payload []byte, signatureHeader string) error {
	event, err := r.provider.ParseWebhookEvent(payload, signatureHeader)
	if err != nil {
		return err
	}

	if err := r.Apply(ctx, event); err != nil {
		r.logger.Error("billing event application failed, acknowledging anyway",
			zap.String("eventType", event.Type),
			zap.String("customerID", event.CustomerID),
			zap.Error(err))
	}
	return nil
}

// Apply dispatches one normalized billing event. Unknown event types are
// ignored.
func (r *Reconciler) Apply(ctx context.Context, event *billing.Event) error {
	if event == nil {
		return fmt.Errorf("billing event cannot be nil")
	}

	switch event.Type {
	case billing.EventSubscriptionCreated, billing.EventSubscriptionUpdated:
		return r.applySubscriptionState(ctx, event)
	case billing.EventSubscriptionDeleted:
		return r.applySubscriptionDeleted(ctx, event)
	case billing.EventInvoicePaid:
		return r.applyInvoicePaid(ctx, event)
	case billing.EventInvoiceFailed:
		return r.applyInvoiceFailed(ctx, event)
	default:
		r.logger.Debug("ignoring billing event", zap.String("eventType", event.Type))
		return nil
	}
}

// lookupCustomer resolves the profile a billing event belongs to. A missing
// profile is not an error: the customer may not have signed in to the backend
// yet, and the next subscription event after they do will converge the state.
func (r *Reconciler) lookupCustomer(ctx context.Context, event *billing.Event) (*models.UserProfile, error) {
	if event.CustomerID == "" {
		r.logger.Warn("billing event carries no customer ID", zap.String("eventType", event.Type))
		return nil, nil
	}
	profile, err := r.userRepo.GetByStripeCustomerID(ctx, event.CustomerID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			r.logger.Info("billing event for unknown customer, dropping",
				zap.String("eventType", event.Type),
				zap.String("customerID", event.CustomerID))
			return nil, nil
		}
		return nil, fmt.Errorf("failed to resolve billing customer: %w", err)
	}
	return profile, nil
}

func (r *Reconciler) applySubscriptionState(ctx context.Context, event *billing.Event) error {
	profile, err := r.lookupCustomer(ctx, event)
	if err != nil || profile == nil {
		return err
	}

	newStatus := event.SubscriptionStatus
	if newStatus == "active" {
		newStatus = models.SubscriptionActive
	}

	previousStatus := profile.SubscriptionStatus
	profile.SubscriptionStatus = newStatus
	profile.SubscriptionTier = TierFromPriceID(event.PriceID)
	if event.SubscriptionID != "" {
		profile.StripeSubscriptionID = event.SubscriptionID
	}
	profile.UpdatedAt = time.Now().UTC()

	if err := r.userRepo.Update(ctx, profile); err != nil {
		return fmt.Errorf("failed to persist subscription state: %w", err)
	}

	r.logger.Info("subscription state applied",
		zap.String("userID", profile.ID),
		zap.String("status", newStatus),
		zap.String("tier", profile.SubscriptionTier))

	if previousStatus != newStatus {
		r.notifier.SendSubscriptionUpdate(profile.Email, newStatus, profile.SubscriptionTier)
	}
	return nil
}

func (r *Reconciler) applySubscriptionDeleted(ctx context.Context, event *billing.Event) error {
	profile, err := r.lookupCustomer(ctx, event)
	if err != nil || profile == nil {
		return err
	}

	previousStatus := profile.SubscriptionStatus
	profile.SubscriptionStatus = models.SubscriptionCancelled
	profile.UpdatedAt = time.Now().UTC()

	if err := r.userRepo.Update(ctx, profile); err != nil {
		return fmt.Errorf("failed to persist subscription cancellation: %w", err)
	}

	r.logger.Info("subscription cancelled", zap.String("userID", profile.ID))
	if previousStatus != models.SubscriptionCancelled {
		r.notifier.SendSubscriptionUpdate(profile.Email, models.SubscriptionCancelled, profile.SubscriptionTier)
	}
	return nil
}

// applyInvoicePaid only recovers a past-due subscription. A paid invoice for
// an already-active subscription is the normal renewal case and needs no
// write at all.
func (r *Reconciler) applyInvoicePaid(ctx context.Context, event *billing.Event) error {
	profile, err := r.lookupCustomer(ctx, event)
	if err != nil || profile == nil {
		return err
	}
	if profile.SubscriptionStatus != models.SubscriptionPastDue {
		return nil
	}

	profile.SubscriptionStatus = models.SubscriptionActive
	profile.UpdatedAt = time.Now().UTC()
	if err := r.userRepo.Update(ctx, profile); err != nil {
		return fmt.Errorf("failed to persist past-due recovery: %w", err)
	}

	r.logger.Info("subscription recovered from past_due", zap.String("userID", profile.ID))
	r.notifier.SendSubscriptionUpdate(profile.Email, models.SubscriptionActive, profile.SubscriptionTier)
	return nil
}

func (r *Reconciler) applyInvoiceFailed(ctx context.Context, event *billing.Event) error {
	profile, err := r.lookupCustomer(ctx, event)
	if err != nil || profile == nil {
		return err
	}

	previousStatus := profile.SubscriptionStatus
	profile.SubscriptionStatus = models.SubscriptionPastDue
	profile.UpdatedAt = time.Now().UTC()
	if err := r.userRepo.Update(ctx, profile); err != nil {
		return fmt.Errorf("failed to persist past-due state: %w", err)
	}

	r.logger.Warn("subscription marked past_due", zap.String("userID", profile.ID))
	if previousStatus != models.SubscriptionPastDue {
		r.notifier.SendSubscriptionUpdate(profile.Email, models.SubscriptionPastDue, profile.SubscriptionTier)
	}
	return nil
}
