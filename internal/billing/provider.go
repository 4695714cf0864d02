// Package billing wraps the Stripe SDK behind a narrow Provider interface so
// core services can be exercised against a fake in tests. Webhook payloads
// are normalized into billing.Event values; core code never sees raw Stripe
// types.
package billing

import (
	"context"
	"errors"
)

// Errors surfaced by webhook parsing. Both reject the request at the
// boundary; handlers are never invoked for an unauthenticated payload.
var (
	ErrInvalidSignature = errors.New("webhook signature verification failed")
	ErrInvalidPayload   = errors.New("webhook payload could not be parsed")
)

// Event types the reconciler understands. Anything else is delivered with
// its raw type string and ignored downstream.
const (
	EventSubscriptionCreated = "customer.subscription.created"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
	EventInvoicePaid         = "invoice.payment_succeeded"
	EventInvoiceFailed       = "invoice.payment_failed"
)

// Event is a billing-provider event reduced to the fields the reconciler
// acts on.
type Event struct {
	Type               string
	CustomerID         string
	SubscriptionID     string
	SubscriptionStatus string // raw provider status, e.g. "active", "past_due", "canceled"
	PriceID            string // first line-item price ID, used for tier inference
}

// PaymentIntent is the subset of a provider payment intent the backend needs.
type PaymentIntent struct {
	ID           string
	ClientSecret string
	AmountCents  int64
	Currency     string
	Status       string
}

// PaymentIntentSucceeded is the provider status required before a payment is
// recorded in the ledger.
const PaymentIntentSucceeded = "succeeded"

// Provider is the outbound billing interface consumed by core services.
type Provider interface {
	// CreateCustomer creates a provider-side customer and returns its ID.
	CreateCustomer(ctx context.Context, email, name, userID string) (string, error)
	// CreatePaymentIntent creates a payment intent for a pay-per-export charge.
	CreatePaymentIntent(ctx context.Context, amountCents int64, customerID string, metadata map[string]string) (*PaymentIntent, error)
	// RetrievePaymentIntent fetches the authoritative state of an intent.
	// Client-reported statuses are never trusted.
	RetrievePaymentIntent(ctx context.Context, intentID string) (*PaymentIntent, error)
	// ParseWebhookEvent verifies the webhook signature and normalizes the
	// payload. Returns ErrInvalidSignature or ErrInvalidPayload on rejection.
	ParseWebhookEvent(payload []byte, signatureHeader string) (*Event, error)
}
