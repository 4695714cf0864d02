package billing

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"
)

// stripeProvider implements the Provider interface against the Stripe API.
type stripeProvider struct {
	api           *client.API
	webhookSecret string
}

// NewStripeProvider creates a Stripe-backed Provider. The webhook secret is
// required; without it no inbound event can be authenticated.
func NewStripeProvider(secretKey, webhookSecret string) (Provider, error) {
	if secretKey == "" {
		return nil, fmt.Errorf("stripe secret key is required")
	}
	if webhookSecret == "" {
		return nil, fmt.Errorf("stripe webhook secret is required")
	}

	api := &client.API{}
	api.Init(secretKey, nil)

	return &stripeProvider{
		api:           api,
		webhookSecret: webhookSecret,
	}, nil
}

// CreateCustomer creates a Stripe customer tagged with the backend user ID.
func (p *stripeProvider) CreateCustomer(ctx context.Context, email, name, userID string) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(name),
	}
	params.Context = ctx
	params.AddMetadata("user_id", userID)

	cust, err := p.api.Customers.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe customer creation failed: %w", err)
	}
	return cust.ID, nil
}

// CreatePaymentIntent creates a USD payment intent for the given customer.
func (p *stripeProvider) CreatePaymentIntent(ctx context.Context, amountCents int64, customerID string, metadata map[string]string) (*PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(string(stripe.CurrencyUSD)),
		Customer: stripe.String(customerID),
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := p.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe payment intent creation failed: %w", err)
	}
	return toPaymentIntent(pi), nil
}

// RetrievePaymentIntent fetches the current state of an intent from Stripe.
func (p *stripeProvider) RetrievePaymentIntent(ctx context.Context, intentID string) (*PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := p.api.PaymentIntents.Get(intentID, params)
	if err != nil {
		return nil, fmt.Errorf("stripe payment intent retrieval failed: %w", err)
	}
	return toPaymentIntent(pi), nil
}

func toPaymentIntent(pi *stripe.PaymentIntent) *PaymentIntent {
	return &PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		AmountCents:  pi.Amount,
		Currency:     string(pi.Currency),
		Status:       string(pi.Status),
	}
}

// ParseWebhookEvent verifies the Stripe-Signature header against the shared
// secret and reduces the event to the fields the reconciler needs.
func (p *stripeProvider) ParseWebhookEvent(payload []byte, signatureHeader string) (*Event, error) {
	event, err := webhook.ConstructEvent(payload, signatureHeader, p.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	normalized := &Event{Type: string(event.Type)}

	switch normalized.Type {
	case EventSubscriptionCreated, EventSubscriptionUpdated, EventSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("%w: subscription object: %v", ErrInvalidPayload, err)
		}
		if sub.Customer != nil {
			normalized.CustomerID = sub.Customer.ID
		}
		normalized.SubscriptionID = sub.ID
		normalized.SubscriptionStatus = string(sub.Status)
		if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
			normalized.PriceID = sub.Items.Data[0].Price.ID
		}
	case EventInvoicePaid, EventInvoiceFailed:
		var inv stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			return nil, fmt.Errorf("%w: invoice object: %v", ErrInvalidPayload, err)
		}
		if inv.Customer != nil {
			normalized.CustomerID = inv.Customer.ID
		}
	default:
		// Unknown event types pass through with only the type set; the
		// reconciler ignores them.
	}

	return normalized, nil
}
