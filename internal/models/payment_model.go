package models

import "time"

// PaymentSucceeded is the only payment status that grants an export.
const PaymentSucceeded = "succeeded"

// Payment is an immutable ledger entry recording a confirmed pay-per-export
// charge. It is written exactly once, after the payment intent has been
// verified as succeeded against Stripe, and is never mutated afterwards.
// A succeeded payment for (user, property) is the durable proof that the
// property's export has been paid for, independent of any later subscription
// changes.
type Payment struct {
	ID                    string    `json:"id" firestore:"-"`
	UserID                string    `json:"userId" firestore:"userId"`
	PropertyID            string    `json:"propertyId" firestore:"propertyId"`
	StripePaymentIntentID string    `json:"stripePaymentIntentId" firestore:"stripePaymentIntentId"`
	AmountCents           int64     `json:"amountCents" firestore:"amountCents"`
	Currency              string    `json:"currency" firestore:"currency"`
	Status                string    `json:"status" firestore:"status"`
	CreatedAt             time.Time `json:"createdAt" firestore:"createdAt"`
}
