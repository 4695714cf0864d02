package db

import (
	"context"
	"errors"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"sellerprep-backend-go/internal/models"
)

const paymentsCollection = "payments"

// firestorePaymentRepository implements the PaymentRepository interface using
// Firestore. The ledger is append-only: there is deliberately no Update or
// Delete.
type firestorePaymentRepository struct {
	client *firestore.Client
}

// NewFirestorePaymentRepository creates a new instance of firestorePaymentRepository.
func NewFirestorePaymentRepository(client *firestore.Client) PaymentRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for PaymentRepository.")
	}
	return &firestorePaymentRepository{client: client}
}

// Create appends a new payment ledger entry with an auto-generated ID.
func (r *firestorePaymentRepository) Create(ctx context.Context, payment *models.Payment) (string, error) {
	if payment.UserID == "" || payment.PropertyID == "" {
		return "", errors.New("payment userID and propertyID cannot be empty for Create operation")
	}
	docRef := r.client.Collection(paymentsCollection).NewDoc()
	payment.ID = docRef.ID

	_, err := docRef.Create(ctx, payment)
	if err != nil {
		return "", fmt.Errorf("failed to create payment record: %w", err)
	}
	return docRef.ID, nil
}

// HasSucceeded reports whether a succeeded payment exists for the exact
// (user, property) pair. One succeeded record is enough; the export path
// never cares how many there are.
func (r *firestorePaymentRepository) HasSucceeded(ctx context.Context, userID, propertyID string) (bool, error) {
	if userID == "" || propertyID == "" {
		return false, errors.New("userID and propertyID cannot be empty for HasSucceeded operation")
	}

	iter := r.client.Collection(paymentsCollection).
		Where("userId", "==", userID).
		Where("propertyId", "==", propertyID).
		Where("status", "==", models.PaymentSucceeded).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	_, err := iter.Next()
	if err == iterator.Done {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query payments for user '%s', property '%s': %w", userID, propertyID, err)
	}
	return true, nil
}
