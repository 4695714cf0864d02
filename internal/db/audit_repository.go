package db

import (
	"context"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"

	"sellerprep-backend-go/internal/models"
)

const auditLogsCollection = "audit_logs"

// firestoreAuditRepository implements the AuditRepository interface using Firestore.
type firestoreAuditRepository struct {
	client *firestore.Client
}

// NewFirestoreAuditRepository creates a new instance of firestoreAuditRepository.
func NewFirestoreAuditRepository(client *firestore.Client) AuditRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for AuditRepository.")
	}
	return &firestoreAuditRepository{client: client}
}

// Create appends a new audit log entry with an auto-generated ID.
func (r *firestoreAuditRepository) Create(ctx context.Context, logEntry models.AuditLog) error {
	docRef := r.client.Collection(auditLogsCollection).NewDoc()
	logEntry.ID = docRef.ID

	_, err := docRef.Create(ctx, logEntry)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}
