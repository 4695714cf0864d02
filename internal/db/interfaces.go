package db

import (
	"context"

	"sellerprep-backend-go/internal/models"
)

// UserRepository defines the interface for user profile storage operations.
type UserRepository interface {
	GetByID(ctx context.Context, userID string) (*models.UserProfile, error)
	// GetByStripeCustomerID resolves the profile a billing webhook event
	// belongs to. Returns ErrNotFound when no profile carries the customer ID.
	GetByStripeCustomerID(ctx context.Context, customerID string) (*models.UserProfile, error)
	// GetByEmail resolves a profile by email address. Returns ErrNotFound
	// when no profile matches.
	GetByEmail(ctx context.Context, email string) (*models.UserProfile, error)
	Create(ctx context.Context, user *models.UserProfile) error
	Update(ctx context.Context, user *models.UserProfile) error
	List(ctx context.Context) ([]*models.UserProfile, error)
}

// PropertyRepository defines the interface for property storage operations.
type PropertyRepository interface {
	Create(ctx context.Context, property *models.Property) (string, error)
	GetByID(ctx context.Context, propertyID string) (*models.Property, error)
	GetByOwnerID(ctx context.Context, ownerID string) ([]*models.Property, error)
	Update(ctx context.Context, property *models.Property) error
	Delete(ctx context.Context, propertyID string) error
}

// SectionRepository defines the interface for section storage operations.
type SectionRepository interface {
	Create(ctx context.Context, section *models.Section) (string, error)
	GetByID(ctx context.Context, sectionID string) (*models.Section, error)
	GetByPropertyID(ctx context.Context, propertyID string) ([]*models.Section, error)
	Delete(ctx context.Context, sectionID string) error
	DeleteByPropertyID(ctx context.Context, propertyID string) error
}

// DocumentRepository defines the interface for document metadata storage.
type DocumentRepository interface {
	Create(ctx context.Context, doc *models.Document) (string, error)
	GetByID(ctx context.Context, docID string) (*models.Document, error)
	GetByPropertyID(ctx context.Context, propertyID string) ([]*models.Document, error)
	Delete(ctx context.Context, docID string) error
	DeleteByPropertyID(ctx context.Context, propertyID string) error
	DeleteBySectionID(ctx context.Context, sectionID string) error
}

// ImageRepository defines the interface for image metadata storage.
type ImageRepository interface {
	Create(ctx context.Context, img *models.Image) (string, error)
	GetByID(ctx context.Context, imgID string) (*models.Image, error)
	GetByPropertyID(ctx context.Context, propertyID string) ([]*models.Image, error)
	Delete(ctx context.Context, imgID string) error
	DeleteByPropertyID(ctx context.Context, propertyID string) error
	DeleteBySectionID(ctx context.Context, sectionID string) error
}

// NoteRepository defines the interface for note storage operations.
type NoteRepository interface {
	Create(ctx context.Context, note *models.Note) (string, error)
	GetByID(ctx context.Context, noteID string) (*models.Note, error)
	GetByPropertyID(ctx context.Context, propertyID string) ([]*models.Note, error)
	Delete(ctx context.Context, noteID string) error
	DeleteByPropertyID(ctx context.Context, propertyID string) error
	DeleteBySectionID(ctx context.Context, sectionID string) error
}

// PaymentRepository defines the interface for the append-only payment ledger.
// Payments are created once and never updated or deleted.
type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) (string, error)
	// HasSucceeded reports whether a succeeded payment exists for the exact
	// (user, property) pair.
	HasSucceeded(ctx context.Context, userID, propertyID string) (bool, error)
}

// AuditRepository defines the interface for audit log storage operations.
type AuditRepository interface {
	Create(ctx context.Context, logEntry models.AuditLog) error
}
