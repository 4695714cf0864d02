package core

import (
	"context"
	"io"

	"sellerprep-backend-go/internal/models"
)

// AuthUser carries the identity claims of the authenticated caller, as
// extracted from the verified Firebase ID token. Services use it for the
// explicit get-or-create of the backend profile.
type AuthUser struct {
	ID          string
	Email       string
	DisplayName string
}

// ExportPermission is the result of an entitlement evaluation for one
// (user, property) pair.
type ExportPermission struct {
	CanExportFree      bool `json:"can_export_free"`
	HasPaid            bool `json:"has_paid"`
	PropertiesExported int  `json:"properties_exported"`
	IsFirstProperty    bool `json:"is_first_property"`
}

// ExportResult is a rendered report with its suggested download filename.
type ExportResult struct {
	PDF      []byte
	Filename string
}

// PaymentIntentResult is returned to the client to complete a payment.
type PaymentIntentResult struct {
	ClientSecret    string `json:"client_secret"`
	PaymentIntentID string `json:"payment_intent_id"`
}

// UserService defines the interface for user profile operations.
type UserService interface {
	// GetOrCreate retrieves a profile by ID, creating a fully-initialized one
	// on first access. Returns the profile and whether it was created.
	GetOrCreate(ctx context.Context, userID, email, displayName string) (*models.UserProfile, bool, error)
	GetByID(ctx context.Context, userID string) (*models.UserProfile, error)
	// MakeAdmin grants the admin role to the target user. The requesting user
	// must already be an admin.
	MakeAdmin(ctx context.Context, requestingUserID string, req models.MakeAdminRequest) (*models.UserProfile, error)
	// ListProfiles returns all profiles, admin only.
	ListProfiles(ctx context.Context, requestingUserID string) ([]*models.UserProfile, error)
}

// PropertyService defines the interface for property CRUD. All operations
// are owner-scoped: a property that exists but belongs to someone else is
// reported as not found, never as forbidden.
type PropertyService interface {
	CreateProperty(ctx context.Context, ownerID string, req models.CreatePropertyRequest) (*models.Property, error)
	GetProperty(ctx context.Context, ownerID, propertyID string) (*models.Property, error)
	ListProperties(ctx context.Context, ownerID string) ([]*models.Property, error)
	UpdateProperty(ctx context.Context, ownerID, propertyID string, req models.UpdatePropertyRequest) (*models.Property, error)
	// DeleteProperty removes the property and cascades to its sections,
	// documents, images and notes.
	DeleteProperty(ctx context.Context, ownerID, propertyID string) error
}

// ContentService defines the interface for a property's child records:
// sections, documents, images and notes.
type ContentService interface {
	CreateSection(ctx context.Context, ownerID string, req models.CreateSectionRequest) (*models.Section, error)
	ListSections(ctx context.Context, ownerID, propertyID string) ([]*models.Section, error)
	DeleteSection(ctx context.Context, ownerID, sectionID string) error

	CreateDocument(ctx context.Context, ownerID, propertyID, sectionID, filename string, file io.Reader) (*models.Document, error)
	ListDocuments(ctx context.Context, ownerID, propertyID, sectionID string) ([]*models.Document, error)
	DeleteDocument(ctx context.Context, ownerID, documentID string) error

	CreateImage(ctx context.Context, ownerID, propertyID, sectionID, filename string, file io.Reader) (*models.Image, error)
	ListImages(ctx context.Context, ownerID, propertyID, sectionID string) ([]*models.Image, error)
	DeleteImage(ctx context.Context, ownerID, imageID string) error

	CreateNote(ctx context.Context, ownerID string, req models.CreateNoteRequest) (*models.Note, error)
	ListNotes(ctx context.Context, ownerID, propertyID string) ([]*models.Note, error)
	DeleteNote(ctx context.Context, ownerID, noteID string) error
}

// EntitlementService evaluates whether an export is free or must be paid
// for. Read-only: safe to call any number of times per request.
type EntitlementService interface {
	Check(ctx context.Context, profile *models.UserProfile, propertyID string) (*ExportPermission, error)
}

// ExportService is the export orchestrator: entitlement evaluation, payment
// confirmation recording, and report generation.
type ExportService interface {
	ExportProperty(ctx context.Context, user AuthUser, propertyID string) (*ExportResult, error)
	CreatePaymentIntent(ctx context.Context, user AuthUser, req models.CreatePaymentIntentRequest) (*PaymentIntentResult, error)
	ConfirmPayment(ctx context.Context, user AuthUser, req models.ConfirmPaymentRequest) (*models.Payment, error)
	CheckExportPermission(ctx context.Context, user AuthUser, propertyID string) (*ExportPermission, error)
}

// AuditService defines the interface for audit logging operations.
type AuditService interface {
	Record(ctx context.Context, entry models.AuditLog) error
}
