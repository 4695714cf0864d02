package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"sellerprep-backend-go/internal/db"
	"sellerprep-backend-go/internal/models"
	"sellerprep-backend-go/internal/storage"
)

// ErrPropertyNotFound covers both a missing property and a property owned by
// someone else. Ownership misses are indistinguishable from absence on the
// API surface.
var ErrPropertyNotFound = errors.New("property not found")

// propertyService implements the PropertyService interface.
type propertyService struct {
	propertyRepo db.PropertyRepository
	sectionRepo  db.SectionRepository
	documentRepo db.DocumentRepository
	imageRepo    db.ImageRepository
	noteRepo     db.NoteRepository
	blobs        storage.BlobStore
	audit        AuditService
	logger       *zap.Logger
}

// NewPropertyService creates a new property CRUD service.
func NewPropertyService(
	propertyRepo db.PropertyRepository,
	sectionRepo db.SectionRepository,
	documentRepo db.DocumentRepository,
	imageRepo db.ImageRepository,
	noteRepo db.NoteRepository,
	blobs storage.BlobStore,
	audit AuditService,
	logger *zap.Logger,
) (PropertyService, error) {
	if propertyRepo == nil || sectionRepo == nil || documentRepo == nil || imageRepo == nil || noteRepo == nil {
		return nil, fmt.Errorf("NewPropertyService requires all repositories to be non-nil")
	}
	if blobs == nil {
		return nil, fmt.Errorf("NewPropertyService requires a non-nil BlobStore")
	}
	if audit == nil {
		return nil, fmt.Errorf("NewPropertyService requires a non-nil AuditService")
	}
	if logger == nil {
		return nil, fmt.Errorf("NewPropertyService requires a non-nil zap.Logger instance")
	}
	return &propertyService{
		propertyRepo: propertyRepo,
		sectionRepo:  sectionRepo,
		documentRepo: documentRepo,
		imageRepo:    imageRepo,
		noteRepo:     noteRepo,
		blobs:        blobs,
		audit:        audit,
		logger:       logger,
	}, nil
}

// getOwned fetches a property and verifies ownership. Any miss, including an
// ownership mismatch, surfaces as ErrPropertyNotFound.
func (s *propertyService) getOwned(ctx context.Context, ownerID, propertyID string) (*models.Property, error) {
	property, err := s.propertyRepo.GetByID(ctx, propertyID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, fmt.Errorf("failed to get property: %w", err)
	}
	if property.OwnerID != ownerID {
		return nil, ErrPropertyNotFound
	}
	return property, nil
}

func (s *propertyService) CreateProperty(ctx context.Context, ownerID string, req models.CreatePropertyRequest) (*models.Property, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("ownerID cannot be empty for CreateProperty")
	}

	property := &models.Property{
		OwnerID:     ownerID,
		Address:     req.Address,
		Description: req.Description,
		CreatedAt:   time.Now().UTC(),
	}
	id, err := s.propertyRepo.Create(ctx, property)
	if err != nil {
		return nil, fmt.Errorf("failed to create property: %w", err)
	}
	property.ID = id

	s.logger.Info("property created", zap.String("propertyID", id), zap.String("ownerID", ownerID))
	return property, nil
}

func (s *propertyService) GetProperty(ctx context.Context, ownerID, propertyID string) (*models.Property, error) {
	return s.getOwned(ctx, ownerID, propertyID)
}

func (s *propertyService) ListProperties(ctx context.Context, ownerID string) ([]*models.Property, error) {
	properties, err := s.propertyRepo.GetByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	return properties, nil
}

func (s *propertyService) UpdateProperty(ctx context.Context, ownerID, propertyID string, req models.UpdatePropertyRequest) (*models.Property, error) {
	property, err := s.getOwned(ctx, ownerID, propertyID)
	if err != nil {
		return nil, err
	}

	if req.Address != nil {
		property.Address = *req.Address
	}
	if req.Description != nil {
		property.Description = *req.Description
	}

	if err := s.propertyRepo.Update(ctx, property); err != nil {
		return nil, fmt.Errorf("failed to update property: %w", err)
	}
	return property, nil
}

// DeleteProperty removes the property and cascades to its sections,
// documents, images and notes. Stored blobs are deleted best-effort; the
// metadata records are authoritative. Payments and profiles survive.
func (s *propertyService) DeleteProperty(ctx context.Context, ownerID, propertyID string) error {
	property, err := s.getOwned(ctx, ownerID, propertyID)
	if err != nil {
		return err
	}

	documents, err := s.documentRepo.GetByPropertyID(ctx, propertyID)
	if err != nil {
		return fmt.Errorf("failed to list documents for cascade delete: %w", err)
	}
	images, err := s.imageRepo.GetByPropertyID(ctx, propertyID)
	if err != nil {
		return fmt.Errorf("failed to list images for cascade delete: %w", err)
	}

	for _, doc := range documents {
		if err := s.blobs.Delete(ctx, doc.FileName); err != nil {
			s.logger.Warn("blob delete failed during property cascade",
				zap.String("objectName", doc.FileName), zap.Error(err))
		}
	}
	for _, img := range images {
		if err := s.blobs.Delete(ctx, img.FileName); err != nil {
			s.logger.Warn("blob delete failed during property cascade",
				zap.String("objectName", img.FileName), zap.Error(err))
		}
	}

	if err := s.documentRepo.DeleteByPropertyID(ctx, propertyID); err != nil {
		return fmt.Errorf("failed to delete documents for property '%s': %w", propertyID, err)
	}
	if err := s.imageRepo.DeleteByPropertyID(ctx, propertyID); err != nil {
		return fmt.Errorf("failed to delete images for property '%s': %w", propertyID, err)
	}
	if err := s.noteRepo.DeleteByPropertyID(ctx, propertyID); err != nil {
		return fmt.Errorf("failed to delete notes for property '%s': %w", propertyID, err)
	}
	if err := s.sectionRepo.DeleteByPropertyID(ctx, propertyID); err != nil {
		return fmt.Errorf("failed to delete sections for property '%s': %w", propertyID, err)
	}
	if err := s.propertyRepo.Delete(ctx, propertyID); err != nil {
		return fmt.Errorf("failed to delete property '%s': %w", propertyID, err)
	}

	s.logger.Info("property deleted",
		zap.String("propertyID", propertyID),
		zap.String("ownerID", ownerID),
		zap.Int("documents", len(documents)),
		zap.Int("images", len(images)))
	if err := s.audit.Record(ctx, models.AuditLog{
		UserID:     ownerID,
		Action:     models.AuditActionPropertyDeleted,
		TargetType: "property",
		TargetID:   propertyID,
		Details:    fmt.Sprintf("address: %s", property.Address),
	}); err != nil {
		s.logger.Warn("audit record failed for property delete", zap.Error(err))
	}

	return nil
}
