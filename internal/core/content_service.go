package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"sellerprep-backend-go/internal/db"
	"sellerprep-backend-go/internal/models"
	"sellerprep-backend-go/internal/storage"
)

// Errors surfaced by content operations.
var (
	ErrSectionNotFound  = errors.New("section not found")
	ErrSectionMismatch  = errors.New("section does not belong to the given property")
	ErrDocumentNotFound = errors.New("document not found")
	ErrImageNotFound    = errors.New("image not found")
	ErrNoteNotFound     = errors.New("note not found")
)

// Blob storage prefixes for uploaded files.
const (
	documentPrefix = "documents"
	imagePrefix    = "images"
)

// contentService implements the ContentService interface.
type contentService struct {
	propertyRepo db.PropertyRepository
	sectionRepo  db.SectionRepository
	documentRepo db.DocumentRepository
	imageRepo    db.ImageRepository
	noteRepo     db.NoteRepository
	blobs        storage.BlobStore
	logger       *zap.Logger
}

// NewContentService creates the service managing a property's sections,
// documents, images and notes.
func NewContentService(
	propertyRepo db.PropertyRepository,
	sectionRepo db.SectionRepository,
	documentRepo db.DocumentRepository,
	imageRepo db.ImageRepository,
	noteRepo db.NoteRepository,
	blobs storage.BlobStore,
	logger *zap.Logger,
) (ContentService, error) {
	if propertyRepo == nil || sectionRepo == nil || documentRepo == nil || imageRepo == nil || noteRepo == nil {
		return nil, fmt.Errorf("NewContentService requires all repositories to be non-nil")
	}
	if blobs == nil {
		return nil, fmt.Errorf("NewContentService requires a non-nil BlobStore")
	}
	if logger == nil {
		return nil, fmt.Errorf("NewContentService requires a non-nil zap.Logger instance")
	}
	return &contentService{
		propertyRepo: propertyRepo,
		sectionRepo:  sectionRepo,
		documentRepo: documentRepo,
		imageRepo:    imageRepo,
		noteRepo:     noteRepo,
		blobs:        blobs,
		logger:       logger,
	}, nil
}

// ownedProperty verifies the property exists and belongs to ownerID.
func (s *contentService) ownedProperty(ctx context.Context, ownerID, propertyID string) (*models.Property, error) {
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

// validateSection checks that a provided section ID references a section of
// the same property. An empty section ID is valid (unsectioned item).
func (s *contentService) validateSection(ctx context.Context, propertyID, sectionID string) error {
	if sectionID == "" {
		return nil
	}
	section, err := s.sectionRepo.GetByID(ctx, sectionID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrSectionNotFound
		}
		return fmt.Errorf("failed to get section: %w", err)
	}
	if section.PropertyID != propertyID {
		return ErrSectionMismatch
	}
	return nil
}

// --- Sections ---

func (s *contentService) CreateSection(ctx context.Context, ownerID string, req models.CreateSectionRequest) (*models.Section, error) {
	if _, err := s.ownedProperty(ctx, ownerID, req.PropertyID); err != nil {
		return nil, err
	}

	section := &models.Section{
		PropertyID: req.PropertyID,
		Title:      req.Title,
		CreatedAt:  time.Now().UTC(),
	}
	id, err := s.sectionRepo.Create(ctx, section)
	if err != nil {
		return nil, fmt.Errorf("failed to create section: %w", err)
	}
	section.ID = id
	return section, nil
}

func (s *contentService) ListSections(ctx context.Context, ownerID, propertyID string) ([]*models.Section, error) {
	if _, err := s.ownedProperty(ctx, ownerID, propertyID); err != nil {
		return nil, err
	}
	sections, err := s.sectionRepo.GetByPropertyID(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sections: %w", err)
	}
	return sections, nil
}

// DeleteSection removes the section and every document, image and note
// tagged to it.
func (s *contentService) DeleteSection(ctx context.Context, ownerID, sectionID string) error {
	section, err := s.sectionRepo.GetByID(ctx, sectionID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrSectionNotFound
		}
		return fmt.Errorf("failed to get section: %w", err)
	}
	if _, err := s.ownedProperty(ctx, ownerID, section.PropertyID); err != nil {
		return err
	}

	documents, err := s.documentRepo.GetByPropertyID(ctx, section.PropertyID)
	if err != nil {
		return fmt.Errorf("failed to list documents for section delete: %w", err)
	}
	images, err := s.imageRepo.GetByPropertyID(ctx, section.PropertyID)
	if err != nil {
		return fmt.Errorf("failed to list images for section delete: %w", err)
	}
	for _, doc := range documents {
		if doc.SectionID != sectionID {
			continue
		}
		if err := s.blobs.Delete(ctx, doc.FileName); err != nil {
			s.logger.Warn("blob delete failed during section cascade",
				zap.String("objectName", doc.FileName), zap.Error(err))
		}
	}
	for _, img := range images {
		if img.SectionID != sectionID {
			continue
		}
		if err := s.blobs.Delete(ctx, img.FileName); err != nil {
			s.logger.Warn("blob delete failed during section cascade",
				zap.String("objectName", img.FileName), zap.Error(err))
		}
	}

	if err := s.documentRepo.DeleteBySectionID(ctx, sectionID); err != nil {
		return fmt.Errorf("failed to delete documents for section '%s': %w", sectionID, err)
	}
	if err := s.imageRepo.DeleteBySectionID(ctx, sectionID); err != nil {
		return fmt.Errorf("failed to delete images for section '%s': %w", sectionID, err)
	}
	if err := s.noteRepo.DeleteBySectionID(ctx, sectionID); err != nil {
		return fmt.Errorf("failed to delete notes for section '%s': %w", sectionID, err)
	}
	if err := s.sectionRepo.Delete(ctx, sectionID); err != nil {
		return fmt.Errorf("failed to delete section '%s': %w", sectionID, err)
	}

	s.logger.Info("section deleted", zap.String("sectionID", sectionID), zap.String("propertyID", section.PropertyID))
	return nil
}

// --- Documents ---

func (s *contentService) CreateDocument(ctx context.Context, ownerID, propertyID, sectionID, filename string, file io.Reader) (*models.Document, error) {
	if _, err := s.ownedProperty(ctx, ownerID, propertyID); err != nil {
		return nil, err
	}
	if err := s.validateSection(ctx, propertyID, sectionID); err != nil {
		return nil, err
	}

	uploaded, err := s.blobs.Upload(ctx, documentPrefix, filename, file)
	if err != nil {
		return nil, fmt.Errorf("failed to upload document: %w", err)
	}

	doc := &models.Document{
		PropertyID: propertyID,
		SectionID:  sectionID,
		FileName:   uploaded.ObjectName,
		URL:        uploaded.URL,
		Size:       uploaded.Size,
		UploadedAt: time.Now().UTC(),
	}
	id, err := s.documentRepo.Create(ctx, doc)
	if err != nil {
		// The metadata write failed; drop the orphaned blob.
		if delErr := s.blobs.Delete(ctx, uploaded.ObjectName); delErr != nil {
			s.logger.Warn("failed to clean up orphaned blob",
				zap.String("objectName", uploaded.ObjectName), zap.Error(delErr))
		}
		return nil, fmt.Errorf("failed to create document record: %w", err)
	}
	doc.ID = id
	return doc, nil
}

func (s *contentService) ListDocuments(ctx context.Context, ownerID, propertyID, sectionID string) ([]*models.Document, error) {
	if _, err := s.ownedProperty(ctx, ownerID, propertyID); err != nil {
		return nil, err
	}
	documents, err := s.documentRepo.GetByPropertyID(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	if sectionID == "" {
		return documents, nil
	}
	filtered := make([]*models.Document, 0, len(documents))
	for _, doc := range documents {
		if doc.SectionID == sectionID {
			filtered = append(filtered, doc)
		}
	}
	return filtered, nil
}

func (s *contentService) DeleteDocument(ctx context.Context, ownerID, documentID string) error {
	doc, err := s.documentRepo.GetByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrDocumentNotFound
		}
		return fmt.Errorf("failed to get document: %w", err)
	}
	if _, err := s.ownedProperty(ctx, ownerID, doc.PropertyID); err != nil {
		return err
	}

	if err := s.blobs.Delete(ctx, doc.FileName); err != nil {
		s.logger.Warn("blob delete failed for document",
			zap.String("objectName", doc.FileName), zap.Error(err))
	}
	if err := s.documentRepo.Delete(ctx, documentID); err != nil {
		return fmt.Errorf("failed to delete document '%s': %w", documentID, err)
	}
	return nil
}

// --- Images ---

func (s *contentService) CreateImage(ctx context.Context, ownerID, propertyID, sectionID, filename string, file io.Reader) (*models.Image, error) {
	if _, err := s.ownedProperty(ctx, ownerID, propertyID); err != nil {
		return nil, err
	}
	if err := s.validateSection(ctx, propertyID, sectionID); err != nil {
		return nil, err
	}

	uploaded, err := s.blobs.Upload(ctx, imagePrefix, filename, file)
	if err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}

	img := &models.Image{
		PropertyID: propertyID,
		SectionID:  sectionID,
		FileName:   uploaded.ObjectName,
		URL:        uploaded.URL,
		Size:       uploaded.Size,
		UploadedAt: time.Now().UTC(),
	}
	id, err := s.imageRepo.Create(ctx, img)
	if err != nil {
		if delErr := s.blobs.Delete(ctx, uploaded.ObjectName); delErr != nil {
			s.logger.Warn("failed to clean up orphaned blob",
				zap.String("objectName", uploaded.ObjectName), zap.Error(delErr))
		}
		return nil, fmt.Errorf("failed to create image record: %w", err)
	}
	img.ID = id
	return img, nil
}

func (s *contentService) ListImages(ctx context.Context, ownerID, propertyID, sectionID string) ([]*models.Image, error) {
	if _, err := s.ownedProperty(ctx, ownerID, propertyID); err != nil {
		return nil, err
	}
	images, err := s.imageRepo.GetByPropertyID(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	if sectionID == "" {
		return images, nil
	}
	filtered := make([]*models.Image, 0, len(images))
	for _, img := range images {
		if img.SectionID == sectionID {
			filtered = append(filtered, img)
		}
	}
	return filtered, nil
}

func (s *contentService) DeleteImage(ctx context.Context, ownerID, imageID string) error {
	img, err := s.imageRepo.GetByID(ctx, imageID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrImageNotFound
		}
		return fmt.Errorf("failed to get image: %w", err)
	}
	if _, err := s.ownedProperty(ctx, ownerID, img.PropertyID); err != nil {
		return err
	}

	if err := s.blobs.Delete(ctx, img.FileName); err != nil {
		s.logger.Warn("blob delete failed for image",
			zap.String("objectName", img.FileName), zap.Error(err))
	}
	if err := s.imageRepo.Delete(ctx, imageID); err != nil {
		return fmt.Errorf("failed to delete image '%s': %w", imageID, err)
	}
	return nil
}

// --- Notes ---

func (s *contentService) CreateNote(ctx context.Context, ownerID string, req models.CreateNoteRequest) (*models.Note, error) {
	if _, err := s.ownedProperty(ctx, ownerID, req.PropertyID); err != nil {
		return nil, err
	}
	if err := s.validateSection(ctx, req.PropertyID, req.SectionID); err != nil {
		return nil, err
	}

	note := &models.Note{
		PropertyID: req.PropertyID,
		SectionID:  req.SectionID,
		Content:    req.Content,
		CreatedAt:  time.Now().UTC(),
	}
	id, err := s.noteRepo.Create(ctx, note)
	if err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}
	note.ID = id
	return note, nil
}

func (s *contentService) ListNotes(ctx context.Context, ownerID, propertyID string) ([]*models.Note, error) {
	if _, err := s.ownedProperty(ctx, ownerID, propertyID); err != nil {
		return nil, err
	}
	notes, err := s.noteRepo.GetByPropertyID(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return notes, nil
}

func (s *contentService) DeleteNote(ctx context.Context, ownerID, noteID string) error {
	note, err := s.noteRepo.GetByID(ctx, noteID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrNoteNotFound
		}
		return fmt.Errorf("failed to get note: %w", err)
	}
	if _, err := s.ownedProperty(ctx, ownerID, note.PropertyID); err != nil {
		return err
	}
	if err := s.noteRepo.Delete(ctx, noteID); err != nil {
		return fmt.Errorf("failed to delete note '%s': %w", noteID, err)
	}
	return nil
}
