package db

import (
	"context"
	"errors"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"sellerprep-backend-go/internal/models"
)

const sectionsCollection = "sections"

// firestoreSectionRepository implements the SectionRepository interface using Firestore.
type firestoreSectionRepository struct {
	client *firestore.Client
}

// NewFirestoreSectionRepository creates a new instance of firestoreSectionRepository.
func NewFirestoreSectionRepository(client *firestore.Client) SectionRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for SectionRepository.")
	}
	return &firestoreSectionRepository{client: client}
}

// Create adds a new section document to Firestore with an auto-generated ID.
func (r *firestoreSectionRepository) Create(ctx context.Context, section *models.Section) (string, error) {
	docRef := r.client.Collection(sectionsCollection).NewDoc()
	section.ID = docRef.ID

	_, err := docRef.Create(ctx, section)
	if err != nil {
		return "", fmt.Errorf("failed to create section: %w", err)
	}
	return docRef.ID, nil
}

// GetByID retrieves a section document from Firestore by its ID.
func (r *firestoreSectionRepository) GetByID(ctx context.Context, sectionID string) (*models.Section, error) {
	if sectionID == "" {
		return nil, errors.New("sectionID cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(sectionsCollection).Doc(sectionID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("section with ID '%s' not found: %w", sectionID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get section with ID '%s': %w", sectionID, err)
	}

	var section models.Section
	if err := docSnap.DataTo(&section); err != nil {
		return nil, fmt.Errorf("failed to decode section data for ID '%s': %w", sectionID, err)
	}
	section.ID = docSnap.Ref.ID

	return &section, nil
}

// GetByPropertyID retrieves all sections of a property in creation order.
// The export report relies on this ordering.
func (r *firestoreSectionRepository) GetByPropertyID(ctx context.Context, propertyID string) ([]*models.Section, error) {
	if propertyID == "" {
		return nil, errors.New("propertyID cannot be empty for GetByPropertyID operation")
	}

	iter := r.client.Collection(sectionsCollection).
		Where("propertyId", "==", propertyID).
		OrderBy("createdAt", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var sections []*models.Section
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate sections for property '%s': %w", propertyID, err)
		}

		var section models.Section
		if err := doc.DataTo(&section); err != nil {
			log.Printf("Error decoding section data (ID: %s) for property '%s': %v. Skipping.", doc.Ref.ID, propertyID, err)
			continue
		}
		section.ID = doc.Ref.ID
		sections = append(sections, &section)
	}

	return sections, nil
}

// Delete removes a section document from Firestore.
func (r *firestoreSectionRepository) Delete(ctx context.Context, sectionID string) error {
	if sectionID == "" {
		return errors.New("sectionID cannot be empty for Delete operation")
	}
	_, err := r.client.Collection(sectionsCollection).Doc(sectionID).Delete(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("section with ID '%s' not found for deletion: %w", sectionID, ErrNotFound)
		}
		return fmt.Errorf("failed to delete section with ID '%s': %w", sectionID, err)
	}
	return nil
}

// DeleteByPropertyID removes all sections of a property. Used by the
// property cascade delete.
func (r *firestoreSectionRepository) DeleteByPropertyID(ctx context.Context, propertyID string) error {
	if propertyID == "" {
		return errors.New("propertyID cannot be empty for DeleteByPropertyID operation")
	}

	iter := r.client.Collection(sectionsCollection).Where("propertyId", "==", propertyID).Documents(ctx)
	defer iter.Stop()

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to iterate sections for property '%s' deletion: %w", propertyID, err)
		}
		if _, err := doc.Ref.Delete(ctx); err != nil {
			return fmt.Errorf("failed to delete section '%s' of property '%s': %w", doc.Ref.ID, propertyID, err)
		}
	}

	return nil
}
