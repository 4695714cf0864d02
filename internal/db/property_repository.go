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

const propertiesCollection = "properties"

// firestorePropertyRepository implements the PropertyRepository interface using Firestore.
type firestorePropertyRepository struct {
	client *firestore.Client
}

// NewFirestorePropertyRepository creates a new instance of firestorePropertyRepository.
func NewFirestorePropertyRepository(client *firestore.Client) PropertyRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for PropertyRepository.")
	}
	return &firestorePropertyRepository{client: client}
}

// Create adds a new property document to Firestore with an auto-generated ID.
func (r *firestorePropertyRepository) Create(ctx context.Context, property *models.Property) (string, error) {
	docRef := r.client.Collection(propertiesCollection).NewDoc()
	property.ID = docRef.ID

	_, err := docRef.Create(ctx, property)
	if err != nil {
		return "", fmt.Errorf("failed to create property: %w", err)
	}
	return docRef.ID, nil
}

// GetByID retrieves a property document from Firestore by its ID.
func (r *firestorePropertyRepository) GetByID(ctx context.Context, propertyID string) (*models.Property, error) {
	if propertyID == "" {
		return nil, errors.New("propertyID cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(propertiesCollection).Doc(propertyID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("property with ID '%s' not found: %w", propertyID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get property with ID '%s': %w", propertyID, err)
	}

	var property models.Property
	if err := docSnap.DataTo(&property); err != nil {
		return nil, fmt.Errorf("failed to decode property data for ID '%s': %w", propertyID, err)
	}
	property.ID = docSnap.Ref.ID

	return &property, nil
}

// GetByOwnerID retrieves all properties owned by a specific user, newest first.
func (r *firestorePropertyRepository) GetByOwnerID(ctx context.Context, ownerID string) ([]*models.Property, error) {
	if ownerID == "" {
		return nil, errors.New("ownerID cannot be empty for GetByOwnerID operation")
	}

	iter := r.client.Collection(propertiesCollection).
		Where("ownerId", "==", ownerID).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var properties []*models.Property
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate properties for owner '%s': %w", ownerID, err)
		}

		var property models.Property
		if err := doc.DataTo(&property); err != nil {
			log.Printf("Error decoding property data (ID: %s) for owner '%s': %v. Skipping.", doc.Ref.ID, ownerID, err)
			continue
		}
		property.ID = doc.Ref.ID
		properties = append(properties, &property)
	}

	return properties, nil
}

// Update modifies an existing property document in Firestore.
func (r *firestorePropertyRepository) Update(ctx context.Context, property *models.Property) error {
	if property.ID == "" {
		return errors.New("property ID cannot be empty for Update operation")
	}
	_, err := r.client.Collection(propertiesCollection).Doc(property.ID).Set(ctx, property, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to update property with ID '%s': %w", property.ID, err)
	}
	return nil
}

// Delete removes a property document from Firestore.
// Child sections, documents, images and notes live in their own collections;
// the service layer is responsible for the cascade.
func (r *firestorePropertyRepository) Delete(ctx context.Context, propertyID string) error {
	if propertyID == "" {
		return errors.New("propertyID cannot be empty for Delete operation")
	}
	_, err := r.client.Collection(propertiesCollection).Doc(propertyID).Delete(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("property with ID '%s' not found for deletion: %w", propertyID, ErrNotFound)
		}
		return fmt.Errorf("failed to delete property with ID '%s': %w", propertyID, err)
	}
	return nil
}
