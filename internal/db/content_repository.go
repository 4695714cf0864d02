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

const (
	documentsCollection = "documents"
	imagesCollection    = "images"
	notesCollection     = "notes"
)

// deleteWhere removes every document of a collection matching field == value.
// Shared by the property and section cascade deletes.
func deleteWhere(ctx context.Context, client *firestore.Client, collection, field, value string) error {
	iter := client.Collection(collection).Where(field, "==", value).Documents(ctx)
	defer iter.Stop()

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to iterate %s where %s == '%s': %w", collection, field, value, err)
		}
		if _, err := doc.Ref.Delete(ctx); err != nil {
			return fmt.Errorf("failed to delete %s document '%s': %w", collection, doc.Ref.ID, err)
		}
	}
	return nil
}

// --- Documents ---

// firestoreDocumentRepository implements the DocumentRepository interface using Firestore.
type firestoreDocumentRepository struct {
	client *firestore.Client
}

// NewFirestoreDocumentRepository creates a new instance of firestoreDocumentRepository.
func NewFirestoreDocumentRepository(client *firestore.Client) DocumentRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for DocumentRepository.")
	}
	return &firestoreDocumentRepository{client: client}
}

func (r *firestoreDocumentRepository) Create(ctx context.Context, doc *models.Document) (string, error) {
	docRef := r.client.Collection(documentsCollection).NewDoc()
	doc.ID = docRef.ID

	_, err := docRef.Create(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("failed to create document: %w", err)
	}
	return docRef.ID, nil
}

func (r *firestoreDocumentRepository) GetByID(ctx context.Context, docID string) (*models.Document, error) {
	if docID == "" {
		return nil, errors.New("docID cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(documentsCollection).Doc(docID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("document with ID '%s' not found: %w", docID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get document with ID '%s': %w", docID, err)
	}

	var doc models.Document
	if err := docSnap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode document data for ID '%s': %w", docID, err)
	}
	doc.ID = docSnap.Ref.ID

	return &doc, nil
}

// GetByPropertyID retrieves all documents of a property in upload order.
func (r *firestoreDocumentRepository) GetByPropertyID(ctx context.Context, propertyID string) ([]*models.Document, error) {
	if propertyID == "" {
		return nil, errors.New("propertyID cannot be empty for GetByPropertyID operation")
	}

	iter := r.client.Collection(documentsCollection).
		Where("propertyId", "==", propertyID).
		OrderBy("uploadedAt", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var docs []*models.Document
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate documents for property '%s': %w", propertyID, err)
		}

		var doc models.Document
		if err := snap.DataTo(&doc); err != nil {
			log.Printf("Error decoding document data (ID: %s) for property '%s': %v. Skipping.", snap.Ref.ID, propertyID, err)
			continue
		}
		doc.ID = snap.Ref.ID
		docs = append(docs, &doc)
	}

	return docs, nil
}

func (r *firestoreDocumentRepository) Delete(ctx context.Context, docID string) error {
	if docID == "" {
		return errors.New("docID cannot be empty for Delete operation")
	}
	_, err := r.client.Collection(documentsCollection).Doc(docID).Delete(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("document with ID '%s' not found for deletion: %w", docID, ErrNotFound)
		}
		return fmt.Errorf("failed to delete document with ID '%s': %w", docID, err)
	}
	return nil
}

func (r *firestoreDocumentRepository) DeleteByPropertyID(ctx context.Context, propertyID string) error {
	return deleteWhere(ctx, r.client, documentsCollection, "propertyId", propertyID)
}

func (r *firestoreDocumentRepository) DeleteBySectionID(ctx context.Context, sectionID string) error {
	return deleteWhere(ctx, r.client, documentsCollection, "sectionId", sectionID)
}

// --- Images ---

// firestoreImageRepository implements the ImageRepository interface using Firestore.
type firestoreImageRepository struct {
	client *firestore.Client
}

// NewFirestoreImageRepository creates a new instance of firestoreImageRepository.
func NewFirestoreImageRepository(client *firestore.Client) ImageRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for ImageRepository.")
	}
	return &firestoreImageRepository{client: client}
}

func (r *firestoreImageRepository) Create(ctx context.Context, img *models.Image) (string, error) {
	docRef := r.client.Collection(imagesCollection).NewDoc()
	img.ID = docRef.ID

	_, err := docRef.Create(ctx, img)
	if err != nil {
		return "", fmt.Errorf("failed to create image: %w", err)
	}
	return docRef.ID, nil
}

func (r *firestoreImageRepository) GetByID(ctx context.Context, imgID string) (*models.Image, error) {
	if imgID == "" {
		return nil, errors.New("imgID cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(imagesCollection).Doc(imgID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("image with ID '%s' not found: %w", imgID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get image with ID '%s': %w", imgID, err)
	}

	var img models.Image
	if err := docSnap.DataTo(&img); err != nil {
		return nil, fmt.Errorf("failed to decode image data for ID '%s': %w", imgID, err)
	}
	img.ID = docSnap.Ref.ID

	return &img, nil
}

// GetByPropertyID retrieves all images of a property in upload order.
func (r *firestoreImageRepository) GetByPropertyID(ctx context.Context, propertyID string) ([]*models.Image, error) {
	if propertyID == "" {
		return nil, errors.New("propertyID cannot be empty for GetByPropertyID operation")
	}

	iter := r.client.Collection(imagesCollection).
		Where("propertyId", "==", propertyID).
		OrderBy("uploadedAt", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var imgs []*models.Image
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate images for property '%s': %w", propertyID, err)
		}

		var img models.Image
		if err := snap.DataTo(&img); err != nil {
			log.Printf("Error decoding image data (ID: %s) for property '%s': %v. Skipping.", snap.Ref.ID, propertyID, err)
			continue
		}
		img.ID = snap.Ref.ID
		imgs = append(imgs, &img)
	}

	return imgs, nil
}

func (r *firestoreImageRepository) Delete(ctx context.Context, imgID string) error {
	if imgID == "" {
		return errors.New("imgID cannot be empty for Delete operation")
	}
	_, err := r.client.Collection(imagesCollection).Doc(imgID).Delete(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("image with ID '%s' not found for deletion: %w", imgID, ErrNotFound)
		}
		return fmt.Errorf("failed to delete image with ID '%s': %w", imgID, err)
	}
	return nil
}

func (r *firestoreImageRepository) DeleteByPropertyID(ctx context.Context, propertyID string) error {
	return deleteWhere(ctx, r.client, imagesCollection, "propertyId", propertyID)
}

func (r *firestoreImageRepository) DeleteBySectionID(ctx context.Context, sectionID string) error {
	return deleteWhere(ctx, r.client, imagesCollection, "sectionId", sectionID)
}

// --- Notes ---

// firestoreNoteRepository implements the NoteRepository interface using Firestore.
type firestoreNoteRepository struct {
	client *firestore.Client
}

// NewFirestoreNoteRepository creates a new instance of firestoreNoteRepository.
func NewFirestoreNoteRepository(client *firestore.Client) NoteRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for NoteRepository.")
	}
	return &firestoreNoteRepository{client: client}
}

func (r *firestoreNoteRepository) Create(ctx context.Context, note *models.Note) (string, error) {
	docRef := r.client.Collection(notesCollection).NewDoc()
	note.ID = docRef.ID

	_, err := docRef.Create(ctx, note)
	if err != nil {
		return "", fmt.Errorf("failed to create note: %w", err)
	}
	return docRef.ID, nil
}

func (r *firestoreNoteRepository) GetByID(ctx context.Context, noteID string) (*models.Note, error) {
	if noteID == "" {
		return nil, errors.New("noteID cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(notesCollection).Doc(noteID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("note with ID '%s' not found: %w", noteID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get note with ID '%s': %w", noteID, err)
	}

	var note models.Note
	if err := docSnap.DataTo(&note); err != nil {
		return nil, fmt.Errorf("failed to decode note data for ID '%s': %w", noteID, err)
	}
	note.ID = docSnap.Ref.ID

	return &note, nil
}

// GetByPropertyID retrieves all notes of a property in creation order.
func (r *firestoreNoteRepository) GetByPropertyID(ctx context.Context, propertyID string) ([]*models.Note, error) {
	if propertyID == "" {
		return nil, errors.New("propertyID cannot be empty for GetByPropertyID operation")
	}

	iter := r.client.Collection(notesCollection).
		Where("propertyId", "==", propertyID).
		OrderBy("createdAt", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var notes []*models.Note
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate notes for property '%s': %w", propertyID, err)
		}

		var note models.Note
		if err := snap.DataTo(&note); err != nil {
			log.Printf("Error decoding note data (ID: %s) for property '%s': %v. Skipping.", snap.Ref.ID, propertyID, err)
			continue
		}
		note.ID = snap.Ref.ID
		notes = append(notes, &note)
	}

	return notes, nil
}

func (r *firestoreNoteRepository) Delete(ctx context.Context, noteID string) error {
	if noteID == "" {
		return errors.New("noteID cannot be empty for Delete operation")
	}
	_, err := r.client.Collection(notesCollection).Doc(noteID).Delete(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("note with ID '%s' not found for deletion: %w", noteID, ErrNotFound)
		}
		return fmt.Errorf("failed to delete note with ID '%s': %w", noteID, err)
	}
	return nil
}

func (r *firestoreNoteRepository) DeleteByPropertyID(ctx context.Context, propertyID string) error {
	return deleteWhere(ctx, r.client, notesCollection, "propertyId", propertyID)
}

func (r *firestoreNoteRepository) DeleteBySectionID(ctx context.Context, sectionID string) error {
	return deleteWhere(ctx, r.client, notesCollection, "sectionId", sectionID)
}
