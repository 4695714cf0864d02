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

const usersCollection = "users"

// ErrNotFound is a common error for when a document is not found in Firestore.
var ErrNotFound = errors.New("document not found")

// firestoreUserRepository implements the UserRepository interface using Firestore.
type firestoreUserRepository struct {
	client *firestore.Client
}

// NewFirestoreUserRepository creates a new instance of firestoreUserRepository.
func NewFirestoreUserRepository(client *firestore.Client) UserRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for UserRepository.")
	}
	return &firestoreUserRepository{client: client}
}

// Create adds a new user profile document to Firestore.
// The user.ID (Firebase Auth UID) is used as the Firestore document ID.
func (r *firestoreUserRepository) Create(ctx context.Context, user *models.UserProfile) error {
	if user.ID == "" {
		return errors.New("user ID cannot be empty for Create operation")
	}
	_, err := r.client.Collection(usersCollection).Doc(user.ID).Create(ctx, user)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return fmt.Errorf("user with ID '%s' already exists: %w", user.ID, err)
		}
		return fmt.Errorf("failed to create user with ID '%s': %w", user.ID, err)
	}
	return nil
}

// GetByID retrieves a user profile from Firestore by its ID (Firebase Auth UID).
func (r *firestoreUserRepository) GetByID(ctx context.Context, userID string) (*models.UserProfile, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(usersCollection).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("user with ID '%s' not found: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user with ID '%s': %w", userID, err)
	}

	var user models.UserProfile
	if err := docSnap.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user data for ID '%s': %w", userID, err)
	}
	user.ID = docSnap.Ref.ID

	return &user, nil
}

// GetByStripeCustomerID retrieves the profile carrying the given Stripe
// customer ID. Customer IDs are assigned once per profile, so the first match
// is the only match.
func (r *firestoreUserRepository) GetByStripeCustomerID(ctx context.Context, customerID string) (*models.UserProfile, error) {
	if customerID == "" {
		return nil, errors.New("customerID cannot be empty for GetByStripeCustomerID operation")
	}

	iter := r.client.Collection(usersCollection).
		Where("stripeCustomerId", "==", customerID).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, fmt.Errorf("no user with Stripe customer '%s': %w", customerID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user by Stripe customer '%s': %w", customerID, err)
	}

	var user models.UserProfile
	if err := doc.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user data for Stripe customer '%s': %w", customerID, err)
	}
	user.ID = doc.Ref.ID

	return &user, nil
}

// GetByEmail retrieves the profile registered under the given email address.
func (r *firestoreUserRepository) GetByEmail(ctx context.Context, email string) (*models.UserProfile, error) {
	if email == "" {
		return nil, errors.New("email cannot be empty for GetByEmail operation")
	}

	iter := r.client.Collection(usersCollection).
		Where("email", "==", email).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, fmt.Errorf("no user with email '%s': %w", email, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user by email '%s': %w", email, err)
	}

	var user models.UserProfile
	if err := doc.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user data for email '%s': %w", email, err)
	}
	user.ID = doc.Ref.ID

	return &user, nil
}

// Update modifies an existing user profile in Firestore.
// It uses Set with MergeAll; the service layer always passes a profile that
// was fetched first, so this is a full-state write.
func (r *firestoreUserRepository) Update(ctx context.Context, user *models.UserProfile) error {
	if user.ID == "" {
		return errors.New("user ID cannot be empty for Update operation")
	}
	_, err := r.client.Collection(usersCollection).Doc(user.ID).Set(ctx, user, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to update user with ID '%s': %w", user.ID, err)
	}
	return nil
}

// List retrieves all user profiles, newest first. Used by the admin listing
// endpoint only.
func (r *firestoreUserRepository) List(ctx context.Context) ([]*models.UserProfile, error) {
	iter := r.client.Collection(usersCollection).OrderBy("createdAt", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	var users []*models.UserProfile
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate users: %w", err)
		}

		var user models.UserProfile
		if err := doc.DataTo(&user); err != nil {
			log.Printf("Error decoding user data (ID: %s): %v. Skipping.", doc.Ref.ID, err)
			continue
		}
		user.ID = doc.Ref.ID
		users = append(users, &user)
	}

	return users, nil
}
