package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"sellerprep-backend-go/internal/db"
	"sellerprep-backend-go/internal/models"
	"sellerprep-backend-go/internal/notify"
)

// Errors surfaced by user profile operations.
var (
	ErrUserNotFound       = errors.New("user profile not found")
	ErrAdminRequired      = errors.New("admin role required")
	ErrInvalidAdminTarget = errors.New("target user ID or email is required")
)

// userService implements the UserService interface.
type userService struct {
	userRepo db.UserRepository
	audit    AuditService
	notifier notify.Notifier
	logger   *zap.Logger
}

// NewUserService creates a new user profile service.
func NewUserService(userRepo db.UserRepository, audit AuditService, notifier notify.Notifier, logger *zap.Logger) (UserService, error) {
	if userRepo == nil {
		return nil, fmt.Errorf("NewUserService requires a non-nil UserRepository")
	}
	if audit == nil {
		return nil, fmt.Errorf("NewUserService requires a non-nil AuditService")
	}
	if notifier == nil {
		return nil, fmt.Errorf("NewUserService requires a non-nil Notifier")
	}
	if logger == nil {
		return nil, fmt.Errorf("NewUserService requires a non-nil zap.Logger instance")
	}
	return &userService{userRepo: userRepo, audit: audit, notifier: notifier, logger: logger}, nil
}

// GetOrCreate returns the profile for the given Firebase UID, creating a
// fully-initialized one on first access. The welcome notification fires only
// on the create path.
func (s *userService) GetOrCreate(ctx context.Context, userID, email, displayName string) (*models.UserProfile, bool, error) {
	if userID == "" {
		return nil, false, fmt.Errorf("userID cannot be empty for GetOrCreate")
	}

	profile, err := s.userRepo.GetByID(ctx, userID)
	if err == nil {
		return profile, false, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return nil, false, fmt.Errorf("failed to look up user profile: %w", err)
	}

	now := time.Now().UTC()
	profile = &models.UserProfile{
		ID:                 userID,
		Email:              email,
		DisplayName:        displayName,
		Role:               models.RoleIndividual,
		SubscriptionStatus: models.SubscriptionNone,
		PropertiesExported: 0,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.userRepo.Create(ctx, profile); err != nil {
		return nil, false, fmt.Errorf("failed to create user profile: %w", err)
	}

	s.logger.Info("created user profile", zap.String("userID", userID), zap.String("email", email))
	s.notifier.SendWelcome(email, displayName)

	return profile, true, nil
}

// GetByID fetches a profile without creating it.
func (s *userService) GetByID(ctx context.Context, userID string) (*models.UserProfile, error) {
	profile, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}
	return profile, nil
}

// MakeAdmin grants the admin role to the target identified by user ID or, as
// a fallback, by email. Only an existing admin may call this.
func (s *userService) MakeAdmin(ctx context.Context, requestingUserID string, req models.MakeAdminRequest) (*models.UserProfile, error) {
	requester, err := s.userRepo.GetByID(ctx, requestingUserID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrAdminRequired
		}
		return nil, fmt.Errorf("failed to load requesting user: %w", err)
	}
	if !requester.IsAdmin() {
		return nil, ErrAdminRequired
	}

	target, err := s.resolveAdminTarget(ctx, req)
	if err != nil {
		return nil, err
	}
	if target.IsAdmin() {
		return target, nil
	}

	target.Role = models.RoleAdmin
	target.UpdatedAt = time.Now().UTC()
	if err := s.userRepo.Update(ctx, target); err != nil {
		return nil, fmt.Errorf("failed to grant admin role: %w", err)
	}

	s.logger.Info("granted admin role",
		zap.String("requestedBy", requestingUserID),
		zap.String("targetUserID", target.ID))
	if err := s.audit.Record(ctx, models.AuditLog{
		UserID:     requestingUserID,
		Action:     models.AuditActionRoleGranted,
		TargetType: "user",
		TargetID:   target.ID,
		Details:    fmt.Sprintf("role set to %s", models.RoleAdmin),
	}); err != nil {
		s.logger.Warn("audit record failed for role grant", zap.Error(err))
	}

	return target, nil
}

func (s *userService) resolveAdminTarget(ctx context.Context, req models.MakeAdminRequest) (*models.UserProfile, error) {
	switch {
	case req.UserID != "":
		target, err := s.userRepo.GetByID(ctx, req.UserID)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, fmt.Errorf("failed to load target user: %w", err)
		}
		return target, nil
	case req.Email != "":
		target, err := s.userRepo.GetByEmail(ctx, req.Email)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, fmt.Errorf("failed to load target user by email: %w", err)
		}
		return target, nil
	default:
		return nil, ErrInvalidAdminTarget
	}
}

// ListProfiles returns every profile, newest first. Admin only.
func (s *userService) ListProfiles(ctx context.Context, requestingUserID string) ([]*models.UserProfile, error) {
	requester, err := s.userRepo.GetByID(ctx, requestingUserID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrAdminRequired
		}
		return nil, fmt.Errorf("failed to load requesting user: %w", err)
	}
	if !requester.IsAdmin() {
		return nil, ErrAdminRequired
	}

	profiles, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list user profiles: %w", err)
	}
	return profiles, nil
}
