package core

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"sellerprep-backend-go/internal/db"
	"sellerprep-backend-go/internal/models"
)

// CanExportFree reports whether the profile may export without paying:
// admins always can, as can anyone whose own subscription is active, or whose
// linked parent account (one hop, never transitive) holds an active
// subscription. parent may be nil.
func CanExportFree(profile, parent *models.UserProfile) bool {
	if profile == nil {
		return false
	}
	if profile.IsAdmin() {
		return true
	}
	if profile.HasActiveSubscription() {
		return true
	}
	if parent != nil && parent.ID != profile.ID &&
		(parent.Role == models.RoleAgent || parent.Role == models.RoleIndividual) &&
		parent.HasActiveSubscription() {
		return true
	}
	return false
}

// entitlementService implements EntitlementService against the user and
// payment repositories.
type entitlementService struct {
	userRepo    db.UserRepository
	paymentRepo db.PaymentRepository
	logger      *zap.Logger
}

// NewEntitlementService creates a new entitlement evaluator.
func NewEntitlementService(userRepo db.UserRepository, paymentRepo db.PaymentRepository, logger *zap.Logger) (EntitlementService, error) {
	if userRepo == nil {
		return nil, fmt.Errorf("NewEntitlementService requires a non-nil UserRepository")
	}
	if paymentRepo == nil {
		return nil, fmt.Errorf("NewEntitlementService requires a non-nil PaymentRepository")
	}
	if logger == nil {
		return nil, fmt.Errorf("NewEntitlementService requires a non-nil zap.Logger instance")
	}
	return &entitlementService{userRepo: userRepo, paymentRepo: paymentRepo, logger: logger}, nil
}

// Check evaluates the export permission for one (profile, property) pair.
// The parent link is resolved fresh on every call; a dangling ParentID is
// treated as no parent rather than an error.
func (s *entitlementService) Check(ctx context.Context, profile *models.UserProfile, propertyID string) (*ExportPermission, error) {
	if profile == nil {
		return nil, fmt.Errorf("profile cannot be nil for entitlement check")
	}

	var parent *models.UserProfile
	if profile.ParentID != "" && profile.ParentID != profile.ID {
		p, err := s.userRepo.GetByID(ctx, profile.ParentID)
		switch {
		case err == nil:
			parent = p
		case errors.Is(err, db.ErrNotFound):
			s.logger.Warn("parent link points at a missing profile",
				zap.String("userID", profile.ID),
				zap.String("parentID", profile.ParentID))
		default:
			return nil, fmt.Errorf("failed to resolve parent profile: %w", err)
		}
	}

	hasPaid, err := s.paymentRepo.HasSucceeded(ctx, profile.ID, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query payment ledger: %w", err)
	}

	return &ExportPermission{
		CanExportFree:      CanExportFree(profile, parent),
		HasPaid:            hasPaid,
		PropertiesExported: profile.PropertiesExported,
		IsFirstProperty:    profile.PropertiesExported == 0,
	}, nil
}
