package core

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"sellerprep-backend-go/internal/db"
	"sellerprep-backend-go/internal/models"
)

// auditService implements the AuditService interface. Entries are append-only
// records of the sensitive operations: exports, confirmed payments, cascade
// deletes and role grants.
type auditService struct {
	auditRepo db.AuditRepository
	logger    *zap.Logger
}

// NewAuditService creates a new audit trail service.
func NewAuditService(auditRepo db.AuditRepository, logger *zap.Logger) (AuditService, error) {
	if auditRepo == nil {
		return nil, fmt.Errorf("NewAuditService requires a non-nil AuditRepository")
	}
	if logger == nil {
		return nil, fmt.Errorf("NewAuditService requires a non-nil zap.Logger instance")
	}
	return &auditService{auditRepo: auditRepo, logger: logger}, nil
}

// Record persists one audit entry, stamping the timestamp if the caller left
// it zero.
func (s *auditService) Record(ctx context.Context, entry models.AuditLog) error {
	if entry.UserID == "" || entry.Action == "" {
		return fmt.Errorf("audit entry requires a user ID and an action")
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	if err := s.auditRepo.Create(ctx, entry); err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}

	s.logger.Debug("audit entry recorded",
		zap.String("userID", entry.UserID),
		zap.String("action", entry.Action),
		zap.String("targetID", entry.TargetID))
	return nil
}
