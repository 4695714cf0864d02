package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"sellerprep-backend-go/internal/billing"
	"sellerprep-backend-go/internal/db"
	"sellerprep-backend-go/internal/models"
	"sellerprep-backend-go/internal/notify"
	"sellerprep-backend-go/internal/render"
)

// Minimum pay-per-export charge, in cents.
const minimumExportAmountCents = 100

// Errors surfaced by export and payment operations.
var (
	ErrInvalidAmount       = errors.New("payment amount must be at least 100 cents")
	ErrFreeExportAvailable = errors.New("user can already export for free")
	ErrPaymentRequired     = errors.New("payment required to export this property")
	ErrPaymentNotCompleted = errors.New("payment has not completed")
	ErrProviderUnavailable = errors.New("billing provider unavailable")
)

// exportService implements the ExportService interface: the orchestration of
// entitlement checks, pay-per-export payments and report generation.
type exportService struct {
	users        UserService
	entitlements EntitlementService
	propertyRepo db.PropertyRepository
	sectionRepo  db.SectionRepository
	documentRepo db.DocumentRepository
	imageRepo    db.ImageRepository
	noteRepo     db.NoteRepository
	paymentRepo  db.PaymentRepository
	userRepo     db.UserRepository
	provider     billing.Provider
	renderer     render.Renderer
	audit        AuditService
	notifier     notify.Notifier
	logger       *zap.Logger
}

// NewExportService creates the export orchestrator.
func NewExportService(
	users UserService,
	entitlements EntitlementService,
	propertyRepo db.PropertyRepository,
	sectionRepo db.SectionRepository,
	documentRepo db.DocumentRepository,
	imageRepo db.ImageRepository,
	noteRepo db.NoteRepository,
	paymentRepo db.PaymentRepository,
	userRepo db.UserRepository,
	provider billing.Provider,
	renderer render.Renderer,
	audit AuditService,
	notifier notify.Notifier,
	logger *zap.Logger,
) (ExportService, error) {
	if users == nil || entitlements == nil {
		return nil, fmt.Errorf("NewExportService requires non-nil user and entitlement services")
	}
	if propertyRepo == nil || sectionRepo == nil || documentRepo == nil || imageRepo == nil || noteRepo == nil || paymentRepo == nil || userRepo == nil {
		return nil, fmt.Errorf("NewExportService requires all repositories to be non-nil")
	}
	if provider == nil {
		return nil, fmt.Errorf("NewExportService requires a non-nil billing.Provider")
	}
	if renderer == nil {
		return nil, fmt.Errorf("NewExportService requires a non-nil render.Renderer")
	}
	if audit == nil {
		return nil, fmt.Errorf("NewExportService requires a non-nil AuditService")
	}
	if notifier == nil {
		return nil, fmt.Errorf("NewExportService requires a non-nil Notifier")
	}
	if logger == nil {
		return nil, fmt.Errorf("NewExportService requires a non-nil zap.Logger instance")
	}
	return &exportService{
		users:        users,
		entitlements: entitlements,
		propertyRepo: propertyRepo,
		sectionRepo:  sectionRepo,
		documentRepo: documentRepo,
		imageRepo:    imageRepo,
		noteRepo:     noteRepo,
		paymentRepo:  paymentRepo,
		userRepo:     userRepo,
		provider:     provider,
		renderer:     renderer,
		audit:        audit,
		notifier:     notifier,
		logger:       logger,
	}, nil
}

// ownedProperty fetches a property and verifies ownership; any miss surfaces
// as ErrPropertyNotFound.
func (s *exportService) ownedProperty(ctx context.Context, ownerID, propertyID string) (*models.Property, error) {
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

// ExportProperty generates the property's PDF report. The export must be
// entitled: free (admin, own or parent subscription) or already paid for.
// A free export by a user who has never exported before consumes the
// first-export flag; paid exports never touch the counter, which
// ConfirmPayment has already bumped.
func (s *exportService) ExportProperty(ctx context.Context, user AuthUser, propertyID string) (*ExportResult, error) {
	profile, _, err := s.users.GetOrCreate(ctx, user.ID, user.Email, user.DisplayName)
	if err != nil {
		return nil, err
	}
	property, err := s.ownedProperty(ctx, user.ID, propertyID)
	if err != nil {
		return nil, err
	}

	permission, err := s.entitlements.Check(ctx, profile, propertyID)
	if err != nil {
		return nil, err
	}
	if !permission.CanExportFree && !permission.HasPaid {
		return nil, ErrPaymentRequired
	}

	sections, err := s.sectionRepo.GetByPropertyID(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sections: %w", err)
	}
	documents, err := s.documentRepo.GetByPropertyID(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load documents: %w", err)
	}
	images, err := s.imageRepo.GetByPropertyID(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load images: %w", err)
	}
	notes, err := s.noteRepo.GetByPropertyID(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load notes: %w", err)
	}

	report := AssembleReport(property, sections, documents, images, notes, time.Now().UTC())
	pdf, err := s.renderer.RenderReport(report)
	if err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}

	if permission.CanExportFree && profile.PropertiesExported == 0 {
		profile.PropertiesExported = 1
		profile.UpdatedAt = time.Now().UTC()
		if err := s.userRepo.Update(ctx, profile); err != nil {
			// The PDF is already rendered; losing the counter bump is
			// preferable to failing the export.
			s.logger.Error("failed to record first free export", zap.String("userID", user.ID), zap.Error(err))
		}
	}

	s.logger.Info("property exported",
		zap.String("userID", user.ID),
		zap.String("propertyID", propertyID),
		zap.Bool("free", permission.CanExportFree))
	if err := s.audit.Record(ctx, models.AuditLog{
		UserID:     user.ID,
		Action:     models.AuditActionExport,
		TargetType: "property",
		TargetID:   propertyID,
		Details:    fmt.Sprintf("free=%t paid=%t", permission.CanExportFree, permission.HasPaid),
	}); err != nil {
		s.logger.Warn("audit record failed for export", zap.Error(err))
	}
	s.notifier.SendExportConfirmation(profile.Email, property.Address)

	return &ExportResult{
		PDF:      pdf,
		Filename: fmt.Sprintf("property_%s_report.pdf", propertyID),
	}, nil
}

// CreatePaymentIntent starts a pay-per-export charge for one property. The
// provider customer is created lazily on first payment and remembered on the
// profile.
func (s *exportService) CreatePaymentIntent(ctx context.Context, user AuthUser, req models.CreatePaymentIntentRequest) (*PaymentIntentResult, error) {
	if req.AmountCents < minimumExportAmountCents {
		return nil, ErrInvalidAmount
	}

	profile, _, err := s.users.GetOrCreate(ctx, user.ID, user.Email, user.DisplayName)
	if err != nil {
		return nil, err
	}
	property, err := s.ownedProperty(ctx, user.ID, req.PropertyID)
	if err != nil {
		return nil, err
	}

	permission, err := s.entitlements.Check(ctx, profile, req.PropertyID)
	if err != nil {
		return nil, err
	}
	if permission.CanExportFree {
		return nil, ErrFreeExportAvailable
	}

	if profile.StripeCustomerID == "" {
		customerID, err := s.provider.CreateCustomer(ctx, profile.Email, profile.DisplayName, profile.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
		}
		profile.StripeCustomerID = customerID
		profile.UpdatedAt = time.Now().UTC()
		if err := s.userRepo.Update(ctx, profile); err != nil {
			return nil, fmt.Errorf("failed to store billing customer ID: %w", err)
		}
	}

	intent, err := s.provider.CreatePaymentIntent(ctx, req.AmountCents, profile.StripeCustomerID, map[string]string{
		"user_id":          user.ID,
		"property_id":      req.PropertyID,
		"property_address": property.Address,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	s.logger.Info("payment intent created",
		zap.String("userID", user.ID),
		zap.String("propertyID", req.PropertyID),
		zap.String("intentID", intent.ID),
		zap.Int64("amountCents", req.AmountCents))

	return &PaymentIntentResult{ClientSecret: intent.ClientSecret, PaymentIntentID: intent.ID}, nil
}

// ConfirmPayment verifies the payment intent against the provider and, if it
// succeeded, appends the immutable ledger record that entitles the property's
// export. This is the only code path that writes payments.
func (s *exportService) ConfirmPayment(ctx context.Context, user AuthUser, req models.ConfirmPaymentRequest) (*models.Payment, error) {
	profile, _, err := s.users.GetOrCreate(ctx, user.ID, user.Email, user.DisplayName)
	if err != nil {
		return nil, err
	}
	property, err := s.ownedProperty(ctx, user.ID, req.PropertyID)
	if err != nil {
		return nil, err
	}

	intent, err := s.provider.RetrievePaymentIntent(ctx, req.PaymentIntentID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	if intent.Status != billing.PaymentIntentSucceeded {
		s.notifier.SendPaymentFailure(profile.Email, property.Address, fmt.Sprintf("payment status is %q", intent.Status))
		return nil, ErrPaymentNotCompleted
	}

	payment := &models.Payment{
		UserID:                user.ID,
		PropertyID:            req.PropertyID,
		StripePaymentIntentID: intent.ID,
		AmountCents:           intent.AmountCents,
		Currency:              intent.Currency,
		Status:                models.PaymentSucceeded,
		CreatedAt:             time.Now().UTC(),
	}
	paymentID, err := s.paymentRepo.Create(ctx, payment)
	if err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}
	payment.ID = paymentID

	profile.PropertiesExported++
	profile.UpdatedAt = time.Now().UTC()
	if err := s.userRepo.Update(ctx, profile); err != nil {
		// The ledger entry is authoritative for entitlement, so a lost
		// counter bump does not block the export.
		s.logger.Error("failed to bump export counter after payment", zap.String("userID", user.ID), zap.Error(err))
	}

	s.logger.Info("payment confirmed",
		zap.String("userID", user.ID),
		zap.String("propertyID", req.PropertyID),
		zap.String("paymentID", paymentID),
		zap.Int64("amountCents", intent.AmountCents))
	if err := s.audit.Record(ctx, models.AuditLog{
		UserID:     user.ID,
		Action:     models.AuditActionPaymentConfirmed,
		TargetType: "property",
		TargetID:   req.PropertyID,
		Details:    fmt.Sprintf("intent=%s amountCents=%d", intent.ID, intent.AmountCents),
	}); err != nil {
		s.logger.Warn("audit record failed for payment confirmation", zap.Error(err))
	}
	s.notifier.SendPaymentSuccess(profile.Email, property.Address, intent.AmountCents)

	return payment, nil
}

// CheckExportPermission reports what an export of the property would cost the
// user, without side effects beyond the profile get-or-create.
func (s *exportService) CheckExportPermission(ctx context.Context, user AuthUser, propertyID string) (*ExportPermission, error) {
	profile, _, err := s.users.GetOrCreate(ctx, user.ID, user.Email, user.DisplayName)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedProperty(ctx, user.ID, propertyID); err != nil {
		return nil, err
	}
	return s.entitlements.Check(ctx, profile, propertyID)
}
