package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sellerprep-backend-go/internal/models"
)

func TestExportService_ExportProperty(t *testing.T) {
	ctx := context.Background()

	t.Run("admin exports any owned property for free", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedUser(t, models.UserProfile{ID: "admin", Email: "admin@example.com", Role: models.RoleAdmin, SubscriptionStatus: models.SubscriptionNone})
		propertyID := env.seedProperty(t, "admin", "1 Admin Way")

		result, err := env.exportService.ExportProperty(ctx, AuthUser{ID: "admin", Email: "admin@example.com"}, propertyID)
		require.NoError(t, err)
		assert.NotEmpty(t, result.PDF)
		assert.Equal(t, "property_"+propertyID+"_report.pdf", result.Filename)
		assert.Equal(t, []string{"admin@example.com"}, env.notifier.exports)
	})

	t.Run("unpaid user without subscription gets payment required", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedUser(t, models.UserProfile{ID: "u1", Role: models.RoleIndividual, SubscriptionStatus: models.SubscriptionNone, PropertiesExported: 1})
		propertyID := env.seedProperty(t, "u1", "2 Side St")

		_, err := env.exportService.ExportProperty(ctx, AuthUser{ID: "u1"}, propertyID)
		assert.ErrorIs(t, err, ErrPaymentRequired)
		assert.Equal(t, 0, env.renderer.calls)
	})

	t.Run("someone else's property surfaces as not found", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedUser(t, models.UserProfile{ID: "owner", Role: models.RoleAdmin})
		env.seedUser(t, models.UserProfile{ID: "intruder", Role: models.RoleAdmin})
		propertyID := env.seedProperty(t, "owner", "3 Private Rd")

		_, err := env.exportService.ExportProperty(ctx, AuthUser{ID: "intruder"}, propertyID)
		assert.ErrorIs(t, err, ErrPropertyNotFound)
	})

	t.Run("first free export bumps the counter exactly once", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedUser(t, models.UserProfile{ID: "u1", Role: models.RoleIndividual, SubscriptionStatus: models.SubscriptionActive, PropertiesExported: 0})
		propertyID := env.seedProperty(t, "u1", "4 First St")

		_, err := env.exportService.ExportProperty(ctx, AuthUser{ID: "u1"}, propertyID)
		require.NoError(t, err)

		profile, err := env.users.GetByID(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 1, profile.PropertiesExported)

		// Re-exporting the same or another property leaves the counter alone.
		otherID := env.seedProperty(t, "u1", "5 Second St")
		_, err = env.exportService.ExportProperty(ctx, AuthUser{ID: "u1"}, propertyID)
		require.NoError(t, err)
		_, err = env.exportService.ExportProperty(ctx, AuthUser{ID: "u1"}, otherID)
		require.NoError(t, err)

		profile, err = env.users.GetByID(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 1, profile.PropertiesExported)
	})

	t.Run("paid export succeeds without touching the counter", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedUser(t, models.UserProfile{ID: "u1", Role: models.RoleIndividual, SubscriptionStatus: models.SubscriptionNone})
		propertyID := env.seedProperty(t, "u1", "6 Paid Ave")
		_, err := env.payments.Create(ctx, &models.Payment{UserID: "u1", PropertyID: propertyID, Status: models.PaymentSucceeded})
		require.NoError(t, err)

		result, err := env.exportService.ExportProperty(ctx, AuthUser{ID: "u1"}, propertyID)
		require.NoError(t, err)
		assert.NotEmpty(t, result.PDF)

		profile, err := env.users.GetByID(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 0, profile.PropertiesExported)
	})

	t.Run("records an audit entry", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedUser(t, models.UserProfile{ID: "admin", Role: models.RoleAdmin})
		propertyID := env.seedProperty(t, "admin", "7 Audit Blvd")

		_, err := env.exportService.ExportProperty(ctx, AuthUser{ID: "admin"}, propertyID)
		require.NoError(t, err)
		assert.Contains(t, env.auditRepo.actions(), models.AuditActionExport)
	})
}

func TestExportService_CreatePaymentIntent(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects amounts under one dollar", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedUser(t, models.UserProfile{ID: "u1", Role: models.RoleIndividual})
		propertyID := env.seedProperty(t, "u1", "8 Cheap Ct")

		_, err := env.exportService.CreatePaymentIntent(ctx, AuthUser{ID: "u1"}, models.CreatePaymentIntentRequest{
			PropertyID: propertyID, AmountCents: 99,
		})
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("rejects a user who can already export for free", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedUser(t, models.UserProfile{ID: "u1", Role: models.RoleIndividual, SubscriptionStatus: models.SubscriptionActive})
		propertyID := env.seedProperty(t, "u1", "9 Free Ln")

		_, err := env.exportService.CreatePaymentIntent(ctx, AuthUser{ID: "u1"}, models.CreatePaymentIntentRequest{
			PropertyID: propertyID, AmountCents: 500,
		})
		assert.ErrorIs(t, err, ErrFreeExportAvailable)
	})

	t.Run("creates a provider customer once and returns the client secret", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedUser(t, models.UserProfile{ID: "u1", Email: "u1@example.com", Role: models.RoleIndividual, SubscriptionStatus: models.SubscriptionNone, PropertiesExported: 1})
		propertyID := env.seedProperty(t, "u1", "10 Pay St")

		result, err := env.exportService.CreatePaymentIntent(ctx, AuthUser{ID: "u1"}, models.CreatePaymentIntentRequest{
			PropertyID: propertyID, AmountCents: 500,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, result.ClientSecret)
		assert.NotEmpty(t, result.PaymentIntentID)
		assert.Equal(t, propertyID, env.provider.lastMetadata["property_id"])

		profile, err := env.users.GetByID(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "cus_1", profile.StripeCustomerID)

		// Second intent reuses the stored customer.
		_, err = env.exportService.CreatePaymentIntent(ctx, AuthUser{ID: "u1"}, models.CreatePaymentIntentRequest{
			PropertyID: propertyID, AmountCents: 500,
		})
		require.NoError(t, err)
		assert.Equal(t, 1, env.provider.customers)
	})

	t.Run("provider outage surfaces as provider unavailable", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedUser(t, models.UserProfile{ID: "u1", Role: models.RoleIndividual, PropertiesExported: 1})
		propertyID := env.seedProperty(t, "u1", "11 Down Dr")
		env.provider.customerErr = errMockFailure

		_, err := env.exportService.CreatePaymentIntent(ctx, AuthUser{ID: "u1"}, models.CreatePaymentIntentRequest{
			PropertyID: propertyID, AmountCents: 500,
		})
		assert.ErrorIs(t, err, ErrProviderUnavailable)
	})
}

func TestExportService_ConfirmPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("records the ledger entry and bumps the counter", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedUser(t, models.UserProfile{ID: "u1", Email: "u1@example.com", Role: models.RoleIndividual, PropertiesExported: 1})
		propertyID := env.seedProperty(t, "u1", "12 Ledger Ln")
		intentID := env.provider.succeededIntent(500)

		payment, err := env.exportService.ConfirmPayment(ctx, AuthUser{ID: "u1", Email: "u1@example.com"}, models.ConfirmPaymentRequest{
			PaymentIntentID: intentID, PropertyID: propertyID,
		})
		require.NoError(t, err)
		assert.Equal(t, models.PaymentSucceeded, payment.Status)
		assert.Equal(t, int64(500), payment.AmountCents)

		paid, err := env.payments.HasSucceeded(ctx, "u1", propertyID)
		require.NoError(t, err)
		assert.True(t, paid)

		profile, err := env.users.GetByID(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 2, profile.PropertiesExported)
		assert.Equal(t, []string{"u1@example.com"}, env.notifier.paymentSuccesses)
		assert.Contains(t, env.auditRepo.actions(), models.AuditActionPaymentConfirmed)
	})

	t.Run("rejects an intent that has not succeeded", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedUser(t, models.UserProfile{ID: "u1", Email: "u1@example.com", Role: models.RoleIndividual})
		propertyID := env.seedProperty(t, "u1", "13 Pending Pl")

		result, err := env.exportService.CreatePaymentIntent(ctx, AuthUser{ID: "u1"}, models.CreatePaymentIntentRequest{
			PropertyID: propertyID, AmountCents: 500,
		})
		require.NoError(t, err)

		_, err = env.exportService.ConfirmPayment(ctx, AuthUser{ID: "u1", Email: "u1@example.com"}, models.ConfirmPaymentRequest{
			PaymentIntentID: result.PaymentIntentID, PropertyID: propertyID,
		})
		assert.ErrorIs(t, err, ErrPaymentNotCompleted)

		paid, err := env.payments.HasSucceeded(ctx, "u1", propertyID)
		require.NoError(t, err)
		assert.False(t, paid)
		assert.Equal(t, []string{"u1@example.com"}, env.notifier.paymentFailures)
	})

	t.Run("paid export scenario end to end", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedUser(t, models.UserProfile{ID: "u1", Role: models.RoleIndividual, SubscriptionStatus: models.SubscriptionNone, PropertiesExported: 1})
		propertyID := env.seedProperty(t, "u1", "14 Happy Path")
		user := AuthUser{ID: "u1"}

		// Export is blocked until the payment lands.
		_, err := env.exportService.ExportProperty(ctx, user, propertyID)
		require.ErrorIs(t, err, ErrPaymentRequired)

		intent, err := env.exportService.CreatePaymentIntent(ctx, user, models.CreatePaymentIntentRequest{
			PropertyID: propertyID, AmountCents: 500,
		})
		require.NoError(t, err)
		env.provider.intents[intent.PaymentIntentID].Status = "succeeded"

		_, err = env.exportService.ConfirmPayment(ctx, user, models.ConfirmPaymentRequest{
			PaymentIntentID: intent.PaymentIntentID, PropertyID: propertyID,
		})
		require.NoError(t, err)

		countAfterConfirm := 2

		result, err := env.exportService.ExportProperty(ctx, user, propertyID)
		require.NoError(t, err)
		assert.NotEmpty(t, result.PDF)

		profile, err := env.users.GetByID(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, countAfterConfirm, profile.PropertiesExported)
	})
}

func TestExportService_CheckExportPermission(t *testing.T) {
	ctx := context.Background()

	t.Run("reports permission fields", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedUser(t, models.UserProfile{ID: "u1", Role: models.RoleIndividual, SubscriptionStatus: models.SubscriptionActive})
		propertyID := env.seedProperty(t, "u1", "15 Check Ct")

		permission, err := env.exportService.CheckExportPermission(ctx, AuthUser{ID: "u1"}, propertyID)
		require.NoError(t, err)
		assert.True(t, permission.CanExportFree)
		assert.False(t, permission.HasPaid)
		assert.True(t, permission.IsFirstProperty)
	})

	t.Run("unknown property is not found", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedUser(t, models.UserProfile{ID: "u1", Role: models.RoleIndividual})

		_, err := env.exportService.CheckExportPermission(ctx, AuthUser{ID: "u1"}, "prop-missing")
		assert.ErrorIs(t, err, ErrPropertyNotFound)
	})
}
