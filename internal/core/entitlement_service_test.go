package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sellerprep-backend-go/internal/models"
)

func TestCanExportFree(t *testing.T) {
	tests := []struct {
		name    string
		profile *models.UserProfile
		parent  *models.UserProfile
		want    bool
	}{
		{
			name:    "nil profile",
			profile: nil,
			want:    false,
		},
		{
			name:    "admin without subscription",
			profile: &models.UserProfile{ID: "u1", Role: models.RoleAdmin, SubscriptionStatus: models.SubscriptionNone},
			want:    true,
		},
		{
			name:    "own active subscription",
			profile: &models.UserProfile{ID: "u1", Role: models.RoleIndividual, SubscriptionStatus: models.SubscriptionActive},
			want:    true,
		},
		{
			name:    "cancelled subscription",
			profile: &models.UserProfile{ID: "u1", Role: models.RoleIndividual, SubscriptionStatus: models.SubscriptionCancelled},
			want:    false,
		},
		{
			name:    "past due subscription",
			profile: &models.UserProfile{ID: "u1", Role: models.RoleIndividual, SubscriptionStatus: models.SubscriptionPastDue},
			want:    false,
		},
		{
			name:    "client with subscribed agent parent",
			profile: &models.UserProfile{ID: "u1", Role: models.RoleClient, SubscriptionStatus: models.SubscriptionNone, ParentID: "agent-1"},
			parent:  &models.UserProfile{ID: "agent-1", Role: models.RoleAgent, SubscriptionStatus: models.SubscriptionActive},
			want:    true,
		},
		{
			name:    "client with subscribed individual parent",
			profile: &models.UserProfile{ID: "u1", Role: models.RoleClient, SubscriptionStatus: models.SubscriptionNone, ParentID: "ind-1"},
			parent:  &models.UserProfile{ID: "ind-1", Role: models.RoleIndividual, SubscriptionStatus: models.SubscriptionActive},
			want:    true,
		},
		{
			name:    "client with unsubscribed parent",
			profile: &models.UserProfile{ID: "u1", Role: models.RoleClient, SubscriptionStatus: models.SubscriptionNone, ParentID: "agent-1"},
			parent:  &models.UserProfile{ID: "agent-1", Role: models.RoleAgent, SubscriptionStatus: models.SubscriptionCancelled},
			want:    false,
		},
		{
			name:    "parent with client role does not grant entitlement",
			profile: &models.UserProfile{ID: "u1", Role: models.RoleClient, SubscriptionStatus: models.SubscriptionNone, ParentID: "c2"},
			parent:  &models.UserProfile{ID: "c2", Role: models.RoleClient, SubscriptionStatus: models.SubscriptionActive},
			want:    false,
		},
		{
			name:    "self link does not grant entitlement",
			profile: &models.UserProfile{ID: "u1", Role: models.RoleClient, SubscriptionStatus: models.SubscriptionNone, ParentID: "u1"},
			parent:  &models.UserProfile{ID: "u1", Role: models.RoleAgent, SubscriptionStatus: models.SubscriptionActive},
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanExportFree(tt.profile, tt.parent))
		})
	}
}

func TestEntitlementService_Check(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves parent one hop only", func(t *testing.T) {
		env := newTestEnv(t)
		// grandparent holds the subscription, parent does not: the chain must
		// not be followed past the first hop.
		env.seedUser(t, models.UserProfile{ID: "grandparent", Role: models.RoleAgent, SubscriptionStatus: models.SubscriptionActive})
		env.seedUser(t, models.UserProfile{ID: "parent", Role: models.RoleAgent, SubscriptionStatus: models.SubscriptionNone, ParentID: "grandparent"})
		env.seedUser(t, models.UserProfile{ID: "child", Role: models.RoleClient, SubscriptionStatus: models.SubscriptionNone, ParentID: "parent"})

		child, err := env.users.GetByID(ctx, "child")
		require.NoError(t, err)

		permission, err := env.entitlements.Check(ctx, child, "prop-1")
		require.NoError(t, err)
		assert.False(t, permission.CanExportFree)
	})

	t.Run("parent subscription change takes effect immediately", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedUser(t, models.UserProfile{ID: "agent", Role: models.RoleAgent, SubscriptionStatus: models.SubscriptionActive})
		env.seedUser(t, models.UserProfile{ID: "client", Role: models.RoleClient, SubscriptionStatus: models.SubscriptionNone, ParentID: "agent"})

		client, err := env.users.GetByID(ctx, "client")
		require.NoError(t, err)

		permission, err := env.entitlements.Check(ctx, client, "prop-1")
		require.NoError(t, err)
		assert.True(t, permission.CanExportFree)

		agent, err := env.users.GetByID(ctx, "agent")
		require.NoError(t, err)
		agent.SubscriptionStatus = models.SubscriptionCancelled
		require.NoError(t, env.users.Update(ctx, agent))

		permission, err = env.entitlements.Check(ctx, client, "prop-1")
		require.NoError(t, err)
		assert.False(t, permission.CanExportFree)
	})

	t.Run("dangling parent link is treated as no parent", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedUser(t, models.UserProfile{ID: "client", Role: models.RoleClient, SubscriptionStatus: models.SubscriptionNone, ParentID: "gone"})

		client, err := env.users.GetByID(ctx, "client")
		require.NoError(t, err)

		permission, err := env.entitlements.Check(ctx, client, "prop-1")
		require.NoError(t, err)
		assert.False(t, permission.CanExportFree)
	})

	t.Run("reports ledger state for the exact property", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedUser(t, models.UserProfile{ID: "u1", Role: models.RoleIndividual, SubscriptionStatus: models.SubscriptionNone})
		_, err := env.payments.Create(ctx, &models.Payment{UserID: "u1", PropertyID: "prop-1", Status: models.PaymentSucceeded})
		require.NoError(t, err)

		profile, err := env.users.GetByID(ctx, "u1")
		require.NoError(t, err)

		permission, err := env.entitlements.Check(ctx, profile, "prop-1")
		require.NoError(t, err)
		assert.True(t, permission.HasPaid)
		assert.True(t, permission.IsFirstProperty)

		permission, err = env.entitlements.Check(ctx, profile, "prop-2")
		require.NoError(t, err)
		assert.False(t, permission.HasPaid)
	})
}
